package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"go.viam.com/test"
)

func newCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().Bool("debug", false, "")
	cmd.Flags().Bool("simulate", false, "")
	cmd.Flags().Int64P("port", "p", DefaultAPIPort, "")
	return cmd
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	test.That(t, os.WriteFile(p, []byte(content), 0600), test.ShouldBeNil)
	return p
}

func TestParseConfigFile(t *testing.T) {
	p := writeConfig(t, `
grpc:
  port: 19000
imu:
  - id: imu_0
    name: /dev/ttyUSB0
    disable: [rotation_vector]
animation:
  duration_ms: 400
info:
  message: hello
`)
	cmd := newCmd()
	test.That(t, cmd.Flags().Set("config", p), test.ShouldBeNil)
	test.That(t, cmd.Flags().Set("simulate", "true"), test.ShouldBeNil)

	desc := NewCompassDesc()
	test.That(t, desc.Parse(cmd), test.ShouldBeNil)
	test.That(t, desc.Opt.GRPC.Port, test.ShouldEqual, 19000)
	test.That(t, desc.Opt.API.Port, test.ShouldEqual, DefaultAPIPort)
	test.That(t, desc.Opt.IMU, test.ShouldHaveLength, 1)
	test.That(t, desc.Opt.IMU[0].Name, test.ShouldEqual, "/dev/ttyUSB0")
	test.That(t, desc.Opt.IMU[0].Disable, test.ShouldResemble, []string{"rotation_vector"})
	test.That(t, desc.Opt.AnimationDuration(), test.ShouldEqual, 400*time.Millisecond)
	test.That(t, desc.Opt.Simulate.Enabled, test.ShouldBeTrue)
	test.That(t, desc.Opt.Info.Title, test.ShouldEqual, DefaultInfoTitle)
	test.That(t, desc.Opt.Info.Message, test.ShouldEqual, "hello")
}

func TestParseEnv(t *testing.T) {
	p := writeConfig(t, "debug: false\n")
	t.Setenv("COMPASS_CONFIG", p)
	t.Setenv("COMPASS_SESSION_IDLE_TIMEOUT", "-1")

	desc := NewCompassDesc()
	test.That(t, desc.Parse(newCmd()), test.ShouldBeNil)
	test.That(t, desc.Viper.ConfigFileUsed(), test.ShouldEqual, p)
	test.That(t, desc.Opt.IdleTimeout(), test.ShouldEqual, time.Duration(0))
}

func TestParseInvalid(t *testing.T) {
	p := writeConfig(t, `
imu:
  - id: imu_0
    disable: [compass]
`)
	cmd := newCmd()
	test.That(t, cmd.Flags().Set("config", p), test.ShouldBeNil)
	desc := NewCompassDesc()
	err := desc.Parse(cmd)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown sensor type")
}

func TestValidate(t *testing.T) {
	opt := NewCompassOpt()
	test.That(t, opt.Validate(), test.ShouldBeNil)

	opt.IMU = append(opt.IMU, IMUOpt{ID: DefaultIMUID})
	test.That(t, opt.Validate(), test.ShouldNotBeNil)

	opt = NewCompassOpt()
	opt.IMU[0].ID = ""
	test.That(t, opt.Validate(), test.ShouldNotBeNil)

	opt = NewCompassOpt()
	opt.Simulate.Enabled = true
	opt.Simulate.ID = DefaultIMUID
	test.That(t, opt.Validate(), test.ShouldNotBeNil)
}

func TestDurations(t *testing.T) {
	opt := NewCompassOpt()
	test.That(t, opt.AnimationDuration(), test.ShouldEqual, 250*time.Millisecond)
	test.That(t, opt.AnimationFrame(), test.ShouldEqual, 16*time.Millisecond)
	test.That(t, opt.IdleTimeout(), test.ShouldEqual, time.Minute)

	opt.Animation = AnimationOpt{}
	opt.Session.IdleTimeoutSecond = 0
	test.That(t, opt.AnimationDuration(), test.ShouldEqual, 250*time.Millisecond)
	test.That(t, opt.IdleTimeout(), test.ShouldEqual, time.Minute)
}

func TestOnAnimationChange(t *testing.T) {
	p := writeConfig(t, "animation:\n  duration_ms: 250\n")
	cmd := newCmd()
	test.That(t, cmd.Flags().Set("config", p), test.ShouldBeNil)
	desc := NewCompassDesc()
	test.That(t, desc.Parse(cmd), test.ShouldBeNil)

	changed := make(chan time.Duration, 4)
	desc.OnAnimationChange(func(d time.Duration) { changed <- d })

	// give the watcher time to start
	time.Sleep(100 * time.Millisecond)
	test.That(t, os.WriteFile(p, []byte("animation:\n  duration_ms: 500\n"), 0600), test.ShouldBeNil)

	select {
	case d := <-changed:
		test.That(t, d, test.ShouldEqual, 500*time.Millisecond)
	case <-time.After(5 * time.Second):
		t.Fatal("no config change observed")
	}
}

func TestSaveConfig(t *testing.T) {
	p := writeConfig(t, "")
	cmd := newCmd()
	test.That(t, cmd.Flags().Set("config", p), test.ShouldBeNil)
	desc := NewCompassDesc()
	test.That(t, desc.Parse(cmd), test.ShouldBeNil)

	desc.Opt.Animation.DurationMs = 300
	test.That(t, desc.SaveConfig(), test.ShouldBeNil)

	reparsed := NewCompassDesc()
	test.That(t, reparsed.Parse(cmd), test.ShouldBeNil)
	test.That(t, reparsed.Opt.Animation.DurationMs, test.ShouldEqual, 300)
}
