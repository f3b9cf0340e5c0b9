package server

import (
	"compass_apiserver/internal/config"
	"compass_apiserver/internal/sensor"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"go.viam.com/test"
)

func testApp(t *testing.T) MainApp {
	t.Helper()
	opt := config.NewCompassOpt()
	opt.GRPC.Interface = "127.0.0.1"
	opt.GRPC.Port = 0
	opt.API.Interface = "127.0.0.1"
	opt.API.Port = 0
	opt.Simulate.Enabled = true

	app := NewMainApp(&cobra.Command{}, nil)
	app.SetOpt(&opt)
	return app
}

func TestRunShutsDown(t *testing.T) {
	app := testApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(300 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		test.That(t, err, test.ShouldBeNil)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestRunListenError(t *testing.T) {
	app := testApp(t)
	app.GetOpt().GRPC.Interface = "256.0.0.1"
	err := app.Run(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "grpc listen")
}

func TestProbeSensorNoPorts(t *testing.T) {
	app := testApp(t)
	app.SetOpener(func() ([]sensor.Sensor, error) { return nil, errors.New("unused") })
	// a test host has no HI229 attached
	test.That(t, app.ProbeSensor(), test.ShouldNotBeNil)
}
