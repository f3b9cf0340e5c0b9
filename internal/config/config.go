package config

import (
	"bufio"
	"compass_apiserver/internal/sensor"
	"compass_apiserver/internal/utils"
	"errors"
	"fmt"
	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
	"os"
	"path"
	"strings"
	"time"
)

const DefaultAppName = "compass"
const DefaultConfigName = "config"
const DefaultGRPCInterface = "0.0.0.0"
const DefaultGRPCPort = 18890
const DefaultAPIInterface = "0.0.0.0"
const DefaultAPIPort = 18889
const DefaultIMUID = "imu_0"
const DefaultIMUBaud = 115200
const DefaultAnimationDurationMs = 250
const DefaultAnimationFrameMs = 16
const DefaultIdleTimeoutSecond = 60
const DefaultSimID = "sim_0"
const DefaultSimIntervalMs = 200
const DefaultSimFieldStrength = 40.0
const DefaultSimFieldDip = 30.0

const DefaultInfoTitle = "Compass"
const DefaultInfoMessage = "This is a compass application."

var userHomeDir, _ = os.UserHomeDir()
var DefaultConfig = path.Join(userHomeDir, ".config/"+DefaultAppName+"/"+DefaultConfigName+".yaml")
var DefaultConfigSearchPath0 = path.Join(userHomeDir, ".config", DefaultAppName)

const DefaultConfigSearchPath1 = "/etc/" + DefaultAppName
const DefaultConfigSearchPath2 = "./"
const DefaultConfigSearchPath3 = "/config"

type GRPCOpt struct {
	Port      int    `yaml:"port"`
	Interface string `yaml:"interface"`
}

type APIOpt struct {
	Port      int    `yaml:"port"`
	Interface string `yaml:"interface"`
}

// IMUOpt describes a HI229 attached over serial. Disable lists sensor types
// the device should not report, which lets a session fall back to a lower
// priority operation mode.
type IMUOpt struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Baud    int      `yaml:"baud"`
	Disable []string `yaml:"disable" mapstructure:"disable"`
}

type SimulateOpt struct {
	Enabled    bool     `yaml:"enabled"`
	ID         string   `yaml:"id"`
	Heading    float64  `yaml:"heading"`
	Rate       float64  `yaml:"rate"`
	IntervalMs int      `yaml:"interval_ms" mapstructure:"interval_ms"`
	Field      float64  `yaml:"field"`
	Dip        float64  `yaml:"dip"`
	Sensors    []string `yaml:"sensors"`
}

type AnimationOpt struct {
	DurationMs int `yaml:"duration_ms" mapstructure:"duration_ms"`
	FrameMs    int `yaml:"frame_ms" mapstructure:"frame_ms"`
}

type SessionOpt struct {
	IdleTimeoutSecond int `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// InfoOpt is the text of the informational dialog.
type InfoOpt struct {
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
}

type CompassOpt struct {
	GRPC      GRPCOpt      `yaml:"grpc"`
	API       APIOpt       `yaml:"api"`
	IMU       []IMUOpt     `yaml:"imu"`
	Simulate  SimulateOpt  `yaml:"simulate"`
	Animation AnimationOpt `yaml:"animation"`
	Session   SessionOpt   `yaml:"session"`
	Info      InfoOpt      `yaml:"info"`
	Debug     bool         `yaml:"debug"`
}

// AnimationDuration returns the needle animation duration.
func (o *CompassOpt) AnimationDuration() time.Duration {
	if o.Animation.DurationMs <= 0 {
		return DefaultAnimationDurationMs * time.Millisecond
	}
	return time.Duration(o.Animation.DurationMs) * time.Millisecond
}

func (o *CompassOpt) AnimationFrame() time.Duration {
	if o.Animation.FrameMs <= 0 {
		return DefaultAnimationFrameMs * time.Millisecond
	}
	return time.Duration(o.Animation.FrameMs) * time.Millisecond
}

// IdleTimeout returns how long a session may go unread before it is put to
// sleep. A negative idle_timeout disables sleeping and yields 0.
func (o *CompassOpt) IdleTimeout() time.Duration {
	if o.Session.IdleTimeoutSecond < 0 {
		return 0
	}
	if o.Session.IdleTimeoutSecond == 0 {
		return DefaultIdleTimeoutSecond * time.Second
	}
	return time.Duration(o.Session.IdleTimeoutSecond) * time.Second
}

// ParseTypes converts sensor type names to sensor.Type values.
func ParseTypes(names []string) ([]sensor.Type, error) {
	res := make([]sensor.Type, 0, len(names))
	for _, name := range names {
		t, err := sensor.ParseType(name)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, nil
}

// Validate checks the options that cannot be defaulted.
func (o *CompassOpt) Validate() error {
	ids := make(map[string]struct{}, len(o.IMU)+1)
	for _, imu := range o.IMU {
		if imu.ID == "" {
			return errors.New("empty sensor id")
		}
		if _, ok := ids[imu.ID]; ok {
			return errors.New("duplicate sensor id: " + imu.ID)
		}
		ids[imu.ID] = struct{}{}
		if _, err := ParseTypes(imu.Disable); err != nil {
			return fmt.Errorf("imu %s: %w", imu.ID, err)
		}
	}
	if o.Simulate.Enabled {
		if _, ok := ids[o.Simulate.ID]; ok {
			return errors.New("duplicate sensor id: " + o.Simulate.ID)
		}
		if _, err := ParseTypes(o.Simulate.Sensors); err != nil {
			return fmt.Errorf("simulate: %w", err)
		}
	}
	return nil
}

type CompassDesc struct {
	Opt   CompassOpt
	Viper *viper.Viper
}

func NewCompassDesc() CompassDesc {
	return CompassDesc{
		Opt:   NewCompassOpt(),
		Viper: nil,
	}
}

func NewCompassOpt() CompassOpt {
	return CompassOpt{
		GRPC: GRPCOpt{
			Port:      DefaultGRPCPort,
			Interface: DefaultGRPCInterface,
		},
		API: APIOpt{
			Port:      DefaultAPIPort,
			Interface: DefaultAPIInterface,
		},
		IMU: []IMUOpt{
			{
				ID:   DefaultIMUID,
				Baud: DefaultIMUBaud,
			},
		},
		Simulate: SimulateOpt{
			Enabled:    false,
			ID:         DefaultSimID,
			IntervalMs: DefaultSimIntervalMs,
			Field:      DefaultSimFieldStrength,
			Dip:        DefaultSimFieldDip,
			Sensors: []string{
				sensor.TypeMagneticField.String(),
				sensor.TypeAccelerometer.String(),
			},
		},
		Animation: AnimationOpt{
			DurationMs: DefaultAnimationDurationMs,
			FrameMs:    DefaultAnimationFrameMs,
		},
		Session: SessionOpt{
			IdleTimeoutSecond: DefaultIdleTimeoutSecond,
		},
		Info: InfoOpt{
			Title:   DefaultInfoTitle,
			Message: DefaultInfoMessage,
		},
		Debug: false,
	}
}

func (o *CompassDesc) Parse(cmd *cobra.Command) error {
	vipCfg := viper.New()
	vipCfg.SetDefault("grpc.port", DefaultGRPCPort)
	vipCfg.SetDefault("grpc.interface", DefaultGRPCInterface)
	vipCfg.SetDefault("api.port", DefaultAPIPort)
	vipCfg.SetDefault("api.interface", DefaultAPIInterface)
	vipCfg.SetDefault("simulate.enabled", false)
	vipCfg.SetDefault("simulate.id", DefaultSimID)
	vipCfg.SetDefault("simulate.interval_ms", DefaultSimIntervalMs)
	vipCfg.SetDefault("simulate.field", DefaultSimFieldStrength)
	vipCfg.SetDefault("simulate.dip", DefaultSimFieldDip)
	vipCfg.SetDefault("animation.duration_ms", DefaultAnimationDurationMs)
	vipCfg.SetDefault("animation.frame_ms", DefaultAnimationFrameMs)
	vipCfg.SetDefault("session.idle_timeout", DefaultIdleTimeoutSecond)
	vipCfg.SetDefault("info.title", DefaultInfoTitle)
	vipCfg.SetDefault("info.message", DefaultInfoMessage)
	vipCfg.SetDefault("debug", false)

	if configFileCmd, err := cmd.Flags().GetString("config"); err == nil && configFileCmd != "" {
		vipCfg.SetConfigFile(configFileCmd)
	} else {
		configFileEnv := os.Getenv("COMPASS_CONFIG")
		if configFileEnv != "" {
			vipCfg.SetConfigFile(configFileEnv)
		} else {
			vipCfg.SetConfigName(DefaultConfigName)
			vipCfg.SetConfigType("yaml")
			vipCfg.AddConfigPath(DefaultConfigSearchPath0)
			vipCfg.AddConfigPath(DefaultConfigSearchPath1)
			vipCfg.AddConfigPath(DefaultConfigSearchPath2)
			vipCfg.AddConfigPath(DefaultConfigSearchPath3)
		}
	}

	vipCfg.SetEnvPrefix(DefaultAppName)
	vipCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vipCfg.AutomaticEnv()

	bindFlag(vipCfg, cmd, "api.port", "port")
	bindFlag(vipCfg, cmd, "api.interface", "interface")
	bindFlag(vipCfg, cmd, "debug", "debug")
	bindFlag(vipCfg, cmd, "simulate.enabled", "simulate")

	// If a config file is found, read it in.
	if err := vipCfg.ReadInConfig(); err == nil {
		log.Debugln("using config file:", vipCfg.ConfigFileUsed())
		vipCfg.WatchConfig()
	} else {
		log.Warnln(err)
	}

	if err := vipCfg.Unmarshal(&o.Opt); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := o.Opt.Validate(); err != nil {
		return err
	}

	o.Viper = vipCfg
	return nil
}

func bindFlag(vipCfg *viper.Viper, cmd *cobra.Command, key string, name string) {
	if f := cmd.Flags().Lookup(name); f != nil {
		_ = vipCfg.BindPFlag(key, f)
	}
}

// OnAnimationChange calls fn with the new animation duration whenever the
// watched config file changes.
func (o *CompassDesc) OnAnimationChange(fn func(time.Duration)) {
	if o.Viper == nil || o.Viper.ConfigFileUsed() == "" {
		return
	}
	o.Viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		opt := NewCompassOpt()
		if err := o.Viper.Unmarshal(&opt); err != nil {
			log.Warnln("config reload failed:", err)
			return
		}
		if opt.Animation.DurationMs == o.Opt.Animation.DurationMs {
			return
		}
		o.Opt.Animation = opt.Animation
		log.Infof("config %s changed, animation duration now %v", e.Name, o.Opt.AnimationDuration())
		fn(o.Opt.AnimationDuration())
	})
}

func (o *CompassDesc) PostParse() {
	if o.Opt.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func (o *CompassDesc) SaveConfig() error {
	if o.Viper == nil {
		return errors.New("viper is nil")
	}
	f, err := os.OpenFile(o.Viper.ConfigFileUsed(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	w := bufio.NewWriter(f)
	s, _ := yaml.Marshal(o.Opt)
	_, err = w.Write(s)
	if err != nil {
		return err
	}
	return w.Flush()
}

// InitCfg prepares a config template for the application
func InitCfg(cmd *cobra.Command, _ []string) error {
	printFlag, _ := cmd.Flags().GetBool("print")
	outputPath, _ := cmd.Flags().GetString("output")
	overwriteFlag, _ := cmd.Flags().GetBool("yes")

	desc := NewCompassDesc()
	err := desc.Parse(cmd)
	if err != nil {
		log.Errorln(err)
		return err
	}

	if printFlag {
		configBuffer, _ := yaml.Marshal(desc.Opt)
		fmt.Println(string(configBuffer))
	} else {
		return utils.DumpOption(desc.Opt, outputPath, overwriteFlag)
	}
	return nil
}
