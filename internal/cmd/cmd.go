package cmd

import (
	"compass_apiserver/internal/config"
	"compass_apiserver/internal/server"
	"compass_apiserver/pkg/version"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:     "compass",
	Short:   "compass heading server",
	Long:    "compass estimates the device heading from its orientation sensors and serves it to clients",
	Version: version.GitVersion,
}

func ServeCmdRunE(cmd *cobra.Command, args []string) error {
	app, err := server.NewMainApp(cmd, args).PrepareRun()
	if err != nil {
		log.Errorln(err)
		return err
	}
	ctx, cancel := server.SignalContext()
	defer cancel()
	return app.Run(ctx)
}

func commonFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "default configuration path")
	cmd.Flags().Bool("debug", false, "toggle debug logging")
	cmd.Flags().Bool("simulate", false, "use the simulated sensor")
}

func ServeCmdFlags(cmd *cobra.Command) {
	commonFlags(cmd)
	cmd.Flags().Int64P("port", "p", config.DefaultAPIPort, "port that the API server listen on")
	cmd.Flags().StringP("interface", "i", config.DefaultAPIInterface, "interface that the API server listen on, default to 0.0.0.0")
}

var ServeCmd = &cobra.Command{
	Use: "serve",
	SuggestFor: []string{
		"ru", "ser",
	},
	Short: "serve start the compass using predefined configs.",
	Long: `serve start the compass using predefined configs, by the following order:
1. path specified in --config flag
2. path defined COMPASS_CONFIG environment variable
3. default location $HOME/.config/compass/config.yaml, /etc/compass/config.yaml, current directory
The parameters in the configuration file will be overwritten by the following order:
1. command line arguments
2. environment variables
`,
	Example: `  compass serve --config=/path/to/config
  compass serve --simulate`,
	RunE: ServeCmdRunE,
}

func InitCmdFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("print", false, "print config to stdout")
	cmd.Flags().BoolP("yes", "y", false, "overwrite")
	cmd.Flags().StringP("output", "o", config.DefaultConfig, "specify output directory")
}

var InitCmd = &cobra.Command{
	Use: "init",
	SuggestFor: []string{
		"ini", "in",
	},
	Short: "init create a configuration template",
	Long: `init create a configuration template.
The configuration file can be used to launch the compass server.
If --print flag is present, the configuration will be printed to stdout.
If --output / -o flag is present, the configuration will be saved to the path specified
Otherwise init will output configuration file to $HOME/.config/compass/config.yaml
If --yes / -y flag is present, the configuration will be overwrite without confirmation
`,
	Example: `  compass init --print
  compass init --output /path/to/config.yaml
  compass init -o /path/to/config.yaml -y`,
	RunE: config.InitCfg,
}

var ProbeCmd = &cobra.Command{
	Use: "probe",
	SuggestFor: []string{
		"pro", "pr", "prob",
	},
	Short: "probe the compatible devices",
	Long: `probe the compatible devices.
The probe command will scan the serial ports for compatible IMUs and print the result to stdout.
Warning: Only IMUs running at 115200 baud-rate can be detected.
`,
	Example: `  compass probe`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := server.NewMainApp(cmd, args).PrepareRun()
		if err != nil {
			return err
		}
		return app.ProbeSensor()
	},
}

var WatchCmd = &cobra.Command{
	Use: "watch",
	SuggestFor: []string{
		"wat", "view",
	},
	Short: "watch shows the compass in the terminal",
	Long: `watch runs a local session and draws the azimuth and the needle in the terminal.
Press i for information, p to pause and resume the session, q to quit.
`,
	Example: `  compass watch --simulate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := server.NewMainApp(cmd, args).PrepareRun()
		if err != nil {
			return err
		}
		ctx, cancel := server.SignalContext()
		defer cancel()
		return app.Watch(ctx)
	},
}

func getRootCmd() *cobra.Command {
	ServeCmdFlags(ServeCmd)
	RootCmd.AddCommand(ServeCmd)

	InitCmdFlags(InitCmd)
	RootCmd.AddCommand(InitCmd)

	ProbeCmd.Flags().String("config", "", "default configuration path")
	RootCmd.AddCommand(ProbeCmd)

	commonFlags(WatchCmd)
	RootCmd.AddCommand(WatchCmd)

	return RootCmd
}

func Execute() {
	rootCmd := getRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
