package main

import (
	"fmt"

	"github.com/bsm/romfs/internal/config"
	"github.com/bsm/romfs/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// version is set at link time.
var version = "dev"

type app struct {
	v       *viper.Viper
	cfgFile string

	cfg *config.Config
	log *zap.Logger

	logPaths []string // overrides the logger output, for tests
}

func newRootCmd() *cobra.Command {
	return (&app{v: config.New()}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mkrom",
		Short: "Build and inspect ROM artifacts",
		Long: `mkrom archives the contents of a directory as a rom file. The rom file
may be compressed, encrypted with a passphrase and formatted as a C or
Go source file declaring it as a constant.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is mkrom.yaml in standard locations)")
	pf.Bool("debug", false, "Enable debug logging")
	pf.String("log-format", "human", "Log format: json or human")

	_ = a.v.BindPFlag("debug", pf.Lookup("debug"))
	_ = a.v.BindPFlag("log_format", pf.Lookup("log-format"))

	cmd.AddCommand(
		a.buildCmd(),
		a.listCmd(),
		a.catCmd(),
		a.inspectCmd(),
		versionCmd(),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Debug:       cfg.Debug,
		Format:      cfg.LogFormat,
		OutputPaths: a.logPaths,
	})
	if err != nil {
		return err
	}

	if file := cfg.File(); file != "" {
		log.Debug("config loaded", zap.String("file", file))
	}
	a.cfg, a.log = cfg, log
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "mkrom", version)
		},
	}
}
