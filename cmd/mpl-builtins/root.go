package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/mpl-builtins/pkg/cli"
	"mercator-hq/mpl-builtins/pkg/config"
	"mercator-hq/mpl-builtins/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
	verbose  bool

	// Set by the root pre-run for every subcommand
	appConfig *config.Config
	appLogger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mpl-builtins",
	Short: "MPL format-conversion and validation builtins",
	Long: `mpl-builtins runs the MPL builtin functions that convert between text
encodings (base64, base64url, hex, URL query strings) and structured values
(JSON, YAML), and validate values against JSON schemas.

Builtins can be called one at a time, served to another process over
JSON lines or HTTP, and every call can be recorded to an audit log.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadRuntimeConfig,
}

// Execute runs the root command and exits with the code for its error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}

// loadRuntimeConfig loads the configuration and sets up logging. Logs go to
// stderr so stdout carries only command output.
func loadRuntimeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, cmd.ErrOrStderr()))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Slog())

	config.SetConfig(cfg)
	appConfig = cfg
	appLogger = logger

	logger.Debug("configuration loaded",
		"path", cfgFile,
		"families", cfg.Builtins.Families,
		"evidence", cfg.Evidence.Enabled,
	)
	return nil
}
