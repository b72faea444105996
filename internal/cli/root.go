// Package cli wires the proceval commands: analyze runs a full process
// analysis over a JSON request, config manages the YAML configuration
// file. Logging is configured once in the root command and flows to
// subcommands through the command context.
package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fractionworks/proceval/internal/config"
	"github.com/fractionworks/proceval/internal/logging"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the proceval CLI.
// It wires up logging and the analyze and config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var cfg config.Config

	cmd := &cobra.Command{
		Use:     "proceval",
		Short:   "Process analysis computation engine",
		Long:    "proceval: technical, economic and environmental analysis of dry fractionation process lines",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg = loaded
			setupLogging(cmd, cfg.Logging)
			return nil
		},
	}

	cmd.PersistentFlags().String("config", "", "path to config file (YAML)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.AddCommand(newAnalyzeCmd(&cfg), newConfigCmd())

	return cmd
}

// loadConfig resolves the effective configuration: the file named by
// --config when given, the defaults otherwise.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// setupLogging configures the package logger from the logging config,
// with the --debug flag forcing console debug output.
func setupLogging(cmd *cobra.Command, loggingCfg logging.Config) {
	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = "console"
		loggingCfg.File = ""
	}

	base := logging.New(loggingCfg)
	logger = logging.ComponentLogger(base, "cli")
	cmd.SetContext(logger.WithContext(cmd.Context()))
}

const rootCmdExample = `  # Analyze a process line described in request.json
  proceval analyze request.json

  # Read the request from stdin and print a human-readable summary
  cat request.json | proceval analyze --output summary

  # Fix the Monte Carlo seed for a reproducible simulation
  proceval analyze request.json --seed 42 --iterations 5000

  # Validate a configuration file
  proceval config validate --config proceval.yaml

  # Write a default configuration file
  proceval config init proceval.yaml`
