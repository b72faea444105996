package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fractionworks/proceval/internal/config"
)

// newConfigCmd groups the configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage proceval configuration",
	}
	cmd.AddCommand(newConfigValidateCmd(), newConfigInitCmd())
	return cmd
}

// newConfigValidateCmd creates the config validate command. It parses
// the file named by the root --config flag and reports schema problems.
func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Parses the configuration file given with --config and checks its schema
version against the range this build supports.`,
		Example: `  proceval config validate --config proceval.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				return errors.New("config validate requires --config")
			}

			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("configuration is invalid: %w", err)
			}

			cmd.Printf("Configuration is valid (schema %s)\n", cfg.Version)
			return nil
		},
	}
}

// newConfigInitCmd creates the config init command, writing the default
// configuration to the given path.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write a default configuration file",
		Long: `Writes the built-in default configuration, including all emission
factors and benchmarks, to the given path as a starting point for edits.`,
		Example: `  proceval config init proceval.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}

			data, err := yaml.Marshal(config.Default())
			if err != nil {
				return fmt.Errorf("encode default config: %w", err)
			}
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return fmt.Errorf("write config file: %w", err)
			}

			cmd.Printf("Wrote default configuration to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
