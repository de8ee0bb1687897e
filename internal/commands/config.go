package commands

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/apperr"
	"github.com/balkashynov/tally/internal/config"
)

var configForceFlag bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display or manage configuration settings",
	Long: `Display the configuration file location and the effective settings.

By default, tally works without any configuration file. Settings are merged
from the defaults, the config file, a .env file in the working directory and
TALLY_* environment variables, in that order.

Configuration file location:
  ~/.config/tally/config.toml        Linux
  %APPDATA%\tally\config.toml        Windows`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return showConfig()
	},
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file location",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		printf("%s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Print the effective configuration as TOML",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return showConfig()
	},
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a commented sample config file",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !configForceFlag {
			return &apperr.ConflictError{Op: "config init", Reason: path + " already exists, use --force to overwrite"}
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(config.GenerateSampleConfig()), 0644); err != nil {
			return err
		}
		printf("Wrote %s\n", path)
		return nil
	},
}

func configPath() (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	return deps.ConfigPath()
}

func showConfig() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	status := "not found, using defaults"
	if _, err := os.Stat(path); err == nil {
		status = "loaded"
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	encoded, err := cfg.Encode()
	if err != nil {
		return err
	}
	printf("# %s (%s)\n", path, status)
	printf("%s", encoded)
	return nil
}

func init() {
	configInitCmd.Flags().BoolVar(&configForceFlag, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
