package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/foxy/foxy-go/pkg/config"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.toml"

// GetDefaultConfigPath returns the default path for the config file.
// It uses the OS-specific config directory (e.g., ~/.config/foxy on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "foxy", DefaultConfigFile), nil
}

// defaultConfigFileIfExists returns the default config path, or "" when no
// file exists there. The CLI works from the environment alone.
func defaultConfigFileIfExists() string {
	path, err := GetDefaultConfigPath()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration",
	}
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigCreateCmd())
	return configCmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := cfg.Redacted()
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), r)
			}
			printConfig(cmd.OutOrStdout(), r)
			return nil
		},
	}
}

type configSection struct {
	name   string
	fields [][2]string
}

// printConfig prints the configuration grouped in titled sections.
func printConfig(w io.Writer, c *config.Config) {
	title := cases.Title(language.English)
	sections := []configSection{
		{name: "api credentials", fields: [][2]string{
			{"client_id", c.ClientID},
			{"client_secret", c.ClientSecret},
			{"refresh_token", c.RefreshToken},
			{"endpoint", c.Endpoint},
			{"api_version", c.APIVersion},
		}},
		{name: "store", fields: [][2]string{
			{"store_secret", c.StoreSecret},
			{"webhook_key", c.WebhookKey},
		}},
		{name: "logging", fields: [][2]string{
			{"log_level", c.LogLevel},
			{"silent", fmt.Sprint(c.Silent)},
		}},
		{name: "cache", fields: [][2]string{
			{"kind", c.Cache.Kind},
			{"dir", c.Cache.Dir},
			{"dsn", c.Cache.DSN},
			{"table", c.Cache.Table},
		}},
	}

	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		okLabel.Fprintln(w, title.String(s.name))
		for _, f := range s.fields {
			v := f[1]
			if v == "" {
				v = "-"
			}
			fmt.Fprintf(w, "  %-14s %s\n", f[0]+":", v)
		}
	}
}

func newConfigCreateCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "create [FILE]",
		Short: "Write a config file with the current settings",
		Long: `Write a TOML config file holding the current settings. The file is written to
the default location unless a path is given.

Examples:
  # Save the credentials found in the environment
  FOXY_API_CLIENT_ID=... FOXY_API_CLIENT_SECRET=... FOXY_API_REFRESH_TOKEN=... foxy config create`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) == 1 {
				file = args[0]
			} else {
				var err error
				if file, err = GetDefaultConfigPath(); err != nil {
					return err
				}
			}
			if _, err := os.Stat(file); err == nil && !force {
				return fmt.Errorf("config file %s already exists, use --force to overwrite", file)
			}
			if err := writeConfig(file, cfg); err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]string{"config_file": file})
			}
			okLabel.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", file)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

func writeConfig(file string, c *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(file), 0700); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}
	if err := os.WriteFile(file, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	return nil
}
