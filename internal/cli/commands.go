package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	jsonitor "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/foxy/foxy-go/internal/common/logtrace"
	"github.com/foxy/foxy-go/internal/version"
	"github.com/foxy/foxy-go/pkg/client"
	"github.com/foxy/foxy-go/pkg/config"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

var (
	// Global flags
	jsonOutput bool
	configFile string
	logLevel   string

	// cfg is loaded before every command runs.
	cfg *config.Config
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "foxy [command] [flags]",
		Short: "Foxy CLI - a command line client for the hypermedia API",
		Long: `Foxy CLI is a command line client for the hypermedia API.
It resolves relation paths to URLs, fetches resources, signs cart links and
forms, builds single sign-on URLs and verifies webhooks.

Credentials are read from the config file, a .env file in the working
directory and FOXY_* environment variables.

Examples:
  # Fetch the store of the integration
  foxy get fx:store

  # Fetch the first transactions with their items
  foxy get fx:store fx:transactions --zoom items --query limit=5

  # Sign every cart link and form of a page
  foxy sign html -i cart.html -o cart.signed.html`,
		PersistentPreRunE: preRunHandlePersistents,
		SilenceErrors:     true, // Execute prints the error
		SilenceUsage:      true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "", "Log level (error, warn, info, debug, trace)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newSignCmd())
	rootCmd.AddCommand(newSSOCmd())
	rootCmd.AddCommand(newWebhookCmd())
	return rootCmd
}

// Execute runs the command line and exits with a non-zero status on failure.
// This is called by main.main().
func Execute() {
	err := newRootCmd().Execute()
	if err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(os.Stdout, map[string]string{"error": err.Error()})
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// preRunHandlePersistents loads the configuration and sets up logging before
// command execution.
func preRunHandlePersistents(cmd *cobra.Command, args []string) error {
	file := configFile
	if file == "" {
		file = defaultConfigFileIfExists()
	}

	c, err := config.Load(file)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.LogLevel = logLevel
		if err := c.Validate(); err != nil {
			return err
		}
	}
	cfg = c
	logtrace.InitLogger(cfg.LogOptions())
	return nil
}

// withClient creates an API client for the loaded configuration and closes
// its cache when fn returns.
func withClient(ctx context.Context, fn func(c *client.Client) error) error {
	opts, err := cfg.AuthOptions(ctx)
	if err != nil {
		return err
	}
	if closer, ok := opts.Cache.(io.Closer); ok {
		defer closer.Close()
	}
	c, err := client.New(opts)
	if err != nil {
		return err
	}
	return fn(c)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of foxy",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			path := configFile
			if path == "" {
				path = defaultConfigFileIfExists()
			}
			if path == "" {
				path = "none"
			}

			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]string{
					"version":     version.Version,
					"api_version": cfg.APIVersion,
					"config_file": path,
				})
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "foxy CLI %s\n", version.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "API version: %s\n", cfg.APIVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", path)
		},
	}
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format JSON output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// printDocument writes a JSON document as YAML, or as indented JSON with
// --json.
func printDocument(w io.Writer, doc []byte) error {
	if jsonOutput {
		fmt.Fprintln(w, prettyJSON(doc))
		return nil
	}
	out, err := yaml.JSONToYAML(doc)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}
	fmt.Fprint(w, string(out))
	return nil
}
