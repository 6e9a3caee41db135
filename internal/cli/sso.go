package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foxy/foxy-go/pkg/sso"
)

func newSSOCmd() *cobra.Command {
	var opts sso.Options
	cmd := &cobra.Command{
		Use:   "sso [flags]",
		Short: "Create a single sign-on checkout URL for a customer",
		Long: `Create a single sign-on checkout URL that logs a customer into the hosted
checkout. The store secret defaults to the store_secret setting.

Examples:
  foxy sso --customer 42 --domain https://example.foxycart.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Secret == "" {
				opts.Secret = cfg.SigningSecret()
			}
			u, err := sso.CreateURL(opts)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]string{"url": u})
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Customer, "customer", "", "", "Customer id")
	cmd.Flags().StringVarP(&opts.Secret, "secret", "", "", "Store secret key")
	cmd.Flags().StringVarP(&opts.Domain, "domain", "", "", "Store domain, e.g. https://example.foxycart.com")
	cmd.Flags().StringVarP(&opts.Session, "session", "", "", "Session id to continue (fcsid)")
	cmd.Flags().Int64VarP(&opts.Timestamp, "timestamp", "", 0, "Unix time in milliseconds, now when zero")
	cmd.MarkFlagRequired("customer")
	cmd.MarkFlagRequired("domain")
	return cmd
}
