package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/foxy/foxy-go/pkg/signer"
)

type signFlags struct {
	secret     string
	code       string
	parentCode string
	value      string
}

func (f *signFlags) newSigner() *signer.Signer {
	secret := f.secret
	if secret == "" {
		secret = cfg.SigningSecret()
	}
	return signer.New(secret).SetLogger(log.Logger)
}

func newSignCmd() *cobra.Command {
	var f signFlags
	signCmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign cart messages, fields, URLs and HTML documents",
		Long: `Sign cart messages, fields, URLs and HTML documents with HMAC-SHA256. The
store secret comes from --secret, the store_secret setting or the client
secret, in that order.

Examples:
  # Sign a cart link
  foxy sign url "https://example.foxycart.com/cart?name=Tee&price=10&code=TEE-1"

  # Sign the name of an editable field
  foxy sign name quantity --code TEE-1

  # Sign every link and form of a page
  foxy sign html -i cart.html -o cart.signed.html`,
	}
	signCmd.PersistentFlags().StringVarP(&f.secret, "secret", "", "", "Store secret key")

	signCmd.AddCommand(&cobra.Command{
		Use:   "message MESSAGE",
		Short: "Print the HMAC-SHA256 signature of a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := f.newSigner().Message(args[0])
			if err != nil {
				return err
			}
			return printSigned(cmd.OutOrStdout(), sig)
		},
	})

	nameCmd := &cobra.Command{
		Use:   "name NAME",
		Short: "Sign the name attribute of a product field",
		Long: `Sign the name attribute of a product field. Without --value the field is
editable by the customer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			signed, err := f.newSigner().Name(args[0], f.code, f.parentCode, signer.ValueOf(f.value))
			if err != nil {
				return err
			}
			return printSigned(cmd.OutOrStdout(), signed)
		},
	}
	addFieldFlags(nameCmd, &f)
	signCmd.AddCommand(nameCmd)

	valueCmd := &cobra.Command{
		Use:   "value NAME",
		Short: "Sign the value attribute of a product field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			signed, err := f.newSigner().Value(args[0], f.code, f.parentCode, signer.ValueOf(f.value))
			if err != nil {
				return err
			}
			return printSigned(cmd.OutOrStdout(), signed)
		},
	}
	addFieldFlags(valueCmd, &f)
	signCmd.AddCommand(valueCmd)

	signCmd.AddCommand(&cobra.Command{
		Use:   "url URL",
		Short: "Sign every query argument of a cart URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			signed, err := f.newSigner().URL(args[0])
			if err != nil {
				return err
			}
			return printSigned(cmd.OutOrStdout(), signed)
		},
	})

	signCmd.AddCommand(newSignHTMLCmd(&f))
	return signCmd
}

func addFieldFlags(cmd *cobra.Command, f *signFlags) {
	cmd.Flags().StringVarP(&f.code, "code", "c", "", "Product code")
	cmd.Flags().StringVarP(&f.parentCode, "parent-code", "p", "", "Code of the parent product")
	cmd.Flags().StringVarP(&f.value, "value", "v", "", "Fixed field value, editable when empty")
	cmd.MarkFlagRequired("code")
}

func newSignHTMLCmd(f *signFlags) *cobra.Command {
	var input, output string
	cmd := &cobra.Command{
		Use:   "html [flags]",
		Short: "Sign the links and forms of an HTML document",
		Long: `Sign the links and forms of an HTML document. The document is read from
--input or standard input and written to --output or standard output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := f.newSigner()
			if input != "" && output != "" {
				n, err := s.HTMLFile(input, output)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), map[string]any{"output": output, "signed": n})
				}
				okLabel.Fprintf(cmd.OutOrStdout(), "Signed %d element(s) into %s\n", n, output)
				return nil
			}

			doc, err := readInput(cmd, input)
			if err != nil {
				return err
			}
			signed, err := s.HTMLString(string(doc))
			if err != nil {
				return err
			}
			if output != "" {
				return writeOutput(output, []byte(signed))
			}
			fmt.Fprint(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "HTML file to sign")
	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write the signed document to")
	return cmd
}

func printSigned(w io.Writer, signed string) error {
	if jsonOutput {
		return printJSON(w, map[string]string{"signed": signed})
	}
	fmt.Fprintln(w, signed)
	return nil
}

// readInput returns the content of file, or of standard input when file is
// empty.
func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", file, err)
	}
	return data, nil
}

func writeOutput(file string, data []byte) error {
	if err := os.WriteFile(file, data, 0644); err != nil {
		return fmt.Errorf("unable to write %s: %w", file, err)
	}
	return nil
}
