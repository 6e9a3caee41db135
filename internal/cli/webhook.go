package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/foxy/foxy-go/internal/listener"
	"github.com/foxy/foxy-go/pkg/webhook"
)

var errMissingWebhookKey = errors.New("webhook key is required. Use --key or set FOXY_WEBHOOK_KEY")

func webhookKey(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if cfg.WebhookKey != "" {
		return cfg.WebhookKey, nil
	}
	return "", errMissingWebhookKey
}

func newWebhookCmd() *cobra.Command {
	webhookCmd := &cobra.Command{
		Use:   "webhook",
		Short: "Verify webhook signatures and receive webhooks locally",
	}
	webhookCmd.AddCommand(newWebhookVerifyCmd())
	webhookCmd.AddCommand(newWebhookListenCmd())
	return webhookCmd
}

func newWebhookVerifyCmd() *cobra.Command {
	var key, signature, payload, file string
	cmd := &cobra.Command{
		Use:   "verify [flags]",
		Short: "Check the signature of a webhook payload",
		Long: `Check the signature of a webhook payload. The payload is taken from --payload,
--file or standard input. The command fails when the signature does not match.

Examples:
  foxy webhook verify --signature 055c62... --file delivery.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := webhookKey(key)
			if err != nil {
				return err
			}
			body := []byte(payload)
			if payload == "" {
				if body, err = readInput(cmd, file); err != nil {
					return err
				}
			}

			valid := webhook.Verify(webhook.Params{Signature: signature, Payload: string(body), Key: k})
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]bool{"valid": valid})
			} else if valid {
				okLabel.Fprintln(cmd.OutOrStdout(), "Signature is valid")
			} else {
				errorLabel.Fprintln(cmd.OutOrStdout(), "Signature is invalid")
			}
			if !valid {
				return ErrAlreadyHandled
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "Webhook encryption key")
	cmd.Flags().StringVarP(&signature, "signature", "s", "", "Value of the "+webhook.SignatureHeader+" header")
	cmd.Flags().StringVarP(&payload, "payload", "", "", "Raw payload")
	cmd.Flags().StringVarP(&file, "file", "f", "", "File holding the raw payload")
	cmd.MarkFlagRequired("signature")
	return cmd
}

func newWebhookListenCmd() *cobra.Command {
	var (
		key      string
		addr     string
		path     string
		cors     bool
		payloads bool
	)
	cmd := &cobra.Command{
		Use:   "listen [flags]",
		Short: "Receive webhooks on a local HTTP server and print them",
		Long: `Receive webhooks on a local HTTP server and print every delivery with a valid
signature. Deliveries with a missing or wrong signature are rejected with 401.

Examples:
  # Listen on port 8080 and show payloads
  foxy webhook listen --addr :8080 --payloads`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := webhookKey(key)
			if err != nil {
				return err
			}
			printer := newEventPrinter(cmd.OutOrStdout(), payloads)
			s := listener.NewServer(listener.Options{
				Key:        k,
				Path:       path,
				HandleCORS: cors,
				OnEvent:    printer.Print,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			printer.Banner(addr, path)
			return s.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "Webhook encryption key")
	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Address to listen on")
	cmd.Flags().StringVarP(&path, "path", "", "/webhooks", "Path deliveries are posted to")
	cmd.Flags().BoolVarP(&cors, "cors", "", false, "Answer CORS preflight requests")
	cmd.Flags().BoolVarP(&payloads, "payloads", "p", false, "Print the payload of every delivery")
	return cmd
}
