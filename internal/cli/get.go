package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/foxy/foxy-go/pkg/client"
	"github.com/foxy/foxy-go/pkg/resolver"
	"github.com/foxy/foxy-go/pkg/sanitize"
)

func newResolveCmd() *cobra.Command {
	var (
		base      string
		skipCache bool
	)
	cmd := &cobra.Command{
		Use:   "resolve MEMBER... [flags]",
		Short: "Resolve a path of relations to a URL",
		Long: `Resolve a path of relations and ids to a URL without fetching it. Members
made of digits are ids, anything else is a relation name.

Examples:
  # URL of the transactions of the store
  foxy resolve fx:store fx:transactions

  # Resolve from another resource
  foxy resolve --base https://api.foxycart.com/stores/8 fx:customers 42`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(c *client.Client) error {
				node, err := startNode(c, base, args)
				if err != nil {
					return err
				}
				u, err := node.Resolve(cmd.Context(), skipCache)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), map[string]string{"url": u})
				}
				fmt.Fprintln(cmd.OutOrStdout(), u)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&base, "base", "b", "", "URL to resolve from instead of the API root")
	cmd.Flags().BoolVarP(&skipCache, "skip-cache", "", false, "Resolve every relation by traversal")
	return cmd
}

type getOptions struct {
	base      string
	method    string
	query     []string
	body      string
	set       []string
	fields    []string
	zoom      []string
	sanitize  []string
	skipCache bool
}

func newGetCmd() *cobra.Command {
	var o getOptions
	cmd := &cobra.Command{
		Use:   "get [MEMBER...] [flags]",
		Short: "Fetch a resource by its path of relations",
		Long: `Fetch a resource by its path of relations and print it as YAML, or JSON
with -j. Without members the API root is fetched.

A body starting with @ is read from a file; {{ .ENV.VAR }} placeholders in
it are replaced from the environment or a .env file.

Examples:
  # Get the store
  foxy get fx:store

  # Get five customers with only a few fields
  foxy get fx:store fx:customers --query limit=5 --fields id,email

  # Get a transaction with its items and their options
  foxy get fx:store fx:transactions 1234 --zoom items:item_options

  # Update the store name
  foxy get fx:store --method PATCH --set store_name="My Store"

  # Drop private attributes and credentials from the output
  foxy get fx:store fx:customers --sanitize private,sensitive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := o.fetchOptions()
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(c *client.Client) error {
				node, err := startNode(c, o.base, args)
				if err != nil {
					return err
				}
				resp, err := node.Fetch(cmd.Context(), opts)
				if err != nil {
					return err
				}
				if len(strings.TrimSpace(string(resp.Body))) == 0 {
					okLabel.Fprintf(cmd.OutOrStdout(), "%d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))
					return nil
				}
				return printDocument(cmd.OutOrStdout(), resp.Body)
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.base, "base", "b", "", "URL to resolve from instead of the API root")
	f.StringVarP(&o.method, "method", "X", http.MethodGet, "HTTP method")
	f.StringArrayVarP(&o.query, "query", "q", nil, "Query parameter as key=value, repeatable")
	f.StringVarP(&o.body, "body", "d", "", "Request body, or @FILE")
	f.StringArrayVarP(&o.set, "set", "s", nil, "Set a body field as path=value, repeatable")
	f.StringSliceVarP(&o.fields, "fields", "", nil, "Fields to return")
	f.StringSliceVarP(&o.zoom, "zoom", "z", nil, "Resources to embed, nested with ':' (items:item_options)")
	f.StringSliceVarP(&o.sanitize, "sanitize", "", nil, "Remove data from the output: private, sensitive")
	f.BoolVarP(&o.skipCache, "skip-cache", "", false, "Resolve every relation by traversal")
	return cmd
}

func (o getOptions) fetchOptions() (client.FetchOptions, error) {
	opts := client.FetchOptions{
		SkipCache: o.skipCache,
		Method:    strings.ToUpper(o.method),
		Fields:    o.fields,
		Zoom:      parseZoom(o.zoom),
	}

	query, err := parseQuery(o.query)
	if err != nil {
		return opts, err
	}
	opts.Query = query

	body, err := readBody(o.body)
	if err != nil {
		return opts, err
	}
	if len(o.set) > 0 {
		if body, err = client.SetFields(body, o.set...); err != nil {
			return opts, err
		}
	}
	if len(body) > 0 {
		opts.Body = body
	}

	opts.Sanitize, err = parseSanitizers(o.sanitize)
	return opts, err
}

// startNode returns the node for members, starting at base or the API root.
func startNode(c *client.Client, base string, members []string) (*client.Node, error) {
	node := c.Root()
	if base != "" {
		self, err := sjson.SetBytes(nil, "_links.self.href", base)
		if err != nil {
			return nil, err
		}
		if node, err = c.From(self); err != nil {
			return nil, err
		}
	}
	for _, m := range members {
		node = node.Follow(resolver.ParseMember(m))
	}
	return node, nil
}

func parseQuery(pairs []string) (url.Values, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	q := url.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid query parameter %q. Expected key=value", p)
		}
		q.Add(k, v)
	}
	return q, nil
}

// parseZoom turns "items:item_options:item_category" into nested zoom terms.
func parseZoom(terms []string) []client.Zoom {
	var zooms []client.Zoom
	for _, t := range terms {
		parts := strings.Split(t, ":")
		z := client.Zoom{Rel: parts[len(parts)-1]}
		for i := len(parts) - 2; i >= 0; i-- {
			z = client.Nested(parts[i], z)
		}
		zooms = append(zooms, z)
	}
	return zooms
}

func parseSanitizers(names []string) ([]sanitize.Mapper, error) {
	var mappers []sanitize.Mapper
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "private":
			mappers = append(mappers, sanitize.RemovePrivateAttributes)
		case "sensitive":
			mappers = append(mappers, sanitize.RemoveSensitiveData)
		default:
			return nil, fmt.Errorf("unknown sanitizer %q. Expected private or sensitive", n)
		}
	}
	return mappers, nil
}

// readBody returns the literal body, or the preprocessed content of the file
// named after a leading @.
func readBody(body string) ([]byte, error) {
	file, ok := strings.CutPrefix(body, "@")
	if !ok {
		return []byte(body), nil
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("unable to read body file: %w", err)
	}
	return PreprocessTemplate(raw)
}

func prettyJSON(doc []byte) string {
	return strings.TrimRight(gjson.GetBytes(doc, "@pretty").Raw, "\n")
}

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print a valid access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(c *client.Client) error {
				token, err := c.Auth().GetAccessToken(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), map[string]string{"access_token": token})
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
}
