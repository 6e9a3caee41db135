package client

import (
	"context"
	"net/url"

	"github.com/avast/retry-go/v4"

	"github.com/foxy/foxy-go/internal/common/httpclient"
	"github.com/foxy/foxy-go/pkg/foxyerr"
	"github.com/foxy/foxy-go/pkg/resolver"
	"github.com/foxy/foxy-go/pkg/sanitize"
)

// Node is a path of relations from a base URL. Nodes are immutable; Follow
// returns a new node.
type Node struct {
	client *Client
	path   resolver.Path
	base   string
}

// Follow returns a node one member deeper.
func (n *Node) Follow(m resolver.Member) *Node {
	return &Node{client: n.client, path: n.path.Follow(m), base: n.base}
}

// Path returns the members followed so far.
func (n *Node) Path() resolver.Path {
	return n.path
}

// Base returns the URL the path starts from.
func (n *Node) Base() string {
	return n.base
}

// Resolve returns the URL of the node. With skipCache every member is
// resolved by traversing the API.
func (n *Node) Resolve(ctx context.Context, skipCache bool) (string, error) {
	return n.client.resolver.Resolve(ctx, n.path, n.base, skipCache)
}

// FetchOptions configures Fetch.
type FetchOptions struct {
	SkipCache bool
	Method    string
	Query     url.Values // appended to the resolved URL
	Body      any
	Fields    []string // merged into the fields query parameter
	Zoom      []Zoom   // embedded resources to request
	Sanitize  []sanitize.Mapper
}

// Fetch resolves the node and sends the request. When the API reports that
// no route exists for a URL built from cached ids, the node is resolved
// again by traversal and the request is sent once more.
func (n *Node) Fetch(ctx context.Context, opts FetchOptions) (*Response, error) {
	skip := opts.SkipCache
	attempts := uint(2)
	if skip {
		attempts = 1
	}

	var resolveErr error
	resp, err := retry.DoWithData(
		func() (*Response, error) {
			target, err := n.Resolve(ctx, skip)
			if err != nil {
				resolveErr = err
				return nil, err
			}
			target, err = httpclient.AppendQuery(target, requestQuery(opts))
			if err != nil {
				resolveErr = err
				return nil, err
			}
			return n.client.FetchRaw(ctx, RawRequest{
				URL:      target,
				Method:   opts.Method,
				Body:     opts.Body,
				Sanitize: opts.Sanitize,
			})
		},
		retry.Attempts(attempts),
		retry.RetryIf(func(err error) bool {
			return resolveErr == nil && foxyerr.IsNoRoute(err)
		}),
		retry.OnRetry(func(_ uint, _ error) {
			skip = true
			n.client.logger.Error().Msg("smart resolution failed, attempting tree traversal")
		}),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		n.client.logger.Error().Err(err).Str("path", n.path.String()).Msg("request failed")
		return nil, err
	}
	return resp, nil
}
