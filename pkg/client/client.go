// Package client is the entry point for talking to the hypermedia API. A
// Client holds the integration credentials; Follow and From start building
// a path of relations that is resolved to a URL and fetched on demand.
//
//	c, err := client.New(auth.Options{ClientID: id, ClientSecret: secret, RefreshToken: token})
//	attrs, err := c.Follow(resolver.Rel("fx:store")).
//		Follow(resolver.Rel("fx:attributes")).
//		Fetch(ctx, client.FetchOptions{})
package client

import (
	"bytes"
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/foxy/foxy-go/internal/common/httpclient"
	"github.com/foxy/foxy-go/pkg/auth"
	"github.com/foxy/foxy-go/pkg/resolver"
	"github.com/foxy/foxy-go/pkg/sanitize"
	"github.com/foxy/foxy-go/pkg/signer"
)

// Client is an authenticated API client.
type Client struct {
	auth      *auth.Auth
	transport *httpclient.HTTPClient
	resolver  *resolver.Resolver
	signer    *signer.Signer
	logger    zerolog.Logger
}

// New validates opts and returns a Client. Tokens and resolver ids share
// opts.Cache, an in-memory cache when nil.
func New(opts auth.Options) (*Client, error) {
	a, err := auth.New(opts)
	if err != nil {
		return nil, err
	}
	c := &Client{
		auth:      a,
		transport: a.HTTP(),
		logger:    a.Logger(),
		signer:    signer.New(a.ClientSecret()).SetLogger(a.Logger()),
	}
	c.resolver = resolver.New(resolver.Options{
		Cache:   a.Cache(),
		Fetcher: c.transport,
		Logger:  a.Logger(),
	})
	return c, nil
}

// Auth returns the token provider of the client.
func (c *Client) Auth() *auth.Auth {
	return c.auth
}

// Endpoint returns the API root.
func (c *Client) Endpoint() string {
	return c.auth.Endpoint()
}

// Signer returns an HMAC signer keyed with the client secret.
func (c *Client) Signer() *signer.Signer {
	return c.signer
}

// Follow starts a path at the API root.
func (c *Client) Follow(m resolver.Member) *Node {
	return &Node{client: c, path: resolver.Path{m}, base: c.Endpoint()}
}

// Root returns a node for the API root itself.
func (c *Client) Root() *Node {
	return &Node{client: c, base: c.Endpoint()}
}

// From starts a path at a resource previously returned by the API, using its
// self link as the base URL.
func (c *Client) From(resource []byte) (*Node, error) {
	self := gjson.GetBytes(resource, "_links.self.href")
	if self.Type != gjson.String || self.String() == "" {
		return nil, ErrNoSelfLink
	}
	return &Node{client: c, base: self.String()}, nil
}

// RawRequest describes a request to an already known URL.
type RawRequest struct {
	URL      string
	Method   string            // GET when empty
	Body     any               // string and []byte are sent as is, anything else as JSON
	Sanitize []sanitize.Mapper // applied to the response after normalization
}

// FetchRaw sends a request without path resolution and returns the
// normalized response.
func (c *Client) FetchRaw(ctx context.Context, req RawRequest) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.DoRequest(ctx, httpclient.RequestOptions{
		Method: method,
		URL:    req.URL,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	data := resp.Body
	if len(bytes.TrimSpace(data)) > 0 {
		mappers := append([]sanitize.Mapper{normalizeLocale, normalizeDates}, req.Sanitize...)
		data, err = sanitize.Apply(data, sanitize.All(mappers...))
		if err != nil {
			return nil, ErrInvalidResponse.MsgErr(method+" "+req.URL+" returned invalid JSON", err).SetStatusCode(resp.StatusCode)
		}
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(b), nil
	case []byte:
		return b, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, ErrEncodeBody.Err(err)
	}
	return data, nil
}
