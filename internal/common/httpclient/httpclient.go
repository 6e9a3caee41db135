package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/foxy/foxy-go/internal/common/logtrace"
	"github.com/foxy/foxy-go/pkg/foxyerr"
)

const (
	// VersionHeader carries the API version on every request.
	VersionHeader = "FOXY-API-VERSION"

	// DefaultVersion is the API version sent when none is configured.
	DefaultVersion = "1"

	contentTypeJSON = "application/json"
	acceptHAL       = "application/hal+json"
)

var (
	ErrRequest      = foxyerr.ErrTransport.New("request failed")
	ErrInvalidURL   = foxyerr.ErrInvalidURL.New("invalid request url")
	ErrNoToken      = foxyerr.ErrConfiguration.New("no access token available")
	ErrReadResponse = foxyerr.ErrTransport.New("unable to read response body")
)

// Options configures an HTTPClient.
type Options struct {
	Version    string       // value of the version header, DefaultVersion when empty
	Tokens     TokenSource  // required unless every request is anonymous
	HTTPClient *http.Client // defaults to a client with a 30 second timeout
	Logger     zerolog.Logger
}

// HTTPClient sends API requests.
type HTTPClient struct {
	version    string
	tokens     TokenSource
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates an HTTPClient from opts.
func NewClient(opts Options) *HTTPClient {
	version := opts.Version
	if version == "" {
		version = DefaultVersion
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{
		version:    version,
		tokens:     opts.Tokens,
		httpClient: hc,
		logger:     opts.Logger,
	}
}

// Version returns the API version sent with each request.
func (c *HTTPClient) Version() string {
	return c.version
}

// RequestOptions describes a single request.
type RequestOptions struct {
	Method      string     // GET when empty
	URL         string     // absolute URL
	Query       url.Values // appended to the query already present in URL
	Body        []byte     // optional request body
	ContentType string     // defaults to application/json when Body is set
	Anonymous   bool       // skip the Authorization header
}

// Response is a successful API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// DoRequest performs the request described by opts. Responses outside the
// 2xx range are returned as transport errors whose message is the raw body.
func (c *HTTPClient) DoRequest(ctx context.Context, opts RequestOptions) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := AppendQuery(opts.URL, opts.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, ErrInvalidURL.MsgErr("unable to create request for "+target, err)
	}

	req.Header.Set(VersionHeader, c.version)
	req.Header.Set("Accept", acceptHAL)
	if opts.Body != nil {
		ct := opts.ContentType
		if ct == "" {
			ct = contentTypeJSON
		}
		req.Header.Set("Content-Type", ct)
	}
	if !opts.Anonymous {
		if c.tokens == nil {
			return nil, ErrNoToken
		}
		token, err := c.tokens.GetAccessToken(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	requestID := logtrace.RequestIdFromContext(ctx)
	if requestID == "" {
		requestID = logtrace.NewRequestID()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("request_id", requestID).Msgf("%s %s", method, target)
		return nil, ErrRequest.MsgErr(fmt.Sprintf("%s %s failed", method, target), err)
	}
	defer resp.Body.Close()

	c.logger.Debug().Str("request_id", requestID).Msgf("%s %s [%s]", method, target, resp.Status)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrReadResponse.Err(err).SetStatusCode(resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, foxyerr.Transport(resp.StatusCode, string(data))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// Get performs an authenticated GET of rawURL and returns the body.
func (c *HTTPClient) Get(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.DoRequest(ctx, RequestOptions{Method: http.MethodGet, URL: rawURL})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// AppendQuery adds the values of q to the query of rawURL, keeping existing
// parameters in place.
func AppendQuery(rawURL string, q url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return "", ErrInvalidURL.Msg("invalid request url: " + rawURL)
	}
	if len(q) == 0 {
		return rawURL, nil
	}
	extra := q.Encode()
	if u.RawQuery == "" {
		u.RawQuery = extra
	} else {
		u.RawQuery += "&" + extra
	}
	return u.String(), nil
}
