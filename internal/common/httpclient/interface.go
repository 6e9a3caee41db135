// Package httpclient performs requests against the hypermedia API. It adds the
// API version header and a bearer token to every request, logs each exchange,
// and turns non-2xx responses into transport errors carrying the response body.
package httpclient

import "context"

// TokenSource supplies access tokens for authenticated requests.
type TokenSource interface {
	GetAccessToken(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) GetAccessToken(ctx context.Context) (string, error) {
	return f(ctx)
}

// Requester is implemented by HTTPClient and by test doubles.
type Requester interface {
	// DoRequest performs a request and returns the response of a 2xx exchange.
	DoRequest(ctx context.Context, opts RequestOptions) (*Response, error)

	// Get performs an authenticated GET and returns the response body.
	Get(ctx context.Context, url string) ([]byte, error)
}

var _ Requester = &HTTPClient{}
