// Package foxyerr declares the error kinds returned by the client packages.
// Every error produced by the module derives from one of these roots, so callers
// can classify failures with errors.Is.
package foxyerr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/foxy/foxy-go/internal/common/apperrors"
)

// Error is the chained error type used by all packages.
type Error = apperrors.Error

var (
	// ErrConfiguration reports missing or invalid credentials, secrets or settings.
	ErrConfiguration Error = apperrors.New("configuration error")

	// ErrResolution reports that a relation could not be resolved to a URL.
	ErrResolution Error = apperrors.New("resolution error")

	// ErrTransport reports a failed API exchange. The message of a derived error
	// is the raw response body and its status code is the response status.
	ErrTransport Error = apperrors.New("transport error").SetStatusCode(http.StatusBadGateway)

	// ErrSigningAmbiguity reports a form that declares more than one unprefixed code.
	ErrSigningAmbiguity Error = apperrors.New("signing ambiguity")

	// ErrInvalidURL reports a URL that cannot be parsed as an absolute URL.
	ErrInvalidURL Error = apperrors.New("invalid url")
)

// noRouteMarker is the fragment of an API error body meaning the requested
// path does not exist, typically because a cached identifier is stale.
const noRouteMarker = "No route found"

// IsNoRoute reports whether err is a transport error for a missing route.
func IsNoRoute(err error) bool {
	if err == nil || !errors.Is(err, ErrTransport) {
		return false
	}
	return strings.Contains(err.Error(), noRouteMarker)
}

// Transport builds a transport error from a response status and body.
func Transport(status int, body string) Error {
	return ErrTransport.New(body).SetStatusCode(status)
}
