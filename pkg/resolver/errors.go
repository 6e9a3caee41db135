package resolver

import "github.com/foxy/foxy-go/pkg/foxyerr"

var (
	// ErrRelationNotFound is returned when a traversed resource has no link
	// for the requested relation.
	ErrRelationNotFound = foxyerr.ErrResolution.New("relation not found")

	// ErrInvalidResource is returned when a traversed response is not a JSON
	// resource with a _links object.
	ErrInvalidResource = foxyerr.ErrResolution.New("invalid resource")

	ErrInvalidBase = foxyerr.ErrInvalidURL.New("invalid base url")
	ErrNoFetcher   = foxyerr.ErrConfiguration.New("resolver has no fetcher")
)
