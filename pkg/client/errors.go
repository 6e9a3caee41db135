package client

import "github.com/foxy/foxy-go/pkg/foxyerr"

var (
	ErrNoSelfLink      = foxyerr.ErrResolution.New("resource has no self link")
	ErrInvalidResponse = foxyerr.ErrTransport.New("response is not valid JSON")
	ErrEncodeBody      = foxyerr.ErrConfiguration.New("unable to encode request body")
	ErrInvalidField    = foxyerr.ErrConfiguration.New("invalid body field")
)
