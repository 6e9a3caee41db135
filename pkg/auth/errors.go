package auth

import "github.com/foxy/foxy-go/pkg/foxyerr"

var (
	ErrMissingClientID     = foxyerr.ErrConfiguration.New("config.clientId or FOXY_API_CLIENT_ID is missing")
	ErrMissingClientSecret = foxyerr.ErrConfiguration.New("config.clientSecret or FOXY_API_CLIENT_SECRET is missing")
	ErrMissingRefreshToken = foxyerr.ErrConfiguration.New("config.refreshToken or FOXY_API_REFRESH_TOKEN is missing")
	ErrInvalidTokenReply   = foxyerr.ErrTransport.New("invalid token response")
)
