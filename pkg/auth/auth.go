// Package auth obtains OAuth2 access tokens for the API with the refresh token
// grant and keeps them in a cache until shortly before they expire.
package auth

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	jsonitor "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/foxy/foxy-go/internal/common/httpclient"
	"github.com/foxy/foxy-go/pkg/cache"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

const (
	// TokenCacheKey is the cache key holding the current StoredToken.
	TokenCacheKey = "fx_auth_access_token"

	// DefaultEndpoint is the API root used when neither options nor the
	// environment provide one.
	DefaultEndpoint = "https://api.foxycart.com"

	// ExpiryMargin is how long before its expiry a token stops being reused.
	ExpiryMargin = 300 * time.Second
)

// Environment variables consulted for values missing from Options.
const (
	EnvClientID     = "FOXY_API_CLIENT_ID"
	EnvClientSecret = "FOXY_API_CLIENT_SECRET"
	EnvRefreshToken = "FOXY_API_REFRESH_TOKEN"
	EnvEndpoint     = "FOXY_API_URL"
)

// Options configures Auth. Empty credential fields fall back to the
// corresponding environment variables.
type Options struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Endpoint     string
	Version      string
	Cache        cache.Cache
	HTTPClient   *http.Client
	Logger       zerolog.Logger
	Now          func() time.Time
}

// StoredToken is the cached representation of an access token.
type StoredToken struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expiresAt"` // unix milliseconds
}

// Valid reports whether the token can still be used at now.
func (t StoredToken) Valid(now time.Time) bool {
	return t.Value != "" && t.ExpiresAt > now.Add(ExpiryMargin).UnixMilli()
}

// Auth holds integration credentials and hands out access tokens.
type Auth struct {
	clientID     string
	clientSecret string
	refreshToken string
	endpoint     string
	version      string
	cache        cache.Cache
	transport    *httpclient.HTTPClient
	logger       zerolog.Logger
	now          func() time.Time
}

var _ httpclient.TokenSource = (*Auth)(nil)

// New validates the credentials and returns an Auth.
func New(opts Options) (*Auth, error) {
	clientID := firstNonEmpty(opts.ClientID, os.Getenv(EnvClientID))
	if clientID == "" {
		return nil, ErrMissingClientID
	}
	clientSecret := firstNonEmpty(opts.ClientSecret, os.Getenv(EnvClientSecret))
	if clientSecret == "" {
		return nil, ErrMissingClientSecret
	}
	refreshToken := firstNonEmpty(opts.RefreshToken, os.Getenv(EnvRefreshToken))
	if refreshToken == "" {
		return nil, ErrMissingRefreshToken
	}

	a := &Auth{
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		endpoint:     strings.TrimSuffix(firstNonEmpty(opts.Endpoint, os.Getenv(EnvEndpoint), DefaultEndpoint), "/"),
		version:      firstNonEmpty(opts.Version, httpclient.DefaultVersion),
		cache:        opts.Cache,
		logger:       opts.Logger,
		now:          opts.Now,
	}
	if a.cache == nil {
		a.cache = cache.NewMemoryCache()
	}
	if a.now == nil {
		a.now = time.Now
	}
	a.transport = httpclient.NewClient(httpclient.Options{
		Version:    a.version,
		Tokens:     a,
		HTTPClient: opts.HTTPClient,
		Logger:     opts.Logger,
	})
	return a, nil
}

// ClientID returns the OAuth2 client id.
func (a *Auth) ClientID() string {
	return a.clientID
}

// ClientSecret returns the OAuth2 client secret.
func (a *Auth) ClientSecret() string {
	return a.clientSecret
}

// RefreshToken returns the long lived refresh token.
func (a *Auth) RefreshToken() string {
	return a.refreshToken
}

// Endpoint returns the API root without a trailing slash.
func (a *Auth) Endpoint() string {
	return a.endpoint
}

// Version returns the API version sent with requests.
func (a *Auth) Version() string {
	return a.version
}

// Cache returns the cache holding tokens and resolver ids.
func (a *Auth) Cache() cache.Cache {
	return a.cache
}

// Logger returns the logger used by this instance.
func (a *Auth) Logger() zerolog.Logger {
	return a.logger
}

// HTTP returns a transport authenticated with this instance's tokens.
func (a *Auth) HTTP() *httpclient.HTTPClient {
	return a.transport
}

// GetAccessToken returns the cached token while it is valid, otherwise it
// requests a new one and stores it before returning.
func (a *Auth) GetAccessToken(ctx context.Context) (string, error) {
	if raw, ok, err := a.cache.Get(ctx, TokenCacheKey); err != nil {
		a.logger.Warn().Err(err).Msg("unable to read cached access token")
	} else if ok {
		var stored StoredToken
		if err := json.Unmarshal([]byte(raw), &stored); err == nil && stored.Valid(a.now()) {
			return stored.Value, nil
		}
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {a.refreshToken},
		"client_secret": {a.clientSecret},
		"client_id":     {a.clientID},
	}
	resp, err := a.transport.DoRequest(ctx, httpclient.RequestOptions{
		Method:      http.MethodPost,
		URL:         a.endpoint + "/token",
		Body:        []byte(form.Encode()),
		ContentType: "application/x-www-form-urlencoded",
		Anonymous:   true,
	})
	if err != nil {
		return "", err
	}

	var reply struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(resp.Body, &reply); err != nil || reply.AccessToken == "" {
		return "", ErrInvalidTokenReply.Msg(string(resp.Body))
	}

	stored := StoredToken{
		Value:     reply.AccessToken,
		ExpiresAt: a.now().Add(time.Duration(reply.ExpiresIn) * time.Second).UnixMilli(),
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return "", err
	}
	if err := a.cache.Set(ctx, TokenCacheKey, string(data)); err != nil {
		a.logger.Warn().Err(err).Msg("unable to cache access token")
	}
	return reply.AccessToken, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
