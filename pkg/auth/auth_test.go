package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxy/foxy-go/pkg/cache"
	"github.com/foxy/foxy-go/pkg/foxyerr"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{EnvClientID, EnvClientSecret, EnvRefreshToken, EnvEndpoint} {
		t.Setenv(k, "")
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	clearEnv(t)

	_, err := New(Options{})
	assert.ErrorIs(t, err, ErrMissingClientID)
	assert.ErrorIs(t, err, foxyerr.ErrConfiguration)

	_, err = New(Options{ClientID: "0"})
	assert.ErrorIs(t, err, ErrMissingClientSecret)

	_, err = New(Options{ClientID: "0", ClientSecret: "1"})
	assert.ErrorIs(t, err, ErrMissingRefreshToken)
	assert.Equal(t, "config.refreshToken or FOXY_API_REFRESH_TOKEN is missing", err.Error())
}

func TestNewDefaultsAndEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvClientID, "it's me!")
	t.Setenv(EnvClientSecret, "mario!")
	t.Setenv(EnvRefreshToken, "cosa esta...?")

	a, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, "it's me!", a.ClientID())
	assert.Equal(t, "mario!", a.ClientSecret())
	assert.Equal(t, "cosa esta...?", a.RefreshToken())
	assert.Equal(t, DefaultEndpoint, a.Endpoint())
	assert.Equal(t, "1", a.Version())
	assert.IsType(t, &cache.MemoryCache{}, a.Cache())

	disk, err := cache.NewDiskCache(t.TempDir())
	require.NoError(t, err)
	a, err = New(Options{ClientID: "0", ClientSecret: "1", RefreshToken: "42", Cache: disk, Endpoint: "https://api.foxy.test/"})
	require.NoError(t, err)
	assert.Equal(t, "0", a.ClientID())
	assert.Same(t, disk, a.Cache())
	assert.Equal(t, "https://api.foxy.test", a.Endpoint())
}

func TestGetAccessToken(t *testing.T) {
	clearEnv(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/token", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "1", r.Header.Get("FOXY-API-VERSION"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		form, err := url.ParseQuery(string(body))
		assert.NoError(t, err)
		assert.Equal(t, "refresh_token", form.Get("grant_type"))
		assert.Equal(t, "42", form.Get("refresh_token"))
		assert.Equal(t, "1", form.Get("client_secret"))
		assert.Equal(t, "0", form.Get("client_id"))
		w.Write([]byte(`{"access_token":"token_mock","expires_in":3600}`))
	}))
	defer srv.Close()

	mem := cache.NewMemoryCache()
	a, err := New(Options{
		ClientID: "0", ClientSecret: "1", RefreshToken: "42",
		Endpoint: srv.URL, Cache: mem,
		Now: func() time.Time { return now },
	})
	require.NoError(t, err)

	token, err := a.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token_mock", token)

	raw, ok, err := mem.Get(context.Background(), TokenCacheKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"value":"token_mock","expiresAt":1709298000000}`, raw)

	token, err = a.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token_mock", token)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetAccessTokenFromCache(t *testing.T) {
	clearEnv(t)
	now := time.Now()
	mem := cache.NewMemoryCache()
	stored := `{"value":"cached_token_mock","expiresAt":` + itoa(now.Add(time.Hour).UnixMilli()) + `}`
	require.NoError(t, mem.Set(context.Background(), TokenCacheKey, stored))

	a, err := New(Options{ClientID: "0", ClientSecret: "1", RefreshToken: "42", Cache: mem, Endpoint: "http://127.0.0.1:1"})
	require.NoError(t, err)
	token, err := a.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached_token_mock", token)
}

func TestGetAccessTokenRefreshesNearExpiry(t *testing.T) {
	clearEnv(t)
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"fresh","expires_in":3600}`))
	}))
	defer srv.Close()

	mem := cache.NewMemoryCache()
	// expires inside the safety margin
	stored := `{"value":"stale","expiresAt":` + itoa(now.Add(4*time.Minute).UnixMilli()) + `}`
	require.NoError(t, mem.Set(context.Background(), TokenCacheKey, stored))

	a, err := New(Options{ClientID: "0", ClientSecret: "1", RefreshToken: "42", Cache: mem, Endpoint: srv.URL})
	require.NoError(t, err)
	token, err := a.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
}

func TestGetAccessTokenErrorResponse(t *testing.T) {
	clearEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("whoops!"))
	}))
	defer srv.Close()

	a, err := New(Options{ClientID: "0", ClientSecret: "1", RefreshToken: "42", Endpoint: srv.URL})
	require.NoError(t, err)
	_, err = a.GetAccessToken(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, foxyerr.ErrTransport)
	assert.Equal(t, "whoops!", err.Error())
}

func TestStoredTokenValid(t *testing.T) {
	now := time.Now()
	assert.True(t, StoredToken{Value: "v", ExpiresAt: now.Add(10 * time.Minute).UnixMilli()}.Valid(now))
	assert.False(t, StoredToken{Value: "v", ExpiresAt: now.Add(5 * time.Minute).UnixMilli()}.Valid(now))
	assert.False(t, StoredToken{Value: "", ExpiresAt: now.Add(time.Hour).UnixMilli()}.Valid(now))
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
