package cache

import "github.com/foxy/foxy-go/pkg/foxyerr"

var (
	ErrCache       = foxyerr.ErrConfiguration.New("cache error")
	ErrInvalidKey  = ErrCache.New("invalid cache key")
	ErrCacheRead   = ErrCache.New("unable to read cache entry")
	ErrCacheWrite  = ErrCache.New("unable to write cache entry")
	ErrNoProviders = ErrCache.New("mixed cache requires at least one provider")
)
