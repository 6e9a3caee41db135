package cache

import (
	"context"
	"errors"
)

// MixedCache layers several providers. Get returns the first hit in order and
// Set writes to every provider.
type MixedCache struct {
	providers []Cache
}

// NewMixedCache combines the given providers, skipping nil values.
func NewMixedCache(providers ...Cache) (*MixedCache, error) {
	var ps []Cache
	for _, p := range providers {
		if p != nil {
			ps = append(ps, p)
		}
	}
	if len(ps) == 0 {
		return nil, ErrNoProviders
	}
	return &MixedCache{providers: ps}, nil
}

func (c *MixedCache) Get(ctx context.Context, key string) (string, bool, error) {
	var errs []error
	for _, p := range c.providers {
		v, ok, err := p.Get(ctx, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			return v, true, nil
		}
	}
	if len(errs) == len(c.providers) {
		return "", false, errors.Join(errs...)
	}
	return "", false, nil
}

func (c *MixedCache) Set(ctx context.Context, key, value string) error {
	var errs []error
	for _, p := range c.providers {
		if err := p.Set(ctx, key, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
