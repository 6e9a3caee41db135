// Package resolver turns a path of relation names and ids into a resource URL
// while issuing as few API requests as possible. Each step is resolved by the
// first applicable strategy, in order: static relations, relations derived from
// cached store and user ids, numeric ids, and finally a network traversal.
package resolver

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/foxy/foxy-go/pkg/cache"
)

// Options configures a Resolver.
type Options struct {
	Cache   cache.Cache
	Fetcher Fetcher
	Logger  zerolog.Logger
}

// Resolver resolves paths. It is safe for concurrent use when its cache and
// fetcher are.
type Resolver struct {
	offline   []Strategy
	traversal Strategy
	logger    zerolog.Logger
}

// New returns a Resolver using the default strategy order.
func New(opts Options) *Resolver {
	return NewWithStrategies(opts.Logger,
		Traversal(opts.Fetcher, opts.Cache, opts.Logger),
		Static(),
		CacheLookup(opts.Cache, opts.Logger),
		Identifier(),
	)
}

// NewWithStrategies returns a Resolver that tries offline strategies in the
// given order before falling back to traversal. Nil strategies are ignored.
func NewWithStrategies(logger zerolog.Logger, traversal Strategy, offline ...Strategy) *Resolver {
	out := make([]Strategy, 0, len(offline))
	for _, s := range offline {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Resolver{offline: out, traversal: traversal, logger: logger}
}

// Resolve walks path starting at base. With skipCache every step is resolved
// by traversal.
func (r *Resolver) Resolve(ctx context.Context, path Path, base string, skipCache bool) (string, error) {
	if len(path) == 0 {
		return base, nil
	}

	origin, err := Origin(base)
	if err != nil {
		return "", err
	}

	r.logger.Debug().Msgf("looking up %s", path)

	current := base
	for i, m := range path {
		r.logger.Debug().Msgf("[%d/%d] %s => [%s]", i+1, len(path), current, m)

		step := Step{Origin: origin, Current: current, Member: m}
		next, err := r.resolveStep(ctx, step, skipCache)
		if err != nil {
			return "", err
		}
		current = next
	}

	r.logger.Debug().Msgf("found %s", current)
	return current, nil
}

func (r *Resolver) resolveStep(ctx context.Context, step Step, skipCache bool) (string, error) {
	if !skipCache {
		for _, s := range r.offline {
			u, ok, err := s.TryResolve(ctx, step)
			if err != nil {
				return "", err
			}
			if ok {
				r.logger.Debug().Str("strategy", s.Name()).Msgf("resolved offline: %s", u)
				return u, nil
			}
		}
	}
	if r.traversal == nil {
		return "", ErrNoFetcher
	}
	u, _, err := r.traversal.TryResolve(ctx, step)
	if err != nil {
		return "", err
	}
	r.logger.Debug().Str("strategy", r.traversal.Name()).Msgf("resolved online: %s", u)
	return u, nil
}

// Origin returns the scheme and host of an absolute URL.
func Origin(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", ErrInvalidBase.Msg("invalid base url: " + base)
	}
	return u.Scheme + "://" + u.Host, nil
}
