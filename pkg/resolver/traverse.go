package resolver

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/foxy/foxy-go/pkg/cache"
)

// Fetcher performs an authenticated GET and returns the response body.
// Non-2xx responses must be reported as transport errors.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type traverseStrategy struct {
	fetcher Fetcher
	cache   cache.Cache
	logger  zerolog.Logger
}

// Traversal resolves a member by fetching the current URL and reading the
// href of the matching link. It always applies: a missing link is an error.
func Traversal(f Fetcher, c cache.Cache, logger zerolog.Logger) Strategy {
	return traverseStrategy{fetcher: f, cache: c, logger: logger}
}

func (traverseStrategy) Name() string {
	return "traversal"
}

func (s traverseStrategy) TryResolve(ctx context.Context, step Step) (string, bool, error) {
	if s.fetcher == nil {
		return "", false, ErrNoFetcher
	}
	body, err := s.fetcher.Get(ctx, step.Current)
	if err != nil {
		return "", false, err
	}

	href, err := LinkHref(body, step.Member.String())
	if err != nil {
		return "", false, err
	}

	if err := rememberIdentifiers(ctx, s.cache, s.logger, href); err != nil {
		s.logger.Warn().Err(err).Msg("unable to cache resolver identifiers")
	}
	return href, true, nil
}

// LinkHref returns _links[rel].href of a HAL resource. Relation names often
// contain dots and colons, so links are matched by key rather than by path.
func LinkHref(resource []byte, rel string) (string, error) {
	if !gjson.ValidBytes(resource) {
		return "", ErrInvalidResource.Msg("response is not valid JSON")
	}
	links := gjson.GetBytes(resource, "_links")
	if !links.IsObject() {
		return "", ErrRelationNotFound.Msgf("relation %q not found: resource has no links", rel)
	}
	var href string
	found := false
	links.ForEach(func(key, value gjson.Result) bool {
		if key.String() != rel {
			return true
		}
		h := value.Get("href")
		if h.Type == gjson.String && h.String() != "" {
			href = h.String()
			found = true
		}
		return false
	})
	if !found {
		return "", ErrRelationNotFound.Msgf("relation %q not found", rel)
	}
	return href, nil
}
