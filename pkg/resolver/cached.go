package resolver

import (
	"context"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/foxy/foxy-go/pkg/cache"
)

// Cache keys holding the default store and user ids.
const (
	StoreCacheKey = "fx_resolver_store"
	UserCacheKey  = "fx_resolver_user"
)

var (
	userIDRegex  = regexp.MustCompile(`(?i)\.\w+/users/(\d+)`)
	storeIDRegex = regexp.MustCompile(`(?i)\.\w+/stores/(\d+)`)
)

// storeScopedRels are collections living directly under the default store.
var storeScopedRels = map[string]bool{
	"fx:users":                        true,
	"fx:attributes":                   true,
	"fx:user_accesses":                true,
	"fx:customers":                    true,
	"fx:carts":                        true,
	"fx:transactions":                 true,
	"fx:subscriptions":                true,
	"fx:process_subscription_webhook": true,
	"fx:item_categories":              true,
	"fx:taxes":                        true,
	"fx:payment_method_sets":          true,
	"fx:coupons":                      true,
	"fx:template_sets":                true,
	"fx:template_configs":             true,
	"fx:cart_templates":               true,
	"fx:cart_include_templates":       true,
	"fx:checkout_templates":           true,
	"fx:receipt_templates":            true,
	"fx:email_templates":              true,
	"fx:error_entries":                true,
	"fx:downloadables":                true,
	"fx:payment_gateways":             true,
	"fx:hosted_payment_gateways":      true,
	"fx:fraud_protections":            true,
	"fx:payment_methods_expiring":     true,
	"fx:store_shipping_methods":       true,
	"fx:integrations":                 true,
	"fx:native_integrations":          true,
}

type cacheStrategy struct {
	cache  cache.Cache
	logger zerolog.Logger
}

// CacheLookup resolves user and store scoped relations from the ids recorded
// by earlier traversals. A relation whose id is not cached does not apply.
func CacheLookup(c cache.Cache, logger zerolog.Logger) Strategy {
	return cacheStrategy{cache: c, logger: logger}
}

func (cacheStrategy) Name() string {
	return "cache"
}

func (s cacheStrategy) TryResolve(ctx context.Context, step Step) (string, bool, error) {
	if step.Member.IsID() || s.cache == nil {
		return "", false, nil
	}
	rel := step.Member.Rel()

	switch rel {
	case "fx:user":
		if user, ok := s.lookup(ctx, UserCacheKey); ok {
			return step.Origin + "/users/" + user, true, nil
		}
	case "fx:stores":
		if user, ok := s.lookup(ctx, UserCacheKey); ok {
			return step.Origin + "/users/" + user + "/stores", true, nil
		}
	case "fx:store":
		if store, ok := s.lookup(ctx, StoreCacheKey); ok {
			return step.Origin + "/stores/" + store, true, nil
		}
	case "fx:subscription_settings":
		if store, ok := s.lookup(ctx, StoreCacheKey); ok {
			return step.Origin + "/store_subscription_settings/" + store, true, nil
		}
	default:
		if !storeScopedRels[rel] {
			return "", false, nil
		}
		if store, ok := s.lookup(ctx, StoreCacheKey); ok {
			return step.Origin + "/stores/" + store + "/" + rel[3:], true, nil
		}
	}
	return "", false, nil
}

// lookup treats read failures as a miss so that resolution falls back to traversal.
func (s cacheStrategy) lookup(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("unable to read resolver cache")
		return "", false
	}
	return v, ok && v != ""
}

// rememberIdentifiers stores the user and store ids found in a resolved URL
// as the new defaults.
func rememberIdentifiers(ctx context.Context, c cache.Cache, logger zerolog.Logger, resolved string) error {
	if c == nil {
		return nil
	}
	if m := userIDRegex.FindStringSubmatch(resolved); m != nil {
		if err := c.Set(ctx, UserCacheKey, m[1]); err != nil {
			return err
		}
		logger.Debug().Msgf("user %s has been set as default", m[1])
	}
	if m := storeIDRegex.FindStringSubmatch(resolved); m != nil {
		if err := c.Set(ctx, StoreCacheKey, m[1]); err != nil {
			return err
		}
		logger.Debug().Msgf("store %s has been set as default", m[1])
	}
	return nil
}
