package resolver

import (
	"context"
	"net/url"
	"strings"
)

// Step is the input of a single resolution step.
type Step struct {
	Origin  string // scheme and host of the base URL, without a trailing slash
	Current string // URL resolved so far
	Member  Member // member to resolve next
}

// Strategy resolves a single step. ok is false when the strategy does not
// apply, in which case the next strategy is tried. A non-nil error ends the
// resolution.
type Strategy interface {
	Name() string
	TryResolve(ctx context.Context, step Step) (url string, ok bool, err error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc struct {
	Label string
	Fn    func(ctx context.Context, step Step) (string, bool, error)
}

func (s StrategyFunc) Name() string {
	return s.Label
}

func (s StrategyFunc) TryResolve(ctx context.Context, step Step) (string, bool, error) {
	return s.Fn(ctx, step)
}

// staticRels maps relations to the path that follows the API origin.
var staticRels = map[string]string{
	"https://api.foxycart.com/rels": "rels",
	"fx:property_helpers":           "property_helpers",
	"fx:reporting":                  "reporting",
	"fx:encode":                     "encode",
	"fx:token":                      "token",
}

type staticStrategy struct{}

// Static resolves relations whose URL is fixed for every API origin.
func Static() Strategy {
	return staticStrategy{}
}

func (staticStrategy) Name() string {
	return "static"
}

func (staticStrategy) TryResolve(_ context.Context, step Step) (string, bool, error) {
	if step.Member.IsID() {
		return "", false, nil
	}
	switch rel := step.Member.Rel(); rel {
	case "self":
		return step.Current, true, nil
	case "first":
		u, err := withFirstOffset(step.Current)
		if err != nil {
			return "", false, err
		}
		return u, true, nil
	default:
		if p, ok := staticRels[rel]; ok {
			return step.Origin + "/" + p, true, nil
		}
	}
	return "", false, nil
}

// withFirstOffset sets offset=0 on rawURL. Other parameters keep their order
// and encoding; repeated offset parameters collapse into the first one.
func withFirstOffset(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return "", ErrInvalidBase.Msg("invalid url: " + rawURL)
	}
	if u.Path == "" && u.Opaque == "" {
		u.Path = "/"
	}

	var params []string
	replaced := false
	if u.RawQuery != "" {
		for _, p := range strings.Split(u.RawQuery, "&") {
			key := p
			if i := strings.IndexByte(p, '='); i >= 0 {
				key = p[:i]
			}
			if name, err := url.QueryUnescape(key); err == nil && name == "offset" {
				if !replaced {
					params = append(params, "offset=0")
					replaced = true
				}
				continue
			}
			params = append(params, p)
		}
	}
	if !replaced {
		params = append(params, "offset=0")
	}
	u.RawQuery = strings.Join(params, "&")
	u.ForceQuery = false
	return u.String(), nil
}

type idStrategy struct{}

// Identifier resolves numeric members by appending them to the current URL.
func Identifier() Strategy {
	return idStrategy{}
}

func (idStrategy) Name() string {
	return "id"
}

func (idStrategy) TryResolve(_ context.Context, step Step) (string, bool, error) {
	if !step.Member.IsID() {
		return "", false, nil
	}
	return step.Current + "/" + step.Member.String(), true, nil
}
