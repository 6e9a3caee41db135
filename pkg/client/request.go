package client

import (
	"net/url"
	"slices"
	"strings"

	jsonitor "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

// Zoom names a relation to embed in a response, optionally with relations
// to embed within it.
type Zoom struct {
	Rel      string
	Children []Zoom
}

// Nested returns a zoom on rel with the given children.
func Nested(rel string, children ...Zoom) Zoom {
	return Zoom{Rel: rel, Children: children}
}

// Embed returns a flat zoom list.
func Embed(rels ...string) []Zoom {
	out := make([]Zoom, len(rels))
	for i, r := range rels {
		out[i] = Zoom{Rel: r}
	}
	return out
}

// SerializeZoom renders zooms the way the zoom query parameter expects:
// entries are comma separated and nesting is written as parent:child, with
// the parent repeated for every child.
func SerializeZoom(zooms []Zoom) string {
	var parts []string
	for _, z := range zooms {
		parts = append(parts, z.terms()...)
	}
	return strings.Join(parts, ",")
}

func (z Zoom) terms() []string {
	if len(z.Children) == 0 {
		return []string{z.Rel}
	}
	var out []string
	for _, c := range z.Children {
		for _, t := range c.terms() {
			out = append(out, z.Rel+":"+t)
		}
	}
	return out
}

// MergeFields returns the fields query value with extra appended. Values
// already in the query keep their position and duplicates are dropped.
func MergeFields(query []string, extra []string) string {
	var out []string
	add := func(f string) {
		f = strings.TrimSpace(f)
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	for _, q := range query {
		for _, f := range strings.Split(q, ",") {
			add(f)
		}
	}
	for _, f := range extra {
		add(f)
	}
	return strings.Join(out, ",")
}

func requestQuery(opts FetchOptions) url.Values {
	q := url.Values{}
	for k, v := range opts.Query {
		q[k] = append([]string(nil), v...)
	}
	if len(opts.Fields) > 0 {
		q.Set("fields", MergeFields(q["fields"], opts.Fields))
	}
	if len(opts.Zoom) > 0 {
		q.Set("zoom", SerializeZoom(opts.Zoom))
	}
	return q
}

// SetFields applies path=value assignments to a JSON body using sjson paths.
// Values that are valid JSON literals (numbers, booleans, null, objects and
// arrays) are inserted as such; anything else is stored as a string.
func SetFields(body []byte, assignments ...string) ([]byte, error) {
	if len(body) == 0 {
		body = []byte("{}")
	}
	for _, a := range assignments {
		path, value, ok := strings.Cut(a, "=")
		if !ok || path == "" {
			return nil, ErrInvalidField.Msg("expected path=value, got " + a)
		}
		var err error
		if isJSONLiteral(value) {
			body, err = sjson.SetRawBytes(body, path, []byte(value))
		} else {
			body, err = sjson.SetBytes(body, path, value)
		}
		if err != nil {
			return nil, ErrInvalidField.MsgErr("unable to set "+path, err)
		}
	}
	return body, nil
}

func isJSONLiteral(s string) bool {
	if s == "" || !gjson.Valid(s) {
		return false
	}
	return gjson.Parse(s).Type != gjson.String
}
