package client

import (
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/foxy/foxy-go/pkg/resolver"
)

// Response is a normalized API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Get returns the value at a gjson path of the body.
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// Link returns the href of a relation of the resource.
func (r *Response) Link(rel string) (string, error) {
	return resolver.LinkHref(r.Body, rel)
}

// Embedded returns the resources embedded under rel, such as the items of
// a collection.
func (r *Response) Embedded(rel string) []gjson.Result {
	var out []gjson.Result
	gjson.GetBytes(r.Body, "_embedded").ForEach(func(key, value gjson.Result) bool {
		if key.String() != rel {
			return true
		}
		if value.IsArray() {
			out = value.Array()
		} else {
			out = []gjson.Result{value}
		}
		return false
	})
	return out
}
