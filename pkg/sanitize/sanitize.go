// Package sanitize strips private and sensitive data from API responses
// before they are passed on, for example to a browser.
//
//	clean, err := sanitize.Apply(body, sanitize.All(
//		sanitize.RemovePrivateAttributes,
//		sanitize.RemoveProperties("third_party_id"),
//	))
package sanitize

import (
	"slices"
	"strings"

	"github.com/tidwall/sjson"
)

var sensitivePrefixes = []string{"password", "third_party_id"}

// All runs several mappers on each node, in order.
func All(mappers ...Mapper) Mapper {
	return func(n *Node) {
		for _, m := range mappers {
			if n.removed || n.err != nil {
				return
			}
			m(n)
		}
	}
}

// RemovePrivateAttributes keeps only the public entries of embedded
// fx:attributes collections.
func RemovePrivateAttributes(n *Node) {
	if n.Key != "fx:attributes" || n.InArray || !n.Value.IsArray() {
		return
	}
	out := []byte("[]")
	for _, attr := range n.Value.Array() {
		if attr.Get("visibility").String() != "public" {
			continue
		}
		var err error
		out, err = sjson.SetRawBytes(out, "-1", []byte(attr.Raw))
		if err != nil {
			n.err = ErrUpdate.Err(err)
			return
		}
	}
	n.UpdateRaw(string(out))
}

// RemoveSensitiveData drops password hashes and internal identifiers.
func RemoveSensitiveData(n *Node) {
	if n.IsRoot() || n.InArray {
		return
	}
	for _, prefix := range sensitivePrefixes {
		if strings.HasPrefix(n.Key, prefix) {
			n.Remove()
			return
		}
	}
}

// RemoveAllLinksExcept returns a mapper dropping every HAL link whose
// relation is not listed in keep.
func RemoveAllLinksExcept(keep ...string) Mapper {
	return func(n *Node) {
		if n.IsRoot() || n.InArray || n.ParentKey() != "_links" {
			return
		}
		if !slices.Contains(keep, n.Key) {
			n.Remove()
		}
	}
}

// RemoveProperties returns a mapper dropping every property named in keys.
func RemoveProperties(keys ...string) Mapper {
	return func(n *Node) {
		if n.IsRoot() || n.InArray {
			return
		}
		if slices.Contains(keys, n.Key) {
			n.Remove()
		}
	}
}
