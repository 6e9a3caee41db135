package client

import (
	"regexp"
	"slices"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/foxy/foxy-go/pkg/sanitize"
)

var tzOffset = regexp.MustCompile(`([+-])(\d{2})(\d{2})$`)

// normalizeLocale rewrites locale codes such as en_US to en-US.
func normalizeLocale(n *sanitize.Node) {
	if n.Key != "locale_code" || n.InArray || !isNonEmptyString(n.Value) {
		return
	}
	n.Update(strings.Replace(n.Value.String(), "_", "-", 1))
}

// normalizeDates rewrites timezone offsets such as +0300 to +03:00 in any
// value whose key contains a date part (date_created, date_modified, ...).
func normalizeDates(n *sanitize.Node) {
	if n.InArray || n.IsRoot() || n.Key == "locale_code" || !isNonEmptyString(n.Value) {
		return
	}
	if !slices.Contains(strings.Split(n.Key, "_"), "date") {
		return
	}
	v := n.Value.String()
	if fixed := tzOffset.ReplaceAllString(v, "$1$2:$3"); fixed != v {
		n.Update(fixed)
	}
}

func isNonEmptyString(v gjson.Result) bool {
	return v.Type == gjson.String && v.Str != ""
}
