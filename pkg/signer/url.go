package signer

import (
	"net/url"
	"regexp"
	"strings"
)

var signedRegex = regexp.MustCompile(`\|\|[0-9a-fA-F]{64}`)

// IsSigned reports whether s already carries a signature.
func IsSigned(s string) bool {
	return signedRegex.MatchString(s)
}

// URL signs every query argument of rawURL against the value of its code
// argument. URLs without a code are returned unchanged, and so are URLs that
// are already signed.
func (s *Signer) URL(rawURL string) (string, error) {
	if IsSigned(rawURL) {
		l := s.log()
		l.Warn().Str("url", rawURL).Msg("attempt to sign a signed URL")
		return rawURL, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Opaque != "" {
		return "", ErrInvalidURL.Msg("invalid url: " + rawURL)
	}

	params := parseQuery(u.RawQuery)
	code := ""
	for _, p := range params {
		if p.name == "code" {
			code = p.value
			break
		}
	}
	if code == "" {
		return rawURL, nil
	}

	var signed orderedParams
	for _, p := range params {
		key, val, err := s.queryArg(p.name, code, ValueOf(p.value))
		if err != nil {
			return "", err
		}
		signed.set(key, val)
	}

	if u.Path == "" && (u.Scheme == "http" || u.Scheme == "https") {
		u.Path = "/"
	}
	u.RawQuery = signed.encode()
	u.ForceQuery = false
	return restoreDelimiters(u.String()), nil
}

type param struct {
	name  string
	value string
}

// parseQuery splits a raw query into decoded pairs, keeping their order.
// Malformed escapes are kept literally.
func parseQuery(raw string) []param {
	var out []param
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, "=")
		out = append(out, param{name: lenientUnescape(name), value: lenientUnescape(value)})
	}
	return out
}

func lenientUnescape(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	return strings.ReplaceAll(s, "+", " ")
}

// orderedParams keeps the first position of each name; setting an existing
// name replaces its value.
type orderedParams []param

func (o *orderedParams) set(name, value string) {
	for i := range *o {
		if (*o)[i].name == name {
			(*o)[i].value = value
			return
		}
	}
	*o = append(*o, param{name: name, value: value})
}

func (o orderedParams) encode() string {
	var b strings.Builder
	for i, p := range o {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(formEncode(p.name))
		b.WriteByte('=')
		b.WriteString(formEncode(p.value))
	}
	return b.String()
}

var delimiterReplacer = strings.NewReplacer("%7C", "|", "%3D", "=", "%2B", "+")

func restoreDelimiters(s string) string {
	return delimiterReplacer.Replace(s)
}

const upperhex = "0123456789ABCDEF"

// encodeURIComponent escapes everything except letters, digits and -_.!~*'().
func encodeURIComponent(s string) string {
	return escape(s, func(c byte) bool {
		return isAlnum(c) || strings.IndexByte("-_.!~*'()", c) >= 0
	}, false)
}

// formEncode applies application/x-www-form-urlencoded escaping: letters,
// digits and *-._ are kept and spaces become "+".
func formEncode(s string) string {
	return escape(s, func(c byte) bool {
		return isAlnum(c) || strings.IndexByte("*-._", c) >= 0
	}, true)
}

func escape(s string, keep func(byte) bool, spaceAsPlus bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case keep(c):
			b.WriteByte(c)
		case c == ' ' && spaceAsPlus:
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
		}
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}
