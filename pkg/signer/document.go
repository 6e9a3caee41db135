package signer

import (
	"bytes"
	"errors"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/foxy/foxy-go/pkg/foxyerr"
)

var (
	codeNameRegex   = regexp.MustCompile(`^(\d{1,3}:)?code$`)
	fullDocRegex    = regexp.MustCompile(`(?i)<!doctype|<html[\s>]`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

type codeEntry struct {
	code   string
	parent string
}

// SignNode signs every cart link and cart form under root, root included. It
// returns the number of attributes rewritten.
//
// Links whose href is not an absolute URL are skipped. A cart form is a form
// holding a code or {n}:code field; each input, select option and textarea in
// it is signed against the code sharing its numeric prefix.
func (s *Signer) SignNode(root *html.Node) (int, error) {
	signed := 0
	for _, a := range elements(root, atom.A) {
		href, ok := attr(a, "href")
		if !ok {
			continue
		}
		out, err := s.URL(href)
		if errors.Is(err, foxyerr.ErrInvalidURL) {
			continue
		}
		if err != nil {
			return signed, err
		}
		if out != href {
			setAttr(a, "href", out)
			signed++
		}
	}

	for _, form := range elements(root, atom.Form) {
		n, err := s.signForm(form)
		signed += n
		if err != nil {
			return signed, err
		}
	}
	return signed, nil
}

func (s *Signer) signForm(form *html.Node) (int, error) {
	codes, err := formCodes(form)
	if err != nil || len(codes) == 0 {
		return 0, err
	}

	logger := s.log()
	lookup := func(name string) (int, string, codeEntry, bool) {
		prefix, field := splitNamePrefix(name)
		entry, ok := codes[prefix]
		if !ok {
			logger.Warn().Str("field", name).Msgf("no code for prefix %d, field left unsigned", prefix)
		}
		return prefix, field, entry, ok
	}

	signed := 0
	for _, el := range elements(form, atom.Input) {
		name, ok := attr(el, "name")
		if !ok {
			continue
		}
		prefix, field, entry, ok := lookup(name)
		if !ok {
			continue
		}
		v := ValueOf(inputValue(el))
		if t, _ := attr(el, "type"); strings.EqualFold(t, "radio") {
			out, err := s.Value(field, entry.code, entry.parent, v)
			if err != nil {
				return signed, err
			}
			setAttr(el, "value", withPrefix(prefix, out))
		} else {
			out, err := s.Name(field, entry.code, entry.parent, v)
			if err != nil {
				return signed, err
			}
			setAttr(el, "name", withPrefix(prefix, out))
		}
		signed++
	}

	for _, sel := range elements(form, atom.Select) {
		name, ok := attr(sel, "name")
		if !ok {
			continue
		}
		prefix, field, entry, ok := lookup(name)
		if !ok {
			continue
		}
		for _, opt := range elements(sel, atom.Option) {
			out, err := s.Value(field, entry.code, entry.parent, ValueOf(optionValue(opt)))
			if err != nil {
				return signed, err
			}
			setAttr(opt, "value", withPrefix(prefix, out))
			signed++
		}
	}

	for _, ta := range elements(form, atom.Textarea) {
		name, ok := attr(ta, "name")
		if !ok {
			continue
		}
		prefix, field, entry, ok := lookup(name)
		if !ok {
			continue
		}
		out, err := s.Name(field, entry.code, entry.parent, Editable())
		if err != nil {
			return signed, err
		}
		setAttr(ta, "name", withPrefix(prefix, out))
		signed++
	}
	return signed, nil
}

// formCodes collects the product codes of a form keyed by numeric prefix.
// Unprefixed codes use slot 0; a second unprefixed code is ambiguous.
func formCodes(form *html.Node) (map[int]codeEntry, error) {
	codes := make(map[int]codeEntry)
	for _, el := range elements(form, 0) {
		name, ok := attr(el, "name")
		if !ok || !codeNameRegex.MatchString(name) {
			continue
		}
		value, _ := attr(el, "value")
		if p, _, found := strings.Cut(name, ":"); found {
			n, _ := strconv.Atoi(p)
			codes[n] = codeEntry{code: value, parent: parentCode(form, p+":parent_code")}
			continue
		}
		if _, exists := codes[0]; exists {
			return nil, ErrMultipleCodes
		}
		codes[0] = codeEntry{code: value, parent: parentCode(form, "parent_code")}
	}
	return codes, nil
}

func parentCode(form *html.Node, name string) string {
	for _, el := range elements(form, 0) {
		if n, ok := attr(el, "name"); ok && n == name {
			v, _ := attr(el, "value")
			return v
		}
	}
	return ""
}

// splitNamePrefix splits "{n}:field" into n and field. Anything else belongs
// to prefix 0.
func splitNamePrefix(name string) (int, string) {
	parts := strings.Split(name, ":")
	if len(parts) == 2 {
		if n, err := strconv.Atoi(parts[0]); err == nil {
			return n, parts[1]
		}
	}
	return 0, name
}

func withPrefix(prefix int, s string) string {
	return strconv.Itoa(prefix) + ":" + s
}

func inputValue(el *html.Node) string {
	if v, ok := attr(el, "value"); ok {
		return v
	}
	if t, _ := attr(el, "type"); strings.EqualFold(t, "checkbox") || strings.EqualFold(t, "radio") {
		return "on"
	}
	return ""
}

func optionValue(el *html.Node) string {
	if v, ok := attr(el, "value"); ok {
		return v
	}
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(textContent(el), " "))
}

// HTMLString signs an HTML document or fragment and returns the rendered
// result. Input without anything to sign is returned unchanged.
func (s *Signer) HTMLString(doc string) (string, error) {
	out, _, err := s.signHTML(doc)
	return out, err
}

// HTMLFile signs the HTML file at inputPath and writes the result to
// outputPath. It returns the number of attributes rewritten.
func (s *Signer) HTMLFile(inputPath, outputPath string) (int, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return 0, ErrReadDocument.Err(err)
	}
	if kind, _ := filetype.Match(data); kind != filetype.Unknown {
		return 0, ErrBinaryDocument.Msgf("%s: detected %s content", inputPath, kind.MIME.Value)
	}

	out, n, err := s.signHTML(string(data))
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
		return 0, ErrWriteDocument.Err(err)
	}
	return n, nil
}

func (s *Signer) signHTML(doc string) (string, int, error) {
	if fullDocRegex.MatchString(doc) {
		root, err := html.Parse(strings.NewReader(doc))
		if err != nil {
			return "", 0, ErrInvalidDocument.Err(err)
		}
		n, err := s.SignNode(root)
		if err != nil {
			return "", 0, err
		}
		if n == 0 {
			return doc, 0, nil
		}
		var buf bytes.Buffer
		if err := html.Render(&buf, root); err != nil {
			return "", 0, ErrInvalidDocument.Err(err)
		}
		return buf.String(), n, nil
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(doc), body)
	if err != nil {
		return "", 0, ErrInvalidDocument.Err(err)
	}
	total := 0
	for _, n := range nodes {
		c, err := s.SignNode(n)
		total += c
		if err != nil {
			return "", 0, err
		}
	}
	if total == 0 {
		return doc, 0, nil
	}
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", 0, ErrInvalidDocument.Err(err)
		}
	}
	return buf.String(), total, nil
}

// elements returns the element nodes under root, root included, in document
// order. A zero atom matches every element.
func elements(root *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (a == 0 || n.DataAtom == a) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
