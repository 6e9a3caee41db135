package sanitize

import (
	"bytes"
	"strconv"

	jsonitor "github.com/json-iterator/go"
	"github.com/tidwall/gjson"

	"github.com/foxy/foxy-go/pkg/foxyerr"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

var (
	ErrInvalidJSON = foxyerr.ErrConfiguration.New("document is not valid JSON")
	ErrUpdate      = foxyerr.ErrConfiguration.New("unable to encode replacement value")
)

// Mapper inspects a node during a walk and may remove or replace it.
type Mapper func(n *Node)

// Node is a value visited by Apply.
type Node struct {
	Key     string       // object key or array index, "" for the root
	Value   gjson.Result // the value as found in the document
	InArray bool         // the node is an array element
	Parent  *Node        // nil for the root

	removed  bool
	replaced bool
	raw      string
	err      error
}

// IsRoot reports whether the node is the document itself.
func (n *Node) IsRoot() bool {
	return n.Parent == nil
}

// ParentKey returns the key of the enclosing node, or "" at the top level.
func (n *Node) ParentKey() string {
	if n.Parent == nil {
		return ""
	}
	return n.Parent.Key
}

// Remove drops the node from its parent. Removing the root has no effect.
func (n *Node) Remove() {
	if n.Parent != nil {
		n.removed = true
	}
}

// Removed reports whether a mapper has removed the node.
func (n *Node) Removed() bool {
	return n.removed
}

// UpdateRaw replaces the node with raw JSON. Replaced nodes are not descended into.
func (n *Node) UpdateRaw(raw string) {
	n.raw = raw
	n.replaced = true
	n.Value = gjson.Parse(raw)
}

// Update replaces the node with the JSON encoding of v.
func (n *Node) Update(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		n.err = ErrUpdate.Err(err)
		return
	}
	n.UpdateRaw(string(data))
}

// Apply walks doc depth first, calling every mapper on each node before its
// children, and returns the rewritten document. Key order is preserved.
func Apply(doc []byte, mappers ...Mapper) ([]byte, error) {
	if !gjson.ValidBytes(doc) {
		return nil, ErrInvalidJSON
	}
	var buf bytes.Buffer
	root := &Node{Value: gjson.ParseBytes(doc)}
	if _, err := walk(&buf, root, mappers); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func walk(buf *bytes.Buffer, n *Node, mappers []Mapper) (bool, error) {
	for _, m := range mappers {
		m(n)
		if n.err != nil {
			return false, n.err
		}
		if n.removed {
			return false, nil
		}
	}
	if n.replaced {
		buf.WriteString(n.raw)
		return true, nil
	}

	switch {
	case n.Value.IsObject():
		buf.WriteByte('{')
		first := true
		var err error
		n.Value.ForEach(func(key, value gjson.Result) bool {
			child := &Node{Key: key.String(), Value: value, Parent: n}
			var sub bytes.Buffer
			var keep bool
			keep, err = walk(&sub, child, mappers)
			if err != nil {
				return false
			}
			if !keep {
				return true
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			buf.WriteString(key.Raw)
			buf.WriteByte(':')
			buf.Write(sub.Bytes())
			return true
		})
		if err != nil {
			return false, err
		}
		buf.WriteByte('}')
	case n.Value.IsArray():
		buf.WriteByte('[')
		first := true
		for i, value := range n.Value.Array() {
			child := &Node{Key: strconv.Itoa(i), Value: value, InArray: true, Parent: n}
			var sub bytes.Buffer
			keep, err := walk(&sub, child, mappers)
			if err != nil {
				return false, err
			}
			if !keep {
				continue
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			buf.Write(sub.Bytes())
		}
		buf.WriteByte(']')
	default:
		buf.WriteString(n.Value.Raw)
	}
	return true, nil
}
