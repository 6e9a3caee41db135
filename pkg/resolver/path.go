package resolver

import (
	"strconv"
	"strings"
)

// Member is one step of a Path: a relation name or a numeric resource id.
type Member struct {
	rel     string
	id      int64
	numeric bool
}

// Rel returns a relation member such as "fx:store".
func Rel(name string) Member {
	return Member{rel: name}
}

// ID returns a numeric id member.
func ID(n int64) Member {
	return Member{id: n, numeric: true}
}

// ParseMember returns an ID member for a string of decimal digits and a Rel
// member for anything else.
func ParseMember(s string) Member {
	if s != "" && strings.Trim(s, "0123456789") == "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return ID(n)
		}
	}
	return Rel(s)
}

// IsID reports whether the member is a numeric id.
func (m Member) IsID() bool {
	return m.numeric
}

// Rel returns the relation name, or "" for id members.
func (m Member) Rel() string {
	return m.rel
}

// ID returns the numeric id, or 0 for relation members.
func (m Member) ID() int64 {
	return m.id
}

func (m Member) String() string {
	if m.numeric {
		return strconv.FormatInt(m.id, 10)
	}
	return m.rel
}

// Path is an ordered list of members walked from a base URL.
type Path []Member

// Follow returns a new path extended by m. The receiver is not modified.
func (p Path) Follow(m Member) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, m)
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, m := range p {
		parts[i] = m.String()
	}
	return strings.Join(parts, " => ")
}
