package signer

// openSentinel stands in for an editable value in the signed message. It never
// appears in signed output except as a query argument value.
const openSentinel = "--OPEN--"

// Value is the value a field is signed with: either fixed by the merchant or
// left editable for the buyer.
type Value struct {
	v    string
	open bool
}

// Fixed returns a value the buyer may not change. An empty string is editable.
func Fixed(v string) Value {
	if v == "" {
		return Editable()
	}
	return Value{v: v}
}

// Editable returns the value of a field the buyer fills in.
func Editable() Value {
	return Value{open: true}
}

// ValueOf maps "" to Editable and anything else to Fixed.
func ValueOf(v string) Value {
	return Fixed(v)
}

// IsEditable reports whether the value is open for buyer input.
func (v Value) IsEditable() bool {
	return v.open
}

// String returns the fixed value, or "" for editable values.
func (v Value) String() string {
	return v.v
}

func (v Value) hashInput() string {
	if v.open {
		return openSentinel
	}
	return v.v
}
