package concept

import "strings"

// Keyword names a schema element: an entity/relation/attribute/role type
// label, or an attribute used as a value position. Unlike Identity,
// keywords are interned strings rather than hashes — schema is small and
// human-labeled, so there is no need to hash it.
type Keyword struct {
	label string
}

// NewKeyword wraps a label string as a Keyword.
func NewKeyword(label string) Keyword {
	return Keyword{label: label}
}

// String returns the label text.
func (k Keyword) String() string { return k.label }

// Compare orders keywords lexicographically by label, giving the planner
// and type-inference graph a total ordering on types to iterate
// deterministically.
func (k Keyword) Compare(other Keyword) int {
	return strings.Compare(k.label, other.label)
}

// Bytes returns the label as bytes, for use as a storage key component.
func (k Keyword) Bytes() []byte { return []byte(k.label) }
