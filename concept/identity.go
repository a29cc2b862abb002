// Package concept holds the leaf value types shared by every stage of the
// compiler: entity identities, attribute/type keywords, storable values,
// and the concrete schema type references ("type annotations") that type
// inference assigns to query variables. Nothing here depends on query
// structure or storage; it is the vocabulary everything else is built on.
package concept

import (
	"crypto/sha1"
	"encoding/binary"

	"github.com/wbrown/graphtype/concept/codec"
)

// Identity names a concrete thing (entity, relation, or attribute instance).
// It carries its SHA1 hash, the original string when known, and an L85
// text encoding that L85() computes on first use. String() on an identity
// without its original string encodes the hash on every call.
type Identity struct {
	hash        [20]byte
	l85         string
	original    string
	l85Computed bool
}

// NewIdentity derives an identity from its canonical string form.
func NewIdentity(s string) Identity {
	return Identity{hash: sha1.Sum([]byte(s)), original: s}
}

// NewIdentityFromHash reconstructs an identity read back from storage. The
// L85 form is computed eagerly: identities read from storage never carry
// the original string, so String() must fall back to L85 immediately or
// two identities for the same thing would print and compare differently.
func NewIdentityFromHash(hash [20]byte) Identity {
	return Identity{hash: hash, l85: codec.Encode(hash[:]), l85Computed: true}
}

// Hash returns the raw 20-byte hash.
func (id Identity) Hash() [20]byte { return id.hash }

// L85 returns the sortable text encoding, computing it on first use.
func (id *Identity) L85() string {
	if !id.l85Computed {
		id.l85 = codec.Encode(id.hash[:])
		id.l85Computed = true
	}
	return id.l85
}

// String prefers the original string (if known) over the L85 encoding.
func (id Identity) String() string {
	if id.original != "" {
		return id.original
	}
	return codec.Encode(id.hash[:])
}

// Ordinal returns the high 8 bytes of the hash as a uint64, useful as a
// cheap non-cryptographic sort/hash key when full byte comparison isn't
// needed.
func (id Identity) Ordinal() uint64 {
	return binary.BigEndian.Uint64(id.hash[:8])
}

// Compare orders identities by raw hash bytes, which is also their L85 and
// storage key order.
func (id Identity) Compare(other Identity) int {
	return compareBytes(id.hash[:], other.hash[:])
}

// Equal reports whether two identities name the same thing.
func (id Identity) Equal(other Identity) bool {
	return id.hash == other.hash
}

// Bytes returns the raw hash bytes.
func (id Identity) Bytes() []byte {
	return id.hash[:]
}

func compareBytes(a, b []byte) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
