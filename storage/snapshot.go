// Package storage declares the read-only collaborator surfaces the
// compiler depends on — Snapshot, TypeManager, Statistics — plus the
// write-transaction surface a write stage exclusively owns while applying
// mutations. These are interfaces on purpose: the transaction,
// durability, and on-disk encoding of concepts are a separate concern;
// storage/badger gives one concrete implementation to exercise them end
// to end.
package storage

import "github.com/wbrown/graphtype/concept"

// Key is an ordered byte key. Index encodings (which concept fields go in
// which byte positions) are a Snapshot implementation's concern, not
// modeled here.
type Key []byte

// KeyRange is a half-open [Start, End) byte range for an ordered scan.
type KeyRange struct {
	Start Key
	End   Key
}

// Snapshot is a read-only, ordered key-value view of concept storage at a
// point in time — the leaf dependency every compiler stage ultimately
// reads through.
type Snapshot interface {
	// Scan iterates keys in [r.Start, r.End) in ascending byte order.
	Scan(r KeyRange) (KeyIterator, error)
	// Get performs a point lookup; ok is false if the key is absent.
	Get(key Key) (value []byte, ok bool, err error)
}

// KeyIterator walks a Snapshot range in ascending key order.
type KeyIterator interface {
	Next() bool
	Key() Key
	Value() []byte
	Close() error
}

// WriteSnapshot is the transaction-local view a write stage exclusively
// owns once it begins applying mutations — the stage becomes the unique
// owner before invoking any write instruction.
type WriteSnapshot interface {
	Snapshot
	Put(key Key, value []byte) error
	Delete(key Key) error
	Commit() error
	Rollback() error
}

// RoleAnnotation pairs a role type with the constraints a capability
// (owns/plays/relates) declares on it: cardinality, plus the two
// ownership-only modifiers (`@key`, `@unique`) and the distinctness
// modifier owns/relates capabilities can both carry (`@distinct`).
type RoleAnnotation struct {
	Role        concept.TypeAnnotation
	Cardinality Cardinality
	// Key marks an owns capability as a key: the attribute value must be
	// both unique across instances of the owner type and present exactly
	// once per instance.
	Key bool
	// Unique marks an owns capability whose attribute value may not repeat
	// across instances of the owner type, without the key's mandatory
	// cardinality.
	Unique bool
	// Distinct marks an owns or relates capability that forbids two
	// instances of the same owner/relation from attaching the same
	// attribute/player twice under this role.
	Distinct bool
}

// Cardinality bounds how many instances of a capability an instance may
// have, e.g. `owns name @card(1, 1)`. The zero value means no cardinality
// was declared at all, so it carries no upper limit — consistent with a
// RoleAnnotation a TypeManager returns for a capability that simply never
// mentions @card.
type Cardinality struct {
	Min int
	Max int // Max <= 0 means unbounded; a real upper limit is always >= 1
}

// Unbounded reports whether this cardinality has no upper limit.
func (c Cardinality) Unbounded() bool { return c.Max <= 0 }
