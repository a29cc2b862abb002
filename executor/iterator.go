package executor

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
)

// InstructionIterator is the contract every concrete instruction (Has,
// Links, Isa, ...) implements so the Intersection step can drive it
// without knowing which constraint kind produced it. Values come out in
// ascending order of the iterator's own sort variable — the contract the
// sort-merge algorithm in intersection.go depends on.
type InstructionIterator interface {
	// SortVariable is the variable this iterator's rows are ordered by.
	SortVariable() ir.VariableID

	// PeekFirstUnboundValue returns the current row's value for
	// SortVariable without consuming it, or ok=false at exhaustion.
	PeekFirstUnboundValue() (concept.VariableValue, bool, error)

	// AdvanceSingle moves past the current row.
	AdvanceSingle() error

	// AdvanceUntilIndexIs seeks forward until SortVariable's value is >=
	// target, skipping every row strictly less than it. Used to align
	// two iterators in a merge without scanning row by row.
	AdvanceUntilIndexIs(target concept.VariableValue) error

	// AdvancePast skips every row whose SortVariable value equals
	// current, stopping at the first row that differs (or exhaustion).
	AdvancePast(current concept.VariableValue) error

	// WriteValues copies the current row's bound variables into dst.
	WriteValues(dst Row) error

	// Close releases any underlying storage cursor.
	Close() error
}
