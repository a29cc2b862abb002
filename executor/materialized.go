package executor

import (
	"sort"

	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
)

// materializedIterator implements InstructionIterator over a pre-sorted,
// in-memory slice of rows. Every concrete instruction in this package
// builds one of these from its own source (a storage scan or a
// schema-capability lookup) and otherwise shares this single
// implementation of the sort-merge contract.
type materializedIterator struct {
	sortVar ir.VariableID
	rows    []Row
	pos     int
}

// newMaterializedIterator sorts rows by sortVar ascending and wraps them
// in the shared InstructionIterator implementation.
func newMaterializedIterator(sortVar ir.VariableID, rows []Row) *materializedIterator {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareRowValue(sorted[i][sortVar], sorted[j][sortVar]) < 0
	})
	return &materializedIterator{sortVar: sortVar, rows: sorted}
}

func (m *materializedIterator) SortVariable() ir.VariableID { return m.sortVar }

func (m *materializedIterator) PeekFirstUnboundValue() (concept.VariableValue, bool, error) {
	if m.pos >= len(m.rows) {
		return concept.VariableValue{}, false, nil
	}
	return m.rows[m.pos][m.sortVar], true, nil
}

func (m *materializedIterator) AdvanceSingle() error {
	if m.pos < len(m.rows) {
		m.pos++
	}
	return nil
}

func (m *materializedIterator) AdvanceUntilIndexIs(target concept.VariableValue) error {
	for m.pos < len(m.rows) && compareRowValue(m.rows[m.pos][m.sortVar], target) < 0 {
		m.pos++
	}
	return nil
}

func (m *materializedIterator) AdvancePast(current concept.VariableValue) error {
	for m.pos < len(m.rows) && compareRowValue(m.rows[m.pos][m.sortVar], current) == 0 {
		m.pos++
	}
	return nil
}

func (m *materializedIterator) WriteValues(dst Row) error {
	if m.pos >= len(m.rows) {
		return compileError("WriteValues called on exhausted iterator")
	}
	for k, v := range m.rows[m.pos] {
		dst[k] = v
	}
	return nil
}

func (m *materializedIterator) Close() error { return nil }
