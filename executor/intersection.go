package executor

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
)

// Intersection is the core sort-merge step: it drives N instruction
// iterators that all advance in the order of one shared sort variable and
// emits exactly the rows every iterator agrees on, batched behind an
// Interrupt check.
//
// The merge is a standard leapfrog join: find the largest of the N peeked
// sort values, seek every other iterator up to it with
// AdvanceUntilIndexIs, and repeat until all agree or one iterator is
// exhausted. Once they agree, every iterator may still hold several rows
// at that key (e.g. several attribute values for the same owner, several
// role players for the same relation) — collectRun reads each iterator's
// run in full with AdvanceSingle, which leaves that iterator past the key,
// and the runs are combined as a Cartesian product.
type Intersection struct {
	sortVar   ir.VariableID
	iterators []InstructionIterator
	interrupt *Interrupt
}

// NewIntersection builds an Intersection over iterators that must all
// share the same SortVariable(); establishing that is the planner's
// responsibility; this constructor only verifies it.
func NewIntersection(iterators []InstructionIterator, interrupt *Interrupt) (*Intersection, error) {
	if len(iterators) == 0 {
		return nil, compileError("intersection requires at least one iterator")
	}
	sortVar := iterators[0].SortVariable()
	for _, it := range iterators[1:] {
		if it.SortVariable() != sortVar {
			return nil, compileError("intersection: mismatched sort variables")
		}
	}
	return &Intersection{sortVar: sortVar, iterators: iterators, interrupt: interrupt}, nil
}

// Run produces every row the intersection yields into a single batch,
// checking the interrupt token once per DefaultBatchSize rows produced
// rather than once per row.
func (ix *Intersection) Run(base Row) (Batch, error) {
	var out Batch
	sinceCheck := 0
	for {
		matched, ok, err := ix.nextMatchedGroup()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		for _, combo := range cartesianProduct(matched) {
			row := base.Clone()
			for _, part := range combo {
				for k, v := range part {
					row[k] = v
				}
			}
			out = append(out, row)
			sinceCheck++
			if sinceCheck >= DefaultBatchSize {
				if err := ix.interrupt.Check(); err != nil {
					return out, err
				}
				sinceCheck = 0
			}
		}
	}
}

// nextMatchedGroup advances every iterator until they all agree on the
// sort variable's value, then pulls out each iterator's full run of rows
// at that value. ok is false once any iterator is exhausted.
func (ix *Intersection) nextMatchedGroup() ([][]Row, bool, error) {
	for {
		values := make([]concept.VariableValue, len(ix.iterators))
		for i, it := range ix.iterators {
			v, ok, err := it.PeekFirstUnboundValue()
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, nil
			}
			values[i] = v
		}

		max := values[0]
		for _, v := range values[1:] {
			if compareRowValue(v, max) > 0 {
				max = v
			}
		}

		allMatch := true
		for i, it := range ix.iterators {
			if compareRowValue(values[i], max) < 0 {
				if err := it.AdvanceUntilIndexIs(max); err != nil {
					return nil, false, err
				}
				allMatch = false
			}
		}
		if !allMatch {
			continue
		}

		groups := make([][]Row, len(ix.iterators))
		for i, it := range ix.iterators {
			run, err := collectRun(it, max)
			if err != nil {
				return nil, false, err
			}
			groups[i] = run
		}
		return groups, true, nil
	}
}

// collectRun pulls every row an iterator holds at the current key into
// memory, leaving the iterator positioned at the first row past the key
// (or exhausted).
func collectRun(it InstructionIterator, key concept.VariableValue) ([]Row, error) {
	var run []Row
	for {
		v, ok, err := it.PeekFirstUnboundValue()
		if err != nil {
			return nil, err
		}
		if !ok || compareRowValue(v, key) != 0 {
			return run, nil
		}
		row := make(Row)
		if err := it.WriteValues(row); err != nil {
			return nil, err
		}
		run = append(run, row)
		if err := it.AdvanceSingle(); err != nil {
			return nil, err
		}
	}
}

// cartesianProduct expands N per-iterator row runs sharing one key into
// every combination across them.
func cartesianProduct(groups [][]Row) [][]Row {
	combos := [][]Row{{}}
	for _, group := range groups {
		var next [][]Row
		for _, combo := range combos {
			for _, row := range group {
				extended := make([]Row, len(combo)+1)
				copy(extended, combo)
				extended[len(combo)] = row
				next = append(next, extended)
			}
		}
		combos = next
	}
	return combos
}
