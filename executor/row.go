// Package executor lowers a planner.Plan into a runtime pipeline of
// closed-variant stages, the lowest of which drive sort-merge
// intersection over concept storage.
package executor

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
)

// Row is one result binding: a value for every variable a conjunction's
// plan produces. Rows are the unit a Batch carries between stages.
type Row map[ir.VariableID]concept.VariableValue

// Clone returns an independent copy of the row, so a stage can derive new
// rows (e.g. Cartesian sub-iterator activation) without aliasing a
// previous row's map.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Batch is a group of rows moved through the pipeline together. Its
// length is not bounded: a step or stage returns all the rows it produced
// in a single Batch.
type Batch []Row

// DefaultBatchSize is how many rows a row-by-row step handles between two
// interrupt checks.
const DefaultBatchSize = 256
