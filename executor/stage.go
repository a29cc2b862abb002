package executor

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/planner"
)

// RowSchema maps each variable an ExecutableStage produces to its
// position in the row, so later stages and result encoding don't need to
// inspect a stage's internals to know which columns it carries.
type RowSchema map[ir.VariableID]int

// ExecutableStage is the closed set of top-level pipeline stages a
// compiled query can run. Each carries the row schema its output uses.
type ExecutableStage interface {
	isExecutableStage()
	Schema() RowSchema
}

// MatchStage runs a conjunction's plan to produce bindings.
type MatchStage struct {
	Plan       ConjunctionExecutable
	RowsSchema RowSchema
}

func (MatchStage) isExecutableStage() {}
func (s MatchStage) Schema() RowSchema { return s.RowsSchema }

// InsertStage creates new things and edges per input row. VariableTypes
// gives the single resolved schema type for every variable the writes
// reference, since an insert pattern always fully determines its own
// types (unlike a Match, which may range over several).
type InsertStage struct {
	Writes        []InsertWrite
	VariableTypes map[ir.VariableID]concept.TypeAnnotation
	RowsSchema    RowSchema
}

func (InsertStage) isExecutableStage() {}
func (s InsertStage) Schema() RowSchema { return s.RowsSchema }

// InsertWrite is one concrete write a row drives during an Insert stage.
// Exactly one of its fields is set, matching the constraint kind it
// realizes.
type InsertWrite struct {
	Isa   *ir.Isa
	Has   *ir.Has
	Links *ir.Links
}

// UpdateStage deletes then reinserts the attributes/edges an Update
// targets, so an `owns @card(0, 1)` slot is replaced rather than
// accumulated.
type UpdateStage struct {
	Deletes       []DeleteWrite
	Inserts       []InsertWrite
	VariableTypes map[ir.VariableID]concept.TypeAnnotation
	RowsSchema    RowSchema
}

func (UpdateStage) isExecutableStage() {}
func (s UpdateStage) Schema() RowSchema { return s.RowsSchema }

// PutStage inserts only the rows a preceding Match found nothing for.
type PutStage struct {
	Match         ConjunctionExecutable
	Inserts       []InsertWrite
	VariableTypes map[ir.VariableID]concept.TypeAnnotation
	RowsSchema    RowSchema
}

func (PutStage) isExecutableStage() {}
func (s PutStage) Schema() RowSchema { return s.RowsSchema }

// DeleteStage removes things and edges per input row. VariableTypes gives
// the resolved schema type for every variable a Links deletion
// references, needed to tell whether the relation being unlinked is a
// binary relation carrying a player-player index entry to clean up too.
type DeleteStage struct {
	Deletes       []DeleteWrite
	VariableTypes map[ir.VariableID]concept.TypeAnnotation
	RowsSchema    RowSchema
}

func (DeleteStage) isExecutableStage() {}
func (s DeleteStage) Schema() RowSchema { return s.RowsSchema }

// DeleteWrite is one concrete deletion a row drives during a Delete or
// Update stage.
type DeleteWrite struct {
	Has   *ir.Has
	Links *ir.Links
}

// SelectStage projects rows down to a subset of variables.
type SelectStage struct {
	Keep       []ir.VariableID
	RowsSchema RowSchema
}

func (SelectStage) isExecutableStage() {}
func (s SelectStage) Schema() RowSchema { return s.RowsSchema }

// SortStage orders rows by the given variables, each ascending unless
// marked descending.
type SortStage struct {
	By         []SortKey
	RowsSchema RowSchema
}

// SortKey names one ordering column of a SortStage.
type SortKey struct {
	Variable   ir.VariableID
	Descending bool
}

func (SortStage) isExecutableStage() {}
func (s SortStage) Schema() RowSchema { return s.RowsSchema }

// OffsetStage skips a fixed number of leading rows.
type OffsetStage struct {
	Skip       uint64
	RowsSchema RowSchema
}

func (OffsetStage) isExecutableStage() {}
func (s OffsetStage) Schema() RowSchema { return s.RowsSchema }

// LimitStage caps the number of rows a pipeline yields.
type LimitStage struct {
	Max        uint64
	RowsSchema RowSchema
}

func (LimitStage) isExecutableStage() {}
func (s LimitStage) Schema() RowSchema { return s.RowsSchema }

// RequireStage fails the query if no row satisfies it (`require` clause
// after a Match with no other output).
type RequireStage struct {
	Variables  []ir.VariableID
	RowsSchema RowSchema
}

func (RequireStage) isExecutableStage() {}
func (s RequireStage) Schema() RowSchema { return s.RowsSchema }

// DistinctStage removes duplicate rows, comparing every variable a row
// binds; RowsSchema is not consulted when comparing.
type DistinctStage struct {
	RowsSchema RowSchema
}

func (DistinctStage) isExecutableStage() {}
func (s DistinctStage) Schema() RowSchema { return s.RowsSchema }

// ReduceStage computes aggregates, grouped by GroupBy (empty for a
// single ungrouped aggregate row).
type ReduceStage struct {
	Reducers   []Reducer
	GroupBy    []ir.VariableID
	RowsSchema RowSchema
}

func (ReduceStage) isExecutableStage() {}
func (s ReduceStage) Schema() RowSchema { return s.RowsSchema }

// ReducerKind enumerates the aggregate functions a Reduce stage supports.
type ReducerKind uint8

const (
	ReduceCount ReducerKind = iota
	ReduceSum
	ReduceMax
	ReduceMin
	ReduceMean
	ReduceMedian
	ReduceStdev
)

// Reducer is one aggregate computed by a ReduceStage, bound to Output.
type Reducer struct {
	Kind   ReducerKind
	Input  ir.VariableID
	Output ir.VariableID
}

// ConjunctionExecutable is the closed set of execution steps a compiled
// conjunction's Match/Put stage runs.
type ConjunctionExecutable interface {
	isConjunctionExecutable()
}

// CompiledConstraint is one planner.Step carried through to execution,
// with the candidate type set type inference narrowed for whichever of
// its vertices is not already bound by an earlier step — the set a
// schema-level or Isa instruction enumerates from rather than re-deriving
// at run time.
type CompiledConstraint struct {
	Constraint ir.Constraint
	Direction  planner.Direction
	Modes      map[ir.VariableID]planner.VariableMode
	Candidates *concept.TypeSet
}

// IntersectionStep runs a sort-merge Intersection over a set of
// instruction iterators sharing one sort variable.
type IntersectionStep struct {
	Constraints []CompiledConstraint
}

func (IntersectionStep) isConjunctionExecutable() {}

// UnsortedJoinStep nested-loop joins a small unsorted source against the
// current row set, for constraints too cheap to route through the
// sort-merge machinery (e.g. a single fully-bound capability lookup).
type UnsortedJoinStep struct {
	Constraint CompiledConstraint
}

func (UnsortedJoinStep) isConjunctionExecutable() {}

// AssignmentStep evaluates an expression or function call and binds its
// result, without reading storage.
type AssignmentStep struct {
	Constraint ir.Constraint // ir.ExpressionBinding or ir.FunctionCallBinding
}

func (AssignmentStep) isConjunctionExecutable() {}

// CheckStep runs a Checker (Is/Comparison) against already-bound rows.
type CheckStep struct {
	Constraint ir.Constraint
}

func (CheckStep) isConjunctionExecutable() {}

// NegationStep drops rows for which the nested pattern has any match.
type NegationStep struct {
	Nested ConjunctionExecutable
}

func (NegationStep) isConjunctionExecutable() {}

// OptionalStep runs the nested pattern and left-joins its bindings back,
// leaving them unbound (not dropping the row) when the pattern has no
// match.
type OptionalStep struct {
	Nested ConjunctionExecutable
}

func (OptionalStep) isConjunctionExecutable() {}

// DisjunctionStep runs each branch and unions their output rows.
type DisjunctionStep struct {
	Branches []ConjunctionExecutable
}

func (DisjunctionStep) isConjunctionExecutable() {}

// SequenceStep chains a conjunction's compiled steps in scheduled order,
// threading each step's output batch into the next the way RunPipeline
// threads a Pipeline's stages. The compiler emits one of these per
// conjunction whenever it schedules more than one step.
type SequenceStep struct {
	Steps []ConjunctionExecutable
}

func (SequenceStep) isConjunctionExecutable() {}

// Pipeline is a compiled query's full, ordered sequence of stages.
type Pipeline struct {
	Stages []ExecutableStage
}
