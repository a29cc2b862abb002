package executor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/wbrown/graphtype/diagnostics"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/storage"
)

// Executor drives a compiled Pipeline to completion against one storage
// snapshot, checking the cooperative Interrupt at batch boundaries.
type Executor struct {
	snap      storage.Snapshot
	tm        storage.TypeManager
	interrupt *Interrupt
	trace     *diagnostics.Collector
}

// NewExecutor builds an Executor bound to a snapshot and schema for the
// lifetime of one query, with tracing disabled.
func NewExecutor(ctx context.Context, snap storage.Snapshot, tm storage.TypeManager) *Executor {
	return &Executor{snap: snap, tm: tm, interrupt: NewInterrupt(ctx), trace: diagnostics.NewCollector(nil)}
}

// WithTrace attaches a diagnostics collector, returning ex for chaining.
// Passing a collector built with a nil handler keeps tracing a no-op.
func (ex *Executor) WithTrace(trace *diagnostics.Collector) *Executor {
	ex.trace = trace
	return ex
}

// RunMatch runs one conjunction's compiled steps to completion,
// accumulating every row it produces. Disjunction branches are
// independent of each other by construction (type inference already
// isolates their type annotations into separate sub-graphs), so they run
// concurrently via errgroup; every other step kind runs in sequence
// because each depends on the row bindings the one before it produced.
func (ex *Executor) RunMatch(exe ConjunctionExecutable, seed Batch) (Batch, error) {
	switch step := exe.(type) {
	case IntersectionStep:
		return ex.runIntersection(step, seed)
	case UnsortedJoinStep:
		return ex.runUnsortedJoin(step, seed)
	case CheckStep:
		return ex.runCheck(step, seed)
	case NegationStep:
		return ex.runNegation(step, seed)
	case OptionalStep:
		return ex.runOptional(step, seed)
	case DisjunctionStep:
		return ex.runDisjunction(step, seed)
	case AssignmentStep:
		return ex.runAssignment(step, seed)
	case SequenceStep:
		return ex.runSequence(step, seed)
	default:
		return nil, compileError("%T is not an executable conjunction step", exe)
	}
}

func (ex *Executor) runSequence(step SequenceStep, seed Batch) (Batch, error) {
	batch := seed
	for _, inner := range step.Steps {
		var err error
		batch, err = ex.RunMatch(inner, batch)
		if err != nil {
			return nil, err
		}
		if err := ex.interrupt.Check(); err != nil {
			return batch, err
		}
	}
	return batch, nil
}

func (ex *Executor) runDisjunction(step DisjunctionStep, seed Batch) (Batch, error) {
	results := make([]Batch, len(step.Branches))
	g, _ := errgroup.WithContext(context.Background())
	for i, branch := range step.Branches {
		i, branch := i, branch
		g.Go(func() error {
			rows, err := ex.RunMatch(branch, seed)
			if err != nil {
				return err
			}
			results[i] = rows
			ex.trace.Add(diagnostics.Event{
				Name: diagnostics.DisjunctionBranch,
				Data: map[string]interface{}{"branch": i, "rows": len(rows)},
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out Batch
	for _, rows := range results {
		out = append(out, rows...)
	}
	return out, nil
}

func (ex *Executor) runNegation(step NegationStep, seed Batch) (Batch, error) {
	var out Batch
	for i, row := range seed {
		if i > 0 && i%DefaultBatchSize == 0 {
			if err := ex.interrupt.Check(); err != nil {
				return out, err
			}
		}
		matches, err := ex.RunMatch(step.Nested, Batch{row})
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			out = append(out, row)
		}
	}
	return out, nil
}

func (ex *Executor) runOptional(step OptionalStep, seed Batch) (Batch, error) {
	var out Batch
	for i, row := range seed {
		if i > 0 && i%DefaultBatchSize == 0 {
			if err := ex.interrupt.Check(); err != nil {
				return out, err
			}
		}
		matches, err := ex.RunMatch(step.Nested, Batch{row})
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			out = append(out, row)
			continue
		}
		out = append(out, matches...)
	}
	return out, nil
}

func (ex *Executor) runCheck(step CheckStep, seed Batch) (Batch, error) {
	chk, err := NewChecker(step.Constraint)
	if err != nil {
		return nil, err
	}
	var out Batch
	for _, row := range seed {
		ok, err := chk.Check(row)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

// runIntersection builds one InstructionIterator per compiled constraint
// against each outer row's current bindings and merges them with a
// sort-merge Intersection, row by row: an outer row supplies the inputs
// this step's iterators scan with, and its own bindings are carried
// forward into every row the step produces.
func (ex *Executor) runIntersection(step IntersectionStep, seed Batch) (Batch, error) {
	if len(seed) == 0 {
		seed = Batch{Row{}}
	}
	var out Batch
	for _, outer := range seed {
		iterators := make([]InstructionIterator, 0, len(step.Constraints))
		for _, cc := range step.Constraints {
			it, err := ex.buildIterator(cc, outer)
			if err != nil {
				return nil, err
			}
			iterators = append(iterators, it)
		}
		ix, err := NewIntersection(iterators, ex.interrupt)
		if err != nil {
			return nil, err
		}
		rows, err := ix.Run(outer)
		if err != nil {
			return nil, err
		}
		ex.trace.Add(diagnostics.Event{
			Name: diagnostics.IntersectionCartesian,
			Data: map[string]interface{}{"groups": len(iterators), "rows": len(rows)},
		})
		out = append(out, rows...)
	}
	return out, nil
}

func (ex *Executor) runAssignment(step AssignmentStep, seed Batch) (Batch, error) {
	switch c := step.Constraint.(type) {
	case ir.ExpressionBinding:
		return EvalExpressionBinding(c, seed)
	case ir.FunctionCallBinding:
		return nil, compileError("function call binding %s: function registry is out of scope", c.Callee)
	default:
		return nil, compileError("%T is not an assignable constraint", step.Constraint)
	}
}

func (ex *Executor) runUnsortedJoin(step UnsortedJoinStep, seed Batch) (Batch, error) {
	if len(seed) == 0 {
		seed = Batch{Row{}}
	}
	var out Batch
	for _, outer := range seed {
		it, err := ex.buildIterator(step.Constraint, outer)
		if err != nil {
			return nil, err
		}
		for {
			_, ok, err := it.PeekFirstUnboundValue()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			row := outer.Clone()
			if err := it.WriteValues(row); err != nil {
				return nil, err
			}
			out = append(out, row)
			if err := it.AdvanceSingle(); err != nil {
				return nil, err
			}
		}
		it.Close()
	}
	return out, nil
}
