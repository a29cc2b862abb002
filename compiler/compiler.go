// Package compiler turns an ir.Conjunction plus the type candidates
// typeinfer narrowed for it into the executor.ConjunctionExecutable tree
// the Executor actually runs. It is the glue the planner deliberately
// doesn't provide: planner.Plan schedules and directs one conjunction's
// own constraints and has no handling at all for nested patterns
// (Negation, Optional, Disjunction). Compile handles nested patterns,
// re-planning each nested conjunction against its own scope as it
// descends. It does not group several constraints under one multi-iterator
// sort-merge Intersection: each scheduled constraint becomes its own
// single-constraint IntersectionStep, except that a pair of Links steps on
// a binary relation is fused into one IndexedLinks step.
package compiler

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/executor"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/planner"
	"github.com/wbrown/graphtype/storage"
	"github.com/wbrown/graphtype/typeinfer"
)

// Compile plans and compiles conj and every pattern nested within it,
// returning the executable tree an Executor.RunMatch call drives to
// completion. annotations must already hold the pruned type candidates
// typeinfer.InferTypes computed for conj's scope and every scope nested
// within it. boundInputs names variables an enclosing scope or an
// earlier pipeline stage already bound, so the planner can schedule
// constraints that consume them first.
func Compile(
	stats *storage.Statistics,
	tm storage.TypeManager,
	conj *ir.Conjunction,
	annotations *typeinfer.Annotations,
	boundInputs map[ir.VariableID]bool,
) (executor.ConjunctionExecutable, *planner.Plan, error) {
	scopeTypes := annotations.ScopeTypes(conj.Scope)
	plan := planner.PlanConjunction(stats, tm, conj, scopeTypes, boundInputs)

	exe, err := compilePlan(stats, tm, conj, plan, scopeTypes, annotations, boundInputs)
	if err != nil {
		return nil, nil, err
	}
	return exe, plan, nil
}

// compilePlan walks plan's steps in scheduled order, then conj's nested
// patterns, and chains the result into a single SequenceStep (or returns
// the lone step directly when there is only one).
func compilePlan(
	stats *storage.Statistics,
	tm storage.TypeManager,
	conj *ir.Conjunction,
	plan *planner.Plan,
	scopeTypes map[ir.Vertex]*concept.TypeSet,
	annotations *typeinfer.Annotations,
	boundInputs map[ir.VariableID]bool,
) (executor.ConjunctionExecutable, error) {
	var steps []executor.ConjunctionExecutable

	fusedAt, skip := fuseIndexedLinks(tm, scopeTypes, plan.Steps)
	for i, step := range plan.Steps {
		if skip[i] {
			continue
		}
		if exe, ok := fusedAt[i]; ok {
			steps = append(steps, exe)
			continue
		}
		exe, ok, err := compileStep(step, scopeTypes)
		if err != nil {
			return nil, err
		}
		if ok {
			steps = append(steps, exe)
		}
	}

	for _, nested := range conj.Nested {
		exe, err := compileNested(stats, tm, nested, annotations, boundInputs)
		if err != nil {
			return nil, err
		}
		steps = append(steps, exe)
	}

	switch len(steps) {
	case 0:
		return executor.SequenceStep{}, nil
	case 1:
		return steps[0], nil
	default:
		return executor.SequenceStep{Steps: steps}, nil
	}
}

// compileStep translates one planner.Step into its executable form.
// Label, RoleName and Kind constraints report ok=false: type inference
// has already folded their narrowing effect into scopeTypes, and the
// executor has no iterator for them at all.
func compileStep(step planner.Step, scopeTypes map[ir.Vertex]*concept.TypeSet) (executor.ConjunctionExecutable, bool, error) {
	switch c := step.Constraint.(type) {
	case ir.Isa:
		return intersectionOf(step, scopeTypes[c.Type]), true, nil
	case ir.Sub:
		return intersectionOf(step, scopeTypes[c.Subtype]), true, nil
	case ir.Owns:
		return intersectionOf(step, scopeTypes[c.OwnerType]), true, nil
	case ir.Relates:
		return intersectionOf(step, scopeTypes[c.RelationType]), true, nil
	case ir.Plays:
		return intersectionOf(step, scopeTypes[c.PlayerType]), true, nil
	case ir.Has, ir.Links:
		return intersectionOf(step, nil), true, nil

	case ir.Is, ir.Comparison:
		return executor.CheckStep{Constraint: step.Constraint}, true, nil

	case ir.ExpressionBinding, ir.FunctionCallBinding:
		return executor.AssignmentStep{Constraint: step.Constraint}, true, nil

	case ir.Label, ir.RoleName, ir.Kind:
		return nil, false, nil

	default:
		return nil, false, compileErrorf("%T has no known compiled form", step.Constraint)
	}
}

func intersectionOf(step planner.Step, candidates *concept.TypeSet) executor.ConjunctionExecutable {
	return executor.IntersectionStep{
		Constraints: []executor.CompiledConstraint{{
			Constraint: step.Constraint,
			Direction:  step.Direction,
			Modes:      step.Modes,
			Candidates: candidates,
		}},
	}
}

func compileNested(
	stats *storage.Statistics,
	tm storage.TypeManager,
	nested ir.NestedPattern,
	annotations *typeinfer.Annotations,
	boundInputs map[ir.VariableID]bool,
) (executor.ConjunctionExecutable, error) {
	switch np := nested.(type) {
	case ir.Negation:
		exe, _, err := Compile(stats, tm, np.Inner, annotations, boundInputs)
		if err != nil {
			return nil, err
		}
		return executor.NegationStep{Nested: exe}, nil

	case ir.Optional:
		exe, _, err := Compile(stats, tm, np.Inner, annotations, boundInputs)
		if err != nil {
			return nil, err
		}
		return executor.OptionalStep{Nested: exe}, nil

	case ir.Disjunction:
		branches := make([]executor.ConjunctionExecutable, len(np.Branches))
		for i, branch := range np.Branches {
			exe, _, err := Compile(stats, tm, branch, annotations, boundInputs)
			if err != nil {
				return nil, err
			}
			branches[i] = exe
		}
		return executor.DisjunctionStep{Branches: branches}, nil

	default:
		return nil, compileErrorf("%T is not a known nested pattern", nested)
	}
}
