package compiler

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/executor"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/planner"
	"github.com/wbrown/graphtype/storage"
)

// fuseIndexedLinks finds pairs of scheduled Links steps that constrain
// the same relation variable under two distinct, statically-named roles,
// and whose relation type relates exactly two roles (a binary relation),
// and replaces each pair with a single IntersectionStep driven by an
// ir.IndexedLinks constraint instead of two separate relation-joined
// scans. It returns, keyed by the first step's index in plan.Steps, the
// fused executable to substitute there, and the set of step indices
// (always the second step of a fused pair) to drop entirely.
func fuseIndexedLinks(
	tm storage.TypeManager,
	scopeTypes map[ir.Vertex]*concept.TypeSet,
	steps []planner.Step,
) (map[int]executor.ConjunctionExecutable, map[int]bool) {
	fused := make(map[int]executor.ConjunctionExecutable)
	skip := make(map[int]bool)
	if tm == nil {
		return fused, skip
	}

	for i := 0; i < len(steps); i++ {
		if skip[i] {
			continue
		}
		first, ok := steps[i].Constraint.(ir.Links)
		if !ok {
			continue
		}
		firstRole, ok := first.Role.(ir.LabelVertex)
		if !ok {
			continue
		}
		relVar, ok := ir.AsVariable(first.Relation)
		if !ok {
			continue
		}

		for j := i + 1; j < len(steps); j++ {
			if skip[j] {
				continue
			}
			second, ok := steps[j].Constraint.(ir.Links)
			if !ok {
				continue
			}
			secondRole, ok := second.Role.(ir.LabelVertex)
			if !ok || secondRole.Label == firstRole.Label {
				continue
			}
			otherRelVar, ok := ir.AsVariable(second.Relation)
			if !ok || otherRelVar != relVar {
				continue
			}
			if !isBinaryRelation(tm, scopeTypes[first.Relation]) {
				continue
			}

			fused[i] = executor.IntersectionStep{
				Constraints: []executor.CompiledConstraint{{
					Constraint: ir.IndexedLinks{
						Relation:    first.Relation,
						PlayerStart: first.Player,
						RoleStart:   first.Role,
						PlayerEnd:   second.Player,
						RoleEnd:     second.Role,
					},
					Direction: steps[i].Direction,
					Modes:     mergeStepModes(steps[i].Modes, steps[j].Modes),
				}},
			}
			skip[j] = true
			break
		}
	}
	return fused, skip
}

// isBinaryRelation reports whether every candidate relation type in
// types relates exactly two roles. A mixed candidate set (some binary,
// some not) declines fusion rather than risk mis-indexing the
// non-binary candidates.
func isBinaryRelation(tm storage.TypeManager, types *concept.TypeSet) bool {
	if types == nil || types.Len() == 0 {
		return false
	}
	for _, t := range types.Items() {
		if len(tm.Relates(t)) != 2 {
			return false
		}
	}
	return true
}

func mergeStepModes(a, b map[ir.VariableID]planner.VariableMode) map[ir.VariableID]planner.VariableMode {
	out := make(map[ir.VariableID]planner.VariableMode, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
