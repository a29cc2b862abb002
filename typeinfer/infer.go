package typeinfer

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/diagnostics"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/storage"
)

// Annotations is the pruned type-candidate table for every scope reached
// while inferring types over a block, keyed by each conjunction's own
// ScopeID. The planner consults it to cost constraints; the executor
// consults it to validate instances at runtime.
type Annotations struct {
	byScope map[ir.ScopeID]map[ir.Vertex]*concept.TypeSet
}

// TypesOf returns the candidate TypeSet inferred for vertex within scope,
// or false if that vertex was never touched by any constraint in scope.
func (a *Annotations) TypesOf(scope ir.ScopeID, vertex ir.Vertex) (*concept.TypeSet, bool) {
	byVertex, ok := a.byScope[scope]
	if !ok {
		return nil, false
	}
	ts, ok := byVertex[vertex]
	return ts, ok
}

// VariableTypes is a convenience lookup keyed directly by variable ID.
func (a *Annotations) VariableTypes(scope ir.ScopeID, v ir.Variable) (*concept.TypeSet, bool) {
	return a.TypesOf(scope, ir.VarVertex{Var: v})
}

// ScopeTypes returns the full vertex-candidate table inferred for scope,
// the shape planner.PlanConjunction takes as its scopeTypes argument. The
// caller must not mutate the returned map; it is the Annotations' own
// backing storage, not a copy.
func (a *Annotations) ScopeTypes(scope ir.ScopeID) map[ir.Vertex]*concept.TypeSet {
	return a.byScope[scope]
}

// InferTypes runs type inference over root and every conjunction nested
// within it (disjunction branches, negations, optionals), returning the
// pruned per-scope candidate sets or an Error if any scope's constraints
// admit no consistent type assignment.
//
// inputAnnotations carries types already fixed by an earlier pipeline
// stage (e.g. a prior match clause's output variables); it seeds the root
// scope's vertex candidates instead of the broadest schema-wide set.
// trace may be nil to run without instrumentation.
func InferTypes(
	tm storage.TypeManager,
	context *ir.BlockContext,
	registry *ir.VariableRegistry,
	root *ir.Conjunction,
	inputAnnotations map[ir.Vertex]*concept.TypeSet,
	trace *diagnostics.Collector,
) (*Annotations, error) {
	byScope := make(map[ir.ScopeID]map[ir.Vertex]*concept.TypeSet)
	if err := inferConjunction(tm, context, registry, root, inputAnnotations, byScope, trace); err != nil {
		return nil, err
	}
	// Variables from an earlier stage that no constraint in root touched
	// still need to be visible downstream; copy them through unchanged.
	rootSet := byScope[root.Scope]
	for vert, ts := range inputAnnotations {
		if _, ok := rootSet[vert]; !ok {
			rootSet[vert] = ts.Clone()
		}
	}
	return &Annotations{byScope: byScope}, nil
}

func inferConjunction(
	tm storage.TypeManager,
	context *ir.BlockContext,
	registry *ir.VariableRegistry,
	conj *ir.Conjunction,
	inputAnnotations map[ir.Vertex]*concept.TypeSet,
	byScope map[ir.ScopeID]map[ir.Vertex]*concept.TypeSet,
	trace *diagnostics.Collector,
) error {
	g := buildGraph(tm, context, registry, conj, inputAnnotations)
	pruneToFixedPoint(g, tm, trace)

	if g.anyVertexEmpty() {
		return unsatisfiablePattern(uint32(conj.Scope))
	}
	for _, dg := range g.disjunctions {
		for _, branch := range dg.branches {
			if branch.anyVertexEmpty() {
				return unsatisfiablePattern(uint32(conj.Scope))
			}
		}
	}

	byScope[conj.Scope] = g.vertices.sets

	// A variable that an Optional branch binds needs to surface at the
	// parent scope too, widened by whatever that branch inferred, since
	// the variable may simply be absent when the optional doesn't match.
	for _, nested := range conj.Nested {
		switch np := nested.(type) {
		case ir.Negation:
			if err := inferConjunction(tm, context, registry, np.Inner, copyVertexMap(g.vertices.sets), byScope, trace); err != nil {
				return err
			}
		case ir.Optional:
			if err := inferConjunction(tm, context, registry, np.Inner, copyVertexMap(g.vertices.sets), byScope, trace); err != nil {
				return err
			}
			inner := byScope[np.Inner.Scope]
			for _, v := range np.Inner.Variables() {
				vert := ir.Vertex(ir.VarVertex{Var: v})
				if ts, ok := inner[vert]; ok {
					if existing, ok := g.vertices.sets[vert]; ok {
						g.vertices.sets[vert] = existing.Union(ts)
					} else {
						g.vertices.sets[vert] = ts.Clone()
					}
				}
			}
		case ir.Disjunction:
			// Already pruned into g.disjunctions by buildGraph; record
			// each branch's own scope so the planner can look it up too.
			dg := g.disjunctions[0]
			g.disjunctions = g.disjunctions[1:]
			for i, branch := range np.Branches {
				byScope[branch.Scope] = dg.branches[i].vertices.sets
			}
		}
	}
	return nil
}
