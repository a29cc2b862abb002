// Package typeinfer prunes each variable's candidate type set to a fixed
// point over the constraints of a conjunction, using the schema capability
// graph (owns/plays/relates/sub) as the source of candidate types. It is
// the first compiler stage: its output feeds both the planner's cost
// model and the executor's runtime type checks.
package typeinfer

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/storage"
)

// vertexAnnotations holds the current candidate TypeSet for every vertex
// touched by a conjunction's constraints, keyed by the vertex itself.
// Label and Param vertices are typically singleton sets; Variable vertices
// are the ones pruning actually narrows.
type vertexAnnotations struct {
	sets map[ir.Vertex]*concept.TypeSet
}

func newVertexAnnotations() *vertexAnnotations {
	return &vertexAnnotations{sets: make(map[ir.Vertex]*concept.TypeSet)}
}

func (v *vertexAnnotations) get(vert ir.Vertex) (*concept.TypeSet, bool) {
	ts, ok := v.sets[vert]
	return ts, ok
}

// addOrIntersect narrows vert's candidate set to its intersection with
// next, or seeds it if this is the first time vert is annotated. It
// reports whether the set actually shrank, which is what drives the
// fixed-point loop to keep iterating.
func (v *vertexAnnotations) addOrIntersect(vert ir.Vertex, next *concept.TypeSet) bool {
	existing, ok := v.sets[vert]
	if !ok {
		v.sets[vert] = next.Clone()
		return true
	}
	keep := make(map[concept.TypeAnnotation]bool, next.Len())
	for _, t := range next.Items() {
		keep[t] = true
	}
	return existing.RetainIf(func(t concept.TypeAnnotation) bool { return keep[t] })
}

// graph is the per-conjunction working state the prune loop mutates.
// Constraints that can narrow a vertex's candidates implement edge;
// constraints that merely check a relationship between already-narrowed
// vertices (Is, Comparison) are skipped by pruning but still validated.
type graph struct {
	conjunction *ir.Conjunction
	context     *ir.BlockContext
	registry    *ir.VariableRegistry
	typeManager storage.TypeManager
	vertices    *vertexAnnotations
	edges       []edge
	disjunctions []disjunctionGraph
}

// disjunctionGraph holds one Disjunction's per-branch graphs, in the same
// order as its Branches slice, so a branch's pruned results can be folded
// back against the right ir.Disjunction later.
type disjunctionGraph struct {
	branches []*graph
}

func buildGraph(
	typeManager storage.TypeManager,
	context *ir.BlockContext,
	registry *ir.VariableRegistry,
	conjunction *ir.Conjunction,
	inputAnnotations map[ir.Vertex]*concept.TypeSet,
) *graph {
	g := &graph{
		conjunction: conjunction,
		context:     context,
		registry:    registry,
		typeManager: typeManager,
		vertices:    newVertexAnnotations(),
	}
	for vert, ts := range inputAnnotations {
		g.vertices.sets[vert] = ts.Clone()
	}
	for _, c := range conjunction.Constraints {
		if e := seedConstraint(g, c); e != nil {
			g.edges = append(g.edges, e)
		}
	}
	for _, nested := range conjunction.Nested {
		if disj, ok := nested.(ir.Disjunction); ok {
			dg := disjunctionGraph{}
			for _, branch := range disj.Branches {
				sub := buildGraph(typeManager, context, registry, branch, copyVertexMap(g.vertices.sets))
				dg.branches = append(dg.branches, sub)
			}
			g.disjunctions = append(g.disjunctions, dg)
		}
	}
	return g
}

func copyVertexMap(m map[ir.Vertex]*concept.TypeSet) map[ir.Vertex]*concept.TypeSet {
	out := make(map[ir.Vertex]*concept.TypeSet, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}
