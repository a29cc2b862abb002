package typeinfer

import (
	"github.com/wbrown/graphtype/diagnostics"
	"github.com/wbrown/graphtype/storage"
)

// pruneToFixedPoint repeatedly narrows every edge in g (and, recursively,
// every nested disjunction branch) until a full pass leaves every vertex's
// candidate set unchanged. Each pass can only shrink sets, never grow
// them, so the loop is guaranteed to terminate. trace may be nil.
func pruneToFixedPoint(g *graph, tm storage.TypeManager, trace *diagnostics.Collector) {
	iteration := 0
	for {
		changed := false
		narrowed := 0
		for _, e := range g.edges {
			if e.narrow(g.vertices, tm) {
				changed = true
				narrowed++
			}
		}
		for _, dg := range g.disjunctions {
			for _, branch := range dg.branches {
				pruneToFixedPoint(branch, tm, trace)
			}
		}
		iteration++
		trace.Add(diagnostics.Event{
			Name: diagnostics.TypeInferIteration,
			Data: map[string]interface{}{"iteration": iteration, "changed": narrowed},
		})
		if !changed {
			trace.Add(diagnostics.Event{
				Name: diagnostics.TypeInferConverged,
				Data: map[string]interface{}{"iteration": iteration},
			})
			return
		}
	}
}

// anyVertexEmpty reports whether pruning has driven any vertex's
// candidate set to empty, the signal that the conjunction (or branch) as
// a whole is unsatisfiable.
func (g *graph) anyVertexEmpty() bool {
	for _, ts := range g.vertices.sets {
		if ts.Len() == 0 {
			return true
		}
	}
	return false
}
