package planner

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/storage"
)

// PlanConjunction builds an ordered, direction-chosen execution plan for
// one conjunction, given the pruned type candidates typeinfer produced
// for its scope and the statistics table the cost model reads from.
//
// boundInputs names variables already bound by an enclosing scope or an
// earlier pipeline stage; the planner schedules constraints that consume
// them first when doing so is cheaper, rather than re-deriving their
// values.
func PlanConjunction(
	stats *storage.Statistics,
	typeManager storage.TypeManager,
	conjunction *ir.Conjunction,
	scopeTypes map[ir.Vertex]*concept.TypeSet,
	boundInputs map[ir.VariableID]bool,
) *Plan {
	g := buildGraph(stats, typeManager, conjunction, scopeTypes)
	return order(g, boundInputs)
}
