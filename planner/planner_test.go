package planner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/storage"
)

func newStats() *storage.Statistics {
	s := storage.NewStatistics()
	person := concept.NewTypeAnnotation(concept.KindEntity, concept.NewKeyword("person"))
	name := concept.NewTypeAnnotation(concept.KindAttribute, concept.NewKeyword("name"))
	employment := concept.NewTypeAnnotation(concept.KindRelation, concept.NewKeyword("employment"))
	employeeRole := concept.NewTypeAnnotation(concept.KindRole, concept.NewKeyword("employment:employee"))
	employerRole := concept.NewTypeAnnotation(concept.KindRole, concept.NewKeyword("employment:employer"))

	s.EntityCounts[person] = 10000
	s.AttributeCounts[name] = 9000
	s.RelationCounts[employment] = 500
	s.HasAttributeCounts[person] = map[concept.TypeAnnotation]uint64{name: 1}
	s.AttributeOwnerCounts[name] = map[concept.TypeAnnotation]uint64{person: 1}
	s.RelationRolePlayerCounts[employment] = map[concept.TypeAnnotation]map[concept.TypeAnnotation]uint64{
		employeeRole: {person: 1},
		employerRole: {person: 1},
	}
	s.PlayerRoleRelationCounts[person] = map[concept.TypeAnnotation]map[concept.TypeAnnotation]uint64{
		employeeRole: {employment: 1},
		employerRole: {employment: 1},
	}
	return s
}

// S4: `$r isa employment; $r links (employee: $e); $r links (employer: $p);`
// plans all three constraints; whichever step runs first binds $r, and
// every later Links step reuses that binding as an input.
func TestPlanLinksTwoRoles(t *testing.T) {
	stats := newStats()
	registry := ir.NewVariableRegistry()
	rel := registry.Declare("r", concept.CategoryRelation, ir.LocallyBinding)
	employee := registry.Declare("e", concept.CategoryThing, ir.LocallyBinding)
	employer := registry.Declare("p", concept.CategoryThing, ir.LocallyBinding)

	employment := concept.NewTypeAnnotation(concept.KindRelation, concept.NewKeyword("employment"))
	person := concept.NewTypeAnnotation(concept.KindEntity, concept.NewKeyword("person"))
	employeeRole := concept.NewTypeAnnotation(concept.KindRole, concept.NewKeyword("employment:employee"))
	employerRole := concept.NewTypeAnnotation(concept.KindRole, concept.NewKeyword("employment:employer"))

	conj := ir.NewConjunction(ir.RootScope)
	conj.AddConstraint(ir.Isa{Thing: ir.VarVertex{Var: rel}, Type: ir.LabelVertex{Label: concept.NewKeyword("employment")}})
	conj.AddConstraint(ir.Links{Relation: ir.VarVertex{Var: rel}, Player: ir.VarVertex{Var: employee}, Role: ir.LabelVertex{Label: concept.NewKeyword("employment:employee")}})
	conj.AddConstraint(ir.Links{Relation: ir.VarVertex{Var: rel}, Player: ir.VarVertex{Var: employer}, Role: ir.LabelVertex{Label: concept.NewKeyword("employment:employer")}})

	types := map[ir.Vertex]*concept.TypeSet{
		ir.VarVertex{Var: rel}:      concept.NewTypeSet(employment),
		ir.VarVertex{Var: employee}: concept.NewTypeSet(person),
		ir.VarVertex{Var: employer}: concept.NewTypeSet(person),
		ir.LabelVertex{Label: concept.NewKeyword("employment")}:          concept.NewTypeSet(employment),
		ir.LabelVertex{Label: concept.NewKeyword("employment:employee")}: concept.NewTypeSet(employeeRole),
		ir.LabelVertex{Label: concept.NewKeyword("employment:employer")}: concept.NewTypeSet(employerRole),
	}

	plan := PlanConjunction(stats, nil, conj, types, nil)
	require.Len(t, plan.Steps, 3)

	relBound := false
	for _, step := range plan.Steps {
		if _, ok := step.Constraint.(ir.Isa); ok {
			relBound = true
		}
		if links, ok := step.Constraint.(ir.Links); ok {
			v, _ := ir.AsVariable(links.Relation)
			require.Equal(t, relBound, step.Modes[v.ID] == ModeInput)
			relBound = true
		}
	}
}

// Planning the same conjunction and bound-input set twice produces
// identical step ordering.
func TestPlanIsDeterministic(t *testing.T) {
	stats := newStats()
	registry := ir.NewVariableRegistry()
	x := registry.Declare("x", concept.CategoryThing, ir.LocallyBinding)
	n := registry.Declare("n", concept.CategoryAttribute, ir.LocallyBinding)

	person := concept.NewTypeAnnotation(concept.KindEntity, concept.NewKeyword("person"))
	name := concept.NewTypeAnnotation(concept.KindAttribute, concept.NewKeyword("name"))

	conj := ir.NewConjunction(ir.RootScope)
	conj.AddConstraint(ir.Isa{Thing: ir.VarVertex{Var: x}, Type: ir.LabelVertex{Label: concept.NewKeyword("person")}})
	conj.AddConstraint(ir.Has{Owner: ir.VarVertex{Var: x}, Attribute: ir.VarVertex{Var: n}})

	types := map[ir.Vertex]*concept.TypeSet{
		ir.VarVertex{Var: x}: concept.NewTypeSet(person),
		ir.VarVertex{Var: n}: concept.NewTypeSet(name),
		ir.LabelVertex{Label: concept.NewKeyword("person")}: concept.NewTypeSet(person),
	}

	p1 := PlanConjunction(stats, nil, conj, types, nil)
	p2 := PlanConjunction(stats, nil, conj, types, nil)

	require.Equal(t, len(p1.Steps), len(p2.Steps))
	for i := range p1.Steps {
		require.Equal(t, p1.Steps[i].Constraint.String(), p2.Steps[i].Constraint.String())
	}
	require.InDelta(t, p1.TotalCost, p2.TotalCost, 1e-9)
}

// Every variable a plan's steps touch must have exactly one step that
// assigns it ModeOutput (it is produced exactly once).
func TestPlanEveryVariableBoundExactlyOnce(t *testing.T) {
	stats := newStats()
	registry := ir.NewVariableRegistry()
	x := registry.Declare("x", concept.CategoryThing, ir.LocallyBinding)
	n := registry.Declare("n", concept.CategoryAttribute, ir.LocallyBinding)

	person := concept.NewTypeAnnotation(concept.KindEntity, concept.NewKeyword("person"))
	name := concept.NewTypeAnnotation(concept.KindAttribute, concept.NewKeyword("name"))

	conj := ir.NewConjunction(ir.RootScope)
	conj.AddConstraint(ir.Isa{Thing: ir.VarVertex{Var: x}, Type: ir.LabelVertex{Label: concept.NewKeyword("person")}})
	conj.AddConstraint(ir.Has{Owner: ir.VarVertex{Var: x}, Attribute: ir.VarVertex{Var: n}})

	types := map[ir.Vertex]*concept.TypeSet{
		ir.VarVertex{Var: x}: concept.NewTypeSet(person),
		ir.VarVertex{Var: n}: concept.NewTypeSet(name),
		ir.LabelVertex{Label: concept.NewKeyword("person")}: concept.NewTypeSet(person),
	}

	plan := PlanConjunction(stats, nil, conj, types, nil)
	outputs := make(map[ir.VariableID]int)
	for _, step := range plan.Steps {
		for v, mode := range step.Modes {
			if mode == ModeOutput {
				outputs[v]++
			}
		}
	}
	for _, count := range outputs {
		require.Equal(t, 1, count)
	}
}
