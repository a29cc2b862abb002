package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/executor"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/storage"
	"github.com/wbrown/graphtype/typeinfer"
)

// binaryRelationSchema covers one binary relation type (employment,
// relating employee/employer) with a single player type able to fill
// either role, enough to drive fuseIndexedLinks end to end through
// Compile.
type binaryRelationSchema struct {
	person, employment, employeeRole, employerRole concept.TypeAnnotation
}

func newBinaryRelationSchema() *binaryRelationSchema {
	return &binaryRelationSchema{
		person:       concept.NewTypeAnnotation(concept.KindEntity, concept.NewKeyword("person")),
		employment:   concept.NewTypeAnnotation(concept.KindRelation, concept.NewKeyword("employment")),
		employeeRole: concept.NewTypeAnnotation(concept.KindRole, concept.NewKeyword("employment:employee")),
		employerRole: concept.NewTypeAnnotation(concept.KindRole, concept.NewKeyword("employment:employer")),
	}
}

func (s *binaryRelationSchema) GetByLabel(kind concept.TypeKind, label concept.Keyword) (concept.TypeAnnotation, bool) {
	for _, t := range s.AllOfKind(kind) {
		if t.Label == label {
			return t, true
		}
	}
	return concept.TypeAnnotation{}, false
}
func (s *binaryRelationSchema) GetByRoleName(name string) []concept.TypeAnnotation {
	return s.AllOfKind(concept.KindRole)
}
func (s *binaryRelationSchema) Supertypes(t concept.TypeAnnotation) []concept.TypeAnnotation { return nil }
func (s *binaryRelationSchema) Subtypes(t concept.TypeAnnotation) []concept.TypeAnnotation   { return nil }
func (s *binaryRelationSchema) IsSubtype(sub, t concept.TypeAnnotation) bool                 { return sub == t }
func (s *binaryRelationSchema) Owns(ownerType concept.TypeAnnotation) []storage.RoleAnnotation {
	return nil
}
func (s *binaryRelationSchema) OwnersOf(attributeType concept.TypeAnnotation) []concept.TypeAnnotation {
	return nil
}
func (s *binaryRelationSchema) Plays(playerType concept.TypeAnnotation) []storage.RoleAnnotation {
	if playerType == s.person {
		return []storage.RoleAnnotation{{Role: s.employeeRole}, {Role: s.employerRole}}
	}
	return nil
}
func (s *binaryRelationSchema) PlayersOf(roleType concept.TypeAnnotation) []concept.TypeAnnotation {
	return []concept.TypeAnnotation{s.person}
}
func (s *binaryRelationSchema) Relates(relationType concept.TypeAnnotation) []storage.RoleAnnotation {
	if relationType == s.employment {
		return []storage.RoleAnnotation{{Role: s.employeeRole}, {Role: s.employerRole}}
	}
	return nil
}
func (s *binaryRelationSchema) RelationsOf(roleType concept.TypeAnnotation) []concept.TypeAnnotation {
	return []concept.TypeAnnotation{s.employment}
}
func (s *binaryRelationSchema) AllOfKind(kind concept.TypeKind) []concept.TypeAnnotation {
	switch kind {
	case concept.KindEntity:
		return []concept.TypeAnnotation{s.person}
	case concept.KindRelation:
		return []concept.TypeAnnotation{s.employment}
	case concept.KindRole:
		return []concept.TypeAnnotation{s.employeeRole, s.employerRole}
	default:
		return nil
	}
}
func (s *binaryRelationSchema) IsAbstract(t concept.TypeAnnotation) bool { return false }
func (s *binaryRelationSchema) AttributeConstraints(attributeType concept.TypeAnnotation) storage.AttributeConstraints {
	return storage.AttributeConstraints{}
}

func newBinaryRelationStats(s *binaryRelationSchema) *storage.Statistics {
	stats := storage.NewStatistics()
	stats.EntityCounts[s.person] = 10000
	stats.RelationCounts[s.employment] = 500
	stats.RelationRolePlayerCounts[s.employment] = map[concept.TypeAnnotation]map[concept.TypeAnnotation]uint64{
		s.employeeRole: {s.person: 1},
		s.employerRole: {s.person: 1},
	}
	stats.PlayerRoleRelationCounts[s.person] = map[concept.TypeAnnotation]map[concept.TypeAnnotation]uint64{
		s.employeeRole: {s.employment: 1},
		s.employerRole: {s.employment: 1},
	}
	return stats
}

// `$r isa employment; $r links (employee: $e); $r links (employer: $p);`
// against a binary relation type compiles to two steps: the Isa's own
// IntersectionStep and a single IntersectionStep carrying one
// ir.IndexedLinks constraint instead of two separate Links scans joined
// through $r, even though the planner itself (exercised directly in
// planner_test.go's TestPlanLinksTwoRoles) still schedules three
// independent steps.
func TestCompileFusesBinaryRelationLinksIntoIndexedLinks(t *testing.T) {
	schema := newBinaryRelationSchema()
	stats := newBinaryRelationStats(schema)
	registry := ir.NewVariableRegistry()
	rel := registry.Declare("r", concept.CategoryRelation, ir.LocallyBinding)
	employee := registry.Declare("e", concept.CategoryThing, ir.LocallyBinding)
	employer := registry.Declare("p", concept.CategoryThing, ir.LocallyBinding)

	conj := ir.NewConjunction(ir.RootScope)
	conj.AddConstraint(ir.Isa{Thing: ir.VarVertex{Var: rel}, Type: ir.LabelVertex{Label: concept.NewKeyword("employment")}})
	conj.AddConstraint(ir.Links{Relation: ir.VarVertex{Var: rel}, Player: ir.VarVertex{Var: employee}, Role: ir.LabelVertex{Label: concept.NewKeyword("employment:employee")}})
	conj.AddConstraint(ir.Links{Relation: ir.VarVertex{Var: rel}, Player: ir.VarVertex{Var: employer}, Role: ir.LabelVertex{Label: concept.NewKeyword("employment:employer")}})

	ctx := ir.NewBlockContext(registry)
	ann, err := typeinfer.InferTypes(schema, ctx, registry, conj, nil, nil)
	require.NoError(t, err)

	exe, plan, err := Compile(stats, schema, conj, ann, nil)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 3, "the planner itself still schedules three independent steps")

	seq, ok := exe.(executor.SequenceStep)
	require.True(t, ok, "expected the Isa step plus the fused Links step, got %T", exe)
	require.Len(t, seq.Steps, 2)

	var fused ir.IndexedLinks
	found := false
	for _, step := range seq.Steps {
		ix, ok := step.(executor.IntersectionStep)
		require.True(t, ok, "each step should be a single IntersectionStep, got %T", step)
		require.Len(t, ix.Constraints, 1)
		if c, isIndexed := ix.Constraints[0].Constraint.(ir.IndexedLinks); isIndexed {
			fused = c
			found = true
		}
	}
	require.True(t, found, "expected one step carrying ir.IndexedLinks")

	relVar, _ := ir.AsVariable(fused.Relation)
	require.Equal(t, rel.ID, relVar.ID)

	roles := map[ir.VariableID]bool{}
	startVar, _ := ir.AsVariable(fused.PlayerStart)
	endVar, _ := ir.AsVariable(fused.PlayerEnd)
	roles[startVar.ID] = true
	roles[endVar.ID] = true
	require.True(t, roles[employee.ID])
	require.True(t, roles[employer.ID])
}

// A relation type that relates three or more roles never fuses: each
// Links constraint on it compiles to its own IntersectionStep.
func TestCompileDoesNotFuseTernaryRelationLinks(t *testing.T) {
	schema := newBinaryRelationSchema()
	// Widen employment to a third role so isBinaryRelation declines fusion.
	viaRole := concept.NewTypeAnnotation(concept.KindRole, concept.NewKeyword("employment:via"))
	wideSchema := &ternaryRelationSchema{binaryRelationSchema: schema, viaRole: viaRole}
	stats := newBinaryRelationStats(schema)
	stats.RelationRolePlayerCounts[schema.employment][viaRole] = map[concept.TypeAnnotation]uint64{schema.person: 1}
	stats.PlayerRoleRelationCounts[schema.person][viaRole] = map[concept.TypeAnnotation]uint64{schema.employment: 1}

	registry := ir.NewVariableRegistry()
	rel := registry.Declare("r", concept.CategoryRelation, ir.LocallyBinding)
	employee := registry.Declare("e", concept.CategoryThing, ir.LocallyBinding)
	employer := registry.Declare("p", concept.CategoryThing, ir.LocallyBinding)

	conj := ir.NewConjunction(ir.RootScope)
	conj.AddConstraint(ir.Isa{Thing: ir.VarVertex{Var: rel}, Type: ir.LabelVertex{Label: concept.NewKeyword("employment")}})
	conj.AddConstraint(ir.Links{Relation: ir.VarVertex{Var: rel}, Player: ir.VarVertex{Var: employee}, Role: ir.LabelVertex{Label: concept.NewKeyword("employment:employee")}})
	conj.AddConstraint(ir.Links{Relation: ir.VarVertex{Var: rel}, Player: ir.VarVertex{Var: employer}, Role: ir.LabelVertex{Label: concept.NewKeyword("employment:employer")}})

	ctx := ir.NewBlockContext(registry)
	ann, err := typeinfer.InferTypes(wideSchema, ctx, registry, conj, nil, nil)
	require.NoError(t, err)

	exe, _, err := Compile(stats, wideSchema, conj, ann, nil)
	require.NoError(t, err)

	seq, ok := exe.(executor.SequenceStep)
	require.True(t, ok, "expected an unfused SequenceStep, got %T", exe)
	for _, step := range seq.Steps {
		ix, ok := step.(executor.IntersectionStep)
		require.True(t, ok)
		require.Len(t, ix.Constraints, 1)
		_, isIndexed := ix.Constraints[0].Constraint.(ir.IndexedLinks)
		require.False(t, isIndexed)
	}
}

// ternaryRelationSchema wraps binaryRelationSchema and reports a third
// role for employment, so Relates(employment) has length 3.
type ternaryRelationSchema struct {
	*binaryRelationSchema
	viaRole concept.TypeAnnotation
}

func (s *ternaryRelationSchema) Relates(relationType concept.TypeAnnotation) []storage.RoleAnnotation {
	base := s.binaryRelationSchema.Relates(relationType)
	if base == nil {
		return nil
	}
	return append(append([]storage.RoleAnnotation{}, base...), storage.RoleAnnotation{Role: s.viaRole})
}

func (s *ternaryRelationSchema) AllOfKind(kind concept.TypeKind) []concept.TypeAnnotation {
	base := s.binaryRelationSchema.AllOfKind(kind)
	if kind == concept.KindRole {
		return append(append([]concept.TypeAnnotation{}, base...), s.viaRole)
	}
	return base
}
