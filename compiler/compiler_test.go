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

// fakeSchema is a minimal TypeManager covering one entity owning one
// attribute, enough to exercise Isa/Has compilation end to end.
type fakeSchema struct {
	person, name concept.TypeAnnotation
	owns         map[concept.TypeAnnotation][]storage.RoleAnnotation
}

func newFakeSchema() *fakeSchema {
	person := concept.NewTypeAnnotation(concept.KindEntity, concept.NewKeyword("person"))
	name := concept.NewTypeAnnotation(concept.KindAttribute, concept.NewKeyword("name"))
	return &fakeSchema{
		person: person,
		name:   name,
		owns:   map[concept.TypeAnnotation][]storage.RoleAnnotation{person: {{Role: name}}},
	}
}

func (f *fakeSchema) GetByLabel(kind concept.TypeKind, label concept.Keyword) (concept.TypeAnnotation, bool) {
	for _, t := range f.AllOfKind(kind) {
		if t.Label == label {
			return t, true
		}
	}
	return concept.TypeAnnotation{}, false
}
func (f *fakeSchema) GetByRoleName(name string) []concept.TypeAnnotation { return nil }
func (f *fakeSchema) Supertypes(t concept.TypeAnnotation) []concept.TypeAnnotation { return nil }
func (f *fakeSchema) Subtypes(t concept.TypeAnnotation) []concept.TypeAnnotation   { return nil }
func (f *fakeSchema) IsSubtype(sub, t concept.TypeAnnotation) bool                 { return sub == t }
func (f *fakeSchema) Owns(ownerType concept.TypeAnnotation) []storage.RoleAnnotation {
	return f.owns[ownerType]
}
func (f *fakeSchema) OwnersOf(attributeType concept.TypeAnnotation) []concept.TypeAnnotation {
	return nil
}
func (f *fakeSchema) Plays(playerType concept.TypeAnnotation) []storage.RoleAnnotation { return nil }
func (f *fakeSchema) PlayersOf(roleType concept.TypeAnnotation) []concept.TypeAnnotation {
	return nil
}
func (f *fakeSchema) Relates(relationType concept.TypeAnnotation) []storage.RoleAnnotation {
	return nil
}
func (f *fakeSchema) RelationsOf(roleType concept.TypeAnnotation) []concept.TypeAnnotation {
	return nil
}
func (f *fakeSchema) AllOfKind(kind concept.TypeKind) []concept.TypeAnnotation {
	switch kind {
	case concept.KindEntity:
		return []concept.TypeAnnotation{f.person}
	case concept.KindAttribute:
		return []concept.TypeAnnotation{f.name}
	default:
		return nil
	}
}
func (f *fakeSchema) IsAbstract(t concept.TypeAnnotation) bool { return false }
func (f *fakeSchema) AttributeConstraints(attributeType concept.TypeAnnotation) storage.AttributeConstraints {
	return storage.AttributeConstraints{}
}

func newStats(schema *fakeSchema) *storage.Statistics {
	s := storage.NewStatistics()
	s.EntityCounts[schema.person] = 100
	s.AttributeCounts[schema.name] = 100
	s.HasAttributeCounts[schema.person] = map[concept.TypeAnnotation]uint64{schema.name: 1}
	s.AttributeOwnerCounts[schema.name] = map[concept.TypeAnnotation]uint64{schema.person: 1}
	return s
}

// `$x isa person; $x has name $n;` compiles to a two-step sequence, one
// IntersectionStep per constraint; the Isa step carries the candidates
// type inference narrowed for its type vertex.
func TestCompileIsaHasSequence(t *testing.T) {
	schema := newFakeSchema()
	stats := newStats(schema)
	registry := ir.NewVariableRegistry()
	x := registry.Declare("x", concept.CategoryThing, ir.LocallyBinding)
	n := registry.Declare("n", concept.CategoryAttribute, ir.LocallyBinding)

	conj := ir.NewConjunction(ir.RootScope)
	conj.AddConstraint(ir.Isa{Thing: ir.VarVertex{Var: x}, Type: ir.LabelVertex{Label: concept.NewKeyword("person")}})
	conj.AddConstraint(ir.Has{Owner: ir.VarVertex{Var: x}, Attribute: ir.VarVertex{Var: n}})

	ctx := ir.NewBlockContext(registry)
	ann, err := typeinfer.InferTypes(schema, ctx, registry, conj, nil, nil)
	require.NoError(t, err)

	exe, plan, err := Compile(stats, schema, conj, ann, nil)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)

	seq, ok := exe.(executor.SequenceStep)
	require.True(t, ok)
	require.Len(t, seq.Steps, 2)

	for _, step := range seq.Steps {
		ix, ok := step.(executor.IntersectionStep)
		require.True(t, ok)
		require.Len(t, ix.Constraints, 1)
	}

	// The planner may schedule Has before Isa, so find the Isa step by kind.
	var isaStep executor.IntersectionStep
	for _, step := range seq.Steps {
		ix := step.(executor.IntersectionStep)
		if _, isIsa := ix.Constraints[0].Constraint.(ir.Isa); isIsa {
			isaStep = ix
		}
	}
	require.Len(t, isaStep.Constraints, 1)
	require.NotNil(t, isaStep.Constraints[0].Candidates)
	require.True(t, isaStep.Constraints[0].Candidates.Contains(schema.person))
}

// A single-constraint conjunction compiles directly to its one step,
// with no SequenceStep wrapper.
func TestCompileSingleConstraintSkipsSequence(t *testing.T) {
	schema := newFakeSchema()
	stats := newStats(schema)
	registry := ir.NewVariableRegistry()
	x := registry.Declare("x", concept.CategoryThing, ir.LocallyBinding)

	conj := ir.NewConjunction(ir.RootScope)
	conj.AddConstraint(ir.Isa{Thing: ir.VarVertex{Var: x}, Type: ir.LabelVertex{Label: concept.NewKeyword("person")}})

	ctx := ir.NewBlockContext(registry)
	ann, err := typeinfer.InferTypes(schema, ctx, registry, conj, nil, nil)
	require.NoError(t, err)

	exe, _, err := Compile(stats, schema, conj, ann, nil)
	require.NoError(t, err)

	_, ok := exe.(executor.IntersectionStep)
	require.True(t, ok)
}

// A negated inner conjunction compiles to a NegationStep wrapping its
// own recompiled plan, re-planned against the inner scope's own types.
func TestCompileNegation(t *testing.T) {
	schema := newFakeSchema()
	stats := newStats(schema)
	registry := ir.NewVariableRegistry()
	x := registry.Declare("x", concept.CategoryThing, ir.LocallyBinding)
	n := registry.Declare("n", concept.CategoryAttribute, ir.LocallyBinding)

	inner := ir.NewConjunction(ir.ScopeID(1))
	inner.AddConstraint(ir.Has{Owner: ir.VarVertex{Var: x}, Attribute: ir.VarVertex{Var: n}})

	conj := ir.NewConjunction(ir.RootScope)
	conj.AddConstraint(ir.Isa{Thing: ir.VarVertex{Var: x}, Type: ir.LabelVertex{Label: concept.NewKeyword("person")}})
	conj.AddNested(ir.Negation{Inner: inner})

	ctx := ir.NewBlockContext(registry)
	ann, err := typeinfer.InferTypes(schema, ctx, registry, conj, nil, nil)
	require.NoError(t, err)

	exe, _, err := Compile(stats, schema, conj, ann, nil)
	require.NoError(t, err)

	seq, ok := exe.(executor.SequenceStep)
	require.True(t, ok)
	require.Len(t, seq.Steps, 2)
	_, ok = seq.Steps[1].(executor.NegationStep)
	require.True(t, ok)
}

// Label/RoleName/Kind constraints never reach the executable tree: type
// inference already folded their narrowing into the candidate sets the
// surviving steps carry.
func TestCompileSkipsLabelOnlyConstraint(t *testing.T) {
	schema := newFakeSchema()
	stats := newStats(schema)
	registry := ir.NewVariableRegistry()
	x := registry.Declare("x", concept.CategoryThing, ir.LocallyBinding)

	conj := ir.NewConjunction(ir.RootScope)
	conj.AddConstraint(ir.Isa{Thing: ir.VarVertex{Var: x}, Type: ir.LabelVertex{Label: concept.NewKeyword("person")}})
	conj.AddConstraint(ir.Label{TypeVar: ir.VarVertex{Var: x}, Name: concept.NewKeyword("person")})

	ctx := ir.NewBlockContext(registry)
	ann, err := typeinfer.InferTypes(schema, ctx, registry, conj, nil, nil)
	require.NoError(t, err)

	exe, plan, err := Compile(stats, schema, conj, ann, nil)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)

	_, ok := exe.(executor.IntersectionStep)
	require.True(t, ok)
}
