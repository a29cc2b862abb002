package concept

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeSetDeterministicOrder(t *testing.T) {
	ts := NewTypeSet(
		NewTypeAnnotation(KindEntity, NewKeyword("person")),
		NewTypeAnnotation(KindEntity, NewKeyword("animal")),
		NewTypeAnnotation(KindRelation, NewKeyword("employment")),
	)
	items := ts.Items()
	require.Len(t, items, 3)
	// Entities sort before relations (KindEntity < KindRelation); within a
	// kind, labels sort lexicographically.
	require.Equal(t, "animal", items[0].Label.String())
	require.Equal(t, "person", items[1].Label.String())
	require.Equal(t, "employment", items[2].Label.String())
}

func TestTypeSetRetainIfMonotoneDecrease(t *testing.T) {
	ts := NewTypeSet(
		NewTypeAnnotation(KindEntity, NewKeyword("a")),
		NewTypeAnnotation(KindEntity, NewKeyword("b")),
	)
	before := ts.Len()
	changed := ts.RetainIf(func(ta TypeAnnotation) bool { return ta.Label.String() != "a" })
	require.True(t, changed)
	require.Less(t, ts.Len(), before)
	require.False(t, ts.Contains(NewTypeAnnotation(KindEntity, NewKeyword("a"))))
}

func TestTypeSetIntersectUnion(t *testing.T) {
	a := NewTypeSet(NewTypeAnnotation(KindEntity, NewKeyword("x")), NewTypeAnnotation(KindEntity, NewKeyword("y")))
	b := NewTypeSet(NewTypeAnnotation(KindEntity, NewKeyword("y")), NewTypeAnnotation(KindEntity, NewKeyword("z")))

	inter := a.Intersect(b)
	require.Equal(t, 1, inter.Len())
	require.True(t, inter.Contains(NewTypeAnnotation(KindEntity, NewKeyword("y"))))

	union := a.Union(b)
	require.Equal(t, 3, union.Len())
}
