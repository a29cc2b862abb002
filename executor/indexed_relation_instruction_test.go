package executor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
)

// drainIndexedRelationIterator walks it to exhaustion, copying out each
// row's bindings for the five indexed-relation variables.
func drainIndexedRelationIterator(t *testing.T, it InstructionIterator, vars ...ir.VariableID) []Row {
	t.Helper()
	var rows []Row
	for {
		_, ok, err := it.PeekFirstUnboundValue()
		require.NoError(t, err)
		if !ok {
			break
		}
		row := Row{}
		require.NoError(t, it.WriteValues(row))
		filtered := Row{}
		for _, v := range vars {
			filtered[v] = row[v]
		}
		rows = append(rows, filtered)
		require.NoError(t, it.AdvanceSingle())
	}
	require.NoError(t, it.Close())
	return rows
}

func seedIndexedPair(t *testing.T, snap *memSnapshot, playerStart, playerEnd, relation, roleStart, roleEnd concept.Identity) {
	t.Helper()
	require.NoError(t, snap.Put(indexedPlayersKey(playerStart.Bytes(), playerEnd.Bytes(), relation.Bytes(), roleStart.Bytes(), roleEnd.Bytes()), nil))
	require.NoError(t, snap.Put(indexedPlayersInvertedKey(playerEnd.Bytes(), playerStart.Bytes(), relation.Bytes(), roleEnd.Bytes(), roleStart.Bytes()), nil))
}

func TestChooseIndexedRelationMode(t *testing.T) {
	alice := concept.NewIdentity("alice")
	bob := concept.NewIdentity("bob")
	rel := concept.NewIdentity("rel")

	require.Equal(t, IndexedRelationBoundStartBoundEndBoundRelation,
		chooseIndexedRelationMode(IndexedRelationBindings{PlayerStart: &alice, PlayerEnd: &bob, Relation: &rel}, false))
	require.Equal(t, IndexedRelationBoundStartBoundEnd,
		chooseIndexedRelationMode(IndexedRelationBindings{PlayerEnd: &bob}, false))
	require.Equal(t, IndexedRelationBoundStartBoundEnd,
		chooseIndexedRelationMode(IndexedRelationBindings{PlayerStart: &alice, PlayerEnd: &bob}, false))
	require.Equal(t, IndexedRelationBoundStart,
		chooseIndexedRelationMode(IndexedRelationBindings{PlayerStart: &alice}, false))
	require.Equal(t, IndexedRelationUnboundInvertedToPlayer,
		chooseIndexedRelationMode(IndexedRelationBindings{}, true))
	require.Equal(t, IndexedRelationUnbound,
		chooseIndexedRelationMode(IndexedRelationBindings{}, false))
}

func TestIndexedRelationIteratorUnboundScansForward(t *testing.T) {
	snap := newMemSnapshot()
	alice := concept.NewIdentity("alice")
	bob := concept.NewIdentity("bob")
	carol := concept.NewIdentity("carol")
	dave := concept.NewIdentity("dave")
	rel1 := concept.NewIdentity("rel-1")
	rel2 := concept.NewIdentity("rel-2")
	employee := concept.NewIdentity("employment:employee")
	employer := concept.NewIdentity("employment:employer")

	seedIndexedPair(t, snap, alice, bob, rel1, employee, employer)
	seedIndexedPair(t, snap, carol, dave, rel2, employee, employer)

	playerStart, roleStart, playerEnd, roleEnd, relVar := ir.VariableID(1), ir.VariableID(2), ir.VariableID(3), ir.VariableID(4), ir.VariableID(5)

	it, err := NewIndexedRelationIterator(snap, playerStart, roleStart, playerEnd, roleEnd, relVar, IndexedRelationBindings{}, false)
	require.NoError(t, err)
	require.Equal(t, playerStart, it.SortVariable())

	rows := drainIndexedRelationIterator(t, it, playerStart, playerEnd, relVar, roleStart, roleEnd)
	require.Len(t, rows, 2)
	// Rows come out ordered by playerStart's hash, not the seed order.
	first, second := alice, carol
	firstEnd, secondEnd := bob, dave
	if carol.Compare(alice) < 0 {
		first, second = carol, alice
		firstEnd, secondEnd = dave, bob
	}
	require.True(t, rows[0][playerStart].Thing.Equal(first))
	require.True(t, rows[0][playerEnd].Thing.Equal(firstEnd))
	require.True(t, rows[1][playerStart].Thing.Equal(second))
	require.True(t, rows[1][playerEnd].Thing.Equal(secondEnd))
}

func TestIndexedRelationIteratorUnboundInvertedSortsByEnd(t *testing.T) {
	snap := newMemSnapshot()
	alice := concept.NewIdentity("alice")
	zeke := concept.NewIdentity("zeke")
	rel1 := concept.NewIdentity("rel-1")
	rel2 := concept.NewIdentity("rel-2")
	employee := concept.NewIdentity("employment:employee")
	employer := concept.NewIdentity("employment:employer")

	// One pair ends at alice, the other ends at zeke.
	seedIndexedPair(t, snap, zeke, alice, rel1, employee, employer)
	seedIndexedPair(t, snap, alice, zeke, rel2, employee, employer)

	playerStart, roleStart, playerEnd, roleEnd, relVar := ir.VariableID(1), ir.VariableID(2), ir.VariableID(3), ir.VariableID(4), ir.VariableID(5)

	it, err := NewIndexedRelationIterator(snap, playerStart, roleStart, playerEnd, roleEnd, relVar, IndexedRelationBindings{}, true)
	require.NoError(t, err)
	require.Equal(t, playerEnd, it.SortVariable())

	rows := drainIndexedRelationIterator(t, it, playerStart, playerEnd, relVar)
	require.Len(t, rows, 2)
	// Ordered by playerEnd's hash ascending, whichever of alice/zeke sorts first.
	firstEnd, secondEnd := alice, zeke
	firstStart, secondStart := zeke, alice
	if zeke.Compare(alice) < 0 {
		firstEnd, secondEnd = zeke, alice
		firstStart, secondStart = alice, zeke
	}
	require.True(t, rows[0][playerEnd].Thing.Equal(firstEnd))
	require.True(t, rows[0][playerStart].Thing.Equal(firstStart))
	require.True(t, rows[1][playerEnd].Thing.Equal(secondEnd))
	require.True(t, rows[1][playerStart].Thing.Equal(secondStart))
}

func TestIndexedRelationIteratorBoundStartOnly(t *testing.T) {
	snap := newMemSnapshot()
	alice := concept.NewIdentity("alice")
	bob := concept.NewIdentity("bob")
	carol := concept.NewIdentity("carol")
	rel1 := concept.NewIdentity("rel-1")
	rel2 := concept.NewIdentity("rel-2")
	employee := concept.NewIdentity("employment:employee")
	employer := concept.NewIdentity("employment:employer")

	seedIndexedPair(t, snap, alice, bob, rel1, employee, employer)
	seedIndexedPair(t, snap, alice, carol, rel2, employee, employer)
	seedIndexedPair(t, snap, bob, carol, rel2, employee, employer)

	playerStart, roleStart, playerEnd, roleEnd, relVar := ir.VariableID(1), ir.VariableID(2), ir.VariableID(3), ir.VariableID(4), ir.VariableID(5)

	it, err := NewIndexedRelationIterator(snap, playerStart, roleStart, playerEnd, roleEnd, relVar,
		IndexedRelationBindings{PlayerStart: &alice}, false)
	require.NoError(t, err)

	rows := drainIndexedRelationIterator(t, it, playerStart, playerEnd)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.True(t, row[playerStart].Thing.Equal(alice))
	}
}

func TestIndexedRelationIteratorBoundEndScansInverted(t *testing.T) {
	snap := newMemSnapshot()
	alice := concept.NewIdentity("alice")
	bob := concept.NewIdentity("bob")
	carol := concept.NewIdentity("carol")
	rel1 := concept.NewIdentity("rel-1")
	rel2 := concept.NewIdentity("rel-2")
	employee := concept.NewIdentity("employment:employee")
	employer := concept.NewIdentity("employment:employer")

	seedIndexedPair(t, snap, alice, carol, rel1, employee, employer)
	seedIndexedPair(t, snap, bob, carol, rel2, employee, employer)

	playerStart, roleStart, playerEnd, roleEnd, relVar := ir.VariableID(1), ir.VariableID(2), ir.VariableID(3), ir.VariableID(4), ir.VariableID(5)

	it, err := NewIndexedRelationIterator(snap, playerStart, roleStart, playerEnd, roleEnd, relVar,
		IndexedRelationBindings{PlayerEnd: &carol}, false)
	require.NoError(t, err)

	rows := drainIndexedRelationIterator(t, it, playerStart, playerEnd)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.True(t, row[playerEnd].Thing.Equal(carol))
	}
}

func TestIndexedRelationIteratorBoundStartAndEnd(t *testing.T) {
	snap := newMemSnapshot()
	alice := concept.NewIdentity("alice")
	bob := concept.NewIdentity("bob")
	carol := concept.NewIdentity("carol")
	rel1 := concept.NewIdentity("rel-1")
	employee := concept.NewIdentity("employment:employee")
	employer := concept.NewIdentity("employment:employer")

	seedIndexedPair(t, snap, alice, bob, rel1, employee, employer)
	seedIndexedPair(t, snap, alice, carol, rel1, employee, employer)

	playerStart, roleStart, playerEnd, roleEnd, relVar := ir.VariableID(1), ir.VariableID(2), ir.VariableID(3), ir.VariableID(4), ir.VariableID(5)

	it, err := NewIndexedRelationIterator(snap, playerStart, roleStart, playerEnd, roleEnd, relVar,
		IndexedRelationBindings{PlayerStart: &alice, PlayerEnd: &bob}, false)
	require.NoError(t, err)

	rows := drainIndexedRelationIterator(t, it, playerStart, playerEnd)
	require.Len(t, rows, 1)
	require.True(t, rows[0][playerStart].Thing.Equal(alice))
	require.True(t, rows[0][playerEnd].Thing.Equal(bob))
}

func TestIndexedRelationIteratorFullyBoundIsPointLookup(t *testing.T) {
	snap := newMemSnapshot()
	alice := concept.NewIdentity("alice")
	bob := concept.NewIdentity("bob")
	rel1 := concept.NewIdentity("rel-1")
	rel2 := concept.NewIdentity("rel-2")
	employee := concept.NewIdentity("employment:employee")
	employer := concept.NewIdentity("employment:employer")

	seedIndexedPair(t, snap, alice, bob, rel1, employee, employer)
	seedIndexedPair(t, snap, alice, bob, rel2, employee, employer)

	playerStart, roleStart, playerEnd, roleEnd, relVar := ir.VariableID(1), ir.VariableID(2), ir.VariableID(3), ir.VariableID(4), ir.VariableID(5)

	it, err := NewIndexedRelationIterator(snap, playerStart, roleStart, playerEnd, roleEnd, relVar,
		IndexedRelationBindings{PlayerStart: &alice, PlayerEnd: &bob, Relation: &rel1}, false)
	require.NoError(t, err)

	rows := drainIndexedRelationIterator(t, it, playerStart, playerEnd, relVar)
	require.Len(t, rows, 1)
	require.True(t, rows[0][relVar].Thing.Equal(rel1))
}
