package executor

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/storage"
)

// IndexedRelationMode is one of the five scan strategies the
// player-player index supports, chosen from which of the relation's two
// players are already bound.
type IndexedRelationMode uint8

const (
	// IndexedRelationUnbound: neither player bound. Full forward scan,
	// sorted by playerStart.
	IndexedRelationUnbound IndexedRelationMode = iota
	// IndexedRelationUnboundInvertedToPlayer: neither player bound, but
	// the constraint this step feeds needs rows sorted by playerEnd
	// instead — a full scan of the inverted index rather than the
	// forward one, avoiding a re-sort downstream.
	IndexedRelationUnboundInvertedToPlayer
	// IndexedRelationBoundStart: only playerStart bound. Forward-index
	// prefix scan.
	IndexedRelationBoundStart
	// IndexedRelationBoundStartBoundEnd: playerEnd bound (playerStart may
	// or may not also be). Inverted-index prefix scan, narrowed further
	// by playerStart when it is bound too.
	IndexedRelationBoundStartBoundEnd
	// IndexedRelationBoundStartBoundEndBoundRelation: both players and
	// the relation instance itself bound. Direct forward-index point
	// lookup.
	IndexedRelationBoundStartBoundEndBoundRelation
)

// IndexedRelationBindings is the subset of an indexed relation's five
// variables already bound by earlier steps, as seen by the iterator
// constructor. A nil field means that position is still unbound.
type IndexedRelationBindings struct {
	PlayerStart *concept.Identity
	PlayerEnd   *concept.Identity
	Relation    *concept.Identity
}

// chooseIndexedRelationMode picks a scan strategy following the same
// priority the player-player index was built to serve: a fully bound
// pair is a point lookup; a bound end (with or without a bound start)
// scans the inverted index; a bound start alone scans the forward index;
// otherwise the full index is scanned in whichever order the caller's
// sort requirement prefers.
func chooseIndexedRelationMode(bound IndexedRelationBindings, sortByEnd bool) IndexedRelationMode {
	switch {
	case bound.PlayerStart != nil && bound.PlayerEnd != nil && bound.Relation != nil:
		return IndexedRelationBoundStartBoundEndBoundRelation
	case bound.PlayerEnd != nil:
		return IndexedRelationBoundStartBoundEnd
	case bound.PlayerStart != nil:
		return IndexedRelationBoundStart
	case sortByEnd:
		return IndexedRelationUnboundInvertedToPlayer
	default:
		return IndexedRelationUnbound
	}
}

// NewIndexedRelationIterator scans the player-player index maintained
// for binary relation instances (see maintainIndexedRelation), producing
// rows that bind all five of a relation's indexed-relation variables at
// once instead of joining two separate Links scans through the
// relation's own identity.
func NewIndexedRelationIterator(
	snap storage.Snapshot,
	playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar ir.VariableID,
	bound IndexedRelationBindings,
	sortByEnd bool,
) (InstructionIterator, error) {
	switch chooseIndexedRelationMode(bound, sortByEnd) {
	case IndexedRelationBoundStartBoundEndBoundRelation:
		return scanIndexedRelationExact(snap, playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar, bound)
	case IndexedRelationBoundStartBoundEnd:
		return scanIndexedRelationByEnd(snap, playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar, bound)
	case IndexedRelationBoundStart:
		return scanIndexedRelationByStart(snap, playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar, bound)
	case IndexedRelationUnboundInvertedToPlayer:
		return scanIndexedRelationInvertedUnbound(snap, playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar)
	default:
		return scanIndexedRelationForwardUnbound(snap, playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar)
	}
}

func scanIndexedRelationExact(
	snap storage.Snapshot,
	playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar ir.VariableID,
	bound IndexedRelationBindings,
) (InstructionIterator, error) {
	prefix := keyPrefix(prefixIndexedPlayers, bound.PlayerStart.Bytes(), bound.PlayerEnd.Bytes(), bound.Relation.Bytes())
	return scanIndexedRelationForward(snap, playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar, prefix)
}

func scanIndexedRelationByStart(
	snap storage.Snapshot,
	playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar ir.VariableID,
	bound IndexedRelationBindings,
) (InstructionIterator, error) {
	prefix := keyPrefix(prefixIndexedPlayers, bound.PlayerStart.Bytes())
	return scanIndexedRelationForward(snap, playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar, prefix)
}

func scanIndexedRelationForwardUnbound(
	snap storage.Snapshot,
	playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar ir.VariableID,
) (InstructionIterator, error) {
	return scanIndexedRelationForward(snap, playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar, keyPrefix(prefixIndexedPlayers))
}

func scanIndexedRelationForward(
	snap storage.Snapshot,
	playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar ir.VariableID,
	prefix []byte,
) (InstructionIterator, error) {
	it, err := snap.Scan(keyRangeForPrefix(prefix))
	if err != nil {
		return nil, readError(err, "scanning indexed-players index")
	}
	defer it.Close()

	var rows []Row
	for it.Next() {
		parts, ok := splitIndexedPlayersKey(it.Key())
		if !ok {
			continue
		}
		rows = append(rows, indexedRelationRow(playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar, parts))
	}
	return newMaterializedIterator(playerStartVar, rows), nil
}

func scanIndexedRelationByEnd(
	snap storage.Snapshot,
	playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar ir.VariableID,
	bound IndexedRelationBindings,
) (InstructionIterator, error) {
	var prefix []byte
	if bound.PlayerStart != nil {
		prefix = keyPrefix(prefixIndexedPlayersInverted, bound.PlayerEnd.Bytes(), bound.PlayerStart.Bytes())
	} else {
		prefix = keyPrefix(prefixIndexedPlayersInverted, bound.PlayerEnd.Bytes())
	}
	return scanIndexedRelationInverted(snap, playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar, prefix)
}

func scanIndexedRelationInvertedUnbound(
	snap storage.Snapshot,
	playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar ir.VariableID,
) (InstructionIterator, error) {
	return scanIndexedRelationInverted(snap, playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar, keyPrefix(prefixIndexedPlayersInverted))
}

func scanIndexedRelationInverted(
	snap storage.Snapshot,
	playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar ir.VariableID,
	prefix []byte,
) (InstructionIterator, error) {
	it, err := snap.Scan(keyRangeForPrefix(prefix))
	if err != nil {
		return nil, readError(err, "scanning inverted indexed-players index")
	}
	defer it.Close()

	var rows []Row
	for it.Next() {
		parts, ok := splitIndexedPlayersKey(it.Key())
		if !ok {
			continue
		}
		// The inverted key stores (playerEnd, playerStart, relation,
		// roleEnd, roleStart) — swap back to the row's own position
		// naming before handing it to indexedRelationRow.
		swapped := [5]concept.Identity{parts[1], parts[0], parts[2], parts[4], parts[3]}
		rows = append(rows, indexedRelationRow(playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar, swapped))
	}
	return newMaterializedIterator(playerEndVar, rows), nil
}

// indexedRelationRow builds one output row from a forward-ordered
// 5-tuple (playerStart, playerEnd, relation, roleStart, roleEnd).
func indexedRelationRow(playerStartVar, roleStartVar, playerEndVar, roleEndVar, relationVar ir.VariableID, parts [5]concept.Identity) Row {
	return Row{
		playerStartVar: {Kind: concept.VarThing, Thing: parts[0]},
		playerEndVar:   {Kind: concept.VarThing, Thing: parts[1]},
		relationVar:    {Kind: concept.VarThing, Thing: parts[2]},
		roleStartVar:   {Kind: concept.VarThing, Thing: parts[3]},
		roleEndVar:     {Kind: concept.VarThing, Thing: parts[4]},
	}
}
