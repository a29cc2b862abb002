package executor

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/storage"
)

// LinksBindings is the subset of a Links constraint's three variables
// already bound by earlier steps, as seen by the iterator constructor.
// A nil field means that position is still unbound and must be produced.
type LinksBindings struct {
	Relation *concept.Identity
	Player   *concept.Identity
	Role     *concept.Identity
}

// NewLinksIterator picks a links-by-role or links-by-player index scan
// from which of Relation/Player is already bound, matching
// the narrower of the two prefixes available: scanning by relation when
// the relation is known, by player when only the player is known, and
// falling back to a full forward scan (sorted by player, the cheaper of
// the two to materialize first) when neither is bound yet. Role narrows
// whichever prefix is chosen further when it is also bound.
func NewLinksIterator(
	snap storage.Snapshot,
	relationVar, playerVar, roleVar ir.VariableID,
	bound LinksBindings,
) (InstructionIterator, error) {
	switch {
	case bound.Relation != nil:
		return scanLinksByRelation(snap, relationVar, playerVar, roleVar, bound)
	case bound.Player != nil:
		return scanLinksByPlayer(snap, relationVar, playerVar, roleVar, bound)
	default:
		return scanLinksUnbound(snap, relationVar, playerVar, roleVar)
	}
}

func scanLinksByRelation(snap storage.Snapshot, relationVar, playerVar, roleVar ir.VariableID, bound LinksBindings) (InstructionIterator, error) {
	var prefix []byte
	switch {
	case bound.Role != nil:
		prefix = keyPrefix(prefixLinksByRole, bound.Relation.Bytes(), bound.Role.Bytes())
	default:
		prefix = keyPrefix(prefixLinksByRole, bound.Relation.Bytes())
	}
	it, err := snap.Scan(keyRangeForPrefix(prefix))
	if err != nil {
		return nil, readError(err, "scanning links-by-relation index")
	}
	defer it.Close()

	var rows []Row
	for it.Next() {
		relID, roleID, playerID, ok := splitLinksKey(it.Key())
		if !ok {
			continue
		}
		rows = append(rows, Row{
			relationVar: {Kind: concept.VarThing, Thing: relID},
			roleVar:     {Kind: concept.VarThing, Thing: roleID},
			playerVar:   {Kind: concept.VarThing, Thing: playerID},
		})
	}
	return newMaterializedIterator(playerVar, rows), nil
}

func scanLinksByPlayer(snap storage.Snapshot, relationVar, playerVar, roleVar ir.VariableID, bound LinksBindings) (InstructionIterator, error) {
	var prefix []byte
	switch {
	case bound.Role != nil:
		prefix = keyPrefix(prefixLinksByPlayer, bound.Player.Bytes(), bound.Role.Bytes())
	default:
		prefix = keyPrefix(prefixLinksByPlayer, bound.Player.Bytes())
	}
	it, err := snap.Scan(keyRangeForPrefix(prefix))
	if err != nil {
		return nil, readError(err, "scanning links-by-player index")
	}
	defer it.Close()

	var rows []Row
	for it.Next() {
		playerID, roleID, relID, ok := splitLinksKey(it.Key())
		if !ok {
			continue
		}
		rows = append(rows, Row{
			playerVar:   {Kind: concept.VarThing, Thing: playerID},
			roleVar:     {Kind: concept.VarThing, Thing: roleID},
			relationVar: {Kind: concept.VarThing, Thing: relID},
		})
	}
	return newMaterializedIterator(relationVar, rows), nil
}

func scanLinksUnbound(snap storage.Snapshot, relationVar, playerVar, roleVar ir.VariableID) (InstructionIterator, error) {
	it, err := snap.Scan(keyRangeForPrefix([]byte{prefixLinksByPlayer}))
	if err != nil {
		return nil, readError(err, "scanning links index")
	}
	defer it.Close()

	var rows []Row
	for it.Next() {
		playerID, roleID, relID, ok := splitLinksKey(it.Key())
		if !ok {
			continue
		}
		rows = append(rows, Row{
			playerVar:   {Kind: concept.VarThing, Thing: playerID},
			roleVar:     {Kind: concept.VarThing, Thing: roleID},
			relationVar: {Kind: concept.VarThing, Thing: relID},
		})
	}
	return newMaterializedIterator(playerVar, rows), nil
}

// splitLinksKey decodes a length-prefixed three-part key into its
// components, in the order they were written.
func splitLinksKey(key storage.Key) (first, second, third concept.Identity, ok bool) {
	parts, ok := splitKeyParts(key, 3)
	if !ok {
		return concept.Identity{}, concept.Identity{}, concept.Identity{}, false
	}
	return parts[0], parts[1], parts[2], true
}

// splitIndexedPlayersKey decodes a length-prefixed five-part key into its
// components, in the order they were written.
func splitIndexedPlayersKey(key storage.Key) (parts [5]concept.Identity, ok bool) {
	decoded, ok := splitKeyParts(key, 5)
	if !ok {
		return [5]concept.Identity{}, false
	}
	copy(parts[:], decoded)
	return parts, true
}

// splitKeyParts decodes a length-prefixed key (as built by buildKey) back
// into n concept.Identity components, in the order they were written.
func splitKeyParts(key storage.Key, n int) ([]concept.Identity, bool) {
	if len(key) < 1 {
		return nil, false
	}
	rest := key[1:]
	parts := make([]concept.Identity, 0, n)
	for i := 0; i < n; i++ {
		if len(rest) < 1 {
			return nil, false
		}
		l := int(rest[0])
		if len(rest) < 1+l {
			return nil, false
		}
		var hash [20]byte
		copy(hash[:], rest[1:1+l])
		parts = append(parts, concept.NewIdentityFromHash(hash))
		rest = rest[1+l:]
	}
	return parts, true
}
