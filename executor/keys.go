package executor

import "github.com/wbrown/graphtype/storage"

// Key prefixes for the concept-storage index families an instruction
// scans. Each index stores the same fact under two orderings so either
// iteration direction the planner picks can scan forward.
const (
	prefixHasForward    = 'H' // owner -> attribute
	prefixHasReverse    = 'h' // attribute -> owner
	prefixLinksByRole   = 'L' // relation, role -> player
	prefixLinksByPlayer = 'l' // player, role -> relation
	prefixIsaByType     = 'I' // type label -> thing
	// prefixIndexedPlayers and prefixIndexedPlayersInverted hold the
	// player-player index maintained alongside prefixLinksByRole/
	// prefixLinksByPlayer for binary-relation instances (relation types
	// that relate exactly two roles): one entry per relation instance,
	// keyed by both players directly so a query binding either or both
	// players never has to join through the relation's identity.
	prefixIndexedPlayers         = 'X' // playerStart, playerEnd, relation, roleStart, roleEnd
	prefixIndexedPlayersInverted = 'x' // playerEnd, playerStart, relation, roleEnd, roleStart
	// prefixOwnsByType holds the same has-edges as prefixHasForward, keyed
	// additionally by the owned attribute's type label, so owns-cardinality
	// validation can count an owner's existing instances of one attribute
	// type without a table scan. hasForward/hasReverse stay type-agnostic
	// since most has-edge lookups never need the type.
	prefixOwnsByType = 'T' // owner, attribute type label, attribute
)

func isaKey(typeLabel, thing []byte) storage.Key {
	return buildKey(prefixIsaByType, typeLabel, thing)
}

func hasForwardKey(owner, attribute []byte) storage.Key {
	return buildKey(prefixHasForward, owner, attribute)
}

func hasReverseKey(attribute, owner []byte) storage.Key {
	return buildKey(prefixHasReverse, attribute, owner)
}

func linksByRoleKey(relation, role, player []byte) storage.Key {
	return buildKey(prefixLinksByRole, relation, role, player)
}

func linksByPlayerKey(player, role, relation []byte) storage.Key {
	return buildKey(prefixLinksByPlayer, player, role, relation)
}

func indexedPlayersKey(playerStart, playerEnd, relation, roleStart, roleEnd []byte) storage.Key {
	return buildKey(prefixIndexedPlayers, playerStart, playerEnd, relation, roleStart, roleEnd)
}

func indexedPlayersInvertedKey(playerEnd, playerStart, relation, roleEnd, roleStart []byte) storage.Key {
	return buildKey(prefixIndexedPlayersInverted, playerEnd, playerStart, relation, roleEnd, roleStart)
}

func ownsByTypeKey(owner, attributeTypeLabel, attribute []byte) storage.Key {
	return buildKey(prefixOwnsByType, owner, attributeTypeLabel, attribute)
}

// keyPrefix builds an open prefix over the first len(parts) components of
// a buildKey-encoded key, for range scans that bind a leading subset of
// components and leave the rest free.
func keyPrefix(prefix byte, parts ...[]byte) []byte {
	return buildKey(prefix, parts...)
}

func buildKey(prefix byte, parts ...[]byte) storage.Key {
	n := 1
	for _, p := range parts {
		n += len(p) + 1 // length-prefix each part so scans can prefix-match safely
	}
	out := make([]byte, 0, n)
	out = append(out, prefix)
	for _, p := range parts {
		out = append(out, byte(len(p)))
		out = append(out, p...)
	}
	return out
}

func keyRangeForPrefix(prefix []byte) storage.KeyRange {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xff {
			end[i]++
			end = end[:i+1]
			return storage.KeyRange{Start: prefix, End: end}
		}
	}
	return storage.KeyRange{Start: prefix, End: nil}
}
