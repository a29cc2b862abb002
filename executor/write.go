package executor

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/storage"
)

// newInstanceIdentity mints a fresh Identity for an inserted entity or
// relation instance. Every instance needs a name unique even across
// concurrent writers, so this draws from a UUID rather than hashing
// query-visible data the way NewIdentity does for reproducible keys.
func newInstanceIdentity() concept.Identity {
	return concept.NewIdentity(uuid.New().String())
}

// InsertIsa creates a new instance of typ and writes it into the
// thing-by-type index, returning the identity bound to thingVar. typ may
// not be declared abstract.
func InsertIsa(txn storage.WriteSnapshot, tm storage.TypeManager, typ concept.TypeAnnotation) (concept.Identity, error) {
	if err := validateNotAbstract(tm, typ); err != nil {
		return concept.Identity{}, err
	}
	id := newInstanceIdentity()
	key := isaKey([]byte(typ.Label.String()), id.Bytes())
	if err := txn.Put(key, nil); err != nil {
		return concept.Identity{}, writeError(err, "inserting isa %s", typ.Label)
	}
	return id, nil
}

// InsertHas validates ownership capability, value-shape constraints,
// uniqueness (@key/@unique) and cardinality (@card), then writes both
// directions of the has-edge between owner and attribute plus the
// type-scoped owns-by-type index entry validateOwnsCardinality reads.
// attributeType is resolved by the caller from the attribute vertex's own
// Isa constraint.
func InsertHas(txn storage.WriteSnapshot, tm storage.TypeManager, ownerType, attributeType concept.TypeAnnotation, owner, attribute concept.Identity, attrValue concept.Value) error {
	ra, err := validateOwnsCapability(tm, ownerType, attributeType)
	if err != nil {
		return err
	}
	if err := validateAttributeValue(tm, attributeType, attrValue); err != nil {
		return err
	}
	if err := validateOwnsUniqueness(txn, ra, attributeType, owner, attribute); err != nil {
		return err
	}
	if err := validateOwnsCardinality(txn, ra, ownerType, attributeType, owner, attribute); err != nil {
		return err
	}
	encoded, err := encodeAttributeValue(attrValue)
	if err != nil {
		return writeError(err, "encoding attribute value")
	}
	if err := txn.Put(hasForwardKey(owner.Bytes(), attribute.Bytes()), encoded); err != nil {
		return writeError(err, "inserting has-forward edge")
	}
	if err := txn.Put(hasReverseKey(attribute.Bytes(), owner.Bytes()), nil); err != nil {
		return writeError(err, "inserting has-reverse edge")
	}
	typeLabel := []byte(attributeType.Label.String())
	if err := txn.Put(ownsByTypeKey(owner.Bytes(), typeLabel, attribute.Bytes()), nil); err != nil {
		return writeError(err, "inserting owns-by-type edge")
	}
	return nil
}

// InsertLinks validates Relates/Plays capability and cardinality, the
// @distinct constraint on Relates, and writes both index orderings of the
// links-edge between relation, role and player, plus the player-player
// index entries for binary relation types (see maintainIndexedRelation).
func InsertLinks(txn storage.WriteSnapshot, tm storage.TypeManager, relationType, playerType concept.TypeAnnotation, roleType concept.TypeAnnotation, relation, player, role concept.Identity) error {
	relatesRA, err := validateRelatesCapability(tm, relationType, roleType)
	if err != nil {
		return err
	}
	playsRA, err := validatePlaysCapability(tm, playerType, roleType)
	if err != nil {
		return err
	}
	if err := validateDistinctRelatesConstraint(txn, relatesRA, relationType, relation, player, role); err != nil {
		return err
	}
	if err := validateRelatesCardinality(txn, relatesRA, relationType, roleType, relation, player, role); err != nil {
		return err
	}
	if err := validatePlaysCardinality(txn, playsRA, playerType, roleType, player, relation, role); err != nil {
		return err
	}
	if err := txn.Put(linksByRoleKey(relation.Bytes(), role.Bytes(), player.Bytes()), nil); err != nil {
		return writeError(err, "inserting links-by-relation edge")
	}
	if err := txn.Put(linksByPlayerKey(player.Bytes(), role.Bytes(), relation.Bytes()), nil); err != nil {
		return writeError(err, "inserting links-by-player edge")
	}
	if err := maintainIndexedRelation(txn, tm, relationType, roleType, relation, player, role); err != nil {
		return err
	}
	return nil
}

// DeleteHas removes both directions of a has-edge plus its owns-by-type
// index entry.
func DeleteHas(txn storage.WriteSnapshot, attributeType concept.TypeAnnotation, owner, attribute concept.Identity) error {
	if err := txn.Delete(hasForwardKey(owner.Bytes(), attribute.Bytes())); err != nil {
		return writeError(err, "deleting has-forward edge")
	}
	if err := txn.Delete(hasReverseKey(attribute.Bytes(), owner.Bytes())); err != nil {
		return writeError(err, "deleting has-reverse edge")
	}
	typeLabel := []byte(attributeType.Label.String())
	if err := txn.Delete(ownsByTypeKey(owner.Bytes(), typeLabel, attribute.Bytes())); err != nil {
		return writeError(err, "deleting owns-by-type edge")
	}
	return nil
}

// DeleteLinks removes both index orderings of a links-edge, plus any
// player-player index entries InsertLinks maintained for it.
func DeleteLinks(txn storage.WriteSnapshot, tm storage.TypeManager, relationType, roleType concept.TypeAnnotation, relation, player, role concept.Identity) error {
	if err := unmaintainIndexedRelation(txn, tm, relationType, roleType, relation, player, role); err != nil {
		return err
	}
	if err := txn.Delete(linksByRoleKey(relation.Bytes(), role.Bytes(), player.Bytes())); err != nil {
		return writeError(err, "deleting links-by-relation edge")
	}
	if err := txn.Delete(linksByPlayerKey(player.Bytes(), role.Bytes(), relation.Bytes())); err != nil {
		return writeError(err, "deleting links-by-player edge")
	}
	return nil
}

// maintainIndexedRelation keeps the player-player index in sync when
// relationType relates exactly two roles (a binary relation). It looks
// up whether the complementary role already has a player linked for this
// same relation instance and, for each one found, writes both directions
// of the player-player index entry pairing the two.
func maintainIndexedRelation(txn storage.WriteSnapshot, tm storage.TypeManager, relationType, roleType concept.TypeAnnotation, relation, player, role concept.Identity) error {
	otherRoleType, ok := otherRelatesRole(tm, relationType, roleType)
	if !ok {
		return nil
	}
	otherRole := concept.NewIdentity(otherRoleType.Label.String())
	otherPlayers, err := lookupComplementaryPlayers(txn, relation, otherRole)
	if err != nil {
		return err
	}
	for _, otherPlayer := range otherPlayers {
		if err := putIndexedRelationPair(txn, relation, roleType, role, player, otherRoleType, otherRole, otherPlayer); err != nil {
			return err
		}
	}
	return nil
}

// unmaintainIndexedRelation removes the player-player index entries
// maintainIndexedRelation would have written for this edge.
func unmaintainIndexedRelation(txn storage.WriteSnapshot, tm storage.TypeManager, relationType, roleType concept.TypeAnnotation, relation, player, role concept.Identity) error {
	otherRoleType, ok := otherRelatesRole(tm, relationType, roleType)
	if !ok {
		return nil
	}
	otherRole := concept.NewIdentity(otherRoleType.Label.String())
	otherPlayers, err := lookupComplementaryPlayers(txn, relation, otherRole)
	if err != nil {
		return err
	}
	for _, otherPlayer := range otherPlayers {
		playerStart, roleStart, playerEnd, roleEnd := canonicalIndexedOrder(roleType, role, player, otherRoleType, otherRole, otherPlayer)
		if err := txn.Delete(indexedPlayersKey(playerStart.Bytes(), playerEnd.Bytes(), relation.Bytes(), roleStart.Bytes(), roleEnd.Bytes())); err != nil {
			return writeError(err, "deleting indexed-players forward edge")
		}
		if err := txn.Delete(indexedPlayersInvertedKey(playerEnd.Bytes(), playerStart.Bytes(), relation.Bytes(), roleEnd.Bytes(), roleStart.Bytes())); err != nil {
			return writeError(err, "deleting indexed-players inverted edge")
		}
	}
	return nil
}

// otherRelatesRole returns the role relationType relates other than
// roleType, when relationType relates exactly two roles.
func otherRelatesRole(tm storage.TypeManager, relationType, roleType concept.TypeAnnotation) (concept.TypeAnnotation, bool) {
	roles := tm.Relates(relationType)
	if len(roles) != 2 {
		return concept.TypeAnnotation{}, false
	}
	for _, r := range roles {
		if r.Role != roleType {
			return r.Role, true
		}
	}
	return concept.TypeAnnotation{}, false
}

// lookupComplementaryPlayers scans the links-by-relation index for every
// player already linked into relation under otherRole.
func lookupComplementaryPlayers(snap storage.Snapshot, relation, otherRole concept.Identity) ([]concept.Identity, error) {
	prefix := keyPrefix(prefixLinksByRole, relation.Bytes(), otherRole.Bytes())
	it, err := snap.Scan(keyRangeForPrefix(prefix))
	if err != nil {
		return nil, readError(err, "scanning links-by-relation index for indexed-relation pairing")
	}
	defer it.Close()

	var players []concept.Identity
	for it.Next() {
		_, _, playerID, ok := splitLinksKey(it.Key())
		if !ok {
			continue
		}
		players = append(players, playerID)
	}
	return players, nil
}

// putIndexedRelationPair writes both directions of the player-player
// index entry pairing (roleA, playerA) with (roleB, playerB) on relation.
func putIndexedRelationPair(txn storage.WriteSnapshot, relation concept.Identity, roleA concept.TypeAnnotation, roleAID, playerA concept.Identity, roleB concept.TypeAnnotation, roleBID, playerB concept.Identity) error {
	playerStart, roleStart, playerEnd, roleEnd := canonicalIndexedOrder(roleA, roleAID, playerA, roleB, roleBID, playerB)
	if err := txn.Put(indexedPlayersKey(playerStart.Bytes(), playerEnd.Bytes(), relation.Bytes(), roleStart.Bytes(), roleEnd.Bytes()), nil); err != nil {
		return writeError(err, "inserting indexed-players forward edge")
	}
	if err := txn.Put(indexedPlayersInvertedKey(playerEnd.Bytes(), playerStart.Bytes(), relation.Bytes(), roleEnd.Bytes(), roleStart.Bytes()), nil); err != nil {
		return writeError(err, "inserting indexed-players inverted edge")
	}
	return nil
}

// canonicalIndexedOrder picks a deterministic start/end assignment for a
// binary relation's two (role, player) pairs — the role whose label
// sorts first becomes "start" — so a write and a later read always agree
// on which half of the pair the forward and inverted index keys put first,
// with no extra bookkeeping needed to recover it.
func canonicalIndexedOrder(
	roleA concept.TypeAnnotation, roleAID, playerA concept.Identity,
	roleB concept.TypeAnnotation, roleBID, playerB concept.Identity,
) (playerStart, roleStart, playerEnd, roleEnd concept.Identity) {
	if roleA.Label.String() <= roleB.Label.String() {
		return playerA, roleAID, playerB, roleBID
	}
	return playerB, roleBID, playerA, roleAID
}

// encodeAttributeValue renders an attribute value for storage as the
// has-forward edge's payload. The leading tag byte lets a later read path
// recover the original Go type without guessing from the bytes alone.
func encodeAttributeValue(v concept.Value) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return append([]byte{tagString}, val...), nil
	case []byte:
		return append([]byte{tagBytes}, val...), nil
	case int64:
		return append([]byte{tagLong}, binaryBigEndian(uint64(val))...), nil
	case int:
		return append([]byte{tagLong}, binaryBigEndian(uint64(int64(val)))...), nil
	case float64:
		return append([]byte{tagDouble}, binaryBigEndian(math.Float64bits(val))...), nil
	case bool:
		b := byte(0)
		if val {
			b = 1
		}
		return []byte{tagBool, b}, nil
	case time.Time:
		return append([]byte{tagDateTime}, binaryBigEndian(uint64(val.UnixNano()))...), nil
	case concept.Identity:
		return append([]byte{tagRef}, val.Bytes()...), nil
	default:
		return nil, compileError("unsupported attribute value encoding for %T", v)
	}
}

const (
	tagString byte = iota
	tagBytes
	tagLong
	tagDouble
	tagBool
	tagDateTime
	tagRef
)

func binaryBigEndian(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
