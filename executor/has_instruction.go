package executor

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/storage"
)

// NewHasIterator scans owner -> attribute (Has's canonical direction)
// when ownerBound names a concrete owner, or attribute -> owner (the
// reverse direction) when attrBound names a concrete attribute instead.
// When neither is bound, preferReverse picks which full index the
// planner chose to scan (sorted by attribute instead of owner).
func NewHasIterator(
	snap storage.Snapshot,
	ownerVar, attrVar ir.VariableID,
	ownerBound, attrBound *concept.Identity,
	preferReverse bool,
) (InstructionIterator, error) {
	if attrBound != nil || (ownerBound == nil && preferReverse) {
		return scanHasReverse(snap, ownerVar, attrVar, attrBound)
	}
	return scanHasForward(snap, ownerVar, attrVar, ownerBound)
}

func scanHasForward(snap storage.Snapshot, ownerVar, attrVar ir.VariableID, owner *concept.Identity) (InstructionIterator, error) {
	prefix := keyPrefix(prefixHasForward)
	if owner != nil {
		prefix = keyPrefix(prefixHasForward, owner.Bytes())
	}
	it, err := snap.Scan(keyRangeForPrefix(prefix))
	if err != nil {
		return nil, readError(err, "scanning has-forward index")
	}
	defer it.Close()

	var rows []Row
	for it.Next() {
		ownerID, attrID, ok := splitHasKey(it.Key())
		if !ok {
			continue
		}
		rows = append(rows, Row{
			ownerVar: {Kind: concept.VarThing, Thing: ownerID},
			attrVar:  {Kind: concept.VarThing, Thing: attrID},
		})
	}
	return newMaterializedIterator(ownerVar, rows), nil
}

func scanHasReverse(snap storage.Snapshot, ownerVar, attrVar ir.VariableID, attribute *concept.Identity) (InstructionIterator, error) {
	prefix := keyPrefix(prefixHasReverse)
	if attribute != nil {
		prefix = keyPrefix(prefixHasReverse, attribute.Bytes())
	}
	it, err := snap.Scan(keyRangeForPrefix(prefix))
	if err != nil {
		return nil, readError(err, "scanning has-reverse index")
	}
	defer it.Close()

	var rows []Row
	for it.Next() {
		attrID, ownerID, ok := splitHasKey(it.Key())
		if !ok {
			continue
		}
		rows = append(rows, Row{
			attrVar:  concept.VariableValue{Kind: concept.VarThing, Thing: attrID},
			ownerVar: concept.VariableValue{Kind: concept.VarThing, Thing: ownerID},
		})
	}
	return newMaterializedIterator(attrVar, rows), nil
}

// splitHasKey decodes a length-prefixed two-part key back into its two
// concept.Identity components.
func splitHasKey(key storage.Key) (first, second concept.Identity, ok bool) {
	if len(key) < 1 {
		return concept.Identity{}, concept.Identity{}, false
	}
	body := key[1:]
	if len(body) < 1 {
		return concept.Identity{}, concept.Identity{}, false
	}
	l1 := int(body[0])
	if len(body) < 1+l1+1 {
		return concept.Identity{}, concept.Identity{}, false
	}
	part1 := body[1 : 1+l1]
	rest := body[1+l1:]
	l2 := int(rest[0])
	if len(rest) < 1+l2 {
		return concept.Identity{}, concept.Identity{}, false
	}
	part2 := rest[1 : 1+l2]

	var hash1, hash2 [20]byte
	copy(hash1[:], part1)
	copy(hash2[:], part2)
	return concept.NewIdentityFromHash(hash1), concept.NewIdentityFromHash(hash2), true
}
