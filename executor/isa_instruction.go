package executor

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/storage"
)

// NewIsaIterator scans the thing-by-type index once per candidate type
// already resolved for the Type vertex by type inference, and merges the
// results sorted by thing. Type inference narrows this set to exactly the
// types the pattern allows, so no further filtering is needed here: every
// row this iterator produces already satisfies the constraint.
func NewIsaIterator(snap storage.Snapshot, thingVar, typeVar ir.VariableID, candidates *concept.TypeSet) (InstructionIterator, error) {
	var rows []Row
	for _, t := range candidates.Items() {
		prefix := keyPrefix(prefixIsaByType, []byte(t.Label.String()))
		it, err := snap.Scan(keyRangeForPrefix(prefix))
		if err != nil {
			return nil, readError(err, "scanning isa index")
		}
		for it.Next() {
			thingID, ok := splitIsaKey(it.Key())
			if !ok {
				continue
			}
			rows = append(rows, Row{
				thingVar: {Kind: concept.VarThing, Thing: thingID},
				typeVar:  {Kind: concept.VarType, Type: t},
			})
		}
		it.Close()
	}
	return newMaterializedIterator(thingVar, rows), nil
}

func splitIsaKey(key storage.Key) (thing concept.Identity, ok bool) {
	if len(key) < 1 {
		return concept.Identity{}, false
	}
	rest := key[1:]
	if len(rest) < 1 {
		return concept.Identity{}, false
	}
	l := int(rest[0])
	if len(rest) < 1+l {
		return concept.Identity{}, false
	}
	rest = rest[1+l:]
	if len(rest) < 1 {
		return concept.Identity{}, false
	}
	l2 := int(rest[0])
	if len(rest) < 1+l2 {
		return concept.Identity{}, false
	}
	var hash [20]byte
	copy(hash[:], rest[1:1+l2])
	return concept.NewIdentityFromHash(hash), true
}
