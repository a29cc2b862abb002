package executor

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/storage"
)

// Schema-capability constraints (Sub, Owns, Relates, Plays) never touch
// instance storage: every row they can possibly produce is already
// enumerable from the type manager, so these iterators materialize
// directly from it rather than scanning a snapshot.

// NewSubIterator enumerates every (subtype, supertype) pair consistent
// with candidates, one row per subtype's direct-and-transitive supertype
// chain, sorted by subVar.
func NewSubIterator(tm storage.TypeManager, subVar, superVar ir.VariableID, candidates *concept.TypeSet) InstructionIterator {
	var rows []Row
	for _, sub := range candidates.Items() {
		for _, super := range tm.Supertypes(sub) {
			rows = append(rows, Row{
				subVar:   {Kind: concept.VarType, Type: sub},
				superVar: {Kind: concept.VarType, Type: super},
			})
		}
	}
	return newMaterializedIterator(subVar, rows)
}

// NewOwnsIterator enumerates every (owner, attribute) capability pair for
// the given candidate owner types, sorted by ownerVar.
func NewOwnsIterator(tm storage.TypeManager, ownerVar, attrVar ir.VariableID, owners *concept.TypeSet) InstructionIterator {
	var rows []Row
	for _, owner := range owners.Items() {
		for _, c := range tm.Owns(owner) {
			rows = append(rows, Row{
				ownerVar: {Kind: concept.VarType, Type: owner},
				attrVar:  {Kind: concept.VarType, Type: c.Role},
			})
		}
	}
	return newMaterializedIterator(ownerVar, rows)
}

// NewRelatesIterator enumerates every (relation, role) capability pair
// for the given candidate relation types, sorted by relationVar.
func NewRelatesIterator(tm storage.TypeManager, relationVar, roleVar ir.VariableID, relations *concept.TypeSet) InstructionIterator {
	var rows []Row
	for _, rel := range relations.Items() {
		for _, c := range tm.Relates(rel) {
			rows = append(rows, Row{
				relationVar: {Kind: concept.VarType, Type: rel},
				roleVar:     {Kind: concept.VarType, Type: c.Role},
			})
		}
	}
	return newMaterializedIterator(relationVar, rows)
}

// NewPlaysIterator enumerates every (player, role) capability pair for
// the given candidate player types, sorted by playerVar.
func NewPlaysIterator(tm storage.TypeManager, playerVar, roleVar ir.VariableID, players *concept.TypeSet) InstructionIterator {
	var rows []Row
	for _, player := range players.Items() {
		for _, c := range tm.Plays(player) {
			rows = append(rows, Row{
				playerVar: {Kind: concept.VarType, Type: player},
				roleVar:   {Kind: concept.VarType, Type: c.Role},
			})
		}
	}
	return newMaterializedIterator(playerVar, rows)
}
