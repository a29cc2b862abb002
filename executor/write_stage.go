package executor

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/storage"
)

// runInsert applies every InsertWrite to every row of batch, binding any
// identity it creates back into that row under the Isa's Thing variable.
func runInsert(txn storage.WriteSnapshot, tm storage.TypeManager, writes []InsertWrite, types map[ir.VariableID]concept.TypeAnnotation, batch Batch) (Batch, error) {
	out := make(Batch, 0, len(batch))
	for _, row := range batch {
		next := row.Clone()
		if err := applyInserts(txn, tm, writes, types, next); err != nil {
			return nil, err
		}
		out = append(out, next)
	}
	return out, nil
}

func applyInserts(txn storage.WriteSnapshot, tm storage.TypeManager, writes []InsertWrite, types map[ir.VariableID]concept.TypeAnnotation, row Row) error {
	for _, w := range writes {
		switch {
		case w.Isa != nil:
			thingVar, ok := variableOf(w.Isa.Thing)
			if !ok {
				return compileError("insert isa: Thing must be a variable")
			}
			if _, bound := row[thingVar]; bound {
				continue
			}
			typ, ok := types[thingVar]
			if !ok {
				return compileError("insert isa: no resolved type for %s", w.Isa.Thing.String())
			}
			id, err := InsertIsa(txn, tm, typ)
			if err != nil {
				return err
			}
			row[thingVar] = concept.VariableValue{Kind: concept.VarThing, Thing: id}

		case w.Has != nil:
			ownerVar, _ := variableOf(w.Has.Owner)
			attrVar, _ := variableOf(w.Has.Attribute)
			owner := boundIdentity(row, ownerVar)
			if owner == nil {
				return compileError("insert has: owner must already be bound")
			}
			attrVal, ok := row[attrVar]
			if !ok || attrVal.Kind != concept.VarValue {
				return compileError("insert has: attribute must be bound to a literal value")
			}
			// Attribute instances are identified by their value, not a
			// generated identity: two owners inserting the same value
			// for the same attribute type share one attribute instance.
			attribute := concept.NewIdentity(attrVal.String())
			ownerType, ok := types[ownerVar]
			if !ok {
				return compileError("insert has: no resolved type for %s", w.Has.Owner.String())
			}
			attrType, ok := types[attrVar]
			if !ok {
				return compileError("insert has: no resolved type for %s", w.Has.Attribute.String())
			}
			if err := InsertHas(txn, tm, ownerType, attrType, *owner, attribute, attrVal.Value); err != nil {
				return err
			}
			row[attrVar] = concept.VariableValue{Kind: concept.VarThing, Thing: attribute}

		case w.Links != nil:
			relVar, _ := variableOf(w.Links.Relation)
			playerVar, _ := variableOf(w.Links.Player)
			roleVar, _ := variableOf(w.Links.Role)
			relation := boundIdentity(row, relVar)
			player := boundIdentity(row, playerVar)
			role := boundIdentity(row, roleVar)
			if relation == nil || player == nil || role == nil {
				return compileError("insert links: relation, player and role must already be bound")
			}
			relationType, ok := types[relVar]
			if !ok {
				return compileError("insert links: no resolved type for %s", w.Links.Relation.String())
			}
			playerType, ok := types[playerVar]
			if !ok {
				return compileError("insert links: no resolved type for %s", w.Links.Player.String())
			}
			roleType, ok := types[roleVar]
			if !ok {
				return compileError("insert links: no resolved type for %s", w.Links.Role.String())
			}
			if err := InsertLinks(txn, tm, relationType, playerType, roleType, *relation, *player, *role); err != nil {
				return err
			}
		}
	}
	return nil
}

// runDelete applies every DeleteWrite to every row of batch. types
// resolves the variables a Links deletion references, so the
// player-player index maintained for binary relations can be cleaned up
// symmetrically with InsertLinks.
func runDelete(txn storage.WriteSnapshot, tm storage.TypeManager, writes []DeleteWrite, types map[ir.VariableID]concept.TypeAnnotation, batch Batch) (Batch, error) {
	for _, row := range batch {
		for _, w := range writes {
			switch {
			case w.Has != nil:
				ownerVar, _ := variableOf(w.Has.Owner)
				attrVar, _ := variableOf(w.Has.Attribute)
				owner := boundIdentity(row, ownerVar)
				attribute := boundIdentity(row, attrVar)
				if owner == nil || attribute == nil {
					return nil, compileError("delete has: owner and attribute must already be bound")
				}
				attrType, ok := types[attrVar]
				if !ok {
					return nil, compileError("delete has: no resolved type for %s", w.Has.Attribute.String())
				}
				if err := DeleteHas(txn, attrType, *owner, *attribute); err != nil {
					return nil, err
				}
			case w.Links != nil:
				relVar, _ := variableOf(w.Links.Relation)
				playerVar, _ := variableOf(w.Links.Player)
				roleVar, _ := variableOf(w.Links.Role)
				relation := boundIdentity(row, relVar)
				player := boundIdentity(row, playerVar)
				role := boundIdentity(row, roleVar)
				if relation == nil || player == nil || role == nil {
					return nil, compileError("delete links: relation, player and role must already be bound")
				}
				relationType, ok := types[relVar]
				if !ok {
					return nil, compileError("delete links: no resolved type for %s", w.Links.Relation.String())
				}
				roleType, ok := types[roleVar]
				if !ok {
					return nil, compileError("delete links: no resolved type for %s", w.Links.Role.String())
				}
				if err := DeleteLinks(txn, tm, relationType, roleType, *relation, *player, *role); err != nil {
					return nil, err
				}
			}
		}
	}
	return batch, nil
}
