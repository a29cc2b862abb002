package executor

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/planner"
)

// boundIdentity reads var's current binding out of row as an Identity,
// if it is bound and holds a thing.
func boundIdentity(row Row, varID ir.VariableID) *concept.Identity {
	v, ok := row[varID]
	if !ok || v.Kind != concept.VarThing {
		return nil
	}
	id := v.Thing
	return &id
}

func boundType(row Row, varID ir.VariableID) (concept.TypeAnnotation, bool) {
	v, ok := row[varID]
	if !ok || v.Kind != concept.VarType {
		return concept.TypeAnnotation{}, false
	}
	return v.Type, true
}

func variableOf(v ir.Vertex) (ir.VariableID, bool) {
	variable, ok := ir.AsVariable(v)
	if !ok {
		return 0, false
	}
	return variable.ID, true
}

// buildIterator resolves one compiled constraint into an InstructionIterator
// against row's current bindings, dispatching to the concrete constructor
// that matches the constraint's kind.
func (ex *Executor) buildIterator(cc CompiledConstraint, row Row) (InstructionIterator, error) {
	switch c := cc.Constraint.(type) {
	case ir.Has:
		ownerVar, _ := variableOf(c.Owner)
		attrVar, _ := variableOf(c.Attribute)
		return NewHasIterator(ex.snap, ownerVar, attrVar, boundIdentity(row, ownerVar), boundIdentity(row, attrVar), cc.Direction == planner.Reverse)

	case ir.Links:
		relVar, _ := variableOf(c.Relation)
		playerVar, _ := variableOf(c.Player)
		roleVar, _ := variableOf(c.Role)
		return NewLinksIterator(ex.snap, relVar, playerVar, roleVar, LinksBindings{
			Relation: boundIdentity(row, relVar),
			Player:   boundIdentity(row, playerVar),
			Role:     boundIdentity(row, roleVar),
		})

	case ir.IndexedLinks:
		playerStartVar, _ := variableOf(c.PlayerStart)
		roleStartVar, _ := variableOf(c.RoleStart)
		playerEndVar, _ := variableOf(c.PlayerEnd)
		roleEndVar, _ := variableOf(c.RoleEnd)
		relVar, _ := variableOf(c.Relation)
		return NewIndexedRelationIterator(ex.snap, playerStartVar, roleStartVar, playerEndVar, roleEndVar, relVar, IndexedRelationBindings{
			PlayerStart: boundIdentity(row, playerStartVar),
			PlayerEnd:   boundIdentity(row, playerEndVar),
			Relation:    boundIdentity(row, relVar),
		}, cc.Direction == planner.Reverse)

	case ir.Isa:
		thingVar, _ := variableOf(c.Thing)
		typeVar, _ := variableOf(c.Type)
		candidates := cc.Candidates
		if t, ok := boundType(row, typeVar); ok {
			candidates = concept.NewTypeSet(t)
		}
		return NewIsaIterator(ex.snap, thingVar, typeVar, candidates)

	case ir.Sub:
		subVar, _ := variableOf(c.Subtype)
		superVar, _ := variableOf(c.Supertype)
		candidates := cc.Candidates
		if t, ok := boundType(row, subVar); ok {
			candidates = concept.NewTypeSet(t)
		}
		return NewSubIterator(ex.tm, subVar, superVar, candidates), nil

	case ir.Owns:
		ownerVar, _ := variableOf(c.OwnerType)
		attrVar, _ := variableOf(c.AttributeType)
		candidates := cc.Candidates
		if t, ok := boundType(row, ownerVar); ok {
			candidates = concept.NewTypeSet(t)
		}
		return NewOwnsIterator(ex.tm, ownerVar, attrVar, candidates), nil

	case ir.Relates:
		relVar, _ := variableOf(c.RelationType)
		roleVar, _ := variableOf(c.RoleType)
		candidates := cc.Candidates
		if t, ok := boundType(row, relVar); ok {
			candidates = concept.NewTypeSet(t)
		}
		return NewRelatesIterator(ex.tm, relVar, roleVar, candidates), nil

	case ir.Plays:
		playerVar, _ := variableOf(c.PlayerType)
		roleVar, _ := variableOf(c.RoleType)
		candidates := cc.Candidates
		if t, ok := boundType(row, playerVar); ok {
			candidates = concept.NewTypeSet(t)
		}
		return NewPlaysIterator(ex.tm, playerVar, roleVar, candidates), nil

	default:
		return nil, compileError("%T cannot drive an instruction iterator", cc.Constraint)
	}
}
