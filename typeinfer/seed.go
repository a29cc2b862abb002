package typeinfer

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/storage"
)

// edge is a binary relationship between two vertices that the prune loop
// can use to narrow both sides' candidate type sets against each other,
// e.g. "$x isa $t" or "$owner has $attr". Constraints that only check a
// relationship without a schema-derived candidate set (Is, Comparison)
// are not edges; constraints that narrow a single vertex directly
// (Label, RoleName, Kind) are applied once while seeding, not as edges.
type edge interface {
	narrow(v *vertexAnnotations, tm storage.TypeManager) bool
}

type relationalEdge struct {
	left, right           ir.Vertex
	leftKind, rightKind   concept.TypeKind
	holds                 func(left, right concept.TypeAnnotation) bool
}

func (e *relationalEdge) narrow(v *vertexAnnotations, tm storage.TypeManager) bool {
	leftSet := ensureSeeded(v, e.left, e.leftKind, tm)
	rightSet := ensureSeeded(v, e.right, e.rightKind, tm)

	newLeft := filterAllowed(leftSet, rightSet, func(l, r concept.TypeAnnotation) bool { return e.holds(l, r) })
	newRight := filterAllowed(rightSet, leftSet, func(r, l concept.TypeAnnotation) bool { return e.holds(l, r) })

	changedLeft := v.addOrIntersect(e.left, newLeft)
	changedRight := v.addOrIntersect(e.right, newRight)
	return changedLeft || changedRight
}

// kindAnyThing is a sentinel passed as the kind for vertices (like Isa's
// Thing or Type arguments) that can resolve to any of entity, relation or
// attribute, not a single fixed kind.
const kindAnyThing concept.TypeKind = 255

// ensureSeeded returns vertex's current candidate set, seeding it the
// first time from the broadest schema-derived set its kind allows: every
// type of that kind for a Variable vertex, or the singleton resolved type
// for a Label vertex.
func ensureSeeded(v *vertexAnnotations, vert ir.Vertex, kind concept.TypeKind, tm storage.TypeManager) *concept.TypeSet {
	if ts, ok := v.get(vert); ok {
		return ts
	}
	var seed *concept.TypeSet
	switch vv := vert.(type) {
	case ir.LabelVertex:
		if kind == kindAnyThing {
			seed = concept.NewTypeSet()
			for _, k := range []concept.TypeKind{concept.KindEntity, concept.KindRelation, concept.KindAttribute} {
				if t, ok := tm.GetByLabel(k, vv.Label); ok {
					seed.Add(t)
				}
			}
		} else if t, ok := tm.GetByLabel(kind, vv.Label); ok {
			seed = concept.NewTypeSet(t)
		} else {
			seed = concept.NewTypeSet()
		}
	default:
		if kind == kindAnyThing {
			seed = concept.NewTypeSet()
			for _, k := range []concept.TypeKind{concept.KindEntity, concept.KindRelation, concept.KindAttribute} {
				seed = seed.Union(concept.NewTypeSet(tm.AllOfKind(k)...))
			}
		} else {
			seed = concept.NewTypeSet(tm.AllOfKind(kind)...)
		}
	}
	v.sets[vert] = seed
	return seed
}

func filterAllowed(set, other *concept.TypeSet, holds func(a, b concept.TypeAnnotation) bool) *concept.TypeSet {
	kept := make([]concept.TypeAnnotation, 0, set.Len())
	for _, a := range set.Items() {
		for _, b := range other.Items() {
			if holds(a, b) {
				kept = append(kept, a)
				break
			}
		}
	}
	return concept.NewTypeSet(kept...)
}

// seedConstraint translates one IR constraint into a graph edge, and for
// unary constraints (Label, RoleName, Kind) narrows the vertex directly
// since they need no counterpart to intersect against.
func seedConstraint(g *graph, c ir.Constraint) edge {
	tm := g.typeManager
	switch cc := c.(type) {
	case ir.Isa:
		kind := cc.Kind
		return &relationalEdge{
			left: cc.Thing, right: cc.Type,
			leftKind:  kindAnyThing,
			rightKind: kindAnyThing,
			holds: func(thing, typ concept.TypeAnnotation) bool {
				if kind == ir.IsaExact {
					return thing == typ
				}
				return thing == typ || tm.IsSubtype(thing, typ)
			},
		}
	case ir.Sub:
		return &relationalEdge{
			left: cc.Subtype, right: cc.Supertype,
			leftKind: kindAnyThing, rightKind: kindAnyThing,
			holds: func(sub, super concept.TypeAnnotation) bool {
				if sub == super || !tm.IsSubtype(sub, super) {
					return false
				}
				if cc.Kind != ir.IsaExact {
					return true
				}
				supers := tm.Supertypes(sub)
				return len(supers) > 0 && supers[0] == super
			},
		}
	case ir.Has:
		return &relationalEdge{
			left: cc.Owner, right: cc.Attribute,
			leftKind: kindAnyThing, rightKind: concept.KindAttribute,
			holds: func(owner, attr concept.TypeAnnotation) bool { return ownsType(tm, owner, attr) },
		}
	case ir.Owns:
		return &relationalEdge{
			left: cc.OwnerType, right: cc.AttributeType,
			leftKind: kindAnyThing, rightKind: concept.KindAttribute,
			holds: func(owner, attr concept.TypeAnnotation) bool { return ownsType(tm, owner, attr) },
		}
	case ir.Links:
		// Modeled as two binary edges sharing the Role vertex; the fixed
		// point loop propagates narrowing between Relation and Player
		// through Role's shrinking candidate set.
		g.edges = append(g.edges, &relationalEdge{
			left: cc.Player, right: cc.Role,
			leftKind: kindAnyThing, rightKind: concept.KindRole,
			holds: func(player, role concept.TypeAnnotation) bool { return playsRole(tm, player, role) },
		})
		return &relationalEdge{
			left: cc.Relation, right: cc.Role,
			leftKind: concept.KindRelation, rightKind: concept.KindRole,
			holds: func(rel, role concept.TypeAnnotation) bool { return relatesRole(tm, rel, role) },
		}
	case ir.Plays:
		return &relationalEdge{
			left: cc.PlayerType, right: cc.RoleType,
			leftKind: kindAnyThing, rightKind: concept.KindRole,
			holds: func(player, role concept.TypeAnnotation) bool { return playsRole(tm, player, role) },
		}
	case ir.Relates:
		return &relationalEdge{
			left: cc.RelationType, right: cc.RoleType,
			leftKind: concept.KindRelation, rightKind: concept.KindRole,
			holds: func(rel, role concept.TypeAnnotation) bool { return relatesRole(tm, rel, role) },
		}
	case ir.Label:
		seedLabelVertex(g, cc.TypeVar, cc.Name)
		return nil
	case ir.RoleName:
		seedRoleNameVertex(g, cc.TypeVar, cc.Name)
		return nil
	case ir.Kind:
		seedKindVertex(g, cc.TypeVar, cc.Kind)
		return nil
	default:
		// Is, Comparison, ExpressionBinding, FunctionCallBinding carry no
		// schema-derived candidate set to narrow with.
		return nil
	}
}

func ownsType(tm storage.TypeManager, owner, attr concept.TypeAnnotation) bool {
	for _, ra := range tm.Owns(owner) {
		if ra.Role == attr {
			return true
		}
	}
	return false
}

func playsRole(tm storage.TypeManager, player, role concept.TypeAnnotation) bool {
	for _, ra := range tm.Plays(player) {
		if ra.Role == role {
			return true
		}
	}
	return false
}

func relatesRole(tm storage.TypeManager, rel, role concept.TypeAnnotation) bool {
	for _, ra := range tm.Relates(rel) {
		if ra.Role == role {
			return true
		}
	}
	return false
}

func seedLabelVertex(g *graph, vert ir.Vertex, name concept.Keyword) {
	var matches []concept.TypeAnnotation
	for _, kind := range []concept.TypeKind{concept.KindEntity, concept.KindRelation, concept.KindAttribute, concept.KindRole} {
		if t, ok := g.typeManager.GetByLabel(kind, name); ok {
			matches = append(matches, t)
		}
	}
	g.vertices.addOrIntersect(vert, concept.NewTypeSet(matches...))
}

func seedRoleNameVertex(g *graph, vert ir.Vertex, name string) {
	g.vertices.addOrIntersect(vert, concept.NewTypeSet(g.typeManager.GetByRoleName(name)...))
}

func seedKindVertex(g *graph, vert ir.Vertex, kind concept.TypeKind) {
	g.vertices.addOrIntersect(vert, concept.NewTypeSet(g.typeManager.AllOfKind(kind)...))
}
