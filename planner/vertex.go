package planner

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/storage"
)

// Direction records which side of a constraint the planner chose to scan
// forward from — the canonical direction (e.g. owner -> attribute for
// Has) or the reverse (attribute -> owner).
type Direction uint8

const (
	Canonical Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "canonical"
}

// constraintVertex is the planner's per-constraint-kind cost model. Every
// ir.Constraint that can drive an execution step implements one; Is and
// Comparison do not participate in ordering (they're applied as checks
// once their vertices are bound, not scheduled for their own cost).
type constraintVertex interface {
	constraint() ir.Constraint
	variables() []ir.VariableID
	// cost estimates the work of scheduling this vertex given which of
	// its variables are already bound (inputs) and, if set, which
	// variable this vertex's iterator would be asked to intersect on.
	cost(inputs map[ir.VariableID]bool, intersectOn ir.VariableID, g *Graph) ElementCost
	// chooseDirection returns which side to scan from when none of this
	// vertex's variables are yet bound.
	chooseDirection(g *Graph) Direction
}

// Graph is the bipartite plan graph for one conjunction: a cost vertex
// per constraint, resolved against the type annotations and statistics
// for the scope being planned.
type Graph struct {
	scope       ir.ScopeID
	annotations *annotationLookup
	stats       *storage.Statistics
	typeManager storage.TypeManager
	vertices    []constraintVertex
}

// annotationLookup adapts typeinfer.Annotations' per-scope vertex->TypeSet
// table to the single scope a Graph plans over, so vertex cost functions
// don't need to carry a ScopeID through every call.
type annotationLookup struct {
	types map[ir.Vertex]*concept.TypeSet
}

func (a *annotationLookup) typesOf(v ir.Vertex) *concept.TypeSet {
	if ts, ok := a.types[v]; ok {
		return ts
	}
	return concept.NewTypeSet()
}

func (a *annotationLookup) typesOfVar(v ir.Variable) *concept.TypeSet {
	return a.typesOf(ir.VarVertex{Var: v})
}

// buildGraph constructs one cost vertex per schedulable constraint in
// conjunction.
func buildGraph(
	stats *storage.Statistics,
	typeManager storage.TypeManager,
	conjunction *ir.Conjunction,
	types map[ir.Vertex]*concept.TypeSet,
) *Graph {
	g := &Graph{
		scope:       conjunction.Scope,
		annotations: &annotationLookup{types: types},
		stats:       stats,
		typeManager: typeManager,
	}
	for _, c := range conjunction.Constraints {
		if v := newConstraintVertex(c); v != nil {
			g.vertices = append(g.vertices, v)
		}
	}
	return g
}

func newConstraintVertex(c ir.Constraint) constraintVertex {
	switch cc := c.(type) {
	case ir.Isa:
		return &isaVertex{c: cc}
	case ir.Has:
		return &hasVertex{c: cc}
	case ir.Links:
		return &linksVertex{c: cc}
	case ir.Sub:
		return &subVertex{c: cc}
	case ir.Owns:
		return &ownsVertex{c: cc}
	case ir.Relates:
		return &relatesVertex{c: cc}
	case ir.Plays:
		return &playsVertex{c: cc}
	case ir.Label:
		return &typeListVertex{c: cc}
	case ir.RoleName:
		return &typeListVertex{c: cc}
	case ir.Kind:
		return &typeListVertex{c: cc}
	default:
		return nil
	}
}

func varsOf(verts ...ir.Vertex) []ir.VariableID {
	var out []ir.VariableID
	for _, v := range verts {
		if variable, ok := ir.AsVariable(v); ok {
			out = append(out, variable.ID)
		}
	}
	return out
}

// --- Isa ---

type isaVertex struct{ c ir.Isa }

func (v *isaVertex) constraint() ir.Constraint    { return v.c }
func (v *isaVertex) variables() []ir.VariableID   { return varsOf(v.c.Thing, v.c.Type) }
func (v *isaVertex) chooseDirection(g *Graph) Direction { return Canonical }

func (v *isaVertex) cost(inputs map[ir.VariableID]bool, intersectOn ir.VariableID, g *Graph) ElementCost {
	thingTypes := g.annotations.typesOf(v.c.Thing)
	var total uint64
	for _, t := range thingTypes.Items() {
		total += g.stats.ThingCount(t)
	}
	if total == 0 {
		total = 1
	}
	return ElementCost{PerInput: 1, PerOutput: float64(total), BranchingFactor: float64(total)}
}

// --- Has ---

type hasVertex struct{ c ir.Has }

func (v *hasVertex) constraint() ir.Constraint  { return v.c }
func (v *hasVertex) variables() []ir.VariableID { return varsOf(v.c.Owner, v.c.Attribute) }

func (v *hasVertex) chooseDirection(g *Graph) Direction {
	ownerTypes := g.annotations.typesOf(v.c.Owner)
	attrTypes := g.annotations.typesOf(v.c.Attribute)
	if ownerTypes.Len() == 0 {
		return Canonical
	}
	if attrTypes.Len() == 0 {
		return Reverse
	}
	// Prefer scanning from the side whose instances are fewer, so the
	// first bound variable carries the smaller branching factor forward.
	if estimateOwnerCount(g, v.c) <= estimateAttributeCount(g, v.c) {
		return Canonical
	}
	return Reverse
}

func estimateOwnerCount(g *Graph, c ir.Has) uint64 {
	var total uint64
	for _, t := range g.annotations.typesOf(c.Owner).Items() {
		total += g.stats.ThingCount(t)
	}
	return total
}

func estimateAttributeCount(g *Graph, c ir.Has) uint64 {
	var total uint64
	for _, t := range g.annotations.typesOf(c.Attribute).Items() {
		total += g.stats.ThingCount(t)
	}
	return total
}

func (v *hasVertex) cost(inputs map[ir.VariableID]bool, intersectOn ir.VariableID, g *Graph) ElementCost {
	ownerVars := varsOf(v.c.Owner)
	ownerBound := len(ownerVars) == 0 || inputs[ownerVars[0]]

	if ownerBound {
		var branch float64
		for _, o := range g.annotations.typesOf(v.c.Owner).Items() {
			for _, a := range g.annotations.typesOf(v.c.Attribute).Items() {
				branch += float64(g.stats.HasCardinality(o, a))
			}
		}
		if branch == 0 {
			branch = 1
		}
		return ElementCost{PerInput: 1, PerOutput: branch, BranchingFactor: branch}
	}
	var branch float64
	for _, a := range g.annotations.typesOf(v.c.Attribute).Items() {
		for _, o := range g.annotations.typesOf(v.c.Owner).Items() {
			branch += float64(g.stats.AttributeOwnerCardinality(a, o))
		}
	}
	if branch == 0 {
		branch = 1
	}
	return ElementCost{PerInput: 1, PerOutput: branch, BranchingFactor: branch}
}

// --- Links ---

type linksVertex struct{ c ir.Links }

func (v *linksVertex) constraint() ir.Constraint { return v.c }
func (v *linksVertex) variables() []ir.VariableID {
	return varsOf(v.c.Relation, v.c.Player, v.c.Role)
}

func (v *linksVertex) chooseDirection(g *Graph) Direction {
	relCount := uint64(0)
	for _, t := range g.annotations.typesOf(v.c.Relation).Items() {
		relCount += g.stats.ThingCount(t)
	}
	playerCount := uint64(0)
	for _, t := range g.annotations.typesOf(v.c.Player).Items() {
		playerCount += g.stats.ThingCount(t)
	}
	if relCount <= playerCount {
		return Canonical
	}
	return Reverse
}

func (v *linksVertex) cost(inputs map[ir.VariableID]bool, intersectOn ir.VariableID, g *Graph) ElementCost {
	relVars := varsOf(v.c.Relation)
	relBound := len(relVars) == 0 || inputs[relVars[0]]

	var branch float64
	roles := g.annotations.typesOf(v.c.Role).Items()
	rels := g.annotations.typesOf(v.c.Relation).Items()
	players := g.annotations.typesOf(v.c.Player).Items()
	for _, rel := range rels {
		for _, role := range roles {
			for _, player := range players {
				if relBound {
					branch += float64(g.stats.RelationRolePlayerCardinality(rel, role, player))
				} else {
					branch += float64(g.stats.PlayerRoleRelationCardinality(player, role, rel))
				}
			}
		}
	}
	if branch == 0 {
		branch = 1
	}
	return ElementCost{PerInput: 1, PerOutput: branch, BranchingFactor: branch}
}

// --- Sub / Owns / Relates / Plays: schema-level capability constraints,
// cheap because the candidate sets were already pruned by type inference
// and the capability edges themselves are small relative to instance data.

type subVertex struct{ c ir.Sub }

func (v *subVertex) constraint() ir.Constraint          { return v.c }
func (v *subVertex) variables() []ir.VariableID         { return varsOf(v.c.Subtype, v.c.Supertype) }
func (v *subVertex) chooseDirection(g *Graph) Direction { return Canonical }
func (v *subVertex) cost(inputs map[ir.VariableID]bool, intersectOn ir.VariableID, g *Graph) ElementCost {
	return capabilityCost(g.annotations.typesOf(v.c.Subtype).Len())
}

type ownsVertex struct{ c ir.Owns }

func (v *ownsVertex) constraint() ir.Constraint          { return v.c }
func (v *ownsVertex) variables() []ir.VariableID         { return varsOf(v.c.OwnerType, v.c.AttributeType) }
func (v *ownsVertex) chooseDirection(g *Graph) Direction { return Canonical }
func (v *ownsVertex) cost(inputs map[ir.VariableID]bool, intersectOn ir.VariableID, g *Graph) ElementCost {
	return capabilityCost(g.annotations.typesOf(v.c.OwnerType).Len())
}

type relatesVertex struct{ c ir.Relates }

func (v *relatesVertex) constraint() ir.Constraint { return v.c }
func (v *relatesVertex) variables() []ir.VariableID {
	return varsOf(v.c.RelationType, v.c.RoleType)
}
func (v *relatesVertex) chooseDirection(g *Graph) Direction { return Canonical }
func (v *relatesVertex) cost(inputs map[ir.VariableID]bool, intersectOn ir.VariableID, g *Graph) ElementCost {
	return capabilityCost(g.annotations.typesOf(v.c.RelationType).Len())
}

type playsVertex struct{ c ir.Plays }

func (v *playsVertex) constraint() ir.Constraint  { return v.c }
func (v *playsVertex) variables() []ir.VariableID { return varsOf(v.c.PlayerType, v.c.RoleType) }
func (v *playsVertex) chooseDirection(g *Graph) Direction { return Canonical }
func (v *playsVertex) cost(inputs map[ir.VariableID]bool, intersectOn ir.VariableID, g *Graph) ElementCost {
	return capabilityCost(g.annotations.typesOf(v.c.PlayerType).Len())
}

func capabilityCost(candidateCount int) ElementCost {
	n := float64(candidateCount)
	if n == 0 {
		n = 1
	}
	return ElementCost{PerInput: 1, PerOutput: n, BranchingFactor: n}
}

// --- TypeList (Label / RoleName / Kind): these bind a type variable
// directly from its already-pruned candidate set, no storage scan.

type typeListVertex struct{ c ir.Constraint }

func (v *typeListVertex) constraint() ir.Constraint { return v.c }

func (v *typeListVertex) variables() []ir.VariableID {
	switch cc := v.c.(type) {
	case ir.Label:
		return varsOf(cc.TypeVar)
	case ir.RoleName:
		return varsOf(cc.TypeVar)
	case ir.Kind:
		return varsOf(cc.TypeVar)
	default:
		return nil
	}
}

func (v *typeListVertex) chooseDirection(g *Graph) Direction { return Canonical }

func (v *typeListVertex) cost(inputs map[ir.VariableID]bool, intersectOn ir.VariableID, g *Graph) ElementCost {
	var typeVar ir.Vertex
	switch cc := v.c.(type) {
	case ir.Label:
		typeVar = cc.TypeVar
	case ir.RoleName:
		typeVar = cc.TypeVar
	case ir.Kind:
		typeVar = cc.TypeVar
	}
	n := float64(g.annotations.typesOf(typeVar).Len())
	if n == 0 {
		n = 1
	}
	// A type list is materialized in memory, not scanned from storage:
	// no open-iterator overhead beyond the constant handled by chainCost.
	return ElementCost{PerInput: 0, PerOutput: n, BranchingFactor: n}
}
