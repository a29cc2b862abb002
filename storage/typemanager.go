package storage

import (
	"regexp"

	"github.com/wbrown/graphtype/concept"
)

// AttributeConstraints holds the value-shape constraints declared directly
// on an attribute type: `@regex`, `@range`, `@values`. A nil/empty field
// means that constraint isn't declared.
type AttributeConstraints struct {
	Regex          *regexp.Regexp
	RangeMin       concept.Value
	RangeMax       concept.Value
	Values         []concept.Value
}

// TypeManager resolves schema type references and capability relationships
// (owns/plays/relates) for a fixed schema snapshot. It is read-only and
// shared across every task within a transaction's lifetime.
type TypeManager interface {
	// GetByLabel resolves a type name to its concrete TypeAnnotation.
	GetByLabel(kind concept.TypeKind, label concept.Keyword) (concept.TypeAnnotation, bool)

	// GetByRoleName resolves a role name that may be shared by several
	// relation types to every role type with that name.
	GetByRoleName(name string) []concept.TypeAnnotation

	// Supertypes returns every direct and transitive supertype of t,
	// nearest first.
	Supertypes(t concept.TypeAnnotation) []concept.TypeAnnotation
	// Subtypes returns every direct and transitive subtype of t.
	Subtypes(t concept.TypeAnnotation) []concept.TypeAnnotation
	// IsSubtype reports whether sub is t or a transitive subtype of t.
	IsSubtype(sub, t concept.TypeAnnotation) bool

	// Owns returns every attribute type ownerType owns, transitively
	// through its supertypes, with the capability's own constraints.
	Owns(ownerType concept.TypeAnnotation) []RoleAnnotation
	// OwnersOf returns every entity/relation type that owns attributeType.
	OwnersOf(attributeType concept.TypeAnnotation) []concept.TypeAnnotation

	// Plays returns every role type playerType can play.
	Plays(playerType concept.TypeAnnotation) []RoleAnnotation
	// PlayersOf returns every type that can play roleType.
	PlayersOf(roleType concept.TypeAnnotation) []concept.TypeAnnotation

	// Relates returns every role type relationType relates.
	Relates(relationType concept.TypeAnnotation) []RoleAnnotation
	// RelationsOf returns every relation type that relates roleType.
	RelationsOf(roleType concept.TypeAnnotation) []concept.TypeAnnotation

	// AllOfKind returns every type of the given schema kind, used when
	// seeding a vertex with no Label/RoleName/Kind constraint narrowing it.
	AllOfKind(kind concept.TypeKind) []concept.TypeAnnotation

	// IsAbstract reports whether t is declared abstract: Isa may never
	// create a direct instance of it.
	IsAbstract(t concept.TypeAnnotation) bool

	// AttributeConstraints returns the value-shape constraints declared on
	// attributeType itself (regex/range/values), independent of which
	// owns capability is attaching a value to it.
	AttributeConstraints(attributeType concept.TypeAnnotation) AttributeConstraints
}
