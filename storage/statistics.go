package storage

import "github.com/wbrown/graphtype/concept"

// Statistics is the process-wide, read-only cardinality table the cost
// model is built on, refreshed out of band by a collaborator this module
// never calls into directly.
type Statistics struct {
	EntityCounts    map[concept.TypeAnnotation]uint64
	RelationCounts  map[concept.TypeAnnotation]uint64
	AttributeCounts map[concept.TypeAnnotation]uint64
	RoleCounts      map[concept.TypeAnnotation]uint64

	// HasAttributeCounts[owner][attr] estimates how many attr instances a
	// typical owner instance has.
	HasAttributeCounts map[concept.TypeAnnotation]map[concept.TypeAnnotation]uint64
	// AttributeOwnerCounts[attr][owner] estimates how many owner instances
	// a typical attr instance belongs to.
	AttributeOwnerCounts map[concept.TypeAnnotation]map[concept.TypeAnnotation]uint64

	// RelationRolePlayerCounts[rel][role][player] estimates how many
	// (role, player) pairs a typical relation instance of type rel has.
	RelationRolePlayerCounts map[concept.TypeAnnotation]map[concept.TypeAnnotation]map[concept.TypeAnnotation]uint64
	// PlayerRoleRelationCounts[player][role][rel] is the inverse
	// direction, used when planning picks the reverse scan.
	PlayerRoleRelationCounts map[concept.TypeAnnotation]map[concept.TypeAnnotation]map[concept.TypeAnnotation]uint64
}

// NewStatistics returns an empty, ready-to-populate Statistics table.
func NewStatistics() *Statistics {
	return &Statistics{
		EntityCounts:             make(map[concept.TypeAnnotation]uint64),
		RelationCounts:           make(map[concept.TypeAnnotation]uint64),
		AttributeCounts:          make(map[concept.TypeAnnotation]uint64),
		RoleCounts:               make(map[concept.TypeAnnotation]uint64),
		HasAttributeCounts:       make(map[concept.TypeAnnotation]map[concept.TypeAnnotation]uint64),
		AttributeOwnerCounts:     make(map[concept.TypeAnnotation]map[concept.TypeAnnotation]uint64),
		RelationRolePlayerCounts: make(map[concept.TypeAnnotation]map[concept.TypeAnnotation]map[concept.TypeAnnotation]uint64),
		PlayerRoleRelationCounts: make(map[concept.TypeAnnotation]map[concept.TypeAnnotation]map[concept.TypeAnnotation]uint64),
	}
}

// ThingCount returns the estimated instance count of t regardless of kind,
// used by the planner when it only needs an order-of-magnitude scan size.
func (s *Statistics) ThingCount(t concept.TypeAnnotation) uint64 {
	switch t.Kind {
	case concept.KindEntity:
		return s.EntityCounts[t]
	case concept.KindRelation:
		return s.RelationCounts[t]
	case concept.KindAttribute:
		return s.AttributeCounts[t]
	case concept.KindRole:
		return s.RoleCounts[t]
	default:
		return 0
	}
}

// HasCardinality returns the estimated has-attribute fan-out for
// (owner, attribute), defaulting to 1 when no statistic is recorded —
// an unknown cardinality is planned as if selective, not as a scan of
// everything.
func (s *Statistics) HasCardinality(owner, attribute concept.TypeAnnotation) uint64 {
	if m, ok := s.HasAttributeCounts[owner]; ok {
		if c, ok := m[attribute]; ok {
			return c
		}
	}
	return 1
}

// AttributeOwnerCardinality is the inverse of HasCardinality.
func (s *Statistics) AttributeOwnerCardinality(attribute, owner concept.TypeAnnotation) uint64 {
	if m, ok := s.AttributeOwnerCounts[attribute]; ok {
		if c, ok := m[owner]; ok {
			return c
		}
	}
	return 1
}

// RelationRolePlayerCardinality estimates how many (role, player) pairs a
// relation instance of type rel has for the given role/player types.
func (s *Statistics) RelationRolePlayerCardinality(rel, role, player concept.TypeAnnotation) uint64 {
	if byRole, ok := s.RelationRolePlayerCounts[rel]; ok {
		if byPlayer, ok := byRole[role]; ok {
			if c, ok := byPlayer[player]; ok {
				return c
			}
		}
	}
	return 1
}

// PlayerRoleRelationCardinality is the inverse of RelationRolePlayerCardinality.
func (s *Statistics) PlayerRoleRelationCardinality(player, role, rel concept.TypeAnnotation) uint64 {
	if byRole, ok := s.PlayerRoleRelationCounts[player]; ok {
		if byRel, ok := byRole[role]; ok {
			if c, ok := byRel[rel]; ok {
				return c
			}
		}
	}
	return 1
}
