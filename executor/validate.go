package executor

import (
	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/storage"
)

// ViolationKind names one write-time schema constraint a write instruction
// checks before applying its mutation. Every kind here corresponds to one
// named error a client can match on, rather than parsing an error string.
type ViolationKind uint8

const (
	ViolationNone ViolationKind = iota
	ViolationCannotCreateInstanceOfAbstractType
	ViolationCannotAddOwnerInstanceForNotOwnedAttributeType
	ViolationCannotAddPlayerInstanceForNotPlayedRoleType
	ViolationCannotAddRelationInstanceForNotRelatedRoleType
	ViolationPlayerViolatesDistinctRelatesConstraint
	ViolationAttributeViolatesDistinctOwnsConstraint
	ViolationAttributeViolatesRegexConstraint
	ViolationAttributeViolatesRangeConstraint
	ViolationAttributeViolatesValuesConstraint
	ViolationHasViolatesRegexConstraint
	ViolationHasViolatesRangeConstraint
	ViolationHasViolatesValuesConstraint
	ViolationKeyValueTaken
	ViolationUniqueValueTaken
	ViolationKeyCardinalityViolated
	ViolationOwnsCardinalityViolated
	ViolationPlaysCardinalityViolated
	ViolationRelatesCardinalityViolated
)

var violationNames = map[ViolationKind]string{
	ViolationNone: "NoViolation",
	ViolationCannotCreateInstanceOfAbstractType:             "CannotCreateInstanceOfAbstractType",
	ViolationCannotAddOwnerInstanceForNotOwnedAttributeType: "CannotAddOwnerInstanceForNotOwnedAttributeType",
	ViolationCannotAddPlayerInstanceForNotPlayedRoleType:    "CannotAddPlayerInstanceForNotPlayedRoleType",
	ViolationCannotAddRelationInstanceForNotRelatedRoleType: "CannotAddRelationInstanceForNotRelatedRoleType",
	ViolationPlayerViolatesDistinctRelatesConstraint:        "PlayerViolatesDistinctRelatesConstraint",
	ViolationAttributeViolatesDistinctOwnsConstraint:        "AttributeViolatesDistinctOwnsConstraint",
	ViolationAttributeViolatesRegexConstraint:                "AttributeViolatesRegexConstraint",
	ViolationAttributeViolatesRangeConstraint:                "AttributeViolatesRangeConstraint",
	ViolationAttributeViolatesValuesConstraint:               "AttributeViolatesValuesConstraint",
	ViolationHasViolatesRegexConstraint:                      "HasViolatesRegexConstraint",
	ViolationHasViolatesRangeConstraint:                      "HasViolatesRangeConstraint",
	ViolationHasViolatesValuesConstraint:                     "HasViolatesValuesConstraint",
	ViolationKeyValueTaken:            "KeyValueTaken",
	ViolationUniqueValueTaken:         "UniqueValueTaken",
	ViolationKeyCardinalityViolated:   "KeyCardinalityViolated",
	ViolationOwnsCardinalityViolated:  "OwnsCardinalityViolated",
	ViolationPlaysCardinalityViolated: "PlaysCardinalityViolated",
	ViolationRelatesCardinalityViolated: "RelatesCardinalityViolated",
}

func (k ViolationKind) String() string {
	if name, ok := violationNames[k]; ok {
		return name
	}
	return "UnknownViolation"
}

// validateNotAbstract rejects creating a direct instance of an abstract
// type. Abstract types exist only to be subtyped.
func validateNotAbstract(tm storage.TypeManager, typ concept.TypeAnnotation) error {
	if tm.IsAbstract(typ) {
		return violationError(ViolationCannotCreateInstanceOfAbstractType, "%s is abstract and cannot be instantiated directly", typ.Label)
	}
	return nil
}

// validateOwnsCapability checks ownerType's schema actually declares
// ownership of attributeType at all, independent of any cardinality or
// value-shape constraint on that capability.
func validateOwnsCapability(tm storage.TypeManager, ownerType, attributeType concept.TypeAnnotation) (storage.RoleAnnotation, error) {
	for _, ra := range tm.Owns(ownerType) {
		if ra.Role == attributeType {
			return ra, nil
		}
	}
	return storage.RoleAnnotation{}, violationError(ViolationCannotAddOwnerInstanceForNotOwnedAttributeType, "%s does not own attribute type %s", ownerType.Label, attributeType.Label)
}

// validatePlaysCapability checks playerType's schema actually declares it
// can play roleType at all.
func validatePlaysCapability(tm storage.TypeManager, playerType, roleType concept.TypeAnnotation) (storage.RoleAnnotation, error) {
	for _, ra := range tm.Plays(playerType) {
		if ra.Role == roleType {
			return ra, nil
		}
	}
	return storage.RoleAnnotation{}, violationError(ViolationCannotAddPlayerInstanceForNotPlayedRoleType, "%s does not play role %s", playerType.Label, roleType.Label)
}

// validateRelatesCapability checks relationType's schema actually declares
// it relates roleType at all. This is a capability check, not a
// cardinality check — ViolationRelatesCardinalityViolated is reserved for
// validateRelatesCardinality below, which runs only once this capability
// is confirmed to exist.
func validateRelatesCapability(tm storage.TypeManager, relationType, roleType concept.TypeAnnotation) (storage.RoleAnnotation, error) {
	for _, ra := range tm.Relates(relationType) {
		if ra.Role == roleType {
			return ra, nil
		}
	}
	return storage.RoleAnnotation{}, violationError(ViolationCannotAddRelationInstanceForNotRelatedRoleType, "%s does not relate role %s", relationType.Label, roleType.Label)
}

// validateAttributeValue checks attrValue against the value-shape
// constraints (@regex, @range, @values) attributeType's schema declares.
// These constraints belong to the attribute type itself, not to the owns
// capability attaching the value, so a violation is reported under the
// Attribute* kind. The Has* kinds are not produced: storage.RoleAnnotation
// carries no value-shape constraints for an owns capability.
func validateAttributeValue(tm storage.TypeManager, attributeType concept.TypeAnnotation, attrValue concept.Value) error {
	c := tm.AttributeConstraints(attributeType)
	if c.Regex != nil {
		s, ok := attrValue.(string)
		if !ok || !c.Regex.MatchString(s) {
			return violationError(ViolationAttributeViolatesRegexConstraint, "%s value %v does not match pattern %s", attributeType.Label, attrValue, c.Regex.String())
		}
	}
	if c.RangeMin != nil && concept.Compare(attrValue, c.RangeMin) < 0 {
		return violationError(ViolationAttributeViolatesRangeConstraint, "%s value %v is below the minimum %v", attributeType.Label, attrValue, c.RangeMin)
	}
	if c.RangeMax != nil && concept.Compare(attrValue, c.RangeMax) > 0 {
		return violationError(ViolationAttributeViolatesRangeConstraint, "%s value %v is above the maximum %v", attributeType.Label, attrValue, c.RangeMax)
	}
	if len(c.Values) > 0 {
		allowed := false
		for _, v := range c.Values {
			if concept.Compare(attrValue, v) == 0 {
				allowed = true
				break
			}
		}
		if !allowed {
			return violationError(ViolationAttributeViolatesValuesConstraint, "%s value %v is not one of the declared values", attributeType.Label, attrValue)
		}
	}
	return nil
}

// validateOwnsUniqueness enforces @key/@unique: no other owner instance
// may already hold this exact attribute value through the same attribute
// type. Re-attaching the same owner/attribute pair is not a violation.
func validateOwnsUniqueness(txn storage.Snapshot, ra storage.RoleAnnotation, attributeType concept.TypeAnnotation, owner, attribute concept.Identity) error {
	if !ra.Key && !ra.Unique {
		return nil
	}
	it, err := txn.Scan(keyRangeForPrefix(keyPrefix(prefixHasReverse, attribute.Bytes())))
	if err != nil {
		return readError(err, "scanning has-reverse index for owns-uniqueness check")
	}
	defer it.Close()

	for it.Next() {
		parts, ok := splitKeyParts(it.Key(), 2)
		if !ok {
			continue
		}
		existingOwner := parts[1]
		if !existingOwner.Equal(owner) {
			kind := ViolationUniqueValueTaken
			if ra.Key {
				kind = ViolationKeyValueTaken
			}
			return violationError(kind, "%s value is already owned by a different instance", attributeType.Label)
		}
	}
	return nil
}

// validateOwnsCardinality enforces the @card bound an owns capability
// declares on how many distinct instances of attributeType ownerType's
// instance may hold, using the type-scoped index maintained alongside
// the type-agnostic has-forward/has-reverse edges (see InsertHas).
// Re-attaching an already-owned value never counts as a new instance.
func validateOwnsCardinality(txn storage.Snapshot, ra storage.RoleAnnotation, ownerType, attributeType concept.TypeAnnotation, owner, attribute concept.Identity) error {
	if ra.Cardinality.Unbounded() {
		return nil
	}
	typeLabel := []byte(attributeType.Label.String())
	_, alreadyOwned, err := txn.Get(ownsByTypeKey(owner.Bytes(), typeLabel, attribute.Bytes()))
	if err != nil {
		return readError(err, "checking existing owns-by-type entry")
	}
	if alreadyOwned {
		return nil
	}
	count, err := countPrefix(txn, keyPrefix(prefixOwnsByType, owner.Bytes(), typeLabel))
	if err != nil {
		return err
	}
	if count+1 > ra.Cardinality.Max {
		kind := ViolationOwnsCardinalityViolated
		if ra.Key {
			kind = ViolationKeyCardinalityViolated
		}
		return violationError(kind, "%s already owns %d instance(s) of %s (max %d)", ownerType.Label, count, attributeType.Label, ra.Cardinality.Max)
	}
	return nil
}

// validatePlaysCardinality enforces the @card bound a plays capability
// declares on how many distinct relation instances playerType's instance
// may fill roleType in, via the links-by-player index (keyed player, role,
// relation — exactly the prefix this needs). Re-linking an already-linked
// relation instance never counts as a new instance.
func validatePlaysCardinality(txn storage.Snapshot, ra storage.RoleAnnotation, playerType, roleType concept.TypeAnnotation, player, relation, role concept.Identity) error {
	if ra.Cardinality.Unbounded() {
		return nil
	}
	_, alreadyLinked, err := txn.Get(linksByPlayerKey(player.Bytes(), role.Bytes(), relation.Bytes()))
	if err != nil {
		return readError(err, "checking existing links-by-player entry")
	}
	if alreadyLinked {
		return nil
	}
	count, err := countPrefix(txn, keyPrefix(prefixLinksByPlayer, player.Bytes(), role.Bytes()))
	if err != nil {
		return err
	}
	if count+1 > ra.Cardinality.Max {
		return violationError(ViolationPlaysCardinalityViolated, "%s already plays %s in %d relation(s) (max %d)", playerType.Label, roleType.Label, count, ra.Cardinality.Max)
	}
	return nil
}

// validateRelatesCardinality enforces the @card bound a relates
// capability declares on how many players one relation instance may bind
// under roleType, via the links-by-role index (keyed relation, role,
// player). Re-linking an already-linked player never counts as a new
// instance.
func validateRelatesCardinality(txn storage.Snapshot, ra storage.RoleAnnotation, relationType, roleType concept.TypeAnnotation, relation, player, role concept.Identity) error {
	if ra.Cardinality.Unbounded() {
		return nil
	}
	_, alreadyLinked, err := txn.Get(linksByRoleKey(relation.Bytes(), role.Bytes(), player.Bytes()))
	if err != nil {
		return readError(err, "checking existing links-by-relation entry")
	}
	if alreadyLinked {
		return nil
	}
	count, err := countPrefix(txn, keyPrefix(prefixLinksByRole, relation.Bytes(), role.Bytes()))
	if err != nil {
		return err
	}
	if count+1 > ra.Cardinality.Max {
		return violationError(ViolationRelatesCardinalityViolated, "%s role %s already has %d player(s) (max %d)", relationType.Label, roleType.Label, count, ra.Cardinality.Max)
	}
	return nil
}

// validateDistinctRelatesConstraint enforces @distinct on a relates
// capability: the same player instance may not simultaneously fill two
// different roles of the same relation instance (e.g. the same person
// cannot be both employer and employee of the same employment instance).
func validateDistinctRelatesConstraint(txn storage.Snapshot, ra storage.RoleAnnotation, relationType concept.TypeAnnotation, relation, player, role concept.Identity) error {
	if !ra.Distinct {
		return nil
	}
	it, err := txn.Scan(keyRangeForPrefix(keyPrefix(prefixLinksByRole, relation.Bytes())))
	if err != nil {
		return readError(err, "scanning links-by-relation index for distinct-relates check")
	}
	defer it.Close()

	for it.Next() {
		_, existingRole, existingPlayer, ok := splitLinksKey(it.Key())
		if !ok {
			continue
		}
		if existingPlayer.Equal(player) && !existingRole.Equal(role) {
			return violationError(ViolationPlayerViolatesDistinctRelatesConstraint, "player already fills a different role in this %s instance", relationType.Label)
		}
	}
	return nil
}

// countPrefix counts the keys in snap's index that start with prefix,
// without decoding them — the only thing cardinality validation needs.
func countPrefix(snap storage.Snapshot, prefix []byte) (int, error) {
	it, err := snap.Scan(keyRangeForPrefix(prefix))
	if err != nil {
		return 0, readError(err, "counting indexed entries")
	}
	defer it.Close()
	n := 0
	for it.Next() {
		n++
	}
	return n, nil
}
