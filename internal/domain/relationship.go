package domain

import "fmt"

// relationshipKey identifies one row in the relationship policy table.
type relationshipKey struct {
	From MetaType
	To   MetaType
	Type EdgeType
}

// relationshipPolicy is the static table of admissible structural
// relationships. A missing entry means the relationship is unsupported;
// there is no default. The Placement Engine and Connection Manager consult
// the same table.
var relationshipPolicy = map[relationshipKey]struct{}{
	// Physical placement.
	{MetaTypePhysical, MetaTypeLocation, EdgeLocatedIn}: {},

	// Structural containment.
	{MetaTypeLocation, MetaTypeLocation, EdgeHas}: {},
	{MetaTypeLocation, MetaTypePhysical, EdgeHas}: {},
	{MetaTypePhysical, MetaTypePhysical, EdgeHas}: {},

	// Physical connections.
	{MetaTypePhysical, MetaTypePhysical, EdgeConnectedTo}: {},

	// Ownership.
	{MetaTypeRelation, MetaTypeLocation, EdgeResponsibleFor}: {},
	{MetaTypeRelation, MetaTypePhysical, EdgeResponsibleFor}: {},
	{MetaTypeRelation, MetaTypeLogical, EdgeResponsibleFor}:  {},

	// Provisioning.
	{MetaTypeRelation, MetaTypeLogical, EdgeProvides}:  {},
	{MetaTypeRelation, MetaTypePhysical, EdgeProvides}: {},

	// Dependencies.
	{MetaTypeLogical, MetaTypePhysical, EdgeDependsOn}: {},
	{MetaTypeLogical, MetaTypeLogical, EdgeDependsOn}:  {},
}

// SuitableRelationship validates that an edge of the given type may run
// from an entity of meta-type from to one of meta-type to. Unknown pairs
// fail with ErrUnsupportedRelationship rather than silently creating a
// malformed edge.
func SuitableRelationship(from, to MetaType, edgeType EdgeType) error {
	if _, ok := relationshipPolicy[relationshipKey{from, to, edgeType}]; !ok {
		return fmt.Errorf("%s -[%s]-> %s: %w", from, edgeType, to, ErrUnsupportedRelationship)
	}
	return nil
}

// SymmetricRelationship reports whether the edge type is treated as
// undirected for idempotence checks.
func SymmetricRelationship(edgeType EdgeType) bool {
	return edgeType == EdgeConnectedTo
}
