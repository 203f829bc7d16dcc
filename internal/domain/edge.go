package domain

// EdgeType represents the type of a structural relationship between two
// graph nodes. Values match the wire names stored in the graph.
type EdgeType string

const (
	// EdgeContains runs from a meta-root to an entity and declares its
	// meta-type category. Exactly one per entity; replaced on promotion.
	EdgeContains EdgeType = "Contains"

	// EdgeHas runs from a parent to a structurally owned child (site Has
	// rack, odf Has port). At most one incoming per entity.
	EdgeHas EdgeType = "Has"

	// EdgeLocatedIn places a physical entity at a location. At most one
	// outgoing per entity.
	EdgeLocatedIn EdgeType = "Located_in"

	// EdgeConnectedTo is a symmetric physical connection (cable end to
	// port). Creation is idempotent per pair.
	EdgeConnectedTo EdgeType = "Connected_to"

	// EdgeResponsibleFor assigns ownership of a location or equipment to a
	// relation entity. Replace, never append.
	EdgeResponsibleFor EdgeType = "Responsible_for"

	// EdgeDependsOn declares that a logical entity depends on another
	// entity.
	EdgeDependsOn EdgeType = "Depends_on"

	// EdgeProvides declares that a relation entity provides a logical or
	// physical entity. Replace, never append.
	EdgeProvides EdgeType = "Provides"
)

// Edge is a directed, typed, property-bearing relationship between two
// graph nodes.
type Edge struct {
	ID         int64            `json:"id"`
	FromID     int64            `json:"from_id"`
	ToID       int64            `json:"to_id"`
	Type       EdgeType         `json:"type"`
	Properties map[string]Value `json:"properties,omitempty"`
}

// Touches reports whether the edge starts or ends at the given node.
func (e *Edge) Touches(nodeID int64) bool {
	return e.FromID == nodeID || e.ToID == nodeID
}
