package service

import (
	"context"

	"patchbay/internal/domain"
	"patchbay/internal/graph"
	"patchbay/internal/records"
)

// Inventory provides the core inventory operations: classification,
// placement, connection, lifecycle, and unique-id management.
type Inventory struct {
	records  records.Store
	graph    graph.Store
	eventBus *EventBus
}

// New creates a new inventory service.
func New(recordStore records.Store, graphStore graph.Store, eventBus *EventBus) *Inventory {
	return &Inventory{
		records:  recordStore,
		graph:    graphStore,
		eventBus: eventBus,
	}
}

// GetEntity returns an entity record by id.
func (s *Inventory) GetEntity(ctx context.Context, id int64) (*domain.EntityRecord, error) {
	return s.records.GetEntity(ctx, id)
}

// GetNode returns the graph node projected from an entity record.
func (s *Inventory) GetNode(ctx context.Context, id int64) (*graph.Node, error) {
	return s.graph.GetNode(ctx, id)
}

// SetProperties merges coerced property values into an entity's node.
func (s *Inventory) SetProperties(ctx context.Context, id int64, raw map[string]any) error {
	return s.graph.SetNodeProperties(ctx, id, domain.CoerceProperties(raw))
}

func (s *Inventory) publish(eventType EventType, payload interface{}) {
	if s.eventBus != nil {
		s.eventBus.Publish(NewEvent(eventType, payload))
	}
}
