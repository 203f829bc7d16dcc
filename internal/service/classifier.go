package service

import (
	"context"
	"fmt"

	"patchbay/internal/domain"
	"patchbay/internal/graph"
)

// Classify determines an entity's meta-type category from its Contains
// edge. Entities with no Contains edge (partially migrated data) fall back
// to the record's stored meta-type.
func (s *Inventory) Classify(ctx context.Context, entityID int64) (domain.MetaType, error) {
	edges, err := s.graph.IncomingEdges(ctx, entityID, domain.EdgeContains)
	if err != nil {
		return "", err
	}
	if len(edges) > 0 {
		if m, ok := graph.MetaTypeForRoot(edges[0].FromID); ok {
			return m, nil
		}
	}

	rec, err := s.records.GetEntity(ctx, entityID)
	if err != nil {
		return "", err
	}
	return rec.MetaType, nil
}

// PromoteToPhysical converts a logical entity to a physical one: within
// one transaction the existing Contains edge is deleted, a new Contains
// edge is created from the physical meta-root, and the entity record's
// meta-type is updated. Promotion is one-way; calling it on an
// already-physical entity is a no-op. A missing Contains edge is treated
// as already-converted data, not an error.
func (s *Inventory) PromoteToPhysical(ctx context.Context, entityID int64, actor string) error {
	rec, err := s.records.GetEntity(ctx, entityID)
	if err != nil {
		return err
	}

	meta, err := s.Classify(ctx, entityID)
	if err != nil {
		return err
	}
	if meta == domain.MetaTypePhysical {
		return nil
	}
	if meta != domain.MetaTypeLogical {
		return fmt.Errorf("promote entity %d: cannot promote %s entity", entityID, meta)
	}

	err = s.graph.InTransaction(ctx, func(tx graph.Tx) error {
		edges, err := tx.IncomingEdges(ctx, entityID, domain.EdgeContains)
		if err != nil {
			return err
		}
		for _, edge := range edges {
			if err := tx.DeleteEdge(ctx, edge.ID); err != nil {
				return err
			}
		}
		_, err = tx.CreateEdge(ctx, graph.MetaRootID(domain.MetaTypePhysical), entityID, domain.EdgeContains, nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("promote entity %d: %w", entityID, err)
	}

	rec.MetaType = domain.MetaTypePhysical
	rec.Touch(actor)
	if err := s.records.UpdateEntity(ctx, rec); err != nil {
		return fmt.Errorf("promote entity %d: %w", entityID, err)
	}

	s.publish(EventEntityPromoted, map[string]int64{"entity_id": entityID})
	return nil
}
