package service

import (
	"context"
	"fmt"

	"patchbay/internal/domain"
	"patchbay/internal/graph"
)

// Connect links two entities with a Connected_to edge. The pair must be
// allowed by the relationship policy. Connected_to is symmetric, so an
// existing edge in either direction makes the call an idempotent success.
func (s *Inventory) Connect(ctx context.Context, aID, bID int64) error {
	aMeta, err := s.Classify(ctx, aID)
	if err != nil {
		return err
	}
	bMeta, err := s.Classify(ctx, bID)
	if err != nil {
		return err
	}
	if err := domain.SuitableRelationship(aMeta, bMeta, domain.EdgeConnectedTo); err != nil {
		return fmt.Errorf("connect %d to %d: %w", aID, bID, err)
	}

	created := false
	err = s.graph.InTransaction(ctx, func(tx graph.Tx) error {
		forward, err := tx.GetEdges(ctx, aID, bID, domain.EdgeConnectedTo)
		if err != nil {
			return err
		}
		if len(forward) > 0 {
			return nil
		}
		if domain.SymmetricRelationship(domain.EdgeConnectedTo) {
			reverse, err := tx.GetEdges(ctx, bID, aID, domain.EdgeConnectedTo)
			if err != nil {
				return err
			}
			if len(reverse) > 0 {
				return nil
			}
		}

		if _, err := tx.CreateEdge(ctx, aID, bID, domain.EdgeConnectedTo, nil); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("connect %d to %d: %w", aID, bID, err)
	}

	if created {
		s.publish(EventConnectionCreated, map[string]int64{"from_id": aID, "to_id": bID})
	}
	return nil
}

// RemoveEdge deletes one edge by id. The edge must touch the named entity,
// which guards against deleting an unrelated edge through a stale id.
func (s *Inventory) RemoveEdge(ctx context.Context, entityID, edgeID int64) error {
	edge, err := s.graph.GetEdge(ctx, edgeID)
	if err != nil {
		return err
	}
	if !edge.Touches(entityID) {
		return fmt.Errorf("remove edge %d: %w: edge does not touch entity %d", edgeID, domain.ErrNotFound, entityID)
	}
	if err := s.graph.DeleteEdge(ctx, edgeID); err != nil {
		return err
	}

	s.publish(EventEdgeDeleted, map[string]int64{"entity_id": entityID, "edge_id": edgeID})
	return nil
}
