package service

import (
	"context"
	"fmt"

	"patchbay/internal/domain"
	"patchbay/internal/graph"
)

// PlacePhysical places a physical entity at a location (site or rack). A
// logical entity is promoted to physical first. Re-placing at the current
// location is a no-op; otherwise every outgoing Located_in edge is removed
// and exactly one new edge is created, inside one transaction.
func (s *Inventory) PlacePhysical(ctx context.Context, entityID, locationID int64, actor string) error {
	meta, err := s.Classify(ctx, entityID)
	if err != nil {
		return err
	}
	if meta == domain.MetaTypeLogical {
		if err := s.PromoteToPhysical(ctx, entityID, actor); err != nil {
			return err
		}
		meta = domain.MetaTypePhysical
	}

	locMeta, err := s.Classify(ctx, locationID)
	if err != nil {
		return err
	}
	if err := domain.SuitableRelationship(meta, locMeta, domain.EdgeLocatedIn); err != nil {
		return fmt.Errorf("place entity %d at %d: %w", entityID, locationID, err)
	}

	err = s.graph.InTransaction(ctx, func(tx graph.Tx) error {
		existing, err := tx.GetEdges(ctx, entityID, locationID, domain.EdgeLocatedIn)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			// Already placed here. Edge property updates on re-placement
			// are a future extension.
			return nil
		}

		stale, err := tx.OutgoingEdges(ctx, entityID, domain.EdgeLocatedIn)
		if err != nil {
			return err
		}
		for _, edge := range stale {
			if err := tx.DeleteEdge(ctx, edge.ID); err != nil {
				return err
			}
		}

		_, err = tx.CreateEdge(ctx, entityID, locationID, domain.EdgeLocatedIn, nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("place entity %d at %d: %w", entityID, locationID, err)
	}

	s.publish(EventPlacementUpdated, map[string]int64{"entity_id": entityID, "location_id": locationID})
	return nil
}

// RemovePlacement deletes every outgoing Located_in edge, leaving the
// entity unplaced.
func (s *Inventory) RemovePlacement(ctx context.Context, entityID int64) error {
	err := s.graph.InTransaction(ctx, func(tx graph.Tx) error {
		edges, err := tx.OutgoingEdges(ctx, entityID, domain.EdgeLocatedIn)
		if err != nil {
			return err
		}
		for _, edge := range edges {
			if err := tx.DeleteEdge(ctx, edge.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove placement of entity %d: %w", entityID, err)
	}

	s.publish(EventPlacementRemoved, map[string]int64{"entity_id": entityID})
	return nil
}

// PlaceLocation nests a location inside a parent location. The same
// replace semantics apply over the entity's incoming Has edges: a request
// naming the current parent short-circuits to a no-op, anything else
// replaces every incoming Has edge with one edge from the new parent.
func (s *Inventory) PlaceLocation(ctx context.Context, entityID, parentID int64, actor string) error {
	meta, err := s.Classify(ctx, entityID)
	if err != nil {
		return err
	}
	parentMeta, err := s.Classify(ctx, parentID)
	if err != nil {
		return err
	}
	if err := domain.SuitableRelationship(parentMeta, meta, domain.EdgeHas); err != nil {
		return fmt.Errorf("place location %d in %d: %w", entityID, parentID, err)
	}

	err = s.graph.InTransaction(ctx, func(tx graph.Tx) error {
		existing, err := tx.GetEdges(ctx, parentID, entityID, domain.EdgeHas)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}

		stale, err := tx.IncomingEdges(ctx, entityID, domain.EdgeHas)
		if err != nil {
			return err
		}
		for _, edge := range stale {
			if err := tx.DeleteEdge(ctx, edge.ID); err != nil {
				return err
			}
		}

		_, err = tx.CreateEdge(ctx, parentID, entityID, domain.EdgeHas, nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("place location %d in %d: %w", entityID, parentID, err)
	}

	s.publish(EventPlacementUpdated, map[string]int64{"entity_id": entityID, "location_id": parentID})
	return nil
}
