package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"patchbay/internal/domain"
	"patchbay/internal/graph"
)

// Create makes a new entity: one record, one graph node labelled with the
// entity's type, and exactly one Contains edge from the meta-type root.
// An empty metaType uses the type's default category. A node already
// present for the record id is adopted rather than treated as an error.
func (s *Inventory) Create(ctx context.Context, name, typeSlug string, metaType domain.MetaType, actor string) (*domain.EntityRecord, error) {
	et, err := domain.LookupType(typeSlug)
	if err != nil {
		return nil, err
	}
	if metaType == "" {
		metaType = et.DefaultMeta
	}
	if !metaType.Valid() {
		return nil, fmt.Errorf("create entity %q: invalid meta type %q", name, metaType)
	}

	now := time.Now().UTC()
	rec := &domain.EntityRecord{
		Name:       name,
		TypeSlug:   et.Slug,
		MetaType:   metaType,
		Creator:    actor,
		CreatedAt:  now,
		Modifier:   actor,
		ModifiedAt: now,
	}
	if err := s.records.CreateEntity(ctx, rec); err != nil {
		return nil, fmt.Errorf("create entity %q: %w", name, err)
	}

	err = s.graph.InTransaction(ctx, func(tx graph.Tx) error {
		node := &graph.Node{
			ID:    rec.ID,
			Label: et.Label,
			Properties: map[string]domain.Value{
				"name": domain.StringValue(name),
			},
		}
		if err := tx.CreateNode(ctx, node); err != nil {
			if !errors.Is(err, domain.ErrNodeExists) {
				return err
			}
			// The node survived a previous partial create. It may already
			// carry its Contains edge.
			existing, err := tx.IncomingEdges(ctx, rec.ID, domain.EdgeContains)
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				return nil
			}
		}
		_, err := tx.CreateEdge(ctx, graph.MetaRootID(metaType), rec.ID, domain.EdgeContains, nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create entity %q: %w", name, err)
	}

	s.publish(EventEntityCreated, map[string]any{"entity_id": rec.ID, "name": name, "type": et.Slug})
	return rec, nil
}

// GetOrCreateUnique finds the entity with the given name and type, creating
// it when absent. It reports whether a new entity was created.
func (s *Inventory) GetOrCreateUnique(ctx context.Context, name, typeSlug string, metaType domain.MetaType, actor string) (*domain.EntityRecord, bool, error) {
	rec, err := s.records.FindEntity(ctx, name, typeSlug)
	if err == nil {
		return rec, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	rec, err = s.Create(ctx, name, typeSlug, metaType, actor)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// Delete removes an entity. A physical entity takes everything it
// transitively owns through outgoing Has edges with it. Node deletions
// happen in one transaction; records already gone from the graph are
// tolerated. Returns the ids that were deleted.
func (s *Inventory) Delete(ctx context.Context, entityID int64) ([]int64, error) {
	if _, err := s.records.GetEntity(ctx, entityID); err != nil {
		return nil, err
	}
	meta, err := s.Classify(ctx, entityID)
	if err != nil {
		return nil, err
	}

	// Worklist traversal over outgoing Has edges. The seen set guards
	// against cycles in imported data.
	seen := map[int64]bool{entityID: true}
	doomed := []int64{entityID}
	var stack []int64
	if meta == domain.MetaTypePhysical {
		stack = append(stack, entityID)
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		edges, err := s.graph.OutgoingEdges(ctx, id, domain.EdgeHas)
		if err != nil {
			return nil, fmt.Errorf("delete entity %d: %w", entityID, err)
		}
		for _, edge := range edges {
			if seen[edge.ToID] {
				continue
			}
			seen[edge.ToID] = true
			doomed = append(doomed, edge.ToID)
			stack = append(stack, edge.ToID)
		}
	}

	err = s.graph.InTransaction(ctx, func(tx graph.Tx) error {
		for _, id := range doomed {
			if err := tx.DeleteNode(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete entity %d: %w", entityID, err)
	}

	for _, id := range doomed {
		if err := s.records.DeleteEntity(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("delete entity %d: %w", entityID, err)
		}
	}

	s.publish(EventEntityDeleted, map[string]any{"entity_id": entityID, "deleted": doomed})
	return doomed, nil
}
