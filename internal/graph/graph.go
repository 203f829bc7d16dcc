package graph

import (
	"context"

	"patchbay/internal/domain"
)

// Node is a graph node: a label reflecting the entity's declared type plus
// a property bag drawn from the closed value variants.
type Node struct {
	ID         int64                   `json:"id"`
	Label      string                  `json:"label"`
	Properties map[string]domain.Value `json:"properties,omitempty"`
}

// Ops is the operation set available both on the store directly and inside
// a transaction scope.
type Ops interface {
	// CreateNode inserts a node. A node with the same id fails with
	// domain.ErrNodeExists.
	CreateNode(ctx context.Context, node *Node) error

	// GetNode fetches a node by id, or domain.ErrNotFound.
	GetNode(ctx context.Context, id int64) (*Node, error)

	// SetNodeProperties merges the given properties into the node's bag.
	SetNodeProperties(ctx context.Context, id int64, props map[string]domain.Value) error

	// DeleteNode removes a node and, via cascade, every edge touching it.
	// Deleting a missing node fails with domain.ErrNotFound; callers that
	// treat the record store as the source of truth tolerate it.
	DeleteNode(ctx context.Context, id int64) error

	// CreateEdge inserts a directed typed edge.
	CreateEdge(ctx context.Context, from, to int64, edgeType domain.EdgeType, props map[string]domain.Value) (*domain.Edge, error)

	// GetEdge fetches an edge by id, or domain.ErrNotFound.
	GetEdge(ctx context.Context, id int64) (*domain.Edge, error)

	// DeleteEdge removes a single edge by id.
	DeleteEdge(ctx context.Context, id int64) error

	// GetEdges returns the edges from one node to another of the given
	// type. Used as the existence check behind idempotent operations.
	GetEdges(ctx context.Context, from, to int64, edgeType domain.EdgeType) ([]domain.Edge, error)

	// OutgoingEdges returns all edges of the given type leaving a node.
	OutgoingEdges(ctx context.Context, from int64, edgeType domain.EdgeType) ([]domain.Edge, error)

	// IncomingEdges returns all edges of the given type entering a node.
	IncomingEdges(ctx context.Context, to int64, edgeType domain.EdgeType) ([]domain.Edge, error)
}

// Tx is the operation set inside a transaction scope.
type Tx interface {
	Ops
}

// Store is the graph store adapter consumed by the inventory services.
type Store interface {
	Ops

	// InTransaction runs fn inside one atomic transaction. If fn returns an
	// error the transaction rolls back and the error is returned unchanged;
	// begin and commit failures surface as domain.ErrTransactionFailure.
	InTransaction(ctx context.Context, fn func(tx Tx) error) error

	// Close releases resources.
	Close() error
}

// Meta-root nodes use reserved negative ids so they can never collide with
// record-store entity ids.
var metaRootIDs = map[domain.MetaType]int64{
	domain.MetaTypePhysical: -1,
	domain.MetaTypeLogical:  -2,
	domain.MetaTypeRelation: -3,
	domain.MetaTypeLocation: -4,
}

// MetaRootID returns the fixed node id of a meta-type category root.
func MetaRootID(m domain.MetaType) int64 {
	return metaRootIDs[m]
}

// MetaTypeForRoot resolves a meta-root node id back to its category.
func MetaTypeForRoot(id int64) (domain.MetaType, bool) {
	for m, rootID := range metaRootIDs {
		if rootID == id {
			return m, true
		}
	}
	return "", false
}
