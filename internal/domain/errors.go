package domain

import "errors"

// Core failure kinds. Callers match these with errors.Is; the stores and
// services wrap them with operation context.
var (
	// ErrNotFound indicates the entity, location, edge, or generator family
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyReserved indicates an identifier collision during
	// reservation. The counter is never advanced by a failed reservation.
	ErrAlreadyReserved = errors.New("identifier already reserved")

	// ErrUnsupportedRelationship indicates the relationship policy table has
	// no entry for a meta-type pair and edge type.
	ErrUnsupportedRelationship = errors.New("unsupported relationship")

	// ErrUnsupportedType indicates an entity type slug that is not in the
	// registered type catalog.
	ErrUnsupportedType = errors.New("unsupported entity type")

	// ErrNodeExists indicates a graph node already exists for an id.
	// Lifecycle create absorbs this; other callers treat it as a conflict.
	ErrNodeExists = errors.New("node already exists")

	// ErrTransactionFailure indicates a graph store transaction could not be
	// started or committed. The transaction is fully rolled back.
	ErrTransactionFailure = errors.New("transaction failure")
)
