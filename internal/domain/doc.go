// Package domain defines the core domain types for the Patchbay network
// inventory system.
//
// This package contains the entities and value objects that represent
// inventory concepts: entity records, meta-types, graph edges, node
// properties, the relationship policy table, and unique-id generators.
//
// # Entity Records
//
// EntityRecord is the durable identity row for an inventory entity. Each
// record maps one-to-one to a graph node keyed by the record id; the node
// carries the mutable property bag while the record owns identity, declared
// type, and audit metadata.
//
// # Meta-Types
//
// Every entity belongs to exactly one of four broad categories: physical,
// logical, relation, or location. The meta-type determines which placement
// and connection rules apply, encoded in the relationship policy table.
//
// # Edges
//
// EdgeType enumerates the structural relationships between graph nodes.
// Contains, Has, and Located_in are single-valued per entity; Connected_to
// is unconstrained in multiplicity but idempotent per pair.
//
// # Unique Identifiers
//
// Generator holds a per-family counter with formatting rules (prefix,
// zero-fill, suffix). UniqueID rows record issued or reserved values in the
// family uniqueness table.
//
// # Design Principles
//
// - No database or external dependencies
// - Pure domain logic without infrastructure concerns
// - Closed enumerations with explicit errors for unregistered values
package domain
