// Package service implements the inventory business logic on top of the
// graph and record stores.
//
// The Inventory service keeps every entity's structural placement
// single-valued and type-safe: meta-type classification and promotion,
// placement with replace-on-move semantics, idempotent physical
// connections, lifecycle coordination between entity records and graph
// nodes (including cascading deletion), unique-identifier issuance and
// reservation, and bulk link import.
//
// Every mutating operation runs its graph changes inside one transaction
// scope and publishes an event on the bus when it commits.
package service
