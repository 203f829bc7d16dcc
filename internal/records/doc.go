// Package records provides the relational record store: durable entity
// records, unique-id generators, and the per-family uniqueness table.
//
// Two drivers are available. The SQLite driver is the default and
// serializes counter writers with a store-level mutex on top of the
// engine's single-writer semantics. The Postgres driver (pgx) relies on
// row locks (SELECT ... FOR UPDATE) for the same guarantee. Either way the
// counter's read-format-increment-persist sequence executes inside one
// transaction, so concurrent callers never observe the same issued value.
package records
