// Package graph provides the graph store adapter: typed nodes, directed
// property-bearing edges, and a scoped transaction boundary.
//
// The adapter exposes node and edge CRUD plus existence checks. Every
// mutating inventory operation runs inside InTransaction so that either all
// edge and property changes commit together or none do; partial application
// is never observable outside the transaction.
//
// Four fixed meta-root nodes (one per meta-type category) are created at
// migration time with reserved negative ids. Contains edges from a
// meta-root declare an entity's category membership.
package graph
