// Package cluster owns the working set of clusters during resolution.
//
// A Store wraps each new reference in a singleton Cluster, keeps the
// blocking index in step with every membership change, and executes merges.
// Cluster identity is its oid alone: ordering, equality and map membership
// all key off that integer, never off member content. Oids come from a
// record.Sequence shared by every store of one resolver, so clusters can move
// between store scopes without colliding.
//
// A merge either completes fully (membership, aggregated blocking map,
// index) or changes nothing. Retired oids are never returned again.
package cluster
