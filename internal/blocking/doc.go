// Package blocking indexes live clusters by the blocking key values they
// carry so candidate partners can be found without scanning every cluster.
//
// Each cluster is registered with the set of (key name, value) pairs it
// currently holds. Two clusters are candidates for each other only when they
// share at least one pair; blocking disqualifies comparisons, it never forces
// a merge. An index created without blocking keys treats every other live
// cluster as a candidate.
//
// Aggregation is additive: when one cluster absorbs another, its pair set
// becomes the union of both, so no conflict resolution is ever needed.
//
// Index is not safe for concurrent use; it is owned by a single cluster
// store.
package blocking
