// Package resolve drives entity resolution to a fixpoint.
//
// Two resolvers share one contract (Add, Resolve, ClusterData):
//
//   - Incremental keeps a single cluster store and repeatedly compares each
//     pending cluster against its blocking candidates, merging on the first
//     positive decision, until every cluster is settled. References added
//     after a run join as pending singletons and are resolved on the next call.
//   - Partitioned splits queued references into halves down to a leaf size,
//     resolves the halves independently (concurrently when a worker slot is
//     free) and joins them with a boundary merge that only compares clusters
//     from opposite halves.
//
// Both resolvers are single-owner: callers serialize calls on one instance.
// Resolve checks the context between comparisons; a cancelled or failed run
// leaves every completed merge in place and the remaining clusters pending,
// so a later Resolve continues where it stopped.
package resolve
