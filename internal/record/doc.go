// Package record describes the references that entity resolution groups.
//
// A Schema fixes the ordered set of comparable fields and the blocking keys
// for one record type. References are built through Schema.New, which checks
// field names, serializes metadata once, derives every blocking key value,
// and stamps a monotonically increasing oid from the schema's Sequence.
// References are immutable after construction.
//
// Field comparison logic is always supplied by the caller. This package only
// carries the predicate together with its true-match (m) and false-match (u)
// probabilities, and rejects probability settings that would make the
// log-likelihood weights meaningless.
package record
