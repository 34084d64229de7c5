package resolve

import (
	"context"
	"errors"
	"fmt"

	"entres/internal/record"
)

const (
	modeIncremental = "incremental"
	modePartitioned = "partitioned"
)

// Resolver is the surface shared by Incremental and Partitioned.
type Resolver interface {
	Add(refs ...*record.Reference) error
	Resolve(ctx context.Context) error
	ClusterData(includeMetadata bool) map[uint64][]RecordView
	Clusters(includeMetadata bool) []Group
	Stats() Stats
}

var (
	_ Resolver = (*Incremental)(nil)
	_ Resolver = (*Partitioned)(nil)
)

// validateBatch rejects the whole batch before anything is mutated.
func validateBatch(schema *record.Schema, refs []*record.Reference, held func(uint64) bool) error {
	seen := make(map[uint64]struct{}, len(refs))
	for i, r := range refs {
		if r == nil {
			return fmt.Errorf("add reference %d: %w", i, errors.New("nil reference"))
		}
		if r.Schema() != schema {
			return fmt.Errorf("add %s: %w: resolver expects schema %q", r, ErrSchemaMismatch, schema.Name())
		}
		if _, dup := seen[r.OID()]; dup || held(r.OID()) {
			return fmt.Errorf("add %s: %w", r, ErrDuplicateReference)
		}
		seen[r.OID()] = struct{}{}
	}
	return nil
}
