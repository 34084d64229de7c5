package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entres/internal/cluster"
	"entres/internal/logging"
	"entres/internal/match"
	"entres/internal/record"
)

// Incremental resolves references in one cluster store.
type Incremental struct {
	scorer *match.Scorer
	store  *cluster.Store
	engine *engine
	logger *slog.Logger
	stats  Stats
}

// NewIncremental returns an empty resolver for the scorer's schema.
func NewIncremental(scorer *match.Scorer, opts ...Option) (*Incremental, error) {
	if scorer == nil {
		return nil, errors.New("incremental resolver: nil scorer")
	}
	o := buildOptions(opts)
	logger := o.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "resolver")
	store := cluster.NewStore(o.seq, scorer.Schema().Blocking())
	return &Incremental{
		scorer: scorer,
		store:  store,
		engine: newEngine(store, scorer, o.selection, logger),
		logger: logger,
	}, nil
}

// Add wraps each reference in a pending singleton cluster. Either every
// reference is added or none is.
func (r *Incremental) Add(refs ...*record.Reference) error {
	held := func(oid uint64) bool {
		_, ok := r.store.Owner(oid)
		return ok
	}
	if err := validateBatch(r.scorer.Schema(), refs, held); err != nil {
		return err
	}
	for _, ref := range refs {
		c, err := r.store.Create(ref)
		if err != nil {
			return fmt.Errorf("add %s: %w", ref, err)
		}
		r.engine.markPending(c.OID())
	}
	return nil
}

// Resolve runs until no cluster is pending. A second call without an
// intervening Add does no work.
func (r *Incremental) Resolve(ctx context.Context) error {
	start := time.Now()
	logger := logging.WithContext(ctx, r.logger)
	stats, err := r.engine.run(ctx)
	stats.References = r.store.References()
	stats.Clusters = r.store.Len()
	stats.Pending = r.engine.pending.Len()
	stats.Elapsed = time.Since(start)
	r.stats = stats
	logRun(logger, modeIncremental, stats, err)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}
	return nil
}

// ClusterData maps each live cluster oid to its member views.
func (r *Incremental) ClusterData(includeMetadata bool) map[uint64][]RecordView {
	return dataOf(r.store, includeMetadata)
}

// Clusters returns the live clusters ordered by oid.
func (r *Incremental) Clusters(includeMetadata bool) []Group {
	return groupsOf(r.store, includeMetadata)
}

// Stats reports the most recent Resolve call.
func (r *Incremental) Stats() Stats { return r.stats }

// Pending returns the number of clusters awaiting comparison.
func (r *Incremental) Pending() int { return r.engine.pending.Len() }
