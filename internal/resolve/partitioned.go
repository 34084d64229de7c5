package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"entres/internal/cluster"
	"entres/internal/logging"
	"entres/internal/match"
	"entres/internal/record"
)

// Partitioned resolves references by recursive halving and boundary merges.
// Queued references become visible in ClusterData once Resolve has run.
type Partitioned struct {
	scorer    *match.Scorer
	selection Selection
	seq       *record.Sequence
	size      int
	sem       *semaphore.Weighted
	logger    *slog.Logger

	queued []*record.Reference
	store  *cluster.Store
	engine *engine
	stats  Stats
}

// NewPartitioned returns an empty resolver for the scorer's schema.
func NewPartitioned(scorer *match.Scorer, opts ...Option) (*Partitioned, error) {
	if scorer == nil {
		return nil, errors.New("partitioned resolver: nil scorer")
	}
	o := buildOptions(opts)
	logger := o.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Partitioned{
		scorer:    scorer,
		selection: o.selection,
		seq:       o.seq,
		size:      o.partitionSize,
		sem:       semaphore.NewWeighted(int64(o.workers)),
		logger:    logging.NewComponentLogger(logger, "resolver"),
	}, nil
}

// Add queues references for the next Resolve. Either every reference is
// queued or none is.
func (p *Partitioned) Add(refs ...*record.Reference) error {
	queued := make(map[uint64]struct{}, len(p.queued))
	for _, r := range p.queued {
		queued[r.OID()] = struct{}{}
	}
	held := func(oid uint64) bool {
		if _, ok := queued[oid]; ok {
			return true
		}
		if p.store == nil {
			return false
		}
		_, ok := p.store.Owner(oid)
		return ok
	}
	if err := validateBatch(p.scorer.Schema(), refs, held); err != nil {
		return err
	}
	p.queued = append(p.queued, refs...)
	return nil
}

// Resolve resolves the queued references as one batch and boundary-merges
// the batch into the clusters of earlier runs.
func (p *Partitioned) Resolve(ctx context.Context) error {
	start := time.Now()
	logger := logging.WithContext(ctx, p.logger)
	var stats Stats
	err := p.resolve(ctx, &stats)
	if p.store != nil {
		stats.References = p.store.References()
		stats.Clusters = p.store.Len()
		stats.Pending = p.engine.pending.Len()
	}
	stats.Elapsed = time.Since(start)
	p.stats = stats
	logRun(logger, modePartitioned, stats, err)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}
	return nil
}

func (p *Partitioned) resolve(ctx context.Context, stats *Stats) error {
	if len(p.queued) > 0 {
		batch, batchStats, err := p.partition(ctx, p.queued)
		stats.add(batchStats)
		if err != nil {
			return err
		}
		if p.store == nil {
			p.store = batch
			p.engine = newEngine(batch, p.scorer, p.selection, p.logger)
		} else if err := p.join(p.engine, batch); err != nil {
			return err
		}
		p.queued = nil
	}
	if p.engine == nil {
		return nil
	}
	run, err := p.engine.run(ctx)
	stats.add(run)
	return err
}

// partition resolves refs completely in a fresh store.
func (p *Partitioned) partition(ctx context.Context, refs []*record.Reference) (*cluster.Store, Stats, error) {
	if len(refs) <= p.size {
		return p.leaf(ctx, refs)
	}
	mid := len(refs) / 2

	var (
		left, right           *cluster.Store
		leftStats, rightStats Stats
	)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	resolveLeft := func() error {
		var err error
		left, leftStats, err = p.partition(gctx, refs[:mid])
		return err
	}
	if p.sem.TryAcquire(1) {
		g.Go(func() error {
			defer p.sem.Release(1)
			return resolveLeft()
		})
	} else if err := resolveLeft(); err != nil {
		return nil, leftStats, err
	}
	var err error
	right, rightStats, err = p.partition(gctx, refs[mid:])
	if err != nil {
		cancel()
	}
	if waitErr := g.Wait(); waitErr != nil && (err == nil || errors.Is(err, context.Canceled)) {
		err = waitErr
	}
	var stats Stats
	stats.add(leftStats)
	stats.add(rightStats)
	if err != nil {
		return nil, stats, err
	}

	store := cluster.NewStore(p.seq, p.scorer.Schema().Blocking())
	eng := newEngine(store, p.scorer, p.selection, p.logger)
	for _, c := range left.Clusters() {
		if err := store.Adopt(c); err != nil {
			return nil, stats, fmt.Errorf("boundary merge: %w", err)
		}
	}
	if err := p.join(eng, right); err != nil {
		return nil, stats, err
	}
	run, err := eng.run(ctx)
	stats.add(run)
	if err != nil {
		return nil, stats, fmt.Errorf("boundary merge: %w", err)
	}
	return store, stats, nil
}

func (p *Partitioned) leaf(ctx context.Context, refs []*record.Reference) (*cluster.Store, Stats, error) {
	store := cluster.NewStore(p.seq, p.scorer.Schema().Blocking())
	eng := newEngine(store, p.scorer, p.selection, p.logger)
	for _, r := range refs {
		c, err := store.Create(r)
		if err != nil {
			return nil, Stats{}, err
		}
		eng.markPending(c.OID())
	}
	stats, err := eng.run(ctx)
	stats.Partitions = 1
	return store, stats, err
}

// join adopts the clusters of a resolved batch into the engine's store as
// the right pool of a boundary merge. The engine's existing clusters form
// the left pool.
func (p *Partitioned) join(eng *engine, batch *cluster.Store) error {
	eng.boundary()
	for _, c := range batch.Clusters() {
		if err := eng.store.Adopt(c); err != nil {
			return fmt.Errorf("boundary merge: %w", err)
		}
		eng.tag(c.OID(), sideRight)
		eng.markPending(c.OID())
	}
	return nil
}

// ClusterData maps each resolved cluster oid to its member views.
func (p *Partitioned) ClusterData(includeMetadata bool) map[uint64][]RecordView {
	return dataOf(p.store, includeMetadata)
}

// Clusters returns the resolved clusters ordered by oid.
func (p *Partitioned) Clusters(includeMetadata bool) []Group {
	return groupsOf(p.store, includeMetadata)
}

// Stats reports the most recent Resolve call.
func (p *Partitioned) Stats() Stats { return p.stats }

// Queued returns the number of references waiting for the next Resolve.
func (p *Partitioned) Queued() int { return len(p.queued) }
