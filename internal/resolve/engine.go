package resolve

import (
	"context"
	"fmt"
	"log/slog"

	"entres/internal/cluster"
	"entres/internal/logging"
	"entres/internal/match"
)

// side records which pool of a boundary merge a cluster came from. Clusters
// from the same pool were already resolved against each other and are not
// compared again; a merge across pools yields a mixed cluster.
type side uint8

const (
	sideMixed side = iota
	sideLeft
	sideRight
)

func (s side) join(o side) side {
	if s == o {
		return s
	}
	return sideMixed
}

func (s side) crosses(o side) bool {
	return s == sideMixed || o == sideMixed || s != o
}

// engine runs the pending/settled fixpoint over one cluster store.
type engine struct {
	store     *cluster.Store
	scorer    *match.Scorer
	selection Selection
	logger    *slog.Logger
	pending   *pendingSet
	sides     map[uint64]side
	base      side
}

func newEngine(store *cluster.Store, scorer *match.Scorer, selection Selection, logger *slog.Logger) *engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &engine{
		store:     store,
		scorer:    scorer,
		selection: selection,
		logger:    logger,
		pending:   newPendingSet(),
		sides:     make(map[uint64]side),
	}
}

// boundary switches the engine to boundary mode: clusters without a tag
// belong to the left pool. Pools left behind by an interrupted run fold into
// the left pool, except clusters still pending, which become mixed and are
// compared against every candidate.
func (e *engine) boundary() {
	for id := range e.sides {
		if !e.pending.Contains(id) {
			delete(e.sides, id)
		}
	}
	for id := range e.pending.members {
		e.sides[id] = sideMixed
	}
	e.base = sideLeft
}

func (e *engine) tag(id uint64, s side) {
	e.sides[id] = s
}

func (e *engine) sideOf(id uint64) side {
	if s, ok := e.sides[id]; ok {
		return s
	}
	return e.base
}

func (e *engine) markPending(id uint64) {
	e.pending.Add(id)
}

// run processes pending clusters lowest oid first until none remain. On
// error the current cluster stays pending.
func (e *engine) run(ctx context.Context) (Stats, error) {
	var stats Stats
	for {
		id, ok := e.pending.Peek()
		if !ok {
			break
		}
		if !e.store.Live(id) {
			e.pending.Remove(id)
			continue
		}
		merged, err := e.step(ctx, id, &stats)
		if err != nil {
			return stats, err
		}
		if !merged {
			e.pending.Remove(id)
		}
	}
	e.sides = make(map[uint64]side)
	e.base = sideMixed
	return stats, nil
}

// step compares one pending cluster against its candidates in ascending oid
// order and performs at most one merge. With SelectFirst the first positive
// candidate wins; with SelectBest every candidate is scored first.
func (e *engine) step(ctx context.Context, id uint64, stats *Stats) (bool, error) {
	c, _ := e.store.Get(id)
	candidates, err := e.store.Candidates(id)
	if err != nil {
		return false, err
	}
	from := e.sideOf(id)
	var (
		best   uint64
		weight float64
		found  bool
	)
	for _, other := range candidates {
		if !from.crosses(e.sideOf(other)) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return false, err
		}
		k, _ := e.store.Get(other)
		decision, err := e.scorer.Decide(c.Members(), k.Members())
		if err != nil {
			return false, fmt.Errorf("compare clusters %d and %d: %w", id, other, err)
		}
		stats.Comparisons++
		if !decision.Match {
			continue
		}
		if !found || decision.Weight > weight {
			best, weight, found = other, decision.Weight, true
		}
		if e.selection == SelectFirst {
			break
		}
	}
	if !found {
		return false, nil
	}
	if err := e.merge(id, best, weight); err != nil {
		return false, err
	}
	stats.Merges++
	return true, nil
}

// merge keeps the older cluster and marks it pending.
func (e *engine) merge(a, b uint64, weight float64) error {
	into, from := a, b
	if from < into {
		into, from = from, into
	}
	joined := e.sideOf(into).join(e.sideOf(from))
	survivor, err := e.store.Merge(into, from)
	if err != nil {
		return fmt.Errorf("merge clusters: %w", err)
	}
	delete(e.sides, from)
	if joined == e.base {
		delete(e.sides, into)
	} else {
		e.sides[into] = joined
	}
	e.pending.Remove(from)
	e.pending.Add(into)
	if e.logger.Enabled(context.Background(), slog.LevelDebug) {
		e.logger.Debug("clusters merged",
			logging.Uint64(logging.FieldClusterID, into),
			logging.Uint64("retired_cluster_id", from),
			logging.Float64("weight", weight),
			logging.Int("cluster_size", survivor.Len()),
		)
	}
	return nil
}
