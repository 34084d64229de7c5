package cluster

import (
	"errors"
	"fmt"
	"slices"

	"entres/internal/blocking"
	"entres/internal/record"
)

var (
	// ErrNotLive marks an operation on a retired or unknown cluster oid.
	ErrNotLive = errors.New("cluster is not live")
	// ErrOwnership marks a reference that already belongs to a live cluster.
	ErrOwnership = errors.New("reference already owned by a cluster")
	// ErrUnblocked marks a merge of clusters that share no blocking pair.
	ErrUnblocked = errors.New("clusters share no blocking pair")
)

// Store is the authoritative set of live clusters for one resolution scope.
// It is not safe for concurrent use.
type Store struct {
	seq   *record.Sequence
	index *blocking.Index
	live  map[uint64]*Cluster
	owner map[uint64]uint64
	refs  int
}

// NewStore creates an empty store. seq issues cluster oids and may be shared
// with other stores; blockingEnabled mirrors record.Schema.Blocking.
func NewStore(seq *record.Sequence, blockingEnabled bool) *Store {
	if seq == nil {
		seq = record.NewSequence()
	}
	return &Store{
		seq:   seq,
		index: blocking.New(blockingEnabled),
		live:  make(map[uint64]*Cluster),
		owner: make(map[uint64]uint64),
	}
}

// Create wraps r in a new singleton cluster and indexes it.
func (s *Store) Create(r *record.Reference) (*Cluster, error) {
	if r == nil {
		return nil, errors.New("create cluster: nil reference")
	}
	if holder, ok := s.owner[r.OID()]; ok {
		return nil, fmt.Errorf("%w: reference %d is in cluster %d", ErrOwnership, r.OID(), holder)
	}
	c := newCluster(s.seq.Next(), r)
	if err := s.index.Insert(c.oid, c.pairs()); err != nil {
		return nil, err
	}
	s.live[c.oid] = c
	s.owner[r.OID()] = c.oid
	s.refs++
	return c, nil
}

// Adopt takes over a cluster built by another store, keeping its oid. The
// donor store must be discarded afterwards.
func (s *Store) Adopt(c *Cluster) error {
	if c == nil {
		return errors.New("adopt cluster: nil cluster")
	}
	if _, ok := s.live[c.oid]; ok {
		return fmt.Errorf("adopt cluster %d: %w", c.oid, blocking.ErrDuplicateCluster)
	}
	for _, r := range c.refs {
		if holder, ok := s.owner[r.OID()]; ok {
			return fmt.Errorf("%w: reference %d is in cluster %d", ErrOwnership, r.OID(), holder)
		}
	}
	if err := s.index.Insert(c.oid, c.pairs()); err != nil {
		return err
	}
	s.live[c.oid] = c
	for _, r := range c.refs {
		s.owner[r.OID()] = c.oid
	}
	s.refs += len(c.refs)
	return nil
}

// Merge absorbs from into into and retires from's oid. Both must be live,
// distinct and share a blocking pair; on error nothing has changed.
func (s *Store) Merge(into, from uint64) (*Cluster, error) {
	if into == from {
		return nil, fmt.Errorf("merge cluster %d with itself: %w", into, ErrNotLive)
	}
	target, ok := s.live[into]
	if !ok {
		return nil, fmt.Errorf("merge into %d: %w", into, ErrNotLive)
	}
	source, ok := s.live[from]
	if !ok {
		return nil, fmt.Errorf("merge from %d: %w", from, ErrNotLive)
	}
	if !s.index.Shared(into, from) {
		return nil, fmt.Errorf("merge %d into %d: %w", from, into, ErrUnblocked)
	}
	if err := s.index.Absorb(into, from); err != nil {
		return nil, fmt.Errorf("merge %d into %d: %w", from, into, err)
	}
	target.absorb(source)
	for _, r := range source.refs {
		s.owner[r.OID()] = into
	}
	delete(s.live, from)
	return target, nil
}

// Get returns a live cluster.
func (s *Store) Get(id uint64) (*Cluster, bool) {
	c, ok := s.live[id]
	return c, ok
}

// Live reports whether id names a live cluster.
func (s *Store) Live(id uint64) bool {
	_, ok := s.live[id]
	return ok
}

// Candidates returns live clusters sharing a blocking pair with id, in
// ascending oid order.
func (s *Store) Candidates(id uint64) ([]uint64, error) {
	if !s.Live(id) {
		return nil, fmt.Errorf("candidates for %d: %w", id, ErrNotLive)
	}
	return s.index.Candidates(id)
}

// Owner returns the cluster that currently holds the reference.
func (s *Store) Owner(refOID uint64) (uint64, bool) {
	id, ok := s.owner[refOID]
	return id, ok
}

// Len returns the number of live clusters.
func (s *Store) Len() int { return len(s.live) }

// References returns the number of references held by live clusters.
func (s *Store) References() int { return s.refs }

// IDs returns the live cluster oids in ascending order.
func (s *Store) IDs() []uint64 {
	out := make([]uint64, 0, len(s.live))
	for id := range s.live {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Clusters returns the live clusters in ascending oid order.
func (s *Store) Clusters() []*Cluster {
	ids := s.IDs()
	out := make([]*Cluster, len(ids))
	for i, id := range ids {
		out[i] = s.live[id]
	}
	return out
}

// Snapshot maps every live oid to a copy of its ordered member list.
func (s *Store) Snapshot() map[uint64][]*record.Reference {
	out := make(map[uint64][]*record.Reference, len(s.live))
	for id, c := range s.live {
		members := make([]*record.Reference, len(c.refs))
		copy(members, c.refs)
		out[id] = members
	}
	return out
}

// Check verifies the partition invariant: every owned reference sits in
// exactly one live cluster and the index tracks exactly the live set.
func (s *Store) Check() error {
	seen := make(map[uint64]uint64, s.refs)
	for id, c := range s.live {
		if !s.index.Contains(id) {
			return fmt.Errorf("cluster %d missing from blocking index", id)
		}
		if !slices.Equal(s.index.Keys(id), c.sortedPairs()) {
			return fmt.Errorf("cluster %d blocking pairs differ from its index entry", id)
		}
		for _, r := range c.refs {
			if prev, dup := seen[r.OID()]; dup {
				return fmt.Errorf("%w: reference %d in clusters %d and %d", ErrOwnership, r.OID(), prev, id)
			}
			seen[r.OID()] = id
			if s.owner[r.OID()] != id {
				return fmt.Errorf("reference %d owner is %d, found in %d", r.OID(), s.owner[r.OID()], id)
			}
		}
	}
	if len(seen) != s.refs || len(s.owner) != s.refs {
		return fmt.Errorf("store tracks %d references, clusters hold %d", s.refs, len(seen))
	}
	if s.index.Len() != len(s.live) {
		return fmt.Errorf("blocking index holds %d clusters, store has %d", s.index.Len(), len(s.live))
	}
	return nil
}
