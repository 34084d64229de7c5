package blocking

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrUnknownCluster   = errors.New("cluster is not indexed")
	ErrDuplicateCluster = errors.New("cluster is already indexed")
)

// Key is one (key name, value) pair.
type Key struct {
	Name  string
	Value string
}

func (k Key) String() string {
	return k.Name + "=" + k.Value
}

// Index maps blocking pairs to the clusters carrying them.
type Index struct {
	enabled  bool
	postings map[Key]map[uint64]struct{}
	clusters map[uint64]map[Key]struct{}
}

// New returns an empty index. When enabled is false, blocking is off and
// Candidates returns every other registered cluster.
func New(enabled bool) *Index {
	return &Index{
		enabled:  enabled,
		postings: make(map[Key]map[uint64]struct{}),
		clusters: make(map[uint64]map[Key]struct{}),
	}
}

// Enabled reports whether blocking prunes candidates.
func (ix *Index) Enabled() bool { return ix.enabled }

// Len returns the number of registered clusters.
func (ix *Index) Len() int { return len(ix.clusters) }

// Contains reports whether id is registered.
func (ix *Index) Contains(id uint64) bool {
	_, ok := ix.clusters[id]
	return ok
}

// Insert registers a new cluster with its pairs.
func (ix *Index) Insert(id uint64, keys []Key) error {
	if _, ok := ix.clusters[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateCluster, id)
	}
	set := make(map[Key]struct{}, len(keys))
	ix.clusters[id] = set
	for _, k := range keys {
		ix.add(id, set, k)
	}
	return nil
}

// Absorb moves every pair of retired onto survivor and drops retired from
// the index. The survivor's pair set becomes the union of both.
func (ix *Index) Absorb(survivor, retired uint64) error {
	if survivor == retired {
		return fmt.Errorf("%w: cluster %d cannot absorb itself", ErrDuplicateCluster, survivor)
	}
	target, ok := ix.clusters[survivor]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownCluster, survivor)
	}
	source, ok := ix.clusters[retired]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownCluster, retired)
	}
	for k := range source {
		ix.unpost(retired, k)
		ix.add(survivor, target, k)
	}
	delete(ix.clusters, retired)
	return nil
}

// Keys returns the pairs registered for id, sorted by name then value.
func (ix *Index) Keys(id uint64) []Key {
	set := ix.clusters[id]
	out := make([]Key, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.SortFunc(out, compareKeys)
	return out
}

// Candidates returns, in ascending order, the registered clusters sharing at
// least one pair with id. id itself is never included.
func (ix *Index) Candidates(id uint64) ([]uint64, error) {
	set, ok := ix.clusters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCluster, id)
	}
	var out []uint64
	if !ix.enabled {
		out = make([]uint64, 0, len(ix.clusters))
		for other := range ix.clusters {
			if other != id {
				out = append(out, other)
			}
		}
		slices.Sort(out)
		return out, nil
	}

	seen := make(map[uint64]struct{})
	for k := range set {
		for other := range ix.postings[k] {
			if other == id {
				continue
			}
			if _, dup := seen[other]; dup {
				continue
			}
			seen[other] = struct{}{}
			out = append(out, other)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Shared reports whether a and b have at least one pair in common. With
// blocking disabled every registered pair shares a block.
func (ix *Index) Shared(a, b uint64) bool {
	sa, okA := ix.clusters[a]
	sb, okB := ix.clusters[b]
	if !okA || !okB {
		return false
	}
	if !ix.enabled {
		return true
	}
	if len(sb) < len(sa) {
		sa, sb = sb, sa
	}
	for k := range sa {
		if _, ok := sb[k]; ok {
			return true
		}
	}
	return false
}

func (ix *Index) add(id uint64, set map[Key]struct{}, k Key) {
	set[k] = struct{}{}
	posting, ok := ix.postings[k]
	if !ok {
		posting = make(map[uint64]struct{})
		ix.postings[k] = posting
	}
	posting[id] = struct{}{}
}

func (ix *Index) unpost(id uint64, k Key) {
	posting := ix.postings[k]
	delete(posting, id)
	if len(posting) == 0 {
		delete(ix.postings, k)
	}
}

func compareKeys(a, b Key) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.Value, b.Value)
}
