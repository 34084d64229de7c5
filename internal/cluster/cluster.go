package cluster

import (
	"fmt"
	"slices"
	"strings"

	"entres/internal/blocking"
	"entres/internal/record"
)

// Cluster is a group of references believed to denote one entity.
type Cluster struct {
	oid  uint64
	refs []*record.Reference
	keys map[string]map[string]struct{}
}

func newCluster(oid uint64, r *record.Reference) *Cluster {
	c := &Cluster{
		oid:  oid,
		refs: []*record.Reference{r},
		keys: make(map[string]map[string]struct{}),
	}
	for _, kv := range r.BlockingValues() {
		c.addKey(kv.Name, kv.Value)
	}
	return c
}

func (c *Cluster) OID() uint64 { return c.oid }

// Len returns the number of member references.
func (c *Cluster) Len() int { return len(c.refs) }

// Members returns the member references, oldest cluster's members first.
// The slice must not be modified.
func (c *Cluster) Members() []*record.Reference { return c.refs }

// BlockingMap returns each key name with its sorted set of observed values.
func (c *Cluster) BlockingMap() map[string][]string {
	out := make(map[string][]string, len(c.keys))
	for name, values := range c.keys {
		list := make([]string, 0, len(values))
		for v := range values {
			list = append(list, v)
		}
		slices.Sort(list)
		out[name] = list
	}
	return out
}

func (c *Cluster) String() string {
	return fmt.Sprintf("<Cluster id=%d refcount=%d>", c.oid, len(c.refs))
}

func (c *Cluster) pairs() []blocking.Key {
	var out []blocking.Key
	for name, values := range c.keys {
		for v := range values {
			out = append(out, blocking.Key{Name: name, Value: v})
		}
	}
	return out
}

func (c *Cluster) sortedPairs() []blocking.Key {
	out := c.pairs()
	slices.SortFunc(out, func(a, b blocking.Key) int {
		if a.Name != b.Name {
			return strings.Compare(a.Name, b.Name)
		}
		return strings.Compare(a.Value, b.Value)
	})
	return out
}

func (c *Cluster) addKey(name, value string) {
	set, ok := c.keys[name]
	if !ok {
		set = make(map[string]struct{})
		c.keys[name] = set
	}
	set[value] = struct{}{}
}

// absorb appends other's members and unions its blocking map.
func (c *Cluster) absorb(other *Cluster) {
	c.refs = append(c.refs, other.refs...)
	for name, values := range other.keys {
		for v := range values {
			c.addKey(name, v)
		}
	}
}
