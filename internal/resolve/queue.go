package resolve

import "container/heap"

// oidHeap is a min-heap of cluster oids.
type oidHeap []uint64

func (h oidHeap) Len() int           { return len(h) }
func (h oidHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h oidHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *oidHeap) Push(x any) { *h = append(*h, x.(uint64)) }

func (h *oidHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// pendingSet yields pending oids lowest first. Removal is lazy: stale heap
// entries are skipped by Peek.
type pendingSet struct {
	heap    oidHeap
	members map[uint64]struct{}
}

func newPendingSet() *pendingSet {
	return &pendingSet{members: make(map[uint64]struct{})}
}

func (p *pendingSet) Add(id uint64) {
	if _, ok := p.members[id]; ok {
		return
	}
	p.members[id] = struct{}{}
	heap.Push(&p.heap, id)
}

func (p *pendingSet) Remove(id uint64) {
	delete(p.members, id)
}

func (p *pendingSet) Contains(id uint64) bool {
	_, ok := p.members[id]
	return ok
}

func (p *pendingSet) Len() int { return len(p.members) }

// Peek returns the lowest pending oid without removing it.
func (p *pendingSet) Peek() (uint64, bool) {
	for p.heap.Len() > 0 {
		id := p.heap[0]
		if _, ok := p.members[id]; ok {
			return id, true
		}
		heap.Pop(&p.heap)
	}
	return 0, false
}
