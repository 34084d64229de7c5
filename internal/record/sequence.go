package record

import "sync/atomic"

// Sequence hands out monotonically increasing identifiers. It is safe for
// concurrent use; identifiers are never reused for the life of the value.
type Sequence struct {
	last atomic.Uint64
}

// NewSequence returns a sequence whose first identifier is 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns the next identifier.
func (s *Sequence) Next() uint64 {
	return s.last.Add(1)
}

// Last returns the most recently issued identifier, or 0 if none.
func (s *Sequence) Last() uint64 {
	return s.last.Load()
}
