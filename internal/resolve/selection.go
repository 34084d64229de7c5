package resolve

import (
	"fmt"
	"strings"
)

// Selection picks which positive candidate a pending cluster merges with.
type Selection int

const (
	// SelectFirst merges with the lowest-oid candidate above the threshold.
	SelectFirst Selection = iota
	// SelectBest scores every candidate and merges with the highest weight.
	// Ties go to the lower oid.
	SelectBest
)

func (s Selection) String() string {
	switch s {
	case SelectFirst:
		return "first"
	case SelectBest:
		return "best"
	default:
		return fmt.Sprintf("selection(%d)", int(s))
	}
}

// ParseSelection accepts the names produced by String. Empty input selects
// SelectFirst.
func ParseSelection(value string) (Selection, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "first":
		return SelectFirst, nil
	case "best":
		return SelectBest, nil
	default:
		return SelectFirst, fmt.Errorf("unsupported selection %q", value)
	}
}
