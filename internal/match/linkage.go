package match

import (
	"fmt"
	"strings"
)

// Linkage selects how two clusters' members are reduced to a pair weight.
type Linkage int

const (
	BestEvidence Linkage = iota
	AllPairs
)

func (l Linkage) String() string {
	switch l {
	case BestEvidence:
		return "best_evidence"
	case AllPairs:
		return "all_pairs"
	default:
		return fmt.Sprintf("linkage(%d)", int(l))
	}
}

// ParseLinkage accepts the names produced by String. Empty input selects
// BestEvidence.
func ParseLinkage(value string) (Linkage, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "best_evidence", "best-evidence":
		return BestEvidence, nil
	case "all_pairs", "all-pairs":
		return AllPairs, nil
	default:
		return BestEvidence, fmt.Errorf("unsupported linkage %q", value)
	}
}
