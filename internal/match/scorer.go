package match

import (
	"errors"
	"fmt"
	"math"

	"entres/internal/record"
)

var (
	ErrSchemaMismatch = errors.New("reference schema does not match scorer schema")
	ErrThreshold      = errors.New("invalid decision threshold")
)

// Decision is the outcome of scoring one candidate pair.
type Decision struct {
	Weight float64
	Match  bool
}

// Adjustment is the Fellegi-Sunter contribution of one field comparison.
func Adjustment(matched bool, m, u float64) float64 {
	if matched {
		return math.Log(m / u)
	}
	return math.Log((1 - m) / (1 - u))
}

type scoredField struct {
	index    int
	field    record.Field
	agree    float64
	disagree float64
}

// Scorer computes pair weights for one schema.
type Scorer struct {
	schema    *record.Schema
	fields    []scoredField
	threshold float64
	linkage   Linkage
}

// Option customizes a Scorer.
type Option func(*Scorer)

// WithLinkage selects the member aggregation policy.
func WithLinkage(l Linkage) Option {
	return func(s *Scorer) {
		s.linkage = l
	}
}

// NewScorer prepares the per-field adjustments for schema. A pair merges
// when its weight is at least threshold; there is no universal default.
func NewScorer(schema *record.Schema, threshold float64, opts ...Option) (*Scorer, error) {
	if schema == nil {
		return nil, errors.New("scorer requires a schema")
	}
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, fmt.Errorf("%w: %v", ErrThreshold, threshold)
	}
	s := &Scorer{schema: schema, threshold: threshold, linkage: BestEvidence}
	for i, f := range schema.Fields() {
		if f.Excluded() {
			continue
		}
		m, u := f.Probabilities()
		s.fields = append(s.fields, scoredField{
			index:    i,
			field:    f,
			agree:    Adjustment(true, m, u),
			disagree: Adjustment(false, m, u),
		})
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.linkage != BestEvidence && s.linkage != AllPairs {
		return nil, fmt.Errorf("unsupported linkage %s", s.linkage)
	}
	return s, nil
}

func (s *Scorer) Schema() *record.Schema { return s.schema }

func (s *Scorer) Threshold() float64 { return s.threshold }

func (s *Scorer) Linkage() Linkage { return s.linkage }

// Decide scores the pair and applies the threshold.
func (s *Scorer) Decide(a, b []*record.Reference) (Decision, error) {
	w, err := s.Weight(a, b)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Weight: w, Match: w >= s.threshold}, nil
}

// Weight returns the summed log-likelihood ratio for two member lists.
func (s *Scorer) Weight(a, b []*record.Reference) (float64, error) {
	if err := s.checkSchema(a); err != nil {
		return 0, err
	}
	if err := s.checkSchema(b); err != nil {
		return 0, err
	}
	if s.linkage == AllPairs {
		return s.allPairs(a, b)
	}
	return s.bestEvidence(a, b)
}

func (s *Scorer) bestEvidence(a, b []*record.Reference) (float64, error) {
	var total float64
	for _, sf := range s.fields {
		compared, matched, err := s.anyMatch(sf, a, b)
		if err != nil {
			return 0, err
		}
		switch {
		case !compared:
		case matched:
			total += sf.agree
		default:
			total += sf.disagree
		}
	}
	return total, nil
}

// anyMatch stops at the first matching member pair since a match always
// contributes more than a non-match when m > u.
func (s *Scorer) anyMatch(sf scoredField, a, b []*record.Reference) (compared, matched bool, err error) {
	for _, ra := range a {
		va := ra.ValueAt(sf.index)
		if va == nil {
			continue
		}
		for _, rb := range b {
			vb := rb.ValueAt(sf.index)
			if vb == nil {
				continue
			}
			compared = true
			ok, err := sf.field.Match(va, vb)
			if err != nil {
				return compared, false, err
			}
			if ok {
				return true, true, nil
			}
		}
	}
	return compared, false, nil
}

func (s *Scorer) allPairs(a, b []*record.Reference) (float64, error) {
	var total float64
	for _, ra := range a {
		for _, rb := range b {
			w, err := s.pair(ra, rb)
			if err != nil {
				return 0, err
			}
			total += w
		}
	}
	return total, nil
}

func (s *Scorer) pair(ra, rb *record.Reference) (float64, error) {
	var total float64
	for _, sf := range s.fields {
		va, vb := ra.ValueAt(sf.index), rb.ValueAt(sf.index)
		if va == nil || vb == nil {
			continue
		}
		ok, err := sf.field.Match(va, vb)
		if err != nil {
			return 0, err
		}
		if ok {
			total += sf.agree
		} else {
			total += sf.disagree
		}
	}
	return total, nil
}

func (s *Scorer) checkSchema(refs []*record.Reference) error {
	for _, r := range refs {
		if r.Schema() != s.schema {
			return fmt.Errorf("%w: reference %d belongs to %q, scorer uses %q", ErrSchemaMismatch, r.OID(), r.Schema().Name(), s.schema.Name())
		}
	}
	return nil
}
