package record

import (
	"fmt"
	"strings"
)

const (
	DefaultTrueMatchProbability  = 0.9
	DefaultFalseMatchProbability = 0.1
)

// Field is one comparable property of a record type. Match must be total
// and free of side effects for valid values of the field.
type Field interface {
	Name() string
	// Probabilities returns m = P(match | coreferent) and
	// u = P(match | not coreferent).
	Probabilities() (m, u float64)
	// Excluded reports whether the field is skipped during scoring. Such
	// fields usually exist only to feed blocking keys.
	Excluded() bool
	Match(a, b any) (bool, error)
}

// FieldOption customizes a TypedField.
type FieldOption func(*fieldSettings)

type fieldSettings struct {
	m, u    float64
	exclude bool
}

// WithProbabilities overrides the default 0.9/0.1 probabilities.
func WithProbabilities(m, u float64) FieldOption {
	return func(s *fieldSettings) {
		s.m = m
		s.u = u
	}
}

// Excluded marks the field as blocking-only.
func Excluded() FieldOption {
	return func(s *fieldSettings) {
		s.exclude = true
	}
}

// TypedField is a Field whose values are all of type T.
type TypedField[T any] struct {
	name    string
	compare func(a, b T) (bool, error)
	m, u    float64
	exclude bool
}

// NewField builds a field with a caller-supplied predicate. Probabilities
// are validated here so bad settings never reach the scorer.
func NewField[T any](name string, compare func(a, b T) bool, opts ...FieldOption) (*TypedField[T], error) {
	if compare == nil {
		return newField[T](name, nil, opts)
	}
	return newField(name, func(a, b T) (bool, error) { return compare(a, b), nil }, opts)
}

// NewCheckedField is NewField for predicates that can report a failure.
// A returned error aborts the resolve call that triggered the comparison.
func NewCheckedField[T any](name string, compare func(a, b T) (bool, error), opts ...FieldOption) (*TypedField[T], error) {
	return newField(name, compare, opts)
}

func newField[T any](name string, compare func(a, b T) (bool, error), opts []FieldOption) (*TypedField[T], error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: field name is empty", ErrInvalidSchema)
	}
	if compare == nil {
		return nil, fmt.Errorf("%w: field %q has no comparison predicate", ErrInvalidSchema, name)
	}
	settings := fieldSettings{m: DefaultTrueMatchProbability, u: DefaultFalseMatchProbability}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}
	if err := ValidateProbabilities(settings.m, settings.u); err != nil {
		return nil, fmt.Errorf("field %q: %w", name, err)
	}
	return &TypedField[T]{
		name:    name,
		compare: compare,
		m:       settings.m,
		u:       settings.u,
		exclude: settings.exclude,
	}, nil
}

// NewExactField builds a field matched by plain equality.
func NewExactField[T comparable](name string, opts ...FieldOption) (*TypedField[T], error) {
	return NewField(name, func(a, b T) bool { return a == b }, opts...)
}

// ValidateProbabilities requires 0 < u < m < 1.
func ValidateProbabilities(m, u float64) error {
	if !(m > 0 && m < 1) {
		return fmt.Errorf("%w: true match probability %v outside (0,1)", ErrInvalidProbability, m)
	}
	if !(u > 0 && u < 1) {
		return fmt.Errorf("%w: false match probability %v outside (0,1)", ErrInvalidProbability, u)
	}
	if m <= u {
		return fmt.Errorf("%w: true match probability %v must exceed false match probability %v", ErrInvalidProbability, m, u)
	}
	return nil
}

func (f *TypedField[T]) Name() string { return f.name }

func (f *TypedField[T]) Probabilities() (float64, float64) { return f.m, f.u }

func (f *TypedField[T]) Excluded() bool { return f.exclude }

// Match type-asserts both values to T before applying the predicate. A
// panicking predicate is reported as ErrPredicate.
func (f *TypedField[T]) Match(a, b any) (matched bool, err error) {
	av, ok := a.(T)
	if !ok {
		return false, fmt.Errorf("%w: field %q got %T", ErrValueType, f.name, a)
	}
	bv, ok := b.(T)
	if !ok {
		return false, fmt.Errorf("%w: field %q got %T", ErrValueType, f.name, b)
	}
	defer func() {
		if r := recover(); r != nil {
			matched = false
			err = fmt.Errorf("%w: field %q: %v", ErrPredicate, f.name, r)
		}
	}()
	matched, err = f.compare(av, bv)
	if err != nil {
		return false, fmt.Errorf("%w: field %q: %w", ErrPredicate, f.name, err)
	}
	return matched, nil
}

// check reports whether v can be stored in the field.
func (f *TypedField[T]) check(v any) error {
	if _, ok := v.(T); !ok {
		return fmt.Errorf("%w: field %q got %T", ErrValueType, f.name, v)
	}
	return nil
}

type valueChecker interface {
	check(v any) error
}
