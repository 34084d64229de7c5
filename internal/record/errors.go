package record

import "errors"

var (
	ErrInvalidProbability = errors.New("invalid match probability")
	ErrDuplicateName      = errors.New("duplicate name")
	ErrUnknownField       = errors.New("unknown field")
	ErrValueType          = errors.New("field value type mismatch")
	ErrPredicate          = errors.New("comparison predicate failed")
	ErrMetadata           = errors.New("metadata is not JSON serializable")
	ErrInvalidSchema      = errors.New("invalid schema")
)
