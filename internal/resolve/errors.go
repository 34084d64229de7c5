package resolve

import (
	"errors"

	"entres/internal/match"
)

var (
	// ErrSchemaMismatch is returned by Add for references built from a schema
	// other than the resolver's.
	ErrSchemaMismatch = match.ErrSchemaMismatch
	// ErrDuplicateReference is returned by Add for a reference the resolver
	// already holds.
	ErrDuplicateReference = errors.New("reference already added")
)
