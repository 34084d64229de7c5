package record

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BlockingKey derives one value from a reference's fields. Derive must be
// pure; returning false means the reference carries no value for the key.
type BlockingKey struct {
	Name   string
	Derive func(Values) (string, bool)
}

// Schema is the fixed description of one record type.
type Schema struct {
	name   string
	fields []Field
	index  map[string]int
	keys   []BlockingKey
	seq    *Sequence
}

// SchemaOption customizes a Schema.
type SchemaOption func(*Schema)

// WithSequence makes the schema draw reference oids from seq, so several
// schemas (or tests) can share one id space.
func WithSequence(seq *Sequence) SchemaOption {
	return func(s *Schema) {
		if seq != nil {
			s.seq = seq
		}
	}
}

// NewSchema validates field and key names and returns the schema. Field
// order is preserved and defines the order of record views.
func NewSchema(name string, fields []Field, keys []BlockingKey, opts ...SchemaOption) (*Schema, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: schema name is empty", ErrInvalidSchema)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: schema %q has no fields", ErrInvalidSchema, name)
	}

	s := &Schema{
		name:   name,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
		keys:   make([]BlockingKey, 0, len(keys)),
		seq:    NewSequence(),
	}
	for _, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("%w: schema %q has a nil field", ErrInvalidSchema, name)
		}
		if _, dup := s.index[f.Name()]; dup {
			return nil, fmt.Errorf("%w: field %q in schema %q", ErrDuplicateName, f.Name(), name)
		}
		m, u := f.Probabilities()
		if err := ValidateProbabilities(m, u); err != nil {
			return nil, fmt.Errorf("schema %q field %q: %w", name, f.Name(), err)
		}
		s.index[f.Name()] = len(s.fields)
		s.fields = append(s.fields, f)
	}

	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		k.Name = strings.TrimSpace(k.Name)
		if k.Name == "" || k.Derive == nil {
			return nil, fmt.Errorf("%w: schema %q has a blocking key without name or derive function", ErrInvalidSchema, name)
		}
		if _, dup := seen[k.Name]; dup {
			return nil, fmt.Errorf("%w: blocking key %q in schema %q", ErrDuplicateName, k.Name, name)
		}
		seen[k.Name] = struct{}{}
		s.keys = append(s.keys, k)
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *Schema) Name() string { return s.name }

// Fields returns the schema fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	idx, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[idx], true
}

// BlockingKeys returns the key definitions in declaration order.
func (s *Schema) BlockingKeys() []BlockingKey {
	out := make([]BlockingKey, len(s.keys))
	copy(out, s.keys)
	return out
}

// Blocking reports whether the schema declares any blocking key. Without
// keys every cluster is a candidate for every other one.
func (s *Schema) Blocking() bool {
	return len(s.keys) > 0
}

// New builds a reference from field values and optional metadata. Values
// for unknown fields, values of the wrong type, and metadata that cannot be
// encoded as JSON are rejected. A nil value marks the field as missing.
func (s *Schema) New(values map[string]any, metadata any) (*Reference, error) {
	row := make([]any, len(s.fields))
	for name, v := range values {
		idx, ok := s.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q is not part of schema %q", ErrUnknownField, name, s.name)
		}
		if v == nil {
			continue
		}
		if checker, ok := s.fields[idx].(valueChecker); ok {
			if err := checker.check(v); err != nil {
				return nil, err
			}
		}
		row[idx] = v
	}

	var meta json.RawMessage
	if metadata != nil {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMetadata, err)
		}
		meta = encoded
	}

	view := Values{schema: s, values: row}
	keys := make([]KeyValue, 0, len(s.keys))
	for _, k := range s.keys {
		value, ok := k.Derive(view)
		if !ok {
			continue
		}
		keys = append(keys, KeyValue{Name: k.Name, Value: value})
	}

	return &Reference{
		oid:      s.seq.Next(),
		schema:   s,
		values:   row,
		keys:     keys,
		metadata: meta,
	}, nil
}
