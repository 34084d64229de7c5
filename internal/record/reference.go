package record

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Reference is one immutable input record. Identity is its oid; two
// references with identical content are still distinct.
type Reference struct {
	oid      uint64
	schema   *Schema
	values   []any
	keys     []KeyValue
	metadata json.RawMessage
}

func (r *Reference) OID() uint64 { return r.oid }

func (r *Reference) Schema() *Schema { return r.schema }

// Value returns the value of the named field and whether it is present.
func (r *Reference) Value(name string) (any, bool) {
	return r.Values().Get(name)
}

// ValueAt returns the value of the i-th schema field, nil when missing.
func (r *Reference) ValueAt(i int) any {
	return r.values[i]
}

// Values returns a read-only view over the field values.
func (r *Reference) Values() Values {
	return Values{schema: r.schema, values: r.values}
}

// Fields returns every field name with its value in schema order. Missing
// fields are reported with a nil value.
func (r *Reference) Fields() []FieldValue {
	out := make([]FieldValue, len(r.schema.fields))
	for i, f := range r.schema.fields {
		out[i] = FieldValue{Name: f.Name(), Value: r.values[i]}
	}
	return out
}

// BlockingValues returns the derived key values in schema key order. Keys
// whose derive function produced no value are absent.
func (r *Reference) BlockingValues() []KeyValue {
	out := make([]KeyValue, len(r.keys))
	copy(out, r.keys)
	return out
}

// Metadata returns the JSON encoding of the metadata supplied at
// construction, or nil.
func (r *Reference) Metadata() json.RawMessage {
	if r.metadata == nil {
		return nil
	}
	out := make(json.RawMessage, len(r.metadata))
	copy(out, r.metadata)
	return out
}

func (r *Reference) String() string {
	parts := make([]string, 0, len(r.values))
	for i, f := range r.schema.fields {
		if r.values[i] == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", f.Name(), r.values[i]))
	}
	return fmt.Sprintf("<%s#%d %s>", r.schema.name, r.oid, strings.Join(parts, " "))
}
