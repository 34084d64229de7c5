package record

import "fmt"

// Values is a read-only view of one reference's field values, in schema
// order. Missing fields hold nil.
type Values struct {
	schema *Schema
	values []any
}

// Get returns the value for name and whether it is present.
func (v Values) Get(name string) (any, bool) {
	idx, ok := v.schema.index[name]
	if !ok || v.values[idx] == nil {
		return nil, false
	}
	return v.values[idx], true
}

// String returns the value for name formatted as a string, or "" when the
// field is missing.
func (v Values) String(name string) string {
	val, ok := v.Get(name)
	if !ok {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprint(val)
}

// Len returns the number of fields in the schema.
func (v Values) Len() int {
	return len(v.values)
}

// FieldValue pairs a field name with a reference's value for it.
type FieldValue struct {
	Name  string
	Value any
}

// KeyValue is one derived blocking key value.
type KeyValue struct {
	Name  string
	Value string
}
