package resolve

import (
	"bytes"
	"encoding/json"

	"entres/internal/cluster"
	"entres/internal/record"
)

// RecordView is the reporting form of one reference: its fields in schema
// order and, when requested, its metadata.
type RecordView struct {
	ReferenceID uint64
	Fields      []record.FieldValue
	Metadata    json.RawMessage
}

// Value returns the value of the named field.
func (v RecordView) Value(name string) (any, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f.Value, f.Value != nil
		}
	}
	return nil, false
}

// MarshalJSON encodes the view as an object whose keys follow schema order,
// with metadata last under "metadata".
func (v RecordView) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range v.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, f.Name, f.Value); err != nil {
			return nil, err
		}
	}
	if v.Metadata != nil {
		if len(v.Fields) > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, "metadata", v.Metadata); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	val, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(val)
	return nil
}

// Group is one output cluster.
type Group struct {
	ClusterID uint64
	Records   []RecordView
}

func newView(r *record.Reference, includeMetadata bool) RecordView {
	view := RecordView{ReferenceID: r.OID(), Fields: r.Fields()}
	if includeMetadata {
		view.Metadata = r.Metadata()
	}
	return view
}

func groupsOf(store *cluster.Store, includeMetadata bool) []Group {
	if store == nil {
		return nil
	}
	clusters := store.Clusters()
	out := make([]Group, 0, len(clusters))
	for _, c := range clusters {
		members := c.Members()
		records := make([]RecordView, len(members))
		for i, r := range members {
			records[i] = newView(r, includeMetadata)
		}
		out = append(out, Group{ClusterID: c.OID(), Records: records})
	}
	return out
}

func dataOf(store *cluster.Store, includeMetadata bool) map[uint64][]RecordView {
	groups := groupsOf(store, includeMetadata)
	out := make(map[uint64][]RecordView, len(groups))
	for _, g := range groups {
		out[g.ClusterID] = g.Records
	}
	return out
}
