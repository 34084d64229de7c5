package pipeline

import (
	"fmt"

	"entres/internal/config"
	"entres/internal/record"
	"entres/internal/source"
)

// MetadataRowKey holds the 1-based input row number in reference metadata.
const MetadataRowKey = "row"

// BuildReferences creates one reference per row. Field values come from each
// field's column; metadata carries the row number and the configured
// metadata columns that are present.
func BuildReferences(schema *record.Schema, cfg *config.Config, rows []source.Row) ([]*record.Reference, error) {
	refs := make([]*record.Reference, 0, len(rows))
	for _, row := range rows {
		values := make(map[string]any, len(cfg.Fields))
		for _, f := range cfg.Fields {
			if v, ok := row.Get(f.Column); ok {
				values[f.Name] = v
			}
		}
		meta := map[string]any{MetadataRowKey: row.Line}
		for _, col := range cfg.Input.MetadataColumns {
			if v, ok := row.Get(col); ok {
				meta[col] = v
			}
		}
		ref, err := schema.New(values, meta)
		if err != nil {
			return nil, Wrap(ErrValidation, "build", "reference", fmt.Sprintf("row %d", row.Line), err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
