package source

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"entres/internal/config"
)

// ErrMissingColumn is returned when the input lacks a requested column.
var ErrMissingColumn = errors.New("column not found in input")

// Row is one input row. Values holds only non-empty cells.
type Row struct {
	// Line is the 1-based position of the row among data rows.
	Line   int
	Values map[string]string
}

// Get returns the cell for column and whether it is present.
func (r Row) Get(column string) (string, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// Load reads every row of the configured input, keeping only columns.
func Load(ctx context.Context, in config.Input, columns []string) ([]Row, error) {
	format := in.Format
	if format == "" {
		format = config.FormatFromPath(in.Path)
	}
	switch format {
	case config.FormatSQLite:
		return ReadSQLite(ctx, in.Path, in.Query, columns)
	case config.FormatCSV, "":
		return ReadCSVFile(ctx, in.Path, columns)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
}

// Probe checks that the configured input exists and provides every column
// without loading its rows. Standard input cannot be probed.
func Probe(ctx context.Context, in config.Input, columns []string) error {
	format := in.Format
	if format == "" {
		format = config.FormatFromPath(in.Path)
	}
	switch format {
	case config.FormatSQLite:
		return ProbeSQLite(ctx, in.Path, in.Query, columns)
	case config.FormatCSV, "":
		if in.Path == "-" {
			return nil
		}
		return ProbeCSVFile(in.Path, columns)
	default:
		return fmt.Errorf("unsupported input format %q", format)
	}
}

// indexColumns maps each requested column to its position in header.
func indexColumns(header, columns []string) ([]int, error) {
	idx := make([]int, len(columns))
	for i, col := range columns {
		pos := slices.Index(header, col)
		if pos < 0 {
			return nil, fmt.Errorf("%w: %q (have %v)", ErrMissingColumn, col, header)
		}
		idx[i] = pos
	}
	return idx, nil
}
