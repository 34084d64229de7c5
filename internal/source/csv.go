package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadCSVFile reads rows from a CSV file; "-" reads standard input.
func ReadCSVFile(ctx context.Context, path string, columns []string) ([]Row, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("csv input: no path configured")
	}
	if path == "-" {
		return ReadCSV(ctx, os.Stdin, columns)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv input: %w", err)
	}
	defer file.Close()
	rows, err := ReadCSV(ctx, file, columns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ReadCSV reads a header line followed by data rows. Cells are trimmed;
// empty cells are omitted from Row.Values.
func ReadCSV(ctx context.Context, r io.Reader, columns []string) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv input: missing header row")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header = trimCells(header)
	idx, err := indexColumns(header, columns)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", line, err)
		}
		values := make(map[string]string, len(columns))
		for i, col := range columns {
			if cell := strings.TrimSpace(record[idx[i]]); cell != "" {
				values[col] = cell
			}
		}
		rows = append(rows, Row{Line: line, Values: values})
	}
	return rows, nil
}

func trimCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
	}
	return out
}

// ProbeCSVFile checks that the file's header names every requested column.
func ProbeCSVFile(path string, columns []string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open csv input: %w", err)
	}
	defer file.Close()
	header, err := csv.NewReader(file).Read()
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}
	_, err = indexColumns(trimCells(header), columns)
	return err
}
