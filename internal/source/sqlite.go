package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

// ReadSQLite runs query against the database at path and returns the
// requested columns of every result row. The connection is query-only.
func ReadSQLite(ctx context.Context, path, query string, columns []string) ([]Row, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("sqlite input: no query configured")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("sqlite input: %w", err)
	}
	db, err := openSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	result, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query sqlite input: %w", err)
	}
	defer result.Close()

	header, err := result.Columns()
	if err != nil {
		return nil, fmt.Errorf("read result columns: %w", err)
	}
	idx, err := indexColumns(header, columns)
	if err != nil {
		return nil, err
	}

	cells := make([]sql.NullString, len(header))
	dest := make([]any, len(header))
	for i := range cells {
		dest[i] = &cells[i]
	}

	var rows []Row
	for line := 1; result.Next(); line++ {
		if err := result.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", line, err)
		}
		values := make(map[string]string, len(columns))
		for i, col := range columns {
			cell := cells[idx[i]]
			if !cell.Valid {
				continue
			}
			if v := strings.TrimSpace(cell.String); v != "" {
				values[col] = v
			}
		}
		rows = append(rows, Row{Line: line, Values: values})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("iterate sqlite rows: %w", err)
	}
	return rows, nil
}

// ProbeSQLite checks that query runs against path and yields every
// requested column, without reading any rows.
func ProbeSQLite(ctx context.Context, path, query string, columns []string) error {
	if strings.TrimSpace(query) == "" {
		return errors.New("sqlite input: no query configured")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("sqlite input: %w", err)
	}
	db, err := openSQLite(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	probe := "SELECT * FROM (" + strings.TrimRight(strings.TrimSpace(query), ";") + ") LIMIT 0"
	result, err := db.QueryContext(ctx, probe)
	if err != nil {
		return fmt.Errorf("query sqlite input: %w", err)
	}
	defer result.Close()
	header, err := result.Columns()
	if err != nil {
		return fmt.Errorf("read result columns: %w", err)
	}
	_, err = indexColumns(header, columns)
	return err
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA query_only = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	return db, nil
}
