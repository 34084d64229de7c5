package testsupport

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

// WriteCSV writes a header and rows to path, creating parent directories.
func WriteCSV(t testing.TB, path string, header []string, rows [][]string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		t.Fatalf("write header %s: %v", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write rows %s: %v", path, err)
	}
}

// ProductRows returns CSV rows (observed_name, retail_store, sku) for the
// product fixtures in each store, in store order.
func ProductRows(stores ...string) [][]string {
	var rows [][]string
	for _, store := range stores {
		for i, name := range ProductNames {
			rows = append(rows, []string{name, store, store + "-" + string(rune('1'+i))})
		}
	}
	return rows
}
