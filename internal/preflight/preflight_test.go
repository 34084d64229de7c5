package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"entres/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFileReadable(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFileReadable("test", dir); result.Passed {
		t.Fatal("expected failure for directory")
	}
	if result := CheckFileReadable("test", filepath.Join(dir, "missing.csv")); result.Passed {
		t.Fatal("expected failure for missing file")
	}
	f := filepath.Join(dir, "rows.csv")
	if err := os.WriteFile(f, []byte("a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckFileReadable("test", f); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckInput_OK(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	result := CheckInput(context.Background(), "Input", cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "3 columns ok") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckInput_MissingColumn(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Input.MetadataColumns = append(cfg.Input.MetadataColumns, "barcode")
	result := CheckInput(context.Background(), "Input", cfg)
	if result.Passed {
		t.Fatal("expected failure for missing column")
	}
	if !strings.Contains(result.Detail, "barcode") {
		t.Fatalf("expected column name in detail, got %q", result.Detail)
	}
}

func TestCheckInput_NoPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Input.Path = ""
	if result := CheckInput(context.Background(), "Input", cfg); result.Passed {
		t.Fatal("expected failure without input path")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := RunAll(context.Background(), cfg)
	if len(results) != 1 {
		t.Fatalf("expected only the input check, got %d results", len(results))
	}
	if err := FirstFailure(results); err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
}

func TestRunAll_IncludesOutputAndLogDirectories(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	cfg.Output.Path = filepath.Join(base, "clusters.json")
	cfg.Logging.File = filepath.Join(base, "missing", "entres.log")

	results := RunAll(context.Background(), cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[1].Passed {
		t.Fatalf("expected output directory to pass, got %s", results[1].Detail)
	}
	if results[2].Passed {
		t.Fatal("expected missing log directory to fail")
	}
	if !Failed(results) {
		t.Fatal("expected Failed to report the log directory")
	}
	err := FirstFailure(results)
	if err == nil || !strings.Contains(err.Error(), "Log directory") {
		t.Fatalf("unexpected first failure: %v", err)
	}
}
