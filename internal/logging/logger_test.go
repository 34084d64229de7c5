package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"entres/internal/config"
	"entres/internal/logging"
)

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()
	var buf bytes.Buffer

	logger, err := logging.NewFromConfig(&cfg, &buf)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug message")
	logger.Info("resolve complete", logging.Int("clusters", 3))

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Fatalf("debug line emitted at info level: %q", out)
	}
	if !strings.Contains(out, "INFO") || !strings.Contains(out, "- Clusters: 3") {
		t.Fatalf("unexpected console output: %q", out)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	if strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", buf.String())
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("message with caller", logging.Uint64(logging.FieldClusterID, 7))

	out := buf.String()
	if !strings.Contains(out, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", out)
	}
	if !strings.Contains(out, "cluster_id: 7") {
		t.Fatalf("expected raw debug fields, got %q", out)
	}
}

func TestConsoleHidesIDFieldsOnInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "resolver").Info("merged", logging.Uint64(logging.FieldClusterID, 4))

	out := buf.String()
	if !strings.Contains(out, "[resolver]") {
		t.Fatalf("expected component in header: %q", out)
	}
	if !strings.Contains(out, "1 more field hidden") {
		t.Fatalf("expected id field to be hidden: %q", out)
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "json message" || entry["k"] != "v" || entry["level"] != "info" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key: %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "invalid", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug to be disabled")
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected info to be enabled")
	}
}

func TestLogFileReceivesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "entres.log")
	var console bytes.Buffer
	logger, err := logging.New(logging.Options{Output: &console, File: path})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Warn("resolve interrupted", logging.Error(errors.New("boom")))

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(content, &entry); err != nil {
		t.Fatalf("decode log file: %v (%q)", err, content)
	}
	if entry["error"] != "boom" || entry["level"] != "warn" {
		t.Fatalf("unexpected file entry: %v", entry)
	}
	if !strings.Contains(console.String(), "Error: boom") {
		t.Fatalf("unexpected console output: %q", console.String())
	}
}

func TestWithContextAddsRunID(t *testing.T) {
	ctx := logging.WithRunID(context.Background(), "3f2a9c1e-0000-4000-8000-000000000000")
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WithContext(ctx, logger).Info("contextual log")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry[logging.FieldRunID] != "3f2a9c1e-0000-4000-8000-000000000000" {
		t.Fatalf("run id missing: %v", entry)
	}

	if _, ok := logging.RunIDFromContext(context.Background()); ok {
		t.Fatal("expected no run id on empty context")
	}
	if got := logging.WithRunID(context.Background(), "  "); got != context.Background() {
		t.Fatal("expected blank run id to be ignored")
	}
}

func TestConsoleShortensRunID(t *testing.T) {
	ctx := logging.WithRunID(context.Background(), "3f2a9c1e-0000-4000-8000-000000000000")
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WithContext(ctx, logger).Info("hello")
	if !strings.Contains(buf.String(), "run 3f2a9c1e – hello") {
		t.Fatalf("unexpected header: %q", buf.String())
	}
}
