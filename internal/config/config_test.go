package config_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"entres/internal/config"
	"entres/internal/record"
)

const minimalConfig = `
[[fields]]
name = "name"
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entres.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadWithoutFileRequiresFields(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected error without any field definitions")
	}
	if !strings.Contains(err.Error(), "[[fields]]") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadCustomPathAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
[resolver]
mode = "Partitioned"
threshold = 2.5

[input]
path = "`+filepath.ToSlash(filepath.Join(dir, "rows.sqlite"))+`"
query = "SELECT name, city FROM people"

[[fields]]
name = "name"
comparator = "ratio"

[[fields]]
name = "city"
column = "town"
comparator = "token_cosine"
exclude = true

[[blocking_keys]]
field = "city"
derive = "end_chars"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.Resolver.Mode != config.ModePartitioned {
		t.Fatalf("mode = %q", cfg.Resolver.Mode)
	}
	if cfg.Resolver.Threshold != 2.5 {
		t.Fatalf("threshold = %v", cfg.Resolver.Threshold)
	}
	if cfg.Resolver.PartitionSize != 500 || cfg.Resolver.Linkage != "best_evidence" || cfg.Resolver.Selection != config.SelectionFirst {
		t.Fatalf("unexpected resolver defaults: %+v", cfg.Resolver)
	}
	if cfg.Input.Format != config.FormatSQLite {
		t.Fatalf("expected sqlite format from extension, got %q", cfg.Input.Format)
	}

	name, _ := cfg.Field("name")
	if name.Column != "name" || name.MinSimilarity != 70 {
		t.Fatalf("unexpected name field defaults: %+v", name)
	}
	if name.TrueMatchProbability != 0.9 || name.FalseMatchProbability != 0.1 {
		t.Fatalf("unexpected probability defaults: %+v", name)
	}
	city, _ := cfg.Field("city")
	if city.Column != "town" || city.MinSimilarity != 0.8 || !city.Exclude {
		t.Fatalf("unexpected city field: %+v", city)
	}

	key := cfg.BlockingKeys[0]
	if key.Name != "city" || key.Length != 3 {
		t.Fatalf("unexpected blocking key defaults: %+v", key)
	}
	if got := strings.Join(cfg.Columns(), ","); got != "name,town" {
		t.Fatalf("columns = %q", got)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, minimalConfig+"\ncomparatr = \"ratio\"\n")
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for misspelled key")
	}
}

func TestParse(t *testing.T) {
	cfg, err := config.Parse([]byte(minimalConfig))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cfg.Fields[0].Comparator != config.ComparatorExact {
		t.Fatalf("comparator = %q", cfg.Fields[0].Comparator)
	}
	if cfg.Output.Format != config.OutputTable || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected defaults: %+v %+v", cfg.Output, cfg.Logging)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if string(contents) != config.SampleConfig() {
		t.Fatal("sample file does not match embedded sample")
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if len(cfg.Fields) != 2 || len(cfg.BlockingKeys) != 1 {
		t.Fatalf("unexpected sample schema: %d fields, %d keys", len(cfg.Fields), len(cfg.BlockingKeys))
	}
	if cfg.Input.Format != config.FormatCSV {
		t.Fatalf("sample input format = %q", cfg.Input.Format)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	valid := func() config.Config {
		cfg := config.Default()
		cfg.Fields = []config.Field{{
			Name:                  "name",
			Column:                "name",
			Comparator:            config.ComparatorRatio,
			MinSimilarity:         70,
			TrueMatchProbability:  0.9,
			FalseMatchProbability: 0.1,
		}}
		return cfg
	}
	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("baseline config invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"mode", func(c *config.Config) { c.Resolver.Mode = "serial" }},
		{"threshold", func(c *config.Config) { c.Resolver.Threshold = math.NaN() }},
		{"linkage", func(c *config.Config) { c.Resolver.Linkage = "average" }},
		{"selection", func(c *config.Config) { c.Resolver.Selection = "random" }},
		{"partition size", func(c *config.Config) { c.Resolver.PartitionSize = 0 }},
		{"workers", func(c *config.Config) { c.Resolver.Workers = -1 }},
		{"input format", func(c *config.Config) { c.Input.Format = "xml" }},
		{"sqlite query", func(c *config.Config) { c.Input.Format = config.FormatSQLite }},
		{"output format", func(c *config.Config) { c.Output.Format = "yaml" }},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }},
		{"no fields", func(c *config.Config) { c.Fields = nil }},
		{"duplicate field", func(c *config.Config) { c.Fields = append(c.Fields, c.Fields[0]) }},
		{"comparator", func(c *config.Config) { c.Fields[0].Comparator = "soundex" }},
		{"ratio range", func(c *config.Config) { c.Fields[0].MinSimilarity = 150 }},
		{"all excluded", func(c *config.Config) { c.Fields[0].Exclude = true }},
		{"unknown key field", func(c *config.Config) {
			c.BlockingKeys = []config.BlockingKey{{Name: "k", Field: "missing", Derive: config.DeriveValue}}
		}},
		{"derive", func(c *config.Config) {
			c.BlockingKeys = []config.BlockingKey{{Name: "k", Field: "name", Derive: "hash"}}
		}},
		{"end chars length", func(c *config.Config) {
			c.BlockingKeys = []config.BlockingKey{{Name: "k", Field: "name", Derive: config.DeriveEndChars}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestValidateRejectsInvalidProbabilities(t *testing.T) {
	cfg := config.Default()
	cfg.Fields = []config.Field{{
		Name:                  "name",
		Column:                "name",
		Comparator:            config.ComparatorExact,
		TrueMatchProbability:  0.1,
		FalseMatchProbability: 0.9,
	}}
	err := cfg.Validate()
	if !errors.Is(err, record.ErrInvalidProbability) {
		t.Fatalf("expected ErrInvalidProbability, got %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Output.Path = filepath.Join(base, "out", "clusters.json")
	cfg.Logging.File = filepath.Join(base, "logs", "nested", "entres.log")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{filepath.Join(base, "out"), filepath.Join(base, "logs", "nested")} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}
