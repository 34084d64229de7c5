package testsupport

import (
	"path/filepath"
	"testing"

	"entres/internal/config"
)

// ProductCSVHeader is the header of CSV files written by NewConfig.
var ProductCSVHeader = []string{"observed_name", "retail_store", "sku"}

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	stores  []string
	cfg     *config.Config
}

// NewConfig produces the sample product configuration with its input pointed
// at a CSV of product fixtures inside a per-test temp directory. By default
// the CSV holds one SM copy of ProductNames.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg, err := config.Parse([]byte(config.SampleConfig()))
	if err != nil {
		t.Fatalf("parse sample config: %v", err)
	}
	cfg.Input.Path = filepath.Join(base, "products.csv")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		stores:  []string{StoreSM},
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(builder)
	}

	if builder.stores != nil && cfg.Input.Format == config.FormatCSV {
		WriteCSV(t, cfg.Input.Path, ProductCSVHeader, ProductRows(builder.stores...))
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return cfg
}

// WithStores writes one copy of the product fixtures per store, in order.
func WithStores(stores ...string) ConfigOption {
	return func(b *configBuilder) {
		b.stores = stores
	}
}

// WithMode selects the resolver mode.
func WithMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resolver.Mode = mode
	}
}

// WithThreshold overrides the decision threshold.
func WithThreshold(threshold float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resolver.Threshold = threshold
	}
}

// WithPartitionSize sets a small leaf size so partitioned runs split.
func WithPartitionSize(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resolver.PartitionSize = n
	}
}

// WithoutBlocking drops every blocking key.
func WithoutBlocking() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.BlockingKeys = nil
	}
}

// WithInput points the config at an existing input instead of a generated CSV.
func WithInput(in config.Input) ConfigOption {
	return func(b *configBuilder) {
		b.stores = nil
		b.cfg.Input = in
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Input.Path)
}
