package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Resolver selects and tunes the resolution algorithm.
type Resolver struct {
	Mode          string  `toml:"mode"`
	Threshold     float64 `toml:"threshold"`
	Linkage       string  `toml:"linkage"`
	Selection     string  `toml:"selection"`
	PartitionSize int     `toml:"partition_size"`
	// Workers bounds concurrent partition resolution. Zero means one per CPU.
	Workers int `toml:"workers"`
}

// Input describes where rows come from.
type Input struct {
	Path   string `toml:"path"`
	Format string `toml:"format"`
	// Query is required for sqlite input.
	Query           string   `toml:"query"`
	MetadataColumns []string `toml:"metadata_columns"`
}

// Output controls how resolved clusters are reported.
type Output struct {
	Path            string `toml:"path"`
	Format          string `toml:"format"`
	IncludeMetadata bool   `toml:"include_metadata"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Field defines one scored (or excluded) field of the record schema.
type Field struct {
	Name string `toml:"name"`
	// Column is the source column; defaults to Name.
	Column                string  `toml:"column"`
	Comparator            string  `toml:"comparator"`
	MinSimilarity         float64 `toml:"min_similarity"`
	TrueMatchProbability  float64 `toml:"true_match_probability"`
	FalseMatchProbability float64 `toml:"false_match_probability"`
	Exclude               bool    `toml:"exclude"`
}

// BlockingKey derives a blocking value from one field.
type BlockingKey struct {
	Name   string `toml:"name"`
	Field  string `toml:"field"`
	Derive string `toml:"derive"`
	// Length is the prefix/suffix length for end_chars.
	Length int `toml:"length"`
}

// Config encapsulates all configuration values for entres.
//
// Configuration sections:
//   - Resolver: algorithm, decision threshold, linkage, partitioning
//   - Input: source file, format, query and metadata columns
//   - Output: report destination and format
//   - Logging: log format, level and optional JSON log file
//   - Fields / BlockingKeys: the record schema
type Config struct {
	Resolver     Resolver      `toml:"resolver"`
	Input        Input         `toml:"input"`
	Output       Output        `toml:"output"`
	Logging      Logging       `toml:"logging"`
	Fields       []Field       `toml:"fields"`
	BlockingKeys []BlockingKey `toml:"blocking_keys"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned
// config has defaults applied and paths expanded. The second and third
// results report the resolved path and whether a file was found there; they
// are also set when parsing or validation fails.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, resolvedPath, exists, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, resolvedPath, exists, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, resolvedPath, exists, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, resolvedPath, exists, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Parse decodes, normalizes, and validates configuration from TOML text.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// Field returns the field definition with the given name.
func (c *Config) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Columns returns the source columns the schema reads, fields first, then
// metadata columns not already listed.
func (c *Config) Columns() []string {
	seen := make(map[string]struct{}, len(c.Fields)+len(c.Input.MetadataColumns))
	var out []string
	for _, f := range c.Fields {
		if _, ok := seen[f.Column]; ok {
			continue
		}
		seen[f.Column] = struct{}{}
		out = append(out, f.Column)
	}
	for _, col := range c.Input.MetadataColumns {
		if _, ok := seen[col]; ok {
			continue
		}
		seen[col] = struct{}{}
		out = append(out, col)
	}
	return out
}

// EnsureDirectories creates the parent directories of the configured output
// and log files.
func (c *Config) EnsureDirectories() error {
	for _, path := range []string{c.Output.Path, c.Logging.File} {
		if path == "" {
			continue
		}
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
