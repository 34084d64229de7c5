package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeResolver()
	if err := c.normalizeInput(); err != nil {
		return err
	}
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.normalizeFields()
	c.normalizeBlockingKeys()
	return nil
}

func (c *Config) normalizeResolver() {
	c.Resolver.Mode = lower(c.Resolver.Mode)
	if c.Resolver.Mode == "" {
		c.Resolver.Mode = defaultMode
	}
	c.Resolver.Linkage = lower(c.Resolver.Linkage)
	if c.Resolver.Linkage == "" {
		c.Resolver.Linkage = defaultLinkage
	}
	c.Resolver.Selection = lower(c.Resolver.Selection)
	if c.Resolver.Selection == "" {
		c.Resolver.Selection = defaultSelection
	}
	if c.Resolver.PartitionSize == 0 {
		c.Resolver.PartitionSize = defaultPartitionSize
	}
}

func (c *Config) normalizeInput() error {
	var err error
	if c.Input.Path, err = expandPath(strings.TrimSpace(c.Input.Path)); err != nil {
		return fmt.Errorf("input.path: %w", err)
	}
	c.Input.Format = lower(c.Input.Format)
	if c.Input.Format == "" && c.Input.Path != "" {
		c.Input.Format = FormatFromPath(c.Input.Path)
	}
	c.Input.Query = strings.TrimSpace(c.Input.Query)
	c.Input.MetadataColumns = trimAll(c.Input.MetadataColumns)
	return nil
}

func (c *Config) normalizeOutput() error {
	var err error
	if c.Output.Path, err = expandPath(strings.TrimSpace(c.Output.Path)); err != nil {
		return fmt.Errorf("output.path: %w", err)
	}
	c.Output.Format = lower(c.Output.Format)
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = lower(c.Logging.Format)
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = lower(c.Logging.Level)
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func (c *Config) normalizeFields() {
	for i := range c.Fields {
		f := &c.Fields[i]
		f.Name = strings.TrimSpace(f.Name)
		f.Column = strings.TrimSpace(f.Column)
		if f.Column == "" {
			f.Column = f.Name
		}
		f.Comparator = lower(f.Comparator)
		if f.Comparator == "" {
			f.Comparator = defaultComparator
		}
		if f.MinSimilarity == 0 {
			switch f.Comparator {
			case ComparatorRatio:
				f.MinSimilarity = defaultRatioMin
			case ComparatorTokenCosine:
				f.MinSimilarity = defaultCosineMin
			}
		}
		if f.TrueMatchProbability == 0 {
			f.TrueMatchProbability = defaultTrueMatch
		}
		if f.FalseMatchProbability == 0 {
			f.FalseMatchProbability = defaultFalseMatch
		}
	}
}

func (c *Config) normalizeBlockingKeys() {
	for i := range c.BlockingKeys {
		k := &c.BlockingKeys[i]
		k.Name = strings.TrimSpace(k.Name)
		k.Field = strings.TrimSpace(k.Field)
		if k.Name == "" {
			k.Name = k.Field
		}
		k.Derive = lower(k.Derive)
		if k.Derive == "" {
			k.Derive = defaultDerive
		}
		if k.Derive == DeriveEndChars && k.Length == 0 {
			k.Length = defaultEndChars
		}
	}
}

// FormatFromPath infers the input format from a file extension.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	case ".csv":
		return FormatCSV
	default:
		return ""
	}
}

func lower(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
