package config

import (
	"errors"
	"fmt"
	"math"

	"entres/internal/match"
	"entres/internal/record"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := c.validateInput(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateFields(); err != nil {
		return err
	}
	if err := c.validateBlockingKeys(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateResolver() error {
	switch c.Resolver.Mode {
	case ModeIncremental, ModePartitioned:
	default:
		return fmt.Errorf("resolver.mode: unsupported value %q (want %s or %s)", c.Resolver.Mode, ModeIncremental, ModePartitioned)
	}
	if math.IsNaN(c.Resolver.Threshold) || math.IsInf(c.Resolver.Threshold, 0) {
		return errors.New("resolver.threshold must be a finite number")
	}
	if _, err := match.ParseLinkage(c.Resolver.Linkage); err != nil {
		return fmt.Errorf("resolver.linkage: %w", err)
	}
	switch c.Resolver.Selection {
	case SelectionFirst, SelectionBest:
	default:
		return fmt.Errorf("resolver.selection: unsupported value %q (want %s or %s)", c.Resolver.Selection, SelectionFirst, SelectionBest)
	}
	if c.Resolver.PartitionSize < 1 {
		return errors.New("resolver.partition_size must be positive")
	}
	if c.Resolver.Workers < 0 {
		return errors.New("resolver.workers must be zero or positive")
	}
	return nil
}

func (c *Config) validateInput() error {
	switch c.Input.Format {
	case "", FormatCSV:
	case FormatSQLite:
		if c.Input.Query == "" {
			return errors.New("input.query must be set for sqlite input")
		}
	default:
		return fmt.Errorf("input.format: unsupported value %q (want %s or %s)", c.Input.Format, FormatCSV, FormatSQLite)
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Format {
	case OutputTable, OutputJSON:
		return nil
	default:
		return fmt.Errorf("output.format: unsupported value %q (want %s or %s)", c.Output.Format, OutputTable, OutputJSON)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateFields() error {
	if len(c.Fields) == 0 {
		return errors.New("at least one [[fields]] entry is required (create a sample with 'entres config init')")
	}
	seen := make(map[string]struct{}, len(c.Fields))
	scored := 0
	for i, f := range c.Fields {
		if f.Name == "" {
			return fmt.Errorf("fields[%d].name must be set", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("fields[%d]: duplicate field name %q", i, f.Name)
		}
		seen[f.Name] = struct{}{}
		switch f.Comparator {
		case ComparatorExact, ComparatorFold:
		case ComparatorRatio:
			if f.MinSimilarity <= 0 || f.MinSimilarity > 100 {
				return fmt.Errorf("fields[%d].min_similarity must be in (0, 100] for ratio", i)
			}
		case ComparatorTokenCosine:
			if f.MinSimilarity <= 0 || f.MinSimilarity > 1 {
				return fmt.Errorf("fields[%d].min_similarity must be in (0, 1] for token_cosine", i)
			}
		default:
			return fmt.Errorf("fields[%d].comparator: unsupported value %q", i, f.Comparator)
		}
		if err := record.ValidateProbabilities(f.TrueMatchProbability, f.FalseMatchProbability); err != nil {
			return fmt.Errorf("fields[%d] %q: %w", i, f.Name, err)
		}
		if !f.Exclude {
			scored++
		}
	}
	if scored == 0 {
		return errors.New("at least one field must be scored (exclude = false)")
	}
	return nil
}

func (c *Config) validateBlockingKeys() error {
	seen := make(map[string]struct{}, len(c.BlockingKeys))
	for i, k := range c.BlockingKeys {
		if k.Name == "" {
			return fmt.Errorf("blocking_keys[%d].name must be set", i)
		}
		if _, dup := seen[k.Name]; dup {
			return fmt.Errorf("blocking_keys[%d]: duplicate key name %q", i, k.Name)
		}
		seen[k.Name] = struct{}{}
		if _, ok := c.Field(k.Field); !ok {
			return fmt.Errorf("blocking_keys[%d].field: unknown field %q", i, k.Field)
		}
		switch k.Derive {
		case DeriveValue, DeriveFold, DeriveFirstChar, DeriveLastChar:
		case DeriveEndChars:
			if k.Length < 1 {
				return fmt.Errorf("blocking_keys[%d].length must be positive", i)
			}
		default:
			return fmt.Errorf("blocking_keys[%d].derive: unsupported value %q", i, k.Derive)
		}
	}
	return nil
}
