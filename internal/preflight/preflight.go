package preflight

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"entres/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Input (always checked)
	results = append(results, CheckInput(ctx, "Input", cfg))

	// Output directory (when writing to a file)
	if cfg.Output.Path != "" {
		results = append(results, CheckDirectoryAccess("Output directory", filepath.Dir(cfg.Output.Path)))
	}

	// Log file directory
	if cfg.Logging.File != "" {
		results = append(results, CheckDirectoryAccess("Log directory", filepath.Dir(cfg.Logging.File)))
	}

	return results
}

// FirstFailure returns an error describing the first failed result, or nil.
func FirstFailure(results []Result) error {
	for _, r := range results {
		if !r.Passed {
			return fmt.Errorf("preflight %s: %s", r.Name, r.Detail)
		}
	}
	return nil
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	return FirstFailure(results) != nil
}

var errNoInput = errors.New("no input path configured")
