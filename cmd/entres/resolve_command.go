package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"entres/internal/config"
	"entres/internal/logging"
	"entres/internal/pipeline"
	"entres/internal/preflight"
	"entres/internal/report"
)

type resolveFlags struct {
	input         string
	format        string
	query         string
	mode          string
	threshold     float64
	linkage       string
	selection     string
	partitionSize int
	workers       int
	output        string
	metadata      bool
	json          bool
	logLevel      string
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Cluster input records that refer to the same entity",
		Long: `Load the configured input, score clusters with the configured fields and
merge every pair whose log-likelihood weight reaches the threshold. Flags
override the matching configuration values for this run only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := applyResolveFlags(cmd, *base, flags)
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return pipeline.Wrap(pipeline.ErrConfiguration, "config", "directories", "", err)
			}

			logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
			if err != nil {
				return pipeline.Wrap(pipeline.ErrConfiguration, "logging", "", "", err)
			}
			logger = logging.NewComponentLogger(logger, "cli")

			if err := preflight.FirstFailure(preflight.RunAll(cmd.Context(), cfg)); err != nil {
				return pipeline.Wrap(pipeline.ErrInput, "", "", "", err)
			}

			result, err := pipeline.Run(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			opts := report.Options{Format: cfg.Output.Format}
			out := cmd.OutOrStdout()
			if cfg.Output.Path == "" {
				opts.Colorize = report.ShouldColorize(out)
				return report.Render(out, result, opts)
			}
			if err := report.WriteFile(cfg.Output.Path, result, opts); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote %d clusters from %d rows to %s\n", len(result.Groups), result.Rows, cfg.Output.Path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.input, "input", "i", "", "Input file (CSV or SQLite); overrides [input].path")
	f.StringVar(&flags.format, "format", "", "Input format: csv or sqlite (default: from extension)")
	f.StringVar(&flags.query, "query", "", "SELECT statement for sqlite input")
	f.StringVarP(&flags.mode, "mode", "m", "", "Resolver mode: incremental or partitioned")
	f.Float64VarP(&flags.threshold, "threshold", "t", 0, "Merge threshold (log-likelihood weight)")
	f.StringVar(&flags.linkage, "linkage", "", "Cluster linkage: best_evidence or all_pairs")
	f.StringVar(&flags.selection, "selection", "", "Merge selection: first or best")
	f.IntVar(&flags.partitionSize, "partition-size", 0, "Largest partition resolved without splitting")
	f.IntVar(&flags.workers, "workers", 0, "Concurrent partition workers (0 = one per CPU)")
	f.StringVarP(&flags.output, "output", "o", "", "Write the report to this file instead of stdout")
	f.BoolVar(&flags.metadata, "metadata", false, "Include record metadata in the report")
	f.BoolVar(&flags.json, "json", false, "Emit JSON instead of a table")
	f.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	return cmd
}

// applyResolveFlags copies the loaded configuration, applies the flags the
// user set and validates the result.
func applyResolveFlags(cmd *cobra.Command, cfg config.Config, flags resolveFlags) (*config.Config, error) {
	changed := cmd.Flags().Changed
	cfg.Fields = append([]config.Field(nil), cfg.Fields...)
	cfg.BlockingKeys = append([]config.BlockingKey(nil), cfg.BlockingKeys...)

	if changed("input") {
		path := strings.TrimSpace(flags.input)
		if path != "-" {
			expanded, err := config.ExpandPath(path)
			if err != nil {
				return nil, pipeline.Wrap(pipeline.ErrConfiguration, "flags", "input", "", err)
			}
			path = expanded
		}
		cfg.Input.Path = path
		cfg.Input.Format = config.FormatFromPath(path)
	}
	if changed("format") {
		cfg.Input.Format = strings.ToLower(strings.TrimSpace(flags.format))
	}
	if changed("query") {
		cfg.Input.Query = strings.TrimSpace(flags.query)
	}
	if changed("mode") {
		cfg.Resolver.Mode = strings.ToLower(strings.TrimSpace(flags.mode))
	}
	if changed("threshold") {
		cfg.Resolver.Threshold = flags.threshold
	}
	if changed("linkage") {
		cfg.Resolver.Linkage = strings.ToLower(strings.TrimSpace(flags.linkage))
	}
	if changed("selection") {
		cfg.Resolver.Selection = strings.ToLower(strings.TrimSpace(flags.selection))
	}
	if changed("partition-size") {
		cfg.Resolver.PartitionSize = flags.partitionSize
	}
	if changed("workers") {
		cfg.Resolver.Workers = flags.workers
	}
	if changed("output") {
		expanded, err := config.ExpandPath(strings.TrimSpace(flags.output))
		if err != nil {
			return nil, pipeline.Wrap(pipeline.ErrConfiguration, "flags", "output", "", err)
		}
		cfg.Output.Path = expanded
	}
	if flags.metadata {
		cfg.Output.IncludeMetadata = true
	}
	if flags.json {
		cfg.Output.Format = config.OutputJSON
	}
	if changed("log-level") {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(flags.logLevel))
	}

	if err := cfg.Validate(); err != nil {
		return nil, pipeline.Wrap(pipeline.ErrConfiguration, "flags", "", "", err)
	}
	return &cfg, nil
}
