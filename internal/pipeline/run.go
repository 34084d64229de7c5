package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"entres/internal/config"
	"entres/internal/logging"
	"entres/internal/match"
	"entres/internal/record"
	"entres/internal/resolve"
	"entres/internal/source"
)

// Result is the outcome of one run.
type Result struct {
	RunID  string
	Mode   string
	Source string
	Rows   int
	Groups []resolve.Group
	Stats  resolve.Stats
}

// Run loads the configured input, resolves it and returns the clusters.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if cfg == nil {
		return nil, Wrap(ErrConfiguration, "run", "", "config is nil", nil)
	}
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "pipeline"))

	result := &Result{RunID: runID, Mode: cfg.Resolver.Mode, Source: cfg.Input.Path}

	var rows []source.Row
	err := runStage(ctx, logger, "load", func(ctx context.Context) error {
		var err error
		rows, err = source.Load(ctx, cfg.Input, cfg.Columns())
		if err != nil {
			return Wrap(ErrInput, "load", cfg.Input.Path, "", err)
		}
		result.Rows = len(rows)
		return nil
	}, logging.String(logging.FieldSource, cfg.Input.Path))
	if err != nil {
		return nil, err
	}

	var refs []*record.Reference
	var schema *record.Schema
	err = runStage(ctx, logger, "build", func(context.Context) error {
		var err error
		if schema, err = BuildSchema(cfg); err != nil {
			return err
		}
		refs, err = BuildReferences(schema, cfg, rows)
		return err
	}, logging.Int("rows", len(rows)))
	if err != nil {
		return nil, err
	}

	err = runStage(ctx, logger, "resolve", func(ctx context.Context) error {
		resolver, err := NewResolver(cfg, schema, logger)
		if err != nil {
			return err
		}
		if err := resolver.Add(refs...); err != nil {
			return Wrap(ErrValidation, "resolve", "add", "", err)
		}
		if err := resolver.Resolve(ctx); err != nil {
			result.Stats = resolver.Stats()
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return Wrap(ErrResolve, "resolve", cfg.Resolver.Mode, "", err)
		}
		result.Stats = resolver.Stats()
		result.Groups = resolver.Clusters(cfg.Output.IncludeMetadata)
		return nil
	}, logging.String("mode", cfg.Resolver.Mode), logging.Int("references", len(refs)))
	if err != nil {
		return nil, err
	}
	return result, nil
}

// NewResolver builds the scorer and the resolver selected by cfg.
func NewResolver(cfg *config.Config, schema *record.Schema, logger *slog.Logger) (resolve.Resolver, error) {
	linkage, err := match.ParseLinkage(cfg.Resolver.Linkage)
	if err != nil {
		return nil, Wrap(ErrConfiguration, "resolve", "linkage", "", err)
	}
	selection, err := resolve.ParseSelection(cfg.Resolver.Selection)
	if err != nil {
		return nil, Wrap(ErrConfiguration, "resolve", "selection", "", err)
	}
	scorer, err := match.NewScorer(schema, cfg.Resolver.Threshold, match.WithLinkage(linkage))
	if err != nil {
		return nil, Wrap(ErrConfiguration, "resolve", "scorer", "", err)
	}
	opts := []resolve.Option{
		resolve.WithLogger(logger),
		resolve.WithSelection(selection),
		resolve.WithPartitionSize(cfg.Resolver.PartitionSize),
		resolve.WithWorkers(cfg.Resolver.Workers),
	}
	switch cfg.Resolver.Mode {
	case config.ModeIncremental:
		r, err := resolve.NewIncremental(scorer, opts...)
		if err != nil {
			return nil, Wrap(ErrConfiguration, "resolve", "incremental", "", err)
		}
		return r, nil
	case config.ModePartitioned:
		r, err := resolve.NewPartitioned(scorer, opts...)
		if err != nil {
			return nil, Wrap(ErrConfiguration, "resolve", "partitioned", "", err)
		}
		return r, nil
	default:
		return nil, Wrap(ErrConfiguration, "resolve", "", "unsupported mode "+cfg.Resolver.Mode, nil)
	}
}

func runStage(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context) error, attrs ...logging.Attr) error {
	stageLogger := logger.With(logging.String(logging.FieldStage, name))
	stageLogger.Debug("stage started", logging.Args(attrs...)...)
	start := time.Now()
	if err := fn(ctx); err != nil {
		stageLogger.Error("stage failed",
			logging.Duration("elapsed", time.Since(start)),
			logging.Error(err),
		)
		return err
	}
	stageLogger.Info("stage completed", logging.Duration("elapsed", time.Since(start)))
	return nil
}
