package resolve

import (
	"log/slog"
	"runtime"

	"entres/internal/record"
)

// DefaultPartitionSize is the leaf partition size of the Partitioned resolver.
const DefaultPartitionSize = 500

type options struct {
	logger        *slog.Logger
	seq           *record.Sequence
	selection     Selection
	partitionSize int
	workers       int
}

// Option customizes a resolver.
type Option func(*options)

// WithLogger sets the logger for run summaries and merge traces.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClusterSequence makes the resolver draw cluster oids from seq.
func WithClusterSequence(seq *record.Sequence) Option {
	return func(o *options) {
		if seq != nil {
			o.seq = seq
		}
	}
}

// WithSelection sets how a pending cluster chooses among positive candidates.
func WithSelection(s Selection) Option {
	return func(o *options) {
		o.selection = s
	}
}

// WithPartitionSize sets the largest partition the Partitioned resolver
// resolves without splitting. Values below 1 keep the default.
func WithPartitionSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.partitionSize = n
		}
	}
}

// WithWorkers bounds how many sibling partitions resolve concurrently.
// Values below 1 keep the default of runtime.NumCPU.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		partitionSize: DefaultPartitionSize,
		workers:       runtime.NumCPU(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.seq == nil {
		o.seq = record.NewSequence()
	}
	return o
}
