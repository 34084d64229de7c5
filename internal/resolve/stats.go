package resolve

import (
	"log/slog"
	"time"

	"entres/internal/logging"
)

// Stats summarizes one Resolve call.
type Stats struct {
	References  int
	Clusters    int
	Comparisons int
	Merges      int
	Partitions  int
	Pending     int
	Elapsed     time.Duration
}

func (s *Stats) add(o Stats) {
	s.Comparisons += o.Comparisons
	s.Merges += o.Merges
	s.Partitions += o.Partitions
}

func (s Stats) attrs() []logging.Attr {
	return []logging.Attr{
		logging.Int("references", s.References),
		logging.Int("clusters", s.Clusters),
		logging.Int("comparisons", s.Comparisons),
		logging.Int("merges", s.Merges),
		logging.Int("pending", s.Pending),
		logging.Duration("elapsed", s.Elapsed),
	}
}

func logRun(logger *slog.Logger, mode string, stats Stats, err error) {
	attrs := append(stats.attrs(), logging.String("mode", mode))
	if mode == modePartitioned {
		attrs = append(attrs, logging.Int("partitions", stats.Partitions))
	}
	if err != nil {
		attrs = append(attrs, logging.Error(err))
		logger.Warn("resolve interrupted", logging.Args(attrs...)...)
		return
	}
	logger.Info("resolve complete", logging.Args(attrs...)...)
}
