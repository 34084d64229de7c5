package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"entres/internal/config"
	"entres/internal/pipeline"
)

// ErrOutputLocked is returned when another run holds the output lock.
var ErrOutputLocked = errors.New("output file is locked by another run")

// Options selects the output format and styling.
type Options struct {
	Format   string
	Colorize bool
}

// Render writes result to w in the requested format.
func Render(w io.Writer, result *pipeline.Result, opts Options) error {
	if result == nil {
		return errors.New("report: nil result")
	}
	switch opts.Format {
	case config.OutputJSON:
		return WriteJSON(w, result)
	case config.OutputTable, "":
		var b strings.Builder
		if len(result.Groups) > 0 {
			b.WriteString(ClusterTable(result.Groups))
			b.WriteString("\n\n")
		}
		for _, line := range SummaryLines(result, opts.Colorize) {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		_, err := io.WriteString(w, b.String())
		return err
	default:
		return fmt.Errorf("report: unsupported format %q", opts.Format)
	}
}

// WriteFile renders result into path. The file is replaced atomically while
// holding path+".lock".
func WriteFile(path string, result *pipeline.Result, opts Options) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("report: output path is empty")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrOutputLocked, path)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	opts.Colorize = false
	if err := Render(tmp, result, opts); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}
