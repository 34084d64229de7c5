package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"entres/internal/config"
	"entres/internal/pipeline"
)

const (
	ansiReset = "\x1b[0m"
	ansiGreen = "\x1b[32m"
	ansiBlue  = "\x1b[34m"
)

const (
	summaryLabelWidth = 14
	summaryIndent     = "  "
)

// SummaryLines describes a finished run, one labelled value per line.
func SummaryLines(result *pipeline.Result, colorize bool) []string {
	if result == nil {
		return nil
	}
	stats := result.Stats
	lines := renderSectionHeader("Resolve summary", colorize)
	entries := []struct {
		label string
		value string
	}{
		{"Run", result.RunID},
		{"Mode", result.Mode},
		{"Source", result.Source},
		{"Rows", fmt.Sprint(result.Rows)},
		{"Clusters", fmt.Sprint(stats.Clusters)},
		{"Comparisons", fmt.Sprint(stats.Comparisons)},
		{"Merges", fmt.Sprint(stats.Merges)},
		{"Elapsed", stats.Elapsed.Round(time.Millisecond).String()},
	}
	if result.Mode == config.ModePartitioned {
		entries = append(entries, struct {
			label string
			value string
		}{"Partitions", fmt.Sprint(stats.Partitions)})
	}
	for _, e := range entries {
		if strings.TrimSpace(e.value) == "" {
			continue
		}
		lines = append(lines, renderSummaryLine(e.label, e.value, colorize))
	}
	return lines
}

func renderSummaryLine(label, value string, colorize bool) string {
	if colorize {
		value = ansiGreen + value + ansiReset
	}
	return fmt.Sprintf("%s%-*s %s", summaryIndent, summaryLabelWidth, label+":", value)
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

// ShouldColorize reports whether writer is an interactive terminal.
func ShouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
