// Package logging assembles structured slog loggers and formatting helpers
// used across entres.
//
// It owns the console and JSON handlers, level parsing, optional teeing into
// a JSON log file, and context helpers that tag every line of a resolve run
// with its run id. A no-op logger is provided for tests and for library
// callers that do not configure logging.
package logging
