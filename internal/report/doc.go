// Package report renders resolved clusters.
//
// Table output uses go-pretty with one block of rows per cluster followed by
// a run summary; JSON output is a single document carrying the run id, the
// statistics and every cluster with its record views. File output is written
// atomically under an exclusive lock so concurrent runs cannot interleave.
package report
