// Package source reads input rows for a resolve run.
//
// Rows come from a CSV file with a header line or from a SQLite database
// queried with a configured SELECT. Every requested column must exist in the
// input; empty cells and NULLs are reported as absent so the record schema
// treats them as missing values.
package source
