// Package preflight provides readiness checks for the files a resolve run
// depends on.
//
// These checks run in two contexts:
//   - "entres config validate" prints every result so a configuration can be
//     verified before a long run.
//   - "entres resolve" runs them first and stops on the first failure, so a
//     missing column or unwritable output directory is reported before any
//     rows are loaded.
//
// Checks for optional paths are skipped when the path is not configured.
package preflight
