// Package pipeline turns a configuration into a finished resolve run.
//
// A run has three stages. Load reads rows from the configured input, build
// derives the record schema and one reference per row, and resolve feeds the
// references to the configured resolver and collects the clusters. Each
// stage logs its start and completion under the run id, and failures are
// tagged with a marker error (ErrConfiguration, ErrInput, ErrValidation or
// ErrResolve) so callers can classify them with errors.Is.
package pipeline
