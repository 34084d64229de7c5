// Package config loads, normalizes, and validates entres configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and checks the resolver settings, the input source, and the
// field and blocking-key definitions a schema is built from. Probability
// pairs are validated here with the same rules the record package enforces,
// so a bad configuration fails before any row is read.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical format names, and clear validation errors.
package config
