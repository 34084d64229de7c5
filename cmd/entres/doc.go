// Package main hosts the entres CLI entrypoint and command graph.
//
// The Cobra-based command tree loads the TOML configuration once, applies
// per-invocation flag overrides, runs preflight checks and hands the run to
// the pipeline package. Rendering lives in the report package.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
