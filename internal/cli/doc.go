// Package cli wires together the Cobra command tree for the repo-analyzer
// binary.
//
// It defines the root command and all subcommands (analyze, check, cache,
// version), binds flags, merges configuration, invokes the analysis engine,
// and returns deterministic exit codes: success requires at least one
// succeeded chunk.
package cli
