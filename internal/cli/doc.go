// Package cli wires together the Cobra command tree for the relnote binary.
//
// It defines the root command and all subcommands (notes, contributors,
// release, archive, cache, config, version), binds flags, reads
// configuration, and returns deterministic exit codes for scripting.
package cli
