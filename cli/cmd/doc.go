// Package cmd implements the vela subcommands.
//
// Every command receives the interpreter built from the global flags, after
// any --source programs have been loaded into it, so definitions made by
// those programs are visible to the command.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)
