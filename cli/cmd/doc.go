// Package cmd implements the lent subcommands: resolving entities, rendering
// resources, the interactive shell, and config bootstrap.
package cmd

var (
	// CacheIdentifier names the kong variable holding the runtime cache
	// directory path.
	CacheIdentifier = "cache"

	// ConfigIdentifier names the kong variable holding the configuration
	// file path, and doubles as the identifier of the config entity
	// compiled from that file.
	ConfigIdentifier = "config"
)
