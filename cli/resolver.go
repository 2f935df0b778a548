package cli

import (
	"context"
	"io"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/lent/lang"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag values from a
// config file written in the lent language itself.
//
// The loader compiles the file and flattens the named entity's non-local
// attributes into the configuration map. Attribute values resolve to strings
// that Kong then parses into each flag's type, and they may interpolate other
// entries defined in the same file. Since identifiers cannot contain hyphens,
// a flag like --log-level is spelled log_level:
//
//	<config
//	  log_level: "debug"
//	  log_format: "json"
//	  log_pretty: "true"
//	>
//
// A flag given on the command line wins over its config attribute.
func resolve(
	ctx context.Context,
	name string,
) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		// A file that fails to compile, or that lacks the config entity,
		// yields an empty resolver rather than an error. Missing or stale
		// configs never block the CLI.
		res, err := lang.CompileReader(ctx, r)
		if err != nil {
			return config{}, nil
		}

		ent, ok := res.Entity(name)
		if !ok {
			return config{}, nil
		}

		lookup := res.Context(nil)
		values := make(config)

		for attr := range ent.Attributes() {
			if attr.Local() {
				continue
			}

			// An attribute that fails to resolve is skipped, not fatal.
			value, err := ent.GetAttribute(lookup, nil, attr.ID())
			if err != nil {
				continue
			}

			values[attr.ID()] = value
		}

		return values, nil
	}
}

// config implements [kong.Resolver] for lent language configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Kong flag names use hyphens; identifiers use underscores.
	for _, name := range []string{
		flag.Name,
		strings.ReplaceAll(flag.Name, "-", "_"),
	} {
		if value, ok := r[name]; ok {
			return value, nil
		}
	}

	// Unset flags fall through to Kong's own defaults.
	return nil, nil
}
