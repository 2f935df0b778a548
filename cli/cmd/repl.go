package cmd

import (
	"context"
	"io"
	"log/slog"
	"slices"

	"github.com/ardnew/lent/cli/cmd/repl"
	"github.com/ardnew/lent/lang"
	"github.com/ardnew/lent/log"
)

// Repl starts an interactive resolution shell over the compiled sources.
type Repl struct {
	Sources []string `arg:"" help:"Source files searched via --path" type:"string"`

	bindFlags `embed:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	// The terminal is the interactive input, so sources must be files.
	if slices.Contains(r.Sources, stdinSource) {
		return ErrNoSource.With(
			slog.String("source", stdinSource),
			slog.String("hint", "the shell reads keys from stdin; pass source files"),
		)
	}

	src, err := openSources(ctx, r.Sources)
	if err != nil {
		return err
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return lang.ErrReadInput.Wrap(err)
	}

	vars, globals, err := r.bindings()
	if err != nil {
		return err
	}

	ktx := kongContextFrom(ctx)

	cacheDir, ok := ktx.Model.Vars()[CacheIdentifier]
	if !ok {
		panic("internal error: cache path undefined")
	}

	log.TraceContext(ctx, "starting repl",
		slog.String("cache", cacheDir),
		slog.Int("source_bytes", len(data)),
	)

	return repl.Run(ctx, string(data), repl.Options{
		SearchPath: searchPathFrom(ctx),
		CacheDir:   cacheDir,
		Vars:       vars,
		Globals:    globals,
		Locale:     r.Locale,
		Logger:     log.Default(),
	})
}
