package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/lent/lang"
)

// Fmt resolves the compiled sources and renders them in the chosen format.
type Fmt struct {
	Text Text `cmd:"" default:"withargs" help:"Render as id: value lines (default)."`
	JSON JSON `cmd:""                    help:"Render as JSON."`
	YAML YAML `cmd:""                    help:"Render as YAML."`
	AST  AST  `cmd:""                    help:"Dump the parsed syntax tree as JSON."`
}

// renderResolved compiles the named sources, applies the bindings, and hands
// the result to render. Failures inside render are tagged with the output
// format.
func renderResolved(
	ctx context.Context,
	b *bindFlags,
	sources []string,
	format string,
	render func(*lang.Resource, *lang.Context, lang.Vars) error,
) error {
	res, err := compileSources(ctx, sources)
	if err != nil {
		return err
	}

	vars, lookup, err := b.resolution(res)
	if err != nil {
		return err
	}

	if err := render(res, lookup, vars); err != nil {
		return lang.WrapError(err).
			With(slog.String("format", format))
	}

	return nil
}

// Text renders every public entry as "id: value" lines, attributes as
// "id::attr: value" lines.
type Text struct {
	bindFlags `embed:""`

	Sources []string `arg:"" help:"Source file(s) or '-' for stdin" name:"sources" optional:""`
}

// Run executes the text command.
func (f *Text) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	return renderResolved(ctx, &f.bindFlags, f.Sources, "text",
		func(res *lang.Resource, lookup *lang.Context, vars lang.Vars) error {
			return res.Format(ctx, os.Stdout, lookup, vars)
		})
}

// JSON renders resolved entries as a JSON array of snapshots.
type JSON struct {
	bindFlags `embed:""`

	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Sources []string `arg:"" help:"Source file(s) or '-' for stdin" name:"sources" optional:""`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	return renderResolved(ctx, &j.bindFlags, j.Sources, "json",
		func(res *lang.Resource, lookup *lang.Context, vars lang.Vars) error {
			return res.FormatJSON(ctx, os.Stdout, lookup, vars, j.Indent)
		})
}

// YAML renders resolved entries as a YAML sequence of snapshots.
type YAML struct {
	bindFlags `embed:""`

	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Sources []string `arg:"" help:"Source file(s) or '-' for stdin" name:"sources" optional:""`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	return renderResolved(ctx, &y.bindFlags, y.Sources, "yaml",
		func(res *lang.Resource, lookup *lang.Context, vars lang.Vars) error {
			return res.FormatYAML(ctx, os.Stdout, lookup, vars, y.Indent)
		})
}

// AST dumps the parsed syntax tree as JSON without resolving anything.
type AST struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Sources []string `arg:"" help:"Source file(s) or '-' for stdin" name:"sources" optional:""`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	src, err := openSources(ctx, a.Sources)
	if err != nil {
		return err
	}

	tree, err := lang.ParseReader(ctx, src)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("format", "ast"))
	}

	return tree.FormatJSON(ctx, os.Stdout, a.Indent)
}
