package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/lent/lang"
)

// Get resolves an entity from the compiled sources and prints it.
type Get struct {
	Name    string   `arg:"" help:"Entity identifier to resolve"    name:"name"`
	Sources []string `arg:"" help:"Source file(s) or '-' for stdin" name:"sources" optional:""`

	Attr          string   `help:"Resolve the named attribute instead of the value"    name:"attr"           short:"a"`
	AllAttributes bool     `help:"Resolve the value and every attribute"               name:"all-attributes" short:"A"`
	Index         []string `help:"Index key overriding the default index (repeatable)" name:"index"          short:"x"`

	bindFlags `embed:""`
}

// maxSuggestions bounds the did-you-mean list on unknown identifiers.
const maxSuggestions = 3

// Run executes the get command.
func (g *Get) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	res, err := compileSources(ctx, g.Sources)
	if err != nil {
		return err
	}

	vars, lookup, err := g.resolution(res)
	if err != nil {
		return err
	}

	ent, ok := res.Entity(g.Name)
	if !ok {
		if _, isMacro := res.Macro(g.Name); isMacro {
			return ErrEntityNotFound.With(
				slog.String("entity", g.Name),
				slog.String("hint", "identifier names a macro; call it from the repl"),
			)
		}

		return notFound(res, g.Name)
	}

	index := parseKeys(g.Index)

	switch {
	case g.AllAttributes:
		snap, err := ent.GetEntity(lookup, vars)
		if err != nil {
			return lang.WrapError(err).
				With(
					slog.String("command", "get"),
					slog.String("entity", g.Name),
				)
		}

		if ent.HasValue() {
			fmt.Println(snap.Value)
		}

		// Attributes print in declaration order.
		for attr := range ent.Attributes() {
			if attr.Local() {
				continue
			}

			fmt.Printf("%s: %s\n", attr.ID(), snap.Attributes[attr.ID()])
		}

	case g.Attr != "":
		s, err := ent.GetAttribute(lookup, vars, g.Attr, index...)
		if err != nil {
			return lang.WrapError(err).
				With(
					slog.String("command", "get"),
					slog.String("entity", g.Name),
					slog.String("attribute", g.Attr),
				)
		}

		fmt.Println(s)

	default:
		s, err := ent.Get(lookup, vars, index...)
		if err != nil {
			return lang.WrapError(err).
				With(
					slog.String("command", "get"),
					slog.String("entity", g.Name),
				)
		}

		fmt.Println(s)
	}

	return nil
}

// parseBindings converts name=expression pairs into typed values.
// The expression side evaluates with expr on an empty environment, so
// count=3 binds a number and label='"x"' binds a string. An expression
// that fails to evaluate binds as its literal text.
func parseBindings(pairs []string) (lang.Vars, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	vars := make(lang.Vars, len(pairs))

	for _, pair := range pairs {
		name, src, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, ErrParseBinding.With(slog.String("binding", pair))
		}

		out, err := expr.Eval(src, nil)
		if err != nil {
			// Bare words bind as literal strings.
			vars[name] = src

			continue
		}

		vars[name] = out
	}

	return vars, nil
}

// parseKeys converts index flags into cursor keys. Numeric expressions
// index arrays; anything else keys hashes by name.
func parseKeys(keys []string) []any {
	if len(keys) == 0 {
		return nil
	}

	out := make([]any, len(keys))

	for i, key := range keys {
		v, err := expr.Eval(key, nil)
		if err != nil {
			out[i] = key

			continue
		}

		out[i] = v
	}

	return out
}

// notFound builds an entity-not-found error carrying fuzzy-ranked
// suggestions drawn from the resource's identifiers.
func notFound(res *lang.Resource, name string) error {
	ids := make([]string, 0, res.Len())
	for id := range res.Entries() {
		ids = append(ids, id)
	}

	e := ErrEntityNotFound.With(slog.String("entity", name))

	matches := fuzzy.Find(name, ids)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}

	if len(matches) > 0 {
		suggest := make([]string, len(matches))
		for i, m := range matches {
			suggest[i] = m.Str
		}

		e = e.With(slog.String("suggest", strings.Join(suggest, ", ")))
	}

	return e
}
