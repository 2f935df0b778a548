package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
)

// ResolveAll resolves every non-local entity under one context and
// variable set, in declaration order. Macros and local entities are
// excluded; they exist only to be referenced.
func (r *Resource) ResolveAll(ctx *Context, vars Vars) ([]*Snapshot, error) {
	snaps := make([]*Snapshot, 0, len(r.order))

	for _, id := range r.order {
		e, ok := r.entries[id].(*Entity)
		if !ok || e.local {
			continue
		}

		snap, err := e.GetEntity(ctx, vars)
		if err != nil {
			return nil, WrapError(err).
				With(slog.String("entity", id))
		}

		snaps = append(snaps, snap)
	}

	return snaps, nil
}

// Format writes resolved entries as text, one per line: the entity
// value as "id: value", then each attribute as "id::attr: value".
// Attributes keep declaration order.
func (r *Resource) Format(_ context.Context, w io.Writer, lookup *Context, vars Vars) error {
	for _, id := range r.order {
		e, ok := r.entries[id].(*Entity)
		if !ok || e.local {
			continue
		}

		if e.value != nil {
			s, err := e.Get(lookup, vars)
			if err != nil {
				return WrapError(err).
					With(slog.String("entity", id))
			}

			if _, err := fmt.Fprintf(w, "%s: %s\n", id, s); err != nil {
				return ErrFormat.Wrap(err)
			}
		}

		for _, name := range e.order {
			a := e.attrs[name]
			if a.local {
				continue
			}

			s, err := e.GetAttribute(lookup, vars, name)
			if err != nil {
				return WrapError(err).
					With(slog.String("entity", id)).
					With(slog.String("attribute", name))
			}

			if _, err := fmt.Fprintf(w, "%s::%s: %s\n", id, name, s); err != nil {
				return ErrFormat.Wrap(err)
			}
		}
	}

	return nil
}

// marshalJSON renders v indented by the given width, or compact when
// the width is zero.
func marshalJSON(v any, indent int) ([]byte, error) {
	if indent > 0 {
		return json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	}

	return json.Marshal(v)
}

// FormatJSON writes resolved entries as a JSON array of snapshots.
func (r *Resource) FormatJSON(
	_ context.Context,
	w io.Writer,
	lookup *Context,
	vars Vars,
	indent int,
) error {
	snaps, err := r.ResolveAll(lookup, vars)
	if err != nil {
		return err
	}

	data, err := marshalJSON(snaps, indent)
	if err != nil {
		return ErrFormat.Wrap(err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes resolved entries as a YAML sequence of snapshots.
func (r *Resource) FormatYAML(
	ctx context.Context,
	w io.Writer,
	lookup *Context,
	vars Vars,
	indent int,
) error {
	snaps, err := r.ResolveAll(lookup, vars)
	if err != nil {
		return err
	}

	opt := yaml.Flow(true)
	if indent > 0 {
		opt = yaml.Indent(indent)
	}

	data, err := yaml.MarshalContext(ctx, snaps, opt)
	if err != nil {
		return ErrFormat.Wrap(err)
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}

// FormatJSON writes the syntax tree as JSON to the writer, one
// object per top-level node.
func (ast *AST) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	data, err := marshalJSON(ast.Nodes, indent)
	if err != nil {
		return ErrFormat.Wrap(err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}
