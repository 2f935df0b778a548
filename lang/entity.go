package lang

import (
	"iter"
	"log/slog"
)

// Entity is a compiled, callable localization entry. Entities are
// immutable after compilation and safe for concurrent use; every
// resolution call builds its own scope and guard, and the caller
// supplies context and variables per call.
type Entity struct {
	id    string
	local bool
	pos   Position
	value evaluator
	index []evaluator
	attrs map[string]*Attribute
	order []string
	limit int
}

// Kind implements [Value].
func (*Entity) Kind() ValueKind { return ValueEntity }

// ID returns the entity's identifier.
func (e *Entity) ID() string { return e.id }

// Local reports whether the identifier is prefixed with an
// underscore. Local entities resolve normally but are omitted from
// bulk exports.
func (e *Entity) Local() bool { return e.local }

// Pos returns the position of the entity's definition.
func (e *Entity) Pos() Position { return e.pos }

// HasValue reports whether the entity declares a value. Entities
// without one exist to carry attributes.
func (e *Entity) HasValue() bool { return e.value != nil }

// Attributes yields the entity's attributes in declaration order.
func (e *Entity) Attributes() iter.Seq[*Attribute] {
	return func(yield func(*Attribute) bool) {
		for _, name := range e.order {
			if !yield(e.attrs[name]) {
				return
			}
		}
	}
}

// attr looks up an attribute by name, local or not.
func (e *Entity) attr(name string) (*Attribute, bool) {
	a, ok := e.attrs[name]
	return a, ok
}

// Get resolves the entity's value to a string. Index keys override
// the entity's own default index; without them, the default index
// drives selector branches. ctx may be nil when the value references
// no other entries or globals.
func (e *Entity) Get(ctx *Context, vars Vars, index ...any) (string, error) {
	sc := rootScope(ctx, vars, e, e.limit)
	return e.get(sc, index)
}

func (e *Entity) get(sc scope, index []any) (string, error) {
	if e.value == nil {
		return "", ErrTypeMismatch.WithPosition(e.pos).With(
			slog.String("entity", e.id),
			slog.String("want", "value"),
		)
	}
	cur := cursorOf(e.index)
	if len(index) > 0 {
		cur = externalCursor(index)
	}
	v, err := e.value(sc, cur)
	if err != nil {
		return "", err
	}
	return stringify(sc, v)
}

// resolveValue resolves the entity within an ongoing resolution. The
// guard carries over from sc so reference cycles spanning entities
// are detected; locals and this do not.
func (e *Entity) resolveValue(sc scope) (string, error) {
	return e.get(sc.fresh(e).withResolve(true), nil)
}

// yieldValue evaluates the entity's value in yield-mode with the
// given cursor, for property chains that select a branch without
// forcing full resolution.
func (e *Entity) yieldValue(sc scope, cur cursor) (Value, error) {
	if e.value == nil {
		return nil, ErrTypeMismatch.WithPosition(e.pos).With(
			slog.String("entity", e.id),
			slog.String("want", "value"),
		)
	}
	return e.value(sc.fresh(e).withResolve(false), cur)
}

// GetAttribute resolves the named attribute to a string. Index keys
// override the attribute's index; an attribute without one shares
// the entity's default index.
func (e *Entity) GetAttribute(ctx *Context, vars Vars, name string, index ...any) (string, error) {
	a, ok := e.attrs[name]
	if !ok {
		return "", ErrAttributeNotFound.With(
			slog.String("entity", e.id),
			slog.String("attribute", name),
		)
	}
	sc := rootScope(ctx, vars, e, e.limit)
	return a.resolve(sc, e, index)
}

// GetAttributes resolves every non-local attribute. Each attribute
// resolves independently, so one failing attribute fails the whole
// call with its own diagnostics.
func (e *Entity) GetAttributes(ctx *Context, vars Vars) (map[string]string, error) {
	out := make(map[string]string, len(e.order))
	for _, name := range e.order {
		a := e.attrs[name]
		if a.local {
			continue
		}
		sc := rootScope(ctx, vars, e, e.limit)
		s, err := a.resolve(sc, e, nil)
		if err != nil {
			return nil, err
		}
		out[name] = s
	}
	return out, nil
}

// GetEntity resolves the value and all non-local attributes into a
// composite snapshot. A valueless entity snapshots with an empty
// value rather than failing.
func (e *Entity) GetEntity(ctx *Context, vars Vars) (*Snapshot, error) {
	snap := &Snapshot{ID: e.id}
	if e.value != nil {
		s, err := e.Get(ctx, vars)
		if err != nil {
			return nil, err
		}
		snap.Value = s
	}
	attrs, err := e.GetAttributes(ctx, vars)
	if err != nil {
		return nil, err
	}
	snap.Attributes = attrs
	return snap, nil
}

// Snapshot is the fully resolved form of an entity at one point in
// time, under one context and variable set.
type Snapshot struct {
	ID         string            `json:"id" yaml:"id"`
	Value      string            `json:"value,omitempty" yaml:"value,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Attribute is a named sub-value owned by an entity. Attributes
// resolve like entity values but never appear in the top-level entry
// mapping.
type Attribute struct {
	id    string
	local bool
	pos   Position
	value evaluator
	index []evaluator
}

// ID returns the attribute's identifier.
func (a *Attribute) ID() string { return a.id }

// Local reports whether the identifier is prefixed with an
// underscore. Local attributes are omitted from bulk exports.
func (a *Attribute) Local() bool { return a.local }

// resolve drives the attribute to a string, rooted at owner.
func (a *Attribute) resolve(sc scope, owner *Entity, index []any) (string, error) {
	sv := sc.fresh(owner).withResolve(true)
	cur := cursorOf(a.index)
	if len(a.index) == 0 {
		cur = cursorOf(owner.index)
	}
	if len(index) > 0 {
		cur = externalCursor(index)
	}
	v, err := a.value(sv, cur)
	if err != nil {
		return "", err
	}
	return stringify(sv, v)
}

// yield evaluates the attribute in yield-mode for property chains.
func (a *Attribute) yield(sc scope, owner *Entity, cur cursor) (Value, error) {
	return a.value(sc.fresh(owner).withResolve(false), cur)
}

// resolve drives the referenced attribute to a string within an
// ongoing resolution, preserving the guard across the entity
// boundary.
func (r AttributeRef) resolve(sc scope) (string, error) {
	return r.Attr.resolve(sc, r.Owner, nil)
}

// yield evaluates the referenced attribute in yield-mode.
func (r AttributeRef) yield(sc scope, cur cursor) (Value, error) {
	return r.Attr.yield(sc, r.Owner, cur)
}
