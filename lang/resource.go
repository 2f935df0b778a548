package lang

import (
	"iter"
	"log/slog"
)

// Vars is caller data: per-call variable overrides addressed by
// $name in expressions. Values convert on lookup; unsupported types
// read as undefined.
type Vars map[string]any

// EntrySource supplies entries by identifier during resolution.
// [Resource], [Builtins], and [Sources] implement it.
type EntrySource interface {
	Entry(id string) (Value, bool)
}

// Context is the read-only lookup context a caller supplies to each
// resolution. The compiler never retains or mutates it; reusing one
// Context across calls and goroutines is safe as long as the caller
// does not mutate Globals concurrently.
type Context struct {
	// Entries resolves identifier references. Usually the Resource
	// being resolved, chained with [Builtins] through [Sources].
	Entries EntrySource

	// Globals resolves @name references.
	Globals map[string]any
}

// lookup resolves an identifier reference. A nil context resolves
// nothing.
func (c *Context) lookup(name string) (Value, bool) {
	if c == nil || c.Entries == nil {
		return nil, false
	}
	return c.Entries.Entry(name)
}

// global resolves an @name reference.
func (c *Context) global(name string) (any, bool) {
	if c == nil || c.Globals == nil {
		return nil, false
	}
	v, ok := c.Globals[name]
	return v, ok
}

// Builtins exposes native functions as an entry source, so
// expressions call them like macros.
type Builtins map[string]Native

// Entry implements [EntrySource].
func (b Builtins) Entry(id string) (Value, bool) {
	fn, ok := b[id]
	if !ok {
		return nil, false
	}
	return fn, true
}

// Sources chains entry sources; the first source that knows the
// identifier wins.
type Sources []EntrySource

// Entry implements [EntrySource].
func (s Sources) Entry(id string) (Value, bool) {
	for _, src := range s {
		if src == nil {
			continue
		}
		if v, ok := src.Entry(id); ok {
			return v, true
		}
	}
	return nil, false
}

// Resource is the compiled form of a syntax tree: an ordered mapping
// of identifier to entity or macro. Resources are immutable and safe
// for concurrent use.
type Resource struct {
	entries map[string]Value
	order   []string
	opts    options
}

// Entry implements [EntrySource]. Local entries are addressable here;
// only bulk exports filter them.
func (r *Resource) Entry(id string) (Value, bool) {
	v, ok := r.entries[id]
	return v, ok
}

// Entity returns the named entry when it is an entity.
func (r *Resource) Entity(id string) (*Entity, bool) {
	e, ok := r.entries[id].(*Entity)
	return e, ok
}

// Macro returns the named entry when it is a macro.
func (r *Resource) Macro(id string) (*Macro, bool) {
	m, ok := r.entries[id].(*Macro)
	return m, ok
}

// Len returns the number of distinct entries.
func (r *Resource) Len() int { return len(r.order) }

// Entries yields every entry in first-declaration order. When a
// duplicate identifier overrode an earlier definition, the entry
// yields at its first position with its last definition.
func (r *Resource) Entries() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, id := range r.order {
			if !yield(id, r.entries[id]) {
				return
			}
		}
	}
}

// Context builds a lookup context over this resource, optionally
// chained with further sources consulted after it.
func (r *Resource) Context(globals map[string]any, extra ...EntrySource) *Context {
	if len(extra) == 0 {
		return &Context{Entries: r, Globals: globals}
	}
	srcs := make(Sources, 0, len(extra)+1)
	srcs = append(srcs, r)
	srcs = append(srcs, extra...)
	return &Context{Entries: srcs, Globals: globals}
}

// Compile translates a parsed tree into a Resource. Compilation is a
// single pass over the top-level nodes: entities and macros compile
// into callable entries, comments and imports are skipped, and a
// duplicate identifier overrides the earlier definition with a
// warning.
func Compile(tree *AST, opts ...Option) (*Resource, error) {
	if tree == nil {
		return nil, ErrMalformedNode
	}
	o := applyOptions(opts...)
	c := &compiler{opts: o}
	r := &Resource{entries: map[string]Value{}, opts: o}
	for _, n := range tree.Nodes {
		switch n.Kind {
		case KindEntity:
			e, err := c.compileEntity(n)
			if err != nil {
				return nil, err
			}
			r.insert(e.id, e)
		case KindMacro:
			m, err := c.compileMacro(n)
			if err != nil {
				return nil, err
			}
			r.insert(m.id, m)
		case KindComment, KindImport:
			// Not entries. Imports are resolved by the host before
			// compilation; see AST.Imports.
		default:
			o.logger.Debug("skipping top-level node",
				slog.String("kind", n.Kind.String()),
			)
		}
	}
	return r, nil
}

func (r *Resource) insert(id string, v Value) {
	if _, dup := r.entries[id]; dup {
		r.opts.logger.Warn("duplicate identifier overrides earlier definition",
			slog.String("id", id),
		)
	} else {
		r.order = append(r.order, id)
	}
	r.entries[id] = v
}

// compileEntity builds an Entity from its definition node: the value
// evaluator, the ordered default index evaluators, and each
// attribute definition as an owned Attribute.
func (c *compiler) compileEntity(n *Node) (*Entity, error) {
	e := &Entity{
		id:    n.Name,
		local: n.Local,
		pos:   n.Pos,
		attrs: map[string]*Attribute{},
		limit: c.opts.stepLimit,
	}
	if n.X != nil {
		value, err := c.compile(n.X)
		if err != nil {
			return nil, err
		}
		e.value = value
	}
	index, err := c.compileList(n.Index)
	if err != nil {
		return nil, err
	}
	e.index = index
	for _, an := range n.List {
		if an.Kind != KindAttributeDef {
			return nil, ErrMalformedNode.WithPosition(an.Pos).With(
				slog.String("entity", n.Name),
				slog.String("kind", an.Kind.String()),
			)
		}
		value, err := c.compile(an.X)
		if err != nil {
			return nil, err
		}
		aidx, err := c.compileList(an.Index)
		if err != nil {
			return nil, err
		}
		a := &Attribute{
			id:    an.Name,
			local: an.Local,
			pos:   an.Pos,
			value: value,
			index: aidx,
		}
		if _, dup := e.attrs[a.id]; dup {
			c.opts.logger.Warn("duplicate attribute overrides earlier definition",
				slog.String("entity", e.id),
				slog.String("attribute", a.id),
			)
		} else {
			e.order = append(e.order, a.id)
		}
		e.attrs[a.id] = a
	}
	return e, nil
}

// compileMacro builds a Macro from its definition node: the ordered
// parameter names and the body evaluator.
func (c *compiler) compileMacro(n *Node) (*Macro, error) {
	body, err := c.compile(n.X)
	if err != nil {
		return nil, err
	}
	params := make([]string, len(n.Params))
	copy(params, n.Params)
	return &Macro{
		id:     n.Name,
		local:  n.Local,
		pos:    n.Pos,
		params: params,
		body:   body,
		limit:  c.opts.stepLimit,
	}, nil
}
