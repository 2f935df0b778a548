package lang

import (
	"log/slog"
	"strings"
)

// evaluator is the compiled form of every expression node. Both
// arguments are passed by value so that concurrent resolutions never
// share mutable state; the guard pointer inside scope is the one
// deliberate exception, shared across a single resolution call.
type evaluator func(sc scope, cur cursor) (Value, error)

// scope carries the bindings visible to an evaluator invocation.
type scope struct {
	// locals binds macro parameter names for the current call frame.
	locals map[string]Value

	// this is the entity owning the expression, addressed by ~.
	this *Entity

	// ctx supplies entry and global lookup for the resolution.
	ctx *Context

	// vars supplies caller data addressed by $name when no local
	// parameter shadows it.
	vars Vars

	// resolve selects resolve-mode when set and yield-mode when
	// clear. Selector literals return values in resolve-mode and
	// thunks in yield-mode.
	resolve bool

	// guard is shared by every evaluator reached from one public
	// resolution call.
	guard *guard
}

// rootScope builds the scope for a fresh resolution rooted at this.
func rootScope(ctx *Context, vars Vars, this *Entity, limit int) scope {
	return scope{
		locals:  map[string]Value{},
		this:    this,
		ctx:     ctx,
		vars:    vars,
		resolve: true,
		guard:   newGuard(limit),
	}
}

// fresh returns a copy of sc rooted at this with empty locals. The
// guard carries over so that cycles spanning entity boundaries are
// still caught.
func (sc scope) fresh(this *Entity) scope {
	sc.locals = map[string]Value{}
	sc.this = this
	return sc
}

// withResolve returns a copy of sc with the resolve flag set to r.
func (sc scope) withResolve(r bool) scope {
	sc.resolve = r
	return sc
}

// guard protects a single resolution call against runaway evaluation.
// Interpolation nodes register themselves while their parts evaluate,
// so re-entering an active node is a cycle. The step counter bounds
// work that a cycle through external sources could otherwise extend
// indefinitely.
type guard struct {
	active map[*Node]struct{}
	steps  int
	limit  int
}

func newGuard(limit int) *guard {
	if limit <= 0 {
		limit = DefaultStepLimit
	}
	return &guard{active: map[*Node]struct{}{}, limit: limit}
}

// enter marks n active, reporting a cycle if it already is.
func (g *guard) enter(n *Node) error {
	if _, ok := g.active[n]; ok {
		return ErrCyclicReference
	}
	g.active[n] = struct{}{}
	return nil
}

// leave clears the active mark for n.
func (g *guard) leave(n *Node) { delete(g.active, n) }

// step consumes one unit of evaluation work.
func (g *guard) step() error {
	g.steps++
	if g.steps > g.limit {
		return ErrStepLimit.With(slog.Int("limit", g.limit))
	}
	return nil
}

// cursor is the immutable stream of index keys consumed by selector
// literals during one resolution. Keys are either Value (supplied by
// a caller or pushed by a property expression) or evaluator (compiled
// from an entity's index annotation, evaluated on demand).
type cursor struct {
	keys []any
	pos  int
}

// cursorOf wraps compiled index evaluators in a cursor.
func cursorOf(evals []evaluator) cursor {
	if len(evals) == 0 {
		return cursor{}
	}
	keys := make([]any, len(evals))
	for i, e := range evals {
		keys[i] = e
	}
	return cursor{keys: keys}
}

// externalCursor converts caller-supplied index keys to a cursor.
func externalCursor(index []any) cursor {
	if len(index) == 0 {
		return cursor{}
	}
	keys := make([]any, len(index))
	for i, k := range index {
		keys[i] = toValue(k)
	}
	return cursor{keys: keys}
}

func (c cursor) empty() bool { return c.pos >= len(c.keys) }

// tail returns the cursor advanced past its head. The backing slice
// is shared; it is never written after construction.
func (c cursor) tail() cursor { return cursor{keys: c.keys, pos: c.pos + 1} }

// push returns a cursor with key prepended to the remaining keys.
func (c cursor) push(key Value) cursor {
	rest := c.keys[c.pos:]
	keys := make([]any, 0, len(rest)+1)
	keys = append(keys, key)
	keys = append(keys, rest...)
	return cursor{keys: keys}
}

// pop evaluates the head key to a primitive and returns it with the
// advanced cursor.
func (c cursor) pop(sc scope) (Value, cursor, error) {
	var v Value
	var err error
	switch k := c.keys[c.pos].(type) {
	case evaluator:
		v, err = k(sc.withResolve(true), cursor{})
		if err != nil {
			return nil, cursor{}, err
		}
	case Value:
		v = k
	default:
		v = toValue(k)
	}
	v, err = prim(sc, v)
	if err != nil {
		return nil, cursor{}, err
	}
	return v, c.tail(), nil
}

// compiler translates expression nodes into evaluators. Compilation
// is a pure tree walk; all name binding happens at evaluation time
// against the caller's Context.
type compiler struct {
	opts options
}

// compile dispatches on the node kind. Unknown or structurally
// invalid nodes fail compilation rather than evaluation.
func (c *compiler) compile(n *Node) (evaluator, error) {
	if n == nil {
		return nil, ErrMalformedNode
	}
	switch n.Kind {
	case KindIdentifier:
		return c.compileIdentifier(n), nil
	case KindThis:
		return c.compileThis(n), nil
	case KindVariable:
		return c.compileVariable(n), nil
	case KindGlobal:
		return c.compileGlobal(n), nil
	case KindNumber:
		return c.compileNumber(n), nil
	case KindString:
		return c.compileString(n), nil
	case KindArray:
		return c.compileArray(n)
	case KindHash:
		return c.compileHash(n)
	case KindHashItem:
		return c.compile(n.X)
	case KindInterpolation:
		return c.compileInterpolation(n)
	case KindUnary:
		return c.compileUnary(n)
	case KindBinary:
		return c.compileBinary(n)
	case KindLogical:
		return c.compileLogical(n)
	case KindConditional:
		return c.compileConditional(n)
	case KindCall:
		return c.compileCall(n)
	case KindProperty:
		return c.compileProperty(n)
	case KindAttributeAccess:
		return c.compileAttributeAccess(n)
	default:
		return nil, ErrMalformedNode.WithPosition(n.Pos).With(
			slog.String("kind", n.Kind.String()),
		)
	}
}

// compileList compiles each node in order.
func (c *compiler) compileList(nodes []*Node) ([]evaluator, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	evals := make([]evaluator, len(nodes))
	for i, n := range nodes {
		e, err := c.compile(n)
		if err != nil {
			return nil, err
		}
		evals[i] = e
	}
	return evals, nil
}

// compileIdentifier binds the name late, against the Context of the
// resolution that reaches it.
func (c *compiler) compileIdentifier(n *Node) evaluator {
	name := n.Name
	return func(sc scope, cur cursor) (Value, error) {
		if sc.ctx != nil {
			if v, ok := sc.ctx.lookup(name); ok {
				return v, nil
			}
		}
		return Undefined{Name: name}, nil
	}
}

// compileThis returns the entity owning the enclosing resolution.
// Macro bodies have no owner, so ~ degrades to an undefined lookup
// there, same as any other unbound name.
func (c *compiler) compileThis(n *Node) evaluator {
	return func(sc scope, cur cursor) (Value, error) {
		if sc.this == nil {
			return Undefined{Name: "~"}, nil
		}
		return sc.this, nil
	}
}

// compileVariable resolves $name against locals first, then caller
// data. Locals hold macro arguments, which shadow everything else.
func (c *compiler) compileVariable(n *Node) evaluator {
	name := n.Name
	return func(sc scope, cur cursor) (Value, error) {
		if v, ok := sc.locals[name]; ok {
			return v, nil
		}
		if raw, ok := sc.vars[name]; ok {
			v := toValue(raw)
			if u, undef := v.(Undefined); undef && u.Name == "" {
				u.Name = "$" + name
				return u, nil
			}
			return v, nil
		}
		return Undefined{Name: "$" + name}, nil
	}
}

func (c *compiler) compileGlobal(n *Node) evaluator {
	name := n.Name
	return func(sc scope, cur cursor) (Value, error) {
		if sc.ctx != nil {
			if raw, ok := sc.ctx.global(name); ok {
				v := toValue(raw)
				if u, undef := v.(Undefined); undef && u.Name == "" {
					u.Name = "@" + name
					return u, nil
				}
				return v, nil
			}
		}
		return Undefined{Name: "@" + name}, nil
	}
}

func (c *compiler) compileNumber(n *Node) evaluator {
	v := Number(n.Number)
	return func(scope, cursor) (Value, error) { return v, nil }
}

func (c *compiler) compileString(n *Node) evaluator {
	v := String(n.Text)
	return func(scope, cursor) (Value, error) { return v, nil }
}

// compileArray builds a positional selector. The default branch is
// always the first element.
func (c *compiler) compileArray(n *Node) (evaluator, error) {
	if len(n.List) == 0 {
		return nil, ErrMalformedNode.WithPosition(n.Pos).With(
			slog.String("literal", "array"),
		)
	}
	elems, err := c.compileList(n.List)
	if err != nil {
		return nil, err
	}
	var self evaluator
	self = func(sc scope, cur cursor) (Value, error) {
		if !sc.resolve && cur.empty() {
			return Thunk{eval: self, sc: sc, cur: cur}, nil
		}
		branch, rest := elems[0], cur
		if !cur.empty() {
			key, tail, err := cur.pop(sc)
			if err != nil {
				return nil, err
			}
			rest = tail
			if i, ok := arrayIndex(key, len(elems)); ok {
				branch = elems[i]
			}
		}
		if sc.resolve {
			return branch(sc, rest)
		}
		return Thunk{eval: branch, sc: sc, cur: rest}, nil
	}
	return self, nil
}

// arrayIndex reports whether key selects a valid element. Fractional,
// negative, out-of-range, and falsy keys all fall back to the default.
func arrayIndex(key Value, n int) (int, bool) {
	num, ok := key.(Number)
	if !ok || !truthy(num) {
		return 0, false
	}
	i := int(num)
	if Number(i) != num || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// compileHash builds a keyed selector. Evaluation never fails on a
// missing key; the default branch absorbs it.
func (c *compiler) compileHash(n *Node) (evaluator, error) {
	if len(n.List) == 0 {
		return nil, ErrMalformedNode.WithPosition(n.Pos).With(
			slog.String("literal", "hash"),
		)
	}
	type branch struct {
		key  string
		eval evaluator
	}
	branches := make([]branch, len(n.List))
	def, marked := 0, false
	for i, item := range n.List {
		e, err := c.compile(item.X)
		if err != nil {
			return nil, err
		}
		branches[i] = branch{key: item.Name, eval: e}
		if item.Default && !marked {
			def, marked = i, true
		}
	}
	var self evaluator
	self = func(sc scope, cur cursor) (Value, error) {
		if !sc.resolve && cur.empty() {
			return Thunk{eval: self, sc: sc, cur: cur}, nil
		}
		target, rest := branches[def].eval, cur
		if !cur.empty() {
			key, tail, err := cur.pop(sc)
			if err != nil {
				return nil, err
			}
			rest = tail
			if truthy(key) {
				if name, ok := hashKey(key); ok {
					for _, b := range branches {
						if b.key == name {
							target = b.eval
							break
						}
					}
				}
			}
		}
		if sc.resolve {
			return target(sc, rest)
		}
		return Thunk{eval: target, sc: sc, cur: rest}, nil
	}
	return self, nil
}

// hashKey renders a primitive selector key as a branch name.
func hashKey(key Value) (string, bool) {
	switch k := key.(type) {
	case String:
		return string(k), true
	case Number:
		return k.String(), true
	default:
		return "", false
	}
}

// compileInterpolation concatenates its parts as text. The node
// registers with the guard for the duration so that any path of
// references leading back here fails with a cycle error instead of
// recursing forever.
func (c *compiler) compileInterpolation(n *Node) (evaluator, error) {
	parts, err := c.compileList(n.List)
	if err != nil {
		return nil, err
	}
	node, pos := n, n.Pos
	return func(sc scope, cur cursor) (Value, error) {
		if err := sc.guard.enter(node); err != nil {
			return nil, wrapEval(err, pos)
		}
		defer sc.guard.leave(node)
		psc := sc.withResolve(true)
		var sb strings.Builder
		for _, part := range parts {
			v, err := part(psc, cursor{})
			if err != nil {
				return nil, err
			}
			s, err := stringify(psc, v)
			if err != nil {
				return nil, wrapEval(err, pos)
			}
			sb.WriteString(s)
		}
		return String(sb.String()), nil
	}, nil
}

func (c *compiler) compileUnary(n *Node) (evaluator, error) {
	operand, err := c.compile(n.X)
	if err != nil {
		return nil, err
	}
	op, pos := n.Op, n.Pos
	return func(sc scope, cur cursor) (Value, error) {
		v, err := operand(sc, cursor{})
		if err != nil {
			return nil, err
		}
		if v, err = prim(sc, v); err != nil {
			return nil, err
		}
		out, err := evalUnary(op, v)
		if err != nil {
			return nil, wrapEval(err, pos)
		}
		return out, nil
	}, nil
}

func (c *compiler) compileBinary(n *Node) (evaluator, error) {
	lhs, err := c.compile(n.X)
	if err != nil {
		return nil, err
	}
	rhs, err := c.compile(n.Y)
	if err != nil {
		return nil, err
	}
	op, pos := n.Op, n.Pos
	return func(sc scope, cur cursor) (Value, error) {
		lv, err := lhs(sc, cursor{})
		if err != nil {
			return nil, err
		}
		if lv, err = prim(sc, lv); err != nil {
			return nil, err
		}
		rv, err := rhs(sc, cursor{})
		if err != nil {
			return nil, err
		}
		if rv, err = prim(sc, rv); err != nil {
			return nil, err
		}
		out, err := evalBinary(op, lv, rv)
		if err != nil {
			return nil, wrapEval(err, pos)
		}
		return out, nil
	}, nil
}

// compileLogical evaluates both operands eagerly. Short-circuiting
// would let a type error in the right operand escape detection, which
// historically masked authoring mistakes.
func (c *compiler) compileLogical(n *Node) (evaluator, error) {
	lhs, err := c.compile(n.X)
	if err != nil {
		return nil, err
	}
	rhs, err := c.compile(n.Y)
	if err != nil {
		return nil, err
	}
	op, pos := n.Op, n.Pos
	return func(sc scope, cur cursor) (Value, error) {
		lv, err := lhs(sc, cursor{})
		if err != nil {
			return nil, err
		}
		if lv, err = prim(sc, lv); err != nil {
			return nil, err
		}
		rv, err := rhs(sc, cursor{})
		if err != nil {
			return nil, err
		}
		if rv, err = prim(sc, rv); err != nil {
			return nil, err
		}
		out, err := evalLogical(op, lv, rv)
		if err != nil {
			return nil, wrapEval(err, pos)
		}
		return out, nil
	}, nil
}

// compileConditional requires a boolean test and evaluates exactly
// one branch, passing the caller's cursor through to it.
func (c *compiler) compileConditional(n *Node) (evaluator, error) {
	test, err := c.compile(n.X)
	if err != nil {
		return nil, err
	}
	cons, err := c.compile(n.Y)
	if err != nil {
		return nil, err
	}
	alt, err := c.compile(n.Z)
	if err != nil {
		return nil, err
	}
	pos := n.Pos
	return func(sc scope, cur cursor) (Value, error) {
		tv, err := test(sc, cursor{})
		if err != nil {
			return nil, err
		}
		if tv, err = prim(sc, tv); err != nil {
			return nil, err
		}
		b, ok := tv.(Bool)
		if !ok {
			return nil, ErrTypeMismatch.WithPosition(pos).With(
				slog.String("want", "bool"),
				slog.String("got", describe(tv)),
			)
		}
		if b {
			return cons(sc, cur)
		}
		return alt(sc, cur)
	}, nil
}

// compileCall invokes a macro or native function. Arguments evaluate
// eagerly left to right, unresolved, so macros receive entities and
// thunks intact.
func (c *compiler) compileCall(n *Node) (evaluator, error) {
	callee, err := c.compile(n.X)
	if err != nil {
		return nil, err
	}
	args, err := c.compileList(n.List)
	if err != nil {
		return nil, err
	}
	pos := n.Pos
	return func(sc scope, cur cursor) (Value, error) {
		cv, err := callee(sc.withResolve(false), cursor{})
		if err != nil {
			return nil, err
		}
		for {
			t, ok := cv.(Thunk)
			if !ok {
				break
			}
			if err := sc.guard.step(); err != nil {
				return nil, wrapEval(err, pos)
			}
			if cv, err = t.force(); err != nil {
				return nil, err
			}
		}
		vals := make([]Value, len(args))
		for i, arg := range args {
			av, err := arg(sc.withResolve(false), cursor{})
			if err != nil {
				return nil, err
			}
			vals[i] = av
		}
		switch fn := cv.(type) {
		case *Macro:
			out, err := fn.invoke(sc, vals)
			if err != nil {
				return nil, wrapEval(err, pos)
			}
			return out, nil
		case Native:
			out, err := callNative(sc, fn, vals)
			if err != nil {
				return nil, wrapEval(err, pos)
			}
			return out, nil
		default:
			return nil, ErrNotCallable.WithPosition(pos).With(
				slog.String("got", describe(cv)),
			)
		}
	}, nil
}

// callNative drives each argument to a primitive before handing it
// to the host function.
func callNative(sc scope, fn Native, args []Value) (Value, error) {
	vals := make([]Value, len(args))
	for i, a := range args {
		v, err := prim(sc, a)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return fn(vals)
}

// compileProperty pushes the member key onto the cursor of the base
// value. The base stays in yield-mode so that chains like a.b.c walk
// one member per step.
func (c *compiler) compileProperty(n *Node) (evaluator, error) {
	base, err := c.compile(n.X)
	if err != nil {
		return nil, err
	}
	member, err := c.compileMember(n.Y)
	if err != nil {
		return nil, err
	}
	pos := n.Pos
	return func(sc scope, cur cursor) (Value, error) {
		key, err := member(sc)
		if err != nil {
			return nil, err
		}
		bv, err := base(sc.withResolve(false), cursor{})
		if err != nil {
			return nil, err
		}
		switch b := bv.(type) {
		case *Entity:
			return b.yieldValue(sc, cursor{}.push(key))
		case AttributeRef:
			return b.yield(sc, cursor{}.push(key))
		case Thunk:
			if err := sc.guard.step(); err != nil {
				return nil, wrapEval(err, pos)
			}
			return b.invoke(key)
		case Undefined:
			return nil, ErrTypeMismatch.WithPosition(pos).With(
				slog.String("symbol", b.Name),
				slog.String("op", "."),
			)
		default:
			return nil, ErrTypeMismatch.WithPosition(pos).With(
				slog.String("got", describe(bv)),
				slog.String("op", "."),
			)
		}
	}, nil
}

// compileMember resolves the member position of a property or
// attribute access. A bare identifier is a literal key; anything
// else is a computed expression driven to a primitive.
func (c *compiler) compileMember(n *Node) (func(scope) (Value, error), error) {
	if n == nil {
		return nil, ErrMalformedNode
	}
	if n.Kind == KindIdentifier {
		key := String(n.Name)
		return func(scope) (Value, error) { return key, nil }, nil
	}
	e, err := c.compile(n)
	if err != nil {
		return nil, err
	}
	return func(sc scope) (Value, error) {
		v, err := e(sc.withResolve(true), cursor{})
		if err != nil {
			return nil, err
		}
		return prim(sc, v)
	}, nil
}

// compileAttributeAccess looks up an attribute on an entity. In
// yield-mode it returns the attribute reference for further
// chaining; in resolve-mode it resolves the attribute from scratch,
// rooted at the owning entity.
func (c *compiler) compileAttributeAccess(n *Node) (evaluator, error) {
	base, err := c.compile(n.X)
	if err != nil {
		return nil, err
	}
	member, err := c.compileMember(n.Y)
	if err != nil {
		return nil, err
	}
	pos := n.Pos
	return func(sc scope, cur cursor) (Value, error) {
		key, err := member(sc)
		if err != nil {
			return nil, err
		}
		name, ok := hashKey(key)
		if !ok {
			return nil, ErrTypeMismatch.WithPosition(pos).With(
				slog.String("want", "attribute name"),
				slog.String("got", describe(key)),
			)
		}
		bv, err := base(sc.withResolve(false), cursor{})
		if err != nil {
			return nil, err
		}
		for {
			t, ok := bv.(Thunk)
			if !ok {
				break
			}
			if err := sc.guard.step(); err != nil {
				return nil, wrapEval(err, pos)
			}
			if bv, err = t.force(); err != nil {
				return nil, err
			}
		}
		owner, ok := bv.(*Entity)
		if !ok {
			return nil, ErrTypeMismatch.WithPosition(pos).With(
				slog.String("got", describe(bv)),
				slog.String("op", "::"),
			)
		}
		attr, ok := owner.attr(name)
		if !ok {
			return nil, ErrAttributeNotFound.WithPosition(pos).With(
				slog.String("entity", owner.id),
				slog.String("attribute", name),
			)
		}
		ref := AttributeRef{Attr: attr, Owner: owner}
		if !sc.resolve {
			return ref, nil
		}
		s, err := ref.resolve(sc)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	}, nil
}

// prim drives v to a primitive, resolving entity and attribute
// references to their text and forcing thunks. Each hop consumes a
// guard step.
func prim(sc scope, v Value) (Value, error) {
	for {
		switch t := v.(type) {
		case String, Number, Bool, Undefined:
			return v, nil
		case *Entity:
			if err := sc.guard.step(); err != nil {
				return nil, err
			}
			s, err := t.resolveValue(sc)
			if err != nil {
				return nil, err
			}
			return String(s), nil
		case AttributeRef:
			if err := sc.guard.step(); err != nil {
				return nil, err
			}
			s, err := t.resolve(sc)
			if err != nil {
				return nil, err
			}
			return String(s), nil
		case Thunk:
			if err := sc.guard.step(); err != nil {
				return nil, err
			}
			next, err := t.force()
			if err != nil {
				return nil, err
			}
			v = next
		default:
			return nil, ErrTypeMismatch.With(
				slog.String("want", "primitive"),
				slog.String("got", describe(v)),
			)
		}
	}
}

// stringify drives v all the way to text. Undefined and callable
// values have no text form and fail with the symbol name when one
// is known.
func stringify(sc scope, v Value) (string, error) {
	p, err := prim(sc, v)
	if err != nil {
		return "", err
	}
	switch t := p.(type) {
	case String:
		return string(t), nil
	case Number:
		return t.String(), nil
	case Bool:
		if t {
			return "true", nil
		}
		return "false", nil
	case Undefined:
		return "", ErrTypeMismatch.With(
			slog.String("want", "string"),
			slog.String("symbol", t.Name),
		)
	default:
		return "", ErrTypeMismatch.With(
			slog.String("want", "string"),
			slog.String("got", describe(p)),
		)
	}
}

// describe names a value's kind for diagnostics.
func describe(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Kind().String()
}

// wrapEval attaches a source position to an evaluation error when
// the underlying error supports it.
func wrapEval(err error, pos Position) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		if _, has := e.Position(); has {
			return e
		}
		return e.WithPosition(pos)
	}
	return WrapError(err).WithPosition(pos)
}
