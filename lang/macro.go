package lang

// Macro is a compiled parametric entry. Like entities, macros are
// immutable after compilation and safe for concurrent use.
type Macro struct {
	id     string
	local  bool
	pos    Position
	params []string
	body   evaluator
	limit  int
}

// Kind implements [Value].
func (*Macro) Kind() ValueKind { return ValueMacro }

// ID returns the macro's identifier.
func (m *Macro) ID() string { return m.id }

// Local reports whether the identifier is prefixed with an
// underscore.
func (m *Macro) Local() bool { return m.local }

// Pos returns the position of the macro's definition.
func (m *Macro) Pos() Position { return m.pos }

// Params returns the parameter names in declaration order.
func (m *Macro) Params() []string {
	out := make([]string, len(m.params))
	copy(out, m.params)
	return out
}

// Call invokes the macro from Go. Arguments convert per the same
// rules as caller data and the result is driven to a primitive
// value. Missing arguments bind as undefined; extra arguments are
// ignored.
func (m *Macro) Call(ctx *Context, vars Vars, args ...any) (Value, error) {
	sc := rootScope(ctx, vars, nil, m.limit)
	vals := make([]Value, len(args))
	for i, a := range args {
		vals[i] = toValue(a)
	}
	v, err := m.invoke(sc, vals)
	if err != nil {
		return nil, err
	}
	return prim(sc, v)
}

// CallString invokes the macro and drives the result to text.
func (m *Macro) CallString(ctx *Context, vars Vars, args ...any) (string, error) {
	sc := rootScope(ctx, vars, nil, m.limit)
	vals := make([]Value, len(args))
	for i, a := range args {
		vals[i] = toValue(a)
	}
	v, err := m.invoke(sc, vals)
	if err != nil {
		return "", err
	}
	return stringify(sc, v)
}

// invoke binds positional arguments to parameter names in a fresh
// locals mapping and evaluates the body. The body never sees the
// caller's locals or this-binding; the guard carries over, and each
// invocation consumes a step so unbounded recursion terminates with
// a step limit error instead of exhausting the stack.
func (m *Macro) invoke(sc scope, args []Value) (Value, error) {
	if err := sc.guard.step(); err != nil {
		return nil, err
	}
	locals := make(map[string]Value, len(m.params))
	for i, p := range m.params {
		if i < len(args) {
			locals[p] = args[i]
		} else {
			locals[p] = Undefined{Name: "$" + p}
		}
	}
	mc := sc
	mc.locals = locals
	mc.this = nil
	mc.resolve = false
	return m.body(mc, cursor{})
}

// Native is a host function callable from expressions. Arguments
// arrive driven to primitives; implementations return a Value or an
// error that aborts the resolution.
type Native func(args []Value) (Value, error)

// Kind implements [Value].
func (Native) Kind() ValueKind { return ValueMacro }
