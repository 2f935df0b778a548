package lang

import "strconv"

// ValueKind discriminates the variants of [Value].
type ValueKind int

const (
	// ValueInvalid is the zero ValueKind and matches no valid value.
	ValueInvalid ValueKind = iota

	// ValueUndefined marks a lookup that found no binding.
	ValueUndefined

	// ValueString is a plain string.
	ValueString

	// ValueNumber is a numeric value.
	ValueNumber

	// ValueBool is a boolean value.
	ValueBool

	// ValueEntity references a compiled entity.
	ValueEntity

	// ValueAttribute references a compiled attribute and its owning entity.
	ValueAttribute

	// ValueMacro references a compiled macro or a native callable.
	ValueMacro

	// ValueThunk is a selected but not yet evaluated selector branch.
	ValueThunk
)

// String returns a string representation of the value kind.
func (k ValueKind) String() string {
	switch k {
	case ValueUndefined:
		return "Undefined"

	case ValueString:
		return "String"

	case ValueNumber:
		return "Number"

	case ValueBool:
		return "Bool"

	case ValueEntity:
		return "Entity"

	case ValueAttribute:
		return "Attribute"

	case ValueMacro:
		return "Macro"

	case ValueThunk:
		return "Thunk"

	default:
		return "Invalid"
	}
}

// Value is the result of evaluating a compiled expression.
//
// The variant set is closed: String, Number, Bool, Undefined, *Entity,
// AttributeRef, *Macro, Native, and Thunk implement it. Callers switch on
// the concrete type or on [Value.Kind].
type Value interface {
	Kind() ValueKind
}

// String is a plain string value.
type String string

// Kind implements [Value].
func (String) Kind() ValueKind { return ValueString }

// Number is a numeric value.
// All numbers in the language are IEEE 754 doubles.
type Number float64

// Kind implements [Value].
func (Number) Kind() ValueKind { return ValueNumber }

// String formats the number without trailing zeros.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Bool is a boolean value.
type Bool bool

// Kind implements [Value].
func (Bool) Kind() ValueKind { return ValueBool }

// Undefined marks a lookup that found no binding.
// Name records the symbol that was looked up, when known, so errors raised
// by a later use can identify it.
type Undefined struct {
	Name string
}

// Kind implements [Value].
func (Undefined) Kind() ValueKind { return ValueUndefined }

// AttributeRef is a reference to an attribute together with the entity that
// owns it. Attributes never store their owner, so the reference carries it.
type AttributeRef struct {
	Attr  *Attribute
	Owner *Entity
}

// Kind implements [Value].
func (AttributeRef) Kind() ValueKind { return ValueAttribute }

// Thunk is a selector branch that was picked but not evaluated.
// It captures the bindings in effect at selection time, so forcing it later
// observes the same variables the branch would have seen eagerly.
type Thunk struct {
	eval evaluator
	sc   scope
	cur  cursor
}

// Kind implements [Value].
func (Thunk) Kind() ValueKind { return ValueThunk }

// force evaluates the deferred branch to completion.
func (t Thunk) force() (Value, error) {
	sc := t.sc
	sc.resolve = true

	return t.eval(sc, t.cur)
}

// invoke evaluates the deferred branch with the given key pushed onto the
// front of its captured cursor, preserving the capture's resolve mode.
func (t Thunk) invoke(key Value) (Value, error) {
	return t.eval(t.sc, t.cur.push(key))
}

// toValue converts a caller-supplied Go value into a [Value].
// Unsupported types convert to [Undefined].
func toValue(v any) Value {
	switch t := v.(type) {
	case Value:
		return t

	case string:
		return String(t)

	case bool:
		return Bool(t)

	case int:
		return Number(t)

	case int8:
		return Number(t)

	case int16:
		return Number(t)

	case int32:
		return Number(t)

	case int64:
		return Number(t)

	case uint:
		return Number(t)

	case uint8:
		return Number(t)

	case uint16:
		return Number(t)

	case uint32:
		return Number(t)

	case uint64:
		return Number(t)

	case float32:
		return Number(t)

	case float64:
		return Number(t)

	case nil:
		return Undefined{}

	default:
		return Undefined{}
	}
}

// truthy reports whether a value selects a branch or passes a fallback test.
// Undefined and Invalid are always falsy; strings are falsy when empty;
// numbers are falsy at zero.
func truthy(v Value) bool {
	switch t := v.(type) {
	case Bool:
		return bool(t)

	case Number:
		return t != 0

	case String:
		return t != ""

	case Undefined:
		return false

	case nil:
		return false

	default:
		return true
	}
}
