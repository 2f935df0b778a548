package lang

import (
	"errors"
	"testing"
)

func getMacro(t *testing.T, res *Resource, id string) *Macro {
	t.Helper()

	m, ok := res.Macro(id)
	if !ok {
		t.Fatalf("macro %q not found", id)
	}

	return m
}

func TestMacroCall_Number(t *testing.T) {
	res := compileSource(t, `<add($a, $b) { $a + $b }>`)

	got, err := getMacro(t, res, "add").Call(nil, nil, 2, 3)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}

	n, ok := got.(Number)
	if !ok {
		t.Fatalf("Call() = %T, want Number", got)
	}

	if n != 5 {
		t.Errorf("Call() = %v, want 5", n)
	}
}

func TestMacroCall_String(t *testing.T) {
	res := compileSource(t, `<greet($who) { "Hello, " + $who }>`)

	got, err := getMacro(t, res, "greet").CallString(nil, nil, "Bob")
	if err != nil {
		t.Fatalf("CallString() error = %v", err)
	}

	if got != "Hello, Bob" {
		t.Errorf("CallString() = %q, want %q", got, "Hello, Bob")
	}
}

func TestMacroCall_Conditional(t *testing.T) {
	res := compileSource(t, `<plural($n) { $n == 1 ? "one" : "many" }>`)
	m := getMacro(t, res, "plural")

	one, err := m.CallString(nil, nil, 1)
	if err != nil {
		t.Fatalf("CallString(1) error = %v", err)
	}

	many, err := m.CallString(nil, nil, 7)
	if err != nil {
		t.Fatalf("CallString(7) error = %v", err)
	}

	if one != "one" || many != "many" {
		t.Errorf("got %q and %q, want %q and %q", one, many, "one", "many")
	}
}

func TestMacroCall_MissingArgs(t *testing.T) {
	res := compileSource(t, `<f($a, $b) { $b }>`)
	m := getMacro(t, res, "f")

	// An unsupplied parameter binds as undefined; only use fails.
	got, err := m.Call(nil, nil, 1)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}

	if got.Kind() != ValueUndefined {
		t.Errorf("Call() kind = %v, want ValueUndefined", got.Kind())
	}

	if _, err := m.CallString(nil, nil, 1); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("CallString() error = %v, want ErrTypeMismatch", err)
	}
}

func TestMacroCall_ExtraArgsIgnored(t *testing.T) {
	res := compileSource(t, `<first($a) { $a }>`)

	got, err := getMacro(t, res, "first").CallString(nil, nil, "x", "y", "z")
	if err != nil {
		t.Fatalf("CallString() error = %v", err)
	}

	if got != "x" {
		t.Errorf("CallString() = %q, want %q", got, "x")
	}
}

func TestMacroCall_EntityReference(t *testing.T) {
	res := compileSource(t, `
		<base "B">
		<wrap($x) { $x + base }>
	`)

	got, err := getMacro(t, res, "wrap").CallString(res.Context(nil), nil, "A")
	if err != nil {
		t.Fatalf("CallString() error = %v", err)
	}

	if got != "AB" {
		t.Errorf("CallString() = %q, want %q", got, "AB")
	}
}

func TestMacroCall_RecursionLimited(t *testing.T) {
	res := compileSource(t, `<loop($n) { loop($n) }>`, WithStepLimit(16))

	_, err := getMacro(t, res, "loop").Call(res.Context(nil), nil, 1)
	if !errors.Is(err, ErrStepLimit) {
		t.Errorf("Call() error = %v, want ErrStepLimit", err)
	}
}

func TestMacroParams_Copy(t *testing.T) {
	res := compileSource(t, `<f($a, $b) { $a }>`)
	m := getMacro(t, res, "f")

	params := m.Params()
	if len(params) != 2 || params[0] != "a" || params[1] != "b" {
		t.Fatalf("Params() = %v, want [a b]", params)
	}

	params[0] = "mutated"

	if again := m.Params(); again[0] != "a" {
		t.Errorf("Params() = %v after caller mutation, want [a b]", again)
	}
}

func TestMacro_Metadata(t *testing.T) {
	res := compileSource(t, `<_helper($x) { $x }>`)
	m := getMacro(t, res, "_helper")

	if m.ID() != "_helper" || !m.Local() {
		t.Errorf("ID=%q Local=%v", m.ID(), m.Local())
	}

	if m.Kind() != ValueMacro {
		t.Errorf("Kind() = %v, want ValueMacro", m.Kind())
	}

	if m.Pos().Line != 1 {
		t.Errorf("Pos().Line = %d, want 1", m.Pos().Line)
	}
}
