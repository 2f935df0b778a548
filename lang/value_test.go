package lang

import "testing"

func TestValueKind_String(t *testing.T) {
	tests := []struct {
		kind ValueKind
		want string
	}{
		{ValueUndefined, "Undefined"},
		{ValueString, "String"},
		{ValueNumber, "Number"},
		{ValueBool, "Bool"},
		{ValueEntity, "Entity"},
		{ValueAttribute, "Attribute"},
		{ValueMacro, "Macro"},
		{ValueThunk, "Thunk"},
		{ValueInvalid, "Invalid"},
		{ValueKind(99), "Invalid"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ValueKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestToValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"string", "x", String("x")},
		{"bool", true, Bool(true)},
		{"int", 3, Number(3)},
		{"int8", int8(3), Number(3)},
		{"int64", int64(-9), Number(-9)},
		{"uint", uint(7), Number(7)},
		{"uint16", uint16(7), Number(7)},
		{"float32", float32(1.5), Number(1.5)},
		{"float64", 2.5, Number(2.5)},
		{"value passthrough", String("v"), String("v")},
		{"nil", nil, Undefined{}},
		{"unsupported", struct{}{}, Undefined{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toValue(tt.in); got != tt.want {
				t.Errorf("toValue(%v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	ent := &Entity{id: "e"}

	tests := []struct {
		name string
		in   Value
		want bool
	}{
		{"true", Bool(true), true},
		{"false", Bool(false), false},
		{"zero", Number(0), false},
		{"nonzero", Number(1), true},
		{"negative", Number(-1), true},
		{"empty string", String(""), false},
		{"string", String("x"), true},
		{"undefined", Undefined{Name: "n"}, false},
		{"nil", nil, false},
		{"entity", ent, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truthy(tt.in); got != tt.want {
				t.Errorf("truthy(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNumber_String(t *testing.T) {
	tests := []struct {
		in   Number
		want string
	}{
		{5, "5"},
		{3.14, "3.14"},
		{-0.5, "-0.5"},
		{1000000, "1000000"},
		{0, "0"},
	}

	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("Number(%v).String() = %q, want %q", float64(tt.in), got, tt.want)
		}
	}
}
