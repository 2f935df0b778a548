package lang

import (
	"errors"
	"testing"
)

func TestEvalUnary(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		operand Value
		want    Value
		wantErr error
	}{
		{"negate", "-", Number(4), Number(-4), nil},
		{"identity", "+", Number(4), Number(4), nil},
		{"not true", "!", Bool(true), Bool(false), nil},
		{"not false", "!", Bool(false), Bool(true), nil},
		{"negate string", "-", String("x"), nil, ErrTypeMismatch},
		{"not number", "!", Number(1), nil, ErrTypeMismatch},
		{"not undefined", "!", Undefined{Name: "$x"}, nil, ErrTypeMismatch},
		{"unknown op", "?", Number(1), nil, ErrMalformedNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalUnary(tt.op, tt.operand)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("evalUnary() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("evalUnary() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("evalUnary() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvalBinary(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		l, r    Value
		want    Value
		wantErr error
	}{
		{"add numbers", "+", Number(2), Number(3), Number(5), nil},
		{"add strings", "+", String("a"), String("b"), String("ab"), nil},
		{"subtract", "-", Number(2), Number(3), Number(-1), nil},
		{"multiply", "*", Number(2), Number(3), Number(6), nil},
		{"divide", "/", Number(10), Number(4), Number(2.5), nil},
		{"modulo", "%", Number(7), Number(3), Number(1), nil},
		{"equal numbers", "==", Number(2), Number(2), Bool(true), nil},
		{"equal strings", "==", String("a"), String("a"), Bool(true), nil},
		{"equal bools", "==", Bool(true), Bool(false), Bool(false), nil},
		{"not equal", "!=", Number(2), Number(3), Bool(true), nil},
		{"less", "<", Number(1), Number(2), Bool(true), nil},
		{"less equal", "<=", Number(2), Number(2), Bool(true), nil},
		{"greater", ">", Number(1), Number(2), Bool(false), nil},
		{"greater equal", ">=", Number(2), Number(2), Bool(true), nil},
		{"add mixed", "+", Number(1), String("a"), nil, ErrTypeMismatch},
		{"subtract strings", "-", String("a"), String("b"), nil, ErrTypeMismatch},
		{"equal mixed", "==", Number(1), String("1"), nil, ErrTypeMismatch},
		{"order strings", "<", String("a"), String("b"), nil, ErrTypeMismatch},
		{"equal undefined", "==", Undefined{}, Undefined{}, nil, ErrTypeMismatch},
		{"unknown op", "^", Number(1), Number(2), nil, ErrMalformedNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalBinary(tt.op, tt.l, tt.r)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("evalBinary() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("evalBinary() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("evalBinary() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvalLogical(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		l, r    Value
		want    Value
		wantErr error
	}{
		{"and true", "&&", Bool(true), Bool(true), Bool(true), nil},
		{"and false", "&&", Bool(true), Bool(false), Bool(false), nil},
		{"or false", "||", Bool(false), Bool(false), Bool(false), nil},
		{"or true", "||", Bool(false), Bool(true), Bool(true), nil},
		{"left number", "&&", Number(1), Bool(true), nil, ErrTypeMismatch},
		{"right string", "||", Bool(true), String("t"), nil, ErrTypeMismatch},
		{"unknown op", "^^", Bool(true), Bool(true), nil, ErrMalformedNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalLogical(tt.op, tt.l, tt.r)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("evalLogical() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("evalLogical() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("evalLogical() = %v, want %v", got, tt.want)
			}
		})
	}
}
