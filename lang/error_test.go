package lang

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"sentinel", ErrTypeMismatch, "type mismatch"},
		{"wrapped", ErrReadInput.Wrap(io.ErrUnexpectedEOF), "failed to read input: unexpected EOF"},
		{"foreign", WrapError(io.EOF), "EOF"},
		{"empty", &Error{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	derived := ErrTypeMismatch.
		With(slog.String("want", "bool")).
		WithPosition(Position{Line: 3, Column: 1}).
		Wrap(io.EOF)

	if !errors.Is(derived, ErrTypeMismatch) {
		t.Error("derived error does not match its sentinel")
	}

	if errors.Is(derived, ErrNotCallable) {
		t.Error("derived error matches an unrelated sentinel")
	}

	if errors.Is(derived, io.ErrUnexpectedEOF) {
		t.Error("derived error matches an unrelated foreign error")
	}
}

func TestError_Unwrap(t *testing.T) {
	err := ErrReadInput.Wrap(io.ErrUnexpectedEOF)

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("wrapped cause is not reachable through Unwrap")
	}
}

func TestError_WithIsImmutable(t *testing.T) {
	base := NewError("base")
	derived := base.With(slog.String("k", "v"))

	if n := len(base.LogValue().Group()); n != 1 {
		t.Errorf("base LogValue has %d attrs, want 1", n)
	}

	if n := len(derived.LogValue().Group()); n != 2 {
		t.Errorf("derived LogValue has %d attrs, want 2", n)
	}
}

func TestError_Position(t *testing.T) {
	if _, ok := ErrParse.Position(); ok {
		t.Error("sentinel reports a position")
	}

	pos, ok := ErrParse.WithPosition(Position{Offset: 4, Line: 2, Column: 5}).Position()
	if !ok {
		t.Fatal("derived error reports no position")
	}

	if pos.Line != 2 || pos.Column != 5 || pos.Offset != 4 {
		t.Errorf("Position() = %+v", pos)
	}
}

func TestError_LogValue(t *testing.T) {
	err := ErrStepLimit.With(slog.Int("limit", 512))

	keys := map[string]bool{}
	for _, a := range err.LogValue().Group() {
		keys[a.Key] = true
	}

	if !keys["error"] || !keys["limit"] {
		t.Errorf("LogValue() keys = %v, want error and limit", keys)
	}
}

func TestParseError_Message(t *testing.T) {
	pe := NewParseError(ErrParse, "ab\ncdef", Position{Offset: 5, Line: 2, Column: 3})

	msg := pe.Error()
	for _, want := range []string{"line 2", "column 3", "parse error", "2 | cdef"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() missing %q:\n%s", want, msg)
		}
	}

	snippet := pe.Snippet()
	lines := strings.Split(snippet, "\n")
	if len(lines) != 2 {
		t.Fatalf("Snippet() has %d lines, want 2:\n%s", len(lines), snippet)
	}

	if want := strings.Repeat(" ", 8) + "^"; lines[1] != want {
		t.Errorf("caret line = %q, want %q", lines[1], want)
	}
}

func TestParseError_SnippetOutOfRange(t *testing.T) {
	pe := NewParseError(ErrParse, "one line", Position{Line: 99, Column: 1})

	if s := pe.Snippet(); s != "" {
		t.Errorf("Snippet() = %q, want empty", s)
	}
}

func TestParseError_Unwrap(t *testing.T) {
	pe := NewParseError(ErrParse.With(slog.String("expected", "entry")), "x", Position{Line: 1, Column: 1})

	if !errors.Is(pe, ErrParse) {
		t.Error("ParseError does not unwrap to ErrParse")
	}
}
