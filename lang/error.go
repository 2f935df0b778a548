package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Sentinels for the error kinds the compiler and evaluator produce.
// Derive specifics with Wrap, With, and WithPosition; errors.Is matches
// derived errors back to their sentinel.
var (
	ErrMalformedNode     = NewError("malformed syntax node")
	ErrCyclicReference   = NewError("cyclic reference")
	ErrAttributeNotFound = NewError("attribute not found")
	ErrEntryNotFound     = NewError("entry not found")
	ErrTypeMismatch      = NewError("type mismatch")
	ErrStepLimit         = NewError("evaluation step limit exceeded")
	ErrNotCallable       = NewError("value is not callable")
	ErrParse             = NewError("parse error")
	ErrReadInput         = NewError("failed to read input")
	ErrFormat            = NewError("format error")
)

// Error is an error with a message, an optional cause, an optional
// source position, and slog attributes rendered through LogValue.
type Error struct {
	msg   string
	err   error
	pos   *Position
	attrs []slog.Attr
}

// NewError returns an Error holding only a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError converts err to an *Error, returning it unchanged when one
// is already in its chain.
func WrapError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{err: err}
}

// Error returns "<msg>: <cause>", omitting whichever part is unset.
func (e *Error) Error() string {
	switch {
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	default:
		return ""
	}
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is a sentinel this error was derived from.
// Derivations preserve the sentinel's message, which identifies the kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.msg == t.msg
}

// LogValue renders the error as a group of message, cause, position,
// and accumulated attributes.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.pos != nil {
		attrs = append(attrs, slog.Group("position",
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap derives a copy of the error with err as its cause.
func (e *Error) Wrap(err error) *Error {
	clone := *e
	clone.err = err

	return &clone
}

// With derives a copy of the error carrying the additional attributes.
func (e *Error) With(attrs ...slog.Attr) *Error {
	merged := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	merged = append(append(merged, e.attrs...), attrs...)

	clone := *e
	clone.attrs = merged

	return &clone
}

// WithPosition derives a copy of the error located at pos.
func (e *Error) WithPosition(pos Position) *Error {
	clone := *e
	clone.pos = &pos

	return &clone
}

// Position returns the source position attached to the error, if any.
func (e *Error) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}

	return *e.pos, true
}

// ParseError decorates a parse failure with source context.
// Its message includes the offending line and a caret marking the column.
type ParseError struct {
	Err    error    // The underlying error chain
	Source string   // The original source input
	Pos    Position // Location of the failure
}

// NewParseError wraps err with source context for display.
func NewParseError(err error, source string, pos Position) *ParseError {
	return &ParseError{
		Err:    err,
		Source: source,
		Pos:    pos,
	}
}

// Error renders the position, the cause, and the source snippet.
func (e *ParseError) Error() string {
	var buf strings.Builder

	buf.WriteString("parse error at line ")
	buf.WriteString(strconv.Itoa(e.Pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Pos.Column))

	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}

	if snippet := e.Snippet(); snippet != "" {
		buf.WriteRune('\n')
		buf.WriteString(snippet)
	}

	return buf.String()
}

// Unwrap exposes the underlying error chain.
func (e *ParseError) Unwrap() error { return e.Err }

// Snippet renders the offending source line with a caret marking the column.
// It returns an empty string if the position is outside the source.
func (e *ParseError) Snippet() string {
	lines := strings.Split(e.Source, "\n")

	if e.Pos.Line < 1 || e.Pos.Line > len(lines) {
		return ""
	}

	line := lines[e.Pos.Line-1]

	var src strings.Builder

	src.WriteString("  ")
	src.WriteString(strconv.Itoa(e.Pos.Line))
	src.WriteString(" | ")
	src.WriteString(line)
	src.WriteRune('\n')

	// The caret padding covers the two leading spaces, the line number,
	// and the " | " separator.
	padding := strings.Repeat(" ", len(strconv.Itoa(e.Pos.Line))+5)

	if e.Pos.Column > 0 {
		padding += strings.Repeat(" ", e.Pos.Column-1)
	}

	src.WriteString(padding + "^")

	return src.String()
}
