package cmd

import (
	"log/slog"
)

// Error is a command error carrying structured logging attributes.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error implements the error interface.
// The message is "<msg>: <err>", omitting whichever part is unset.
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

func (e *Error) Unwrap() error { return e.err }

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	attrs = append(attrs, e.attrs...)

	return slog.GroupValue(attrs...)
}

// Wrap returns a copy of e with its cause set to err.
func (e *Error) Wrap(err error) *Error {
	clone := *e
	clone.err = err

	return &clone
}

// With returns a copy of e with attrs appended to its logging attributes.
func (e *Error) With(attrs ...slog.Attr) *Error {
	merged := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	merged = append(append(merged, e.attrs...), attrs...)

	clone := *e
	clone.attrs = merged

	return &clone
}

var (
	ErrSourceNotFound = NewError("source not found")
	ErrNoSource       = NewError("no source input")
	ErrEntityNotFound = NewError("entity not found")
	ErrParseBinding   = NewError("parse binding")
	ErrWriteConfig    = NewError("write configuration file")
	ErrFileExists     = NewError("file exists (use --force to overwrite)")
)
