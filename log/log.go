package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Logger is a leveled, structured logger safe for concurrent use.
// The zero value is usable and discards every message.
type Logger struct {
	*slog.Logger
	config
}

// Make builds a [Logger] writing to w, configured with [DefaultFormat],
// [DefaultLevel], and [DefaultTimeLayout] unless functional options such as
// [WithFormat], [WithLevel], [WithTimeLayout], or [WithCaller] say
// otherwise.
func Make(w io.Writer, opts ...Option) Logger {
	cfg := makeConfig(w, opts...)

	return Logger{
		config: cfg,
		Logger: slog.New(cfg.handler()),
	}
}

// Wrap returns a new [Logger] whose configuration starts from the
// receiver's and applies opts on top. The receiver is not modified.
func (l Logger) Wrap(opts ...Option) Logger {
	cfg := apply(l.config, opts...)

	return Logger{
		config: cfg,
		Logger: slog.New(cfg.handler()),
	}
}

// With returns a new [Logger] stamping the given attributes onto every
// record it emits.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.Logger == nil {
		return l
	}

	return Logger{
		config: l.config,
		Logger: slog.New(l.Logger.Handler().WithAttrs(attrs)),
	}
}

// Level returns the configured minimum log level.
func (l Logger) Level() Level {
	if l.Logger == nil {
		return DefaultLevel
	}

	return l.level
}

// Format returns the configured log output format.
func (l Logger) Format() Format {
	if l.Logger == nil {
		return DefaultFormat
	}

	return l.format
}

// TraceContext logs at [LevelTrace] with ctx.
func (l Logger) TraceContext(
	ctx context.Context,
	msg string,
	attrs ...slog.Attr,
) {
	l.emit(ctx, LevelTrace, msg, attrs...)
}

// Trace logs at [LevelTrace] using the default context provider.
func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.TraceContext(DefaultContextProvider(), msg, attrs...)
}

// DebugContext logs at [LevelDebug] with ctx.
func (l Logger) DebugContext(
	ctx context.Context,
	msg string,
	attrs ...slog.Attr,
) {
	l.emit(ctx, LevelDebug, msg, attrs...)
}

// Debug logs at [LevelDebug] using the default context provider.
func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.DebugContext(DefaultContextProvider(), msg, attrs...)
}

// InfoContext logs at [LevelInfo] with ctx.
func (l Logger) InfoContext(
	ctx context.Context,
	msg string,
	attrs ...slog.Attr,
) {
	l.emit(ctx, LevelInfo, msg, attrs...)
}

// Info logs at [LevelInfo] using the default context provider.
func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.InfoContext(DefaultContextProvider(), msg, attrs...)
}

// WarnContext logs at [LevelWarn] with ctx.
func (l Logger) WarnContext(
	ctx context.Context,
	msg string,
	attrs ...slog.Attr,
) {
	l.emit(ctx, LevelWarn, msg, attrs...)
}

// Warn logs at [LevelWarn] using the default context provider.
func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.WarnContext(DefaultContextProvider(), msg, attrs...)
}

// ErrorContext logs at [LevelError] with ctx.
func (l Logger) ErrorContext(
	ctx context.Context,
	msg string,
	attrs ...slog.Attr,
) {
	l.emit(ctx, LevelError, msg, attrs...)
}

// Error logs at [LevelError] using the default context provider.
func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.ErrorContext(DefaultContextProvider(), msg, attrs...)
}

// emit writes a log record at the specified level.
//
// The caller program counter skips four frames: runtime.Callers, emit, the
// exported *Context method, and its context-unaware wrapper. Source locations
// reported with [WithCaller] therefore point at user code.
func (l Logger) emit(
	ctx context.Context,
	level Level,
	msg string,
	attrs ...slog.Attr,
) {
	if l.Logger == nil {
		return
	}

	if !l.Enabled(ctx, slog.Level(level)) {
		return
	}

	var pcs [1]uintptr

	runtime.Callers(4, pcs[:])

	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}
