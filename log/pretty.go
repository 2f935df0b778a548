package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the lipgloss styles used for pretty log output.
//
// Styles are created from a renderer bound to the log writer, so color
// support is detected against the actual destination instead of os.Stdout.
// Writing to a pipe or file degrades to plain text.
type palette struct {
	key   lipgloss.Style
	msg   lipgloss.Style
	str   lipgloss.Style
	num   lipgloss.Style
	yes   lipgloss.Style
	no    lipgloss.Style
	span  lipgloss.Style
	stamp lipgloss.Style
	null  lipgloss.Style
	low   lipgloss.Style
	info  lipgloss.Style
	warn  lipgloss.Style
	fail  lipgloss.Style
}

func makePalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)

	return palette{
		key:   r.NewStyle().Foreground(lipgloss.Color("8")),
		msg:   r.NewStyle(),
		str:   r.NewStyle().Foreground(lipgloss.Color("6")),
		num:   r.NewStyle().Foreground(lipgloss.Color("3")),
		yes:   r.NewStyle().Foreground(lipgloss.Color("2")),
		no:    r.NewStyle().Foreground(lipgloss.Color("1")),
		span:  r.NewStyle().Foreground(lipgloss.Color("5")),
		stamp: r.NewStyle().Foreground(lipgloss.Color("4")),
		null:  r.NewStyle().Foreground(lipgloss.Color("8")),
		low:   r.NewStyle().Foreground(lipgloss.Color("4")),
		info:  r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("3")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// prettyHandler is a colorized slog.Handler for human consumption.
//
// The same handler backs both output formats: text renders a record as one
// line of key=value fields, and JSON renders it as an indented multi-line
// object (display-oriented, not parseable).
//
// Unlike the machine formats, field values are colored by type and keys are
// dimmed. The handler applies the configured ReplaceAttr function, so time
// layout and level names stay consistent with the standard handlers.
type prettyHandler struct {
	opts  slog.HandlerOptions
	sty   palette
	mu    *sync.Mutex
	w     io.Writer
	attrs []slog.Attr
	scope string
	json  bool
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	format Format,
) *prettyHandler {
	return &prettyHandler{
		opts: *opts,
		sty:  makePalette(w),
		mu:   &sync.Mutex{},
		w:    w,
		json: format == FormatJSON,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]string, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		if a := h.replace(slog.Time(slog.TimeKey, r.Time)); a.Key != "" {
			fields = append(fields, h.field(a.Key, h.sty.stamp.Render(a.Value.String())))
		}
	}

	// Color the level by the record severity, not the replaced value, since
	// the replacement has already collapsed it to a plain string.
	if a := h.replace(slog.Any(slog.LevelKey, r.Level)); a.Key != "" {
		fields = append(fields, h.field(a.Key, h.severity(r.Level).Render(a.Value.String())))
	}

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			loc := src.File + ":" + strconv.Itoa(src.Line)
			if a := h.replace(slog.String(slog.SourceKey, loc)); a.Key != "" {
				fields = append(fields, h.field(a.Key, h.sty.str.Render(a.Value.String())))
			}
		}
	}

	if a := h.replace(slog.String(slog.MessageKey, r.Message)); a.Key != "" {
		fields = append(fields, h.field(a.Key, h.sty.msg.Render(a.Value.String())))
	}

	for _, a := range h.attrs {
		fields = h.appendAttr(fields, "", a)
	}

	r.Attrs(func(a slog.Attr) bool {
		fields = h.appendAttr(fields, h.scope, a)

		return true
	})

	buf := new(bytes.Buffer)

	if h.json {
		buf.WriteString("{\n")
		buf.WriteString(strings.Join(fields, ",\n"))
		buf.WriteString("\n}")
	} else {
		buf.WriteString(strings.Join(fields, " "))
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// WithAttrs records the attributes under the current group scope.
// They are rendered after the built-in fields of every subsequent record.
func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := h.clone()

	for _, a := range attrs {
		a.Key = h.scope + a.Key
		n.attrs = append(n.attrs, a)
	}

	return n
}

// WithGroup qualifies subsequent attribute keys with a dotted prefix
// instead of nesting, which keeps the one-line text format flat.
func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	n := h.clone()
	n.scope += name + "."

	return n
}

func (h *prettyHandler) clone() *prettyHandler {
	n := *h
	n.attrs = append([]slog.Attr(nil), h.attrs...)

	return &n
}

// appendAttr renders one attribute into fields, flattening groups by
// qualifying member keys with the group name.
func (h *prettyHandler) appendAttr(
	fields []string,
	scope string,
	a slog.Attr,
) []string {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		sub := scope
		if a.Key != "" {
			sub += a.Key + "."
		}

		for _, g := range a.Value.Group() {
			fields = h.appendAttr(fields, sub, g)
		}

		return fields
	}

	a = h.replace(a)
	if a.Key == "" {
		return fields
	}

	return append(fields, h.field(scope+a.Key, h.renderValue(a.Value)))
}

func (h *prettyHandler) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

func (h *prettyHandler) field(key, value string) string {
	if h.json {
		return "  " + h.sty.key.Render(key) + ": " + value
	}

	return h.sty.key.Render(key) + "=" + value
}

func (h *prettyHandler) renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.sty.str.Render(v.String())

	case slog.KindInt64:
		return h.sty.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return h.sty.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return h.sty.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return h.sty.yes.Render("true")
		}

		return h.sty.no.Render("false")

	case slog.KindDuration:
		return h.sty.span.Render(v.Duration().String())

	case slog.KindTime:
		return h.sty.stamp.Render(v.Time().String())

	case slog.KindAny:
		if level, ok := v.Any().(slog.Level); ok {
			return h.severity(level).Render(level.String())
		}

		if v.Any() == nil {
			return h.sty.null.Render("null")
		}

		return h.sty.str.Render(v.String())

	default:
		return h.sty.str.Render(v.String())
	}
}

func (h *prettyHandler) severity(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return h.sty.fail
	case level >= slog.LevelWarn:
		return h.sty.warn
	case level >= slog.LevelInfo:
		return h.sty.info
	default:
		return h.sty.low
	}
}
