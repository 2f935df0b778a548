package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestPretty_TextFormat_SingleLine(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf,
		WithPretty(true),
		WithFormat(FormatText),
		WithTimeLayout("none"))

	logger.Info("resolved entity", slog.String("id", "brandName"), slog.Int("depth", 2))

	output := strings.TrimSuffix(buf.String(), "\n")
	if strings.Contains(output, "\n") {
		t.Errorf("expected single-line output, got: %q", output)
	}
	for _, want := range []string{"level=INFO", "msg=resolved entity", "id=brandName", "depth=2"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %q", want, output)
		}
	}
}

func TestPretty_JSONFormat_MultiLine(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf,
		WithPretty(true),
		WithFormat(FormatJSON),
		WithTimeLayout("none"))

	logger.Warn("duplicate entry", slog.String("id", "greeting"))

	output := buf.String()
	if !strings.HasPrefix(output, "{\n") || !strings.Contains(output, "\n}\n") {
		t.Errorf("expected multi-line object output, got: %q", output)
	}
	for _, want := range []string{"level: WARN", "msg: duplicate entry", "id: greeting"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %q", want, output)
		}
	}
}

func TestPretty_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf,
		WithPretty(true),
		WithFormat(FormatText),
		WithLevel(LevelTrace),
		WithTimeLayout("none"))

	logger.Trace("deep dive")

	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("expected TRACE label, got: %q", buf.String())
	}
}

func TestPretty_TimeLayoutApplies(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf,
		WithPretty(true),
		WithFormat(FormatText),
		WithTimeLayout("2006/01/02"))

	logger.Info("stamped")

	want := "time=" + time.Now().Format("2006/01/02")
	if !strings.Contains(buf.String(), want) {
		t.Errorf("expected output to contain %q, got: %q", want, buf.String())
	}
}

func TestPretty_WithAttrsPersist(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf,
		WithPretty(true),
		WithFormat(FormatText),
		WithTimeLayout("none")).
		With(slog.String("component", "resolver"))

	logger.Info("first")
	logger.Info("second")

	if got := strings.Count(buf.String(), "component=resolver"); got != 2 {
		t.Errorf("expected attribute on both records, found %d occurrences", got)
	}
}

func TestPretty_GroupQualifiesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf,
		WithPretty(true),
		WithFormat(FormatText),
		WithTimeLayout("none"))

	logger.Info("grouped", slog.Group("cache", slog.Int("hits", 7), slog.Int("misses", 1)))

	output := buf.String()
	for _, want := range []string{"cache.hits=7", "cache.misses=1"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %q", want, output)
		}
	}
}

func TestPretty_ValueKinds(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf,
		WithPretty(true),
		WithFormat(FormatText),
		WithTimeLayout("none"))

	logger.Info("kinds",
		slog.Bool("ok", true),
		slog.Bool("bad", false),
		slog.Float64("ratio", 0.5),
		slog.Duration("took", 250*time.Millisecond),
		slog.Any("none", nil))

	output := buf.String()
	for _, want := range []string{"ok=true", "bad=false", "ratio=0.5", "took=250ms", "none=null"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %q", want, output)
		}
	}
}
