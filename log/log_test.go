package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestMakeDefaults(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf)

	if got := logger.Level(); got != DefaultLevel {
		t.Errorf("Level() = %v, want %v", got, DefaultLevel)
	}

	if got := logger.Format(); got != DefaultFormat {
		t.Errorf("Format() = %v, want %v", got, DefaultFormat)
	}

	if logger.config.caller {
		t.Error("caller enabled by default")
	}
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		configure Level
		emit      func(Logger)
		want      bool
	}{
		{"debug_at_debug", LevelDebug, func(l Logger) { l.Debug("marker") }, true},
		{"info_below_error", LevelError, func(l Logger) { l.Info("marker") }, false},
		{"error_at_error", LevelError, func(l Logger) { l.Error("marker") }, true},
		{"trace_at_trace", LevelTrace, func(l Logger) { l.Trace("marker") }, true},
		{"trace_below_debug", LevelDebug, func(l Logger) { l.Trace("marker") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.emit(Make(&buf, WithLevel(tt.configure)))

			if got := strings.Contains(buf.String(), "marker"); got != tt.want {
				t.Errorf("logged = %v, want %v:\n%s", got, tt.want, buf.String())
			}
		})
	}
}

func TestTraceLevelLabel(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithLevel(LevelTrace)).Trace("trace message")

	// Trace renders with its own label, not slog's DEBUG-4 offset.
	if got := buf.String(); !strings.Contains(got, "TRACE") {
		t.Errorf("output = %q, want TRACE label", got)
	}
}

func TestTimeLayoutApplied(t *testing.T) {
	tests := []struct {
		layout   string
		contains string
	}{
		{"RFC3339", "T"},
		{"RFC3339Nano", "."},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			var buf bytes.Buffer

			Make(&buf, WithTimeLayout(tt.layout)).Info("test")

			if got := buf.String(); !strings.Contains(got, tt.contains) {
				t.Errorf("output = %q, want timestamp containing %q", got, tt.contains)
			}
		})
	}
}

func TestTimeLayoutNoneOmitsTime(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithTimeLayout("none")).Info("test")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}

	if _, ok := record[slog.TimeKey]; ok {
		t.Errorf("output = %q, want no time key", buf.String())
	}
}

func TestCallerSource(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true)).Info("test message")

	if got := buf.String(); !strings.Contains(got, "source") {
		t.Errorf("output = %q, want source attr", got)
	}

	buf.Reset()

	Make(&buf, WithCaller(false)).Info("test message")

	if got := buf.String(); strings.Contains(got, "log_test.go") {
		t.Errorf("output = %q, want no source location", got)
	}
}

func TestWrapOverridesConfig(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelError))

	logger.Wrap(WithLevel(LevelDebug)).Debug("debug message")

	if got := buf.String(); !strings.Contains(got, "debug message") {
		t.Errorf("output = %q, want wrapped logger to pass debug", got)
	}

	// The original logger keeps its configuration.
	if got := logger.Level(); got != LevelError {
		t.Errorf("Level() = %v, want %v", got, LevelError)
	}
}

func TestWithAddsAttributes(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf).With(slog.String("component", "compiler")).Info("message")

	got := buf.String()
	if !strings.Contains(got, "component") || !strings.Contains(got, "compiler") {
		t.Errorf("output = %q, want component attr", got)
	}
}

func TestZeroValueDiscards(t *testing.T) {
	var logger Logger

	// None of these may panic.
	logger.Info("dropped")
	logger.Error("dropped")

	if got := logger.Level(); got != DefaultLevel {
		t.Errorf("Level() = %v, want %v", got, DefaultLevel)
	}

	if got := logger.Format(); got != DefaultFormat {
		t.Errorf("Format() = %v, want %v", got, DefaultFormat)
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatText)).Info("text message", slog.String("key", "value"))

	if got := buf.String(); !strings.Contains(got, "key=value") {
		t.Errorf("output = %q, want key=value", got)
	}
}

func TestConcurrentUse(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf)

	// The slog handler serializes writes; this only needs to not race.
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 50 {
				logger.Info("concurrent message")
			}
		}()
	}

	wg.Wait()

	if !strings.Contains(buf.String(), "concurrent message") {
		t.Error("no concurrent messages in output")
	}
}
