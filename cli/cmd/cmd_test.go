package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/lent/lang"
)

func TestMergeSearchPath(t *testing.T) {
	tests := []struct {
		name string
		dirs []string
		env  string
		want []string
	}{
		{"empty", nil, "", nil},
		{"explicit_only", []string{"/a", "/b"}, "", []string{"/a", "/b"}},
		{"env_only", nil, "/x:/y", []string{"/x", "/y"}},
		// Explicit directories precede $LENT_PATH entries.
		{"explicit_first", []string{"/a"}, "/x", []string{"/a", "/x"}},
		{"duplicates_dropped", []string{"/a", "/x"}, "/x:/a:/b", []string{"/a", "/x", "/b"}},
		{"empties_dropped", []string{"", "/a", ""}, ":/x:", []string{"/a", "/x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(pathEnv, tt.env)

			got := mergeSearchPath(tt.dirs)
			if !slices.Equal(got, tt.want) {
				t.Errorf("mergeSearchPath(%v) = %v, want %v", tt.dirs, got, tt.want)
			}
		})
	}
}

func TestWithSearchPathRoundTrip(t *testing.T) {
	t.Setenv(pathEnv, "")

	dirs := []string{"/a", "/b"}
	ctx := WithSearchPath(context.Background(), dirs)

	if got := searchPathFrom(ctx); !slices.Equal(got, dirs) {
		t.Errorf("searchPathFrom() = %v, want %v", got, dirs)
	}

	if got := searchPathFrom(context.Background()); got != nil {
		t.Errorf("searchPathFrom(background) = %v, want nil", got)
	}
}

func TestResolveSource(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "app.lent")
	if err := os.WriteFile(path, []byte(`<brandName "Firefox">`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("stdin_passthrough", func(t *testing.T) {
		got, err := resolveSource("-", []string{dir})
		if err != nil || got != "-" {
			t.Errorf("resolveSource(-) = (%q, %v)", got, err)
		}
	})

	t.Run("path_passthrough", func(t *testing.T) {
		// Names containing a separator skip the search entirely.
		name := filepath.Join("sub", "missing.lent")

		got, err := resolveSource(name, []string{dir})
		if err != nil || got != name {
			t.Errorf("resolveSource(%q) = (%q, %v)", name, got, err)
		}
	})

	t.Run("working_directory", func(t *testing.T) {
		t.Chdir(dir)

		got, err := resolveSource("app.lent", nil)
		if err != nil || got != "app.lent" {
			t.Errorf("resolveSource(app.lent) = (%q, %v)", got, err)
		}
	})

	t.Run("search_directory", func(t *testing.T) {
		got, err := resolveSource("app.lent", []string{t.TempDir(), dir})
		if err != nil || got != path {
			t.Errorf("resolveSource(app.lent) = (%q, %v), want %q", got, err, path)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := resolveSource("missing.lent", []string{dir})
		if err == nil {
			t.Fatal("resolveSource(missing.lent) = nil, want error")
		}

		if !strings.Contains(err.Error(), "source not found") {
			t.Errorf("resolveSource(missing.lent) = %v", err)
		}
	})
}

func writeSourceFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

// swapStdin replaces os.Stdin with a pipe fed by content for the duration
// of the test.
func swapStdin(t *testing.T, content string) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}

	orig := os.Stdin
	os.Stdin = r

	t.Cleanup(func() { os.Stdin = orig })

	go func() {
		defer w.Close()

		io.WriteString(w, content)
	}()
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()

	if r == nil {
		t.Fatal("concatSources() = nil, want reader")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read sources: %v", err)
	}

	return string(data)
}

func TestConcatSources(t *testing.T) {
	dir := t.TempDir()

	first := writeSourceFile(t, dir, "first.lent", "first")
	second := writeSourceFile(t, dir, "second.lent", "second")

	t.Run("empty", func(t *testing.T) {
		if r := concatSources(nil); r != nil {
			t.Error("concatSources(nil) != nil")
		}
	})

	t.Run("single", func(t *testing.T) {
		if got := readAll(t, concatSources([]string{first})); got != "first" {
			t.Errorf("read %q, want %q", got, "first")
		}
	})

	t.Run("argument_order", func(t *testing.T) {
		got := readAll(t, concatSources([]string{first, second}))
		if got != "firstsecond" {
			t.Errorf("read %q, want %q", got, "firstsecond")
		}
	})

	t.Run("repeated_path_reads_once", func(t *testing.T) {
		got := readAll(t, concatSources([]string{first, first, first}))
		if got != "first" {
			t.Errorf("read %q, want %q", got, "first")
		}
	})

	t.Run("relative_and_absolute_collapse", func(t *testing.T) {
		t.Chdir(dir)

		got := readAll(t, concatSources([]string{"first.lent", first}))
		if got != "first" {
			t.Errorf("read %q, want %q", got, "first")
		}
	})

	t.Run("symlink_collapses", func(t *testing.T) {
		link := filepath.Join(dir, "link.lent")
		if err := os.Symlink(first, link); err != nil {
			t.Fatal(err)
		}

		got := readAll(t, concatSources([]string{first, link}))
		if got != "first" {
			t.Errorf("read %q, want %q", got, "first")
		}
	})

	t.Run("unopenable_skipped", func(t *testing.T) {
		paths := []string{filepath.Join(dir, "missing.lent"), first}
		if got := readAll(t, concatSources(paths)); got != "first" {
			t.Errorf("read %q, want %q", got, "first")
		}
	})

	t.Run("nothing_opened", func(t *testing.T) {
		if r := concatSources([]string{filepath.Join(dir, "missing.lent")}); r != nil {
			t.Error("concatSources(missing only) != nil")
		}
	})
}

func TestConcatSources_StdinLast(t *testing.T) {
	file := writeSourceFile(t, t.TempDir(), "file.lent", "file")

	swapStdin(t, "stdin")

	// Stdin drains last regardless of argument order.
	got := readAll(t, concatSources([]string{"-", file}))
	if got != "filestdin" {
		t.Errorf("read %q, want %q", got, "filestdin")
	}
}

func TestConcatSources_StdinCollapses(t *testing.T) {
	swapStdin(t, "once")

	got := readAll(t, concatSources([]string{"-", "-", "-"}))
	if got != "once" {
		t.Errorf("read %q, want %q", got, "once")
	}
}

func TestOpenSourcesSearchPath(t *testing.T) {
	t.Setenv(pathEnv, "")

	dir := t.TempDir()
	writeSourceFile(t, dir, "app.lent", `<brandName "Firefox">`)

	ctx := WithSearchPath(context.Background(), []string{dir})

	src, err := openSources(ctx, []string{"app.lent"})
	if err != nil {
		t.Fatalf("openSources() = %v", err)
	}

	if got := readAll(t, src); got != `<brandName "Firefox">` {
		t.Errorf("openSources() read %q", got)
	}

	if _, err := openSources(ctx, []string{"missing.lent"}); err == nil {
		t.Error("openSources(missing.lent) = nil, want error")
	}
}

func TestCompileSources(t *testing.T) {
	t.Setenv(pathEnv, "")

	dir := t.TempDir()

	base := writeSourceFile(t, dir, "base.lent", `<brandName "Firefox">
<tagline "Take back the web">`)

	// A later source overrides an earlier definition of the same id.
	local := writeSourceFile(t, dir, "local.lent", `
<tagline "Reclama la red">`)

	res, err := compileSources(context.Background(), []string{base, local})
	if err != nil {
		t.Fatalf("compileSources() = %v", err)
	}

	if res.Len() != 2 {
		t.Errorf("Len() = %d, want 2", res.Len())
	}

	ent, ok := res.Entity("tagline")
	if !ok {
		t.Fatal("Entity(tagline) missing")
	}

	got, err := ent.Get(lookupContext(res, nil, "en"), nil)
	if err != nil {
		t.Fatalf("Get(tagline) = %v", err)
	}

	if got != "Reclama la red" {
		t.Errorf("Get(tagline) = %q, want %q", got, "Reclama la red")
	}
}

func TestBindFlagsResolution(t *testing.T) {
	res, err := lang.CompileString(
		context.Background(),
		`<greeting "Hello { $user }, it is hour { @hour }">`,
	)
	if err != nil {
		t.Fatal(err)
	}

	b := bindFlags{
		Var:    []string{`user="Ann"`},
		Global: []string{"hour=23"},
		Locale: "en",
	}

	vars, lookup, err := b.resolution(res)
	if err != nil {
		t.Fatalf("resolution() = %v", err)
	}

	ent, ok := res.Entity("greeting")
	if !ok {
		t.Fatal("Entity(greeting) missing")
	}

	got, err := ent.Get(lookup, vars)
	if err != nil {
		t.Fatalf("Get(greeting) = %v", err)
	}

	if want := "Hello Ann, it is hour 23"; got != want {
		t.Errorf("Get(greeting) = %q, want %q", got, want)
	}

	b.Var = []string{"novalue"}
	if _, _, err := b.resolution(res); err == nil {
		t.Error("resolution() with malformed binding = nil, want error")
	}
}
