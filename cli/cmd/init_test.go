package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/lent/lang"
)

// initTestContext builds a kong context whose model carries the config path
// variable, parsed over the given CLI struct and arguments.
func initTestContext(
	t *testing.T,
	cli any,
	confPath string,
	args ...string,
) context.Context {
	t.Helper()

	parser, err := kong.New(cli, kong.Vars{
		ConfigIdentifier: confPath,
		CacheIdentifier:  t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), kctx)
}

// TestInitRun tests config file creation and the overwrite guard.
func TestInitRun(t *testing.T) {
	tests := []struct {
		name     string
		force    bool
		existing bool
		wantErr  bool
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, existing: true},
		{name: "fail_without_force", existing: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "config.lent")

			if tt.existing {
				if err := os.WriteFile(confPath, []byte("existing"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			var cli struct{}
			ctx := initTestContext(t, &cli, confPath)

			err := (&Init{Force: tt.force}).Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Init.Run() error = %v, wantErr %v", err, tt.wantErr)
			}

			content, readErr := os.ReadFile(confPath)
			if readErr != nil {
				t.Fatal(readErr)
			}

			if tt.wantErr {
				// The guard must leave the original content alone.
				if string(content) != "existing" {
					t.Errorf("Init.Run() clobbered file: %q", content)
				}

				return
			}

			// The generated file must compile as a config entity.
			res, err := lang.CompileString(ctx, string(content))
			if err != nil {
				t.Fatalf("generated config does not compile: %v\n%s", err, content)
			}

			if _, ok := res.Entity(ConfigIdentifier); !ok {
				t.Errorf("generated config missing %q entity:\n%s",
					ConfigIdentifier, content)
			}
		})
	}
}

// TestInitBuildConfig tests that buildConfig renders flags as attributes.
func TestInitBuildConfig(t *testing.T) {
	var cli struct {
		Verbose bool   `help:"Enable verbose output" name:"verbose"`
		Output  string `help:"Output file"           name:"output"`
		Count   int    `help:"Number of items"       name:"count"`
		DryRun  bool   `help:"Skip writes"           name:"dry-run"`
		Secret  string `hidden:""                    name:"secret"`
	}

	ctx := initTestContext(t, &cli, filepath.Join(t.TempDir(), "config.lent"),
		"--verbose", "--output=test.txt", "--count=5", "--dry-run",
		"--secret=hush")

	initCmd := &Init{}
	text := initCmd.buildConfig(ctx)

	for _, want := range []string{
		"<" + ConfigIdentifier,
		`  verbose: "true"`,
		`  output: "test.txt"`,
		`  count: "5"`,
		// Kong flags use hyphens; identifiers use underscores.
		`  dry_run: "true"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("buildConfig() missing %q:\n%s", want, text)
		}
	}

	// Hidden and help flags never render.
	for _, reject := range []string{"secret", "help"} {
		if strings.Contains(text, reject) {
			t.Errorf("buildConfig() leaked %q:\n%s", reject, text)
		}
	}

	if _, err := lang.CompileString(ctx, text); err != nil {
		t.Errorf("buildConfig() output does not compile: %v\n%s", err, text)
	}
}

// TestInitFlagValue tests flag rendering for each supported value type.
func TestInitFlagValue(t *testing.T) {
	var cli struct {
		Bool    bool     `name:"bool"`
		Str     string   `name:"str"`
		Strs    []string `name:"strs"`
		Num     int      `name:"num"`
		Unset   string   `name:"unset"`
		Default string   `default:"fallback" name:"def"`
	}

	ctx := initTestContext(t, &cli, filepath.Join(t.TempDir(), "config.lent"),
		"--bool", "--str=value", "--strs=a", "--strs=b", "--num=42")

	ktx := kongContextFrom(ctx)

	tests := []struct {
		flag string
		want string
	}{
		{"bool", "true"},
		{"str", "value"},
		{"strs", "a,b"},
		{"num", "42"},
		// Unset flags render empty and are skipped by buildConfig.
		{"unset", ""},
		{"def", "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			for _, flag := range ktx.Model.Flags {
				if flag.Name != tt.flag {
					continue
				}

				if got := flagValue(ktx, flag); got != tt.want {
					t.Errorf("flagValue(%s) = %q, want %q", tt.flag, got, tt.want)
				}

				return
			}

			t.Fatalf("flag %q not found in model", tt.flag)
		})
	}
}

// TestInitQuoteValue tests escaping of characters the language treats
// specially.
func TestInitQuoteValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "value", `"value"`},
		{"embedded_quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		// An unescaped brace would open a placeable.
		{"brace", "a{b}", `"a\{b}"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quoteValue(tt.input)
			if got != tt.want {
				t.Fatalf("quoteValue(%q) = %s, want %s", tt.input, got, tt.want)
			}

			// Escaped output must survive a compile round trip.
			src := "<" + ConfigIdentifier + " v: " + got + ">"
			if _, err := lang.CompileString(context.Background(), src); err != nil {
				t.Errorf("quoted value does not compile: %v\n%s", err, src)
			}
		})
	}
}

// TestInitWithInvalidPath tests init with an unwritable file path.
func TestInitWithInvalidPath(t *testing.T) {
	var cli struct{}
	ctx := initTestContext(t, &cli, "/nonexistent/directory/config.lent")

	initCmd := &Init{Force: false}
	if err := initCmd.Run(ctx); err == nil {
		t.Error("Init.Run() expected error for invalid path, got nil")
	}
}
