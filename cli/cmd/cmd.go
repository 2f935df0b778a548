package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ardnew/mung"

	"github.com/ardnew/lent/lang"
	"github.com/ardnew/lent/plurals"
)

// contextKey carries the parsed [kong.Context] through [context.Context].
type contextKey struct{}

// WithContext stashes the kong parse context where command Run methods can
// recover it.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// searchPathKey is used to store the source search path in [context.Context].
type searchPathKey struct{}

// pathEnv is the environment variable supplying additional search
// directories, delimited like $PATH.
const pathEnv = "LENT_PATH"

// WithSearchPath returns a new context.Context containing the source search
// path formed by merging the given directories with $LENT_PATH.
func WithSearchPath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, searchPathKey{}, mergeSearchPath(dirs))
}

func searchPathFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(searchPathKey{}).([]string)

	return dirs
}

// mergeSearchPath merges explicit directories with $LENT_PATH.
// Explicit directories take precedence; empty and duplicate items are
// dropped.
func mergeSearchPath(dirs []string) []string {
	seen := make(map[string]struct{})

	merged := mung.Make(
		mung.WithSubjectItems(os.Getenv(pathEnv)),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
		mung.WithFilter(func(item string) bool {
			if item == "" {
				return false
			}

			if _, dup := seen[item]; dup {
				return false
			}

			seen[item] = struct{}{}

			return true
		}),
	).String()

	if merged == "" {
		return nil
	}

	return strings.Split(merged, string(os.PathListSeparator))
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// resolveSource locates a source file for the given name. The stdin
// indicator and any name containing a path separator pass through
// unchanged. Bare names try the working directory first, then each search
// directory in order.
func resolveSource(name string, dirs []string) (string, error) {
	if name == stdinSource || strings.ContainsRune(name, os.PathSeparator) {
		return name, nil
	}

	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", ErrSourceNotFound.With(slog.String("source", name))
}

// openSources opens the named sources as a single concatenated reader.
// Bare names resolve against the search path carried in ctx. With no
// names, stdin is assumed.
func openSources(ctx context.Context, names []string) (io.Reader, error) {
	if len(names) == 0 {
		names = []string{stdinSource}
	}

	dirs := searchPathFrom(ctx)
	paths := make([]string, 0, len(names))

	for _, name := range names {
		path, err := resolveSource(name, dirs)
		if err != nil {
			return nil, err
		}

		paths = append(paths, path)
	}

	src := concatSources(paths)
	if src == nil {
		return nil, ErrNoSource
	}

	return src, nil
}

// compileSources opens, parses, and compiles the named sources into a
// single resource. Sources concatenate in argument order, so a duplicate
// identifier in a later source overrides the earlier definition.
func compileSources(
	ctx context.Context,
	names []string,
) (*lang.Resource, error) {
	src, err := openSources(ctx, names)
	if err != nil {
		return nil, err
	}

	return lang.CompileReader(ctx, src)
}

// lookupContext chains the compiled resource with the locale's plural rule
// and the core builtins, so index and selector expressions can call
// plural(), len(), number(), and string().
func lookupContext(
	res *lang.Resource,
	globals map[string]any,
	locale string,
) *lang.Context {
	return res.Context(globals, plurals.Builtin(locale), lang.CoreBuiltins())
}

// bindFlags are the resolution bindings shared by commands that resolve
// entities.
type bindFlags struct {
	Var    []string `help:"Variable binding as name=expr (repeatable)" name:"var"    short:"v"`
	Global []string `help:"Global binding as name=expr (repeatable)"   name:"global" short:"g"`
	Locale string   `help:"Locale selecting the plural rule"           name:"locale" short:"l" default:"en" env:"LENT_LOCALE"`
}

// bindings parses the variable and global binding flags into typed maps.
func (b *bindFlags) bindings() (lang.Vars, map[string]any, error) {
	vars, err := parseBindings(b.Var)
	if err != nil {
		return nil, nil, err
	}

	globals, err := parseBindings(b.Global)
	if err != nil {
		return nil, nil, err
	}

	return vars, globals, nil
}

// resolution builds the variable set and lookup context for a compiled
// resource from the parsed binding flags.
func (b *bindFlags) resolution(
	res *lang.Resource,
) (lang.Vars, *lang.Context, error) {
	vars, globals, err := b.bindings()
	if err != nil {
		return nil, nil, err
	}

	return vars, lookupContext(res, globals, b.Locale), nil
}

// fileKey identifies a file by device and inode so duplicates collapse
// across symlinks, relative spellings, and special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// concatSources opens the given paths as one reader. Paths naming the same
// file read once, however spelled, and every "-" collapses into a single
// stdin reader placed last so it drains after the regular files. Unopenable
// paths are skipped; nil means nothing opened.
func concatSources(paths []string) io.Reader {
	if len(paths) == 0 {
		return nil
	}

	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, _ := statKey(stdinInfo)

	readers := make([]io.Reader, 0, len(paths))

	for _, path := range paths {
		if path == stdinSource {
			seen[stdinKey] = struct{}{}

			continue
		}

		if f, ok := openUnseen(path, seen); ok {
			readers = append(readers, f)
		}
	}

	// Stdin may have entered via "-" or as a named device file.
	if _, ok := seen[stdinKey]; ok {
		readers = append(readers, os.Stdin)
	}

	if len(readers) == 0 {
		return nil
	}

	return io.MultiReader(readers...)
}

// openUnseen opens the file at path unless its device/inode pair was
// already seen. Absolute resolution and symlink evaluation ensure every
// spelling of the same file maps to the same key.
func openUnseen(path string, seen map[fileKey]struct{}) (io.Reader, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, false
	}

	key, ok := statKey(info)
	if !ok {
		return nil, false
	}

	if _, dup := seen[key]; dup {
		return nil, false
	}

	seen[key] = struct{}{}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, false
	}

	return f, true
}

// statKey derives a fileKey from stat info. It reports false when info is
// nil or the platform data is not a *syscall.Stat_t.
func statKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: stat.Dev, ino: stat.Ino}, true
}
