package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/lent/lang"
	"github.com/ardnew/lent/log"
	"github.com/ardnew/lent/profile"
)

// defaultConfigIndent is the indent width of generated config attributes.
const defaultConfigIndent = 2

// Init writes a config entity to the default path, seeded from whatever
// flag values are in effect.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Refuse to clobber an existing file unless forced.
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	text := i.buildConfig(ctx)

	// The generated text must compile back into a config entity before
	// it ever reaches disk.
	if _, err := lang.CompileString(ctx, text); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	if _, err := io.WriteString(file, text); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(ctx, "config file written",
		slog.String("path", confPath))

	return nil
}

// buildConfig renders the config entity from current flag values, one
// attribute per flag.
func (i *Init) buildConfig(ctx context.Context) string {
	ktx := kongContextFrom(ctx)

	var b strings.Builder

	b.WriteString("<" + ConfigIdentifier + "\n")

	// Help and profiling flags are per-invocation, not configuration.
	skip := []string{"help", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(skip, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		val := flagValue(ktx, flag)
		if val == "" {
			continue
		}

		// Kong flags use hyphens; identifiers use underscores.
		name := strings.ReplaceAll(flag.Name, "-", "_")

		fmt.Fprintf(&b, "%*s%s: %s\n",
			defaultConfigIndent, "", name, quoteValue(val))
	}

	b.WriteString(">\n")

	return b.String()
}

// flagValue renders a flag's current value as config text, or "" if the
// flag is unset or empty.
func flagValue(ktx *kong.Context, flag *kong.Flag) string {
	val := ktx.FlagValue(flag)
	if val == nil {
		return ""
	}

	switch v := val.(type) {
	case bool:
		return strconv.FormatBool(v)

	case string:
		return v

	case []string:
		return strings.Join(v, ",")

	default:
		return fmt.Sprint(v)
	}
}

// quoteValue renders a flag value as a string literal, escaping the
// characters the language treats specially.
func quoteValue(s string) string {
	var b strings.Builder

	b.WriteByte('"')

	for _, r := range s {
		switch r {
		case '\\', '"', '{':
			b.WriteByte('\\')
		}

		b.WriteRune(r)
	}

	b.WriteByte('"')

	return b.String()
}
