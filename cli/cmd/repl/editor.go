package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/lent/lang"
	"github.com/ardnew/lent/log"
)

const defaultEditor = "vi"

// sourceEditor implements [tea.ExecCommand] for the full source
// edit-compile-retry loop. It writes the current source text to a temp file,
// opens the user's editor, and recompiles the result. On compile error the
// user is prompted to re-edit; declining exits the program.
type sourceEditor struct {
	src     string
	ctxFunc func() context.Context
	newSrc  string
	newRes  *lang.Resource
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin, SetStdout, and SetStderr satisfy [tea.ExecCommand]; bubbletea
// hands the editor the terminal it suspended.
func (c *sourceEditor) SetStdin(r io.Reader) { c.stdin = r }

func (c *sourceEditor) SetStdout(w io.Writer) { c.stdout = w }

func (c *sourceEditor) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-compile-retry loop. Each pass writes the working
// text to one temp file, opens the editor on it, and compiles what comes
// back. An emptied file reads as a cancelled edit; declining a re-edit
// after a compile error returns [ErrEditQuit].
func (c *sourceEditor) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp("", "lent-repl-*.lent")
	if err != nil {
		return err
	}

	path := f.Name()
	f.Close()

	defer os.Remove(path)

	content := c.src

	for {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return err
		}

		if err := launchEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if len(data) == 0 {
			return nil
		}

		res, compileErr := compileSource(ctx, string(data), c.logger)
		c.logger.TraceContext(ctx, "edited source compiled",
			slog.Int("source_bytes", len(data)),
			slog.Bool("ok", compileErr == nil))

		if compileErr == nil {
			c.newSrc = string(data)
			c.newRes = res

			return nil
		}

		fmt.Fprintf(c.stderr, "\ncompile failed: %s\n", compileErr)
		fmt.Fprintf(c.stdout, "edit again? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditQuit
		}

		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "n", "no":
			return ErrEditQuit
		}

		// The failed text carries into the next editor pass.
		content = string(data)
	}
}

// compileSource parses and compiles source text into a resource.
func compileSource(
	ctx context.Context,
	source string,
	logger log.Logger,
) (*lang.Resource, error) {
	tree, err := lang.ParseString(ctx, source, lang.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return lang.Compile(tree, lang.WithLogger(logger))
}

// launchEditor opens path in $EDITOR, falling back to vi, and blocks until
// the editor exits.
func launchEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout, stderr io.Writer,
	path string,
) error {
	name := os.Getenv("EDITOR")
	if name == "" {
		name = defaultEditor
	}

	cmd := exec.CommandContext(ctx, name, path)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdin, stdout, stderr

	return cmd.Run()
}
