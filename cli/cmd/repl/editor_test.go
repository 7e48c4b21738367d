package repl

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	tests := map[string]bool{
		"\n":     true,
		"y\n":    true,
		"Yes\n":  true,
		"n\n":    false,
		" NO \n": false,
		"":       false,
	}

	for input, want := range tests {
		if got := confirm(strings.NewReader(input)); got != want {
			t.Errorf("confirm(%q) = %v, want %v", input, got, want)
		}
	}
}

// newEditCommand returns an editCommand that runs editor with the given
// answers on standard input. Stdin is a file so that the editor process
// inherits it instead of draining a pipe.
func newEditCommand(t *testing.T, editor, source, stdin string) *editCommand {
	t.Helper()

	if _, err := exec.LookPath(editor); err != nil {
		t.Skipf("%s not available: %v", editor, err)
	}

	t.Setenv("EDITOR", editor)

	path := filepath.Join(t.TempDir(), "stdin")
	if err := os.WriteFile(path, []byte(stdin), 0o600); err != nil {
		t.Fatal(err)
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { in.Close() })

	ctx := t.Context()

	return &editCommand{
		ctxFunc: func() context.Context { return ctx },
		source:  source,
		stdin:   in,
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
	}
}

func TestEditCommand(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		c := newEditCommand(t, "true", "let a = 1\na + 1\n", "")

		if err := c.Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if c.prog == nil || len(c.prog.Statements) != 2 {
			t.Errorf("prog = %v", c.prog)
		}
	})

	t.Run("empty", func(t *testing.T) {
		c := newEditCommand(t, "true", "  \n", "")

		if err := c.Run(); err != nil || c.prog != nil {
			t.Errorf("Run() = %v, prog = %v", err, c.prog)
		}
	})

	t.Run("declined", func(t *testing.T) {
		c := newEditCommand(t, "true", "let = 1", "n\n")

		if err := c.Run(); !errors.Is(err, ErrEditDeclined) {
			t.Errorf("Run() error = %v, want %v", err, ErrEditDeclined)
		}

		if !strings.Contains(c.stderr.(*bytes.Buffer).String(), "line 1") {
			t.Errorf("parse error not reported: %q", c.stderr)
		}
	})

	t.Run("editor fails", func(t *testing.T) {
		c := newEditCommand(t, "false", "1", "")

		if err := c.Run(); err == nil {
			t.Error("Run() succeeded with a failing editor")
		}
	})
}
