package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/fns/cli/cmd"
	"github.com/ardnew/fns/log"
	"github.com/ardnew/fns/pkg"
)

// TestMain points the per-user directories at a scratch tree before they
// are first resolved.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "fns-cli-*")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Setenv("HOME", dir)
	os.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	os.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	code := m.Run()

	os.RemoveAll(dir)
	os.Exit(code)
}

type exitCode int

// execute runs the CLI with args and stdin and returns what it wrote to
// standard output. An early exit, as for --version, is returned as code.
func execute(t *testing.T, stdin string, args ...string) (out string, code int, err error) {
	t.Helper()

	saved := log.Default()
	t.Cleanup(func() { log.SetDefault(saved) })

	var stdout, stderr bytes.Buffer

	code = -1

	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}

			out, code = stdout.String(), int(c)
		}
	}()

	ctx := cmd.WithStdin(t.Context(), strings.NewReader(stdin))
	err = run(ctx, func(c int) { panic(exitCode(c)) }, args,
		kong.Writers(&stdout, &stderr))

	return stdout.String(), code, err
}

func writeConfig(t *testing.T, source string) {
	t.Helper()

	path := configPath(baseConfig)
	if err := os.WriteFile(path, []byte(source), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { os.Remove(path) })
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"default run", "let x = 2\nx * 21", nil, "42\n"},
		{"run stdin", "1 + 2 - 3 * 4 / 4 + (6 - 7)", []string{"run", "-"}, "-1\n"},
		{"eval", "", []string{"eval", "1 + 2 * 3"}, "7\n"},
		{"eval string", "", []string{"eval", `"a" + "b"`}, "ab\n"},
		{"eval json", "", []string{"eval", "-o", "json", "-i", "0", `{a: 1, b: "x"}`}, `{"a":1,"b":"x"}`},
		{"eval yaml", "", []string{"eval", "--output=yaml", `{a: 1}`}, "a: 1"},
		{"define", "", []string{"eval", "-D", "n=2+3", "n * 2"}, "10\n"},
		{"no builtins", "", []string{"eval", "--no-builtins", "let math = 1\nmath"}, "1\n"},
		{"fmt", "1 + 2 * 3", []string{"fmt"}, "(1 + (2 * 3))\n"},
		{"fmt native", "let a = -b.c", []string{"fmt", "native", "-"}, "let a = (-b.c)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("run(%q) error = %v", tt.args, err)
			}

			if strings.TrimSpace(out) != strings.TrimSpace(tt.want) {
				t.Errorf("run(%q) = %q, want %q", tt.args, out, tt.want)
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	_, _, err := execute(t, "", "eval", "1 +")

	var srcErr *cmd.SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("error = %v, want *cmd.SourceError", err)
	}

	if !strings.Contains(srcErr.Report(), "line 1") {
		t.Errorf("Report() = %q", srcErr.Report())
	}

	if _, _, err := execute(t, "", "eval", "-o", "xml", "1"); err == nil {
		t.Error("invalid --output accepted")
	}
}

func TestVersion(t *testing.T) {
	out, code, _ := execute(t, "", "--version")

	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}

	if !strings.Contains(out, pkg.Version) {
		t.Errorf("version output = %q", out)
	}
}

func TestConfigFile(t *testing.T) {
	writeConfig(t, "const output = \"json\"\nconst indent = 0\n")

	out, _, err := execute(t, "", "eval", "{k: true}")
	if err != nil {
		t.Fatal(err)
	}

	if strings.TrimSpace(out) != `{"k":true}` {
		t.Errorf("output = %q", out)
	}

	// Flags override the configuration.
	out, _, err = execute(t, "", "eval", "-o", "native", "{k: true}")
	if err != nil {
		t.Fatal(err)
	}

	if strings.TrimSpace(out) != "{ k: true }" {
		t.Errorf("output = %q", out)
	}
}

func TestBrokenConfigIgnored(t *testing.T) {
	writeConfig(t, "let = ")

	out, _, err := execute(t, "", "eval", "2")
	if err != nil || out != "2\n" {
		t.Errorf("run = %q, %v", out, err)
	}
}

func TestInit(t *testing.T) {
	path := configPath(baseConfig)
	t.Cleanup(func() { os.Remove(path) })

	if _, _, err := execute(t, "", "init"); err != nil {
		t.Fatalf("init error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		`const log_level = "warn"`,
		`const log_pretty = true`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config missing %q:\n%s", want, data)
		}
	}

	if strings.Contains(string(data), "version") {
		t.Errorf("config contains the version flag:\n%s", data)
	}

	// The written file is itself a valid configuration.
	if _, err := evaluateConfig(t.Context(), string(data)); err != nil {
		t.Errorf("generated config does not evaluate: %v", err)
	}

	if _, _, err := execute(t, "", "init"); !errors.Is(err, cmd.ErrFileExists) {
		t.Errorf("second init error = %v, want %v", err, cmd.ErrFileExists)
	}

	if _, _, err := execute(t, "", "init", "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}
