package cli

import (
	"maps"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestEvaluateConfig(t *testing.T) {
	source := `
const log_level = "debug"
let log = { caller: true, time_layout: "none" }
let indent = 2 * 2
let ratio = 0.5
let skip = none
let empty = {}
`

	got, err := evaluateConfig(t.Context(), source)
	if err != nil {
		t.Fatalf("evaluateConfig() error = %v", err)
	}

	want := config{
		"log-level":       "debug",
		"log-caller":      true,
		"log-time-layout": "none",
		"indent":          "4",
		"ratio":           "0.5",
	}

	if !maps.Equal(got, want) {
		t.Errorf("evaluateConfig() = %v, want %v", got, want)
	}
}

func TestEvaluateConfigErrors(t *testing.T) {
	for _, source := range []string{
		"let = 1",
		"undefined + 1",
		"const a = 1\na = 2",
	} {
		if _, err := evaluateConfig(t.Context(), source); err == nil {
			t.Errorf("evaluateConfig(%q) succeeded", source)
		}
	}
}

func TestResolve(t *testing.T) {
	loader := resolve(t.Context())

	resolver, err := loader(strings.NewReader(`const name = "fns"
const count = 3
const log = { verbose: true }
`))
	if err != nil {
		t.Fatal(err)
	}

	var cli struct {
		Name  string `default:"none"`
		Count int    `default:"1"`
		Log   struct {
			Verbose bool
		} `embed:"" prefix:"log-"`
		Other string `default:"kept"`
	}

	parser, err := kong.New(&cli, kong.Resolvers(resolver))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--count=5"}); err != nil {
		t.Fatal(err)
	}

	if cli.Name != "fns" || cli.Count != 5 || !cli.Log.Verbose || cli.Other != "kept" {
		t.Errorf("parsed %+v", cli)
	}

	broken, err := loader(strings.NewReader("let ="))
	if err != nil {
		t.Fatalf("broken config error = %v", err)
	}

	if len(broken.(config)) != 0 {
		t.Errorf("broken config resolved %v", broken)
	}
}
