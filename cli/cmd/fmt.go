package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/fns/lang"
	"github.com/ardnew/fns/log"
)

// Fmt parses a program and prints it in the chosen form without
// evaluating it.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Print canonical, fully parenthesized source (default)."`
	AST    AST    `cmd:""                    help:"Print the syntax tree with positions."`
	JSON   JSON   `cmd:""                    help:"Print the syntax tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Print the syntax tree as YAML."`
}

// fmtSource is the input of every fmt subcommand.
type fmtSource struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

func (s fmtSource) parse(ctx context.Context, format string) (*lang.Program, error) {
	source, err := readSources(ctx, []string{s.Source})
	if err != nil {
		return nil, err
	}

	prog, err := lang.ParseString(ctx, source,
		lang.WithLogger(log.Default()),
		lang.WithCache(false),
	)
	if err != nil {
		return nil, &SourceError{Err: err, Source: source}
	}

	log.DebugContext(ctx, "parsed",
		slog.String("format", format),
		slog.Int("statements", len(prog.Statements)))

	return prog, nil
}

// Native prints canonical source.
type Native struct {
	fmtSource `embed:""`
}

// Run executes the fmt native command.
func (f *Native) Run(ctx context.Context) error {
	prog, err := f.parse(ctx, "native")
	if err != nil {
		return err
	}

	return wrapWrite(prog.Format(ctx, stdout(ctx)))
}

// AST prints the indented syntax tree.
type AST struct {
	fmtSource `embed:""`
}

// Run executes the fmt ast command.
func (a *AST) Run(ctx context.Context) error {
	prog, err := a.parse(ctx, "ast")
	if err != nil {
		return err
	}

	prog.Print(ctx, stdout(ctx))

	return nil
}

// JSON prints the syntax tree as JSON.
type JSON struct {
	fmtSource `embed:""`

	Indent int `default:"2" help:"Indent width; 0 prints compact output." short:"i"`
}

// Run executes the fmt json command.
func (j *JSON) Run(ctx context.Context) error {
	prog, err := j.parse(ctx, "json")
	if err != nil {
		return err
	}

	return wrapWrite(prog.FormatJSON(ctx, stdout(ctx), j.Indent))
}

// YAML prints the syntax tree as YAML.
type YAML struct {
	fmtSource `embed:""`

	Indent int `default:"2" help:"Indent width; 0 prints flow style." short:"i"`
}

// Run executes the fmt yaml command.
func (y *YAML) Run(ctx context.Context) error {
	prog, err := y.parse(ctx, "yaml")
	if err != nil {
		return err
	}

	return wrapWrite(prog.FormatYAML(ctx, stdout(ctx), y.Indent))
}

func wrapWrite(err error) error {
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
