package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/fns/lang"
	"github.com/ardnew/fns/log"
)

// evalFlags are shared by the commands that evaluate a program.
type evalFlags struct {
	hostBindings `embed:""`

	Output     string `default:"native" enum:"native,json,yaml" help:"Result encoding (${enum})." short:"o"`
	Indent     int    `default:"2"                               help:"Indent width for json and yaml output; 0 prints compact output." short:"i"`
	MaxDepth   int    `default:"256"                             help:"Maximum expression nesting depth."`
	NoBuiltins bool   `                                          help:"Omit the fns and math builtin objects."`
}

// options returns the language options selected by the flags.
func (f evalFlags) options(ctx context.Context) ([]lang.Option, error) {
	bindings, err := f.load(ctx)
	if err != nil {
		return nil, err
	}

	return []lang.Option{
		lang.WithLogger(log.Default()),
		lang.WithMaxDepth(f.MaxDepth),
		lang.WithBuiltins(!f.NoBuiltins),
		lang.WithBindings(bindings),
	}, nil
}

// execute evaluates source and writes its result to standard output.
func (f evalFlags) execute(ctx context.Context, source string) error {
	enc, ok := lang.ParseEncoding(f.Output)
	if !ok {
		enc = lang.EncodingNative
	}

	opts, err := f.options(ctx)
	if err != nil {
		return err
	}

	v, err := lang.EvaluateString(ctx, source, opts...)
	if err != nil {
		return &SourceError{Err: err, Source: source}
	}

	log.DebugContext(ctx, "evaluated",
		slog.String("kind", v.Kind().String()),
		slog.String("output", enc.String()))

	if err := lang.WriteValue(ctx, stdout(ctx), v, enc, f.Indent); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// Run evaluates a program read from files or standard input.
type Run struct {
	evalFlags `embed:""`

	Files []string `arg:"" default:"-" help:"Program files, or '-' for stdin; multiple files are evaluated as one program." name:"file" optional:""`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	source, err := readSources(ctx, r.Files)
	if err != nil {
		return err
	}

	return r.execute(ctx, source)
}

// Eval evaluates a program given on the command line.
type Eval struct {
	evalFlags `embed:""`

	Source string `arg:"" help:"Program source text." name:"source"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return e.execute(ctx, e.Source)
}
