package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/fns/cli/cmd"
	"github.com/ardnew/fns/pkg"
)

// CLI is the top-level command-line interface for fns.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Run  cmd.Run  `cmd:"" default:"withargs" help:"Evaluate program files (stdin by default)."`
	Eval cmd.Eval `cmd:""                    help:"Evaluate a program given as an argument."`
	Fmt  cmd.Fmt  `cmd:""                    help:"Print a program in canonical or structured form."`
	Repl cmd.Repl `cmd:""                    help:"Start an interactive session."`
	Init cmd.Init `cmd:""                    help:"Write a configuration file from the current flags."`
}

// Run executes the fns CLI with the given context and arguments.
// The exit function is called with the appropriate exit code when kong
// terminates early, as for --help.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	return run(ctx, exit, args)
}

func run(
	ctx context.Context,
	exit func(code int),
	args []string,
	options ...kong.Option,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"version":            pkg.Name + " " + pkg.Version,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Configure logging before kong parses, so that the flags take effect
	// regardless of their position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		append([]kong.Option{
			kong.Name(pkg.Name),
			kong.Description(pkg.Description),
			kong.UsageOnError(),
			kong.Exit(exit),
			kong.ExplicitGroups(append([]kong.Group{cli.Log.group()}, cli.Pprof.groups()...)),
			kong.ConfigureHelp(kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
			kong.Configuration(kong.JSON, configFilePath+".json"),
			kong.Configuration(resolve(ctx), configFilePath),
			vars,
		}, options...)...,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ktx.BindTo(ctx, (*context.Context)(nil))

	cli.Log.start(ctx)

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx)
}
