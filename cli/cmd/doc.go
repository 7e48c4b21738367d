// Package cmd implements the fns subcommands: run, eval, fmt, repl, and
// init.
//
// Commands that evaluate a program accept host bindings through
// --bindings (a YAML or JSON mapping) and --define name=EXPR (an expr-lang
// expression evaluated on the host), and print the result with
// --output native|json|yaml.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
