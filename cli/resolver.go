package cli

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/fns/lang"
	"github.com/ardnew/fns/log"
)

// resolve returns a [kong.ConfigurationLoader] for configuration files
// written in fns. The file is evaluated as a program and each binding it
// makes becomes the default of the flag with the same name:
//
//	const log_level = "debug"
//	const log = { caller: true }   // --log-caller
//	let indent = 4
//
// Underscores in names stand for hyphens, and object members are joined to
// their parent's name with a hyphen. Numbers, strings, and booleans are
// used; none and other values are ignored. A file that fails to parse or
// evaluate is reported and otherwise ignored. Command-line flags override
// configured values.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		cfg, err := evaluateConfig(ctx, string(data))
		if err != nil {
			log.WarnContext(ctx, "configuration ignored", slog.Any("error", err))

			return config{}, nil
		}

		return cfg, nil
	}
}

// evaluateConfig evaluates source and flattens its bindings into flag
// defaults.
func evaluateConfig(ctx context.Context, source string) (config, error) {
	opts := []lang.Option{lang.WithLogger(log.Default()), lang.WithCache(false)}

	prog, err := lang.ParseString(ctx, source, opts...)
	if err != nil {
		return nil, err
	}

	env, err := lang.NewRootEnvironment(opts...)
	if err != nil {
		return nil, err
	}

	if _, err := env.Evaluate(ctx, prog, opts...); err != nil {
		return nil, err
	}

	cfg := make(config)

	for _, name := range env.Local() {
		v, _ := env.Lookup(name)
		cfg.flatten(flagName(name), v)
	}

	return cfg, nil
}

func flagName(s string) string { return strings.ReplaceAll(s, "_", "-") }

// config implements [kong.Resolver] over flattened configuration values.
type config map[string]any

func (c config) flatten(key string, v lang.Value) {
	switch v := v.(type) {
	case *lang.Object:
		for k, child := range v.All() {
			c.flatten(key+"-"+flagName(k), child)
		}

	case lang.Number:
		// kong parses flag values from strings.
		c[key] = strconv.FormatFloat(float64(v), 'f', -1, 64)

	case lang.String:
		c[key] = string(v)

	case lang.Boolean:
		c[key] = bool(v)
	}
}

// Validate implements [kong.Resolver]. Settings that name no flag are
// reported but not rejected.
func (c config) Validate(app *kong.Application) error {
	known := make(map[string]struct{})

	var walk func(*kong.Node)

	walk = func(n *kong.Node) {
		for _, flag := range n.Flags {
			known[flag.Name] = struct{}{}
		}

		for _, child := range n.Children {
			walk(child)
		}
	}

	walk(app.Node)

	for _, key := range slices.Sorted(maps.Keys(c)) {
		if _, ok := known[key]; !ok {
			log.Warn("unknown configuration setting", slog.String("name", key))
		}
	}

	return nil
}

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return nil, nil
}
