package lang

import (
	"log/slog"

	"github.com/ardnew/fns/log"
)

// DefaultMaxDepth is the default maximum nesting depth of expressions.
//
//nolint:gochecknoglobals
var DefaultMaxDepth = 256

// options holds the configuration shared by parsing and evaluation.
type options struct {
	logger    log.Logger
	bindings  map[string]Value
	constants map[string]Value
	maxDepth  int
	builtins  bool
	cache     bool
}

// Option configures parsing and evaluation.
type Option func(*options)

// WithMaxDepth sets the maximum nesting depth of expressions.
// Values less than 1 select DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		o.maxDepth = depth
	}
}

// WithLogger sets the logger used for trace output.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithBindings predefines mutable names in the evaluation environment.
func WithBindings(bindings map[string]Value) Option {
	return func(o *options) { o.bindings = merge(o.bindings, bindings) }
}

// WithConstants predefines immutable names in the evaluation environment.
func WithConstants(constants map[string]Value) Option {
	return func(o *options) { o.constants = merge(o.constants, constants) }
}

// WithBuiltins enables or disables the builtin objects fns and math.
// Builtins are enabled by default.
func WithBuiltins(enable bool) Option {
	return func(o *options) { o.builtins = enable }
}

// WithCache enables or disables the parse cache used by ParseString and
// ParseReader. The cache is enabled by default.
func WithCache(enable bool) Option {
	return func(o *options) { o.cache = enable }
}

func makeOptions(opts ...Option) options {
	o := options{
		maxDepth: DefaultMaxDepth,
		builtins: true,
		cache:    true,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

func merge(dst, src map[string]Value) map[string]Value {
	if dst == nil {
		dst = make(map[string]Value, len(src))
	}

	for k, v := range src {
		dst[k] = v
	}

	return dst
}

// environment builds the root scope described by o: builtins in an outer
// scope, host bindings and constants in an inner scope that programs
// extend. Invalid names in host bindings are reported as
// ErrInvalidBinding.
func (o options) environment() (*Environment, error) {
	var parent *Environment
	if o.builtins {
		parent = Builtins()
	}

	env := NewEnvironment(parent)

	for _, name := range sortedKeys(o.bindings) {
		if !IsIdentifier(name) {
			return nil, ErrInvalidBinding.With(slog.String("name", name))
		}

		env.Define(name, o.bindings[name], false)
	}

	for _, name := range sortedKeys(o.constants) {
		if !IsIdentifier(name) {
			return nil, ErrInvalidBinding.With(slog.String("name", name))
		}

		env.Define(name, o.constants[name], true)
	}

	return env, nil
}
