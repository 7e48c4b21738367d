package lang

import (
	"math"

	"github.com/ardnew/fns/pkg"
)

// Builtins returns a new scope holding the builtin constants:
//
//	fns  = { version: "<module version>" }
//	math = { pi: 3.141592653589793, e: 2.718281828459045 }
//
// Evaluate places this scope above host and program bindings, so programs
// may shadow a builtin name with let or const but cannot assign to it.
func Builtins() *Environment {
	env := NewEnvironment(nil)

	env.Define("fns", NewObject(
		Entry{Key: "version", Value: String(pkg.Version)},
	), true)

	env.Define("math", NewObject(
		Entry{Key: "pi", Value: Number(math.Pi)},
		Entry{Key: "e", Value: Number(math.E)},
	), true)

	return env
}
