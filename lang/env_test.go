package lang

import (
	"errors"
	"slices"
	"testing"
)

func TestEnvironmentScopes(t *testing.T) {
	root := NewEnvironment(nil)
	root.Define("a", Number(1), false)
	root.Define("k", String("root"), true)

	child := NewEnvironment(root)
	child.Define("b", Number(2), false)

	if child.Parent() != root {
		t.Fatal("Parent() does not return the enclosing scope")
	}

	if v, ok := child.Lookup("a"); !ok || !Equal(v, Number(1)) {
		t.Errorf("Lookup(a) = %v, %v, want 1, true", v, ok)
	}

	if _, ok := root.Lookup("b"); ok {
		t.Error("parent sees child binding")
	}

	// Assignment falls through to the scope that owns the binding.
	if err := child.Assign("a", Number(10)); err != nil {
		t.Fatal(err)
	}

	if v, _ := root.Lookup("a"); !Equal(v, Number(10)) {
		t.Errorf("root a = %v, want 10", v)
	}

	if err := child.Assign("k", Number(0)); !errors.Is(err, ErrReassignConst) {
		t.Errorf("Assign(k) error = %v, want %v", err, ErrReassignConst)
	}

	if err := child.Assign("missing", Number(0)); !errors.Is(err, ErrUndefinedName) {
		t.Errorf("Assign(missing) error = %v, want %v", err, ErrUndefinedName)
	}

	// A local definition shadows the constant without touching it.
	child.Define("k", String("child"), false)

	if constant, found := child.IsConstant("k"); !found || constant {
		t.Errorf("child IsConstant(k) = %v, %v, want false, true", constant, found)
	}

	if constant, found := root.IsConstant("k"); !found || !constant {
		t.Errorf("root IsConstant(k) = %v, %v, want true, true", constant, found)
	}

	if got := child.Names(); !slices.Equal(got, []string{"a", "b", "k"}) {
		t.Errorf("Names() = %v", got)
	}

	if got := child.Local(); !slices.Equal(got, []string{"b", "k"}) {
		t.Errorf("Local() = %v", got)
	}
}

func TestEnvironmentAssignSentinels(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("k", Number(1), true)

	// The evaluator uses these as the kind of the error it reports.
	if err := env.Assign("k", Number(2)); err != ErrReassignConst { //nolint:errorlint
		t.Errorf("Assign(k) error = %#v, want ErrReassignConst", err)
	}

	if err := env.Assign("missing", Number(2)); err != ErrUndefinedName { //nolint:errorlint
		t.Errorf("Assign(missing) error = %#v, want ErrUndefinedName", err)
	}
}

func TestEnvironmentDefineNil(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("x", nil, false)

	if v, ok := env.Lookup("x"); !ok || v.Kind() != KindNone {
		t.Errorf("Lookup(x) = %v, %v, want none", v, ok)
	}
}

func TestBuiltins(t *testing.T) {
	b := Builtins()

	for _, name := range []string{"fns", "math"} {
		constant, found := b.IsConstant(name)
		if !found || !constant {
			t.Errorf("builtin %s: constant=%v found=%v", name, constant, found)
		}
	}

	// Each call returns an independent scope.
	b.Define("math", None{}, false)

	if v, _ := Builtins().Lookup("math"); v.Kind() != KindObject {
		t.Errorf("fresh builtins math = %v", v)
	}
}

func TestNewRootEnvironment(t *testing.T) {
	env, err := NewRootEnvironment(
		WithBindings(map[string]Value{"host": Number(1)}),
		WithConstants(map[string]Value{"limit": Number(9)}),
	)
	if err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(env.Local(), []string{"host", "limit"}) {
		t.Errorf("Local() = %v", env.Local())
	}

	if env.Parent() == nil {
		t.Fatal("builtins scope missing")
	}

	for _, src := range []string{"let n = host + limit", "n = n * 2"} {
		prog, err := ParseString(t.Context(), src, WithCache(false))
		if err != nil {
			t.Fatal(err)
		}

		if _, err := env.Evaluate(t.Context(), prog); err != nil {
			t.Fatal(err)
		}
	}

	if v, _ := env.Lookup("n"); !Equal(v, Number(20)) {
		t.Errorf("n = %v, want 20", v)
	}

	if _, err := NewRootEnvironment(WithBindings(map[string]Value{"not valid": None{}})); !errors.Is(err, ErrInvalidBinding) {
		t.Errorf("invalid name error = %v", err)
	}

	bare, err := NewRootEnvironment(WithBuiltins(false))
	if err != nil || bare.Parent() != nil {
		t.Errorf("WithBuiltins(false) parent = %v, err = %v", bare.Parent(), err)
	}
}
