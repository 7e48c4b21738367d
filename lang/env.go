package lang

import (
	"sort"
)

// Environment is a scope of name bindings with an optional parent.
// Lookups and assignments fall through to the parent when a name is not
// bound locally; definitions always bind in the receiver.
//
// An Environment is not safe for concurrent use.
type Environment struct {
	parent   *Environment
	bindings map[string]*binding
}

type binding struct {
	value    Value
	constant bool
}

// NewEnvironment returns an empty scope enclosed by parent, which may be
// nil.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		parent:   parent,
		bindings: make(map[string]*binding),
	}
}

// Parent returns the enclosing scope, or nil.
func (e *Environment) Parent() *Environment { return e.parent }

// Define binds name in this scope, replacing any existing local binding
// and shadowing bindings of the same name in enclosing scopes.
func (e *Environment) Define(name string, v Value, constant bool) {
	if v == nil {
		v = None{}
	}

	e.bindings[name] = &binding{value: v, constant: constant}
}

// Lookup returns the value bound to name in the nearest scope.
func (e *Environment) Lookup(name string) (Value, bool) {
	if b := e.resolve(name); b != nil {
		return b.value, true
	}

	return nil, false
}

// IsConstant reports whether name is bound and, if so, whether the
// nearest binding is constant.
func (e *Environment) IsConstant(name string) (constant, found bool) {
	if b := e.resolve(name); b != nil {
		return b.constant, true
	}

	return false, false
}

// Assign updates the nearest existing binding of name. It fails with
// ErrUndefinedName if name is unbound and ErrReassignConst if the binding
// is constant.
func (e *Environment) Assign(name string, v Value) error {
	b := e.resolve(name)

	switch {
	case b == nil:
		return ErrUndefinedName
	case b.constant:
		return ErrReassignConst
	}

	if v == nil {
		v = None{}
	}

	b.value = v

	return nil
}

// Names returns every name visible from this scope in sorted order.
func (e *Environment) Names() []string {
	seen := make(map[string]struct{})

	for env := e; env != nil; env = env.parent {
		for name := range env.bindings {
			seen[name] = struct{}{}
		}
	}

	return sortedKeys(seen)
}

// Local returns the names bound directly in this scope in sorted order.
func (e *Environment) Local() []string { return sortedKeys(e.bindings) }

func (e *Environment) resolve(name string) *binding {
	for env := e; env != nil; env = env.parent {
		if b, ok := env.bindings[name]; ok {
			return b
		}
	}

	return nil
}

func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
