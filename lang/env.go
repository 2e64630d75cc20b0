package lang

import (
	"context"
	"iter"
	"maps"
	"slices"
)

// Environment is one scope in a chain of variable bindings. Lookups walk
// from the innermost scope to the root.
//
// An Environment is not safe for concurrent mutation.
type Environment struct {
	parent *Environment
	vars   map[string]Value
	ip     *interpreter
}

// NewEnvironment returns an empty scope whose parent is parent (which may be
// nil for a root scope).
func NewEnvironment(parent *Environment) *Environment {
	env := &Environment{
		parent: parent,
		vars:   make(map[string]Value),
	}

	if parent != nil {
		env.ip = parent.ip
	}

	return env
}

// Child returns a new scope nested in env.
func (env *Environment) Child() *Environment { return NewEnvironment(env) }

// Parent returns the enclosing scope, or nil at the root.
func (env *Environment) Parent() *Environment { return env.parent }

// Lookup resolves name through the scope chain.
func (env *Environment) Lookup(name string) (Value, bool) {
	for e := env; e != nil; e = e.parent {
		if v, ok := e.vars[name]; ok {
			return v, true
		}
	}

	return nil, false
}

// Define binds name in this scope, shadowing any outer binding.
func (env *Environment) Define(name string, v Value) {
	env.vars[name] = v
}

// Assign overwrites name in the nearest scope that already binds it, or
// binds it in this scope when no scope does.
func (env *Environment) Assign(name string, v Value) {
	if owner := env.owner(name); owner != nil {
		owner.vars[name] = v

		return
	}

	env.vars[name] = v
}

// owner returns the nearest scope binding name.
func (env *Environment) owner(name string) *Environment {
	for e := env; e != nil; e = e.parent {
		if _, ok := e.vars[name]; ok {
			return e
		}
	}

	return nil
}

// Local returns the names bound directly in this scope, sorted.
func (env *Environment) Local() []string {
	return slices.Sorted(maps.Keys(env.vars))
}

// All iterates every visible binding, inner scopes shadowing outer ones.
// Names are yielded in sorted order.
func (env *Environment) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		seen := make(map[string]Value)

		for e := env; e != nil; e = e.parent {
			for k, v := range e.vars {
				if _, ok := seen[k]; !ok {
					seen[k] = v
				}
			}
		}

		for _, k := range slices.Sorted(maps.Keys(seen)) {
			if !yield(k, seen[k]) {
				return
			}
		}
	}
}

// Delete removes name from this scope only.
func (env *Environment) Delete(name string) {
	delete(env.vars, name)
}

// interp returns the interpreter rendering in env, or a fresh one backed by
// the default registry when env is not part of a render.
func (env *Environment) interp() *interpreter {
	if env != nil && env.ip != nil {
		return env.ip
	}

	return newInterpreter(context.Background(), makeConfig())
}
