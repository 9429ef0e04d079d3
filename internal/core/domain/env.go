package domain

import (
	"slices"
	"sort"
)

// Env is a build environment: a mapping of variable names to string lists.
// Command templates reference variables as ${NAME}; single-valued variables
// are lists of length one.
type Env struct {
	vars map[string][]string
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{vars: make(map[string][]string)}
}

// Get returns the value list for a variable. The returned slice must not be
// mutated by the caller.
func (e *Env) Get(key string) []string {
	return e.vars[key]
}

// First returns the first value of a variable, or the empty string.
func (e *Env) First(key string) string {
	if vals := e.vars[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// Set replaces the value list of a variable.
func (e *Env) Set(key string, vals ...string) {
	e.vars[key] = slices.Clone(vals)
}

// Append appends values to a variable.
func (e *Env) Append(key string, vals ...string) {
	e.vars[key] = append(e.vars[key], vals...)
}

// AppendUnique appends only the values not already present.
func (e *Env) AppendUnique(key string, vals ...string) {
	for _, v := range vals {
		if !slices.Contains(e.vars[key], v) {
			e.vars[key] = append(e.vars[key], v)
		}
	}
}

// Keys returns the variable names in sorted order.
func (e *Env) Keys() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the environment. Tasks sharing a unit env
// clone it before making task-local additions.
func (e *Env) Clone() *Env {
	c := &Env{vars: make(map[string][]string, len(e.vars))}
	for k, v := range e.vars {
		c.vars[k] = slices.Clone(v)
	}
	return c
}
