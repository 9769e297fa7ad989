package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnknownScheme = errors.New("config: unknown scheme")

// UnknownSchemeError reports a name that is not registered for a kind of
// component, together with the names that are.
type UnknownSchemeError struct {
	Kind  string
	Name  string
	Valid []string
}

func (e *UnknownSchemeError) Error() string {
	return fmt.Sprintf("unknown %s %q; valid %ss are: %s",
		e.Kind, e.Name, e.Kind, strings.Join(e.Valid, ", "))
}

func (e *UnknownSchemeError) Unwrap() error {
	return ErrUnknownScheme
}

// Registry maps scheme identifiers to constructors.
type Registry[K ~string, C any] struct {
	kind  string
	ctors map[K]C
}

func NewRegistry[K ~string, C any](kind string) *Registry[K, C] {
	return &Registry[K, C]{
		kind:  kind,
		ctors: make(map[K]C),
	}
}

func (r *Registry[K, C]) Register(id K, ctor C) {
	r.ctors[id] = ctor
}

// Parse resolves a configured name to a registered identifier.
func (r *Registry[K, C]) Parse(name string) (K, error) {
	id := K(name)
	if _, ok := r.ctors[id]; !ok {
		return id, &UnknownSchemeError{Kind: r.kind, Name: name, Valid: r.Names()}
	}
	return id, nil
}

func (r *Registry[K, C]) Get(name string) (C, error) {
	id, err := r.Parse(name)
	if err != nil {
		var zero C
		return zero, err
	}
	return r.ctors[id], nil
}

func (r *Registry[K, C]) Names() []string {
	names := make([]string, 0, len(r.ctors))
	for id := range r.ctors {
		names = append(names, string(id))
	}
	sort.Strings(names)
	return names
}
