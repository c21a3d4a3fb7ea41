package ontology

import (
	"context"
	"errors"
	"fmt"
)

// ErrTermNotFound is returned by a TermSource that cannot resolve a query.
// A library treats it as "try the next source".
var ErrTermNotFound = errors.New("term not found")

// ErrNoTermSources marks a library configured without any source. This is a
// configuration defect, distinct from a term that merely cannot be found.
var ErrNoTermSources = errors.New("term library has no sources")

// TermSource resolves a query string to an ontology class and the resource
// it came from.
type TermSource interface {
	Name() string
	Resolve(ctx context.Context, query string) (Class, ResourceRef, error)
}

// Library is a named, ordered list of term sources. Resolution walks the
// sources in order and returns the first hit.
type Library struct {
	name    string
	sources []TermSource
}

// NewLibrary builds a library. The order of sources is the lookup priority.
func NewLibrary(name string, sources ...TermSource) *Library {
	return &Library{name: name, sources: sources}
}

// Name returns the library name.
func (l *Library) Name() string { return l.name }

// IsEmpty reports whether the library has no sources.
func (l *Library) IsEmpty() bool { return l == nil || len(l.sources) == 0 }

// Resolve walks the sources in priority order. An empty library is a
// configuration error wrapping ErrNoTermSources; a query no source resolves
// yields a NotFoundError.
func (l *Library) Resolve(ctx context.Context, query string) (Class, ResourceRef, error) {
	if l.IsEmpty() {
		name := "?"
		if l != nil {
			name = l.name
		}
		return Class{}, ResourceRef{}, fmt.Errorf("term library %q: %w", name, ErrNoTermSources)
	}
	for _, src := range l.sources {
		class, ref, err := src.Resolve(ctx, query)
		if err == nil {
			return class, ref, nil
		}
		if errors.Is(err, ErrTermNotFound) {
			continue
		}
		return Class{}, ResourceRef{}, fmt.Errorf("term source %q: %w", src.Name(), err)
	}
	return Class{}, ResourceRef{}, &NotFoundError{Library: l.name, Query: query}
}
