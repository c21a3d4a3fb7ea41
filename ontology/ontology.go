// Package ontology provides ontology classes, resource metadata, and term
// resolution: turning free-text labels or CURIEs into identified classes via
// ordered libraries of term sources.
package ontology

import (
	"fmt"
	"strings"
)

// Class is an identified ontology term: a CURIE id and its preferred label.
type Class struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// NewClass builds a class.
func NewClass(id, label string) Class {
	return Class{ID: id, Label: label}
}

// ResourceRef names the resource a resolved term came from.
type ResourceRef struct {
	Prefix  string
	Version string
}

// DefaultVersion is used when a source cannot state its resource version.
const DefaultVersion = "latest"

// NewResourceRef builds a reference, defaulting the version.
func NewResourceRef(prefix, version string) ResourceRef {
	if version == "" {
		version = DefaultVersion
	}
	return ResourceRef{Prefix: prefix, Version: version}
}

// CuriePrefix returns the prefix of a CURIE-shaped string ("HP:0001250" →
// "HP") and whether the string is CURIE-shaped at all.
func CuriePrefix(s string) (string, bool) {
	prefix, rest, ok := strings.Cut(s, ":")
	if !ok || prefix == "" || rest == "" {
		return "", false
	}
	if strings.ContainsAny(prefix, " \t") {
		return "", false
	}
	return prefix, true
}

// QueryDirection states how a query string should be interpreted by a term
// source.
type QueryDirection int

const (
	// LabelToID looks a label up to find its id.
	LabelToID QueryDirection = iota
	// IDToLabel looks a CURIE up to find its label.
	IDToLabel
)

// DirectionFor classifies a query against a source's id prefix: queries
// shaped like a CURIE with the source's prefix are id lookups, everything
// else is a label lookup.
func DirectionFor(query, idPrefix string) QueryDirection {
	if prefix, ok := CuriePrefix(query); ok && strings.EqualFold(prefix, idPrefix) {
		return IDToLabel
	}
	return LabelToID
}

// NotFoundError reports a query no source in a library could resolve.
type NotFoundError struct {
	Library string
	Query   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("term library %q: no source resolves %q", e.Library, e.Query)
}
