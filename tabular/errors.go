package tabular

import (
	"fmt"
	"strings"

	"github.com/phenotab/phenotab/semantic"
)

// DuplicateOwnershipError reports physical columns claimed by more than one
// series context.
type DuplicateOwnershipError struct {
	Table      string
	Duplicates []string
}

func (e *DuplicateOwnershipError) Error() string {
	return fmt.Sprintf("table %q: columns claimed by more than one series context, duplicates: [%s]",
		e.Table, strings.Join(e.Duplicates, ", "))
}

// SubjectColumnError reports a violated subject-id invariant: not exactly one
// subject-id descriptor, not exactly one subject-id column, or missing values
// in the subject-id column.
type SubjectColumnError struct {
	Table  string
	Reason string
}

func (e *SubjectColumnError) Error() string {
	return fmt.Sprintf("table %q: %s", e.Table, e.Reason)
}

// DanglingContextError reports a series context whose identifier matches no
// physical column.
type DanglingContextError struct {
	Table      string
	Identifier string
}

func (e *DanglingContextError) Error() string {
	return fmt.Sprintf("table %q: series context %q matches no column", e.Table, e.Identifier)
}

// ExpectedSingleValueError reports that a single-multiplicity lookup found
// several distinct values.
type ExpectedSingleValueError struct {
	Table         string
	Subject       string
	DataContext   semantic.Context
	HeaderContext semantic.Context
	Values        []string
}

func (e *ExpectedSingleValueError) Error() string {
	return fmt.Sprintf("table %q, subject %q: expected a single value for data context %s with header context %s, found [%s]",
		e.Table, e.Subject, e.DataContext, e.HeaderContext, strings.Join(e.Values, ", "))
}

// MultipleLinkedColumnsError reports that a building block holds more than
// one column for a set of linked data contexts.
type MultipleLinkedColumnsError struct {
	Table    string
	BlockID  string
	Contexts []semantic.Context
	Columns  []string
}

func (e *MultipleLinkedColumnsError) Error() string {
	ctxs := make([]string, len(e.Contexts))
	for i, c := range e.Contexts {
		ctxs[i] = c.String()
	}
	return fmt.Sprintf("table %q, building block %q: expected at most one linked column for contexts [%s], found [%s]",
		e.Table, e.BlockID, strings.Join(ctxs, ", "), strings.Join(e.Columns, ", "))
}
