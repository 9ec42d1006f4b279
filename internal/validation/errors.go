// Package validation provides field-scoped input validation for every form
// the application accepts.
package validation

import (
	"sort"
	"strings"
)

// NonFieldErrors is the key under which form-wide errors are collected.
const NonFieldErrors = "__all__"

// FieldErrors maps a form field name to the messages raised against it.
type FieldErrors map[string][]string

// Add appends msg to field.
func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether field has at least one error.
func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

// Any reports whether any field failed.
func (e FieldErrors) Any() bool {
	for _, msgs := range e {
		if len(msgs) > 0 {
			return true
		}
	}
	return false
}

// Merge copies every message of other into e.
func (e FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		for _, msg := range msgs {
			e.Add(field, msg)
		}
	}
}

// Error renders the errors in field order so FieldErrors can travel as an error.
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(e[field]) == 0 {
			continue
		}
		parts = append(parts, field+": "+strings.Join(e[field], " "))
	}
	return strings.Join(parts, "; ")
}
