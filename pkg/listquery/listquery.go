// Package listquery filters, searches and sorts in-memory record lists for display.
//
// Every operation returns a fresh slice and never mutates its input, so a caller can keep
// one canonical source list and re-query it each time the user changes a control.
package listquery

import (
	"slices"
	"strings"
)

// FilterAll is the status filter sentinel that disables status filtering.
const FilterAll = "ALL"

// Spec is the user's current selection: status filter, search term and sort key.
type Spec struct {
	Filter string `json:"filter" yaml:"filter" mapstructure:"filter"`
	Search string `json:"search" yaml:"search" mapstructure:"search"`
	Sort   string `json:"sort" yaml:"sort" mapstructure:"sort"`
}

// FilterByStatus keeps the records whose status equals filter exactly.
// FilterAll and the empty filter keep everything. A record whose status is missing
// never matches a specific filter, and a filter matching nothing yields an empty slice.
func FilterByStatus[T any](records []T, status TextField[T], filter string) []T {
	if filter == "" || filter == FilterAll {
		return clone(records)
	}
	out := make([]T, 0, len(records))
	if status == nil {
		return out
	}
	for _, r := range records {
		if s, ok := status(r); ok && s == filter {
			out = append(out, r)
		}
	}
	return out
}

// SearchByText keeps the records where any of fields, lower-cased, contains term.
// The term is trimmed and lower-cased here; an empty term keeps everything.
func SearchByText[T any](records []T, term string, fields ...TextField[T]) []T {
	needle := normalizeTerm(term)
	if needle == "" {
		return clone(records)
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if matchesAny(r, needle, fields) {
			out = append(out, r)
		}
	}
	return out
}

// SortRecords returns a stably sorted copy of records. Equal elements keep their
// input order. A nil comparator returns the copy unsorted.
func SortRecords[T any](records []T, cmp Comparator[T]) []T {
	out := clone(records)
	if cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

func matchesAny[T any](r T, needle string, fields []TextField[T]) bool {
	for _, field := range fields {
		if field == nil {
			continue
		}
		v, ok := field(r)
		if ok && strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// clone never returns nil so callers can range and len without checks.
func clone[T any](records []T) []T {
	out := make([]T, len(records))
	copy(out, records)
	return out
}
