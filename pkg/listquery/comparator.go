package listquery

import (
	"cmp"
	"strings"
	"time"
)

// Field accessors report ok=false when the record has no value for the field.
// Missing values compare as the zero value: "", 0 or the zero time.
type (
	TextField[T any]   func(T) (string, bool)
	NumberField[T any] func(T) (float64, bool)
	TimeField[T any]   func(T) (time.Time, bool)
)

// Comparator orders two records, returning a negative number when a sorts before b.
type Comparator[T any] func(a, b T) int

// Ascending orders records by a numeric field, smallest first.
func Ascending[T any](field NumberField[T]) Comparator[T] {
	return func(a, b T) int {
		return cmp.Compare(number(field, a), number(field, b))
	}
}

// Descending orders records by a numeric field, largest first.
func Descending[T any](field NumberField[T]) Comparator[T] {
	return func(a, b T) int {
		return cmp.Compare(number(field, b), number(field, a))
	}
}

// Oldest orders records by a timestamp, earliest first.
func Oldest[T any](field TimeField[T]) Comparator[T] {
	return func(a, b T) int {
		return instant(field, a).Compare(instant(field, b))
	}
}

// Newest orders records by a timestamp, latest first.
func Newest[T any](field TimeField[T]) Comparator[T] {
	return func(a, b T) int {
		return instant(field, b).Compare(instant(field, a))
	}
}

// Lexical orders records by a text field ignoring case. Values equal ignoring case
// fall back to a byte-wise comparison so the order stays total.
func Lexical[T any](field TextField[T]) Comparator[T] {
	return func(a, b T) int {
		x, y := text(field, a), text(field, b)
		if c := strings.Compare(strings.ToLower(x), strings.ToLower(y)); c != 0 {
			return c
		}
		return strings.Compare(x, y)
	}
}

// Then applies next only when primary reports a tie.
func Then[T any](primary, next Comparator[T]) Comparator[T] {
	return func(a, b T) int {
		if c := primary(a, b); c != 0 {
			return c
		}
		return next(a, b)
	}
}

func number[T any](field NumberField[T], r T) float64 {
	if field == nil {
		return 0
	}
	v, ok := field(r)
	if !ok {
		return 0
	}
	return v
}

func instant[T any](field TimeField[T], r T) time.Time {
	if field == nil {
		return time.Time{}
	}
	v, ok := field(r)
	if !ok {
		return time.Time{}
	}
	return v
}

func text[T any](field TextField[T], r T) string {
	if field == nil {
		return ""
	}
	v, ok := field(r)
	if !ok {
		return ""
	}
	return v
}
