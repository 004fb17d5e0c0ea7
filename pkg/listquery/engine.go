package listquery

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agripanel/listquery/pkg/observability/logger"
)

// SortOption binds a sort key to its comparator.
type SortOption[T any] struct {
	Key     string
	Compare Comparator[T]
}

// Schema describes how one record type is filtered, searched and sorted.
// Each list screen supplies only this mapping; the query logic is shared.
type Schema[T any] struct {
	// Name identifies the domain in logs and errors, e.g. "orders".
	Name string
	// Status reads the record's status. Required.
	Status TextField[T]
	// Statuses is the domain's status vocabulary, without FilterAll.
	Statuses []string
	// SearchFields are tested in order by SearchByText.
	SearchFields []TextField[T]
	// Sorts lists the available sort keys in display order.
	Sorts []SortOption[T]
	// DefaultSort must name one of Sorts. Unknown keys fall back to it.
	DefaultSort string
}

// Engine applies a Schema to record lists. It holds no mutable state and is safe
// for concurrent use.
type Engine[T any] struct {
	schema Schema[T]
	sorts  map[string]Comparator[T]
	log    logger.Logger
	strict bool
}

// Option configures optional Engine behavior.
type Option func(*options)

type options struct {
	log    logger.Logger
	strict bool
}

// WithLogger sets the logger used to report unknown sort keys.
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithStrict makes unknown sort keys panic instead of falling back to the default sort.
// Intended for development builds and tests.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// NewEngine validates schema and returns an Engine bound to it.
func NewEngine[T any](schema Schema[T], opts ...Option) (*Engine[T], error) {
	o := options{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	if schema.Status == nil {
		return nil, schemaError(schema.Name, "status accessor is required")
	}

	seen := make(map[string]struct{}, len(schema.Statuses))
	for _, s := range schema.Statuses {
		switch {
		case strings.TrimSpace(s) == "":
			return nil, schemaError(schema.Name, "empty status in vocabulary")
		case s == FilterAll:
			return nil, schemaError(schema.Name, fmt.Sprintf("status %q is reserved", FilterAll))
		}
		if _, dup := seen[s]; dup {
			return nil, schemaError(schema.Name, fmt.Sprintf("duplicate status %q", s))
		}
		seen[s] = struct{}{}
	}

	sorts := make(map[string]Comparator[T], len(schema.Sorts))
	for _, opt := range schema.Sorts {
		if opt.Key == "" || opt.Compare == nil {
			return nil, schemaError(schema.Name, "sort option needs a key and a comparator")
		}
		if _, dup := sorts[opt.Key]; dup {
			return nil, schemaError(schema.Name, fmt.Sprintf("duplicate sort key %q", opt.Key))
		}
		sorts[opt.Key] = opt.Compare
	}
	if _, ok := sorts[schema.DefaultSort]; !ok {
		return nil, schemaError(schema.Name, fmt.Sprintf("default sort %q is not registered", schema.DefaultSort))
	}

	log := o.log
	if schema.Name != "" {
		log = log.With("domain", schema.Name)
	}

	return &Engine[T]{
		schema: schema,
		sorts:  sorts,
		log:    log,
		strict: o.strict,
	}, nil
}

// MustEngine is like NewEngine but panics on an invalid schema.
// Use it for package-level schemas that are fixed at compile time.
func MustEngine[T any](schema Schema[T], opts ...Option) *Engine[T] {
	e, err := NewEngine(schema, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Query filters by status, then by search term, then sorts. The order is fixed:
// search sees only the status-filtered subset and sorting never changes membership.
func (e *Engine[T]) Query(records []T, spec Spec) []T {
	out := e.match(records, spec)
	slices.SortStableFunc(out, e.Comparator(spec.Sort))
	return out
}

// Count returns how many records Query would return for spec, for list badges.
func (e *Engine[T]) Count(records []T, spec Spec) int {
	return len(e.match(records, spec))
}

// FilterByStatus applies the schema's status accessor.
func (e *Engine[T]) FilterByStatus(records []T, filter string) []T {
	return FilterByStatus(records, e.schema.Status, filter)
}

// SearchByText applies the schema's search fields.
func (e *Engine[T]) SearchByText(records []T, term string) []T {
	return SearchByText(records, term, e.schema.SearchFields...)
}

// SortRecords sorts a copy of records by the comparator bound to key.
func (e *Engine[T]) SortRecords(records []T, key string) []T {
	return SortRecords(records, e.Comparator(key))
}

// Comparator returns the comparator for key. The empty key selects the default sort.
// An unknown key also falls back to the default sort after logging a warning, or
// panics when the engine is strict.
func (e *Engine[T]) Comparator(key string) Comparator[T] {
	if key == "" {
		return e.sorts[e.schema.DefaultSort]
	}
	if c, ok := e.sorts[key]; ok {
		return c
	}
	if e.strict {
		panic(fmt.Errorf("%w: %q for %s", ErrUnknownSortKey, key, e.schema.Name))
	}
	e.log.Warn("unknown sort key, using default", "sort", key, "default", e.schema.DefaultSort)
	return e.sorts[e.schema.DefaultSort]
}

// HasSort reports whether key is registered.
func (e *Engine[T]) HasSort(key string) bool {
	_, ok := e.sorts[key]
	return ok
}

// DefaultSpec is the selection a freshly mounted screen starts with.
func (e *Engine[T]) DefaultSpec() Spec {
	return Spec{Filter: FilterAll, Sort: e.schema.DefaultSort}
}

// Filters returns the filter chips for the domain, FilterAll first.
func (e *Engine[T]) Filters() []string {
	out := make([]string, 0, len(e.schema.Statuses)+1)
	out = append(out, FilterAll)
	return append(out, e.schema.Statuses...)
}

// Statuses returns the status vocabulary without FilterAll.
func (e *Engine[T]) Statuses() []string {
	return append([]string(nil), e.schema.Statuses...)
}

// SortKeys returns the registered sort keys in display order.
func (e *Engine[T]) SortKeys() []string {
	out := make([]string, 0, len(e.schema.Sorts))
	for _, opt := range e.schema.Sorts {
		out = append(out, opt.Key)
	}
	return out
}

// Name returns the schema name.
func (e *Engine[T]) Name() string {
	return e.schema.Name
}

// match always returns a slice the caller owns.
func (e *Engine[T]) match(records []T, spec Spec) []T {
	filtered := FilterByStatus(records, e.schema.Status, spec.Filter)
	return SearchByText(filtered, spec.Search, e.schema.SearchFields...)
}
