package seller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agripanel/listquery/pkg/listquery"
	"github.com/agripanel/listquery/pkg/observability/metrics"
	"github.com/agripanel/listquery/pkg/schemagen"
	"github.com/agripanel/listquery/pkg/source"
	"github.com/agripanel/listquery/pkg/viewstate"
	"github.com/google/jsonschema-go/jsonschema"
)

// ErrUnknownDomain is returned by Lookup for names that are not registered.
var ErrUnknownDomain = errors.New("unknown domain")

// Row is implemented by records that can be printed as a table row.
type Row interface {
	Row() []string
}

// Table is one query result ready for output.
type Table struct {
	Domain  string         `json:"domain" yaml:"domain"`
	Spec    listquery.Spec `json:"spec" yaml:"spec"`
	Total   int            `json:"total" yaml:"total"`
	Visible int            `json:"visible" yaml:"visible"`
	Columns []string       `json:"-" yaml:"-"`
	Rows    [][]string     `json:"-" yaml:"-"`
	Records any            `json:"records" yaml:"records"`
}

// Domain is a list screen with its record type erased, for callers that pick the
// domain at runtime.
type Domain interface {
	Name() string
	Filters() []string
	SortKeys() []string
	DefaultSpec() listquery.Spec
	Columns() []string
	// QueryFile loads records from path and runs spec over them.
	QueryFile(ctx context.Context, path string, timeout time.Duration, spec listquery.Spec) (Table, error)
	// RecordSchema describes the record files QueryFile and NewSession accept.
	RecordSchema() (*jsonschema.Schema, error)
	// NewSession mounts an interactive screen over the records in path.
	NewSession(path string, opts viewstate.Options) Session
}

type domain[T Row] struct {
	engine  *listquery.Engine[T]
	columns []string
	metrics *metrics.ListMetrics
}

func (d *domain[T]) Name() string                { return d.engine.Name() }
func (d *domain[T]) Filters() []string           { return d.engine.Filters() }
func (d *domain[T]) SortKeys() []string          { return d.engine.SortKeys() }
func (d *domain[T]) DefaultSpec() listquery.Spec { return d.engine.DefaultSpec() }
func (d *domain[T]) Columns() []string           { return append([]string(nil), d.columns...) }

func (d *domain[T]) QueryFile(ctx context.Context, path string, timeout time.Duration, spec listquery.Spec) (Table, error) {
	fetcher := source.WithTimeout[T](source.NewFileFetcher[T](path), timeout)
	start := time.Now()
	records, err := fetcher.Fetch(ctx)
	d.metrics.ObserveRefresh(d.Name(), err, time.Since(start))
	if err != nil {
		return Table{}, fmt.Errorf("failed to load %s: %w", d.Name(), err)
	}

	visible := d.engine.Query(records, spec)
	d.metrics.ObserveQuery(d.Name(), len(visible))
	return d.table(spec, len(records), visible), nil
}

func (d *domain[T]) RecordSchema() (*jsonschema.Schema, error) {
	return schemagen.Records[T](d.Name(), d.engine.Statuses())
}

func (d *domain[T]) table(spec listquery.Spec, total int, visible []T) Table {
	rows := make([][]string, 0, len(visible))
	for _, r := range visible {
		rows = append(rows, r.Row())
	}
	return Table{
		Domain:  d.Name(),
		Spec:    spec,
		Total:   total,
		Visible: len(visible),
		Columns: d.Columns(),
		Rows:    rows,
		Records: visible,
	}
}

// Registry maps domain names to list screens.
type Registry struct {
	domains map[string]Domain
	metrics *metrics.ListMetrics
}

// NewRegistry builds every seller domain with the given engine options.
// m may be nil to disable metrics.
func NewRegistry(m *metrics.ListMetrics, opts ...listquery.Option) (*Registry, error) {
	r := &Registry{domains: make(map[string]Domain), metrics: m}

	if err := register(r, ProductSchema(), []string{"ID", "NAME", "CATEGORY", "STATUS", "PRICE", "STOCK", "CREATED"}, opts); err != nil {
		return nil, err
	}
	if err := register(r, OrderSchema(), []string{"ID", "PRODUCT", "BUYER", "STATUS", "AMOUNT", "QTY", "CREATED"}, opts); err != nil {
		return nil, err
	}
	if err := register(r, InventorySchema(), []string{"ID", "PRODUCT", "CATEGORY", "STATUS", "STOCK", "THRESHOLD", "UPDATED"}, opts); err != nil {
		return nil, err
	}
	if err := register(r, ForecastSchema(), []string{"ID", "PRODUCT", "CATEGORY", "RISK", "CONFIDENCE", "DEMAND", "CREATED"}, opts); err != nil {
		return nil, err
	}
	if err := register(r, OfferSchema(), []string{"ID", "PRODUCT", "CATEGORY", "STATUS", "PRICE", "QTY", "CREATED"}, opts); err != nil {
		return nil, err
	}
	return r, nil
}

func register[T Row](r *Registry, schema listquery.Schema[T], columns []string, opts []listquery.Option) error {
	engine, err := listquery.NewEngine(schema, opts...)
	if err != nil {
		return err
	}
	r.domains[schema.Name] = &domain[T]{engine: engine, columns: columns, metrics: r.metrics}
	return nil
}

// Lookup returns the domain registered under name, ignoring case.
func (r *Registry) Lookup(name string) (Domain, error) {
	d, ok := r.domains[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownDomain, name, strings.Join(r.Names(), ", "))
	}
	return d, nil
}

// Names returns the registered domain names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.domains))
	for name := range r.domains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
