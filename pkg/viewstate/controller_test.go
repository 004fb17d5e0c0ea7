package viewstate_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agripanel/listquery/pkg/listquery"
	"github.com/agripanel/listquery/pkg/observability/logger"
	"github.com/agripanel/listquery/pkg/observability/logger/loggertest"
	"github.com/agripanel/listquery/pkg/observability/metrics"
	"github.com/agripanel/listquery/pkg/seller"
	"github.com/agripanel/listquery/pkg/source"
	"github.com/agripanel/listquery/pkg/viewstate"
)

func price(v float64) *float64 { return &v }

func created(day int) *time.Time {
	t := time.Date(2026, 7, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func catalog() []seller.Product {
	return []seller.Product{
		{ID: "p1", Name: "Tomato", Status: seller.ProductActive, Price: price(10), CreatedAt: created(1)},
		{ID: "p2", Name: "Onion", Status: seller.ProductExpired, Price: price(5), CreatedAt: created(3)},
		{ID: "p3", Name: "Pepper", Status: seller.ProductActive, Price: price(20), CreatedAt: created(2)},
	}
}

type renders struct {
	mu    sync.Mutex
	lists [][]string
	all   []viewstate.Render[seller.Product]
}

func (r *renders) record(render viewstate.Render[seller.Product]) {
	r.mu.Lock()
	r.lists = append(r.lists, ids(render.Visible))
	r.all = append(r.all, render)
	r.mu.Unlock()
}

func (r *renders) last() viewstate.Render[seller.Product] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.all[len(r.all)-1]
}

func (r *renders) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.lists...)
}

func newController(t *testing.T, fetcher source.Fetcher[seller.Product], opts viewstate.Options) (*viewstate.Controller[seller.Product], *renders) {
	t.Helper()
	engine, err := listquery.NewEngine(seller.ProductSchema())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	c := viewstate.NewController(engine, fetcher, opts)
	r := &renders{}
	c.OnChange(r.record)
	t.Cleanup(c.Close)
	return c, r
}

func ids(products []seller.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestController_MountAndSelect(t *testing.T) {
	c, r := newController(t, source.Static(catalog()), viewstate.Options{})

	if err := c.Mount(context.Background()); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if !c.State().Loaded {
		t.Fatal("expected loaded state after mount")
	}
	if got := ids(c.Visible()); !reflect.DeepEqual(got, []string{"p2", "p3", "p1"}) {
		t.Fatalf("default order = %v", got)
	}

	if err := c.SelectFilter(seller.ProductActive); err != nil {
		t.Fatalf("SelectFilter() error = %v", err)
	}
	if err := c.SelectSort(seller.SortPriceAsc); err != nil {
		t.Fatalf("SelectSort() error = %v", err)
	}
	if got := ids(c.Visible()); !reflect.DeepEqual(got, []string{"p1", "p3"}) {
		t.Fatalf("active by price = %v", got)
	}
	if c.Count() != 2 {
		t.Fatalf("Count() = %d", c.Count())
	}

	last := r.snapshot()
	if got := last[len(last)-1]; !reflect.DeepEqual(got, []string{"p1", "p3"}) {
		t.Fatalf("last render = %v", got)
	}
}

func TestController_MountResetsSelection(t *testing.T) {
	c, _ := newController(t, source.Static(catalog()), viewstate.Options{})
	_ = c.Mount(context.Background())
	_ = c.SelectFilter(seller.ProductExpired)
	_ = c.Search("oni")

	if err := c.Mount(context.Background()); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	want := listquery.Spec{Filter: listquery.FilterAll, Sort: seller.SortNewest}
	if got := c.State().Spec; got != want {
		t.Fatalf("state after remount = %+v, want %+v", got, want)
	}
	if c.Count() != 3 {
		t.Fatalf("Count() = %d", c.Count())
	}
}

func TestController_TypeIsDebounced(t *testing.T) {
	c, r := newController(t, source.Static(catalog()), viewstate.Options{SearchDebounce: 30 * time.Millisecond})
	_ = c.Mount(context.Background())
	rendersAfterMount := len(r.snapshot())

	for _, term := range []string{"p", "pe", "pep"} {
		if err := c.Type(term); err != nil {
			t.Fatalf("Type() error = %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if c.State().Spec.Search != "" {
		t.Fatal("search applied before the debounce period")
	}

	time.Sleep(120 * time.Millisecond)

	if got := c.State().Spec.Search; got != "pep" {
		t.Fatalf("search = %q, want pep", got)
	}
	if got := ids(c.Visible()); !reflect.DeepEqual(got, []string{"p3"}) {
		t.Fatalf("visible = %v", got)
	}
	if n := len(r.snapshot()) - rendersAfterMount; n != 1 {
		t.Fatalf("expected one render for the debounced search, got %d", n)
	}
}

func TestController_FlushSearch(t *testing.T) {
	c, _ := newController(t, source.Static(catalog()), viewstate.Options{SearchDebounce: time.Hour})
	_ = c.Mount(context.Background())

	_ = c.Type("tom")
	if !c.FlushSearch() {
		t.Fatal("FlushSearch() should apply the pending term")
	}
	if got := ids(c.Visible()); !reflect.DeepEqual(got, []string{"p1"}) {
		t.Fatalf("visible = %v", got)
	}
}

func TestController_SearchCancelsPendingTerm(t *testing.T) {
	c, _ := newController(t, source.Static(catalog()), viewstate.Options{SearchDebounce: 20 * time.Millisecond})
	_ = c.Mount(context.Background())

	_ = c.Type("tom")
	_ = c.Search("oni")
	time.Sleep(60 * time.Millisecond)

	if got := c.State().Spec.Search; got != "oni" {
		t.Fatalf("search = %q, want oni", got)
	}
}

func TestController_CloseCancelsPendingSearch(t *testing.T) {
	c, r := newController(t, source.Static(catalog()), viewstate.Options{SearchDebounce: 20 * time.Millisecond})
	_ = c.Mount(context.Background())
	before := len(r.snapshot())

	_ = c.Type("tom")
	c.Close()
	time.Sleep(60 * time.Millisecond)

	if n := len(r.snapshot()); n != before {
		t.Fatalf("render after close: %d renders, want %d", n, before)
	}
	if err := c.Type("x"); !errors.Is(err, viewstate.ErrClosed) {
		t.Fatalf("Type() after close = %v", err)
	}
	if err := c.SelectFilter(seller.ProductActive); !errors.Is(err, viewstate.ErrClosed) {
		t.Fatalf("SelectFilter() after close = %v", err)
	}
	if err := c.Refresh(context.Background()); !errors.Is(err, viewstate.ErrClosed) {
		t.Fatalf("Refresh() after close = %v", err)
	}
}

func TestController_RefreshFailureKeepsList(t *testing.T) {
	var fail bool
	var mu sync.Mutex
	fetcher := source.FetcherFunc[seller.Product](func(ctx context.Context) ([]seller.Product, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return nil, errors.New("network unreachable")
		}
		return catalog(), nil
	})

	log := loggertest.New()
	reg := metrics.NewRegistry()
	c, _ := newController(t, fetcher, viewstate.Options{Logger: log, Metrics: reg.Lists()})

	if err := c.Mount(context.Background()); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	mu.Lock()
	fail = true
	mu.Unlock()

	ctx := logger.ContextWithScreen(context.Background(), "product-list")
	err := c.Refresh(ctx)
	if err == nil || err.Error() != "refresh products: network unreachable" {
		t.Fatalf("Refresh() error = %v", err)
	}
	if c.Count() != 3 {
		t.Fatalf("previous list dropped, Count() = %d", c.Count())
	}

	if log.Count("error") != 1 {
		t.Fatalf("expected 1 error log, got %d", log.Count("error"))
	}
	entry := log.Entries()[len(log.Entries())-1]
	if entry.Fields["screen"] != "product-list" || entry.Fields["domain"] != "products" {
		t.Fatalf("error log fields = %v", entry.Fields)
	}

	if got := counterValue(t, reg, "listquery_refreshes_total", "outcome", metrics.OutcomeFailure); got != 1 {
		t.Fatalf("failed refreshes = %v", got)
	}
	if got := counterValue(t, reg, "listquery_refreshes_total", "outcome", metrics.OutcomeSuccess); got != 1 {
		t.Fatalf("successful refreshes = %v", got)
	}
}

func TestController_RefreshTimeout(t *testing.T) {
	slow := source.FetcherFunc[seller.Product](func(ctx context.Context) ([]seller.Product, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	c, _ := newController(t, slow, viewstate.Options{FetchTimeout: 20 * time.Millisecond})

	if err := c.Refresh(context.Background()); !errors.Is(err, source.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if c.State().Loaded {
		t.Fatal("state must not be loaded after a failed refresh")
	}
}

func TestController_SourceIsNotShared(t *testing.T) {
	records := catalog()
	c, _ := newController(t, source.FetcherFunc[seller.Product](func(context.Context) ([]seller.Product, error) {
		return records, nil
	}), viewstate.Options{})
	_ = c.Mount(context.Background())
	_ = c.SelectSort(seller.SortName)

	if got := ids(records); !reflect.DeepEqual(got, []string{"p1", "p2", "p3"}) {
		t.Fatalf("fetched slice reordered: %v", got)
	}
	visible := c.Visible()
	visible[0].Name = "changed"
	if c.Visible()[0].Name == "changed" {
		t.Fatal("Visible() must return a copy")
	}
}

func counterValue(t *testing.T, reg *metrics.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestController_BreakerPausesRefresh(t *testing.T) {
	calls := 0
	fetcher := source.FetcherFunc[seller.Product](func(ctx context.Context) ([]seller.Product, error) {
		calls++
		return nil, errors.New("backend down")
	})
	c, _ := newController(t, fetcher, viewstate.Options{Breaker: source.NewBreaker(2, time.Hour)})

	for i := 0; i < 2; i++ {
		if err := c.Refresh(context.Background()); err == nil {
			t.Fatalf("refresh %d: expected error", i)
		}
	}
	if err := c.Refresh(context.Background()); !errors.Is(err, source.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 fetches, got %d", calls)
	}
}

func TestController_Total(t *testing.T) {
	c, _ := newController(t, source.Static(catalog()), viewstate.Options{})
	_ = c.Mount(context.Background())
	_ = c.SelectFilter(seller.ProductExpired)

	if c.Total() != 3 || c.Count() != 1 {
		t.Fatalf("Total() = %d, Count() = %d", c.Total(), c.Count())
	}
}

// gateLogger parks the first armed "list queried" debug call until released, holding
// that render between query and delivery.
type gateLogger struct {
	logger.Logger
	armed   atomic.Bool
	held    chan struct{}
	release chan struct{}
	dropped chan struct{}
}

func newGateLogger() *gateLogger {
	return &gateLogger{
		Logger:  logger.Nop(),
		held:    make(chan struct{}),
		release: make(chan struct{}),
		dropped: make(chan struct{}, 1),
	}
}

func (g *gateLogger) Debug(msg string, args ...any) {
	switch msg {
	case "list queried":
		if g.armed.CompareAndSwap(true, false) {
			close(g.held)
			<-g.release
		}
	case "stale render dropped":
		select {
		case g.dropped <- struct{}{}:
		default:
		}
	}
}

func (g *gateLogger) With(...any) logger.Logger                 { return g }
func (g *gateLogger) WithContext(context.Context) logger.Logger { return g }

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestController_OvertakenSearchRenderIsDropped(t *testing.T) {
	gate := newGateLogger()
	c, r := newController(t, source.Static(catalog()), viewstate.Options{SearchDebounce: time.Millisecond, Logger: gate})
	if err := c.Mount(context.Background()); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}

	gate.armed.Store(true)
	if err := c.Type("o"); err != nil {
		t.Fatalf("Type() error = %v", err)
	}
	waitFor(t, gate.held, "debounced search query")

	if err := c.SelectFilter(seller.ProductExpired); err != nil {
		t.Fatalf("SelectFilter() error = %v", err)
	}
	close(gate.release)
	waitFor(t, gate.dropped, "stale render drop")

	last := r.last()
	want := listquery.Spec{Filter: seller.ProductExpired, Search: "o", Sort: seller.SortNewest}
	if last.State.Spec != want {
		t.Fatalf("last render spec = %+v, want %+v", last.State.Spec, want)
	}
	if got := ids(last.Visible); !reflect.DeepEqual(got, []string{"p2"}) {
		t.Fatalf("last render = %v, want [p2]", got)
	}
	if got := ids(c.Visible()); !reflect.DeepEqual(got, ids(last.Visible)) {
		t.Fatalf("Visible() = %v disagrees with last render %v", got, ids(last.Visible))
	}
}

func TestController_ConcurrentRendersStayOrdered(t *testing.T) {
	c, r := newController(t, source.Static(catalog()), viewstate.Options{SearchDebounce: time.Millisecond})
	_ = c.Mount(context.Background())

	filters := []string{listquery.FilterAll, seller.ProductActive, seller.ProductExpired}
	terms := []string{"", "o", "pep", "tom"}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				switch (i + j) % 3 {
				case 0:
					_ = c.SelectFilter(filters[j%len(filters)])
				case 1:
					_ = c.Type(terms[j%len(terms)])
				default:
					_ = c.Search(terms[(i+j)%len(terms)])
				}
			}
		}(i)
	}
	wg.Wait()
	c.FlushSearch()
	time.Sleep(20 * time.Millisecond)

	r.mu.Lock()
	all := append([]viewstate.Render[seller.Product](nil), r.all...)
	r.mu.Unlock()
	for i := 1; i < len(all); i++ {
		if all[i].Seq <= all[i-1].Seq {
			t.Fatalf("render %d has seq %d after %d", i, all[i].Seq, all[i-1].Seq)
		}
	}

	snap := c.Snapshot()
	last := all[len(all)-1]
	if last.Seq != snap.Seq || last.State != snap.State {
		t.Fatalf("last render seq=%d state=%+v, snapshot seq=%d state=%+v", last.Seq, last.State, snap.Seq, snap.State)
	}
	if !reflect.DeepEqual(ids(last.Visible), ids(snap.Visible)) {
		t.Fatalf("last render %v, snapshot %v", ids(last.Visible), ids(snap.Visible))
	}
}

func TestController_SnapshotIsConsistent(t *testing.T) {
	c, _ := newController(t, source.Static(catalog()), viewstate.Options{})
	_ = c.Mount(context.Background())
	_ = c.SelectFilter(seller.ProductActive)

	snap := c.Snapshot()
	if snap.Total != 3 || snap.State.Spec.Filter != seller.ProductActive {
		t.Fatalf("snapshot = %+v", snap)
	}
	if got := ids(snap.Visible); !reflect.DeepEqual(got, []string{"p3", "p1"}) {
		t.Fatalf("snapshot visible = %v", got)
	}
	snap.Visible[0].Name = "changed"
	if c.Visible()[0].Name == "changed" {
		t.Fatal("Snapshot() must return a copy")
	}
}
