package viewstate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/agripanel/listquery/pkg/debounce"
	"github.com/agripanel/listquery/pkg/listquery"
	"github.com/agripanel/listquery/pkg/observability/logger"
	"github.com/agripanel/listquery/pkg/observability/metrics"
	"github.com/agripanel/listquery/pkg/source"
)

// ErrClosed is returned by operations on a controller after Close.
var ErrClosed = errors.New("view controller closed")

// Options configures a Controller.
type Options struct {
	// SearchDebounce is the quiet period before a typed term is applied.
	SearchDebounce time.Duration
	// FetchTimeout bounds each Refresh. Zero disables the timeout.
	FetchTimeout time.Duration
	// Breaker stops refreshing a failing source for a while. Nil disables it.
	Breaker *source.Breaker
	Logger  logger.Logger
	Metrics *metrics.ListMetrics
}

// Render is one published display list with the selection and source size it was
// computed from. Seq increases with every query.
type Render[T any] struct {
	Seq     uint64
	State   State
	Total   int
	Visible []T
}

// Controller owns one screen's source list and selection. The source list is only
// replaced by Refresh; every interaction re-queries it and publishes the display list.
type Controller[T any] struct {
	engine    *listquery.Engine[T]
	fetcher   source.Fetcher[T]
	debouncer *debounce.Debouncer
	log       logger.Logger
	metrics   *metrics.ListMetrics

	mu       sync.Mutex
	state    State
	records  []T
	visible  []T
	seq      uint64
	onChange func(Render[T])
	closed   bool

	// renderMu serializes callbacks; delivered is the newest Seq handed out.
	renderMu  sync.Mutex
	delivered uint64
}

// NewController creates a controller for engine's domain fed by fetcher.
func NewController[T any](engine *listquery.Engine[T], fetcher source.Fetcher[T], opts Options) *Controller[T] {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Controller[T]{
		engine:    engine,
		fetcher:   source.WithBreaker(source.WithTimeout(fetcher, opts.FetchTimeout), opts.Breaker),
		debouncer: debounce.New(opts.SearchDebounce),
		log:       log.With("domain", engine.Name()),
		metrics:   opts.Metrics,
		state:     Initial(engine.DefaultSpec()),
		records:   []T{},
		visible:   []T{},
	}
}

// OnChange registers the render callback. Callbacks run one at a time in Seq order;
// a render overtaken by a newer one is dropped. fn must not call back into c.
func (c *Controller[T]) OnChange(fn func(Render[T])) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Mount resets the selection to the domain defaults and loads the source list.
func (c *Controller[T]) Mount(ctx context.Context) error {
	c.debouncer.Cancel()
	if err := c.apply(func(s State) State { return s.Reset(c.engine.DefaultSpec()) }); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// Refresh fetches the source list. On failure the previous list stays in place.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	if c.isClosed() {
		return ErrClosed
	}
	log := c.log.WithContext(ctx)

	start := time.Now()
	records, err := c.fetcher.Fetch(ctx)
	c.metrics.ObserveRefresh(c.engine.Name(), err, time.Since(start))
	if err != nil {
		log.Error("failed to refresh list", "error", err)
		return fmt.Errorf("refresh %s: %w", c.engine.Name(), err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.records = append(make([]T, 0, len(records)), records...)
	c.state.Loaded = true
	c.mu.Unlock()

	log.Debug("list refreshed", "records", len(records))
	return c.requery()
}

// SelectFilter applies a filter chip immediately.
func (c *Controller[T]) SelectFilter(filter string) error {
	return c.apply(func(s State) State { return s.SetFilter(filter) })
}

// SelectSort applies a sort key immediately.
func (c *Controller[T]) SelectSort(key string) error {
	return c.apply(func(s State) State { return s.SetSort(key) })
}

// Type records a keystroke in the search box. The term is applied once typing has
// paused for the debounce period.
func (c *Controller[T]) Type(term string) error {
	if c.isClosed() {
		return ErrClosed
	}
	apply := func() {
		_ = c.apply(func(s State) State { return s.SetSearch(term) })
	}
	if !c.debouncer.Trigger(apply) {
		return ErrClosed
	}
	return nil
}

// FlushSearch applies a pending typed term now, e.g. on keyboard submit.
func (c *Controller[T]) FlushSearch() bool {
	return c.debouncer.Flush()
}

// Search applies term immediately and cancels any pending typed term.
func (c *Controller[T]) Search(term string) error {
	c.debouncer.Cancel()
	return c.apply(func(s State) State { return s.SetSearch(term) })
}

// State returns the current selection.
func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Visible returns a copy of the current display list.
func (c *Controller[T]) Visible() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(make([]T, 0, len(c.visible)), c.visible...)
}

// Snapshot returns the selection, source size and display list as one consistent view.
func (c *Controller[T]) Snapshot() Render[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Total returns the size of the source list.
func (c *Controller[T]) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Count returns the badge count for the current display list.
func (c *Controller[T]) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.visible)
}

// Close cancels any pending search and detaches the screen. Later interactions
// return ErrClosed and no further query runs; a render already in progress on
// another goroutine may still complete.
func (c *Controller[T]) Close() {
	c.debouncer.Stop()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.onChange = nil
}

func (c *Controller[T]) apply(transition func(State) State) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.state = transition(c.state)
	c.mu.Unlock()
	return c.requery()
}

func (c *Controller[T]) requery() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.visible = c.engine.Query(c.records, c.state.Spec)
	c.seq++
	render := c.snapshotLocked()
	notify := c.onChange
	c.mu.Unlock()

	c.metrics.ObserveQuery(c.engine.Name(), len(render.Visible))
	c.log.Debug("list queried", "seq", render.Seq, "visible", len(render.Visible))
	c.publish(notify, render)
	return nil
}

func (c *Controller[T]) publish(notify func(Render[T]), render Render[T]) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()
	if render.Seq <= c.delivered {
		c.log.Debug("stale render dropped", "seq", render.Seq, "delivered", c.delivered)
		return
	}
	c.delivered = render.Seq
	if notify != nil {
		notify(render)
	}
}

func (c *Controller[T]) snapshotLocked() Render[T] {
	return Render[T]{
		Seq:     c.seq,
		State:   c.state,
		Total:   len(c.records),
		Visible: append(make([]T, 0, len(c.visible)), c.visible...),
	}
}

func (c *Controller[T]) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
