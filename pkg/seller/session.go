package seller

import (
	"context"

	"github.com/agripanel/listquery/pkg/source"
	"github.com/agripanel/listquery/pkg/viewstate"
)

// Session is a mounted list screen with its record type erased.
type Session interface {
	Mount(ctx context.Context) error
	Refresh(ctx context.Context) error
	SelectFilter(filter string) error
	SelectSort(key string) error
	Type(term string) error
	FlushSearch() bool
	Search(term string) error
	State() viewstate.State
	// Snapshot returns the current display list as a table.
	Snapshot() Table
	// OnChange registers the render callback.
	OnChange(fn func(Table))
	Close()
}

type session[T Row] struct {
	*viewstate.Controller[T]
	domain *domain[T]
}

// NewSession creates a screen controller for the domain fed from path.
func (d *domain[T]) NewSession(path string, opts viewstate.Options) Session {
	if opts.Metrics == nil {
		opts.Metrics = d.metrics
	}
	return &session[T]{
		Controller: viewstate.NewController(d.engine, source.NewFileFetcher[T](path), opts),
		domain:     d,
	}
}

func (s *session[T]) Snapshot() Table {
	return s.table(s.Controller.Snapshot())
}

func (s *session[T]) OnChange(fn func(Table)) {
	if fn == nil {
		s.Controller.OnChange(nil)
		return
	}
	s.Controller.OnChange(func(r viewstate.Render[T]) {
		fn(s.table(r))
	})
}

func (s *session[T]) table(r viewstate.Render[T]) Table {
	return s.domain.table(r.State.Spec, r.Total, r.Visible)
}
