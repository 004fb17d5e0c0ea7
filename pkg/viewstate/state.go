// Package viewstate holds the per-screen query selection and drives the list query
// engine from user interactions.
package viewstate

import "github.com/agripanel/listquery/pkg/listquery"

// State is a screen's ephemeral selection. Transitions return new values and
// never modify the receiver.
type State struct {
	Spec   listquery.Spec `json:"spec" yaml:"spec"`
	Loaded bool           `json:"loaded" yaml:"loaded"`
}

// Initial returns the state of a freshly mounted screen.
func Initial(defaults listquery.Spec) State {
	return State{Spec: defaults}
}

// SetFilter selects a status filter chip.
func (s State) SetFilter(filter string) State {
	s.Spec.Filter = filter
	return s
}

// SetSearch replaces the search term.
func (s State) SetSearch(term string) State {
	s.Spec.Search = term
	return s
}

// SetSort selects a sort key.
func (s State) SetSort(key string) State {
	s.Spec.Sort = key
	return s
}

// Reset restores defaults and keeps the loaded flag.
func (s State) Reset(defaults listquery.Spec) State {
	s.Spec = defaults
	return s
}
