// Package source defines the shape of the list-fetching collaborator and a
// file-backed implementation used by the CLI and tests.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrDecode classifies documents that do not hold a record list.
	ErrDecode = errors.New("source decode error")
	// ErrTimeout is returned when a fetch exceeds its timeout.
	ErrTimeout = errors.New("source fetch timed out")
)

// Fetcher resolves the canonical record list for one screen.
type Fetcher[T any] interface {
	Fetch(ctx context.Context) ([]T, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc[T any] func(ctx context.Context) ([]T, error)

// Fetch calls f.
func (f FetcherFunc[T]) Fetch(ctx context.Context) ([]T, error) {
	return f(ctx)
}

// Static returns a fetcher that always yields a copy of records.
func Static[T any](records []T) Fetcher[T] {
	return FetcherFunc[T](func(ctx context.Context) ([]T, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return append(make([]T, 0, len(records)), records...), nil
	})
}

// FileFetcher reads records from a YAML or JSON file on every Fetch.
type FileFetcher[T any] struct {
	path string
}

// NewFileFetcher creates a fetcher for path.
func NewFileFetcher[T any](path string) *FileFetcher[T] {
	return &FileFetcher[T]{path: path}
}

// Path returns the file the fetcher reads.
func (f *FileFetcher[T]) Path() string {
	return f.path
}

// Fetch reads and decodes the file.
func (f *FileFetcher[T]) Fetch(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	records, err := Decode[T](data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	return records, nil
}

// Decode parses a YAML or JSON document holding either a top-level list of records
// or a mapping with the list under "items". An empty document yields no records.
func Decode[T any](data []byte) ([]T, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(doc.Content) == 0 {
		return []T{}, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
	case yaml.MappingNode:
		items := mappingValue(root, "items")
		if items == nil {
			return nil, fmt.Errorf("%w: mapping has no items key", ErrDecode)
		}
		root = items
	default:
		return nil, fmt.Errorf("%w: expected a list of records at line %d", ErrDecode, root.Line)
	}

	out := []T{}
	if err := root.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return out, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
