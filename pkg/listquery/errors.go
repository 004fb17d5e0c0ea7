package listquery

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSchema classifies schemas that cannot back an Engine.
	ErrInvalidSchema = errors.New("listquery invalid schema")
	// ErrUnknownSortKey classifies sort keys missing from a schema's sort registry.
	ErrUnknownSortKey = errors.New("listquery unknown sort key")
)

func schemaError(name, message string) error {
	if name == "" {
		return fmt.Errorf("%w: %s", ErrInvalidSchema, message)
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidSchema, name, message)
}
