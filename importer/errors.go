package importer

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrSourceRequired is returned when no source corpus is given
	ErrSourceRequired = errors.New("source corpus is required")

	// ErrStoreRequired is returned when no destination store is given
	ErrStoreRequired = errors.New("destination store is required")
)
