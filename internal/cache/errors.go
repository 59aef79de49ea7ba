package cache

import "errors"

// Cache errors.
var (
	// ErrNotFound is returned when a key does not exist in the cache.
	ErrNotFound = errors.New("cache: key not found")

	// ErrClosed is returned when an operation is attempted on a closed cache.
	ErrClosed = errors.New("cache: closed")

	// ErrInvalidMode is returned when the configured mode is unknown.
	ErrInvalidMode = errors.New("cache: invalid mode")

	// ErrInvalidNumCounters is returned when NumCounters is not positive.
	ErrInvalidNumCounters = errors.New("cache: num_counters must be > 0")

	// ErrInvalidMaxCost is returned when MaxCost is not positive.
	ErrInvalidMaxCost = errors.New("cache: max_cost must be > 0")
)
