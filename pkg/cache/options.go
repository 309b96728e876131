package cache

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultCapacity      = 32
	DefaultByteBudget    = 1049000
	DefaultObjectCeiling = 102400
)

// StoreOption is a functional option for building a Store
type StoreOption func(*Store)

// WithCapacity sets the number of slots. It does not depend on the byte budget.
func WithCapacity(slots int) StoreOption {
	return func(s *Store) {
		s.capacity = slots
	}
}

// WithByteBudget sets the total number of content bytes the store may hold.
func WithByteBudget(bytes int) StoreOption {
	return func(s *Store) {
		s.budget = bytes
	}
}

// WithObjectCeiling sets the largest single object the store admits.
func WithObjectCeiling(bytes int) StoreOption {
	return func(s *Store) {
		s.ceiling = bytes
	}
}

// WithClock replaces time.Now for RecordedAt stamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger used for eviction and rejection events.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}
