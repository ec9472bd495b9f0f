package repository

import "github.com/okian/roster/internal/domain/model"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithSeed preloads the store with members, in order. Duplicate ids keep the
// first occurrence.
func WithSeed(members []model.Member) Option {
	return func(s *MemStore) {
		s.seed = members
	}
}

// WithMetrics toggles Prometheus observations for store operations.
func WithMetrics(enabled bool) Option {
	return func(s *MemStore) {
		s.metricsEnabled = enabled
	}
}
