package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/pkg/metrics"
)

// MemStore is a slice-backed, in-memory Store.
//
// Members are kept in insertion order. A single RWMutex guards the slice;
// reads share it, every mutation holds it exclusively for its whole
// read-modify-write step. Callers only ever receive copies.
type MemStore struct {
	mu      sync.RWMutex
	members []model.Member

	seed           []model.Member
	metricsEnabled bool
}

var _ Store = (*MemStore)(nil)

// NewMemStore builds a store with the given options applied.
func NewMemStore(_ context.Context, opts ...Option) *MemStore {
	s := &MemStore{metricsEnabled: true}
	for _, opt := range opts {
		opt(s)
	}

	s.members = make([]model.Member, 0, len(s.seed))
	for _, m := range s.seed {
		if s.findIndex(m.ID) >= 0 {
			continue
		}
		s.append(m)
	}
	s.seed = nil

	s.publishCount()
	return s
}

// findIndex is a linear scan for id. Ids are unique, so the first match is
// the only one.
func (s *MemStore) findIndex(id int) int {
	for i := range s.members {
		if s.members[i].ID == id {
			return i
		}
	}
	return -1
}

// nextID computes max(ids)+1 at call time.
func (s *MemStore) nextID() int {
	highest := 0
	for i := range s.members {
		if s.members[i].ID > highest {
			highest = s.members[i].ID
		}
	}
	return highest + 1
}

func (s *MemStore) append(m model.Member) {
	s.members = append(s.members, m)
}

// remove drops the member at index i, keeping the order of the rest.
func (s *MemStore) remove(i int) {
	copy(s.members[i:], s.members[i+1:])
	s.members[len(s.members)-1] = model.Member{}
	s.members = s.members[:len(s.members)-1]
}

// updateFields patches the member at index i in place.
func (s *MemStore) updateFields(i int, p model.Patch) {
	p.Apply(&s.members[i])
}

// List returns a copy of the roster in insertion order.
func (s *MemStore) List(ctx context.Context) ([]model.Member, error) {
	defer s.observeQuery(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Member, len(s.members))
	copy(out, s.members)
	return out, nil
}

// Get returns the member with id.
func (s *MemStore) Get(ctx context.Context, id int) (model.Member, error) {
	defer s.observeQuery(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.findIndex(id)
	if i < 0 {
		s.recordNotFound()
		return model.Member{}, fmt.Errorf("get %d: %w", id, ErrNotFound)
	}
	return s.members[i], nil
}

// NextID returns the id the next Create would assign.
func (s *MemStore) NextID(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID()
}

// Create appends a new member under the next id.
func (s *MemStore) Create(ctx context.Context, f model.Fields) (model.Member, error) {
	defer s.observeUpdate(time.Now())

	s.mu.Lock()
	m := f.Member(s.nextID())
	s.append(m)
	s.mu.Unlock()

	s.publishCount()
	return m, nil
}

// Replace overwrites member id, or creates it when absent.
func (s *MemStore) Replace(ctx context.Context, id int, f model.Fields) (model.Member, bool, error) {
	if id < 1 {
		return model.Member{}, false, fmt.Errorf("replace %d: %w", id, ErrInvalidID)
	}
	defer s.observeUpdate(time.Now())

	s.mu.Lock()
	i := s.findIndex(id)
	if i >= 0 {
		f.Overwrite(&s.members[i])
		m := s.members[i]
		s.mu.Unlock()
		return m, false, nil
	}
	m := f.Member(id)
	s.append(m)
	s.mu.Unlock()

	s.publishCount()
	return m, true, nil
}

// Patch merges p into member id.
func (s *MemStore) Patch(ctx context.Context, id int, p model.Patch) (model.Member, error) {
	defer s.observeUpdate(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findIndex(id)
	if i < 0 {
		s.recordNotFound()
		return model.Member{}, fmt.Errorf("patch %d: %w", id, ErrNotFound)
	}
	s.updateFields(i, p)
	return s.members[i], nil
}

// Delete removes member id if present.
func (s *MemStore) Delete(ctx context.Context, id int) (bool, error) {
	defer s.observeUpdate(time.Now())

	s.mu.Lock()
	i := s.findIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.remove(i)
	s.mu.Unlock()

	s.publishCount()
	return true, nil
}

// Count returns the number of members.
func (s *MemStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

// Close releases the roster. The store is empty afterwards.
func (s *MemStore) Close() error {
	s.mu.Lock()
	s.members = nil
	s.mu.Unlock()
	return nil
}

func (s *MemStore) publishCount() {
	if !s.metricsEnabled {
		return
	}
	s.mu.RLock()
	n := len(s.members)
	s.mu.RUnlock()
	metrics.UpdateMembersTotal(n)
}

func (s *MemStore) observeQuery(start time.Time) {
	if s.metricsEnabled {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}
}

func (s *MemStore) observeUpdate(start time.Time) {
	if s.metricsEnabled {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}
}

func (s *MemStore) recordNotFound() {
	if s.metricsEnabled {
		metrics.RecordErrorByComponent("repository", "not_found")
	}
}
