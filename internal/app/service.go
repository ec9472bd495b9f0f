// Package service provides the roster service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	repository "github.com/okian/roster/internal/adapters/repository"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/internal/domain/validation"
	"github.com/okian/roster/pkg/logger"
	"github.com/okian/roster/pkg/metrics"
)

// Operation names used in logs and metrics.
const (
	opList    = "list"
	opGet     = "get"
	opCreate  = "create"
	opReplace = "replace"
	opPatch   = "patch"
	opDelete  = "delete"
)

// Service owns the roster store and applies validation before every write.
// It is constructed once at process start and shared by all handlers.
type Service struct {
	mu sync.RWMutex

	store repository.Store

	// Configuration
	seed        []model.Member
	seedEnabled bool
	customStore bool

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore uses store instead of building a MemStore on Start. Seeding is
// skipped for a supplied store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.customStore = true
		}
	}
}

// WithSeed replaces the roster loaded on Start.
func WithSeed(members []model.Member) Option {
	return func(s *Service) {
		s.seed = members
	}
}

// WithSeedEnabled toggles loading the seed roster on Start.
func WithSeedEnabled(enabled bool) Option {
	return func(s *Service) {
		s.seedEnabled = enabled
	}
}

// New constructs a Service. Call Start before serving requests.
func New(opts ...Option) *Service {
	s := &Service{
		seed:        model.Seed(),
		seedEnabled: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the store and loads the seed roster.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if !s.customStore {
		var seed []model.Member
		if s.seedEnabled {
			seed = s.seed
		}
		s.store = repository.NewMemStore(ctx, repository.WithSeed(seed))
	}

	s.started = true
	s.logger.Info(ctx, "roster service started",
		logger.Int("members", s.store.Count(ctx)),
		logger.Bool("seeded", s.seedEnabled && !s.customStore),
	)
	return nil
}

// Stop releases the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if closer, ok := s.store.(interface{ Close() error }); ok && !s.customStore {
		if err := closer.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing roster store failed", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "roster service stopped")
}

func (s *Service) storeOrErr() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// List returns the whole roster in order.
func (s *Service) List(ctx context.Context) ([]model.Member, error) {
	store, err := s.storeOrErr()
	if err != nil {
		return nil, err
	}
	members, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opList, err)
	}
	return members, nil
}

// Get returns one member or repository.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int) (model.Member, error) {
	store, err := s.storeOrErr()
	if err != nil {
		return model.Member{}, err
	}
	m, err := store.Get(ctx, id)
	if err != nil {
		return model.Member{}, fmt.Errorf("%s: %w", opGet, err)
	}
	return m, nil
}

// Create validates p in full mode and appends a new member.
// Validation failures are returned as validation.Errors.
func (s *Service) Create(ctx context.Context, p validation.Payload) (model.Member, error) {
	store, err := s.storeOrErr()
	if err != nil {
		return model.Member{}, err
	}
	f, verrs := validation.Full(p)
	if verrs != nil {
		s.rejected(ctx, opCreate, verrs)
		return model.Member{}, verrs
	}
	m, err := store.Create(ctx, f)
	if err != nil {
		return model.Member{}, fmt.Errorf("%s: %w", opCreate, err)
	}
	metrics.RecordMemberOperation(opCreate, "created")
	s.logger.Info(ctx, "member created", logger.Int("id", m.ID), logger.String("name", m.Name))
	return m, nil
}

// Replace validates p in full mode and upserts member id.
// created reports whether the id was new.
func (s *Service) Replace(ctx context.Context, id int, p validation.Payload) (model.Member, bool, error) {
	store, err := s.storeOrErr()
	if err != nil {
		return model.Member{}, false, err
	}
	f, verrs := validation.Full(p)
	if verrs != nil {
		s.rejected(ctx, opReplace, verrs)
		return model.Member{}, false, verrs
	}
	m, created, err := store.Replace(ctx, id, f)
	if err != nil {
		return model.Member{}, false, fmt.Errorf("%s: %w", opReplace, err)
	}
	outcome := "updated"
	if created {
		outcome = "created"
	}
	metrics.RecordMemberOperation(opReplace, outcome)
	s.logger.Info(ctx, "member replaced", logger.Int("id", m.ID), logger.String("outcome", outcome))
	return m, created, nil
}

// Patch merges the supplied fields into member id. The id is resolved before
// the payload is validated, so an unknown id wins over a bad payload.
func (s *Service) Patch(ctx context.Context, id int, p validation.Payload) (model.Member, error) {
	store, err := s.storeOrErr()
	if err != nil {
		return model.Member{}, err
	}
	current, err := store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RecordMemberOperation(opPatch, "not_found")
		}
		return model.Member{}, fmt.Errorf("%s: %w", opPatch, err)
	}
	patch, verrs := validation.Partial(p)
	if verrs != nil {
		s.rejected(ctx, opPatch, verrs)
		return model.Member{}, verrs
	}
	if patch.Empty() {
		metrics.RecordMemberOperation(opPatch, "noop")
		return current, nil
	}
	m, err := store.Patch(ctx, id, patch)
	if err != nil {
		return model.Member{}, fmt.Errorf("%s: %w", opPatch, err)
	}
	metrics.RecordMemberOperation(opPatch, "updated")
	s.logger.Info(ctx, "member patched", logger.Int("id", m.ID))
	return m, nil
}

// Delete removes member id. Deleting an absent id succeeds.
func (s *Service) Delete(ctx context.Context, id int) error {
	store, err := s.storeOrErr()
	if err != nil {
		return err
	}
	removed, err := store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", opDelete, err)
	}
	if !removed {
		metrics.RecordMemberOperation(opDelete, "absent")
		s.logger.Debug(ctx, "delete of absent member", logger.Int("id", id))
		return nil
	}
	metrics.RecordMemberOperation(opDelete, "deleted")
	s.logger.Info(ctx, "member deleted", logger.Int("id", id))
	return nil
}

func (s *Service) rejected(ctx context.Context, op string, verrs validation.Errors) {
	for field := range verrs {
		metrics.RecordValidationFailure(op, field)
	}
	metrics.RecordMemberOperation(op, "invalid")
	s.logger.Debug(ctx, "payload rejected", logger.String("op", op), logger.Any("errors", map[string][]string(verrs)))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"seedEnabled": s.seedEnabled,
	}
	if s.started {
		ctx := context.Background()
		count := s.store.Count(ctx)
		stats["members"] = count
		stats["nextId"] = s.store.NextID(ctx)
		metrics.UpdateMembersTotal(count)
	}
	return stats
}
