package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/roster/internal/domain/model"
)

func fields(name string) model.Fields {
	return model.Fields{
		Position: "Member",
		Name:     name,
		Hometown: "Chicago, IL",
		Year:     "Senior",
		Major:    "Biology",
	}
}

func seeded(ids ...int) []model.Member {
	out := make([]model.Member, 0, len(ids))
	for _, id := range ids {
		out = append(out, fields("seed").Member(id))
	}
	return out
}

func TestMemStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(ctx, WithMetrics(false))

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}
	if id := store.NextID(ctx); id != 1 {
		t.Errorf("expected next id 1 on empty store, got %d", id)
	}

	m, err := store.Create(ctx, fields("Ada"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != 1 {
		t.Errorf("expected id 1, got %d", m.ID)
	}

	got, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != m {
		t.Errorf("round trip mismatch: %+v != %+v", got, m)
	}

	if _, err := store.Get(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemStore_NextIDDerivation(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(ctx, WithMetrics(false), WithSeed(seeded(1, 2, 3, 5)))

	m, err := store.Create(ctx, fields("next"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != 6 {
		t.Errorf("expected id 6 for {1,2,3,5}, got %d", m.ID)
	}

	// Deleting the maximum frees its id for reuse.
	if _, err := store.Delete(ctx, 6); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Delete(ctx, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id := store.NextID(ctx); id != 4 {
		t.Errorf("expected next id 4 after deletes, got %d", id)
	}
}

func TestMemStore_ListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(ctx, WithMetrics(false), WithSeed(seeded(3, 1, 2)))

	if _, _, err := store.Replace(ctx, 1, fields("replaced")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Create(ctx, fields("new")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{3, 1, 2, 4}
	if len(list) != len(want) {
		t.Fatalf("expected %d members, got %d", len(want), len(list))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("position %d: expected id %d, got %d", i, id, list[i].ID)
		}
	}
	if list[1].Name != "replaced" {
		t.Errorf("replace should update in place, got %q", list[1].Name)
	}

	// The returned slice is a copy.
	list[0].Name = "mutated"
	again, _ := store.List(ctx)
	if again[0].Name == "mutated" {
		t.Error("List leaked internal storage")
	}
}

func TestMemStore_ReplaceUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(ctx, WithMetrics(false))

	m, created, err := store.Replace(ctx, 999, fields("first"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created || m.ID != 999 {
		t.Errorf("expected created member 999, got created=%v id=%d", created, m.ID)
	}

	m, created, err = store.Replace(ctx, 999, fields("second"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("second replace should update, not create")
	}
	if m.ID != 999 || m.Name != "second" {
		t.Errorf("unexpected member after replace: %+v", m)
	}
	if store.Count(ctx) != 1 {
		t.Errorf("expected 1 member, got %d", store.Count(ctx))
	}

	if _, _, err := store.Replace(ctx, 0, fields("zero")); !errors.Is(err, ErrInvalidID) {
		t.Errorf("expected ErrInvalidID for id 0, got %v", err)
	}
}

func TestMemStore_Patch(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(ctx, WithMetrics(false), WithSeed(seeded(1)))

	bio := "new bio"
	m, err := store.Patch(ctx, 1, model.Patch{Bio: &bio})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := fields("seed").Member(1)
	want.Bio = bio
	if m != want {
		t.Errorf("patch touched more than bio: %+v", m)
	}

	if _, err := store.Patch(ctx, 2, model.Patch{Bio: &bio}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(ctx, WithMetrics(false), WithSeed(seeded(1, 2)))

	removed, err := store.Delete(ctx, 1)
	if err != nil || !removed {
		t.Fatalf("expected first delete to remove, got removed=%v err=%v", removed, err)
	}
	sizeAfterFirst := store.Count(ctx)

	removed, err = store.Delete(ctx, 1)
	if err != nil || removed {
		t.Fatalf("expected second delete to be a no-op, got removed=%v err=%v", removed, err)
	}
	if store.Count(ctx) != sizeAfterFirst {
		t.Errorf("size changed on repeated delete: %d != %d", store.Count(ctx), sizeAfterFirst)
	}
}

func TestMemStore_SeedDuplicatesKeepFirst(t *testing.T) {
	ctx := context.Background()
	seed := seeded(1, 1)
	seed[1].Name = "dup"
	store := NewMemStore(ctx, WithMetrics(false), WithSeed(seed))

	if store.Count(ctx) != 1 {
		t.Fatalf("expected duplicate seed ids to collapse, got %d", store.Count(ctx))
	}
	m, _ := store.Get(ctx, 1)
	if m.Name != "seed" {
		t.Errorf("expected first seed to win, got %q", m.Name)
	}
}

func TestMemStore_ConcurrentCreatesYieldUniqueIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(ctx, WithMetrics(false))

	const goroutines = 32
	const perGoroutine = 50

	var wg sync.WaitGroup
	ids := make(chan int, goroutines*perGoroutine)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				m, err := store.Create(ctx, fields("c"))
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				ids <- m.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != goroutines*perGoroutine {
		t.Errorf("expected %d ids, got %d", goroutines*perGoroutine, len(seen))
	}
	if store.NextID(ctx) != goroutines*perGoroutine+1 {
		t.Errorf("unexpected next id %d", store.NextID(ctx))
	}
}

func TestMemStore_Close(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(ctx, WithSeed(seeded(1, 2)))
	if err := store.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Count(ctx) != 0 {
		t.Errorf("expected empty store after Close, got %d", store.Count(ctx))
	}
}
