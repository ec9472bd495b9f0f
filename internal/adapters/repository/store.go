// Package repository defines the roster store interface and errors.
package repository

import (
	"context"

	"github.com/okian/roster/internal/domain/model"
)

// Store provides read/write access to the roster.
//
// Implementations must be safe for concurrent use: every composite
// operation (e.g. computing the next id and appending) is atomic.
type Store interface {
	// List returns every member in insertion order.
	List(ctx context.Context) ([]model.Member, error)

	// Get returns the member with id, or ErrNotFound.
	Get(ctx context.Context, id int) (model.Member, error)

	// NextID returns max(existing ids)+1, or 1 for an empty roster.
	// It is recomputed on every call, so ids freed by deletes can be reused.
	NextID(ctx context.Context) int

	// Create appends a member built from f under the next id.
	Create(ctx context.Context, f model.Fields) (model.Member, error)

	// Replace overwrites the non-id fields of member id in place, or appends
	// a new member with that id. created reports which one happened.
	Replace(ctx context.Context, id int, f model.Fields) (m model.Member, created bool, err error)

	// Patch merges p into member id. Returns ErrNotFound if id is absent.
	Patch(ctx context.Context, id int, p model.Patch) (model.Member, error)

	// Delete removes member id. removed is false when id was absent; that is
	// not an error.
	Delete(ctx context.Context, id int) (removed bool, err error)

	// Count returns the number of members.
	Count(ctx context.Context) int
}
