// Package domain provides the shared repository used by the domain services.
package domain

import (
	"context"
	"fmt"
	"sync"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/persist"
	"maintledger/pkg/logger"
)

// Record is an entity stored by id that can copy itself.
type Record[T any] interface {
	GetID() string
	Clone() T
}

// DefaultPageSize is used when hydrating from the store.
const DefaultPageSize = 500

// Repository is the local authority for one entity table.
//
// Reads and writes go to the in-memory copy first; every Save or Delete is
// then handed to the Submitter as a write of a snapshot, and the returned
// Ack reports whether the store accepted it. Local state is never reverted
// when the store rejects a write.
type Repository[T Record[T]] struct {
	entityName string
	table      persist.Table[T]
	writer     persist.Submitter

	mu    sync.RWMutex
	items map[string]T
	order []string
}

// NewRepository creates a repository over table. entityName is used in
// not-found errors.
func NewRepository[T Record[T]](entityName string, table persist.Table[T], writer persist.Submitter) *Repository[T] {
	return &Repository[T]{
		entityName: entityName,
		table:      table,
		writer:     writer,
		items:      make(map[string]T),
	}
}

// Hydrate loads every record from the store, page by page.
func (r *Repository[T]) Hydrate(ctx context.Context, pageSize int) (int, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	loaded := 0
	for offset := 0; ; offset += pageSize {
		page, err := r.table.List(ctx, offset, pageSize)
		if err != nil {
			return loaded, fmt.Errorf("list %s at offset %d: %w", r.table.Name(), offset, err)
		}
		r.mu.Lock()
		for _, rec := range page {
			r.putLocked(rec)
		}
		r.mu.Unlock()
		loaded += len(page)
		if len(page) < pageSize {
			break
		}
	}

	logger.Info(ctx, "hydrated repository", "table", r.table.Name(), "records", loaded)
	return loaded, nil
}

// Get returns a copy of the record.
func (r *Repository[T]) Get(_ context.Context, id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[id]
	if !ok {
		var zero T
		return zero, apperror.NewNotFound(r.entityName, id)
	}
	return rec.Clone(), nil
}

// EntityName is the name used in not-found errors.
func (r *Repository[T]) EntityName() string { return r.entityName }

// Exists reports whether id is known.
func (r *Repository[T]) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[id]
	return ok
}

// All returns copies of every record in insertion order.
func (r *Repository[T]) All(_ context.Context) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id].Clone())
	}
	return out
}

// Len returns the number of records.
func (r *Repository[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Save stores rec locally and schedules the store upsert.
func (r *Repository[T]) Save(ctx context.Context, rec T) *persist.Ack {
	id := rec.GetID()
	snapshot := rec.Clone()

	r.mu.Lock()
	r.putLocked(rec.Clone())
	r.mu.Unlock()

	return r.writer.Submit(ctx, r.table.Name(), id, func(ctx context.Context) error {
		return r.table.Upsert(ctx, id, snapshot)
	})
}

// Delete removes id locally and schedules the store delete.
func (r *Repository[T]) Delete(ctx context.Context, id string) *persist.Ack {
	r.mu.Lock()
	if _, ok := r.items[id]; ok {
		delete(r.items, id)
		for i, v := range r.order {
			if v == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	return r.writer.Submit(ctx, r.table.Name(), id, func(ctx context.Context) error {
		return r.table.Delete(ctx, id)
	})
}

func (r *Repository[T]) putLocked(rec T) {
	id := rec.GetID()
	if _, ok := r.items[id]; !ok {
		r.order = append(r.order, id)
	}
	r.items[id] = rec
}
