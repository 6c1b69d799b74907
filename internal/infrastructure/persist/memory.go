package persist

import (
	"context"
	"sort"
	"sync"

	"maintledger/internal/core/persist"
)

// MemoryTable is an in-process persist.Table, used in tests and when the
// service runs without a database.
type MemoryTable[T any] struct {
	name string

	mu   sync.RWMutex
	rows map[string]T

	// FailWith, when set, is returned by every write.
	FailWith error
}

var _ persist.Table[int] = (*MemoryTable[int])(nil)

// NewMemoryTable creates an empty table.
func NewMemoryTable[T any](name string) *MemoryTable[T] {
	return &MemoryTable[T]{name: name, rows: make(map[string]T)}
}

func (t *MemoryTable[T]) Name() string { return t.name }

func (t *MemoryTable[T]) List(_ context.Context, offset, limit int) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if offset > len(ids) {
		offset = len(ids)
	}
	end := len(ids)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]T, 0, end-offset)
	for _, id := range ids[offset:end] {
		out = append(out, t.rows[id])
	}
	return out, nil
}

func (t *MemoryTable[T]) Upsert(_ context.Context, id string, record T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailWith != nil {
		return t.FailWith
	}
	t.rows[id] = record
	return nil
}

func (t *MemoryTable[T]) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailWith != nil {
		return t.FailWith
	}
	delete(t.rows, id)
	return nil
}

// Get returns the stored row.
func (t *MemoryTable[T]) Get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.rows[id]
	return r, ok
}

// Len returns the number of stored rows.
func (t *MemoryTable[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}
