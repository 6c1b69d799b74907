package stock

import (
	"context"
	"sync"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/entity"
)

// MemoryJournal is an in-process append-only Repository.
type MemoryJournal struct {
	mu         sync.RWMutex
	byMaterial map[string][]entity.StockMovement
	ids        map[string]struct{}
}

// NewMemoryJournal creates an empty journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{
		byMaterial: make(map[string][]entity.StockMovement),
		ids:        make(map[string]struct{}),
	}
}

func (j *MemoryJournal) Append(_ context.Context, movements ...entity.StockMovement) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	batch := make(map[string]struct{}, len(movements))
	for _, m := range movements {
		_, seen := j.ids[m.ID]
		_, repeated := batch[m.ID]
		if seen || repeated {
			return apperror.NewConflict("movement already recorded").WithDetail("id", m.ID)
		}
		batch[m.ID] = struct{}{}
	}
	for _, m := range movements {
		j.ids[m.ID] = struct{}{}
		j.byMaterial[m.MaterialID] = append(j.byMaterial[m.MaterialID], m)
	}
	return nil
}

func (j *MemoryJournal) ListByMaterial(_ context.Context, materialID string) ([]entity.StockMovement, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return append([]entity.StockMovement(nil), j.byMaterial[materialID]...), nil
}

// Len returns the number of movements recorded.
func (j *MemoryJournal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.ids)
}
