// Package stock provides the stock movement journal (Kardex).
package stock

import (
	"context"
	"time"

	"maintledger/internal/core/entity"
	"maintledger/internal/core/types"
)

// Repository defines storage for the movement journal.
// Implementations are append-only: there is no update or delete.
type Repository interface {
	// Append stores movements atomically. An id seen before, or twice in
	// the batch, is a conflict and nothing is stored.
	Append(ctx context.Context, movements ...entity.StockMovement) error

	// ListByMaterial returns every movement of a material in append order.
	ListByMaterial(ctx context.Context, materialID string) ([]entity.StockMovement, error)
}

// Order selects the Kardex view direction.
type Order string

const (
	// OrderAsc is chronological, used for replay and audit.
	OrderAsc Order = "asc"
	// OrderDesc is most recent first, used for activity reporting.
	OrderDesc Order = "desc"
)

// MovementFilter for filtering movement history.
type MovementFilter struct {
	Order    Order
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
}

// KardexEntry is a movement with the material balance after it was applied.
type KardexEntry struct {
	entity.StockMovement
	Balance types.Quantity `json:"balance"`
}

// Turnover represents in/out totals over a period.
type Turnover struct {
	MaterialID     string         `json:"materialId"`
	FromDate       time.Time      `json:"fromDate"`
	ToDate         time.Time      `json:"toDate"`
	OpeningBalance types.Quantity `json:"openingBalance"`
	Receipt        types.Quantity `json:"receipt"`
	Expense        types.Quantity `json:"expense"`
	ClosingBalance types.Quantity `json:"closingBalance"`
}

// Mismatch is a location whose replayed balance differs from the ledger.
type Mismatch struct {
	Location string         `json:"location"`
	Ledger   types.Quantity `json:"ledger"`
	Replayed types.Quantity `json:"replayed"`
}

// Reconciliation is the result of replaying the journal against a material.
type Reconciliation struct {
	MaterialID    string         `json:"materialId"`
	Movements     int            `json:"movements"`
	LedgerTotal   types.Quantity `json:"ledgerTotal"`
	ReplayedTotal types.Quantity `json:"replayedTotal"`
	Mismatches    []Mismatch     `json:"mismatches,omitempty"`
}

// OK reports whether the journal reproduces the ledger exactly.
func (r Reconciliation) OK() bool {
	return len(r.Mismatches) == 0 && r.LedgerTotal == r.ReplayedTotal
}
