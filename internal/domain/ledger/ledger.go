// Package ledger holds per-material location balances and the allocator
// operations that move stock between them.
package ledger

import (
	"context"
	"sort"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/entity"
	"maintledger/internal/core/types"
)

// Recompute sets CurrentStock to the fresh sum of the location balances.
// The total is never adjusted incrementally.
func Recompute(m *entity.Material) {
	m.CurrentStock = m.SumLocations()
}

// Verify checks the ledger invariants of a single material:
// no negative location and CurrentStock equal to the location sum.
func Verify(m *entity.Material) error {
	for _, l := range m.Locations {
		if l.Quantity.IsNegative() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "negative location balance").
				WithDetail("material_id", m.ID).
				WithDetail("location", l.Name).
				WithDetail("quantity", l.Quantity.Float64())
		}
	}
	if sum := m.SumLocations(); sum != m.CurrentStock {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "current stock does not match location sum").
			WithDetail("material_id", m.ID).
			WithDetail("current_stock", m.CurrentStock.Float64()).
			WithDetail("location_sum", sum.Float64())
	}
	return nil
}

// LowStockItem is one row of the reorder report.
type LowStockItem struct {
	MaterialID   string         `json:"materialId"`
	Code         string         `json:"code"`
	Description  string         `json:"description"`
	CurrentStock types.Quantity `json:"currentStock"`
	MinStock     types.Quantity `json:"minStock"`
	Shortfall    types.Quantity `json:"shortfall"`
}

// LowStock lists materials whose stock is under their minimum,
// largest shortfall first.
func LowStock(_ context.Context, materials []*entity.Material) []LowStockItem {
	var items []LowStockItem
	for _, m := range materials {
		if !m.IsBelowMinimum() {
			continue
		}
		items = append(items, LowStockItem{
			MaterialID:   m.ID,
			Code:         m.Code,
			Description:  m.Description,
			CurrentStock: m.CurrentStock,
			MinStock:     m.MinStock,
			Shortfall:    m.MinStock - m.CurrentStock,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Shortfall > items[j].Shortfall
	})
	return items
}
