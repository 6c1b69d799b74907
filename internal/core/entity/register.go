package entity

import (
	"context"
	"time"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/id"
	"maintledger/internal/core/types"
)

// MovementKind defines what a stock movement did to the location balances.
type MovementKind string

const (
	// MovementIn credits ToLocation (receipt, new location with initial quantity).
	MovementIn MovementKind = "IN"
	// MovementOut debits FromLocation, or the aggregate for FIFO consumption.
	MovementOut MovementKind = "OUT"
	// MovementTransfer debits FromLocation and credits ToLocation in one row.
	MovementTransfer MovementKind = "TRANSFER"
	// MovementAdd records an opening balance found on a newly registered material.
	MovementAdd MovementKind = "ADD"
)

// StockMovement is one immutable row of the Kardex.
// Movements are never updated or deleted once recorded.
type StockMovement struct {
	ID         string         `json:"id"`
	Kind       MovementKind   `json:"kind"`
	MaterialID string         `json:"materialId"`
	Quantity   types.Quantity `json:"quantity"`
	Timestamp  time.Time      `json:"timestamp"`
	ActorID    string         `json:"actorId,omitempty"`

	FromLocation string `json:"fromLocation,omitempty"`
	ToLocation   string `json:"toLocation,omitempty"`

	// Context tags
	LinkedWorkOrderID string `json:"linkedWorkOrderId,omitempty"`
	LinkedProjectID   string `json:"linkedProjectId,omitempty"`
	CostCenter        string `json:"costCenter,omitempty"`
	Note              string `json:"note,omitempty"`

	// Allocations lists the per-location debits of a FIFO consumption.
	// The movement itself still carries the total quantity.
	Allocations []LocationBalance `json:"allocations,omitempty"`
}

// NewStockMovement creates a movement with a generated time-ordered id.
func NewStockMovement(kind MovementKind, materialID string, qty types.Quantity, at time.Time) StockMovement {
	return StockMovement{
		ID:         id.New(),
		Kind:       kind,
		MaterialID: materialID,
		Quantity:   qty,
		Timestamp:  at.UTC(),
	}
}

func (m *StockMovement) GetID() string { return m.ID }

// SignedQuantity returns the movement's effect on the material total.
// IN/ADD = positive, OUT = negative, TRANSFER = zero.
func (m *StockMovement) SignedQuantity() types.Quantity {
	switch m.Kind {
	case MovementIn, MovementAdd:
		return m.Quantity
	case MovementOut:
		return m.Quantity.Neg()
	default:
		return 0
	}
}

// LocationDeltas returns the per-location balance changes this movement applies.
func (m *StockMovement) LocationDeltas() []LocationBalance {
	switch m.Kind {
	case MovementIn, MovementAdd:
		return []LocationBalance{{Name: m.ToLocation, Quantity: m.Quantity}}
	case MovementTransfer:
		return []LocationBalance{
			{Name: m.FromLocation, Quantity: m.Quantity.Neg()},
			{Name: m.ToLocation, Quantity: m.Quantity},
		}
	case MovementOut:
		if len(m.Allocations) > 0 {
			out := make([]LocationBalance, len(m.Allocations))
			for i, a := range m.Allocations {
				out[i] = LocationBalance{Name: a.Name, Quantity: a.Quantity.Neg()}
			}
			return out
		}
		return []LocationBalance{{Name: m.FromLocation, Quantity: m.Quantity.Neg()}}
	}
	return nil
}

// Validate checks the movement shape for its kind.
func (m *StockMovement) Validate(_ context.Context) error {
	if m.MaterialID == "" {
		return apperror.NewValidation("movement material is required")
	}
	if !m.Quantity.IsPositive() {
		return apperror.NewValidation("movement quantity must be positive").
			WithDetail("quantity", m.Quantity.Float64())
	}
	switch m.Kind {
	case MovementIn, MovementAdd:
		if m.ToLocation == "" {
			return apperror.NewValidation("movement requires a destination location")
		}
	case MovementOut:
		if m.FromLocation == "" && len(m.Allocations) == 0 {
			return apperror.NewValidation("movement requires a source location")
		}
	case MovementTransfer:
		if m.FromLocation == "" || m.ToLocation == "" {
			return apperror.NewValidation("transfer requires both locations")
		}
	default:
		return apperror.NewValidation("unknown movement kind").WithDetail("kind", string(m.Kind))
	}
	return nil
}

// Clone returns a deep copy.
func (m *StockMovement) Clone() *StockMovement {
	c := *m
	c.Allocations = append([]LocationBalance(nil), m.Allocations...)
	return &c
}
