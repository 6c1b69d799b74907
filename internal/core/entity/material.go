package entity

import (
	"context"
	"time"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/types"
)

// LocationBalance is the quantity held at one named storage location.
type LocationBalance struct {
	Name     string         `json:"name"`
	Quantity types.Quantity `json:"quantity"`
}

// Material is a stocked item.
// CurrentStock is a cache of the location sum and is never authoritative;
// the ledger recomputes it after every mutation.
type Material struct {
	ID           string            `json:"id"`
	Code         string            `json:"code"`
	Description  string            `json:"description"`
	Unit         string            `json:"unit"`
	UnitCost     types.Money       `json:"unitCost"`
	MinStock     types.Quantity    `json:"minStock"`
	CurrentStock types.Quantity    `json:"currentStock"`
	Locations    []LocationBalance `json:"locations"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func (m *Material) GetID() string { return m.ID }

// LocationIndex returns the index of the named location, or -1.
func (m *Material) LocationIndex(name string) int {
	name = NormalizeName(name)
	for i := range m.Locations {
		if m.Locations[i].Name == name {
			return i
		}
	}
	return -1
}

// QuantityAt returns the balance at a location; unknown locations hold zero.
func (m *Material) QuantityAt(name string) types.Quantity {
	if i := m.LocationIndex(name); i >= 0 {
		return m.Locations[i].Quantity
	}
	return 0
}

// SumLocations returns the sum of all location balances.
func (m *Material) SumLocations() types.Quantity {
	var total types.Quantity
	for _, l := range m.Locations {
		total += l.Quantity
	}
	return total
}

// CheckedSum is SumLocations with range checking. It fails with
// types.ErrQuantityRange when a balance or the total exceeds MaxQuantity.
func (m *Material) CheckedSum() (types.Quantity, error) {
	var total types.Quantity
	for _, l := range m.Locations {
		next, err := total.Add(l.Quantity)
		if err != nil {
			return 0, err
		}
		total = next
	}
	return total, nil
}

// IsBelowMinimum reports whether stock has fallen under the reorder level.
func (m *Material) IsBelowMinimum() bool {
	return m.MinStock.IsPositive() && m.CurrentStock < m.MinStock
}

// Clone returns a deep copy; the locations slice is not shared.
func (m *Material) Clone() *Material {
	c := *m
	c.Locations = append([]LocationBalance(nil), m.Locations...)
	return &c
}

// Validate checks the material's own invariants.
func (m *Material) Validate(_ context.Context) error {
	if m.ID == "" {
		return apperror.NewValidation("material id is required")
	}
	if m.UnitCost.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}
	seen := make(map[string]struct{}, len(m.Locations))
	for _, l := range m.Locations {
		name := NormalizeName(l.Name)
		if name == "" {
			return apperror.NewValidation("location name is required").
				WithDetail("field", "locations")
		}
		if _, dup := seen[name]; dup {
			return apperror.NewDuplicateLocation(m.ID, name)
		}
		seen[name] = struct{}{}
		if l.Quantity.IsNegative() {
			return apperror.NewValidation("location quantity cannot be negative").
				WithDetail("location", name)
		}
	}
	if _, err := m.CheckedSum(); err != nil {
		return apperror.NewValidation("stock exceeds the maximum quantity").
			WithDetail("max", types.MaxQuantity.String())
	}
	return nil
}
