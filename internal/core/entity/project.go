package entity

import (
	"context"
	"encoding/json"
	"fmt"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/types"
)

// OverrideMode selects where a project cost category comes from.
type OverrideMode string

const (
	// OverrideAuto derives the category from linked work orders.
	OverrideAuto OverrideMode = "auto"
	// OverrideManual uses the project's stored amount.
	OverrideManual OverrideMode = "manual"
)

// CostOverride is the per-category choice between derived and manual cost.
// Amount is the stored manual figure; it is kept while Mode is auto so the
// manual total can always be reported.
type CostOverride struct {
	Mode   OverrideMode `json:"mode"`
	Amount types.Money  `json:"amount"`
}

// Auto returns an override that derives the category, remembering amount.
func Auto(amount types.Money) CostOverride {
	return CostOverride{Mode: OverrideAuto, Amount: amount}
}

// Manual returns an override that uses amount.
func Manual(amount types.Money) CostOverride {
	return CostOverride{Mode: OverrideManual, Amount: amount}
}

// IsManual reports whether the manual amount is selected.
func (o CostOverride) IsManual() bool { return o.Mode == OverrideManual }

// UnmarshalJSON rejects unknown modes; an empty mode means auto.
func (o *CostOverride) UnmarshalJSON(data []byte) error {
	type raw CostOverride
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	switch r.Mode {
	case "":
		r.Mode = OverrideAuto
	case OverrideAuto, OverrideManual:
	default:
		return fmt.Errorf("unknown cost override mode %q", r.Mode)
	}
	*o = CostOverride(r)
	return nil
}

// PlannedLine is a budgeted quantity of a catalog item.
type PlannedLine struct {
	ItemID   string         `json:"itemId"`
	Quantity types.Quantity `json:"quantity"`
	UnitCost types.Money    `json:"unitCost"`
}

// Amount returns quantity * unit cost.
func (l PlannedLine) Amount() types.Money { return l.Quantity.Times(l.UnitCost) }

// Project is a planned (CapEx) effort with budget tracking.
type Project struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	CostCenter string `json:"costCenter,omitempty"`

	PlannedMaterials []PlannedLine `json:"plannedMaterials"`
	PlannedServices  []PlannedLine `json:"plannedServices"`

	MaterialCost CostOverride `json:"materialCost"`
	ServiceCost  CostOverride `json:"serviceCost"`

	EstimatedValue types.Money `json:"estimatedValue"`
}

func (p *Project) GetID() string { return p.ID }

// Validate checks override amounts and the estimate.
func (p *Project) Validate(_ context.Context) error {
	if p.ID == "" {
		return apperror.NewValidation("project id is required")
	}
	if p.MaterialCost.Amount.IsNegative() || p.ServiceCost.Amount.IsNegative() {
		return apperror.NewValidation("manual cost cannot be negative")
	}
	if p.EstimatedValue.IsNegative() {
		return apperror.NewValidation("estimated value cannot be negative").
			WithDetail("field", "estimatedValue")
	}
	return nil
}

// Clone returns a deep copy.
func (p *Project) Clone() *Project {
	c := *p
	c.PlannedMaterials = append([]PlannedLine(nil), p.PlannedMaterials...)
	c.PlannedServices = append([]PlannedLine(nil), p.PlannedServices...)
	return &c
}
