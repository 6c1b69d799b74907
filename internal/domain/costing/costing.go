// Package costing derives work order and project costs.
// Everything here is a pure function of the records passed in.
package costing

import (
	"maintledger/internal/core/entity"
	"maintledger/internal/core/types"
)

// Source tells whether a figure was derived or taken from an override.
type Source string

const (
	SourceAuto   Source = "auto"
	SourceManual Source = "manual"
)

// WorkOrderCost is the cost breakdown of a single work order.
type WorkOrderCost struct {
	WorkOrderID    string      `json:"workOrderId"`
	MaterialCost   types.Money `json:"materialCost"`
	MaterialSource Source      `json:"materialSource"`
	ServiceCost    types.Money `json:"serviceCost"`
	ServiceSource  Source      `json:"serviceSource"`
	TotalCost      types.Money `json:"totalCost"`

	// Line sums, reported even when an override is in effect.
	MaterialLinesTotal types.Money `json:"materialLinesTotal"`
	ServiceLinesTotal  types.Money `json:"serviceLinesTotal"`
}

type amounter interface {
	Amount() types.Money
}

func sumLines[L amounter](lines []L) types.Money {
	total := types.Zero()
	for _, l := range lines {
		total = total.Add(l.Amount())
	}
	return total
}

// ForWorkOrder applies the override rule per category: a manual value,
// when present, replaces the line sum of that category only.
func ForWorkOrder(wo *entity.WorkOrder) WorkOrderCost {
	c := WorkOrderCost{
		WorkOrderID:        wo.ID,
		MaterialLinesTotal: sumLines(wo.MaterialLines),
		ServiceLinesTotal:  sumLines(wo.ServiceLines),
	}

	c.MaterialCost, c.MaterialSource = pick(wo.ManualMaterialCost, c.MaterialLinesTotal)
	c.ServiceCost, c.ServiceSource = pick(wo.ManualServiceCost, c.ServiceLinesTotal)
	c.TotalCost = c.MaterialCost.Add(c.ServiceCost)
	return c
}

func pick(manual *types.Money, auto types.Money) (types.Money, Source) {
	if manual != nil {
		return *manual, SourceManual
	}
	return auto, SourceAuto
}
