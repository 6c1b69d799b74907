package costing

import (
	"sort"

	"github.com/shopspring/decimal"

	"maintledger/internal/core/entity"
	"maintledger/internal/core/types"
)

// Totals is a material/service pair with its sum.
type Totals struct {
	Material types.Money `json:"material"`
	Service  types.Money `json:"service"`
	Total    types.Money `json:"total"`
}

func newTotals(material, service types.Money) Totals {
	return Totals{Material: material, Service: service, Total: material.Add(service)}
}

// ProjectCost holds the three parallel totals of a project.
type ProjectCost struct {
	ProjectID      string      `json:"projectId"`
	WorkOrders     int         `json:"workOrders"`
	Auto           Totals      `json:"auto"`
	Manual         Totals      `json:"manual"`
	Effective      Totals      `json:"effective"`
	MaterialSource Source      `json:"materialSource"`
	ServiceSource  Source      `json:"serviceSource"`
	EstimatedValue types.Money `json:"estimatedValue"`
	Variance       types.Money `json:"variance"`
	// VariancePercent is zero when there is no estimate.
	VariancePercent types.Money `json:"variancePercent"`
}

var hundred = decimal.NewFromInt(100)

// ForProject rolls up the non-canceled work orders linked to the project.
// Work orders of other projects in the slice are ignored.
func ForProject(p *entity.Project, workOrders []*entity.WorkOrder) ProjectCost {
	autoMaterial, autoService := types.Zero(), types.Zero()
	count := 0
	for _, wo := range linked(p, workOrders) {
		c := ForWorkOrder(wo)
		autoMaterial = autoMaterial.Add(c.MaterialCost)
		autoService = autoService.Add(c.ServiceCost)
		count++
	}

	pc := ProjectCost{
		ProjectID:      p.ID,
		WorkOrders:     count,
		Auto:           newTotals(autoMaterial, autoService),
		Manual:         newTotals(p.MaterialCost.Amount, p.ServiceCost.Amount),
		EstimatedValue: p.EstimatedValue,
	}

	effMaterial, effService := autoMaterial, autoService
	pc.MaterialSource, pc.ServiceSource = SourceAuto, SourceAuto
	if p.MaterialCost.IsManual() {
		effMaterial, pc.MaterialSource = p.MaterialCost.Amount, SourceManual
	}
	if p.ServiceCost.IsManual() {
		effService, pc.ServiceSource = p.ServiceCost.Amount, SourceManual
	}
	pc.Effective = newTotals(effMaterial, effService)

	pc.Variance, pc.VariancePercent = Variance(p.EstimatedValue, pc.Effective.Total)
	return pc
}

// Variance returns estimated - actual and its share of the estimate in percent.
// The percentage is zero when the estimate is zero.
func Variance(estimated, actual types.Money) (types.Money, types.Money) {
	variance := estimated.Sub(actual)
	if estimated.IsZero() {
		return variance, types.Zero()
	}
	return variance, variance.Div(estimated).Mul(hundred).Round(2)
}

// LineComparison is one row of the planned-vs-actual drill-down.
type LineComparison struct {
	ItemID  string         `json:"itemId"`
	Planned types.Quantity `json:"planned"`
	Actual  types.Quantity `json:"actual"`
	// Diff is actual - planned: positive is an overrun.
	Diff        types.Quantity `json:"diff"`
	UnitCost    types.Money    `json:"unitCost"`
	PlannedCost types.Money    `json:"plannedCost"`
	Unplanned   bool           `json:"unplanned,omitempty"`
}

// PlannedVsActual is the drill-down for both categories.
type PlannedVsActual struct {
	ProjectID string           `json:"projectId"`
	Materials []LineComparison `json:"materials"`
	Services  []LineComparison `json:"services"`
}

// ComparePlanned sums actual quantities per catalog item over the project's
// non-canceled work orders and compares them with the plan. Items consumed
// but never planned are appended with a zero plan.
func ComparePlanned(p *entity.Project, workOrders []*entity.WorkOrder) PlannedVsActual {
	actualMaterials := make(map[string]types.Quantity)
	actualServices := make(map[string]types.Quantity)
	for _, wo := range linked(p, workOrders) {
		for _, l := range wo.MaterialLines {
			actualMaterials[l.MaterialID] += l.Quantity
		}
		for _, l := range wo.ServiceLines {
			actualServices[l.ServiceID] += l.Quantity
		}
	}

	return PlannedVsActual{
		ProjectID: p.ID,
		Materials: compare(p.PlannedMaterials, actualMaterials),
		Services:  compare(p.PlannedServices, actualServices),
	}
}

func compare(planned []entity.PlannedLine, actual map[string]types.Quantity) []LineComparison {
	rows := make([]LineComparison, 0, len(planned))
	seen := make(map[string]int, len(planned))

	for _, pl := range planned {
		if i, ok := seen[pl.ItemID]; ok {
			rows[i].Planned += pl.Quantity
			rows[i].PlannedCost = rows[i].PlannedCost.Add(pl.Amount())
			rows[i].Diff = rows[i].Actual - rows[i].Planned
			continue
		}
		a := actual[pl.ItemID]
		seen[pl.ItemID] = len(rows)
		rows = append(rows, LineComparison{
			ItemID:      pl.ItemID,
			Planned:     pl.Quantity,
			Actual:      a,
			Diff:        a - pl.Quantity,
			UnitCost:    pl.UnitCost,
			PlannedCost: pl.Amount(),
		})
	}

	var extra []string
	for itemID := range actual {
		if _, ok := seen[itemID]; !ok {
			extra = append(extra, itemID)
		}
	}
	sort.Strings(extra)
	for _, itemID := range extra {
		a := actual[itemID]
		rows = append(rows, LineComparison{
			ItemID:      itemID,
			Actual:      a,
			Diff:        a,
			UnitCost:    types.Zero(),
			PlannedCost: types.Zero(),
			Unplanned:   true,
		})
	}
	return rows
}

func linked(p *entity.Project, workOrders []*entity.WorkOrder) []*entity.WorkOrder {
	var out []*entity.WorkOrder
	for _, wo := range workOrders {
		if wo.ProjectID == p.ID && !wo.IsCanceled() {
			out = append(out, wo)
		}
	}
	return out
}
