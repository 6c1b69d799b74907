package entity

import (
	"context"
	"time"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/types"
)

// WorkOrderStatus is the lifecycle state of a work order.
type WorkOrderStatus string

const (
	WorkOrderOpen       WorkOrderStatus = "OPEN"
	WorkOrderInProgress WorkOrderStatus = "IN_PROGRESS"
	WorkOrderDone       WorkOrderStatus = "DONE"
	WorkOrderCanceled   WorkOrderStatus = "CANCELED"
)

// MaterialLine is material consumption booked on a work order.
type MaterialLine struct {
	MaterialID string         `json:"materialId"`
	Quantity   types.Quantity `json:"quantity"`
	UnitCost   types.Money    `json:"unitCost"`
}

// Amount returns quantity * unit cost.
func (l MaterialLine) Amount() types.Money { return l.Quantity.Times(l.UnitCost) }

// ServiceLine is labour or an external service booked on a work order.
type ServiceLine struct {
	ServiceID string         `json:"serviceId"`
	Quantity  types.Quantity `json:"quantity"`
	UnitCost  types.Money    `json:"unitCost"`
}

// Amount returns quantity * unit cost.
func (l ServiceLine) Amount() types.Money { return l.Quantity.Times(l.UnitCost) }

// WorkOrder (OS) is a maintenance task with linked material and labour consumption.
// The ledger only reads work orders; they are created by the CRUD side.
type WorkOrder struct {
	ID        string          `json:"id"`
	Number    string          `json:"number"`
	Status    WorkOrderStatus `json:"status"`
	ProjectID string          `json:"projectId,omitempty"`
	AssetID   string          `json:"assetId,omitempty"`

	MaterialLines []MaterialLine `json:"materialLines"`
	ServiceLines  []ServiceLine  `json:"serviceLines"`

	// Optional overrides; nil means derive from lines.
	ManualMaterialCost *types.Money `json:"manualMaterialCost,omitempty"`
	ManualServiceCost  *types.Money `json:"manualServiceCost,omitempty"`

	ExecutorStates map[string]*ExecutorState `json:"executorStates,omitempty"`

	// Legacy single-executor timing stored directly on the order.
	StartTime    *time.Time   `json:"startTime,omitempty"`
	EndTime      *time.Time   `json:"endTime,omitempty"`
	PauseHistory []PauseEvent `json:"pauseHistory,omitempty"`
}

func (w *WorkOrder) GetID() string { return w.ID }

// IsCanceled reports whether the order is excluded from cost rollups.
func (w *WorkOrder) IsCanceled() bool { return w.Status == WorkOrderCanceled }

// Executor returns the state for executorID, creating an idle one if absent.
func (w *WorkOrder) Executor(executorID string) *ExecutorState {
	if w.ExecutorStates == nil {
		w.ExecutorStates = make(map[string]*ExecutorState)
	}
	st := w.ExecutorStates[executorID]
	if st == nil {
		st = &ExecutorState{}
		w.ExecutorStates[executorID] = st
	}
	return st
}

// Validate rejects orders without an id and executor entries without state.
func (w *WorkOrder) Validate(_ context.Context) error {
	if w.ID == "" {
		return apperror.NewValidation("work order id is required")
	}
	for id, st := range w.ExecutorStates {
		if id == "" || st == nil {
			return apperror.NewValidation("executor state is required").
				WithDetail("field", "executorStates").
				WithDetail("executor_id", id)
		}
	}
	return nil
}

// HasLegacyTiming reports whether timing lives on the order itself.
func (w *WorkOrder) HasLegacyTiming() bool { return w.StartTime != nil }

// Clone returns a deep copy.
func (w *WorkOrder) Clone() *WorkOrder {
	c := *w
	c.MaterialLines = append([]MaterialLine(nil), w.MaterialLines...)
	c.ServiceLines = append([]ServiceLine(nil), w.ServiceLines...)
	c.PauseHistory = append([]PauseEvent(nil), w.PauseHistory...)
	if w.ManualMaterialCost != nil {
		v := *w.ManualMaterialCost
		c.ManualMaterialCost = &v
	}
	if w.ManualServiceCost != nil {
		v := *w.ManualServiceCost
		c.ManualServiceCost = &v
	}
	if w.ExecutorStates != nil {
		c.ExecutorStates = make(map[string]*ExecutorState, len(w.ExecutorStates))
		for id, st := range w.ExecutorStates {
			if st != nil {
				c.ExecutorStates[id] = st.Clone()
			}
		}
	}
	return &c
}
