package worktime

import (
	"sort"
	"time"

	"maintledger/internal/core/entity"
)

// ExecutorHours is the time report for one executor.
type ExecutorHours struct {
	ExecutorID string                `json:"executorId,omitempty"`
	Status     entity.ExecutorStatus `json:"status"`
	Hours
	// Open is set while the executor has not completed; the hours then run
	// up to the report time and are not part of the work order total.
	Open   bool `json:"open,omitempty"`
	Legacy bool `json:"legacy,omitempty"`
}

// WorkOrderHours totals the executors of a work order.
type WorkOrderHours struct {
	WorkOrderID   string          `json:"workOrderId"`
	Executors     []ExecutorHours `json:"executors"`
	TotalNetHours float64         `json:"totalNetHours"`
	OpenExecutors []string        `json:"openExecutors,omitempty"`
}

// ForExecutor computes hours for one executor state. now is used as the end
// of an open interval.
func ForExecutor(executorID string, st *entity.ExecutorState, now time.Time) ExecutorHours {
	eh := ExecutorHours{ExecutorID: executorID, Status: st.Status}
	if st.StartTime == nil {
		eh.Open = st.Status != entity.ExecutorDone
		return eh
	}
	end := now
	if st.EndTime != nil {
		end = *st.EndTime
	} else {
		eh.Open = true
	}
	eh.Hours = Compute(*st.StartTime, end, st.PauseHistory)
	return eh
}

// ForWorkOrder reports every executor of the order. Orders that predate
// per-executor tracking are reported from the timing stored on the order.
func ForWorkOrder(wo *entity.WorkOrder, now time.Time) WorkOrderHours {
	report := WorkOrderHours{WorkOrderID: wo.ID}

	if len(wo.ExecutorStates) == 0 && wo.HasLegacyTiming() {
		legacy := ForExecutor("", &entity.ExecutorState{
			Status:       legacyStatus(wo),
			StartTime:    wo.StartTime,
			EndTime:      wo.EndTime,
			PauseHistory: wo.PauseHistory,
		}, now)
		legacy.Legacy = true
		report.add(legacy)
		return report
	}

	ids := make([]string, 0, len(wo.ExecutorStates))
	for id, st := range wo.ExecutorStates {
		if st != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		report.add(ForExecutor(id, wo.ExecutorStates[id], now))
	}
	return report
}

func (r *WorkOrderHours) add(eh ExecutorHours) {
	r.Executors = append(r.Executors, eh)
	if eh.Open {
		if eh.ExecutorID != "" {
			r.OpenExecutors = append(r.OpenExecutors, eh.ExecutorID)
		}
		return
	}
	r.TotalNetHours += eh.NetHours
}

func legacyStatus(wo *entity.WorkOrder) entity.ExecutorStatus {
	if wo.EndTime != nil {
		return entity.ExecutorDone
	}
	if n := len(wo.PauseHistory); n > 0 && wo.PauseHistory[n-1].Action == entity.ActionPause {
		return entity.ExecutorPaused
	}
	return entity.ExecutorInProgress
}
