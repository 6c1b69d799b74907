package worktime

import (
	"context"
	"sync"
	"time"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/entity"
	"maintledger/internal/core/persist"
	"maintledger/internal/domain"
	"maintledger/pkg/logger"
)

// Service applies executor transitions to work orders and reports hours.
type Service struct {
	mu         sync.Mutex
	workOrders *domain.Repository[*entity.WorkOrder]
	now        func() time.Time
}

// NewService creates the time accounting service. now may be nil.
func NewService(workOrders *domain.Repository[*entity.WorkOrder], now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{workOrders: workOrders, now: now}
}

// Transition applies action for executorID on a work order and saves it.
func (s *Service) Transition(ctx context.Context, workOrderID, executorID string, action Action, reason string) (*entity.ExecutorState, *persist.Ack, error) {
	if executorID == "" {
		return nil, nil, apperror.NewValidation("executor id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wo, err := s.workOrders.Get(ctx, workOrderID)
	if err != nil {
		return nil, nil, err
	}
	if wo.IsCanceled() {
		return nil, nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "work order is canceled").
			WithDetail("work_order_id", workOrderID)
	}

	st := wo.Executor(executorID)
	from := st.Status
	if err := Apply(st, action, s.now(), reason); err != nil {
		return nil, nil, err
	}

	logger.Info(ctx, "executor transition",
		"work_order_id", workOrderID,
		"executor_id", executorID,
		"action", action,
		"from", from.String(),
		"to", st.Status.String(),
	)
	return st.Clone(), s.workOrders.Save(ctx, wo), nil
}

// Hours returns the time report of a work order.
func (s *Service) Hours(ctx context.Context, workOrderID string) (WorkOrderHours, error) {
	wo, err := s.workOrders.Get(ctx, workOrderID)
	if err != nil {
		return WorkOrderHours{}, err
	}
	return ForWorkOrder(wo, s.now()), nil
}
