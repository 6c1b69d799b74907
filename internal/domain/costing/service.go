package costing

import (
	"context"

	"maintledger/internal/core/entity"
	"maintledger/internal/domain"
)

// Service loads records and runs the cost rollups on demand.
// Nothing is cached; every call recomputes from current state.
type Service struct {
	workOrders *domain.Repository[*entity.WorkOrder]
	projects   *domain.Repository[*entity.Project]
}

// NewService creates the cost service.
func NewService(workOrders *domain.Repository[*entity.WorkOrder], projects *domain.Repository[*entity.Project]) *Service {
	return &Service{workOrders: workOrders, projects: projects}
}

// WorkOrderCost returns the cost breakdown of a work order.
func (s *Service) WorkOrderCost(ctx context.Context, workOrderID string) (WorkOrderCost, error) {
	wo, err := s.workOrders.Get(ctx, workOrderID)
	if err != nil {
		return WorkOrderCost{}, err
	}
	return ForWorkOrder(wo), nil
}

// ProjectCost returns the auto, manual and effective totals of a project.
func (s *Service) ProjectCost(ctx context.Context, projectID string) (ProjectCost, error) {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return ProjectCost{}, err
	}
	return ForProject(p, s.workOrders.All(ctx)), nil
}

// PlannedVsActual returns the per-item drill-down of a project.
func (s *Service) PlannedVsActual(ctx context.Context, projectID string) (PlannedVsActual, error) {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return PlannedVsActual{}, err
	}
	return ComparePlanned(p, s.workOrders.All(ctx)), nil
}
