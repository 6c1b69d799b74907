package ledger

import (
	"fmt"
	"strings"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/entity"
)

// Usage describes why stock leaves the store. At most one of WorkOrderNumber
// and ProjectID is expected; WorkOrderNumber wins when both are set.
type Usage struct {
	WorkOrderNumber string `json:"workOrderNumber,omitempty"`
	ProjectID       string `json:"projectId,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

// Directory resolves the references a usage can carry.
// A snapshot is built for each ledger operation.
type Directory interface {
	WorkOrderByNumber(number string) (*entity.WorkOrder, bool)
	Project(id string) (*entity.Project, bool)
	Asset(id string) (*entity.Asset, bool)
}

// Tag is the context attached to an outgoing movement.
type Tag struct {
	WorkOrderID string
	ProjectID   string
	CostCenter  string
	Note        string
	// Unresolved is set when a referenced work order, project or asset
	// could not be found. The movement is still recorded, untagged.
	Unresolved bool
}

// Classify resolves a usage into movement tags.
func Classify(dir Directory, u Usage) (Tag, error) {
	reason := strings.TrimSpace(u.Reason)

	switch {
	case strings.TrimSpace(u.WorkOrderNumber) != "":
		return classifyWorkOrder(dir, strings.TrimSpace(u.WorkOrderNumber), reason), nil

	case strings.TrimSpace(u.ProjectID) != "":
		projectID := strings.TrimSpace(u.ProjectID)
		p, ok := lookupProject(dir, projectID)
		if !ok {
			return Tag{
				Note:       withReason(fmt.Sprintf("Direct consumption for project %s", projectID), reason),
				Unresolved: true,
			}, nil
		}
		return Tag{
			ProjectID:  p.ID,
			CostCenter: p.CostCenter,
			Note:       withReason(fmt.Sprintf("Direct consumption for project %s", p.Code), reason),
		}, nil

	default:
		if reason == "" {
			return Tag{}, apperror.NewValidation("reason is required for general consumption").
				WithDetail("field", "reason")
		}
		return Tag{Note: reason}, nil
	}
}

func classifyWorkOrder(dir Directory, number, reason string) Tag {
	base := "OS " + number

	var wo *entity.WorkOrder
	if dir != nil {
		wo, _ = dir.WorkOrderByNumber(number)
	}
	if wo == nil {
		return Tag{Note: withReason(base, reason), Unresolved: true}
	}

	tag := Tag{WorkOrderID: wo.ID}
	var parts []string

	if wo.ProjectID != "" {
		if p, ok := lookupProject(dir, wo.ProjectID); ok {
			tag.ProjectID = p.ID
			tag.CostCenter = p.CostCenter
			parts = append(parts, "project "+p.Code)
		} else {
			tag.Unresolved = true
		}
	}
	if wo.AssetID != "" {
		if a, ok := dir.Asset(wo.AssetID); ok {
			if tag.CostCenter == "" {
				tag.CostCenter = a.CostCenter
			}
			if tag.ProjectID == "" {
				parts = append(parts, strings.ToLower(string(a.Kind))+" "+a.Code)
			}
		} else if tag.ProjectID == "" {
			tag.Unresolved = true
		}
	}

	if len(parts) > 0 {
		base += " - " + strings.Join(parts, ", ")
	}
	tag.Note = withReason(base, reason)
	return tag
}

func lookupProject(dir Directory, id string) (*entity.Project, bool) {
	if dir == nil {
		return nil, false
	}
	return dir.Project(id)
}

func withReason(desc, reason string) string {
	if reason == "" {
		return desc
	}
	return desc + ": " + reason
}

// Snapshot is an immutable Directory built from record slices.
type Snapshot struct {
	workOrders map[string]*entity.WorkOrder
	projects   map[string]*entity.Project
	assets     map[string]*entity.Asset
}

// NewSnapshot indexes work orders by number and projects/assets by id.
func NewSnapshot(workOrders []*entity.WorkOrder, projects []*entity.Project, assets []*entity.Asset) *Snapshot {
	s := &Snapshot{
		workOrders: make(map[string]*entity.WorkOrder, len(workOrders)),
		projects:   make(map[string]*entity.Project, len(projects)),
		assets:     make(map[string]*entity.Asset, len(assets)),
	}
	for _, wo := range workOrders {
		s.workOrders[wo.Number] = wo
	}
	for _, p := range projects {
		s.projects[p.ID] = p
	}
	for _, a := range assets {
		s.assets[a.ID] = a
	}
	return s
}

func (s *Snapshot) WorkOrderByNumber(number string) (*entity.WorkOrder, bool) {
	wo, ok := s.workOrders[number]
	return wo, ok
}

func (s *Snapshot) Project(id string) (*entity.Project, bool) {
	p, ok := s.projects[id]
	return p, ok
}

func (s *Snapshot) Asset(id string) (*entity.Asset, bool) {
	a, ok := s.assets[id]
	return a, ok
}
