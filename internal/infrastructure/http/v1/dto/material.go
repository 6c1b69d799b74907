package dto

import (
	"strings"
	"time"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/entity"
	"maintledger/internal/core/id"
	"maintledger/internal/core/types"
	"maintledger/internal/domain/ledger"
	"maintledger/internal/domain/registers/stock"
)

// RegisterMaterialRequest registers a material with its opening balances.
type RegisterMaterialRequest struct {
	ID          string                   `json:"id"`
	Code        string                   `json:"code" binding:"required"`
	Description string                   `json:"description"`
	Unit        string                   `json:"unit"`
	UnitCost    types.Money              `json:"unitCost"`
	MinStock    types.Quantity           `json:"minStock"`
	Locations   []entity.LocationBalance `json:"locations"`
}

// ToEntity builds the material. A missing id gets a fresh one.
func (r RegisterMaterialRequest) ToEntity() *entity.Material {
	materialID := strings.TrimSpace(r.ID)
	if materialID == "" {
		materialID = id.New()
	}
	return &entity.Material{
		ID:          materialID,
		Code:        strings.TrimSpace(r.Code),
		Description: r.Description,
		Unit:        r.Unit,
		UnitCost:    r.UnitCost,
		MinStock:    r.MinStock,
		Locations:   r.Locations,
	}
}

type AddLocationRequest struct {
	Name            string         `json:"name" binding:"required"`
	InitialQuantity types.Quantity `json:"initialQuantity"`
}

type InboundRequest struct {
	Location string         `json:"location" binding:"required"`
	Quantity types.Quantity `json:"quantity"`
	Reason   string         `json:"reason"`
}

// UsageRequest is the business context of outgoing stock.
type UsageRequest struct {
	WorkOrderNumber string `json:"workOrderNumber"`
	ProjectID       string `json:"projectId"`
	Reason          string `json:"reason"`
}

func (u UsageRequest) ToUsage() ledger.Usage {
	return ledger.Usage{
		WorkOrderNumber: strings.TrimSpace(u.WorkOrderNumber),
		ProjectID:       strings.TrimSpace(u.ProjectID),
		Reason:          u.Reason,
	}
}

type OutboundRequest struct {
	UsageRequest
	Location string         `json:"location" binding:"required"`
	Quantity types.Quantity `json:"quantity"`
}

type TransferRequest struct {
	From     string         `json:"from" binding:"required"`
	To       string         `json:"to" binding:"required"`
	Quantity types.Quantity `json:"quantity"`
}

type ConsumeRequest struct {
	UsageRequest
	Quantity types.Quantity `json:"quantity"`
}

// KardexQuery selects a Kardex view.
type KardexQuery struct {
	Order string     `form:"order"`
	Limit int        `form:"limit" binding:"min=0"`
	From  *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To    *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ToFilter validates the order and converts to a movement filter.
func (q KardexQuery) ToFilter() (stock.MovementFilter, error) {
	order := stock.Order(strings.ToLower(q.Order))
	switch order {
	case "":
		order = stock.OrderAsc
	case stock.OrderAsc, stock.OrderDesc:
	default:
		return stock.MovementFilter{}, apperror.NewValidation("order must be asc or desc").
			WithDetail("order", q.Order)
	}
	return stock.MovementFilter{Order: order, FromDate: q.From, ToDate: q.To, Limit: q.Limit}, nil
}

// PeriodQuery is a closed reporting period.
type PeriodQuery struct {
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}
