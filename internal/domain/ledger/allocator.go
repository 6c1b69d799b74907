package ledger

import (
	"context"
	"fmt"
	"slices"
	"time"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/entity"
	"maintledger/internal/core/security"
	"maintledger/internal/core/types"
	"maintledger/pkg/logger"
)

// Recorder appends movements to the Kardex. A call records all of its
// movements or none of them.
type Recorder interface {
	Record(ctx context.Context, movements ...entity.StockMovement) error
}

// Allocator performs the stock operations against a material.
//
// Every operation works on a copy of the locations, records exactly one
// movement and only then swaps the copy in. A failed validation or a
// rejected movement leaves the material untouched.
type Allocator struct {
	recorder Recorder
	dir      Directory
	now      func() time.Time
}

// AllocatorOption configures an Allocator.
type AllocatorOption func(*Allocator)

// WithClock overrides the movement timestamp source.
func WithClock(now func() time.Time) AllocatorOption {
	return func(a *Allocator) { a.now = now }
}

// NewAllocator creates an allocator. dir may be nil when no usage
// references need resolving.
func NewAllocator(recorder Recorder, dir Directory, opts ...AllocatorOption) *Allocator {
	a := &Allocator{
		recorder: recorder,
		dir:      dir,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register records opening balances of a newly registered material:
// one ADD movement per non-empty location.
func (a *Allocator) Register(ctx context.Context, m *entity.Material) ([]entity.StockMovement, error) {
	for i := range m.Locations {
		m.Locations[i].Name = entity.NormalizeName(m.Locations[i].Name)
	}
	if err := m.Validate(ctx); err != nil {
		return nil, err
	}

	var out []entity.StockMovement
	for _, l := range m.Locations {
		if !l.Quantity.IsPositive() {
			continue
		}
		mv := a.newMovement(ctx, entity.MovementAdd, m.ID, l.Quantity)
		mv.ToLocation = l.Name
		mv.Note = "Opening balance"
		out = append(out, mv)
	}
	if len(out) > 0 {
		if err := a.recorder.Record(ctx, out...); err != nil {
			return nil, fmt.Errorf("record opening balances: %w", err)
		}
	}
	a.commit(m, m.Locations)
	return out, nil
}

// AddLocation appends a new named location. A positive initialQty is
// recorded as an IN movement; otherwise no movement is written.
func (a *Allocator) AddLocation(ctx context.Context, m *entity.Material, name string, initialQty types.Quantity) (*entity.StockMovement, error) {
	name, err := requireName(name, "name")
	if err != nil {
		return nil, err
	}
	if initialQty.IsNegative() {
		return nil, apperror.NewValidation("initial quantity cannot be negative").
			WithDetail("quantity", initialQty.Float64())
	}
	if m.LocationIndex(name) >= 0 {
		return nil, apperror.NewDuplicateLocation(m.ID, name)
	}

	next, err := credit(m, cloneLocations(m.Locations), name, initialQty)
	if err != nil {
		return nil, err
	}

	if initialQty.IsZero() {
		a.commit(m, next)
		return nil, nil
	}

	mv := a.newMovement(ctx, entity.MovementIn, m.ID, initialQty)
	mv.ToLocation = name
	mv.Note = "Initial quantity for new location"
	if err := a.record(ctx, mv); err != nil {
		return nil, err
	}
	a.commit(m, next)
	return &mv, nil
}

// Inbound receives qty into location, creating it if absent.
func (a *Allocator) Inbound(ctx context.Context, m *entity.Material, location string, qty types.Quantity, reason string) (entity.StockMovement, error) {
	location, err := requireName(location, "location")
	if err != nil {
		return entity.StockMovement{}, err
	}
	if err := requirePositive(qty); err != nil {
		return entity.StockMovement{}, err
	}

	next, err := credit(m, cloneLocations(m.Locations), location, qty)
	if err != nil {
		return entity.StockMovement{}, err
	}

	mv := a.newMovement(ctx, entity.MovementIn, m.ID, qty)
	mv.ToLocation = location
	mv.Note = reason
	if err := a.record(ctx, mv); err != nil {
		return entity.StockMovement{}, err
	}
	a.commit(m, next)
	return mv, nil
}

// Outbound withdraws qty from one location.
func (a *Allocator) Outbound(ctx context.Context, m *entity.Material, location string, qty types.Quantity, usage Usage) (entity.StockMovement, error) {
	location, err := requireName(location, "location")
	if err != nil {
		return entity.StockMovement{}, err
	}
	if err := requirePositive(qty); err != nil {
		return entity.StockMovement{}, err
	}
	if available := m.QuantityAt(location); available < qty {
		return entity.StockMovement{}, apperror.NewInsufficientStock(m.ID, location, qty.Float64(), available.Float64())
	}
	tag, err := a.classify(ctx, m, usage)
	if err != nil {
		return entity.StockMovement{}, err
	}

	next := cloneLocations(m.Locations)
	next[m.LocationIndex(location)].Quantity -= qty

	mv := a.newMovement(ctx, entity.MovementOut, m.ID, qty)
	mv.FromLocation = location
	applyTag(&mv, tag)
	if err := a.record(ctx, mv); err != nil {
		return entity.StockMovement{}, err
	}
	a.commit(m, next)
	return mv, nil
}

// Transfer moves qty between two locations of the same material,
// creating the destination if absent.
func (a *Allocator) Transfer(ctx context.Context, m *entity.Material, from, to string, qty types.Quantity) (entity.StockMovement, error) {
	from, err := requireName(from, "from")
	if err != nil {
		return entity.StockMovement{}, err
	}
	to, err = requireName(to, "to")
	if err != nil {
		return entity.StockMovement{}, err
	}
	if from == to {
		return entity.StockMovement{}, apperror.NewValidation("source and destination must differ").
			WithDetail("location", from)
	}
	if err := requirePositive(qty); err != nil {
		return entity.StockMovement{}, err
	}
	if available := m.QuantityAt(from); available < qty {
		return entity.StockMovement{}, apperror.NewInsufficientStock(m.ID, from, qty.Float64(), available.Float64())
	}

	next := cloneLocations(m.Locations)
	next[m.LocationIndex(from)].Quantity -= qty
	next, err = credit(m, next, to, qty)
	if err != nil {
		return entity.StockMovement{}, err
	}

	mv := a.newMovement(ctx, entity.MovementTransfer, m.ID, qty)
	mv.FromLocation = from
	mv.ToLocation = to
	mv.Note = fmt.Sprintf("Transfer %s -> %s", from, to)
	if err := a.record(ctx, mv); err != nil {
		return entity.StockMovement{}, err
	}
	a.commit(m, next)
	return mv, nil
}

// FIFOConsume withdraws qty without a named location, draining locations
// in their stored order. One OUT movement carries the total.
func (a *Allocator) FIFOConsume(ctx context.Context, m *entity.Material, qty types.Quantity, usage Usage) (entity.StockMovement, error) {
	if err := requirePositive(qty); err != nil {
		return entity.StockMovement{}, err
	}
	if total := m.SumLocations(); total < qty {
		return entity.StockMovement{}, apperror.NewInsufficientStock(m.ID, "", qty.Float64(), total.Float64())
	}
	tag, err := a.classify(ctx, m, usage)
	if err != nil {
		return entity.StockMovement{}, err
	}

	next := cloneLocations(m.Locations)
	var allocations []entity.LocationBalance
	remaining := qty
	for i := range next {
		if remaining.IsZero() {
			break
		}
		take := next[i].Quantity.Min(remaining)
		if !take.IsPositive() {
			continue
		}
		next[i].Quantity -= take
		remaining -= take
		allocations = append(allocations, entity.LocationBalance{Name: next[i].Name, Quantity: take})
	}

	mv := a.newMovement(ctx, entity.MovementOut, m.ID, qty)
	mv.Allocations = allocations
	if len(allocations) == 1 {
		mv.FromLocation = allocations[0].Name
	}
	applyTag(&mv, tag)
	if err := a.record(ctx, mv); err != nil {
		return entity.StockMovement{}, err
	}
	a.commit(m, next)
	return mv, nil
}

func (a *Allocator) classify(ctx context.Context, m *entity.Material, usage Usage) (Tag, error) {
	tag, err := Classify(a.dir, usage)
	if err != nil {
		return Tag{}, err
	}
	if tag.Unresolved {
		logger.Warn(ctx, "usage reference not resolved, recording movement without cost center",
			"material_id", m.ID,
			"work_order", usage.WorkOrderNumber,
			"project_id", usage.ProjectID,
		)
	}
	return tag, nil
}

func (a *Allocator) newMovement(ctx context.Context, kind entity.MovementKind, materialID string, qty types.Quantity) entity.StockMovement {
	mv := entity.NewStockMovement(kind, materialID, qty, a.now())
	mv.ActorID = security.ActorID(ctx)
	return mv
}

func (a *Allocator) record(ctx context.Context, mv entity.StockMovement) error {
	if err := a.recorder.Record(ctx, mv); err != nil {
		return fmt.Errorf("record %s movement: %w", mv.Kind, err)
	}
	return nil
}

func (a *Allocator) commit(m *entity.Material, locations []entity.LocationBalance) {
	m.Locations = locations
	Recompute(m)
	m.UpdatedAt = a.now().UTC()
}

func applyTag(mv *entity.StockMovement, tag Tag) {
	mv.LinkedWorkOrderID = tag.WorkOrderID
	mv.LinkedProjectID = tag.ProjectID
	mv.CostCenter = tag.CostCenter
	mv.Note = tag.Note
}

func cloneLocations(in []entity.LocationBalance) []entity.LocationBalance {
	return append(make([]entity.LocationBalance, 0, len(in)+1), in...)
}

// credit adds qty to the named location, appending it when absent. The
// location and the material total must stay within types.MaxQuantity.
func credit(m *entity.Material, locations []entity.LocationBalance, name string, qty types.Quantity) ([]entity.LocationBalance, error) {
	i := slices.IndexFunc(locations, func(l entity.LocationBalance) bool { return l.Name == name })
	if i < 0 {
		locations = append(locations, entity.LocationBalance{Name: name})
		i = len(locations) - 1
	}
	sum, err := locations[i].Quantity.Add(qty)
	if err != nil {
		return nil, quantityLimit(m.ID, name)
	}
	locations[i].Quantity = sum

	after := entity.Material{Locations: locations}
	if _, err := after.CheckedSum(); err != nil {
		return nil, quantityLimit(m.ID, name)
	}
	return locations, nil
}

func quantityLimit(materialID, location string) error {
	return apperror.NewValidation("stock would exceed the maximum quantity").
		WithDetail("material_id", materialID).
		WithDetail("location", location).
		WithDetail("max", types.MaxQuantity.String())
}

func requireName(name, field string) (string, error) {
	name = entity.NormalizeName(name)
	if name == "" {
		return "", apperror.NewValidation("location name is required").WithDetail("field", field)
	}
	return name, nil
}

func requirePositive(qty types.Quantity) error {
	if !qty.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", qty.Float64())
	}
	if !qty.InRange() {
		return apperror.NewValidation("quantity exceeds the maximum").
			WithDetail("max", types.MaxQuantity.String())
	}
	return nil
}
