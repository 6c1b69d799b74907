package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/entity"
	"maintledger/internal/core/id"
	"maintledger/internal/core/persist"
	"maintledger/internal/core/types"
	"maintledger/internal/domain"
	"maintledger/internal/domain/registers/stock"
	"maintledger/pkg/logger"
)

// OperationObserver receives the outcome of every ledger operation.
type OperationObserver interface {
	ObserveOperation(op string, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, error) {}

// Result is the outcome of a stock operation: the updated material, the
// movements it produced and the acknowledgement of their persistence.
type Result struct {
	Material  *entity.Material       `json:"material"`
	Movements []entity.StockMovement `json:"movements,omitempty"`
	Ack       *persist.Ack           `json:"-"`
}

// ServiceConfig wires the ledger service.
type ServiceConfig struct {
	Materials  *domain.Repository[*entity.Material]
	WorkOrders *domain.Repository[*entity.WorkOrder]
	Projects   *domain.Repository[*entity.Project]
	Assets     *domain.Repository[*entity.Asset]

	// Movements is the store table for the journal; Writer persists to it.
	Movements persist.Table[entity.StockMovement]
	Writer    persist.Submitter

	Kardex   *stock.Service
	Observer OperationObserver
	Clock    func() time.Time
}

// Service runs ledger operations. Operations are serialised within the
// process: each one completes in memory before its persistence is queued.
type Service struct {
	mu sync.Mutex

	materials  *domain.Repository[*entity.Material]
	workOrders *domain.Repository[*entity.WorkOrder]
	projects   *domain.Repository[*entity.Project]
	assets     *domain.Repository[*entity.Asset]
	movements  persist.Table[entity.StockMovement]
	writer     persist.Submitter
	kardex     *stock.Service
	observer   OperationObserver
	now        func() time.Time
}

// NewService creates the ledger service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		materials:  cfg.Materials,
		workOrders: cfg.WorkOrders,
		projects:   cfg.Projects,
		assets:     cfg.Assets,
		movements:  cfg.Movements,
		writer:     cfg.Writer,
		kardex:     cfg.Kardex,
		observer:   cfg.Observer,
		now:        cfg.Clock,
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Hydrate loads the journal from the movements table.
func (s *Service) Hydrate(ctx context.Context, pageSize int) (int, error) {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	total := 0
	for offset := 0; ; offset += pageSize {
		page, err := s.movements.List(ctx, offset, pageSize)
		if err != nil {
			return total, fmt.Errorf("list movements: %w", err)
		}
		n, err := s.kardex.Load(ctx, page)
		if err != nil {
			return total, err
		}
		total += n
		if len(page) < pageSize {
			break
		}
	}
	logger.Info(ctx, "loaded stock journal", "movements", total)
	return total, nil
}

// GetMaterial returns a material by id.
func (s *Service) GetMaterial(ctx context.Context, materialID string) (*entity.Material, error) {
	return s.materials.Get(ctx, materialID)
}

// ListMaterials returns all materials.
func (s *Service) ListMaterials(ctx context.Context) []*entity.Material {
	return s.materials.All(ctx)
}

// LowStock returns the reorder report.
func (s *Service) LowStock(ctx context.Context) []LowStockItem {
	return LowStock(ctx, s.materials.All(ctx))
}

// Register adds a new material, recording its opening balances.
func (s *Service) Register(ctx context.Context, m *entity.Material) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = id.New()
	}
	if s.materials.Exists(m.ID) {
		err := apperror.NewConflict("material already exists").WithDetail("id", m.ID)
		s.observer.ObserveOperation("register", err)
		return Result{}, err
	}

	alloc := NewAllocator(s.kardex, nil, WithClock(s.now))
	movements, err := alloc.Register(ctx, m)
	s.observer.ObserveOperation("register", err)
	if err != nil {
		return Result{}, err
	}

	logger.Info(ctx, "registered material", "material_id", m.ID, "opening_movements", len(movements))
	return s.save(ctx, m, movements), nil
}

// AddLocation adds a named location to a material.
func (s *Service) AddLocation(ctx context.Context, materialID, name string, initialQty types.Quantity) (Result, error) {
	return s.run(ctx, "add_location", materialID, func(a *Allocator, m *entity.Material) ([]entity.StockMovement, error) {
		mv, err := a.AddLocation(ctx, m, name, initialQty)
		if err != nil || mv == nil {
			return nil, err
		}
		return []entity.StockMovement{*mv}, nil
	})
}

// Inbound receives stock into a location.
func (s *Service) Inbound(ctx context.Context, materialID, location string, qty types.Quantity, reason string) (Result, error) {
	return s.run(ctx, "inbound", materialID, func(a *Allocator, m *entity.Material) ([]entity.StockMovement, error) {
		return single(a.Inbound(ctx, m, location, qty, reason))
	})
}

// Outbound withdraws stock from a location.
func (s *Service) Outbound(ctx context.Context, materialID, location string, qty types.Quantity, usage Usage) (Result, error) {
	return s.run(ctx, "outbound", materialID, func(a *Allocator, m *entity.Material) ([]entity.StockMovement, error) {
		return single(a.Outbound(ctx, m, location, qty, usage))
	})
}

// Transfer moves stock between two locations.
func (s *Service) Transfer(ctx context.Context, materialID, from, to string, qty types.Quantity) (Result, error) {
	return s.run(ctx, "transfer", materialID, func(a *Allocator, m *entity.Material) ([]entity.StockMovement, error) {
		return single(a.Transfer(ctx, m, from, to, qty))
	})
}

// Consume withdraws stock without a location, FIFO over the locations.
func (s *Service) Consume(ctx context.Context, materialID string, qty types.Quantity, usage Usage) (Result, error) {
	return s.run(ctx, "consume", materialID, func(a *Allocator, m *entity.Material) ([]entity.StockMovement, error) {
		return single(a.FIFOConsume(ctx, m, qty, usage))
	})
}

// Kardex returns the movement history of a material with running balances.
func (s *Service) Kardex(ctx context.Context, materialID string, filter stock.MovementFilter) ([]stock.KardexEntry, error) {
	if !s.materials.Exists(materialID) {
		return nil, apperror.NewNotFound("material", materialID)
	}
	return s.kardex.Kardex(ctx, materialID, filter)
}

// Turnover returns receipts and expenses of a material over a period.
func (s *Service) Turnover(ctx context.Context, materialID string, from, to time.Time) (stock.Turnover, error) {
	if !s.materials.Exists(materialID) {
		return stock.Turnover{}, apperror.NewNotFound("material", materialID)
	}
	return s.kardex.Turnover(ctx, materialID, from, to)
}

// Verification combines the ledger invariant check with the journal replay.
type Verification struct {
	stock.Reconciliation
	InvariantError string `json:"invariantError,omitempty"`
}

// OK reports whether both checks passed.
func (v Verification) OK() bool {
	return v.InvariantError == "" && v.Reconciliation.OK()
}

// Verify checks a material against its invariants and its journal.
func (s *Service) Verify(ctx context.Context, materialID string) (Verification, error) {
	m, err := s.materials.Get(ctx, materialID)
	if err != nil {
		return Verification{}, err
	}
	rec, err := s.kardex.Verify(ctx, m)
	if err != nil {
		return Verification{}, err
	}
	v := Verification{Reconciliation: rec}
	if err := Verify(m); err != nil {
		v.InvariantError = err.Error()
	}
	return v, nil
}

type operation func(a *Allocator, m *entity.Material) ([]entity.StockMovement, error)

func (s *Service) run(ctx context.Context, op, materialID string, fn operation) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.materials.Get(ctx, materialID)
	if err != nil {
		s.observer.ObserveOperation(op, err)
		return Result{}, err
	}

	alloc := NewAllocator(s.kardex, s.directory(ctx), WithClock(s.now))
	movements, err := fn(alloc, m)
	s.observer.ObserveOperation(op, err)
	if err != nil {
		logger.Debug(ctx, "ledger operation rejected", "op", op, "material_id", materialID, "error", err)
		return Result{}, err
	}

	logger.Info(ctx, "ledger operation applied",
		"op", op,
		"material_id", materialID,
		"current_stock", m.CurrentStock,
		"movements", len(movements),
	)
	return s.save(ctx, m, movements), nil
}

// directory builds the lookup snapshot for one operation.
func (s *Service) directory(ctx context.Context) Directory {
	var workOrders []*entity.WorkOrder
	var projects []*entity.Project
	var assets []*entity.Asset
	if s.workOrders != nil {
		workOrders = s.workOrders.All(ctx)
	}
	if s.projects != nil {
		projects = s.projects.All(ctx)
	}
	if s.assets != nil {
		assets = s.assets.All(ctx)
	}
	return NewSnapshot(workOrders, projects, assets)
}

func (s *Service) save(ctx context.Context, m *entity.Material, movements []entity.StockMovement) Result {
	acks := []*persist.Ack{s.materials.Save(ctx, m)}
	for _, mv := range movements {
		mv := mv
		acks = append(acks, s.writer.Submit(ctx, s.movements.Name(), mv.ID, func(ctx context.Context) error {
			return s.movements.Upsert(ctx, mv.ID, mv)
		}))
	}
	return Result{Material: m, Movements: movements, Ack: persist.Join(acks...)}
}

func single(mv entity.StockMovement, err error) ([]entity.StockMovement, error) {
	if err != nil {
		return nil, err
	}
	return []entity.StockMovement{mv}, nil
}
