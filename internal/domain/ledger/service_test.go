package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/entity"
	"maintledger/internal/domain"
	"maintledger/internal/domain/registers/stock"
	memstore "maintledger/internal/infrastructure/persist"
)

type opCounter struct {
	mu  sync.Mutex
	ops map[string]int
}

func (o *opCounter) ObserveOperation(op string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ops == nil {
		o.ops = map[string]int{}
	}
	key := op + ":ok"
	if err != nil {
		key = op + ":error"
	}
	o.ops[key]++
}

type serviceFixture struct {
	svc       *Service
	materials *memstore.MemoryTable[*entity.Material]
	movements *memstore.MemoryTable[entity.StockMovement]
	writer    *memstore.Writer
	observer  *opCounter
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	writer := memstore.NewWriter(memstore.WriterConfig{CoalesceWindow: 5 * time.Millisecond})
	materials := memstore.NewMemoryTable[*entity.Material]("materials")
	movements := memstore.NewMemoryTable[entity.StockMovement]("stock_movements")
	workOrders := domain.NewRepository[*entity.WorkOrder]("work order", memstore.NewMemoryTable[*entity.WorkOrder]("work_orders"), writer)
	projects := domain.NewRepository[*entity.Project]("project", memstore.NewMemoryTable[*entity.Project]("projects"), writer)
	ctx := context.Background()

	projects.Save(ctx, &entity.Project{ID: "p-1", Code: "CAPEX-7", CostCenter: "CC-9"})
	workOrders.Save(ctx, &entity.WorkOrder{ID: "wo-1", Number: "1001", ProjectID: "p-1"})

	observer := &opCounter{}
	svc := NewService(ServiceConfig{
		Materials:  domain.NewRepository[*entity.Material]("material", materials, writer),
		WorkOrders: workOrders,
		Projects:   projects,
		Movements:  movements,
		Writer:     writer,
		Kardex:     stock.NewService(stock.NewMemoryJournal()),
		Observer:   observer,
		Clock:      tickingClock(),
	})
	return &serviceFixture{svc: svc, materials: materials, movements: movements, writer: writer, observer: observer}
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestService_OperationsPersistAndReplay(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, &entity.Material{ID: "m1", Code: "FILTER", Locations: []entity.LocationBalance{loc("A", 5), loc("B", 3)}})
	require.NoError(t, err)
	require.NoError(t, res.Ack.Wait(waitCtx(t)))
	assert.Len(t, res.Movements, 2)

	res, err = f.svc.Consume(ctx, "m1", q(6), Usage{WorkOrderNumber: "1001"})
	require.NoError(t, err)
	assert.Equal(t, "CC-9", res.Movements[0].CostCenter)
	require.NoError(t, res.Ack.Wait(waitCtx(t)))

	stored, ok := f.materials.Get("m1")
	require.True(t, ok)
	assert.Equal(t, q(2), stored.CurrentStock)
	assert.Equal(t, 3, f.movements.Len())

	v, err := f.svc.Verify(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, v.OK())

	recent, err := f.svc.Kardex(ctx, "m1", stock.MovementFilter{Order: stock.OrderDesc, Limit: 1})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, entity.MovementOut, recent[0].Kind)
	assert.Equal(t, q(2), recent[0].Balance)
}

func TestService_RejectedOperationChangesNothing(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, &entity.Material{ID: "m1", Locations: []entity.LocationBalance{loc("A", 4)}})
	require.NoError(t, err)
	require.NoError(t, f.writer.Flush(waitCtx(t)))
	before := f.movements.Len()

	_, err = f.svc.Consume(ctx, "m1", q(6), Usage{Reason: "x"})
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	m, err := f.svc.GetMaterial(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, q(4), m.CurrentStock)
	require.NoError(t, f.writer.Flush(waitCtx(t)))
	assert.Equal(t, before, f.movements.Len())

	_, err = f.svc.Inbound(ctx, "nope", "A", q(1), "")
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.Register(ctx, &entity.Material{ID: "m1"})
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))

	assert.Equal(t, 1, f.observer.ops["consume:error"])
	assert.Equal(t, 1, f.observer.ops["register:ok"])
}

func TestService_PersistenceFailureKeepsOptimisticState(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, &entity.Material{ID: "m1", Locations: []entity.LocationBalance{loc("A", 4)}})
	require.NoError(t, err)
	require.NoError(t, f.writer.Flush(waitCtx(t)))

	f.materials.FailWith = errors.New("store unavailable")
	res, err := f.svc.Outbound(ctx, "m1", "A", q(1), Usage{Reason: "test"})
	require.NoError(t, err)

	ackErr := res.Ack.Wait(waitCtx(t))
	require.Error(t, ackErr)
	assert.True(t, apperror.HasCode(ackErr, apperror.CodeDatabase))

	m, err := f.svc.GetMaterial(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, q(3), m.CurrentStock)
}

func TestService_LowStock(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, &entity.Material{ID: "m1", MinStock: q(5), Locations: []entity.LocationBalance{loc("A", 2)}})
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, &entity.Material{ID: "m2", MinStock: q(1), Locations: []entity.LocationBalance{loc("A", 2)}})
	require.NoError(t, err)

	items := f.svc.LowStock(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, "m1", items[0].MaterialID)
}
