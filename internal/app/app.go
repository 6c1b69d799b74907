// Package app wires the ledger services to their record store. It is shared
// by the server, the reconciliation worker and the seeder.
package app

import (
	"context"
	"fmt"

	"maintledger/db/migrations"
	"maintledger/internal/config"
	"maintledger/internal/core/entity"
	"maintledger/internal/core/tx"
	corepersist "maintledger/internal/core/persist"
	"maintledger/internal/domain"
	"maintledger/internal/domain/costing"
	"maintledger/internal/domain/ledger"
	"maintledger/internal/domain/registers/stock"
	"maintledger/internal/domain/worktime"
	"maintledger/internal/infrastructure/metrics"
	"maintledger/internal/infrastructure/persist"
	"maintledger/internal/infrastructure/storage/postgres"
	"maintledger/internal/infrastructure/storage/postgres/record_repo"
	"maintledger/pkg/logger"
)

// Tables are the record store collaborators, one per entity table.
type Tables struct {
	Materials  corepersist.Table[*entity.Material]
	Movements  corepersist.Table[entity.StockMovement]
	WorkOrders corepersist.Table[*entity.WorkOrder]
	Projects   corepersist.Table[*entity.Project]
	Assets     corepersist.Table[*entity.Asset]
}

// MemoryTables returns in-process tables.
func MemoryTables() Tables {
	return Tables{
		Materials:  persist.NewMemoryTable[*entity.Material](record_repo.MaterialsTable),
		Movements:  persist.NewMemoryTable[entity.StockMovement](record_repo.StockMovementsTable),
		WorkOrders: persist.NewMemoryTable[*entity.WorkOrder](record_repo.WorkOrdersTable),
		Projects:   persist.NewMemoryTable[*entity.Project](record_repo.ProjectsTable),
		Assets:     persist.NewMemoryTable[*entity.Asset](record_repo.AssetsTable),
	}
}

// PostgresTables returns JSONB-backed tables. Every write is audited.
func PostgresTables(txm *postgres.TxManager, audit *postgres.AuditService) Tables {
	withAudit := record_repo.WithAudit(audit)
	return Tables{
		Materials:  record_repo.NewRecordRepo[*entity.Material](txm, record_repo.MaterialsTable, withAudit),
		Movements:  record_repo.NewRecordRepo[entity.StockMovement](txm, record_repo.StockMovementsTable, record_repo.AppendOnly()),
		WorkOrders: record_repo.NewRecordRepo[*entity.WorkOrder](txm, record_repo.WorkOrdersTable, withAudit),
		Projects:   record_repo.NewRecordRepo[*entity.Project](txm, record_repo.ProjectsTable, withAudit),
		Assets:     record_repo.NewRecordRepo[*entity.Asset](txm, record_repo.AssetsTable, withAudit),
	}
}

// App holds the wired services.
type App struct {
	Tables  Tables
	Writer  *persist.Writer
	Metrics *metrics.Metrics

	Materials  *domain.Repository[*entity.Material]
	WorkOrders *domain.Repository[*entity.WorkOrder]
	Projects   *domain.Repository[*entity.Project]
	Assets     *domain.Repository[*entity.Asset]

	Ledger   *ledger.Service
	Costing  *costing.Service
	Worktime *worktime.Service

	// Pool and TxManager are nil in memory mode.
	Pool      *postgres.Pool
	TxManager *postgres.TxManager

	snapshot tx.ReadOnlyManager
}

// New wires services over tables.
func New(cfg config.Config, tables Tables) *App {
	m := metrics.New()
	writer := persist.NewWriter(persist.WriterConfig{
		CoalesceWindow: cfg.Writer.CoalesceWindow,
		WriteTimeout:   cfg.Writer.WriteTimeout,
	}, persist.WithObserver(m))

	a := &App{
		Tables:     tables,
		Writer:     writer,
		Metrics:    m,
		Materials:  domain.NewRepository("material", tables.Materials, writer),
		WorkOrders: domain.NewRepository("work order", tables.WorkOrders, writer),
		Projects:   domain.NewRepository("project", tables.Projects, writer),
		Assets:     domain.NewRepository("asset", tables.Assets, writer),
	}

	a.Ledger = ledger.NewService(ledger.ServiceConfig{
		Materials:  a.Materials,
		WorkOrders: a.WorkOrders,
		Projects:   a.Projects,
		Assets:     a.Assets,
		Movements:  tables.Movements,
		Writer:     writer,
		Kardex:     stock.NewService(stock.NewMemoryJournal()),
		Observer:   m,
	})
	a.Costing = costing.NewService(a.WorkOrders, a.Projects)
	a.Worktime = worktime.NewService(a.WorkOrders, nil)
	return a
}

// Open connects to PostgreSQL when a DSN is configured, applies migrations
// and wires the services. Without a DSN records live in memory only.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	if cfg.Postgres.DSN == "" {
		logger.Warn(ctx, "no database configured, records are kept in memory only")
		return New(cfg, MemoryTables()), nil
	}

	if cfg.Postgres.Migrate {
		if err := migrations.Up(ctx, cfg.Postgres.DSN); err != nil {
			return nil, err
		}
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.Postgres.DSN)
	poolCfg.MaxConns = cfg.Postgres.MaxConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	txm := postgres.NewTxManager(pool)
	audit, err := postgres.NewAuditService(txm)
	if err != nil {
		pool.Close()
		return nil, err
	}

	a := New(cfg, PostgresTables(txm, audit))
	a.Pool = pool
	a.TxManager = txm
	a.snapshot = txm
	a.Metrics.WatchPool(pool.Conns)
	return a, nil
}

// Hydrate loads every table into the local repositories.
// With a database the tables are read in one snapshot, so movements and
// material balances agree.
func (a *App) Hydrate(ctx context.Context) error {
	if a.snapshot == nil {
		return a.hydrate(ctx)
	}
	return a.snapshot.ReadOnly(ctx, a.hydrate)
}

func (a *App) hydrate(ctx context.Context) error {
	steps := []struct {
		name string
		load func(context.Context, int) (int, error)
	}{
		{"materials", a.Materials.Hydrate},
		{"work orders", a.WorkOrders.Hydrate},
		{"projects", a.Projects.Hydrate},
		{"assets", a.Assets.Hydrate},
		{"stock movements", a.Ledger.Hydrate},
	}
	for _, s := range steps {
		n, err := s.load(ctx, domain.DefaultPageSize)
		if err != nil {
			return fmt.Errorf("hydrate %s: %w", s.name, err)
		}
		logger.Info(ctx, "hydrated", "table", s.name, "records", n)
	}
	return nil
}

// Store returns the pinger for readiness checks, or nil in memory mode.
func (a *App) Store() interface{ Ping(context.Context) error } {
	if a.TxManager == nil {
		return nil
	}
	return a.TxManager
}

// Close drains pending writes and releases the pool.
func (a *App) Close(ctx context.Context) error {
	err := a.Writer.Close(ctx)
	if a.Pool != nil {
		a.Pool.Close()
	}
	return err
}
