// Package main is the reconciliation worker. It periodically reloads the
// record store and replays every material's Kardex against its stored
// location balances.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maintledger/internal/app"
	"maintledger/internal/config"
	"maintledger/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("MAINT_CONFIG"))
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if cfg.Postgres.DSN == "" {
		log.Fatal("postgres.dsn is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	w := &Worker{cfg: cfg, log: log.WithComponent("reconciler")}
	log.Infow("starting reconciliation worker", "interval", cfg.Worker.VerifyInterval)
	w.Run(ctx)
	log.Info("worker stopped")
}

// Worker runs reconciliation passes on a fixed interval.
type Worker struct {
	cfg config.Config
	log *logger.Logger
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Worker.VerifyInterval)
	defer ticker.Stop()

	w.pass(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pass(ctx)
		}
	}
}

// pass loads a fresh snapshot of the store, so the check sees what other
// processes have persisted.
func (w *Worker) pass(ctx context.Context) {
	started := time.Now()

	cfg := w.cfg
	cfg.Postgres.Migrate = false
	a, err := app.Open(ctx, cfg)
	if err != nil {
		w.log.Errorw("open record store", "error", err)
		return
	}
	defer func() { _ = a.Close(context.Background()) }()

	if err := a.Hydrate(ctx); err != nil {
		w.log.Errorw("load records", "error", err)
		return
	}

	checked, failed := 0, 0
	for _, m := range a.Ledger.ListMaterials(ctx) {
		v, err := a.Ledger.Verify(ctx, m.ID)
		if err != nil {
			w.log.Errorw("verify material", "material_id", m.ID, "error", err)
			continue
		}
		checked++
		a.Metrics.ObserveVerification(v.OK())
		if !v.OK() {
			failed++
			w.log.Warnw("kardex mismatch",
				"material_id", m.ID,
				"code", m.Code,
				"mismatches", v.Mismatches,
				"invariant_error", v.InvariantError,
			)
		}
	}

	w.log.Infow("reconciliation pass finished",
		"materials", checked,
		"mismatched", failed,
		"duration_ms", time.Since(started).Milliseconds(),
	)
}
