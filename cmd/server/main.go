// Package main is the entry point for the maintledger API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maintledger/internal/app"
	"maintledger/internal/config"
	"maintledger/internal/domain/auth"
	v1 "maintledger/internal/infrastructure/http/v1"
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

	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting maintledger server")

	a, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open record store", "error", err)
	}
	if err := a.Hydrate(ctx); err != nil {
		log.Fatalw("failed to load records", "error", err)
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = "dev-secret-change-me"
		log.Warn("auth.jwt_secret not set, using development secret")
	}
	jwtConfig := auth.DefaultJWTConfig(secret)
	jwtConfig.AccessTokenTTL = cfg.Auth.TokenTTL
	jwtService := auth.NewJWTService(jwtConfig)

	routerCfg := v1.RouterConfig{
		Logger:        log,
		Validator:     jwtService,
		Ledger:        a.Ledger,
		Costing:       a.Costing,
		Worktime:      a.Worktime,
		WorkOrders:    a.WorkOrders,
		Projects:      a.Projects,
		Assets:        a.Assets,
		Store:         a.Store(),
		PendingWrites: a.Writer.Pending,
	}
	if cfg.Metrics.Enabled {
		routerCfg.Metrics = a.Metrics.Handler()
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      v1.NewRouter(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTP.Addr, "persistent", a.Pool != nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	// Pending writes are flushed after the last request has been served.
	if err := a.Close(shutdownCtx); err != nil {
		log.Errorw("pending writes not flushed", "error", err, "pending", a.Writer.Pending())
	}

	log.Info("server stopped")
}
