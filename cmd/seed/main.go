// Package main provides a CLI tool for seeding the record store with demo
// data and printing development access tokens.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"maintledger/internal/app"
	"maintledger/internal/config"
	"maintledger/internal/core/entity"
	"maintledger/internal/core/persist"
	"maintledger/internal/core/security"
	"maintledger/internal/core/types"
	"maintledger/internal/domain/auth"
	"maintledger/internal/domain/ledger"
	"maintledger/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("MAINT_CONFIG"))
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	ctx := logger.WithLogger(context.Background(), log)
	ctx = security.WithSession(ctx, &security.Session{ActorID: "seed", Name: "seed", Role: security.RoleAdmin})

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if cfg.Postgres.DSN == "" {
			log.Fatal("MAINT_POSTGRES_DSN is required to seed demo data")
		}
		if err := seedDemoData(ctx, cfg, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	if err := printTokens(cfg); err != nil {
		log.Fatalw("failed to issue tokens", "error", err)
	}
	log.Info("seeding completed successfully")
}

func seedDemoData(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	a, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}
	if err := a.Hydrate(ctx); err != nil {
		return err
	}

	var acks []*persist.Ack

	assets := []*entity.Asset{
		{ID: "asset-pump-01", Code: "PMP-01", Name: "Feed water pump", Kind: entity.AssetEquipment, CostCenter: "CC-PLANT"},
		{ID: "asset-bldg-a", Code: "BLD-A", Name: "Workshop A", Kind: entity.AssetBuilding, CostCenter: "CC-FAC"},
	}
	for _, as := range assets {
		acks = append(acks, a.Assets.Save(ctx, as))
	}

	project := &entity.Project{
		ID:   "proj-overhaul",
		Code: "PRJ-001",
		Name: "Pump overhaul",
		PlannedMaterials: []entity.PlannedLine{
			{ItemID: "mat-bearing", Quantity: types.NewQuantity(4), UnitCost: types.MustMoney("12.40")},
		},
		PlannedServices: []entity.PlannedLine{
			{ItemID: "svc-alignment", Quantity: types.NewQuantity(1), UnitCost: types.MustMoney("180")},
		},
		MaterialCost:   entity.CostOverride{Mode: entity.OverrideAuto},
		ServiceCost:    entity.CostOverride{Mode: entity.OverrideAuto},
		EstimatedValue: types.MustMoney("500"),
	}
	acks = append(acks, a.Projects.Save(ctx, project))

	acks = append(acks, a.WorkOrders.Save(ctx, &entity.WorkOrder{
		ID:        "wo-1001",
		Number:    "WO-1001",
		Status:    entity.WorkOrderOpen,
		ProjectID: project.ID,
		AssetID:   "asset-pump-01",
	}))

	materials := []*entity.Material{
		{
			ID: "mat-bearing", Code: "BRG-6204", Description: "Ball bearing 6204", Unit: "pcs",
			UnitCost: types.MustMoney("12.40"), MinStock: types.NewQuantity(5),
			Locations: []entity.LocationBalance{
				{Name: "Main", Quantity: types.NewQuantity(10)},
				{Name: "Van 2", Quantity: types.NewQuantity(2)},
			},
		},
		{
			ID: "mat-grease", Code: "GRS-EP2", Description: "EP2 grease", Unit: "kg",
			UnitCost: types.MustMoney("8.75"), MinStock: types.NewQuantity(2),
			Locations: []entity.LocationBalance{{Name: "Main", Quantity: types.NewQuantityFromFloat64(3.5)}},
		},
	}
	registered := 0
	for _, m := range materials {
		if a.Materials.Exists(m.ID) {
			log.Infow("material exists, skipping", "material_id", m.ID)
			continue
		}
		res, err := a.Ledger.Register(ctx, m)
		if err != nil {
			return fmt.Errorf("register %s: %w", m.Code, err)
		}
		acks = append(acks, res.Ack)
		registered++
	}

	// Only the first run draws demo stock, so re-seeding keeps balances stable.
	if registered > 0 {
		res, err := a.Ledger.Consume(ctx, "mat-bearing", types.NewQuantity(2), ledger.Usage{
			WorkOrderNumber: "WO-1001",
			Reason:          "Bearing replacement",
		})
		if err != nil {
			return fmt.Errorf("consume demo stock: %w", err)
		}
		acks = append(acks, res.Ack)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := persist.Join(acks...).Wait(waitCtx); err != nil {
		return err
	}
	if err := a.Close(waitCtx); err != nil {
		return err
	}

	log.Infow("demo data seeded",
		"materials", a.Materials.Len(),
		"work_orders", a.WorkOrders.Len(),
		"projects", a.Projects.Len(),
		"assets", a.Assets.Len(),
	)
	return nil
}

func printTokens(cfg config.Config) error {
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	jwtConfig := auth.DefaultJWTConfig(secret)
	jwtConfig.AccessTokenTTL = cfg.Auth.TokenTTL
	svc := auth.NewJWTService(jwtConfig)

	roles := []security.Role{
		security.RoleAdmin,
		security.RoleManager,
		security.RoleTechnician,
		security.RoleViewer,
	}
	for _, role := range roles {
		token, expires, err := svc.GenerateAccessToken(&security.Session{
			ActorID: "dev-" + string(role),
			Name:    "Dev " + string(role),
			Role:    role,
		})
		if err != nil {
			return err
		}
		fmt.Printf("%-10s %s (expires %s)\n", role, token, expires.Format(time.RFC3339))
	}
	return nil
}
