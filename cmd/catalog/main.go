package main

import (
	"context"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"FoodZone/internal/catalog"
	"FoodZone/internal/config"
	"FoodZone/migrations"
	"FoodZone/pkg/kit"
)

type catalogStore interface {
	catalog.Store
	catalog.FileStore
}

func main() {
	const service = "catalog"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	cfg, err := config.LoadCatalog()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	ctx := context.Background()

	var store catalogStore = catalog.NewMemStore()
	if cfg.DatabaseURL != "" {
		db, err := kit.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("postgres", zap.Error(err))
		}
		defer db.Close()

		if cfg.AutoMigrate {
			if err := kit.Migrate(db, migrations.FS, migrations.Dir, log); err != nil {
				log.Fatal("migrate", zap.Error(err))
			}
		}
		store = catalog.NewPostgresStore(db)
	} else {
		log.Warn("DATABASE_URL not set, menu is kept in memory")
	}

	if cfg.SeedFile != "" {
		if err := seedIfEmpty(ctx, store, cfg.SeedFile); err != nil {
			log.Fatal("seed", zap.Error(err), zap.String("file", cfg.SeedFile))
		}
	}

	s := &catalog.Server{Store: store, Files: store, Log: log}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: cfg.MetricsOn,
		MetricsToken:   cfg.MetricsToken,
	})

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func seedIfEmpty(ctx context.Context, store catalog.Store, path string) error {
	existing, err := store.List(ctx, catalog.ListFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	items, err := catalog.ParseSeed(f, time.Now())
	if err != nil {
		return err
	}
	return catalog.Seed(ctx, store, items)
}
