package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"FoodZone/internal/auth"
	"FoodZone/internal/config"
	"FoodZone/migrations"
	"FoodZone/pkg/kit"
)

func main() {
	const service = "auth"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	cfg, err := config.LoadAuth()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	var store auth.UserStore = auth.NewMemStore()
	if cfg.DatabaseURL != "" {
		db, err := kit.OpenPostgres(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatal("postgres", zap.Error(err))
		}
		defer db.Close()

		if cfg.AutoMigrate {
			if err := kit.Migrate(db, migrations.FS, migrations.Dir, log); err != nil {
				log.Fatal("migrate", zap.Error(err))
			}
		}
		store = auth.NewPostgresStore(db)
	} else {
		log.Warn("DATABASE_URL not set, users are kept in memory")
	}

	s := &auth.Server{
		Log:           log,
		Store:         store,
		JWT:           auth.NewTokenMaker(cfg.JWTSecret),
		TokenTTL:      cfg.TokenTTL,
		AdminEmails:   cfg.AdminEmails,
		SecureCookies: cfg.SecureCookies,
	}

	h := auth.NewHandler(s, auth.HTTPDeps{
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
