package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"FoodZone/internal/checkout"
	"FoodZone/internal/config"
	"FoodZone/internal/localstore"
	"FoodZone/internal/menu"
	"FoodZone/internal/storefront"
	"FoodZone/migrations"
	"FoodZone/pkg/kit"
)

const sweepInterval = 5 * time.Minute

func main() {
	const service = "storefront"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	cfg, err := config.LoadStorefront()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	var storage localstore.Store = localstore.NewMemStore()
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
		storage = localstore.NewPostgresStore(db)
	} else {
		log.Warn("DATABASE_URL not set, carts are kept in memory")
	}

	publicCatalog := cfg.PublicCatalogURL
	if publicCatalog == "" {
		publicCatalog = cfg.CatalogURL
	}

	s := &storefront.Server{
		Storage: storage,
		Catalog: menu.NewClient(cfg.CatalogURL),
		Images: menu.ImageResolver{
			BaseURL: publicCatalog,
			Preview: menu.PreviewOptions{
				Width:   cfg.Preview.Width,
				Height:  cfg.Preview.Height,
				Quality: cfg.Preview.Quality,
			},
		},
		Sessions: storefront.NewSessions(checkout.Config{
			Gateway:       checkout.SimulatedGateway{Delay: cfg.CheckoutDelay},
			RedirectTo:    cfg.RedirectTo,
			RedirectDelay: cfg.RedirectDelay,
			Log:           log,
		}),
		PageSize:      cfg.PageSize,
		Log:           log,
		SecureCookies: cfg.SecureCookies,
	}

	h := storefront.NewHandler(s, storefront.HTTPDeps{
		Log:          log,
		Service:      service,
		Registry:     prometheus.NewRegistry(),
		MetricsOn:    cfg.MetricsOn,
		MetricsToken: cfg.MetricsToken,
	})

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log, s.Sweeper(cfg.SessionIdleTTL, sweepInterval)); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
