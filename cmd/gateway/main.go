package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"FoodZone/internal/config"
	"FoodZone/internal/gateway"
	"FoodZone/pkg/kit"
)

func main() {
	const service = "gateway"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	cfg, err := config.LoadGateway()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	deps := gateway.Deps{
		JWTSecret:     cfg.JWTSecret,
		AuthURL:       cfg.AuthURL,
		CatalogURL:    cfg.CatalogURL,
		StorefrontURL: cfg.StorefrontURL,
	}

	reg := prometheus.NewRegistry()
	h, err := gateway.NewHandler(deps, gateway.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsOn,
		MetricsToken:   cfg.MetricsToken,
	})
	if err != nil {
		log.Fatal("init gateway handler failed", zap.Error(err))
	}

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
