package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"FoodZone/migrations"
	"FoodZone/pkg/kit"
)

func openDB(ctx context.Context) (*sql.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	return kit.OpenPostgres(ctx, dsn)
}

func migrateDB(db *sql.DB, log *zap.Logger) error {
	return kit.Migrate(db, migrations.FS, migrations.Dir, log)
}
