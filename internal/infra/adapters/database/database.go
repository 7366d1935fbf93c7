package database

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/qrave1/Gamefinity/internal/application/config"
)

// Open подключается к базе, выбранной в DB_DRIVER
func Open(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	if cfg.Database.Driver == config.DriverLibSQL {
		return NewLibSQL(ctx, cfg.Database.LibSQLPath)
	}

	return NewPostgres(ctx, cfg.Postgres.DSN())
}
