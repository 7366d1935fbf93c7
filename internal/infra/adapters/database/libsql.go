package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/tursodatabase/go-libsql"
)

const MemoryPath = ":memory:"

// NewLibSQL открывает встроенную SQLite базу через libSQL.
// sqlx работает с ней как с sqlite3, чтобы Rebind оставлял плейсхолдеры "?".
func NewLibSQL(ctx context.Context, path string) (*sqlx.DB, error) {
	db, err := sql.Open("libsql", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}

	// у каждой новой in-memory коннекции своя база
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	// libSQL не дает делать Exec для PRAGMA, которые возвращают строки
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		rows, err := db.QueryContext(ctx, p)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %s: %w", p, err)
		}
		rows.Close()
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping libsql: %w", err)
	}

	slog.Info("connected to libsql", slog.String("path", path))

	return sqlx.NewDb(db, "sqlite3"), nil
}
