package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3/database"

	"github.com/vsinha/picklist/pkg/infrastructure/repositories/migrations"
)

// Migrate applies the schema through a short-lived database/sql connection
func Migrate(ctx context.Context, dsn string) (int64, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return 0, fmt.Errorf("failed to open postgres: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return migrations.Up(ctx, db, database.DialectPostgres)
}
