package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// FS returns the migration files for a dialect
func FS(dialect database.Dialect) (fs.FS, error) {
	switch dialect {
	case database.DialectSQLite3:
		return fs.Sub(files, "sqlite")
	case database.DialectPostgres:
		return fs.Sub(files, "postgres")
	default:
		return nil, fmt.Errorf("no migrations for dialect %s", dialect)
	}
}

// Up applies every pending migration and returns the resulting schema version
func Up(ctx context.Context, db *sql.DB, dialect database.Dialect) (int64, error) {
	fsys, err := FS(dialect)
	if err != nil {
		return 0, err
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}
	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
