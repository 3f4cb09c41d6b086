package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/infrastructure/config"
	"github.com/vsinha/picklist/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/picklist/pkg/infrastructure/repositories/postgres"
	"github.com/vsinha/picklist/pkg/infrastructure/repositories/sqlite"
)

// MigrateCommand applies the schema to the configured database and optionally
// seeds it from a CSV scenario
type MigrateCommand struct {
	configFile string
	seedDir    string
	stdout     io.Writer
}

func NewMigrateCommand(configFile, seedDir string) *MigrateCommand {
	return &MigrateCommand{configFile: configFile, seedDir: seedDir, stdout: os.Stdout}
}

type seeder interface {
	Seed(ctx context.Context, snapshot *entities.InventorySnapshot) error
}

func (c *MigrateCommand) Execute(ctx context.Context) error {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return err
	}

	var snapshot *entities.InventorySnapshot
	if c.seedDir != "" {
		snapshot, err = csv.NewLoader().LoadSnapshot(c.seedDir)
		if err != nil {
			return fmt.Errorf("error loading seed scenario: %w", err)
		}
	}

	var target seeder
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		// Open migrates on its own
		store, err := sqlite.Open(ctx, cfg.Storage.DSN)
		if err != nil {
			return err
		}
		defer store.Close()
		target = store
		fmt.Fprintf(c.stdout, "sqlite schema is up to date\n")

	case config.DriverPostgres:
		version, err := postgres.Migrate(ctx, cfg.Storage.DSN)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "postgres schema at version %d\n", version)
		if snapshot == nil {
			return nil
		}
		store, err := postgres.Connect(ctx, cfg.Storage.DSN)
		if err != nil {
			return err
		}
		defer store.Close()
		target = store

	default:
		return fmt.Errorf("migrate needs sqlite or postgres storage, got %q", cfg.Storage.Driver)
	}

	if snapshot == nil {
		return nil
	}
	if err := target.Seed(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to seed: %w", err)
	}
	fmt.Fprintf(c.stdout, "seeded %d items, %d stock, %d serial and %d batch records\n",
		len(snapshot.Items), len(snapshot.Stock), len(snapshot.Serials), len(snapshot.Batches))
	return nil
}
