package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vsinha/picklist/pkg/application/services/picklist"
	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/infrastructure/config"
	"github.com/vsinha/picklist/pkg/infrastructure/events"
	"github.com/vsinha/picklist/pkg/infrastructure/repositories/cache"
	"github.com/vsinha/picklist/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/picklist/pkg/infrastructure/repositories/postgres"
	"github.com/vsinha/picklist/pkg/infrastructure/repositories/sqlite"
)

// backend is the storage a command reads from
type backend struct {
	repos picklist.Repositories
	close func() error
}

// openBackend opens the configured storage driver. The memory driver serves snapshot,
// which must then be non-nil.
func openBackend(ctx context.Context, cfg config.Config, snapshot *entities.InventorySnapshot) (*backend, error) {
	b := &backend{close: func() error { return nil }}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		if snapshot == nil {
			return nil, fmt.Errorf("memory storage needs a scenario directory")
		}
		store, err := memory.NewStoreFromSnapshot(snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		b.repos = picklist.Repositories{
			Availability: store.Inventory,
			Items:        store.Items,
			UOMs:         store.UOMs,
			Warehouses:   store.Warehouses,
		}

	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		b.repos = picklist.Repositories{Availability: store, Items: store, UOMs: store, Warehouses: store}
		b.close = store.Close

	case config.DriverPostgres:
		store, err := postgres.Connect(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		b.repos = picklist.Repositories{Availability: store, Items: store, UOMs: store, Warehouses: store}
		b.close = func() error {
			store.Close()
			return nil
		}

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Cache.Size > 0 {
		items, err := cache.NewItemRepository(b.repos.Items, cfg.Cache.Size)
		if err != nil {
			_ = b.close()
			return nil, err
		}
		uoms, err := cache.NewUOMRepository(b.repos.UOMs, cfg.Cache.Size)
		if err != nil {
			_ = b.close()
			return nil, err
		}
		b.repos.Items = items
		b.repos.UOMs = uoms
	}

	return b, nil
}

// newEventSink publishes to RabbitMQ when an AMQP url is configured and keeps
// events in memory otherwise
func newEventSink(cfg config.Config, logger zerolog.Logger) (events.EventSink, func() error, error) {
	if cfg.Events.AMQPURL == "" {
		return events.NewInMemoryEventStore(), func() error { return nil }, nil
	}

	publisher, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("exchange", cfg.Events.Exchange).Msg("publishing events to amqp")
	return publisher, publisher.Close, nil
}
