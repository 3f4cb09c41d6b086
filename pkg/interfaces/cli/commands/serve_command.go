package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vsinha/picklist/pkg/application/services/picklist"
	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/infrastructure/config"
	"github.com/vsinha/picklist/pkg/infrastructure/logging"
	"github.com/vsinha/picklist/pkg/infrastructure/metrics"
	"github.com/vsinha/picklist/pkg/infrastructure/repositories/csv"
	httpapi "github.com/vsinha/picklist/pkg/interfaces/http"
)

const shutdownTimeout = 10 * time.Second

// ServeCommand runs the HTTP API until ctx is canceled
type ServeCommand struct {
	configFile string
}

func NewServeCommand(configFile string) *ServeCommand {
	return &ServeCommand{configFile: configFile}
}

func (c *ServeCommand) Execute(ctx context.Context) error {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.App.Env, cfg.App.LogLevel)

	var snapshot *entities.InventorySnapshot
	if cfg.Storage.Driver == config.DriverMemory && cfg.Storage.ScenarioDir != "" {
		snapshot, err = csv.NewLoader().LoadSnapshot(cfg.Storage.ScenarioDir)
		if err != nil {
			return fmt.Errorf("error loading scenario: %w", err)
		}
	}

	store, err := openBackend(ctx, cfg, snapshot)
	if err != nil {
		return err
	}
	defer func() { _ = store.close() }()

	sink, closeSink, err := newEventSink(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeSink() }()

	opts := []picklist.Option{
		picklist.WithLogger(logger),
		picklist.WithEventSink(sink),
	}

	routerCfg := httpapi.RouterConfig{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Logger:         logger,
	}
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, picklist.WithMetrics(metrics.NewRecorder(registry)))
		routerCfg.Gatherer = registry
	}

	service := picklist.NewService(store.repos, opts...)
	server := httpapi.NewServer(cfg.HTTP.Addr, httpapi.NewRouter(service, routerCfg))

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.HTTP.Addr).
			Str("storage", cfg.Storage.Driver).
			Msg("http server started")
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return <-errCh
}
