package picklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vsinha/picklist/pkg/application/dto"
	"github.com/vsinha/picklist/pkg/application/services/shared"
	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/domain/repositories"
	"github.com/vsinha/picklist/pkg/domain/services/allocation"
	"github.com/vsinha/picklist/pkg/domain/services/request_validator"
	"github.com/vsinha/picklist/pkg/infrastructure/events"
	"github.com/vsinha/picklist/pkg/infrastructure/metrics"
)

// Repositories groups the collaborators a pick list run reads from
type Repositories struct {
	Availability repositories.AvailabilityProvider
	Items        repositories.ItemRepository
	UOMs         repositories.UOMRepository
	Warehouses   repositories.WarehouseRepository
}

// Service runs pick list allocations end to end: validation, warehouse scope,
// allocation, coverage, metrics and events
type Service struct {
	engine     *allocation.Engine
	validator  *request_validator.RequestValidator
	items      repositories.ItemRepository
	warehouses repositories.WarehouseRepository

	logger   zerolog.Logger
	sink     events.EventSink
	recorder *metrics.Recorder
	newRunID func() string
	now      func() time.Time
}

// Option configures optional collaborators of a Service
type Option func(*Service)

// WithEventSink publishes run events to sink
func WithEventSink(sink events.EventSink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithMetrics records run metrics on recorder
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(s *Service) { s.recorder = recorder }
}

// WithLogger replaces the logger used for run and line logs
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock replaces the wall clock used for default reference dates and durations
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a pick list service
func NewService(repos Repositories, opts ...Option) *Service {
	s := &Service{
		engine:     allocation.NewEngine(repos.Availability, repos.Items, repos.UOMs),
		validator:  request_validator.NewRequestValidator(repos.Items),
		items:      repos.Items,
		warehouses: repos.Warehouses,
		logger:     zerolog.Nop(),
		newRunID:   uuid.NewString,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allocate runs one allocation. Precondition failures are returned as errors carrying
// *allocation.PreconditionError; shortages are part of the result.
func (s *Service) Allocate(ctx context.Context, req dto.AllocateRequest) (*dto.PickListResult, error) {
	start := s.now()
	runID := s.newRunID()
	logger := s.logger.With().Str("run_id", runID).Logger()

	result, err := s.allocate(ctx, runID, req, logger)
	duration := s.now().Sub(start)

	if err != nil {
		outcome := metrics.OutcomeError
		if allocation.IsPrecondition(err) {
			outcome = metrics.OutcomePrecondition
			logger.Warn().Err(err).Msg("pick list rejected")
		} else {
			logger.Error().Err(err).Msg("pick list failed")
		}
		if s.recorder != nil {
			s.recorder.ObserveRun(outcome, duration)
		}
		return nil, err
	}

	result.Duration = duration
	if s.recorder != nil {
		s.recorder.ObserveRun(metrics.OutcomeSuccess, duration)
	}
	logger.Info().
		Int("lines", len(req.Lines)).
		Int("rows", len(result.Rows)).
		Int("shortages", len(result.Shortages)).
		Dur("duration", duration).
		Msg("pick list allocated")

	s.publish(ctx, result, logger)
	return result, nil
}

func (s *Service) allocate(
	ctx context.Context,
	runID string,
	req dto.AllocateRequest,
	logger zerolog.Logger,
) (*dto.PickListResult, error) {
	validation, err := s.validator.ValidateLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}
	if !validation.IsValid() {
		return nil, validation.Err()
	}
	lines := validation.Lines

	scope, err := s.resolveScope(ctx, req)
	if err != nil {
		return nil, err
	}

	refDate := s.now()
	if req.ReferenceDate != nil {
		refDate = req.ReferenceDate.Time
	}
	y, m, d := refDate.Date()
	refDay := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	logger.Debug().
		Int("lines", len(lines)).
		Strs("warehouses", scope).
		Str("reference_date", refDay.Format(dto.DateLayout)).
		Msg("allocating pick list")

	allocated, err := s.engine.Allocate(ctx, lines, allocation.AllocateOptions{
		WarehouseScope: scope,
		ReferenceDate:  refDay,
	})
	if err != nil {
		return nil, err
	}

	if err := s.recordTracking(ctx, allocated, logger); err != nil {
		return nil, err
	}

	coverage := shared.NewCoverageMapFromResult(lines, allocated)
	return &dto.PickListResult{
		RunID:          runID,
		ReferenceDate:  dto.Date{Time: refDay},
		WarehouseScope: scope,
		Rows:           allocated.Rows,
		Shortages:      allocated.Shortages,
		Coverage:       coverage.Items(),
		CoverageRatio:  coverage.GetCoverageRatio(),
	}, nil
}

// resolveScope unions the explicit scope with the parent warehouse and its descendants,
// keeping first-seen order
func (s *Service) resolveScope(ctx context.Context, req dto.AllocateRequest) ([]string, error) {
	if req.ParentWarehouse == "" {
		return dedupe(req.WarehouseScope), nil
	}

	exists, err := s.warehouses.Exists(ctx, req.ParentWarehouse)
	if err != nil {
		return nil, fmt.Errorf("failed to look up warehouse %s: %w", req.ParentWarehouse, err)
	}
	if !exists {
		return nil, unknownWarehouse(req.ParentWarehouse)
	}

	descendants, err := s.warehouses.Descendants(ctx, req.ParentWarehouse)
	if errors.Is(err, repositories.ErrWarehouseNotFound) {
		return nil, unknownWarehouse(req.ParentWarehouse)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve warehouses under %s: %w", req.ParentWarehouse, err)
	}

	scope := make([]string, 0, len(req.WarehouseScope)+len(descendants)+1)
	scope = append(scope, req.WarehouseScope...)
	scope = append(scope, req.ParentWarehouse)
	scope = append(scope, descendants...)
	return dedupe(scope), nil
}

func unknownWarehouse(name string) error {
	return &allocation.PreconditionError{
		LineIndex: -1,
		Err:       fmt.Errorf("%w: %s", allocation.ErrUnknownWarehouse, name),
	}
}

func dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// recordTracking counts rows and shortages per tracking mode and logs every shortage
func (s *Service) recordTracking(ctx context.Context, result *entities.AllocationResult, logger zerolog.Logger) error {
	modes := make(map[entities.ItemCode]entities.TrackingMode)
	modeOf := func(code entities.ItemCode) (entities.TrackingMode, error) {
		if mode, ok := modes[code]; ok {
			return mode, nil
		}
		mode, err := s.items.TrackingMode(ctx, code)
		if err != nil {
			return entities.TrackingNone, fmt.Errorf("failed to resolve tracking mode for %s: %w", code, err)
		}
		modes[code] = mode
		return mode, nil
	}

	rows := make(map[entities.TrackingMode]int)
	for _, row := range result.Rows {
		mode, err := modeOf(row.ItemCode)
		if err != nil {
			return err
		}
		rows[mode]++
	}
	shortages := make(map[entities.TrackingMode]int)
	for _, short := range result.Shortages {
		mode, err := modeOf(short.ItemCode)
		if err != nil {
			return err
		}
		shortages[mode]++
		logger.Warn().
			Int("line", short.LineIndex).
			Str("item_code", string(short.ItemCode)).
			Str("short_qty", short.ShortQuantity.String()).
			Str("uom", short.UOM).
			Str("tracking", mode.String()).
			Msg("insufficient stock")
	}

	if s.recorder != nil {
		for mode, n := range rows {
			s.recorder.AddRows(mode.String(), n)
		}
		for mode, n := range shortages {
			s.recorder.AddShortages(mode.String(), n)
		}
	}
	return nil
}

// publish appends the run events. Failures are logged; the allocation stands.
func (s *Service) publish(ctx context.Context, result *dto.PickListResult, logger zerolog.Logger) {
	if s.sink == nil {
		return
	}
	stream := events.StreamID(result.RunID)

	allocated := events.NewEvent(events.PickListAllocatedEvent, stream, events.PickListAllocated{
		RunID:         result.RunID,
		ReferenceDate: result.ReferenceDate.Time,
		Result: entities.AllocationResult{
			Rows:      result.Rows,
			Shortages: result.Shortages,
		},
	})
	if err := s.sink.AppendEvent(ctx, stream, allocated); err != nil {
		logger.Error().Err(err).Str("event", events.PickListAllocatedEvent).Msg("failed to publish event")
	}

	for _, short := range result.Shortages {
		event := events.NewEvent(events.ShortageIdentifiedEvent, stream, events.ShortageIdentified{
			RunID:    result.RunID,
			Shortage: short,
		})
		if err := s.sink.AppendEvent(ctx, stream, event); err != nil {
			logger.Error().Err(err).Str("event", events.ShortageIdentifiedEvent).Msg("failed to publish event")
		}
	}
}
