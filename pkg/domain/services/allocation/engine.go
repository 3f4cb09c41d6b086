package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/domain/repositories"
)

// AllocateOptions controls a single allocation run
type AllocateOptions struct {
	// WarehouseScope restricts untracked stock to these warehouses. Empty means all.
	WarehouseScope []string
	// ReferenceDate decides which batches count as expired. Zero means today.
	ReferenceDate time.Time
}

// Engine turns requested lines into allocation rows and shortages.
// It keeps no state between runs, so one Engine may serve concurrent runs.
type Engine struct {
	availability repositories.AvailabilityProvider
	items        repositories.ItemRepository
	uoms         repositories.UOMRepository
	now          func() time.Time

	pool   PoolAllocator
	batch  BatchAllocator
	serial SerialAllocator
}

// NewEngine creates an allocation engine over the given collaborators
func NewEngine(
	availability repositories.AvailabilityProvider,
	items repositories.ItemRepository,
	uoms repositories.UOMRepository,
) *Engine {
	return &Engine{
		availability: availability,
		items:        items,
		uoms:         uoms,
		now:          time.Now,
	}
}

// Allocate processes lines strictly in the given order. Lines of the same untracked item
// share one supply pool, so an earlier line gets first claim on the stock.
func (e *Engine) Allocate(
	ctx context.Context,
	lines []entities.RequestedLine,
	opts AllocateOptions,
) (*entities.AllocationResult, error) {
	result := &entities.AllocationResult{
		Rows:      []entities.AllocationRow{},
		Shortages: []entities.ShortageNotice{},
	}

	for i, line := range lines {
		if err := validateLine(i, line); err != nil {
			return nil, err
		}
	}

	if opts.ReferenceDate.IsZero() {
		opts.ReferenceDate = e.now()
	}

	pools := NewSupplyPools()
	for i, line := range lines {
		allocation, err := e.allocateLine(ctx, i, line, pools, opts)
		if err != nil {
			return nil, err
		}

		for _, row := range allocation.Rows {
			row.LineIndex = i
			row.ItemCode = line.ItemCode
			row.UOM = line.UOM
			row.StockUOM = line.StockUOM
			row.ConversionFactor = line.ConversionFactor
			row.Source = line.Source
			row.PickedQuantity = row.StockQuantity
			result.Rows = append(result.Rows, row)
		}

		if allocation.Shortage != nil {
			shortage := *allocation.Shortage
			shortage.LineIndex = i
			result.Shortages = append(result.Shortages, shortage)
		}
	}

	return result, nil
}

// allocateLine dispatches one line to the allocator matching its item's tracking mode
func (e *Engine) allocateLine(
	ctx context.Context,
	index int,
	line entities.RequestedLine,
	pools SupplyPools,
	opts AllocateOptions,
) (LineAllocation, error) {
	mode, err := e.items.TrackingMode(ctx, line.ItemCode)
	if err != nil {
		return LineAllocation{}, fmt.Errorf("failed to resolve tracking mode for %s: %w", line.ItemCode, err)
	}
	if !mode.Valid() {
		return LineAllocation{}, &PreconditionError{
			LineIndex: index,
			ItemCode:  line.ItemCode,
			Err:       fmt.Errorf("%w: %d", ErrUnknownTrackingMode, int(mode)),
		}
	}

	if !line.Quantity.IsPositive() {
		return LineAllocation{}, nil
	}

	switch mode {
	case entities.TrackingSerial:
		serials, err := e.availability.AvailableSerials(ctx, line.ItemCode, SerialLimit(line))
		if err != nil {
			return LineAllocation{}, fmt.Errorf("failed to fetch serials for %s: %w", line.ItemCode, err)
		}
		return e.serial.Allocate(line, serials), nil

	case entities.TrackingBatch:
		batches, err := e.availability.AvailableBatches(ctx, line.ItemCode, opts.ReferenceDate)
		if err != nil {
			return LineAllocation{}, fmt.Errorf("failed to fetch batches for %s: %w", line.ItemCode, err)
		}
		return e.batch.Allocate(line, batches, opts.ReferenceDate), nil

	default:
		pool, ok := pools.Get(line.ItemCode)
		if !ok {
			stock, err := e.availability.AvailableStock(ctx, line.ItemCode, opts.WarehouseScope)
			if err != nil {
				return LineAllocation{}, fmt.Errorf("failed to fetch stock for %s: %w", line.ItemCode, err)
			}
			pool = NewSupplyPool(stock)
			pools.Set(line.ItemCode, pool)
		}

		wholeNumber, err := e.uoms.IsWholeNumberUnit(ctx, line.UOM)
		if err != nil {
			return LineAllocation{}, fmt.Errorf("failed to look up unit %s: %w", line.UOM, err)
		}
		normalizer, err := NewQuantityNormalizer(line.ConversionFactor, wholeNumber)
		if err != nil {
			return LineAllocation{}, &PreconditionError{LineIndex: index, ItemCode: line.ItemCode, Err: err}
		}

		return e.pool.Allocate(line, pool, normalizer), nil
	}
}

func validateLine(index int, line entities.RequestedLine) error {
	if !line.ConversionFactor.IsPositive() {
		return &PreconditionError{
			LineIndex: index,
			ItemCode:  line.ItemCode,
			Err:       fmt.Errorf("%w, got %s", ErrInvalidConversionFactor, line.ConversionFactor),
		}
	}
	if err := line.Validate(); err != nil {
		return &PreconditionError{
			LineIndex: index,
			ItemCode:  line.ItemCode,
			Err:       fmt.Errorf("%w: %v", ErrInvalidLine, err),
		}
	}
	return nil
}
