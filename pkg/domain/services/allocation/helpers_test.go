package allocation

import (
	"context"
	"errors"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/vsinha/picklist/pkg/domain/entities"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func line(code entities.ItemCode, qty string) entities.RequestedLine {
	return entities.RequestedLine{
		ItemCode:         code,
		Quantity:         dec(qty),
		UOM:              "Nos",
		StockUOM:         "Nos",
		ConversionFactor: decimal.NewFromInt(1),
	}
}

func stock(code entities.ItemCode, warehouse, qty string, order int64) entities.StockRecord {
	return entities.StockRecord{ItemCode: code, Warehouse: warehouse, Quantity: dec(qty), InsertionOrder: order}
}

type fakeProvider struct {
	stock   map[entities.ItemCode][]entities.StockRecord
	serials map[entities.ItemCode][]entities.SerialRecord
	batches map[entities.ItemCode][]entities.BatchRecord
	err     error

	stockCalls   int
	serialLimits []int
	scopes       [][]string
}

func (f *fakeProvider) AvailableStock(_ context.Context, code entities.ItemCode, scope []string) ([]entities.StockRecord, error) {
	f.stockCalls++
	f.scopes = append(f.scopes, scope)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entities.StockRecord, len(f.stock[code]))
	copy(out, f.stock[code])
	return out, nil
}

func (f *fakeProvider) AvailableSerials(_ context.Context, code entities.ItemCode, limit int) ([]entities.SerialRecord, error) {
	f.serialLimits = append(f.serialLimits, limit)
	if f.err != nil {
		return nil, f.err
	}
	serials := f.serials[code]
	if len(serials) > limit {
		serials = serials[:limit]
	}
	out := make([]entities.SerialRecord, len(serials))
	copy(out, serials)
	return out, nil
}

func (f *fakeProvider) AvailableBatches(_ context.Context, code entities.ItemCode, _ time.Time) ([]entities.BatchRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entities.BatchRecord, len(f.batches[code]))
	copy(out, f.batches[code])
	return out, nil
}

type fakeItems map[entities.ItemCode]entities.TrackingMode

func (f fakeItems) GetItem(_ context.Context, code entities.ItemCode) (*entities.Item, error) {
	mode, ok := f[code]
	if !ok {
		return nil, errors.New("item not found")
	}
	return &entities.Item{
		ItemCode:    code,
		StockUOM:    "Nos",
		HasSerialNo: mode == entities.TrackingSerial,
		HasBatchNo:  mode == entities.TrackingBatch,
	}, nil
}

func (f fakeItems) TrackingMode(_ context.Context, code entities.ItemCode) (entities.TrackingMode, error) {
	mode, ok := f[code]
	if !ok {
		return entities.TrackingNone, errors.New("item not found")
	}
	return mode, nil
}

type fakeUOMs map[string]bool

func (f fakeUOMs) IsWholeNumberUnit(_ context.Context, uom string) (bool, error) {
	return f[uom], nil
}
