package request_validator

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/domain/repositories"
	"github.com/vsinha/picklist/pkg/domain/services/allocation"
)

type stubItems struct {
	items map[entities.ItemCode]entities.Item
	err   error
}

func (s stubItems) GetItem(_ context.Context, code entities.ItemCode) (*entities.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	item, ok := s.items[code]
	if !ok {
		return nil, repositories.ErrItemNotFound
	}
	return &item, nil
}

func (s stubItems) TrackingMode(ctx context.Context, code entities.ItemCode) (entities.TrackingMode, error) {
	item, err := s.GetItem(ctx, code)
	if err != nil {
		return entities.TrackingNone, err
	}
	return item.TrackingMode(), nil
}

func newValidator() *RequestValidator {
	return NewRequestValidator(stubItems{items: map[entities.ItemCode]entities.Item{
		"BOLT":   {ItemCode: "BOLT", StockUOM: "Nos"},
		"SCREWS": {ItemCode: "SCREWS", StockUOM: "Nos"},
	}})
}

func TestValidateLines_FillsDefaults(t *testing.T) {
	result, err := newValidator().ValidateLines(context.Background(), []entities.RequestedLine{
		{ItemCode: "BOLT", Quantity: decimal.NewFromInt(4)},
		{ItemCode: "SCREWS", Quantity: decimal.NewFromInt(2), UOM: "Box", ConversionFactor: decimal.NewFromInt(12)},
	})
	require.NoError(t, err)
	require.True(t, result.IsValid())
	require.NoError(t, result.Err())

	require.Len(t, result.Lines, 2)
	assert.Equal(t, "Nos", result.Lines[0].UOM)
	assert.Equal(t, "Nos", result.Lines[0].StockUOM)
	assert.True(t, result.Lines[0].ConversionFactor.Equal(decimal.NewFromInt(1)))

	assert.Equal(t, "Box", result.Lines[1].UOM)
	assert.Equal(t, "Nos", result.Lines[1].StockUOM)
	assert.True(t, result.Lines[1].ConversionFactor.Equal(decimal.NewFromInt(12)))
}

func TestValidateLines_CollectsEveryIssue(t *testing.T) {
	result, err := newValidator().ValidateLines(context.Background(), []entities.RequestedLine{
		{ItemCode: "GHOST", Quantity: decimal.NewFromInt(1)},
		{ItemCode: "BOLT", Quantity: decimal.NewFromInt(-1)},
		{ItemCode: "SCREWS", Quantity: decimal.NewFromInt(1), UOM: "Box"},
		{ItemCode: "BOLT", Quantity: decimal.NewFromInt(1), StockUOM: "Kg"},
		{ItemCode: "", Quantity: decimal.NewFromInt(1)},
	})
	require.NoError(t, err)
	assert.False(t, result.IsValid())

	indexes := make([]int, 0, len(result.Issues))
	for _, issue := range result.Issues {
		indexes = append(indexes, issue.LineIndex)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, indexes)

	combined := result.Err()
	require.Error(t, combined)
	assert.Len(t, multierr.Errors(combined), 5)
	assert.True(t, allocation.IsPrecondition(combined))
	assert.ErrorIs(t, combined, allocation.ErrInvalidLine)
}

func TestValidateLines_LookupFailure(t *testing.T) {
	boom := errors.New("connection reset")
	v := NewRequestValidator(stubItems{err: boom})

	_, err := v.ValidateLines(context.Background(), []entities.RequestedLine{
		{ItemCode: "BOLT", Quantity: decimal.NewFromInt(1)},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
