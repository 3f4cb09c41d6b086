package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/domain/repositories"
)

type countingItems struct {
	calls int
	items map[entities.ItemCode]entities.Item
}

func (c *countingItems) GetItem(_ context.Context, code entities.ItemCode) (*entities.Item, error) {
	c.calls++
	item, ok := c.items[code]
	if !ok {
		return nil, repositories.ErrItemNotFound
	}
	return &item, nil
}

func (c *countingItems) TrackingMode(ctx context.Context, code entities.ItemCode) (entities.TrackingMode, error) {
	item, err := c.GetItem(ctx, code)
	if err != nil {
		return entities.TrackingNone, err
	}
	return item.TrackingMode(), nil
}

type countingUOMs struct {
	calls int
	err   error
}

func (c *countingUOMs) IsWholeNumberUnit(_ context.Context, uom string) (bool, error) {
	c.calls++
	if c.err != nil {
		return false, c.err
	}
	return uom == "Nos", nil
}

func TestItemRepository_CachesHits(t *testing.T) {
	next := &countingItems{items: map[entities.ItemCode]entities.Item{
		"LAPTOP": {ItemCode: "LAPTOP", HasSerialNo: true},
		"MILK":   {ItemCode: "MILK", HasBatchNo: true},
	}}
	repo, err := NewItemRepository(next, 1)
	require.NoError(t, err)
	ctx := context.Background()

	mode, err := repo.TrackingMode(ctx, "LAPTOP")
	require.NoError(t, err)
	assert.Equal(t, entities.TrackingSerial, mode)

	item, err := repo.GetItem(ctx, "LAPTOP")
	require.NoError(t, err)
	item.HasSerialNo = false
	assert.Equal(t, 1, next.calls)

	mode, _ = repo.TrackingMode(ctx, "LAPTOP")
	assert.Equal(t, entities.TrackingSerial, mode, "cached entry must not be mutated through a returned pointer")

	// size 1: MILK evicts LAPTOP
	_, _ = repo.GetItem(ctx, "MILK")
	_, _ = repo.GetItem(ctx, "LAPTOP")
	assert.Equal(t, 3, next.calls)
	assert.Equal(t, 1, repo.Len())
}

func TestItemRepository_DoesNotCacheMisses(t *testing.T) {
	next := &countingItems{items: map[entities.ItemCode]entities.Item{}}
	repo, err := NewItemRepository(next, 8)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := repo.GetItem(context.Background(), "GHOST")
		assert.ErrorIs(t, err, repositories.ErrItemNotFound)
	}
	assert.Equal(t, 2, next.calls)
	assert.Zero(t, repo.Len())
}

func TestUOMRepository(t *testing.T) {
	next := &countingUOMs{}
	repo, err := NewUOMRepository(next, 8)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		whole, err := repo.IsWholeNumberUnit(ctx, "Nos")
		require.NoError(t, err)
		assert.True(t, whole)
	}
	assert.Equal(t, 1, next.calls)

	failing, _ := NewUOMRepository(&countingUOMs{err: errors.New("db down")}, 8)
	_, err = failing.IsWholeNumberUnit(ctx, "Nos")
	assert.Error(t, err)
}

func TestNewItemRepository_InvalidSize(t *testing.T) {
	_, err := NewItemRepository(&countingItems{}, 0)
	assert.Error(t, err)
}
