package allocation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/vsinha/picklist/pkg/domain/entities"
)

func TestSupplyPool(t *testing.T) {
	pool := NewSupplyPool([]entities.StockRecord{
		stock("X", "W1", "5", 1),
		stock("X", "W0", "0", 2),
		stock("X", "W2", "3", 3),
	})

	assert.Equal(t, 2, pool.Len(), "records without stock are dropped")
	assert.True(t, pool.Total().Equal(dec("8")))

	first, ok := pool.PopFront()
	assert.True(t, ok)
	assert.Equal(t, "W1", first.Warehouse)

	first.Quantity = dec("1")
	pool.PushFront(stock("X", "WA", "2", 0), first)

	want := []entities.StockRecord{
		stock("X", "WA", "2", 0),
		stock("X", "W1", "1", 1),
		stock("X", "W2", "3", 3),
	}
	if diff := cmp.Diff(want, pool.Records(), decimalComparer); diff != "" {
		t.Errorf("pool records mismatch (-want +got):\n%s", diff)
	}

	records := pool.Records()
	records[0].Warehouse = "changed"
	assert.Equal(t, "WA", pool.Records()[0].Warehouse, "Records returns a copy")

	for !pool.Empty() {
		pool.PopFront()
	}
	_, ok = pool.PopFront()
	assert.False(t, ok)
}

func TestSupplyPools(t *testing.T) {
	pools := NewSupplyPools()
	_, ok := pools.Get("X")
	assert.False(t, ok)

	pool := NewSupplyPool(nil)
	pools.Set("X", pool)
	got, ok := pools.Get("X")
	assert.True(t, ok)
	assert.Same(t, pool, got)
}
