package allocation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/picklist/pkg/domain/entities"
)

func newNormalizer(t *testing.T, cf string, whole bool) QuantityNormalizer {
	t.Helper()
	n, err := NewQuantityNormalizer(dec(cf), whole)
	require.NoError(t, err)
	return n
}

func TestPoolAllocator_FIFOSplitAcrossWarehouses(t *testing.T) {
	pool := NewSupplyPool([]entities.StockRecord{
		stock("X", "W1", "5", 1),
		stock("X", "W2", "3", 2),
	})

	result := PoolAllocator{}.Allocate(line("X", "6"), pool, newNormalizer(t, "1", false))

	wantRows := []entities.AllocationRow{
		{ItemCode: "X", Warehouse: "W1", Quantity: dec("5"), StockQuantity: dec("5")},
		{ItemCode: "X", Warehouse: "W2", Quantity: dec("1"), StockQuantity: dec("1")},
	}
	if diff := cmp.Diff(wantRows, result.Rows, decimalComparer); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, result.Shortage)

	wantPool := []entities.StockRecord{stock("X", "W2", "2", 2)}
	if diff := cmp.Diff(wantPool, pool.Records(), decimalComparer); diff != "" {
		t.Errorf("residual pool mismatch (-want +got):\n%s", diff)
	}
}

func TestPoolAllocator_Shortage(t *testing.T) {
	pool := NewSupplyPool([]entities.StockRecord{stock("X", "W1", "7", 1)})

	result := PoolAllocator{}.Allocate(line("X", "10"), pool, newNormalizer(t, "1", false))

	require.Len(t, result.Rows, 1)
	assert.True(t, result.Rows[0].Quantity.Equal(dec("7")))
	require.NotNil(t, result.Shortage)
	assert.True(t, result.Shortage.ShortQuantity.Equal(dec("3")))
	assert.Equal(t, "Nos", result.Shortage.UOM)
	assert.True(t, pool.Empty())
}

func TestPoolAllocator_ConversionFactor(t *testing.T) {
	// 4 boxes of 12 against 30 + 30 units
	pool := NewSupplyPool([]entities.StockRecord{
		stock("X", "W1", "30", 1),
		stock("X", "W2", "30", 2),
	})
	l := line("X", "4")
	l.UOM = "Box"
	l.ConversionFactor = dec("12")

	result := PoolAllocator{}.Allocate(l, pool, newNormalizer(t, "12", false))

	wantRows := []entities.AllocationRow{
		{ItemCode: "X", Warehouse: "W1", Quantity: dec("2.5"), StockQuantity: dec("30")},
		{ItemCode: "X", Warehouse: "W2", Quantity: dec("1.5"), StockQuantity: dec("18")},
	}
	if diff := cmp.Diff(wantRows, result.Rows, decimalComparer); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, result.Shortage)
	assert.True(t, pool.Total().Equal(dec("12")))
}

func TestPoolAllocator_WholeNumberRounding(t *testing.T) {
	pool := NewSupplyPool([]entities.StockRecord{stock("X", "W1", "7", 1)})
	l := line("X", "3")
	l.UOM = "Box"
	l.ConversionFactor = dec("2.5")

	result := PoolAllocator{}.Allocate(l, pool, newNormalizer(t, "2.5", true))

	wantRows := []entities.AllocationRow{
		{ItemCode: "X", Warehouse: "W1", Quantity: dec("2"), StockQuantity: dec("5")},
	}
	if diff := cmp.Diff(wantRows, result.Rows, decimalComparer); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, result.Shortage)
	assert.True(t, result.Shortage.ShortQuantity.Equal(dec("1")), "short %s", result.Shortage.ShortQuantity)
	assert.Equal(t, "Box", result.Shortage.UOM)

	// the 2 units that cannot make a box stay in the pool
	wantPool := []entities.StockRecord{stock("X", "W1", "2", 1)}
	if diff := cmp.Diff(wantPool, pool.Records(), decimalComparer); diff != "" {
		t.Errorf("residual pool mismatch (-want +got):\n%s", diff)
	}
}

func TestPoolAllocator_WholeNumberResidualKeepsPriority(t *testing.T) {
	pool := NewSupplyPool([]entities.StockRecord{
		stock("X", "W1", "2", 1),
		stock("X", "W2", "10", 2),
		stock("X", "W3", "4", 3),
	})
	l := line("X", "2")
	l.UOM = "Box"
	l.ConversionFactor = dec("2.5")

	result := PoolAllocator{}.Allocate(l, pool, newNormalizer(t, "2.5", true))

	wantRows := []entities.AllocationRow{
		{ItemCode: "X", Warehouse: "W2", Quantity: dec("2"), StockQuantity: dec("5")},
	}
	if diff := cmp.Diff(wantRows, result.Rows, decimalComparer); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, result.Shortage)

	wantPool := []entities.StockRecord{
		stock("X", "W1", "2", 1),
		stock("X", "W2", "5", 2),
		stock("X", "W3", "4", 3),
	}
	if diff := cmp.Diff(wantPool, pool.Records(), decimalComparer); diff != "" {
		t.Errorf("residual pool mismatch (-want +got):\n%s", diff)
	}
}

func TestPoolAllocator_ZeroQuantity(t *testing.T) {
	pool := NewSupplyPool([]entities.StockRecord{stock("X", "W1", "7", 1)})

	result := PoolAllocator{}.Allocate(line("X", "0"), pool, newNormalizer(t, "1", false))

	assert.Empty(t, result.Rows)
	assert.Nil(t, result.Shortage)
	assert.True(t, pool.Total().Equal(dec("7")))
}

func TestPoolAllocator_EmptyPool(t *testing.T) {
	result := PoolAllocator{}.Allocate(line("X", "4"), NewSupplyPool(nil), newNormalizer(t, "1", false))

	assert.Empty(t, result.Rows)
	require.NotNil(t, result.Shortage)
	assert.True(t, result.Shortage.ShortQuantity.Equal(dec("4")))
}
