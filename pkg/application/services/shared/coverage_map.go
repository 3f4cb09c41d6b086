package shared

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/picklist/pkg/domain/entities"
)

// ItemCoverage holds requested and allocated totals for one item, in its stock unit
type ItemCoverage struct {
	ItemCode  entities.ItemCode `json:"item_code"`
	StockUOM  string            `json:"stock_uom"`
	Requested decimal.Decimal   `json:"requested_stock_qty"`
	Allocated decimal.Decimal   `json:"allocated_stock_qty"`
}

// Short returns the unallocated stock quantity, never negative
func (c *ItemCoverage) Short() decimal.Decimal {
	short := c.Requested.Sub(c.Allocated)
	if short.IsNegative() {
		return decimal.Zero
	}
	return short
}

// Covered reports whether the allocation meets the request
func (c *ItemCoverage) Covered() bool {
	return c.Allocated.GreaterThanOrEqual(c.Requested)
}

// CoverageMap manages coverage by item code
type CoverageMap map[entities.ItemCode]*ItemCoverage

// NewCoverageMap creates a new empty coverage map
func NewCoverageMap() CoverageMap {
	return make(CoverageMap)
}

// NewCoverageMapFromResult builds coverage from the lines of a run and their allocation
func NewCoverageMapFromResult(lines []entities.RequestedLine, result *entities.AllocationResult) CoverageMap {
	cm := make(CoverageMap)
	for _, line := range lines {
		c := cm.entry(line.ItemCode, line.StockUOM)
		c.Requested = c.Requested.Add(line.StockQuantity())
	}
	if result == nil {
		return cm
	}
	for _, row := range result.Rows {
		c := cm.entry(row.ItemCode, row.StockUOM)
		c.Allocated = c.Allocated.Add(row.StockQuantity)
	}
	return cm
}

func (cm CoverageMap) entry(code entities.ItemCode, stockUOM string) *ItemCoverage {
	c, ok := cm[code]
	if !ok {
		c = &ItemCoverage{ItemCode: code, StockUOM: stockUOM}
		cm[code] = c
	}
	return c
}

// Get retrieves coverage for an item
func (cm CoverageMap) Get(code entities.ItemCode) *ItemCoverage {
	return cm[code]
}

// Has checks if coverage exists for an item
func (cm CoverageMap) Has(code entities.ItemCode) bool {
	_, exists := cm[code]
	return exists
}

// Size returns the number of items tracked
func (cm CoverageMap) Size() int {
	return len(cm)
}

// Items returns coverage entries sorted by item code
func (cm CoverageMap) Items() []ItemCoverage {
	out := make([]ItemCoverage, 0, len(cm))
	for _, c := range cm {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemCode < out[j].ItemCode })
	return out
}

// GetTotalAllocated returns the allocated stock quantity across all items
func (cm CoverageMap) GetTotalAllocated() decimal.Decimal {
	total := decimal.Zero
	for _, c := range cm {
		total = total.Add(c.Allocated)
	}
	return total
}

// GetTotalRequested returns the requested stock quantity across all items
func (cm CoverageMap) GetTotalRequested() decimal.Decimal {
	total := decimal.Zero
	for _, c := range cm {
		total = total.Add(c.Requested)
	}
	return total
}

// GetCoverageRatio returns the overall coverage ratio (0.0 to 1.0).
// Quantities of different stock units are summed as plain numbers.
func (cm CoverageMap) GetCoverageRatio() float64 {
	requested := cm.GetTotalRequested()
	if !requested.IsPositive() {
		return 0.0
	}
	ratio, _ := decimal.Min(cm.GetTotalAllocated().Div(requested), decimal.NewFromInt(1)).Float64()
	return ratio
}

// String returns a string representation of the coverage map for debugging
func (cm CoverageMap) String() string {
	if len(cm) == 0 {
		return "CoverageMap{empty}"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CoverageMap{%d entries:\n", len(cm))
	for _, c := range cm.Items() {
		fmt.Fprintf(&b, "  %s: requested=%s %s, allocated=%s, short=%s\n",
			c.ItemCode, c.Requested, c.StockUOM, c.Allocated, c.Short())
	}
	b.WriteString("}")
	return b.String()
}
