package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vsinha/picklist/pkg/application/dto"
	"github.com/vsinha/picklist/pkg/application/services/shared"
	"github.com/vsinha/picklist/pkg/domain/entities"
)

func sampleResult() *dto.PickListResult {
	one := decimal.NewFromInt(1)
	return &dto.PickListResult{
		RunID:          "run-1",
		ReferenceDate:  dto.Date{Time: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		WarehouseScope: []string{"Stores - A"},
		Rows: []entities.AllocationRow{
			{
				LineIndex: 0, ItemCode: "BOLT", Warehouse: "Stores - A",
				Quantity: decimal.NewFromInt(5), StockQuantity: decimal.NewFromInt(5), PickedQuantity: decimal.NewFromInt(5),
				UOM: "Nos", StockUOM: "Nos", ConversionFactor: one,
				Source: entities.SourceRef{SalesOrder: "SO-1"},
			},
			{
				LineIndex: 1, ItemCode: "LAPTOP", Warehouse: "Stores - A",
				Quantity: decimal.NewFromInt(2), StockQuantity: decimal.NewFromInt(2), PickedQuantity: decimal.NewFromInt(2),
				UOM: "Nos", StockUOM: "Nos", ConversionFactor: one,
				SerialIDs: []string{"SN1", "SN2"},
			},
		},
		Shortages: []entities.ShortageNotice{
			{LineIndex: 0, ItemCode: "BOLT", ShortQuantity: decimal.NewFromInt(2), UOM: "Nos"},
		},
		Coverage: []shared.ItemCoverage{
			{ItemCode: "BOLT", StockUOM: "Nos", Requested: decimal.NewFromInt(7), Allocated: decimal.NewFromInt(5)},
		},
		CoverageRatio: 0.75,
	}
}

func TestGenerate_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(sampleResult(), Config{Format: "text", Stdout: &buf}))

	out := buf.String()
	assert.Contains(t, out, "Pick List run-1")
	assert.Contains(t, out, "Reference Date: 2024-03-01")
	assert.Contains(t, out, "Coverage: 75.0%")
	assert.Contains(t, out, "SN1,SN2")
	assert.Contains(t, out, "2 Nos")
}

func TestGenerate_JSON(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Generate(sampleResult(), Config{Format: "json", Stdout: &buf}))

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "run-1", decoded["run_id"])
		assert.Equal(t, "2024-03-01", decoded["reference_date"])
	})

	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, Generate(sampleResult(), Config{Format: "json", OutputDir: dir}))

		data, err := os.ReadFile(filepath.Join(dir, JSONFile))
		require.NoError(t, err)
		var result dto.PickListResult
		require.NoError(t, json.Unmarshal(data, &result))
		assert.Len(t, result.Rows, 2)
	})
}

func TestGenerate_CSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Generate(sampleResult(), Config{Format: "csv", OutputDir: dir}))

	allocations := readCSV(t, filepath.Join(dir, AllocationsFile))
	require.Len(t, allocations, 3)
	assert.Equal(t, allocationHeader, allocations[0])
	assert.Equal(t, "SO-1", allocations[1][11])
	assert.Equal(t, "SN1\nSN2", allocations[2][9])

	shortages := readCSV(t, filepath.Join(dir, ShortagesFile))
	assert.Equal(t, [][]string{shortageHeader, {"0", "BOLT", "2", "Nos"}}, shortages)
}

func TestGenerate_XLSX(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Generate(sampleResult(), Config{Format: "xlsx", OutputDir: dir}))

	f, err := excelize.OpenFile(filepath.Join(dir, XLSXFile))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{AllocationsSheet, ShortagesSheet}, f.GetSheetList())

	rows, err := f.GetRows(AllocationsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "BOLT", rows[1][1])
	assert.Equal(t, "5", rows[1][3])

	shortages, err := f.GetRows(ShortagesSheet)
	require.NoError(t, err)
	require.Len(t, shortages, 2)
	assert.Equal(t, []string{"0", "BOLT", "2", "Nos"}, shortages[1])
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"unknown format", Config{Format: "pdf"}},
		{"csv without directory", Config{Format: "csv"}},
		{"xlsx without directory", Config{Format: "xlsx"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Generate(sampleResult(), tt.config); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}
