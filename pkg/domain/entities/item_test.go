package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestItem_TrackingMode(t *testing.T) {
	tests := []struct {
		name     string
		item     Item
		expected TrackingMode
	}{
		{"untracked", Item{ItemCode: "SCREW"}, TrackingNone},
		{"serial", Item{ItemCode: "LAPTOP", HasSerialNo: true}, TrackingSerial},
		{"batch", Item{ItemCode: "SYRUP", HasBatchNo: true}, TrackingBatch},
		{"serial wins over batch", Item{ItemCode: "PUMP", HasSerialNo: true, HasBatchNo: true}, TrackingSerial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.TrackingMode(); got != tt.expected {
				t.Errorf("Expected tracking mode %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestParseTrackingMode(t *testing.T) {
	for input, expected := range map[string]TrackingMode{
		"":       TrackingNone,
		"none":   TrackingNone,
		"Serial": TrackingSerial,
		" batch": TrackingBatch,
	} {
		got, err := ParseTrackingMode(input)
		if err != nil {
			t.Fatalf("Unexpected error parsing %q: %v", input, err)
		}
		if got != expected {
			t.Errorf("Expected %s for %q, got %s", expected, input, got)
		}
	}

	if _, err := ParseTrackingMode("lot"); err == nil {
		t.Error("Expected error for unknown tracking mode")
	}
	if TrackingMode(7).Valid() {
		t.Error("Expected out-of-range tracking mode to be invalid")
	}
}

func TestRequestedLine_Validate(t *testing.T) {
	valid := RequestedLine{
		ItemCode:         "ITEM123",
		Quantity:         decimal.NewFromInt(3),
		UOM:              "Box",
		StockUOM:         "Nos",
		ConversionFactor: decimal.RequireFromString("2.5"),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected valid line, got %v", err)
	}
	if !valid.StockQuantity().Equal(decimal.RequireFromString("7.5")) {
		t.Errorf("Expected stock quantity 7.5, got %s", valid.StockQuantity())
	}

	testCases := []struct {
		name        string
		mutate      func(*RequestedLine)
		expectError string
	}{
		{"empty item code", func(l *RequestedLine) { l.ItemCode = "" }, "item code cannot be empty"},
		{"negative quantity", func(l *RequestedLine) { l.Quantity = decimal.NewFromInt(-1) }, "quantity cannot be negative, got -1"},
		{"zero conversion factor", func(l *RequestedLine) { l.ConversionFactor = decimal.Zero }, "conversion factor must be positive, got 0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			line := valid
			tc.mutate(&line)
			err := line.Validate()
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}
