package entities

import (
	"fmt"
	"strings"
)

// ItemCode represents a unique item identifier
type ItemCode string

// TrackingMode describes how stock units of an item are identified
type TrackingMode int

const (
	TrackingNone TrackingMode = iota
	TrackingSerial
	TrackingBatch
)

// String method for TrackingMode enum
func (m TrackingMode) String() string {
	switch m {
	case TrackingNone:
		return "None"
	case TrackingSerial:
		return "Serial"
	case TrackingBatch:
		return "Batch"
	default:
		return "Unknown"
	}
}

// Valid reports whether m is one of the known tracking modes
func (m TrackingMode) Valid() bool {
	return m == TrackingNone || m == TrackingSerial || m == TrackingBatch
}

// ParseTrackingMode converts a textual tracking mode into a TrackingMode
func ParseTrackingMode(s string) (TrackingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return TrackingNone, nil
	case "serial":
		return TrackingSerial, nil
	case "batch":
		return TrackingBatch, nil
	default:
		return TrackingNone, fmt.Errorf("unknown tracking mode: %s", s)
	}
}

// Item represents item master data relevant to picking
type Item struct {
	ItemCode    ItemCode
	Description string
	StockUOM    string
	HasSerialNo bool
	HasBatchNo  bool
}

// TrackingMode resolves the item's tracking mode. Serial tracking wins over batch tracking.
func (i Item) TrackingMode() TrackingMode {
	if i.HasSerialNo {
		return TrackingSerial
	}
	if i.HasBatchNo {
		return TrackingBatch
	}
	return TrackingNone
}

// UOM represents a unit of measure
type UOM struct {
	Name              string
	MustBeWholeNumber bool
}
