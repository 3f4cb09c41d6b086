package events

import (
	"time"

	"github.com/vsinha/picklist/pkg/domain/entities"
)

const (
	PickListAllocatedEvent  = "picklist.allocated"
	ShortageIdentifiedEvent = "picklist.shortage"
)

// StreamID returns the event stream of one allocation run
func StreamID(runID string) string {
	return "picklist-" + runID
}

type PickListAllocated struct {
	RunID         string                    `json:"run_id"`
	ReferenceDate time.Time                 `json:"reference_date"`
	Result        entities.AllocationResult `json:"result"`
}

type ShortageIdentified struct {
	RunID    string                  `json:"run_id"`
	Shortage entities.ShortageNotice `json:"shortage"`
}
