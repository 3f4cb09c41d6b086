package dto

import (
	"time"

	"github.com/vsinha/picklist/pkg/application/services/shared"
	"github.com/vsinha/picklist/pkg/domain/entities"
)

// AllocateRequest is the input of one pick list run
type AllocateRequest struct {
	Lines           []entities.RequestedLine `json:"lines"`
	WarehouseScope  []string                 `json:"warehouses,omitempty"`
	ParentWarehouse string                   `json:"parent_warehouse,omitempty"`
	ReferenceDate   *Date                    `json:"reference_date,omitempty"`
}

// PickListResult contains the complete output of a pick list run
type PickListResult struct {
	RunID          string                    `json:"run_id"`
	ReferenceDate  Date                      `json:"reference_date"`
	WarehouseScope []string                  `json:"warehouses,omitempty"`
	Rows           []entities.AllocationRow  `json:"rows"`
	Shortages      []entities.ShortageNotice `json:"shortages"`
	Coverage       []shared.ItemCoverage     `json:"coverage"`
	CoverageRatio  float64                   `json:"coverage_ratio"`
	Duration       time.Duration             `json:"-"`
}

// Date is a calendar day encoded as YYYY-MM-DD
type Date struct {
	time.Time
}

const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD day
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return &time.ParseError{Layout: DateLayout, Value: s, Message: ": date must be a string"}
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
