package allocation

import (
	"errors"
	"fmt"

	"github.com/vsinha/picklist/pkg/domain/entities"
)

var (
	ErrInvalidLine             = errors.New("invalid requested line")
	ErrInvalidConversionFactor = errors.New("conversion factor must be positive")
	ErrUnknownTrackingMode     = errors.New("unknown tracking mode")
	ErrUnknownWarehouse        = errors.New("unknown warehouse")
)

// PreconditionError reports structurally invalid input. It aborts the run.
type PreconditionError struct {
	LineIndex int // -1 when the problem is not tied to a line
	ItemCode  entities.ItemCode
	Err       error
}

func (e *PreconditionError) Error() string {
	if e.LineIndex < 0 {
		return fmt.Sprintf("precondition violated: %v", e.Err)
	}
	return fmt.Sprintf("precondition violated on line %d (%s): %v", e.LineIndex, e.ItemCode, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// IsPrecondition reports whether err carries a PreconditionError
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
