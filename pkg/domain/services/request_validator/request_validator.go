package request_validator

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/domain/repositories"
	"github.com/vsinha/picklist/pkg/domain/services/allocation"
)

// RequestValidator checks requested lines against the item master before allocation
type RequestValidator struct {
	items repositories.ItemRepository
}

// NewRequestValidator creates a new request validator
func NewRequestValidator(items repositories.ItemRepository) *RequestValidator {
	return &RequestValidator{items: items}
}

// LineIssue describes one problem found on a requested line
type LineIssue struct {
	LineIndex int
	ItemCode  entities.ItemCode
	Message   string
}

// ValidationResult contains the normalized lines and every problem found
type ValidationResult struct {
	Lines  []entities.RequestedLine
	Issues []LineIssue
	err    error
}

// IsValid reports whether no issue was found
func (r *ValidationResult) IsValid() bool {
	return len(r.Issues) == 0
}

// Err returns all issues combined into one error, or nil when the request is valid.
// Each issue is an *allocation.PreconditionError.
func (r *ValidationResult) Err() error {
	return r.err
}

// ValidateLines normalizes and validates every line. Missing stock units are filled from the
// item master; a missing conversion factor defaults to 1 when the line is already in the stock
// unit. Lookup failures other than an unknown item are returned as errors.
func (v *RequestValidator) ValidateLines(ctx context.Context, lines []entities.RequestedLine) (*ValidationResult, error) {
	result := &ValidationResult{
		Lines:  make([]entities.RequestedLine, 0, len(lines)),
		Issues: make([]LineIssue, 0),
	}

	for i, line := range lines {
		if string(line.ItemCode) == "" {
			result.addIssue(i, line.ItemCode, "item code cannot be empty")
			result.Lines = append(result.Lines, line)
			continue
		}

		item, err := v.items.GetItem(ctx, line.ItemCode)
		if errors.Is(err, repositories.ErrItemNotFound) {
			result.addIssue(i, line.ItemCode, fmt.Sprintf("item %s not found", line.ItemCode))
			result.Lines = append(result.Lines, line)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up item %s: %w", line.ItemCode, err)
		}

		if line.StockUOM == "" {
			line.StockUOM = item.StockUOM
		} else if item.StockUOM != "" && line.StockUOM != item.StockUOM {
			result.addIssue(i, line.ItemCode,
				fmt.Sprintf("stock unit %s does not match item stock unit %s", line.StockUOM, item.StockUOM))
		}
		if line.UOM == "" {
			line.UOM = line.StockUOM
		}
		if line.ConversionFactor.IsZero() && line.UOM == line.StockUOM {
			line.ConversionFactor = decimal.NewFromInt(1)
		}

		if !line.ConversionFactor.IsPositive() {
			result.addIssue(i, line.ItemCode,
				fmt.Sprintf("conversion factor must be positive, got %s", line.ConversionFactor))
		}
		if line.Quantity.IsNegative() {
			result.addIssue(i, line.ItemCode, fmt.Sprintf("quantity cannot be negative, got %s", line.Quantity))
		}

		result.Lines = append(result.Lines, line)
	}

	return result, nil
}

func (r *ValidationResult) addIssue(index int, code entities.ItemCode, message string) {
	r.Issues = append(r.Issues, LineIssue{LineIndex: index, ItemCode: code, Message: message})
	r.err = multierr.Append(r.err, &allocation.PreconditionError{
		LineIndex: index,
		ItemCode:  code,
		Err:       fmt.Errorf("%w: %s", allocation.ErrInvalidLine, message),
	})
}
