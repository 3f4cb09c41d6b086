package allocation

import "github.com/shopspring/decimal"

// ToStockQty converts a transaction-unit quantity into stock units
func ToStockQty(transactionQty, conversionFactor decimal.Decimal) decimal.Decimal {
	return transactionQty.Mul(conversionFactor)
}

// ToTransactionQty converts a stock-unit quantity into transaction units.
// conversionFactor must be positive.
func ToTransactionQty(stockQty, conversionFactor decimal.Decimal) decimal.Decimal {
	return stockQty.Div(conversionFactor)
}

// QuantityNormalizer converts between the transaction unit of a line and the stock unit,
// honouring whole-number units.
type QuantityNormalizer struct {
	ConversionFactor decimal.Decimal
	WholeNumber      bool
}

// NewQuantityNormalizer creates a normalizer, rejecting non-positive conversion factors
func NewQuantityNormalizer(conversionFactor decimal.Decimal, wholeNumber bool) (QuantityNormalizer, error) {
	if !conversionFactor.IsPositive() {
		return QuantityNormalizer{}, ErrInvalidConversionFactor
	}
	return QuantityNormalizer{ConversionFactor: conversionFactor, WholeNumber: wholeNumber}, nil
}

// ToStockQty converts a transaction-unit quantity into stock units
func (n QuantityNormalizer) ToStockQty(transactionQty decimal.Decimal) decimal.Decimal {
	return ToStockQty(transactionQty, n.ConversionFactor)
}

// ToTransactionQty converts a stock-unit quantity into transaction units
func (n QuantityNormalizer) ToTransactionQty(stockQty decimal.Decimal) decimal.Decimal {
	return ToTransactionQty(stockQty, n.ConversionFactor)
}

// Normalize converts stockQty into transaction units and returns it together with the
// stock quantity actually consumed. For whole-number units the transaction quantity is
// floored first and the consumed stock is derived from the floored value, so the two
// never drift apart.
func (n QuantityNormalizer) Normalize(stockQty decimal.Decimal) (transactionQty, consumedStock decimal.Decimal) {
	transactionQty = n.ToTransactionQty(stockQty)
	if !n.WholeNumber {
		return transactionQty, stockQty
	}
	transactionQty = transactionQty.Floor()
	return transactionQty, n.ToStockQty(transactionQty)
}
