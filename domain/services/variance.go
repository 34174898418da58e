package services

import (
	"fmt"

	"fundledger/domain/utils"

	"github.com/shopspring/decimal"
)

// Variance is the difference between what a wire was expected to carry and what arrived
type Variance struct {
	Amount decimal.Decimal
	Note   *string
}

// IsZero returns true when the wire matched its expected amount exactly
func (v Variance) IsZero() bool {
	return v.Amount.IsZero()
}

// Shortfall returns true when less arrived than was expected
func (v Variance) Shortfall() bool {
	return v.Amount.IsNegative()
}

// CalculateVariance returns received - expected and a human readable note when they differ.
// A variance never blocks a confirmation; it is recorded for reconciliation.
func CalculateVariance(expected, received decimal.Decimal, currency string) Variance {
	amount := received.Sub(expected)
	if amount.IsZero() {
		return Variance{Amount: decimal.Zero}
	}

	note := fmt.Sprintf("Expected %s, received %s",
		utils.FormatMoney(expected, currency),
		utils.FormatMoney(received, currency),
	)
	return Variance{Amount: amount, Note: &note}
}
