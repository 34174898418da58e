package services

import (
	"fmt"

	"fundledger/domain/entities"

	"github.com/shopspring/decimal"
)

// FundingTransition is the outcome of applying received capital to an investment status
type FundingTransition struct {
	Status   entities.InvestmentStatus
	Changed  bool
	Warnings []string
}

// NextInvestmentStatus decides the investment status after newFunded has been received in total.
// Only COMMITTED and DOCS_APPROVED investments are promoted, and only to FUNDED once the
// commitment is met. Every other status is left as is. Money received against an inactive
// investment is still recorded but produces a warning.
func NextInvestmentStatus(current entities.InvestmentStatus, commitment, newFunded decimal.Decimal) FundingTransition {
	transition := FundingTransition{Status: current}

	if current.IsInactive() {
		transition.Warnings = append(transition.Warnings,
			fmt.Sprintf("Investment is %s; funds were recorded but its status was not changed", current))
	}

	if current.CanPromoteToFunded() && newFunded.GreaterThanOrEqual(commitment) {
		transition.Status = entities.InvestmentStatusFunded
		transition.Changed = true
	}

	if newFunded.GreaterThan(commitment) {
		transition.Warnings = append(transition.Warnings,
			fmt.Sprintf("Investment is over-funded by %s", newFunded.Sub(commitment).StringFixed(2)))
	}

	return transition
}
