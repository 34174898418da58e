package testutil

import (
	"fundledger/domain/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewTestFund builds a USD fund owned by teamID
func NewTestFund(teamID string) *entities.Fund {
	return &entities.Fund{
		ID:       uuid.NewString(),
		TeamID:   teamID,
		Name:     "Test Fund " + uuid.NewString()[:8],
		Currency: "USD",
	}
}

// NewTestInvestment builds a COMMITTED investment with nothing funded yet
func NewTestInvestment(fundID string, commitment string) *entities.Investment {
	return &entities.Investment{
		ID:               uuid.NewString(),
		FundID:           fundID,
		InvestorID:       uuid.NewString(),
		CommitmentAmount: decimal.RequireFromString(commitment),
		FundedAmount:     decimal.Zero,
		Status:           entities.InvestmentStatusCommitted,
	}
}

// NewTestTransfer builds a PENDING transfer against an investment
func NewTestTransfer(investment *entities.Investment, expected string) *entities.Transfer {
	return &entities.Transfer{
		ID:             uuid.NewString(),
		InvestmentID:   investment.ID,
		InvestorID:     investment.InvestorID,
		FundID:         investment.FundID,
		Status:         entities.TransferStatusPending,
		ExpectedAmount: decimal.RequireFromString(expected),
	}
}
