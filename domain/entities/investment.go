package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentStatus represents where an investor commitment sits in the funding lifecycle
type InvestmentStatus string

const (
	InvestmentStatusCommitted       InvestmentStatus = "COMMITTED"
	InvestmentStatusDocsApproved    InvestmentStatus = "DOCS_APPROVED"
	InvestmentStatusPartiallyFunded InvestmentStatus = "PARTIALLY_FUNDED"
	InvestmentStatusFunded          InvestmentStatus = "FUNDED"
	InvestmentStatusCancelled       InvestmentStatus = "CANCELLED"
	InvestmentStatusDeclined        InvestmentStatus = "DECLINED"
	InvestmentStatusWithdrawn       InvestmentStatus = "WITHDRAWN"
)

// InactiveInvestmentStatuses are excluded from fund aggregates
var InactiveInvestmentStatuses = []InvestmentStatus{
	InvestmentStatusCancelled,
	InvestmentStatusDeclined,
	InvestmentStatusWithdrawn,
}

// IsValid returns true if the status is one of the known investment statuses
func (s InvestmentStatus) IsValid() bool {
	switch s {
	case InvestmentStatusCommitted, InvestmentStatusDocsApproved, InvestmentStatusPartiallyFunded,
		InvestmentStatusFunded, InvestmentStatusCancelled, InvestmentStatusDeclined, InvestmentStatusWithdrawn:
		return true
	}
	return false
}

// IsInactive returns true for statuses that no longer count toward fund totals
func (s InvestmentStatus) IsInactive() bool {
	for _, inactive := range InactiveInvestmentStatuses {
		if s == inactive {
			return true
		}
	}
	return false
}

// IsTerminal returns true once the funding state machine can no longer move the investment
func (s InvestmentStatus) IsTerminal() bool {
	return s == InvestmentStatusFunded || s.IsInactive()
}

// CanPromoteToFunded returns true for statuses the funding state machine may promote
func (s InvestmentStatus) CanPromoteToFunded() bool {
	return s == InvestmentStatusCommitted || s == InvestmentStatusDocsApproved
}

// Investment is an investor's commitment of capital to a fund
type Investment struct {
	ID               string           `db:"id"`
	FundID           string           `db:"fund_id"`
	InvestorID       string           `db:"investor_id"`
	CommitmentAmount decimal.Decimal  `db:"commitment_amount"`
	FundedAmount     decimal.Decimal  `db:"funded_amount"`
	Status           InvestmentStatus `db:"status"`
	CreatedAt        time.Time        `db:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at"`
}

// RemainingCommitment returns how much is still owed; negative when over-funded
func (i *Investment) RemainingCommitment() decimal.Decimal {
	return i.CommitmentAmount.Sub(i.FundedAmount)
}

// IsOverFunded returns true when received capital exceeds the commitment
func (i *Investment) IsOverFunded() bool {
	return i.FundedAmount.GreaterThan(i.CommitmentAmount)
}
