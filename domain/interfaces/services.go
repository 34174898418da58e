package interfaces

import (
	"context"
	"time"

	"fundledger/domain/entities"

	"github.com/shopspring/decimal"
)

// ConfirmationCommand is a validated request to confirm an inbound wire
type ConfirmationCommand struct {
	TransferID        string
	TeamID            string
	ConfirmedBy       string
	FundsReceivedDate time.Time
	AmountReceived    decimal.Decimal
	BankReference     *string
	ConfirmationNotes *string
	ProofDocumentID   *string
}

// ConfirmationOutcome describes what a confirmation wrote
type ConfirmationOutcome struct {
	Transfer          *entities.Transfer
	Investment        *entities.Investment
	PreviousStatus    entities.InvestmentStatus
	InvestmentUpdated bool
	FundTotals        *entities.FundTotals
	Warnings          []string
}

// AggregateService re-derives fund totals from investments
type AggregateService interface {
	// Recompute sums active investments of a fund and upserts the cached totals
	Recompute(ctx context.Context, fundID string) (*entities.FundTotals, error)
}

// ConfirmationService applies wire confirmations to the ledger
type ConfirmationService interface {
	// CheckConfirmable verifies a transfer exists, belongs to the team and is still open
	CheckConfirmable(ctx context.Context, transferID, teamID string) (*entities.Transfer, error)

	// Apply performs the confirmation. Callers run it inside a single transaction.
	Apply(ctx context.Context, cmd ConfirmationCommand) (*ConfirmationOutcome, error)
}
