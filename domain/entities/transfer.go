package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus represents the lifecycle state of an inbound wire
type TransferStatus string

const (
	TransferStatusPending    TransferStatus = "PENDING"
	TransferStatusProcessing TransferStatus = "PROCESSING"
	TransferStatusCompleted  TransferStatus = "COMPLETED"
	TransferStatusFailed     TransferStatus = "FAILED"
	TransferStatusCancelled  TransferStatus = "CANCELLED"
)

// TerminalTransferStatuses can never be left once entered
var TerminalTransferStatuses = []TransferStatus{
	TransferStatusCompleted,
	TransferStatusFailed,
	TransferStatusCancelled,
}

// IsTerminal returns true if the transfer can no longer change
func (s TransferStatus) IsTerminal() bool {
	for _, terminal := range TerminalTransferStatuses {
		if s == terminal {
			return true
		}
	}
	return false
}

// IsValid returns true if the status is one of the known transfer statuses
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferStatusPending, TransferStatusProcessing, TransferStatusCompleted,
		TransferStatusFailed, TransferStatusCancelled:
		return true
	}
	return false
}

// Transfer is an expected or received wire from an investor against an investment
type Transfer struct {
	ID                string              `db:"id"`
	InvestmentID      string              `db:"investment_id"`
	InvestorID        string              `db:"investor_id"`
	FundID            string              `db:"fund_id"`
	Status            TransferStatus      `db:"status"`
	ExpectedAmount    decimal.Decimal     `db:"expected_amount"`
	AmountReceived    decimal.NullDecimal `db:"amount_received"`
	AmountVariance    decimal.NullDecimal `db:"amount_variance"`
	VarianceNote      *string             `db:"variance_note"`
	ConfirmedBy       *string             `db:"confirmed_by"`
	ConfirmedAt       *time.Time          `db:"confirmed_at"`
	FundsReceivedDate *time.Time          `db:"funds_received_date"`
	BankReference     *string             `db:"bank_reference"`
	ConfirmationNotes *string             `db:"confirmation_notes"`
	ProofDocumentID   *string             `db:"proof_document_id"`
	CreatedAt         time.Time           `db:"created_at"`
	UpdatedAt         time.Time           `db:"updated_at"`
}

// IsConfirmed returns true once the wire has been attested as received
func (t *Transfer) IsConfirmed() bool {
	return t.Status == TransferStatusCompleted
}

// TransferConfirmation carries everything written when a wire is confirmed
type TransferConfirmation struct {
	TransferID        string
	ConfirmedBy       string
	ConfirmedAt       time.Time
	FundsReceivedDate time.Time
	AmountReceived    decimal.Decimal
	AmountVariance    decimal.Decimal
	VarianceNote      *string
	BankReference     *string
	ConfirmationNotes *string
	ProofDocumentID   *string
}
