package dto

import (
	"time"

	"fundledger/domain/entities"
	"fundledger/domain/interfaces"
)

// ConfirmTransferRequest carries raw confirmation input from a transport
type ConfirmTransferRequest struct {
	TransferID        string
	TeamID            string
	ActorID           string
	FundsReceivedDate string
	AmountReceived    string
	BankReference     *string
	ConfirmationNotes *string
	ProofDocumentID   *string
}

// ConfirmedTransferDTO is the transfer summary returned after a confirmation
type ConfirmedTransferDTO struct {
	ID                string     `json:"id"`
	Status            string     `json:"status"`
	ConfirmedAt       *time.Time `json:"confirmedAt"`
	FundsReceivedDate *string    `json:"fundsReceivedDate"`
	AmountVariance    *string    `json:"amountVariance"`
}

// ConfirmTransferResult is the outcome of a successful confirmation
type ConfirmTransferResult struct {
	Transfer          ConfirmedTransferDTO
	InvestmentUpdated bool
	InvestmentStatus  string
	Warnings          []string
}

// NewConfirmTransferResult builds the result from the engine outcome
func NewConfirmTransferResult(outcome *interfaces.ConfirmationOutcome) *ConfirmTransferResult {
	return &ConfirmTransferResult{
		Transfer:          NewConfirmedTransferDTO(outcome.Transfer),
		InvestmentUpdated: outcome.InvestmentUpdated,
		InvestmentStatus:  string(outcome.Investment.Status),
		Warnings:          outcome.Warnings,
	}
}

// NewConfirmedTransferDTO summarizes a transfer's confirmation fields
func NewConfirmedTransferDTO(t *entities.Transfer) ConfirmedTransferDTO {
	summary := ConfirmedTransferDTO{
		ID:          t.ID,
		Status:      string(t.Status),
		ConfirmedAt: t.ConfirmedAt,
	}
	if t.FundsReceivedDate != nil {
		date := t.FundsReceivedDate.Format("2006-01-02")
		summary.FundsReceivedDate = &date
	}
	if t.AmountVariance.Valid {
		variance := t.AmountVariance.Decimal.StringFixed(2)
		summary.AmountVariance = &variance
	}
	return summary
}
