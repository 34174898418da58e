package dto

import (
	"time"

	"fundledger/domain/entities"
)

// TransferDTO is the full read model of a transfer
type TransferDTO struct {
	ID                string     `json:"id"`
	InvestmentID      string     `json:"investmentId"`
	InvestorID        string     `json:"investorId"`
	FundID            string     `json:"fundId"`
	Status            string     `json:"status"`
	ExpectedAmount    string     `json:"expectedAmount"`
	AmountReceived    *string    `json:"amountReceived"`
	AmountVariance    *string    `json:"amountVariance"`
	VarianceNote      *string    `json:"varianceNote"`
	ConfirmedBy       *string    `json:"confirmedBy"`
	ConfirmedAt       *time.Time `json:"confirmedAt"`
	FundsReceivedDate *string    `json:"fundsReceivedDate"`
	BankReference     *string    `json:"bankReference"`
	ConfirmationNotes *string    `json:"confirmationNotes"`
	ProofDocumentID   *string    `json:"proofDocumentId"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// NewTransferDTO converts a transfer entity for transport
func NewTransferDTO(t *entities.Transfer) *TransferDTO {
	out := &TransferDTO{
		ID:                t.ID,
		InvestmentID:      t.InvestmentID,
		InvestorID:        t.InvestorID,
		FundID:            t.FundID,
		Status:            string(t.Status),
		ExpectedAmount:    t.ExpectedAmount.StringFixed(2),
		VarianceNote:      t.VarianceNote,
		ConfirmedBy:       t.ConfirmedBy,
		ConfirmedAt:       t.ConfirmedAt,
		BankReference:     t.BankReference,
		ConfirmationNotes: t.ConfirmationNotes,
		ProofDocumentID:   t.ProofDocumentID,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
	if t.AmountReceived.Valid {
		received := t.AmountReceived.Decimal.StringFixed(2)
		out.AmountReceived = &received
	}
	if t.AmountVariance.Valid {
		variance := t.AmountVariance.Decimal.StringFixed(2)
		out.AmountVariance = &variance
	}
	if t.FundsReceivedDate != nil {
		date := t.FundsReceivedDate.Format("2006-01-02")
		out.FundsReceivedDate = &date
	}
	return out
}

// FundTotalsDTO is the read model of a fund aggregate
type FundTotalsDTO struct {
	FundID         string    `json:"fundId"`
	TotalCommitted string    `json:"totalCommitted"`
	TotalInbound   string    `json:"totalInbound"`
	Outstanding    string    `json:"outstanding"`
	InvestorCount  int       `json:"investorCount"`
	RecomputedAt   time.Time `json:"recomputedAt"`
	Drifted        bool      `json:"drifted,omitempty"`
}

// NewFundTotalsDTO converts fund totals for transport
func NewFundTotalsDTO(t *entities.FundTotals) *FundTotalsDTO {
	return &FundTotalsDTO{
		FundID:         t.FundID,
		TotalCommitted: t.TotalCommitted.StringFixed(2),
		TotalInbound:   t.TotalInbound.StringFixed(2),
		Outstanding:    t.Outstanding().StringFixed(2),
		InvestorCount:  t.InvestorCount,
		RecomputedAt:   t.RecomputedAt,
	}
}
