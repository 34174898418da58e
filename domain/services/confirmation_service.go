package services

import (
	"context"
	"fmt"
	"time"

	"fundledger/domain/apperrors"
	"fundledger/domain/entities"
	"fundledger/domain/events"
	"fundledger/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type confirmationService struct {
	fundRepo       interfaces.FundRepository
	transferRepo   interfaces.TransferRepository
	investmentRepo interfaces.InvestmentRepository
	aggregate      interfaces.AggregateService
	eventPublisher interfaces.EventPublisher
	now            func() time.Time
}

// NewConfirmationService creates the wire confirmation engine. The repositories must share
// one transaction; the publisher is expected to hold events until that transaction commits.
func NewConfirmationService(
	fundRepo interfaces.FundRepository,
	transferRepo interfaces.TransferRepository,
	investmentRepo interfaces.InvestmentRepository,
	aggregate interfaces.AggregateService,
	eventPublisher interfaces.EventPublisher,
	now func() time.Time,
) interfaces.ConfirmationService {
	if now == nil {
		now = time.Now
	}
	return &confirmationService{
		fundRepo:       fundRepo,
		transferRepo:   transferRepo,
		investmentRepo: investmentRepo,
		aggregate:      aggregate,
		eventPublisher: eventPublisher,
		now:            now,
	}
}

// CheckConfirmable runs the business checks without locking anything
func (s *confirmationService) CheckConfirmable(ctx context.Context, transferID, teamID string) (*entities.Transfer, error) {
	transfer, err := s.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	if transfer == nil {
		return nil, apperrors.ErrTransferNotFound
	}

	if _, err := s.authorize(ctx, transfer, teamID, s.fundRepo.GetByID); err != nil {
		return nil, err
	}
	if err := checkTransferOpen(transfer); err != nil {
		return nil, err
	}
	return transfer, nil
}

// Apply confirms the wire. Every step reads and writes through the caller's transaction,
// so a failure at any point leaves the ledger untouched once the caller rolls back.
func (s *confirmationService) Apply(ctx context.Context, cmd interfaces.ConfirmationCommand) (*interfaces.ConfirmationOutcome, error) {
	// Lock the transfer first so concurrent confirmations of the same wire serialize here
	transfer, err := s.transferRepo.GetByIDForUpdate(ctx, cmd.TransferID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock transfer: %w", err)
	}
	if transfer == nil {
		return nil, apperrors.ErrTransferNotFound
	}

	// The fund lock serializes confirmations across the fund's investments, so the
	// aggregate below reads every funded amount committed ahead of this one
	fund, err := s.authorize(ctx, transfer, cmd.TeamID, s.fundRepo.GetByIDForUpdate)
	if err != nil {
		return nil, err
	}
	if err := checkTransferOpen(transfer); err != nil {
		return nil, err
	}

	variance := CalculateVariance(transfer.ExpectedAmount, cmd.AmountReceived, fund.Currency)

	confirmation := &entities.TransferConfirmation{
		TransferID:        transfer.ID,
		ConfirmedBy:       cmd.ConfirmedBy,
		ConfirmedAt:       s.now().UTC(),
		FundsReceivedDate: cmd.FundsReceivedDate,
		AmountReceived:    cmd.AmountReceived,
		AmountVariance:    variance.Amount,
		VarianceNote:      variance.Note,
		BankReference:     cmd.BankReference,
		ConfirmationNotes: cmd.ConfirmationNotes,
		ProofDocumentID:   cmd.ProofDocumentID,
	}

	updated, err := s.transferRepo.MarkCompleted(ctx, confirmation)
	if err != nil {
		return nil, fmt.Errorf("failed to mark transfer completed: %w", err)
	}
	if !updated {
		return nil, apperrors.ErrAlreadyConfirmed
	}

	investment, err := s.investmentRepo.GetByIDForUpdate(ctx, transfer.InvestmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock investment: %w", err)
	}
	if investment == nil {
		return nil, fmt.Errorf("investment %s referenced by transfer %s not found", transfer.InvestmentID, transfer.ID)
	}

	previousStatus := investment.Status
	newFunded := investment.FundedAmount.Add(cmd.AmountReceived)
	transition := NextInvestmentStatus(investment.Status, investment.CommitmentAmount, newFunded)

	if err := s.investmentRepo.UpdateFunding(ctx, investment.ID, newFunded, transition.Status); err != nil {
		return nil, fmt.Errorf("failed to update investment funding: %w", err)
	}
	investment.FundedAmount = newFunded
	investment.Status = transition.Status

	totals, err := s.aggregate.Recompute(ctx, fund.ID)
	if err != nil {
		return nil, err
	}

	applyConfirmation(transfer, confirmation)

	if len(transition.Warnings) > 0 {
		log.WithFields(log.Fields{
			"transferId":   transfer.ID,
			"investmentId": investment.ID,
			"status":       investment.Status,
			"warnings":     transition.Warnings,
		}).Warn("Wire confirmed with funding warnings")
	}

	outcome := &interfaces.ConfirmationOutcome{
		Transfer:          transfer,
		Investment:        investment,
		PreviousStatus:    previousStatus,
		InvestmentUpdated: transition.Changed,
		FundTotals:        totals,
		Warnings:          transition.Warnings,
	}

	s.queueEvents(fund, outcome)

	return outcome, nil
}

type fundLoader func(ctx context.Context, id string) (*entities.Fund, error)

// authorize loads the owning fund and verifies the caller's team owns it
func (s *confirmationService) authorize(ctx context.Context, transfer *entities.Transfer, teamID string, load fundLoader) (*entities.Fund, error) {
	fund, err := load(ctx, transfer.FundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}
	if fund == nil {
		return nil, fmt.Errorf("fund %s referenced by transfer %s not found", transfer.FundID, transfer.ID)
	}
	if !fund.OwnedBy(teamID) {
		return nil, apperrors.ErrForbidden
	}
	return fund, nil
}

func checkTransferOpen(transfer *entities.Transfer) error {
	switch transfer.Status {
	case entities.TransferStatusCompleted:
		return apperrors.ErrAlreadyConfirmed
	case entities.TransferStatusCancelled:
		return apperrors.ErrCancelledTransfer
	case entities.TransferStatusFailed:
		return apperrors.ErrInvalidTransferState
	}
	return nil
}

func applyConfirmation(transfer *entities.Transfer, c *entities.TransferConfirmation) {
	confirmedAt := c.ConfirmedAt
	receivedDate := c.FundsReceivedDate
	confirmedBy := c.ConfirmedBy

	transfer.Status = entities.TransferStatusCompleted
	transfer.AmountReceived = decimal.NewNullDecimal(c.AmountReceived)
	transfer.AmountVariance = decimal.NewNullDecimal(c.AmountVariance)
	transfer.VarianceNote = c.VarianceNote
	transfer.ConfirmedBy = &confirmedBy
	transfer.ConfirmedAt = &confirmedAt
	transfer.FundsReceivedDate = &receivedDate
	transfer.BankReference = c.BankReference
	transfer.ConfirmationNotes = c.ConfirmationNotes
	transfer.ProofDocumentID = c.ProofDocumentID
	transfer.UpdatedAt = confirmedAt
}

// queueEvents hands the post-commit side effects to the publisher.
// Failures here are logged only; the ledger write does not depend on them.
func (s *confirmationService) queueEvents(fund *entities.Fund, outcome *interfaces.ConfirmationOutcome) {
	transfer := outcome.Transfer
	investment := outcome.Investment
	received := transfer.AmountReceived.Decimal
	variance := transfer.AmountVariance.Decimal

	details := map[string]any{
		"transferId":        transfer.ID,
		"investmentId":      investment.ID,
		"fundId":            fund.ID,
		"amountReceived":    received.StringFixed(2),
		"amountVariance":    variance.StringFixed(2),
		"investmentUpdated": outcome.InvestmentUpdated,
		"investmentStatus":  string(investment.Status),
		"fundsReceivedDate": FormatDate(*transfer.FundsReceivedDate),
	}
	if transfer.BankReference != nil {
		details["bankReference"] = *transfer.BankReference
	}
	if transfer.ProofDocumentID != nil {
		details["proofDocumentId"] = *transfer.ProofDocumentID
	}
	if investment.IsOverFunded() {
		details["overFundedBy"] = investment.RemainingCommitment().Neg().StringFixed(2)
	} else {
		details["remainingCommitment"] = investment.RemainingCommitment().StringFixed(2)
	}
	if len(outcome.Warnings) > 0 {
		details["warnings"] = outcome.Warnings
	}

	pending := []events.Event{
		events.AdminActionEvent{
			TeamID:       fund.TeamID,
			ActorID:      *transfer.ConfirmedBy,
			Action:       events.AuditActionWireTransferConfirmed,
			ResourceType: "transfer",
			ResourceID:   transfer.ID,
			Details:      details,
			OccurredAt:   *transfer.ConfirmedAt,
		},
		events.WireConfirmationEmailEvent{
			TeamID:            fund.TeamID,
			FundID:            fund.ID,
			InvestorID:        transfer.InvestorID,
			TransferID:        transfer.ID,
			AmountReceived:    received,
			FundsReceivedDate: FormatDate(*transfer.FundsReceivedDate),
			BankReference:     transfer.BankReference,
			ConfirmationNotes: transfer.ConfirmationNotes,
		},
		events.WireConfirmedAnalyticsEvent{
			Event:          "wire_confirmed",
			FundID:         fund.ID,
			TransferID:     transfer.ID,
			AmountReceived: received,
			AmountVariance: variance,
			Funded:         investment.Status == entities.InvestmentStatusFunded,
		},
		events.WireConfirmedRealtimeEvent{
			Kind:           "WIRE_CONFIRMED",
			FundID:         fund.ID,
			TransferID:     transfer.ID,
			InvestorID:     transfer.InvestorID,
			AmountReceived: received,
		},
	}

	if outcome.InvestmentUpdated && investment.Status == entities.InvestmentStatusFunded {
		pending = append(pending, events.InvestmentFundedEvent{
			TeamID:           fund.TeamID,
			FundID:           fund.ID,
			InvestmentID:     investment.ID,
			InvestorID:       investment.InvestorID,
			CommitmentAmount: investment.CommitmentAmount,
			FundedAmount:     investment.FundedAmount,
			PreviousStatus:   string(outcome.PreviousStatus),
		})
	}

	for _, event := range pending {
		if err := s.eventPublisher.Publish(event); err != nil {
			log.WithFields(log.Fields{
				"eventType":  event.Type(),
				"transferId": transfer.ID,
				"error":      err,
			}).Error("Failed to queue confirmation event")
		}
	}
}
