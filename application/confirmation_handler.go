package application

import (
	"context"
	"time"

	"fundledger/application/dto"
	"fundledger/domain/apperrors"
	"fundledger/domain/entities"
	"fundledger/domain/interfaces"
	"fundledger/domain/services"
	"fundledger/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// ConfirmationHandler confirms inbound wires and serves transfer reads
type ConfirmationHandler interface {
	// ConfirmTransfer validates, prechecks and applies a confirmation in one transaction
	ConfirmTransfer(ctx context.Context, req dto.ConfirmTransferRequest) (*dto.ConfirmTransferResult, error)

	// GetTransfer returns a transfer owned by the team
	GetTransfer(ctx context.Context, teamID, transferID string) (*dto.TransferDTO, error)
}

type confirmationHandler struct {
	uowFactory UnitOfWorkFactory
	validator  *services.ConfirmationValidator
	reporter   ErrorReporter
	now        func() time.Time
}

// NewConfirmationHandler creates a new ConfirmationHandler
func NewConfirmationHandler(
	uowFactory UnitOfWorkFactory,
	validator *services.ConfirmationValidator,
	reporter ErrorReporter,
	now func() time.Time,
) ConfirmationHandler {
	if now == nil {
		now = time.Now
	}
	return &confirmationHandler{
		uowFactory: uowFactory,
		validator:  validator,
		reporter:   reporter,
		now:        now,
	}
}

// ConfirmTransfer returns business rejections as AppErrors. Any other failure is reported
// and surfaced as INTERNAL_ERROR with nothing written.
func (h *confirmationHandler) ConfirmTransfer(ctx context.Context, req dto.ConfirmTransferRequest) (*dto.ConfirmTransferResult, error) {
	start := time.Now()

	result, err := h.confirm(ctx, req)
	if err != nil {
		err = h.classify(ctx, err, log.Fields{
			"transferId": req.TransferID,
			"teamId":     req.TeamID,
			"actorId":    req.ActorID,
		})
		observability.GetMetrics().RecordConfirmation(apperrors.FromError(err).Code, time.Since(start))
		return nil, err
	}

	observability.GetMetrics().RecordConfirmation(observability.OutcomeConfirmed, time.Since(start))
	return result, nil
}

func (h *confirmationHandler) confirm(ctx context.Context, req dto.ConfirmTransferRequest) (*dto.ConfirmTransferResult, error) {
	cmd, err := h.validator.Validate(services.ConfirmationInput{
		TransferID:        req.TransferID,
		TeamID:            req.TeamID,
		ConfirmedBy:       req.ActorID,
		FundsReceivedDate: req.FundsReceivedDate,
		AmountReceived:    req.AmountReceived,
		BankReference:     req.BankReference,
		ConfirmationNotes: req.ConfirmationNotes,
		ProofDocumentID:   req.ProofDocumentID,
	})
	if err != nil {
		return nil, err
	}

	// Reject obvious failures without taking row locks
	if err := h.precheck(ctx, cmd); err != nil {
		return nil, err
	}

	outcome, err := h.apply(ctx, cmd)
	if err != nil {
		return nil, err
	}

	h.recordOutcome(outcome)

	log.WithFields(log.Fields{
		"transferId":        outcome.Transfer.ID,
		"investmentId":      outcome.Investment.ID,
		"amountReceived":    cmd.AmountReceived.StringFixed(2),
		"amountVariance":    outcome.Transfer.AmountVariance.Decimal.StringFixed(2),
		"investmentUpdated": outcome.InvestmentUpdated,
		"confirmedBy":       cmd.ConfirmedBy,
	}).Info("Wire transfer confirmed")

	return dto.NewConfirmTransferResult(outcome), nil
}

func (h *confirmationHandler) precheck(ctx context.Context, cmd *interfaces.ConfirmationCommand) error {
	uow := h.uowFactory.CreateForTeam(cmd.TeamID)
	if err := uow.BeginReadOnly(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	_, err := h.engine(uow).CheckConfirmable(ctx, cmd.TransferID, cmd.TeamID)
	return err
}

func (h *confirmationHandler) apply(ctx context.Context, cmd *interfaces.ConfirmationCommand) (*interfaces.ConfirmationOutcome, error) {
	uow := h.uowFactory.CreateForTeam(cmd.TeamID)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	outcome, err := h.engine(uow).Apply(ctx, *cmd)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return outcome, nil
}

func (h *confirmationHandler) engine(uow UnitOfWork) interfaces.ConfirmationService {
	return services.NewConfirmationService(
		uow.FundRepository(),
		uow.TransferRepository(),
		uow.InvestmentRepository(),
		services.NewAggregateService(uow.FundTotalsRepository()),
		uow.EventBus(),
		h.now,
	)
}

func (h *confirmationHandler) recordOutcome(outcome *interfaces.ConfirmationOutcome) {
	metrics := observability.GetMetrics()

	variance := services.Variance{Amount: outcome.Transfer.AmountVariance.Decimal}
	switch {
	case variance.IsZero():
	case variance.Shortfall():
		metrics.RecordVariance(observability.DirectionShortfall)
	default:
		metrics.RecordVariance(observability.DirectionOverage)
	}

	if outcome.InvestmentUpdated && outcome.Investment.Status == entities.InvestmentStatusFunded {
		metrics.RecordInvestmentFunded()
	}
}

func (h *confirmationHandler) classify(ctx context.Context, err error, fields log.Fields) error {
	return classifyError(ctx, h.reporter, err, fields, "Confirmation abandoned by caller")
}

// GetTransfer reads a transfer, distinguishing a missing transfer from another team's
func (h *confirmationHandler) GetTransfer(ctx context.Context, teamID, transferID string) (*dto.TransferDTO, error) {
	uow := h.uowFactory.CreateForTeam(teamID)
	if err := uow.BeginReadOnly(ctx); err != nil {
		return nil, h.classify(ctx, err, log.Fields{"transferId": transferID})
	}
	defer uow.Rollback()

	transfer, err := uow.TransferRepository().GetByID(ctx, transferID)
	if err != nil {
		return nil, h.classify(ctx, err, log.Fields{"transferId": transferID})
	}
	if transfer == nil {
		return nil, apperrors.ErrTransferNotFound
	}

	fund, err := uow.FundRepository().GetByID(ctx, transfer.FundID)
	if err != nil {
		return nil, h.classify(ctx, err, log.Fields{"transferId": transferID})
	}
	if !fund.OwnedBy(teamID) {
		return nil, apperrors.ErrForbidden
	}

	return dto.NewTransferDTO(transfer), nil
}
