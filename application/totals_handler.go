package application

import (
	"context"
	"fmt"
	"time"

	"fundledger/application/dto"
	"fundledger/domain/apperrors"
	"fundledger/domain/entities"
	"fundledger/domain/events"
	"fundledger/domain/services"
	"fundledger/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// SystemActorID is recorded as the actor for recomputes started by tooling
const SystemActorID = "system"

// TotalsHandler reads and repairs the cached fund aggregates
type TotalsHandler interface {
	// GetFundTotals returns the cached totals of a team's fund
	GetFundTotals(ctx context.Context, teamID, fundID string) (*dto.FundTotalsDTO, error)

	// RecomputeFundTotals rebuilds one fund's totals. An empty teamID skips the ownership check.
	RecomputeFundTotals(ctx context.Context, teamID, actorID, fundID string) (*dto.FundTotalsDTO, error)

	// RecomputeAllFundTotals rebuilds the totals of every fund
	RecomputeAllFundTotals(ctx context.Context, actorID string) ([]*dto.FundTotalsDTO, error)
}

type totalsHandler struct {
	uowFactory UnitOfWorkFactory
	reporter   ErrorReporter
	now        func() time.Time
}

// NewTotalsHandler creates a new TotalsHandler
func NewTotalsHandler(uowFactory UnitOfWorkFactory, reporter ErrorReporter, now func() time.Time) TotalsHandler {
	if now == nil {
		now = time.Now
	}
	return &totalsHandler{
		uowFactory: uowFactory,
		reporter:   reporter,
		now:        now,
	}
}

func (h *totalsHandler) classify(ctx context.Context, err error, fundID string) error {
	return classifyError(ctx, h.reporter, err, log.Fields{"fundId": fundID}, "Fund totals request abandoned by caller")
}

// GetFundTotals falls back to a live sum when the fund has never been recomputed
func (h *totalsHandler) GetFundTotals(ctx context.Context, teamID, fundID string) (*dto.FundTotalsDTO, error) {
	uow := h.uowFactory.CreateForTeam(teamID)
	if err := uow.BeginReadOnly(ctx); err != nil {
		return nil, h.classify(ctx, err, fundID)
	}
	defer uow.Rollback()

	if _, err := loadOwnedFund(ctx, uow.FundRepository().GetByID, teamID, fundID); err != nil {
		return nil, h.classify(ctx, err, fundID)
	}

	totals, err := uow.FundTotalsRepository().Get(ctx, fundID)
	if err != nil {
		return nil, h.classify(ctx, err, fundID)
	}
	if totals == nil {
		totals, err = uow.FundTotalsRepository().ComputeFromInvestments(ctx, fundID)
		if err != nil {
			return nil, h.classify(ctx, err, fundID)
		}
	}

	return dto.NewFundTotalsDTO(totals), nil
}

func (h *totalsHandler) RecomputeFundTotals(ctx context.Context, teamID, actorID, fundID string) (*dto.FundTotalsDTO, error) {
	uow := h.uowFactory.CreateForTeam(teamID)
	if err := uow.Begin(ctx); err != nil {
		return nil, h.classify(ctx, err, fundID)
	}
	defer uow.Rollback()

	// Same lock order as a confirmation, so the sum below cannot miss a concurrent wire
	fund, err := loadOwnedFund(ctx, uow.FundRepository().GetByIDForUpdate, teamID, fundID)
	if err != nil {
		return nil, h.classify(ctx, err, fundID)
	}

	previous, err := uow.FundTotalsRepository().Get(ctx, fundID)
	if err != nil {
		return nil, h.classify(ctx, err, fundID)
	}

	totals, err := services.NewAggregateService(uow.FundTotalsRepository()).Recompute(ctx, fundID)
	if err != nil {
		return nil, h.classify(ctx, err, fundID)
	}

	drifted := totalsDrifted(previous, totals)
	if actorID == "" {
		actorID = SystemActorID
	}

	publish := []events.Event{
		events.FundTotalsRecomputedEvent{
			TeamID:         fund.TeamID,
			FundID:         fund.ID,
			TotalCommitted: totals.TotalCommitted,
			TotalInbound:   totals.TotalInbound,
			Drifted:        drifted,
		},
		events.AdminActionEvent{
			TeamID:       fund.TeamID,
			ActorID:      actorID,
			Action:       events.AuditActionFundTotalsRecomputed,
			ResourceType: "fund",
			ResourceID:   fund.ID,
			Details: map[string]any{
				"totalCommitted": totals.TotalCommitted.StringFixed(2),
				"totalInbound":   totals.TotalInbound.StringFixed(2),
				"investorCount":  totals.InvestorCount,
				"drifted":        drifted,
			},
			OccurredAt: h.now().UTC(),
		},
	}
	for _, event := range publish {
		if err := uow.EventBus().Publish(event); err != nil {
			log.WithFields(log.Fields{
				"fundId":    fund.ID,
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to queue fund totals event")
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, h.classify(ctx, err, fundID)
	}

	observability.GetMetrics().RecordFundTotalsRecomputed(drifted)

	fields := log.Fields{
		"fundId":         fund.ID,
		"totalCommitted": totals.TotalCommitted.StringFixed(2),
		"totalInbound":   totals.TotalInbound.StringFixed(2),
		"actorId":        actorID,
	}
	if drifted && previous != nil {
		fields["previousCommitted"] = previous.TotalCommitted.StringFixed(2)
		fields["previousInbound"] = previous.TotalInbound.StringFixed(2)
		log.WithFields(fields).Warn("Fund totals had drifted and were repaired")
	} else {
		log.WithFields(fields).Info("Fund totals recomputed")
	}

	out := dto.NewFundTotalsDTO(totals)
	out.Drifted = drifted
	return out, nil
}

// RecomputeAllFundTotals stops at the first failing fund
func (h *totalsHandler) RecomputeAllFundTotals(ctx context.Context, actorID string) ([]*dto.FundTotalsDTO, error) {
	fundIDs, err := h.listFundIDs(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.FundTotalsDTO, 0, len(fundIDs))
	for _, fundID := range fundIDs {
		if err := ctx.Err(); err != nil {
			return results, apperrors.FromError(err)
		}

		totals, err := h.RecomputeFundTotals(ctx, "", actorID, fundID)
		if err != nil {
			return results, fmt.Errorf("failed to recompute fund %s: %w", fundID, err)
		}
		results = append(results, totals)
	}

	return results, nil
}

func (h *totalsHandler) listFundIDs(ctx context.Context) ([]string, error) {
	uow := h.uowFactory.CreateForTeam("")
	if err := uow.BeginReadOnly(ctx); err != nil {
		return nil, h.classify(ctx, err, "")
	}
	defer uow.Rollback()

	ids, err := uow.FundRepository().ListIDs(ctx)
	if err != nil {
		return nil, h.classify(ctx, err, "")
	}
	return ids, nil
}

// loadOwnedFund returns NOT_FOUND for a missing fund and FORBIDDEN for another team's
func loadOwnedFund(
	ctx context.Context,
	load func(ctx context.Context, id string) (*entities.Fund, error),
	teamID, fundID string,
) (*entities.Fund, error) {
	fund, err := load(ctx, fundID)
	if err != nil {
		return nil, err
	}
	if fund == nil {
		return nil, apperrors.ErrFundNotFound
	}
	if teamID != "" && !fund.OwnedBy(teamID) {
		return nil, apperrors.ErrForbidden
	}
	return fund, nil
}

func totalsDrifted(previous, current *entities.FundTotals) bool {
	if previous == nil {
		return false
	}
	return !previous.TotalCommitted.Equal(current.TotalCommitted) ||
		!previous.TotalInbound.Equal(current.TotalInbound) ||
		previous.InvestorCount != current.InvestorCount
}
