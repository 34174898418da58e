package services

import (
	"context"
	"fmt"

	"fundledger/domain/entities"
	"fundledger/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type aggregateService struct {
	totalsRepo interfaces.FundTotalsRepository
}

// NewAggregateService creates a new fund aggregate recomputer
func NewAggregateService(totalsRepo interfaces.FundTotalsRepository) interfaces.AggregateService {
	return &aggregateService{
		totalsRepo: totalsRepo,
	}
}

// Recompute always re-derives the totals with a full sum over active investments.
// It must run in the same transaction as the writes it reflects.
func (s *aggregateService) Recompute(ctx context.Context, fundID string) (*entities.FundTotals, error) {
	totals, err := s.totalsRepo.ComputeFromInvestments(ctx, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute totals for fund %s: %w", fundID, err)
	}

	if err := s.totalsRepo.Upsert(ctx, totals); err != nil {
		return nil, fmt.Errorf("failed to store totals for fund %s: %w", fundID, err)
	}

	log.WithFields(log.Fields{
		"fundId":         fundID,
		"totalCommitted": totals.TotalCommitted.StringFixed(2),
		"totalInbound":   totals.TotalInbound.StringFixed(2),
		"investorCount":  totals.InvestorCount,
	}).Debug("Recomputed fund totals")

	return totals, nil
}
