package services

import (
	"context"
	"errors"
	"testing"

	"fundledger/domain/entities"
	"fundledger/domain/testhelpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateService_Recompute(t *testing.T) {
	ctx := context.Background()
	mockTotalsRepo := new(testhelpers.MockFundTotalsRepository)

	computed := &entities.FundTotals{
		FundID:         "fund-1",
		TotalCommitted: decimal.RequireFromString("750000.00"),
		TotalInbound:   decimal.RequireFromString("249500.00"),
		InvestorCount:  3,
	}
	mockTotalsRepo.On("ComputeFromInvestments", ctx, "fund-1").Return(computed, nil)
	mockTotalsRepo.On("Upsert", ctx, computed).Return(nil)

	totals, err := NewAggregateService(mockTotalsRepo).Recompute(ctx, "fund-1")
	require.NoError(t, err)
	assert.Same(t, computed, totals)

	mockTotalsRepo.AssertExpectations(t)
}

func TestAggregateService_Recompute_UpsertFails(t *testing.T) {
	ctx := context.Background()
	mockTotalsRepo := new(testhelpers.MockFundTotalsRepository)

	computed := &entities.FundTotals{FundID: "fund-1"}
	mockTotalsRepo.On("ComputeFromInvestments", ctx, "fund-1").Return(computed, nil)
	mockTotalsRepo.On("Upsert", ctx, computed).Return(errors.New("deadlock detected"))

	_, err := NewAggregateService(mockTotalsRepo).Recompute(ctx, "fund-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock detected")
}
