package repository

import (
	"context"
	"testing"

	"fundledger/domain/entities"
	"fundledger/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundTotalsRepository_ComputeAndUpsert(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	fund := testutil.NewTestFund("team-a")
	require.NoError(t, NewFundRepository(testDB.DB).Create(ctx, fund))

	investmentRepo := NewInvestmentRepository(testDB.DB)
	seed := []struct {
		commitment string
		funded     string
		status     entities.InvestmentStatus
	}{
		{"250000.00", "249500.00", entities.InvestmentStatusCommitted},
		{"100000.00", "100000.00", entities.InvestmentStatusFunded},
		{"50000.00", "10000.00", entities.InvestmentStatusPartiallyFunded},
		{"75000.00", "5000.00", entities.InvestmentStatusWithdrawn},
		{"20000.00", "0", entities.InvestmentStatusCancelled},
		{"30000.00", "0", entities.InvestmentStatusDeclined},
	}
	for _, s := range seed {
		inv := testutil.NewTestInvestment(fund.ID, s.commitment)
		inv.FundedAmount = decimal.RequireFromString(s.funded)
		inv.Status = s.status
		require.NoError(t, investmentRepo.Create(ctx, inv))
	}

	repo := NewFundTotalsRepository(testDB.DB)

	cached, err := repo.Get(ctx, fund.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)

	totals, err := repo.ComputeFromInvestments(ctx, fund.ID)
	require.NoError(t, err)
	assert.True(t, totals.TotalCommitted.Equal(decimal.RequireFromString("400000")), "committed %s", totals.TotalCommitted)
	assert.True(t, totals.TotalInbound.Equal(decimal.RequireFromString("359500")), "inbound %s", totals.TotalInbound)
	assert.Equal(t, 3, totals.InvestorCount)

	require.NoError(t, repo.Upsert(ctx, totals))
	assert.False(t, totals.RecomputedAt.IsZero())

	// Second upsert overwrites rather than duplicating
	totals.TotalInbound = decimal.RequireFromString("1.00")
	require.NoError(t, repo.Upsert(ctx, totals))

	cached, err = repo.Get(ctx, fund.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.True(t, cached.TotalInbound.Equal(decimal.RequireFromString("1")))
	assert.True(t, cached.TotalCommitted.Equal(decimal.RequireFromString("400000")))
}

func TestFundTotalsRepository_ComputeEmptyFund(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	fund := testutil.NewTestFund("team-a")
	require.NoError(t, NewFundRepository(testDB.DB).Create(ctx, fund))

	totals, err := NewFundTotalsRepository(testDB.DB).ComputeFromInvestments(ctx, fund.ID)
	require.NoError(t, err)
	assert.True(t, totals.TotalCommitted.IsZero())
	assert.True(t, totals.TotalInbound.IsZero())
	assert.Equal(t, 0, totals.InvestorCount)
}
