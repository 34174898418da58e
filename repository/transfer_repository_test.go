package repository

import (
	"context"
	"testing"
	"time"

	"fundledger/domain/entities"
	"fundledger/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedTransfer inserts a fund, investment and pending transfer
func seedTransfer(t *testing.T, ctx context.Context, q Queryable, teamID, commitment, expected string) (*entities.Fund, *entities.Investment, *entities.Transfer) {
	t.Helper()

	fund := testutil.NewTestFund(teamID)
	require.NoError(t, NewFundRepositoryScoped(q, teamID).Create(ctx, fund))

	investment := testutil.NewTestInvestment(fund.ID, commitment)
	require.NoError(t, NewInvestmentRepositoryForTx(q).Create(ctx, investment))

	transfer := testutil.NewTestTransfer(investment, expected)
	require.NoError(t, NewTransferRepositoryForTx(q).Create(ctx, transfer))

	return fund, investment, transfer
}

func TestTransferRepository_GetByID(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewTransferRepository(testDB.DB)

	t.Run("not found", func(t *testing.T) {
		transfer, err := repo.GetByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, transfer)
	})

	t.Run("found with nullable fields unset", func(t *testing.T) {
		_, _, created := seedTransfer(t, ctx, testDB.DB.Pool, "team-a", "250000.00", "250000.00")

		transfer, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, transfer)

		assert.Equal(t, entities.TransferStatusPending, transfer.Status)
		assert.True(t, transfer.ExpectedAmount.Equal(decimal.RequireFromString("250000")))
		assert.False(t, transfer.AmountReceived.Valid)
		assert.False(t, transfer.AmountVariance.Valid)
		assert.Nil(t, transfer.ConfirmedAt)
		assert.Nil(t, transfer.FundsReceivedDate)
	})
}

func TestTransferRepository_MarkCompleted(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewTransferRepository(testDB.DB)

	_, _, created := seedTransfer(t, ctx, testDB.DB.Pool, "team-a", "250000.00", "250000.00")

	note := "Expected $250,000.00, received $249,500.00"
	ref := "WIRE-42"
	confirmedAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	confirmation := &entities.TransferConfirmation{
		TransferID:        created.ID,
		ConfirmedBy:       "admin-1",
		ConfirmedAt:       confirmedAt,
		FundsReceivedDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		AmountReceived:    decimal.RequireFromString("249500.00"),
		AmountVariance:    decimal.RequireFromString("-500.00"),
		VarianceNote:      &note,
		BankReference:     &ref,
	}

	updated, err := repo.MarkCompleted(ctx, confirmation)
	require.NoError(t, err)
	assert.True(t, updated)

	// The terminal guard refuses a second transition
	updated, err = repo.MarkCompleted(ctx, confirmation)
	require.NoError(t, err)
	assert.False(t, updated)

	transfer, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.TransferStatusCompleted, transfer.Status)
	assert.True(t, transfer.AmountReceived.Decimal.Equal(decimal.RequireFromString("249500")))
	assert.True(t, transfer.AmountVariance.Decimal.Equal(decimal.RequireFromString("-500")))
	require.NotNil(t, transfer.VarianceNote)
	assert.Equal(t, note, *transfer.VarianceNote)
	require.NotNil(t, transfer.ConfirmedAt)
	assert.True(t, transfer.ConfirmedAt.Equal(confirmedAt))
	require.NotNil(t, transfer.FundsReceivedDate)
	assert.Equal(t, "2026-03-09", transfer.FundsReceivedDate.Format("2006-01-02"))
	assert.Nil(t, transfer.ConfirmationNotes)
}

func TestTransferRepository_MarkCompletedSkipsCancelled(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	fund := testutil.NewTestFund("team-a")
	require.NoError(t, NewFundRepository(testDB.DB).Create(ctx, fund))
	investment := testutil.NewTestInvestment(fund.ID, "1000.00")
	require.NoError(t, NewInvestmentRepository(testDB.DB).Create(ctx, investment))
	transfer := testutil.NewTestTransfer(investment, "1000.00")
	transfer.Status = entities.TransferStatusCancelled
	repo := NewTransferRepository(testDB.DB)
	require.NoError(t, repo.Create(ctx, transfer))

	updated, err := repo.MarkCompleted(ctx, &entities.TransferConfirmation{
		TransferID:        transfer.ID,
		ConfirmedBy:       "admin-1",
		ConfirmedAt:       time.Now().UTC(),
		FundsReceivedDate: time.Now().UTC(),
		AmountReceived:    decimal.RequireFromString("1000.00"),
		AmountVariance:    decimal.Zero,
	})
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestTransferRepository_GetByIDForUpdateBlocksSecondLocker(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	_, _, created := seedTransfer(t, ctx, testDB.DB.Pool, "team-a", "1000.00", "1000.00")

	tx1, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)
	defer tx1.Rollback(ctx)

	_, err = NewTransferRepositoryForTx(tx1).GetByIDForUpdate(ctx, created.ID)
	require.NoError(t, err)

	tx2, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)
	defer tx2.Rollback(ctx)

	lockCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()

	_, err = NewTransferRepositoryForTx(tx2).GetByIDForUpdate(lockCtx, created.ID)
	assert.Error(t, err, "second locker should wait on the row lock until its context expires")
}

func TestFundRepository_GetByIDForUpdateBlocksSecondLocker(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	fund, _, _ := seedTransfer(t, ctx, testDB.DB.Pool, "team-a", "1000.00", "1000.00")

	tx1, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)
	defer tx1.Rollback(ctx)

	locked, err := NewFundRepositoryScoped(tx1, "team-a").GetByIDForUpdate(ctx, fund.ID)
	require.NoError(t, err)
	require.NotNil(t, locked)
	assert.Equal(t, "team-a", locked.TeamID)

	tx2, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)
	defer tx2.Rollback(ctx)

	// Plain reads are not blocked by the lock
	read, err := NewFundRepositoryScoped(tx2, "team-a").GetByID(ctx, fund.ID)
	require.NoError(t, err)
	require.NotNil(t, read)

	lockCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()

	_, err = NewFundRepositoryScoped(tx2, "team-a").GetByIDForUpdate(lockCtx, fund.ID)
	assert.Error(t, err, "second locker should wait on the fund row lock until its context expires")

	missing, err := NewFundRepository(testDB.DB).GetByIDForUpdate(ctx, "no-such-fund")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
