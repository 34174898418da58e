package application_test

import (
	"context"
	"testing"
	"time"

	"fundledger/application"
	"fundledger/config"
	"fundledger/database"
	"fundledger/domain/entities"
	"fundledger/domain/services"
	"fundledger/infrastructure"
	"fundledger/repository"
	"fundledger/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time {
	return time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
}

// ledgerHarness wires the application against a real database and an in-memory bus
type ledgerHarness struct {
	db            *database.DB
	bus           *infrastructure.InMemoryMessagePublisher
	uowFactory    *infrastructure.UnitOfWorkFactory
	confirmations application.ConfirmationHandler
	totals        application.TotalsHandler
}

func newLedgerHarness(t *testing.T) *ledgerHarness {
	t.Helper()

	testDB := testutil.SetupTestDatabase(t)

	bus := &infrastructure.InMemoryMessagePublisher{}
	publisher := infrastructure.NewNATSEventPublisher(bus, infrastructure.NewEventSubjectMapper())
	uowFactory := infrastructure.NewUnitOfWorkFactory(testDB.DB, publisher)
	application.RegisterApplicationSubscriptions(uowFactory, uowFactory)

	validator := services.NewConfirmationValidator(services.ConfirmationLimits{
		MaxAmountReceived:       config.DefaultMaxAmountReceived,
		FutureDateToleranceDays: 7,
	}, fixedNow)

	return &ledgerHarness{
		db:            testDB.DB,
		bus:           bus,
		uowFactory:    uowFactory,
		confirmations: application.NewConfirmationHandler(uowFactory, validator, infrastructure.NewLogErrorReporter(), fixedNow),
		totals:        application.NewTotalsHandler(uowFactory, infrastructure.NewLogErrorReporter(), fixedNow),
	}
}

type seededLedger struct {
	fund       *entities.Fund
	investment *entities.Investment
	transfer   *entities.Transfer
}

// seed creates a fund with one COMMITTED investment and a PENDING transfer against it
func (h *ledgerHarness) seed(t *testing.T, teamID, commitment, expected string) seededLedger {
	t.Helper()
	ctx := context.Background()

	fund := testutil.NewTestFund(teamID)
	require.NoError(t, repository.NewFundRepository(h.db).Create(ctx, fund))

	investment := testutil.NewTestInvestment(fund.ID, commitment)
	require.NoError(t, repository.NewInvestmentRepository(h.db).Create(ctx, investment))

	transfer := testutil.NewTestTransfer(investment, expected)
	require.NoError(t, repository.NewTransferRepository(h.db).Create(ctx, transfer))

	return seededLedger{fund: fund, investment: investment, transfer: transfer}
}

// addTransfer creates another PENDING transfer for an existing investment
func (h *ledgerHarness) addTransfer(t *testing.T, investment *entities.Investment, expected string, status entities.TransferStatus) *entities.Transfer {
	t.Helper()

	transfer := testutil.NewTestTransfer(investment, expected)
	transfer.Status = status
	require.NoError(t, repository.NewTransferRepository(h.db).Create(context.Background(), transfer))
	return transfer
}

func (h *ledgerHarness) investment(t *testing.T, id string) *entities.Investment {
	t.Helper()
	investment, err := repository.NewInvestmentRepository(h.db).GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, investment)
	return investment
}

func (h *ledgerHarness) transfer(t *testing.T, id string) *entities.Transfer {
	t.Helper()
	transfer, err := repository.NewTransferRepository(h.db).GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, transfer)
	return transfer
}

func (h *ledgerHarness) fundTotals(t *testing.T, fundID string) *entities.FundTotals {
	t.Helper()
	totals, err := repository.NewFundTotalsRepository(h.db).Get(context.Background(), fundID)
	require.NoError(t, err)
	return totals
}

func (h *ledgerHarness) auditEntries(t *testing.T, teamID, resourceType, resourceID string) []*entities.AuditEntry {
	t.Helper()
	entries, err := repository.NewAuditLogRepositoryScoped(h.db.Pool, teamID).ListByResource(context.Background(), resourceType, resourceID)
	require.NoError(t, err)
	return entries
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}
