package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fundledger/domain/apperrors"
	"fundledger/domain/entities"
	"fundledger/domain/events"
	"fundledger/domain/interfaces"
	"fundledger/domain/testhelpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testTeamID       = "team-1"
	testFundID       = "fund-1"
	testTransferID   = "transfer-1"
	testInvestmentID = "investment-1"
	testInvestorID   = "investor-1"
	testAdminID      = "admin-1"
)

type confirmationMocks struct {
	FundRepo       *testhelpers.MockFundRepository
	TransferRepo   *testhelpers.MockTransferRepository
	InvestmentRepo *testhelpers.MockInvestmentRepository
	Aggregate      *testhelpers.MockAggregateService
	EventPublisher *testhelpers.MockEventPublisher
}

func newConfirmationMocks() *confirmationMocks {
	return &confirmationMocks{
		FundRepo:       new(testhelpers.MockFundRepository),
		TransferRepo:   new(testhelpers.MockTransferRepository),
		InvestmentRepo: new(testhelpers.MockInvestmentRepository),
		Aggregate:      new(testhelpers.MockAggregateService),
		EventPublisher: new(testhelpers.MockEventPublisher),
	}
}

func (m *confirmationMocks) service() interfaces.ConfirmationService {
	return NewConfirmationService(m.FundRepo, m.TransferRepo, m.InvestmentRepo, m.Aggregate, m.EventPublisher,
		func() time.Time { return fixedNow })
}

func (m *confirmationMocks) assertAll(t *testing.T) {
	m.FundRepo.AssertExpectations(t)
	m.TransferRepo.AssertExpectations(t)
	m.InvestmentRepo.AssertExpectations(t)
	m.Aggregate.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

func testFund() *entities.Fund {
	return &entities.Fund{ID: testFundID, TeamID: testTeamID, Name: "Fund I", Currency: "USD"}
}

func pendingTransfer(expected string) *entities.Transfer {
	return &entities.Transfer{
		ID:             testTransferID,
		InvestmentID:   testInvestmentID,
		InvestorID:     testInvestorID,
		FundID:         testFundID,
		Status:         entities.TransferStatusPending,
		ExpectedAmount: decimal.RequireFromString(expected),
	}
}

func testInvestment(status entities.InvestmentStatus, funded string) *entities.Investment {
	return &entities.Investment{
		ID:               testInvestmentID,
		FundID:           testFundID,
		InvestorID:       testInvestorID,
		CommitmentAmount: decimal.RequireFromString("250000.00"),
		FundedAmount:     decimal.RequireFromString(funded),
		Status:           status,
	}
}

func confirmCommand(amount string) interfaces.ConfirmationCommand {
	ref := "WIRE-001"
	return interfaces.ConfirmationCommand{
		TransferID:        testTransferID,
		TeamID:            testTeamID,
		ConfirmedBy:       testAdminID,
		FundsReceivedDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		AmountReceived:    decimal.RequireFromString(amount),
		BankReference:     &ref,
	}
}

func decimalEq(value string) interface{} {
	want := decimal.RequireFromString(value)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func publishedTypes(m *testhelpers.MockEventPublisher) []events.EventType {
	var types []events.EventType
	for _, call := range m.Calls {
		if call.Method == "Publish" {
			types = append(types, call.Arguments.Get(0).(events.Event).Type())
		}
	}
	return types
}

func publishedAuditDetails(t *testing.T, m *testhelpers.MockEventPublisher) map[string]any {
	t.Helper()
	for _, call := range m.Calls {
		if event, ok := call.Arguments.Get(0).(events.AdminActionEvent); ok {
			return event.Details
		}
	}
	t.Fatal("no admin action event published")
	return nil
}

func TestConfirmationService_Apply_ShortWireRecordsVariance(t *testing.T) {
	ctx := context.Background()
	m := newConfirmationMocks()

	m.TransferRepo.On("GetByIDForUpdate", ctx, testTransferID).Return(pendingTransfer("250000.00"), nil)
	m.FundRepo.On("GetByIDForUpdate", ctx, testFundID).Return(testFund(), nil)
	m.TransferRepo.On("MarkCompleted", ctx, mock.MatchedBy(func(c *entities.TransferConfirmation) bool {
		return c.TransferID == testTransferID &&
			c.ConfirmedBy == testAdminID &&
			c.AmountReceived.Equal(decimal.RequireFromString("249500")) &&
			c.AmountVariance.Equal(decimal.RequireFromString("-500")) &&
			c.VarianceNote != nil &&
			*c.VarianceNote == "Expected $250,000.00, received $249,500.00" &&
			c.ConfirmedAt.Equal(fixedNow)
	})).Return(true, nil)
	m.InvestmentRepo.On("GetByIDForUpdate", ctx, testInvestmentID).
		Return(testInvestment(entities.InvestmentStatusCommitted, "0"), nil)
	m.InvestmentRepo.On("UpdateFunding", ctx, testInvestmentID, decimalEq("249500"), entities.InvestmentStatusCommitted).Return(nil)
	m.Aggregate.On("Recompute", ctx, testFundID).Return(&entities.FundTotals{FundID: testFundID}, nil)
	m.EventPublisher.On("Publish", mock.Anything).Return(nil)

	outcome, err := m.service().Apply(ctx, confirmCommand("249500.00"))
	require.NoError(t, err)

	assert.Equal(t, entities.TransferStatusCompleted, outcome.Transfer.Status)
	assert.True(t, outcome.Transfer.AmountVariance.Valid)
	assert.True(t, outcome.Transfer.AmountVariance.Decimal.Equal(decimal.NewFromInt(-500)))
	assert.Equal(t, entities.InvestmentStatusCommitted, outcome.Investment.Status)
	assert.False(t, outcome.InvestmentUpdated)
	assert.Empty(t, outcome.Warnings)

	assert.Equal(t, []events.EventType{
		events.EventTypeAdminAction,
		events.EventTypeWireConfirmationEmail,
		events.EventTypeWireConfirmedAnalytic,
		events.EventTypeWireConfirmedRealtime,
	}, publishedTypes(m.EventPublisher))

	details := publishedAuditDetails(t, m.EventPublisher)
	assert.Equal(t, "500.00", details["remainingCommitment"])
	assert.NotContains(t, details, "overFundedBy")
	m.assertAll(t)
}

func TestConfirmationService_Apply_OverFundingIsAudited(t *testing.T) {
	ctx := context.Background()
	m := newConfirmationMocks()

	m.TransferRepo.On("GetByIDForUpdate", ctx, testTransferID).Return(pendingTransfer("1000.00"), nil)
	m.FundRepo.On("GetByIDForUpdate", ctx, testFundID).Return(testFund(), nil)
	m.TransferRepo.On("MarkCompleted", ctx, mock.Anything).Return(true, nil)
	m.InvestmentRepo.On("GetByIDForUpdate", ctx, testInvestmentID).
		Return(testInvestment(entities.InvestmentStatusFunded, "250000.00"), nil)
	m.InvestmentRepo.On("UpdateFunding", ctx, testInvestmentID, decimalEq("251000"), entities.InvestmentStatusFunded).Return(nil)
	m.Aggregate.On("Recompute", ctx, testFundID).Return(&entities.FundTotals{FundID: testFundID}, nil)
	m.EventPublisher.On("Publish", mock.Anything).Return(nil)

	outcome, err := m.service().Apply(ctx, confirmCommand("1000.00"))
	require.NoError(t, err)

	assert.False(t, outcome.InvestmentUpdated)
	require.Len(t, outcome.Warnings, 1)
	assert.Contains(t, outcome.Warnings[0], "over-funded by 1000.00")

	details := publishedAuditDetails(t, m.EventPublisher)
	assert.Equal(t, "1000.00", details["overFundedBy"])
	assert.NotContains(t, details, "remainingCommitment")
	assert.NotContains(t, publishedTypes(m.EventPublisher), events.EventTypeInvestmentFunded)
	m.assertAll(t)
}

func TestConfirmationService_Apply_FollowUpWirePromotesToFunded(t *testing.T) {
	ctx := context.Background()
	m := newConfirmationMocks()

	m.TransferRepo.On("GetByIDForUpdate", ctx, testTransferID).Return(pendingTransfer("500.00"), nil)
	m.FundRepo.On("GetByIDForUpdate", ctx, testFundID).Return(testFund(), nil)
	m.TransferRepo.On("MarkCompleted", ctx, mock.MatchedBy(func(c *entities.TransferConfirmation) bool {
		return c.AmountVariance.IsZero() && c.VarianceNote == nil
	})).Return(true, nil)
	m.InvestmentRepo.On("GetByIDForUpdate", ctx, testInvestmentID).
		Return(testInvestment(entities.InvestmentStatusCommitted, "249500.00"), nil)
	m.InvestmentRepo.On("UpdateFunding", ctx, testInvestmentID, decimalEq("250000"), entities.InvestmentStatusFunded).Return(nil)
	m.Aggregate.On("Recompute", ctx, testFundID).Return(&entities.FundTotals{FundID: testFundID}, nil)
	m.EventPublisher.On("Publish", mock.Anything).Return(nil)

	outcome, err := m.service().Apply(ctx, confirmCommand("500.00"))
	require.NoError(t, err)

	assert.Equal(t, entities.InvestmentStatusFunded, outcome.Investment.Status)
	assert.Equal(t, entities.InvestmentStatusCommitted, outcome.PreviousStatus)
	assert.True(t, outcome.InvestmentUpdated)
	assert.Contains(t, publishedTypes(m.EventPublisher), events.EventTypeInvestmentFunded)
	m.assertAll(t)
}

func TestConfirmationService_Apply_WithdrawnInvestmentWarns(t *testing.T) {
	ctx := context.Background()
	m := newConfirmationMocks()

	m.TransferRepo.On("GetByIDForUpdate", ctx, testTransferID).Return(pendingTransfer("1000.00"), nil)
	m.FundRepo.On("GetByIDForUpdate", ctx, testFundID).Return(testFund(), nil)
	m.TransferRepo.On("MarkCompleted", ctx, mock.Anything).Return(true, nil)
	m.InvestmentRepo.On("GetByIDForUpdate", ctx, testInvestmentID).
		Return(testInvestment(entities.InvestmentStatusWithdrawn, "0"), nil)
	m.InvestmentRepo.On("UpdateFunding", ctx, testInvestmentID, decimalEq("1000"), entities.InvestmentStatusWithdrawn).Return(nil)
	m.Aggregate.On("Recompute", ctx, testFundID).Return(&entities.FundTotals{FundID: testFundID}, nil)
	m.EventPublisher.On("Publish", mock.Anything).Return(nil)

	outcome, err := m.service().Apply(ctx, confirmCommand("1000.00"))
	require.NoError(t, err)

	assert.Equal(t, entities.InvestmentStatusWithdrawn, outcome.Investment.Status)
	require.Len(t, outcome.Warnings, 1)
	assert.Contains(t, outcome.Warnings[0], "WITHDRAWN")
	m.assertAll(t)
}

func TestConfirmationService_Apply_GuardedUpdateLosesRace(t *testing.T) {
	ctx := context.Background()
	m := newConfirmationMocks()

	m.TransferRepo.On("GetByIDForUpdate", ctx, testTransferID).Return(pendingTransfer("250000.00"), nil)
	m.FundRepo.On("GetByIDForUpdate", ctx, testFundID).Return(testFund(), nil)
	m.TransferRepo.On("MarkCompleted", ctx, mock.Anything).Return(false, nil)

	_, err := m.service().Apply(ctx, confirmCommand("250000.00"))
	assert.ErrorIs(t, err, apperrors.ErrAlreadyConfirmed)

	m.InvestmentRepo.AssertNotCalled(t, "UpdateFunding", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.Aggregate.AssertNotCalled(t, "Recompute", mock.Anything, mock.Anything)
	m.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestConfirmationService_Apply_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		transfer *entities.Transfer
		fund     *entities.Fund
		teamID   string
		wantErr  error
	}{
		{
			name:     "missing transfer",
			transfer: nil,
			teamID:   testTeamID,
			wantErr:  apperrors.ErrTransferNotFound,
		},
		{
			name:     "other team",
			transfer: pendingTransfer("100.00"),
			fund:     testFund(),
			teamID:   "team-2",
			wantErr:  apperrors.ErrForbidden,
		},
		{
			name: "already completed",
			transfer: func() *entities.Transfer {
				tr := pendingTransfer("100.00")
				tr.Status = entities.TransferStatusCompleted
				return tr
			}(),
			fund:    testFund(),
			teamID:  testTeamID,
			wantErr: apperrors.ErrAlreadyConfirmed,
		},
		{
			name: "cancelled",
			transfer: func() *entities.Transfer {
				tr := pendingTransfer("100.00")
				tr.Status = entities.TransferStatusCancelled
				return tr
			}(),
			fund:    testFund(),
			teamID:  testTeamID,
			wantErr: apperrors.ErrCancelledTransfer,
		},
		{
			name: "failed",
			transfer: func() *entities.Transfer {
				tr := pendingTransfer("100.00")
				tr.Status = entities.TransferStatusFailed
				return tr
			}(),
			fund:    testFund(),
			teamID:  testTeamID,
			wantErr: apperrors.ErrInvalidTransferState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			m := newConfirmationMocks()

			if tt.transfer == nil {
				m.TransferRepo.On("GetByIDForUpdate", ctx, testTransferID).Return(nil, nil)
			} else {
				m.TransferRepo.On("GetByIDForUpdate", ctx, testTransferID).Return(tt.transfer, nil)
			}
			if tt.fund != nil {
				m.FundRepo.On("GetByIDForUpdate", ctx, testFundID).Return(tt.fund, nil)
			}

			cmd := confirmCommand("100.00")
			cmd.TeamID = tt.teamID

			_, err := m.service().Apply(ctx, cmd)
			assert.ErrorIs(t, err, tt.wantErr)

			m.TransferRepo.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything)
			m.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
		})
	}
}

func TestConfirmationService_Apply_StorageErrorIsNotBusinessError(t *testing.T) {
	ctx := context.Background()
	m := newConfirmationMocks()

	m.TransferRepo.On("GetByIDForUpdate", ctx, testTransferID).Return(pendingTransfer("250000.00"), nil)
	m.FundRepo.On("GetByIDForUpdate", ctx, testFundID).Return(testFund(), nil)
	m.TransferRepo.On("MarkCompleted", ctx, mock.Anything).Return(true, nil)
	m.InvestmentRepo.On("GetByIDForUpdate", ctx, testInvestmentID).
		Return(testInvestment(entities.InvestmentStatusCommitted, "0"), nil)
	m.InvestmentRepo.On("UpdateFunding", ctx, testInvestmentID, mock.Anything, mock.Anything).
		Return(errors.New("connection reset by peer"))

	_, err := m.service().Apply(ctx, confirmCommand("250000.00"))
	require.Error(t, err)
	assert.False(t, apperrors.IsBusinessError(err))
	m.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestConfirmationService_CheckConfirmable(t *testing.T) {
	ctx := context.Background()

	t.Run("open transfer", func(t *testing.T) {
		m := newConfirmationMocks()
		m.TransferRepo.On("GetByID", ctx, testTransferID).Return(pendingTransfer("100.00"), nil)
		m.FundRepo.On("GetByID", ctx, testFundID).Return(testFund(), nil)

		transfer, err := m.service().CheckConfirmable(ctx, testTransferID, testTeamID)
		require.NoError(t, err)
		assert.Equal(t, testTransferID, transfer.ID)
	})

	t.Run("not found", func(t *testing.T) {
		m := newConfirmationMocks()
		m.TransferRepo.On("GetByID", ctx, testTransferID).Return(nil, nil)

		_, err := m.service().CheckConfirmable(ctx, testTransferID, testTeamID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("forbidden", func(t *testing.T) {
		m := newConfirmationMocks()
		m.TransferRepo.On("GetByID", ctx, testTransferID).Return(pendingTransfer("100.00"), nil)
		m.FundRepo.On("GetByID", ctx, testFundID).Return(testFund(), nil)

		_, err := m.service().CheckConfirmable(ctx, testTransferID, "someone-else")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}
