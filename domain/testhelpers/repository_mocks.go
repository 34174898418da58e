package testhelpers

import (
	"context"

	"fundledger/domain/entities"
	"fundledger/domain/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockFundRepository is a mock implementation of FundRepository
type MockFundRepository struct {
	mock.Mock
}

func (m *MockFundRepository) GetByID(ctx context.Context, id string) (*entities.Fund, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Fund), args.Error(1)
}

func (m *MockFundRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.Fund, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Fund), args.Error(1)
}

func (m *MockFundRepository) Create(ctx context.Context, fund *entities.Fund) error {
	args := m.Called(ctx, fund)
	return args.Error(0)
}

func (m *MockFundRepository) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockInvestmentRepository is a mock implementation of InvestmentRepository
type MockInvestmentRepository struct {
	mock.Mock
}

func (m *MockInvestmentRepository) GetByID(ctx context.Context, id string) (*entities.Investment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.Investment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) Create(ctx context.Context, investment *entities.Investment) error {
	args := m.Called(ctx, investment)
	return args.Error(0)
}

func (m *MockInvestmentRepository) UpdateFunding(ctx context.Context, id string, fundedAmount decimal.Decimal, status entities.InvestmentStatus) error {
	args := m.Called(ctx, id, fundedAmount, status)
	return args.Error(0)
}

// MockTransferRepository is a mock implementation of TransferRepository
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) GetByID(ctx context.Context, id string) (*entities.Transfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transfer), args.Error(1)
}

func (m *MockTransferRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.Transfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transfer), args.Error(1)
}

func (m *MockTransferRepository) Create(ctx context.Context, transfer *entities.Transfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *MockTransferRepository) MarkCompleted(ctx context.Context, confirmation *entities.TransferConfirmation) (bool, error) {
	args := m.Called(ctx, confirmation)
	return args.Bool(0), args.Error(1)
}

// MockFundTotalsRepository is a mock implementation of FundTotalsRepository
type MockFundTotalsRepository struct {
	mock.Mock
}

func (m *MockFundTotalsRepository) Get(ctx context.Context, fundID string) (*entities.FundTotals, error) {
	args := m.Called(ctx, fundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FundTotals), args.Error(1)
}

func (m *MockFundTotalsRepository) ComputeFromInvestments(ctx context.Context, fundID string) (*entities.FundTotals, error) {
	args := m.Called(ctx, fundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FundTotals), args.Error(1)
}

func (m *MockFundTotalsRepository) Upsert(ctx context.Context, totals *entities.FundTotals) error {
	args := m.Called(ctx, totals)
	return args.Error(0)
}

// MockAuditLogRepository is a mock implementation of AuditLogRepository
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Record(ctx context.Context, entry *entities.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogRepository) ListByResource(ctx context.Context, resourceType, resourceID string) ([]*entities.AuditEntry, error) {
	args := m.Called(ctx, resourceType, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AuditEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockAggregateService is a mock implementation of AggregateService
type MockAggregateService struct {
	mock.Mock
}

func (m *MockAggregateService) Recompute(ctx context.Context, fundID string) (*entities.FundTotals, error) {
	args := m.Called(ctx, fundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FundTotals), args.Error(1)
}
