package interfaces

import (
	"context"

	"fundledger/domain/entities"
	"fundledger/domain/events"

	"github.com/shopspring/decimal"
)

// FundRepository defines the interface for fund data access
type FundRepository interface {
	// GetByID retrieves a fund by ID, returning nil if it does not exist
	GetByID(ctx context.Context, id string) (*entities.Fund, error)

	// GetByIDForUpdate retrieves a fund with a row lock held until the transaction ends
	GetByIDForUpdate(ctx context.Context, id string) (*entities.Fund, error)

	// Create inserts a new fund
	Create(ctx context.Context, fund *entities.Fund) error

	// ListIDs returns fund IDs visible to the repository scope
	ListIDs(ctx context.Context) ([]string, error)
}

// InvestmentRepository defines the interface for investment data access
type InvestmentRepository interface {
	// GetByID retrieves an investment by ID
	GetByID(ctx context.Context, id string) (*entities.Investment, error)

	// GetByIDForUpdate retrieves an investment and locks the row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id string) (*entities.Investment, error)

	// Create inserts a new investment
	Create(ctx context.Context, investment *entities.Investment) error

	// UpdateFunding persists the funded amount and status of an investment
	UpdateFunding(ctx context.Context, id string, fundedAmount decimal.Decimal, status entities.InvestmentStatus) error
}

// TransferRepository defines the interface for transfer data access
type TransferRepository interface {
	// GetByID retrieves a transfer by ID
	GetByID(ctx context.Context, id string) (*entities.Transfer, error)

	// GetByIDForUpdate retrieves a transfer and locks the row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id string) (*entities.Transfer, error)

	// Create inserts a new transfer
	Create(ctx context.Context, transfer *entities.Transfer) error

	// MarkCompleted moves a non-terminal transfer to COMPLETED.
	// Returns false when the transfer was already terminal and nothing was written.
	MarkCompleted(ctx context.Context, confirmation *entities.TransferConfirmation) (bool, error)
}

// FundTotalsRepository defines the interface for the fund aggregate cache
type FundTotalsRepository interface {
	// Get returns the cached totals for a fund, or nil if never computed
	Get(ctx context.Context, fundID string) (*entities.FundTotals, error)

	// ComputeFromInvestments sums active investments of a fund
	ComputeFromInvestments(ctx context.Context, fundID string) (*entities.FundTotals, error)

	// Upsert writes the cached totals for a fund
	Upsert(ctx context.Context, totals *entities.FundTotals) error
}

// AuditLogRepository defines the interface for the audit trail
type AuditLogRepository interface {
	// Record persists an audit entry
	Record(ctx context.Context, entry *entities.AuditEntry) error

	// ListByResource returns audit entries for a resource, newest first
	ListByResource(ctx context.Context, resourceType, resourceID string) ([]*entities.AuditEntry, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher holds published events until the surrounding transaction ends
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes all held events. Called after a successful commit.
	Flush(ctx context.Context) error

	// Discard drops all held events. Called on rollback.
	Discard()
}
