package application

import (
	"context"

	"fundledger/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new read-write transaction
	Begin(ctx context.Context) error

	// BeginReadOnly starts a transaction that rejects writes
	BeginReadOnly(ctx context.Context) error

	// Commit commits the transaction and releases held events
	Commit() error

	// Rollback rolls back the transaction and drops held events. Safe after Commit.
	Rollback() error

	// Repository getters
	FundRepository() interfaces.FundRepository
	InvestmentRepository() interfaces.InvestmentRepository
	TransferRepository() interfaces.TransferRepository
	FundTotalsRepository() interfaces.FundTotalsRepository
	AuditLogRepository() interfaces.AuditLogRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// CreateForTeam creates a new UnitOfWork scoped to a team. An empty team is system scope.
	CreateForTeam(teamID string) UnitOfWork
}
