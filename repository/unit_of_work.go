package repository

import (
	"context"
	"errors"
	"fmt"

	"fundledger/application"
	"fundledger/database"
	"fundledger/domain/interfaces"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// unitOfWork implements the application.UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	teamID                 string
	transactionalPublisher interfaces.TransactionalEventPublisher
	fundRepo               interfaces.FundRepository
	investmentRepo         interfaces.InvestmentRepository
	transferRepo           interfaces.TransferRepository
	fundTotalsRepo         interfaces.FundTotalsRepository
	auditLogRepo           interfaces.AuditLogRepository
}

type unitOfWorkFactory struct {
	db *database.DB
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *unitOfWorkFactory {
	return &unitOfWorkFactory{
		db: db,
	}
}

// CreateForTeamWithPublisher creates a new UnitOfWork that flushes the given publisher on commit
func (f *unitOfWorkFactory) CreateForTeamWithPublisher(teamID string, transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		teamID:                 teamID,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new read-write transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	return u.begin(ctx, pgx.TxOptions{})
}

// BeginReadOnly starts a read-only transaction
func (u *unitOfWork) BeginReadOnly(ctx context.Context) error {
	return u.begin(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
}

func (u *unitOfWork) begin(ctx context.Context, opts pgx.TxOptions) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Team-scoped repositories sharing the transaction
	u.fundRepo = NewFundRepositoryScoped(tx, u.teamID)
	u.investmentRepo = NewInvestmentRepositoryForTx(tx)
	u.transferRepo = NewTransferRepositoryForTx(tx)
	u.fundTotalsRepo = NewFundTotalsRepositoryForTx(tx)
	u.auditLogRepo = NewAuditLogRepositoryScoped(tx, u.teamID)

	return nil
}

// Commit commits the transaction, then flushes held events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		u.tx = nil
		if u.transactionalPublisher != nil {
			u.transactionalPublisher.Discard()
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil

	// The ledger is durable at this point; side effects must not depend on the caller staying connected
	if u.transactionalPublisher != nil {
		if err := u.transactionalPublisher.Flush(context.WithoutCancel(u.ctx)); err != nil {
			log.WithFields(log.Fields{
				"teamId": u.teamID,
				"error":  err,
			}).Error("Failed to flush events after commit")
		}
	}

	return nil
}

// Rollback rolls back the transaction. It is a no-op once committed.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	// Use a fresh context so a cancelled request still releases its locks
	err := u.tx.Rollback(context.WithoutCancel(u.ctx))
	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// FundRepository returns the fund repository for this unit of work
func (u *unitOfWork) FundRepository() interfaces.FundRepository {
	if u.fundRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.fundRepo
}

// InvestmentRepository returns the investment repository for this unit of work
func (u *unitOfWork) InvestmentRepository() interfaces.InvestmentRepository {
	if u.investmentRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.investmentRepo
}

// TransferRepository returns the transfer repository for this unit of work
func (u *unitOfWork) TransferRepository() interfaces.TransferRepository {
	if u.transferRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transferRepo
}

// FundTotalsRepository returns the fund totals repository for this unit of work
func (u *unitOfWork) FundTotalsRepository() interfaces.FundTotalsRepository {
	if u.fundTotalsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.fundTotalsRepo
}

// AuditLogRepository returns the audit log repository for this unit of work
func (u *unitOfWork) AuditLogRepository() interfaces.AuditLogRepository {
	if u.auditLogRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.auditLogRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work has no event publisher")
	}
	return u.transactionalPublisher
}
