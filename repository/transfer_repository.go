package repository

import (
	"context"
	"errors"
	"fmt"

	"fundledger/database"
	"fundledger/domain/entities"

	"github.com/jackc/pgx/v5"
)

const transferColumns = `
	id, investment_id, investor_id, fund_id, status,
	expected_amount, amount_received, amount_variance, variance_note,
	confirmed_by, confirmed_at, funds_received_date,
	bank_reference, confirmation_notes, proof_document_id,
	created_at, updated_at`

// TransferRepository implements the TransferRepository interface
type TransferRepository struct {
	q Queryable
}

// NewTransferRepository creates a new unscoped transfer repository
func NewTransferRepository(db *database.DB) *TransferRepository {
	return &TransferRepository{q: db.Pool}
}

// NewTransferRepositoryForTx creates a transfer repository bound to a transaction.
// Transfers are not filtered by team; callers check ownership through the owning fund.
func NewTransferRepositoryForTx(tx Queryable) *TransferRepository {
	return &TransferRepository{q: tx}
}

// GetByID retrieves a transfer by ID
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*entities.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByIDForUpdate retrieves a transfer and holds a row lock for the rest of the transaction.
// A concurrent confirmation of the same transfer blocks here until the first one finishes.
func (r *TransferRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *TransferRepository) getOne(ctx context.Context, query, id string) (*entities.Transfer, error) {
	transfer, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer %s: %w", id, err)
	}
	return transfer, nil
}

// Create inserts a transfer, filling in generated fields
func (r *TransferRepository) Create(ctx context.Context, transfer *entities.Transfer) error {
	if transfer.Status == "" {
		transfer.Status = entities.TransferStatusPending
	}

	query := `
		INSERT INTO transfers (id, investment_id, investor_id, fund_id, status, expected_amount)
		VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		transfer.ID,
		transfer.InvestmentID,
		transfer.InvestorID,
		transfer.FundID,
		string(transfer.Status),
		transfer.ExpectedAmount,
	).Scan(&transfer.ID, &transfer.CreatedAt, &transfer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transfer for investment %s: %w", transfer.InvestmentID, err)
	}
	return nil
}

// MarkCompleted moves the transfer to COMPLETED only if it is not already terminal.
// The status predicate makes the transition happen at most once even without a prior lock.
func (r *TransferRepository) MarkCompleted(ctx context.Context, c *entities.TransferConfirmation) (bool, error) {
	query := `
		UPDATE transfers
		SET status = 'COMPLETED',
			amount_received = $2,
			amount_variance = $3,
			variance_note = $4,
			confirmed_by = $5,
			confirmed_at = $6,
			funds_received_date = $7,
			bank_reference = $8,
			confirmation_notes = $9,
			proof_document_id = $10,
			updated_at = NOW()
		WHERE id = $1
		  AND status NOT IN ('COMPLETED', 'FAILED', 'CANCELLED')
	`

	tag, err := r.q.Exec(ctx, query,
		c.TransferID,
		c.AmountReceived,
		c.AmountVariance,
		c.VarianceNote,
		c.ConfirmedBy,
		c.ConfirmedAt,
		c.FundsReceivedDate,
		c.BankReference,
		c.ConfirmationNotes,
		c.ProofDocumentID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to complete transfer %s: %w", c.TransferID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanTransfer(row pgx.Row) (*entities.Transfer, error) {
	var transfer entities.Transfer
	var status string
	err := row.Scan(
		&transfer.ID,
		&transfer.InvestmentID,
		&transfer.InvestorID,
		&transfer.FundID,
		&status,
		&transfer.ExpectedAmount,
		&transfer.AmountReceived,
		&transfer.AmountVariance,
		&transfer.VarianceNote,
		&transfer.ConfirmedBy,
		&transfer.ConfirmedAt,
		&transfer.FundsReceivedDate,
		&transfer.BankReference,
		&transfer.ConfirmationNotes,
		&transfer.ProofDocumentID,
		&transfer.CreatedAt,
		&transfer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	transfer.Status = entities.TransferStatus(status)
	return &transfer, nil
}
