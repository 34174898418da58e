package repository

import (
	"context"
	"errors"
	"fmt"

	"fundledger/database"
	"fundledger/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const investmentColumns = `id, fund_id, investor_id, commitment_amount, funded_amount, status, created_at, updated_at`

// InvestmentRepository implements the InvestmentRepository interface
type InvestmentRepository struct {
	q Queryable
}

// NewInvestmentRepository creates a new unscoped investment repository
func NewInvestmentRepository(db *database.DB) *InvestmentRepository {
	return &InvestmentRepository{q: db.Pool}
}

// NewInvestmentRepositoryForTx creates an investment repository bound to a transaction.
// Investments are not filtered by team; callers check ownership through the owning fund.
func NewInvestmentRepositoryForTx(tx Queryable) *InvestmentRepository {
	return &InvestmentRepository{q: tx}
}

// GetByID retrieves an investment by ID
func (r *InvestmentRepository) GetByID(ctx context.Context, id string) (*entities.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByIDForUpdate retrieves an investment and holds a row lock for the rest of the transaction
func (r *InvestmentRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *InvestmentRepository) getOne(ctx context.Context, query, id string) (*entities.Investment, error) {
	investment, err := scanInvestment(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get investment %s: %w", id, err)
	}
	return investment, nil
}

// Create inserts an investment, filling in generated fields
func (r *InvestmentRepository) Create(ctx context.Context, investment *entities.Investment) error {
	if investment.Status == "" {
		investment.Status = entities.InvestmentStatusCommitted
	}

	query := `
		INSERT INTO investments (id, fund_id, investor_id, commitment_amount, funded_amount, status)
		VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		investment.ID,
		investment.FundID,
		investment.InvestorID,
		investment.CommitmentAmount,
		investment.FundedAmount,
		string(investment.Status),
	).Scan(&investment.ID, &investment.CreatedAt, &investment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create investment for investor %s: %w", investment.InvestorID, err)
	}
	return nil
}

// UpdateFunding writes the funded amount and status of an investment
func (r *InvestmentRepository) UpdateFunding(ctx context.Context, id string, fundedAmount decimal.Decimal, status entities.InvestmentStatus) error {
	query := `
		UPDATE investments
		SET funded_amount = $2, status = $3, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query, id, fundedAmount, string(status))
	if err != nil {
		return fmt.Errorf("failed to update funding of investment %s: %w", id, err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("investment %s not found", id)
	}
	return nil
}

func scanInvestment(row pgx.Row) (*entities.Investment, error) {
	var investment entities.Investment
	var status string
	err := row.Scan(
		&investment.ID,
		&investment.FundID,
		&investment.InvestorID,
		&investment.CommitmentAmount,
		&investment.FundedAmount,
		&status,
		&investment.CreatedAt,
		&investment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	investment.Status = entities.InvestmentStatus(status)
	return &investment, nil
}
