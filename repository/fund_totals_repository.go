package repository

import (
	"context"
	"errors"
	"fmt"

	"fundledger/database"
	"fundledger/domain/entities"

	"github.com/jackc/pgx/v5"
)

// FundTotalsRepository implements the FundTotalsRepository interface
type FundTotalsRepository struct {
	q Queryable
}

// NewFundTotalsRepository creates a new unscoped fund totals repository
func NewFundTotalsRepository(db *database.DB) *FundTotalsRepository {
	return &FundTotalsRepository{q: db.Pool}
}

// NewFundTotalsRepositoryForTx creates a fund totals repository bound to a transaction.
// Fund totals are not filtered by team; callers check ownership through the owning fund.
func NewFundTotalsRepositoryForTx(tx Queryable) *FundTotalsRepository {
	return &FundTotalsRepository{q: tx}
}

// Get returns the cached totals for a fund
func (r *FundTotalsRepository) Get(ctx context.Context, fundID string) (*entities.FundTotals, error) {
	query := `
		SELECT fund_id, total_committed, total_inbound, investor_count, recomputed_at
		FROM fund_totals
		WHERE fund_id = $1
	`

	var totals entities.FundTotals
	err := r.q.QueryRow(ctx, query, fundID).Scan(
		&totals.FundID,
		&totals.TotalCommitted,
		&totals.TotalInbound,
		&totals.InvestorCount,
		&totals.RecomputedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get totals for fund %s: %w", fundID, err)
	}
	return &totals, nil
}

// ComputeFromInvestments sums commitment and funded amounts over the fund's active investments
func (r *FundTotalsRepository) ComputeFromInvestments(ctx context.Context, fundID string) (*entities.FundTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(commitment_amount), 0),
			COALESCE(SUM(funded_amount), 0),
			COUNT(DISTINCT investor_id)
		FROM investments
		WHERE fund_id = $1
		  AND status <> ALL($2)
	`

	inactive := make([]string, 0, len(entities.InactiveInvestmentStatuses))
	for _, status := range entities.InactiveInvestmentStatuses {
		inactive = append(inactive, string(status))
	}

	totals := entities.FundTotals{FundID: fundID}
	err := r.q.QueryRow(ctx, query, fundID, inactive).Scan(
		&totals.TotalCommitted,
		&totals.TotalInbound,
		&totals.InvestorCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sum investments of fund %s: %w", fundID, err)
	}
	return &totals, nil
}

// Upsert writes the totals row for a fund and stamps the recompute time
func (r *FundTotalsRepository) Upsert(ctx context.Context, totals *entities.FundTotals) error {
	query := `
		INSERT INTO fund_totals (fund_id, total_committed, total_inbound, investor_count, recomputed_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (fund_id) DO UPDATE
		SET total_committed = EXCLUDED.total_committed,
			total_inbound = EXCLUDED.total_inbound,
			investor_count = EXCLUDED.investor_count,
			recomputed_at = EXCLUDED.recomputed_at
		RETURNING recomputed_at
	`

	err := r.q.QueryRow(ctx, query,
		totals.FundID,
		totals.TotalCommitted,
		totals.TotalInbound,
		totals.InvestorCount,
	).Scan(&totals.RecomputedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert totals for fund %s: %w", totals.FundID, err)
	}
	return nil
}
