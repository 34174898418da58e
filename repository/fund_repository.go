package repository

import (
	"context"
	"errors"
	"fmt"

	"fundledger/database"
	"fundledger/domain/entities"

	"github.com/jackc/pgx/v5"
)

// FundRepository implements the FundRepository interface
type FundRepository struct {
	q      Queryable
	teamID string
}

// NewFundRepository creates a new unscoped fund repository
func NewFundRepository(db *database.DB) *FundRepository {
	return &FundRepository{q: db.Pool}
}

// NewFundRepositoryScoped creates a fund repository bound to a transaction and team.
// An empty teamID means system scope.
func NewFundRepositoryScoped(tx Queryable, teamID string) *FundRepository {
	return &FundRepository{
		q:      tx,
		teamID: teamID,
	}
}

// GetByID retrieves a fund by ID regardless of team, so callers can tell
// "missing" apart from "not yours"
func (r *FundRepository) GetByID(ctx context.Context, id string) (*entities.Fund, error) {
	query := `
		SELECT id, team_id, name, currency, created_at, updated_at
		FROM funds
		WHERE id = $1
	`

	var fund entities.Fund
	err := r.q.QueryRow(ctx, query, id).Scan(
		&fund.ID,
		&fund.TeamID,
		&fund.Name,
		&fund.Currency,
		&fund.CreatedAt,
		&fund.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fund %s: %w", id, err)
	}

	return &fund, nil
}

// GetByIDForUpdate retrieves a fund and locks its row until the transaction ends.
// Writers that recompute the fund's totals take this lock first so their SUM sees
// every sibling confirmation that committed before them.
func (r *FundRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.Fund, error) {
	query := `
		SELECT id, team_id, name, currency, created_at, updated_at
		FROM funds
		WHERE id = $1
		FOR UPDATE
	`

	var fund entities.Fund
	err := r.q.QueryRow(ctx, query, id).Scan(
		&fund.ID,
		&fund.TeamID,
		&fund.Name,
		&fund.Currency,
		&fund.CreatedAt,
		&fund.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock fund %s: %w", id, err)
	}

	return &fund, nil
}

// Create inserts a fund, filling in generated fields
func (r *FundRepository) Create(ctx context.Context, fund *entities.Fund) error {
	if fund.TeamID == "" {
		fund.TeamID = r.teamID
	}
	if fund.Currency == "" {
		fund.Currency = "USD"
	}

	query := `
		INSERT INTO funds (id, team_id, name, currency)
		VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, fund.ID, fund.TeamID, fund.Name, fund.Currency).Scan(
		&fund.ID,
		&fund.CreatedAt,
		&fund.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create fund %q: %w", fund.Name, err)
	}
	return nil
}

// ListIDs returns the IDs of funds in scope, ordered for stable batch processing
func (r *FundRepository) ListIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT id FROM funds
		WHERE ($1::text = '' OR team_id = $1::text)
		ORDER BY created_at, id
	`

	rows, err := r.q.Query(ctx, query, r.teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan fund ids: %w", err)
	}
	return ids, nil
}
