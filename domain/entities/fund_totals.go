package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundTotals is the cached per-fund aggregate over active investments.
// It can always be rebuilt from the investments table.
type FundTotals struct {
	FundID         string          `db:"fund_id"`
	TotalCommitted decimal.Decimal `db:"total_committed"`
	TotalInbound   decimal.Decimal `db:"total_inbound"`
	InvestorCount  int             `db:"investor_count"`
	RecomputedAt   time.Time       `db:"recomputed_at"`
}

// Outstanding returns committed capital not yet received
func (t *FundTotals) Outstanding() decimal.Decimal {
	return t.TotalCommitted.Sub(t.TotalInbound)
}
