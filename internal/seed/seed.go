package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/margin/internal/catalog"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run writes defaults into the catalog tables without touching rows that
// already exist, so operator edits survive restarts.
func Run(ctx context.Context, db *sql.DB, defaults catalog.Defaults) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	for _, key := range catalog.Keys() {
		price, ok := defaults.Prices[key]
		if !ok {
			continue
		}
		if err := ensurePrice(ctx, tx, key, price.String(), &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}
	if err := ensureRateConfig(ctx, tx, defaults.Rates, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensurePrice(ctx context.Context, tx *sql.Tx, key catalog.PriceKey, price string, stats *Stats) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO list_prices (plan, billing_cycle, price)
		VALUES (?, ?, ?)
		ON CONFLICT(plan, billing_cycle) DO NOTHING
	`, string(key.Plan), string(key.Cycle), price)
	if err != nil {
		return fmt.Errorf("insert list price %s/%s: %w", key.Plan, key.Cycle, err)
	}
	return count(result, stats)
}

func ensureRateConfig(ctx context.Context, tx *sql.Tx, r catalog.Rates, stats *Stats) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO rate_config (
			id,
			labor_first_month_rate,
			labor_first_month_hours,
			labor_ongoing_rate,
			labor_ongoing_hours,
			contractor_first_month_flat,
			contractor_first_month_rate,
			contractor_first_month_hours,
			contractor_ongoing_flat,
			contractor_ongoing_rate,
			contractor_ongoing_hours,
			min_margin_pct,
			currency
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.Labor.FirstMonth.Rate.String(),
		r.Labor.FirstMonth.Hours.String(),
		r.Labor.Ongoing.Rate.String(),
		r.Labor.Ongoing.Hours.String(),
		r.Contractor.FirstMonth.Flat.String(),
		r.Contractor.FirstMonth.Hourly.Rate.String(),
		r.Contractor.FirstMonth.Hourly.Hours.String(),
		r.Contractor.Ongoing.Flat.String(),
		r.Contractor.Ongoing.Hourly.Rate.String(),
		r.Contractor.Ongoing.Hourly.Hours.String(),
		r.MinMarginPct.String(),
		catalog.DefaultCurrency,
	)
	if err != nil {
		return fmt.Errorf("insert rate config singleton: %w", err)
	}
	return count(result, stats)
}

func count(result sql.Result, stats *Stats) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("seed rows affected: %w", err)
	}
	stats.Inserts += int(affected)
	return nil
}
