package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/margin/internal/pricing"
)

// Store reads and updates the catalog tables. Rows missing from the database
// fall back to the built-in defaults.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load returns the built-in defaults overlaid with every stored row.
func (s *Store) Load(ctx context.Context) (Defaults, error) {
	defaults := Builtin()

	prices, err := s.listPrices(ctx)
	if err != nil {
		return Defaults{}, err
	}
	for key, price := range prices {
		defaults.Prices[key] = price
	}

	rates, err := s.getRates(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return defaults, nil
	}
	if err != nil {
		return Defaults{}, err
	}
	defaults.Rates = rates

	return defaults, nil
}

func (s *Store) listPrices(ctx context.Context) (map[PriceKey]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT plan, billing_cycle, price
		FROM list_prices
	`)
	if err != nil {
		return nil, fmt.Errorf("query list prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[PriceKey]decimal.Decimal)
	for rows.Next() {
		var rawPlan, rawCycle string
		var price decimal.Decimal
		if err := rows.Scan(&rawPlan, &rawCycle, &price); err != nil {
			return nil, fmt.Errorf("scan list price: %w", err)
		}
		plan, err := pricing.ParsePlan(rawPlan)
		if err != nil {
			continue
		}
		cycle, err := pricing.ParseBillingCycle(rawCycle)
		if err != nil {
			continue
		}
		prices[PriceKey{Plan: plan, Cycle: cycle}] = price
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate list prices: %w", err)
	}

	return prices, nil
}

func (s *Store) getRates(ctx context.Context) (Rates, error) {
	var r Rates
	err := s.db.QueryRowContext(ctx, `
		SELECT
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
			min_margin_pct
		FROM rate_config
		WHERE id = 1
	`).Scan(
		&r.Labor.FirstMonth.Rate,
		&r.Labor.FirstMonth.Hours,
		&r.Labor.Ongoing.Rate,
		&r.Labor.Ongoing.Hours,
		&r.Contractor.FirstMonth.Flat,
		&r.Contractor.FirstMonth.Hourly.Rate,
		&r.Contractor.FirstMonth.Hourly.Hours,
		&r.Contractor.Ongoing.Flat,
		&r.Contractor.Ongoing.Hourly.Rate,
		&r.Contractor.Ongoing.Hourly.Hours,
		&r.MinMarginPct,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Rates{}, err
		}
		return Rates{}, fmt.Errorf("query rate_config: %w", err)
	}
	return r, nil
}

// SetPrice stores the default list price for one plan and billing cycle.
func (s *Store) SetPrice(ctx context.Context, key PriceKey, price decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO list_prices (plan, billing_cycle, price)
		VALUES (?, ?, ?)
		ON CONFLICT(plan, billing_cycle) DO UPDATE SET
			price = excluded.price,
			updated_at = CURRENT_TIMESTAMP
	`, string(key.Plan), string(key.Cycle), price.String())
	if err != nil {
		return fmt.Errorf("upsert list price %s/%s: %w", key.Plan, key.Cycle, err)
	}
	return nil
}

// SetRates replaces the rate_config singleton.
func (s *Store) SetRates(ctx context.Context, r Rates) error {
	_, err := s.db.ExecContext(ctx, `
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
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			labor_first_month_rate = excluded.labor_first_month_rate,
			labor_first_month_hours = excluded.labor_first_month_hours,
			labor_ongoing_rate = excluded.labor_ongoing_rate,
			labor_ongoing_hours = excluded.labor_ongoing_hours,
			contractor_first_month_flat = excluded.contractor_first_month_flat,
			contractor_first_month_rate = excluded.contractor_first_month_rate,
			contractor_first_month_hours = excluded.contractor_first_month_hours,
			contractor_ongoing_flat = excluded.contractor_ongoing_flat,
			contractor_ongoing_rate = excluded.contractor_ongoing_rate,
			contractor_ongoing_hours = excluded.contractor_ongoing_hours,
			min_margin_pct = excluded.min_margin_pct,
			updated_at = CURRENT_TIMESTAMP
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
		DefaultCurrency,
	)
	if err != nil {
		return fmt.Errorf("upsert rate_config: %w", err)
	}
	return nil
}
