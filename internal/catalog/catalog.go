// Package catalog holds the default lookup tables the calculator offers before
// a user edits anything: list prices per plan and billing cycle, labor and
// contractor rates, and the minimum acceptable margin.
package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/margin/internal/pricing"
)

const (
	DefaultDurationMonths = 12
	DefaultAccounts       = 1
	DefaultCurrency       = "USD"
)

// PriceKey identifies one cell of the list price table.
type PriceKey struct {
	Plan  pricing.Plan
	Cycle pricing.BillingCycle
}

// Rates groups the cost defaults applied to every quote.
type Rates struct {
	Labor        pricing.Labor
	Contractor   pricing.Contractor
	MinMarginPct decimal.Decimal
}

// Defaults is a complete set of calculator defaults.
type Defaults struct {
	Prices map[PriceKey]decimal.Decimal
	Rates  Rates
}

// Builtin returns the defaults shipped with the calculator.
func Builtin() Defaults {
	return Defaults{
		Prices: map[PriceKey]decimal.Decimal{
			{pricing.PlanPlus, pricing.CycleMonthly}:     decimal.NewFromInt(500),
			{pricing.PlanPlus, pricing.CycleSixMonth}:    decimal.NewFromInt(500 * 6).Mul(decimal.RequireFromString("0.9")),
			{pricing.PlanPlus, pricing.CycleYearly}:      decimal.NewFromInt(6000),
			{pricing.PlanPremium, pricing.CycleMonthly}:  decimal.NewFromInt(1416),
			{pricing.PlanPremium, pricing.CycleSixMonth}: decimal.NewFromInt(1416 * 6).Mul(decimal.RequireFromString("0.95")),
			{pricing.PlanPremium, pricing.CycleYearly}:   decimal.NewFromInt(17000),
		},
		Rates: Rates{
			Labor: pricing.Labor{
				FirstMonth: pricing.Hourly{Rate: decimal.RequireFromString("137.75"), Hours: decimal.NewFromInt(1)},
				Ongoing:    pricing.Hourly{Rate: decimal.RequireFromString("137.75"), Hours: decimal.NewFromInt(1)},
			},
			Contractor: pricing.Contractor{
				FirstMonth: pricing.Fee{Flat: decimal.NewFromInt(300)},
				Ongoing:    pricing.Fee{Flat: decimal.NewFromInt(200)},
			},
			MinMarginPct: decimal.NewFromInt(40),
		},
	}
}

// ListPrice returns the default list price for plan and cycle, or zero when
// the table has no entry.
func (d Defaults) ListPrice(plan pricing.Plan, cycle pricing.BillingCycle) decimal.Decimal {
	return d.Prices[PriceKey{Plan: plan, Cycle: cycle}]
}

// Keys returns every price table key in display order.
func Keys() []PriceKey {
	keys := make([]PriceKey, 0, len(pricing.Plans)*len(pricing.BillingCycles))
	for _, plan := range pricing.Plans {
		for _, cycle := range pricing.BillingCycles {
			keys = append(keys, PriceKey{Plan: plan, Cycle: cycle})
		}
	}
	return keys
}
