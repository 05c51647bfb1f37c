package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Hourly is a rate charged per hour for a number of hours per account.
type Hourly struct {
	Rate  decimal.Decimal
	Hours decimal.Decimal
}

// Amount returns the per-account charge.
func (h Hourly) Amount() decimal.Decimal {
	return h.Rate.Mul(h.Hours)
}

// Labor holds internal support-time parameters, split between the first month
// of service and every month after it.
type Labor struct {
	FirstMonth Hourly
	Ongoing    Hourly
}

// Fee is a per-account contractor charge: a flat amount plus optional billed hours.
type Fee struct {
	Flat   decimal.Decimal
	Hourly Hourly
}

// Amount returns the per-account charge.
func (f Fee) Amount() decimal.Decimal {
	return f.Flat.Add(f.Hourly.Amount())
}

// Contractor holds the external onboarding and maintenance charges that apply
// to Premium accounts only.
type Contractor struct {
	FirstMonth Fee
	Ongoing    Fee
}

// Input is the snapshot of commercial inputs for one calculation.
// Callers validate it before calling Compute.
type Input struct {
	Plan              Plan
	BillingCycle      BillingCycle
	ListPrice         decimal.Decimal
	Discount          Discount
	DurationMonths    int
	Accounts          int
	NewAccountsMonth1 int
	Labor             Labor
	Contractor        Contractor
	MinMarginPct      decimal.Decimal
}

// Output contains every derived value of a calculation.
type Output struct {
	NetPricePerCycle   decimal.Decimal
	Cycles             decimal.Decimal
	TotalContractValue decimal.Decimal
	TotalRevenue       decimal.Decimal
	LaborCost          decimal.Decimal
	ContractorCost     decimal.Decimal
	TotalCost          decimal.Decimal
	MarginPct          decimal.Decimal
	MeetsMinimum       bool
}

// Compute derives revenue, cost and margin from in. It has no error paths.
func Compute(in Input) Output {
	net := in.Discount.Apply(in.ListPrice)

	accounts := decimal.NewFromInt(int64(in.Accounts))
	duration := decimal.NewFromInt(int64(in.DurationMonths))
	cycleMonths := decimal.NewFromInt(int64(in.BillingCycle.Months()))

	// Multiply before dividing so a partial cycle stays exact at currency precision.
	tcv := in.ListPrice.Mul(accounts).Mul(duration).Div(cycleMonths)
	revenue := net.Mul(accounts).Mul(duration).Div(cycleMonths)

	labor := laborCost(in.Labor, accounts, ongoingMonths(in.DurationMonths))

	contractor := decimal.Zero
	if in.Plan == PlanPremium {
		contractor = contractorCost(in.Contractor, in.Accounts, in.NewAccountsMonth1, ongoingMonths(in.DurationMonths))
	}

	totalCost := labor.Add(contractor).Round(2)

	margin := decimal.Zero
	if revenue.IsPositive() {
		margin = revenue.Sub(totalCost).Mul(hundred).Div(revenue)
	}

	return Output{
		NetPricePerCycle:   net,
		Cycles:             duration.Div(cycleMonths),
		TotalContractValue: tcv,
		TotalRevenue:       revenue,
		LaborCost:          labor,
		ContractorCost:     contractor,
		TotalCost:          totalCost,
		MarginPct:          margin,
		MeetsMinimum:       margin.GreaterThanOrEqual(in.MinMarginPct),
	}
}

func ongoingMonths(durationMonths int) decimal.Decimal {
	return decimal.NewFromInt(int64(max(durationMonths-1, 0)))
}

func laborCost(l Labor, accounts, ongoing decimal.Decimal) decimal.Decimal {
	first := l.FirstMonth.Amount().Mul(accounts)
	rest := l.Ongoing.Amount().Mul(accounts).Mul(ongoing)
	return first.Add(rest)
}

// contractorCost charges the first-month fee to the onboarding cohort and the
// ongoing fee to the remaining accounts for every month after the first.
func contractorCost(c Contractor, accounts, newAccounts int, ongoing decimal.Decimal) decimal.Decimal {
	onboarding := decimal.NewFromInt(int64(newAccounts))
	existing := decimal.NewFromInt(int64(accounts - newAccounts))

	first := c.FirstMonth.Amount().Mul(onboarding)
	rest := c.Ongoing.Amount().Mul(existing).Mul(ongoing)
	return first.Add(rest)
}
