// Package quoteform turns user-editable form values into a validated
// pricing.Input. Every range check the engine relies on happens here.
package quoteform

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/margin/internal/catalog"
	"github.com/Simplici0/margin/internal/pricing"
	"github.com/Simplici0/margin/internal/profile"
)

// Form keys.
const (
	KeyProfile                   = "profile"
	KeyPlan                      = "plan"
	KeyBillingCycle              = "billing_cycle"
	KeyListPrice                 = "list_price"
	KeyDiscountType              = "discount_type"
	KeyDiscountValue             = "discount_value"
	KeyDurationMonths            = "duration_months"
	KeyAccountCount              = "account_count"
	KeyNewAccountsMonth1         = "new_accounts_month1"
	KeyLaborFirstMonthRate       = "labor_first_month_rate"
	KeyLaborFirstMonthHours      = "labor_first_month_hours"
	KeyLaborOngoingRate          = "labor_ongoing_rate"
	KeyLaborOngoingHours         = "labor_ongoing_hours"
	KeyContractorFirstMonthFlat  = "contractor_first_month_flat"
	KeyContractorFirstMonthRate  = "contractor_first_month_rate"
	KeyContractorFirstMonthHours = "contractor_first_month_hours"
	KeyContractorOngoingFlat     = "contractor_ongoing_flat"
	KeyContractorOngoingRate     = "contractor_ongoing_rate"
	KeyContractorOngoingHours    = "contractor_ongoing_hours"
	KeyMinMarginPct              = "min_margin_pct"
)

// ErrInvalidInput is wrapped by every ValidationError.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError reports the first rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DefaultInput returns the input a fresh form starts with under p.
func DefaultInput(d catalog.Defaults, p profile.Profile) pricing.Input {
	return defaultInput(p.Apply(d), p)
}

// defaultInput expects d to have p's overrides applied already.
func defaultInput(d catalog.Defaults, p profile.Profile) pricing.Input {
	plan := pricing.PlanPlus
	if allowed := p.AllowedPlans(); len(allowed) > 0 {
		plan = allowed[0]
	}

	in := pricing.Input{
		Plan:           plan,
		BillingCycle:   pricing.CycleMonthly,
		ListPrice:      d.ListPrice(plan, pricing.CycleMonthly),
		Discount:       pricing.Percent(decimal.Zero),
		DurationMonths: catalog.DefaultDurationMonths,
		Accounts:       catalog.DefaultAccounts,
		Labor:          d.Rates.Labor,
		MinMarginPct:   d.Rates.MinMarginPct,
	}
	if plan == pricing.PlanPremium {
		in.NewAccountsMonth1 = in.Accounts
		in.Contractor = d.Rates.Contractor
	}
	return in
}

// Parse builds an input from form. Fields p does not expose, and editable
// fields left blank, take their defaults.
func Parse(form url.Values, d catalog.Defaults, p profile.Profile) (pricing.Input, error) {
	d = p.Apply(d)
	in := defaultInput(d, p)

	get := func(field, key string) (string, bool) {
		if !p.CanEdit(field) {
			return "", false
		}
		raw := strings.TrimSpace(form.Get(key))
		return raw, raw != ""
	}

	if raw, ok := get(profile.FieldPlan, KeyPlan); ok {
		plan, err := pricing.ParsePlan(raw)
		if err != nil || !p.AllowsPlan(plan) {
			return in, invalid(KeyPlan, "is not offered: %q", raw)
		}
		in.Plan = plan
	}
	if raw, ok := get(profile.FieldBillingCycle, KeyBillingCycle); ok {
		cycle, err := pricing.ParseBillingCycle(raw)
		if err != nil {
			return in, invalid(KeyBillingCycle, "is not a billing cycle: %q", raw)
		}
		in.BillingCycle = cycle
	}

	in.ListPrice = d.ListPrice(in.Plan, in.BillingCycle)
	if raw, ok := get(profile.FieldListPrice, KeyListPrice); ok {
		v, err := parsePositive(raw, KeyListPrice)
		if err != nil {
			return in, err
		}
		in.ListPrice = v
	}

	if p.CanEdit(profile.FieldDiscount) {
		kind, err := pricing.ParseDiscountKind(form.Get(KeyDiscountType))
		if err != nil {
			return in, invalid(KeyDiscountType, "must be percentage or absolute")
		}
		value := decimal.Zero
		if raw := strings.TrimSpace(form.Get(KeyDiscountValue)); raw != "" {
			if kind == pricing.DiscountPercentage {
				value, err = parsePercent(raw, KeyDiscountValue)
			} else {
				value, err = parseNonNegative(raw, KeyDiscountValue)
			}
			if err != nil {
				return in, err
			}
		}
		in.Discount = pricing.Discount{Kind: kind, Value: value}
	}

	if raw, ok := get(profile.FieldDuration, KeyDurationMonths); ok {
		months, err := strconv.Atoi(raw)
		if err != nil || !pricing.ValidDuration(months) {
			return in, invalid(KeyDurationMonths, "must be one of %v", pricing.Durations)
		}
		in.DurationMonths = months
	}
	if raw, ok := get(profile.FieldAccounts, KeyAccountCount); ok {
		n, err := parseCount(raw, KeyAccountCount)
		if err != nil {
			return in, err
		}
		if n < 1 {
			return in, invalid(KeyAccountCount, "must be at least 1")
		}
		in.Accounts = n
	}

	var err error
	if in.Labor.FirstMonth, err = parseHourly(get, profile.FieldLaborFirstMonth, KeyLaborFirstMonthRate, KeyLaborFirstMonthHours, in.Labor.FirstMonth); err != nil {
		return in, err
	}
	if in.Labor.Ongoing, err = parseHourly(get, profile.FieldLaborOngoing, KeyLaborOngoingRate, KeyLaborOngoingHours, in.Labor.Ongoing); err != nil {
		return in, err
	}

	// Premium-only inputs are not read for other plans.
	if in.Plan == pricing.PlanPremium {
		in.Contractor = d.Rates.Contractor
		in.NewAccountsMonth1 = in.Accounts
		if raw, ok := get(profile.FieldNewAccounts, KeyNewAccountsMonth1); ok {
			n, err := parseCount(raw, KeyNewAccountsMonth1)
			if err != nil {
				return in, err
			}
			in.NewAccountsMonth1 = n
		}
		if in.Contractor.FirstMonth, err = parseFee(get, profile.FieldContractorFirstMonth, KeyContractorFirstMonthFlat, KeyContractorFirstMonthRate, KeyContractorFirstMonthHours, in.Contractor.FirstMonth); err != nil {
			return in, err
		}
		if in.Contractor.Ongoing, err = parseFee(get, profile.FieldContractorOngoing, KeyContractorOngoingFlat, KeyContractorOngoingRate, KeyContractorOngoingHours, in.Contractor.Ongoing); err != nil {
			return in, err
		}
	} else {
		in.NewAccountsMonth1 = 0
		in.Contractor = pricing.Contractor{}
	}

	if raw, ok := get(profile.FieldMinMargin, KeyMinMarginPct); ok {
		v, err := parsePercent(raw, KeyMinMarginPct)
		if err != nil {
			return in, err
		}
		in.MinMarginPct = v
	}

	return in, Validate(in)
}

type getter func(field, key string) (string, bool)

func parseHourly(get getter, field, rateKey, hoursKey string, h pricing.Hourly) (pricing.Hourly, error) {
	var err error
	if raw, ok := get(field, rateKey); ok {
		if h.Rate, err = parseNonNegative(raw, rateKey); err != nil {
			return h, err
		}
	}
	if raw, ok := get(field, hoursKey); ok {
		if h.Hours, err = parseNonNegative(raw, hoursKey); err != nil {
			return h, err
		}
	}
	return h, nil
}

func parseFee(get getter, field, flatKey, rateKey, hoursKey string, f pricing.Fee) (pricing.Fee, error) {
	var err error
	if raw, ok := get(field, flatKey); ok {
		if f.Flat, err = parseNonNegative(raw, flatKey); err != nil {
			return f, err
		}
	}
	f.Hourly, err = parseHourly(get, field, rateKey, hoursKey, f.Hourly)
	return f, err
}

// Validate checks every range the engine assumes.
func Validate(in pricing.Input) error {
	if _, err := pricing.ParsePlan(string(in.Plan)); err != nil {
		return invalid(KeyPlan, "is not a plan: %q", in.Plan)
	}
	if _, err := pricing.ParseBillingCycle(string(in.BillingCycle)); err != nil {
		return invalid(KeyBillingCycle, "is not a billing cycle: %q", in.BillingCycle)
	}
	if !in.ListPrice.IsPositive() {
		return invalid(KeyListPrice, "must be greater than 0")
	}
	switch in.Discount.Kind {
	case pricing.DiscountPercentage:
		if in.Discount.Value.IsNegative() || in.Discount.Value.GreaterThan(decimal.NewFromInt(100)) {
			return invalid(KeyDiscountValue, "must be between 0 and 100")
		}
	case pricing.DiscountAbsolute:
		if in.Discount.Value.IsNegative() {
			return invalid(KeyDiscountValue, "must be greater than or equal to 0")
		}
	default:
		return invalid(KeyDiscountType, "must be percentage or absolute")
	}
	if !pricing.ValidDuration(in.DurationMonths) {
		return invalid(KeyDurationMonths, "must be one of %v", pricing.Durations)
	}
	if in.Accounts < 1 {
		return invalid(KeyAccountCount, "must be at least 1")
	}
	if in.MinMarginPct.IsNegative() || in.MinMarginPct.GreaterThan(decimal.NewFromInt(100)) {
		return invalid(KeyMinMarginPct, "must be between 0 and 100")
	}

	nonNegative := []struct {
		key string
		v   decimal.Decimal
	}{
		{KeyLaborFirstMonthRate, in.Labor.FirstMonth.Rate},
		{KeyLaborFirstMonthHours, in.Labor.FirstMonth.Hours},
		{KeyLaborOngoingRate, in.Labor.Ongoing.Rate},
		{KeyLaborOngoingHours, in.Labor.Ongoing.Hours},
	}

	if in.Plan == pricing.PlanPremium {
		if in.NewAccountsMonth1 < 0 || in.NewAccountsMonth1 > in.Accounts {
			return invalid(KeyNewAccountsMonth1, "must be between 0 and %d", in.Accounts)
		}
		nonNegative = append(nonNegative, []struct {
			key string
			v   decimal.Decimal
		}{
			{KeyContractorFirstMonthFlat, in.Contractor.FirstMonth.Flat},
			{KeyContractorFirstMonthRate, in.Contractor.FirstMonth.Hourly.Rate},
			{KeyContractorFirstMonthHours, in.Contractor.FirstMonth.Hourly.Hours},
			{KeyContractorOngoingFlat, in.Contractor.Ongoing.Flat},
			{KeyContractorOngoingRate, in.Contractor.Ongoing.Hourly.Rate},
			{KeyContractorOngoingHours, in.Contractor.Ongoing.Hourly.Hours},
		}...)
	}

	for _, f := range nonNegative {
		if f.v.IsNegative() {
			return invalid(f.key, "must be greater than or equal to 0")
		}
	}
	return nil
}

// Encode renders in as form values.
func Encode(in pricing.Input) url.Values {
	v := url.Values{}
	v.Set(KeyPlan, string(in.Plan))
	v.Set(KeyBillingCycle, string(in.BillingCycle))
	v.Set(KeyListPrice, in.ListPrice.String())
	v.Set(KeyDiscountType, string(in.Discount.Kind))
	v.Set(KeyDiscountValue, in.Discount.Value.String())
	v.Set(KeyDurationMonths, strconv.Itoa(in.DurationMonths))
	v.Set(KeyAccountCount, strconv.Itoa(in.Accounts))
	v.Set(KeyNewAccountsMonth1, strconv.Itoa(in.NewAccountsMonth1))
	v.Set(KeyLaborFirstMonthRate, in.Labor.FirstMonth.Rate.String())
	v.Set(KeyLaborFirstMonthHours, in.Labor.FirstMonth.Hours.String())
	v.Set(KeyLaborOngoingRate, in.Labor.Ongoing.Rate.String())
	v.Set(KeyLaborOngoingHours, in.Labor.Ongoing.Hours.String())
	v.Set(KeyContractorFirstMonthFlat, in.Contractor.FirstMonth.Flat.String())
	v.Set(KeyContractorFirstMonthRate, in.Contractor.FirstMonth.Hourly.Rate.String())
	v.Set(KeyContractorFirstMonthHours, in.Contractor.FirstMonth.Hourly.Hours.String())
	v.Set(KeyContractorOngoingFlat, in.Contractor.Ongoing.Flat.String())
	v.Set(KeyContractorOngoingRate, in.Contractor.Ongoing.Hourly.Rate.String())
	v.Set(KeyContractorOngoingHours, in.Contractor.Ongoing.Hourly.Hours.String())
	v.Set(KeyMinMarginPct, in.MinMarginPct.String())
	return v
}

// Bounds on user-supplied amounts. The exponent is checked before any
// comparison so a value like 1e20000000 is never expanded.
const (
	maxInputLen = 32
	minExponent = -10
	maxExponent = 12
)

var maxAmount = decimal.New(1, maxExponent)

func parseDecimal(raw, field string) (decimal.Decimal, error) {
	if len(raw) > maxInputLen {
		return decimal.Zero, invalid(field, "is too long")
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, invalid(field, "must be numeric")
	}
	if exp := value.Exponent(); exp < minExponent {
		return decimal.Zero, invalid(field, "has too many decimal places")
	} else if exp > maxExponent || value.Abs().GreaterThan(maxAmount) {
		return decimal.Zero, invalid(field, "must not exceed %s", maxAmount)
	}
	return value, nil
}

func parseNonNegative(raw, field string) (decimal.Decimal, error) {
	value, err := parseDecimal(raw, field)
	if err != nil {
		return decimal.Zero, err
	}
	if value.IsNegative() {
		return decimal.Zero, invalid(field, "must be greater than or equal to 0")
	}
	return value, nil
}

func parsePercent(raw, field string) (decimal.Decimal, error) {
	value, err := parseNonNegative(raw, field)
	if err != nil {
		return decimal.Zero, err
	}
	if value.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, invalid(field, "must be between 0 and 100")
	}
	return value, nil
}

func parsePositive(raw, field string) (decimal.Decimal, error) {
	value, err := parseDecimal(raw, field)
	if err != nil {
		return decimal.Zero, err
	}
	if !value.IsPositive() {
		return decimal.Zero, invalid(field, "must be greater than 0")
	}
	return value, nil
}

func parseCount(raw, field string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid(field, "must be a whole number")
	}
	if n < 0 {
		return 0, invalid(field, "must be greater than or equal to 0")
	}
	return n, nil
}
