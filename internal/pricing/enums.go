package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Plan is a subscription plan.
type Plan string

const (
	PlanPlus    Plan = "plus"
	PlanPremium Plan = "premium"
)

// Plans lists every plan in display order.
var Plans = []Plan{PlanPlus, PlanPremium}

// Label returns the name shown to users.
func (p Plan) Label() string {
	switch p {
	case PlanPlus:
		return "Plus (Accelerator + Launchpad)"
	case PlanPremium:
		return "Premium (Launchpad Premium)"
	default:
		return string(p)
	}
}

// ParsePlan accepts a plan identifier, case-insensitively.
func ParsePlan(s string) (Plan, error) {
	switch Plan(strings.ToLower(strings.TrimSpace(s))) {
	case PlanPlus:
		return PlanPlus, nil
	case PlanPremium:
		return PlanPremium, nil
	}
	return "", fmt.Errorf("unknown plan %q", s)
}

// BillingCycle is the billing period of a subscription.
type BillingCycle string

const (
	CycleMonthly  BillingCycle = "monthly"
	CycleSixMonth BillingCycle = "six_month"
	CycleYearly   BillingCycle = "yearly"
)

// BillingCycles lists every cycle in display order.
var BillingCycles = []BillingCycle{CycleMonthly, CycleSixMonth, CycleYearly}

// Months returns the cycle length in months.
func (c BillingCycle) Months() int {
	switch c {
	case CycleSixMonth:
		return 6
	case CycleYearly:
		return 12
	default:
		return 1
	}
}

func (c BillingCycle) Label() string {
	switch c {
	case CycleMonthly:
		return "Monthly"
	case CycleSixMonth:
		return "6-Month Prepaid"
	case CycleYearly:
		return "Yearly Prepaid"
	default:
		return string(c)
	}
}

// ParseBillingCycle accepts a cycle identifier. "6m", "semiannual" and "annual"
// are accepted as aliases.
func ParseBillingCycle(s string) (BillingCycle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly", "1m":
		return CycleMonthly, nil
	case "six_month", "6m", "semiannual":
		return CycleSixMonth, nil
	case "yearly", "12m", "annual":
		return CycleYearly, nil
	}
	return "", fmt.Errorf("unknown billing cycle %q", s)
}

// Durations are the supported analysis horizons in months.
var Durations = []int{1, 6, 12, 24}

// ValidDuration reports whether months is a supported analysis horizon.
func ValidDuration(months int) bool {
	for _, d := range Durations {
		if d == months {
			return true
		}
	}
	return false
}

// DiscountKind selects how a Discount value is interpreted.
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountAbsolute   DiscountKind = "absolute"
)

func ParseDiscountKind(s string) (DiscountKind, error) {
	switch DiscountKind(strings.ToLower(strings.TrimSpace(s))) {
	case DiscountPercentage, "percent", "pct", "":
		return DiscountPercentage, nil
	case DiscountAbsolute, "amount":
		return DiscountAbsolute, nil
	}
	return "", fmt.Errorf("unknown discount type %q", s)
}

// Discount is either a percentage (0-100) or an absolute amount off the list price.
type Discount struct {
	Kind  DiscountKind
	Value decimal.Decimal
}

// Percent returns a percentage discount.
func Percent(p decimal.Decimal) Discount {
	return Discount{Kind: DiscountPercentage, Value: p}
}

// Amount returns an absolute discount.
func Amount(a decimal.Decimal) Discount {
	return Discount{Kind: DiscountAbsolute, Value: a}
}

// Apply returns the net price for listPrice. An absolute discount larger than
// the list price yields zero.
func (d Discount) Apply(listPrice decimal.Decimal) decimal.Decimal {
	if d.Kind == DiscountAbsolute {
		return decimal.Max(listPrice.Sub(d.Value), decimal.Zero)
	}
	return listPrice.Mul(decimal.NewFromInt(1).Sub(d.Value.Div(hundred)))
}
