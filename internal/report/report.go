// Package report turns a calculation into display values: formatted
// metrics, the itemized cost breakdown, the threshold meter and the
// pass/fail banner.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/margin/internal/pricing"
)

// Line is one row of the cost breakdown.
type Line struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
	Total  bool   `json:"total,omitempty"`
}

// Metric is a labelled headline value.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Banner is the threshold verdict.
type Banner struct {
	Pass    bool   `json:"pass"`
	Message string `json:"message"`
}

// Report is everything the calculator shows for one calculation.
type Report struct {
	Metrics   []Metric `json:"metrics"`
	Breakdown []Line   `json:"breakdown"`
	Progress  float64  `json:"progress"`
	Delta     string   `json:"delta"`
	Banner    Banner   `json:"banner"`
}

// Currency formats d as dollars with a thousands separator and two decimals.
func Currency(d decimal.Decimal) string {
	rounded := d.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", rounded.InexactFloat64())
}

// Percent formats d with two decimals and a percent sign.
func Percent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// Progress returns margin/minimum clamped to [0, 1]. A zero minimum yields 0.
func Progress(marginPct, minMarginPct decimal.Decimal) float64 {
	if minMarginPct.IsZero() {
		return 0
	}
	ratio := marginPct.Div(minMarginPct)
	if ratio.IsNegative() {
		return 0
	}
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		return 1
	}
	return ratio.InexactFloat64()
}

// Verdict builds the pass/fail banner.
func Verdict(out pricing.Output, minMarginPct decimal.Decimal) Banner {
	if out.MeetsMinimum {
		return Banner{Pass: true, Message: fmt.Sprintf("Margin meets or exceeds %s%%.", minMarginPct.String())}
	}
	return Banner{Message: fmt.Sprintf("Margin below %s%%! Adjust discount or cost.", minMarginPct.String())}
}

// Breakdown lists labor first, contractor cost only for Premium quotes that
// carry one, and the total last.
func Breakdown(plan pricing.Plan, out pricing.Output) []Line {
	lines := []Line{{Label: "Labor", Amount: Currency(out.LaborCost)}}
	if plan == pricing.PlanPremium && out.ContractorCost.IsPositive() {
		lines = append(lines, Line{Label: "Contractor", Amount: Currency(out.ContractorCost)})
	}
	return append(lines, Line{Label: "Total cost", Amount: Currency(out.TotalCost), Total: true})
}

// Build assembles the full report for in and its computed output.
func Build(in pricing.Input, out pricing.Output) Report {
	return Report{
		Metrics: []Metric{
			{Label: "List Price", Value: Currency(in.ListPrice)},
			{Label: "Net Price", Value: Currency(out.NetPricePerCycle)},
			{Label: "Total Contract Value", Value: Currency(out.TotalContractValue)},
			{Label: "Revenue", Value: Currency(out.TotalRevenue)},
			{Label: "Cost", Value: Currency(out.TotalCost)},
			{Label: "Margin %", Value: Percent(out.MarginPct)},
		},
		Breakdown: Breakdown(in.Plan, out),
		Progress:  Progress(out.MarginPct, in.MinMarginPct),
		Delta:     signed(out.MarginPct.Sub(in.MinMarginPct)),
		Banner:    Verdict(out, in.MinMarginPct),
	}
}

func signed(d decimal.Decimal) string {
	if d.IsNegative() {
		return Percent(d)
	}
	return "+" + Percent(d)
}

// WriteText renders r as a plain-text table.
func (r Report) WriteText(w io.Writer) error {
	var b strings.Builder

	for _, m := range r.Metrics {
		fmt.Fprintf(&b, "%-22s %16s\n", m.Label, m.Value)
	}
	fmt.Fprintf(&b, "%-22s %16s\n", "Delta vs minimum", r.Delta)

	b.WriteString("\nCost breakdown\n")
	for _, l := range r.Breakdown {
		if l.Total {
			b.WriteString(strings.Repeat("-", 39) + "\n")
		}
		fmt.Fprintf(&b, "  %-20s %16s\n", l.Label, l.Amount)
	}

	const width = 30
	filled := int(r.Progress * width)
	fmt.Fprintf(&b, "\nMargin threshold [%s%s] %3.0f%%\n",
		strings.Repeat("#", filled), strings.Repeat(".", width-filled), r.Progress*100)

	mark := "FAIL"
	if r.Banner.Pass {
		mark = "PASS"
	}
	fmt.Fprintf(&b, "%s: %s\n", mark, r.Banner.Message)

	_, err := io.WriteString(w, b.String())
	return err
}

// Result is the machine-readable form of one calculation.
type Result struct {
	Profile            string               `json:"profile"`
	Plan               pricing.Plan         `json:"plan"`
	BillingCycle       pricing.BillingCycle `json:"billing_cycle"`
	ListPrice          decimal.Decimal      `json:"list_price"`
	NetPricePerCycle   decimal.Decimal      `json:"net_price_per_cycle"`
	Cycles             decimal.Decimal      `json:"cycles"`
	TotalContractValue decimal.Decimal      `json:"total_contract_value"`
	TotalRevenue       decimal.Decimal      `json:"total_revenue"`
	LaborCost          decimal.Decimal      `json:"labor_cost"`
	ContractorCost     decimal.Decimal      `json:"contractor_cost"`
	TotalCost          decimal.Decimal      `json:"total_cost"`
	MarginPct          decimal.Decimal      `json:"margin_pct"`
	MinMarginPct       decimal.Decimal      `json:"min_margin_pct"`
	MeetsMinimum       bool                 `json:"meets_minimum"`
	Report             Report               `json:"report"`
}

func NewResult(profile string, in pricing.Input, out pricing.Output) Result {
	return Result{
		Profile:            profile,
		Plan:               in.Plan,
		BillingCycle:       in.BillingCycle,
		ListPrice:          in.ListPrice,
		NetPricePerCycle:   out.NetPricePerCycle,
		Cycles:             out.Cycles,
		TotalContractValue: out.TotalContractValue,
		TotalRevenue:       out.TotalRevenue,
		LaborCost:          out.LaborCost,
		ContractorCost:     out.ContractorCost,
		TotalCost:          out.TotalCost,
		MarginPct:          out.MarginPct,
		MinMarginPct:       in.MinMarginPct,
		MeetsMinimum:       out.MeetsMinimum,
		Report:             Build(in, out),
	}
}
