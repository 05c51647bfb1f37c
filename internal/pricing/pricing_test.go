package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func equalDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s = %s, want %s", name, got.String(), want)
	}
}

func standardLabor() Labor {
	return Labor{
		FirstMonth: Hourly{Rate: dec("137.75"), Hours: dec("1")},
		Ongoing:    Hourly{Rate: dec("137.75"), Hours: dec("1")},
	}
}

func TestCompute_ScenarioA_PlusMonthlySingleAccount(t *testing.T) {
	in := Input{
		Plan:           PlanPlus,
		BillingCycle:   CycleMonthly,
		ListPrice:      dec("500"),
		Discount:       Percent(decimal.Zero),
		DurationMonths: 1,
		Accounts:       1,
		Labor: Labor{
			FirstMonth: Hourly{Rate: dec("137.75"), Hours: dec("2")},
			Ongoing:    Hourly{Rate: dec("137.75"), Hours: dec("1")},
		},
		MinMarginPct: dec("40"),
	}

	out := Compute(in)

	equalDecimal(t, "net", out.NetPricePerCycle, "500")
	equalDecimal(t, "tcv", out.TotalContractValue, "500")
	equalDecimal(t, "revenue", out.TotalRevenue, "500")
	equalDecimal(t, "labor", out.LaborCost, "275.5")
	equalDecimal(t, "contractor", out.ContractorCost, "0")
	equalDecimal(t, "total cost", out.TotalCost, "275.5")
	equalDecimal(t, "margin", out.MarginPct, "44.9")
	if !out.MeetsMinimum {
		t.Fatalf("expected margin 44.9 to meet minimum 40")
	}
}

func TestCompute_ScenarioB_PremiumYearlyAllNewAccounts(t *testing.T) {
	in := Input{
		Plan:              PlanPremium,
		BillingCycle:      CycleYearly,
		ListPrice:         dec("17000"),
		Discount:          Percent(dec("10")),
		DurationMonths:    12,
		Accounts:          3,
		NewAccountsMonth1: 3,
		Labor:             standardLabor(),
		Contractor: Contractor{
			FirstMonth: Fee{Flat: dec("300")},
			Ongoing:    Fee{Flat: dec("200")},
		},
		MinMarginPct: dec("40"),
	}

	out := Compute(in)

	equalDecimal(t, "net", out.NetPricePerCycle, "15300")
	equalDecimal(t, "cycles", out.Cycles, "1")
	equalDecimal(t, "tcv", out.TotalContractValue, "51000")
	equalDecimal(t, "revenue", out.TotalRevenue, "45900")
	equalDecimal(t, "contractor", out.ContractorCost, "900")
	// 137.75*3 + 137.75*3*11
	equalDecimal(t, "labor", out.LaborCost, "4959")
	equalDecimal(t, "total cost", out.TotalCost, "5859")
	equalDecimal(t, "margin", out.MarginPct.Round(4), "87.2353")
	if !out.MeetsMinimum {
		t.Fatalf("expected margin to meet minimum")
	}
}

func TestCompute_ScenarioC_PartialYearlyCycle(t *testing.T) {
	in := Input{
		Plan:           PlanPlus,
		BillingCycle:   CycleYearly,
		ListPrice:      dec("6000"),
		Discount:       Percent(decimal.Zero),
		DurationMonths: 1,
		Accounts:       2,
	}

	out := Compute(in)

	equalDecimal(t, "cycles*12", out.Cycles.Mul(dec("12")).Round(10), "1")
	equalDecimal(t, "tcv", out.TotalContractValue, "1000")
	equalDecimal(t, "revenue", out.TotalRevenue, "1000")
}

func TestCompute_ScenarioD_AbsoluteDiscountClampsAtZero(t *testing.T) {
	in := Input{
		Plan:           PlanPlus,
		BillingCycle:   CycleMonthly,
		ListPrice:      dec("500"),
		Discount:       Amount(dec("750")),
		DurationMonths: 6,
		Accounts:       4,
		Labor:          standardLabor(),
		MinMarginPct:   dec("40"),
	}

	out := Compute(in)

	equalDecimal(t, "net", out.NetPricePerCycle, "0")
	equalDecimal(t, "revenue", out.TotalRevenue, "0")
	equalDecimal(t, "tcv", out.TotalContractValue, "12000")
	equalDecimal(t, "margin", out.MarginPct, "0")
	if out.MeetsMinimum {
		t.Fatalf("expected zero margin to miss minimum 40")
	}
}

func TestCompute_ContractorIgnoredOutsidePremium(t *testing.T) {
	contractor := Contractor{
		FirstMonth: Fee{Flat: dec("300"), Hourly: Hourly{Rate: dec("90"), Hours: dec("4")}},
		Ongoing:    Fee{Flat: dec("200")},
	}
	in := Input{
		Plan:              PlanPlus,
		BillingCycle:      CycleMonthly,
		ListPrice:         dec("500"),
		DurationMonths:    12,
		Accounts:          5,
		NewAccountsMonth1: 5,
		Contractor:        contractor,
	}

	out := Compute(in)

	equalDecimal(t, "contractor", out.ContractorCost, "0")
	equalDecimal(t, "total cost", out.TotalCost, "0")
}

func TestCompute_ContractorOngoingChargesOnlyExistingAccounts(t *testing.T) {
	in := Input{
		Plan:              PlanPremium,
		BillingCycle:      CycleMonthly,
		ListPrice:         dec("1416"),
		DurationMonths:    6,
		Accounts:          5,
		NewAccountsMonth1: 2,
		Contractor: Contractor{
			FirstMonth: Fee{Flat: dec("300")},
			Ongoing:    Fee{Flat: dec("200")},
		},
	}

	out := Compute(in)

	// 2*300 + (5-2)*200*5
	equalDecimal(t, "contractor", out.ContractorCost, "3600")
}

func TestCompute_ContractorHourlyCharge(t *testing.T) {
	in := Input{
		Plan:              PlanPremium,
		BillingCycle:      CycleMonthly,
		ListPrice:         dec("1416"),
		DurationMonths:    1,
		Accounts:          2,
		NewAccountsMonth1: 2,
		Contractor: Contractor{
			FirstMonth: Fee{Flat: dec("50"), Hourly: Hourly{Rate: dec("80"), Hours: dec("2.5")}},
		},
	}

	out := Compute(in)

	equalDecimal(t, "contractor", out.ContractorCost, "500")
}

func TestCompute_SingleMonthHasNoOngoingCost(t *testing.T) {
	in := Input{
		Plan:              PlanPremium,
		BillingCycle:      CycleMonthly,
		ListPrice:         dec("1416"),
		DurationMonths:    1,
		Accounts:          3,
		NewAccountsMonth1: 1,
		Labor: Labor{
			FirstMonth: Hourly{Rate: dec("100"), Hours: dec("1")},
			Ongoing:    Hourly{Rate: dec("999"), Hours: dec("9")},
		},
		Contractor: Contractor{
			FirstMonth: Fee{Flat: dec("300")},
			Ongoing:    Fee{Flat: dec("200")},
		},
	}

	out := Compute(in)

	equalDecimal(t, "labor", out.LaborCost, "300")
	equalDecimal(t, "contractor", out.ContractorCost, "300")
}

func TestCompute_TotalCostRoundsSumOnce(t *testing.T) {
	in := Input{
		Plan:              PlanPremium,
		BillingCycle:      CycleMonthly,
		ListPrice:         dec("100"),
		DurationMonths:    1,
		Accounts:          1,
		NewAccountsMonth1: 1,
		Labor:             Labor{FirstMonth: Hourly{Rate: dec("0.004"), Hours: dec("1")}},
		Contractor:        Contractor{FirstMonth: Fee{Flat: dec("0.004")}},
	}

	out := Compute(in)

	equalDecimal(t, "labor", out.LaborCost, "0.004")
	equalDecimal(t, "contractor", out.ContractorCost, "0.004")
	equalDecimal(t, "total cost", out.TotalCost, "0.01")
	if !out.TotalCost.Equal(out.LaborCost.Add(out.ContractorCost).Round(2)) {
		t.Fatalf("total cost %s is not the rounded sum", out.TotalCost)
	}
}

func TestCompute_NegativeMarginIsNotClamped(t *testing.T) {
	in := Input{
		Plan:           PlanPlus,
		BillingCycle:   CycleMonthly,
		ListPrice:      dec("100"),
		DurationMonths: 1,
		Accounts:       1,
		Labor:          Labor{FirstMonth: Hourly{Rate: dec("150"), Hours: dec("1")}},
	}

	out := Compute(in)

	equalDecimal(t, "margin", out.MarginPct, "-50")
	if out.MeetsMinimum {
		t.Fatalf("negative margin must not meet a zero minimum")
	}
}

func TestCompute_ZeroRevenueMeetsZeroMinimum(t *testing.T) {
	in := Input{
		Plan:           PlanPlus,
		BillingCycle:   CycleMonthly,
		ListPrice:      dec("500"),
		Discount:       Percent(dec("100")),
		DurationMonths: 12,
		Accounts:       1,
		Labor:          standardLabor(),
	}

	out := Compute(in)

	equalDecimal(t, "revenue", out.TotalRevenue, "0")
	equalDecimal(t, "margin", out.MarginPct, "0")
	if !out.MeetsMinimum {
		t.Fatalf("margin 0 should meet minimum 0")
	}
}

func TestCompute_IsDeterministic(t *testing.T) {
	in := Input{
		Plan:              PlanPremium,
		BillingCycle:      CycleSixMonth,
		ListPrice:         dec("8071.2"),
		Discount:          Amount(dec("71.2")),
		DurationMonths:    24,
		Accounts:          7,
		NewAccountsMonth1: 4,
		Labor:             standardLabor(),
		Contractor:        Contractor{FirstMonth: Fee{Flat: dec("300")}, Ongoing: Fee{Flat: dec("200")}},
		MinMarginPct:      dec("40"),
	}

	first := Compute(in)
	second := Compute(in)

	if !first.TotalRevenue.Equal(second.TotalRevenue) ||
		!first.TotalCost.Equal(second.TotalCost) ||
		!first.MarginPct.Equal(second.MarginPct) ||
		first.MeetsMinimum != second.MeetsMinimum {
		t.Fatalf("compute is not deterministic: %+v vs %+v", first, second)
	}
	equalDecimal(t, "net", first.NetPricePerCycle, "8000")
	equalDecimal(t, "cycles", first.Cycles, "4")
	equalDecimal(t, "revenue", first.TotalRevenue, "224000")
}

func TestDiscount_NeverRaisesPrice(t *testing.T) {
	list := dec("1416")
	cases := []Discount{
		Percent(decimal.Zero),
		Percent(dec("12.5")),
		Percent(dec("100")),
		Amount(decimal.Zero),
		Amount(dec("16")),
		Amount(dec("1416")),
		Amount(dec("99999")),
	}

	for _, d := range cases {
		net := d.Apply(list)
		if net.GreaterThan(list) {
			t.Fatalf("%+v: net %s exceeds list %s", d, net, list)
		}
		if net.IsNegative() {
			t.Fatalf("%+v: net %s is negative", d, net)
		}
	}
}

func TestParseBillingCycle(t *testing.T) {
	cases := map[string]BillingCycle{
		"monthly":   CycleMonthly,
		"six_month": CycleSixMonth,
		"6m":        CycleSixMonth,
		"Yearly":    CycleYearly,
		"annual":    CycleYearly,
	}
	for raw, want := range cases {
		got, err := ParseBillingCycle(raw)
		if err != nil {
			t.Fatalf("ParseBillingCycle(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseBillingCycle(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := ParseBillingCycle("weekly"); err == nil {
		t.Fatalf("expected error for unknown cycle")
	}
	if _, err := ParsePlan("enterprise"); err == nil {
		t.Fatalf("expected error for unknown plan")
	}
}
