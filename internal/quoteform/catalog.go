package quoteform

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/margin/internal/catalog"
)

// PriceField is the form key holding the list price for key.
func PriceField(key catalog.PriceKey) string {
	return "price_" + string(key.Plan) + "_" + string(key.Cycle)
}

// ParsePrices reads every price table cell present in form. Blank cells are skipped.
func ParsePrices(form url.Values) (map[catalog.PriceKey]decimal.Decimal, error) {
	prices := make(map[catalog.PriceKey]decimal.Decimal)
	for _, key := range catalog.Keys() {
		field := PriceField(key)
		raw := strings.TrimSpace(form.Get(field))
		if raw == "" {
			continue
		}
		price, err := parsePositive(raw, field)
		if err != nil {
			return nil, err
		}
		prices[key] = price
	}
	return prices, nil
}

// ParseRates reads the catalog rate form. Every field is required.
func ParseRates(form url.Values) (catalog.Rates, error) {
	var r catalog.Rates

	fields := []struct {
		key string
		dst *decimal.Decimal
	}{
		{KeyLaborFirstMonthRate, &r.Labor.FirstMonth.Rate},
		{KeyLaborFirstMonthHours, &r.Labor.FirstMonth.Hours},
		{KeyLaborOngoingRate, &r.Labor.Ongoing.Rate},
		{KeyLaborOngoingHours, &r.Labor.Ongoing.Hours},
		{KeyContractorFirstMonthFlat, &r.Contractor.FirstMonth.Flat},
		{KeyContractorFirstMonthRate, &r.Contractor.FirstMonth.Hourly.Rate},
		{KeyContractorFirstMonthHours, &r.Contractor.FirstMonth.Hourly.Hours},
		{KeyContractorOngoingFlat, &r.Contractor.Ongoing.Flat},
		{KeyContractorOngoingRate, &r.Contractor.Ongoing.Hourly.Rate},
		{KeyContractorOngoingHours, &r.Contractor.Ongoing.Hourly.Hours},
	}
	for _, f := range fields {
		v, err := parseNonNegative(strings.TrimSpace(form.Get(f.key)), f.key)
		if err != nil {
			return r, err
		}
		*f.dst = v
	}

	var err error
	if r.MinMarginPct, err = parsePercent(strings.TrimSpace(form.Get(KeyMinMarginPct)), KeyMinMarginPct); err != nil {
		return r, err
	}
	return r, nil
}

// EncodeRates renders r with the same keys ParseRates reads.
func EncodeRates(r catalog.Rates) url.Values {
	v := url.Values{}
	v.Set(KeyLaborFirstMonthRate, r.Labor.FirstMonth.Rate.String())
	v.Set(KeyLaborFirstMonthHours, r.Labor.FirstMonth.Hours.String())
	v.Set(KeyLaborOngoingRate, r.Labor.Ongoing.Rate.String())
	v.Set(KeyLaborOngoingHours, r.Labor.Ongoing.Hours.String())
	v.Set(KeyContractorFirstMonthFlat, r.Contractor.FirstMonth.Flat.String())
	v.Set(KeyContractorFirstMonthRate, r.Contractor.FirstMonth.Hourly.Rate.String())
	v.Set(KeyContractorFirstMonthHours, r.Contractor.FirstMonth.Hourly.Hours.String())
	v.Set(KeyContractorOngoingFlat, r.Contractor.Ongoing.Flat.String())
	v.Set(KeyContractorOngoingRate, r.Contractor.Ongoing.Hourly.Rate.String())
	v.Set(KeyContractorOngoingHours, r.Contractor.Ongoing.Hourly.Hours.String())
	v.Set(KeyMinMarginPct, r.MinMarginPct.String())
	return v
}
