// Package profile defines calculator layouts: which inputs a user may edit and
// which stay at their catalog (or profile-overridden) defaults.
package profile

import (
	_ "embed"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/margin/internal/catalog"
	"github.com/Simplici0/margin/internal/pricing"
)

// Default is the profile used when none is requested.
const Default = "full"

// Editable field groups.
const (
	FieldPlan                 = "plan"
	FieldBillingCycle         = "billing_cycle"
	FieldListPrice            = "list_price"
	FieldDiscount             = "discount"
	FieldDuration             = "duration"
	FieldAccounts             = "accounts"
	FieldNewAccounts          = "new_accounts"
	FieldLaborFirstMonth      = "labor.first_month"
	FieldLaborOngoing         = "labor.ongoing"
	FieldContractorFirstMonth = "contractor.first_month"
	FieldContractorOngoing    = "contractor.ongoing"
	FieldMinMargin            = "min_margin"
)

var knownFields = []string{
	FieldPlan, FieldBillingCycle, FieldListPrice, FieldDiscount, FieldDuration,
	FieldAccounts, FieldNewAccounts, FieldLaborFirstMonth, FieldLaborOngoing,
	FieldContractorFirstMonth, FieldContractorOngoing, FieldMinMargin,
}

//go:embed builtin.hcl
var builtinSrc []byte

type file struct {
	Profiles []Profile `hcl:"profile,block"`
}

// Profile is one calculator layout.
type Profile struct {
	Name     string   `hcl:"name,label"`
	Title    string   `hcl:"title,optional"`
	Plans    []string `hcl:"plans,optional"`
	Editable []string `hcl:"editable,optional"`

	// Overrides are decimal text; bare HCL numbers convert exactly.
	LaborRate            *string `hcl:"labor_rate,optional"`
	LaborHours           *string `hcl:"labor_hours,optional"`
	ContractorFirstMonth *string `hcl:"contractor_first_month,optional"`
	ContractorOngoing    *string `hcl:"contractor_ongoing,optional"`
	MinMargin            *string `hcl:"min_margin,optional"`

	overrides overrides
}

// overrides holds the parsed default overrides. A nil field keeps the catalog value.
type overrides struct {
	laborRate            *decimal.Decimal
	laborHours           *decimal.Decimal
	contractorFirstMonth *decimal.Decimal
	contractorOngoing    *decimal.Decimal
	minMargin            *decimal.Decimal
}

// CanEdit reports whether the user may change field.
func (p Profile) CanEdit(field string) bool {
	return slices.Contains(p.Editable, field)
}

// AllowedPlans returns the plans offered by the profile, all plans when unrestricted.
func (p Profile) AllowedPlans() []pricing.Plan {
	if len(p.Plans) == 0 {
		return pricing.Plans
	}
	plans := make([]pricing.Plan, 0, len(p.Plans))
	for _, raw := range p.Plans {
		if plan, err := pricing.ParsePlan(raw); err == nil {
			plans = append(plans, plan)
		}
	}
	return plans
}

// AllowsPlan reports whether plan may be selected under p.
func (p Profile) AllowsPlan(plan pricing.Plan) bool {
	return slices.Contains(p.AllowedPlans(), plan)
}

// Apply returns d with the profile's rate overrides applied.
func (p Profile) Apply(d catalog.Defaults) catalog.Defaults {
	o := p.overrides
	r := d.Rates
	if o.laborRate != nil {
		r.Labor.FirstMonth.Rate = *o.laborRate
		r.Labor.Ongoing.Rate = *o.laborRate
	}
	if o.laborHours != nil {
		r.Labor.FirstMonth.Hours = *o.laborHours
		r.Labor.Ongoing.Hours = *o.laborHours
	}
	if o.contractorFirstMonth != nil {
		r.Contractor.FirstMonth = pricing.Fee{Flat: *o.contractorFirstMonth}
	}
	if o.contractorOngoing != nil {
		r.Contractor.Ongoing = pricing.Fee{Flat: *o.contractorOngoing}
	}
	if o.minMargin != nil {
		r.MinMarginPct = *o.minMargin
	}
	d.Rates = r
	return d
}

// resolve checks the profile and parses its overrides.
func (p *Profile) resolve() error {
	for _, f := range p.Editable {
		if !slices.Contains(knownFields, f) {
			return fmt.Errorf("profile %q: unknown editable field %q", p.Name, f)
		}
	}
	for _, raw := range p.Plans {
		if _, err := pricing.ParsePlan(raw); err != nil {
			return fmt.Errorf("profile %q: %w", p.Name, err)
		}
	}

	fields := []struct {
		name string
		raw  *string
		dst  **decimal.Decimal
	}{
		{"labor_rate", p.LaborRate, &p.overrides.laborRate},
		{"labor_hours", p.LaborHours, &p.overrides.laborHours},
		{"contractor_first_month", p.ContractorFirstMonth, &p.overrides.contractorFirstMonth},
		{"contractor_ongoing", p.ContractorOngoing, &p.overrides.contractorOngoing},
		{"min_margin", p.MinMargin, &p.overrides.minMargin},
	}
	for _, f := range fields {
		if f.raw == nil {
			continue
		}
		v, err := decimal.NewFromString(strings.TrimSpace(*f.raw))
		if err != nil {
			return fmt.Errorf("profile %q: %s must be a number: %w", p.Name, f.name, err)
		}
		if v.IsNegative() {
			return fmt.Errorf("profile %q: %s must be >= 0", p.Name, f.name)
		}
		*f.dst = &v
	}
	if m := p.overrides.minMargin; m != nil && m.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("profile %q: min_margin must be between 0 and 100", p.Name)
	}
	return nil
}

// Set is a collection of profiles keyed by name.
type Set struct {
	profiles map[string]Profile
}

// Builtin returns the embedded profiles.
func Builtin() (*Set, error) {
	s := &Set{profiles: make(map[string]Profile)}
	if err := s.decode("builtin.hcl", builtinSrc); err != nil {
		return nil, err
	}
	return s, nil
}

// Load returns the built-in profiles plus those in path. Profiles in path
// replace built-ins of the same name. An empty path loads built-ins only.
func Load(path string) (*Set, error) {
	s, err := Builtin()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return s, nil
	}

	var f file
	if err := hclsimple.DecodeFile(path, nil, &f); err != nil {
		return nil, fmt.Errorf("decode profiles %s: %w", path, err)
	}
	if err := s.add(f.Profiles); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Set) decode(filename string, src []byte) error {
	var f file
	if err := hclsimple.Decode(filename, src, nil, &f); err != nil {
		return fmt.Errorf("decode profiles %s: %w", filename, err)
	}
	return s.add(f.Profiles)
}

func (s *Set) add(profiles []Profile) error {
	for _, p := range profiles {
		if err := p.resolve(); err != nil {
			return err
		}
		s.profiles[p.Name] = p
	}
	return nil
}

// Get returns the named profile, or the default profile when name is empty or unknown.
func (s *Set) Get(name string) Profile {
	if p, ok := s.profiles[name]; ok {
		return p
	}
	return s.profiles[Default]
}

// Names returns the profile names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
