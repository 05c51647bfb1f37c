package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/margin/internal/logging"
	"github.com/Simplici0/margin/internal/pricing"
	"github.com/Simplici0/margin/internal/quoteform"
	"github.com/Simplici0/margin/internal/report"
)

// quoteFlags maps CLI flags onto the form keys quoteform.Parse reads.
var quoteFlags = []struct {
	name  string
	key   string
	usage string
}{
	{"plan", quoteform.KeyPlan, "plan (plus, premium)"},
	{"cycle", quoteform.KeyBillingCycle, "billing cycle (monthly, six_month, yearly)"},
	{"list-price", quoteform.KeyListPrice, "list price per cycle (default from catalog)"},
	{"discount-type", quoteform.KeyDiscountType, "discount type (percentage, absolute)"},
	{"discount", quoteform.KeyDiscountValue, "discount value"},
	{"duration", quoteform.KeyDurationMonths, "analysis horizon in months (1, 6, 12, 24)"},
	{"accounts", quoteform.KeyAccountCount, "number of accounts"},
	{"new-accounts", quoteform.KeyNewAccountsMonth1, "accounts onboarding in month 1 (premium)"},
	{"labor-first-rate", quoteform.KeyLaborFirstMonthRate, "first month labor rate per hour"},
	{"labor-first-hours", quoteform.KeyLaborFirstMonthHours, "first month labor hours per account"},
	{"labor-ongoing-rate", quoteform.KeyLaborOngoingRate, "ongoing labor rate per hour"},
	{"labor-ongoing-hours", quoteform.KeyLaborOngoingHours, "ongoing labor hours per account per month"},
	{"contractor-first-flat", quoteform.KeyContractorFirstMonthFlat, "first month contractor fee per new account"},
	{"contractor-first-rate", quoteform.KeyContractorFirstMonthRate, "first month contractor rate per hour"},
	{"contractor-first-hours", quoteform.KeyContractorFirstMonthHours, "first month contractor hours"},
	{"contractor-ongoing-flat", quoteform.KeyContractorOngoingFlat, "ongoing contractor fee per account per month"},
	{"contractor-ongoing-rate", quoteform.KeyContractorOngoingRate, "ongoing contractor rate per hour"},
	{"contractor-ongoing-hours", quoteform.KeyContractorOngoingHours, "ongoing contractor hours"},
	{"min-margin", quoteform.KeyMinMarginPct, "minimum margin percent"},
}

func newQuoteCmd(opts *options) *cobra.Command {
	var (
		profileName string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Compute margin for a quote",
		Long: `Compute revenue, cost and margin for one quote.

Unset flags take their defaults from the catalog and the selected profile.

Examples:
  margin quote --plan plus --cycle yearly --discount 5
  margin quote --plan premium --accounts 3 --new-accounts 1 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q (text, json)", format)
			}

			defaults, err := opts.defaults(cmd.Context())
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			profiles, err := opts.profiles()
			if err != nil {
				return err
			}
			prof := profiles.Get(profileName)

			form := url.Values{}
			for _, f := range quoteFlags {
				if cmd.Flags().Changed(f.name) {
					value, _ := cmd.Flags().GetString(f.name)
					form.Set(f.key, value)
				}
			}

			in, err := quoteform.Parse(form, defaults, prof)
			if err != nil {
				return err
			}
			out := pricing.Compute(in)
			logging.Debug("quote computed",
				zap.String("profile", prof.Name),
				zap.String("plan", string(in.Plan)),
				zap.String("margin_pct", out.MarginPct.String()),
			)

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report.NewResult(prof.Name, in, out))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s, %s, %d account(s), %d month(s)\n\n",
				in.Plan.Label(), in.BillingCycle.Label(), in.Accounts, in.DurationMonths)
			return report.Build(in, out).WriteText(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "full", "form profile")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
	for _, f := range quoteFlags {
		cmd.Flags().String(f.name, "", f.usage)
	}
	return cmd
}
