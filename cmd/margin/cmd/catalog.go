package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Simplici0/margin/internal/catalog"
	"github.com/Simplici0/margin/internal/report"
)

func newCatalogCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the default price table and rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.defaults(cmd.Context())
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			return writeCatalog(cmd.OutOrStdout(), d)
		},
	}
}

func writeCatalog(w io.Writer, d catalog.Defaults) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Plan\tBilling\tList price\t")
	for _, key := range catalog.Keys() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", key.Plan, key.Cycle, report.Currency(d.ListPrice(key.Plan, key.Cycle)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	r := d.Rates
	fmt.Fprintf(w, "\nLabor first month     %s/h x %s h\n", report.Currency(r.Labor.FirstMonth.Rate), r.Labor.FirstMonth.Hours)
	fmt.Fprintf(w, "Labor ongoing         %s/h x %s h\n", report.Currency(r.Labor.Ongoing.Rate), r.Labor.Ongoing.Hours)
	fmt.Fprintf(w, "Contractor first mo.  %s\n", report.Currency(r.Contractor.FirstMonth.Amount()))
	fmt.Fprintf(w, "Contractor ongoing    %s\n", report.Currency(r.Contractor.Ongoing.Amount()))
	_, err := fmt.Fprintf(w, "Minimum margin        %s\n", report.Percent(r.MinMarginPct))
	return err
}
