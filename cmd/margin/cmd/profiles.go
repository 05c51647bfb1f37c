package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newProfilesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List form profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := opts.profiles()
			if err != nil {
				return err
			}
			for _, name := range set.Names() {
				p := set.Get(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", name, p.Title)
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s editable: %s\n", "", strings.Join(p.Editable, ", "))
			}
			return nil
		},
	}
}
