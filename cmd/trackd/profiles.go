package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newProfilesCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List tracker profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTYPE\tSOURCE")
			for _, p := range s.newManager().ListProfiles() {
				src := p.Path
				if src == "" {
					src = "(built-in)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.TrackerType, src)
			}
			return tw.Flush()
		},
	}
}
