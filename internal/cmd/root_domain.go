package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var rootDomainCmd = &cobra.Command{
	Use:     "root <host>...",
	Aliases: []string{"split"},
	Short:   "Split hosts into subdomain, domain and public suffix",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, err := suffixResolver()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "HOST\tSUBDOMAIN\tDOMAIN\tSUFFIX\tREGISTERED")
		for _, host := range args {
			res, err := resolver.Extract(host)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", host, res.Subdomain, res.Domain, res.Suffix, res.RegisteredDomain())
		}
		return tw.Flush()
	},
}

func init() {
	RootCmd.AddCommand(rootDomainCmd)
}
