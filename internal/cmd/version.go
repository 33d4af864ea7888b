package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var Version = "0.0.0-dev"

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version and module information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "domainadmin version: %s\n", Version)
		fmt.Fprintln(out, "Module Status:")

		for _, m := range getModuleStatus() {
			status := red + "[-]" + reset
			if m.Enabled {
				status = green + "[+]" + reset
			}
			fmt.Fprintf(out, "  %s %s\n", status, m.Name)
		}
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
