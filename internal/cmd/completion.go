package cmd

import (
	"github.com/spf13/cobra"
)

// listFileExts are the domain list formats parse and check read.
var listFileExts = []string{"csv", "txt", "list"}

// completeListFile offers domain list files for the first argument only.
func completeListFile(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return listFileExts, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormat completes --format values of parse.
func completeFormat(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"table\taligned columns",
		"json\tone JSON array",
		"csv\tcomma separated with header",
	}, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	parseCmd.ValidArgsFunction = completeListFile
	checkCmd.ValidArgsFunction = completeListFile

	for _, c := range []*cobra.Command{verifyCmd, rootDomainCmd, encodeCmd, icpCmd} {
		c.ValidArgsFunction = cobra.NoFileCompletions
	}
}
