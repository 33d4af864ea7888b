package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"domainadmin/internal/hostname"
)

var encodeCmd = &cobra.Command{
	Use:     "encode <host>...",
	Short:   "Print the IDNA (punycode) form of hosts",
	Example: `  domainadmin encode bücher.example 中文.中国`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var failed int
		for _, host := range args {
			ascii, err := hostname.Encode(host)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s%v%s\n", red, err, reset)
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), ascii)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d hosts could not be encoded", failed, len(args))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(encodeCmd)
}
