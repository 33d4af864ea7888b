package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"domainadmin/internal/tlsutil"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <common-name> <domain>",
	Short: "Check whether a certificate name covers a domain",
	Long: `Verify applies the certificate name rule used by check: a name containing '*'
covers every host with the same registrable domain, any other name must equal
the domain exactly (case-sensitive). Exits with status 1 on mismatch.`,
	Example: `  domainadmin verify '*.example.com' www.example.com`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cn, domain := args[0], args[1]

		resolver, err := suffixResolver()
		if err != nil {
			return err
		}
		v := tlsutil.NewVerifier(resolver)
		if !v.VerifyCommonName(cn, domain) {
			return fmt.Errorf("%s does not cover %s", cn, domain)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s✓%s %s covers %s\n", green, reset, cn, domain)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(verifyCmd)
}
