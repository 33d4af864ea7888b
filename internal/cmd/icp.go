package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"domainadmin/internal/icp"
)

var icpRaw bool

var icpCmd = &cobra.Command{
	Use:   "icp <domain>...",
	Short: "Look up the ICP filing of domains",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := icp.NewClient(cfg.ICP)
		if err != nil {
			return err
		}
		defer client.Close()

		out := cmd.OutOrStdout()
		resolver, err := suffixResolver()
		if err != nil {
			return err
		}

		for _, domain := range args {
			// filings are per registrable domain
			if root, _ := resolver.RootDomain(domain); root != "" {
				domain = root
			}

			rec, err := client.Lookup(cmd.Context(), domain)
			if icpRaw && rec != nil {
				var v any
				if json.Unmarshal(rec.Raw, &v) == nil {
					data, _ := json.MarshalIndent(v, "", "  ")
					fmt.Fprintln(out, string(data))
					continue
				}
			}
			switch {
			case errors.Is(err, icp.ErrNotFound):
				fmt.Fprintf(out, "%s%s%s: %s\n", bold, domain, reset, err)
			case err != nil:
				return err
			default:
				fmt.Fprintf(out, "%s%s%s\n", bold, domain, reset)
				fmt.Fprintf(out, "  %s%-8s%s %s\n", green, "ICP", reset, rec.Info.ICP)
				fmt.Fprintf(out, "  %s%-8s%s %s\n", green, "Name", reset, rec.Info.Name)
				fmt.Fprintf(out, "  %s%-8s%s %s\n", green, "Nature", reset, rec.Info.Nature)
				fmt.Fprintf(out, "  %s%-8s%s %s\n", green, "Title", reset, rec.Info.Title)
				fmt.Fprintf(out, "  %s%-8s%s %s\n", green, "Date", reset, rec.Info.Time)
			}
		}
		return nil
	},
}

func init() {
	icpCmd.Flags().BoolVar(&icpRaw, "raw", false, "print the service response as received")
	RootCmd.AddCommand(icpCmd)
}
