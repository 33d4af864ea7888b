package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"domainadmin/internal/hostname"
	"domainadmin/internal/logger"
	"domainadmin/internal/record"
	"domainadmin/internal/tlsutil"
)

var (
	checkConcurrency int
	checkTimeout     int
)

type checkResult struct {
	target record.ParsedDomain
	info   *tlsutil.CertInfo
	err    error
}

var checkCmd = &cobra.Command{
	Use:   "check <file|host[:port]>",
	Short: "Handshake with endpoints and verify their certificates",
	Long: `Check connects to every endpoint, reads the certificate it presents and reports
whether the certificate name covers the host, plus its expiry. The argument is
either a domain list file (same formats as parse) or a single host[:port].
Exits with status 1 when any endpoint fails or mismatches.`,
	Example: `  domainadmin check example.com
  domainadmin check export.csv --concurrency 16`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, err := suffixResolver()
		if err != nil {
			return err
		}

		targets, err := checkTargets(args[0], newParser(resolver))
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			return fmt.Errorf("no endpoints found in %s", args[0])
		}

		concurrency := checkConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Check.Concurrency
		}
		timeout := checkTimeout
		if timeout <= 0 {
			timeout = cfg.Check.Timeout
		}
		inspector := newInspector(resolver, timeout)

		results := make([]checkResult, len(targets))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(max(concurrency, 1))

		for i, t := range targets {
			g.Go(func() error {
				info, err := inspector.Inspect(ctx, t.Domain, t.Port)
				results[i] = checkResult{target: t, info: info, err: err}
				if err != nil {
					logger.Debug("check %s:%d: %v", t.Domain, t.Port, err)
				}
				return nil
			})
		}
		_ = g.Wait()

		bad := printCheckResults(cmd, results, time.Now())
		if bad > 0 {
			return fmt.Errorf("%d of %d endpoints failed", bad, len(results))
		}
		return nil
	},
}

// checkTargets reads a list file, or treats arg as a single endpoint when no
// such file exists.
func checkTargets(arg string, parser *record.Parser) ([]record.ParsedDomain, error) {
	if st, err := os.Stat(arg); err == nil && !st.IsDir() {
		var targets []record.ParsedDomain
		for rec, err := range parser.ParseFile(arg) {
			if err != nil {
				logger.Warn("%v", err)
				continue
			}
			targets = append(targets, rec)
		}
		return targets, nil
	}

	hostport, ok := hostname.Extract(arg)
	if !ok {
		return nil, fmt.Errorf("no host in %q", arg)
	}
	host, p := hostname.SplitHostPort(hostport)
	port := cfg.Import.DefaultPort
	if p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("invalid port %q", p)
		}
		port = n
	}
	return []record.ParsedDomain{{Domain: host, Port: port}}, nil
}

func printCheckResults(cmd *cobra.Command, results []checkResult, now time.Time) int {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HOST\tPORT\tCOMMON NAME\tEXPIRES\tDAYS\tSTATUS")

	bad := 0
	for _, r := range results {
		if r.err != nil {
			bad++
			fmt.Fprintf(tw, "%s\t%d\t-\t-\t-\t%sERROR%s %v\n", r.target.Domain, r.target.Port, red, reset, r.err)
			continue
		}

		status := green + "OK" + reset
		days := r.info.DaysLeft(now)
		switch {
		case !r.info.Matched:
			bad++
			status = red + "MISMATCH" + reset
		case days < 0:
			bad++
			status = red + "EXPIRED" + reset
		case days < 14:
			status = yellow + "EXPIRING" + reset
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\t%s\n", r.target.Domain, r.target.Port, r.info.CommonName,
			r.info.NotAfter.Format(time.DateOnly), days, status)
	}
	_ = tw.Flush()
	return bad
}

func init() {
	checkCmd.Flags().IntVarP(&checkConcurrency, "concurrency", "j", 0, "parallel handshakes (default from config)")
	checkCmd.Flags().IntVarP(&checkTimeout, "timeout", "t", 0, "per-endpoint timeout in seconds (default from config)")
	RootCmd.AddCommand(checkCmd)
}

