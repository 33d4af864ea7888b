package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zeebo/xxh3"

	"domainadmin/internal/record"
)

var (
	parseFormat    string
	parseUnique    bool
	parseKeepGoing bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a domain list into normalized records",
	Long: `Parse reads a domain list and prints one record per entry.

Files ending in .csv are read as a table with a header row (domain, remark,
group and port columns, English or Chinese names). Any other file is read line
by line, taking the host[:port] at the start of each line.`,
	Example: `  domainadmin parse domains.txt
  domainadmin parse export.csv --format json --unique`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, err := suffixResolver()
		if err != nil {
			return err
		}
		out, err := newRecordWriter(cmd.OutOrStdout(), parseFormat)
		if err != nil {
			return err
		}

		parser := newParser(resolver)
		seen := make(map[uint64]struct{})
		var failed int

		for rec, err := range parser.ParseFile(args[0]) {
			if err != nil {
				if !parseKeepGoing {
					return err
				}
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s%v%s\n", red, err, reset)
				continue
			}
			if parseUnique {
				key := xxh3.HashString(rec.Domain + ":" + strconv.Itoa(rec.Port))
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
			}
			if err := out.Write(rec); err != nil {
				return err
			}
		}

		if err := out.Flush(); err != nil {
			return err
		}
		if failed > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d entries could not be parsed\n", failed)
		}
		return nil
	},
}

type recordWriter interface {
	Write(rec record.ParsedDomain) error
	Flush() error
}

func newRecordWriter(w io.Writer, format string) (recordWriter, error) {
	switch format {
	case "", "table":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DOMAIN\tROOT DOMAIN\tPORT\tGROUP\tALIAS")
		return &tableWriter{tw: tw}, nil
	case "json":
		return &jsonWriter{w: w}, nil
	case "csv":
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"domain", "root_domain", "port", "group", "alias"}); err != nil {
			return nil, err
		}
		return &csvWriter{cw: cw}, nil
	}
	return nil, fmt.Errorf("unknown output format %q (want table, json or csv)", format)
}

type tableWriter struct{ tw *tabwriter.Writer }

func (t *tableWriter) Write(rec record.ParsedDomain) error {
	_, err := fmt.Fprintf(t.tw, "%s\t%s\t%d\t%s\t%s\n", rec.Domain, rec.RootDomain, rec.Port, rec.GroupName, rec.Alias)
	return err
}

func (t *tableWriter) Flush() error { return t.tw.Flush() }

// jsonWriter buffers records and emits one JSON array on Flush.
type jsonWriter struct {
	w    io.Writer
	recs []record.ParsedDomain
}

func (j *jsonWriter) Write(rec record.ParsedDomain) error {
	j.recs = append(j.recs, rec)
	return nil
}

func (j *jsonWriter) Flush() error {
	if j.recs == nil {
		j.recs = []record.ParsedDomain{}
	}
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(j.recs)
}

type csvWriter struct{ cw *csv.Writer }

func (c *csvWriter) Write(rec record.ParsedDomain) error {
	return c.cw.Write([]string{rec.Domain, rec.RootDomain, strconv.Itoa(rec.Port), rec.GroupName, rec.Alias})
}

func (c *csvWriter) Flush() error {
	c.cw.Flush()
	return c.cw.Error()
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "table", "output format: table, json or csv")
	_ = parseCmd.RegisterFlagCompletionFunc("format", completeFormat)
	parseCmd.Flags().BoolVarP(&parseUnique, "unique", "u", false, "drop repeated domain:port pairs")
	parseCmd.Flags().BoolVar(&parseKeepGoing, "keep-going", true, "report unparsable entries and continue")
	RootCmd.AddCommand(parseCmd)
}
