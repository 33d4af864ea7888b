package cmd

import (
	"time"

	"domainadmin/internal/dns"
	"domainadmin/internal/psl"
	"domainadmin/internal/record"
	"domainadmin/internal/tlsutil"
)

const (
	bold   = "\033[1m"
	cyan   = "\033[36m"
	green  = "\033[32m"
	yellow = "\033[33m"
	red    = "\033[31m"
	reset  = "\033[0m"
)

// suffixResolver returns the built-in resolver unless the config points at
// another dataset or excludes private suffixes. A configured file or URL is
// loaded here so a bad dataset fails the command before any input is read.
func suffixResolver() (*psl.Resolver, error) {
	if cfg.PSL.File == "" && cfg.PSL.URL == "" && cfg.PSL.IncludePrivate {
		return psl.Default(), nil
	}
	r := psl.NewResolver(psl.Source{
		File:           cfg.PSL.File,
		URL:            cfg.PSL.URL,
		IncludePrivate: cfg.PSL.IncludePrivate,
	})
	if cfg.PSL.File != "" || cfg.PSL.URL != "" {
		if err := r.Warm(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func newParser(resolver *psl.Resolver) *record.Parser {
	cols := cfg.Import.Columns
	return &record.Parser{
		Resolver: resolver,
		Columns: record.Columns{
			Domain: cols.Domain,
			Alias:  cols.Alias,
			Group:  cols.Group,
			Port:   cols.Port,
		},
		DefaultPort: cfg.Import.DefaultPort,
		Exclude:     cfg.Import.Excluded,
	}
}

func newInspector(resolver *psl.Resolver, timeoutSec int) *tlsutil.Inspector {
	in := &tlsutil.Inspector{
		Verifier: tlsutil.NewVerifier(resolver),
	}
	if timeoutSec > 0 {
		in.Timeout = secs(timeoutSec)
	}
	if cfg.Check.ResolveDNS {
		in.Resolver = dns.NewResolver(cfg.DNS)
	}
	return in
}

func secs(n int) time.Duration {
	return time.Duration(n) * time.Second
}
