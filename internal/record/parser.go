package record

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"

	"domainadmin/internal/hostname"
	"domainadmin/internal/logger"
	"domainadmin/internal/metrics"
	"domainadmin/internal/psl"
)

const maxLineSize = 1024 * 1024

// RootResolver derives the registrable domain of a host.
type RootResolver interface {
	RootDomain(host string) (string, error)
}

// Parser turns domain lists into records. The zero value uses the built-in
// public suffix list, DefaultColumns and DefaultPort.
type Parser struct {
	Resolver    RootResolver
	Columns     Columns
	DefaultPort int
	// Exclude drops hosts it returns true for, as if they were blank.
	Exclude func(host string) bool
}

// ParseFile parses the file at path, choosing the strategy from its extension.
// Each range over the returned sequence reads the file afresh.
func (p *Parser) ParseFile(path string) iter.Seq2[ParsedDomain, error] {
	return func(yield func(ParsedDomain, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(ParsedDomain{}, fmt.Errorf("open %s: %w", path, err))
			return
		}
		defer f.Close()

		for rec, err := range p.parse(f, FormatFor(path), path) {
			if !yield(rec, err) {
				return
			}
		}
	}
}

// Parse reads records from r. Lines without a domain are skipped. A record with
// a bad port is yielded as a *ParseError and the caller may keep ranging; read
// errors end the sequence. r is consumed, so the sequence can be ranged once.
func (p *Parser) Parse(r io.Reader, f Format) iter.Seq2[ParsedDomain, error] {
	return p.parse(r, f, "")
}

func (p *Parser) parse(r io.Reader, f Format, name string) iter.Seq2[ParsedDomain, error] {
	if f == FormatTable {
		return p.table(r, name)
	}
	return p.lines(r, name)
}

func (p *Parser) lines(r io.Reader, name string) iter.Seq2[ParsedDomain, error] {
	return func(yield func(ParsedDomain, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		line := 0
		for sc.Scan() {
			line++
			text := sc.Text()
			if line == 1 {
				text = strings.TrimPrefix(text, "\ufeff")
			}

			hostport, ok := hostname.Extract(strings.TrimSpace(text))
			if !ok {
				p.skipped(FormatLines, name, line, "no host")
				continue
			}
			host, port := hostname.SplitHostPort(hostport)

			rec, ok, err := p.build(FormatLines, name, line, host, port, "", "")
			if !ok {
				continue
			}
			if !yield(rec, err) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(ParsedDomain{}, fmt.Errorf("read %s: %w", displayName(name), err))
		}
	}
}

func (p *Parser) table(r io.Reader, name string) iter.Seq2[ParsedDomain, error] {
	return func(yield func(ParsedDomain, error) bool) {
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true
		cr.ReuseRecord = true

		header, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			yield(ParsedDomain{}, fmt.Errorf("read header of %s: %w", displayName(name), err))
			return
		}
		idx := p.columns().index(header)
		if idx.domain < 0 {
			logger.Warn("%s: no domain column in header %v", displayName(name), header)
		}

		for {
			row, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				p.skipped(FormatTable, name, perr.Line, perr.Err.Error())
				continue
			}
			if err != nil {
				yield(ParsedDomain{}, fmt.Errorf("read %s: %w", displayName(name), err))
				return
			}
			line, _ := cr.FieldPos(0)

			hostport, ok := hostname.Extract(field(row, idx.domain))
			if !ok {
				p.skipped(FormatTable, name, line, "no host")
				continue
			}
			host, hostPort := hostname.SplitHostPort(hostport)

			port := field(row, idx.port)
			if port == "" {
				port = hostPort
			}
			alias := strings.Trim(field(row, idx.alias), " -")
			group := strings.Trim(field(row, idx.group), " -")

			rec, ok, err := p.build(FormatTable, name, line, host, port, alias, group)
			if !ok {
				continue
			}
			if !yield(rec, err) {
				return
			}
		}
	}
}

// build assembles one record. ok is false when the entry has no domain and
// must be dropped silently.
func (p *Parser) build(f Format, name string, line int, host, port, alias, group string) (ParsedDomain, bool, error) {
	if host == "" {
		p.skipped(f, name, line, "empty host")
		return ParsedDomain{}, false, nil
	}
	if p.Exclude != nil && p.Exclude(host) {
		metrics.ObserveRecord(f.String(), "excluded")
		logger.Debug("%s:%d: %s excluded", displayName(name), line, host)
		return ParsedDomain{}, false, nil
	}

	n, err := p.port(port)
	if err != nil {
		metrics.ObserveRecord(f.String(), "invalid")
		return ParsedDomain{}, true, &ParseError{File: name, Line: line, Field: "port", Value: port, Cause: err}
	}

	root, err := p.resolver().RootDomain(host)
	if err != nil {
		metrics.ObserveRecord(f.String(), "invalid")
		return ParsedDomain{}, true, fmt.Errorf("%s:%d: root domain of %s: %w", displayName(name), line, host, err)
	}

	metrics.ObserveRecord(f.String(), "parsed")
	return ParsedDomain{
		Domain:     host,
		RootDomain: root,
		GroupName:  group,
		Port:       n,
		Alias:      alias,
	}, true, nil
}

func (p *Parser) port(s string) (int, error) {
	if s == "" {
		if p.DefaultPort > 0 {
			return p.DefaultPort, nil
		}
		return DefaultPort, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > 65535 {
		return 0, ErrPortRange
	}
	return n, nil
}

func (p *Parser) resolver() RootResolver {
	if p.Resolver != nil {
		return p.Resolver
	}
	return psl.Default()
}

func (p *Parser) columns() Columns {
	if len(p.Columns.Domain) == 0 {
		return DefaultColumns
	}
	return p.Columns
}

func (p *Parser) skipped(f Format, name string, line int, reason string) {
	metrics.ObserveRecord(f.String(), "skipped")
	logger.Debug("%s:%d: skipped (%s)", displayName(name), line, reason)
}

func displayName(name string) string {
	if name == "" {
		return "<input>"
	}
	return name
}
