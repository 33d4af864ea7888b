// Package psl splits hostnames into subdomain, registrable domain and public
// suffix using the Public Suffix List.
package psl

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/weppos/publicsuffix-go/publicsuffix"
	"golang.org/x/net/idna"

	"domainadmin/internal/logger"
)

const fetchTimeout = 30 * time.Second

// ExtractResult is the split of one hostname. Parts keep the case they were
// supplied in.
type ExtractResult struct {
	Subdomain string
	Domain    string
	Suffix    string
}

// RegisteredDomain is Domain + "." + Suffix, or "" when either is missing.
func (r ExtractResult) RegisteredDomain() string {
	if r.Domain == "" || r.Suffix == "" {
		return ""
	}
	return r.Domain + "." + r.Suffix
}

// Source selects the suffix dataset. With File and URL both empty the list
// compiled into publicsuffix-go is used.
type Source struct {
	File           string
	URL            string
	IncludePrivate bool
	Client         *http.Client
}

// Resolver is safe for concurrent use. The dataset is loaded on first use; a
// failed load is returned to that caller and retried by the next one.
type Resolver struct {
	src  Source
	find *publicsuffix.FindOptions

	list atomic.Pointer[publicsuffix.List]
	mu   sync.Mutex
}

func NewResolver(src Source) *Resolver {
	return &Resolver{
		src: src,
		find: &publicsuffix.FindOptions{
			IgnorePrivate: !src.IncludePrivate,
			DefaultRule:   nil,
		},
	}
}

var defaultResolver = NewResolver(Source{IncludePrivate: true})

// Default returns the process-wide resolver backed by the built-in list.
func Default() *Resolver {
	return defaultResolver
}

// RootDomain returns the registrable domain of host using the built-in list.
func RootDomain(host string) string {
	d, _ := defaultResolver.RootDomain(host)
	return d
}

// Warm forces the dataset load.
func (r *Resolver) Warm() error {
	_, err := r.load()
	return err
}

func (r *Resolver) load() (*publicsuffix.List, error) {
	if l := r.list.Load(); l != nil {
		return l, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l := r.list.Load(); l != nil {
		return l, nil
	}

	start := time.Now()
	l, err := r.open()
	if err != nil {
		return nil, fmt.Errorf("psl: load dataset: %w", err)
	}
	r.list.Store(l)
	if r.src.File != "" || r.src.URL != "" {
		logger.Debug("psl: dataset %s loaded with %d rules in %v", r.describe(), l.Size(), time.Since(start))
	}
	return l, nil
}

func (r *Resolver) describe() string {
	switch {
	case r.src.File != "":
		return r.src.File
	case r.src.URL != "":
		return r.src.URL
	default:
		return "built-in"
	}
}

func (r *Resolver) open() (*publicsuffix.List, error) {
	opts := &publicsuffix.ParserOption{PrivateDomains: r.src.IncludePrivate}

	switch {
	case r.src.File != "":
		return publicsuffix.NewListFromFile(r.src.File, opts)
	case r.src.URL != "":
		return r.fetch(opts)
	default:
		return publicsuffix.DefaultList, nil
	}
}

func (r *Resolver) fetch(opts *publicsuffix.ParserOption) (*publicsuffix.List, error) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	client := r.src.Client
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	list := publicsuffix.NewList()
	if _, err := list.Load(resp.Body, opts); err != nil {
		return nil, fmt.Errorf("parse list: %w", err)
	}
	if list.Size() == 0 {
		return nil, fmt.Errorf("empty list from %s", r.src.URL)
	}
	return list, nil
}

// Extract splits host. IP literals come back whole in Domain, names without a
// known suffix have their last label in Domain and an empty Suffix.
func (r *Resolver) Extract(host string) (ExtractResult, error) {
	host = strings.TrimSuffix(strings.TrimSpace(host), ".")
	if host == "" {
		return ExtractResult{}, nil
	}
	if IsIPLiteral(host) {
		return ExtractResult{Domain: host}, nil
	}

	list, err := r.load()
	if err != nil {
		return ExtractResult{}, err
	}

	labels := strings.Split(host, ".")
	rule := list.Find(lookupName(labels), r.find)
	if rule == nil {
		return splitAt(labels, 0), nil
	}
	return splitAt(labels, suffixLabels(rule, len(labels))), nil
}

// RootDomain returns the registrable domain of host, "" when there is none.
func (r *Resolver) RootDomain(host string) (string, error) {
	res, err := r.Extract(host)
	if err != nil {
		return "", err
	}
	return res.RegisteredDomain(), nil
}

// lookupName is host in the form the list stores its rules in: lower-case
// A-labels. It is built label by label so the label count matches labels even
// when a label (such as a leading "*") is not valid IDNA.
func lookupName(labels []string) string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = strings.ToLower(l)
		if isASCII(l) {
			continue
		}
		if a, err := idna.Lookup.ToASCII(l); err == nil && a != "" && !strings.Contains(a, ".") {
			out[i] = a
		}
	}
	return strings.Join(out, ".")
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// suffixLabels is the number of trailing labels covered by rule.
func suffixLabels(rule *publicsuffix.Rule, total int) int {
	n := 0
	if rule.Value != "" {
		n = strings.Count(rule.Value, ".") + 1
	}
	switch rule.Type {
	case publicsuffix.WildcardType:
		n++
	case publicsuffix.ExceptionType:
		n--
	}
	if n > total {
		n = total
	}
	return n
}

func splitAt(labels []string, suffixLen int) ExtractResult {
	cut := len(labels) - suffixLen
	res := ExtractResult{Suffix: strings.Join(labels[cut:], ".")}
	if cut == 0 {
		return res
	}
	res.Domain = labels[cut-1]
	res.Subdomain = strings.Join(labels[:cut-1], ".")
	return res
}
