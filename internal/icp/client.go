// Package icp queries an ICP filing (备案) lookup service for a domain.
package icp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/time/rate"

	"domainadmin/internal/config"
	"domainadmin/internal/logger"
	"domainadmin/internal/metrics"
)

// ErrNotFound is returned when the service answers but has no filing for the domain.
var ErrNotFound = errors.New("icp: no filing found")

// Info is the filing detail block of a response.
type Info struct {
	Name   string `json:"name"`
	Nature string `json:"nature"`
	ICP    string `json:"icp"`
	Title  string `json:"title"`
	Time   string `json:"time"`
}

// Record is one lookup response. Raw holds the body as received so fields
// this type does not model are not lost.
type Record struct {
	Success bool            `json:"success"`
	Domain  string          `json:"domain"`
	Message string          `json:"message,omitempty"`
	Info    Info            `json:"info"`
	Raw     json.RawMessage `json:"-"`
}

type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
	cache    *Cache
}

const maxBodySize = 1 << 20

// NewClient builds a client from the [icp] config section. The on-disk cache
// is opened only when cache_dir is set.
func NewClient(cfg config.ICPConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("icp: endpoint is not configured")
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		endpoint: cfg.Endpoint,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, burst),
	}

	if cfg.CacheDir != "" {
		ttl, err := cfg.TTL()
		if err != nil {
			return nil, err
		}
		cache, err := OpenCache(cfg.CacheDir, ttl)
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}
	return c, nil
}

// Close releases the cache, if any.
func (c *Client) Close() error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Close()
}

// Lookup fetches the filing for domain. A response without a filing is
// returned together with ErrNotFound.
func (c *Client) Lookup(ctx context.Context, domain string) (*Record, error) {
	start := time.Now()

	if c.cache != nil {
		body, err := c.cache.Get(domain)
		switch {
		case err == nil:
			rec, err := decode(body)
			if err == nil {
				metrics.ObserveICP("cached", time.Since(start))
				logger.Debug("ICP: %s served from cache", domain)
				return rec, notFound(rec)
			}
			logger.Warn("ICP: dropping unreadable cache entry for %s: %v", domain, err)
			_ = c.cache.Delete(domain)
		case !errors.Is(err, badger.ErrKeyNotFound):
			logger.Warn("ICP: cache read for %s failed: %v", domain, err)
		}
	}

	body, err := c.fetch(ctx, domain)
	if err != nil {
		metrics.ObserveICP("error", time.Since(start))
		return nil, err
	}

	rec, err := decode(body)
	if err != nil {
		metrics.ObserveICP("error", time.Since(start))
		return nil, fmt.Errorf("icp: decode response for %s: %w", domain, err)
	}
	metrics.ObserveICP("ok", time.Since(start))

	if c.cache != nil {
		if err := c.cache.Set(domain, body); err != nil {
			logger.Warn("ICP: cache write for %s failed: %v", domain, err)
		}
	}
	return rec, notFound(rec)
}

func (c *Client) fetch(ctx context.Context, domain string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("icp: bad endpoint: %w", err)
	}
	q := u.Query()
	q.Set("url", domain)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("icp: request for %s: %w", domain, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("icp: %s returned status %d", u.Host, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

func decode(body []byte) (*Record, error) {
	rec := &Record{}
	if err := json.Unmarshal(body, rec); err != nil {
		return nil, err
	}
	rec.Raw = json.RawMessage(body)
	return rec, nil
}

func notFound(rec *Record) error {
	if rec.Success {
		return nil
	}
	if rec.Message != "" {
		return fmt.Errorf("%w: %s", ErrNotFound, rec.Message)
	}
	return ErrNotFound
}
