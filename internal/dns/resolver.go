package dns

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/miekg/dns"

	"domainadmin/internal/config"
	"domainadmin/internal/logger"
)

type dnsBackend interface {
	Exchange(m *dns.Msg) (*dns.Msg, string, error)
}

type cacheEntry struct {
	ip        string
	expiresAt time.Time
}

// Resolver maps monitored hostnames to the address a certificate check dials.
// Configured upstreams are tried first, then the system resolver.
type Resolver struct {
	backend        dnsBackend
	systemFallback bool

	cache   map[string]cacheEntry
	cacheMu sync.RWMutex
}

const (
	defaultTimeout = 5 * time.Second
	maxCacheSize   = 10000
)

// NewResolver builds a resolver from the [DNS] config section. With no
// nameservers every lookup goes to the system resolver.
func NewResolver(cfg config.DNSConfig) *Resolver {
	return &Resolver{
		backend:        newBackend(cfg),
		systemFallback: true,
		cache:          make(map[string]cacheEntry),
	}
}

func timeoutOf(cfg config.DNSConfig) time.Duration {
	if cfg.Timeout > 0 {
		return time.Duration(cfg.Timeout) * time.Second
	}
	return defaultTimeout
}

// Resolve returns one address for host. IP literals are returned as is.
func (r *Resolver) Resolve(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}

	if r.backend != nil {
		for _, qType := range []uint16{dns.TypeA, dns.TypeAAAA} {
			if ip, ok := r.getCache(host, qType); ok {
				return ip, nil
			}
			ip, ttl, err := r.lookupType(host, qType)
			if err == nil {
				r.setCache(host, ip, qType, ttl)
				return ip, nil
			}
			logger.Debug("DNS: %s %s lookup failed: %v", host, dns.TypeToString[qType], err)
		}
	}

	if !r.systemFallback {
		return "", fmt.Errorf("dns: could not resolve %s", host)
	}
	return r.resolveSystem(ctx, host)
}

func (r *Resolver) resolveSystem(ctx context.Context, host string) (string, error) {
	if ip, ok := r.getCache(host, 0); ok {
		return ip, nil
	}

	ips, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		return "", fmt.Errorf("dns: could not resolve %s: %w", host, err)
	}
	logger.Debug("DNS: %s -> %s (System DNS)", host, ips[0])
	// System resolver doesn't expose TTL
	r.setCache(host, ips[0], 0, 300)
	return ips[0], nil
}

func (r *Resolver) lookupType(target string, qType uint16) (string, uint32, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(target), qType)
	m.RecursionDesired = true

	reply, addr, err := r.backend.Exchange(m)
	if err != nil {
		return "", 0, err
	}
	if reply.Rcode != dns.RcodeSuccess {
		return "", 0, fmt.Errorf("dns rcode %s from %s", dns.RcodeToString[reply.Rcode], addr)
	}

	for _, ans := range reply.Answer {
		switch rr := ans.(type) {
		case *dns.A:
			if qType == dns.TypeA {
				logger.Debug("DNS: %s -> %s (A, TTL: %d) via %s", target, rr.A, rr.Hdr.Ttl, addr)
				return rr.A.String(), rr.Hdr.Ttl, nil
			}
		case *dns.AAAA:
			if qType == dns.TypeAAAA {
				logger.Debug("DNS: %s -> %s (AAAA, TTL: %d) via %s", target, rr.AAAA, rr.Hdr.Ttl, addr)
				return rr.AAAA.String(), rr.Hdr.Ttl, nil
			}
		}
	}
	return "", 0, fmt.Errorf("no records of type %s found", dns.TypeToString[qType])
}

func (r *Resolver) cacheKey(host string, qType uint16) string {
	return fmt.Sprintf("%s:%d", host, qType)
}

func (r *Resolver) getCache(host string, qType uint16) (string, bool) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	if entry, ok := r.cache[r.cacheKey(host, qType)]; ok && time.Now().Before(entry.expiresAt) {
		return entry.ip, true
	}
	return "", false
}

func (r *Resolver) setCache(host, ip string, qType uint16, ttl uint32) {
	if ttl < 60 {
		ttl = 60
	}
	if ttl > 86400 {
		ttl = 86400
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	if len(r.cache) >= maxCacheSize {
		now := time.Now()
		for k, v := range r.cache {
			if now.After(v.expiresAt) {
				delete(r.cache, k)
			}
		}
		// still full: drop an arbitrary entry
		for k := range r.cache {
			if len(r.cache) < maxCacheSize {
				break
			}
			delete(r.cache, k)
		}
	}

	r.cache[r.cacheKey(host, qType)] = cacheEntry{
		ip:        ip,
		expiresAt: time.Now().Add(time.Duration(ttl) * time.Second),
	}
}

// Invalidate drops every cached answer for host.
func (r *Resolver) Invalidate(host string) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	delete(r.cache, r.cacheKey(host, dns.TypeA))
	delete(r.cache, r.cacheKey(host, dns.TypeAAAA))
	delete(r.cache, r.cacheKey(host, 0))

	logger.Debug("DNS: Cache invalidated for %s", host)
}
