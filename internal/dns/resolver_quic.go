//go:build quic

package dns

import (
	"context"
	"log/slog"
	"time"

	"github.com/AdguardTeam/dnsproxy/upstream"
	"github.com/miekg/dns"

	"domainadmin/internal/config"
	"domainadmin/internal/logger"
)

// discardHandler silently drops all logs
type discardHandler struct{}

func (h *discardHandler) Enabled(ctx context.Context, level slog.Level) bool { return false }
func (h *discardHandler) Handle(ctx context.Context, r slog.Record) error { return nil }
func (h *discardHandler) WithAttrs(attrs []slog.Attr) slog.Handler        { return h }
func (h *discardHandler) WithGroup(name string) slog.Handler              { return h }

type quicBackend struct {
	upstreams []upstream.Upstream
}

func (b *quicBackend) Exchange(m *dns.Msg) (*dns.Msg, string, error) {
	reply, u, err := upstream.ExchangeParallel(b.upstreams, m)
	if err != nil {
		return nil, "", err
	}
	return reply, u.Address(), nil
}

func newBackend(cfg config.DNSConfig) dnsBackend {
	libLogger := slog.New(&discardHandler{})

	opts := &upstream.Options{
		Timeout: timeoutOf(cfg),
		Logger:  libLogger,
	}

	if len(cfg.BootstrapDNS) > 0 {
		var bootstrapResolvers []upstream.Resolver
		for _, bootAddr := range cfg.BootstrapDNS {
			bootRes, err := upstream.NewUpstreamResolver(bootAddr, &upstream.Options{
				Timeout: 3 * time.Second,
				Logger:  libLogger,
			})
			if err != nil {
				logger.Warn("DNS: failed to create bootstrap %s: %v", bootAddr, err)
				continue
			}
			bootstrapResolvers = append(bootstrapResolvers, bootRes)
		}

		if len(bootstrapResolvers) > 0 {
			opts.Bootstrap = upstream.ParallelResolver(bootstrapResolvers)
		}
	}

	var upstreams []upstream.Upstream
	for _, ns := range cfg.Nameserver {
		u, err := upstream.AddressToUpstream(ns, opts)
		if err != nil {
			logger.Warn("DNS: failed to create upstream %s: %v", ns, err)
			continue
		}
		upstreams = append(upstreams, u)
	}

	if len(upstreams) == 0 {
		return nil
	}

	return &quicBackend{upstreams: upstreams}
}
