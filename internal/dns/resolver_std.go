//go:build !quic

package dns

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/miekg/dns"

	"domainadmin/internal/config"
	"domainadmin/internal/logger"
)

// upstream is one configured nameserver. net is "udp", "tcp", "tcp-tls" or
// "https".
type upstream struct {
	net  string
	addr string
}

func (u upstream) String() string {
	if u.net == "https" {
		return u.addr
	}
	return u.net + "://" + u.addr
}

// failoverBackend asks its upstreams in order and stops at the first usable
// reply. check needs one address per host, so there is no fan-out.
type failoverBackend struct {
	upstreams []upstream
	clients   map[string]*dns.Client
	doh       *http.Client
	timeout   time.Duration
}

func newBackend(cfg config.DNSConfig) dnsBackend {
	timeout := timeoutOf(cfg)

	b := &failoverBackend{
		clients: map[string]*dns.Client{
			"udp":     {Net: "udp", Timeout: timeout},
			"tcp":     {Net: "tcp", Timeout: timeout},
			"tcp-tls": {Net: "tcp-tls", Timeout: timeout, TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12}},
		},
		doh:     &http.Client{Timeout: timeout},
		timeout: timeout,
	}
	for _, ns := range cfg.Nameserver {
		u, err := parseUpstream(ns)
		if err != nil {
			logger.Warn("DNS: skipping upstream %s: %v", ns, err)
			continue
		}
		b.upstreams = append(b.upstreams, u)
	}

	if len(b.upstreams) == 0 {
		return nil
	}
	return b
}

// parseUpstream accepts udp://, tcp://, tls:// and https:// forms; a bare
// address is UDP. Missing ports get the scheme's default.
func parseUpstream(ns string) (upstream, error) {
	if ns == "" {
		return upstream{}, errors.New("empty address")
	}
	if !strings.Contains(ns, "://") {
		if ip, err := netip.ParseAddr(ns); err == nil && ip.Is6() {
			ns = "[" + ns + "]"
		}
		ns = "udp://" + ns
	}
	u, err := url.Parse(ns)
	if err != nil {
		return upstream{}, err
	}

	switch u.Scheme {
	case "https":
		return upstream{net: "https", addr: u.String()}, nil
	case "udp", "tcp":
		return upstream{net: u.Scheme, addr: hostPort(u, "53")}, nil
	case "tls":
		return upstream{net: "tcp-tls", addr: hostPort(u, "853")}, nil
	}
	return upstream{}, fmt.Errorf("unsupported scheme %q (build with -tags quic for more)", u.Scheme)
}

func hostPort(u *url.URL, defPort string) string {
	port := u.Port()
	if port == "" {
		port = defPort
	}
	return net.JoinHostPort(u.Hostname(), port)
}

func (b *failoverBackend) Exchange(m *dns.Msg) (*dns.Msg, string, error) {
	var errs []error
	for _, u := range b.upstreams {
		reply, err := b.exchangeOne(u, m)
		if err == nil && reply != nil {
			return reply, u.String(), nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", u, err))
	}
	return nil, "", errors.Join(errs...)
}

func (b *failoverBackend) exchangeOne(u upstream, m *dns.Msg) (*dns.Msg, error) {
	if u.net == "https" {
		return b.exchangeDoH(u.addr, m)
	}

	reply, _, err := b.clients[u.net].Exchange(m, u.addr)
	if err == nil && u.net == "udp" && reply.Truncated {
		// retry a truncated answer over TCP
		reply, _, err = b.clients["tcp"].Exchange(m, u.addr)
	}
	return reply, err
}

// exchangeDoH sends m as an RFC 8484 POST.
func (b *failoverBackend) exchangeDoH(endpoint string, m *dns.Msg) (*dns.Msg, error) {
	data, err := m.Pack()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/dns-message")
	req.Header.Set("Accept", "application/dns-message")

	resp, err := b.doh.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("doh status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, dns.MaxMsgSize))
	if err != nil {
		return nil, err
	}
	reply := new(dns.Msg)
	if err := reply.Unpack(body); err != nil {
		return nil, err
	}
	return reply, nil
}
