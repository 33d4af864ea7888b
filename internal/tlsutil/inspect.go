package tlsutil

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"domainadmin/internal/hostname"
	"domainadmin/internal/logger"
	"domainadmin/internal/metrics"
)

// AddressResolver picks the address to dial for a host.
type AddressResolver interface {
	Resolve(ctx context.Context, host string) (string, error)
}

// CertInfo describes the leaf certificate an endpoint presented.
type CertInfo struct {
	Host       string    `json:"host"`
	Port       int       `json:"port"`
	Address    string    `json:"address"`
	CommonName string    `json:"common_name"`
	DNSNames   []string  `json:"dns_names,omitempty"`
	Issuer     string    `json:"issuer"`
	NotBefore  time.Time `json:"not_before"`
	NotAfter   time.Time `json:"not_after"`
	Matched    bool      `json:"matched"`
}

// DaysLeft is the number of whole days until the certificate expires,
// negative once it has.
func (c *CertInfo) DaysLeft(now time.Time) int {
	return int(c.NotAfter.Sub(now).Hours() / 24)
}

// Inspector performs a TLS handshake with an endpoint and reports its leaf
// certificate. Chains are not validated.
type Inspector struct {
	Timeout  time.Duration
	Resolver AddressResolver
	Verifier *Verifier
}

const defaultDialTimeout = 10 * time.Second

// Inspect connects to host:port and returns the presented certificate. host
// may be internationalized; it is sent as SNI in its ASCII form.
func (in *Inspector) Inspect(ctx context.Context, host string, port int) (info *CertInfo, err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		switch {
		case err != nil:
			result = "error"
		case !info.Matched:
			result = "mismatch"
		}
		metrics.ObserveCheck(result, time.Since(start))
	}()

	ascii, err := hostname.Encode(host)
	if err != nil {
		return nil, err
	}

	addr := ascii
	if in.Resolver != nil {
		addr, err = in.Resolver.Resolve(ctx, ascii)
		if err != nil {
			return nil, err
		}
	}
	target := net.JoinHostPort(addr, strconv.Itoa(port))

	timeout := in.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		Config: &tls.Config{
			ServerName:         ascii,
			InsecureSkipVerify: true,
		},
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := dialer.DialContext(dialCtx, "tcp", target)
	if err != nil {
		return nil, fmt.Errorf("handshake with %s (%s): %w", host, target, err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, errors.New("no peer certificate")
	}
	leaf := state.PeerCertificates[0]

	v := in.Verifier
	if v == nil {
		v = defaultVerifier
	}

	info = &CertInfo{
		Host:       host,
		Port:       port,
		Address:    target,
		CommonName: leaf.Subject.CommonName,
		DNSNames:   leaf.DNSNames,
		Issuer:     leaf.Issuer.String(),
		NotBefore:  leaf.NotBefore,
		NotAfter:   leaf.NotAfter,
		Matched:    v.MatchCertificate(leaf, ascii),
	}
	logger.Debug("TLS: %s -> CN=%q SANs=%v expires %s", target, info.CommonName, info.DNSNames, info.NotAfter.Format(time.DateOnly))
	return info, nil
}
