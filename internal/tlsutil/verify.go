package tlsutil

import (
	"crypto/x509"
	"strings"

	"domainadmin/internal/logger"
	"domainadmin/internal/metrics"
	"domainadmin/internal/psl"
)

// RootResolver derives the registrable domain of a host.
type RootResolver interface {
	RootDomain(host string) (string, error)
}

// Verifier decides whether a certificate name covers a hostname.
type Verifier struct {
	resolver RootResolver
}

func NewVerifier(resolver RootResolver) *Verifier {
	if resolver == nil {
		resolver = psl.Default()
	}
	return &Verifier{resolver: resolver}
}

var defaultVerifier = NewVerifier(nil)

// VerifyCommonName checks commonName against domain with the built-in suffix list.
func VerifyCommonName(commonName, domain string) bool {
	return defaultVerifier.VerifyCommonName(commonName, domain)
}

// VerifyCommonName reports whether commonName authorizes domain.
//
// A name containing '*' anywhere matches every host with the same registrable
// domain, regardless of label depth: "*.a.example.com" accepts
// "b.example.com". Everything else must be equal byte for byte. Neither form
// folds case.
func (v *Verifier) VerifyCommonName(commonName, domain string) bool {
	logger.Debug("%s <=> %s", commonName, domain)

	if !strings.Contains(commonName, "*") {
		matched := commonName == domain
		metrics.ObserveVerify("exact", matched)
		return matched
	}

	cnRoot, err := v.resolver.RootDomain(commonName)
	if err != nil {
		logger.Warn("Failed to get root domain for %s: %v", commonName, err)
		metrics.ObserveVerify("wildcard", false)
		return false
	}
	root, err := v.resolver.RootDomain(domain)
	if err != nil {
		logger.Warn("Failed to get root domain for %s: %v", domain, err)
		metrics.ObserveVerify("wildcard", false)
		return false
	}

	matched := cnRoot == root
	metrics.ObserveVerify("wildcard", matched)
	return matched
}

// MatchCertificate applies VerifyCommonName to the subject common name and to
// every DNS SAN of cert.
func (v *Verifier) MatchCertificate(cert *x509.Certificate, domain string) bool {
	if cert.Subject.CommonName != "" && v.VerifyCommonName(cert.Subject.CommonName, domain) {
		return true
	}
	for _, name := range cert.DNSNames {
		if v.VerifyCommonName(name, domain) {
			return true
		}
	}
	return false
}
