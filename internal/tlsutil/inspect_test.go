package tlsutil

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"domainadmin/internal/ca"
)

type fixedResolver string

func (f fixedResolver) Resolve(ctx context.Context, host string) (string, error) {
	return string(f), nil
}

func startTLS(t *testing.T) int {
	t.Helper()
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	_, p, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(p)
	return port
}

func TestInspect_Matched(t *testing.T) {
	port := startTLS(t)
	in := &Inspector{Timeout: 5 * time.Second, Resolver: fixedResolver("127.0.0.1")}

	info, err := in.Inspect(context.Background(), "example.com", port)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !info.Matched {
		t.Errorf("expected certificate to match example.com, SANs %v", info.DNSNames)
	}
	if info.Address != net.JoinHostPort("127.0.0.1", strconv.Itoa(port)) {
		t.Errorf("unexpected address %s", info.Address)
	}
	if info.DaysLeft(time.Now()) <= 0 {
		t.Errorf("test certificate should not be expired, NotAfter %v", info.NotAfter)
	}
}

func TestInspect_Mismatch(t *testing.T) {
	port := startTLS(t)
	in := &Inspector{Timeout: 5 * time.Second, Resolver: fixedResolver("127.0.0.1")}

	info, err := in.Inspect(context.Background(), "www.example.net", port)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Matched {
		t.Errorf("expected mismatch for www.example.net")
	}
}

func TestInspect_DialError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	in := &Inspector{Timeout: time.Second, Resolver: fixedResolver("127.0.0.1")}
	if _, err := in.Inspect(context.Background(), "example.com", port); err == nil {
		t.Errorf("expected error dialing a closed port")
	}
}

func TestInspect_BadHost(t *testing.T) {
	in := &Inspector{Timeout: time.Second}
	if _, err := in.Inspect(context.Background(), "-bücher.example", 443); err == nil {
		t.Errorf("expected encoding error")
	}
}

func serveLeaf(t *testing.T, leaf ca.Leaf) int {
	t.Helper()
	authority, err := ca.New()
	if err != nil {
		t.Fatal(err)
	}
	cert, err := authority.Issue(leaf)
	if err != nil {
		t.Fatal(err)
	}
	addr, closeFn, err := ca.Serve(cert)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(closeFn)
	return addr.Port
}

func TestInspect_WildcardCommonName(t *testing.T) {
	port := serveLeaf(t, ca.Leaf{CommonName: "*.shop.example.com"})
	in := &Inspector{Timeout: 5 * time.Second, Resolver: fixedResolver("127.0.0.1")}

	info, err := in.Inspect(context.Background(), "cdn.example.com", port)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.CommonName != "*.shop.example.com" {
		t.Errorf("CommonName = %q", info.CommonName)
	}
	// registrable domains agree, label depth is not checked
	if !info.Matched {
		t.Errorf("expected wildcard common name to match cdn.example.com")
	}
}

func TestInspect_InternationalizedHost(t *testing.T) {
	port := serveLeaf(t, ca.Leaf{CommonName: "xn--bcher-kva.example", DNSNames: []string{"xn--bcher-kva.example"}})
	in := &Inspector{Timeout: 5 * time.Second, Resolver: fixedResolver("127.0.0.1")}

	info, err := in.Inspect(context.Background(), "bücher.example", port)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !info.Matched {
		t.Errorf("expected the ASCII form of the host to be compared")
	}
	if info.Host != "bücher.example" {
		t.Errorf("Host = %q", info.Host)
	}
}

func TestInspect_Expired(t *testing.T) {
	expired := time.Now().Add(-72 * time.Hour)
	port := serveLeaf(t, ca.Leaf{CommonName: "old.example.com", NotBefore: expired.Add(-24 * time.Hour), NotAfter: expired})
	in := &Inspector{Timeout: 5 * time.Second, Resolver: fixedResolver("127.0.0.1")}

	info, err := in.Inspect(context.Background(), "old.example.com", port)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if days := info.DaysLeft(time.Now()); days >= 0 {
		t.Errorf("DaysLeft = %d, want negative", days)
	}
}
