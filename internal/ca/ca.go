// Package ca issues throwaway certificates for exercising the certificate
// checks against live TLS endpoints. Nothing it issues is trusted.
package ca

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"time"
)

// Authority is an in-memory root that signs leaf certificates.
type Authority struct {
	RootCert *x509.Certificate
	RootKey  *rsa.PrivateKey
}

// Leaf describes a certificate to issue. Zero validity bounds mean "valid from
// an hour ago for a day".
type Leaf struct {
	CommonName string
	DNSNames   []string
	NotBefore  time.Time
	NotAfter   time.Time
}

func New() (*Authority, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName:   "domainadmin Test Root",
			Organization: []string{"domainadmin"},
		},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return nil, err
	}
	cert, err := x509.ParseCertificate(derBytes)
	if err != nil {
		return nil, err
	}
	return &Authority{RootCert: cert, RootKey: priv}, nil
}

// Issue signs a leaf for l with a fresh ECDSA key.
func (a *Authority) Issue(l Leaf) (*tls.Certificate, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	serialNumberLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	serialNumber, err := rand.Int(rand.Reader, serialNumberLimit)
	if err != nil {
		return nil, err
	}

	notBefore, notAfter := l.NotBefore, l.NotAfter
	if notBefore.IsZero() {
		notBefore = time.Now().Add(-1 * time.Hour)
	}
	if notAfter.IsZero() {
		notAfter = time.Now().Add(24 * time.Hour)
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName:   l.CommonName,
			Organization: []string{"domainadmin"},
		},
		NotBefore:   notBefore,
		NotAfter:    notAfter,
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:    l.DNSNames,
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, a.RootCert, &priv.PublicKey, a.RootKey)
	if err != nil {
		return nil, err
	}
	leaf, err := x509.ParseCertificate(derBytes)
	if err != nil {
		return nil, err
	}

	return &tls.Certificate{
		Certificate: [][]byte{derBytes, a.RootCert.Raw},
		PrivateKey:  priv,
		Leaf:        leaf,
	}, nil
}

// Serve accepts TLS connections on a loopback port, presenting cert to every
// client, until the returned close function is called.
func Serve(cert *tls.Certificate) (addr *net.TCPAddr, closeFn func(), err error) {
	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{
		Certificates: []tls.Certificate{*cert},
	})
	if err != nil {
		return nil, nil, err
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				_ = c.(*tls.Conn).Handshake()
			}(conn)
		}
	}()

	return ln.Addr().(*net.TCPAddr), func() { ln.Close() }, nil
}

func (a *Authority) RootPEM() []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: a.RootCert.Raw})
}
