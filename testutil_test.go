package capn

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"
)

// selfSignedCert builds an in-memory self-signed certificate/key pair for
// tests that need a tls.Certificate without touching the filesystem.
// There's no library in the example pack for this — crypto/x509's
// CreateCertificate is the only practical way to mint one on the fly, so
// this stays on the standard library by necessity, not preference.
func selfSignedCert(t *testing.T, cn string) tls.Certificate {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("creating certificate: %v", err)
	}
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parsing certificate: %v", err)
	}
	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
		Leaf:        leaf,
	}
}

// newMockGateway starts a TLS listener on loopback and hands each
// accepted connection to handle in its own goroutine. It returns the
// dial address and a stop function. Grounded on astrophor-apns's
// StartApnsServer/ApnsServerHandler pair, adapted to run over TLS (the
// legacy gateway is TLS-only) and to stop cleanly at test end.
func newMockGateway(t *testing.T, handle func(net.Conn)) (addr string, stop func()) {
	t.Helper()
	cert := selfSignedCert(t, "mock-gateway")
	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{Certificates: []tls.Certificate{cert}})
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				if tc, ok := conn.(*tls.Conn); ok {
					if err := tc.Handshake(); err != nil {
						conn.Close()
						return
					}
				}
				handle(conn)
			}(conn)
		}
	}()
	return ln.Addr().String(), func() { ln.Close() }
}

// testClient returns a Client wired to dial addr without verifying the
// mock gateway's self-signed certificate — the certificate-trust
// question belongs to the real deployment's cert pinning, not to this
// package's delivery-loop tests.
func testClient(t *testing.T, addr string) *Client {
	t.Helper()
	cert := selfSignedCert(t, "mock-client")
	c := NewClient()
	c.creds = Credentials{raw: &cert}
	c.testInsecureSkipVerify = true
	c.testDialAddr = addr
	return c
}
