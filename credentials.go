package capn

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"os"
	"time"

	"golang.org/x/crypto/pkcs12"
)

// Credentials holds exactly one of two variants: a PEM certificate+key
// pair (with an optional key password) or a PKCS#12 bundle. Credentials
// are immutable once a transport is open; Client enforces that by
// refusing SetCertificate/SetPKCS12 while connected.
type Credentials struct {
	// PEM variant.
	CertFile    string
	KeyFile     string
	KeyPassword string

	// PKCS12 variant.
	P12File     string
	P12Password string

	// raw lets tests inject an already-built certificate, bypassing file
	// loading entirely. Not part of the public surface.
	raw *tls.Certificate
}

func (c Credentials) isPKCS12() bool { return c.P12File != "" }

// load builds a tls.Certificate from whichever variant is set. PKCS12
// load failures become ErrUnableToUseSpecifiedPKCS12; PEM certificate
// failures become ErrUnableToUseSpecifiedCertificate; PEM key failures
// (including a cert/key mismatch) become ErrUnableToUseSpecifiedPrivateKey.
func (c Credentials) load() (tls.Certificate, *Error) {
	if c.raw != nil {
		return *c.raw, nil
	}
	if c.isPKCS12() {
		cert, err := loadPKCS12(c.P12File, c.P12Password)
		if err != nil {
			return tls.Certificate{}, newError(ErrUnableToUseSpecifiedPKCS12, err)
		}
		return *cert, nil
	}
	if c.CertFile == "" {
		return tls.Certificate{}, newError(ErrCertificateNotSet, nil)
	}
	if c.KeyFile == "" {
		return tls.Certificate{}, newError(ErrPrivateKeyNotSet, nil)
	}
	cert, err := loadPEM(c.CertFile, c.KeyFile, c.KeyPassword)
	if err != nil {
		if e, ok := err.(*Error); ok {
			return tls.Certificate{}, e
		}
		return tls.Certificate{}, newError(ErrUnableToUseSpecifiedPrivateKey, err)
	}
	return *cert, nil
}

// loadPKCS12 decodes a PKCS#12 bundle into a usable certificate/key pair.
func loadPKCS12(filename, password string) (*tls.Certificate, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	privateKey, x509Cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return nil, err
	}
	cert := &tls.Certificate{
		Certificate: [][]byte{x509Cert.Raw},
		PrivateKey:  privateKey,
		Leaf:        x509Cert,
	}
	if _, err = x509Cert.Verify(x509.VerifyOptions{}); err != nil {
		if _, ok := err.(x509.UnknownAuthorityError); !ok {
			return cert, err
		}
	}
	return cert, nil
}

// loadPEM installs a certificate from certFile, decrypting the key in
// keyFile with keyPassword when one is set, then verifies the key matches
// the certificate (tls.X509KeyPair already performs that check and
// returns an error if it doesn't).
func loadPEM(certFile, keyFile, keyPassword string) (*tls.Certificate, error) {
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return nil, newError(ErrUnableToUseSpecifiedCertificate, err)
	}
	// Check the certificate on its own first, so that an unusable
	// certificate file is reported as a certificate failure rather than
	// by tls.X509KeyPair below as a key failure.
	var leafDER []byte
	for rest := certPEM; leafDER == nil; {
		var block *pem.Block
		if block, rest = pem.Decode(rest); block == nil {
			break
		}
		if block.Type == "CERTIFICATE" {
			leafDER = block.Bytes
		}
	}
	if _, err := x509.ParseCertificate(leafDER); err != nil {
		return nil, newError(ErrUnableToUseSpecifiedCertificate, err)
	}
	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, newError(ErrUnableToUseSpecifiedPrivateKey, err)
	}
	if keyPassword != "" {
		keyPEM, err = decryptPEMKey(keyPEM, keyPassword)
		if err != nil {
			return nil, newError(ErrUnableToUseSpecifiedPrivateKey, err)
		}
	}
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, newError(ErrUnableToUseSpecifiedPrivateKey, err)
	}
	return &cert, nil
}

// decryptPEMKey decrypts a password-protected PEM private key block,
// returning a re-encoded, unencrypted PEM block suitable for
// tls.X509KeyPair.
//
//nolint:staticcheck // x509.DecryptPEMBlock is deprecated but this is the
// only stdlib entry point for PKCS#1-encrypted PEM keys, which is what
// Apple's developer tooling historically produced.
func decryptPEMKey(keyPEM []byte, password string) ([]byte, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, newError(ErrUnableToUseSpecifiedPrivateKey, nil)
	}
	der, err := x509.DecryptPEMBlock(block, []byte(password))
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: der}), nil
}

// CertificateInfo describes the parsed subject/issuer of a loaded
// certificate, logged at INFO once a connection is established.
type CertificateInfo struct {
	CName    string
	OrgName  string
	OrgUnit  string
	Country  string
	BundleID string
	IsApple  bool
	Expire   time.Time
}

func (i CertificateInfo) String() string { return i.CName }

const appleDevIssuerCN = "Apple Worldwide Developer Relations Certification Authority"

var (
	oidCountry = asn1.ObjectIdentifier{2, 5, 4, 6}
	oidOrgName = asn1.ObjectIdentifier{2, 5, 4, 10}
	oidOrgUnit = asn1.ObjectIdentifier{2, 5, 4, 11}
	oidBundle  = asn1.ObjectIdentifier{0, 9, 2342, 19200300, 100, 1, 1}
)

// certificateInfo parses the leaf certificate's subject/issuer for
// logging. Returns nil if it can't be parsed; callers treat that as
// "nothing to log", not a fatal error, since it runs after a successful
// handshake.
func certificateInfo(cert tls.Certificate) *CertificateInfo {
	leaf := cert.Leaf
	if leaf == nil {
		var err error
		leaf, err = x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return nil
		}
	}
	info := &CertificateInfo{
		CName:   leaf.Subject.CommonName,
		Expire:  leaf.NotAfter,
		IsApple: leaf.Issuer.CommonName == appleDevIssuerCN,
	}
	for _, attr := range leaf.Subject.Names {
		switch t := attr.Type; {
		case t.Equal(oidOrgName):
			if s, ok := attr.Value.(string); ok {
				info.OrgName = s
			}
		case t.Equal(oidOrgUnit):
			if s, ok := attr.Value.(string); ok {
				info.OrgUnit = s
			}
		case t.Equal(oidBundle):
			if s, ok := attr.Value.(string); ok {
				info.BundleID = s
			}
		case t.Equal(oidCountry):
			if s, ok := attr.Value.(string); ok {
				info.Country = s
			}
		}
	}
	return info
}
