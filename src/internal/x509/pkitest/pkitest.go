// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pkitest

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Names of the generated assets. They follow the layout of a host key
// document bundle: a root, an intermediate CA, the host key signing key and
// the host key documents issued by it.
const (
	RootCA                = "root_ca.chained.crt"
	RootCRL               = "root_ca.crl"
	InterCA               = "inter_ca.crt"
	InterCRL              = "inter_ca.crl"
	SigningKey            = "ibm.crt"
	SigningKeyCRL         = "ibm.crl"
	SigningKeyStaleCRL    = "ibm_stale.crl"
	Host                  = "host.crt"
	HostRevoked           = "host_rev.crt"
	HostInvalidSigningKey = "host_invalid_signing_key.crt"
	HostBadSignature      = "host_bad_signature.crt"
	HostExpired           = "host_crt_expired.crt"
	HostNotYetValid       = "host_not_yet_valid.crt"
	HostNoCRL             = "host_no_crl.crt"
)

var serial atomic.Int64

func nextSerial() *big.Int { return big.NewInt(1000 + serial.Add(1)) }

// PKI is a complete, freshly generated certificate hierarchy.
type PKI struct {
	BaseURL string

	Root        *x509.Certificate
	Inter       *x509.Certificate
	SigningKey  *x509.Certificate
	RootKey     crypto.Signer
	InterKey    crypto.Signer
	SigningPriv crypto.Signer

	// Certs holds every generated certificate by asset name.
	Certs map[string]*x509.Certificate
	// CRLs holds every generated CRL (DER) by asset name.
	CRLs map[string][]byte
}

// CRLURL returns the distribution point URL for the named CRL.
func (p *PKI) CRLURL(name string) string { return p.BaseURL + "/crl/" + name }

// Cert returns the named certificate.
func (p *PKI) Cert(t testing.TB, name string) *x509.Certificate {
	t.Helper()
	cert, ok := p.Certs[name]
	require.True(t, ok, "unknown certificate asset %q", name)
	return cert
}

// CRL returns the parsed named CRL.
func (p *PKI) CRL(t testing.TB, name string) *x509.RevocationList {
	t.Helper()
	der, ok := p.CRLs[name]
	require.True(t, ok, "unknown CRL asset %q", name)
	crl, err := x509.ParseRevocationList(der)
	require.NoError(t, err, "failed to parse CRL asset %q", name)
	return crl
}

// NewKey generates a P-256 signing key.
func NewKey(t testing.TB) crypto.Signer {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err, "failed to generate key")
	return key
}

func create(t testing.TB, template, parent *x509.Certificate, pub crypto.PublicKey, signer crypto.Signer) *x509.Certificate {
	t.Helper()
	der, err := x509.CreateCertificate(rand.Reader, template, parent, pub, signer)
	require.NoError(t, err, "failed to create certificate %q", template.Subject.CommonName)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err, "failed to parse certificate %q", template.Subject.CommonName)
	return cert
}

func caTemplate(cn string, notBefore, notAfter time.Time, crlURLs ...string) *x509.Certificate {
	return &x509.Certificate{
		SerialNumber: nextSerial(),
		Subject: pkix.Name{
			Country:      []string{"US"},
			Organization: []string{"Host Key Signing Test"},
			CommonName:   cn,
		},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
		CRLDistributionPoints: crlURLs,
	}
}

func leafTemplate(cn string, notBefore, notAfter time.Time, crlURLs ...string) *x509.Certificate {
	return &x509.Certificate{
		SerialNumber:          nextSerial(),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyAgreement,
		BasicConstraintsValid: true,
		CRLDistributionPoints: crlURLs,
	}
}

// NewCRL creates a DER encoded CRL issued by issuer listing revoked.
func NewCRL(t testing.TB, issuer *x509.Certificate, key crypto.Signer, thisUpdate, nextUpdate time.Time, revoked ...*x509.Certificate) []byte {
	t.Helper()

	entries := make([]x509.RevocationListEntry, 0, len(revoked))
	for _, cert := range revoked {
		entries = append(entries, x509.RevocationListEntry{
			SerialNumber:   cert.SerialNumber,
			RevocationTime: thisUpdate,
		})
	}

	der, err := x509.CreateRevocationList(rand.Reader, &x509.RevocationList{
		Number:                    nextSerial(),
		ThisUpdate:                thisUpdate,
		NextUpdate:                nextUpdate,
		RevokedCertificateEntries: entries,
	}, issuer, key)
	require.NoError(t, err, "failed to create CRL for %q", issuer.Subject.CommonName)
	return der
}

// Generate creates the hierarchy root -> intermediate -> signing key -> host
// key documents. Distribution points point at baseURL + "/crl/<name>".
func Generate(t testing.TB, baseURL string) *PKI {
	t.Helper()

	now := time.Now()
	notBefore := now.Add(-time.Hour)
	notAfter := now.Add(365 * 24 * time.Hour)

	p := &PKI{
		BaseURL: baseURL,
		Certs:   make(map[string]*x509.Certificate),
		CRLs:    make(map[string][]byte),
	}

	p.RootKey = NewKey(t)
	rootTmpl := caTemplate("Test Root CA", notBefore, notAfter)
	p.Root = create(t, rootTmpl, rootTmpl, p.RootKey.Public(), p.RootKey)

	p.InterKey = NewKey(t)
	p.Inter = create(t, caTemplate("Test Intermediate CA", notBefore, notAfter), p.Root, p.InterKey.Public(), p.RootKey)

	p.SigningPriv = NewKey(t)
	p.SigningKey = create(t,
		caTemplate("Test Host Key Signing Service", notBefore, notAfter, p.CRLURL(InterCRL)),
		p.Inter, p.SigningPriv.Public(), p.InterKey)

	hostURL := p.CRLURL(SigningKeyCRL)
	issue := func(cn string, nb, na time.Time, urls ...string) *x509.Certificate {
		return create(t, leafTemplate(cn, nb, na, urls...), p.SigningKey, NewKey(t).Public(), p.SigningPriv)
	}

	p.Certs[RootCA] = p.Root
	p.Certs[InterCA] = p.Inter
	p.Certs[SigningKey] = p.SigningKey
	p.Certs[Host] = issue("host", notBefore, notAfter, hostURL)
	p.Certs[HostRevoked] = issue("host revoked", notBefore, notAfter, hostURL)
	p.Certs[HostExpired] = issue("host expired", now.Add(-48*time.Hour), now.Add(-24*time.Hour), hostURL)
	p.Certs[HostNotYetValid] = issue("host not yet valid", now.Add(24*time.Hour), notAfter, hostURL)
	p.Certs[HostNoCRL] = issue("host without distribution point", notBefore, notAfter)

	// Same subject as the signing key, unrelated key and key identifier.
	fakeKey := NewKey(t)
	fakeTmpl := caTemplate(p.SigningKey.Subject.CommonName, notBefore, notAfter)
	fakeTmpl.Subject = p.SigningKey.Subject
	fake := create(t, fakeTmpl, fakeTmpl, fakeKey.Public(), fakeKey)
	p.Certs[HostInvalidSigningKey] = create(t, leafTemplate("host invalid signing key", notBefore, notAfter, hostURL), fake, NewKey(t).Public(), fakeKey)

	// Same subject and key identifier as the signing key, signed by another key.
	forged := &x509.Certificate{
		Subject:      p.SigningKey.Subject,
		SubjectKeyId: p.SigningKey.SubjectKeyId,
	}
	p.Certs[HostBadSignature] = create(t, leafTemplate("host bad signature", notBefore, notAfter, hostURL), forged, NewKey(t).Public(), NewKey(t))

	p.CRLs[RootCRL] = NewCRL(t, p.Root, p.RootKey, notBefore, now.Add(7*24*time.Hour))
	p.CRLs[InterCRL] = NewCRL(t, p.Inter, p.InterKey, notBefore, now.Add(7*24*time.Hour))
	p.CRLs[SigningKeyCRL] = NewCRL(t, p.SigningKey, p.SigningPriv, notBefore, now.Add(7*24*time.Hour), p.Certs[HostRevoked])
	p.CRLs[SigningKeyStaleCRL] = NewCRL(t, p.SigningKey, p.SigningPriv, now.Add(-48*time.Hour), now.Add(-24*time.Hour))

	return p
}

// WriteFiles writes every asset into dir and returns the paths by name.
// Certificates are written as PEM; CRLs as DER, except the signing key CRL
// which is written as PEM so both encodings are exercised.
func (p *PKI) WriteFiles(t testing.TB, dir string) map[string]string {
	t.Helper()

	paths := make(map[string]string, len(p.Certs)+len(p.CRLs))
	for name, cert := range p.Certs {
		path := filepath.Join(dir, name)
		data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
		require.NoError(t, os.WriteFile(path, data, 0o644), "failed to write %s", name)
		paths[name] = path
	}
	for name, der := range p.CRLs {
		path := filepath.Join(dir, name)
		data := der
		if name == SigningKeyCRL {
			data = pem.EncodeToMemory(&pem.Block{Type: "X509 CRL", Bytes: der})
		}
		require.NoError(t, os.WriteFile(path, data, 0o644), "failed to write %s", name)
		paths[name] = path
	}
	return paths
}
