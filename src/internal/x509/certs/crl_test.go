// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs_test

import (
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x509certs "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/certs"
	x509errs "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/errs"
	"github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/pkitest"
)

func TestCertificate_DecodeCRL(t *testing.T) {
	pki := pkitest.Generate(t, "http://127.0.0.1:1234")
	der := pki.CRLs[pkitest.SigningKeyCRL]
	pemData := pem.EncodeToMemory(&pem.Block{Type: "X509 CRL", Bytes: der})

	tests := []struct {
		name        string
		input       []byte
		expectError error
	}{
		{
			name:  "DER",
			input: der,
		},
		{
			name:  "PEM",
			input: pemData,
		},
		{
			name:        "Certificate PEM Instead Of CRL",
			input:       []byte(testCertPEM),
			expectError: x509certs.ErrInvalidBlockType,
		},
		{
			name:        "Garbage",
			input:       []byte("not a crl"),
			expectError: x509certs.ErrParseCRL,
		},
		{
			name:        "Empty",
			input:       nil,
			expectError: x509certs.ErrEmptyInput,
		},
	}

	decoder := x509certs.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crl, err := decoder.DecodeCRL(tt.input)

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError, "expected specific error")
				assert.ErrorIs(t, err, x509errs.DecodeError, "expected decode error kind")
				return
			}

			require.NoError(t, err, "DecodeCRL() error")
			assert.Equal(t, pki.SigningKey.Subject.String(), crl.Issuer.String(), "unexpected CRL issuer")
			assert.True(t, x509certs.IsRevoked(crl, pki.Cert(t, pkitest.HostRevoked)), "expected revoked host to be listed")
			assert.False(t, x509certs.IsRevoked(crl, pki.Cert(t, pkitest.Host)), "expected host not to be listed")
		})
	}
}

func TestCertificate_DecodeMultipleCRL(t *testing.T) {
	pki := pkitest.Generate(t, "http://127.0.0.1:1234")
	decoder := x509certs.New()

	inter := pki.CRL(t, pkitest.InterCRL)
	signing := pki.CRL(t, pkitest.SigningKeyCRL)
	bundle := decoder.EncodeMultipleCRLPEM([]*x509.RevocationList{inter, signing})

	crls, err := decoder.DecodeMultipleCRL(bundle)
	require.NoError(t, err, "DecodeMultipleCRL() error")
	require.Len(t, crls, 2, "expected both CRLs")
	assert.Equal(t, inter.Raw, crls[0].Raw, "expected bundle order to be preserved")
	assert.Equal(t, signing.Raw, crls[1].Raw, "expected bundle order to be preserved")

	single, err := decoder.DecodeMultipleCRL(pki.CRLs[pkitest.InterCRL])
	require.NoError(t, err, "DecodeMultipleCRL() error on DER")
	assert.Len(t, single, 1, "expected a single CRL from DER input")

	mixed := append(decoder.EncodeCRLPEM(inter), []byte(testCertPEM)...)
	_, err = decoder.DecodeMultipleCRL(mixed)
	assert.ErrorIs(t, err, x509certs.ErrInvalidBlockType, "expected mixed bundle to be rejected")
}

func TestDistributionPoints(t *testing.T) {
	decoder := x509certs.New()
	google, err := decoder.Decode([]byte(testCertPEM))
	require.NoError(t, err, "Decode() error")

	pki := pkitest.Generate(t, "http://127.0.0.1:1234")

	tests := []struct {
		name     string
		cert     *x509.Certificate
		expected []string
	}{
		{
			name:     "Public Certificate",
			cert:     google,
			expected: []string{"http://c.pki.goog/wr2/GSyT1N4PBrg.crl"},
		},
		{
			name:     "Signing Key",
			cert:     pki.Cert(t, pkitest.SigningKey),
			expected: []string{"http://127.0.0.1:1234/crl/inter_ca.crl"},
		},
		{
			name:     "No Extension",
			cert:     pki.Cert(t, pkitest.HostNoCRL),
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := x509certs.DistributionPoints(tt.cert)
			second := x509certs.DistributionPoints(tt.cert)

			require.NotNil(t, first, "expected a non-nil slice")
			assert.Equal(t, tt.expected, first, "unexpected distribution points")
			assert.Equal(t, first, second, "expected extraction to be deterministic")
		})
	}
}

func TestDistributionPoints_Isolated(t *testing.T) {
	pki := pkitest.Generate(t, "http://127.0.0.1:1234")
	cert := pki.Cert(t, pkitest.Host)

	points := x509certs.DistributionPoints(cert)
	points[0] = "http://example.invalid/tampered.crl"

	assert.Equal(t, []string{pki.CRLURL(pkitest.SigningKeyCRL)}, x509certs.DistributionPoints(cert),
		"mutating the result must not affect the certificate")
}
