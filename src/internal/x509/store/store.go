// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509store

import (
	"bytes"
	"crypto/x509"
	"time"
)

// TrustStore is a finalized, immutable verification context: trust anchors,
// pinned intermediates and the collected CRLs.
//
// A TrustStore is only produced by [Builder.Build] and always holds at least
// one anchor. It is never mutated afterwards, so concurrent verification
// against the same store is safe.
type TrustStore struct {
	anchors       []*x509.Certificate
	intermediates []*x509.Certificate
	crls          []*x509.RevocationList
	now           func() time.Time
	requireCRL    bool
}

// Anchors returns the trust anchors.
func (s *TrustStore) Anchors() []*x509.Certificate {
	return append([]*x509.Certificate(nil), s.anchors...)
}

// Intermediates returns the pinned intermediate certificates.
func (s *TrustStore) Intermediates() []*x509.Certificate {
	return append([]*x509.Certificate(nil), s.intermediates...)
}

// CRLs returns every CRL held by the store.
func (s *TrustStore) CRLs() []*x509.RevocationList {
	return append([]*x509.RevocationList(nil), s.crls...)
}

// Now returns the reference time used for validity checks.
func (s *TrustStore) Now() time.Time { return s.now() }

// RequireCRL reports whether every issued certificate in a path must be
// covered by a CRL of its issuer.
func (s *TrustStore) RequireCRL() bool { return s.requireCRL }

// IsAnchor reports whether cert is one of the trust anchors.
func (s *TrustStore) IsAnchor(cert *x509.Certificate) bool {
	for _, anchor := range s.anchors {
		if bytes.Equal(anchor.Raw, cert.Raw) {
			return true
		}
	}
	return false
}

// CRLsFor returns the CRLs issued by issuer: the issuer name must match and
// the CRL signature must verify against the issuer key.
func (s *TrustStore) CRLsFor(issuer *x509.Certificate) []*x509.RevocationList {
	return crlsFor(s.crls, issuer)
}

// WithCRLs returns CRLs of the store issued by issuer plus those of extra.
// The store itself is left untouched.
func (s *TrustStore) WithCRLs(issuer *x509.Certificate, extra []*x509.RevocationList) []*x509.RevocationList {
	return append(s.CRLsFor(issuer), crlsFor(extra, issuer)...)
}

func crlsFor(crls []*x509.RevocationList, issuer *x509.Certificate) []*x509.RevocationList {
	var matched []*x509.RevocationList
	for _, crl := range crls {
		if !bytes.Equal(crl.RawIssuer, issuer.RawSubject) {
			continue
		}
		if err := crl.CheckSignatureFrom(issuer); err != nil {
			continue
		}
		matched = append(matched, crl)
	}
	return matched
}
