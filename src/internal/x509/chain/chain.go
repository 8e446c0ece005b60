// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"bytes"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	x509certs "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/certs"
	x509errs "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/errs"
	x509store "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/store"
)

var (
	// ErrNotCA indicates that an issuer candidate may not sign certificates.
	ErrNotCA = errors.New("x509chain: issuer candidate is not a CA")

	// ErrCycle indicates that an issuer candidate is already part of the path.
	ErrCycle = errors.New("x509chain: issuer candidate already in path")

	// ErrDepthExceeded indicates that the path grew beyond the number of
	// available certificates.
	ErrDepthExceeded = errors.New("x509chain: maximum path depth exceeded")

	// ErrSearchLimit indicates that path building visited more certificates
	// than the search budget allows.
	ErrSearchLimit = errors.New("x509chain: path search budget exhausted")

	// ErrNoIssuer indicates that no candidate carries the declared issuer.
	ErrNoIssuer = errors.New("x509chain: no certificate matches the declared issuer")

	// ErrNoTrustAnchor indicates verification against a store without anchors.
	ErrNoTrustAnchor = errors.New("x509chain: no trust anchor")

	// ErrEmptyChain indicates that VerifyChain was given nothing to verify.
	ErrEmptyChain = errors.New("x509chain: no certificate to verify")
)

// Revocation states reported per certificate of a validated [Path].
const (
	StatusGood      = "good"         // covered by a current CRL of its issuer, not listed
	StatusUnchecked = "no CRL"       // no applicable CRL was available
	StatusAnchor    = "trust anchor" // anchors are not subject to revocation
)

// searchBudget bounds the number of walk steps per candidate certificate.
const searchBudget = 16

// rank orders failure kinds by specificity. The most specific failure seen
// across every explored path is the one reported.
var rank = map[x509errs.Kind]int{
	x509errs.PathNotFound:     1,
	x509errs.IssuerMismatch:   2,
	x509errs.SignatureInvalid: 3,
	x509errs.BeforeValidity:   4,
	x509errs.AfterValidity:    4,
	x509errs.MissingCRL:       5,
	x509errs.StaleCRL:         6,
	x509errs.Revoked:          7,
}

// Path is a validated certification path, leaf first and trust anchor last.
type Path struct {
	Certs      []*x509.Certificate // Leaf first, anchor last
	Status     []string            // Revocation status per certificate
	VerifiedAt time.Time           // Reference time of the verification
}

// Leaf returns the first certificate of the path.
func (p Path) Leaf() *x509.Certificate {
	if len(p.Certs) == 0 {
		return nil
	}
	return p.Certs[0]
}

// Anchor returns the trust anchor that terminates the path.
func (p Path) Anchor() *x509.Certificate {
	if len(p.Certs) == 0 {
		return nil
	}
	return p.Certs[len(p.Certs)-1]
}

// Len returns the number of certificates in the path.
func (p Path) Len() int { return len(p.Certs) }

// VerifyChain verifies every certificate of leafChain against store, using
// intermediates as additional untrusted issuer candidates.
//
// Parameters:
//   - store: Finalized trust store
//   - intermediates: Untrusted intermediate certificates, order-insensitive
//   - leafChain: Certificates to verify
//
// Returns:
//   - error: The first failure, nil when every certificate verified
func VerifyChain(store *x509store.TrustStore, intermediates, leafChain []*x509.Certificate) error {
	if len(leafChain) == 0 {
		return x509errs.New(x509errs.PathNotFound, "verify", "", ErrEmptyChain)
	}

	for _, cert := range leafChain {
		if _, err := Verify(store, intermediates, cert); err != nil {
			return err
		}
	}
	return nil
}

// Verify builds and validates a path from leaf to one of the anchors of store.
//
// Revocation is checked against the CRLs held by store.
//
// Returns:
//   - Path: The validated path
//   - error: A *x509errs.Error describing the most specific failure
//
// Thread Safety: Safe for concurrent use; store and intermediates are only read.
func Verify(store *x509store.TrustStore, intermediates []*x509.Certificate, leaf *x509.Certificate) (Path, error) {
	return VerifyWithCRLs(store, intermediates, leaf, nil)
}

// VerifyWithCRLs is like [Verify] but also consults extraCRLs for revocation.
// The store is not modified.
func VerifyWithCRLs(store *x509store.TrustStore, intermediates []*x509.Certificate, leaf *x509.Certificate, extraCRLs []*x509.RevocationList) (Path, error) {
	if store == nil || len(store.Anchors()) == 0 {
		return Path{}, x509errs.New(x509errs.PathNotFound, "verify", subjectOf(leaf), ErrNoTrustAnchor)
	}
	if leaf == nil {
		return Path{}, x509errs.New(x509errs.PathNotFound, "verify", "", ErrEmptyChain)
	}

	v := newVerifier(store, intermediates, extraCRLs)
	visited := map[string]bool{string(leaf.Raw): true}
	if path, ok := v.walk([]*x509.Certificate{leaf}, visited); ok {
		return path, nil
	}
	return Path{}, v.failure
}

type verifier struct {
	store      *x509store.TrustStore
	now        time.Time
	candidates []*x509.Certificate
	extraCRLs  []*x509.RevocationList
	maxDepth   int
	maxSteps   int
	steps      int
	exhausted  bool

	failure *x509errs.Error
}

func newVerifier(store *x509store.TrustStore, intermediates []*x509.Certificate, extraCRLs []*x509.RevocationList) *verifier {
	anchors := store.Anchors()
	pinned := store.Intermediates()

	candidates := make([]*x509.Certificate, 0, len(anchors)+len(pinned)+len(intermediates))
	candidates = append(candidates, anchors...)
	candidates = append(candidates, pinned...)
	candidates = append(candidates, intermediates...)

	return &verifier{
		store:      store,
		now:        store.Now(),
		candidates: candidates,
		extraCRLs:  extraCRLs,
		maxDepth:   len(intermediates) + len(pinned) + 1,
		maxSteps:   searchBudget * (len(candidates) + 1),
	}
}

// record keeps the failure if it is more specific than the current one.
func (v *verifier) record(kind x509errs.Kind, cert *x509.Certificate, cause error) {
	v.recordErr(failure(kind, cert, cause))
}

func (v *verifier) recordErr(err *x509errs.Error) {
	if v.failure != nil && rank[v.failure.Kind] >= rank[err.Kind] {
		return
	}
	v.failure = err
}

func failure(kind x509errs.Kind, cert *x509.Certificate, cause error) *x509errs.Error {
	return x509errs.New(kind, "verify", subjectOf(cert), cause)
}

// walk extends path, whose last element is the certificate under
// consideration, depth first until a trust anchor is reached.
func (v *verifier) walk(path []*x509.Certificate, visited map[string]bool) (Path, bool) {
	cert := path[len(path)-1]

	if v.steps++; v.steps > v.maxSteps {
		if !v.exhausted {
			v.exhausted = true
			// Replaces cycle and depth failures, which are its symptoms.
			if v.failure == nil || rank[v.failure.Kind] <= rank[x509errs.PathNotFound] {
				v.failure = failure(x509errs.PathNotFound, cert, ErrSearchLimit)
			}
		}
		return Path{}, false
	}

	if err := v.checkValidity(cert); err != nil {
		return Path{}, false
	}

	if v.store.IsAnchor(cert) {
		return v.complete(path)
	}

	if len(path) > v.maxDepth {
		v.record(x509errs.PathNotFound, cert, ErrDepthExceeded)
		return Path{}, false
	}

	issuers := v.issuersOf(cert)
	if len(issuers) == 0 {
		v.record(x509errs.IssuerMismatch, cert, fmt.Errorf("%w: %s", ErrNoIssuer, cert.Issuer))
		return Path{}, false
	}

	for _, issuer := range issuers {
		if visited[string(issuer.Raw)] {
			v.record(x509errs.PathNotFound, cert, ErrCycle)
			continue
		}
		if !isCA(issuer) {
			v.record(x509errs.PathNotFound, cert, fmt.Errorf("%w: %s", ErrNotCA, issuer.Subject))
			continue
		}
		if err := issuer.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature); err != nil {
			v.record(x509errs.SignatureInvalid, cert, err)
			continue
		}

		visited[string(issuer.Raw)] = true
		result, ok := v.walk(append(path[:len(path):len(path)], issuer), visited)
		delete(visited, string(issuer.Raw))
		if ok {
			return result, true
		}
	}

	return Path{}, false
}

// issuersOf returns the candidates whose subject is the declared issuer of
// cert and whose key identifier does not contradict its authority key
// identifier.
func (v *verifier) issuersOf(cert *x509.Certificate) []*x509.Certificate {
	var issuers []*x509.Certificate
	seen := make(map[string]bool)
	for _, candidate := range v.candidates {
		if seen[string(candidate.Raw)] {
			continue
		}
		if !bytes.Equal(candidate.RawSubject, cert.RawIssuer) {
			continue
		}
		if len(cert.AuthorityKeyId) > 0 && len(candidate.SubjectKeyId) > 0 &&
			!bytes.Equal(cert.AuthorityKeyId, candidate.SubjectKeyId) {
			continue
		}
		seen[string(candidate.Raw)] = true
		issuers = append(issuers, candidate)
	}
	return issuers
}

func (v *verifier) checkValidity(cert *x509.Certificate) error {
	switch {
	case v.now.Before(cert.NotBefore):
		err := fmt.Errorf("current time %s is before %s",
			v.now.UTC().Format(time.RFC3339), cert.NotBefore.UTC().Format(time.RFC3339))
		v.record(x509errs.BeforeValidity, cert, err)
		return err
	case v.now.After(cert.NotAfter):
		err := fmt.Errorf("current time %s is after %s",
			v.now.UTC().Format(time.RFC3339), cert.NotAfter.UTC().Format(time.RFC3339))
		v.record(x509errs.AfterValidity, cert, err)
		return err
	}
	return nil
}

// complete checks revocation for every issued certificate of path.
func (v *verifier) complete(path []*x509.Certificate) (Path, bool) {
	status := make([]string, len(path))
	status[len(path)-1] = StatusAnchor

	for i := 0; i < len(path)-1; i++ {
		s, err := v.revocationStatus(path[i], path[i+1])
		if err != nil {
			v.recordErr(err)
			return Path{}, false
		}
		status[i] = s
	}

	return Path{
		Certs:      append([]*x509.Certificate(nil), path...),
		Status:     status,
		VerifiedAt: v.now,
	}, true
}

// revocationStatus checks cert against the CRLs of issuer. A listed serial
// wins over staleness; one current CRL is enough to accept the status.
func (v *verifier) revocationStatus(cert, issuer *x509.Certificate) (string, *x509errs.Error) {
	crls := v.store.WithCRLs(issuer, v.extraCRLs)
	if len(crls) == 0 {
		if v.store.RequireCRL() {
			return "", failure(x509errs.MissingCRL, cert, fmt.Errorf("no CRL issued by %s", issuer.Subject))
		}
		return StatusUnchecked, nil
	}

	for _, crl := range crls {
		if x509certs.IsRevoked(crl, cert) {
			return "", failure(x509errs.Revoked, cert,
				fmt.Errorf("serial %s listed by CRL of %s", cert.SerialNumber, issuer.Subject))
		}
	}

	for _, crl := range crls {
		if crl.NextUpdate.IsZero() || !v.now.After(crl.NextUpdate) {
			return StatusGood, nil
		}
	}

	return "", failure(x509errs.StaleCRL, cert,
		fmt.Errorf("CRL of %s expired at %s", issuer.Subject, crls[0].NextUpdate.UTC().Format(time.RFC3339)))
}

// isCA reports whether cert may issue certificates.
func isCA(cert *x509.Certificate) bool {
	if cert.Version >= 3 && (!cert.BasicConstraintsValid || !cert.IsCA) {
		return false
	}
	if cert.KeyUsage != 0 && cert.KeyUsage&x509.KeyUsageCertSign == 0 {
		return false
	}
	return true
}

func subjectOf(cert *x509.Certificate) string {
	if cert == nil {
		return ""
	}
	return cert.Subject.String()
}
