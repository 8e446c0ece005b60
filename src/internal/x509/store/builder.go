// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509store

import (
	"bytes"
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/helper/gc"
	x509certs "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/certs"
	x509errs "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/errs"
	x509revocation "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/revocation"
)

var (
	// ErrNoTrustAnchor indicates that a store was built without any trust anchor.
	ErrNoTrustAnchor = errors.New("x509store: no trust anchor")

	// ErrNoRetriever indicates that CRLs were requested from the network
	// without a configured retriever.
	ErrNoRetriever = errors.New("x509store: no CRL retriever configured")
)

// Builder accumulates trust anchors, intermediates and CRLs and turns them
// into an immutable [TrustStore].
//
// A Builder belongs to a single goroutine. [Builder.Build] may be called
// exactly once; using the Builder afterwards panics.
type Builder struct {
	*x509certs.Certificate

	anchors       []*x509.Certificate
	intermediates []*x509.Certificate
	crls          []*x509.RevocationList

	retriever  *x509revocation.Retriever
	now        func() time.Time
	requireCRL bool
	built      bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithRetriever sets the retriever used by [Builder.AddCRLsFrom].
func WithRetriever(r *x509revocation.Retriever) Option {
	return func(b *Builder) { b.retriever = r }
}

// WithTime sets the clock used as reference time for validity checks.
func WithTime(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithRequireCRL makes a missing CRL for any issued certificate of a path a
// verification failure.
func WithRequireCRL(require bool) Option {
	return func(b *Builder) { b.requireCRL = require }
}

// NewBuilder creates an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		Certificate: x509certs.New(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// New creates a Builder preloaded from files.
//
// Parameters:
//   - root: Optional path to the root anchor file; every certificate it holds becomes an anchor
//   - crlFiles: Paths to CRL files, PEM bundles or DER
//   - extraCerts: Paths to additional certificates; self-signed ones become anchors, the rest intermediates
//   - opts: Builder options
//
// Returns:
//   - *Builder: Loaded builder
//   - error: IoError for unreadable files, DecodeError for malformed content
func New(root string, crlFiles, extraCerts []string, opts ...Option) (*Builder, error) {
	b := NewBuilder(opts...)

	if root != "" {
		if err := b.LoadRoot(root); err != nil {
			return nil, err
		}
	}
	for _, path := range crlFiles {
		if err := b.LoadCRLFile(path); err != nil {
			return nil, err
		}
	}
	for _, path := range extraCerts {
		if err := b.LoadCertFile(path); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func (b *Builder) mustNotBeBuilt() {
	if b.built {
		panic("x509store: builder used after Build")
	}
}

func readFile(path string) ([]byte, error) {
	data, err := gc.ReadFile(path)
	if err != nil {
		return nil, x509errs.New(x509errs.IoError, "read", path, err)
	}
	return data, nil
}

// LoadCertificates reads every certificate of the file at path.
func (b *Builder) LoadCertificates(path string) ([]*x509.Certificate, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	certs, err := b.DecodeMultiple(data)
	if err != nil {
		return nil, fmt.Errorf("x509store: %s: %w", path, err)
	}
	return certs, nil
}

// LoadRoot adds every certificate of the file at path as a trust anchor.
func (b *Builder) LoadRoot(path string) error {
	b.mustNotBeBuilt()

	certs, err := b.LoadCertificates(path)
	if err != nil {
		return err
	}
	b.AddAnchor(certs...)
	return nil
}

// LoadCertFile adds the certificates of the file at path. Self-signed
// certificates become anchors, all others pinned intermediates.
func (b *Builder) LoadCertFile(path string) error {
	b.mustNotBeBuilt()

	certs, err := b.LoadCertificates(path)
	if err != nil {
		return err
	}
	for _, cert := range certs {
		if isSelfSigned(cert) {
			b.AddAnchor(cert)
		} else {
			b.AddIntermediate(cert)
		}
	}
	return nil
}

// LoadCRLFile adds every CRL of the file at path.
func (b *Builder) LoadCRLFile(path string) error {
	b.mustNotBeBuilt()

	data, err := readFile(path)
	if err != nil {
		return err
	}
	crls, err := b.DecodeMultipleCRL(data)
	if err != nil {
		return fmt.Errorf("x509store: %s: %w", path, err)
	}
	b.AddCRL(crls...)
	return nil
}

// AddAnchor adds trusted root certificates.
func (b *Builder) AddAnchor(certs ...*x509.Certificate) {
	b.mustNotBeBuilt()
	b.anchors = append(b.anchors, certs...)
}

// AddIntermediate adds untrusted intermediate certificates that are pinned
// into the store for path building.
func (b *Builder) AddIntermediate(certs ...*x509.Certificate) {
	b.mustNotBeBuilt()
	b.intermediates = append(b.intermediates, certs...)
}

// AddCRL adds certificate revocation lists.
func (b *Builder) AddCRL(crls ...*x509.RevocationList) {
	b.mustNotBeBuilt()
	b.crls = append(b.crls, crls...)
}

// AddCRLsFrom fetches the CRLs named by the distribution points of certs
// and adds them. The first retrieval failure is returned and nothing is
// added in that case.
func (b *Builder) AddCRLsFrom(ctx context.Context, certs []*x509.Certificate) error {
	b.mustNotBeBuilt()

	if b.retriever == nil {
		return x509errs.New(x509errs.RetrievalError, "fetch", "", ErrNoRetriever)
	}

	crls, err := b.retriever.FetchAll(ctx, certs)
	if err != nil {
		return err
	}
	b.AddCRL(crls...)
	return nil
}

// Build finalizes the builder into an immutable TrustStore.
//
// It fails with PathNotFound if no anchor was added, since such a store could
// never validate a chain. Build must be called once; the Builder cannot be
// used afterwards.
func (b *Builder) Build() (*TrustStore, error) {
	b.mustNotBeBuilt()
	b.built = true

	if len(b.anchors) == 0 {
		return nil, x509errs.New(x509errs.PathNotFound, "build", "", ErrNoTrustAnchor)
	}

	return &TrustStore{
		anchors:       uniqueCerts(b.anchors),
		intermediates: uniqueCerts(b.intermediates),
		crls:          uniqueCRLs(b.crls),
		now:           b.now,
		requireCRL:    b.requireCRL,
	}, nil
}

func isSelfSigned(cert *x509.Certificate) bool {
	return bytes.Equal(cert.RawSubject, cert.RawIssuer) && cert.CheckSignatureFrom(cert) == nil
}

func uniqueCerts(certs []*x509.Certificate) []*x509.Certificate {
	seen := make(map[string]struct{}, len(certs))
	out := make([]*x509.Certificate, 0, len(certs))
	for _, cert := range certs {
		if _, ok := seen[string(cert.Raw)]; ok {
			continue
		}
		seen[string(cert.Raw)] = struct{}{}
		out = append(out, cert)
	}
	return out
}

func uniqueCRLs(crls []*x509.RevocationList) []*x509.RevocationList {
	seen := make(map[string]struct{}, len(crls))
	out := make([]*x509.RevocationList, 0, len(crls))
	for _, crl := range crls {
		if _, ok := seen[string(crl.Raw)]; ok {
			continue
		}
		seen[string(crl.Raw)] = struct{}{}
		out = append(out, crl)
	}
	return out
}
