// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package hkd

import (
	"context"
	"crypto/x509"
	"time"

	"github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/helper/gc"
	x509certs "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/chain"
	x509errs "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/errs"
	x509revocation "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/revocation"
	x509store "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/store"
	"github.com/H0llyW00dzZ/hkd-chain-verifier/src/version"
)

type (
	// TrustStore is the immutable verification context.
	TrustStore = x509store.TrustStore
	// Builder assembles a TrustStore.
	Builder = x509store.Builder
	// Path is a validated certification path, leaf first.
	Path = x509chain.Path
)

// CertVerifier verifies host key documents against one trust store and a
// fixed set of intermediate certificates.
//
// A CertVerifier is immutable once created and safe for concurrent use.
type CertVerifier struct {
	store         *x509store.TrustStore
	intermediates []*x509.Certificate
	offline       bool
	retriever     *x509revocation.Retriever
}

type config struct {
	retriever  *x509revocation.Retriever
	storeOpts  []x509store.Option
	requireCRL bool
}

// Option configures a CertVerifier.
type Option func(*config)

// WithRetriever sets the CRL retriever used in online mode.
func WithRetriever(r *x509revocation.Retriever) Option {
	return func(c *config) { c.retriever = r }
}

// WithTime sets the reference clock for validity and CRL freshness checks.
func WithTime(now func() time.Time) Option {
	return func(c *config) { c.storeOpts = append(c.storeOpts, x509store.WithTime(now)) }
}

// WithRequireCRL makes a missing CRL for any issued certificate a
// verification failure.
func WithRequireCRL(require bool) Option {
	return func(c *config) { c.requireCRL = require }
}

// NewCertVerifier loads the certificates, CRLs and root anchor from files and
// builds a verifier.
//
// In online mode (offline false) the CRLs named by the distribution points of
// every certificate in certPaths are downloaded before the store is built;
// any download failure aborts construction. Offline mode never touches the
// network. Every certificate of certPaths must chain to root.
//
// Parameters:
//   - ctx: Context for CRL downloads
//   - certPaths: Intermediate certificates, including the host key signing key
//   - crlPaths: CRL files
//   - root: Root anchor file
//   - offline: Disable CRL downloads
//   - opts: Verifier options
//
// Returns:
//   - *CertVerifier: Ready verifier
//   - error: *Error matching [ErrSetup] and the failure kind
func NewCertVerifier(ctx context.Context, certPaths, crlPaths []string, root string, offline bool, opts ...Option) (*CertVerifier, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.retriever == nil && !offline {
		cfg.retriever = x509revocation.New(version.Version)
	}

	storeOpts := append(cfg.storeOpts,
		x509store.WithRetriever(cfg.retriever),
		x509store.WithRequireCRL(cfg.requireCRL),
	)
	builder, err := x509store.New(root, crlPaths, nil, storeOpts...)
	if err != nil {
		return nil, setupError(err)
	}

	var intermediates []*x509.Certificate
	for _, path := range certPaths {
		certs, err := builder.LoadCertificates(path)
		if err != nil {
			return nil, setupError(err)
		}
		intermediates = append(intermediates, certs...)
	}

	if !offline {
		if err := builder.AddCRLsFrom(ctx, intermediates); err != nil {
			return nil, setupError(err)
		}
	}

	store, err := builder.Build()
	if err != nil {
		return nil, setupError(err)
	}

	if len(intermediates) > 0 {
		if err := x509chain.VerifyChain(store, intermediates, intermediates); err != nil {
			return nil, setupError(err)
		}
	}

	return &CertVerifier{
		store:         store,
		intermediates: intermediates,
		offline:       offline,
		retriever:     cfg.retriever,
	}, nil
}

// Verify verifies a host key document.
//
// In online mode the CRLs named by the document's own distribution points
// are downloaded for this call only, and the document must end up covered by
// a CRL of its issuer: a failed download that no local CRL makes up for is a
// RetrievalError, a document without any applicable CRL (no distribution
// point, or only foreign or forged CRLs served) is a MissingCRL failure.
//
// Returns:
//   - error: nil on success, otherwise *Error matching [ErrVerify] and the failure kind
func (v *CertVerifier) Verify(ctx context.Context, leaf *x509.Certificate) error {
	_, err := v.VerifyPath(ctx, leaf)
	return err
}

// VerifyPath is like [CertVerifier.Verify] but also returns the validated path.
func (v *CertVerifier) VerifyPath(ctx context.Context, leaf *x509.Certificate) (Path, error) {
	var (
		extra    []*x509.RevocationList
		fetchErr error
	)
	if !v.offline && leaf != nil {
		extra, fetchErr = v.retriever.FetchAllLenient(ctx, []*x509.Certificate{leaf})
	}

	path, err := x509chain.VerifyWithCRLs(v.store, v.intermediates, leaf, extra)
	if err != nil {
		return Path{}, verifyError(err)
	}

	if !v.offline && path.Status[0] == x509chain.StatusUnchecked {
		if fetchErr != nil {
			return Path{}, verifyError(fetchErr)
		}
		return Path{}, verifyError(x509errs.New(x509errs.MissingCRL, "verify", leaf.Subject.String(), ErrNoDocumentCRL))
	}

	return path, nil
}

// Offline reports whether the verifier works without network access.
func (v *CertVerifier) Offline() bool { return v.offline }

// Intermediates returns the intermediate certificates the verifier was built with.
func (v *CertVerifier) Intermediates() []*x509.Certificate {
	return append([]*x509.Certificate(nil), v.intermediates...)
}

// Store returns the trust store of the verifier.
func (v *CertVerifier) Store() *TrustStore { return v.store }

// StoreSetup creates a trust store builder from a root anchor file, CRL
// files and extra certificate files. Self-signed extra certificates become
// anchors, the others pinned intermediates.
func StoreSetup(root string, crlFiles, extraCerts []string, opts ...x509store.Option) (*Builder, error) {
	return x509store.New(root, crlFiles, extraCerts, opts...)
}

// VerifyChain verifies every certificate of leafChain against store.
func VerifyChain(store *TrustStore, intermediates, leafChain []*x509.Certificate) error {
	return x509chain.VerifyChain(store, intermediates, leafChain)
}

// DistributionPoints returns the CRL distribution point URLs of cert in
// extension order; empty when the extension is absent.
func DistributionPoints(cert *x509.Certificate) []string {
	return x509certs.DistributionPoints(cert)
}

// LoadCertificate reads a single certificate from a PEM, DER or PKCS#7 file.
func LoadCertificate(path string) (*x509.Certificate, error) {
	data, err := gc.ReadFile(path)
	if err != nil {
		return nil, x509errs.New(x509errs.IoError, "read", path, err)
	}
	return x509certs.New().Decode(data)
}
