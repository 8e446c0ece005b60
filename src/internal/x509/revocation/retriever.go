// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509revocation

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/helper/gc"
	x509certs "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/certs"
	x509errs "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/errs"
)

const (
	// ContentTypeCRL is the media type of a DER encoded CRL (RFC 2585).
	ContentTypeCRL = "application/pkix-crl"

	// contentTypeLegacyCRL is still served by some older distribution points.
	contentTypeLegacyCRL = "application/x-pkcs7-crl"

	// MaxCRLSize caps the size of a downloaded CRL.
	MaxCRLSize = 16 << 20
)

var (
	// ErrUnexpectedStatus indicates a non-success HTTP status.
	ErrUnexpectedStatus = errors.New("x509revocation: unexpected HTTP status")

	// ErrUnexpectedContentType indicates a response that is not declared as a CRL.
	ErrUnexpectedContentType = errors.New("x509revocation: unexpected content type")
)

// Retriever fetches CRLs from the distribution points of certificates.
//
// A Retriever performs no retries and keeps no cache; every call goes to the
// network. It is safe for concurrent use once constructed.
type Retriever struct {
	*x509certs.Certificate
	HTTPConfig *HTTPConfig // HTTP client configuration

	doer Doer
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithDoer replaces the HTTP client built from [HTTPConfig].
func WithDoer(d Doer) Option {
	return func(r *Retriever) { r.doer = d }
}

// WithHTTPConfig replaces the default HTTP configuration.
func WithHTTPConfig(cfg *HTTPConfig) Option {
	return func(r *Retriever) {
		if cfg != nil {
			r.HTTPConfig = cfg
		}
	}
}

// New creates a Retriever.
//
// Parameters:
//   - version: Application version used in the User-Agent header
//   - opts: Optional transport and HTTP configuration overrides
//
// Returns:
//   - *Retriever: New Retriever instance
func New(version string, opts ...Option) *Retriever {
	r := &Retriever{
		Certificate: x509certs.New(),
		HTTPConfig:  NewHTTPConfig(version),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Retriever) client() Doer {
	if r.doer != nil {
		return r.doer
	}
	return r.HTTPConfig.Client()
}

// isCRLContentType reports whether the Content-Type header declares a CRL.
func isCRLContentType(header string) bool {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return mediaType == ContentTypeCRL || mediaType == contentTypeLegacyCRL
}

func retrievalError(url string, err error) error {
	return x509errs.New(x509errs.RetrievalError, "fetch", url, err)
}

// Fetch downloads and decodes the CRL at url.
//
// It fails with a retrieval error if the transport fails, the status is not
// 2xx or the declared content type is not a CRL media type. A body that does
// not decode is reported as a decode error.
//
// Parameters:
//   - ctx: Context for the HTTP request
//   - url: Distribution point URL
//
// Returns:
//   - *x509.RevocationList: Parsed CRL
//   - error: Retrieval or decode error
func (r *Retriever) Fetch(ctx context.Context, url string) (*x509.RevocationList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retrievalError(url, err)
	}
	req.Header.Set("Accept", ContentTypeCRL)
	req.Header.Set("User-Agent", r.HTTPConfig.GetUserAgent())

	resp, err := r.client().Do(req)
	if err != nil {
		return nil, retrievalError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, retrievalError(url, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode))
	}

	if ct := resp.Header.Get("Content-Type"); !isCRLContentType(ct) {
		return nil, retrievalError(url, fmt.Errorf("%w: %q", ErrUnexpectedContentType, ct))
	}

	data, err := gc.ReadAll(resp.Body, MaxCRLSize)
	if err != nil {
		return nil, retrievalError(url, fmt.Errorf("failed to read CRL: %w", err))
	}

	crl, err := r.DecodeCRL(data)
	if err != nil {
		return nil, fmt.Errorf("x509revocation: %s: %w", url, err)
	}

	return crl, nil
}

// distributionPoints returns the distribution points of certs in order,
// without duplicates.
func distributionPoints(certs []*x509.Certificate) []string {
	seen := make(map[string]struct{})
	var urls []string
	for _, cert := range certs {
		for _, url := range x509certs.DistributionPoints(cert) {
			if _, ok := seen[url]; ok {
				continue
			}
			seen[url] = struct{}{}
			urls = append(urls, url)
		}
	}
	return urls
}

// FetchAll fetches the CRLs of every distribution point of certs.
//
// Identical URLs across certificates are fetched once. The first failure
// aborts the walk and is returned.
func (r *Retriever) FetchAll(ctx context.Context, certs []*x509.Certificate) ([]*x509.RevocationList, error) {
	var crls []*x509.RevocationList
	for _, url := range distributionPoints(certs) {
		crl, err := r.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		crls = append(crls, crl)
	}
	return crls, nil
}

// FetchAllLenient behaves like [Retriever.FetchAll] but keeps going after a
// failure. It returns every CRL it could fetch together with the joined
// errors of the ones it could not.
func (r *Retriever) FetchAllLenient(ctx context.Context, certs []*x509.Certificate) ([]*x509.RevocationList, error) {
	var (
		crls []*x509.RevocationList
		errs []error
	)
	for _, url := range distributionPoints(certs) {
		crl, err := r.Fetch(ctx, url)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		crls = append(crls, crl)
	}
	return crls, errors.Join(errs...)
}
