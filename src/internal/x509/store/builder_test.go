// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509store_test

import (
	"context"
	"crypto/x509"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x509certs "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/certs"
	x509errs "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/errs"
	"github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/pkitest"
	x509revocation "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/revocation"
	x509store "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/store"
)

const version = "1.3.3.7-testing"

func TestNew(t *testing.T) {
	pki := pkitest.Generate(t, "http://127.0.0.1:1234")
	paths := pki.WriteFiles(t, t.TempDir())

	tests := []struct {
		name       string
		root       string
		crlFiles   []string
		extraCerts []string
		anchors    int
		inters     int
		crls       int
		expectKind x509errs.Kind
	}{
		{
			name:    "Root Only",
			root:    paths[pkitest.RootCA],
			anchors: 1,
		},
		{
			name:     "Root And CRLs",
			root:     paths[pkitest.RootCA],
			crlFiles: []string{paths[pkitest.InterCRL], paths[pkitest.SigningKeyCRL]},
			anchors:  1,
			crls:     2,
		},
		{
			name:       "Extra Certificates Split Into Anchors And Intermediates",
			extraCerts: []string{paths[pkitest.SigningKey], paths[pkitest.InterCA], paths[pkitest.RootCA]},
			anchors:    1,
			inters:     2,
		},
		{
			name:     "Duplicate CRL Files Are Merged",
			root:     paths[pkitest.RootCA],
			crlFiles: []string{paths[pkitest.InterCRL], paths[pkitest.InterCRL]},
			anchors:  1,
			crls:     1,
		},
		{
			name:       "Missing Root",
			root:       filepath.Join(t.TempDir(), "missing.crt"),
			expectKind: x509errs.IoError,
		},
		{
			name:       "Missing CRL",
			root:       paths[pkitest.RootCA],
			crlFiles:   []string{filepath.Join(t.TempDir(), "missing.crl")},
			expectKind: x509errs.IoError,
		},
		{
			name:       "Certificate Given As CRL",
			root:       paths[pkitest.RootCA],
			crlFiles:   []string{paths[pkitest.InterCA]},
			expectKind: x509errs.DecodeError,
		},
		{
			name:       "CRL Given As Root",
			root:       paths[pkitest.InterCRL],
			expectKind: x509errs.DecodeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder, err := x509store.New(tt.root, tt.crlFiles, tt.extraCerts)

			if tt.expectKind != x509errs.Unknown {
				assert.Nil(t, builder, "no builder on failure")
				assert.Equal(t, tt.expectKind, x509errs.KindOf(err), "unexpected error kind: %v", err)
				return
			}

			require.NoError(t, err, "New() error")
			store, err := builder.Build()
			require.NoError(t, err, "Build() error")

			assert.Len(t, store.Anchors(), tt.anchors, "unexpected anchor count")
			assert.Len(t, store.Intermediates(), tt.inters, "unexpected intermediate count")
			assert.Len(t, store.CRLs(), tt.crls, "unexpected CRL count")
		})
	}
}

func TestNew_MissingFileUnwrapsToFS(t *testing.T) {
	_, err := x509store.New(filepath.Join(t.TempDir(), "missing.crt"), nil, nil)
	assert.ErrorIs(t, err, fs.ErrNotExist, "expected underlying fs error")
}

func TestNew_ChainedRootBundle(t *testing.T) {
	pki := pkitest.Generate(t, "http://127.0.0.1:1234")
	decoder := x509certs.New()

	other := pkitest.Generate(t, "http://127.0.0.1:1234")
	path := filepath.Join(t.TempDir(), pkitest.RootCA)
	bundle := decoder.EncodeMultiplePEM([]*x509.Certificate{pki.Root, other.Root})
	require.NoError(t, os.WriteFile(path, bundle, 0o644))

	builder, err := x509store.New(path, nil, nil)
	require.NoError(t, err)
	store, err := builder.Build()
	require.NoError(t, err)

	assert.Len(t, store.Anchors(), 2, "every certificate of the root file is an anchor")
	assert.True(t, store.IsAnchor(other.Root))
	assert.False(t, store.IsAnchor(pki.Inter))
}

func TestBuild_NoAnchor(t *testing.T) {
	pki := pkitest.Generate(t, "http://127.0.0.1:1234")

	builder := x509store.NewBuilder()
	builder.AddIntermediate(pki.Inter, pki.SigningKey)

	store, err := builder.Build()
	assert.Nil(t, store, "anchor-less store must never be exposed")
	assert.ErrorIs(t, err, x509errs.PathNotFound, "expected path not found")
	assert.ErrorIs(t, err, x509store.ErrNoTrustAnchor)
}

func TestBuild_OnlyOnce(t *testing.T) {
	pki := pkitest.Generate(t, "http://127.0.0.1:1234")

	builder := x509store.NewBuilder()
	builder.AddAnchor(pki.Root)

	_, err := builder.Build()
	require.NoError(t, err)

	assert.Panics(t, func() { _, _ = builder.Build() }, "second Build must panic")
	assert.Panics(t, func() { builder.AddCRL(pki.CRL(t, pkitest.InterCRL)) }, "mutation after Build must panic")
}

func TestTrustStore_Immutable(t *testing.T) {
	pki := pkitest.Generate(t, "http://127.0.0.1:1234")

	builder := x509store.NewBuilder()
	builder.AddAnchor(pki.Root)
	builder.AddCRL(pki.CRL(t, pkitest.InterCRL))
	store, err := builder.Build()
	require.NoError(t, err)

	anchors := store.Anchors()
	anchors[0] = pki.Inter
	crls := store.CRLs()
	crls[0] = nil

	assert.True(t, store.IsAnchor(pki.Root), "store must not observe caller mutations")
	assert.NotNil(t, store.CRLs()[0], "store must not observe caller mutations")
}

func TestTrustStore_CRLsFor(t *testing.T) {
	pki := pkitest.Generate(t, "http://127.0.0.1:1234")
	other := pkitest.Generate(t, "http://127.0.0.1:1234")

	builder := x509store.NewBuilder()
	builder.AddAnchor(pki.Root)
	builder.AddCRL(
		pki.CRL(t, pkitest.InterCRL),
		pki.CRL(t, pkitest.SigningKeyCRL),
		// Same issuer name as pki's signing key, signed by a different key.
		other.CRL(t, pkitest.SigningKeyCRL),
	)
	store, err := builder.Build()
	require.NoError(t, err)

	forSigningKey := store.CRLsFor(pki.SigningKey)
	require.Len(t, forSigningKey, 1, "CRL signed by another key must not apply")
	assert.Equal(t, pki.CRLs[pkitest.SigningKeyCRL], forSigningKey[0].Raw)

	assert.Len(t, store.CRLsFor(pki.Inter), 1)
	assert.Empty(t, store.CRLsFor(pki.Root))

	extra := store.WithCRLs(pki.Root, []*x509.RevocationList{pki.CRL(t, pkitest.InterCRL)})
	assert.Empty(t, extra, "extra CRLs of another issuer must not apply")
}

func TestBuilder_Options(t *testing.T) {
	pki := pkitest.Generate(t, "http://127.0.0.1:1234")
	fixed := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	builder := x509store.NewBuilder(
		x509store.WithTime(func() time.Time { return fixed }),
		x509store.WithRequireCRL(true),
	)
	builder.AddAnchor(pki.Root)
	store, err := builder.Build()
	require.NoError(t, err)

	assert.Equal(t, fixed, store.Now())
	assert.True(t, store.RequireCRL())
}

func TestBuilder_AddCRLsFrom(t *testing.T) {
	server := pkitest.NewCRLServer(t)
	pki := pkitest.Generate(t, server.URL)
	server.ServeAll(pki)

	builder := x509store.NewBuilder(x509store.WithRetriever(x509revocation.New(version)))
	builder.AddAnchor(pki.Root)

	require.NoError(t, builder.AddCRLsFrom(context.Background(), []*x509.Certificate{pki.SigningKey}))
	store, err := builder.Build()
	require.NoError(t, err)

	assert.Equal(t, 1, server.Hits(pkitest.InterCRL), "expected the intermediate CRL to be fetched")
	require.Len(t, store.CRLs(), 1)
	assert.Equal(t, pki.CRLs[pkitest.InterCRL], store.CRLs()[0].Raw)
}

func TestBuilder_AddCRLsFrom_Failures(t *testing.T) {
	server := pkitest.NewCRLServer(t)
	pki := pkitest.Generate(t, server.URL)
	server.ServeWith(pkitest.InterCRL, pki.CRLs[pkitest.InterCRL], "text/plain", http.StatusOK)

	builder := x509store.NewBuilder(x509store.WithRetriever(x509revocation.New(version)))
	err := builder.AddCRLsFrom(context.Background(), []*x509.Certificate{pki.SigningKey})
	assert.ErrorIs(t, err, x509errs.RetrievalError, "expected retrieval error")

	withoutRetriever := x509store.NewBuilder()
	err = withoutRetriever.AddCRLsFrom(context.Background(), []*x509.Certificate{pki.SigningKey})
	assert.ErrorIs(t, err, x509store.ErrNoRetriever)
}
