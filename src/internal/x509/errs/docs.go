// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509errs defines the closed error taxonomy shared by the
// certificate codec, the CRL retriever, the trust store and the chain
// verifier. Every failure carries a [Kind] so callers can branch on the
// verdict without parsing error strings.
package x509errs
