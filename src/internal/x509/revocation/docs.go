// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509revocation retrieves [CRL]s from the distribution points
// declared by [X.509] certificates.
//
// Responses must carry a success status and the application/pkix-crl media
// type before their body is decoded. The transport is pluggable through the
// [Doer] interface so callers control timeouts and tests can substitute
// isolated endpoints.
//
// [X.509]: https://grokipedia.com/page/X.509
// [CRL]: https://grokipedia.com/page/Certificate_revocation_list
package x509revocation
