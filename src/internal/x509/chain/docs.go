// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain validates [X.509] certification paths from a host key
// document to a trust anchor held by an [x509store.TrustStore].
// It provides capabilities to:
//   - Build paths with a bounded depth-first search over anchors, pinned
//     intermediates and caller-supplied intermediates in any order.
//   - Check validity windows, issuer names and key identifiers, CA
//     constraints and signatures at every step.
//   - Check every issued certificate of a complete path against the [CRL]s
//     of its issuer, reporting revoked, stale or missing lists.
//   - Render validated paths as ASCII trees, markdown tables or JSON.
//
// When no path validates, the most specific failure found during the search
// is returned as a [x509errs.Error].
//
// [X.509]: https://grokipedia.com/page/X.509
// [CRL]: https://grokipedia.com/page/Certificate_revocation_list
package x509chain
