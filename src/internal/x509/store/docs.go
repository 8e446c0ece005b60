// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509store assembles the trust store used for host key document
// verification: root anchors, pinned intermediates and CRLs taken from files
// or fetched from distribution points. A [Builder] is single-owner and
// produces exactly one immutable [TrustStore].
package x509store
