// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package hkd verifies host key documents: leaf certificates issued by a host
// key signing key, chained through an intermediate CA to a root anchor and
// checked against certificate revocation lists.
//
// A [CertVerifier] is built once from files and then verifies any number of
// documents, concurrently if needed:
//
//	verifier, err := hkd.NewCertVerifier(ctx,
//		[]string{"ibm.crt", "inter_ca.crt"},
//		[]string{"ibm.crl", "inter_ca.crl"},
//		"root_ca.chained.crt",
//		true, // offline
//	)
//	if err != nil {
//		return err
//	}
//	if err := verifier.Verify(ctx, doc); errors.Is(err, hkd.Revoked) {
//		// the document or one of its issuers was revoked
//	}
//
// In online mode CRLs are downloaded from the distribution points of the
// supplied certificates at construction, and from those of each document
// when it is verified.
package hkd
