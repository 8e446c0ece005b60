// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509errs

import (
	"errors"
	"strings"
)

// Kind classifies a verification or setup failure.
//
// Kind implements error so it can be used directly as a target for
// [errors.Is]:
//
//	if errors.Is(err, x509errs.Revoked) {
//		// the leaf or one of its issuers is listed in a CRL
//	}
type Kind int

const (
	// Unknown is the zero Kind; it is never produced by this module.
	Unknown Kind = iota
	// DecodeError indicates malformed certificate or CRL bytes.
	DecodeError
	// IoError indicates that an input file could not be read.
	IoError
	// RetrievalError indicates that a CRL could not be fetched: transport
	// failure, non-success status or an unexpected content type.
	RetrievalError
	// PathNotFound indicates that no chain from the certificate to any
	// trust anchor exists.
	PathNotFound
	// SignatureInvalid indicates that a certificate signature does not
	// validate against its claimed issuer's key. The claimed issuer is a
	// candidate whose subject and key identifier both match, so a
	// certificate forged under the issuer's name and key identifier with
	// another key fails with SignatureInvalid.
	SignatureInvalid
	// IssuerMismatch indicates that no available certificate matches the
	// declared issuer of a certificate in the path: either no candidate
	// carries the issuer name, or every candidate with that name has a
	// subject key identifier that differs from the certificate's
	// authority key identifier.
	IssuerMismatch
	// BeforeValidity indicates that the reference time precedes NotBefore.
	BeforeValidity
	// AfterValidity indicates that the reference time is past NotAfter.
	AfterValidity
	// Revoked indicates that a serial number is listed in an applicable CRL.
	Revoked
	// MissingCRL indicates that no applicable CRL was available while the
	// store requires one for every issued certificate.
	MissingCRL
	// StaleCRL indicates that the only applicable CRL is past its NextUpdate.
	StaleCRL
)

var kindNames = [...]string{
	Unknown:          "unknown",
	DecodeError:      "decode_error",
	IoError:          "io_error",
	RetrievalError:   "retrieval_error",
	PathNotFound:     "path_not_found",
	SignatureInvalid: "signature_invalid",
	IssuerMismatch:   "issuer_mismatch",
	BeforeValidity:   "before_validity",
	AfterValidity:    "after_validity",
	Revoked:          "revoked",
	MissingCRL:       "missing_crl",
	StaleCRL:         "stale_crl",
}

// String returns the stable snake_case name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[Unknown]
	}
	return kindNames[k]
}

// Error implements error so a Kind can be matched with [errors.Is].
func (k Kind) Error() string { return "x509errs: " + k.String() }

// Error is the single error type returned by the verification core.
type Error struct {
	Kind    Kind   // Failure classification
	Op      string // Operation that failed, e.g. "fetch" or "verify"
	Subject string // Certificate subject, file path or URL the failure is about
	Err     error  // Underlying cause, may be nil
}

// New creates an Error.
func New(kind Kind, op, subject string, err error) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Subject: subject,
		Err:     err,
	}
}

// Error formats the error as "op: kind (subject): cause".
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("x509errs: ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Subject != "" {
		b.WriteString(" (")
		b.WriteString(e.Subject)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the same Kind, or an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Kind:
		return e.Kind == t
	case *Error:
		return e.Kind == t.Kind
	}
	return false
}

// KindOf returns the Kind of the first *Error in err's tree, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return Unknown
}
