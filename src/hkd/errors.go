// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package hkd

import (
	"errors"

	x509errs "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/errs"
)

// Kind classifies a failure. See the constants below.
type Kind = x509errs.Kind

// Failure kinds. Every error returned by this package matches exactly one of
// them with [errors.Is].
const (
	DecodeError      = x509errs.DecodeError
	IoError          = x509errs.IoError
	RetrievalError   = x509errs.RetrievalError
	PathNotFound     = x509errs.PathNotFound
	SignatureInvalid = x509errs.SignatureInvalid
	IssuerMismatch   = x509errs.IssuerMismatch
	BeforeValidity   = x509errs.BeforeValidity
	AfterValidity    = x509errs.AfterValidity
	Revoked          = x509errs.Revoked
	MissingCRL       = x509errs.MissingCRL
	StaleCRL         = x509errs.StaleCRL
)

var (
	// ErrSetup is matched by every failure to construct a [CertVerifier].
	ErrSetup = errors.New("hkd: verifier setup failed")

	// ErrVerify is matched by every failed host key document verification.
	ErrVerify = errors.New("hkd: host key document verification failed")

	// ErrNoDocumentCRL is the cause of a MissingCRL failure in online mode
	// when no CRL of the signing key covers the document.
	ErrNoDocumentCRL = errors.New("hkd: no CRL of the issuer covers the host key document")
)

const (
	opSetup  = "setup"
	opVerify = "verify"
)

// Error reports a failed setup or verification. The wrapped error carries
// the failure kind.
type Error struct {
	Op  string // "setup" or "verify"
	Err error
}

func (e *Error) Error() string { return "hkd: " + e.Op + ": " + e.Err.Error() }

// Unwrap returns the underlying failure.
func (e *Error) Unwrap() error { return e.Err }

// Is matches [ErrSetup] or [ErrVerify] depending on the failed operation.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrSetup:
		return e.Op == opSetup
	case ErrVerify:
		return e.Op == opVerify
	}
	return false
}

// KindOf returns the failure kind of err, or the zero Kind for nil and
// foreign errors.
func KindOf(err error) Kind { return x509errs.KindOf(err) }

func setupError(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: opSetup, Err: err}
}

func verifyError(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: opVerify, Err: err}
}
