// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// hkd-verify is a command-line tool for verifying IBM Secure Execution host
// key documents against their certificate chain and CRLs.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/hkd-chain-verifier/cmd/hkd-verify@latest
//
// # Usage
//
//	hkd-verify --root ROOT [--cert CERT]... [--crl CRL]... [FLAGS] HKD...
//	hkd-verify dist-points CERT...
//	hkd-verify crls [--out FILE] CERT...
//
// # Flags
//
//	-r, --root         Root CA certificate file [required]
//	-c, --cert         Intermediate certificate file, including the host key signing key
//	    --crl          CRL file
//	    --offline      Never download CRLs
//	    --require-crl  Fail when an issued certificate is not covered by a CRL
//	    --timeout      CRL download timeout in seconds (default 10)
//	    --config       Configuration file (.yaml, .yml or .json)
//	-o, --output       Result format: text, table, json or tree
//	-s, --save-chain   Write the certificates of the validated paths to this file
//	-d, --der          Write --save-chain as DER instead of PEM
//	    --log-format   Diagnostic log format: text or json
//
// The configuration file can also be named by HKD_VERIFY_CONFIG_FILE.
// Command-line flags override its values.
//
// # Exit Status
//
// 0 when every document verified, 1 on any failure and 130 when interrupted.
//
// # Examples
//
// Verify a document, downloading the CRLs:
//
//	hkd-verify --root root_ca.chained.crt --cert ibm.crt --cert inter_ca.crt host.crt
//
// Prepare an offline CRL bundle and use it:
//
//	hkd-verify crls --out crls.pem ibm.crt host.crt
//	hkd-verify --offline --root root_ca.chained.crt --cert ibm.crt,inter_ca.crt --crl crls.pem host.crt
//
// Show the validated path:
//
//	hkd-verify --offline --root root_ca.chained.crt --cert ibm.crt,inter_ca.crt --crl crls.pem -o tree host.crt
//
// Keep the validated chain for later use:
//
//	hkd-verify --root root_ca.chained.crt --cert ibm.crt --cert inter_ca.crt --save-chain chain.pem host.crt
package main
