// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// DecodeCRL decodes a single certificate revocation list from PEM or DER data.
func (c *Certificate) DecodeCRL(data []byte) (*x509.RevocationList, error) {
	if len(data) == 0 {
		return nil, decodeError("decode CRL", ErrEmptyInput)
	}

	if c.IsPEM(data) {
		block, err := c.decodePEMBlock(data, c.crlBlockType)
		if err != nil {
			return nil, decodeError("decode CRL", err)
		}

		data = block.Bytes
	}

	crl, err := x509.ParseRevocationList(data)
	if err != nil {
		return nil, decodeError("decode CRL", fmt.Errorf("%w: %w", ErrParseCRL, err))
	}

	return crl, nil
}

// DecodeMultipleCRL decodes one or more CRLs from data.
//
// PEM input may carry several "X509 CRL" blocks; DER input always holds
// exactly one list.
func (c *Certificate) DecodeMultipleCRL(data []byte) ([]*x509.RevocationList, error) {
	if !c.IsPEM(data) {
		crl, err := c.DecodeCRL(data)
		if err != nil {
			return nil, err
		}
		return []*x509.RevocationList{crl}, nil
	}

	var crls []*x509.RevocationList
	for len(data) > 0 {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != c.crlBlockType {
			return nil, decodeError("decode CRLs", ErrInvalidBlockType)
		}

		crl, err := x509.ParseRevocationList(block.Bytes)
		if err != nil {
			return nil, decodeError("decode CRLs", fmt.Errorf("%w: %w", ErrParseCRL, err))
		}

		crls = append(crls, crl)
		data = rest
	}

	return crls, nil
}

// EncodeCRLPEM encodes a CRL to PEM format.
func (c *Certificate) EncodeCRLPEM(crl *x509.RevocationList) []byte {
	block := pem.Block{
		Type:  c.crlBlockType,
		Bytes: crl.Raw,
	}
	return pem.EncodeToMemory(&block)
}

// EncodeMultipleCRLPEM encodes multiple CRLs to PEM format.
func (c *Certificate) EncodeMultipleCRLPEM(crls []*x509.RevocationList) []byte {
	var data []byte

	for _, crl := range crls {
		data = append(data, c.EncodeCRLPEM(crl)...)
	}

	return data
}

// DistributionPoints returns the URLs of the CRL distribution point
// extension of cert, in extension order. It returns an empty, non-nil slice
// when the extension is absent.
func DistributionPoints(cert *x509.Certificate) []string {
	points := make([]string, 0, len(cert.CRLDistributionPoints))
	return append(points, cert.CRLDistributionPoints...)
}

// IsRevoked reports whether serial of cert is listed in crl.
func IsRevoked(crl *x509.RevocationList, cert *x509.Certificate) bool {
	for _, entry := range crl.RevokedCertificateEntries {
		if entry.SerialNumber != nil && entry.SerialNumber.Cmp(cert.SerialNumber) == 0 {
			return true
		}
	}
	return false
}
