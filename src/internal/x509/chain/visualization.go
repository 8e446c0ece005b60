// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// RenderASCIITree renders the path as an ASCII tree, anchor at the top and
// the leaf at the bottom.
//
// Returns:
//   - string: ASCII tree representation of the path
func (p Path) RenderASCIITree() string {
	if len(p.Certs) == 0 {
		return "No certificates in path"
	}

	var result strings.Builder
	depth := 0
	for i := len(p.Certs) - 1; i >= 0; i-- {
		cert := p.Certs[i]

		connector := "└── "
		if i == len(p.Certs)-1 {
			connector = ""
		}

		statusIcon := "✓"
		if p.status(i) == StatusUnchecked {
			statusIcon = "?"
		}

		certInfo := fmt.Sprintf("[%s] %s (%s)", statusIcon, cert.Subject.CommonName, p.role(i))
		result.WriteString(strings.Repeat("    ", max(depth-1, 0)) + connector + certInfo + "\n")
		depth++
	}

	return result.String()
}

// RenderTable renders the path as a markdown table using tablewriter.
//
// Returns:
//   - string: Markdown table, leaf first
func (p Path) RenderTable() string {
	if len(p.Certs) == 0 {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	table.Header([]string{"#", "Role", "Subject", "Issuer", "Serial", "Valid Until", "Key", "Revocation"})

	rows := make([][]string, 0, len(p.Certs))
	for i, cert := range p.Certs {
		algo, bits := keyInfo(cert.PublicKey)
		key := algo
		if bits > 0 {
			key = fmt.Sprintf("%d-bit %s", bits, algo)
		}

		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			p.role(i),
			cert.Subject.CommonName,
			cert.Issuer.CommonName,
			cert.SerialNumber.String(),
			cert.NotAfter.Format("2006-01-02"),
			key,
			p.status(i),
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// ToJSON converts the path to structured JSON.
//
// Returns:
//   - []byte: Indented JSON document
//   - error: Error if JSON marshaling fails
func (p Path) ToJSON() ([]byte, error) {
	type certificateData struct {
		Index              int       `json:"index"`
		Role               string    `json:"role"`
		Subject            string    `json:"subject"`
		Issuer             string    `json:"issuer"`
		SerialNumber       string    `json:"serialNumber"`
		SignatureAlgorithm string    `json:"signatureAlgorithm"`
		PublicKeyAlgorithm string    `json:"publicKeyAlgorithm"`
		KeySize            int       `json:"keySize"`
		NotBefore          time.Time `json:"notBefore"`
		NotAfter           time.Time `json:"notAfter"`
		IsCA               bool      `json:"isCA"`
		DistributionPoints []string  `json:"crlDistributionPoints"`
		RevocationStatus   string    `json:"revocationStatus"`
	}

	type relationshipData struct {
		FromIndex int    `json:"fromIndex"`
		ToIndex   int    `json:"toIndex"`
		Type      string `json:"type"`
	}

	type pathData struct {
		VerifiedAt    string             `json:"verifiedAt"`
		PathLength    int                `json:"pathLength"`
		Certificates  []certificateData  `json:"certificates"`
		Relationships []relationshipData `json:"relationships"`
	}

	data := pathData{
		VerifiedAt:    p.VerifiedAt.UTC().Format(time.RFC3339),
		PathLength:    len(p.Certs),
		Certificates:  make([]certificateData, len(p.Certs)),
		Relationships: make([]relationshipData, 0, max(len(p.Certs)-1, 0)),
	}

	for i, cert := range p.Certs {
		algo, bits := keyInfo(cert.PublicKey)
		points := make([]string, 0, len(cert.CRLDistributionPoints))

		data.Certificates[i] = certificateData{
			Index:              i,
			Role:               p.role(i),
			Subject:            cert.Subject.String(),
			Issuer:             cert.Issuer.String(),
			SerialNumber:       cert.SerialNumber.String(),
			SignatureAlgorithm: cert.SignatureAlgorithm.String(),
			PublicKeyAlgorithm: algo,
			KeySize:            bits,
			NotBefore:          cert.NotBefore,
			NotAfter:           cert.NotAfter,
			IsCA:               cert.IsCA,
			DistributionPoints: append(points, cert.CRLDistributionPoints...),
			RevocationStatus:   p.status(i),
		}
	}

	for i := 0; i < len(p.Certs)-1; i++ {
		data.Relationships = append(data.Relationships, relationshipData{
			FromIndex: i,
			ToIndex:   i + 1,
			Type:      "signed_by",
		})
	}

	return json.MarshalIndent(data, "", "  ")
}

// role determines the role of the certificate at index.
func (p Path) role(index int) string {
	total := len(p.Certs)
	switch {
	case total == 1:
		return "Trust Anchor"
	case index == 0:
		return "Host Key Document"
	case index == total-1:
		return "Root CA"
	case index == 1:
		return "Host Key Signing Key"
	default:
		return "Intermediate CA"
	}
}

func (p Path) status(index int) string {
	if index < len(p.Status) {
		return p.Status[index]
	}
	return "unknown"
}

func keyInfo(pub any) (string, int) {
	switch key := pub.(type) {
	case *rsa.PublicKey:
		return "RSA", key.Size() * 8
	case *ecdsa.PublicKey:
		return "ECDSA", key.Curve.Params().BitSize
	case ed25519.PublicKey:
		return "Ed25519", 256
	default:
		return "unknown", 0
	}
}
