// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/hkd-chain-verifier/src/hkd"
	x509certs "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/hkd-chain-verifier/src/logger"
)

// result is the outcome of verifying a single host key document.
type result struct {
	Document string   `json:"document"`
	Subject  string   `json:"subject,omitempty"`
	Verified bool     `json:"verified"`
	Kind     string   `json:"kind,omitempty"`
	Error    string   `json:"error,omitempty"`
	Path     hkd.Path `json:"-"`

	// Chain is the structured path, only set for verified documents.
	Chain json.RawMessage `json:"chain,omitempty"`
}

func runVerify(cmd *cobra.Command, version string, cfg *Config, log logger.Logger, documents []string) error {
	if len(documents) == 0 {
		return ErrNoDocuments
	}
	if cfg.Root == "" {
		return ErrRootRequired
	}

	opts := []hkd.Option{hkd.WithRequireCRL(cfg.RequireCRL)}
	if !cfg.Offline {
		opts = append(opts, hkd.WithRetriever(newRetriever(version, cfg.Timeout)))
	}

	ctx := cmd.Context()
	verifier, err := hkd.NewCertVerifier(ctx, cfg.Certs, cfg.CRLs, cfg.Root, cfg.Offline, opts...)
	if err != nil {
		log.Errorf("setup failed (%s): %v", hkd.KindOf(err), err)
		return err
	}
	log.Printf("trust store ready: %d anchor(s), %d intermediate(s), %d CRL(s), offline=%t",
		len(verifier.Store().Anchors()), len(verifier.Intermediates()), len(verifier.Store().CRLs()), verifier.Offline())

	results := make([]result, 0, len(documents))
	failed := 0
	for _, doc := range documents {
		if err := ctx.Err(); err != nil {
			return err
		}

		res := verifyDocument(cmd, verifier, doc)
		if !res.Verified {
			failed++
			log.Errorf("%s: %s", doc, res.Error)
		} else {
			log.Printf("%s: verified", doc)
		}
		results = append(results, res)
	}

	if err := render(cmd.OutOrStdout(), cfg.Output, results); err != nil {
		return err
	}

	if cfg.SaveChain != "" {
		n, err := saveChains(cfg.SaveChain, cfg.DER, results)
		if err != nil {
			return err
		}
		log.Printf("wrote %d certificate(s) of the validated paths to %s", n, cfg.SaveChain)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d document(s)", ErrVerificationFailed, failed, len(documents))
	}
	return nil
}

func verifyDocument(cmd *cobra.Command, verifier *hkd.CertVerifier, doc string) result {
	res := result{Document: doc}

	cert, err := hkd.LoadCertificate(doc)
	if err != nil {
		return res.fail(err)
	}
	res.Subject = cert.Subject.String()

	path, err := verifier.VerifyPath(cmd.Context(), cert)
	if err != nil {
		return res.fail(err)
	}

	res.Verified = true
	res.Path = path
	return res
}

func (r result) fail(err error) result {
	r.Kind = hkd.KindOf(err).String()
	r.Error = err.Error()
	return r
}

func render(w io.Writer, format string, results []result) error {
	switch format {
	case outputJSON:
		return renderJSON(w, results)
	case outputTable:
		return renderTables(w, results)
	case outputTree:
		return renderTree(w, results)
	default:
		return renderText(w, results)
	}
}

func renderText(w io.Writer, results []result) error {
	for _, r := range results {
		var err error
		if r.Verified {
			_, err = fmt.Fprintf(w, "OK    %s: %s\n", r.Document, r.Subject)
		} else {
			_, err = fmt.Fprintf(w, "FAIL  %s: %s\n", r.Document, r.Error)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func renderTree(w io.Writer, results []result) error {
	for i, r := range results {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if !r.Verified {
			if _, err := fmt.Fprintf(w, "%s: %s\n", r.Document, r.Error); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s:\n%s", r.Document, r.Path.RenderASCIITree()); err != nil {
			return err
		}
	}
	return nil
}

func renderTable(results []result) string {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	table.Header([]string{"Document", "Subject", "Result", "Path", "Detail"})

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status, detail, length := "verified", "", "-"
		if r.Verified {
			length = fmt.Sprintf("%d", r.Path.Len())
			detail = strings.Join(r.Path.Status, ", ")
		} else {
			status = r.Kind
			detail = r.Error
		}
		rows = append(rows, []string{r.Document, commonName(r), status, length, detail})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// renderTables writes the summary table followed by the path table of every
// verified document.
func renderTables(w io.Writer, results []result) error {
	if _, err := io.WriteString(w, renderTable(results)); err != nil {
		return err
	}
	for _, r := range results {
		if !r.Verified {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n%s:\n\n%s", r.Document, r.Path.RenderTable()); err != nil {
			return err
		}
	}
	return nil
}

// saveChains writes the certificates of every validated path to name, leaf
// first, each certificate once.
func saveChains(name string, der bool, results []result) (int, error) {
	var (
		certs []*x509.Certificate
		seen  = make(map[string]bool)
	)
	for _, r := range results {
		if !r.Verified {
			continue
		}
		for _, cert := range r.Path.Certs {
			if seen[string(cert.Raw)] {
				continue
			}
			seen[string(cert.Raw)] = true
			certs = append(certs, cert)
		}
	}
	if len(certs) == 0 {
		return 0, nil
	}

	codec := x509certs.New()
	data := codec.EncodeMultiplePEM(certs)
	if der {
		data = codec.EncodeMultipleDER(certs)
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write chain file: %w", err)
	}
	return len(certs), nil
}

func renderJSON(w io.Writer, results []result) error {
	for i := range results {
		if !results[i].Verified {
			continue
		}
		data, err := results[i].Path.ToJSON()
		if err != nil {
			return err
		}
		results[i].Chain = data
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func commonName(r result) string {
	if leaf := r.Path.Leaf(); leaf != nil {
		return leaf.Subject.CommonName
	}
	return r.Subject
}

// loadAll decodes every certificate found in files.
func loadAll(files []string) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for _, file := range files {
		cert, err := hkd.LoadCertificate(file)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	return certs, nil
}
