// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/hkd-chain-verifier/src/hkd"
	"github.com/H0llyW00dzZ/hkd-chain-verifier/src/logger"
)

// newDistPointsCommand lists the CRL distribution points of certificates.
func newDistPointsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dist-points CERT...",
		Short: "Print the CRL distribution points of certificates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			certs, err := loadAll(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, cert := range certs {
				fmt.Fprintf(out, "%s: %s\n", args[i], cert.Subject)
				points := hkd.DistributionPoints(cert)
				if len(points) == 0 {
					fmt.Fprintln(out, "  (none)")
					continue
				}
				for _, url := range points {
					fmt.Fprintf(out, "  %s\n", url)
				}
			}
			return nil
		},
	}
}

// newCRLsCommand downloads the CRLs of certificates into a PEM bundle.
func newCRLsCommand(version string, f *flags, log logger.Logger) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "crls CERT...",
		Short: "Download the CRLs named by certificates into a PEM bundle",
		Long: `Download every CRL named by the distribution points of the given
certificates. The bundle can be passed back with --crl for offline use.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(cmd, f.logFormat, log)
			if err != nil {
				return err
			}

			certs, err := loadAll(args)
			if err != nil {
				return err
			}

			retriever := newRetriever(version, f.timeout)
			crls, err := retriever.FetchAll(cmd.Context(), certs)
			if err != nil {
				log.Errorf("download failed (%s): %v", hkd.KindOf(err), err)
				return err
			}
			log.Printf("downloaded %d CRL(s)", len(crls))

			bundle := retriever.EncodeMultipleCRLPEM(crls)
			if output == "" {
				_, err = cmd.OutOrStdout().Write(bundle)
				return err
			}
			return os.WriteFile(output, bundle, 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "out", "w", "", "write the bundle to this file instead of stdout")
	return cmd
}
