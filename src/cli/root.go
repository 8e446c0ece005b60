// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/helper/posix"
	x509revocation "github.com/H0llyW00dzZ/hkd-chain-verifier/src/internal/x509/revocation"
	"github.com/H0llyW00dzZ/hkd-chain-verifier/src/logger"
)

var (
	// ErrNoDocuments indicates that no host key document was given.
	ErrNoDocuments = errors.New("cli: at least one host key document is required")

	// ErrRootRequired indicates that no root anchor was configured.
	ErrRootRequired = errors.New("cli: a root certificate is required (--root)")

	// ErrVerificationFailed indicates that at least one document did not verify.
	ErrVerificationFailed = errors.New("cli: host key document verification failed")

	// ErrUnknownOutput indicates an unsupported --output value.
	ErrUnknownOutput = errors.New("cli: unknown output format")

	// ErrUnknownLogFormat indicates an unsupported --log-format value.
	ErrUnknownLogFormat = errors.New("cli: unknown log format")
)

const (
	outputText  = "text"
	outputTable = "table"
	outputJSON  = "json"
	outputTree  = "tree"

	logFormatText = "text"
	logFormatJSON = "json"
)

// flags holds the raw command-line values before they are merged with the
// configuration file.
type flags struct {
	configFile string
	certs      []string
	crls       []string
	root       string
	offline    bool
	requireCRL bool
	timeout    int
	output     string
	logFormat  string
	saveChain  string
	der        bool
}

// Execute runs the hkd-verify command with the process arguments.
//
// Parameters:
//   - ctx: Context cancelled on SIGINT/SIGTERM
//   - version: Application version
//   - log: Logger for diagnostics; replaced by a JSON logger with --log-format json
//
// Returns:
//   - error: nil when every document verified
func Execute(ctx context.Context, version string, log logger.Logger) error {
	cmd := NewCommand(version, log)
	cmd.SetArgs(os.Args[1:])
	return cmd.ExecuteContext(ctx)
}

// NewCommand builds the hkd-verify command tree.
func NewCommand(version string, log logger.Logger) *cobra.Command {
	f := &flags{}
	name := posix.GetExecutableName()

	rootCmd := &cobra.Command{
		Use:   name + " [flags] HKD...",
		Short: "Verify IBM Secure Execution host key documents",
		Long: `Verify host key documents against a root CA, the intermediate CA and the
host key signing key, checking every certificate against its issuer's CRL.

Without --offline the CRLs named by the distribution points of the given
certificates and documents are downloaded.`,
		Example: fmt.Sprintf(`  %[1]s --root root_ca.chained.crt --cert ibm.crt --cert inter_ca.crt host.crt
  %[1]s --offline --root root_ca.chained.crt --cert ibm.crt,inter_ca.crt --crl ibm.crl,inter_ca.crl host.crt
  %[1]s --config hkd.yaml --output table host1.crt host2.crt`, name),
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd, cfg.LogFormat, log)
			if err != nil {
				return err
			}
			return runVerify(cmd, version, cfg, log, args)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "configuration file (.yaml, .yml or .json); also read from $"+configFileEnv)
	pf.IntVar(&f.timeout, "timeout", defaultTimeoutSeconds, "CRL download timeout in seconds")
	pf.StringVar(&f.logFormat, "log-format", logFormatText, "diagnostic log format: text or json")

	fs := rootCmd.Flags()
	fs.StringSliceVarP(&f.certs, "cert", "c", nil, "intermediate certificate file, including the host key signing key (repeatable)")
	fs.StringSliceVar(&f.crls, "crl", nil, "CRL file (repeatable)")
	fs.StringVarP(&f.root, "root", "r", "", "root CA certificate file")
	fs.BoolVar(&f.offline, "offline", false, "never download CRLs")
	fs.BoolVar(&f.requireCRL, "require-crl", false, "fail when an issued certificate is not covered by a CRL")
	fs.StringVarP(&f.output, "output", "o", outputText, "result format: text, table, json or tree")
	fs.StringVarP(&f.saveChain, "save-chain", "s", "", "write the certificates of the validated paths to this file")
	fs.BoolVarP(&f.der, "der", "d", false, "write --save-chain as DER instead of PEM")

	rootCmd.AddCommand(newDistPointsCommand(), newCRLsCommand(version, f, log))

	return rootCmd
}

// resolve merges the configuration file with the flags that were set
// explicitly on the command line.
func (f *flags) resolve(cmd *cobra.Command) (*Config, error) {
	cfg, err := loadConfig(f.configFile)
	if err != nil {
		return nil, err
	}

	changed := func(name string) bool {
		flag := cmd.Flags().Lookup(name)
		return flag != nil && flag.Changed
	}

	if changed("cert") {
		cfg.Certs = f.certs
	}
	if changed("crl") {
		cfg.CRLs = f.crls
	}
	if changed("root") {
		cfg.Root = f.root
	}
	if changed("offline") {
		cfg.Offline = f.offline
	}
	if changed("require-crl") {
		cfg.RequireCRL = f.requireCRL
	}
	if changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if changed("save-chain") {
		cfg.SaveChain = f.saveChain
	}
	if changed("der") {
		cfg.DER = f.der
	}
	if changed("output") || cfg.Output == "" {
		cfg.Output = f.output
	}
	if changed("log-format") || cfg.LogFormat == "" {
		cfg.LogFormat = f.logFormat
	}

	switch cfg.Output {
	case outputText, outputTable, outputJSON, outputTree:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOutput, cfg.Output)
	}

	return cfg, nil
}

// newLogger returns the diagnostic logger writing to the command's stderr.
func newLogger(cmd *cobra.Command, format string, fallback logger.Logger) (logger.Logger, error) {
	switch format {
	case logFormatText:
		if fallback == nil {
			fallback = logger.NewCLILogger()
		}
		fallback.SetOutput(cmd.ErrOrStderr())
		return fallback, nil
	case logFormatJSON:
		return logger.NewJSONLogger(cmd.ErrOrStderr(), false).With("app", cmd.Root().Name()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLogFormat, format)
	}
}

// newRetriever creates a CRL retriever honoring the configured timeout.
func newRetriever(version string, timeoutSeconds int) *x509revocation.Retriever {
	retriever := x509revocation.New(version)
	if timeoutSeconds > 0 {
		retriever.HTTPConfig.Timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return retriever
}
