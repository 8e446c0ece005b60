// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// configFileEnv names the environment variable consulted when no --config
// flag is given.
const configFileEnv = "HKD_VERIFY_CONFIG_FILE"

const defaultTimeoutSeconds = 10

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config represents the verifier configuration. Every field can also be set
// by a command-line flag; flags win over the file.
//
// Example YAML:
//
//	certs: [ibm.crt, inter_ca.crt]
//	crls: [ibm.crl, inter_ca.crl]
//	root: root_ca.chained.crt
//	offline: true
type Config struct {
	// Certs: Intermediate certificates, including the host key signing key
	Certs []string `json:"certs" yaml:"certs"`
	// CRLs: Certificate revocation list files
	CRLs []string `json:"crls" yaml:"crls"`
	// Root: Root anchor file
	Root string `json:"root" yaml:"root"`
	// Offline: Never download CRLs
	Offline bool `json:"offline" yaml:"offline"`
	// RequireCRL: Fail when an issued certificate has no CRL
	RequireCRL bool `json:"requireCrl" yaml:"requireCrl"`
	// Timeout: CRL download timeout in seconds
	Timeout int `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	// Output: Result format, one of text, table, json or tree
	Output string `json:"output" yaml:"output"`
	// LogFormat: Diagnostic log format, text or json
	LogFormat string `json:"logFormat" yaml:"logFormat"`
	// SaveChain: File receiving the certificates of the validated paths
	SaveChain string `json:"saveChain" yaml:"saveChain"`
	// DER: Write SaveChain as concatenated DER instead of PEM
	DER bool `json:"der" yaml:"der"`
}

// detectConfigFormat determines the configuration file format based on file extension.
func detectConfigFormat(configPath string) configFormat {
	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// unmarshalConfig unmarshals configuration data based on the specified format.
func unmarshalConfig(data []byte, config *Config, format configFormat) error {
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// loadConfig loads the configuration from a JSON or YAML file or applies defaults.
//
// Parameters:
//   - configPath: Path to the configuration file (optional, can be empty)
//     Supported formats: .json, .yaml, .yml
//
// Returns:
//   - *Config: Loaded configuration with defaults applied
//   - error: Error if the file cannot be read or parsed
//
// Configuration Priority:
//  1. Default values are set
//  2. HKD_VERIFY_CONFIG_FILE environment variable is checked if configPath is empty
//  3. Config file values override defaults
//  4. Command-line flags override the file (applied by the caller)
func loadConfig(configPath string) (*Config, error) {
	config := &Config{
		Timeout:   defaultTimeoutSeconds,
		Output:    outputText,
		LogFormat: logFormatText,
	}

	if configPath == "" {
		configPath = os.Getenv(configFileEnv)
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := unmarshalConfig(data, config, detectConfigFormat(configPath)); err != nil {
			return nil, err
		}

		// Relative paths in the file are relative to the file itself.
		dir := filepath.Dir(configPath)
		config.Root = resolvePath(dir, config.Root)
		config.SaveChain = resolvePath(dir, config.SaveChain)
		for i := range config.Certs {
			config.Certs[i] = resolvePath(dir, config.Certs[i])
		}
		for i := range config.CRLs {
			config.CRLs[i] = resolvePath(dir, config.CRLs[i])
		}

		if config.Timeout <= 0 {
			config.Timeout = defaultTimeoutSeconds
		}
	}

	return config, nil
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
