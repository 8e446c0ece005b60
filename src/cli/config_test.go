// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(configFileEnv, "")

	config, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultTimeoutSeconds, config.Timeout)
	assert.Equal(t, outputText, config.Output)
	assert.Equal(t, logFormatText, config.LogFormat)
	assert.Empty(t, config.Root)
	assert.False(t, config.Offline)
	assert.Empty(t, config.SaveChain)
	assert.False(t, config.DER)
}

func TestLoadConfig_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "YAML",
			file: "hkd.yaml",
			content: `certs: [ibm.crt, inter_ca.crt]
crls: [ibm.crl]
root: root_ca.chained.crt
offline: true
requireCrl: true
timeoutSeconds: 3
output: table
saveChain: out/chain.der
der: true
`,
		},
		{
			name: "YML",
			file: "hkd.yml",
			content: `certs:
  - ibm.crt
  - inter_ca.crt
crls:
  - ibm.crl
root: root_ca.chained.crt
offline: true
requireCrl: true
timeoutSeconds: 3
output: table
saveChain: out/chain.der
der: true
`,
		},
		{
			name: "JSON",
			file: "hkd.json",
			content: `{
  "certs": ["ibm.crt", "inter_ca.crt"],
  "crls": ["ibm.crl"],
  "root": "root_ca.chained.crt",
  "offline": true,
  "requireCrl": true,
  "timeoutSeconds": 3,
  "output": "table",
  "saveChain": "out/chain.der",
  "der": true
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			config, err := loadConfig(path)
			require.NoError(t, err)

			assert.Equal(t, []string{filepath.Join(dir, "ibm.crt"), filepath.Join(dir, "inter_ca.crt")}, config.Certs)
			assert.Equal(t, []string{filepath.Join(dir, "ibm.crl")}, config.CRLs)
			assert.Equal(t, filepath.Join(dir, "root_ca.chained.crt"), config.Root)
			assert.True(t, config.Offline)
			assert.True(t, config.RequireCRL)
			assert.Equal(t, 3, config.Timeout)
			assert.Equal(t, outputTable, config.Output)
			assert.Equal(t, filepath.Join(dir, "out", "chain.der"), config.SaveChain)
			assert.True(t, config.DER)
			assert.Equal(t, logFormatText, config.LogFormat, "unset keys keep their defaults")
		})
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hkd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: /etc/hkd/root.crt\ntimeoutSeconds: -1\n"), 0o644))
	t.Setenv(configFileEnv, path)

	config, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/etc/hkd/root.crt", config.Root, "absolute paths are kept")
	assert.Equal(t, defaultTimeoutSeconds, config.Timeout, "non-positive timeout falls back to the default")
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	badYAML := filepath.Join(dir, "bad.yaml")
	badJSON := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badYAML, []byte("certs: [unterminated\n"), 0o644))
	require.NoError(t, os.WriteFile(badJSON, []byte("{not json"), 0o644))

	tests := []struct {
		name     string
		path     string
		contains string
	}{
		{name: "Missing File", path: filepath.Join(dir, "missing.yaml"), contains: "failed to read config file"},
		{name: "Malformed YAML", path: badYAML, contains: "failed to parse YAML config file"},
		{name: "Malformed JSON", path: badJSON, contains: "failed to parse JSON config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestDetectConfigFormat(t *testing.T) {
	assert.Equal(t, configFormatYAML, detectConfigFormat("a.YAML"))
	assert.Equal(t, configFormatYAML, detectConfigFormat("a.yml"))
	assert.Equal(t, configFormatJSON, detectConfigFormat("a.json"))
	assert.Equal(t, configFormatJSON, detectConfigFormat("config"))
}
