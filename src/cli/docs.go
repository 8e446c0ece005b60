// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for the host key document
// chain verifier. It implements a Cobra-based CLI that loads a root anchor,
// intermediate certificates and CRLs from flags or a YAML/JSON configuration
// file, verifies one or more host key documents and reports the result as
// text, a markdown table, JSON or an ASCII tree of the validated path.
//
// The dist-points and crls subcommands inspect distribution points and
// download CRL bundles for later offline use.
package cli
