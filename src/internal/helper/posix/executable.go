// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"strings"
)

// fallbackName is used when the process was started without argv[0].
const fallbackName = "hkd-verify"

// GetExecutableName returns the name the verifier was invoked as, without
// directories or a trailing .exe, for use in cobra usage lines.
//
// Both '/' and '\' are treated as separators regardless of the host OS, so
// "C:\bin\hkd-verify.exe" yields "hkd-verify" on Linux too.
//
// Returns:
//   - string: Clean executable name, or "hkd-verify" if os.Args[0] is unavailable
func GetExecutableName() string {
	if len(os.Args) == 0 {
		return fallbackName
	}
	return executableName(os.Args[0])
}

func executableName(arg0 string) string {
	name := strings.TrimRight(arg0, `/\`)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".exe")
	if name == "" || name == "." {
		return fallbackName
	}
	return name
}
