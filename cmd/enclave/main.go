// Copyright (c) 2026 Leafn Labs
//
// This file is part of go-secure-enclave.
//
// go-secure-enclave is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@leafn.dev for commercial licensing options.

// Command enclave is the go-secure-enclave CLI.
package main

import (
	"fmt"
	"os"

	"github.com/leafn/go-secure-enclave/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
