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

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flag state shared by all commands
var (
	configFile   string
	outputFormat string
	verbose      bool
	storageDir   string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "enclave",
	Short: "go-secure-enclave CLI - Hardware-backed key management tool",
	Long: `go-secure-enclave CLI manages asymmetric key pairs held behind a
secure element trust boundary and performs signing and verification
without ever exporting private key material.

Supported elements:
  - soft:    in-process element with pluggable persistence
  - pkcs11:  PKCS#11 hardware token (requires the pkcs11 build tag)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is built-in: soft element, in-memory storage)")
	rootCmd.PersistentFlags().StringVar(&storageDir, "storage-dir", "",
		"directory for file-backed storage (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text",
		"output format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)
}

// handleError prints an error and exits with a non-zero status
func handleError(err error) {
	printer := NewPrinter(outputFormat, os.Stderr)
	_ = printer.PrintError(err) // Error printing to stderr is best-effort
	os.Exit(1)
}

// printVerbose prints a message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] "+format+"\n", args...)
	}
}
