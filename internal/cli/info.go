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
	"os"

	"github.com/spf13/cobra"
)

// infoCmd prints the configured element's capabilities
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show element capabilities",
	Long: `Show the configured element and its capabilities: hardware backing,
presence gating, device-state gating, and supported signature schemes.`,
	Run: func(cmd *cobra.Command, args []string) {
		printer := NewPrinter(outputFormat, os.Stdout)

		sess, err := newSession()
		if err != nil {
			handleError(err)
			return
		}
		defer sess.Close()

		if err := printer.PrintCapabilities(sess.client.ElementType(), sess.client.Capabilities()); err != nil {
			handleError(err)
		}
	},
}
