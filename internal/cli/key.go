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
	"context"
	"fmt"
	"os"

	"github.com/leafn/go-secure-enclave/pkg/keyring"
	"github.com/leafn/go-secure-enclave/pkg/policy"
	"github.com/leafn/go-secure-enclave/pkg/types"
	"github.com/spf13/cobra"
)

// keyCmd represents the key command
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage key pairs",
	Long:  `Generate, look up, and remove key pairs held by the secure element`,
}

// keyGenerateCmd generates a new key pair
var keyGenerateCmd = &cobra.Command{
	Use:   "generate <public-label> <private-label>",
	Short: "Generate a new key pair",
	Long: `Generate a new asymmetric key pair. The private key never leaves the
element; both halves are addressed by their labels afterwards.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		publicLabel, privateLabel := args[0], args[1]
		printer := NewPrinter(outputFormat, os.Stdout)

		accessibility, _ := cmd.Flags().GetString("accessibility")
		presence, _ := cmd.Flags().GetBool("presence")
		accessGroup, _ := cmd.Flags().GetString("access-group")
		rsaBits, _ := cmd.Flags().GetInt("rsa")
		tier, _ := cmd.Flags().GetString("tier")
		replace, _ := cmd.Flags().GetBool("replace")

		sess, err := newSession()
		if err != nil {
			handleError(err)
			return
		}
		defer sess.Close()

		access, err := types.ParseAccessibility(accessibility)
		if err != nil {
			handleError(err)
			return
		}

		// The element's capabilities gate the policy up front so an
		// unsupported request fails before any key material exists.
		pol, err := policy.Build(access, presence, sess.client.Capabilities())
		if err != nil {
			handleError(err)
			return
		}

		var opts []keyring.Option
		if accessGroup != "" {
			opts = append(opts, keyring.WithAccessGroup(accessGroup))
		}
		if rsaBits > 0 {
			opts = append(opts, keyring.WithRSA(rsaBits))
		}
		if tier != "" {
			t, err := types.ParseStoreTier(tier)
			if err != nil {
				handleError(err)
				return
			}
			opts = append(opts, keyring.WithTier(t))
		}
		if replace {
			opts = append(opts, keyring.WithReplace())
		}

		printVerbose("Generating key pair %s / %s", publicLabel, privateLabel)

		pub, priv, err := sess.keyring.Generate(context.Background(), publicLabel, privateLabel, pol, opts...)
		if err != nil {
			handleError(fmt.Errorf("failed to generate key pair: %w", err))
			return
		}

		if err := printer.PrintKeyPair(pub, priv); err != nil {
			handleError(err)
		}
	},
}

// keyFindCmd looks up a key by label
var keyFindCmd = &cobra.Command{
	Use:   "find <label>",
	Short: "Find a key by label",
	Long: `Find a key by label. Public keys are printed with their SPKI bytes;
private keys yield only an opaque handle.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		label := args[0]
		printer := NewPrinter(outputFormat, os.Stdout)

		className, _ := cmd.Flags().GetString("class")
		class, err := types.ParseKeyClass(className)
		if err != nil {
			handleError(err)
			return
		}

		sess, err := newSession()
		if err != nil {
			handleError(err)
			return
		}
		defer sess.Close()

		if class == types.KeyClassPublic {
			handle, der, err := sess.keyring.FindPublicKey(context.Background(), label)
			if err != nil {
				handleError(err)
				return
			}
			if err := printer.PrintPublicKey(handle, der); err != nil {
				handleError(err)
			}
			return
		}

		handle, err := sess.keyring.FindPrivateKey(context.Background(), label)
		if err != nil {
			handleError(err)
			return
		}
		if err := printer.PrintHandle(handle); err != nil {
			handleError(err)
		}
	},
}

// keyRemoveCmd removes a single key
var keyRemoveCmd = &cobra.Command{
	Use:   "remove <label>",
	Short: "Remove a key by label",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		label := args[0]
		printer := NewPrinter(outputFormat, os.Stdout)

		className, _ := cmd.Flags().GetString("class")
		class, err := types.ParseKeyClass(className)
		if err != nil {
			handleError(err)
			return
		}

		sess, err := newSession()
		if err != nil {
			handleError(err)
			return
		}
		defer sess.Close()

		if class == types.KeyClassPublic {
			err = sess.keyring.RemovePublicKey(context.Background(), label)
		} else {
			err = sess.keyring.RemovePrivateKey(context.Background(), label)
		}
		if err != nil {
			handleError(fmt.Errorf("failed to remove key: %w", err))
			return
		}

		if err := printer.PrintSuccess(fmt.Sprintf("Removed %s key: %s", class, label)); err != nil {
			handleError(err)
		}
	},
}

// keyRemovePairCmd removes both halves of a key pair
var keyRemovePairCmd = &cobra.Command{
	Use:   "remove-pair <public-label> <private-label>",
	Short: "Remove both halves of a key pair",
	Long: `Remove the public and private keys of a pair. Both deletes are
attempted; a failure on one half does not stop the other.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		publicLabel, privateLabel := args[0], args[1]
		printer := NewPrinter(outputFormat, os.Stdout)

		sess, err := newSession()
		if err != nil {
			handleError(err)
			return
		}
		defer sess.Close()

		if err := sess.keyring.RemoveKeyPair(context.Background(), publicLabel, privateLabel); err != nil {
			handleError(fmt.Errorf("failed to remove key pair: %w", err))
			return
		}

		if err := printer.PrintSuccess(fmt.Sprintf("Removed key pair: %s / %s", publicLabel, privateLabel)); err != nil {
			handleError(err)
		}
	},
}

func init() {
	keyGenerateCmd.Flags().String("accessibility", types.AccessibleAfterFirstUnlock.String(),
		"device-state gate (when-unlocked, when-unlocked-this-device, after-first-unlock, after-first-unlock-this-device)")
	keyGenerateCmd.Flags().Bool("presence", false, "require user presence for every private key use")
	keyGenerateCmd.Flags().String("access-group", "", "access group the pair belongs to")
	keyGenerateCmd.Flags().Int("rsa", 0, "generate an RSA pair of this size instead of EC P-256 (2048, 3072, 4096)")
	keyGenerateCmd.Flags().String("tier", "", "storage tier (secure-element, keystore)")
	keyGenerateCmd.Flags().Bool("replace", false, "replace an existing pair under the same labels")

	keyFindCmd.Flags().String("class", types.KeyClassPublic.String(), "key class (public, private)")
	keyRemoveCmd.Flags().String("class", types.KeyClassPublic.String(), "key class (public, private)")

	keyCmd.AddCommand(keyGenerateCmd)
	keyCmd.AddCommand(keyFindCmd)
	keyCmd.AddCommand(keyRemoveCmd)
	keyCmd.AddCommand(keyRemovePairCmd)
}
