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
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/leafn/go-secure-enclave/pkg/types"
	"github.com/spf13/cobra"
)

// signInput resolves the bytes handed to the element from the sign/verify
// flags. Exactly one of --digest and --file may be given; --file hashes the
// file contents with the scheme's digest function.
func signInput(cmd *cobra.Command, scheme types.SignatureScheme) ([]byte, error) {
	digestHex, _ := cmd.Flags().GetString("digest")
	filePath, _ := cmd.Flags().GetString("file")

	switch {
	case digestHex != "" && filePath != "":
		return nil, errors.New("cli: --digest and --file are mutually exclusive")
	case digestHex != "":
		digest, err := hex.DecodeString(digestHex)
		if err != nil {
			return nil, fmt.Errorf("cli: invalid digest hex: %w", err)
		}
		return digest, nil
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("cli: failed to read %s: %w", filePath, err)
		}
		if scheme.Hash() == 0 {
			// Raw schemes sign file contents as-is.
			return data, nil
		}
		sum := sha256.Sum256(data)
		return sum[:], nil
	default:
		return nil, errors.New("cli: one of --digest or --file is required")
	}
}

// signCmd signs a digest with a private key
var signCmd = &cobra.Command{
	Use:   "sign <private-label>",
	Short: "Sign a digest with a private key",
	Long: `Sign a precomputed digest (or a file, hashed locally) with the private
key stored under the given label. The signature is printed base64 encoded.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		label := args[0]
		printer := NewPrinter(outputFormat, os.Stdout)

		schemeName, _ := cmd.Flags().GetString("scheme")
		scheme, err := types.ParseSignatureScheme(schemeName)
		if err != nil {
			handleError(err)
			return
		}

		digest, err := signInput(cmd, scheme)
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

		handle, err := sess.keyring.FindPrivateKey(context.Background(), label)
		if err != nil {
			handleError(err)
			return
		}

		printVerbose("Signing %d bytes with %s (%s)", len(digest), label, scheme)

		signature, err := sess.signer.Sign(context.Background(), digest, handle, scheme)
		if err != nil {
			handleError(fmt.Errorf("failed to sign: %w", err))
			return
		}

		if err := printer.PrintSignature(signature); err != nil {
			handleError(err)
		}
	},
}

// verifyCmd verifies a signature with a public key
var verifyCmd = &cobra.Command{
	Use:   "verify <public-label>",
	Short: "Verify a signature with a public key",
	Long: `Verify a base64 signature over a precomputed digest (or a file,
hashed locally) using the public key stored under the given label.
Exits non-zero when the signature does not match.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		label := args[0]
		printer := NewPrinter(outputFormat, os.Stdout)

		schemeName, _ := cmd.Flags().GetString("scheme")
		scheme, err := types.ParseSignatureScheme(schemeName)
		if err != nil {
			handleError(err)
			return
		}

		encoded, _ := cmd.Flags().GetString("signature")
		signature, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			handleError(fmt.Errorf("cli: invalid signature base64: %w", err))
			return
		}

		digest, err := signInput(cmd, scheme)
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

		handle, _, err := sess.keyring.FindPublicKey(context.Background(), label)
		if err != nil {
			handleError(err)
			return
		}

		valid, err := sess.signer.Verify(context.Background(), signature, digest, handle, scheme)
		if err != nil {
			handleError(fmt.Errorf("failed to verify: %w", err))
			return
		}

		if err := printer.PrintVerifyResult(valid); err != nil {
			handleError(err)
			return
		}
		if !valid {
			os.Exit(1)
		}
	},
}

func init() {
	for _, cmd := range []*cobra.Command{signCmd, verifyCmd} {
		cmd.Flags().String("scheme", types.SchemeECDSASHA256.String(),
			"signature scheme (ecdsa-sha256, rsa-pkcs1v15-sha256, rsa-pkcs1v15-raw)")
		cmd.Flags().String("digest", "", "hex encoded digest to sign or verify")
		cmd.Flags().String("file", "", "file to hash locally with the scheme's digest function")
	}
	verifyCmd.Flags().String("signature", "", "base64 encoded signature to verify")
	_ = verifyCmd.MarkFlagRequired("signature")
}
