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

// Package signing performs digest signing and verification through key
// handles. Inputs are externally computed digests, never raw messages,
// and scheme constraints are enforced client-side so an oversized digest
// fails before the trust boundary is contacted instead of surfacing as an
// opaque element error.
package signing

import (
	"context"
	"errors"
	"fmt"

	"github.com/leafn/go-secure-enclave/pkg/enclave"
	"github.com/leafn/go-secure-enclave/pkg/types"
)

var (
	// ErrClientRequired indicates a nil enclave client was provided.
	ErrClientRequired = errors.New("signing: enclave client is required")

	// ErrEmptyDigest indicates an empty digest was submitted.
	ErrEmptyDigest = errors.New("signing: digest must not be empty")
)

// Signer signs and verifies digests through the enclave client.
// Stateless across calls; safe for concurrent use.
type Signer struct {
	client *enclave.Client
}

// NewSigner creates a Signer over the given client.
func NewSigner(client *enclave.Client) (*Signer, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	return &Signer{client: client}, nil
}

// checkInput enforces the scheme's digest constraints for the given key.
// Fixed-digest schemes require their exact digest length; the raw PKCS#1
// v1.5 scheme accepts up to blockSize-11 bytes. Violations never reach
// the element.
func checkInput(handle *types.KeyHandle, scheme types.SignatureScheme, digest []byte) error {
	if !scheme.IsValid() {
		return fmt.Errorf("%w: %q", types.ErrUnknownSignatureScheme, scheme)
	}
	if scheme.Algorithm() != handle.Algorithm {
		return fmt.Errorf("%w: scheme %s requires a %s key, handle is %s",
			enclave.ErrBadSignatureParameters, scheme, scheme.Algorithm(), handle.Algorithm)
	}
	if len(digest) == 0 {
		return ErrEmptyDigest
	}

	if size := scheme.DigestSize(); size > 0 {
		if len(digest) > size {
			return fmt.Errorf("%w: %d bytes, scheme %s takes exactly %d",
				enclave.ErrInputTooLarge, len(digest), scheme, size)
		}
		if len(digest) < size {
			return fmt.Errorf("%w: %d bytes, scheme %s takes exactly %d",
				enclave.ErrBadSignatureParameters, len(digest), scheme, size)
		}
		return nil
	}

	max := scheme.MaxInputSize(handle.BlockSize())
	if len(digest) > max {
		return fmt.Errorf("%w: %d bytes, scheme %s with a %d-byte block takes at most %d",
			enclave.ErrInputTooLarge, len(digest), scheme, handle.BlockSize(), max)
	}
	return nil
}

// Sign produces a signature over the digest with the referenced private
// key. The signature length is the element's report: the key's block size
// for RSA schemes, the DER-encoded length for EC.
func (s *Signer) Sign(ctx context.Context, digest []byte, priv *types.KeyHandle, scheme types.SignatureScheme) ([]byte, error) {
	if priv == nil || priv.Class != types.KeyClassPrivate {
		return nil, fmt.Errorf("%w: private key handle required", enclave.ErrBadSignatureParameters)
	}
	if err := checkInput(priv, scheme, digest); err != nil {
		return nil, err
	}
	return s.client.Sign(ctx, priv, scheme, digest)
}

// Verify checks a signature over the digest with the referenced public
// key. A well-formed but mismatched signature returns (false, nil);
// structural problems (wrong handle class, digest length violations,
// unknown schemes, trust-boundary failures) return an error. The
// distinction lets callers treat "bad signature" as a data outcome and
// everything else as a fault.
func (s *Signer) Verify(ctx context.Context, signature, digest []byte, pub *types.KeyHandle, scheme types.SignatureScheme) (bool, error) {
	if pub == nil || pub.Class != types.KeyClassPublic {
		return false, fmt.Errorf("%w: public key handle required", enclave.ErrBadSignatureParameters)
	}
	if err := checkInput(pub, scheme, digest); err != nil {
		return false, err
	}
	if len(signature) == 0 {
		return false, fmt.Errorf("%w: empty signature", enclave.ErrBadSignatureParameters)
	}
	return s.client.Verify(ctx, pub, scheme, digest, signature)
}
