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

package types

import (
	"crypto"
	"errors"
	"fmt"
)

var (
	// ErrUnknownKeyAlgorithm is returned when a key algorithm string is not recognized.
	ErrUnknownKeyAlgorithm = errors.New("types: unknown key algorithm")

	// ErrUnknownSignatureScheme is returned when a signature scheme string is not recognized.
	ErrUnknownSignatureScheme = errors.New("types: unknown signature scheme")
)

// =============================================================================
// Key Algorithms
// =============================================================================

// KeyAlgorithm identifies an asymmetric key family.
type KeyAlgorithm string

const (
	AlgorithmECDSA KeyAlgorithm = "ecdsa"
	AlgorithmRSA   KeyAlgorithm = "rsa"
)

// String returns the string representation of the key algorithm.
func (a KeyAlgorithm) String() string {
	return string(a)
}

// IsValid returns true if the key algorithm is a recognized value.
func (a KeyAlgorithm) IsValid() bool {
	switch a {
	case AlgorithmECDSA, AlgorithmRSA:
		return true
	default:
		return false
	}
}

// ParseKeyAlgorithm converts a string into a KeyAlgorithm.
func ParseKeyAlgorithm(s string) (KeyAlgorithm, error) {
	a := KeyAlgorithm(s)
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKeyAlgorithm, s)
	}
	return a, nil
}

// =============================================================================
// Elliptic Curves
// =============================================================================

// EllipticCurve identifies an elliptic curve. The secure element tier
// generates P-256 keys only.
type EllipticCurve string

const (
	CurveP256 EllipticCurve = "P-256"
)

// String returns the string representation of the curve.
func (c EllipticCurve) String() string {
	return string(c)
}

// Bits returns the curve's field size in bits.
func (c EllipticCurve) Bits() int {
	if c == CurveP256 {
		return 256
	}
	return 0
}

// RSA modulus sizes supported by the keystore tier.
const (
	RSAKeySize2048 = 2048
	RSAKeySize3072 = 3072
	RSAKeySize4096 = 4096
)

// =============================================================================
// Signature Schemes
// =============================================================================

// SignatureScheme pairs a padding/encoding scheme with its digest
// constraints. Every scheme takes an externally computed digest; none of
// them hash the input again before signing.
type SignatureScheme string

const (
	// SchemeECDSASHA256 signs a 32-byte SHA-256 digest, producing an
	// ASN.1 DER encoded ECDSA signature.
	SchemeECDSASHA256 SignatureScheme = "ecdsa-sha256"

	// SchemeRSAPKCS1v15SHA256 signs a 32-byte SHA-256 digest with PKCS#1
	// v1.5 padding and a DigestInfo prefix identifying SHA-256.
	SchemeRSAPKCS1v15SHA256 SignatureScheme = "rsa-pkcs1v15-sha256"

	// SchemeRSAPKCS1v15Raw signs caller-supplied bytes with PKCS#1 v1.5
	// padding and no DigestInfo prefix. Input is limited to the key's
	// block size minus the 11 padding bytes.
	SchemeRSAPKCS1v15Raw SignatureScheme = "rsa-pkcs1v15-raw"
)

// AllSignatureSchemes lists every scheme this module defines.
var AllSignatureSchemes = []SignatureScheme{
	SchemeECDSASHA256,
	SchemeRSAPKCS1v15SHA256,
	SchemeRSAPKCS1v15Raw,
}

// String returns the string representation of the scheme.
func (s SignatureScheme) String() string {
	return string(s)
}

// IsValid returns true if the scheme is a recognized value.
func (s SignatureScheme) IsValid() bool {
	switch s {
	case SchemeECDSASHA256, SchemeRSAPKCS1v15SHA256, SchemeRSAPKCS1v15Raw:
		return true
	default:
		return false
	}
}

// ParseSignatureScheme converts a string into a SignatureScheme.
func ParseSignatureScheme(s string) (SignatureScheme, error) {
	scheme := SignatureScheme(s)
	if !scheme.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSignatureScheme, s)
	}
	return scheme, nil
}

// Algorithm returns the key family the scheme operates on.
func (s SignatureScheme) Algorithm() KeyAlgorithm {
	switch s {
	case SchemeECDSASHA256:
		return AlgorithmECDSA
	case SchemeRSAPKCS1v15SHA256, SchemeRSAPKCS1v15Raw:
		return AlgorithmRSA
	default:
		return ""
	}
}

// Hash returns the digest function the scheme's input must come from, or
// zero for schemes that accept raw bytes.
func (s SignatureScheme) Hash() crypto.Hash {
	switch s {
	case SchemeECDSASHA256, SchemeRSAPKCS1v15SHA256:
		return crypto.SHA256
	default:
		return crypto.Hash(0)
	}
}

// DigestSize returns the exact digest length the scheme requires, or zero
// for schemes without a fixed digest length.
func (s SignatureScheme) DigestSize() int {
	if h := s.Hash(); h != 0 {
		return h.Size()
	}
	return 0
}

// MaxInputSize returns the largest input the scheme accepts for a key with
// the given block size in bytes. PKCS#1 v1.5 reserves 11 bytes of padding;
// fixed-digest schemes accept their digest size regardless of block size.
func (s SignatureScheme) MaxInputSize(blockSize int) int {
	switch s {
	case SchemeRSAPKCS1v15Raw:
		if blockSize < 11 {
			return 0
		}
		return blockSize - 11
	default:
		return s.DigestSize()
	}
}
