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

// Package types contains shared type definitions used across the enclave
// client, elements, keyring, and signing packages: key classes, storage
// tiers, access policies, attribute and query structures, and opaque key
// handles. This package has no dependencies on other project packages to
// prevent import cycles.
package types

import (
	"errors"
	"fmt"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrInvalidLabel is returned when a key label is empty.
	ErrInvalidLabel = errors.New("types: key label must not be empty")

	// ErrLabelsNotDistinct is returned when the public and private labels
	// of a generation request are identical.
	ErrLabelsNotDistinct = errors.New("types: public and private labels must be distinct")

	// ErrUnknownKeyClass is returned when a key class string is not recognized.
	ErrUnknownKeyClass = errors.New("types: unknown key class")

	// ErrUnknownAccessibility is returned when an accessibility string is not recognized.
	ErrUnknownAccessibility = errors.New("types: unknown accessibility class")

	// ErrUnknownStoreTier is returned when a storage tier string is not recognized.
	ErrUnknownStoreTier = errors.New("types: unknown storage tier")

	// ErrUnsupportedTierAlgorithm is returned when a generation request pairs
	// the secure element tier with an algorithm the element cannot host.
	// Only 256-bit prime curve EC keys are generated inside the element;
	// every other family is keystore-only.
	ErrUnsupportedTierAlgorithm = errors.New("types: algorithm not supported by the secure element tier")

	// ErrInvalidCurve is returned when an unsupported elliptic curve is requested.
	ErrInvalidCurve = errors.New("types: invalid elliptic curve")

	// ErrInvalidRSAKeySize is returned when an unsupported RSA modulus size is requested.
	ErrInvalidRSAKeySize = errors.New("types: invalid RSA key size")

	// ErrInvalidQuery is returned when a key query is structurally invalid.
	ErrInvalidQuery = errors.New("types: invalid key query")

	// ErrPrivateExportForbidden is returned when a query requests exported
	// key bytes for a private key. Private key material never crosses the
	// trust boundary.
	ErrPrivateExportForbidden = errors.New("types: private key material cannot be exported")
)

// =============================================================================
// Key Class
// =============================================================================

// KeyClass identifies whether a record addresses the public or private half
// of a key pair. Class and label together form a record's identity; the
// label alone is not unique across classes.
type KeyClass string

const (
	KeyClassPublic  KeyClass = "public"
	KeyClassPrivate KeyClass = "private"
)

// String returns the string representation of the key class.
func (c KeyClass) String() string {
	return string(c)
}

// IsValid returns true if the key class is a recognized value.
func (c KeyClass) IsValid() bool {
	switch c {
	case KeyClassPublic, KeyClassPrivate:
		return true
	default:
		return false
	}
}

// ParseKeyClass converts a string into a KeyClass.
func ParseKeyClass(s string) (KeyClass, error) {
	c := KeyClass(s)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKeyClass, s)
	}
	return c, nil
}

// =============================================================================
// Storage Tier
// =============================================================================

// StoreTier selects where generated key material lives. The secure element
// tier keeps private keys inside tamper-resistant hardware; the keystore
// tier uses the element's software key store.
type StoreTier string

const (
	// TierSecureElement stores private keys inside the hardware secure
	// element. Restricted to 256-bit prime curve EC keys.
	TierSecureElement StoreTier = "secure-element"

	// TierKeystore stores keys in the element's software keystore.
	// Supports EC and RSA.
	TierKeystore StoreTier = "keystore"
)

// String returns the string representation of the storage tier.
func (t StoreTier) String() string {
	return string(t)
}

// IsValid returns true if the storage tier is a recognized value.
func (t StoreTier) IsValid() bool {
	switch t {
	case TierSecureElement, TierKeystore:
		return true
	default:
		return false
	}
}

// ParseStoreTier converts a string into a StoreTier.
func ParseStoreTier(s string) (StoreTier, error) {
	t := StoreTier(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStoreTier, s)
	}
	return t, nil
}

// =============================================================================
// Accessibility
// =============================================================================

// Accessibility is the device-state gate attached to a private key at
// creation time. It controls when the element will allow the key to be used.
type Accessibility string

const (
	// AccessibleWhenUnlocked allows key use only while the device is unlocked.
	AccessibleWhenUnlocked Accessibility = "when-unlocked"

	// AccessibleWhenUnlockedThisDeviceOnly behaves like
	// AccessibleWhenUnlocked and additionally pins the key to the device
	// it was created on (never migrated to another device).
	AccessibleWhenUnlockedThisDeviceOnly Accessibility = "when-unlocked-this-device"

	// AccessibleAfterFirstUnlock allows key use any time after the first
	// unlock following a reboot.
	AccessibleAfterFirstUnlock Accessibility = "after-first-unlock"

	// AccessibleAfterFirstUnlockThisDeviceOnly behaves like
	// AccessibleAfterFirstUnlock with the this-device-only restriction.
	AccessibleAfterFirstUnlockThisDeviceOnly Accessibility = "after-first-unlock-this-device"
)

// String returns the string representation of the accessibility class.
func (a Accessibility) String() string {
	return string(a)
}

// IsValid returns true if the accessibility class is a recognized value.
func (a Accessibility) IsValid() bool {
	switch a {
	case AccessibleWhenUnlocked, AccessibleWhenUnlockedThisDeviceOnly,
		AccessibleAfterFirstUnlock, AccessibleAfterFirstUnlockThisDeviceOnly:
		return true
	default:
		return false
	}
}

// ThisDeviceOnly returns true if the accessibility class pins the key to
// the device it was created on.
func (a Accessibility) ThisDeviceOnly() bool {
	return a == AccessibleWhenUnlockedThisDeviceOnly ||
		a == AccessibleAfterFirstUnlockThisDeviceOnly
}

// RequiresUnlocked returns true if the accessibility class requires the
// device to be unlocked at the time of use.
func (a Accessibility) RequiresUnlocked() bool {
	return a == AccessibleWhenUnlocked || a == AccessibleWhenUnlockedThisDeviceOnly
}

// ParseAccessibility converts a string into an Accessibility.
func ParseAccessibility(s string) (Accessibility, error) {
	a := Accessibility(s)
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAccessibility, s)
	}
	return a, nil
}

// =============================================================================
// Key Usage
// =============================================================================

// KeyUsage is a bitmask of the operations a key may perform.
type KeyUsage uint8

const (
	UsageSign KeyUsage = 1 << iota
	UsageVerify
)

// Can returns true if all operations in u are permitted.
func (u KeyUsage) Can(op KeyUsage) bool {
	return u&op == op
}

// =============================================================================
// Access Policy
// =============================================================================

// AccessPolicy is the immutable access-control descriptor attached to a
// private key at creation time. It cannot be altered after creation;
// changing a key's policy requires delete and regenerate.
//
// Construct policies through policy.Build, which validates the requested
// combination against the element's capabilities rather than silently
// downgrading unsupported requests.
type AccessPolicy struct {
	// Accessibility gates key use on device state.
	Accessibility Accessibility

	// RequirePresence requires user presence (biometric or equivalent)
	// verification each time the private key is used.
	RequirePresence bool

	// Usage enumerates the operations the key may perform.
	Usage KeyUsage
}

// =============================================================================
// Key Attributes
// =============================================================================

// KeyAttributes is a key pair generation request.
type KeyAttributes struct {
	// Algorithm is the asymmetric key family.
	Algorithm KeyAlgorithm

	// Curve is the elliptic curve for EC keys. Defaults to P-256, the only
	// curve the secure element tier supports.
	Curve EllipticCurve

	// RSAKeySize is the modulus size in bits for RSA keys.
	RSAKeySize int

	// Tier selects hardware or software key storage.
	Tier StoreTier

	// PublicLabel addresses the public record.
	PublicLabel string

	// PrivateLabel addresses the private record.
	PrivateLabel string

	// Policy is the access-control descriptor bound to the private key.
	Policy AccessPolicy

	// AccessGroup optionally tags both records with a sharing domain so
	// cooperating processes can address them. Empty scopes the pair to
	// the creating process.
	AccessGroup string

	// Permanent persists the records in the element's store. Ephemeral
	// pairs are discarded when their handles are released.
	Permanent bool
}

// Validate checks the generation request for structural errors: empty or
// identical labels, unknown enums, and algorithm/tier pairings the secure
// element cannot host. Violations are reported before the trust boundary
// is ever contacted.
func (a *KeyAttributes) Validate() error {
	if a.PublicLabel == "" || a.PrivateLabel == "" {
		return ErrInvalidLabel
	}
	if a.PublicLabel == a.PrivateLabel {
		return ErrLabelsNotDistinct
	}
	if !a.Tier.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownStoreTier, a.Tier)
	}
	switch a.Algorithm {
	case AlgorithmECDSA:
		if a.Curve != CurveP256 {
			return fmt.Errorf("%w: %q", ErrInvalidCurve, a.Curve)
		}
	case AlgorithmRSA:
		if a.Tier == TierSecureElement {
			return fmt.Errorf("%w: %s", ErrUnsupportedTierAlgorithm, a.Algorithm)
		}
		switch a.RSAKeySize {
		case RSAKeySize2048, RSAKeySize3072, RSAKeySize4096:
		default:
			return fmt.Errorf("%w: %d", ErrInvalidRSAKeySize, a.RSAKeySize)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKeyAlgorithm, a.Algorithm)
	}
	return nil
}

// Bits returns the key size in bits described by the attributes.
func (a *KeyAttributes) Bits() int {
	if a.Algorithm == AlgorithmRSA {
		return a.RSAKeySize
	}
	return a.Curve.Bits()
}

// =============================================================================
// Key Query
// =============================================================================

// ReturnShape selects what a Find operation materializes for a matched
// record.
type ReturnShape string

const (
	// ReturnHandle returns an opaque handle only.
	ReturnHandle ReturnShape = "handle"

	// ReturnHandleAndPublicBytes additionally exports the public key as
	// SubjectPublicKeyInfo DER. Only valid for public records.
	ReturnHandleAndPublicBytes ReturnShape = "handle+public-bytes"
)

// KeyQuery is a structured filter against the element's store. Class and
// exact label are always required; the open attribute-dictionary shape of
// the underlying protocol is deliberately not exposed.
type KeyQuery struct {
	// Class selects public or private records.
	Class KeyClass

	// Label is matched exactly.
	Label string

	// Return selects the result shape. Zero value means ReturnHandle.
	Return ReturnShape

	// AccessGroup optionally restricts matches to a sharing domain.
	AccessGroup string
}

// Validate checks the query for structural errors.
func (q *KeyQuery) Validate() error {
	if !q.Class.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownKeyClass, q.Class)
	}
	if q.Label == "" {
		return fmt.Errorf("%w: empty label", ErrInvalidQuery)
	}
	if q.Class == KeyClassPrivate && q.Return == ReturnHandleAndPublicBytes {
		return ErrPrivateExportForbidden
	}
	return nil
}

// =============================================================================
// Key Handle
// =============================================================================

// KeyHandle is an opaque, capability-style reference to a key living inside
// the element's store. It never carries key material; the holder can only
// use it for further store operations (sign, verify, delete). A handle
// remains valid until the underlying record is deleted, after which every
// operation through it fails rather than silently succeeding.
type KeyHandle struct {
	// ID is the element-assigned record identifier.
	ID string

	// Class is the record's key class.
	Class KeyClass

	// Label is the record's addressing label.
	Label string

	// Algorithm is the key family.
	Algorithm KeyAlgorithm

	// Bits is the key size in bits (curve size for EC, modulus size for RSA).
	Bits int

	// Tier records where the key material lives.
	Tier StoreTier
}

// BlockSize returns the signature block size in bytes for RSA keys, and
// zero for key families without a fixed block size.
func (h *KeyHandle) BlockSize() int {
	if h.Algorithm == AlgorithmRSA {
		return h.Bits / 8
	}
	return 0
}

// KeyPair bundles the two handles produced by a generation request.
type KeyPair struct {
	Public  *KeyHandle
	Private *KeyHandle
}

// KeyRecord is the result of a Find operation.
type KeyRecord struct {
	// Handle references the matched record.
	Handle *KeyHandle

	// PublicBytes holds the exported SubjectPublicKeyInfo DER when the
	// query requested ReturnHandleAndPublicBytes. Always nil for private
	// records.
	PublicBytes []byte
}

// =============================================================================
// Capabilities
// =============================================================================

// Capabilities describes what a secure element supports. Resolved once at
// startup and treated as fixed for the life of the process; callers must
// not re-probe per operation.
type Capabilities struct {
	// HardwareBacked is true when private keys live in tamper-resistant
	// hardware rather than a software keystore.
	HardwareBacked bool

	// PresenceGating is true when the element can require user presence
	// verification before private key use.
	PresenceGating bool

	// DeviceStateGating is true when the element enforces accessibility
	// classes (device locked/unlocked state).
	DeviceStateGating bool

	// Schemes lists the signature schemes the element implements.
	Schemes []SignatureScheme
}

// SupportsScheme returns true if the element implements the given scheme.
func (c Capabilities) SupportsScheme(s SignatureScheme) bool {
	for _, have := range c.Schemes {
		if have == s {
			return true
		}
	}
	return false
}
