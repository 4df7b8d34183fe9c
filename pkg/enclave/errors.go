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

package enclave

import (
	"errors"
	"fmt"
)

// Typed errors surfaced by the Client. Raw status codes never escape this
// package; unmapped codes are wrapped in StoreError with the code attached
// for diagnostics.
var (
	// ErrNotFound indicates no record matched the query.
	ErrNotFound = errors.New("enclave: key not found")

	// ErrAmbiguousMatch indicates an underspecified query matched more
	// than one record. The protocol does not define a selection order,
	// so the Client refuses to pick one.
	ErrAmbiguousMatch = errors.New("enclave: query matched multiple records")

	// ErrLabelInUse indicates a permanent record already exists under the
	// requested class and label. Use Replace for delete-and-regenerate
	// semantics.
	ErrLabelInUse = errors.New("enclave: label already in use")

	// ErrDuplicateItem is the internal duplicate signal consumed by the
	// Replace retry. Callers see ErrLabelInUse instead.
	ErrDuplicateItem = errors.New("enclave: duplicate item")

	// ErrUserCancelled indicates the user dismissed a presence prompt.
	// Callers may re-prompt.
	ErrUserCancelled = errors.New("enclave: user cancelled presence verification")

	// ErrAuthenticationFailed indicates presence verification failed,
	// e.g. no biometric enrolled. Callers should fail hard rather than
	// re-prompt.
	ErrAuthenticationFailed = errors.New("enclave: authentication failed")

	// ErrInteractionRequired indicates the key's accessibility policy
	// blocks use in the current device state.
	ErrInteractionRequired = errors.New("enclave: key unavailable in current device state")

	// ErrBadSignature indicates a signature did not verify. Only used
	// internally; Verify maps it to a boolean false result.
	ErrBadSignature = errors.New("enclave: signature verification failed")

	// ErrInputTooLarge indicates a digest exceeds the scheme's maximum
	// input for the key's block size. Raised client-side, before the
	// trust boundary is contacted.
	ErrInputTooLarge = errors.New("enclave: digest exceeds scheme maximum input size")

	// ErrBadSignatureParameters indicates a scheme/key/digest mismatch,
	// e.g. a fixed-digest scheme given the wrong digest length.
	ErrBadSignatureParameters = errors.New("enclave: invalid signature parameters")

	// ErrPolicyNotSupported indicates the element cannot express the
	// requested access policy combination. Surfaced rather than silently
	// downgraded.
	ErrPolicyNotSupported = errors.New("enclave: access policy not supported by element")

	// ErrElementRequired indicates a nil element was provided.
	ErrElementRequired = errors.New("enclave: element is required")

	// ErrElementClosed indicates the element has been closed.
	ErrElementClosed = errors.New("enclave: element is closed")
)

// GenerationError reports a non-success status from a key generation
// request, carrying the raw protocol code for diagnostics.
type GenerationError struct {
	Code Status
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("enclave: key generation failed: %s", e.Code)
}

// Is makes errors.Is match any GenerationError regardless of code.
func (e *GenerationError) Is(target error) bool {
	_, ok := target.(*GenerationError)
	return ok
}

// StoreError is the catch-all for trust-boundary codes with no dedicated
// mapping. It records the operation, label, and raw code so the failure
// can be diagnosed without re-entering the trust boundary.
type StoreError struct {
	Op    string
	Label string
	Code  Status
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("enclave: %s failed: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("enclave: %s %q failed: %s", e.Op, e.Label, e.Code)
}

// Is makes errors.Is match any StoreError regardless of fields.
func (e *StoreError) Is(target error) bool {
	_, ok := target.(*StoreError)
	return ok
}

// statusError maps a protocol status code onto the typed taxonomy.
// Every recognized code has a dedicated error; everything else becomes a
// StoreError carrying the raw code.
func statusError(op, label string, code Status) error {
	switch code {
	case StatusSuccess:
		return nil
	case StatusItemNotFound:
		return ErrNotFound
	case StatusDuplicateItem:
		return ErrDuplicateItem
	case StatusUserCanceled:
		return ErrUserCancelled
	case StatusAuthFailed:
		return ErrAuthenticationFailed
	case StatusInteractionRequired:
		return ErrInteractionRequired
	case StatusVerifyFailed:
		return ErrBadSignature
	case StatusParam:
		if op == "sign" || op == "verify" {
			return ErrBadSignatureParameters
		}
		return &StoreError{Op: op, Label: label, Code: code}
	default:
		return &StoreError{Op: op, Label: label, Code: code}
	}
}

// errorType returns a stable label for metrics.
func errorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAmbiguousMatch):
		return "ambiguous_match"
	case errors.Is(err, ErrLabelInUse):
		return "label_in_use"
	case errors.Is(err, ErrUserCancelled):
		return "user_cancelled"
	case errors.Is(err, ErrAuthenticationFailed):
		return "authentication_failed"
	case errors.Is(err, ErrInteractionRequired):
		return "interaction_required"
	case errors.Is(err, ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, ErrInputTooLarge):
		return "input_too_large"
	case errors.Is(err, ErrBadSignatureParameters):
		return "bad_signature_parameters"
	case errors.Is(err, &GenerationError{}):
		return "generation_failed"
	case errors.Is(err, &StoreError{}):
		return "store_error"
	default:
		return "other"
	}
}
