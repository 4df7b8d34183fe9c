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

import "fmt"

// Status is the opaque status code returned by the secure element's
// query/command protocol. The numeric values are fixed by the platform
// protocol; this module maps them into the typed error taxonomy and never
// exposes raw codes above the Client boundary.
type Status int32

const (
	// StatusSuccess indicates the operation completed.
	StatusSuccess Status = 0

	// StatusUnimplemented indicates the element does not implement the
	// requested function.
	StatusUnimplemented Status = -4

	// StatusParam indicates a malformed or invalid parameter reached the
	// element.
	StatusParam Status = -50

	// StatusUserCanceled indicates the user dismissed a presence prompt.
	StatusUserCanceled Status = -128

	// StatusNotAvailable indicates the secure element is absent or
	// unreachable.
	StatusNotAvailable Status = -25291

	// StatusAuthFailed indicates presence verification failed, for
	// example because no biometric is enrolled.
	StatusAuthFailed Status = -25293

	// StatusDuplicateItem indicates a record with the same class and
	// label already exists.
	StatusDuplicateItem Status = -25299

	// StatusItemNotFound indicates no record matched the query.
	StatusItemNotFound Status = -25300

	// StatusInteractionRequired indicates the key's accessibility policy
	// blocks use in the current device state (e.g. device locked).
	StatusInteractionRequired Status = -25308

	// StatusDecode indicates the element could not decode a submitted
	// payload.
	StatusDecode Status = -26275

	// StatusMissingEntitlement indicates the caller lacks the sharing
	// domain entitlement named by the request's access group.
	StatusMissingEntitlement Status = -34018

	// StatusVerifyFailed indicates a signature did not verify against
	// the digest. Distinct from structural errors: the Client maps this
	// code to a boolean false result.
	StatusVerifyFailed Status = -67808
)

// String returns a diagnostic name for the status code. Unrecognized codes
// render numerically; they are still surfaced, never swallowed.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusUnimplemented:
		return "unimplemented"
	case StatusParam:
		return "invalid parameter"
	case StatusUserCanceled:
		return "user canceled"
	case StatusNotAvailable:
		return "element not available"
	case StatusAuthFailed:
		return "authentication failed"
	case StatusDuplicateItem:
		return "duplicate item"
	case StatusItemNotFound:
		return "item not found"
	case StatusInteractionRequired:
		return "interaction required"
	case StatusDecode:
		return "decode failure"
	case StatusMissingEntitlement:
		return "missing entitlement"
	case StatusVerifyFailed:
		return "verification failed"
	default:
		return fmt.Sprintf("status %d", int32(s))
	}
}

// Ok returns true for the success status.
func (s Status) Ok() bool {
	return s == StatusSuccess
}
