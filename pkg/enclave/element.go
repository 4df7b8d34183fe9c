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
	"context"

	"github.com/leafn/go-secure-enclave/pkg/types"
)

// Element is the narrow command interface into a secure element. Each
// method maps 1:1 to a trust-boundary call and reports an opaque Status
// rather than a Go error; the Client translates statuses into the typed
// error taxonomy.
//
// Elements own all key material. Handles returned by an element reference
// records inside its store and are invalidated by deletion; an element
// must fail an operation on a stale handle, never treat it as a no-op.
//
// Operations are synchronous and may block: the element performs its own
// I/O, and private key use under a presence-gated policy blocks on human
// input. The context lets callers abandon the wait; elements map context
// cancellation to StatusUserCanceled.
//
// All implementations must be thread-safe. Concurrent operations against
// the same label resolve to whatever atomicity the element provides;
// callers needing single-writer semantics serialize at a higher layer.
type Element interface {
	// CreateKeyPair generates a key pair and persists both records.
	// Returns StatusDuplicateItem if either label is already in use for
	// its class.
	CreateKeyPair(ctx context.Context, attrs *types.KeyAttributes) (*types.KeyPair, Status)

	// Find returns every record matching the query. An empty result is
	// reported as StatusItemNotFound. Match order for underspecified
	// queries is not defined by the protocol; callers must not rely on it.
	Find(ctx context.Context, query *types.KeyQuery) ([]*types.KeyRecord, Status)

	// Delete removes the records matching the query. Absence of a match
	// is StatusItemNotFound, never a silent no-op.
	Delete(ctx context.Context, query *types.KeyQuery) Status

	// Sign produces a signature over the digest with the referenced
	// private key. The element enforces the key's access policy; digest
	// length constraints are the caller's responsibility and are checked
	// client-side before this call.
	Sign(ctx context.Context, handle *types.KeyHandle, scheme types.SignatureScheme, digest []byte) ([]byte, Status)

	// Verify checks a signature over the digest with the referenced
	// public key. A well-formed but mismatched signature is
	// StatusVerifyFailed; structural problems use other codes.
	Verify(ctx context.Context, handle *types.KeyHandle, scheme types.SignatureScheme, digest, signature []byte) Status

	// Capabilities reports what the element supports. Resolved once at
	// startup; implementations must return a stable value.
	Capabilities() types.Capabilities

	// Type returns a short identifier for metrics and logs.
	Type() string

	// Close releases resources held by the element.
	Close() error
}
