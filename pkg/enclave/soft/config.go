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

package soft

import (
	"context"
	"errors"
)

// ErrStorageRequired is returned when no storage backend is configured.
var ErrStorageRequired = errors.New("soft: storage backend is required")

// PresenceResult is the outcome of a user presence prompt.
type PresenceResult int

const (
	// PresenceApproved means the user passed presence verification.
	PresenceApproved PresenceResult = iota

	// PresenceCanceled means the user dismissed the prompt.
	PresenceCanceled

	// PresenceFailed means verification failed, e.g. no biometric enrolled.
	PresenceFailed
)

// PresenceVerifier is invoked whenever a presence-gated private key is
// used. It may block for human-scale durations; the context lets the
// caller abandon the wait, which the element reports as a cancellation.
type PresenceVerifier func(ctx context.Context, label string) PresenceResult

// Config contains configuration for the software secure element.
type Config struct {
	// Storage persists key records. Required. Use storage.NewMemory for
	// an ephemeral element or the file backend for persistence across
	// restarts.
	Storage Storage

	// Presence verifies user presence for presence-gated keys. When nil,
	// prompts auto-approve, matching a simulator without enrolled
	// biometrics configured to pass.
	Presence PresenceVerifier

	// Unlocked is the initial device state. Keys with a when-unlocked
	// accessibility policy are unusable while the element is locked.
	Unlocked bool
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c == nil || c.Storage == nil {
		return ErrStorageRequired
	}
	return nil
}
