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

// Package policy constructs access-control descriptors for private keys.
// A policy is validated against the element's capabilities at build time:
// a combination the element cannot enforce is an error, never a silent
// downgrade. Dropping a presence requirement behind the caller's back
// would weaken the key without the caller knowing.
package policy

import (
	"fmt"

	"github.com/leafn/go-secure-enclave/pkg/enclave"
	"github.com/leafn/go-secure-enclave/pkg/types"
)

// Build constructs an immutable AccessPolicy gating a private key on
// device state and, optionally, user presence. The caps argument is the
// element capability set resolved once at startup.
func Build(accessibility types.Accessibility, requirePresence bool, caps types.Capabilities) (types.AccessPolicy, error) {
	if !accessibility.IsValid() {
		return types.AccessPolicy{}, fmt.Errorf("%w: %q", types.ErrUnknownAccessibility, accessibility)
	}
	if requirePresence && !caps.PresenceGating {
		return types.AccessPolicy{}, fmt.Errorf(
			"%w: presence gating requested but not available", enclave.ErrPolicyNotSupported)
	}
	if !caps.DeviceStateGating {
		return types.AccessPolicy{}, fmt.Errorf(
			"%w: accessibility %q cannot be enforced", enclave.ErrPolicyNotSupported, accessibility)
	}
	return types.AccessPolicy{
		Accessibility:   accessibility,
		RequirePresence: requirePresence,
		Usage:           types.UsageSign,
	}, nil
}
