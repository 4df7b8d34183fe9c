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

//go:build pkcs11

package pkcs11

import (
	"errors"
	"fmt"
	"os"

	"github.com/leafn/go-secure-enclave/pkg/storage"
)

var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("pkcs11: invalid configuration")

	// ErrLibraryNotFound is returned when the PKCS#11 library cannot be found.
	ErrLibraryNotFound = errors.New("pkcs11: library not found")

	// ErrInvalidPINLength is returned when the user PIN is too short.
	// PKCS#11 typically requires PINs to be at least 4 characters.
	ErrInvalidPINLength = errors.New("pkcs11: invalid pin length, must be at least 4 characters")
)

// Config contains configuration for the PKCS#11-backed secure element.
type Config struct {
	// Library is the path to the PKCS#11 library file.
	// Examples:
	//   - /usr/lib/softhsm/libsofthsm2.so (SoftHSM)
	//   - /usr/lib/libykcs11.so (YubiKey)
	Library string `yaml:"library"`

	// TokenLabel is the label of the PKCS#11 token to use.
	TokenLabel string `yaml:"label"`

	// PIN is the user PIN for the PKCS#11 token.
	PIN string `yaml:"pin,omitempty"`

	// Slot optionally pins the element to a specific slot number instead
	// of locating the token by label.
	Slot *int `yaml:"slot,omitempty"`

	// Metadata persists record metadata (labels, policies, access
	// groups). Key material never touches this storage; it stays on the
	// token.
	Metadata storage.Backend `yaml:"-"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}
	if c.Library == "" {
		return fmt.Errorf("%w: library path is required", ErrInvalidConfig)
	}
	if _, err := os.Stat(c.Library); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrLibraryNotFound, c.Library)
	}
	if c.TokenLabel == "" {
		return fmt.Errorf("%w: token label is required", ErrInvalidConfig)
	}
	if c.PIN != "" && len(c.PIN) < 4 {
		return ErrInvalidPINLength
	}
	if c.Metadata == nil {
		return fmt.Errorf("%w: metadata storage is required", ErrInvalidConfig)
	}
	return nil
}
