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

package cli

import (
	"github.com/leafn/go-secure-enclave/internal/config"
	"github.com/leafn/go-secure-enclave/pkg/enclave"
	"github.com/leafn/go-secure-enclave/pkg/enclave/pkcs11"
	"github.com/leafn/go-secure-enclave/pkg/logging"
	"github.com/leafn/go-secure-enclave/pkg/storage"
)

// newHardwareElement constructs the PKCS#11 element from the configuration.
func newHardwareElement(cfg *config.Config, store storage.Backend, logger *logging.Logger) (enclave.Element, error) {
	return pkcs11.NewElement(&pkcs11.Config{
		Library:    cfg.Element.PKCS11.Library,
		TokenLabel: cfg.Element.PKCS11.Label,
		PIN:        cfg.Element.PKCS11.PIN,
		Slot:       cfg.Element.PKCS11.Slot,
		Metadata:   store,
	}, logger)
}
