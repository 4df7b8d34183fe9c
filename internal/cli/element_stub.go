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

//go:build !pkcs11

package cli

import (
	"errors"

	"github.com/leafn/go-secure-enclave/internal/config"
	"github.com/leafn/go-secure-enclave/pkg/enclave"
	"github.com/leafn/go-secure-enclave/pkg/logging"
	"github.com/leafn/go-secure-enclave/pkg/storage"
)

// newHardwareElement reports that PKCS#11 support was not compiled in.
// Build with -tags pkcs11 to enable hardware tokens.
func newHardwareElement(_ *config.Config, _ storage.Backend, _ *logging.Logger) (enclave.Element, error) {
	return nil, errors.New("cli: pkcs11 support not compiled in (build with -tags pkcs11)")
}
