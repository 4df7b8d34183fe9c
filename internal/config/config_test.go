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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ElementSoft, cfg.Element.Type)
	assert.Equal(t, StorageMemory, cfg.Element.Storage.Type)
	assert.True(t, cfg.Element.Unlocked)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ElementSoft, cfg.Element.Type)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
element:
  type: soft
  unlocked: false
  storage:
    type: file
    path: /var/lib/enclave
logging:
  debug: true
metrics:
  enabled: true
  listen: ":9100"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ElementSoft, cfg.Element.Type)
	assert.False(t, cfg.Element.Unlocked)
	assert.Equal(t, StorageFile, cfg.Element.Storage.Type)
	assert.Equal(t, "/var/lib/enclave", cfg.Element.Storage.Path)
	assert.True(t, cfg.Logging.Debug)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9100", cfg.Metrics.Listen)
}

func TestLoad_PKCS11(t *testing.T) {
	path := writeConfig(t, `
element:
  type: pkcs11
  storage:
    type: memory
  pkcs11:
    library: /usr/lib/softhsm/libsofthsm2.so
    label: enclave
    slot: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ElementPKCS11, cfg.Element.Type)
	assert.Equal(t, "/usr/lib/softhsm/libsofthsm2.so", cfg.Element.PKCS11.Library)
	require.NotNil(t, cfg.Element.PKCS11.Slot)
	assert.Equal(t, 3, *cfg.Element.PKCS11.Slot)
}

func TestLoad_PINFromEnvironment(t *testing.T) {
	t.Setenv("PKCS11_PIN", "123456")

	path := writeConfig(t, `
element:
  type: pkcs11
  storage:
    type: memory
  pkcs11:
    library: /usr/lib/softhsm/libsofthsm2.so
    pin: from-file
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	// Environment wins so PINs can stay out of files
	assert.Equal(t, "123456", cfg.Element.PKCS11.PIN)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"InvalidElementType", func(c *Config) {
			c.Element.Type = "tpm"
		}, ErrInvalidElementType},
		{"InvalidStorageType", func(c *Config) {
			c.Element.Storage.Type = "s3"
		}, ErrInvalidStorageType},
		{"FileStorageNoPath", func(c *Config) {
			c.Element.Storage.Type = StorageFile
			c.Element.Storage.Path = ""
		}, ErrStoragePathRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}
