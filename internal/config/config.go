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

// Package config loads the tool configuration from YAML and environment
// variables. The element's capabilities are resolved exactly once, at
// startup, and treated as fixed for the life of the process; no code
// re-probes platform support per call.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidElementType is returned when the element type is not recognized.
	ErrInvalidElementType = errors.New("config: invalid element type")

	// ErrInvalidStorageType is returned when the storage type is not recognized.
	ErrInvalidStorageType = errors.New("config: invalid storage type")

	// ErrStoragePathRequired is returned when file storage has no path.
	ErrStoragePathRequired = errors.New("config: file storage requires a path")
)

// Element type identifiers.
const (
	ElementSoft   = "soft"
	ElementPKCS11 = "pkcs11"
)

// Storage type identifiers.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
)

// Config is the complete tool configuration.
type Config struct {
	Element ElementConfig `yaml:"element"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ElementConfig selects and configures the secure element.
type ElementConfig struct {
	// Type selects the element implementation: soft or pkcs11.
	Type string `yaml:"type"`

	// Unlocked is the initial device state of the soft element.
	Unlocked bool `yaml:"unlocked"`

	// Storage configures record persistence for the soft element and
	// metadata persistence for the pkcs11 element.
	Storage StorageConfig `yaml:"storage"`

	// PKCS11 configures the hardware token.
	PKCS11 PKCS11Config `yaml:"pkcs11"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path,omitempty"`
}

// PKCS11Config carries the token settings for the pkcs11 element.
type PKCS11Config struct {
	Library string `yaml:"library"`
	Label   string `yaml:"label"`
	PIN     string `yaml:"pin,omitempty"`
	Slot    *int   `yaml:"slot,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Default returns the configuration used when no file is given: an
// unlocked soft element over in-memory storage.
func Default() *Config {
	return &Config{
		Element: ElementConfig{
			Type:     ElementSoft,
			Unlocked: true,
			Storage: StorageConfig{
				Type: StorageMemory,
			},
		},
		Metrics: MetricsConfig{
			Listen: ":9835",
		},
	}
}

// Load reads a YAML configuration file, layered over the defaults.
// The PKCS11_PIN environment variable overrides the configured PIN so it
// can stay out of files.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}
	if pin := os.Getenv("PKCS11_PIN"); pin != "" {
		cfg.Element.PKCS11.PIN = pin
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	switch c.Element.Type {
	case ElementSoft, ElementPKCS11:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidElementType, c.Element.Type)
	}
	switch c.Element.Storage.Type {
	case StorageMemory:
	case StorageFile:
		if c.Element.Storage.Path == "" {
			return ErrStoragePathRequired
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStorageType, c.Element.Storage.Type)
	}
	return nil
}
