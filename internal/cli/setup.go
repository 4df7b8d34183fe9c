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

package cli

import (
	"fmt"
	"net/http"

	"github.com/leafn/go-secure-enclave/internal/config"
	"github.com/leafn/go-secure-enclave/pkg/enclave"
	"github.com/leafn/go-secure-enclave/pkg/enclave/soft"
	"github.com/leafn/go-secure-enclave/pkg/keyring"
	"github.com/leafn/go-secure-enclave/pkg/logging"
	"github.com/leafn/go-secure-enclave/pkg/metrics"
	"github.com/leafn/go-secure-enclave/pkg/signing"
	"github.com/leafn/go-secure-enclave/pkg/storage"
	"github.com/leafn/go-secure-enclave/pkg/storage/file"
)

// session bundles everything a command needs to talk to the element.
type session struct {
	cfg     *config.Config
	logger  *logging.Logger
	client  *enclave.Client
	keyring *keyring.Keyring
	signer  *signing.Signer
}

func (s *session) Close() {
	if s.client != nil {
		s.logger.MaybeError(s.client.Close())
	}
}

// newSession loads the configuration and constructs the element, client,
// keyring and signer for one command invocation.
func newSession() (*session, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if storageDir != "" {
		cfg.Element.Storage.Type = config.StorageFile
		cfg.Element.Storage.Path = storageDir
	}

	logger := logging.NewLogger(cfg.Logging.Debug || verbose)

	store, err := buildStorage(cfg)
	if err != nil {
		return nil, err
	}

	element, err := buildElement(cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	client, err := enclave.NewClient(element, logger)
	if err != nil {
		element.Close()
		return nil, err
	}

	ring, err := keyring.New(client, logger)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	signer, err := signing.NewSigner(client)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	printVerbose("Using %s element with %s storage", element.Type(), cfg.Element.Storage.Type)

	if cfg.Metrics.Enabled {
		go func() {
			printVerbose("Serving metrics on %s", cfg.Metrics.Listen)
			if err := http.ListenAndServe(cfg.Metrics.Listen, metrics.Handler()); err != nil {
				logger.MaybeError(err)
			}
		}()
	}

	return &session{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		keyring: ring,
		signer:  signer,
	}, nil
}

// buildStorage constructs the persistence backend from the configuration.
func buildStorage(cfg *config.Config) (storage.Backend, error) {
	switch cfg.Element.Storage.Type {
	case config.StorageMemory:
		return storage.NewMemory(), nil
	case config.StorageFile:
		return file.New(cfg.Element.Storage.Path)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidStorageType, cfg.Element.Storage.Type)
	}
}

// buildElement constructs the configured secure element.
func buildElement(cfg *config.Config, store storage.Backend, logger *logging.Logger) (enclave.Element, error) {
	switch cfg.Element.Type {
	case config.ElementSoft:
		return soft.NewElement(&soft.Config{
			Storage:  store,
			Unlocked: cfg.Element.Unlocked,
		})
	case config.ElementPKCS11:
		return newHardwareElement(cfg, store, logger)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidElementType, cfg.Element.Type)
	}
}
