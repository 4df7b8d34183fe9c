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

// Package mocks provides a configurable mock secure element for testing
// the client's status mapping and retry behavior without real crypto.
package mocks

import (
	"context"
	"sync"

	"github.com/leafn/go-secure-enclave/pkg/enclave"
	"github.com/leafn/go-secure-enclave/pkg/types"
)

// MockElement is a mock implementation of enclave.Element.
//
// Behavior is configured through the *Func fields; unset functions return
// success with empty results. Every call is tracked so tests can assert
// how often the trust boundary was contacted.
type MockElement struct {
	mu sync.Mutex

	// Configurable behavior
	CreateKeyPairFunc func(*types.KeyAttributes) (*types.KeyPair, enclave.Status)
	FindFunc          func(*types.KeyQuery) ([]*types.KeyRecord, enclave.Status)
	DeleteFunc        func(*types.KeyQuery) enclave.Status
	SignFunc          func(*types.KeyHandle, types.SignatureScheme, []byte) ([]byte, enclave.Status)
	VerifyFunc        func(*types.KeyHandle, types.SignatureScheme, []byte, []byte) enclave.Status
	CapabilitiesFunc  func() types.Capabilities
	CloseFunc         func() error

	// Call tracking
	CreateKeyPairCalls []*types.KeyAttributes
	FindCalls          []*types.KeyQuery
	DeleteCalls        []*types.KeyQuery
	SignCalls          []*types.KeyHandle
	VerifyCalls        []*types.KeyHandle
	CloseCalls         int
}

// NewMockElement creates a MockElement with default (success) behavior.
func NewMockElement() *MockElement {
	return &MockElement{}
}

// CreateKeyPair implements enclave.Element.
func (m *MockElement) CreateKeyPair(_ context.Context, attrs *types.KeyAttributes) (*types.KeyPair, enclave.Status) {
	m.mu.Lock()
	m.CreateKeyPairCalls = append(m.CreateKeyPairCalls, attrs)
	m.mu.Unlock()

	if m.CreateKeyPairFunc != nil {
		return m.CreateKeyPairFunc(attrs)
	}
	return &types.KeyPair{
		Public: &types.KeyHandle{
			ID:        "mock-public",
			Class:     types.KeyClassPublic,
			Label:     attrs.PublicLabel,
			Algorithm: attrs.Algorithm,
			Bits:      attrs.Bits(),
			Tier:      attrs.Tier,
		},
		Private: &types.KeyHandle{
			ID:        "mock-private",
			Class:     types.KeyClassPrivate,
			Label:     attrs.PrivateLabel,
			Algorithm: attrs.Algorithm,
			Bits:      attrs.Bits(),
			Tier:      attrs.Tier,
		},
	}, enclave.StatusSuccess
}

// Find implements enclave.Element.
func (m *MockElement) Find(_ context.Context, query *types.KeyQuery) ([]*types.KeyRecord, enclave.Status) {
	m.mu.Lock()
	m.FindCalls = append(m.FindCalls, query)
	m.mu.Unlock()

	if m.FindFunc != nil {
		return m.FindFunc(query)
	}
	return nil, enclave.StatusItemNotFound
}

// Delete implements enclave.Element.
func (m *MockElement) Delete(_ context.Context, query *types.KeyQuery) enclave.Status {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, query)
	m.mu.Unlock()

	if m.DeleteFunc != nil {
		return m.DeleteFunc(query)
	}
	return enclave.StatusSuccess
}

// Sign implements enclave.Element.
func (m *MockElement) Sign(_ context.Context, handle *types.KeyHandle, scheme types.SignatureScheme, digest []byte) ([]byte, enclave.Status) {
	m.mu.Lock()
	m.SignCalls = append(m.SignCalls, handle)
	m.mu.Unlock()

	if m.SignFunc != nil {
		return m.SignFunc(handle, scheme, digest)
	}
	return []byte("mock-signature"), enclave.StatusSuccess
}

// Verify implements enclave.Element.
func (m *MockElement) Verify(_ context.Context, handle *types.KeyHandle, scheme types.SignatureScheme, digest, signature []byte) enclave.Status {
	m.mu.Lock()
	m.VerifyCalls = append(m.VerifyCalls, handle)
	m.mu.Unlock()

	if m.VerifyFunc != nil {
		return m.VerifyFunc(handle, scheme, digest, signature)
	}
	return enclave.StatusSuccess
}

// Capabilities implements enclave.Element.
func (m *MockElement) Capabilities() types.Capabilities {
	if m.CapabilitiesFunc != nil {
		return m.CapabilitiesFunc()
	}
	return types.Capabilities{
		HardwareBacked:    true,
		PresenceGating:    true,
		DeviceStateGating: true,
		Schemes:           types.AllSignatureSchemes,
	}
}

// Type implements enclave.Element.
func (m *MockElement) Type() string {
	return "mock"
}

// Close implements enclave.Element.
func (m *MockElement) Close() error {
	m.mu.Lock()
	m.CloseCalls++
	m.mu.Unlock()

	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Verify interface compliance at compile time
var _ enclave.Element = (*MockElement)(nil)
