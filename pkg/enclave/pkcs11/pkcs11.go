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

// Package pkcs11 provides a hardware secure element backed by a PKCS#11
// token. Key pairs are generated on the token and never leave it; record
// metadata (labels, policies, access groups) lives in a separate storage
// backend because PKCS#11 objects cannot carry this module's policy
// attributes.
//
// The element supports the secure-element tier only: 256-bit prime curve
// EC keys. Presence gating is not expressible through the PKCS#11
// interface and is reported as unsupported; device-state gating maps onto
// the authenticated token session.
package pkcs11

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThalesGroup/crypto11"
	"github.com/google/uuid"
	p11 "github.com/miekg/pkcs11"

	"github.com/leafn/go-secure-enclave/pkg/enclave"
	"github.com/leafn/go-secure-enclave/pkg/logging"
	"github.com/leafn/go-secure-enclave/pkg/storage"
	"github.com/leafn/go-secure-enclave/pkg/types"
)

// metaRecord is the persisted metadata for a token-resident key record.
// KeyID is the CKA_ID shared by both halves of the pair on the token.
type metaRecord struct {
	ID          string              `json:"id"`
	Class       types.KeyClass      `json:"class"`
	Label       string              `json:"label"`
	Algorithm   types.KeyAlgorithm  `json:"algorithm"`
	Bits        int                 `json:"bits"`
	AccessGroup string              `json:"access_group,omitempty"`
	Policy      *types.AccessPolicy `json:"policy,omitempty"`
	KeyID       []byte              `json:"key_id"`
	CreatedAt   time.Time           `json:"created_at"`
}

func (r *metaRecord) handle() *types.KeyHandle {
	return &types.KeyHandle{
		ID:        r.ID,
		Class:     r.Class,
		Label:     r.Label,
		Algorithm: r.Algorithm,
		Bits:      r.Bits,
		Tier:      types.TierSecureElement,
	}
}

// HardwareElement is a PKCS#11 token implementation of enclave.Element.
// Thread-safe; crypto11 serializes token sessions internally.
type HardwareElement struct {
	mu     sync.RWMutex
	ctx    *crypto11.Context
	meta   storage.Backend
	logger *logging.Logger
	closed bool
}

// NewElement opens a session against the configured token.
func NewElement(config *Config, logger *logging.Logger) (*HardwareElement, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	ctx, err := crypto11.Configure(&crypto11.Config{
		Path:       config.Library,
		TokenLabel: config.TokenLabel,
		Pin:        config.PIN,
		SlotNumber: config.Slot,
	})
	if err != nil {
		return nil, fmt.Errorf("pkcs11: failed to configure context: %w", err)
	}

	return &HardwareElement{
		ctx:    ctx,
		meta:   config.Metadata,
		logger: logger.WithComponent("pkcs11-element"),
	}, nil
}

// Type implements enclave.Element.
func (e *HardwareElement) Type() string {
	return "pkcs11"
}

// Capabilities implements enclave.Element.
func (e *HardwareElement) Capabilities() types.Capabilities {
	return types.Capabilities{
		HardwareBacked: true,
		PresenceGating: false,
		// The authenticated token session is the unlocked state: private
		// keys are reachable only while a PIN-verified session exists.
		DeviceStateGating: true,
		Schemes:           []types.SignatureScheme{types.SchemeECDSASHA256},
	}
}

func metaKey(class types.KeyClass, label string) string {
	return class.String() + "/" + label
}

// ckrStatus maps a PKCS#11 return value onto the element status codes.
// Codes without a dedicated mapping are logged with their raw value and
// reported as unavailable.
func (e *HardwareElement) ckrStatus(err error) enclave.Status {
	var ckr p11.Error
	if !errors.As(err, &ckr) {
		e.logger.Error("token operation failed", "error", err.Error())
		return enclave.StatusNotAvailable
	}
	switch uint(ckr) {
	case p11.CKR_PIN_INCORRECT, p11.CKR_PIN_LOCKED, p11.CKR_USER_NOT_LOGGED_IN:
		return enclave.StatusAuthFailed
	case p11.CKR_FUNCTION_CANCELED:
		return enclave.StatusUserCanceled
	case p11.CKR_TOKEN_NOT_PRESENT, p11.CKR_DEVICE_REMOVED, p11.CKR_DEVICE_ERROR:
		return enclave.StatusNotAvailable
	case p11.CKR_ARGUMENTS_BAD, p11.CKR_ATTRIBUTE_VALUE_INVALID, p11.CKR_MECHANISM_INVALID:
		return enclave.StatusParam
	case p11.CKR_SIGNATURE_INVALID:
		return enclave.StatusVerifyFailed
	default:
		e.logger.Error("unmapped token return code", "ckr", fmt.Sprintf("0x%08x", uint(ckr)))
		return enclave.StatusNotAvailable
	}
}

// CreateKeyPair implements enclave.Element. Only EC P-256 pairs can be
// generated on the token; presence-gated policies are rejected because the
// PKCS#11 interface cannot enforce them.
func (e *HardwareElement) CreateKeyPair(ctx context.Context, attrs *types.KeyAttributes) (*types.KeyPair, enclave.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, enclave.StatusNotAvailable
	}
	if ctx.Err() != nil {
		return nil, enclave.StatusUserCanceled
	}
	if attrs.Algorithm != types.AlgorithmECDSA {
		return nil, enclave.StatusParam
	}
	if attrs.Policy.RequirePresence {
		return nil, enclave.StatusUnimplemented
	}

	for _, k := range []string{
		metaKey(types.KeyClassPublic, attrs.PublicLabel),
		metaKey(types.KeyClassPrivate, attrs.PrivateLabel),
	} {
		if _, err := e.meta.Get(k); err == nil {
			return nil, enclave.StatusDuplicateItem
		}
	}

	keyID := []byte(uuid.NewString())
	_, err := e.ctx.GenerateECDSAKeyPairWithLabel(keyID, []byte(attrs.PrivateLabel), elliptic.P256())
	if err != nil {
		return nil, e.ckrStatus(err)
	}

	now := time.Now().UTC()
	// Zero-value policy means no access control was requested.
	var policy *types.AccessPolicy
	if attrs.Policy != (types.AccessPolicy{}) {
		p := attrs.Policy
		policy = &p
	}
	records := []*metaRecord{
		{
			ID:          uuid.NewString(),
			Class:       types.KeyClassPublic,
			Label:       attrs.PublicLabel,
			Algorithm:   attrs.Algorithm,
			Bits:        attrs.Bits(),
			AccessGroup: attrs.AccessGroup,
			KeyID:       keyID,
			CreatedAt:   now,
		},
		{
			ID:          uuid.NewString(),
			Class:       types.KeyClassPrivate,
			Label:       attrs.PrivateLabel,
			Algorithm:   attrs.Algorithm,
			Bits:        attrs.Bits(),
			AccessGroup: attrs.AccessGroup,
			Policy:      policy,
			KeyID:       keyID,
			CreatedAt:   now,
		},
	}
	for _, rec := range records {
		blob, marshalErr := json.Marshal(rec)
		if marshalErr != nil {
			return nil, enclave.StatusDecode
		}
		if putErr := e.meta.Put(metaKey(rec.Class, rec.Label), blob); putErr != nil {
			return nil, enclave.StatusNotAvailable
		}
	}

	return &types.KeyPair{
		Public:  records[0].handle(),
		Private: records[1].handle(),
	}, enclave.StatusSuccess
}

// get loads and decodes a metadata record.
func (e *HardwareElement) get(class types.KeyClass, label string) (*metaRecord, enclave.Status) {
	blob, err := e.meta.Get(metaKey(class, label))
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, enclave.StatusItemNotFound
		}
		return nil, enclave.StatusNotAvailable
	}
	var rec metaRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		return nil, enclave.StatusDecode
	}
	return &rec, enclave.StatusSuccess
}

// Find implements enclave.Element.
func (e *HardwareElement) Find(ctx context.Context, query *types.KeyQuery) ([]*types.KeyRecord, enclave.Status) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, enclave.StatusNotAvailable
	}
	if ctx.Err() != nil {
		return nil, enclave.StatusUserCanceled
	}

	rec, status := e.get(query.Class, query.Label)
	if !status.Ok() {
		return nil, status
	}
	if query.AccessGroup != "" && rec.AccessGroup != query.AccessGroup {
		return nil, enclave.StatusItemNotFound
	}

	result := &types.KeyRecord{Handle: rec.handle()}
	if query.Return == types.ReturnHandleAndPublicBytes {
		if query.Class != types.KeyClassPublic {
			return nil, enclave.StatusParam
		}
		signer, err := e.ctx.FindKeyPair(rec.KeyID, nil)
		if err != nil {
			return nil, e.ckrStatus(err)
		}
		if signer == nil {
			return nil, enclave.StatusItemNotFound
		}
		der, err := x509.MarshalPKIXPublicKey(signer.Public())
		if err != nil {
			return nil, enclave.StatusDecode
		}
		result.PublicBytes = der
	}
	return []*types.KeyRecord{result}, enclave.StatusSuccess
}

// Delete implements enclave.Element. Deleting the private record destroys
// the token key pair; deleting the public record removes metadata only,
// since the pair is a single object set on the token.
func (e *HardwareElement) Delete(ctx context.Context, query *types.KeyQuery) enclave.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return enclave.StatusNotAvailable
	}
	if ctx.Err() != nil {
		return enclave.StatusUserCanceled
	}

	rec, status := e.get(query.Class, query.Label)
	if !status.Ok() {
		return status
	}
	if query.AccessGroup != "" && rec.AccessGroup != query.AccessGroup {
		return enclave.StatusItemNotFound
	}

	if query.Class == types.KeyClassPrivate {
		signer, err := e.ctx.FindKeyPair(rec.KeyID, nil)
		if err != nil {
			return e.ckrStatus(err)
		}
		if signer != nil {
			if err := signer.Delete(); err != nil {
				return e.ckrStatus(err)
			}
		}
	}

	if err := e.meta.Delete(metaKey(query.Class, query.Label)); err != nil {
		if err == storage.ErrNotFound {
			return enclave.StatusItemNotFound
		}
		return enclave.StatusNotAvailable
	}
	return enclave.StatusSuccess
}

// Sign implements enclave.Element.
func (e *HardwareElement) Sign(ctx context.Context, handle *types.KeyHandle, scheme types.SignatureScheme, digest []byte) ([]byte, enclave.Status) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, enclave.StatusNotAvailable
	}
	if handle == nil || handle.Class != types.KeyClassPrivate {
		return nil, enclave.StatusParam
	}
	if ctx.Err() != nil {
		return nil, enclave.StatusUserCanceled
	}
	if scheme != types.SchemeECDSASHA256 {
		return nil, enclave.StatusUnimplemented
	}

	rec, status := e.get(types.KeyClassPrivate, handle.Label)
	if !status.Ok() {
		return nil, status
	}
	if rec.ID != handle.ID {
		return nil, enclave.StatusItemNotFound
	}
	if rec.Policy != nil && !rec.Policy.Usage.Can(types.UsageSign) {
		return nil, enclave.StatusParam
	}

	signer, err := e.ctx.FindKeyPair(rec.KeyID, nil)
	if err != nil {
		return nil, e.ckrStatus(err)
	}
	if signer == nil {
		return nil, enclave.StatusItemNotFound
	}

	sig, err := signer.Sign(rand.Reader, digest, scheme.Hash())
	if err != nil {
		return nil, e.ckrStatus(err)
	}
	return sig, enclave.StatusSuccess
}

// Verify implements enclave.Element. Verification uses the exported
// public key; only signing requires the token.
func (e *HardwareElement) Verify(ctx context.Context, handle *types.KeyHandle, scheme types.SignatureScheme, digest, signature []byte) enclave.Status {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return enclave.StatusNotAvailable
	}
	if handle == nil || handle.Class != types.KeyClassPublic {
		return enclave.StatusParam
	}
	if ctx.Err() != nil {
		return enclave.StatusUserCanceled
	}
	if scheme != types.SchemeECDSASHA256 {
		return enclave.StatusUnimplemented
	}

	rec, status := e.get(types.KeyClassPublic, handle.Label)
	if !status.Ok() {
		return status
	}
	if rec.ID != handle.ID {
		return enclave.StatusItemNotFound
	}

	signer, err := e.ctx.FindKeyPair(rec.KeyID, nil)
	if err != nil {
		return e.ckrStatus(err)
	}
	if signer == nil {
		return enclave.StatusItemNotFound
	}
	pub, ok := signer.Public().(*ecdsa.PublicKey)
	if !ok {
		return enclave.StatusParam
	}
	if !ecdsa.VerifyASN1(pub, digest, signature) {
		return enclave.StatusVerifyFailed
	}
	return enclave.StatusSuccess
}

// Close implements enclave.Element.
func (e *HardwareElement) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	return e.ctx.Close()
}

// Verify interface compliance at compile time
var _ enclave.Element = (*HardwareElement)(nil)
