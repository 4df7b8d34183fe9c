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

// Package soft provides a software secure element: a faithful in-process
// implementation of the element protocol backed by real ECDSA and RSA
// keys. Key material stays inside this package's storage and is never
// returned across the element interface; callers receive opaque handles
// only, exactly as with a hardware element.
//
// Presence gating and device-state gating are simulated through the
// PresenceVerifier hook and the Unlocked state, which makes the element
// suitable both as the keystore tier and as a stand-in for hardware in
// tests.
package soft

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leafn/go-secure-enclave/pkg/enclave"
	"github.com/leafn/go-secure-enclave/pkg/metrics"
	"github.com/leafn/go-secure-enclave/pkg/storage"
	"github.com/leafn/go-secure-enclave/pkg/types"
)

// Storage is a convenience alias for the persistence interface the
// element writes its records through.
type Storage = storage.Backend

// storedRecord is the persisted form of a key record. Material holds
// PKCS#8 DER for private records and SubjectPublicKeyInfo DER for public
// records. It never leaves this package.
type storedRecord struct {
	ID          string             `json:"id"`
	Class       types.KeyClass     `json:"class"`
	Label       string             `json:"label"`
	Algorithm   types.KeyAlgorithm `json:"algorithm"`
	Bits        int                `json:"bits"`
	Tier        types.StoreTier    `json:"tier"`
	AccessGroup string             `json:"access_group,omitempty"`
	Permanent   bool               `json:"permanent"`
	Policy      *types.AccessPolicy `json:"policy,omitempty"`
	Material    []byte             `json:"material"`
	CreatedAt   time.Time          `json:"created_at"`
}

func (r *storedRecord) handle() *types.KeyHandle {
	return &types.KeyHandle{
		ID:        r.ID,
		Class:     r.Class,
		Label:     r.Label,
		Algorithm: r.Algorithm,
		Bits:      r.Bits,
		Tier:      r.Tier,
	}
}

// SoftElement is a software implementation of enclave.Element.
// Thread-safe using a read-write mutex; the storage backend provides its
// own synchronization underneath.
type SoftElement struct {
	mu       sync.RWMutex
	store    Storage
	presence PresenceVerifier
	unlocked bool
	// firstUnlock latches after the first unlock, gating
	// after-first-unlock accessibility classes.
	firstUnlock bool
	ephemeral   []string
	closed      bool
}

// NewElement creates a software secure element with the given
// configuration.
func NewElement(config *Config) (*SoftElement, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SoftElement{
		store:       config.Storage,
		presence:    config.Presence,
		unlocked:    config.Unlocked,
		firstUnlock: config.Unlocked,
	}, nil
}

// recordKey builds the storage key for a record identity.
func recordKey(class types.KeyClass, label string) string {
	return class.String() + "/" + label
}

// SetUnlocked changes the simulated device state. The first transition to
// unlocked also satisfies after-first-unlock accessibility classes for the
// remainder of the element's lifetime.
func (e *SoftElement) SetUnlocked(unlocked bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.unlocked = unlocked
	if unlocked {
		e.firstUnlock = true
	}
}

// Type implements enclave.Element.
func (e *SoftElement) Type() string {
	return "soft"
}

// Capabilities implements enclave.Element.
func (e *SoftElement) Capabilities() types.Capabilities {
	return types.Capabilities{
		HardwareBacked:    false,
		PresenceGating:    true,
		DeviceStateGating: true,
		Schemes:           types.AllSignatureSchemes,
	}
}

// CreateKeyPair implements enclave.Element.
func (e *SoftElement) CreateKeyPair(ctx context.Context, attrs *types.KeyAttributes) (*types.KeyPair, enclave.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, enclave.StatusNotAvailable
	}
	if ctx.Err() != nil {
		return nil, enclave.StatusUserCanceled
	}

	for _, k := range []string{
		recordKey(types.KeyClassPublic, attrs.PublicLabel),
		recordKey(types.KeyClassPrivate, attrs.PrivateLabel),
	} {
		if _, err := e.store.Get(k); err == nil {
			return nil, enclave.StatusDuplicateItem
		}
	}

	var (
		privDER, pubDER []byte
		err             error
	)
	switch attrs.Algorithm {
	case types.AlgorithmECDSA:
		key, genErr := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if genErr != nil {
			return nil, enclave.StatusNotAvailable
		}
		privDER, err = x509.MarshalPKCS8PrivateKey(key)
		if err == nil {
			pubDER, err = x509.MarshalPKIXPublicKey(&key.PublicKey)
		}
	case types.AlgorithmRSA:
		key, genErr := rsa.GenerateKey(rand.Reader, attrs.RSAKeySize)
		if genErr != nil {
			return nil, enclave.StatusNotAvailable
		}
		privDER, err = x509.MarshalPKCS8PrivateKey(key)
		if err == nil {
			pubDER, err = x509.MarshalPKIXPublicKey(&key.PublicKey)
		}
	default:
		return nil, enclave.StatusParam
	}
	if err != nil {
		return nil, enclave.StatusDecode
	}

	now := time.Now().UTC()
	// A zero-value policy means no access control was requested; the
	// private record then carries no policy at all rather than an empty
	// one that would gate every operation.
	var policy *types.AccessPolicy
	if attrs.Policy != (types.AccessPolicy{}) {
		p := attrs.Policy
		policy = &p
	}
	records := []*storedRecord{
		{
			ID:          uuid.NewString(),
			Class:       types.KeyClassPublic,
			Label:       attrs.PublicLabel,
			Algorithm:   attrs.Algorithm,
			Bits:        attrs.Bits(),
			Tier:        attrs.Tier,
			AccessGroup: attrs.AccessGroup,
			Permanent:   attrs.Permanent,
			Material:    pubDER,
			CreatedAt:   now,
		},
		{
			ID:          uuid.NewString(),
			Class:       types.KeyClassPrivate,
			Label:       attrs.PrivateLabel,
			Algorithm:   attrs.Algorithm,
			Bits:        attrs.Bits(),
			Tier:        attrs.Tier,
			AccessGroup: attrs.AccessGroup,
			Permanent:   attrs.Permanent,
			Policy:      policy,
			Material:    privDER,
			CreatedAt:   now,
		},
	}

	for _, rec := range records {
		blob, marshalErr := json.Marshal(rec)
		if marshalErr != nil {
			return nil, enclave.StatusDecode
		}
		key := recordKey(rec.Class, rec.Label)
		if putErr := e.store.Put(key, blob); putErr != nil {
			return nil, enclave.StatusNotAvailable
		}
		if !rec.Permanent {
			e.ephemeral = append(e.ephemeral, key)
		}
	}

	return &types.KeyPair{
		Public:  records[0].handle(),
		Private: records[1].handle(),
	}, enclave.StatusSuccess
}

// get loads and decodes a record. Callers hold at least a read lock.
func (e *SoftElement) get(class types.KeyClass, label string) (*storedRecord, enclave.Status) {
	blob, err := e.store.Get(recordKey(class, label))
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, enclave.StatusItemNotFound
		}
		return nil, enclave.StatusNotAvailable
	}
	var rec storedRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		return nil, enclave.StatusDecode
	}
	return &rec, enclave.StatusSuccess
}

// checkPolicy enforces a private record's access policy: device state
// first, then presence. Callers hold at least a read lock.
func (e *SoftElement) checkPolicy(ctx context.Context, rec *storedRecord) enclave.Status {
	if rec.Policy == nil {
		return enclave.StatusSuccess
	}
	if rec.Policy.Accessibility.RequiresUnlocked() && !e.unlocked {
		return enclave.StatusInteractionRequired
	}
	if !rec.Policy.Accessibility.RequiresUnlocked() && !e.firstUnlock {
		return enclave.StatusInteractionRequired
	}
	if rec.Policy.RequirePresence {
		if e.presence == nil {
			metrics.RecordPresencePrompt(metrics.PresenceApproved)
			return enclave.StatusSuccess
		}
		switch e.presence(ctx, rec.Label) {
		case PresenceApproved:
			metrics.RecordPresencePrompt(metrics.PresenceApproved)
		case PresenceCanceled:
			metrics.RecordPresencePrompt(metrics.PresenceCanceled)
			return enclave.StatusUserCanceled
		case PresenceFailed:
			metrics.RecordPresencePrompt(metrics.PresenceFailed)
			return enclave.StatusAuthFailed
		}
	}
	return enclave.StatusSuccess
}

// Find implements enclave.Element.
func (e *SoftElement) Find(ctx context.Context, query *types.KeyQuery) ([]*types.KeyRecord, enclave.Status) {
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

	if query.Class == types.KeyClassPrivate {
		if status := e.checkPolicy(ctx, rec); !status.Ok() {
			return nil, status
		}
	}

	result := &types.KeyRecord{Handle: rec.handle()}
	if query.Return == types.ReturnHandleAndPublicBytes {
		if query.Class != types.KeyClassPublic {
			return nil, enclave.StatusParam
		}
		material := make([]byte, len(rec.Material))
		copy(material, rec.Material)
		result.PublicBytes = material
	}
	return []*types.KeyRecord{result}, enclave.StatusSuccess
}

// Delete implements enclave.Element.
func (e *SoftElement) Delete(ctx context.Context, query *types.KeyQuery) enclave.Status {
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

	if err := e.store.Delete(recordKey(query.Class, query.Label)); err != nil {
		if err == storage.ErrNotFound {
			return enclave.StatusItemNotFound
		}
		return enclave.StatusNotAvailable
	}
	return enclave.StatusSuccess
}

// Sign implements enclave.Element. The handle must reference a live
// private record; a handle left over from a deleted or replaced record
// fails with StatusItemNotFound rather than silently signing with the
// successor key.
func (e *SoftElement) Sign(ctx context.Context, handle *types.KeyHandle, scheme types.SignatureScheme, digest []byte) ([]byte, enclave.Status) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, enclave.StatusNotAvailable
	}
	if ctx.Err() != nil {
		return nil, enclave.StatusUserCanceled
	}
	if handle == nil || handle.Class != types.KeyClassPrivate {
		return nil, enclave.StatusParam
	}

	rec, status := e.get(types.KeyClassPrivate, handle.Label)
	if !status.Ok() {
		return nil, status
	}
	if rec.ID != handle.ID {
		// Stale handle: the record was replaced since the handle was issued.
		return nil, enclave.StatusItemNotFound
	}
	if rec.Policy != nil && !rec.Policy.Usage.Can(types.UsageSign) {
		return nil, enclave.StatusParam
	}
	if status := e.checkPolicy(ctx, rec); !status.Ok() {
		return nil, status
	}

	key, err := x509.ParsePKCS8PrivateKey(rec.Material)
	if err != nil {
		return nil, enclave.StatusDecode
	}

	switch scheme {
	case types.SchemeECDSASHA256:
		ecKey, ok := key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, enclave.StatusParam
		}
		sig, err := ecdsa.SignASN1(rand.Reader, ecKey, digest)
		if err != nil {
			return nil, enclave.StatusDecode
		}
		return sig, enclave.StatusSuccess
	case types.SchemeRSAPKCS1v15SHA256:
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, enclave.StatusParam
		}
		sig, err := rsa.SignPKCS1v15(rand.Reader, rsaKey, crypto.SHA256, digest)
		if err != nil {
			return nil, enclave.StatusParam
		}
		return sig, enclave.StatusSuccess
	case types.SchemeRSAPKCS1v15Raw:
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, enclave.StatusParam
		}
		sig, err := rsa.SignPKCS1v15(rand.Reader, rsaKey, crypto.Hash(0), digest)
		if err != nil {
			return nil, enclave.StatusParam
		}
		return sig, enclave.StatusSuccess
	default:
		return nil, enclave.StatusUnimplemented
	}
}

// Verify implements enclave.Element. Public key operations are not gated
// by access policy.
func (e *SoftElement) Verify(ctx context.Context, handle *types.KeyHandle, scheme types.SignatureScheme, digest, signature []byte) enclave.Status {
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

	rec, status := e.get(types.KeyClassPublic, handle.Label)
	if !status.Ok() {
		return status
	}
	if rec.ID != handle.ID {
		return enclave.StatusItemNotFound
	}

	pub, err := x509.ParsePKIXPublicKey(rec.Material)
	if err != nil {
		return enclave.StatusDecode
	}

	switch scheme {
	case types.SchemeECDSASHA256:
		ecPub, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return enclave.StatusParam
		}
		if !ecdsa.VerifyASN1(ecPub, digest, signature) {
			return enclave.StatusVerifyFailed
		}
		return enclave.StatusSuccess
	case types.SchemeRSAPKCS1v15SHA256:
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return enclave.StatusParam
		}
		if err := rsa.VerifyPKCS1v15(rsaPub, crypto.SHA256, digest, signature); err != nil {
			return enclave.StatusVerifyFailed
		}
		return enclave.StatusSuccess
	case types.SchemeRSAPKCS1v15Raw:
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return enclave.StatusParam
		}
		if err := rsa.VerifyPKCS1v15(rsaPub, crypto.Hash(0), digest, signature); err != nil {
			return enclave.StatusVerifyFailed
		}
		return enclave.StatusSuccess
	default:
		return enclave.StatusUnimplemented
	}
}

// Close implements enclave.Element. Ephemeral records are removed; the
// storage backend itself is left open for the owner to close.
func (e *SoftElement) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	for _, key := range e.ephemeral {
		_ = e.store.Delete(key)
	}
	e.ephemeral = nil
	return nil
}

// Verify interface compliance at compile time
var _ enclave.Element = (*SoftElement)(nil)
