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

// Package keyring provides the caller-facing key lifecycle surface:
// labeled key pair generation, lookup, and removal. It holds no key
// material and no cache; every operation resolves through the enclave
// client.
package keyring

import (
	"context"
	"errors"

	"github.com/leafn/go-secure-enclave/pkg/enclave"
	"github.com/leafn/go-secure-enclave/pkg/logging"
	"github.com/leafn/go-secure-enclave/pkg/types"
)

// ErrClientRequired indicates a nil enclave client was provided.
var ErrClientRequired = errors.New("keyring: enclave client is required")

// Keyring manages labeled key pairs through the enclave client.
// Thread-safe as long as the client is; concurrent generate/delete against
// the same label is a race resolved by the element's atomicity, and
// callers needing single-writer semantics must serialize above this layer.
type Keyring struct {
	client *enclave.Client
	logger *logging.Logger
}

// New creates a Keyring over the given client.
func New(client *enclave.Client, logger *logging.Logger) (*Keyring, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Keyring{
		client: client,
		logger: logger.WithComponent("keyring"),
	}, nil
}

// generateOptions collects the optional parameters of Generate.
type generateOptions struct {
	tier        types.StoreTier
	algorithm   types.KeyAlgorithm
	rsaKeySize  int
	accessGroup string
	replace     bool
}

// Option configures a Generate call.
type Option func(*generateOptions)

// WithAccessGroup tags both records with a sharing domain so cooperating
// processes can address them. Without it, keys are scoped to the creating
// process.
func WithAccessGroup(group string) Option {
	return func(o *generateOptions) { o.accessGroup = group }
}

// WithTier overrides the default secure-element storage tier.
func WithTier(tier types.StoreTier) Option {
	return func(o *generateOptions) { o.tier = tier }
}

// WithRSA requests an RSA key of the given modulus size instead of the
// default EC P-256 key. RSA keys are keystore-tier only; combining WithRSA
// with the secure-element tier fails validation.
func WithRSA(bits int) Option {
	return func(o *generateOptions) {
		o.algorithm = types.AlgorithmRSA
		o.rsaKeySize = bits
		o.tier = types.TierKeystore
	}
}

// WithReplace enables force-save semantics: an existing pair under the
// same labels is deleted and regenerated instead of failing with
// ErrLabelInUse.
func WithReplace() Option {
	return func(o *generateOptions) { o.replace = true }
}

// Generate produces a labeled key pair bound to the given access policy
// and returns handles to both halves. The private record is permanent and
// its policy cannot be altered afterwards; changing policy means removing
// the pair and generating a new one.
//
// Defaults: EC P-256 in the secure element tier. A label already holding a
// permanent record fails with enclave.ErrLabelInUse unless WithReplace is
// given.
func (k *Keyring) Generate(ctx context.Context, publicLabel, privateLabel string, pol types.AccessPolicy, opts ...Option) (*types.KeyHandle, *types.KeyHandle, error) {
	o := &generateOptions{
		tier:      types.TierSecureElement,
		algorithm: types.AlgorithmECDSA,
	}
	for _, opt := range opts {
		opt(o)
	}

	attrs := &types.KeyAttributes{
		Algorithm:    o.algorithm,
		Curve:        types.CurveP256,
		RSAKeySize:   o.rsaKeySize,
		Tier:         o.tier,
		PublicLabel:  publicLabel,
		PrivateLabel: privateLabel,
		Policy:       pol,
		AccessGroup:  o.accessGroup,
		Permanent:    true,
	}
	if o.algorithm == types.AlgorithmRSA {
		attrs.Curve = ""
	}

	if o.replace {
		return k.client.Replace(ctx, attrs)
	}
	pub, priv, err := k.client.CreateKeyPair(ctx, attrs)
	if err != nil {
		return nil, nil, err
	}
	k.logger.Debug("generated key pair",
		"public_label", publicLabel,
		"private_label", privateLabel,
		"tier", o.tier.String())
	return pub, priv, nil
}

// FindPublicKey resolves a label to a public key handle and the exported
// SubjectPublicKeyInfo DER bytes.
func (k *Keyring) FindPublicKey(ctx context.Context, label string) (*types.KeyHandle, []byte, error) {
	record, err := k.client.Find(ctx, &types.KeyQuery{
		Class:  types.KeyClassPublic,
		Label:  label,
		Return: types.ReturnHandleAndPublicBytes,
	})
	if err != nil {
		return nil, nil, err
	}
	return record.Handle, record.PublicBytes, nil
}

// FindPrivateKey resolves a label to a private key handle. Key material is
// never exported; the handle is only usable for further store operations.
//
// If the key's access policy requires presence, resolution triggers
// verification and may block on human input. The resulting
// enclave.ErrUserCancelled and enclave.ErrAuthenticationFailed are
// distinct from enclave.ErrNotFound; callers deciding whether to
// re-prompt must not conflate them.
func (k *Keyring) FindPrivateKey(ctx context.Context, label string) (*types.KeyHandle, error) {
	record, err := k.client.Find(ctx, &types.KeyQuery{
		Class: types.KeyClassPrivate,
		Label: label,
	})
	if err != nil {
		return nil, err
	}
	return record.Handle, nil
}

// RemovePublicKey deletes the public record under the label.
func (k *Keyring) RemovePublicKey(ctx context.Context, label string) error {
	return k.client.Delete(ctx, &types.KeyQuery{
		Class: types.KeyClassPublic,
		Label: label,
	})
}

// RemovePrivateKey deletes the private record under the label. Handles
// obtained before removal become invalid; subsequent operations through
// them fail rather than silently succeeding.
func (k *Keyring) RemovePrivateKey(ctx context.Context, label string) error {
	return k.client.Delete(ctx, &types.KeyQuery{
		Class: types.KeyClassPrivate,
		Label: label,
	})
}

// RemoveKeyPair deletes both records of a pair, best-effort: the two
// deletes are separate trust-boundary calls with no transaction around
// them. Both are always attempted; the first failure is surfaced after
// the second delete completes. There is no compensating rollback; a
// half-removed pair is left for the caller to retry, which is safe
// because deletion is idempotent up to ErrNotFound.
func (k *Keyring) RemoveKeyPair(ctx context.Context, publicLabel, privateLabel string) error {
	pubErr := k.RemovePublicKey(ctx, publicLabel)
	privErr := k.RemovePrivateKey(ctx, privateLabel)
	if pubErr != nil {
		return pubErr
	}
	return privErr
}
