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

package enclave

import (
	"context"
	"errors"

	"github.com/leafn/go-secure-enclave/pkg/logging"
	"github.com/leafn/go-secure-enclave/pkg/metrics"
	"github.com/leafn/go-secure-enclave/pkg/types"
)

// Client is the sole path to the trust boundary. It wraps an Element with
// request validation, status-to-error translation, logging, and metrics.
// No key material is cached; every operation round-trips to the element.
//
// Thread-safe as long as the underlying element is.
type Client struct {
	element Element
	logger  *logging.Logger
}

// NewClient creates a Client over the given element.
func NewClient(element Element, logger *logging.Logger) (*Client, error) {
	if element == nil {
		return nil, ErrElementRequired
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Client{
		element: element,
		logger:  logger.WithComponent("enclave-client"),
	}, nil
}

// CreateKeyPair generates a key pair from the given attributes and returns
// handles to both records. A label collision surfaces as ErrLabelInUse;
// every other non-success status becomes a GenerationError carrying the
// raw code.
func (c *Client) CreateKeyPair(ctx context.Context, attrs *types.KeyAttributes) (*types.KeyHandle, *types.KeyHandle, error) {
	defer metrics.Timer(metrics.OpCreateKeyPair, c.element.Type())()

	if err := attrs.Validate(); err != nil {
		metrics.RecordError(metrics.OpCreateKeyPair, errorType(err))
		return nil, nil, err
	}

	pair, status := c.element.CreateKeyPair(ctx, attrs)
	if !status.Ok() {
		err := c.createError(attrs, status)
		c.logger.Debug("create key pair failed",
			"public_label", attrs.PublicLabel,
			"private_label", attrs.PrivateLabel,
			"status", status.String())
		metrics.RecordOperation(metrics.OpCreateKeyPair, c.element.Type(), false)
		metrics.RecordError(metrics.OpCreateKeyPair, errorType(err))
		return nil, nil, err
	}

	c.logger.Debug("created key pair",
		"public_label", attrs.PublicLabel,
		"private_label", attrs.PrivateLabel,
		"tier", attrs.Tier.String())
	metrics.RecordOperation(metrics.OpCreateKeyPair, c.element.Type(), true)
	return pair.Public, pair.Private, nil
}

// createError maps a non-success generation status. Duplicate labels get a
// dedicated error so callers can choose Replace; everything else carries
// the raw code.
func (c *Client) createError(attrs *types.KeyAttributes, status Status) error {
	if status == StatusDuplicateItem {
		return ErrLabelInUse
	}
	return &GenerationError{Code: status}
}

// Find resolves a query to exactly one record. Zero matches is
// ErrNotFound. More than one match means the query underspecifies the
// record; since the protocol defines no selection order, the Client
// surfaces ErrAmbiguousMatch instead of returning an arbitrary record.
func (c *Client) Find(ctx context.Context, query *types.KeyQuery) (*types.KeyRecord, error) {
	defer metrics.Timer(metrics.OpFind, c.element.Type())()

	if err := query.Validate(); err != nil {
		metrics.RecordError(metrics.OpFind, errorType(err))
		return nil, err
	}

	records, status := c.element.Find(ctx, query)
	if !status.Ok() {
		err := statusError("find", query.Label, status)
		metrics.RecordOperation(metrics.OpFind, c.element.Type(), false)
		metrics.RecordError(metrics.OpFind, errorType(err))
		return nil, err
	}
	if len(records) == 0 {
		metrics.RecordOperation(metrics.OpFind, c.element.Type(), false)
		metrics.RecordError(metrics.OpFind, errorType(ErrNotFound))
		return nil, ErrNotFound
	}
	if len(records) > 1 {
		c.logger.Warn("query matched multiple records",
			"class", query.Class.String(),
			"label", query.Label,
			"matches", len(records))
		metrics.RecordOperation(metrics.OpFind, c.element.Type(), false)
		metrics.RecordError(metrics.OpFind, errorType(ErrAmbiguousMatch))
		return nil, ErrAmbiguousMatch
	}

	metrics.RecordOperation(metrics.OpFind, c.element.Type(), true)
	return records[0], nil
}

// Delete removes the records matching the query. Absence of a matching
// record is ErrNotFound, never a silent no-op.
func (c *Client) Delete(ctx context.Context, query *types.KeyQuery) error {
	defer metrics.Timer(metrics.OpDelete, c.element.Type())()

	if err := query.Validate(); err != nil {
		metrics.RecordError(metrics.OpDelete, errorType(err))
		return err
	}

	status := c.element.Delete(ctx, query)
	if !status.Ok() {
		err := statusError("delete", query.Label, status)
		metrics.RecordOperation(metrics.OpDelete, c.element.Type(), false)
		metrics.RecordError(metrics.OpDelete, errorType(err))
		return err
	}

	c.logger.Debug("deleted record", "class", query.Class.String(), "label", query.Label)
	metrics.RecordOperation(metrics.OpDelete, c.element.Type(), true)
	return nil
}

// Replace creates a key pair with force-save semantics: on a duplicate
// label it deletes the existing records and retries the create exactly
// once. A second failure is surfaced, not retried; an unbounded retry on a
// persistent conflict would mask a logic error.
func (c *Client) Replace(ctx context.Context, attrs *types.KeyAttributes) (*types.KeyHandle, *types.KeyHandle, error) {
	defer metrics.Timer(metrics.OpReplace, c.element.Type())()

	if err := attrs.Validate(); err != nil {
		metrics.RecordError(metrics.OpReplace, errorType(err))
		return nil, nil, err
	}

	pair, status := c.element.CreateKeyPair(ctx, attrs)
	if status.Ok() {
		metrics.RecordOperation(metrics.OpReplace, c.element.Type(), true)
		return pair.Public, pair.Private, nil
	}
	if status != StatusDuplicateItem {
		err := &GenerationError{Code: status}
		metrics.RecordOperation(metrics.OpReplace, c.element.Type(), false)
		metrics.RecordError(metrics.OpReplace, errorType(err))
		return nil, nil, err
	}

	c.logger.Debug("replace: deleting existing records",
		"public_label", attrs.PublicLabel,
		"private_label", attrs.PrivateLabel)

	// Either half may be the survivor; absence of one is not an error here.
	for _, q := range []*types.KeyQuery{
		{Class: types.KeyClassPublic, Label: attrs.PublicLabel, AccessGroup: attrs.AccessGroup},
		{Class: types.KeyClassPrivate, Label: attrs.PrivateLabel, AccessGroup: attrs.AccessGroup},
	} {
		if err := c.Delete(ctx, q); err != nil && !errors.Is(err, ErrNotFound) {
			metrics.RecordOperation(metrics.OpReplace, c.element.Type(), false)
			metrics.RecordError(metrics.OpReplace, errorType(err))
			return nil, nil, err
		}
	}

	pair, status = c.element.CreateKeyPair(ctx, attrs)
	if !status.Ok() {
		err := c.createError(attrs, status)
		c.logger.Error("replace: retry create failed",
			"public_label", attrs.PublicLabel,
			"private_label", attrs.PrivateLabel,
			"status", status.String())
		metrics.RecordOperation(metrics.OpReplace, c.element.Type(), false)
		metrics.RecordError(metrics.OpReplace, errorType(err))
		return nil, nil, err
	}

	metrics.RecordOperation(metrics.OpReplace, c.element.Type(), true)
	return pair.Public, pair.Private, nil
}

// Sign produces a signature over the digest with the referenced private
// key. Presence and device-state failures surface as ErrUserCancelled,
// ErrAuthenticationFailed, and ErrInteractionRequired; these are distinct
// from ErrNotFound and callers must not conflate them when deciding
// whether to retry.
func (c *Client) Sign(ctx context.Context, handle *types.KeyHandle, scheme types.SignatureScheme, digest []byte) ([]byte, error) {
	defer metrics.Timer(metrics.OpSign, c.element.Type())()

	if handle == nil {
		metrics.RecordError(metrics.OpSign, errorType(ErrBadSignatureParameters))
		return nil, ErrBadSignatureParameters
	}

	signature, status := c.element.Sign(ctx, handle, scheme, digest)
	if !status.Ok() {
		err := statusError("sign", handle.Label, status)
		metrics.RecordOperation(metrics.OpSign, c.element.Type(), false)
		metrics.RecordError(metrics.OpSign, errorType(err))
		return nil, err
	}

	metrics.RecordOperation(metrics.OpSign, c.element.Type(), true)
	return signature, nil
}

// Verify checks a signature over the digest with the referenced public
// key. A well-formed but mismatched signature returns (false, nil);
// structural and parameter failures return an error, preserving the
// distinction between "bad signature" and "bad request".
func (c *Client) Verify(ctx context.Context, handle *types.KeyHandle, scheme types.SignatureScheme, digest, signature []byte) (bool, error) {
	defer metrics.Timer(metrics.OpVerify, c.element.Type())()

	if handle == nil {
		metrics.RecordError(metrics.OpVerify, errorType(ErrBadSignatureParameters))
		return false, ErrBadSignatureParameters
	}

	status := c.element.Verify(ctx, handle, scheme, digest, signature)
	switch status {
	case StatusSuccess:
		metrics.RecordOperation(metrics.OpVerify, c.element.Type(), true)
		return true, nil
	case StatusVerifyFailed:
		metrics.RecordOperation(metrics.OpVerify, c.element.Type(), true)
		return false, nil
	default:
		err := statusError("verify", handle.Label, status)
		metrics.RecordOperation(metrics.OpVerify, c.element.Type(), false)
		metrics.RecordError(metrics.OpVerify, errorType(err))
		return false, err
	}
}

// Capabilities reports the element's capabilities.
func (c *Client) Capabilities() types.Capabilities {
	return c.element.Capabilities()
}

// ElementType returns the underlying element's identifier.
func (c *Client) ElementType() string {
	return c.element.Type()
}

// Close releases the underlying element.
func (c *Client) Close() error {
	return c.element.Close()
}
