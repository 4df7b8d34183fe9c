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

package enclave_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafn/go-secure-enclave/pkg/enclave"
	"github.com/leafn/go-secure-enclave/pkg/enclave/mocks"
	"github.com/leafn/go-secure-enclave/pkg/types"
)

func testAttrs() *types.KeyAttributes {
	return &types.KeyAttributes{
		Algorithm:    types.AlgorithmECDSA,
		Curve:        types.CurveP256,
		Tier:         types.TierSecureElement,
		PublicLabel:  "app.public",
		PrivateLabel: "app.private",
		Permanent:    true,
	}
}

func newClient(t *testing.T, element *mocks.MockElement) *enclave.Client {
	t.Helper()
	client, err := enclave.NewClient(element, nil)
	require.NoError(t, err)
	return client
}

// =============================================================================
// Construction
// =============================================================================

func TestNewClient_NilElement(t *testing.T) {
	_, err := enclave.NewClient(nil, nil)
	assert.ErrorIs(t, err, enclave.ErrElementRequired)
}

// =============================================================================
// CreateKeyPair
// =============================================================================

func TestClient_CreateKeyPair(t *testing.T) {
	element := mocks.NewMockElement()
	client := newClient(t, element)

	pub, priv, err := client.CreateKeyPair(context.Background(), testAttrs())
	require.NoError(t, err)
	assert.Equal(t, types.KeyClassPublic, pub.Class)
	assert.Equal(t, types.KeyClassPrivate, priv.Class)
	assert.Equal(t, "app.public", pub.Label)
	assert.Equal(t, "app.private", priv.Label)
	assert.Len(t, element.CreateKeyPairCalls, 1)
}

func TestClient_CreateKeyPair_InvalidAttrs(t *testing.T) {
	element := mocks.NewMockElement()
	client := newClient(t, element)

	attrs := testAttrs()
	attrs.PrivateLabel = attrs.PublicLabel

	_, _, err := client.CreateKeyPair(context.Background(), attrs)
	assert.ErrorIs(t, err, types.ErrLabelsNotDistinct)
	// Validation failures must never reach the element
	assert.Empty(t, element.CreateKeyPairCalls)
}

func TestClient_CreateKeyPair_Duplicate(t *testing.T) {
	element := mocks.NewMockElement()
	element.CreateKeyPairFunc = func(*types.KeyAttributes) (*types.KeyPair, enclave.Status) {
		return nil, enclave.StatusDuplicateItem
	}
	client := newClient(t, element)

	_, _, err := client.CreateKeyPair(context.Background(), testAttrs())
	assert.ErrorIs(t, err, enclave.ErrLabelInUse)
}

func TestClient_CreateKeyPair_GenerationError(t *testing.T) {
	element := mocks.NewMockElement()
	element.CreateKeyPairFunc = func(*types.KeyAttributes) (*types.KeyPair, enclave.Status) {
		return nil, enclave.StatusNotAvailable
	}
	client := newClient(t, element)

	_, _, err := client.CreateKeyPair(context.Background(), testAttrs())

	var genErr *enclave.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, enclave.StatusNotAvailable, genErr.Code)
}

// =============================================================================
// Find
// =============================================================================

func TestClient_Find_NotFound(t *testing.T) {
	element := mocks.NewMockElement()
	client := newClient(t, element)

	_, err := client.Find(context.Background(), &types.KeyQuery{
		Class: types.KeyClassPublic,
		Label: "missing",
	})
	assert.ErrorIs(t, err, enclave.ErrNotFound)
}

func TestClient_Find_EmptyResult(t *testing.T) {
	element := mocks.NewMockElement()
	element.FindFunc = func(*types.KeyQuery) ([]*types.KeyRecord, enclave.Status) {
		return nil, enclave.StatusSuccess
	}
	client := newClient(t, element)

	_, err := client.Find(context.Background(), &types.KeyQuery{
		Class: types.KeyClassPublic,
		Label: "app.public",
	})
	assert.ErrorIs(t, err, enclave.ErrNotFound)
}

func TestClient_Find_AmbiguousMatch(t *testing.T) {
	element := mocks.NewMockElement()
	element.FindFunc = func(query *types.KeyQuery) ([]*types.KeyRecord, enclave.Status) {
		return []*types.KeyRecord{
			{Handle: &types.KeyHandle{ID: "a", Class: query.Class, Label: query.Label}},
			{Handle: &types.KeyHandle{ID: "b", Class: query.Class, Label: query.Label}},
		}, enclave.StatusSuccess
	}
	client := newClient(t, element)

	_, err := client.Find(context.Background(), &types.KeyQuery{
		Class: types.KeyClassPublic,
		Label: "app.public",
	})
	// No defined selection order; an arbitrary pick would be nondeterministic
	assert.ErrorIs(t, err, enclave.ErrAmbiguousMatch)
}

func TestClient_Find_SingleMatch(t *testing.T) {
	element := mocks.NewMockElement()
	element.FindFunc = func(query *types.KeyQuery) ([]*types.KeyRecord, enclave.Status) {
		return []*types.KeyRecord{
			{Handle: &types.KeyHandle{ID: "a", Class: query.Class, Label: query.Label}},
		}, enclave.StatusSuccess
	}
	client := newClient(t, element)

	record, err := client.Find(context.Background(), &types.KeyQuery{
		Class: types.KeyClassPrivate,
		Label: "app.private",
	})
	require.NoError(t, err)
	assert.Equal(t, "a", record.Handle.ID)
}

func TestClient_Find_PrivateExportRejected(t *testing.T) {
	element := mocks.NewMockElement()
	client := newClient(t, element)

	_, err := client.Find(context.Background(), &types.KeyQuery{
		Class:  types.KeyClassPrivate,
		Label:  "app.private",
		Return: types.ReturnHandleAndPublicBytes,
	})
	assert.ErrorIs(t, err, types.ErrPrivateExportForbidden)
	assert.Empty(t, element.FindCalls)
}

// =============================================================================
// Delete
// =============================================================================

func TestClient_Delete_NotFound(t *testing.T) {
	element := mocks.NewMockElement()
	element.DeleteFunc = func(*types.KeyQuery) enclave.Status {
		return enclave.StatusItemNotFound
	}
	client := newClient(t, element)

	err := client.Delete(context.Background(), &types.KeyQuery{
		Class: types.KeyClassPublic,
		Label: "missing",
	})
	// Strict: absence is an error, not a silent no-op
	assert.ErrorIs(t, err, enclave.ErrNotFound)
}

// =============================================================================
// Replace
// =============================================================================

func TestClient_Replace_NoConflict(t *testing.T) {
	element := mocks.NewMockElement()
	client := newClient(t, element)

	pub, priv, err := client.Replace(context.Background(), testAttrs())
	require.NoError(t, err)
	assert.NotNil(t, pub)
	assert.NotNil(t, priv)
	assert.Len(t, element.CreateKeyPairCalls, 1)
	assert.Empty(t, element.DeleteCalls)
}

func TestClient_Replace_DuplicateThenRetry(t *testing.T) {
	element := mocks.NewMockElement()
	creates := 0
	element.CreateKeyPairFunc = func(attrs *types.KeyAttributes) (*types.KeyPair, enclave.Status) {
		creates++
		if creates == 1 {
			return nil, enclave.StatusDuplicateItem
		}
		return &types.KeyPair{
			Public:  &types.KeyHandle{ID: "new-pub", Class: types.KeyClassPublic, Label: attrs.PublicLabel},
			Private: &types.KeyHandle{ID: "new-priv", Class: types.KeyClassPrivate, Label: attrs.PrivateLabel},
		}, enclave.StatusSuccess
	}
	client := newClient(t, element)

	pub, priv, err := client.Replace(context.Background(), testAttrs())
	require.NoError(t, err)
	assert.Equal(t, "new-pub", pub.ID)
	assert.Equal(t, "new-priv", priv.ID)
	assert.Equal(t, 2, creates)
	// Both halves of the old pair are deleted before the retry
	require.Len(t, element.DeleteCalls, 2)
	assert.Equal(t, types.KeyClassPublic, element.DeleteCalls[0].Class)
	assert.Equal(t, types.KeyClassPrivate, element.DeleteCalls[1].Class)
}

func TestClient_Replace_ToleratesMissingHalf(t *testing.T) {
	element := mocks.NewMockElement()
	creates := 0
	element.CreateKeyPairFunc = func(attrs *types.KeyAttributes) (*types.KeyPair, enclave.Status) {
		creates++
		if creates == 1 {
			return nil, enclave.StatusDuplicateItem
		}
		return &types.KeyPair{
			Public:  &types.KeyHandle{ID: "p", Class: types.KeyClassPublic, Label: attrs.PublicLabel},
			Private: &types.KeyHandle{ID: "q", Class: types.KeyClassPrivate, Label: attrs.PrivateLabel},
		}, enclave.StatusSuccess
	}
	// Only the private half survived a previous partial removal
	element.DeleteFunc = func(query *types.KeyQuery) enclave.Status {
		if query.Class == types.KeyClassPublic {
			return enclave.StatusItemNotFound
		}
		return enclave.StatusSuccess
	}
	client := newClient(t, element)

	_, _, err := client.Replace(context.Background(), testAttrs())
	assert.NoError(t, err)
}

func TestClient_Replace_RetriesExactlyOnce(t *testing.T) {
	element := mocks.NewMockElement()
	creates := 0
	element.CreateKeyPairFunc = func(*types.KeyAttributes) (*types.KeyPair, enclave.Status) {
		creates++
		return nil, enclave.StatusDuplicateItem
	}
	client := newClient(t, element)

	_, _, err := client.Replace(context.Background(), testAttrs())
	assert.ErrorIs(t, err, enclave.ErrLabelInUse)
	// A persistent conflict is surfaced, never retried in a loop
	assert.Equal(t, 2, creates)
}

func TestClient_Replace_NonDuplicateFailure(t *testing.T) {
	element := mocks.NewMockElement()
	element.CreateKeyPairFunc = func(*types.KeyAttributes) (*types.KeyPair, enclave.Status) {
		return nil, enclave.StatusMissingEntitlement
	}
	client := newClient(t, element)

	_, _, err := client.Replace(context.Background(), testAttrs())

	var genErr *enclave.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, enclave.StatusMissingEntitlement, genErr.Code)
	assert.Empty(t, element.DeleteCalls)
}

// =============================================================================
// Sign
// =============================================================================

func TestClient_Sign_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  enclave.Status
		wantErr error
	}{
		{"UserCanceled", enclave.StatusUserCanceled, enclave.ErrUserCancelled},
		{"AuthFailed", enclave.StatusAuthFailed, enclave.ErrAuthenticationFailed},
		{"InteractionRequired", enclave.StatusInteractionRequired, enclave.ErrInteractionRequired},
		{"ItemNotFound", enclave.StatusItemNotFound, enclave.ErrNotFound},
		{"Param", enclave.StatusParam, enclave.ErrBadSignatureParameters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			element := mocks.NewMockElement()
			element.SignFunc = func(*types.KeyHandle, types.SignatureScheme, []byte) ([]byte, enclave.Status) {
				return nil, tt.status
			}
			client := newClient(t, element)

			handle := &types.KeyHandle{
				ID:        "id",
				Class:     types.KeyClassPrivate,
				Label:     "app.private",
				Algorithm: types.AlgorithmECDSA,
				Bits:      256,
			}
			_, err := client.Sign(context.Background(), handle, types.SchemeECDSASHA256, make([]byte, 32))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_Sign_UnmappedStatus(t *testing.T) {
	element := mocks.NewMockElement()
	element.SignFunc = func(*types.KeyHandle, types.SignatureScheme, []byte) ([]byte, enclave.Status) {
		return nil, enclave.StatusUnimplemented
	}
	client := newClient(t, element)

	handle := &types.KeyHandle{ID: "id", Class: types.KeyClassPrivate, Label: "app.private"}
	_, err := client.Sign(context.Background(), handle, types.SchemeECDSASHA256, make([]byte, 32))

	// Unmapped codes surface as StoreError carrying the raw code
	var storeErr *enclave.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, enclave.StatusUnimplemented, storeErr.Code)
	assert.Equal(t, "sign", storeErr.Op)
	assert.Equal(t, "app.private", storeErr.Label)
}

func TestClient_Sign_NilHandle(t *testing.T) {
	element := mocks.NewMockElement()
	client := newClient(t, element)

	// A nil handle is rejected before the element sees the request.
	_, err := client.Sign(context.Background(), nil, types.SchemeECDSASHA256, make([]byte, 32))
	assert.ErrorIs(t, err, enclave.ErrBadSignatureParameters)
	assert.Empty(t, element.SignCalls)
}

// =============================================================================
// Verify
// =============================================================================

func TestClient_Verify_Outcomes(t *testing.T) {
	handle := &types.KeyHandle{ID: "id", Class: types.KeyClassPublic, Label: "app.public"}

	t.Run("Match", func(t *testing.T) {
		element := mocks.NewMockElement()
		client := newClient(t, element)

		valid, err := client.Verify(context.Background(), handle, types.SchemeECDSASHA256, make([]byte, 32), []byte("sig"))
		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("Mismatch", func(t *testing.T) {
		element := mocks.NewMockElement()
		element.VerifyFunc = func(*types.KeyHandle, types.SignatureScheme, []byte, []byte) enclave.Status {
			return enclave.StatusVerifyFailed
		}
		client := newClient(t, element)

		// A mismatched signature is a data outcome, not an error
		valid, err := client.Verify(context.Background(), handle, types.SchemeECDSASHA256, make([]byte, 32), []byte("sig"))
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("StructuralFailure", func(t *testing.T) {
		element := mocks.NewMockElement()
		element.VerifyFunc = func(*types.KeyHandle, types.SignatureScheme, []byte, []byte) enclave.Status {
			return enclave.StatusParam
		}
		client := newClient(t, element)

		valid, err := client.Verify(context.Background(), handle, types.SchemeECDSASHA256, make([]byte, 32), []byte("sig"))
		assert.ErrorIs(t, err, enclave.ErrBadSignatureParameters)
		assert.False(t, valid)
	})

	t.Run("NilHandle", func(t *testing.T) {
		element := mocks.NewMockElement()
		client := newClient(t, element)

		valid, err := client.Verify(context.Background(), nil, types.SchemeECDSASHA256, make([]byte, 32), []byte("sig"))
		assert.ErrorIs(t, err, enclave.ErrBadSignatureParameters)
		assert.False(t, valid)
		assert.Empty(t, element.VerifyCalls)
	})
}

// =============================================================================
// Status and error taxonomy
// =============================================================================

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "success", enclave.StatusSuccess.String())
	assert.Contains(t, enclave.Status(-99999).String(), "-99999")
}

func TestErrorTaxonomy_Distinct(t *testing.T) {
	// Presence and device-state failures must stay distinguishable from
	// absence; callers decide retry behavior on exactly this split.
	sentinels := []error{
		enclave.ErrNotFound,
		enclave.ErrUserCancelled,
		enclave.ErrAuthenticationFailed,
		enclave.ErrInteractionRequired,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}

func TestClient_Close(t *testing.T) {
	element := mocks.NewMockElement()
	client := newClient(t, element)

	require.NoError(t, client.Close())
	assert.Equal(t, 1, element.CloseCalls)
}
