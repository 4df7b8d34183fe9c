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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// KeyClass Tests
// =============================================================================

func TestKeyClass_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		class KeyClass
		want  bool
	}{
		{"Public", KeyClassPublic, true},
		{"Private", KeyClassPrivate, true},
		{"Empty", KeyClass(""), false},
		{"Unknown", KeyClass("secret"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.class.IsValid())
		})
	}
}

func TestParseKeyClass(t *testing.T) {
	class, err := ParseKeyClass("private")
	require.NoError(t, err)
	assert.Equal(t, KeyClassPrivate, class)

	_, err = ParseKeyClass("symmetric")
	assert.ErrorIs(t, err, ErrUnknownKeyClass)
}

// =============================================================================
// Accessibility Tests
// =============================================================================

func TestAccessibility_Gates(t *testing.T) {
	tests := []struct {
		name             string
		access           Accessibility
		requiresUnlocked bool
		thisDeviceOnly   bool
	}{
		{"WhenUnlocked", AccessibleWhenUnlocked, true, false},
		{"WhenUnlockedThisDevice", AccessibleWhenUnlockedThisDeviceOnly, true, true},
		{"AfterFirstUnlock", AccessibleAfterFirstUnlock, false, false},
		{"AfterFirstUnlockThisDevice", AccessibleAfterFirstUnlockThisDeviceOnly, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.access.IsValid())
			assert.Equal(t, tt.requiresUnlocked, tt.access.RequiresUnlocked())
			assert.Equal(t, tt.thisDeviceOnly, tt.access.ThisDeviceOnly())
		})
	}
}

func TestParseAccessibility_Unknown(t *testing.T) {
	_, err := ParseAccessibility("always")
	assert.ErrorIs(t, err, ErrUnknownAccessibility)
}

// =============================================================================
// KeyUsage Tests
// =============================================================================

func TestKeyUsage_Can(t *testing.T) {
	usage := UsageSign
	assert.True(t, usage.Can(UsageSign))
	assert.False(t, usage.Can(UsageVerify))

	both := UsageSign | UsageVerify
	assert.True(t, both.Can(UsageSign))
	assert.True(t, both.Can(UsageVerify))
	assert.True(t, both.Can(UsageSign|UsageVerify))
}

// =============================================================================
// KeyAttributes Tests
// =============================================================================

func TestKeyAttributes_Validate(t *testing.T) {
	valid := func() *KeyAttributes {
		return &KeyAttributes{
			Algorithm:    AlgorithmECDSA,
			Curve:        CurveP256,
			Tier:         TierSecureElement,
			PublicLabel:  "app.public",
			PrivateLabel: "app.private",
			Permanent:    true,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*KeyAttributes)
		wantErr error
	}{
		{"Valid_EC_SecureElement", func(a *KeyAttributes) {}, nil},
		{"Valid_EC_Keystore", func(a *KeyAttributes) {
			a.Tier = TierKeystore
		}, nil},
		{"Valid_RSA_Keystore", func(a *KeyAttributes) {
			a.Algorithm = AlgorithmRSA
			a.Curve = ""
			a.RSAKeySize = RSAKeySize2048
			a.Tier = TierKeystore
		}, nil},
		{"EmptyPublicLabel", func(a *KeyAttributes) {
			a.PublicLabel = ""
		}, ErrInvalidLabel},
		{"EmptyPrivateLabel", func(a *KeyAttributes) {
			a.PrivateLabel = ""
		}, ErrInvalidLabel},
		{"IdenticalLabels", func(a *KeyAttributes) {
			a.PrivateLabel = a.PublicLabel
		}, ErrLabelsNotDistinct},
		{"UnknownTier", func(a *KeyAttributes) {
			a.Tier = "cloud"
		}, ErrUnknownStoreTier},
		{"RSA_SecureElement", func(a *KeyAttributes) {
			a.Algorithm = AlgorithmRSA
			a.RSAKeySize = RSAKeySize2048
		}, ErrUnsupportedTierAlgorithm},
		{"RSA_BadSize", func(a *KeyAttributes) {
			a.Algorithm = AlgorithmRSA
			a.RSAKeySize = 1024
			a.Tier = TierKeystore
		}, ErrInvalidRSAKeySize},
		{"EC_BadCurve", func(a *KeyAttributes) {
			a.Curve = "P-521"
		}, ErrInvalidCurve},
		{"UnknownAlgorithm", func(a *KeyAttributes) {
			a.Algorithm = "dsa"
		}, ErrUnknownKeyAlgorithm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := valid()
			tt.mutate(attrs)
			err := attrs.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestKeyAttributes_Bits(t *testing.T) {
	ec := &KeyAttributes{Algorithm: AlgorithmECDSA, Curve: CurveP256}
	assert.Equal(t, 256, ec.Bits())

	rsa := &KeyAttributes{Algorithm: AlgorithmRSA, RSAKeySize: RSAKeySize3072}
	assert.Equal(t, 3072, rsa.Bits())
}

// =============================================================================
// KeyQuery Tests
// =============================================================================

func TestKeyQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   KeyQuery
		wantErr error
	}{
		{"Valid_Public", KeyQuery{Class: KeyClassPublic, Label: "app.public"}, nil},
		{"Valid_PublicExport", KeyQuery{
			Class:  KeyClassPublic,
			Label:  "app.public",
			Return: ReturnHandleAndPublicBytes,
		}, nil},
		{"Valid_Private", KeyQuery{Class: KeyClassPrivate, Label: "app.private"}, nil},
		{"EmptyLabel", KeyQuery{Class: KeyClassPublic}, ErrInvalidQuery},
		{"UnknownClass", KeyQuery{Class: "secret", Label: "x"}, ErrUnknownKeyClass},
		{"PrivateExport", KeyQuery{
			Class:  KeyClassPrivate,
			Label:  "app.private",
			Return: ReturnHandleAndPublicBytes,
		}, ErrPrivateExportForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// KeyHandle Tests
// =============================================================================

func TestKeyHandle_BlockSize(t *testing.T) {
	rsa := &KeyHandle{Algorithm: AlgorithmRSA, Bits: 2048}
	assert.Equal(t, 256, rsa.BlockSize())

	ec := &KeyHandle{Algorithm: AlgorithmECDSA, Bits: 256}
	assert.Equal(t, 0, ec.BlockSize())
}

// =============================================================================
// Capabilities Tests
// =============================================================================

func TestCapabilities_SupportsScheme(t *testing.T) {
	caps := Capabilities{Schemes: []SignatureScheme{SchemeECDSASHA256}}
	assert.True(t, caps.SupportsScheme(SchemeECDSASHA256))
	assert.False(t, caps.SupportsScheme(SchemeRSAPKCS1v15SHA256))
}
