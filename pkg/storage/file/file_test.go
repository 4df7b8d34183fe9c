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

package file

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafn/go-secure-enclave/pkg/storage"
)

func TestFileBackend_PutGet(t *testing.T) {
	backend, err := New(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = backend.Close() }()

	require.NoError(t, backend.Put("private/app.key", []byte("record")))

	value, err := backend.Get("private/app.key")
	require.NoError(t, err)
	assert.Equal(t, []byte("record"), value)
}

func TestFileBackend_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}

	dir := t.TempDir()
	backend, err := New(dir)
	require.NoError(t, err)
	defer func() { _ = backend.Close() }()

	require.NoError(t, backend.Put("private/app.key", []byte("record")))

	info, err := os.Stat(filepath.Join(dir, "private", "app.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Join(dir, "private"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
}

func TestFileBackend_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	backend, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, backend.Put("public/app.key", []byte("record")))
	require.NoError(t, backend.Close())

	reopened, err := New(dir)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	value, err := reopened.Get("public/app.key")
	require.NoError(t, err)
	assert.Equal(t, []byte("record"), value)
}

func TestFileBackend_DeleteNotFound(t *testing.T) {
	backend, err := New(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = backend.Close() }()

	assert.ErrorIs(t, backend.Delete("missing"), storage.ErrNotFound)
}

func TestFileBackend_List(t *testing.T) {
	backend, err := New(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = backend.Close() }()

	require.NoError(t, backend.Put("public/a", []byte("1")))
	require.NoError(t, backend.Put("private/a", []byte("2")))
	require.NoError(t, backend.Put("private/b", []byte("3")))

	keys, err := backend.List("private/")
	require.NoError(t, err)
	assert.Equal(t, []string{"private/a", "private/b"}, keys)
}

func TestFileBackend_EmptyRoot(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
