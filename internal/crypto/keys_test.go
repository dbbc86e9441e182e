package crypto

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateStorageKey_CreatesOnFirstUse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.key")

	key, err := LoadOrCreateStorageKey(path)
	require.NoError(t, err)
	assert.Len(t, key, Argon2KeyLen)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadOrCreateStorageKey_StableAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.key")

	first, err := LoadOrCreateStorageKey(path)
	require.NoError(t, err)
	second, err := LoadOrCreateStorageKey(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLoadOrCreateStorageKey_DistinctInstallations(t *testing.T) {
	first, err := LoadOrCreateStorageKey(filepath.Join(t.TempDir(), "a.key"))
	require.NoError(t, err)
	second, err := LoadOrCreateStorageKey(filepath.Join(t.TempDir(), "b.key"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLoadOrCreateStorageKey_CorruptMaterial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.key")
	require.NoError(t, os.WriteFile(path, []byte("truncated"), 0o600))

	_, err := LoadOrCreateStorageKey(path)
	assert.Error(t, err)
}
