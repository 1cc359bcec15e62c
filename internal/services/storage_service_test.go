// internal/services/storage_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelwatch/compliance-backend/internal/apperrors"
	"github.com/fuelwatch/compliance-backend/internal/config"
)

// testStorageConfig builds a config backed by a per-test directory, which
// selects the local filesystem storage mode.
func testStorageConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Storage: config.StorageConfig{LocalPath: t.TempDir()},
	}
}

func TestStorageStoreAndRetrieve(t *testing.T) {
	storage, err := NewStorageService(testStorageConfig(t))
	require.NoError(t, err)

	key, err := storage.Store([]byte("evidence bytes"), "report.pdf", "evidence/some-submission")
	require.NoError(t, err)
	assert.Contains(t, key, "evidence/some-submission/")
	assert.Contains(t, key, ".pdf")

	data, err := storage.Retrieve(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("evidence bytes"), data)

	exists, err := storage.Exists(key)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStorageDelete(t *testing.T) {
	storage, err := NewStorageService(testStorageConfig(t))
	require.NoError(t, err)

	key, err := storage.Store([]byte("x"), "a.txt", "evidence/sub")
	require.NoError(t, err)

	require.NoError(t, storage.Delete(key))

	exists, err := storage.Exists(key)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = storage.Retrieve(key)
	assert.True(t, apperrors.IsNotFound(err))

	// Deleting again is not an error.
	assert.NoError(t, storage.Delete(key))
}

func TestStorageKeysAreUniquePerStore(t *testing.T) {
	storage, err := NewStorageService(testStorageConfig(t))
	require.NoError(t, err)

	first, err := storage.Store([]byte("1"), "same.pdf", "evidence/sub")
	require.NoError(t, err)
	second, err := storage.Store([]byte("2"), "same.pdf", "evidence/sub")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSanitizeKey(t *testing.T) {
	valid := map[string]string{
		"evidence/sub/file.pdf":       "evidence/sub/file.pdf",
		"/evidence/sub":               "evidence/sub",
		"evidence//sub":               "evidence/sub",
		"evidence/./sub":              "evidence/sub",
		"evidence/ignored/../sub":     "evidence/sub",
		"evidence\\windows\\path.txt": "evidence/windows/path.txt",
		// Leading .. cannot climb above the anchored root.
		"../etc/passwd": "etc/passwd",
	}
	for in, want := range valid {
		got, err := sanitizeKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	invalid := []string{"", ".", "/", "..", "a/../.."}
	for _, in := range invalid {
		_, err := sanitizeKey(in)
		assert.Error(t, err, in)
		assert.True(t, apperrors.IsValidation(err), in)
	}
}
