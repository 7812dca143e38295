package credstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFileStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := OpenFileStore(t.TempDir())
	require.NoError(t, err)
	return fs
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs := setupFileStore(t)

	require.NoError(t, fs.Set(ServiceBuiltin, "DeepSeek", "sk-secret-123"))

	got, err := fs.Get(ServiceBuiltin, "DeepSeek")
	require.NoError(t, err)
	assert.Equal(t, "sk-secret-123", got)
}

func TestFileStoreMissingKey(t *testing.T) {
	fs := setupFileStore(t)

	_, err := fs.Get(ServiceBuiltin, "nobody")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	has, err := Has(fs, ServiceBuiltin, "nobody")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestFileStoreNamespacing(t *testing.T) {
	fs := setupFileStore(t)

	require.NoError(t, fs.Set(ServiceBuiltin, "acct", "builtin-secret"))
	require.NoError(t, fs.Set(ServiceCustomPrefix+"abc", "acct", "custom-secret"))

	got, err := fs.Get(ServiceBuiltin, "acct")
	require.NoError(t, err)
	assert.Equal(t, "builtin-secret", got)

	got, err = fs.Get(ServiceCustomPrefix+"abc", "acct")
	require.NoError(t, err)
	assert.Equal(t, "custom-secret", got)

	// Deleting one namespace leaves the other intact.
	require.NoError(t, fs.Delete(ServiceBuiltin, "acct"))
	_, err = fs.Get(ServiceBuiltin, "acct")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	_, err = fs.Get(ServiceCustomPrefix+"abc", "acct")
	assert.NoError(t, err)
}

func TestFileStoreDeleteMissing(t *testing.T) {
	fs := setupFileStore(t)
	assert.NoError(t, fs.Delete(ServiceBuiltin, "never-stored"))
}

func TestFileStoreOverwrite(t *testing.T) {
	fs := setupFileStore(t)

	require.NoError(t, fs.Set(ServiceBuiltin, "acct", "first"))
	require.NoError(t, fs.Set(ServiceBuiltin, "acct", "second"))

	got, err := fs.Get(ServiceBuiltin, "acct")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestFileStoreCiphertextOnDisk(t *testing.T) {
	dir := t.TempDir()
	fs, err := OpenFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, fs.Set(ServiceBuiltin, "acct", "sk-very-secret"))

	raw, err := os.ReadFile(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-very-secret")
	assert.True(t, strings.Contains(string(raw), encryptedPrefix))
}

func TestFileStorePersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	fs1, err := OpenFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, fs1.Set(ServiceSession, "token", "tok-123"))

	fs2, err := OpenFileStore(dir)
	require.NoError(t, err)
	got, err := fs2.Get(ServiceSession, "token")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", got)
}
