package credentials

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coursehub/coursehub-gateway/internal/gwerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "credentials.yaml")
	store, err := NewFileStore(WithFilePath(path))
	require.NoError(t, err)

	_, err = store.GetCredential(ctx)
	assert.ErrorIs(t, err, gwerrors.ErrCredentialNotFound)

	credential := testCredential()
	require.NoError(t, store.SetCredential(ctx, credential))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, credentialFileMode, info.Mode().Perm())

	stored, err := store.GetCredential(ctx)
	require.NoError(t, err)
	assert.Equal(t, credential.Value, stored.Value)
	assert.True(t, credential.UpdatedAt.Equal(stored.UpdatedAt))
	require.Len(t, stored.Cookies, 1)
	assert.Equal(t, *credential.Cookies[0], *stored.Cookies[0])

	require.NoError(t, store.RemoveCredential(ctx))
	require.NoError(t, store.RemoveCredential(ctx))
	_, err = store.GetCredential(ctx)
	assert.ErrorIs(t, err, gwerrors.ErrCredentialNotFound)
}

func TestFileStoreEncryption(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	store, err := NewFileStore(WithFilePath(path), WithFileEncryption(testSecretKey))
	require.NoError(t, err)
	credential := testCredential()

	require.NoError(t, store.SetCredential(ctx, credential))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), credential.Value))
	assert.False(t, strings.Contains(string(raw), "refresh-1"))
	stored, err := store.GetCredential(ctx)
	require.NoError(t, err)
	assert.Equal(t, credential.Value, stored.Value)

	plain, err := NewFileStore(WithFilePath(path))
	require.NoError(t, err)
	_, err = plain.GetCredential(ctx)
	assert.ErrorIs(t, err, gwerrors.ErrCredentialParse)
}

func TestFileStoreInvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte("value: [not, a, string"), 0o600))
	store, err := NewFileStore(WithFilePath(path))
	require.NoError(t, err)

	_, err = store.GetCredential(context.Background())

	assert.ErrorIs(t, err, gwerrors.ErrCredentialParse)
}

func TestFileStoreEmptyPath(t *testing.T) {
	_, err := NewFileStore(WithFilePath(""))
	assert.Error(t, err)
}
