package credentials

import (
	"testing"

	"github.com/coursehub/coursehub-gateway/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	store, err := NewStore(config.CredentialsConfig{Type: config.CredentialStoreMemory}, config.RedisConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = NewStore(
		config.CredentialsConfig{Type: config.CredentialStoreFile, FilePath: t.TempDir() + "/creds.yaml"},
		config.RedisConfig{},
	)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = NewStore(
		config.CredentialsConfig{
			Type:       config.CredentialStoreRedisMock,
			Key:        "test",
			Encryption: config.EncryptionConfig{Enabled: true, SecretKey: testSecretKey},
		},
		config.RedisConfig{},
	)
	require.NoError(t, err)
	redisStore, ok := store.(*RedisStore)
	require.True(t, ok)
	assert.Equal(t, "test", redisStore.key)
	assert.NotNil(t, redisStore.encryptor)

	_, err = NewStore(config.CredentialsConfig{Type: "unknown"}, config.RedisConfig{})
	assert.Error(t, err)
}
