package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func getValidCredentialsConfig() CredentialsConfig {
	return CredentialsConfig{
		Type: CredentialStoreMemory,
		Key:  "coursehub",
		Encryption: EncryptionConfig{
			Enabled:   true,
			SecretKey: "eBfR0WfHBTrRrVdLpsTYmWtPwJfQqOEq",
		},
	}
}

func TestValidCredentialsConfig(t *testing.T) {
	config := getValidCredentialsConfig()

	err := config.Validate(Production)

	assert.NoError(t, err)
}

func TestInvalidEncryptionSecretKey(t *testing.T) {
	config := getValidCredentialsConfig()
	config.Encryption.SecretKey = "invalid-key"

	err := config.Validate(Production)

	assert.ErrorContains(t, err, "credential encryption key has to be 32 bytes long, the provided one is 11 long")
}

func TestEncryptionKeyIgnoredWhenDisabled(t *testing.T) {
	config := getValidCredentialsConfig()
	config.Encryption.Enabled = false
	config.Encryption.SecretKey = "short"

	err := config.Validate(Production)

	assert.NoError(t, err)
}

func TestFileStoreRequiresPath(t *testing.T) {
	config := getValidCredentialsConfig()
	config.Type = CredentialStoreFile

	err := config.Validate(Production)

	assert.ErrorContains(t, err, "the file credential store requires a file path")

	config.FilePath = "/tmp/credentials.yaml"
	assert.NoError(t, config.Validate(Production))
}

func TestRedisMockOnlyInDevelopment(t *testing.T) {
	config := getValidCredentialsConfig()
	config.Type = CredentialStoreRedisMock

	assert.ErrorContains(t, config.Validate(Production), "credential store type cannot be \"redis-mock\" in production")
	assert.NoError(t, config.Validate(Development))
}

func TestUnknownCredentialStoreType(t *testing.T) {
	config := getValidCredentialsConfig()
	config.Type = "cookie-jar"

	err := config.Validate(Development)

	assert.ErrorContains(t, err, "unknown credential store type \"cookie-jar\"")
}
