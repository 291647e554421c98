// Package credentials contains the persistence backends for the session credential
package credentials

import (
	"fmt"

	"github.com/coursehub/coursehub-gateway/internal/config"
	"github.com/coursehub/coursehub-gateway/internal/models"
)

// NewStore builds the credential repository selected in the configuration
func NewStore(credConfig config.CredentialsConfig, redisConfig config.RedisConfig) (models.CredentialRepository, error) {
	secretKey := ""
	if credConfig.Encryption.Enabled {
		secretKey = string(credConfig.Encryption.SecretKey)
	}
	switch credConfig.Type {
	case config.CredentialStoreMemory:
		return NewMemoryStore(), nil
	case config.CredentialStoreFile:
		options := []FileStoreOption{WithFilePath(credConfig.FilePath)}
		if secretKey != "" {
			options = append(options, WithFileEncryption(secretKey))
		}
		return NewFileStore(options...)
	case config.CredentialStoreRedis, config.CredentialStoreRedisMock:
		options := []RedisStoreOption{}
		if credConfig.Type == config.CredentialStoreRedis {
			options = append(options, WithRedisConfig(redisConfig))
		} else {
			options = append(options, WithMockRedisClient())
		}
		if credConfig.Key != "" {
			options = append(options, WithKey(credConfig.Key))
		}
		if secretKey != "" {
			options = append(options, WithEncryption(secretKey))
		}
		return NewRedisStore(options...)
	default:
		return nil, fmt.Errorf("unrecognized credential store type %q", credConfig.Type)
	}
}
