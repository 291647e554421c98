package config

import "fmt"

type CredentialStoreType string

const (
	CredentialStoreMemory    CredentialStoreType = "memory"
	CredentialStoreFile      CredentialStoreType = "file"
	CredentialStoreRedis     CredentialStoreType = "redis"
	CredentialStoreRedisMock CredentialStoreType = "redis-mock"
)

type EncryptionConfig struct {
	Enabled   bool
	SecretKey RedactedString
}

type CredentialsConfig struct {
	Type       CredentialStoreType
	FilePath   string
	Key        string
	Encryption EncryptionConfig
}

func (c *CredentialsConfig) Validate(e RunningEnvironment) error {
	switch c.Type {
	case CredentialStoreMemory, CredentialStoreRedis:
	case CredentialStoreFile:
		if c.FilePath == "" {
			return fmt.Errorf("the file credential store requires a file path")
		}
	case CredentialStoreRedisMock:
		if e != Development {
			return fmt.Errorf("credential store type cannot be \"redis-mock\" in production")
		}
	default:
		return fmt.Errorf("unknown credential store type %q", c.Type)
	}
	if c.Encryption.Enabled && len(c.Encryption.SecretKey) != 32 {
		return fmt.Errorf(
			"credential encryption key has to be 32 bytes long, the provided one is %d long",
			len(c.Encryption.SecretKey),
		)
	}
	return nil
}
