package models

import (
	"context"
)

type Encryptor interface {
	Encrypt(value string) (encrypted string, err error)
	Decrypt(value string) (decrypted string, err error)
}

type IDGenerator interface {
	ID() (string, error)
}

type CredentialGetter interface {
	GetCredential(ctx context.Context) (Credential, error)
}

type CredentialSetter interface {
	SetCredential(ctx context.Context, credential Credential) error
}

type CredentialRemover interface {
	RemoveCredential(ctx context.Context) error
}

// CredentialRepository represents the interface used to persist the session credential
type CredentialRepository interface {
	CredentialGetter
	CredentialSetter
	CredentialRemover
}
