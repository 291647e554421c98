package credentials

import (
	"context"
	"sync"

	"github.com/coursehub/coursehub-gateway/internal/gwerrors"
	"github.com/coursehub/coursehub-gateway/internal/models"
)

// MemoryStore keeps the credential for the lifetime of the process only
type MemoryStore struct {
	lock       *sync.RWMutex
	credential *models.Credential
}

func (m *MemoryStore) GetCredential(ctx context.Context) (models.Credential, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.credential == nil {
		return models.Credential{}, gwerrors.ErrCredentialNotFound
	}
	return *m.credential, nil
}

func (m *MemoryStore) SetCredential(ctx context.Context, credential models.Credential) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.credential = &credential
	return nil
}

func (m *MemoryStore) RemoveCredential(ctx context.Context) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.credential = nil
	return nil
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lock: &sync.RWMutex{}}
}

var _ models.CredentialRepository = (*MemoryStore)(nil)
