// pkg/registrations/memory.go
package registrations

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type memStore struct {
	log  *zap.SugaredLogger
	mu   sync.RWMutex
	byID map[string]ClientRegistration
}

// NewMemoryStore keeps registrations in process memory. Dev fallback for
// when no DATABASE_URL is configured; every restart forgets all tenants.
func NewMemoryStore(log *zap.SugaredLogger) Store {
	return &memStore{log: log, byID: map[string]ClientRegistration{}}
}

func (m *memStore) Upsert(ctx context.Context, reg ClientRegistration) error {
	m.mu.Lock()
	m.byID[reg.ClientID] = reg
	m.mu.Unlock()
	m.log.Debugw("registration stored", "clientId", reg.ClientID)
	return nil
}

func (m *memStore) Get(ctx context.Context, clientID string) (ClientRegistration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if reg, ok := m.byID[clientID]; ok {
		return reg, nil
	}
	return ClientRegistration{}, ErrNotFound
}
