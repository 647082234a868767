// internal/auth/cache.go
package auth

import (
	"context"
	"sync"
	"time"
)

// TokenCache maps a client id to its currently cached access token.
// Implementations replace entries wholesale on renewal; concurrent renewals
// for the same client are last-write-wins.
type TokenCache interface {
	// GetValid returns the cached token for clientID if one exists and its
	// exp claim has not passed. An expired entry is a miss; an entry whose
	// claims cannot be decoded is an error (ErrMalformedToken when the exp
	// claim is absent), not a miss.
	GetValid(ctx context.Context, clientID string) (string, bool, error)
	// Put stores a token, overwriting any prior value for clientID.
	Put(ctx context.Context, clientID, token string)
}

// memoryCache holds tokens for the process lifetime. No eviction: entries
// are only ever overwritten, and validity is checked at read time against
// the token's own exp claim.
type memoryCache struct {
	mu     sync.RWMutex
	tokens map[string]string
	now    func() time.Time
}

func NewMemoryCache() TokenCache {
	return &memoryCache{tokens: map[string]string{}, now: time.Now}
}

func (c *memoryCache) GetValid(ctx context.Context, clientID string) (string, bool, error) {
	c.mu.RLock()
	tok, ok := c.tokens[clientID]
	c.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	expired, err := tokenExpired(tok, c.now())
	if err != nil {
		return "", false, err
	}
	if expired {
		return "", false, nil
	}
	return tok, true, nil
}

func (c *memoryCache) Put(ctx context.Context, clientID, token string) {
	c.mu.Lock()
	c.tokens[clientID] = token
	c.mu.Unlock()
}
