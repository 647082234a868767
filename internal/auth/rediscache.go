// internal/auth/rediscache.go
package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisCache shares tokens across process instances. The entry TTL is
// clamped to the token's remaining lifetime so Redis never serves a token
// past its exp claim; GetValid re-checks the claim anyway in case of clock
// drift between us and Redis.
type redisCache struct {
	rdb *redis.Client
	log *zap.SugaredLogger
	now func() time.Time
}

func NewRedisCache(rdb *redis.Client, log *zap.SugaredLogger) TokenCache {
	return &redisCache{rdb: rdb, log: log, now: time.Now}
}

func redisKey(clientID string) string { return "spacebot:token:" + clientID }

func (c *redisCache) GetValid(ctx context.Context, clientID string) (string, bool, error) {
	tok, err := c.rdb.Get(ctx, redisKey(clientID)).Result()
	if err != nil {
		// A Redis outage degrades to a cache miss; the exchange re-derives
		// the token anyway.
		if err != redis.Nil {
			c.log.Warnw("token cache read", "clientId", clientID, "err", err)
		}
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

func (c *redisCache) Put(ctx context.Context, clientID, token string) {
	if err := c.rdb.Set(ctx, redisKey(clientID), token, tokenTTL(token, c.now())).Err(); err != nil {
		c.log.Warnw("token cache write", "clientId", clientID, "err", err)
	}
}

// tokenTTL clamps the cache entry lifetime to the token's remaining
// validity so Redis never outlives the exp claim. Tokens without a usable
// exp fall back to an hour; GetValid rejects them at read time.
func tokenTTL(token string, now time.Time) time.Duration {
	ttl := time.Hour
	if exp, err := tokenExpiration(token); err == nil {
		if remaining := exp.Sub(now); remaining > 0 && remaining < ttl {
			ttl = remaining
		}
	}
	return ttl
}
