package idempotency

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wisbric/waypoint/internal/domain"
)

const redisKeyPrefix = "idempotency:"

// cachedRecord is the subset of domain.IdempotencyRecord stored in Redis;
// PayloadHash round-trips as a plain byte slice rather than a fixed array so
// it survives JSON encoding.
type cachedRecord struct {
	PayloadHash      []byte          `json:"payloadHash"`
	ResponseSnapshot json.RawMessage `json:"responseSnapshot"`
}

// RedisCache is a Redis-backed fast path in front of an
// ports.IdempotencyRepository: a Redis hit avoids the DB round trip the
// repository would otherwise take; a miss or Redis error falls through to
// the caller, which must consult the repository itself.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache creates a RedisCache. ttl bounds how long a replay response
// stays cached; it should not exceed the idempotency TTL cleanup window.
func NewRedisCache(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl, logger: logger}
}

func cacheKey(key, userID uuid.UUID, kind domain.MutationType) string {
	return redisKeyPrefix + string(kind) + ":" + userID.String() + ":" + key.String()
}

// Get returns the cached record and true on a hit; false on a miss or any
// Redis error (callers fall back to the repository).
func (c *RedisCache) Get(ctx context.Context, key, userID uuid.UUID, kind domain.MutationType) (domain.IdempotencyRecord, bool) {
	raw, err := c.rdb.Get(ctx, cacheKey(key, userID, kind)).Bytes()
	if err != nil {
		if err != redis.Nil && c.logger != nil {
			c.logger.Warn("redis idempotency lookup failed, falling back to repository", "error", err)
		}
		return domain.IdempotencyRecord{}, false
	}

	var cached cachedRecord
	if err := json.Unmarshal(raw, &cached); err != nil {
		if c.logger != nil {
			c.logger.Warn("invalid idempotency cache entry", "error", err)
		}
		return domain.IdempotencyRecord{}, false
	}

	rec := domain.IdempotencyRecord{
		Key:              key,
		UserID:           userID,
		MutationType:     kind,
		ResponseSnapshot: cached.ResponseSnapshot,
	}
	copy(rec.PayloadHash[:], cached.PayloadHash)
	return rec, true
}

// Set warms the cache after a fresh execution or a DB-backed read.
func (c *RedisCache) Set(ctx context.Context, rec domain.IdempotencyRecord) {
	cached := cachedRecord{PayloadHash: rec.PayloadHash[:], ResponseSnapshot: rec.ResponseSnapshot}
	raw, err := json.Marshal(cached)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(rec.Key, rec.UserID, rec.MutationType), raw, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.Warn("redis idempotency cache write failed", "error", err)
	}
}
