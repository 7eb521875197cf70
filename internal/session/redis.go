package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/siakad-backend/internal/config"
)

// RedisRegistry stores one key per session with the token's lifetime as TTL.
type RedisRegistry struct {
	rdb *redis.Client
}

// NewRedisRegistry creates a RedisRegistry.
func NewRedisRegistry(rdb *redis.Client) *RedisRegistry {
	return &RedisRegistry{rdb: rdb}
}

func (r *RedisRegistry) Register(ctx context.Context, userID int, jti string, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, config.CacheKey.UserSessionKey(userID, jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *RedisRegistry) Active(ctx context.Context, userID int, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, config.CacheKey.UserSessionKey(userID, jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return n == 1, nil
}

func (r *RedisRegistry) Revoke(ctx context.Context, userID int, jti string) error {
	return r.rdb.Del(ctx, config.CacheKey.UserSessionKey(userID, jti)).Err()
}

func (r *RedisRegistry) RevokeAll(ctx context.Context, userID int) error {
	iter := r.rdb.Scan(ctx, 0, config.CacheKey.UserSessionPattern(userID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan sessions: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}
