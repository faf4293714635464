package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound is returned when a token is absent from the store,
// including tokens that expired and were reaped by Redis.
var ErrTokenNotFound = errors.New("token not found")

// TokenStore maps opaque session tokens to user ids with a TTL enforced by
// the store itself. Implementations must be safe for concurrent use.
type TokenStore interface {
	Save(ctx context.Context, token string, userID uint, ttl time.Duration) error
	Resolve(ctx context.Context, token string) (uint, error)
	Delete(ctx context.Context, token string) error
	IsAlive(ctx context.Context) bool
}

const tokenKeyPrefix = "auth_"

// RedisTokenStore keeps token entries as auth_<token> string keys with a TTL.
// Expiry is passive: Redis drops the key, no sweeping happens here.
type RedisTokenStore struct {
	rdb *redis.Client
}

// NewRedisTokenStore wraps an already-configured Redis client.
func NewRedisTokenStore(rdb *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{rdb: rdb}
}

func (s *RedisTokenStore) Save(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	return s.rdb.Set(ctx, tokenKeyPrefix+token, strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

func (s *RedisTokenStore) Resolve(ctx context.Context, token string) (uint, error) {
	val, err := s.rdb.Get(ctx, tokenKeyPrefix+token).Result()
	if err == redis.Nil {
		return 0, ErrTokenNotFound
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrTokenNotFound
	}
	return uint(id), nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, token string) error {
	n, err := s.rdb.Del(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// IsAlive reports whether the Redis backend answers a PING.
func (s *RedisTokenStore) IsAlive(ctx context.Context) bool {
	return s.rdb.Ping(ctx).Err() == nil
}
