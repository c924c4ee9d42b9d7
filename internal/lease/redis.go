package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "checkout:lease:"

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

// RedisClient is the subset of *redis.Client the locker needs
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	redis.Scripter
}

// RedisLocker implements Locker with SET NX PX, so leases are shared by every
// server instance pointing at the same Redis.
type RedisLocker struct {
	client RedisClient
}

func NewRedisLocker(client RedisClient) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	token := uuid.NewString()
	redisKey := keyPrefix + key

	ok, err := l.client.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lease %s: %w", key, err)
	}
	if !ok {
		return nil, ErrHeld
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
			return fmt.Errorf("release lease %s: %w", key, err)
		}
		return nil
	}, nil
}
