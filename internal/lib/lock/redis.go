package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "lock:event:"

// releaseScript deletes the key only while it still holds our token, so a
// lock that expired and was taken by someone else is left alone.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`

// Redis is a distributed lock for deployments running several instances.
// The ttl bounds how long a crashed holder can block a key.
type Redis struct {
	client        redis.Cmdable
	ttl           time.Duration
	retryInterval time.Duration
	newToken      func() string
}

func NewRedis(client redis.Cmdable, ttl, retryInterval time.Duration) *Redis {
	return &Redis{
		client:        client,
		ttl:           ttl,
		retryInterval: retryInterval,
		newToken:      uuid.NewString,
	}
}

func (r *Redis) Lock(ctx context.Context, key string) (Unlock, error) {
	const op = "lock.Redis.Lock"

	redisKey := redisKeyPrefix + key
	token := r.newToken()

	timer := time.NewTimer(r.retryInterval)
	defer timer.Stop()

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if ok {
			break
		}

		timer.Reset(r.retryInterval)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-timer.C:
		}
	}

	var once sync.Once

	return func() {
		once.Do(func() {
			// the caller's ctx may already be done; a failed release still expires after ttl
			releaseCtx, cancel := context.WithTimeout(context.Background(), r.ttl)
			defer cancel()

			_ = r.client.Eval(releaseCtx, releaseScript, []string{redisKey}, token).Err()
		})
	}, nil
}
