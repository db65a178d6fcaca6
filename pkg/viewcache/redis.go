package viewcache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "viewcache:"

// Redis keeps one hash per path so a path is invalidated with a single DEL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, path, key string) ([]byte, bool, error) {
	raw, err := r.client.HGet(ctx, redisPrefix+path, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

func (r *Redis) Set(ctx context.Context, path, key string, value []byte) error {
	hashKey := redisPrefix + path
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, hashKey, key, value)
	if r.ttl > 0 {
		pipe.Expire(ctx, hashKey, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) InvalidatePath(ctx context.Context, path string) error {
	return r.client.Del(ctx, redisPrefix+path).Err()
}

var _ Cache = (*Redis)(nil)
