package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventLock claims a webhook delivery so that concurrent duplicates are
// turned away before they reach the database.
type EventLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type RedisEventLock struct {
	client *redis.Client
	prefix string
}

func NewRedisEventLock(client *redis.Client) *RedisEventLock {
	return &RedisEventLock{client: client, prefix: "webhook:event:"}
}

func (l *RedisEventLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.prefix+key, time.Now().Unix(), ttl).Result()
}

func (l *RedisEventLock) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}
