// Package locker — блокировка тика фоновых задач между репликами.
package locker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker выдаёт блокировку по ключу на ttl. acquired=false — ключ уже занят.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (acquired bool, err error)
}

// RedisLocker блокирует через SET NX с истечением.
type RedisLocker struct {
	rdb *redis.Client
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisLocker подключается к Redis и проверяет соединение.
func NewRedisLocker(ctx context.Context, cfg RedisConfig) (*RedisLocker, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &RedisLocker{rdb: rdb}, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (l *RedisLocker) Close() error {
	return l.rdb.Close()
}

// Noop — блокировка всегда выдаётся (одна реплика, Redis не настроен).
type Noop struct{}

func (Noop) Acquire(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}
