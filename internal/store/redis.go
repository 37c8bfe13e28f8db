package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oneinflu/nsaconsole-api/pkg/config"
)

// RedisKV stores each namespace document under a prefixed Redis key.
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV connects to Redis and verifies the connection with a ping.
func NewRedisKV(cfg config.RedisConfig) (*RedisKV, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "nsaconsole"
	}
	return &RedisKV{client: client, prefix: prefix}, nil
}

// Close releases the underlying client.
func (r *RedisKV) Close() error {
	return r.client.Close()
}

func (r *RedisKV) key(namespace string) string {
	return r.prefix + ":" + namespace
}

func (r *RedisKV) Get(ctx context.Context, namespace string) ([]byte, bool, error) {
	raw, err := r.client.Get(ctx, r.key(namespace)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", namespace, err)
	}
	return raw, true, nil
}

func (r *RedisKV) Put(ctx context.Context, namespace string, data []byte) error {
	if err := r.client.Set(ctx, r.key(namespace), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", namespace, err)
	}
	return nil
}

func (r *RedisKV) Delete(ctx context.Context, namespace string) error {
	if err := r.client.Del(ctx, r.key(namespace)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", namespace, err)
	}
	return nil
}
