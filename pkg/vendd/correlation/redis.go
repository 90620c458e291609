package correlation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore is a Store backed by a redis server, for deployments with more
// than one vendd instance
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the redis server at the given address
func NewRedisStore(addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  800 * time.Millisecond,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("error connecting to redis at %s: %v", addr, err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Put(ctx context.Context, checkoutID, reference string, ttl time.Duration) error {
	return s.client.Set(ctx, entryKey(checkoutID), reference, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, checkoutID string) (string, bool, error) {
	v, err := s.client.Get(ctx, entryKey(checkoutID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Close closes the underlying redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
