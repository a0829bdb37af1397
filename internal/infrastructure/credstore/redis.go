package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/acme-erp/admin-console/internal/core/domain"
)

const DefaultPrefix = "erpconsole:"

// RedisStore keeps the credential under <prefix><key> in Redis.
// Key format: erpconsole:token
type RedisStore struct {
	client redis.Cmdable
	key    string
}

// NewRedisStore wraps an established client. Empty prefix and key fall back
// to DefaultPrefix and DefaultKey.
func NewRedisStore(client redis.Cmdable, prefix, key string) *RedisStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: prefix + key}
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	cred, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("credstore: redis get: %w", err)
	}
	if cred == "" {
		return "", domain.ErrNoCredential
	}
	return cred, nil
}

func (s *RedisStore) Save(ctx context.Context, credential string) error {
	if err := s.client.Set(ctx, s.key, credential, 0).Err(); err != nil {
		return fmt.Errorf("credstore: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("credstore: redis del: %w", err)
	}
	return nil
}
