package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"ncmr/pkg/platform/sentinel"
)

const defaultKeyPrefix = "ncmr:"

// Store keeps values as plain Redis strings without expiry.
// The client lifecycle is managed by the caller.
type Store struct {
	client    *redis.Client
	keyPrefix string
}

type Option func(*Store)

// WithKeyPrefix namespaces keys so several deployments can share a database.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		s.keyPrefix = prefix
	}
}

func New(client *redis.Client, opts ...Option) *Store {
	s := &Store{client: client, keyPrefix: defaultKeyPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
