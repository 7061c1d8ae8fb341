package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lborres/quill/core"
)

const (
	DefaultPrefix = "quill:csrf:"
	DefaultTTL    = 7 * 24 * time.Hour
)

// Store keeps CSRF token hashes in Redis so several instances can share them.
// Entries expire on their own; Redis handles eviction.
type Store struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ core.TokenStore = (*Store)(nil)

type Option func(*Store)

// WithPrefix sets the key prefix. Default: "quill:csrf:".
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func New(client goredis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(sessionKey string) string {
	return s.prefix + sessionKey
}

func (s *Store) Get(ctx context.Context, sessionKey string) (string, error) {
	token, err := s.client.Get(ctx, s.key(sessionKey)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", core.ErrTokenNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return token, nil
}

// Set overwrites any token for sessionKey and restarts its expiry.
func (s *Store) Set(ctx context.Context, sessionKey, token string) error {
	if err := s.client.Set(ctx, s.key(sessionKey), token, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, sessionKey string) error {
	if err := s.client.Del(ctx, s.key(sessionKey)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
