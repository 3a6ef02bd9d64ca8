// Package redis provides a Redis-backed implementation of driven.StateStore
// for deployments where several vitae processes share one document.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.StateStore = (*Store)(nil)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "vitae:"

// Store keeps state values as plain Redis strings.
type Store struct {
	client *redis.Client
	prefix string
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides the key namespace.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New wraps an existing client.
func New(client *redis.Client, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Dial connects to the server at url (redis://...) and checks it answers.
func Dial(ctx context.Context, url string, opts ...Option) (*Store, error) {
	if url == "" {
		return nil, fmt.Errorf("redis URL: %w", domain.ErrInvalidInput)
	}

	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	redisOpts.DialTimeout = 5 * time.Second

	client := redis.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return New(client, opts...), nil
}

// Get returns the value stored under key, or domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Put stores value under key without expiry.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Health checks if the Redis connection is healthy.
func (s *Store) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
