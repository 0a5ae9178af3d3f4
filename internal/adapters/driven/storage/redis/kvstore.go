package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driven"
)

// DefaultNamespace is prepended to every key written by the store.
const DefaultNamespace = "sercha:"

// scanBatch is the COUNT hint passed to SCAN.
const scanBatch = 200

// Verify interface compliance.
var _ driven.KeyValueStore = (*KVStore)(nil)

// Options configures the Redis connection.
type Options struct {
	Addr        string
	Password    string
	DB          int
	Namespace   string
	DialTimeout time.Duration
}

// KVStore implements driven.KeyValueStore on top of Redis strings.
type KVStore struct {
	client    *redis.Client
	namespace string
	closed    atomic.Bool
}

// NewKVStore connects to Redis and verifies the connection with PING.
func NewKVStore(ctx context.Context, opts Options) (*KVStore, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("%w: redis address is empty", domain.ErrInvalidInput)
	}
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}

	return &KVStore{client: client, namespace: opts.Namespace}, nil
}

// Get returns the value stored under key.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	if s.closed.Load() {
		return "", domain.ErrStoreClosed
	}

	val, err := s.client.Get(ctx, s.namespace+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting key %s: %w", key, err)
	}
	return val, nil
}

// Set stores value under key without expiry. Entry lifetimes are enforced
// by the services reading them.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if s.closed.Load() {
		return domain.ErrStoreClosed
	}

	if err := s.client.Set(ctx, s.namespace+key, value, 0).Err(); err != nil {
		return fmt.Errorf("setting key %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if s.closed.Load() {
		return domain.ErrStoreClosed
	}

	if err := s.client.Del(ctx, s.namespace+key).Err(); err != nil {
		return fmt.Errorf("deleting key %s: %w", key, err)
	}
	return nil
}

// ListKeys walks the keyspace with SCAN and returns matching keys sorted,
// with the namespace stripped.
func (s *KVStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	if s.closed.Load() {
		return nil, domain.ErrStoreClosed
	}

	pattern := escapeGlob(s.namespace+prefix) + "*"
	seen := make(map[string]struct{})

	iter := s.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		// SCAN may return a key more than once.
		seen[strings.TrimPrefix(iter.Val(), s.namespace)] = struct{}{}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning keys: %w", err)
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close closes the client. Subsequent calls return domain.ErrStoreClosed.
func (s *KVStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.client.Close()
}

// escapeGlob quotes the characters SCAN MATCH treats as wildcards.
func escapeGlob(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\', '^', '-':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
