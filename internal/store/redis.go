package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cleared-dev/grassjelly/internal/group"
)

// DefaultRedisPrefix namespaces the keys written by RedisStore.
const DefaultRedisPrefix = "grassjelly"

// RedisStore keeps every snapshot as a field of one Redis hash.
type RedisStore struct {
	client *redis.Client
	key    string
}

// DialRedis connects to addr and pings it.
func DialRedis(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store/redis: ping: %w", err)
	}
	return NewRedisStore(client, prefix), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, key: prefix + ":groups"}
}

// Load reads a group snapshot.
func (s *RedisStore) Load(ctx context.Context, name string) (group.Snapshot, error) {
	data, err := s.client.HGet(ctx, s.key, name).Bytes()
	if errors.Is(err, redis.Nil) {
		return group.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return group.Snapshot{}, fmt.Errorf("store/redis: load %q: %w", name, err)
	}
	return decode(name, data)
}

// Save writes a group snapshot.
func (s *RedisStore) Save(ctx context.Context, snap group.Snapshot) error {
	data, err := group.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := s.client.HSet(ctx, s.key, snap.Name, data).Err(); err != nil {
		return fmt.Errorf("store/redis: save %q: %w", snap.Name, err)
	}
	return nil
}

// Delete removes a group.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	n, err := s.client.HDel(ctx, s.key, name).Result()
	if err != nil {
		return fmt.Errorf("store/redis: delete %q: %w", name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the stored group names, sorted.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := s.client.HKeys(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("store/redis: list: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
