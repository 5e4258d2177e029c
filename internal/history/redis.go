package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps a history as a Redis list. RPUSH is atomic on the server,
// so any number of clients can append concurrently.
type RedisStore struct {
	client *redis.Client
	key    string
	owned  bool
}

// OpenRedis connects to addr, verifies the connection and returns the
// history stored under key.
func OpenRedis(ctx context.Context, addr, key string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}
	s := NewRedisStore(client, key)
	s.owned = true
	return s, nil
}

// NewRedisStore wraps an existing client. Close leaves the client open.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key}
}

// Append pushes entry onto the tail of the list.
func (s *RedisStore) Append(ctx context.Context, entry any) error {
	data, err := encodeEntry(entry)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	if err := s.client.RPush(ctx, s.key, string(data)).Err(); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// Load returns the whole list in order.
func (s *RedisStore) Load(ctx context.Context) ([]json.RawMessage, error) {
	values, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	entries := make([]json.RawMessage, 0, len(values))
	for i, v := range values {
		if !json.Valid([]byte(v)) {
			return nil, corruptf("key %q index %d is not valid JSON", s.key, i)
		}
		entries = append(entries, json.RawMessage(v))
	}
	return entries, nil
}

// Count returns the list length.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return int(n), nil
}

// Close closes the client if OpenRedis created it.
func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
