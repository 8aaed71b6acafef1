package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyspace = "defaults:"

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// RedisWithTTL sets the expiry applied on every write. Zero means no expiry.
// Typically this matches the host's session lifetime so abandoned sessions
// age out on their own.
func RedisWithTTL(ttl time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// RedisStore persists snapshots in Redis, namespaced per user session. Each
// snapshot is stored as a single JSON envelope holding values and meta, so a
// read after a write round-trips both.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

type redisEnvelope struct {
	Values Values `json:"values"`
	Meta   Meta   `json:"meta"`
}

// NewRedisStore wraps client as a Store scoped to sessionID. Keys are laid
// out as "defaults:<sessionID>:<state key>".
func NewRedisStore(client redis.UniversalClient, sessionID string, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("session: redis client is required")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("session: session id is required")
	}
	s := &RedisStore{
		client: client,
		prefix: redisKeyspace + sessionID + ":",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *RedisStore) key(stateKey string) string {
	return s.prefix + stateKey
}

func (s *RedisStore) Get(ctx context.Context, key string) (Values, Meta, bool, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, Meta{}, false, nil
		}
		return nil, Meta{}, false, fmt.Errorf("session: redis get %q: %w", key, err)
	}

	var envelope redisEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, Meta{}, false, fmt.Errorf("session: decode snapshot %q: %w", key, err)
	}
	if envelope.Values == nil {
		// An empty snapshot is still "present"; keep it distinct from ok=false.
		envelope.Values = Values{}
	}
	return envelope.Values, envelope.Meta, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, values Values, meta Meta) (Meta, error) {
	stored := stampMeta(meta)
	raw, err := json.Marshal(redisEnvelope{Values: values, Meta: stored})
	if err != nil {
		return Meta{}, fmt.Errorf("session: encode snapshot %q: %w", key, err)
	}
	if err := s.client.Set(ctx, s.key(key), raw, s.ttl).Err(); err != nil {
		return Meta{}, fmt.Errorf("session: redis set %q: %w", key, err)
	}
	return stored, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("session: redis delete %q: %w", key, err)
	}
	return nil
}
