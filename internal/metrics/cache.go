// Package metrics caches derived recording results in redis behind a
// typed key, so different value kinds cannot collide or come back as the
// wrong type.
package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type Kind string

const (
	KindSummary Kind = "summary"
	KindRoute   Kind = "route"
)

// Key identifies one cached value: what kind of metric, derived from
// which input (usually a session id).
type Key struct {
	Kind        Kind
	Fingerprint string
}

func (k Key) String() string {
	return "metrics:" + string(k.Kind) + ":" + k.Fingerprint
}

// Cache is a typed wrapper over redis with a JSON codec. A nil client
// degrades every Get to a miss and every Set to a no-op.
type Cache[T any] struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCache[T any](client *redis.Client, ttl time.Duration) *Cache[T] {
	return &Cache[T]{redis: client, ttl: ttl}
}

func (c *Cache[T]) Get(ctx context.Context, key Key) (T, bool, error) {
	var zero T
	if c.redis == nil {
		return zero, false, nil
	}

	raw, err := c.redis.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return zero, false, err
	}
	return value, true, nil
}

func (c *Cache[T]) Set(ctx context.Context, key Key, value T) error {
	if c.redis == nil {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, key.String(), raw, c.ttl).Err()
}
