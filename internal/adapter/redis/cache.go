// Package redis provides a shared result cache tier backed by Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/couchcryptid/birdflu-tracker/internal/domain"
)

const keyPrefix = "birdflu:result:"

// Client is the subset of the go-redis client the cache needs.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Ping(ctx context.Context) *goredis.StatusCmd
}

// NewClient opens a go-redis client. It returns nil when addr is empty.
func NewClient(addr, password string, db int) *goredis.Client {
	if addr == "" {
		return nil
	}
	return goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
}

// ResultCache stores pipeline results as JSON under their dataset fingerprint.
type ResultCache struct {
	client Client
	ttl    time.Duration
}

// NewResultCache creates a cache whose entries expire after ttl.
func NewResultCache(client Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

func (c *ResultCache) Get(ctx context.Context, fingerprint string) (*domain.Result, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+fingerprint).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var r domain.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, false, fmt.Errorf("decode cached result: %w", err)
	}
	return &r, true, nil
}

func (c *ResultCache) Put(ctx context.Context, result *domain.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+result.Fingerprint, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping reports whether the server is reachable.
func (c *ResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
