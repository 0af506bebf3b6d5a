// Package redis contains a Redis implementation of the contact cache,
// for sharing one snapshot between several machines.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/watools/internal/ports/secondary"
)

// KeyPrefix namespaces every key written by the cache.
const KeyPrefix = "watools:contacts:"

// kv is the subset of the Redis client the cache uses.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// envelope is the stored value: the contacts plus when they were fetched.
type envelope struct {
	FetchedAt time.Time                  `json:"fetched_at"`
	Contacts  []*secondary.ContactRecord `json:"contacts"`
}

// ContactCache implements secondary.ContactCache on Redis.
type ContactCache struct {
	client kv
	ttl    time.Duration
	now    func() time.Time
}

// NewClient opens a Redis client for addr.
func NewClient(addr string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
}

// NewContactCache creates a Redis-backed contact cache.
// Keys expire after ttl on the server; Load still applies the caller's maxAge.
func NewContactCache(client *redis.Client, ttl time.Duration) *ContactCache {
	return newContactCache(client, ttl, time.Now)
}

func newContactCache(client kv, ttl time.Duration, now func() time.Time) *ContactCache {
	return &ContactCache{client: client, ttl: ttl, now: now}
}

// Key returns the Redis key for an account's contacts.
func Key(accountID int) string {
	return KeyPrefix + strconv.Itoa(accountID)
}

// Load returns the cached contacts when they are younger than maxAge.
func (c *ContactCache) Load(ctx context.Context, accountID int, maxAge time.Duration) ([]*secondary.ContactRecord, bool, error) {
	raw, err := c.client.Get(ctx, Key(accountID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read contact cache: %w", err)
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, false, fmt.Errorf("failed to decode contact cache: %w", err)
	}

	if maxAge <= 0 || c.now().Sub(env.FetchedAt) >= maxAge {
		return nil, false, nil
	}
	return env.Contacts, true, nil
}

// Save replaces the cached contacts for an account.
func (c *ContactCache) Save(ctx context.Context, accountID int, contacts []*secondary.ContactRecord) error {
	data, err := json.Marshal(envelope{FetchedAt: c.now().UTC(), Contacts: contacts})
	if err != nil {
		return fmt.Errorf("failed to encode contacts: %w", err)
	}

	if err := c.client.Set(ctx, Key(accountID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write contact cache: %w", err)
	}
	return nil
}

// Clear drops the cached contacts for an account.
func (c *ContactCache) Clear(ctx context.Context, accountID int) error {
	if err := c.client.Del(ctx, Key(accountID)).Err(); err != nil {
		return fmt.Errorf("failed to clear contact cache: %w", err)
	}
	return nil
}

var _ secondary.ContactCache = (*ContactCache)(nil)
