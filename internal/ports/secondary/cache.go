package secondary

import (
	"context"
	"time"
)

// ContactCache defines the secondary port for short-lived contact snapshots.
// Expiry is decided by the caller through maxAge; implementations only store.
type ContactCache interface {
	// Load returns the cached contacts for an account when they are younger than maxAge.
	// ok is false on a miss or when the entry is stale.
	Load(ctx context.Context, accountID int, maxAge time.Duration) (contacts []*ContactRecord, ok bool, err error)

	// Save replaces the cached contacts for an account.
	Save(ctx context.Context, accountID int, contacts []*ContactRecord) error

	// Clear drops the cached contacts for an account.
	Clear(ctx context.Context, accountID int) error
}

// TokenStore defines the secondary port for OAuth access token caching.
type TokenStore interface {
	// Get returns the token stored under key, if any.
	Get(key string) (*AccessToken, bool)

	// Put stores a token under key.
	Put(key string, token *AccessToken)
}

// AccessToken is an OAuth bearer token with its expiry.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// Valid reports whether the token can still be used at now.
func (t *AccessToken) Valid(now time.Time) bool {
	return t != nil && t.Value != "" && now.Before(t.ExpiresAt)
}
