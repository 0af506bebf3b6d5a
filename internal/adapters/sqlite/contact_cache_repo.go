// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/watools/internal/ports/secondary"
)

// ContactCacheRepository implements secondary.ContactCache with SQLite.
// Each account's contact list is stored as one JSON payload.
type ContactCacheRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewContactCacheRepository creates a new SQLite contact cache.
func NewContactCacheRepository(db *sql.DB) *ContactCacheRepository {
	return &ContactCacheRepository{db: db, now: time.Now}
}

// WithClock replaces the clock used to stamp and age entries.
func (r *ContactCacheRepository) WithClock(now func() time.Time) *ContactCacheRepository {
	r.now = now
	return r
}

// Load returns the cached contacts when they are younger than maxAge.
func (r *ContactCacheRepository) Load(ctx context.Context, accountID int, maxAge time.Duration) ([]*secondary.ContactRecord, bool, error) {
	var (
		payload   string
		fetchedAt time.Time
	)

	err := r.db.QueryRowContext(ctx,
		"SELECT payload, fetched_at FROM contact_cache WHERE account_id = ?",
		accountID,
	).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read contact cache: %w", err)
	}

	if maxAge <= 0 || r.now().Sub(fetchedAt) >= maxAge {
		return nil, false, nil
	}

	var contacts []*secondary.ContactRecord
	if err := json.Unmarshal([]byte(payload), &contacts); err != nil {
		return nil, false, fmt.Errorf("failed to decode contact cache: %w", err)
	}

	return contacts, true, nil
}

// Save replaces the cached contacts for an account.
func (r *ContactCacheRepository) Save(ctx context.Context, accountID int, contacts []*secondary.ContactRecord) error {
	payload, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("failed to encode contacts: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO contact_cache (account_id, payload, contact_count, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET payload = excluded.payload, contact_count = excluded.contact_count, fetched_at = excluded.fetched_at`,
		accountID, string(payload), len(contacts), r.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write contact cache: %w", err)
	}

	return nil
}

// Clear drops the cached contacts for an account.
func (r *ContactCacheRepository) Clear(ctx context.Context, accountID int) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM contact_cache WHERE account_id = ?", accountID)
	if err != nil {
		return fmt.Errorf("failed to clear contact cache: %w", err)
	}
	return nil
}

// Ensure ContactCacheRepository implements the interface
var _ secondary.ContactCache = (*ContactCacheRepository)(nil)
