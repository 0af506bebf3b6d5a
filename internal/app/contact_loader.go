package app

import (
	"context"
	"time"

	"github.com/example/watools/internal/logging"
	"github.com/example/watools/internal/ports/secondary"
)

// ContactLoader fetches contacts through an optional cache.
type ContactLoader struct {
	client secondary.WildApricotClient
	cache  secondary.ContactCache // nil disables caching
	ttl    time.Duration
	log    *logging.Logger
}

// NewContactLoader creates a loader. cache may be nil.
func NewContactLoader(client secondary.WildApricotClient, cache secondary.ContactCache, ttl time.Duration, log *logging.Logger) *ContactLoader {
	return &ContactLoader{client: client, cache: cache, ttl: ttl, log: log}
}

// Load returns the account's contacts, from the cache when fresh unless reload is set.
// Cache failures are logged and fall through to the API.
func (l *ContactLoader) Load(ctx context.Context, accountID int, reload bool) ([]*secondary.ContactRecord, error) {
	if l.cache != nil && !reload {
		contacts, ok, err := l.cache.Load(ctx, accountID, l.ttl)
		switch {
		case err != nil:
			l.log.Warnf("contact cache unavailable: %v", err)
		case ok:
			l.log.Debugf("Loaded %d contacts from cache.", len(contacts))
			return contacts, nil
		default:
			l.log.Debugf("Contact cache missing or expired.")
		}
	} else if reload {
		l.log.Debugf("Forcing contact reload")
	}

	contacts, err := l.client.FetchContacts(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if l.cache != nil && len(contacts) > 0 {
		if err := l.cache.Save(ctx, accountID, contacts); err != nil {
			l.log.Warnf("failed to save contact cache: %v", err)
		} else {
			l.log.Debugf("Contacts saved to cache.")
		}
	}
	return contacts, nil
}

// Clear drops the cached contacts of an account.
func (l *ContactLoader) Clear(ctx context.Context, accountID int) error {
	if l.cache == nil {
		return nil
	}
	return l.cache.Clear(ctx, accountID)
}
