package primary

import (
	"context"
	"time"
)

// EventService defines the primary port for event browsing.
type EventService interface {
	// ListEvents lists an account's events matching the filters.
	ListEvents(ctx context.Context, req ListEventsRequest) ([]*Event, error)

	// GetEvent retrieves one event with access control and registration types.
	GetEvent(ctx context.Context, accountID, eventID int) (*EventDetail, error)
}

// ListEventsRequest contains filter options for listing events.
type ListEventsRequest struct {
	AccountID int
	ShowAll   bool
	Future    bool
	Year      int
	Month     int
	After     *time.Time
	Before    *time.Time
	Query     string // ad hoc expression, e.g. `ConfirmedRegistrationsCount > 5 and "Gala" in Name`
}

// Event represents an event at the port boundary.
type Event struct {
	ID                          int
	Name                        string
	StartDate                   string
	Start                       time.Time // zero when StartDate is unparseable
	Location                    string
	ConfirmedRegistrationsCount int
	RegistrationsLimit          int
	Raw                         map[string]any
}

// EventDetail represents an event with its registration configuration.
type EventDetail struct {
	Event
	AccessLevel          string
	AvailableForAnyLevel bool
	Levels               []NamedID
	AvailableForAnyGroup bool
	Groups               []NamedID
	RegistrationTypes    []NamedID
	AutoRegisterTypeName string // empty when not exactly one auto-register type exists
}

// NamedID is an ID/name pair.
type NamedID struct {
	ID   int
	Name string
}
