// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
)

// ErrOutcomeUnknown marks a mutation whose remote effect cannot be determined,
// e.g. a timeout after the request was sent. The call may have succeeded.
var ErrOutcomeUnknown = errors.New("outcome unknown")

// WildApricotClient defines the secondary port for the membership API.
type WildApricotClient interface {
	// FetchAccounts retrieves the accounts visible to the credentials.
	FetchAccounts(ctx context.Context) ([]*AccountRecord, error)

	// FetchEvents retrieves the events of an account.
	FetchEvents(ctx context.Context, accountID int) ([]*EventRecord, error)

	// FetchEvent retrieves one event including access control and registration types.
	FetchEvent(ctx context.Context, accountID, eventID int) (*EventRecord, error)

	// FetchRegistrants retrieves the current registrations of an event.
	FetchRegistrants(ctx context.Context, accountID, eventID int) ([]*RegistrantRecord, error)

	// FetchContacts retrieves all non-archived contacts of an account.
	FetchContacts(ctx context.Context, accountID int) ([]*ContactRecord, error)

	// FetchMembershipLevels retrieves the account's membership level catalog.
	FetchMembershipLevels(ctx context.Context, accountID int) ([]*MembershipLevelRecord, error)

	// FetchMemberGroups retrieves the account's member group catalog.
	FetchMemberGroups(ctx context.Context, accountID int) ([]*MemberGroupRecord, error)

	// SubmitRegistration registers one contact for an event. One HTTP call per invocation.
	SubmitRegistration(ctx context.Context, req RegistrationSubmission) error

	// IsRegistered reports whether a contact already holds a registration for an event.
	IsRegistered(ctx context.Context, accountID, eventID, contactID int) (bool, error)
}

// RegistrationSubmission identifies one registration call.
type RegistrationSubmission struct {
	AccountID          int
	EventID            int
	ContactID          int
	RegistrationTypeID int
}

// AccountRecord represents an account as returned by the API.
type AccountRecord struct {
	ID                int
	Name              string
	PrimaryDomainName string
	ContactLimit      int
	ContactCount      int
}

// EventRecord represents an event as returned by the API.
type EventRecord struct {
	ID                          int
	Name                        string
	StartDate                   string // RFC 3339, empty when unknown
	EndDate                     string
	Location                    string
	RegistrationEnabled         bool
	ConfirmedRegistrationsCount int
	RegistrationsLimit          int // 0 means unlimited
	AccessControl               *AccessControlRecord
	RegistrationTypes           []RegistrationTypeRecord
	// Fields holds the raw JSON object for ad hoc queries.
	Fields map[string]any
}

// AccessControlRecord represents an event's access control section.
type AccessControlRecord struct {
	AccessLevel          string // Public, Restricted, AdminOnly
	AvailableForAnyLevel bool
	AvailableForLevels   []int
	AvailableForAnyGroup bool
	AvailableForGroups   []int
}

// RegistrationTypeRecord represents an event registration type.
type RegistrationTypeRecord struct {
	ID          int
	Name        string
	IsEnabled   bool
	Description string
}

// RegistrantRecord represents an existing event registration.
type RegistrantRecord struct {
	ID                 int
	ContactID          int
	DisplayName        string
	RegistrationTypeID int
	Status             string
}

// ContactRecord represents a contact as returned by the API.
type ContactRecord struct {
	ID                  int              `json:"id"`
	DisplayName         string           `json:"display_name"`
	Email               string           `json:"email,omitempty"`
	MembershipLevelID   *int             `json:"membership_level_id,omitempty"`
	MembershipLevelName string           `json:"membership_level_name,omitempty"`
	Status              string           `json:"status,omitempty"`
	FieldValues         []FieldValueItem `json:"field_values,omitempty"`
}

// FieldValueItem is one custom field of a contact.
// RefIDs holds referenced object IDs when the value is a list of references (e.g. groups).
type FieldValueItem struct {
	FieldName  string `json:"field_name"`
	SystemCode string `json:"system_code,omitempty"`
	RefIDs     []int  `json:"ref_ids,omitempty"`
}

// MembershipLevelRecord represents a membership level.
type MembershipLevelRecord struct {
	ID   int
	Name string
}

// MemberGroupRecord represents a member group.
type MemberGroupRecord struct {
	ID           int
	Name         string
	Description  string
	ContactCount int
}
