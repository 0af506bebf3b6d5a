// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the CLI drives the application.
package primary

import "context"

// RegistrationService defines the primary port for event auto-registration.
type RegistrationService interface {
	// SyncRegistrants reconciles an event's eligible audience against its
	// registrants. Without Confirm it only reports the plan (dry run); with
	// Confirm it registers every pending contact in the selected statuses.
	SyncRegistrants(ctx context.Context, req SyncRegistrantsRequest) (*SyncRegistrantsResponse, error)

	// ListRuns lists recorded registration runs.
	ListRuns(ctx context.Context, filters RegistrationRunFilters) ([]*RegistrationRun, error)
}

// SyncRegistrantsRequest contains parameters for a sync.
type SyncRegistrantsRequest struct {
	AccountID      int
	EventID        int
	Statuses       []string // empty means every status
	Confirm        bool
	ReloadContacts bool // bypass the contact cache
}

// SyncRegistrantsResponse contains the plan and, for confirmed runs, the outcome.
type SyncRegistrantsResponse struct {
	RunID                  string // empty for dry runs
	EventID                int
	EventName              string
	RegistrationTypeID     int
	RegistrationTypeName   string
	EligibleCount          int
	AlreadyRegisteredCount int
	PendingCount           int
	Confirmed              bool
	Buckets                []StatusBucket
}

// StatusBucket is the pending set of one membership status.
type StatusBucket struct {
	Status    string
	Pending   int
	Selected  bool  // inside the status filter
	Succeeded []int // populated for confirmed runs
	Failed    []int
}

// TotalSucceeded returns the number of contacts registered across buckets.
func (r *SyncRegistrantsResponse) TotalSucceeded() int {
	n := 0
	for _, b := range r.Buckets {
		n += len(b.Succeeded)
	}
	return n
}

// TotalFailed returns the number of contacts that could not be registered.
func (r *SyncRegistrantsResponse) TotalFailed() int {
	n := 0
	for _, b := range r.Buckets {
		n += len(b.Failed)
	}
	return n
}

// RegistrationRun represents a recorded confirmed sync.
type RegistrationRun struct {
	ID         string
	AccountID  int
	EventID    int
	EventName  string
	Statuses   string
	Pending    int
	Succeeded  int
	Failed     int
	StartedAt  string
	FinishedAt string
}

// RegistrationRunFilters contains filter options for listing runs.
type RegistrationRunFilters struct {
	EventID int
	Limit   int
}
