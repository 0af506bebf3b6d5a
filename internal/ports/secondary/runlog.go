package secondary

import "context"

// RegistrationRunRepository defines the secondary port for the registration audit log.
// Every confirmed sync creates a run; every submission attempt is recorded under it.
type RegistrationRunRepository interface {
	// CreateRun persists a new run.
	CreateRun(ctx context.Context, run *RegistrationRunRecord) error

	// RecordAttempt persists one registration attempt.
	RecordAttempt(ctx context.Context, attempt *RegistrationAttemptRecord) error

	// FinishRun stores the final counts of a run.
	FinishRun(ctx context.Context, runID string, succeeded, failed int) error

	// ListRuns retrieves runs, newest first.
	ListRuns(ctx context.Context, filters RegistrationRunFilters) ([]*RegistrationRunRecord, error)

	// ListAttempts retrieves the attempts of a run in insertion order.
	ListAttempts(ctx context.Context, runID string) ([]*RegistrationAttemptRecord, error)
}

// RegistrationRunRecord represents a registration run as stored in persistence.
type RegistrationRunRecord struct {
	ID                 string
	AccountID          int
	EventID            int
	EventName          string
	RegistrationTypeID int
	Statuses           string // comma-separated status filter
	Pending            int
	Succeeded          int
	Failed             int
	StartedAt          string
	FinishedAt         string // Empty string means null
}

// RegistrationAttemptRecord represents one submission attempt.
type RegistrationAttemptRecord struct {
	RunID     string
	ContactID int
	Attempt   int
	Outcome   string // success, failed, verified
	Error     string // Empty string means null
	CreatedAt string
}

// Attempt outcome values.
const (
	AttemptSucceeded = "success"
	AttemptFailed    = "failed"
	AttemptVerified  = "verified"
)

// RegistrationRunFilters contains filter options for listing runs.
type RegistrationRunFilters struct {
	EventID int
	Limit   int
}
