package registration

import "fmt"

// ConfigurationError reports event or account data that makes reconciliation
// impossible. It is fatal to the run and raised before any mutation.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// UpstreamFetchError wraps a failed fetch of one of the reconciliation inputs.
type UpstreamFetchError struct {
	Op  string // e.g. "fetch event", "fetch contacts"
	Err error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }

// RegistrationAttemptError describes one failed registration call.
// It never aborts a batch; the contact is retried or recorded as failed.
type RegistrationAttemptError struct {
	ContactID int
	Attempt   int
	Err       error
}

func (e *RegistrationAttemptError) Error() string {
	return fmt.Sprintf("attempt %d failed for contact %d: %v", e.Attempt, e.ContactID, e.Err)
}

func (e *RegistrationAttemptError) Unwrap() error { return e.Err }
