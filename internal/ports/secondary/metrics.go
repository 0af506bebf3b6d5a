package secondary

// RegistrationMetrics defines the secondary port for registration counters.
type RegistrationMetrics interface {
	// ObserveAttempt counts one submission attempt with its outcome.
	ObserveAttempt(outcome string)

	// ObserveContact counts one contact's final result within a status bucket.
	ObserveContact(status string, succeeded bool)

	// SetPending records the number of contacts awaiting registration per status.
	SetPending(status string, count int)
}
