package app

import (
	"context"
	"errors"
	"time"

	"github.com/example/watools/internal/core/registration"
	"github.com/example/watools/internal/logging"
	"github.com/example/watools/internal/ports/secondary"
)

// BulkOptions configures retry pacing.
type BulkOptions struct {
	Delay      time.Duration
	MaxRetries int
}

// DefaultBulkOptions returns a 500ms delay and 3 attempts per contact.
func DefaultBulkOptions() BulkOptions {
	return BulkOptions{Delay: 500 * time.Millisecond, MaxRetries: 3}
}

// BulkResult partitions the input contacts by outcome, in input order.
type BulkResult struct {
	Succeeded []int
	Failed    []int
}

// RegistrationVerifier answers whether a contact is already registered.
// Consulted before retrying an attempt whose outcome is unknown.
type RegistrationVerifier interface {
	IsRegistered(ctx context.Context, accountID, eventID, contactID int) (bool, error)
}

// BulkRegistrar registers contacts one at a time with fixed-delay retries.
// A contact that exhausts its attempts is recorded as failed; the batch always continues.
type BulkRegistrar struct {
	client    secondary.WildApricotClient
	accountID int
	opts      BulkOptions
	log       *logging.Logger
	sleep     func(ctx context.Context, d time.Duration) error
	verifier  RegistrationVerifier
	runs      secondary.RegistrationRunRepository
	runID     string
	metrics   secondary.RegistrationMetrics
}

// NewBulkRegistrar creates a registrar for one account.
func NewBulkRegistrar(client secondary.WildApricotClient, accountID int, opts BulkOptions, log *logging.Logger) *BulkRegistrar {
	defaults := DefaultBulkOptions()
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaults.MaxRetries
	}
	if opts.Delay < 0 {
		opts.Delay = defaults.Delay
	}
	return &BulkRegistrar{
		client:    client,
		accountID: accountID,
		opts:      opts,
		log:       log,
		sleep:     sleepContext,
		metrics:   nopMetrics{},
	}
}

// WithSleep replaces the delay function.
func (r *BulkRegistrar) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *BulkRegistrar {
	r.sleep = sleep
	return r
}

// WithVerifier enables verify-before-retry for ambiguous failures.
func (r *BulkRegistrar) WithVerifier(v RegistrationVerifier) *BulkRegistrar {
	r.verifier = v
	return r
}

// WithRunLog records every attempt under runID.
func (r *BulkRegistrar) WithRunLog(runs secondary.RegistrationRunRepository, runID string) *BulkRegistrar {
	r.runs = runs
	r.runID = runID
	return r
}

// WithMetrics counts attempts.
func (r *BulkRegistrar) WithMetrics(m secondary.RegistrationMetrics) *BulkRegistrar {
	r.metrics = m
	return r
}

type nopMetrics struct{}

func (nopMetrics) ObserveAttempt(string)       {}
func (nopMetrics) ObserveContact(string, bool) {}
func (nopMetrics) SetPending(string, int)      {}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RegisterBulk registers each contact for the event with the given registration type.
func (r *BulkRegistrar) RegisterBulk(ctx context.Context, contactIDs []int, eventID, registrationTypeID int) BulkResult {
	r.log.Infof("Starting registration of %d contacts...", len(contactIDs))

	var result BulkResult
	for i, contactID := range contactIDs {
		if r.registerOne(ctx, i+1, contactID, eventID, registrationTypeID) {
			result.Succeeded = append(result.Succeeded, contactID)
		} else {
			result.Failed = append(result.Failed, contactID)
		}
		r.pause(ctx)
	}

	r.log.Infof("Registration complete: %d succeeded, %d failed.", len(result.Succeeded), len(result.Failed))
	return result
}

func (r *BulkRegistrar) registerOne(ctx context.Context, index, contactID, eventID, registrationTypeID int) bool {
	var lastErr error
	for attempt := 1; attempt <= r.opts.MaxRetries; attempt++ {
		if r.verify(ctx, lastErr, index, contactID, eventID, attempt) {
			return true
		}

		err := r.client.SubmitRegistration(ctx, secondary.RegistrationSubmission{
			AccountID:          r.accountID,
			EventID:            eventID,
			ContactID:          contactID,
			RegistrationTypeID: registrationTypeID,
		})
		if err == nil {
			r.log.Debugf("[%d] Registered contact %d (attempt %d)", index, contactID, attempt)
			r.record(ctx, contactID, attempt, secondary.AttemptSucceeded, nil)
			return true
		}

		attemptErr := &registration.RegistrationAttemptError{ContactID: contactID, Attempt: attempt, Err: err}
		r.log.Warnf("[%d] %v", index, attemptErr)
		r.record(ctx, contactID, attempt, secondary.AttemptFailed, err)
		lastErr = err
		r.pause(ctx)
	}

	// the last attempt may have landed too
	if r.verify(ctx, lastErr, index, contactID, eventID, r.opts.MaxRetries+1) {
		return true
	}

	r.log.Errorf("[%d] Gave up on contact %d after %d attempts.", index, contactID, r.opts.MaxRetries)
	return false
}

// verify asks the API whether an ambiguous failure actually registered the contact.
func (r *BulkRegistrar) verify(ctx context.Context, lastErr error, index, contactID, eventID, attempt int) bool {
	if r.verifier == nil || !errors.Is(lastErr, secondary.ErrOutcomeUnknown) {
		return false
	}
	registered, err := r.verifier.IsRegistered(ctx, r.accountID, eventID, contactID)
	if err != nil {
		r.log.Warnf("[%d] Could not verify contact %d after ambiguous failure: %v", index, contactID, err)
		return false
	}
	if !registered {
		return false
	}
	r.log.Debugf("[%d] Contact %d was registered by the previous attempt", index, contactID)
	r.record(ctx, contactID, attempt, secondary.AttemptVerified, nil)
	return true
}

func (r *BulkRegistrar) record(ctx context.Context, contactID, attempt int, outcome string, attemptErr error) {
	r.metrics.ObserveAttempt(outcome)
	if r.runs == nil {
		return
	}

	rec := &secondary.RegistrationAttemptRecord{
		RunID:     r.runID,
		ContactID: contactID,
		Attempt:   attempt,
		Outcome:   outcome,
	}
	if attemptErr != nil {
		rec.Error = attemptErr.Error()
	}
	if err := r.runs.RecordAttempt(ctx, rec); err != nil {
		r.log.Warnf("failed to record attempt for contact %d: %v", contactID, err)
	}
}

// pause waits the configured delay. Batches are not cancelled mid-way, so
// an interrupted sleep is only logged.
func (r *BulkRegistrar) pause(ctx context.Context) {
	if err := r.sleep(ctx, r.opts.Delay); err != nil {
		r.log.Tracef("delay interrupted: %v", err)
	}
}
