// Package app contains the application services that orchestrate the registration
// engine and the read-only account views.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/watools/internal/core/registration"
	"github.com/example/watools/internal/logging"
	"github.com/example/watools/internal/ports/primary"
	"github.com/example/watools/internal/ports/secondary"
)

// RegistrationServiceImpl implements the RegistrationService interface.
type RegistrationServiceImpl struct {
	client   secondary.WildApricotClient
	contacts *ContactLoader
	runs     secondary.RegistrationRunRepository // nil disables the run log
	metrics  secondary.RegistrationMetrics
	opts     BulkOptions
	verify   bool
	log      *logging.Logger

	sleep func(ctx context.Context, d time.Duration) error
	newID func() string
}

// RegistrationServiceOptions carries the optional collaborators of the service.
type RegistrationServiceOptions struct {
	Runs              secondary.RegistrationRunRepository
	Metrics           secondary.RegistrationMetrics
	Bulk              BulkOptions
	VerifyBeforeRetry bool
	Sleep             func(ctx context.Context, d time.Duration) error
	NewID             func() string
}

// NewRegistrationService creates a new RegistrationService with injected dependencies.
func NewRegistrationService(client secondary.WildApricotClient, contacts *ContactLoader, log *logging.Logger, opts RegistrationServiceOptions) *RegistrationServiceImpl {
	s := &RegistrationServiceImpl{
		client:   client,
		contacts: contacts,
		runs:     opts.Runs,
		metrics:  opts.Metrics,
		opts:     opts.Bulk,
		verify:   opts.VerifyBeforeRetry,
		log:      log,
		sleep:    opts.Sleep,
		newID:    opts.NewID,
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.sleep == nil {
		s.sleep = sleepContext
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// SyncRegistrants fetches the event, catalogs, contacts and registrants, builds
// the reconciliation plan and, when confirmed, registers the selected buckets.
func (s *RegistrationServiceImpl) SyncRegistrants(ctx context.Context, req primary.SyncRegistrantsRequest) (*primary.SyncRegistrantsResponse, error) {
	statusFilter, err := registration.ValidateStatuses(req.Statuses)
	if err != nil {
		return nil, err
	}
	if len(statusFilter) == 0 {
		statusFilter = registration.AllStatuses
	}

	event, err := s.client.FetchEvent(ctx, req.AccountID, req.EventID)
	if err != nil {
		return nil, &registration.UpstreamFetchError{Op: "fetch event", Err: err}
	}
	s.log.Debugf("Event %d: %s", event.ID, event.Name)

	levels, err := s.client.FetchMembershipLevels(ctx, req.AccountID)
	if err != nil {
		return nil, &registration.UpstreamFetchError{Op: "fetch membership levels", Err: err}
	}
	groups, err := s.client.FetchMemberGroups(ctx, req.AccountID)
	if err != nil {
		return nil, &registration.UpstreamFetchError{Op: "fetch member groups", Err: err}
	}

	levelIDs, groupIDs, err := registration.Resolve(
		toCoreAccessRule(event.AccessControl),
		registration.LevelIDs(toCoreLevels(levels)),
		registration.GroupIDs(toCoreGroups(groups)),
	)
	if err != nil {
		return nil, err
	}
	s.log.Debugf("Membership level ids: %v", levelIDs.Sorted())
	s.log.Debugf("Member group ids: %v", groupIDs.Sorted())

	contactRecords, err := s.contacts.Load(ctx, req.AccountID, req.ReloadContacts)
	if err != nil {
		return nil, &registration.UpstreamFetchError{Op: "fetch contacts", Err: err}
	}
	registrants, err := s.client.FetchRegistrants(ctx, req.AccountID, req.EventID)
	if err != nil {
		return nil, &registration.UpstreamFetchError{Op: "fetch registrants", Err: err}
	}

	contacts := toCoreContacts(contactRecords)
	eligible := registration.BuildEligible(contacts, levelIDs, groupIDs)

	plan, err := registration.Reconcile(registration.ReconcileInput{
		Eligible:          eligible,
		Registrants:       toCoreRegistrants(registrants),
		Contacts:          contacts,
		StatusFilter:      statusFilter,
		RegistrationTypes: toCoreRegistrationTypes(event.RegistrationTypes),
	})
	if err != nil {
		return nil, err
	}
	s.log.Debugf("Eligible: %d, already registered: %d, pending: %d",
		plan.EligibleCount, plan.AlreadyRegisteredCount, plan.PendingCount)

	resp := &primary.SyncRegistrantsResponse{
		EventID:                event.ID,
		EventName:              event.Name,
		RegistrationTypeID:     plan.RegistrationType.ID,
		RegistrationTypeName:   plan.RegistrationType.Name,
		EligibleCount:          plan.EligibleCount,
		AlreadyRegisteredCount: plan.AlreadyRegisteredCount,
		PendingCount:           plan.PendingCount,
		Confirmed:              req.Confirm,
	}
	bucketIndex := make(map[registration.Status]int)
	for _, st := range plan.Buckets.Statuses() {
		_, selected := plan.ToProcess[st]
		bucketIndex[st] = len(resp.Buckets)
		resp.Buckets = append(resp.Buckets, primary.StatusBucket{
			Status:   string(st),
			Pending:  len(plan.Buckets[st]),
			Selected: selected,
		})
		s.metrics.SetPending(string(st), len(plan.Buckets[st]))
		s.log.Debugf("Status: %s, Count: %d", st, len(plan.Buckets[st]))
	}

	if !req.Confirm {
		return resp, nil
	}

	runID, runs := s.startRun(ctx, req, event.Name, plan, statusFilter)
	resp.RunID = runID

	for _, st := range plan.Statuses() {
		registrar := NewBulkRegistrar(s.client, req.AccountID, s.opts, s.log).
			WithSleep(s.sleep).
			WithMetrics(s.metrics)
		if s.verify {
			registrar.WithVerifier(s.client)
		}
		if runs != nil {
			registrar.WithRunLog(runs, runID)
		}

		s.log.Infof("[%s] registering %d contacts", st, len(plan.ToProcess[st]))
		result := registrar.RegisterBulk(ctx, plan.ToProcess[st], event.ID, plan.RegistrationType.ID)

		b := &resp.Buckets[bucketIndex[st]]
		b.Succeeded = result.Succeeded
		b.Failed = result.Failed
		for range result.Succeeded {
			s.metrics.ObserveContact(string(st), true)
		}
		for range result.Failed {
			s.metrics.ObserveContact(string(st), false)
		}
	}

	if runs != nil {
		if err := runs.FinishRun(ctx, runID, resp.TotalSucceeded(), resp.TotalFailed()); err != nil {
			s.log.Warnf("failed to finish run %s: %v", runID, err)
		}
	}

	return resp, nil
}

// startRun allocates a run ID and records the run. The returned repository is
// nil when attempts should not be logged.
func (s *RegistrationServiceImpl) startRun(ctx context.Context, req primary.SyncRegistrantsRequest, eventName string, plan *registration.Plan, statuses []registration.Status) (string, secondary.RegistrationRunRepository) {
	runID := s.newID()
	if s.runs == nil {
		return runID, nil
	}

	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}

	err := s.runs.CreateRun(ctx, &secondary.RegistrationRunRecord{
		ID:                 runID,
		AccountID:          req.AccountID,
		EventID:            req.EventID,
		EventName:          eventName,
		RegistrationTypeID: plan.RegistrationType.ID,
		Statuses:           strings.Join(names, ","),
		Pending:            plan.ToProcess.Total(),
	})
	if err != nil {
		s.log.Warnf("failed to record run, continuing without run log: %v", err)
		return runID, nil
	}
	return runID, s.runs
}

// ListRuns lists recorded registration runs.
func (s *RegistrationServiceImpl) ListRuns(ctx context.Context, filters primary.RegistrationRunFilters) ([]*primary.RegistrationRun, error) {
	if s.runs == nil {
		return nil, nil
	}

	records, err := s.runs.ListRuns(ctx, secondary.RegistrationRunFilters{
		EventID: filters.EventID,
		Limit:   filters.Limit,
	})
	if err != nil {
		return nil, err
	}

	runs := make([]*primary.RegistrationRun, len(records))
	for i, r := range records {
		runs[i] = &primary.RegistrationRun{
			ID:         r.ID,
			AccountID:  r.AccountID,
			EventID:    r.EventID,
			EventName:  r.EventName,
			Statuses:   r.Statuses,
			Pending:    r.Pending,
			Succeeded:  r.Succeeded,
			Failed:     r.Failed,
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
		}
	}
	return runs, nil
}

// Ensure RegistrationServiceImpl implements the interface
var _ primary.RegistrationService = (*RegistrationServiceImpl)(nil)
