package app

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/example/watools/internal/core/registration"
	"github.com/example/watools/internal/logging"
	"github.com/example/watools/internal/ports/primary"
	"github.com/example/watools/internal/ports/secondary"
)

// newSyncFixture builds a client for an event restricted to level 10 and group 7.
// Contacts:
//
//	1 Active, level 10      eligible
//	2 Lapsed, group 7       eligible
//	3 Active, level 10      eligible, already registered
//	4 Active, level 20      not eligible
//	5 PendingNew, level 10  eligible
func newSyncFixture() *mockClient {
	return &mockClient{
		fetchEventFn: func(ctx context.Context, accountID, eventID int) (*secondary.EventRecord, error) {
			return &secondary.EventRecord{
				ID:   eventID,
				Name: "Spring Gala",
				AccessControl: &secondary.AccessControlRecord{
					AccessLevel:        "Restricted",
					AvailableForLevels: []int{10},
					AvailableForGroups: []int{7},
				},
				RegistrationTypes: []secondary.RegistrationTypeRecord{
					{ID: 500, Name: "Guest"},
					{ID: 501, Name: "Member Auto-Register"},
				},
			}, nil
		},
		fetchMembershipLevelsFn: func(ctx context.Context, accountID int) ([]*secondary.MembershipLevelRecord, error) {
			return []*secondary.MembershipLevelRecord{{ID: 10, Name: "Gold"}, {ID: 20, Name: "Silver"}}, nil
		},
		fetchMemberGroupsFn: func(ctx context.Context, accountID int) ([]*secondary.MemberGroupRecord, error) {
			return []*secondary.MemberGroupRecord{{ID: 7, Name: "Rowers"}}, nil
		},
		fetchContactsFn: func(ctx context.Context, accountID int) ([]*secondary.ContactRecord, error) {
			return []*secondary.ContactRecord{
				{ID: 1, Status: "Active", MembershipLevelID: intPtr(10)},
				{ID: 2, Status: "Lapsed", FieldValues: []secondary.FieldValueItem{{SystemCode: "Groups", RefIDs: []int{7}}}},
				{ID: 3, Status: "Active", MembershipLevelID: intPtr(10)},
				{ID: 4, Status: "Active", MembershipLevelID: intPtr(20)},
				{ID: 5, Status: "PendingNew", MembershipLevelID: intPtr(10)},
			}, nil
		},
		fetchRegistrantsFn: func(ctx context.Context, accountID, eventID int) ([]*secondary.RegistrantRecord, error) {
			return []*secondary.RegistrantRecord{{ID: 900, ContactID: 3}}, nil
		},
	}
}

func newTestRegistrationService(client *mockClient, opts RegistrationServiceOptions) *RegistrationServiceImpl {
	if opts.Sleep == nil {
		opts.Sleep = (&recordingSleep{}).sleep
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return "run-1" }
	}
	loader := NewContactLoader(client, nil, 0, logging.Discard())
	return NewRegistrationService(client, loader, logging.Discard(), opts)
}

func bucketsByStatus(resp *primary.SyncRegistrantsResponse) map[string]primary.StatusBucket {
	m := make(map[string]primary.StatusBucket)
	for _, b := range resp.Buckets {
		m[b.Status] = b
	}
	return m
}

func TestSyncRegistrants_DryRun(t *testing.T) {
	client := newSyncFixture()
	metrics := newMockMetrics()
	service := newTestRegistrationService(client, RegistrationServiceOptions{Metrics: metrics})

	resp, err := service.SyncRegistrants(context.Background(), primary.SyncRegistrantsRequest{AccountID: 1, EventID: 77})
	if err != nil {
		t.Fatalf("SyncRegistrants failed: %v", err)
	}

	if len(client.submissions) != 0 {
		t.Errorf("dry run submitted %d registrations", len(client.submissions))
	}
	if resp.RunID != "" || resp.Confirmed {
		t.Errorf("dry run should not start a run: %+v", resp)
	}
	if resp.RegistrationTypeName != "Member Auto-Register" || resp.RegistrationTypeID != 501 {
		t.Errorf("unexpected registration type %d %q", resp.RegistrationTypeID, resp.RegistrationTypeName)
	}
	if resp.EligibleCount != 4 || resp.AlreadyRegisteredCount != 1 || resp.PendingCount != 3 {
		t.Errorf("unexpected counts: eligible=%d registered=%d pending=%d", resp.EligibleCount, resp.AlreadyRegisteredCount, resp.PendingCount)
	}

	var statuses []string
	for _, b := range resp.Buckets {
		statuses = append(statuses, b.Status)
		if !b.Selected {
			t.Errorf("bucket %s should be selected with no filter", b.Status)
		}
	}
	if !reflect.DeepEqual(statuses, []string{"Active", "Lapsed", "PendingNew"}) {
		t.Errorf("bucket order = %v", statuses)
	}
	if metrics.pending["Active"] != 1 || metrics.pending["Lapsed"] != 1 {
		t.Errorf("pending metrics not set: %v", metrics.pending)
	}
}

func TestSyncRegistrants_ConfirmWithStatusFilter(t *testing.T) {
	client := newSyncFixture()
	runs := newMockRunRepo()
	metrics := newMockMetrics()
	service := newTestRegistrationService(client, RegistrationServiceOptions{Runs: runs, Metrics: metrics})

	resp, err := service.SyncRegistrants(context.Background(), primary.SyncRegistrantsRequest{
		AccountID: 1,
		EventID:   77,
		Statuses:  []string{"active", "Lapsed"},
		Confirm:   true,
	})
	if err != nil {
		t.Fatalf("SyncRegistrants failed: %v", err)
	}

	if got := client.submittedContacts(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("submitted %v, want [1 2]", got)
	}
	for _, sub := range client.submissions {
		if sub.RegistrationTypeID != 501 || sub.EventID != 77 {
			t.Errorf("unexpected submission %+v", sub)
		}
	}

	buckets := bucketsByStatus(resp)
	if buckets["PendingNew"].Selected || len(buckets["PendingNew"].Succeeded) != 0 {
		t.Errorf("PendingNew should be reported but not processed: %+v", buckets["PendingNew"])
	}
	if !reflect.DeepEqual(buckets["Active"].Succeeded, []int{1}) {
		t.Errorf("Active succeeded = %v", buckets["Active"].Succeeded)
	}
	if resp.TotalSucceeded() != 2 || resp.TotalFailed() != 0 {
		t.Errorf("totals = %d/%d", resp.TotalSucceeded(), resp.TotalFailed())
	}

	if resp.RunID != "run-1" || len(runs.runs) != 1 {
		t.Fatalf("expected run-1 recorded, got %q and %d runs", resp.RunID, len(runs.runs))
	}
	if runs.runs[0].Statuses != "Active,Lapsed" || runs.runs[0].Pending != 2 {
		t.Errorf("unexpected run record %+v", runs.runs[0])
	}
	if runs.finished["run-1"] != [2]int{2, 0} {
		t.Errorf("run not finished with counts: %v", runs.finished)
	}
	if metrics.contacts["Active/succeeded"] != 1 || metrics.contacts["Lapsed/succeeded"] != 1 {
		t.Errorf("contact metrics: %v", metrics.contacts)
	}
}

func TestSyncRegistrants_PartialFailure(t *testing.T) {
	client := newSyncFixture()
	client.submitRegistrationFn = func(ctx context.Context, req secondary.RegistrationSubmission) error {
		if req.ContactID == 2 {
			return errors.New("HTTP 400")
		}
		return nil
	}
	runs := newMockRunRepo()
	service := newTestRegistrationService(client, RegistrationServiceOptions{Runs: runs})

	resp, err := service.SyncRegistrants(context.Background(), primary.SyncRegistrantsRequest{AccountID: 1, EventID: 77, Confirm: true})
	if err != nil {
		t.Fatalf("partial failure must not be an error: %v", err)
	}

	if resp.TotalSucceeded() != 2 || resp.TotalFailed() != 1 {
		t.Errorf("totals = %d/%d, want 2/1", resp.TotalSucceeded(), resp.TotalFailed())
	}
	if !reflect.DeepEqual(bucketsByStatus(resp)["Lapsed"].Failed, []int{2}) {
		t.Errorf("Lapsed failed = %v", bucketsByStatus(resp)["Lapsed"].Failed)
	}
	if runs.finished["run-1"] != [2]int{2, 1} {
		t.Errorf("run finish counts = %v", runs.finished["run-1"])
	}
	// 1 attempt each for contacts 1 and 5, 3 for contact 2
	if len(runs.attempts) != 5 {
		t.Errorf("expected 5 logged attempts, got %d", len(runs.attempts))
	}
}

func TestSyncRegistrants_RunLogFailureDoesNotBlock(t *testing.T) {
	client := newSyncFixture()
	runs := newMockRunRepo()
	runs.createErr = errors.New("disk full")
	service := newTestRegistrationService(client, RegistrationServiceOptions{Runs: runs})

	resp, err := service.SyncRegistrants(context.Background(), primary.SyncRegistrantsRequest{AccountID: 1, EventID: 77, Confirm: true})
	if err != nil {
		t.Fatalf("SyncRegistrants failed: %v", err)
	}
	if resp.TotalSucceeded() != 3 {
		t.Errorf("expected 3 registrations, got %d", resp.TotalSucceeded())
	}
	if len(runs.attempts) != 0 {
		t.Errorf("attempts logged for unrecorded run: %d", len(runs.attempts))
	}
}

func TestSyncRegistrants_InvalidStatus(t *testing.T) {
	service := newTestRegistrationService(newSyncFixture(), RegistrationServiceOptions{})

	_, err := service.SyncRegistrants(context.Background(), primary.SyncRegistrantsRequest{AccountID: 1, EventID: 77, Statuses: []string{"Expired"}})
	if err == nil || !strings.Contains(err.Error(), `invalid status "Expired"`) {
		t.Fatalf("expected invalid status error, got %v", err)
	}
}

func TestSyncRegistrants_FetchErrors(t *testing.T) {
	boom := errors.New("HTTP 503")
	tests := []struct {
		name    string
		breakFn func(c *mockClient)
		wantOp  string
	}{
		{"event", func(c *mockClient) {
			c.fetchEventFn = func(ctx context.Context, a, e int) (*secondary.EventRecord, error) { return nil, boom }
		}, "fetch event"},
		{"levels", func(c *mockClient) {
			c.fetchMembershipLevelsFn = func(ctx context.Context, a int) ([]*secondary.MembershipLevelRecord, error) { return nil, boom }
		}, "fetch membership levels"},
		{"groups", func(c *mockClient) {
			c.fetchMemberGroupsFn = func(ctx context.Context, a int) ([]*secondary.MemberGroupRecord, error) { return nil, boom }
		}, "fetch member groups"},
		{"contacts", func(c *mockClient) {
			c.fetchContactsFn = func(ctx context.Context, a int) ([]*secondary.ContactRecord, error) { return nil, boom }
		}, "fetch contacts"},
		{"registrants", func(c *mockClient) {
			c.fetchRegistrantsFn = func(ctx context.Context, a, e int) ([]*secondary.RegistrantRecord, error) { return nil, boom }
		}, "fetch registrants"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newSyncFixture()
			tt.breakFn(client)
			service := newTestRegistrationService(client, RegistrationServiceOptions{})

			_, err := service.SyncRegistrants(context.Background(), primary.SyncRegistrantsRequest{AccountID: 1, EventID: 77, Confirm: true})

			var fetchErr *registration.UpstreamFetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected UpstreamFetchError, got %v", err)
			}
			if fetchErr.Op != tt.wantOp || !errors.Is(err, boom) {
				t.Errorf("unexpected error %v", err)
			}
			if len(client.submissions) != 0 {
				t.Error("no registration may happen after a fetch failure")
			}
		})
	}
}

func TestSyncRegistrants_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *secondary.EventRecord)
		wantErr string
	}{
		{
			name:    "no access control",
			mutate:  func(e *secondary.EventRecord) { e.AccessControl = nil },
			wantErr: "no access control section",
		},
		{
			name: "no auto-register type",
			mutate: func(e *secondary.EventRecord) {
				e.RegistrationTypes = []secondary.RegistrationTypeRecord{{ID: 1, Name: "Guest"}}
			},
			wantErr: "not configured for auto-registration",
		},
		{
			name: "two auto-register types",
			mutate: func(e *secondary.EventRecord) {
				e.RegistrationTypes = append(e.RegistrationTypes, secondary.RegistrationTypeRecord{ID: 502, Name: "auto-register (staff)"})
			},
			wantErr: "ambiguous auto-register type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newSyncFixture()
			fetch := client.fetchEventFn
			client.fetchEventFn = func(ctx context.Context, a, e int) (*secondary.EventRecord, error) {
				ev, _ := fetch(ctx, a, e)
				tt.mutate(ev)
				return ev, nil
			}
			service := newTestRegistrationService(client, RegistrationServiceOptions{})

			_, err := service.SyncRegistrants(context.Background(), primary.SyncRegistrantsRequest{AccountID: 1, EventID: 77, Confirm: true})

			var cfgErr *registration.ConfigurationError
			if !errors.As(err, &cfgErr) || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected ConfigurationError containing %q, got %v", tt.wantErr, err)
			}
			if len(client.submissions) != 0 {
				t.Error("no registration may happen on a configuration error")
			}
		})
	}
}

func TestSyncRegistrants_AnyLevelUsesCatalog(t *testing.T) {
	client := newSyncFixture()
	fetch := client.fetchEventFn
	client.fetchEventFn = func(ctx context.Context, a, e int) (*secondary.EventRecord, error) {
		ev, _ := fetch(ctx, a, e)
		ev.AccessControl.AvailableForAnyLevel = true
		return ev, nil
	}
	service := newTestRegistrationService(client, RegistrationServiceOptions{})

	resp, err := service.SyncRegistrants(context.Background(), primary.SyncRegistrantsRequest{AccountID: 1, EventID: 77})
	if err != nil {
		t.Fatalf("SyncRegistrants failed: %v", err)
	}
	// contact 4 (Silver) becomes eligible
	if resp.EligibleCount != 5 || resp.PendingCount != 4 {
		t.Errorf("eligible=%d pending=%d, want 5/4", resp.EligibleCount, resp.PendingCount)
	}
}

func TestListRuns(t *testing.T) {
	runs := newMockRunRepo()
	runs.runs = []*secondary.RegistrationRunRecord{
		{ID: "a", EventID: 1, Succeeded: 3},
		{ID: "b", EventID: 2, Failed: 1},
	}
	service := newTestRegistrationService(&mockClient{}, RegistrationServiceOptions{Runs: runs})

	got, err := service.ListRuns(context.Background(), primary.RegistrationRunFilters{EventID: 2})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b" || got[0].Failed != 1 {
		t.Errorf("unexpected runs %+v", got)
	}
}

func TestListRuns_NoRunLog(t *testing.T) {
	service := newTestRegistrationService(&mockClient{}, RegistrationServiceOptions{})

	got, err := service.ListRuns(context.Background(), primary.RegistrationRunFilters{})
	if err != nil || got != nil {
		t.Errorf("expected empty result, got %v %v", got, err)
	}
}
