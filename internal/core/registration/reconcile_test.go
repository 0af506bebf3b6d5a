package registration

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

var autoType = []RegistrationType{
	{ID: 100, Name: "Member"},
	{ID: 101, Name: "Auto-Register"},
}

func TestReconcile_ExcludesRegistrants(t *testing.T) {
	contacts := []Contact{
		{ID: 1, Status: StatusActive},
		{ID: 2, Status: StatusActive},
		{ID: 3, Status: StatusLapsed},
	}

	plan, err := Reconcile(ReconcileInput{
		Eligible:          NewIDSet(1, 2, 3),
		Registrants:       []Registrant{{ContactID: 2}, {ContactID: 42}},
		Contacts:          contacts,
		StatusFilter:      AllStatuses,
		RegistrationTypes: autoType,
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	for _, ids := range plan.Buckets {
		for _, id := range ids {
			if id == 2 {
				t.Error("registered contact 2 present in pending buckets")
			}
		}
	}
	if plan.PendingCount != 2 {
		t.Errorf("PendingCount = %d, want 2", plan.PendingCount)
	}
	if plan.AlreadyRegisteredCount != 1 {
		t.Errorf("AlreadyRegisteredCount = %d, want 1", plan.AlreadyRegisteredCount)
	}
	if plan.EligibleCount != 3 {
		t.Errorf("EligibleCount = %d, want 3", plan.EligibleCount)
	}
	if plan.RegistrationType.ID != 101 {
		t.Errorf("RegistrationType = %d, want 101", plan.RegistrationType.ID)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	in := ReconcileInput{
		Eligible:          NewIDSet(1, 2, 3, 4),
		Registrants:       []Registrant{{ContactID: 4}},
		Contacts:          []Contact{{ID: 4}, {ID: 3, Status: StatusPendingNew}, {ID: 1, Status: StatusActive}, {ID: 2}},
		StatusFilter:      AllStatuses,
		RegistrationTypes: autoType,
	}

	first, err := Reconcile(in)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	second, err := Reconcile(in)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("plans differ:\n%+v\n%+v", first, second)
	}
}

func TestReconcile_StatusFilter(t *testing.T) {
	contacts := []Contact{
		{ID: 1, Status: StatusActive},
		{ID: 2, Status: StatusActive},
		{ID: 3, Status: StatusLapsed},
	}

	plan, err := Reconcile(ReconcileInput{
		Eligible:          NewIDSet(1, 2, 3),
		Contacts:          contacts,
		StatusFilter:      []Status{StatusActive},
		RegistrationTypes: autoType,
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	wantAll := StatusBuckets{StatusActive: {1, 2}, StatusLapsed: {3}}
	if !reflect.DeepEqual(plan.Buckets, wantAll) {
		t.Errorf("Buckets = %v, want %v", plan.Buckets, wantAll)
	}

	wantProcess := StatusBuckets{StatusActive: {1, 2}}
	if !reflect.DeepEqual(plan.ToProcess, wantProcess) {
		t.Errorf("ToProcess = %v, want %v", plan.ToProcess, wantProcess)
	}
}

func TestReconcile_EmptyFilterProcessesNothing(t *testing.T) {
	plan, err := Reconcile(ReconcileInput{
		Eligible:          NewIDSet(1),
		Contacts:          []Contact{{ID: 1, Status: StatusActive}},
		RegistrationTypes: autoType,
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if plan.ToProcess.Total() != 0 {
		t.Errorf("ToProcess total = %d, want 0", plan.ToProcess.Total())
	}
	if plan.Buckets.Total() != 1 {
		t.Errorf("Buckets total = %d, want 1", plan.Buckets.Total())
	}
}

func TestBucketByStatus_UnknownAndOrder(t *testing.T) {
	contacts := []Contact{
		{ID: 5, Status: "Suspended"},
		{ID: 3, Status: StatusPendingRenewal},
		{ID: 1, Status: ""},
		{ID: 4, Status: StatusPendingRenewal},
		{ID: 9, Status: StatusActive}, // not pending
	}

	buckets := BucketByStatus(NewIDSet(1, 3, 4, 5), contacts)

	want := StatusBuckets{
		StatusUnknown:        {5, 1},
		StatusPendingRenewal: {3, 4},
	}
	if !reflect.DeepEqual(buckets, want) {
		t.Errorf("BucketByStatus = %v, want %v", buckets, want)
	}
	if got := buckets.Statuses(); !reflect.DeepEqual(got, []Status{StatusPendingRenewal, StatusUnknown}) {
		t.Errorf("Statuses = %v", got)
	}
}

func TestBucketByStatus_DuplicateContacts(t *testing.T) {
	contacts := []Contact{
		{ID: 1, Status: StatusActive},
		{ID: 1, Status: StatusActive},
	}
	buckets := BucketByStatus(NewIDSet(1), contacts)
	if len(buckets[StatusActive]) != 1 {
		t.Errorf("contact bucketed %d times, want 1", len(buckets[StatusActive]))
	}
}

func TestSelectAutoRegisterType(t *testing.T) {
	tests := []struct {
		name       string
		types      []RegistrationType
		wantID     int
		wantErr    bool
		wantReason string
	}{
		{
			name:   "single match",
			types:  []RegistrationType{{ID: 1, Name: "Guest"}, {ID: 2, Name: "Members (auto-register)"}},
			wantID: 2,
		},
		{
			name:   "case-insensitive match",
			types:  []RegistrationType{{ID: 3, Name: "AUTO-REGISTER"}},
			wantID: 3,
		},
		{
			name:       "no match",
			types:      []RegistrationType{{ID: 1, Name: "Guest"}, {ID: 2, Name: "Auto register"}},
			wantErr:    true,
			wantReason: "event is not configured for auto-registration",
		},
		{
			name:       "no registration types",
			types:      nil,
			wantErr:    true,
			wantReason: "event is not configured for auto-registration",
		},
		{
			name:       "two matches",
			types:      []RegistrationType{{ID: 1, Name: "Auto-Register 2024"}, {ID: 2, Name: "AUTO-REGISTER-VIP"}},
			wantErr:    true,
			wantReason: "ambiguous auto-register type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectAutoRegisterType(tt.types)
			if tt.wantErr {
				var cfgErr *ConfigurationError
				if !errors.As(err, &cfgErr) {
					t.Fatalf("expected ConfigurationError, got %v", err)
				}
				if !strings.Contains(cfgErr.Reason, tt.wantReason) {
					t.Errorf("Reason = %q, want to contain %q", cfgErr.Reason, tt.wantReason)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != tt.wantID {
				t.Errorf("ID = %d, want %d", got.ID, tt.wantID)
			}
		})
	}
}

func TestReconcile_AmbiguousTypeIsFatal(t *testing.T) {
	_, err := Reconcile(ReconcileInput{
		Eligible: NewIDSet(1),
		Contacts: []Contact{{ID: 1, Status: StatusActive}},
		RegistrationTypes: []RegistrationType{
			{ID: 1, Name: "Auto-Register 2024"},
			{ID: 2, Name: "AUTO-REGISTER-VIP"},
		},
		StatusFilter: AllStatuses,
	})

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestValidateStatuses(t *testing.T) {
	got, err := ValidateStatuses([]string{"active", "Lapsed", "ACTIVE"})
	if err != nil {
		t.Fatalf("ValidateStatuses failed: %v", err)
	}
	want := []Status{StatusActive, StatusLapsed}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ValidateStatuses = %v, want %v", got, want)
	}

	if _, err := ValidateStatuses([]string{"Archived"}); err == nil {
		t.Error("expected error for status outside the enum")
	}
}

func TestParseStatus(t *testing.T) {
	if ParseStatus("pendingnew") != StatusPendingNew {
		t.Error("expected case-insensitive parse")
	}
	if ParseStatus("Suspended") != StatusUnknown {
		t.Error("expected unknown for unrecognized status")
	}
}
