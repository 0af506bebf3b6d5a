package app

import (
	"context"
	"sync"
	"time"

	"github.com/example/watools/internal/ports/secondary"
)

// mockClient implements secondary.WildApricotClient for testing.
// Each method delegates to its Fn field when set.
type mockClient struct {
	fetchAccountsFn         func(ctx context.Context) ([]*secondary.AccountRecord, error)
	fetchEventsFn           func(ctx context.Context, accountID int) ([]*secondary.EventRecord, error)
	fetchEventFn            func(ctx context.Context, accountID, eventID int) (*secondary.EventRecord, error)
	fetchRegistrantsFn      func(ctx context.Context, accountID, eventID int) ([]*secondary.RegistrantRecord, error)
	fetchContactsFn         func(ctx context.Context, accountID int) ([]*secondary.ContactRecord, error)
	fetchMembershipLevelsFn func(ctx context.Context, accountID int) ([]*secondary.MembershipLevelRecord, error)
	fetchMemberGroupsFn     func(ctx context.Context, accountID int) ([]*secondary.MemberGroupRecord, error)
	submitRegistrationFn    func(ctx context.Context, req secondary.RegistrationSubmission) error
	isRegisteredFn          func(ctx context.Context, accountID, eventID, contactID int) (bool, error)

	mu                 sync.Mutex
	submissions        []secondary.RegistrationSubmission
	fetchContactsCalls int
}

var _ secondary.WildApricotClient = (*mockClient)(nil)

func (m *mockClient) FetchAccounts(ctx context.Context) ([]*secondary.AccountRecord, error) {
	if m.fetchAccountsFn != nil {
		return m.fetchAccountsFn(ctx)
	}
	return nil, nil
}

func (m *mockClient) FetchEvents(ctx context.Context, accountID int) ([]*secondary.EventRecord, error) {
	if m.fetchEventsFn != nil {
		return m.fetchEventsFn(ctx, accountID)
	}
	return nil, nil
}

func (m *mockClient) FetchEvent(ctx context.Context, accountID, eventID int) (*secondary.EventRecord, error) {
	if m.fetchEventFn != nil {
		return m.fetchEventFn(ctx, accountID, eventID)
	}
	return &secondary.EventRecord{ID: eventID}, nil
}

func (m *mockClient) FetchRegistrants(ctx context.Context, accountID, eventID int) ([]*secondary.RegistrantRecord, error) {
	if m.fetchRegistrantsFn != nil {
		return m.fetchRegistrantsFn(ctx, accountID, eventID)
	}
	return nil, nil
}

func (m *mockClient) FetchContacts(ctx context.Context, accountID int) ([]*secondary.ContactRecord, error) {
	m.mu.Lock()
	m.fetchContactsCalls++
	m.mu.Unlock()
	if m.fetchContactsFn != nil {
		return m.fetchContactsFn(ctx, accountID)
	}
	return nil, nil
}

func (m *mockClient) FetchMembershipLevels(ctx context.Context, accountID int) ([]*secondary.MembershipLevelRecord, error) {
	if m.fetchMembershipLevelsFn != nil {
		return m.fetchMembershipLevelsFn(ctx, accountID)
	}
	return nil, nil
}

func (m *mockClient) FetchMemberGroups(ctx context.Context, accountID int) ([]*secondary.MemberGroupRecord, error) {
	if m.fetchMemberGroupsFn != nil {
		return m.fetchMemberGroupsFn(ctx, accountID)
	}
	return nil, nil
}

func (m *mockClient) SubmitRegistration(ctx context.Context, req secondary.RegistrationSubmission) error {
	m.mu.Lock()
	m.submissions = append(m.submissions, req)
	m.mu.Unlock()
	if m.submitRegistrationFn != nil {
		return m.submitRegistrationFn(ctx, req)
	}
	return nil
}

func (m *mockClient) IsRegistered(ctx context.Context, accountID, eventID, contactID int) (bool, error) {
	if m.isRegisteredFn != nil {
		return m.isRegisteredFn(ctx, accountID, eventID, contactID)
	}
	return false, nil
}

// submittedContacts returns the contact ID of every submission, in order.
func (m *mockClient) submittedContacts() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, len(m.submissions))
	for i, s := range m.submissions {
		ids[i] = s.ContactID
	}
	return ids
}

// mockRunRepo implements secondary.RegistrationRunRepository for testing.
type mockRunRepo struct {
	runs      []*secondary.RegistrationRunRecord
	attempts  []*secondary.RegistrationAttemptRecord
	finished  map[string][2]int
	createErr error
}

var _ secondary.RegistrationRunRepository = (*mockRunRepo)(nil)

func newMockRunRepo() *mockRunRepo {
	return &mockRunRepo{finished: make(map[string][2]int)}
}

func (m *mockRunRepo) CreateRun(ctx context.Context, run *secondary.RegistrationRunRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.runs = append(m.runs, run)
	return nil
}

func (m *mockRunRepo) RecordAttempt(ctx context.Context, attempt *secondary.RegistrationAttemptRecord) error {
	m.attempts = append(m.attempts, attempt)
	return nil
}

func (m *mockRunRepo) FinishRun(ctx context.Context, runID string, succeeded, failed int) error {
	m.finished[runID] = [2]int{succeeded, failed}
	return nil
}

func (m *mockRunRepo) ListRuns(ctx context.Context, filters secondary.RegistrationRunFilters) ([]*secondary.RegistrationRunRecord, error) {
	var result []*secondary.RegistrationRunRecord
	for _, r := range m.runs {
		if filters.EventID != 0 && r.EventID != filters.EventID {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

func (m *mockRunRepo) ListAttempts(ctx context.Context, runID string) ([]*secondary.RegistrationAttemptRecord, error) {
	var result []*secondary.RegistrationAttemptRecord
	for _, a := range m.attempts {
		if a.RunID == runID {
			result = append(result, a)
		}
	}
	return result, nil
}

// mockMetrics records observations.
type mockMetrics struct {
	attempts map[string]int
	contacts map[string]int
	pending  map[string]int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		attempts: make(map[string]int),
		contacts: make(map[string]int),
		pending:  make(map[string]int),
	}
}

func (m *mockMetrics) ObserveAttempt(outcome string) { m.attempts[outcome]++ }

func (m *mockMetrics) ObserveContact(status string, succeeded bool) {
	key := status + "/failed"
	if succeeded {
		key = status + "/succeeded"
	}
	m.contacts[key]++
}

func (m *mockMetrics) SetPending(status string, count int) { m.pending[status] = count }

// mockCache implements secondary.ContactCache in memory.
type mockCache struct {
	contacts map[int][]*secondary.ContactRecord
	fresh    bool
	loadErr  error
	saves    int
}

func newMockCache() *mockCache {
	return &mockCache{contacts: make(map[int][]*secondary.ContactRecord), fresh: true}
}

func (m *mockCache) Load(ctx context.Context, accountID int, maxAge time.Duration) ([]*secondary.ContactRecord, bool, error) {
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	c, ok := m.contacts[accountID]
	return c, ok && m.fresh, nil
}

func (m *mockCache) Save(ctx context.Context, accountID int, contacts []*secondary.ContactRecord) error {
	m.saves++
	m.contacts[accountID] = contacts
	return nil
}

func (m *mockCache) Clear(ctx context.Context, accountID int) error {
	delete(m.contacts, accountID)
	return nil
}

// recordingSleep counts delays without sleeping.
type recordingSleep struct {
	calls []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.calls = append(r.calls, d)
	return nil
}

func intPtr(v int) *int { return &v }
