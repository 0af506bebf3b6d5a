package primary

import "context"

// ContactService defines the primary port for contact summaries.
type ContactService interface {
	// SummarizeContacts returns membership breakdowns by level and by group.
	SummarizeContacts(ctx context.Context, accountID int, reload bool) (*ContactSummary, error)

	// ClearContactCache drops the cached contacts of an account.
	ClearContactCache(ctx context.Context, accountID int) error
}

// ContactSummary contains both breakdown tables.
type ContactSummary struct {
	ContactCount int
	ByLevel      SummaryTable
	ByGroup      SummaryTable
}

// SummaryTable is a breakdown of counts by membership status.
type SummaryTable struct {
	Statuses   []string
	Rows       []SummaryRow
	Totals     map[string]int
	GrandTotal int
}

// SummaryRow is one level or group.
type SummaryRow struct {
	ID     string // "None" for non-members
	Name   string
	Counts map[string]int
	Total  int
}
