package app

import (
	"context"
	"strconv"

	"github.com/example/watools/internal/core/contactstats"
	"github.com/example/watools/internal/core/registration"
	"github.com/example/watools/internal/logging"
	"github.com/example/watools/internal/ports/primary"
	"github.com/example/watools/internal/ports/secondary"
)

// ContactServiceImpl implements the ContactService interface.
type ContactServiceImpl struct {
	client   secondary.WildApricotClient
	contacts *ContactLoader
	log      *logging.Logger
}

// NewContactService creates a new ContactService with injected dependencies.
func NewContactService(client secondary.WildApricotClient, contacts *ContactLoader, log *logging.Logger) *ContactServiceImpl {
	return &ContactServiceImpl{client: client, contacts: contacts, log: log}
}

// SummarizeContacts counts contacts by level and by group, split by status.
func (s *ContactServiceImpl) SummarizeContacts(ctx context.Context, accountID int, reload bool) (*primary.ContactSummary, error) {
	records, err := s.contacts.Load(ctx, accountID, reload)
	if err != nil {
		return nil, &registration.UpstreamFetchError{Op: "fetch contacts", Err: err}
	}
	levels, err := s.client.FetchMembershipLevels(ctx, accountID)
	if err != nil {
		return nil, &registration.UpstreamFetchError{Op: "fetch membership levels", Err: err}
	}
	groups, err := s.client.FetchMemberGroups(ctx, accountID)
	if err != nil {
		return nil, &registration.UpstreamFetchError{Op: "fetch member groups", Err: err}
	}

	contacts := toCoreContacts(records)
	return &primary.ContactSummary{
		ContactCount: len(contacts),
		ByLevel:      toSummaryTable(contactstats.ByLevel(contacts, levelNames(levels))),
		ByGroup:      toSummaryTable(contactstats.ByGroup(contacts, groupNames(groups))),
	}, nil
}

// ClearContactCache drops the cached contacts of an account.
func (s *ContactServiceImpl) ClearContactCache(ctx context.Context, accountID int) error {
	return s.contacts.Clear(ctx, accountID)
}

func toSummaryTable(sum contactstats.Summary) primary.SummaryTable {
	table := primary.SummaryTable{
		Totals:     make(map[string]int, len(sum.Totals)),
		GrandTotal: sum.GrandTotal,
	}
	for _, st := range sum.Statuses {
		table.Statuses = append(table.Statuses, string(st))
	}
	for st, n := range sum.Totals {
		table.Totals[string(st)] = n
	}
	for _, row := range sum.Rows {
		out := primary.SummaryRow{
			ID:     "None",
			Name:   row.Name,
			Counts: make(map[string]int, len(row.Counts)),
			Total:  row.Total,
		}
		if row.ID != nil {
			out.ID = strconv.Itoa(*row.ID)
		}
		for st, n := range row.Counts {
			out.Counts[string(st)] = n
		}
		table.Rows = append(table.Rows, out)
	}
	return table
}

// Ensure ContactServiceImpl implements the interface
var _ primary.ContactService = (*ContactServiceImpl)(nil)
