package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/watools/internal/ports/primary"
)

// ContactAdapter translates CLI operations to ContactService calls.
type ContactAdapter struct {
	service primary.ContactService
	out     io.Writer
}

// NewContactAdapter creates a new ContactAdapter with the given service.
func NewContactAdapter(service primary.ContactService, out io.Writer) *ContactAdapter {
	return &ContactAdapter{
		service: service,
		out:     out,
	}
}

// Summary prints the level and group breakdowns followed by the status legend.
func (a *ContactAdapter) Summary(ctx context.Context, accountID int, reload, asJSON bool) error {
	summary, err := a.service.SummarizeContacts(ctx, accountID, reload)
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(a.out, summary)
	}

	if summary.ContactCount == 0 {
		fmt.Fprintln(a.out, "No contacts found.")
		return nil
	}

	a.table("Membership levels", summary.ByLevel)
	a.table("Member groups", summary.ByGroup)
	a.legend()
	return nil
}

// ClearCache drops the cached contacts of an account.
func (a *ContactAdapter) ClearCache(ctx context.Context, accountID int) error {
	if err := a.service.ClearContactCache(ctx, accountID); err != nil {
		return fmt.Errorf("failed to clear contact cache: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Contact cache cleared for account %d\n", accountID)
	return nil
}

func (a *ContactAdapter) table(title string, t primary.SummaryTable) {
	headerColor.Fprintf(a.out, "\n%s\n", title)
	fmt.Fprintf(a.out, "%-8s %-30s", "ID", "NAME")
	for _, st := range t.Statuses {
		fmt.Fprintf(a.out, " %8s", statusLabel(st))
	}
	fmt.Fprintf(a.out, " %8s\n", "TOTAL")
	fmt.Fprintln(a.out, rule)

	for _, row := range t.Rows {
		fmt.Fprintf(a.out, "%-8s %-30s", row.ID, truncate(row.Name, 30))
		for _, st := range t.Statuses {
			fmt.Fprintf(a.out, " %8d", row.Counts[st])
		}
		fmt.Fprintf(a.out, " %8d\n", row.Total)
	}

	fmt.Fprintln(a.out, rule)
	fmt.Fprintf(a.out, "%-8s %-30s", "", "Total")
	for _, st := range t.Statuses {
		fmt.Fprintf(a.out, " %8d", t.Totals[st])
	}
	fmt.Fprintf(a.out, " %8d\n", t.GrandTotal)
}

func (a *ContactAdapter) legend() {
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Active     : Members whose status is Active and membership is current.")
	fmt.Fprintln(a.out, "P.Renew    : Members whose renewal is overdue but still within the grace period (PendingRenewal).")
	fmt.Fprintln(a.out, "P.New      : Members who have applied and are awaiting approval (PendingNew).")
	fmt.Fprintln(a.out, "Lapsed     : Members whose membership has expired and are outside the grace period.")
	fmt.Fprintln(a.out, "Unknown    : Contacts with no recognized status or missing status field.")
}
