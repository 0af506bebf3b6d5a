package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/watools/internal/ports/primary"
)

// AccountAdapter translates CLI operations to AccountService calls.
type AccountAdapter struct {
	service primary.AccountService
	out     io.Writer
}

// NewAccountAdapter creates a new AccountAdapter with the given service.
func NewAccountAdapter(service primary.AccountService, out io.Writer) *AccountAdapter {
	return &AccountAdapter{
		service: service,
		out:     out,
	}
}

// Accounts lists the accounts visible to the configured credentials.
func (a *AccountAdapter) Accounts(ctx context.Context, asJSON bool) error {
	accounts, err := a.service.ListAccounts(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(a.out, accounts)
	}

	if len(accounts) == 0 {
		fmt.Fprintln(a.out, "No accounts found.")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-9s %-32s %-30s %s\n", "ID", "NAME", "DOMAIN", "CONTACTS")
	fmt.Fprintln(a.out, rule)
	for _, acc := range accounts {
		fmt.Fprintf(a.out, "%-9d %-32s %-30s %d/%d\n",
			acc.ID, truncate(acc.Name, 32), truncate(acc.PrimaryDomainName, 30), acc.ContactCount, acc.ContactLimit)
	}
	fmt.Fprintln(a.out)
	return nil
}

// MemberGroups lists member groups, or shows one when groupID is non-zero.
func (a *AccountAdapter) MemberGroups(ctx context.Context, accountID, groupID int, asJSON bool) error {
	groups, err := a.service.ListMemberGroups(ctx, accountID)
	if err != nil {
		return err
	}

	if groupID != 0 {
		var match *primary.MemberGroup
		for _, g := range groups {
			if g.ID == groupID {
				match = g
				break
			}
		}
		if match == nil {
			return fmt.Errorf("no member group found with ID %d", groupID)
		}
		if asJSON {
			return writeJSON(a.out, match)
		}
		fmt.Fprintf(a.out, "\nGroup:    %d\n", match.ID)
		fmt.Fprintf(a.out, "Name:     %s\n", match.Name)
		if match.Description != "" {
			fmt.Fprintf(a.out, "Details:  %s\n", match.Description)
		}
		fmt.Fprintf(a.out, "Contacts: %d\n\n", match.ContactCount)
		return nil
	}

	if asJSON {
		return writeJSON(a.out, groups)
	}

	if len(groups) == 0 {
		fmt.Fprintln(a.out, "No groups found.")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-9s %-40s %s\n", "ID", "NAME", "CONTACTS")
	fmt.Fprintln(a.out, rule)
	for _, g := range groups {
		fmt.Fprintf(a.out, "%-9d %-40s %d\n", g.ID, truncate(g.Name, 40), g.ContactCount)
	}
	fmt.Fprintln(a.out)
	return nil
}
