package primary

import "context"

// AccountService defines the primary port for account-level catalogs.
type AccountService interface {
	// ListAccounts lists the accounts visible to the configured credentials.
	ListAccounts(ctx context.Context) ([]*Account, error)

	// ListMemberGroups lists the member groups of an account.
	ListMemberGroups(ctx context.Context, accountID int) ([]*MemberGroup, error)
}

// Account represents an account at the port boundary.
type Account struct {
	ID                int
	Name              string
	PrimaryDomainName string
	ContactLimit      int
	ContactCount      int
}

// MemberGroup represents a member group at the port boundary.
type MemberGroup struct {
	ID           int
	Name         string
	Description  string
	ContactCount int
}
