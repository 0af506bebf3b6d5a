package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/example/watools/internal/ports/primary"
	"github.com/example/watools/internal/ports/secondary"
)

// AccountServiceImpl implements the AccountService interface.
type AccountServiceImpl struct {
	client secondary.WildApricotClient
}

// NewAccountService creates a new AccountService with injected dependencies.
func NewAccountService(client secondary.WildApricotClient) *AccountServiceImpl {
	return &AccountServiceImpl{client: client}
}

// ListAccounts lists the accounts visible to the configured credentials.
func (s *AccountServiceImpl) ListAccounts(ctx context.Context) ([]*primary.Account, error) {
	records, err := s.client.FetchAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	accounts := make([]*primary.Account, len(records))
	for i, r := range records {
		accounts[i] = &primary.Account{
			ID:                r.ID,
			Name:              r.Name,
			PrimaryDomainName: r.PrimaryDomainName,
			ContactLimit:      r.ContactLimit,
			ContactCount:      r.ContactCount,
		}
	}
	return accounts, nil
}

// ListMemberGroups lists the member groups of an account, sorted by name.
func (s *AccountServiceImpl) ListMemberGroups(ctx context.Context, accountID int) ([]*primary.MemberGroup, error) {
	records, err := s.client.FetchMemberGroups(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member groups: %w", err)
	}

	groups := make([]*primary.MemberGroup, len(records))
	for i, r := range records {
		groups[i] = &primary.MemberGroup{
			ID:           r.ID,
			Name:         r.Name,
			Description:  r.Description,
			ContactCount: r.ContactCount,
		}
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

// Ensure AccountServiceImpl implements the interface
var _ primary.AccountService = (*AccountServiceImpl)(nil)
