package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/watools/internal/wire"
)

// AccountsCmd returns the accounts command
func AccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List accounts visible to the configured credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			adapter, err := wire.AccountAdapter()
			if err != nil {
				return err
			}
			return adapter.Accounts(context.Background(), asJSON)
		},
	}
	cmd.Flags().Bool("json", false, "Output accounts as JSON")
	return cmd
}

// MemberGroupsCmd returns the member-groups command
func MemberGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member-groups",
		Short: "List member groups, or show one with --member-group-id",
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, _ := cmd.Flags().GetInt("member-group-id")
			asJSON, _ := cmd.Flags().GetBool("json")

			accountID, err := selectedAccount()
			if err != nil {
				return err
			}
			adapter, err := wire.AccountAdapter()
			if err != nil {
				return err
			}
			return adapter.MemberGroups(context.Background(), accountID, groupID, asJSON)
		},
	}
	cmd.Flags().Int("member-group-id", 0, "Show only this member group")
	cmd.Flags().Bool("json", false, "Output groups as JSON")
	return cmd
}
