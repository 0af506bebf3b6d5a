package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/watools/internal/wire"
)

// ContactsCmd returns the contacts command
func ContactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Summarize contacts by membership level and member group",
		Long: `Summarize the account's non-archived contacts by membership level and
by member group, split by membership status.

Contacts are cached (see cache.contacts_ttl_seconds); --reload bypasses the cache.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reload, _ := cmd.Flags().GetBool("reload")
			asJSON, _ := cmd.Flags().GetBool("json")

			accountID, err := selectedAccount()
			if err != nil {
				return err
			}
			adapter, err := wire.ContactAdapter()
			if err != nil {
				return err
			}
			return adapter.Summary(context.Background(), accountID, reload, asJSON)
		},
	}
	cmd.Flags().Bool("reload", false, "Bypass the contact cache")
	cmd.Flags().Bool("json", false, "Output the summary as JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear-cache",
		Short: "Drop the cached contacts of the selected account",
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := selectedAccount()
			if err != nil {
				return err
			}
			adapter, err := wire.ContactAdapter()
			if err != nil {
				return err
			}
			return adapter.ClearCache(context.Background(), accountID)
		},
	})
	return cmd
}
