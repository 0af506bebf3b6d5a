package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/watools/internal/app"
	"github.com/example/watools/internal/cli"
	"github.com/example/watools/internal/version"
	"github.com/example/watools/internal/wire"
)

// Exit codes.
const (
	exitOK      = 0
	exitError   = 1
	exitPartial = 2
)

func main() {
	var overrides wire.Overrides

	rootCmd := &cobra.Command{
		Use:     "watools",
		Short:   "watools - Wild Apricot membership tools",
		Version: version.String(),
		Long: `watools is a CLI for the Wild Apricot membership API: list events,
summarize contacts, and auto-register eligible members for events.

Configuration lives in ~/.config/watools/config.json (account_id, api
settings) and credentials.json (client_id / client_secret per account).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			wire.Configure(overrides)
		},
	}
	rootCmd.PersistentFlags().IntVar(&overrides.AccountID, "account-id", 0, "Account ID (overrides config and WATOOLS_ACCOUNT_ID)")
	rootCmd.PersistentFlags().StringVar(&overrides.LogLevel, "log-level", "", "Log level: TRACE, DEBUG, INFO, SUCCESS, WARNING, ERROR")

	// Add subcommands
	rootCmd.AddCommand(cli.EventsCmd())
	rootCmd.AddCommand(cli.ContactsCmd())
	rootCmd.AddCommand(cli.MemberGroupsCmd())
	rootCmd.AddCommand(cli.AccountsCmd())

	// Environment
	rootCmd.AddCommand(cli.ConfigCmd())
	rootCmd.AddCommand(cli.DoctorCmd())

	err := rootCmd.Execute()
	_ = wire.Close()
	os.Exit(exitCode(err))
}

// exitCode maps a command error to the process exit code, printing it.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(os.Stderr, "Error:", err)

	var partial *app.PartialFailureError
	if errors.As(err, &partial) {
		return exitPartial
	}
	return exitError
}
