package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/watools/internal/app"
	"github.com/example/watools/internal/ports/primary"
	"github.com/example/watools/internal/wire"
)

// dateLayout is the accepted format of --after and --before.
const dateLayout = "2006-01-02"

// EventsCmd returns the events command
func EventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List and manage account events",
		Long: `List events of the selected account, show one event's registration
configuration, and auto-register eligible contacts.

Without a subcommand, events behaves like "events list".`,
		RunE: runEventsList,
	}
	addListFlags(cmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List events (default: started within the last 30 days or later)",
		Long: `List events, oldest first.

With no time option only events starting within the last 30 days (or later)
are shown. --query filters on any event field:

Examples:
  watools events list --future
  watools events list --year 2024 --month 6
  watools events list --all --query 'ConfirmedRegistrationsCount > 5 and "Gala" in Name'`,
		RunE: runEventsList,
	}
	addListFlags(listCmd)

	cmd.AddCommand(listCmd)
	cmd.AddCommand(eventsShowCmd())
	cmd.AddCommand(eventsSyncCmd())
	cmd.AddCommand(eventsRunsCmd())
	return cmd
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("all", false, "Show all events, ignoring the default window")
	cmd.Flags().Bool("future", false, "Show only events that have not started")
	cmd.Flags().Int("year", 0, "Show only events in this year")
	cmd.Flags().Int("month", 0, "Show only events in this month (1-12)")
	cmd.Flags().String("after", "", "Show events starting on or after this date (YYYY-MM-DD)")
	cmd.Flags().String("before", "", "Show events starting on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringP("query", "q", "", "Filter expression over event fields")
	cmd.Flags().Bool("json", false, "Output events as JSON")
}

func runEventsList(cmd *cobra.Command, args []string) error {
	accountID, err := selectedAccount()
	if err != nil {
		return err
	}

	req := primary.ListEventsRequest{AccountID: accountID}
	req.ShowAll, _ = cmd.Flags().GetBool("all")
	req.Future, _ = cmd.Flags().GetBool("future")
	req.Year, _ = cmd.Flags().GetInt("year")
	req.Month, _ = cmd.Flags().GetInt("month")
	req.Query, _ = cmd.Flags().GetString("query")
	asJSON, _ := cmd.Flags().GetBool("json")

	if req.Month < 0 || req.Month > 12 {
		return fmt.Errorf("invalid --month %d (valid: 1-12)", req.Month)
	}
	after, _ := cmd.Flags().GetString("after")
	if req.After, err = parseDateFlag("after", after); err != nil {
		return err
	}
	before, _ := cmd.Flags().GetString("before")
	if req.Before, err = parseDateFlag("before", before); err != nil {
		return err
	}

	adapter, err := wire.EventAdapter()
	if err != nil {
		return err
	}
	return adapter.List(context.Background(), req, asJSON)
}

func eventsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show an event's access control and registration types",
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, _ := cmd.Flags().GetInt("event-id")
			asJSON, _ := cmd.Flags().GetBool("json")
			if err := requireID("event-id", eventID); err != nil {
				return err
			}
			accountID, err := selectedAccount()
			if err != nil {
				return err
			}

			adapter, err := wire.EventAdapter()
			if err != nil {
				return err
			}
			return adapter.Show(context.Background(), accountID, eventID, asJSON)
		},
	}
	cmd.Flags().Int("event-id", 0, "Event ID (required)")
	cmd.Flags().Bool("json", false, "Output the raw event as JSON")
	return cmd
}

func eventsSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync-registrants",
		Short: "Register every eligible contact not yet registered for an event",
		Long: `Reconcile the event's eligible audience (membership levels and member
groups from its access control) against its current registrants, then
register the remainder with the event's single "auto-register"
registration type.

Dry run by default: prints pending counts per membership status and the
registration type that would be used. --confirm performs the registrations.

Exit codes: 0 success, 1 error, 2 some registrations failed (--fail-on-partial).

Examples:
  watools events sync-registrants --event-id 4567890
  watools events sync-registrants --event-id 4567890 --status Active --status PendingRenewal --confirm`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, _ := cmd.Flags().GetInt("event-id")
			statuses, _ := cmd.Flags().GetStringSlice("status")
			confirm, _ := cmd.Flags().GetBool("confirm")
			asJSON, _ := cmd.Flags().GetBool("json")
			failOnPartial, _ := cmd.Flags().GetBool("fail-on-partial")
			metricsFile, _ := cmd.Flags().GetString("metrics-file")
			reload, _ := cmd.Flags().GetBool("reload")

			if err := requireID("event-id", eventID); err != nil {
				return err
			}
			accountID, err := selectedAccount()
			if err != nil {
				return err
			}

			adapter, err := wire.RegistrationAdapter()
			if err != nil {
				return err
			}
			resp, err := adapter.Sync(context.Background(), primary.SyncRegistrantsRequest{
				AccountID:      accountID,
				EventID:        eventID,
				Statuses:       statuses,
				Confirm:        confirm,
				ReloadContacts: reload,
			}, asJSON)
			if err != nil {
				return err
			}

			if metricsFile != "" {
				registry, err := wire.Metrics()
				if err != nil {
					return err
				}
				if err := registry.WriteTextfile(metricsFile); err != nil {
					return err
				}
			}

			if failOnPartial && resp.TotalFailed() > 0 {
				return &app.PartialFailureError{Failed: resp.TotalFailed(), Succeeded: resp.TotalSucceeded()}
			}
			return nil
		},
	}
	cmd.Flags().Int("event-id", 0, "Event ID (required)")
	cmd.Flags().StringSlice("status", nil, "Membership status to process (repeatable; default all)")
	cmd.Flags().Bool("confirm", false, "Perform the registrations (default is a dry run)")
	cmd.Flags().Bool("json", false, "Output the summary as JSON")
	cmd.Flags().Bool("fail-on-partial", false, "Exit with code 2 when any registration fails")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this textfile")
	cmd.Flags().Bool("reload", false, "Bypass the contact cache")
	return cmd
}

func eventsRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded registration runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, _ := cmd.Flags().GetInt("event-id")
			limit, _ := cmd.Flags().GetInt("limit")
			asJSON, _ := cmd.Flags().GetBool("json")

			adapter, err := wire.RegistrationAdapter()
			if err != nil {
				return err
			}
			return adapter.Runs(context.Background(), primary.RegistrationRunFilters{EventID: eventID, Limit: limit}, asJSON)
		},
	}
	cmd.Flags().Int("event-id", 0, "Only runs for this event")
	cmd.Flags().Int("limit", 20, "Maximum number of runs")
	cmd.Flags().Bool("json", false, "Output runs as JSON")
	return cmd
}

// parseDateFlag parses a YYYY-MM-DD flag value. Empty means unset.
func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, value)
	}
	return &t, nil
}
