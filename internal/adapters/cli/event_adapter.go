package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/example/watools/internal/ports/primary"
)

// EventAdapter translates CLI operations to EventService calls.
type EventAdapter struct {
	service primary.EventService
	out     io.Writer
}

// NewEventAdapter creates a new EventAdapter with the given service.
func NewEventAdapter(service primary.EventService, out io.Writer) *EventAdapter {
	return &EventAdapter{
		service: service,
		out:     out,
	}
}

// List lists events as a table, or as the raw API objects with asJSON.
func (a *EventAdapter) List(ctx context.Context, req primary.ListEventsRequest, asJSON bool) error {
	events, err := a.service.ListEvents(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	if asJSON {
		raw := make([]map[string]any, 0, len(events))
		for _, e := range events {
			raw = append(raw, e.Raw)
		}
		return writeJSON(a.out, raw)
	}

	if len(events) == 0 {
		fmt.Fprintln(a.out, "No events found.")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-9s %-4s %-11s %-6s %-9s %s\n", "ID", "DAY", "DATE", "TIME", "CNF/MAX", "TITLE")
	fmt.Fprintln(a.out, rule)
	for _, e := range events {
		day, date, clock := "", "", ""
		if !e.Start.IsZero() {
			day = e.Start.Format("Mon")
			date = e.Start.Format("2006-01-02")
			clock = e.Start.Format("15:04")
		}
		fmt.Fprintf(a.out, "%-9d %-4s %-11s %-6s %-9s %s\n",
			e.ID, day, date, clock, confirmedAndLimit(e), truncate(e.Name, 50))
	}
	fmt.Fprintln(a.out)
	return nil
}

// Show displays one event with its access control and registration types.
func (a *EventAdapter) Show(ctx context.Context, accountID, eventID int, asJSON bool) error {
	event, err := a.service.GetEvent(ctx, accountID, eventID)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}

	if asJSON {
		return writeJSON(a.out, event.Raw)
	}

	fmt.Fprintf(a.out, "\nEvent:    %d\n", event.ID)
	fmt.Fprintf(a.out, "Name:     %s\n", event.Name)
	fmt.Fprintf(a.out, "Start:    %s\n", event.StartDate)
	if event.Location != "" {
		fmt.Fprintf(a.out, "Location: %s\n", event.Location)
	}
	fmt.Fprintf(a.out, "Cnf/Max:  %s\n", confirmedAndLimit(&event.Event))

	if event.AccessLevel != "" {
		fmt.Fprintf(a.out, "\nAccess:   %s\n", event.AccessLevel)
		fmt.Fprintf(a.out, "Levels:   %s\n", audience(event.AvailableForAnyLevel, event.Levels))
		fmt.Fprintf(a.out, "Groups:   %s\n", audience(event.AvailableForAnyGroup, event.Groups))
	} else {
		failureColor.Fprintln(a.out, "\nNo access control section")
	}

	fmt.Fprintln(a.out, "\nRegistration types:")
	if len(event.RegistrationTypes) == 0 {
		fmt.Fprintln(a.out, "  (none)")
	}
	for _, rt := range event.RegistrationTypes {
		marker := " "
		if rt.Name == event.AutoRegisterTypeName {
			marker = "*"
		}
		fmt.Fprintf(a.out, " %s %-9d %s\n", marker, rt.ID, rt.Name)
	}
	if event.AutoRegisterTypeName != "" {
		successColor.Fprintf(a.out, "\n✓ Auto-register type: %s\n", event.AutoRegisterTypeName)
	} else {
		dimColor.Fprintln(a.out, "\nNot configured for auto-registration")
	}
	fmt.Fprintln(a.out)
	return nil
}

func confirmedAndLimit(e *primary.Event) string {
	if e.RegistrationsLimit == 0 {
		return fmt.Sprintf("%d/-", e.ConfirmedRegistrationsCount)
	}
	return fmt.Sprintf("%d/%d", e.ConfirmedRegistrationsCount, e.RegistrationsLimit)
}

func audience(anyOf bool, items []primary.NamedID) string {
	if anyOf {
		return "any"
	}
	if len(items) == 0 {
		return "(none)"
	}
	names := make([]string, len(items))
	for i, it := range items {
		if it.Name == "" {
			names[i] = fmt.Sprintf("%d", it.ID)
			continue
		}
		names[i] = fmt.Sprintf("%s (%d)", it.Name, it.ID)
	}
	return strings.Join(names, ", ")
}
