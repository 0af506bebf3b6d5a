package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/watools/internal/ports/primary"
)

// RegistrationAdapter translates CLI operations to RegistrationService calls.
type RegistrationAdapter struct {
	service primary.RegistrationService
	out     io.Writer
}

// NewRegistrationAdapter creates a new RegistrationAdapter with the given service.
func NewRegistrationAdapter(service primary.RegistrationService, out io.Writer) *RegistrationAdapter {
	return &RegistrationAdapter{
		service: service,
		out:     out,
	}
}

// Sync runs a sync and prints the plan, plus per-status outcomes when confirmed.
// The response is returned so the caller can decide the exit code.
func (a *RegistrationAdapter) Sync(ctx context.Context, req primary.SyncRegistrantsRequest, asJSON bool) (*primary.SyncRegistrantsResponse, error) {
	resp, err := a.service.SyncRegistrants(ctx, req)
	if err != nil {
		return nil, err
	}

	if asJSON {
		return resp, writeJSON(a.out, syncJSON(resp))
	}

	fmt.Fprintf(a.out, "\nEvent:              %d %s\n", resp.EventID, resp.EventName)
	fmt.Fprintf(a.out, "Registration type:  %s (%d)\n", resp.RegistrationTypeName, resp.RegistrationTypeID)
	fmt.Fprintf(a.out, "Eligible:           %d\n", resp.EligibleCount)
	fmt.Fprintf(a.out, "Already registered: %d\n", resp.AlreadyRegisteredCount)
	fmt.Fprintf(a.out, "Pending:            %d\n", resp.PendingCount)

	if len(resp.Buckets) == 0 {
		fmt.Fprintln(a.out, "\nNo records to process.")
		return resp, nil
	}

	fmt.Fprintf(a.out, "\n%-16s %8s", "STATUS", "PENDING")
	if resp.Confirmed {
		fmt.Fprintf(a.out, " %10s %8s", "SUCCEEDED", "FAILED")
	}
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, rule)
	for _, b := range resp.Buckets {
		if !b.Selected {
			dimColor.Fprintf(a.out, "%-16s %8d (skipped)\n", b.Status, b.Pending)
			continue
		}
		fmt.Fprintf(a.out, "%-16s %8d", b.Status, b.Pending)
		if resp.Confirmed {
			successColor.Fprintf(a.out, " %10d", len(b.Succeeded))
			if len(b.Failed) > 0 {
				failureColor.Fprintf(a.out, " %8d", len(b.Failed))
			} else {
				fmt.Fprintf(a.out, " %8d", 0)
			}
		}
		fmt.Fprintln(a.out)
	}
	fmt.Fprintln(a.out)

	if !resp.Confirmed {
		fmt.Fprintln(a.out, "Dry run: no registrations made. Re-run with --confirm to register.")
		return resp, nil
	}

	for _, b := range resp.Buckets {
		if len(b.Failed) > 0 {
			failureColor.Fprintf(a.out, "[%s] failed contacts: %s\n", b.Status, joinInts(b.Failed))
		}
	}
	if resp.TotalFailed() == 0 {
		successColor.Fprintf(a.out, "✓ Registered %d contacts (run %s)\n", resp.TotalSucceeded(), resp.RunID)
	} else {
		failureColor.Fprintf(a.out, "✗ Registered %d contacts, %d failed (run %s)\n", resp.TotalSucceeded(), resp.TotalFailed(), resp.RunID)
	}
	return resp, nil
}

// Runs lists recorded registration runs.
func (a *RegistrationAdapter) Runs(ctx context.Context, filters primary.RegistrationRunFilters, asJSON bool) error {
	runs, err := a.service.ListRuns(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if asJSON {
		if runs == nil {
			runs = []*primary.RegistrationRun{}
		}
		return writeJSON(a.out, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(a.out, "No registration runs found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-36s %-20s %-8s %-28s %5s %5s %5s\n", "RUN", "STARTED", "EVENT", "STATUSES", "PEND", "OK", "FAIL")
	fmt.Fprintln(a.out, rule+rule)
	for _, r := range runs {
		started := r.StartedAt
		if r.FinishedAt == "" {
			started += "*"
		}
		fmt.Fprintf(a.out, "%-36s %-20s %-8d %-28s %5d %5d %5d\n",
			r.ID, started, r.EventID, truncate(r.Statuses, 28), r.Pending, r.Succeeded, r.Failed)
	}
	fmt.Fprintln(a.out)
	return nil
}

type syncBucketJSON struct {
	Status    string `json:"status"`
	Pending   int    `json:"pending"`
	Selected  bool   `json:"selected"`
	Succeeded []int  `json:"succeeded,omitempty"`
	Failed    []int  `json:"failed,omitempty"`
}

type syncResultJSON struct {
	RunID                string           `json:"run_id,omitempty"`
	EventID              int              `json:"event_id"`
	EventName            string           `json:"event_name"`
	RegistrationTypeID   int              `json:"registration_type_id"`
	RegistrationTypeName string           `json:"registration_type_name"`
	Confirmed            bool             `json:"confirmed"`
	Eligible             int              `json:"eligible"`
	AlreadyRegistered    int              `json:"already_registered"`
	Pending              int              `json:"pending"`
	Succeeded            int              `json:"succeeded"`
	Failed               int              `json:"failed"`
	Buckets              []syncBucketJSON `json:"buckets"`
}

func syncJSON(resp *primary.SyncRegistrantsResponse) syncResultJSON {
	out := syncResultJSON{
		RunID:                resp.RunID,
		EventID:              resp.EventID,
		EventName:            resp.EventName,
		RegistrationTypeID:   resp.RegistrationTypeID,
		RegistrationTypeName: resp.RegistrationTypeName,
		Confirmed:            resp.Confirmed,
		Eligible:             resp.EligibleCount,
		AlreadyRegistered:    resp.AlreadyRegisteredCount,
		Pending:              resp.PendingCount,
		Succeeded:            resp.TotalSucceeded(),
		Failed:               resp.TotalFailed(),
		Buckets:              []syncBucketJSON{},
	}
	for _, b := range resp.Buckets {
		out.Buckets = append(out.Buckets, syncBucketJSON{
			Status:    b.Status,
			Pending:   b.Pending,
			Selected:  b.Selected,
			Succeeded: b.Succeeded,
			Failed:    b.Failed,
		})
	}
	return out
}
