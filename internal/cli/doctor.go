package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/watools/internal/db"
	"github.com/example/watools/internal/version"
	"github.com/example/watools/internal/wire"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// pinger reports the HTTP status returned by the API host.
type pinger interface {
	Ping(ctx context.Context) (int, error)
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration, cache database and API reachability",
		Long: `Environment health check for watools.

Validates:
- Configuration (account selected, credentials present)
- Cache database (opens and migrates)
- API host reachable over TLS (no credentials are sent)

Examples:
  watools doctor              # Run full health check
  watools doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := []CheckResult{checkConfig(), checkCacheDB()}

			client, err := wire.Client()
			if err != nil {
				results = append(results, CheckResult{Name: "API", Status: "⚠", Details: "  Skipped: configuration invalid"})
			} else {
				cfg, _ := wire.Config()
				ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				results = append(results, checkAPI(ctx, client, cfg.API.BaseURL))
				cancel()
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				printChecks(os.Stdout, results, hasErrors)
			}

			if hasErrors {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

func printChecks(out io.Writer, results []CheckResult, hasErrors bool) {
	fmt.Fprintf(out, "\n%s\n\n", version.String())
	fmt.Fprintln(out, "Check              Status")
	fmt.Fprintln(out, "─────────────────────────")
	for _, r := range results {
		fmt.Fprintf(out, "%-18s %s\n", r.Name, r.Status)
	}
	fmt.Fprintln(out)

	hasDetails := false
	for _, r := range results {
		if r.Status != "✓" && r.Details != "" {
			if !hasDetails {
				fmt.Fprintln(out, "Details:")
				hasDetails = true
			}
			fmt.Fprintf(out, "\n%s:\n%s\n", r.Name, r.Details)
		}
	}

	if hasErrors {
		fmt.Fprintln(out, "\n⚠ Issues found.")
	} else {
		fmt.Fprintln(out, "All checks passed.")
	}
}

// checkConfig loads and validates the configuration
func checkConfig() CheckResult {
	cfg, err := wire.Config()
	if err != nil {
		return CheckResult{Name: "Config", Status: "✗", Details: "  " + err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return CheckResult{Name: "Config", Status: "✗", Details: "  " + err.Error()}
	}
	return CheckResult{Name: "Config", Status: "✓"}
}

// checkCacheDB opens the cache database, creating and migrating it if needed
func checkCacheDB() CheckResult {
	path, err := db.GetDBPath()
	if err != nil {
		return CheckResult{Name: "Cache DB", Status: "✗", Details: "  " + err.Error()}
	}
	database, err := db.GetDB()
	if err != nil {
		return CheckResult{Name: "Cache DB", Status: "✗", Details: fmt.Sprintf("  %s\n  %v", path, err)}
	}
	if err := database.Ping(); err != nil {
		return CheckResult{Name: "Cache DB", Status: "✗", Details: fmt.Sprintf("  %s\n  %v", path, err)}
	}
	return CheckResult{Name: "Cache DB", Status: "✓"}
}

// checkAPI verifies the API host answers over TLS. Any HTTP status counts as
// reachable; certificate and network failures do not.
func checkAPI(ctx context.Context, p pinger, baseURL string) CheckResult {
	host := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host = u.Host
	}

	status, err := p.Ping(ctx)
	if err != nil {
		return CheckResult{Name: "API", Status: "✗", Details: fmt.Sprintf("  %s unreachable: %v", host, err)}
	}
	if status >= 500 {
		return CheckResult{Name: "API", Status: "⚠", Details: fmt.Sprintf("  %s answered HTTP %d", host, status)}
	}
	return CheckResult{Name: "API", Status: "✓"}
}
