// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting (tables, colored
// summaries, JSON) but delegate business logic to services.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const rule = "────────────────────────────────────────────────────────────────"

var (
	successColor = color.New(color.FgGreen)
	failureColor = color.New(color.FgRed)
	headerColor  = color.New(color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// statusLabels are the short column headers for membership statuses.
var statusLabels = map[string]string{
	"Active":         "Active",
	"Lapsed":         "Lapsed",
	"PendingNew":     "P.New",
	"PendingRenewal": "P.Renew",
	"Unknown":        "Unknown",
}

func statusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
