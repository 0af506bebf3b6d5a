package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry_Counters(t *testing.T) {
	r := New()

	r.ObserveAttempt("failed")
	r.ObserveAttempt("failed")
	r.ObserveAttempt("success")
	r.ObserveContact("Active", true)
	r.ObserveContact("Lapsed", false)
	r.SetPending("Active", 12)
	r.SetPending("Active", 9)

	if got := testutil.ToFloat64(r.attempts.WithLabelValues("failed")); got != 2 {
		t.Errorf("failed attempts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.contacts.WithLabelValues("Lapsed", "failed")); got != 1 {
		t.Errorf("lapsed failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.pending.WithLabelValues("Active")); got != 9 {
		t.Errorf("pending = %v, want 9", got)
	}

	count, err := testutil.GatherAndCount(r.Gatherer(), "watools_registration_attempts_total")
	if err != nil {
		t.Fatalf("GatherAndCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 outcome series, got %d", count)
	}
}

func TestRegistry_WriteTextfile(t *testing.T) {
	r := New()
	r.ObserveContact("Active", true)

	path := filepath.Join(t.TempDir(), "watools.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read metrics file: %v", err)
	}
	want := `watools_registration_contacts_total{result="succeeded",status="Active"} 1`
	if !strings.Contains(string(data), want) {
		t.Errorf("metrics file missing %q:\n%s", want, data)
	}
}

func TestRegistry_WriteTextfile_BadPath(t *testing.T) {
	r := New()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "watools.prom"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
