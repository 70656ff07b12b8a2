package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordTranslation(t *testing.T) {
	_, m := NewRegistry()

	m.RecordTranslation(true, 7, 2)
	m.RecordTranslation(false, 0, 0)

	if got := testutil.ToFloat64(m.Translations.WithLabelValues("true")); got != 1 {
		t.Errorf("successful translations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Translations.WithLabelValues("false")); got != 1 {
		t.Errorf("failed translations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.UnresolvedQueries); got != 2 {
		t.Errorf("unresolved = %v, want 2", got)
	}
}

func TestRecordCheckerRun(t *testing.T) {
	_, m := NewRegistry()

	m.RecordCheckerRun("satisfied", 0.2)
	m.RecordCheckerRun("satisfied", 0.4)
	m.RecordCheckerRun("violated", 1.5)

	if got := testutil.ToFloat64(m.CheckerRuns.WithLabelValues("satisfied")); got != 2 {
		t.Errorf("satisfied runs = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CheckerRuns.WithLabelValues("violated")); got != 1 {
		t.Errorf("violated runs = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.CheckerDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestRecordError(t *testing.T) {
	_, m := NewRegistry()
	m.RecordError("CHECK-001", "verify")

	if got := testutil.ToFloat64(m.Errors.WithLabelValues("CHECK-001", "verify")); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	reg, m := NewRegistry()
	m.RecordCheckerRun("unavailable", 0)

	path := filepath.Join(t.TempDir(), "rtcheck.prom")
	if err := WriteTextfile(path, reg); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `rtcheck_checker_runs_total{status="unavailable"} 1`) {
		t.Errorf("textfile missing checker run sample:\n%s", data)
	}

	if err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"), reg); err == nil {
		t.Error("WriteTextfile() should fail for a missing directory")
	}
}
