package health

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

type staticChecker struct {
	name   string
	result *Result
}

func (s staticChecker) Name() string { return s.name }
func (s staticChecker) Check(context.Context) *Result { return s.result }

type blockingChecker struct{}

func (blockingChecker) Name() string { return "blocking" }
func (blockingChecker) Check(ctx context.Context) *Result {
	<-ctx.Done()
	return Unhealthy("timed out")
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.String(); got != tt.expected {
				t.Errorf("Status.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestManagerCheck(t *testing.T) {
	m := NewManager()
	m.AddChecker(staticChecker{"a", Healthy("ok")})
	m.AddChecker(staticChecker{"b", Degraded("partial")})

	if got := m.CheckNames(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("CheckNames() = %v", got)
	}

	results := m.Check(context.Background())
	if len(results) != 2 {
		t.Fatalf("Check() returned %d results, want 2", len(results))
	}
	if results["b"].Message != "partial" {
		t.Errorf("results[b].Message = %q, want partial", results["b"].Message)
	}
	if got := OverallStatus(results); got != StatusDegraded {
		t.Errorf("OverallStatus() = %v, want degraded", got)
	}
}

func TestManagerTimeout(t *testing.T) {
	m := NewManager().WithTimeout(10 * time.Millisecond)
	m.AddChecker(blockingChecker{})

	results := m.Check(context.Background())
	if results["blocking"].Status != StatusUnhealthy {
		t.Errorf("blocking check status = %v, want unhealthy", results["blocking"].Status)
	}
}

func TestOverallStatus(t *testing.T) {
	tests := []struct {
		name    string
		results map[string]*Result
		want    Status
	}{
		{"empty", map[string]*Result{}, StatusHealthy},
		{"healthy", map[string]*Result{"a": Healthy("ok")}, StatusHealthy},
		{"unhealthy wins", map[string]*Result{"a": Degraded("x"), "b": Unhealthy("y")}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBinaryChecker(t *testing.T) {
	missing := NewBinaryChecker(filepath.Join(t.TempDir(), "no-such-verifyta"))
	if got := missing.Check(context.Background()); got.Status != StatusUnhealthy {
		t.Errorf("missing binary status = %v, want unhealthy", got.Status)
	}

	if runtime.GOOS == "windows" {
		t.Skip("shell script checker requires a unix shell")
	}
	dir := t.TempDir()
	checker := filepath.Join(dir, "verifyta")
	script := "#!/bin/sh\necho 'UPPAAL 5.0.0 (rev. 1)'\n"
	if err := os.WriteFile(checker, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	result := NewBinaryChecker(checker).Check(context.Background())
	if result.Status != StatusHealthy {
		t.Fatalf("status = %v (%s), want healthy", result.Status, result.Message)
	}
	if result.Details["version"] != "UPPAAL 5.0.0 (rev. 1)" {
		t.Errorf("version = %v", result.Details["version"])
	}

	silent := filepath.Join(dir, "silent")
	if err := os.WriteFile(silent, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatal(err)
	}
	if got := NewBinaryChecker(silent).Check(context.Background()); got.Status != StatusDegraded {
		t.Errorf("silent binary status = %v, want degraded", got.Status)
	}
}

func TestDirectoryChecker(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")
	result := NewDirectoryChecker("manifest-dir", dir).Check(context.Background())
	if result.Status != StatusHealthy {
		t.Fatalf("status = %v (%v), want healthy", result.Status, result.Details["error"])
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("probe file left behind: %v", entries)
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if got := NewDirectoryChecker("scratch-dir", filepath.Join(file, "sub")).Check(context.Background()); got.Status != StatusUnhealthy {
		t.Errorf("status under a file = %v, want unhealthy", got.Status)
	}
}
