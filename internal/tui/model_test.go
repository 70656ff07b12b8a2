package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/rtcheck/internal/verify"
)

func newTestModel() Model {
	return NewModel("models/demo.yaml", []string{"e2e", "deadline_misses==0", "liveness"}, nil)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return next, cmd
}

// TestNewModel tests model initialization
func TestNewModel(t *testing.T) {
	m := newTestModel()

	if m.model != "models/demo.yaml" {
		t.Errorf("Expected model path 'models/demo.yaml', got '%s'", m.model)
	}
	if len(m.properties) != 3 {
		t.Errorf("Expected 3 properties, got %d", len(m.properties))
	}
	if m.completed() != 0 {
		t.Errorf("Expected no completed properties, got %d", m.completed())
	}
	if m.done || m.aborted {
		t.Error("Expected a running model")
	}
	if m.Init() == nil {
		t.Error("Expected Init to start the spinner")
	}
}

// TestResultMessage tests that results are recorded per property
func TestResultMessage(t *testing.T) {
	m := newTestModel()

	m, _ = update(t, m, ResultMsg{Result: verify.Result{Property: "e2e", Status: verify.Satisfied}})
	m, _ = update(t, m, ResultMsg{Result: verify.Result{Property: "liveness", Status: verify.Unavailable, Detail: "checker \"verifyta\" not found"}})

	if m.completed() != 2 {
		t.Errorf("Expected 2 completed, got %d", m.completed())
	}
	if m.count(verify.Satisfied) != 1 {
		t.Errorf("Expected 1 satisfied, got %d", m.count(verify.Satisfied))
	}
	if m.count(verify.Unavailable) != 1 {
		t.Errorf("Expected 1 unavailable, got %d", m.count(verify.Unavailable))
	}

	pct := m.progressPercentage()
	if pct < 66 || pct > 67 {
		t.Errorf("Expected ~66.7%% progress, got %.1f", pct)
	}

	view := m.View()
	if !strings.Contains(view, "2/3") {
		t.Errorf("Expected progress counter in view, got:\n%s", view)
	}
	if !strings.Contains(view, "not found") {
		t.Error("Expected unavailable detail in view")
	}
}

// TestRunComplete tests that completion ends the program
func TestRunComplete(t *testing.T) {
	m := newTestModel()
	m, _ = update(t, m, ResultMsg{Result: verify.Result{Property: "e2e", Status: verify.Violated}})

	m, cmd := update(t, m, RunCompleteMsg{})
	if !m.done {
		t.Error("Expected done to be true")
	}
	if cmd == nil {
		t.Error("Expected quit command to be returned")
	}
	if m.Aborted() {
		t.Error("Expected a completed run not to be aborted")
	}
	if !strings.Contains(m.View(), "Properties violated") {
		t.Errorf("Expected violation summary, got:\n%s", m.View())
	}
}

// TestKeyPressAbort tests 'q' key to abort
func TestKeyPressAbort(t *testing.T) {
	called := false
	m := NewModel("demo.yaml", []string{"e2e"}, func() { called = true })

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !m.Aborted() {
		t.Error("Expected aborted to be true")
	}
	if !called {
		t.Error("Expected abort callback to be invoked")
	}
	if cmd == nil {
		t.Error("Expected quit command to be returned")
	}
	if !strings.Contains(m.View(), "aborted") {
		t.Errorf("Expected abort summary, got:\n%s", m.View())
	}
}

// TestKeyPressIgnored tests that other keys do nothing
func TestKeyPressIgnored(t *testing.T) {
	m := newTestModel()
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if m.Aborted() || cmd != nil {
		t.Error("Expected unrelated key to be ignored")
	}
}

func TestAllSatisfiedSummary(t *testing.T) {
	m := NewModel("demo.yaml", []string{"e2e"}, nil)
	m, _ = update(t, m, ResultMsg{Result: verify.Result{Property: "e2e", Status: verify.Satisfied}})
	m, _ = update(t, m, RunCompleteMsg{})

	if !strings.Contains(m.View(), "All properties satisfied") {
		t.Errorf("Expected success summary, got:\n%s", m.View())
	}
}

func TestEmptyProgressBar(t *testing.T) {
	m := NewModel("demo.yaml", nil, nil)
	if !strings.Contains(m.renderProgressBar(), "No properties") {
		t.Error("Expected placeholder for an empty run")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{3 * time.Second, "3s"},
		{90 * time.Second, "1m 30s"},
		{time.Hour + 2*time.Minute + 5*time.Second, "1h 2m 5s"},
		{400 * time.Millisecond, "0s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
