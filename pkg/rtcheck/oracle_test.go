package rtcheck

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenario = `
system: demo
components:
  - name: A
    period: 100
    deadline: 80
    wcet: 30
    priority: 1
  - name: B
    wcet: 20
    priority: 2
connections:
  - src: A.out
    dst: B.in
    latency_budget_ms: 10
properties:
  e2e: "A -> B within 150ms"
`

// scriptedRunner violates every query containing one of the given fragments.
type scriptedRunner struct {
	violate []string
}

func (s scriptedRunner) Run(_ context.Context, req RunRequest) (*RunResult, error) {
	data, err := os.ReadFile(req.QueryPath)
	if err != nil {
		return nil, err
	}
	for _, frag := range s.violate {
		if strings.Contains(string(data), frag) {
			return &RunResult{Output: "Formula is NOT satisfied."}, nil
		}
	}
	return &RunResult{Output: "Formula is satisfied."}, nil
}

func loadScenario(t *testing.T) *Model {
	t.Helper()
	m, err := ParseModel([]byte(scenario))
	require.NoError(t, err)
	return m
}

func TestVerdictOf(t *testing.T) {
	tests := []struct {
		name     string
		statuses map[string]Status
		want     Verdict
	}{
		{"all satisfied", map[string]Status{"a": Satisfied, "b": Satisfied}, Feasible},
		{"violation wins", map[string]Status{"a": Violated, "b": Unavailable}, Infeasible},
		{"unavailable is unknown", map[string]Status{"a": Satisfied, "b": Unavailable}, Unknown},
		{"nothing checked", map[string]Status{}, Feasible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerdictOf(tt.statuses))
		})
	}
	assert.Equal(t, "infeasible", Infeasible.String())
}

func TestOracleCheck(t *testing.T) {
	scratch := t.TempDir()
	o := New(WithRunner(scriptedRunner{}), WithScratchDir(scratch))

	statuses, err := o.Check(context.Background(), loadScenario(t))
	require.NoError(t, err)
	assert.Equal(t, map[string]Status{"e2e": Satisfied, DeadlineProperty: Satisfied}, statuses)

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOracleFeasible(t *testing.T) {
	m := loadScenario(t)
	ctx := context.Background()

	verdict, err := New(WithRunner(scriptedRunner{})).Feasible(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, Feasible, verdict)

	verdict, err = New(WithRunner(scriptedRunner{violate: []string{"DeadlineMiss"}})).Feasible(ctx, m, DeadlineProperty)
	require.NoError(t, err)
	assert.Equal(t, Infeasible, verdict)

	verdict, err = New(WithRunner(scriptedRunner{violate: []string{"DeadlineMiss"}})).Feasible(ctx, m, "e2e")
	require.NoError(t, err)
	assert.Equal(t, Feasible, verdict)

	verdict, err = New(WithRunner(scriptedRunner{})).Feasible(ctx, m, "e2e", "no_such_property")
	require.NoError(t, err)
	assert.Equal(t, Unknown, verdict)
}

func TestOracleMissingCheckerIsUnknown(t *testing.T) {
	var logs bytes.Buffer
	o := New(
		WithChecker(filepath.Join(t.TempDir(), "missing-verifyta")),
		WithScratchDir(t.TempDir()),
		WithJobs(2),
		WithLogOutput(&logs, "warn"),
	)

	statuses, err := o.Check(context.Background(), loadScenario(t))
	require.NoError(t, err)
	for name, s := range statuses {
		assert.Equal(t, Unavailable, s, name)
	}

	verdict, err := o.Feasible(context.Background(), loadScenario(t))
	require.NoError(t, err)
	assert.Equal(t, Unknown, verdict)
	assert.Contains(t, logs.String(), "checker not found")
}

func TestOracleRejectsInvalidModel(t *testing.T) {
	m := &Model{Tasks: []Task{{Name: "bad name"}}}
	_, err := New(WithRunner(scriptedRunner{})).Feasible(context.Background(), m)
	assert.Error(t, err)
}
