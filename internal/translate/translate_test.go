package translate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/rtcheck/internal/duration"
	"github.com/felixgeelhaar/rtcheck/internal/log"
	"github.com/felixgeelhaar/rtcheck/internal/model"
	"github.com/felixgeelhaar/rtcheck/internal/nta"
	"github.com/felixgeelhaar/rtcheck/internal/property"
)

func ms(v int64) *duration.Millis { return duration.Ptr(duration.Millis(v)) }

func prio(p int) *int { return &p }

// edges finds the transitions between two named locations of a template.
func edges(t *testing.T, tpl *nta.Template, from, to string) []*nta.Transition {
	t.Helper()
	src, dst := tpl.Location(from), tpl.Location(to)
	require.NotNil(t, src, "location %s missing in %s", from, tpl.Name)
	require.NotNil(t, dst, "location %s missing in %s", to, tpl.Name)

	var out []*nta.Transition
	for _, tr := range tpl.Transitions {
		if tr.Source == src.ID && tr.Target == dst.ID {
			out = append(out, tr)
		}
	}
	return out
}

func edge(t *testing.T, tpl *nta.Template, from, to string) *nta.Transition {
	t.Helper()
	found := edges(t, tpl, from, to)
	require.Len(t, found, 1, "%s: %s -> %s", tpl.Name, from, to)
	return found[0]
}

func translate(t *testing.T, m *model.Model) *Result {
	t.Helper()
	res, err := (&Builder{Logger: log.Discard()}).Translate(m)
	require.NoError(t, err)
	return res
}

func TestComponentDeadlineEncoding(t *testing.T) {
	task := model.Task{Name: "A", Period: ms(100), Deadline: ms(80), WCET: ms(30)}
	tpl := ComponentAutomaton(task, "GLOBAL", false).Template

	assert.Equal(t, "x <= 100", tpl.Location("Idle").Invariant)
	assert.Equal(t, "c <= 30 && x <= 80", tpl.Location("Exec").Invariant)
	assert.Equal(t, "A_Idle", tpl.Init)

	release := edge(t, tpl, "Idle", "Ready")
	assert.Equal(t, "release_A?", release.Sync)
	assert.Equal(t, "x = 0, ready_GLOBAL[IDX_A] = true", release.Assign)

	start := edge(t, tpl, "Ready", "Exec")
	assert.Equal(t, "start_A?", start.Sync)
	assert.Equal(t, "c = 0", start.Assign)

	done := edge(t, tpl, "Exec", "Idle")
	assert.Equal(t, "c == 30", done.Guard)
	assert.Equal(t, "done_A!", done.Sync)
	assert.Equal(t, "x = 0", done.Assign)

	assert.Equal(t, "x > 80", edge(t, tpl, "Ready", DeadlineMissLocation).Guard)
	assert.Equal(t, "x >= 80 && c < 30", edge(t, tpl, "Exec", DeadlineMissLocation).Guard)
}

func TestComponentVariants(t *testing.T) {
	t.Run("deadline defaults to wcet", func(t *testing.T) {
		tpl := ComponentAutomaton(model.Task{Name: "B", WCET: ms(20)}, "GLOBAL", false).Template
		assert.Equal(t, "c <= 20 && x <= 20", tpl.Location("Exec").Invariant)
		require.NotNil(t, tpl.Location(DeadlineMissLocation))
		assert.Equal(t, "", tpl.Location("Idle").Invariant)
	})

	t.Run("no deadline at all", func(t *testing.T) {
		tpl := ComponentAutomaton(model.Task{Name: "C"}, "GLOBAL", false).Template
		assert.Nil(t, tpl.Location(DeadlineMissLocation))
		assert.Equal(t, "c <= 0", tpl.Location("Exec").Invariant)
		assert.Len(t, tpl.Transitions, 3)
	})

	t.Run("periodic but fed by a connection", func(t *testing.T) {
		tpl := ComponentAutomaton(model.Task{Name: "D", Period: ms(50), WCET: ms(5)}, "car", true).Template
		assert.Equal(t, "", tpl.Location("Idle").Invariant)
		assert.Equal(t, "x = 0, ready_car[IDX_D] = true", edge(t, tpl, "Idle", "Ready").Assign)
	})
}

func TestTriggers(t *testing.T) {
	timer := PeriodicTimer("A", 100)
	assert.Equal(t, "T_A", timer.Process)
	assert.Equal(t, "Timer_A", timer.Template.Name)
	assert.Equal(t, "t <= 100", timer.Template.Location("Wait").Invariant)
	loop := edge(t, timer.Template, "Wait", "Wait")
	assert.Equal(t, "t == 100", loop.Guard)
	assert.Equal(t, "release_A!", loop.Sync)
	assert.Equal(t, "t = 0", loop.Assign)

	env := EnvironmentTrigger("B")
	assert.Equal(t, "I_Env_B", env.Process)
	assert.True(t, env.Template.Location("Idle").Committed)
	assert.Equal(t, "release_B!", edge(t, env.Template, "Idle", "Done").Sync)
}

func TestConnectionDriverHasNoClock(t *testing.T) {
	m := &model.Model{
		Tasks: []model.Task{
			{Name: "A", Period: ms(100), WCET: ms(10)},
			{Name: "B", WCET: ms(10)},
		},
		Connections: []model.Connection{{Name: "ab", Src: "A.out", Dst: "B.in", LatencyBudget: ms(10)}},
	}
	res := translate(t, m)

	drv := res.Document.Template("Conn_A_to_B")
	require.NotNil(t, drv)
	assert.Empty(t, drv.Declarations)
	assert.True(t, drv.Location("Trig").Committed)
	for _, tr := range drv.Transitions {
		assert.Empty(t, tr.Guard)
	}
	assert.Equal(t, "done_A?", edge(t, drv, "Idle", "Trig").Sync)
	assert.Equal(t, "release_B!", edge(t, drv, "Trig", "Idle").Sync)

	// B is event-driven: neither a timer nor an environment trigger
	assert.Nil(t, res.Document.Template("Timer_B"))
	assert.Nil(t, res.Document.Template("Env_B"))
	assert.NotNil(t, res.Document.Template("Timer_A"))
}

func TestSchedulerPriorityOrdering(t *testing.T) {
	m := &model.Model{Tasks: []model.Task{
		{Name: "B", Period: ms(100), WCET: ms(10), Priority: prio(2)},
		{Name: "A", Period: ms(100), WCET: ms(10), Priority: prio(1)},
	}}
	grp := model.Groups(m)[0]
	sched := Scheduler(grp).Template

	assert.Equal(t, "Scheduler_GLOBAL", sched.Name)
	assert.True(t, sched.Location("Dispatch").Committed)
	assert.True(t, sched.Location("Post").Committed)
	assert.False(t, sched.Location("Busy").Committed)

	dispatch := edges(t, sched, "Dispatch", "Busy")
	require.Len(t, dispatch, 2)
	assert.Equal(t, "running_GLOBAL == -1 && ready_GLOBAL[IDX_A]", dispatch[0].Guard)
	assert.Equal(t, "start_A!", dispatch[0].Sync)
	assert.Equal(t, "running_GLOBAL = IDX_A, ready_GLOBAL[IDX_A] = false", dispatch[0].Assign)
	assert.Equal(t, "running_GLOBAL == -1 && ready_GLOBAL[IDX_B] && !ready_GLOBAL[IDX_A]", dispatch[1].Guard)
	assert.Equal(t, "start_B!", dispatch[1].Sync)

	assert.Equal(t, "!ready_GLOBAL[IDX_A] && !ready_GLOBAL[IDX_B]", edge(t, sched, "Dispatch", "Idle").Guard)

	releases := edges(t, sched, "Idle", "Dispatch")
	require.Len(t, releases, 2)
	assert.Equal(t, "release_A?", releases[0].Sync)

	completions := edges(t, sched, "Busy", "Post")
	require.Len(t, completions, 2)
	assert.Equal(t, "running_GLOBAL == IDX_B", completions[1].Guard)
	assert.Equal(t, "done_B?", completions[1].Sync)
	assert.Equal(t, "running_GLOBAL = -1", completions[1].Assign)

	assert.Equal(t, "ready_GLOBAL[IDX_A] || ready_GLOBAL[IDX_B]", edge(t, sched, "Post", "Dispatch").Guard)

	decl := GroupDeclarations(grp)
	assert.Equal(t, []string{
		"const int N_GLOBAL = 2;",
		"const int IDX_A = 0;",
		"const int IDX_B = 1;",
		"const int PRIO_GLOBAL[N_GLOBAL] = {1, 2};",
		"bool ready_GLOBAL[N_GLOBAL];",
		"int running_GLOBAL = -1;",
	}, decl)
}

func pipelineModel() *model.Model {
	return &model.Model{
		Tasks: []model.Task{
			{Name: "A", Period: ms(100), WCET: ms(10)},
			{Name: "B", WCET: ms(10)},
			{Name: "C", WCET: ms(10)},
		},
		Connections: []model.Connection{
			{Src: "A.out", Dst: "B.in", LatencyBudget: ms(20)},
			{Src: "B.out", Dst: "C.in", LatencyBudget: ms(30)},
		},
		Properties: model.Properties{{Name: "e2e", Text: "A -> B -> C within 200ms"}},
	}
}

func TestPipelineBudgetDecomposition(t *testing.T) {
	res := translate(t, pipelineModel())

	assert.Equal(t, "A[] not I_PipeObs_e2e.Bad", res.Queries["e2e"])
	obs := res.Document.Template("PipeObs_e2e")
	require.NotNil(t, obs)
	assert.Equal(t, []string{"clock t, e;"}, obs.Declarations)

	start := edge(t, obs, "Idle", "Wait_A")
	assert.Equal(t, "start_A?", start.Sync)
	assert.Equal(t, "t = 0", start.Assign)

	assert.Equal(t, "t <= 150", obs.Location("Wait_B").Invariant)
	assert.Equal(t, "t <= 150 && e <= 20", obs.Location("Conn_A_to_B").Invariant)
	assert.Equal(t, "t <= 150 && e <= 30", obs.Location("Conn_B_to_C").Invariant)

	hop := edge(t, obs, "Wait_A", "Conn_A_to_B")
	assert.Equal(t, "done_A?", hop.Sync)
	assert.Equal(t, "e = 0", hop.Assign)
	assert.Equal(t, "start_B?", edge(t, obs, "Conn_A_to_B", "Wait_B").Sync)

	finish := edge(t, obs, "Wait_C", "Done")
	assert.Equal(t, "t <= 150", finish.Guard)
	assert.Equal(t, "done_C?", finish.Sync)
	edge(t, obs, "Done", "Idle")

	bad := map[string][]string{}
	for _, from := range []string{"Wait_A", "Wait_B", "Wait_C", "Conn_A_to_B", "Conn_B_to_C"} {
		for _, tr := range edges(t, obs, from, BadLocation) {
			bad[from] = append(bad[from], tr.Guard)
		}
	}
	assert.Equal(t, []string{"t == 150"}, bad["Wait_A"])
	assert.ElementsMatch(t, []string{"e == 20", "t == 150"}, bad["Conn_A_to_B"])
	assert.ElementsMatch(t, []string{"e == 30", "t == 150"}, bad["Conn_B_to_C"])
	assert.Empty(t, edges(t, obs, "Idle", BadLocation))
}

func TestPipelineObserverStartedByPredecessor(t *testing.T) {
	m := pipelineModel()
	m.Tasks = append(m.Tasks, model.Task{Name: "S", Period: ms(50), WCET: ms(1)})
	m.Connections = append(m.Connections, model.Connection{Src: "S.out", Dst: "A.in", LatencyBudget: ms(5)})
	m.Properties = model.Properties{{Name: "tail", Text: "A -> B within 100ms"}}

	res := translate(t, m)
	obs := res.Document.Template("PipeObs_tail")
	require.NotNil(t, obs)

	// 100 - (5 entry + 20 edge)
	entry := edge(t, obs, "Idle", "Conn_ENTRY_to_A")
	assert.Equal(t, "done_S?", entry.Sync)
	assert.Equal(t, "t = 0, e = 0", entry.Assign)
	assert.Equal(t, "t <= 75 && e <= 5", obs.Location("Conn_ENTRY_to_A").Invariant)
	assert.Equal(t, "start_A?", edge(t, obs, "Conn_ENTRY_to_A", "Wait_A").Sync)
	assert.ElementsMatch(t, []string{"e == 5", "t == 75"}, guards(edges(t, obs, "Conn_ENTRY_to_A", BadLocation)))
}

func TestPipelineAmbiguousPredecessor(t *testing.T) {
	m := pipelineModel()
	m.Tasks = append(m.Tasks,
		model.Task{Name: "S1", Period: ms(50), WCET: ms(1)},
		model.Task{Name: "S2", Period: ms(50), WCET: ms(1)},
	)
	m.Connections = append(m.Connections,
		model.Connection{Src: "S1.out", Dst: "A.in", LatencyBudget: ms(5)},
		model.Connection{Src: "S2.out", Dst: "A.in", LatencyBudget: ms(7)},
	)

	var buf strings.Builder
	logger := log.New(log.Config{Level: log.LevelWarn, Format: log.FormatText, Output: log.NewOutput(&buf)})
	res, err := (&Builder{Logger: logger}).Translate(m)
	require.NoError(t, err)

	obs := res.Document.Template("PipeObs_e2e")
	assert.Nil(t, obs.Location("Conn_ENTRY_to_A"))
	assert.Equal(t, "start_A?", edge(t, obs, "Idle", "Wait_A").Sync)
	assert.Equal(t, "t <= 150", obs.Location("Wait_A").Invariant)
	assert.Contains(t, buf.String(), "several producers")
}

func TestObserverBudgets(t *testing.T) {
	conns := []model.Connection{
		{Src: "A.o", Dst: "B.i", LatencyBudget: ms(10)},
		{Src: "A.x", Dst: "B.y", LatencyBudget: ms(25)},
		{Src: "B.o", Dst: "C.i"},
	}
	b := BudgetsOf(conns)
	assert.Equal(t, int64(25), b.Get("A", "B"), "last declared connection wins")
	assert.Equal(t, int64(0), b.Get("B", "C"))
	assert.Equal(t, int64(0), b.Get("C", "D"))

	o := Observer{Chain: []string{"A", "B", "C"}, BoundMS: 20, Budgets: b}
	assert.Equal(t, int64(25), o.TotalBudget())
	assert.Equal(t, int64(0), o.EffectiveBound(), "never negative")

	pred, sources := FindPredecessor("B", conns)
	assert.Equal(t, "A", pred)
	assert.Equal(t, []string{"A"}, sources)

	pred, sources = FindPredecessor("A", conns)
	assert.Empty(t, pred)
	assert.Empty(t, sources)
}

func TestSynthesizedDeadlineQuery(t *testing.T) {
	m := &model.Model{Tasks: []model.Task{
		{Name: "A", Period: ms(100), Deadline: ms(80), WCET: ms(30)},
		{Name: "N", Period: ms(100), WCET: ms(5)},
		{Name: "B", Period: ms(200), Deadline: ms(150), WCET: ms(40)},
	}}
	res := translate(t, m)

	assert.Equal(t, map[string]string{
		property.DeadlinePropertyName: "A[] not (P_A.DeadlineMiss || P_B.DeadlineMiss)",
	}, res.Queries)
	assert.Equal(t, []string{property.DeadlinePropertyName}, res.Order)

	single := translate(t, &model.Model{Tasks: m.Tasks[:1]})
	assert.Equal(t, "A[] not P_A.DeadlineMiss", single.Queries[property.DeadlinePropertyName])

	none := translate(t, &model.Model{Tasks: []model.Task{{Name: "N", WCET: ms(5)}}})
	assert.Empty(t, none.Queries)
}

func TestDeclaredDeadlinePropertyIsKept(t *testing.T) {
	m := &model.Model{
		Tasks:      []model.Task{{Name: "A", Period: ms(100), Deadline: ms(80), WCET: ms(30)}},
		Properties: model.Properties{{Name: property.DeadlinePropertyName, Text: "A[] not P_A.DeadlineMiss && true"}},
	}
	res := translate(t, m)
	assert.Equal(t, "A[] not P_A.DeadlineMiss && true", res.Queries[property.DeadlinePropertyName])
	assert.Equal(t, []string{property.DeadlinePropertyName}, res.Order)
}

func TestPropertyResolution(t *testing.T) {
	m := pipelineModel()
	m.Properties = model.Properties{
		{Name: "live", Text: `"E<> P_C.Exec"`},
		{Name: "e-2", Text: "A -> B -> C within 200ms"},
		{Name: "e_2", Text: "A -> B within 90ms"},
		{Name: "ghost", Text: "A -> Z within 10ms"},
		{Name: "vague", Text: "P_A.x < 5"},
	}
	res := translate(t, m)

	assert.Equal(t, []string{"live", "e-2", "e_2", "ghost", "vague"}, res.Order)
	assert.Equal(t, []string{"ghost", "vague"}, res.Unresolved)
	assert.Equal(t, "E<> P_C.Exec", res.Queries["live"])
	assert.Equal(t, "A[] not I_PipeObs_e_2.Bad", res.Queries["e-2"])
	assert.Equal(t, "A[] not I_PipeObs_e_2_2.Bad", res.Queries["e_2"])
	_, ok := res.Query("ghost")
	assert.False(t, ok)

	kinds := make([]property.Kind, len(res.Classified))
	for i, c := range res.Classified {
		kinds[i] = c.Kind
	}
	assert.Equal(t, []property.Kind{
		property.RawFormula, property.PipelinePattern, property.PipelinePattern,
		property.Unresolved, property.Unresolved,
	}, kinds)
}

func TestTranslateDocument(t *testing.T) {
	m := pipelineModel()
	m.Tasks = append(m.Tasks, model.Task{Name: "Lone", WCET: ms(3), Vehicle: "car-1"})
	m.Connections = append(m.Connections, model.Connection{Src: "A.out", Dst: "B.aux"}, model.Connection{Src: "Q.out", Dst: "A.in"})
	res := translate(t, m)
	doc := res.Document

	var names []string
	for _, tpl := range doc.Templates {
		names = append(names, tpl.Name)
	}
	assert.Equal(t, []string{
		"A", "B", "C", "Lone",
		"Timer_A", "Env_Lone",
		"Conn_A_to_B", "Conn_B_to_C",
		"Scheduler_GLOBAL", "Scheduler_car_1",
		"PipeObs_e2e",
	}, names)

	assert.Equal(t, "broadcast chan start_A, done_A;", doc.Declarations[0])
	assert.Contains(t, doc.Declarations, "broadcast chan release_Lone;")
	assert.Contains(t, doc.Declarations, "const int N_car_1 = 1;")
	assert.Contains(t, doc.Declarations, "int running_car_1 = -1;")

	assert.Equal(t, nta.Instance{Process: "P_A", Template: "A"}, doc.Instances[0])
	assert.Contains(t, doc.SystemBlock(), "S_car_1 = Scheduler_car_1();")
	assert.NoError(t, doc.Validate())
}

func TestTranslateRejectsInvalidModel(t *testing.T) {
	_, err := (&Builder{Logger: log.Discard()}).Translate(&model.Model{Tasks: []model.Task{{Name: "A"}, {Name: "A"}}})
	assert.Error(t, err)
}

func TestBuildPersistsArtifacts(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder(log.Discard(), filepath.Join(dir, "out"))

	bundle, err := b.Build(pipelineModel())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "out", bundle.Hash+".xml"), bundle.ModelPath)
	assert.Equal(t, filepath.Join(dir, "out", bundle.Hash+".queries.yaml"), bundle.QueriesPath)

	xml, err := os.ReadFile(bundle.ModelPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(xml), "<?xml"))
	assert.Contains(t, string(xml), nta.Doctype)

	raw, err := os.ReadFile(bundle.QueriesPath)
	require.NoError(t, err)
	var queries map[string]string
	require.NoError(t, yaml.Unmarshal(raw, &queries))
	assert.Equal(t, bundle.Queries, queries)

	q, ok := bundle.Query("e2e")
	assert.True(t, ok)
	assert.Equal(t, "A[] not I_PipeObs_e2e.Bad", q)

	again, err := b.Build(pipelineModel())
	require.NoError(t, err)
	assert.Equal(t, bundle.Hash, again.Hash, "artifact names are stable")

	require.NoError(t, bundle.Remove())
	assert.NoFileExists(t, bundle.ModelPath)
	assert.NoFileExists(t, bundle.QueriesPath)
}

func TestBuildIntoTempDir(t *testing.T) {
	bundle, err := (&Builder{Logger: log.Discard()}).Build(pipelineModel())
	require.NoError(t, err)
	assert.FileExists(t, bundle.ModelPath)

	dir := filepath.Dir(bundle.ModelPath)
	require.NoError(t, bundle.Remove())
	assert.NoDirExists(t, dir)
}

func TestMarshalQueriesKeepsOrder(t *testing.T) {
	out, err := MarshalQueries([]string{"z", "missing", "a"}, map[string]string{"a": "A[] true", "z": "E<> true"})
	require.NoError(t, err)
	assert.Equal(t, "z: \"E<> true\"\na: \"A[] true\"\n", string(out))
}

func guards(trs []*nta.Transition) []string {
	out := make([]string, len(trs))
	for i, tr := range trs {
		out[i] = tr.Guard
	}
	return out
}
