package translate

import (
	"fmt"

	"github.com/felixgeelhaar/rtcheck/internal/model"
	"github.com/felixgeelhaar/rtcheck/internal/nta"
)

// Budgets maps (source task, destination task) to a latency budget in ms.
type Budgets map[[2]string]int64

// BudgetsOf collects connection budgets. When several connections join the
// same pair the last one declared wins; an absent budget counts as 0.
func BudgetsOf(conns []model.Connection) Budgets {
	b := make(Budgets, len(conns))
	for _, c := range conns {
		b[[2]string{c.SrcTask(), c.DstTask()}] = c.BudgetOrZero().Int()
	}
	return b
}

// Get returns the budget of the src→dst edge, 0 when there is none.
func (b Budgets) Get(src, dst string) int64 {
	return b[[2]string{src, dst}]
}

// FindPredecessor returns the unique task feeding first through a
// connection. With zero or several distinct sources there is no
// predecessor; sources lists what was found so callers can report the
// ambiguous case.
func FindPredecessor(first string, conns []model.Connection) (pred string, sources []string) {
	seen := make(map[string]bool)
	for _, c := range conns {
		if c.DstTask() != first {
			continue
		}
		src := c.SrcTask()
		if !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}
	if len(sources) == 1 {
		return sources[0], sources
	}
	return "", sources
}

// Observer describes one end-to-end latency monitor.
type Observer struct {
	// Template is the generated template name.
	Template string
	Chain    []string
	BoundMS  int64
	// Predecessor starts the pipeline on its completion; empty means the
	// pipeline starts when the first stage starts.
	Predecessor string
	Budgets     Budgets
}

// EntryBudget is the budget of the predecessor→first edge.
func (o Observer) EntryBudget() int64 {
	if o.Predecessor == "" {
		return 0
	}
	return o.Budgets.Get(o.Predecessor, o.Chain[0])
}

// TotalBudget is the entry budget plus every chain edge budget.
func (o Observer) TotalBudget() int64 {
	total := o.EntryBudget()
	for i := 0; i+1 < len(o.Chain); i++ {
		total += o.Budgets.Get(o.Chain[i], o.Chain[i+1])
	}
	return total
}

// EffectiveBound is the part of the end-to-end bound left for execution
// once all connection budgets are reserved, never below 0.
func (o Observer) EffectiveBound() int64 {
	eff := o.BoundMS - o.TotalBudget()
	if eff < 0 {
		return 0
	}
	return eff
}

// Process is the observer's process name.
func (o Observer) Process() string {
	return "I_" + o.Template
}

// Query is the safety query of the observer: Bad is never reached.
func (o Observer) Query() string {
	return fmt.Sprintf("A[] not %s.%s", o.Process(), BadLocation)
}

// PipelineObserver generates the monitor automaton.
//
// Clock t runs from pipeline start and is bounded by the effective bound in
// every location where time may pass; clock e runs from the latest hop and
// is bounded by that hop's budget when it has one.
func PipelineObserver(o Observer) Fragment {
	eff := o.EffectiveBound()
	first, last := o.Chain[0], o.Chain[len(o.Chain)-1]
	within := fmt.Sprintf("t <= %d", eff)

	tpl := nta.NewTemplate(o.Template).Declare("clock t, e;")
	idle := tpl.AddLocation("Idle")

	var timed []*nta.Location
	wait := make(map[string]*nta.Location, len(o.Chain))
	for _, stage := range o.Chain {
		loc := tpl.AddLocation("Wait_" + stage).WithInvariant(within)
		wait[stage] = loc
		timed = append(timed, loc)
	}

	hop := func(name string, budget int64) *nta.Location {
		inv := within
		if budget > 0 {
			inv += fmt.Sprintf(" && e <= %d", budget)
		}
		loc := tpl.AddLocation(name).WithInvariant(inv)
		timed = append(timed, loc)
		return loc
	}

	conns := make([]*nta.Location, 0, len(o.Chain))
	for i := 0; i+1 < len(o.Chain); i++ {
		src, dst := o.Chain[i], o.Chain[i+1]
		conns = append(conns, hop(fmt.Sprintf("Conn_%s_to_%s", src, dst), o.Budgets.Get(src, dst)))
	}

	var entry *nta.Location
	if o.Predecessor != "" {
		entry = hop("Conn_ENTRY_to_"+first, o.EntryBudget())
	}

	bad := tpl.AddLocation(BadLocation)
	done := tpl.AddLocation("Done")

	if entry != nil {
		tpl.Connect(idle, entry).
			WithSync(recv(doneChan(o.Predecessor))).
			WithAssign("t = 0, e = 0")
		tpl.Connect(entry, wait[first]).WithSync(recv(startChan(first)))
		if b := o.EntryBudget(); b > 0 {
			tpl.Connect(entry, bad).WithGuard(fmt.Sprintf("e == %d", b))
		}
	} else {
		tpl.Connect(idle, wait[first]).
			WithSync(recv(startChan(first))).
			WithAssign("t = 0")
	}

	for i, conn := range conns {
		src, dst := o.Chain[i], o.Chain[i+1]
		tpl.Connect(wait[src], conn).
			WithSync(recv(doneChan(src))).
			WithAssign("e = 0")
		if b := o.Budgets.Get(src, dst); b > 0 {
			tpl.Connect(conn, bad).WithGuard(fmt.Sprintf("e == %d", b))
		}
		tpl.Connect(conn, wait[dst]).WithSync(recv(startChan(dst)))
	}

	tpl.Connect(wait[last], done).
		WithGuard(within).
		WithSync(recv(doneChan(last)))

	for _, loc := range timed {
		tpl.Connect(loc, bad).WithGuard(fmt.Sprintf("t == %d", eff))
	}

	tpl.Connect(done, idle)

	return Fragment{Template: tpl, Process: o.Process()}
}

// observerName derives a template name for a property that does not clash
// with names already taken.
func observerName(property string, taken func(string) bool) string {
	base := observerTemplate(property)
	name := base
	for n := 2; taken(name); n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	return name
}
