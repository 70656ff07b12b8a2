package translate

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/rtcheck/internal/model"
	"github.com/felixgeelhaar/rtcheck/internal/nta"
)

// ComponentAutomaton generates the automaton of one task.
//
// Clock x measures time since release, c execution time. Idle is bounded by
// the period only for periodic tasks without incoming connections; a task
// fed by a connection is released whenever its producer completes.
func ComponentAutomaton(task model.Task, prefix string, incoming bool) Fragment {
	name := task.Name
	w := task.WCETOrZero().Int()
	d, hasDeadline := task.EffectiveDeadline()

	tpl := nta.NewTemplate(name).Declare("clock x, c;")

	idle := tpl.AddLocation("Idle")
	if task.Period != nil && !incoming {
		idle.WithInvariant(fmt.Sprintf("x <= %d", task.Period.Int()))
	}
	ready := tpl.AddLocation("Ready")

	execInv := []string{fmt.Sprintf("c <= %d", w)}
	if hasDeadline {
		execInv = append(execInv, fmt.Sprintf("x <= %d", d.Int()))
	}
	exec := tpl.AddLocation("Exec").WithInvariant(strings.Join(execInv, " && "))

	tpl.Connect(idle, ready).
		WithSync(recv(releaseChan(name))).
		WithAssign(fmt.Sprintf("x = 0, %s = true", readyOf(prefix, name)))
	tpl.Connect(ready, exec).
		WithSync(recv(startChan(name))).
		WithAssign("c = 0")
	tpl.Connect(exec, idle).
		WithGuard(fmt.Sprintf("c == %d", w)).
		WithSync(send(doneChan(name))).
		WithAssign("x = 0")

	if hasDeadline {
		miss := tpl.AddLocation(DeadlineMissLocation)
		tpl.Connect(ready, miss).WithGuard(fmt.Sprintf("x > %d", d.Int()))
		// Exec caps x at d, so reaching d unfinished is the miss.
		tpl.Connect(exec, miss).WithGuard(fmt.Sprintf("x >= %d && c < %d", d.Int(), w))
	}

	return Fragment{Template: tpl, Process: TaskProcess(name)}
}
