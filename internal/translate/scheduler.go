package translate

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/rtcheck/internal/model"
	"github.com/felixgeelhaar/rtcheck/internal/nta"
)

// Scheduler generates the non-preemptive fixed-priority dispatcher of one
// group. Dispatch and Post are committed so every scheduling decision is
// taken without time passing.
//
// The dispatch transition of the i-th task in (priority, declaration) order
// requires that none of the tasks ranked before it is ready.
func Scheduler(g model.Group) Fragment {
	prefix := g.Prefix
	running := runningVar(prefix)

	tpl := nta.NewTemplate(schedulerTemplate(prefix))
	idle := tpl.AddLocation("Idle")
	dispatch := tpl.AddLocation("Dispatch").MarkCommitted()
	post := tpl.AddLocation("Post").MarkCommitted()
	busy := tpl.AddLocation("Busy")

	for _, rt := range g.Tasks {
		tpl.Connect(idle, dispatch).WithSync(recv(releaseChan(rt.Task.Name)))
	}

	readyTerms := make([]string, 0, len(g.Tasks))
	notReady := make([]string, 0, len(g.Tasks))
	for _, rt := range g.Tasks {
		name := rt.Task.Name
		guard := append([]string{running + " == -1", readyOf(prefix, name)}, notReady...)
		tpl.Connect(dispatch, busy).
			WithGuard(strings.Join(guard, " && ")).
			WithSync(send(startChan(name))).
			WithAssign(fmt.Sprintf("%s = %s, %s = false", running, idxConst(name), readyOf(prefix, name)))

		readyTerms = append(readyTerms, readyOf(prefix, name))
		notReady = append(notReady, "!"+readyOf(prefix, name))
	}

	none := strings.Join(notReady, " && ")
	tpl.Connect(dispatch, idle).WithGuard(none)

	for _, rt := range g.Tasks {
		name := rt.Task.Name
		tpl.Connect(busy, post).
			WithGuard(fmt.Sprintf("%s == %s", running, idxConst(name))).
			WithSync(recv(doneChan(name))).
			WithAssign(running + " = -1")
	}

	tpl.Connect(post, dispatch).WithGuard(strings.Join(readyTerms, " || "))
	tpl.Connect(post, idle).WithGuard(none)

	return Fragment{Template: tpl, Process: "S_" + prefix}
}

// GroupDeclarations declares the constants and shared state of a group.
// IDX_T is the task's rank in dispatch order.
func GroupDeclarations(g model.Group) []string {
	prefix := g.Prefix
	n := countConst(prefix)

	lines := []string{fmt.Sprintf("const int %s = %d;", n, g.Size())}
	for _, rt := range g.Tasks {
		lines = append(lines, fmt.Sprintf("const int %s = %d;", idxConst(rt.Task.Name), rt.Index))
	}

	prios := make([]string, g.Size())
	for i, p := range g.Priorities() {
		prios[i] = fmt.Sprint(p)
	}
	lines = append(lines,
		fmt.Sprintf("const int %s[%s] = {%s};", prioArray(prefix), n, strings.Join(prios, ", ")),
		fmt.Sprintf("bool %s[%s];", readyVar(prefix), n),
		fmt.Sprintf("int %s = -1;", runningVar(prefix)),
	)
	return lines
}

// ChannelDeclarations declares the broadcast channels of every task.
func ChannelDeclarations(tasks []model.Task) []string {
	lines := make([]string, 0, 2*len(tasks))
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("broadcast chan %s, %s;", startChan(t.Name), doneChan(t.Name)))
	}
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("broadcast chan %s;", releaseChan(t.Name)))
	}
	return lines
}
