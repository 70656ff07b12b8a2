package translate

import (
	"fmt"

	"github.com/felixgeelhaar/rtcheck/internal/duration"
	"github.com/felixgeelhaar/rtcheck/internal/nta"
)

// PeriodicTimer releases a task every period.
func PeriodicTimer(task string, period duration.Millis) Fragment {
	name := timerTemplate(task)
	p := period.Int()

	tpl := nta.NewTemplate(name).Declare("clock t;")
	wait := tpl.AddLocation("Wait").WithInvariant(fmt.Sprintf("t <= %d", p))
	tpl.Connect(wait, wait).
		WithGuard(fmt.Sprintf("t == %d", p)).
		WithSync(send(releaseChan(task))).
		WithAssign("t = 0")

	return Fragment{Template: tpl, Process: "T_" + task}
}

// EnvironmentTrigger releases a task exactly once, at time zero. It stands
// for an external stimulus of a task with neither a period nor an input.
func EnvironmentTrigger(task string) Fragment {
	name := envTemplate(task)

	tpl := nta.NewTemplate(name)
	idle := tpl.AddLocation("Idle").MarkCommitted()
	done := tpl.AddLocation("Done")
	tpl.Connect(idle, done).WithSync(send(releaseChan(task)))

	return Fragment{Template: tpl, Process: "I_" + name}
}
