package translate

import (
	"github.com/felixgeelhaar/rtcheck/internal/nta"
)

// ConnectionDriver forwards the completion of src as a release of dst with
// no delay. Latency budgets are enforced by pipeline observers only.
func ConnectionDriver(src, dst string) Fragment {
	name := driverTemplate(src, dst)

	tpl := nta.NewTemplate(name)
	idle := tpl.AddLocation("Idle")
	trig := tpl.AddLocation("Trig").MarkCommitted()
	tpl.Connect(idle, trig).WithSync(recv(doneChan(src)))
	tpl.Connect(trig, idle).WithSync(send(releaseChan(dst)))

	return Fragment{Template: tpl, Process: "D_" + name}
}
