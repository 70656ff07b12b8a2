package translate

import (
	"fmt"

	"github.com/felixgeelhaar/rtcheck/internal/domain"
	"github.com/felixgeelhaar/rtcheck/internal/nta"
)

// Fragment is one generated template together with the process that
// instantiates it.
type Fragment struct {
	Template *nta.Template
	Process  string
}

func startChan(task string) string   { return "start_" + task }
func doneChan(task string) string    { return "done_" + task }
func releaseChan(task string) string { return "release_" + task }

func send(ch string) string { return ch + "!" }
func recv(ch string) string { return ch + "?" }

func idxConst(task string) string { return "IDX_" + task }

func readyVar(prefix string) string   { return "ready_" + prefix }
func runningVar(prefix string) string { return "running_" + prefix }
func countConst(prefix string) string { return "N_" + prefix }
func prioArray(prefix string) string  { return "PRIO_" + prefix }

func readyOf(prefix, task string) string {
	return fmt.Sprintf("%s[%s]", readyVar(prefix), idxConst(task))
}

// TaskProcess is the process name of a task automaton.
func TaskProcess(task string) string { return "P_" + task }

func timerTemplate(task string) string { return "Timer_" + task }
func envTemplate(task string) string   { return "Env_" + task }

func driverTemplate(src, dst string) string { return fmt.Sprintf("Conn_%s_to_%s", src, dst) }

func schedulerTemplate(prefix string) string { return "Scheduler_" + prefix }

func observerTemplate(property string) string { return "PipeObs_" + domain.Sanitize(property) }

// DeadlineMissLocation is the location a task automaton enters once its
// deadline has passed without completion.
const DeadlineMissLocation = "DeadlineMiss"

// BadLocation is the violation location of a pipeline observer.
const BadLocation = "Bad"
