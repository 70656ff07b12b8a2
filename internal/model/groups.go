package model

import (
	"github.com/felixgeelhaar/rtcheck/internal/domain"
)

// Group is a set of tasks sharing one non-preemptive scheduler.
type Group struct {
	// Label is the vehicle label, empty for the global group.
	Label string
	// Prefix suffixes the group's scheduler and shared variables.
	Prefix string
	// Tasks in dispatch order.
	Tasks []RankedTask
}

// RankedTask is a task with its resolved priority and ready-array slot.
type RankedTask struct {
	Task     Task
	Priority int
	Index    int
}

// Size returns the number of tasks in the group.
func (g Group) Size() int {
	return len(g.Tasks)
}

// Priorities returns the priorities indexed by ready-array slot.
func (g Group) Priorities() []int {
	out := make([]int, len(g.Tasks))
	for i, rt := range g.Tasks {
		out[i] = rt.Priority
	}
	return out
}

// Groups partitions the tasks by vehicle label in first-appearance order.
// Within a group tasks are ranked by (priority ascending, declaration order)
// and Index is that rank.
func Groups(m *Model) []Group {
	var (
		order   []string
		members = make(map[string][]Task)
	)
	for _, t := range m.Tasks {
		if _, ok := members[t.Vehicle]; !ok {
			order = append(order, t.Vehicle)
		}
		members[t.Vehicle] = append(members[t.Vehicle], t)
	}

	groups := make([]Group, 0, len(order))
	for _, label := range order {
		tasks := members[label]

		explicit := make([]*int, len(tasks))
		for i, t := range tasks {
			explicit[i] = t.Priority
		}
		prios := domain.EffectivePriorities(explicit)

		g := Group{Label: label, Prefix: domain.GroupPrefix(label)}
		for rank, idx := range domain.DispatchOrder(prios) {
			g.Tasks = append(g.Tasks, RankedTask{Task: tasks[idx], Priority: prios[idx], Index: rank})
		}
		groups = append(groups, g)
	}
	return groups
}

// GroupOf returns the group a task belongs to and its slot within it.
func GroupOf(groups []Group, task string) (Group, RankedTask, bool) {
	for _, g := range groups {
		for _, rt := range g.Tasks {
			if rt.Task.Name == task {
				return g, rt, true
			}
		}
	}
	return Group{}, RankedTask{}, false
}
