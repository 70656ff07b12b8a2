package domain

import "sort"

// EffectivePriorities resolves optional task priorities, given in declaration
// order, into concrete values. Absent priorities rank after every explicit
// one, in declaration order: the k-th unprioritized task gets max+1+k where
// max is the largest explicit priority (or -1 when there is none).
func EffectivePriorities(explicit []*int) []int {
	maxExplicit := -1
	for _, p := range explicit {
		if p != nil && *p > maxExplicit {
			maxExplicit = *p
		}
	}

	out := make([]int, len(explicit))
	next := maxExplicit + 1
	for i, p := range explicit {
		if p != nil {
			out[i] = *p
			continue
		}
		out[i] = next
		next++
	}
	return out
}

// DispatchOrder returns the declaration indices sorted by (priority
// ascending, declaration order). The result is a total order.
func DispatchOrder(priorities []int) []int {
	order := make([]int, len(priorities))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return priorities[order[a]] < priorities[order[b]]
	})
	return order
}
