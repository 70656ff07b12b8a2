package domain

import (
	"testing"

	"pgregory.net/rapid"
)

func intp(v int) *int { return &v }

func TestEffectivePriorities(t *testing.T) {
	got := EffectivePriorities([]*int{nil, intp(5), nil, intp(1)})
	want := []int{6, 5, 7, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("EffectivePriorities() = %v, want %v", got, want)
		}
	}

	got = EffectivePriorities([]*int{nil, nil})
	if got[0] != 0 || got[1] != 1 {
		t.Errorf("all-absent priorities = %v, want [0 1]", got)
	}
}

func TestDispatchOrderTieBreak(t *testing.T) {
	order := DispatchOrder([]int{2, 1, 2, 1})
	want := []int{1, 3, 0, 2}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("DispatchOrder() = %v, want %v", order, want)
		}
	}
}

// Absent priorities always rank after explicit ones and the order is total.
func TestDispatchOrder_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(t, "n")
		explicit := make([]*int, n)
		for i := range explicit {
			if rapid.Bool().Draw(t, "has_priority") {
				v := rapid.IntRange(0, 20).Draw(t, "priority")
				explicit[i] = &v
			}
		}

		prios := EffectivePriorities(explicit)
		order := DispatchOrder(prios)

		if len(order) != n {
			t.Fatalf("order has %d entries, want %d", len(order), n)
		}

		seen := make(map[int]bool, n)
		for pos, idx := range order {
			if seen[idx] {
				t.Fatalf("index %d appears twice", idx)
			}
			seen[idx] = true
			if pos == 0 {
				continue
			}
			prev := order[pos-1]
			if prios[prev] > prios[idx] {
				t.Fatalf("priority order violated at %d", pos)
			}
			if prios[prev] == prios[idx] && prev > idx {
				t.Fatalf("declaration-order tie-break violated at %d", pos)
			}
			if explicit[prev] == nil && explicit[idx] != nil {
				t.Fatalf("absent priority ranked before explicit one at %d", pos)
			}
		}
	})
}
