package automaton

import "sort"

// GetUnreachableStates returns the ids of every state with no path from the
// initial state, via a breadth-first search. The result is sorted for
// deterministic output.
func (a *Automaton[T]) GetUnreachableStates() []int {
	unreached := map[int]struct{}{}
	for id := range a.states {
		unreached[id] = struct{}{}
	}

	queue := []int{a.initial}
	for len(unreached) > 0 && len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for t := range a.transitions[u] {
			if _, stillUnreached := unreached[t.To]; stillUnreached {
				queue = append(queue, t.To)
			}
		}

		delete(unreached, u)
	}

	out := make([]int, 0, len(unreached))
	for id := range unreached {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// RemoveUnreachableStates removes every state GetUnreachableStates reports,
// cascading incoming-edge deletion per RemoveState.
func (a *Automaton[T]) RemoveUnreachableStates() {
	for _, id := range a.GetUnreachableStates() {
		a.RemoveState(id)
	}
}

// GetDeadStates returns the ids of every state with no path to any
// accepting state. It computes the complement of the least fixed point of
// "productive" states: start from the accepting states and repeatedly add
// any state with an edge into an already-productive state, until nothing
// new is added.
func (a *Automaton[T]) GetDeadStates() []int {
	productive := map[int]struct{}{}
	for id, accept := range a.states {
		if accept {
			productive[id] = struct{}{}
		}
	}

	for {
		grew := false
		for id := range a.states {
			if _, already := productive[id]; already {
				continue
			}
			for t := range a.transitions[id] {
				if _, ok := productive[t.To]; ok {
					productive[id] = struct{}{}
					grew = true
					break
				}
			}
		}
		if !grew {
			break
		}
	}

	dead := make([]int, 0, len(a.states)-len(productive))
	for id := range a.states {
		if _, ok := productive[id]; !ok {
			dead = append(dead, id)
		}
	}
	sort.Ints(dead)
	return dead
}

// RemoveDeadStates removes every state GetDeadStates reports, cascading
// incoming-edge deletion per RemoveState.
func (a *Automaton[T]) RemoveDeadStates() {
	for _, id := range a.GetDeadStates() {
		a.RemoveState(id)
	}
}

// Minimize removes unreachable states, then dead states. Order matters:
// dead-state detection over a smaller, already-reachable graph is cheaper
// and produces the same result, since unreachable states can never be
// productive contributors to a live accepting path that matters to the
// recognized language.
func (a *Automaton[T]) Minimize() {
	a.RemoveUnreachableStates()
	a.RemoveDeadStates()
}
