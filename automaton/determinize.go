package automaton

// ndtOf returns, for every symbol on which state s has more than one
// outgoing destination, the set of those destinations. Symbols with at most
// one destination from s are omitted.
func (a *Automaton[T]) ndtOf(s int) map[T]map[int]struct{} {
	bySym := map[T]map[int]struct{}{}
	for t := range a.transitions[s] {
		dests, ok := bySym[t.Sym]
		if !ok {
			dests = map[int]struct{}{}
			bySym[t.Sym] = dests
		}
		dests[t.To] = struct{}{}
	}

	ndt := map[T]map[int]struct{}{}
	for sym, dests := range bySym {
		if len(dests) > 1 {
			ndt[sym] = dests
		}
	}
	return ndt
}

// NonDeterministicStates returns, for every state with at least one symbol
// reaching more than one destination, that state's ndtOf result. It returns
// ok=false if the automaton is already deterministic.
func (a *Automaton[T]) NonDeterministicStates() (states map[int]map[T]map[int]struct{}, ok bool) {
	states = map[int]map[T]map[int]struct{}{}
	for s := range a.transitions {
		ndt := a.ndtOf(s)
		if len(ndt) > 0 {
			states[s] = ndt
		}
	}
	if len(states) == 0 {
		return nil, false
	}
	return states, true
}

// Determinize performs subset construction in place, repeatedly resolving
// non-deterministic (state, symbol) pairs by synthesizing new states for
// their merged destination sets, until NonDeterministicStates reports none
// remain.
//
// Each outer iteration has two phases. Phase one walks every currently
// non-deterministic (state, symbol) pair, synthesizing or reusing a
// destination state and rewriting the source state's own outgoing edges.
// Phase two then populates every newly-synthesized state's outgoing edges
// by copying from the states it replaced.
//
// Phase two snapshots the transitions of every state it will read from only
// once, immediately after phase one finishes and before phase two starts
// copying -- not continuously against the live, mutating automaton. Reading
// live would make the result depend on the unspecified order map iteration
// visits different (state, symbol) pairs within the same phase two pass (a
// state that phase two has already populated could be read back, complete
// or not, by a later phase-two step depending on that order). Taking the
// snapshot at the seam between phase one and phase two instead of at the
// very start of the iteration is what matters: it still reflects phase
// one's rewrites -- including a state rewriting its own outgoing edges,
// which is exactly what lets self-referential subsets (e.g. two branches
// that both loop back into their merged superstate) converge to a stable
// self-loop within a few iterations rather than oscillating forever.
func (a *Automaton[T]) Determinize() {
	stateMap := map[int]map[int]struct{}{}

	for {
		nondet, ok := a.NonDeterministicStates()
		if !ok {
			return
		}

		newStates := map[int][]int{} // synthesized state -> original targets it replaced

		// Phase one: resolve every non-deterministic (state, symbol) pair.
		for s, by := range nondet {
			for sym, to := range by {
				// Expand targets through existing synthesized subsets.
				transTo := map[int]struct{}{}
				for t := range to {
					if sub, ok := stateMap[t]; ok {
						for m := range sub {
							transTo[m] = struct{}{}
						}
					} else {
						transTo[t] = struct{}{}
					}
				}

				// Reuse an equivalent previously-synthesized state.
				newState, found := findEquivalent(stateMap, transTo)
				if !found {
					accept := false
					for t := range to {
						if a.StateAccept(t) {
							accept = true
							break
						}
					}
					newState = a.AddState(accept)
					stateMap[newState] = transTo
				}

				// Rewrite s's outgoing edges: remove the non-deterministic
				// ones on sym, keep everything else, add the single edge to
				// newState.
				var original []int
				for t := range a.transitions[s] {
					if t.Sym == sym {
						delete(a.transitions[s], t)
						original = append(original, t.To)
					}
				}
				a.CreateTransitionBetween(s, newState, sym)

				// Record this newState's replaced targets, matching the
				// spec's assignment (not accumulation): if an equivalent
				// state is reused by more than one (state, symbol) pair in
				// this same iteration, the last one recorded wins.
				newStates[newState] = original
			}
		}

		// Seam: snapshot every state phase two might read from, reflecting
		// everything phase one just did.
		snapshot := map[int][]FATransition[T]{}
		snapshotOf := func(id int) []FATransition[T] {
			if ts, ok := snapshot[id]; ok {
				return ts
			}
			ts := a.TransitionsFrom(id)
			snapshot[id] = ts
			return ts
		}

		// Phase two: populate every synthesized state's outgoing edges.
		for ns, originals := range newStates {
			superstate, ok := findSuperstate(stateMap, originals)
			var src []int
			if ok {
				src = []int{superstate}
			} else {
				src = originals
			}
			for _, o := range src {
				for _, t := range snapshotOf(o) {
					a.AddTransitionTo(ns, t)
				}
			}
		}
	}
}

// findEquivalent looks for a previously-synthesized state whose represented
// subset is exactly want.
func findEquivalent(stateMap map[int]map[int]struct{}, want map[int]struct{}) (int, bool) {
	for ns, mapped := range stateMap {
		if setsEqual(mapped, want) {
			return ns, true
		}
	}
	return 0, false
}

// findSuperstate returns a previously-synthesized state whose represented
// subset equals the union of the subsets represented by originals, if one
// exists. This lets Determinize copy one state's transitions wholesale
// instead of re-unioning the transitions of every original target.
func findSuperstate(stateMap map[int]map[int]struct{}, originals []int) (int, bool) {
	union := map[int]struct{}{}
	any := false
	for _, o := range originals {
		if sub, ok := stateMap[o]; ok {
			any = true
			for m := range sub {
				union[m] = struct{}{}
			}
		}
	}
	if !any {
		return 0, false
	}
	for _, o := range originals {
		if sub, ok := stateMap[o]; ok && setsEqual(sub, union) {
			return o, true
		}
	}
	return 0, false
}

func setsEqual(a, b map[int]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
