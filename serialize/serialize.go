// Package serialize renders a built automaton.Automaton as the two output
// formats dfa-gen produces: a CSV state-transition table and a DOT graph.
// Both are generic over the automaton's alphabet symbol type; callers supply
// a render function that turns one symbol into its displayed label, which
// doubles as the sort key used to make column and row ordering stable across
// runs regardless of the automaton's internal map iteration order.
package serialize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/dfa-gen/automaton"
)

// RuneLabel renders a rune symbol as itself, for automata built over runes.
func RuneLabel(r rune) string { return string(r) }

// StringLabel renders a string symbol as itself, for automata built over
// whole-token strings.
func StringLabel(s string) string { return s }

// sortedAlphabet returns the automaton's alphabet sorted by render.
func sortedAlphabet[T comparable](a *automaton.Automaton[T], render func(T) string) []T {
	alphabet := a.Alphabet()
	sort.Slice(alphabet, func(i, j int) bool {
		return render(alphabet[i]) < render(alphabet[j])
	})
	return alphabet
}

// sortedStates returns the automaton's state ids in ascending order.
func sortedStates[T comparable](a *automaton.Automaton[T]) []int {
	states := a.States()
	sort.Ints(states)
	return states
}

// targetsOf returns, sorted ascending, every destination state id reachable
// from src on sym.
func targetsOf[T comparable](a *automaton.Automaton[T], src int, sym T) []int {
	var targets []int
	for _, tr := range a.TransitionsFrom(src) {
		if tr.Sym == sym {
			targets = append(targets, tr.To)
		}
	}
	sort.Ints(targets)
	return targets
}

// CSV renders a as a state-transition table: header row "State,a1,a2,…" with
// the alphabet sorted by render, one data row per state sorted by id. A
// row's state column is prefixed "->" if the state is initial, "*" if it is
// accepting (both may apply), then "<id>". Each cell lists that state's
// destinations on that column's symbol, each wrapped "<d>" and concatenated
// directly with no separator between them, or "-" if there are none.
func CSV[T comparable](a *automaton.Automaton[T], render func(T) string) string {
	var b strings.Builder
	alphabet := sortedAlphabet(a, render)
	states := sortedStates(a)

	b.WriteString("State")
	for _, sym := range alphabet {
		b.WriteByte(',')
		b.WriteString(render(sym))
	}
	b.WriteByte('\n')

	for _, id := range states {
		if id == a.Initial() {
			b.WriteString("->")
		}
		if a.StateAccept(id) {
			b.WriteByte('*')
		}
		fmt.Fprintf(&b, "<%d>", id)

		for _, sym := range alphabet {
			b.WriteByte(',')
			targets := targetsOf(a, id, sym)
			if len(targets) == 0 {
				b.WriteByte('-')
				continue
			}
			for _, t := range targets {
				fmt.Fprintf(&b, "<%d>", t)
			}
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// DOT renders a as a Graphviz digraph, laid out left to right. Accepting
// states are given shape=doublecircle. Edges are grouped by
// (source, destination set, symbol): one line per (state, symbol) pair that
// has at least one destination, labelled with the symbol and pointing at a
// brace-delimited set of destination ids.
func DOT[T comparable](a *automaton.Automaton[T], render func(T) string) string {
	var b strings.Builder
	alphabet := sortedAlphabet(a, render)
	states := sortedStates(a)

	b.WriteString("digraph FA {\nrankdir=\"LR\";\n")

	for _, id := range states {
		if a.StateAccept(id) {
			fmt.Fprintf(&b, "%d [shape=doublecircle];\n", id)
		}

		for _, sym := range alphabet {
			targets := targetsOf(a, id, sym)
			if len(targets) == 0 {
				continue
			}
			strs := make([]string, len(targets))
			for i, t := range targets {
				strs[i] = fmt.Sprintf("%d", t)
			}
			fmt.Fprintf(&b, "%d -> {%s} [label=%s];\n", id, strings.Join(strs, ","), render(sym))
		}
	}

	b.WriteString("}\n")
	return b.String()
}
