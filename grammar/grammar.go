// Package grammar is the textual front end of dfa-gen: it reads one or more
// grammar-and-token files and builds the non-deterministic automaton they
// describe, walking the shared automaton.Automaton the same way the
// original tool does -- character by character, with a small hand-written
// state machine standing in for a proper lexer, since the input format is
// simple enough that a real lexer would be overkill for what is itself a
// lexer generator's own bootstrap input.
package grammar

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/dekarrin/dfa-gen/automaton"
	"github.com/dekarrin/dfa-gen/xlog"
)

// InitialStateChar is the reserved non-terminal name that always refers to
// the automaton's initial state.
const InitialStateChar = 'S'

// readMode tracks where in one line's grammar syntax the parser currently
// is. It mirrors the Input enum of the tool this parser is modeled on:
// reading a bare literal token, reading the non-terminal name on the left
// of "::=", reading the terminal symbols on the right of "::=", or reading
// the non-terminal name inside "<...>" that follows a terminal.
type readMode int

const (
	modeNormal readMode = iota
	modeStateDef
	modeStateTransitions
	modeStateTransitionTarget
)

// Parse reads every file in order and returns the NFA they collectively
// describe. All files share one automaton and one reading mode, which
// carries over from line to line and from file to file; a literal-token line
// that follows a production ends that production's context and starts a new
// chain from the initial state. Each file has its own namespace of
// non-terminal names -- except the reserved name S, which always names the
// automaton's initial state everywhere.
func Parse(files []string, log *xlog.Logger) (*automaton.Automaton[rune], error) {
	a := automaton.New[rune]()
	reading := modeNormal
	hadTargetState := false

	for _, f := range files {
		fh, err := os.Open(f)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f, err)
		}

		err = parseFile(a, fh, log, &reading, &hadTargetState)
		fh.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
	}

	return a, nil
}

func parseFile(a *automaton.Automaton[rune], r io.Reader, log *xlog.Logger, reading *readMode, hadTargetState *bool) error {
	var tempTransition *rune
	grammarMapper := map[rune]int{}

	resolve := func(c rune) int {
		if c == InitialStateChar {
			return a.Initial()
		}
		if id, ok := grammarMapper[c]; ok {
			return id
		}
		id := a.AddState(false)
		grammarMapper[c] = id
		log.Debugf("indexing non-terminal %q to state %d", c, id)
		return id
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		log.Debugf("line: %q", line)

		// A line that does not open with "<" after a production is a
		// literal-token line: leave the production context.
		if *reading == modeStateDef {
			for _, c := range line {
				if c == ' ' {
					continue
				}
				if c != '<' {
					*reading = modeNormal
					a.Rewind()
				}
				break
			}
		}

		for _, c := range line {
			switch *reading {
			case modeNormal:
				if c == ' ' {
					continue
				}
				if c == '<' {
					*reading = modeStateDef
				} else {
					id := a.AddState(false)
					a.CreateTransitionAndWalk(c, id)
				}

			case modeStateDef:
				if c == ' ' {
					continue
				}
				switch c {
				case '<':
					// ignore
				case '>':
					*reading = modeStateTransitions
				default:
					if c == InitialStateChar {
						a.Rewind()
					} else {
						id := resolve(c)
						if err := a.SetCurrent(id); err != nil {
							return fmt.Errorf("internal error: non-terminal %q resolved to missing state: %w", c, err)
						}
					}
				}

			case modeStateTransitions:
				switch {
				case c == '<':
					*reading = modeStateTransitionTarget
					*hadTargetState = false
				case c == '|' || c == ' ':
					if tempTransition != nil {
						t := *tempTransition
						tempTransition = nil
						empty := a.AddState(true)
						log.Warnf("creating new empty accepting state for bare terminal %q: %d", t, empty)
						a.CreateTransition(t, empty)
					}
				case c == ':' || c == '=':
					// ignore
				default:
					if c != ' ' {
						if tempTransition != nil {
							log.Warnf("non-regular grammar detected (reassignment of pending terminal %q by %q)", *tempTransition, c)
						}
						t := c
						tempTransition = &t
					}
				}

			case modeStateTransitionTarget:
				if c == ' ' {
					continue
				}
				if c == '>' {
					*reading = modeStateTransitions
					if tempTransition == nil && !*hadTargetState {
						a.SetCurrentStateAccept(true)
					}
				} else {
					target := resolve(c)
					if tempTransition != nil {
						t := *tempTransition
						tempTransition = nil
						a.CreateTransition(t, target)
					} else {
						log.Warnf("epsilon-transition to <%c>", c)
					}
					*hadTargetState = true
				}
			}
		}

		// End of line: a dangling pending terminal with no "| next" or
		// "<non-terminal>" after it introduces a fresh accepting state, the
		// same as if it had been followed by '|'.
		if tempTransition != nil {
			t := *tempTransition
			tempTransition = nil
			empty := a.AddState(true)
			log.Warnf("creating new empty accepting state for bare terminal %q: %d", t, empty)
			a.CreateTransition(t, empty)
		}

		if *reading == modeNormal {
			a.SetCurrentStateAccept(true)
			a.Rewind()
		} else {
			*reading = modeStateDef
		}
	}

	return scanner.Err()
}
