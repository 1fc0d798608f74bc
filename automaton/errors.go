package automaton

import "errors"

// ErrUnknownState is returned by SetCurrent when asked to move the cursor to
// a state id that does not exist in the automaton. It is the only error any
// automaton mutator can produce; every other structural operation is total.
var ErrUnknownState = errors.New("unknown state")
