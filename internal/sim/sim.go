// Package sim implements the interactive simulator: a small REPL that walks
// a completed automaton one rune at a time and reports whether the typed
// string is accepted. It is a read-only exerciser of an already-built
// automaton and never mutates it.
//
// Its two readers mirror the direct-vs-interactive input split of the
// command reader this tool's ancestor used: a plain buffered reader for
// piped, non-terminal input, and github.com/chzyer/readline (history, line
// editing) when connected to a real TTY.
package sim

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dekarrin/rosed"
	"github.com/kballard/go-shellquote"

	"github.com/dekarrin/dfa-gen/automaton"
)

// Reader is the source of lines typed (or piped) into the simulator.
type Reader interface {
	ReadLine() (string, error)
	Close() error
}

// directReader reads lines from any io.Reader with no line editing.
type directReader struct {
	r *bufio.Reader
}

// NewDirectReader wraps r for non-interactive (non-TTY) input.
func NewDirectReader(r io.Reader) Reader {
	return &directReader{r: bufio.NewReader(r)}
}

func (d *directReader) ReadLine() (string, error) {
	line, err := d.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (d *directReader) Close() error { return nil }

// interactiveReader reads lines from stdin through readline, giving the user
// history and basic line editing. It should only be used when stdin is a
// real TTY.
type interactiveReader struct {
	rl *readline.Instance
}

// NewInteractiveReader starts a readline instance prompting with prompt.
func NewInteractiveReader(prompt string) (Reader, error) {
	rl, err := readline.NewEx(&readline.Config{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}
	return &interactiveReader{rl: rl}, nil
}

func (i *interactiveReader) ReadLine() (string, error) {
	line, err := i.rl.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (i *interactiveReader) Close() error { return i.rl.Close() }

// Step is one state visited while simulating a string: the state entered and
// the rune consumed to get there (zero rune for the starting state).
type Step struct {
	Consumed rune
	State    int
	Accept   bool
}

// Run walks s through a, starting at a.Initial(), and returns the sequence
// of states visited (including the initial state as the first Step, with a
// zero Consumed rune) along with whether the final state accepts.
//
// a is expected to already be total on its alphabet (i.e. InsertErrorState
// has been called); a rune outside the alphabet has no outgoing edge and
// simulation stops early, which Run reports by returning no more steps than
// there are runes in s (a complete walk returns one more, for the initial
// state).
func Run(a *automaton.Automaton[rune], s string) (path []Step, accepted bool) {
	cur := a.Initial()
	path = append(path, Step{State: cur, Accept: a.StateAccept(cur)})

	for _, r := range s {
		next, ok := stepFrom(a, cur, r)
		if !ok {
			return path, false
		}
		cur = next
		path = append(path, Step{Consumed: r, State: cur, Accept: a.StateAccept(cur)})
	}

	return path, a.StateAccept(cur)
}

func stepFrom(a *automaton.Automaton[rune], from int, sym rune) (int, bool) {
	for _, tr := range a.TransitionsFrom(from) {
		if tr.Sym == sym {
			return tr.To, true
		}
	}
	return 0, false
}

// Serve runs the simulator loop, reading lines from r and writing results
// and a summary table to out, until r returns io.EOF or a ":quit"/":exit"
// command is read.
//
// A line beginning with ":" is a meta-command rather than a string to
// simulate. Its arguments are split with shell-style quoting rules (via
// kballard/go-shellquote) so that ":test" can be given a string containing
// spaces: `:test "a b"` simulates the three-character string "a b", which a
// bare unquoted line could never express since Serve trims surrounding
// whitespace from plain input lines.
func Serve(a *automaton.Automaton[rune], r Reader, out io.Writer) error {
	for {
		line, err := r.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			done, err := runCommand(a, line[1:], out)
			if err != nil {
				fmt.Fprintf(out, "error: %s\n", err.Error())
				continue
			}
			if done {
				return nil
			}
			continue
		}

		report(a, line, out)
	}
}

// runCommand handles one ":"-prefixed meta-command. done is true if the
// caller should stop serving.
func runCommand(a *automaton.Automaton[rune], rest string, out io.Writer) (done bool, err error) {
	args, err := shellquote.Split(rest)
	if err != nil {
		return false, fmt.Errorf("parse command: %w", err)
	}
	if len(args) == 0 {
		return false, fmt.Errorf("empty command")
	}

	switch args[0] {
	case "quit", "exit":
		return true, nil
	case "test":
		if len(args) < 2 {
			return false, fmt.Errorf("usage: :test STRING")
		}
		report(a, args[1], out)
		return false, nil
	default:
		return false, fmt.Errorf("unrecognized command %q", args[0])
	}
}

func report(a *automaton.Automaton[rune], s string, out io.Writer) {
	path, accepted := Run(a, s)
	verdict := "REJECTED"
	if accepted {
		verdict = "ACCEPTED"
	}
	fmt.Fprintf(out, "%s: %s\n", s, verdict)
	fmt.Fprintln(out, renderPath(path))
}

// renderPath renders the visited-state sequence as a small text table using
// rosed, the same table-rendering library and call shape as this tool's
// ancestor's own debug tables.
func renderPath(path []Step) string {
	data := [][]string{{"Step", "Consumed", "State", "Accept"}}
	for i, st := range path {
		consumed := "-"
		if i > 0 {
			consumed = string(st.Consumed)
		}
		accept := ""
		if st.Accept {
			accept = "*"
		}
		data = append(data, []string{fmt.Sprintf("%d", i), consumed, fmt.Sprintf("<%d>", st.State), accept})
	}

	tableOpts := rosed.Options{
		TableHeaders:             true,
		NoTrailingLineSeparators: true,
	}

	return rosed.Edit("").InsertTableOpts(0, data, 80, tableOpts).String()
}
