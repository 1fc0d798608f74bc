/*
Dfa-gen compiles a textual token and grammar specification into a minimized
deterministic finite automaton.

It reads one or more grammar files mixing bare literal tokens (e.g. "if",
"else") with right-linear production rules (e.g. "<A> ::= a<B> | b<C> | c |
<>"), builds the non-deterministic automaton they describe, determinizes it,
removes unreachable and dead states, completes it with an explicit error
state, and writes the result as a CSV state-transition table to stdout.

Usage:

	dfa-gen [-v...] [-d DIRECTORY] [--config FILE] [-i] FILE [FILE ...]

The flags are:

	-v
		Increase logging verbosity. May be repeated: one for ERROR, two for
		WARN, three for INFO, four or more for DEBUG. The LOG environment
		variable, if set to a recognized level name, overrides this
		unconditionally.

	-d, --debug-dir DIRECTORY
		Write the automaton after each pipeline stage (1fa, 2dfa,
		3dfa_nounreached, 4dfa_final, 5dfa_error) as a .dot/.csv pair into
		DIRECTORY.

	--config FILE
		Load defaults from FILE instead of the file named by
		$DFAGEN_CONFIG, if any.

	-i, --interactive
		After a successful build, start an interactive simulator that reads
		strings from stdin and reports whether the completed automaton
		accepts them.

	--version
		Print the current version and exit.

Exit status is 0 on success and non-zero on any fatal error. On fatal error,
an "ERROR: ..." line is written to stderr (followed by a usage line when no
grammar file is given) and no partial CSV is written to stdout.
*/
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/dekarrin/dfa-gen/automaton"
	"github.com/dekarrin/dfa-gen/config"
	"github.com/dekarrin/dfa-gen/grammar"
	"github.com/dekarrin/dfa-gen/internal/sim"
	"github.com/dekarrin/dfa-gen/internal/version"
	"github.com/dekarrin/dfa-gen/serialize"
	"github.com/dekarrin/dfa-gen/xlog"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates missing or malformed command-line arguments.
	ExitUsageError

	// ExitConfigError indicates a config file was named but could not be
	// read or parsed.
	ExitConfigError

	// ExitGrammarError indicates a grammar file could not be opened or
	// read.
	ExitGrammarError

	// ExitIOError indicates a debug-mode dump could not be written.
	ExitIOError
)

var (
	returnCode = ExitSuccess

	flagVerbosity   = pflag.CountP("verbose", "v", "Increase logging verbosity; repeatable")
	flagDebugDir    = pflag.StringP("debug-dir", "d", "", "Write intermediate pipeline stages as .dot/.csv pairs into DIRECTORY")
	flagConfig      = pflag.String("config", "", "Load defaults from FILE instead of $DFAGEN_CONFIG")
	flagInteractive = pflag.BoolP("interactive", "i", false, "Start an interactive simulator after a successful build")
	flagVersion     = pflag.Bool("version", false, "Print the version and exit")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Println(version.Current)
		return
	}

	cfg, err := config.LoadOptional(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitConfigError
		return
	}

	level := xlog.LevelFromVerbosity(*flagVerbosity)
	if *flagVerbosity == 0 && cfg.Verbosity != "" {
		if parsed, parseErr := xlog.ParseLevel(cfg.Verbosity); parseErr == nil {
			level = parsed
		}
	}
	log := xlog.NewFromEnvWithDefault(level)

	debugDir := *flagDebugDir
	if debugDir == "" {
		debugDir = cfg.DebugDir
	}

	interactive := *flagInteractive || cfg.Interactive

	files := pflag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "ERROR: at least one grammar file is required")
		fmt.Fprintf(os.Stderr, "Usage: %s [-v...] [-d DIRECTORY] [--config FILE] [-i] FILE [FILE ...]\n", os.Args[0])
		returnCode = ExitUsageError
		return
	}

	runID := uuid.New().String()
	log.Infof("run %s: parsing %d grammar file(s)", runID, len(files))
	a, err := grammar.Parse(files, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitGrammarError
		return
	}

	if debugDir != "" {
		if err := os.MkdirAll(debugDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitIOError
			return
		}
		if err := dumpStage(debugDir, "1fa", a); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitIOError
			return
		}
	}
	logShape(log, "1fa", a)

	log.Infof("determinizing")
	a.Determinize()
	if debugDir != "" {
		if err := dumpStage(debugDir, "2dfa", a); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitIOError
			return
		}
	}
	logShape(log, "2dfa", a)

	log.Infof("removing unreachable states")
	a.RemoveUnreachableStates()
	if debugDir != "" {
		if err := dumpStage(debugDir, "3dfa_nounreached", a); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitIOError
			return
		}
	}

	log.Infof("removing dead states")
	a.RemoveDeadStates()
	if debugDir != "" {
		if err := dumpStage(debugDir, "4dfa_final", a); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitIOError
			return
		}
	}
	logShape(log, "4dfa_final", a)

	log.Infof("completing with error state")
	a.InsertErrorState()
	if debugDir != "" {
		if err := dumpStage(debugDir, "5dfa_error", a); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitIOError
			return
		}
	}
	logShape(log, "5dfa_error", a)

	fmt.Print(serialize.CSV(a, serialize.RuneLabel))

	if interactive {
		runSimulator(a, log)
	}
}

// logShape logs a human-scale summary of a's size at DEBUG level, tagged
// with the pipeline stage name.
func logShape(log *xlog.Logger, stage string, a *automaton.Automaton[rune]) {
	states := a.States()
	transitions := 0
	for _, s := range states {
		transitions += len(a.TransitionsFrom(s))
	}
	log.Debugf("%s: %s states, %s transitions", stage, humanize.Comma(int64(len(states))), humanize.Comma(int64(transitions)))
}

// dumpStage writes name.dot and name.csv for a into dir.
func dumpStage(dir, name string, a *automaton.Automaton[rune]) error {
	dotPath := filepath.Join(dir, name+".dot")
	if err := os.WriteFile(dotPath, []byte(serialize.DOT(a, serialize.RuneLabel)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dotPath, err)
	}

	csvPath := filepath.Join(dir, name+".csv")
	if err := os.WriteFile(csvPath, []byte(serialize.CSV(a, serialize.RuneLabel)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", csvPath, err)
	}

	return nil
}

func runSimulator(a *automaton.Automaton[rune], log *xlog.Logger) {
	var r sim.Reader
	if isatty.IsTerminal(os.Stdin.Fd()) {
		rl, err := sim.NewInteractiveReader("dfa-gen> ")
		if err != nil {
			log.Warnf("falling back to direct input: %s", err.Error())
			r = sim.NewDirectReader(os.Stdin)
		} else {
			r = rl
		}
	} else {
		r = sim.NewDirectReader(os.Stdin)
	}
	defer r.Close()

	if err := sim.Serve(a, r, os.Stdout); err != nil {
		log.Errorf("simulator: %s", err.Error())
	}
}
