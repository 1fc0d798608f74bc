package grammar

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dekarrin/dfa-gen/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, contents string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o644))
	return p
}

func newTestLogger() (*xlog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return xlog.New(&buf, xlog.Warn), &buf
}

// TestParse_LiteralTokenLine builds the NFA for a single bare literal-token
// line (spec scenario 1: "if"), with no grammar production syntax at all.
func TestParse_LiteralTokenLine(t *testing.T) {
	dir := t.TempDir()
	f := writeTemp(t, dir, "tokens.txt", "if\n")

	log, _ := newTestLogger()
	a, err := Parse([]string{f}, log)
	require.NoError(t, err)

	// initial -i-> s1 -f-> s2(accept), and the cursor rewinds to initial
	// afterward so a second literal line would start a fresh path.
	start := a.Initial()
	iTrans := a.TransitionsFrom(start)
	require.Len(t, iTrans, 1)
	assert.Equal(t, 'i', iTrans[0].Sym)

	fTrans := a.TransitionsFrom(iTrans[0].To)
	require.Len(t, fTrans, 1)
	assert.Equal(t, 'f', fTrans[0].Sym)
	assert.True(t, a.StateAccept(fTrans[0].To))
}

// TestParse_MultipleLiteralLines checks that successive literal-token lines
// each branch from the initial state rather than continuing the prior line's
// path (spec scenario 2: "if" and "else").
func TestParse_MultipleLiteralLines(t *testing.T) {
	dir := t.TempDir()
	f := writeTemp(t, dir, "tokens.txt", "if\nelse\n")

	log, _ := newTestLogger()
	a, err := Parse([]string{f}, log)
	require.NoError(t, err)

	start := a.Initial()
	startTrans := a.TransitionsFrom(start)
	require.Len(t, startTrans, 2, "both lines must branch from the initial state")

	syms := map[rune]bool{}
	for _, tr := range startTrans {
		syms[tr.Sym] = true
	}
	assert.True(t, syms['i'] && syms['e'])
}

// TestParse_ProductionWithAlternation builds scenario 4's grammar:
//
//	<S> ::= a<A> | a<B>
//	<A> ::= b<A> | <>
//	<B> ::= c<B> | <>
func TestParse_ProductionWithAlternation(t *testing.T) {
	dir := t.TempDir()
	contents := "<S> ::= a<A> | a<B>\n<A> ::= b<A> | <>\n<B> ::= c<B> | <>\n"
	f := writeTemp(t, dir, "grammar.txt", contents)

	log, _ := newTestLogger()
	a, err := Parse([]string{f}, log)
	require.NoError(t, err)

	start := a.Initial()
	startTrans := a.TransitionsFrom(start)
	require.Len(t, startTrans, 2, "two distinct 'a'-edges must leave S, forcing nondeterminism")
	for _, tr := range startTrans {
		assert.Equal(t, 'a', tr.Sym)
	}

	_, nondet := a.NonDeterministicStates()
	assert.True(t, nondet, "the two 'a'-edges out of S make this NFA genuinely non-deterministic")
}

// TestParse_ReservedInitialNonTerminal checks that <S> always denotes the
// automaton's initial state, including when referenced as a transition
// target later in the grammar (a cycle back to the start).
func TestParse_ReservedInitialNonTerminal(t *testing.T) {
	dir := t.TempDir()
	contents := "<S> ::= a<S> | <>\n"
	f := writeTemp(t, dir, "grammar.txt", contents)

	log, _ := newTestLogger()
	a, err := Parse([]string{f}, log)
	require.NoError(t, err)

	start := a.Initial()
	assert.True(t, a.StateAccept(start), "S ::= <> with no preceding terminal must mark S itself accepting")

	trans := a.TransitionsFrom(start)
	require.Len(t, trans, 1)
	assert.Equal(t, 'a', trans[0].Sym)
	assert.Equal(t, start, trans[0].To, "a<S> must loop back to the initial state, not allocate a new one")
}

// TestParse_ForwardReference checks that a non-terminal referenced as a
// transition target before its own production line is parsed resolves to
// the same state once that later line is reached.
func TestParse_ForwardReference(t *testing.T) {
	dir := t.TempDir()
	contents := "<S> ::= a<A>\n<A> ::= b<S> | <>\n"
	f := writeTemp(t, dir, "grammar.txt", contents)

	log, _ := newTestLogger()
	a, err := Parse([]string{f}, log)
	require.NoError(t, err)

	start := a.Initial()
	sTrans := a.TransitionsFrom(start)
	require.Len(t, sTrans, 1)
	stateA := sTrans[0].To

	aTrans := a.TransitionsFrom(stateA)
	require.Len(t, aTrans, 1)
	assert.Equal(t, 'b', aTrans[0].Sym)
	assert.Equal(t, start, aTrans[0].To, "b<S> must resolve back to the same initial state allocated for <S>")
}

// TestParse_PendingTransitionReassignmentWarns exercises the "non-regular
// grammar" path: two terminal symbols offered as the same transition before
// either is consumed by a target. The parser must not reject the input, only
// warn and keep the second symbol (overwriting the first, discarded one).
func TestParse_PendingTransitionReassignmentWarns(t *testing.T) {
	dir := t.TempDir()
	// "ab<A>" inside a transitions list with no separator between a and b
	// offers two pending symbols before any '<target>' consumes one.
	contents := "<S> ::= ab<A>\n<A> ::= <>\n"
	f := writeTemp(t, dir, "grammar.txt", contents)

	log, buf := newTestLogger()
	a, err := Parse([]string{f}, log)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "non-regular", "a reassigned pending terminal must be logged at WARN, not rejected")

	start := a.Initial()
	trans := a.TransitionsFrom(start)
	require.Len(t, trans, 1, "only the second (surviving) symbol produces an edge")
	assert.Equal(t, 'b', trans[0].Sym)
}

// TestParse_BareTerminalSynthesizesEmptyAcceptingState covers a terminal
// offered with no following "<target>" at all: the parser must synthesize a
// fresh accepting state for it and log at WARN.
func TestParse_BareTerminalSynthesizesEmptyAcceptingState(t *testing.T) {
	dir := t.TempDir()
	contents := "<S> ::= a | b<S>\n"
	f := writeTemp(t, dir, "grammar.txt", contents)

	log, buf := newTestLogger()
	a, err := Parse([]string{f}, log)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "empty accepting state")

	start := a.Initial()
	trans := a.TransitionsFrom(start)
	bySym := map[rune]int{}
	for _, tr := range trans {
		bySym[tr.Sym] = tr.To
	}
	require.Contains(t, bySym, 'a')
	require.Contains(t, bySym, 'b')
	assert.True(t, a.StateAccept(bySym['a']))
	assert.Equal(t, start, bySym['b'])
}

// TestParse_NonTerminalNamespaceIsPerFile checks that two files can each use
// the same non-terminal letter for unrelated states, while <S> still binds
// both files' initial transitions to one shared initial state.
func TestParse_NonTerminalNamespaceIsPerFile(t *testing.T) {
	dir := t.TempDir()
	f1 := writeTemp(t, dir, "a.txt", "<S> ::= a<X>\n<X> ::= <>\n")
	f2 := writeTemp(t, dir, "b.txt", "<S> ::= b<X>\n<X> ::= <>\n")

	log, _ := newTestLogger()
	a, err := Parse([]string{f1, f2}, log)
	require.NoError(t, err)

	start := a.Initial()
	trans := a.TransitionsFrom(start)
	require.Len(t, trans, 2)

	bySym := map[rune]int{}
	for _, tr := range trans {
		bySym[tr.Sym] = tr.To
	}
	require.Contains(t, bySym, 'a')
	require.Contains(t, bySym, 'b')
	assert.NotEqual(t, bySym['a'], bySym['b'], "each file's <X> must be its own state despite the shared name")
}

// TestParse_MissingFileReturnsError checks that a nonexistent path produces
// an error rather than a panic or a silently-empty automaton.
func TestParse_MissingFileReturnsError(t *testing.T) {
	log, _ := newTestLogger()
	_, err := Parse([]string{filepath.Join(t.TempDir(), "does-not-exist.txt")}, log)
	assert.Error(t, err)
}
