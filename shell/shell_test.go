package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/tictactoe/config"
	"github.com/domino14/tictactoe/game"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

type testShell struct {
	*ShellController
	buf    *bytes.Buffer
	delays []time.Duration
	sig    chan os.Signal
}

func newTestShell(t *testing.T) *testShell {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigDataPath, t.TempDir())
	buf := &bytes.Buffer{}
	ts := &testShell{buf: buf, sig: make(chan os.Signal, 1)}
	ts.ShellController = newShellController(&cfg, "", "", buf, false)
	ts.sleep = func(d time.Duration) { ts.delays = append(ts.delays, d) }
	return ts
}

func (ts *testShell) run(t *testing.T, line string) string {
	t.Helper()
	resp, err := ts.standardModeSwitch(line, ts.sig)
	if err != nil {
		t.Fatalf("%s: %v", line, err)
	}
	if resp == nil {
		return ""
	}
	return resp.message
}

func (ts *testShell) runErr(line string) error {
	_, err := ts.standardModeSwitch(line, ts.sig)
	return err
}

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"autoplay -logfile /path/to/log.txt",
			&shellcmd{"autoplay", nil, CmdOptions{"logfile": {"/path/to/log.txt"}}},
			nil},
		{"play b2",
			&shellcmd{"play", []string{"b2"}, CmdOptions{}},
			nil},
		{"autoplay 50 -opponent random -threads 4 ",
			&shellcmd{"autoplay",
				[]string{"50"},
				CmdOptions{"opponent": {"random"}, "threads": {"4"}}},
			nil,
		},
		{`setboard "XX. O.. ..." ai`,
			&shellcmd{"setboard", []string{"XX. O.. ...", "ai"}, CmdOptions{}},
			nil},
		{"autoplay 50 -opponent",
			nil, errWrongOptionSyntax},
	}
	for _, t := range cases {
		cmd, err := extractFields(t.line)
		is.Equal(cmd, t.expCmd)
		is.Equal(err, t.expErr)
	}
}

func TestFirstRound(t *testing.T) {
	is := is.New(t)
	ts := newTestShell(t)
	resp, err := ts.startSession()
	is.NoErr(err)
	is.True(strings.HasPrefix(resp.message, "Round 1. You go first."))
	is.True(strings.Contains(resp.message, "Your move (X)"))

	out := ts.run(t, "play b2")
	is.True(strings.Contains(out, "The computer plays A1."))
	is.True(strings.Contains(out, " 1|O . . |"))
	is.True(strings.Contains(out, " 2|. X . |"))
	is.Equal(ts.delays, []time.Duration{500 * time.Millisecond})

	// A bare cell is a move too.
	ts.run(t, "c3")
	is.Equal(len(ts.ctrl.History()), 4)

	err = ts.runErr("b2")
	is.True(err != nil)
	err = ts.runErr("frobnicate")
	is.True(strings.Contains(err.Error(), "not found"))
}

func TestLossThenNextRound(t *testing.T) {
	is := is.New(t)
	ts := newTestShell(t)
	_, err := ts.startSession()
	is.NoErr(err)

	out := ts.run(t, "setboard XX./OO./... ai")
	is.True(strings.Contains(out, "The computer plays C2."))
	is.True(strings.Contains(out, "You lost!"))
	is.True(strings.Contains(out, "Winning line: A2 B2 C2"))
	is.True(strings.Contains(out, "Score: you 0, computer 1"))

	err = ts.runErr("a3")
	is.True(strings.Contains(err.Error(), "round is over"))

	out = ts.run(t, "ack")
	is.True(strings.HasPrefix(out, "Round 2. The computer goes first."))
	is.True(strings.Contains(out, "The computer plays A1."))
	is.Equal(ts.ctrl.State(), game.AwaitingHumanMove)

	is.Equal(ts.run(t, "score"), "Score: you 0, computer 1")
}

func TestWinAndTie(t *testing.T) {
	is := is.New(t)
	ts := newTestShell(t)
	_, err := ts.startSession()
	is.NoErr(err)

	ts.run(t, "setboard XX./OO./... human")
	is.True(ts.runErr("a1") != nil)
	out := ts.run(t, "c1")
	is.True(strings.Contains(out, "You win!"))

	ts.run(t, "new human")
	ts.run(t, "setboard XOX/XOO/OX. human")
	out = ts.run(t, "c3")
	is.True(strings.Contains(out, "It was a tie!"))
	is.True(strings.Contains(out, "Score: you 2, computer 1"))
}

func TestHintAndAnalyze(t *testing.T) {
	is := is.New(t)
	ts := newTestShell(t)
	_, err := ts.startSession()
	is.NoErr(err)

	ts.run(t, "setboard OO./X../... human")
	is.Equal(ts.run(t, "hint"), "Try c1.")

	logfile := filepath.Join(t.TempDir(), "analysis.yaml")
	out := ts.run(t, "analyze -log "+logfile)
	is.True(strings.HasPrefix(out, "Moves for human:"))
	is.True(strings.Contains(out, "  1: C1"))
	is.True(strings.Contains(out, "PV; val"))
	logged, err := os.ReadFile(logfile)
	is.NoErr(err)
	is.True(strings.Contains(string(logged), "  - play: C1"))
}

func TestSetGlyphs(t *testing.T) {
	is := is.New(t)
	ts := newTestShell(t)
	_, err := ts.startSession()
	is.NoErr(err)

	is.Equal(ts.run(t, "set human-glyph O"), "set human-glyph to O")
	is.Equal(ts.run(t, "set human-glyph"), "human-glyph: O")
	is.Equal(ts.glyphsPlain().AI, "X")
	out := ts.run(t, "play b2")
	is.True(strings.Contains(out, " 2|. O . |"))
	is.True(strings.Contains(out, " 1|X . . |"))

	is.True(ts.runErr("set ai-glyph o") != nil)
	is.Equal(ts.glyphsPlain().AI, "X")
	is.True(ts.runErr("set reveal-delay soon") != nil)
	is.True(ts.runErr("set nosuchthing") != nil)
	is.True(ts.runErr("set human-glyph .") != nil)
	is.True(ts.runErr("set ai-glyph -") != nil)
	is.Equal(ts.glyphsPlain().Human, "O")

	out = ts.run(t, "set")
	is.True(strings.Contains(out, "human-glyph: O"))
}

func TestSetConfigWrites(t *testing.T) {
	is := is.New(t)
	ts := newTestShell(t)
	out := ts.run(t, "setconfig reveal-delay 0s")
	is.True(strings.Contains(out, "saved to file"))
	_, err := os.Stat(filepath.Join(ts.config.GetString(config.ConfigDataPath), "config.yaml"))
	is.NoErr(err)
}

func TestAlias(t *testing.T) {
	is := is.New(t)
	ts := newTestShell(t)
	_, err := ts.startSession()
	is.NoErr(err)

	is.Equal(ts.run(t, "alias"), "No aliases defined")
	is.Equal(ts.run(t, "alias set centre play b2"), "Alias 'centre' set to: play b2")
	is.Equal(ts.run(t, "alias show centre"), "centre = play b2")
	ts.run(t, "centre")
	is.Equal(ts.ctrl.History()[0].Index, 4)

	is.Equal(ts.run(t, "alias rm centre"), "Alias 'centre' deleted")
	is.True(ts.runErr("alias show centre") != nil)
	is.True(ts.runErr("alias frob") != nil)
	is.True(ts.runErr("alias set b2 show") != nil)

	is.Equal(ts.run(t, "alias set rnd autoplay 2 -opponent random -threads 1"),
		"Alias 'rnd' set to: autoplay 2 -opponent random -threads 1")
	is.Equal(ts.run(t, "alias set sb setboard 'XX. O.. ...' ai"),
		"Alias 'sb' set to: setboard 'XX. O.. ...' ai")
	is.Equal(ts.run(t, "alias list"),
		"Defined aliases:\n  rnd = autoplay 2 -opponent random -threads 1\n  sb = setboard 'XX. O.. ...' ai")
	out := ts.run(t, "sb")
	is.True(strings.Contains(out, "The computer plays C1."))
}

func TestSetDebug(t *testing.T) {
	is := is.New(t)
	ts := newTestShell(t)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	ts.run(t, "set debug true")
	is.Equal(zerolog.GlobalLevel(), zerolog.DebugLevel)
	ts.run(t, "set debug false")
	is.Equal(zerolog.GlobalLevel(), zerolog.InfoLevel)
	is.True(ts.runErr("set debug sometimes") != nil)
}

func TestHelp(t *testing.T) {
	is := is.New(t)
	ts := newTestShell(t)
	is.True(strings.HasPrefix(ts.run(t, "help"), "Usage:"))
	is.True(strings.HasPrefix(ts.run(t, "help play"), "play <cell>"))
	is.True(ts.runErr("help nosuchtopic") != nil)
}

func TestAutoplay(t *testing.T) {
	is := is.New(t)
	ts := newTestShell(t)
	logfile := filepath.Join(t.TempDir(), "rounds.jsonl")
	out := ts.run(t, "autoplay 4 -threads 2 -logfile "+logfile)
	is.True(strings.Contains(out, "4 rounds"))
	is.True(strings.Contains(out, "4 drawn"))
	data, err := os.ReadFile(logfile)
	is.NoErr(err)
	is.Equal(strings.Count(string(data), "\n"), 4)

	is.True(ts.runErr("autoplay 2 -opponent nobody") != nil)
	is.True(ts.runErr("autoplay 2 -histogram maybe") != nil)

	out = ts.run(t, "autoplay 3 -histogram true")
	is.True(strings.Contains(out, "3 rounds"))
	is.True(strings.HasSuffix(out, "all 3 rounds lasted 9 moves"))
}

func TestScript(t *testing.T) {
	is := is.New(t)
	ts := newTestShell(t)
	_, err := ts.startSession()
	is.NoErr(err)

	script := filepath.Join(t.TempDir(), "round.lua")
	err = os.WriteFile(script, []byte(`
local out = ttt_play("b2")
if ttt_state() ~= "awaiting-human-move" then
  error("unexpected state " .. ttt_state())
end
local bad = ttt_exec("exit")
if string.sub(bad, 1, 6) ~= "ERROR:" then
  error("exit should fail in scripts")
end
local h, a = ttt_score()
if h ~= 0 or a ~= 0 then
  error("unexpected score")
end
local json = require("json")
if json.encode(ttt_history()) ~= '["b2","a1"]' then
  error("unexpected history " .. json.encode(ttt_history()))
end
ttt_exec("new human")
`), 0o644)
	is.NoErr(err)

	ts.run(t, "script "+script)
	is.Equal(ts.ctrl.Round(), 2)
	is.Equal(len(ts.ctrl.History()), 0)

	is.True(ts.runErr("script "+filepath.Join(t.TempDir(), "missing.lua")) != nil)
}

func TestExecute(t *testing.T) {
	is := is.New(t)
	ts := newTestShell(t)
	ts.Execute(ts.sig, "b2; show; bogus")
	out := ts.buf.String()
	is.True(strings.Contains(out, "The computer plays A1."))
	is.True(strings.Contains(out, "Moves: B2 A1"))
	is.True(strings.Contains(out, "Error: command \"bogus\" not found"))
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	ts := newTestShell(t)
	_, err := ts.startSession()
	is.NoErr(err)
	c := NewShellCompleter(ts.ShellController)

	matches, n := c.Do([]rune("pl"), 2)
	is.Equal(n, 2)
	is.Equal(matches, [][]rune{[]rune("ay")})

	ts.run(t, "b2")
	line := []rune("play b")
	matches, n = c.Do(line, len(line))
	is.Equal(n, 1)
	// b2 is taken.
	is.Equal(matches, [][]rune{[]rune("1"), []rune("3")})

	line = []rune("autoplay 10 -opponent ")
	matches, _ = c.Do(line, len(line))
	is.Equal(len(matches), 2)
}
