package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/tictactoe/automatic"
	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/config"
	"github.com/domino14/tictactoe/equity"
	"github.com/domino14/tictactoe/game"
	"github.com/domino14/tictactoe/minimax"
	"github.com/domino14/tictactoe/move"
)

const defaultAutoplayRounds = 100

type Response struct {
	message string
}

// CmdOptions holds a command's -options. The accessors read the first value
// given for a key.
type CmdOptions map[string][]string

func (c CmdOptions) first(key string) (string, bool) {
	if v := c[key]; len(v) > 0 {
		return v[0], true
	}
	return "", false
}

func (c CmdOptions) String(key string) string {
	v, _ := c.first(key)
	return v
}

func (c CmdOptions) IntDefault(key string, def int) (int, error) {
	v, ok := c.first(key)
	if !ok {
		return def, nil
	}
	return strconv.Atoi(v)
}

func (c CmdOptions) BoolDefault(key string, def bool) (bool, error) {
	v, ok := c.first(key)
	if !ok {
		return def, nil
	}
	return strconv.ParseBool(v)
}

func msg(message string) *Response {
	return &Response{message: message}
}

func sideFromStr(s string) (game.Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "human", "me", "you":
		return game.HumanSide, nil
	case "ai", "computer", "cpu":
		return game.AISide, nil
	}
	return game.HumanSide, errors.New("side " + s + " is not a valid choice; use human or ai")
}

func (sc *ShellController) startSession() (*Response, error) {
	starter, err := sc.ctrl.Start()
	if err != nil {
		return nil, err
	}
	return sc.afterRoundStart(starter)
}

func (sc *ShellController) afterRoundStart(starter game.Side) (*Response, error) {
	header := fmt.Sprintf("Round %d. %s", sc.ctrl.Round(), sc.startLine(starter))
	if sc.ctrl.State() == game.AIThinking {
		text, err := sc.aiTurn()
		if err != nil {
			return nil, err
		}
		return msg(header + "\n" + text), nil
	}
	return msg(header + "\n" + sc.boardText() + sc.promptLine()), nil
}

func (sc *ShellController) startLine(starter game.Side) string {
	if starter == game.AISide {
		return "The computer goes first."
	}
	return "You go first."
}

func (sc *ShellController) promptLine() string {
	return fmt.Sprintf("Your move (%s). Enter a cell like b2.", sc.glyphs().Human)
}

// aiTurn plays the ai's move and describes it. The move is already decided
// when the reveal delay starts.
func (sc *ShellController) aiTurn() (string, error) {
	idx, out, err := sc.ctrl.PlayAIMove()
	if err != nil {
		return "", err
	}
	sc.sleep(sc.config.GetDuration(config.ConfigRevealDelay))
	text := fmt.Sprintf("The computer plays %s.\n%s", move.ToCoords(idx), sc.boardText())
	if out.Continue {
		return text + sc.promptLine(), nil
	}
	return text + sc.roundOverText(), nil
}

func (sc *ShellController) roundOverText() string {
	var sb strings.Builder
	sb.WriteString(resultTitle(sc.ctrl.Result(), sc.au))
	sb.WriteString("\n")
	b := sc.ctrl.Board()
	if l, ok := equity.WinningLine(&b); ok {
		sb.WriteString(fmt.Sprintf("Winning line: %s %s %s\n",
			move.ToCoords(l[0]), move.ToCoords(l[1]), move.ToCoords(l[2])))
	}
	sb.WriteString(sc.scoreText())
	sb.WriteString("\nType ack (or next) to play the next round.")
	return sb.String()
}

func (sc *ShellController) scoreText() string {
	s := sc.ctrl.SessionScore()
	return fmt.Sprintf("Score: you %d, computer %d", s.HumanWins, s.AIWins)
}

func (sc *ShellController) newRound(cmd *shellcmd) (*Response, error) {
	starter := game.StarterForRound(sc.ctrl.Round() + 1)
	if len(cmd.args) > 0 {
		var err error
		starter, err = sideFromStr(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	if _, err := sc.ctrl.CreateRound(starter); err != nil {
		return nil, err
	}
	return sc.afterRoundStart(starter)
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: play <cell>, e.g. play b2")
	}
	idx, err := move.FromCoords(cmd.args[0])
	if err != nil {
		return nil, err
	}
	out, err := sc.ctrl.SubmitHumanMove(idx)
	if err != nil {
		if errors.Is(err, game.ErrNotHumanTurn) && sc.ctrl.State() == game.RoundOver {
			return nil, errors.New("the round is over; type ack for the next one")
		}
		return nil, err
	}
	if !out.Continue {
		return msg(sc.boardText() + sc.roundOverText()), nil
	}
	text, err := sc.aiTurn()
	if err != nil {
		return nil, err
	}
	return msg(text), nil
}

func (sc *ShellController) ack(cmd *shellcmd) (*Response, error) {
	starter, err := sc.ctrl.Acknowledge()
	if err != nil {
		return nil, err
	}
	return sc.afterRoundStart(starter)
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Round %d (%s), %s\n", sc.ctrl.Round(),
		sc.ctrl.RoundID().Short(), sc.ctrl.State()))
	sb.WriteString(sc.boardText())
	if h := sc.ctrl.History(); len(h) > 0 {
		sb.WriteString("Moves: " + h.String() + "\n")
	}
	sb.WriteString(sc.scoreText())
	return msg(sb.String()), nil
}

func (sc *ShellController) score(cmd *shellcmd) (*Response, error) {
	return msg(sc.scoreText()), nil
}

func (sc *ShellController) hint(cmd *shellcmd) (*Response, error) {
	if sc.ctrl.State() != game.AwaitingHumanMove {
		return nil, game.ErrNotHumanTurn
	}
	s := minimax.NewSolver(sc.ctrl.HumanMark(), sc.ctrl.AIMark())
	b := sc.ctrl.Board()
	idx, err := s.FindBestMove(&b)
	if err != nil {
		return nil, err
	}
	return msg("Try " + strings.ToLower(move.ToCoords(idx)) + "."), nil
}

// analyze scores every move for the side to move, from that side's point
// of view, and shows the line both sides would play from here.
func (sc *ShellController) analyze(cmd *shellcmd) (*Response, error) {
	if sc.ctrl.State() == game.RoundOver {
		return nil, errors.New("the round is over")
	}
	mover := sc.ctrl.ToMove()
	var s *minimax.Solver
	if mover == game.AISide {
		s = minimax.NewSolver(sc.ctrl.AIMark(), sc.ctrl.HumanMark())
	} else {
		s = minimax.NewSolver(sc.ctrl.HumanMark(), sc.ctrl.AIMark())
	}
	if logfile := cmd.options.String("log"); logfile != "" {
		f, err := os.Create(logfile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		s.SetLogStream(f)
	}
	b := sc.ctrl.Board()
	scores := s.ScoreMoves(&b)
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Moves for %s:\n", mover))
	sb.WriteString("     Cell  Value\n")
	for i, ms := range scores {
		sb.WriteString(fmt.Sprintf("%3d: %-6s%5d\n", i+1, ms.Move.ShortDescription(), ms.Score))
	}
	nodes := s.Nodes()
	pv := s.PrincipalVariation(&b, s.AIMark())
	sb.WriteString(pv.String())
	log.Debug().Uint64("nodes", nodes).Str("pv", pv.NLBString()).Msg("analysis-done")
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) setBoard(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: setboard <cells> [human|ai], e.g. setboard XX./O../...")
	}
	b, err := board.FromString(cmd.args[0], sc.glyphsPlain())
	if err != nil {
		return nil, err
	}
	toMove := game.HumanSide
	if b.Count(board.Human) > b.Count(board.AI) {
		toMove = game.AISide
	}
	if len(cmd.args) > 1 {
		toMove, err = sideFromStr(cmd.args[1])
		if err != nil {
			return nil, err
		}
	}
	if err := sc.ctrl.SetPosition(b, toMove); err != nil {
		return nil, err
	}
	if toMove == game.AISide {
		text, err := sc.aiTurn()
		if err != nil {
			return nil, err
		}
		return msg(text), nil
	}
	return msg(sc.boardText() + sc.promptLine()), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	opts := automatic.OptionsFromConfig(sc.config)
	opts.Rounds = defaultAutoplayRounds
	if len(cmd.args) > 0 {
		n, err := strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
		opts.Rounds = n
	}
	var err error
	if opts.Threads, err = cmd.options.IntDefault("threads", opts.Threads); err != nil {
		return nil, err
	}
	if o := cmd.options.String("opponent"); o != "" {
		opts.Opponent = o
	}
	if opts.RandomOpening, err = cmd.options.BoolDefault("random-opening", opts.RandomOpening); err != nil {
		return nil, err
	}
	showHistogram, err := cmd.options.BoolDefault("histogram", false)
	if err != nil {
		return nil, err
	}
	if logfile := cmd.options.String("logfile"); logfile != "" {
		f, err := os.Create(logfile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		opts.LogWriter = f
	}
	opts.Progress = sc.out
	summary, err := automatic.PlayRounds(context.Background(), opts)
	if err != nil {
		return nil, err
	}
	text := "\n" + summary.String()
	if showHistogram {
		var sb strings.Builder
		if err := summary.Histogram(&sb); err != nil {
			return nil, err
		}
		text += "\n" + strings.TrimRight(sb.String(), "\n")
	}
	return msg(text), nil
}

// applySetting checks a setting and makes it take effect right away.
func (sc *ShellController) applySetting(key, value string) error {
	switch key {
	case config.ConfigHumanGlyph, config.ConfigAIGlyph:
		old := sc.config.GetString(key)
		sc.config.Set(key, value)
		if _, err := sc.config.Glyphs(); err != nil {
			sc.config.Set(key, old)
			return err
		}
		return nil
	case config.ConfigDebug:
		d, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		if d {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	case config.ConfigRevealDelay:
		if _, err := time.ParseDuration(value); err != nil {
			return err
		}
	case config.ConfigRandomOpening:
		r, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		sc.ctrl.SetRandomOpening(r)
	case config.ConfigAutoplayThreads:
		if _, err := strconv.Atoi(value); err != nil {
			return err
		}
	}
	sc.config.Set(key, value)
	return nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		out, err := sc.config.ToDisplayText()
		if err != nil {
			return nil, err
		}
		return msg(strings.TrimRight(out, "\n")), nil
	}
	key := cmd.args[0]
	if len(cmd.args) == 1 {
		if !sc.config.IsSet(key) {
			return nil, errors.New("no such setting: " + key)
		}
		return msg(fmt.Sprintf("%s: %v", key, sc.config.Get(key))), nil
	}
	if err := sc.applySetting(key, cmd.args[1]); err != nil {
		return nil, err
	}
	return msg("set " + key + " to " + cmd.args[1]), nil
}

func (sc *ShellController) setConfig(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) < 2 {
		return nil, errors.New("usage: setconfig <key> <value>")
	}
	key := cmd.args[0]
	value := cmd.args[1]
	if err := sc.applySetting(key, value); err != nil {
		return nil, err
	}
	if err := sc.config.Write(); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	return msg(fmt.Sprintf("set config %s to %s and saved to file", key, value)), nil
}

func (sc *ShellController) saveAliases() error {
	sc.config.Set(config.ConfigAliases, sc.aliases)
	if err := sc.config.Write(); err != nil {
		return fmt.Errorf("failed to save aliases: %w", err)
	}
	return nil
}

func (sc *ShellController) listAliases() *Response {
	if len(sc.aliases) == 0 {
		return msg("No aliases defined")
	}
	names := lo.Keys(sc.aliases)
	sort.Strings(names)
	lines := lo.Map(names, func(name string, _ int) string {
		return "  " + name + " = " + sc.aliases[name]
	})
	return msg("Defined aliases:\n" + strings.Join(lines, "\n"))
}

// alias manages named shortcuts for command lines. The table is saved to
// the config file on every change.
func (sc *ShellController) alias(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return sc.listAliases(), nil
	}
	sub, rest := cmd.args[0], cmd.args[1:]
	if sub == "list" {
		return sc.listAliases(), nil
	}
	if len(rest) == 0 {
		return nil, fmt.Errorf("usage: alias %s <name>", sub)
	}
	name := rest[0]
	_, exists := sc.aliases[name]

	switch sub {
	case "set":
		if len(rest) < 2 {
			return nil, errors.New("usage: alias set <name> <command>")
		}
		if _, err := move.FromCoords(name); err == nil {
			return nil, fmt.Errorf("%s is a cell and cannot be an alias", name)
		}
		// The alias line was split like any other, so its -options come
		// back separately and are put back on the end.
		parts := rest[1:]
		keys := lo.Keys(cmd.options)
		sort.Strings(keys)
		for _, k := range keys {
			for _, v := range cmd.options[k] {
				parts = append(parts, "-"+k, v)
			}
		}
		expansion := shellquote.Join(parts...)
		sc.aliases[name] = expansion
		if err := sc.saveAliases(); err != nil {
			return nil, err
		}
		return msg(fmt.Sprintf("Alias '%s' set to: %s", name, expansion)), nil

	case "show":
		if !exists {
			return nil, fmt.Errorf("alias '%s' not found", name)
		}
		return msg(name + " = " + sc.aliases[name]), nil

	case "delete", "remove", "rm":
		if !exists {
			return nil, fmt.Errorf("alias '%s' not found", name)
		}
		delete(sc.aliases, name)
		if err := sc.saveAliases(); err != nil {
			return nil, err
		}
		return msg(fmt.Sprintf("Alias '%s' deleted", name)), nil
	}
	return nil, fmt.Errorf("unknown subcommand '%s'. Valid: set, delete, show, list", sub)
}
