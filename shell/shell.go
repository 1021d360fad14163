package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/logrusorgru/aurora"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/config"
	"github.com/domino14/tictactoe/game"
	"github.com/domino14/tictactoe/move"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errQuit              = errors.New("sending quit signal")
)

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

type ShellController struct {
	l        *readline.Instance
	out      io.Writer
	config   *config.Config
	execPath string
	version  string

	ctrl    *game.Controller
	aliases map[string]string
	au      aurora.Aurora
	// sleep is swapped out by tests.
	sleep func(time.Duration)
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// NewShellController sets up the line editor and opens the first round.
func NewShellController(cfg *config.Config, execPath, gitVersion string) *ShellController {
	prompt := "tictactoe> "
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36m" + prompt + "\033[0m",
		HistoryFile:     cfg.HistoryPath(),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc := newShellController(cfg, execPath, gitVersion, l.Stderr(), true)
	sc.l = l
	l.Config.AutoComplete = NewShellCompleter(sc)
	return sc
}

func newShellController(cfg *config.Config, execPath, gitVersion string, out io.Writer,
	colors bool) *ShellController {

	sc := &ShellController{
		out:      out,
		config:   cfg,
		execPath: execPath,
		version:  gitVersion,
		ctrl:     game.NewController(board.Human, board.AI),
		aliases:  cfg.GetStringMapString(config.ConfigAliases),
		au:       aurora.NewAurora(colors),
		sleep:    time.Sleep,
	}
	if sc.aliases == nil {
		sc.aliases = map[string]string{}
	}
	sc.ctrl.SetRandomOpening(cfg.GetBool(config.ConfigRandomOpening))
	return sc
}

// extractFields splits a line into a command, its positional arguments and
// its -options. Every option takes exactly one value; an option may repeat.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for i := 1; i < len(fields); i++ {
		f := fields[i]
		if strings.HasPrefix(f, "-") && len(f) > 1 {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			opt := strings.TrimPrefix(f, "-")
			options[opt] = append(options[opt], fields[i+1])
			i++
			continue
		}
		args = append(args, f)
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

// expandAlias replaces a leading alias with the command it stands for.
func (sc *ShellController) expandAlias(line string) string {
	name, rest, _ := strings.Cut(line, " ")
	if expansion, ok := sc.aliases[name]; ok {
		return strings.TrimSpace(expansion + " " + rest)
	}
	return line
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(sc.expandAlias(line))
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "bye":
		sig <- syscall.SIGINT
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "alias":
		return sc.alias(cmd)
	case "new", "n":
		return sc.newRound(cmd)
	case "play", "p":
		return sc.play(cmd)
	case "ack", "next":
		return sc.ack(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "score":
		return sc.score(cmd)
	case "hint":
		return sc.hint(cmd)
	case "analyze":
		return sc.analyze(cmd)
	case "setboard":
		return sc.setBoard(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "set":
		return sc.set(cmd)
	case "setconfig":
		return sc.setConfig(cmd)
	case "script":
		return sc.script(cmd)
	default:
		// A bare coordinate is a move.
		if _, err := move.FromCoords(cmd.cmd); err == nil && len(cmd.args) == 0 {
			return sc.play(&shellcmd{cmd: "play", args: []string{cmd.cmd}})
		}
		log.Debug().Msgf("you said: %v", strconv.Quote(line))
		return nil, fmt.Errorf("command %v not found", strconv.Quote(cmd.cmd))
	}
}

// Execute runs each ;-separated command in line, as given on the command
// line, and prints the results.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	if !sc.ctrl.Started() {
		if _, err := sc.startSession(); err != nil {
			sc.showError(err)
			return
		}
	}
	for _, part := range strings.Split(line, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		resp, err := sc.standardModeSwitch(part, sig)
		if err == errQuit {
			return
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil {
			sc.showMessage(resp.message)
		}
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	if sc.version != "" {
		sc.showMessage("tictactoe " + sc.version)
	}
	if resp, err := sc.startSession(); err != nil {
		sc.showError(err)
	} else {
		sc.showMessage(resp.message)
	}

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.standardModeSwitch(line, sig)
		if err == errQuit {
			break
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup is called once the loop has exited.
func (sc *ShellController) Cleanup() {
	s := sc.ctrl.SessionScore()
	log.Info().Int("rounds", sc.ctrl.Round()).Int("human-wins", s.HumanWins).
		Int("ai-wins", s.AIWins).Msg("session-over")
}
