package shell

import (
	"github.com/logrusorgru/aurora"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/game"
)

// glyphsPlain returns the configured glyphs, falling back to the defaults if
// the configuration is unusable.
func (sc *ShellController) glyphsPlain() board.Glyphs {
	g, err := sc.config.Glyphs()
	if err != nil {
		log.Err(err).Msg("bad-glyph-config")
		return board.DefaultGlyphs
	}
	return g
}

func (sc *ShellController) glyphs() board.Glyphs {
	g := sc.glyphsPlain()
	return board.Glyphs{
		Human: sc.au.Cyan(g.Human).Bold().String(),
		AI:    sc.au.Red(g.AI).Bold().String(),
		Empty: sc.au.Gray(12, g.Empty).String(),
	}
}

func (sc *ShellController) boardText() string {
	return sc.ctrl.Board().ToDisplayText(sc.glyphs())
}

func resultTitle(r game.Result, au aurora.Aurora) string {
	switch r {
	case game.HumanWin:
		return au.Green("You win!").Bold().String()
	case game.AIWin:
		return au.Red("You lost!").Bold().String()
	case game.Draw:
		return au.Yellow("It was a tie!").Bold().String()
	}
	return ""
}
