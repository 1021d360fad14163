package automatic

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/game"
)

func TestPlayRoundAlternatesStarters(t *testing.T) {
	is := is.New(t)
	logchan := make(chan string, 4)
	runner, err := NewGameRunner(logchan, OptimalPlayer, false)
	is.NoErr(err)

	for round := 1; round <= 4; round++ {
		rec, err := runner.PlayRound()
		is.NoErr(err)
		is.Equal(rec.Round, round)
		is.Equal(rec.Starter, game.StarterForRound(round).String())
		is.Equal(rec.Result, "draw")
		is.Equal(len(<-logchan) > 0, true)
	}
	is.Equal(runner.Controller().SessionScore(), game.SessionScore{HumanWins: 4, AIWins: 4})
}

func TestPlayRoundRecord(t *testing.T) {
	is := is.New(t)
	runner, err := NewGameRunner(nil, OptimalPlayer, false)
	is.NoErr(err)
	rec, err := runner.PlayRound()
	is.NoErr(err)
	// Both sides search the same way, so the first round is always this one.
	b, err := board.FromString(rec.Board, board.DefaultGlyphs)
	is.NoErr(err)
	is.True(b.IsFull())
	is.Equal(rec.Moves[0], "A1")
	is.Equal(len(rec.Cells), 9)
	is.Equal(rec.Cells[0], 0)
	is.Equal(rec.RoundID, runner.Controller().RoundID().String())
}

func TestNewPlayer(t *testing.T) {
	is := is.New(t)
	p, err := NewPlayer(RandomPlayer, board.Human)
	is.NoErr(err)
	is.Equal(p.Name(), RandomPlayer)
	b, _ := board.FromString("XOX/OXO/OX.", board.DefaultGlyphs)
	idx, err := p.ChooseMove(b)
	is.NoErr(err)
	is.Equal(idx, 8)

	_, err = NewPlayer("grandmaster", board.Human)
	is.True(err != nil)
}
