package automatic

import (
	"fmt"

	"lukechampine.com/frand"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/minimax"
	"github.com/domino14/tictactoe/movegen"
)

const (
	OptimalPlayer = "optimal"
	RandomPlayer  = "random"
)

// Player stands in for the human side of a round.
type Player interface {
	Name() string
	ChooseMove(b board.Board) (int, error)
}

// NewPlayer returns the named player, playing mark against the other mark.
func NewPlayer(name string, mark board.Cell) (Player, error) {
	switch name {
	case OptimalPlayer:
		return &optimalPlayer{solver: minimax.NewSolver(mark, mark.Opponent())}, nil
	case RandomPlayer:
		return randomPlayer{}, nil
	}
	return nil, fmt.Errorf("unknown player %q; use %s or %s", name, OptimalPlayer, RandomPlayer)
}

type optimalPlayer struct {
	solver *minimax.Solver
}

func (p *optimalPlayer) Name() string { return OptimalPlayer }

func (p *optimalPlayer) ChooseMove(b board.Board) (int, error) {
	return p.solver.FindBestMove(&b)
}

type randomPlayer struct{}

func (randomPlayer) Name() string { return RandomPlayer }

func (randomPlayer) ChooseMove(b board.Board) (int, error) {
	empties := movegen.EmptyIndices(&b)
	if len(empties) == 0 {
		return -1, minimax.ErrNoMovesAvailable
	}
	return empties[frand.Intn(len(empties))], nil
}
