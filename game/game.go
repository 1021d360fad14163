// Package game runs rounds between a human and the search: it owns the
// board, decides whose turn it is, and keeps the session score.
package game

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/equity"
	"github.com/domino14/tictactoe/minimax"
	"github.com/domino14/tictactoe/move"
)

var (
	ErrNotHumanTurn = errors.New("it is not the human's turn")
	ErrNotAITurn    = errors.New("it is not the ai's turn")
	ErrRoundNotOver = errors.New("the round is not over")
	ErrSameMarks    = errors.New("human and ai cannot play the same mark")
	ErrInvalidMark  = errors.New("not a player mark")
	ErrNoRound      = errors.New("no round has been started")
)

// Controller is the round state machine. It is not safe for concurrent use;
// self-play gives every worker its own.
type Controller struct {
	humanMark board.Cell
	aiMark    board.Cell
	solver    *minimax.Solver

	board   board.Board
	state   State
	started bool
	round   int
	starter Side
	result  Result
	history History
	roundID RoundID
	score   SessionScore

	randomOpening bool
}

// NewController returns a controller with no round in progress. The marks
// are checked when a round is created.
func NewController(humanMark, aiMark board.Cell) *Controller {
	return &Controller{
		humanMark: humanMark,
		aiMark:    aiMark,
		solver:    minimax.NewSolver(aiMark, humanMark),
		state:     RoundOver,
	}
}

// SetRandomOpening makes the ai open a round on an empty board with a random
// cell instead of the searched one.
func (c *Controller) SetRandomOpening(r bool) {
	c.randomOpening = r
}

func (c *Controller) validateMarks() error {
	if !c.humanMark.IsMark() {
		return fmt.Errorf("%w: human mark %v", ErrInvalidMark, c.humanMark)
	}
	if !c.aiMark.IsMark() {
		return fmt.Errorf("%w: ai mark %v", ErrInvalidMark, c.aiMark)
	}
	if c.humanMark == c.aiMark {
		return ErrSameMarks
	}
	return nil
}

// CreateRound starts a new round on an empty board with starter to move.
// Any round in progress is abandoned without touching the score.
func (c *Controller) CreateRound(starter Side) (board.Board, error) {
	if err := c.validateMarks(); err != nil {
		return c.board, err
	}
	if !starter.valid() {
		return c.board, fmt.Errorf("unknown starting side %v", starter)
	}
	c.board.Clear()
	c.history = nil
	c.result = NoResult
	c.starter = starter
	c.round++
	c.started = true
	c.roundID = newRoundID()
	c.state = c.stateFor(starter)
	log.Info().Str("round-id", c.roundID.String()).Int("round", c.round).
		Str("starter", starter.String()).Msg("round-started")
	return c.board, nil
}

// Start opens the first round of a session, or the next one if the
// previous round has been acknowledged out of band.
func (c *Controller) Start() (Side, error) {
	starter := StarterForRound(c.round + 1)
	_, err := c.CreateRound(starter)
	return starter, err
}

func (c *Controller) stateFor(toMove Side) State {
	if toMove == AISide {
		return AIThinking
	}
	return AwaitingHumanMove
}

func (c *Controller) markOf(s Side) board.Cell {
	if s == AISide {
		return c.aiMark
	}
	return c.humanMark
}

// SubmitHumanMove plays the human's mark at index. An invalid move leaves
// everything as it was.
func (c *Controller) SubmitHumanMove(index int) (Outcome, error) {
	if !c.started {
		return Outcome{}, ErrNoRound
	}
	if c.state != AwaitingHumanMove {
		return Outcome{}, ErrNotHumanTurn
	}
	if err := c.board.Apply(index, c.humanMark); err != nil {
		return Outcome{}, err
	}
	log.Debug().Str("round-id", c.roundID.String()).Int("index", index).Msg("human-move")
	return c.afterMove(move.New(index, c.humanMark), AISide), nil
}

// PlayAIMove is the ai's half of a turn: search, apply, evaluate. It
// returns the cell played.
func (c *Controller) PlayAIMove() (int, Outcome, error) {
	if !c.started {
		return -1, Outcome{}, ErrNoRound
	}
	if c.state != AIThinking {
		return -1, Outcome{}, ErrNotAITurn
	}
	var idx int
	if c.randomOpening && c.board.Count(board.Empty) == board.NumCells {
		idx = frand.Intn(board.NumCells)
		log.Debug().Int("index", idx).Msg("random-opening")
	} else {
		var err error
		idx, err = c.ComputeAIMove(c.board)
		if err != nil {
			// The board is never full while the ai is to move.
			log.Error().Err(err).Str("board", c.board.String()).Msg("ai-search-failed")
			panic(err)
		}
	}
	if err := c.board.Apply(idx, c.aiMark); err != nil {
		return -1, Outcome{}, err
	}
	log.Debug().Str("round-id", c.roundID.String()).Int("index", idx).
		Uint64("nodes", c.solver.Nodes()).Msg("ai-move")
	return idx, c.afterMove(move.New(idx, c.aiMark), HumanSide), nil
}

func (c *Controller) afterMove(m move.Move, next Side) Outcome {
	c.history = append(c.history, m)
	r := c.RoundResult(c.board)
	if r == NoResult {
		c.state = c.stateFor(next)
		return Outcome{Continue: true}
	}
	c.result = r
	c.state = RoundOver
	c.score.record(r)
	log.Info().Str("round-id", c.roundID.String()).Int("round", c.round).
		Str("result", r.String()).Str("moves", c.history.String()).
		Int("human-wins", c.score.HumanWins).Int("ai-wins", c.score.AIWins).
		Msg("round-over")
	return Outcome{Result: r}
}

// ComputeAIMove returns the search's choice for the ai on b. b is a copy,
// so the caller's board is never touched.
func (c *Controller) ComputeAIMove(b board.Board) (int, error) {
	return c.solver.FindBestMove(&b)
}

// RoundResult classifies b. A complete line decides the round; otherwise a
// full board is a draw.
func (c *Controller) RoundResult(b board.Board) Result {
	switch equity.Evaluate(&b, c.aiMark, c.humanMark) {
	case equity.WinScore:
		return AIWin
	case -equity.WinScore:
		return HumanWin
	}
	if b.IsFull() {
		return Draw
	}
	return NoResult
}

// Acknowledge closes a finished round and starts the next one. It returns
// the side that moves first in the new round.
func (c *Controller) Acknowledge() (Side, error) {
	if !c.started || c.state != RoundOver {
		return HumanSide, ErrRoundNotOver
	}
	return c.Start()
}

// SetPosition replaces the current board, for setting up positions by hand.
// toMove must be consistent with the mark counts. The move history is lost.
func (c *Controller) SetPosition(b board.Board, toMove Side) error {
	if err := c.validateMarks(); err != nil {
		return err
	}
	if !toMove.valid() {
		return fmt.Errorf("unknown side to move %v", toMove)
	}
	if c.RoundResult(b) != NoResult {
		return errors.New("position is already decided")
	}
	mover := c.markOf(toMove)
	other := c.markOf(toMove.Other())
	var starter Side
	switch {
	case b.Reachable(mover) && b.SideToMove(mover) == mover:
		starter = toMove
	case b.Reachable(other) && b.SideToMove(other) == mover:
		starter = toMove.Other()
	default:
		return fmt.Errorf("%v cannot be to move with %d %v and %d %v marks",
			toMove, b.Count(mover), mover, b.Count(other), other)
	}
	if !c.started {
		c.round++
		c.started = true
	}
	c.board = b
	c.history = nil
	c.result = NoResult
	c.starter = starter
	c.roundID = newRoundID()
	c.state = c.stateFor(toMove)
	log.Info().Str("round-id", c.roundID.String()).Str("board", b.String()).
		Str("to-move", toMove.String()).Msg("position-set")
	return nil
}

func (c *Controller) SessionScore() SessionScore { return c.score }
func (c *Controller) State() State               { return c.state }
func (c *Controller) Round() int                 { return c.round }
func (c *Controller) Board() board.Board         { return c.board }
func (c *Controller) Starter() Side              { return c.starter }
func (c *Controller) Result() Result             { return c.result }
func (c *Controller) RoundID() RoundID           { return c.roundID }
func (c *Controller) HumanMark() board.Cell      { return c.humanMark }
func (c *Controller) AIMark() board.Cell         { return c.aiMark }
func (c *Controller) Started() bool              { return c.started }

// History returns the moves of the current round in play order.
func (c *Controller) History() History {
	h := make(History, len(c.history))
	copy(h, c.history)
	return h
}

// ToMove returns the side whose move is awaited. It is meaningless once the
// round is over.
func (c *Controller) ToMove() Side {
	if c.state == AIThinking {
		return AISide
	}
	return HumanSide
}
