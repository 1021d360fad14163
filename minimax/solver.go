package minimax

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/equity"
	"github.com/domino14/tictactoe/move"
	"github.com/domino14/tictactoe/movegen"
)

// thanks Wikipedia:
/*
function minimax(node, depth, maximizingPlayer) is
    if depth = 0 or node is a terminal node then
        return the heuristic value of node
    if maximizingPlayer then
        value := −∞
        for each child of node do
            value := max(value, minimax(child, depth − 1, FALSE))
        return value
    else (* minimizing player *)
        value := +∞
        for each child of node do
            value := min(value, minimax(child, depth − 1, TRUE))
        return value
**/
// Here depth counts up from the root instead, and a terminal score is pulled
// toward zero by it: a win found sooner is worth more, a loss later costs less.

var (
	ErrNoMovesAvailable = errors.New("no moves available")
)

// MoveScore is the search value of one root move.
type MoveScore struct {
	Move  move.Move
	Score int
}

type Solver struct {
	aiMark    board.Cell
	humanMark board.Cell

	nodes     atomic.Uint64
	logStream io.Writer
}

// NewSolver returns a solver that plays aiMark against humanMark.
func NewSolver(aiMark, humanMark board.Cell) *Solver {
	s := &Solver{}
	s.Init(aiMark, humanMark)
	return s
}

// Init sets the marks the solver searches for.
func (s *Solver) Init(aiMark, humanMark board.Cell) {
	s.aiMark = aiMark
	s.humanMark = humanMark
	s.nodes.Store(0)
}

func (s *Solver) AIMark() board.Cell    { return s.aiMark }
func (s *Solver) HumanMark() board.Cell { return s.humanMark }

// SetLogStream makes root searches write their per-move values to w.
func (s *Solver) SetLogStream(w io.Writer) {
	s.logStream = w
}

// Nodes is the number of positions visited by the last root search.
func (s *Solver) Nodes() uint64 {
	return s.nodes.Load()
}

// Minimax returns the value of b for the ai side. maximizing says whether the
// ai is the side to move. The board is used as scratch space and is restored
// before returning.
func (s *Solver) Minimax(b *board.Board, depth int, maximizing bool) int {
	s.nodes.Add(1)
	switch equity.Evaluate(b, s.aiMark, s.humanMark) {
	case equity.WinScore:
		return equity.WinScore - depth
	case -equity.WinScore:
		return -equity.WinScore + depth
	}
	var buf [board.NumCells]int
	empties := movegen.AppendEmptyIndices(buf[:0], b)
	if len(empties) == 0 {
		return 0
	}

	if maximizing {
		best := math.MinInt
		for _, idx := range empties {
			b[idx] = s.aiMark
			best = max(best, s.Minimax(b, depth+1, false))
			b.Undo(idx)
		}
		return best
	}
	best := math.MaxInt
	for _, idx := range empties {
		b[idx] = s.humanMark
		best = min(best, s.Minimax(b, depth+1, true))
		b.Undo(idx)
	}
	return best
}

// ScoreMoves returns the value of every legal ai move in b, in enumeration
// order. b is left as it was.
func (s *Solver) ScoreMoves(b *board.Board) []MoveScore {
	s.nodes.Store(0)
	plays := movegen.GenAll(b, s.aiMark)
	scores := make([]MoveScore, 0, len(plays))
	if s.logStream != nil {
		fmt.Fprintf(s.logStream, "- position: %s\n  plays:\n", b.String())
	}
	for _, m := range plays {
		b[m.Index] = m.Mark
		score := s.Minimax(b, 0, false)
		b.Undo(m.Index)
		scores = append(scores, MoveScore{Move: m, Score: score})
		if s.logStream != nil {
			fmt.Fprintf(s.logStream, "  - play: %s\n    value: %d\n", m.ShortDescription(), score)
		}
	}
	return scores
}

// FindBestMove returns the ai's best cell. Among equal scores the lowest index
// wins, so the result is deterministic.
func (s *Solver) FindBestMove(b *board.Board) (int, error) {
	if b.IsFull() {
		return -1, ErrNoMovesAvailable
	}
	bestVal := math.MinInt
	bestIdx := -1
	for _, ms := range s.ScoreMoves(b) {
		if ms.Score > bestVal {
			bestVal = ms.Score
			bestIdx = ms.Move.Index
		}
	}
	log.Debug().Str("board", b.String()).Int("best", bestIdx).Int("value", bestVal).
		Uint64("nodes", s.nodes.Load()).Msg("best-move-found")
	if s.logStream != nil {
		fmt.Fprintf(s.logStream, "  best: %s\n", move.ToCoords(bestIdx))
	}
	return bestIdx, nil
}
