package minimax

import (
	"fmt"
	"math"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/equity"
	"github.com/domino14/tictactoe/move"
	"github.com/domino14/tictactoe/movegen"
)

// Credit: MIT-licensed https://github.com/algerbrex/blunder/blob/main/engine/search.go
type PVLine struct {
	Moves []move.Move
	score int
}

// Score is the value of the line for the ai side.
func (pvLine PVLine) Score() int {
	return pvLine.score
}

func (pvLine PVLine) String() string {
	var s string
	s = fmt.Sprintf("PV; val %d\n", pvLine.score)
	for i := 0; i < len(pvLine.Moves); i++ {
		s += fmt.Sprintf("%d: %s (%s)\n",
			i+1,
			pvLine.Moves[i].ShortDescription(),
			pvLine.Moves[i].Mark)
	}
	return s
}

func (pvLine PVLine) NLBString() string {
	// no line breaks
	var s string
	s = fmt.Sprintf("PV; val %d; ", pvLine.score)
	for i := 0; i < len(pvLine.Moves); i++ {
		s += fmt.Sprintf("%d: %s (%s); ",
			i+1,
			pvLine.Moves[i].ShortDescription(),
			pvLine.Moves[i].Mark)
	}
	return s
}

// PrincipalVariation plays the position out with both sides choosing the
// way FindBestMove does: best value, lowest index on ties. toMove is the side
// whose turn it is in b. b is not modified.
func (s *Solver) PrincipalVariation(b *board.Board, toMove board.Cell) PVLine {
	s.nodes.Store(0)
	pos := *b
	pv := PVLine{}
	for ply := 0; ; ply++ {
		if equity.Evaluate(&pos, s.aiMark, s.humanMark) != 0 || pos.IsFull() {
			break
		}
		maximizing := toMove == s.aiMark
		bestIdx := -1
		bestVal := math.MaxInt
		if maximizing {
			bestVal = math.MinInt
		}
		for _, idx := range movegen.EmptyIndices(&pos) {
			pos[idx] = toMove
			v := s.Minimax(&pos, ply, !maximizing)
			pos.Undo(idx)
			if (maximizing && v > bestVal) || (!maximizing && v < bestVal) {
				bestVal, bestIdx = v, idx
			}
		}
		if ply == 0 {
			pv.score = bestVal
		}
		pv.Moves = append(pv.Moves, move.New(bestIdx, toMove))
		pos[bestIdx] = toMove
		toMove = toMove.Opponent()
	}
	return pv
}
