// Package movegen lists the legal moves on a board. The order it produces
// is the canonical search order, so it doubles as the tie-break: callers
// that keep the first best move they see rely on it being ascending.
package movegen

import (
	"github.com/samber/lo"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/move"
)

// EmptyIndices returns the empty cells of b in strictly ascending order.
func EmptyIndices(b *board.Board) []int {
	return AppendEmptyIndices(make([]int, 0, board.NumCells), b)
}

// AppendEmptyIndices appends the empty cells of b to dst, ascending. The
// search calls it with a stack buffer at every node.
func AppendEmptyIndices(dst []int, b *board.Board) []int {
	for i, c := range b {
		if c == board.Empty {
			dst = append(dst, i)
		}
	}
	return dst
}

// GenAll returns every legal move for mark, in enumeration order.
func GenAll(b *board.Board, mark board.Cell) []move.Move {
	return lo.Map(EmptyIndices(b), func(idx int, _ int) move.Move {
		return move.New(idx, mark)
	})
}
