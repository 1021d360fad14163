package game

import (
	"strings"

	"github.com/domino14/tictactoe/move"
)

// History is the sequence of moves played in the current round.
type History []move.Move

// String lists the moves by coordinate, e.g. "B2 A1 C3".
func (h History) String() string {
	parts := make([]string, len(h))
	for i, m := range h {
		parts[i] = m.ShortDescription()
	}
	return strings.Join(parts, " ")
}

// Indices returns the cell index of each move, in play order.
func (h History) Indices() []int {
	idxs := make([]int, len(h))
	for i, m := range h {
		idxs[i] = m.Index
	}
	return idxs
}
