// Package board holds the 3x3 game grid. A Board is a plain value; the
// search mutates one buffer in place and relies on Undo to put it back.
package board

import (
	"errors"
	"fmt"
)

const (
	// Dim is the number of rows and columns.
	Dim = 3
	// NumCells is the number of squares on a board.
	NumCells = Dim * Dim
)

// A Cell is the content of one square.
type Cell uint8

const (
	Empty Cell = iota
	Human
	AI
)

func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case Human:
		return "human"
	case AI:
		return "ai"
	}
	return fmt.Sprintf("cell(%d)", uint8(c))
}

// IsMark is true for the two cells a player can place.
func (c Cell) IsMark() bool {
	return c == Human || c == AI
}

// Opponent returns the other player's mark. Empty has no opponent.
func (c Cell) Opponent() Cell {
	switch c {
	case Human:
		return AI
	case AI:
		return Human
	}
	return Empty
}

var (
	ErrInvalidMove = errors.New("invalid move")
)

// Board is row-major: index = row*Dim + col.
type Board [NumCells]Cell

// New returns an empty board.
func New() Board {
	return Board{}
}

// Apply places mark on the cell at index.
func (b *Board) Apply(index int, mark Cell) error {
	if index < 0 || index >= NumCells {
		return fmt.Errorf("%w: index %d is off the board", ErrInvalidMove, index)
	}
	if !mark.IsMark() {
		return fmt.Errorf("%w: %v is not a player mark", ErrInvalidMove, mark)
	}
	if b[index] != Empty {
		return fmt.Errorf("%w: cell %d is already taken", ErrInvalidMove, index)
	}
	b[index] = mark
	return nil
}

// Undo empties the cell at index. Only the search uses this, to backtrack
// a hypothetical move.
func (b *Board) Undo(index int) {
	b[index] = Empty
}

// IsFull is true when no cell is empty.
func (b *Board) IsFull() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// Clear empties every cell.
func (b *Board) Clear() {
	*b = Board{}
}

// Count returns how many cells hold mark.
func (b *Board) Count(mark Cell) int {
	n := 0
	for _, c := range b {
		if c == mark {
			n++
		}
	}
	return n
}

// Reachable checks the alternating-play invariant for a round that the
// starter opened: the starter has either as many marks as the other side
// or exactly one more.
func (b *Board) Reachable(starter Cell) bool {
	if !starter.IsMark() {
		return false
	}
	diff := b.Count(starter) - b.Count(starter.Opponent())
	return diff == 0 || diff == 1
}

// SideToMove infers whose turn it is from the counts, given who opened.
func (b *Board) SideToMove(starter Cell) Cell {
	if b.Count(starter) > b.Count(starter.Opponent()) {
		return starter.Opponent()
	}
	return starter
}

// Swapped returns a copy with the Human and AI marks exchanged.
func (b Board) Swapped() Board {
	for i, c := range b {
		b[i] = c.Opponent()
	}
	return b
}
