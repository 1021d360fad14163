// Package equity scores finished and unfinished positions. A position is
// worth WinScore to the side that completed a line, and nothing otherwise.
package equity

import "github.com/domino14/tictactoe/board"

const WinScore = 10

// Line is three cell indices that win when they hold the same mark.
type Line [3]int

// Lines is the scan order: rows, then columns, then the two diagonals.
var Lines = [8]Line{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func complete(b *board.Board, l Line) bool {
	c := b[l[0]]
	return c != board.Empty && c == b[l[1]] && c == b[l[2]]
}

// Evaluate returns +WinScore if aiMark owns a complete line, -WinScore if
// humanMark does, and 0 otherwise. Every line is checked; when more than one
// is complete the last one in scan order decides.
func Evaluate(b *board.Board, aiMark, humanMark board.Cell) int {
	value := 0
	for _, l := range Lines {
		if !complete(b, l) {
			continue
		}
		switch b[l[0]] {
		case aiMark:
			value = WinScore
		case humanMark:
			value = -WinScore
		}
	}
	return value
}

// WinningLine returns the line Evaluate would have used, if any.
func WinningLine(b *board.Board) (Line, bool) {
	var found Line
	ok := false
	for _, l := range Lines {
		if complete(b, l) {
			found, ok = l, true
		}
	}
	return found, ok
}
