package move

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/domino14/tictactoe/board"
)

// Move is a mark placed on a cell.
type Move struct {
	Index int
	Mark  board.Cell
}

var reCoords, reIndex *regexp.Regexp

func init() {
	reCoords = regexp.MustCompile(`^(?P<col>[A-C])(?P<row>[1-3])$`)
	reIndex = regexp.MustCompile(`^[0-8]$`)
}

// New creates a move; validity against a board is checked on Apply.
func New(index int, mark board.Cell) Move {
	return Move{Index: index, Mark: mark}
}

func (m Move) String() string {
	return fmt.Sprintf("<move %v at %d (%s)>", m.Mark, m.Index, ToCoords(m.Index))
}

// ShortDescription is what the shell shows for a move.
func (m Move) ShortDescription() string {
	return ToCoords(m.Index)
}

// ToCoords converts a cell index to a coordinate like B2 (column letter,
// then row number). Indices off the board give "??".
func ToCoords(index int) string {
	if index < 0 || index >= board.NumCells {
		return "??"
	}
	row, col := index/board.Dim, index%board.Dim
	return string(rune('A'+col)) + strconv.Itoa(row+1)
}

// FromCoords does the inverse of ToCoords. A bare cell index "0".."8" is
// also accepted.
func FromCoords(c string) (int, error) {
	c = strings.ToUpper(strings.TrimSpace(c))
	if reIndex.MatchString(c) {
		return int(c[0] - '0'), nil
	}
	matches := reCoords.FindStringSubmatch(c)
	if len(matches) != 3 {
		return 0, fmt.Errorf("%w: cannot parse coordinates %q", board.ErrInvalidMove, c)
	}
	col := int(matches[1][0] - 'A')
	row, _ := strconv.Atoi(matches[2])
	return (row-1)*board.Dim + col, nil
}
