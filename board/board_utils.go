package board

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Glyphs maps cells to what gets printed for them. The strings may carry
// terminal colour codes; parsing only ever looks at the plain runes.
type Glyphs struct {
	Human string
	AI    string
	Empty string
}

// DefaultGlyphs are used when nothing else is configured.
var DefaultGlyphs = Glyphs{Human: "X", AI: "O", Empty: "."}

var errBadBoardString = errors.New("board string must describe exactly 9 cells")

// emptyRunes and separatorRunes have fixed meanings in FromString.
const (
	emptyRunes     = "._-"
	separatorRunes = "/|"
)

// Of returns the glyph for c.
func (g Glyphs) Of(c Cell) string {
	switch c {
	case Human:
		return g.Human
	case AI:
		return g.AI
	}
	if g.Empty == "" {
		return "."
	}
	return g.Empty
}

// Validate rejects glyph sets that would make the two sides
// indistinguishable, or a side indistinguishable from an empty cell.
func (g Glyphs) Validate() error {
	if strings.TrimSpace(g.Human) == "" || strings.TrimSpace(g.AI) == "" {
		return errors.New("both players need a glyph")
	}
	if strings.EqualFold(g.Human, g.AI) {
		return fmt.Errorf("human and ai cannot share the glyph %q", g.Human)
	}
	for _, p := range []string{g.Human, g.AI} {
		if strings.ContainsAny(p, emptyRunes+separatorRunes) || strings.IndexFunc(p, unicode.IsSpace) >= 0 {
			return fmt.Errorf("%q is reserved for empty cells and separators", p)
		}
		if g.Empty != "" && strings.EqualFold(p, g.Empty) {
			return fmt.Errorf("%q is the empty cell glyph", p)
		}
	}
	return nil
}

func (b Board) ToDisplayText(g Glyphs) string {
	var sb strings.Builder
	sb.WriteString("   ")
	for i := 0; i < Dim; i++ {
		sb.WriteString(fmt.Sprintf("%c ", 'a'+i))
	}
	sb.WriteString("\n")
	sb.WriteString("   " + strings.Repeat("-", Dim*2) + "\n")
	for row := 0; row < Dim; row++ {
		sb.WriteString(fmt.Sprintf("%2d|", row+1))
		for col := 0; col < Dim; col++ {
			sb.WriteString(g.Of(b[row*Dim+col]) + " ")
		}
		sb.WriteString("|\n")
	}
	sb.WriteString("   " + strings.Repeat("-", Dim*2) + "\n")
	return "\n" + sb.String()
}

// String is the compact one-line form understood by FromString, using the
// default glyphs.
func (b Board) String() string {
	var sb strings.Builder
	for i, c := range b {
		if i > 0 && i%Dim == 0 {
			sb.WriteByte('/')
		}
		sb.WriteString(DefaultGlyphs.Of(c))
	}
	return sb.String()
}

// FromString parses a board such as "XX./OO./..." or "XX.OO....".
// Whitespace, '/' and '|' are separators; '.', '_' and '-' are empty cells.
// Marks are matched against g case-insensitively.
func FromString(s string, g Glyphs) (Board, error) {
	var b Board
	human := []rune(strings.ToUpper(g.Human))
	ai := []rune(strings.ToUpper(g.AI))
	if len(human) != 1 || len(ai) != 1 {
		return b, errors.New("glyphs must be single characters to parse a board")
	}
	idx := 0
	for _, r := range s {
		if unicode.IsSpace(r) || strings.ContainsRune(separatorRunes, r) {
			continue
		}
		if idx >= NumCells {
			return b, errBadBoardString
		}
		switch unicode.ToUpper(r) {
		case '.', '_', '-':
			b[idx] = Empty
		case human[0]:
			b[idx] = Human
		case ai[0]:
			b[idx] = AI
		default:
			return b, fmt.Errorf("unrecognized cell %q at position %d", r, idx)
		}
		idx++
	}
	if idx != NumCells {
		return b, errBadBoardString
	}
	return b, nil
}
