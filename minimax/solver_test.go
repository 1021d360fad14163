package minimax

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/equity"
	"github.com/domino14/tictactoe/movegen"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func parse(t testing.TB, s string) board.Board {
	t.Helper()
	b, err := board.FromString(s, board.DefaultGlyphs)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// The default glyphs put the human on X and the ai on O.
func newSolver() *Solver {
	return NewSolver(board.AI, board.Human)
}

func TestBlocksImmediateThreat(t *testing.T) {
	is := is.New(t)
	s := newSolver()
	b := parse(t, "XX./O../...")
	idx, err := s.FindBestMove(&b)
	is.NoErr(err)
	is.Equal(idx, 2)
}

func TestPrefersWinOverBlock(t *testing.T) {
	is := is.New(t)
	s := newSolver()
	// X threatens 2, but O can complete the middle row right away.
	b := parse(t, "XX./OO./...")
	idx, err := s.FindBestMove(&b)
	is.NoErr(err)
	is.Equal(idx, 5)

	scores := s.ScoreMoves(&b)
	byIdx := map[int]int{}
	for _, ms := range scores {
		byIdx[ms.Move.Index] = ms.Score
	}
	is.Equal(byIdx[5], 10)
	// Blocking still wins, two plies later.
	is.Equal(byIdx[2], 8)
}

func TestEmptyBoardIsDeterministic(t *testing.T) {
	is := is.New(t)
	s := newSolver()
	b := board.New()
	for i := 0; i < 3; i++ {
		idx, err := s.FindBestMove(&b)
		is.NoErr(err)
		is.Equal(idx, 0)
		is.Equal(b, board.New())
	}
	is.True(s.Nodes() > 0)
}

func TestFullBoard(t *testing.T) {
	is := is.New(t)
	s := newSolver()
	b := parse(t, "XOX/XOO/OXX")
	_, err := s.FindBestMove(&b)
	is.True(errors.Is(err, ErrNoMovesAvailable))
	for _, depth := range []int{0, 3, 8} {
		is.Equal(s.Minimax(&b, depth, true), 0)
		is.Equal(s.Minimax(&b, depth, false), 0)
	}
}

func TestTerminalScoresAreDepthWeighted(t *testing.T) {
	is := is.New(t)
	s := newSolver()
	aiWin := parse(t, "XX./OOO/X..")
	is.Equal(s.Minimax(&aiWin, 0, false), 10)
	is.Equal(s.Minimax(&aiWin, 3, false), 7)
	humanWin := parse(t, "XXX/OO./O..")
	is.Equal(s.Minimax(&humanWin, 0, true), -10)
	is.Equal(s.Minimax(&humanWin, 4, true), -6)
}

func TestSearchRestoresBoard(t *testing.T) {
	is := is.New(t)
	s := newSolver()
	for _, pos := range []string{"X../.../...", "XO./X../...", "XOX/.O./..."} {
		b := parse(t, pos)
		orig := b
		_, err := s.FindBestMove(&b)
		is.NoErr(err)
		is.Equal(b, orig)
		s.Minimax(&b, 2, true)
		is.Equal(b, orig)
		s.ScoreMoves(&b)
		is.Equal(b, orig)
	}
}

func TestScoreMovesOrder(t *testing.T) {
	is := is.New(t)
	s := newSolver()
	b := parse(t, "XOX/.O./...")
	scores := s.ScoreMoves(&b)
	is.Equal(len(scores), 5)
	for i, ms := range scores {
		is.Equal(ms.Move.Index, movegen.EmptyIndices(&b)[i])
		is.Equal(ms.Move.Mark, board.AI)
	}
}

func TestLogStream(t *testing.T) {
	is := is.New(t)
	s := newSolver()
	var buf bytes.Buffer
	s.SetLogStream(&buf)
	b := parse(t, "XX./O../...")
	_, err := s.FindBestMove(&b)
	is.NoErr(err)
	out := buf.String()
	is.True(strings.Contains(out, "- position: XX./O../..."))
	is.True(strings.Contains(out, "  - play: C1\n"))
	is.True(strings.HasSuffix(out, "  best: C1\n"))
}

func TestSwappedMarks(t *testing.T) {
	is := is.New(t)
	// The ai may just as well own the Human cell value.
	s := NewSolver(board.Human, board.AI)
	b := parse(t, "OO./X../...")
	idx, err := s.FindBestMove(&b)
	is.NoErr(err)
	is.Equal(idx, 2)
}

// humanCanWin walks every human reply from b with the ai answering through
// FindBestMove, and reports whether any line ends in a human win.
func humanCanWin(t *testing.T, s *Solver, b *board.Board, humanToMove bool) bool {
	switch equity.Evaluate(b, s.aiMark, s.humanMark) {
	case -equity.WinScore:
		return true
	case equity.WinScore:
		return false
	}
	if b.IsFull() {
		return false
	}
	if !humanToMove {
		idx, err := s.FindBestMove(b)
		if err != nil {
			t.Fatal(err)
		}
		b[idx] = s.aiMark
		lost := humanCanWin(t, s, b, true)
		b.Undo(idx)
		return lost
	}
	for _, idx := range movegen.EmptyIndices(b) {
		b[idx] = s.humanMark
		lost := humanCanWin(t, s, b, false)
		b.Undo(idx)
		if lost {
			return true
		}
	}
	return false
}

func TestNeverLoses(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}
	is := is.New(t)
	s := newSolver()
	b := board.New()
	is.True(!humanCanWin(t, s, &b, true))
	is.True(!humanCanWin(t, s, &b, false))
	is.Equal(b, board.New())
}

func TestPrincipalVariation(t *testing.T) {
	is := is.New(t)
	s := newSolver()
	b := board.New()
	pv := s.PrincipalVariation(&b, board.AI)
	is.Equal(pv.Score(), 0)
	is.Equal(len(pv.Moves), board.NumCells)
	is.Equal(pv.Moves[0].Index, 0)
	is.Equal(pv.Moves[0].Mark, board.AI)
	is.Equal(pv.Moves[1].Mark, board.Human)
	is.Equal(b, board.New())

	end := board.New()
	for _, m := range pv.Moves {
		is.NoErr(end.Apply(m.Index, m.Mark))
	}
	is.Equal(equity.Evaluate(&end, board.AI, board.Human), 0)

	b = parse(t, "XX./OO./...")
	pv = s.PrincipalVariation(&b, board.AI)
	is.Equal(pv.Score(), 10)
	is.Equal(len(pv.Moves), 1)
	is.Equal(pv.Moves[0].Index, 5)
	is.True(strings.HasPrefix(pv.String(), "PV; val 10\n1: C2 (ai)"))
	is.Equal(pv.NLBString(), "PV; val 10; 1: C2 (ai); ")
}

func TestPrincipalVariationHumanToMove(t *testing.T) {
	is := is.New(t)
	s := newSolver()
	// Human to move and able to win at once on the top row.
	b := parse(t, "XX./OO./...")
	pv := s.PrincipalVariation(&b, board.Human)
	is.Equal(pv.Score(), -10)
	is.Equal(pv.Moves[0].Index, 2)
	is.Equal(pv.Moves[0].Mark, board.Human)
}

func BenchmarkFindBestMoveEmpty(b *testing.B) {
	s := newSolver()
	bd := board.New()
	for i := 0; i < b.N; i++ {
		s.FindBestMove(&bd)
	}
}

func BenchmarkFindBestMoveOneMark(b *testing.B) {
	s := newSolver()
	bd := parse(b, ".../.X./...")
	for i := 0; i < b.N; i++ {
		s.FindBestMove(&bd)
	}
}
