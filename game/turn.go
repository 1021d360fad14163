package game

import "fmt"

// Side is one of the two participants, independent of the mark it plays.
type Side int

const (
	HumanSide Side = iota
	AISide
)

func (s Side) String() string {
	switch s {
	case HumanSide:
		return "human"
	case AISide:
		return "ai"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

func (s Side) valid() bool {
	return s == HumanSide || s == AISide
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == HumanSide {
		return AISide
	}
	return HumanSide
}

// StarterForRound says who opens round n (1-based). The human opens the
// first round and the sides alternate after that.
func StarterForRound(n int) Side {
	if n%2 == 0 {
		return AISide
	}
	return HumanSide
}

type State int

const (
	AwaitingHumanMove State = iota
	AIThinking
	RoundOver
)

func (s State) String() string {
	switch s {
	case AwaitingHumanMove:
		return "awaiting-human-move"
	case AIThinking:
		return "ai-thinking"
	case RoundOver:
		return "round-over"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Result is the outcome of a round. NoResult means it is still going.
type Result int

const (
	NoResult Result = iota
	HumanWin
	AIWin
	Draw
)

func (r Result) String() string {
	switch r {
	case NoResult:
		return "none"
	case HumanWin:
		return "human-win"
	case AIWin:
		return "ai-win"
	case Draw:
		return "draw"
	}
	return fmt.Sprintf("result(%d)", int(r))
}

// Outcome is what the caller learns after a move is applied.
type Outcome struct {
	// Continue is set when the other side is now to move.
	Continue bool
	Result   Result
}

// SessionScore counts round wins since the process started. A draw is
// credited to both sides.
type SessionScore struct {
	HumanWins int `json:"human_wins"`
	AIWins    int `json:"ai_wins"`
}

func (s *SessionScore) record(r Result) {
	switch r {
	case HumanWin:
		s.HumanWins++
	case AIWin:
		s.AIWins++
	case Draw:
		s.HumanWins++
		s.AIWins++
	}
}
