// Package automatic plays rounds with no human at the keyboard: a stand-in
// player takes the human side and the controller's search plays the other.
package automatic

import (
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/game"
)

// RoundRecord is one line of the self-play log.
type RoundRecord struct {
	RoundID  string   `json:"round_id"`
	Round    int      `json:"round"`
	Starter  string   `json:"starter"`
	Opponent string   `json:"opponent"`
	Moves    []string `json:"moves"`
	Cells    []int    `json:"cells"`
	Result   string   `json:"result"`
	Board    string   `json:"board"`

	result game.Result
}

func (r RoundRecord) String() string {
	s, err := sonic.MarshalString(r)
	if err != nil {
		log.Err(err).Msg("marshal-round-record")
		return ""
	}
	return s
}

// GameRunner drives one controller through successive rounds.
type GameRunner struct {
	ctrl     *game.Controller
	opponent Player
	logchan  chan string
}

// NewGameRunner returns a runner whose human side is played by the named
// player. Finished rounds are sent to logchan as JSON lines when it is set.
func NewGameRunner(logchan chan string, opponent string, randomOpening bool) (*GameRunner, error) {
	p, err := NewPlayer(opponent, board.Human)
	if err != nil {
		return nil, err
	}
	ctrl := game.NewController(board.Human, board.AI)
	ctrl.SetRandomOpening(randomOpening)
	return &GameRunner{ctrl: ctrl, opponent: p, logchan: logchan}, nil
}

// Controller exposes the runner's controller, mostly for its session score.
func (r *GameRunner) Controller() *game.Controller {
	return r.ctrl
}

// PlayRound plays one full round. Starters alternate from round to round,
// the same way they do for a person at the shell.
func (r *GameRunner) PlayRound() (RoundRecord, error) {
	var err error
	if r.ctrl.Started() {
		_, err = r.ctrl.Acknowledge()
	} else {
		_, err = r.ctrl.Start()
	}
	if err != nil {
		return RoundRecord{}, err
	}
	for r.ctrl.State() != game.RoundOver {
		switch r.ctrl.State() {
		case game.AwaitingHumanMove:
			idx, err := r.opponent.ChooseMove(r.ctrl.Board())
			if err != nil {
				return RoundRecord{}, err
			}
			if _, err = r.ctrl.SubmitHumanMove(idx); err != nil {
				return RoundRecord{}, err
			}
		case game.AIThinking:
			if _, _, err = r.ctrl.PlayAIMove(); err != nil {
				return RoundRecord{}, err
			}
		}
	}
	h := r.ctrl.History()
	moves := make([]string, len(h))
	for i, m := range h {
		moves[i] = m.ShortDescription()
	}
	rec := RoundRecord{
		RoundID:  r.ctrl.RoundID().String(),
		Round:    r.ctrl.Round(),
		Starter:  r.ctrl.Starter().String(),
		Opponent: r.opponent.Name(),
		Moves:    moves,
		Cells:    h.Indices(),
		Result:   r.ctrl.Result().String(),
		Board:    r.ctrl.Board().String(),
		result:   r.ctrl.Result(),
	}
	if r.logchan != nil {
		r.logchan <- rec.String() + "\n"
	}
	return rec, nil
}
