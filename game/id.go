package game

import "github.com/google/uuid"

// RoundID tags one round in logs and in the self-play log.
type RoundID string

func newRoundID() RoundID {
	return RoundID(uuid.New().String())
}

func (id RoundID) String() string {
	return string(id)
}

// Short is the first group of the id, enough to tell rounds apart on screen.
func (id RoundID) Short() string {
	if len(id) < 8 {
		return string(id)
	}
	return string(id[:8])
}
