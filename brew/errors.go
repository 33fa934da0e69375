package brew

import (
	"errors"
	"fmt"
)

var (
	ErrMatchEnded  = errors.New("match already ended")
	ErrNoPlayers   = errors.New("at least one player is required")
	ErrNilStrategy = errors.New("player strategy is nil")
)

// InvariantError is raised (via panic) when a rule or the orchestrator breaks
// a game invariant. It carries enough context to reproduce the match.
type InvariantError struct {
	Seed   int64
	Turn   int
	Player PlayerID
	Msg    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated (seed=%d turn=%d player=%d): %s", e.Seed, e.Turn, e.Player, e.Msg)
}
