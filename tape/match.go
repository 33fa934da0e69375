package tape

import (
	"fmt"
	"io"
	"strings"

	"brewsim/brew"
	"brewsim/brew/rules"
	"brewsim/brew/strategy"

	"go.uber.org/zap"
)

// Match is a game built from a MatchSpec together with the resources it owns.
type Match struct {
	Game    *brew.Game
	closers []io.Closer
}

// Close releases the Lua states of scripted rules.
func (m *Match) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	m.closers = nil
	return first
}

// NewMatch builds a fresh game for spec. Every call compiles its own rule
// instances so matches never share Lua state.
func NewMatch(spec MatchSpec, reg *strategy.Registry, logger *zap.Logger, sink func(brew.Event)) (*Match, error) {
	if reg == nil {
		reg = strategy.NewRegistry()
	}
	if len(spec.Seats) == 0 {
		return nil, &TapeError{Reason: "invalid_seats", Message: "at least 1 seat is required"}
	}

	seats := make([]brew.Seat, 0, len(spec.Seats))
	for i, seat := range spec.Seats {
		s, err := reg.Build(seat.Profile)
		if err != nil {
			return nil, &TapeError{Reason: "unknown_profile", Message: fmt.Sprintf("seat %d: %v", i, err)}
		}
		seats = append(seats, brew.Seat{Name: seat.Name, Strategy: s})
	}

	var ruleList []brew.Rule
	if len(spec.Rules) == 0 {
		ruleList = rules.Base()
	} else {
		resolved, err := rules.ResolveAll(spec.Rules)
		if err != nil {
			return nil, &TapeError{Reason: "unknown_rule", Message: err.Error()}
		}
		ruleList = resolved
	}

	m := &Match{}
	for _, path := range spec.Scripts {
		if strings.TrimSpace(path) == "" {
			continue
		}
		script, err := rules.LoadScriptFile(path)
		if err != nil {
			_ = m.Close()
			return nil, &TapeError{Reason: "script_failed", Message: err.Error()}
		}
		rule, err := script.NewRule()
		if err != nil {
			_ = m.Close()
			return nil, &TapeError{Reason: "script_failed", Message: err.Error()}
		}
		m.closers = append(m.closers, rule)
		ruleList = append(ruleList, rule)
	}

	cfg := brew.DefaultConfig()
	cfg.Seed = spec.Seed
	if spec.Turns > 0 {
		cfg.Turns = spec.Turns
	}
	if spec.Fortune {
		cfg.FortuneCards = rules.FortuneCards()
	}
	cfg.Logger = logger
	cfg.Events = sink

	g, err := brew.NewGame(cfg, brew.NewRuleSet(ruleList...), seats)
	if err != nil {
		_ = m.Close()
		return nil, &TapeError{Reason: "engine_init_failed", Message: err.Error()}
	}
	m.Game = g
	return m, nil
}

// Run plays the match to the end, reporting invariant violations as errors.
func (m *Match) Run() (res brew.Result, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ie, ok := r.(*brew.InvariantError)
		if !ok {
			panic(r)
		}
		err = &TapeError{Reason: "invariant_violated", Message: ie.Error(), Turn: ie.Turn}
	}()
	return m.Game.Run()
}
