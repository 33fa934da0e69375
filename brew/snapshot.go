package brew

import "brewsim/chip"

type PlayerSnapshot struct {
	ID            PlayerID
	Name          string
	Strategy      string
	VictoryPoints int
	Rubies        int
	Drop          int
	Flask         bool
	Bag           chip.List
	Cauldron      chip.List
	Position      int
	Exploded      bool
}

// Snapshot is a read-only copy of the match state.
type Snapshot struct {
	Seed        int64
	Turn        int
	Ended       bool
	FortuneCard string
	Rules       []string // rules active this turn, fortune card included
	Players     []PlayerSnapshot
}

func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Seed:    g.seed,
		Turn:    g.turn,
		Ended:   g.ended,
		Rules:   g.Rules().Names(),
		Players: make([]PlayerSnapshot, 0, len(g.players)),
	}
	if card := g.FortuneCard(); card != nil {
		s.FortuneCard = card.Name()
	}
	for _, p := range g.players {
		s.Players = append(s.Players, PlayerSnapshot{
			ID:            p.ID,
			Name:          p.Name,
			Strategy:      p.strategy.Name(),
			VictoryPoints: p.victoryPoints,
			Rubies:        p.rubies,
			Drop:          p.drop,
			Flask:         p.flask,
			Bag:           p.bag.Sorted(),
			Cauldron:      p.cauldron.Chips(),
			Position:      p.cauldron.Position(),
			Exploded:      p.cauldron.IsExploded(),
		})
	}
	return s
}

type PlayerResult struct {
	ID            PlayerID
	Name          string
	Strategy      string
	VictoryPoints int
	Rubies        int
	Drop          int
	BagSize       int
}

// Result is the outcome of a match as seen by external tooling.
type Result struct {
	Seed    int64
	Turns   int
	Players []PlayerResult
}

func (g *Game) Result() Result {
	r := Result{Seed: g.seed, Turns: g.turn, Players: make([]PlayerResult, 0, len(g.players))}
	for _, p := range g.players {
		r.Players = append(r.Players, PlayerResult{
			ID:            p.ID,
			Name:          p.Name,
			Strategy:      p.strategy.Name(),
			VictoryPoints: p.victoryPoints,
			Rubies:        p.rubies,
			Drop:          p.drop,
			BagSize:       p.BagSize() + p.cauldron.Len(),
		})
	}
	return r
}

// Leaders returns every player tied for the most victory points. Breaking the
// tie is left to the caller.
func (r Result) Leaders() []PlayerID {
	best := 0
	var out []PlayerID
	for _, p := range r.Players {
		switch {
		case len(out) == 0 || p.VictoryPoints > best:
			best = p.VictoryPoints
			out = []PlayerID{p.ID}
		case p.VictoryPoints == best:
			out = append(out, p.ID)
		}
	}
	return out
}
