package rules

import (
	"testing"

	"brewsim/brew"
	"brewsim/chip"
)

// pickStrategy keeps drawing until told otherwise and picks Blue chips by a fixed index.
type pickStrategy struct {
	pick      int
	presented []chip.List
}

func (s *pickStrategy) Name() string                                 { return "pick" }
func (s *pickStrategy) ContinueDrawing(*brew.Game, brew.PlayerID) bool { return false }
func (s *pickStrategy) SpendFlask(*brew.Game, brew.PlayerID) bool      { return false }
func (s *pickStrategy) BuyInsteadOfPoints(*brew.Game, brew.PlayerID) bool {
	return false
}

func (s *pickStrategy) ChooseChipsToAddToBag(*brew.Game, brew.PlayerID, []brew.Choice) (int, bool) {
	return 0, false
}

func (s *pickStrategy) ChooseChipToAddToCauldron(_ *brew.Game, _ brew.PlayerID, chips chip.List) (int, bool) {
	s.presented = append(s.presented, chips)
	if s.pick < 0 {
		return 0, false
	}
	return s.pick, true
}

func (s *pickStrategy) WantsToPayRubiesToFillFlask(*brew.Game, brew.PlayerID) bool { return false }
func (s *pickStrategy) WantsToPayRubiesToMoveDrop(*brew.Game, brew.PlayerID) bool  { return false }

func newGame(t *testing.T, rs *brew.RuleSet, strategies ...brew.Strategy) *brew.Game {
	t.Helper()
	cfg := brew.DefaultConfig()
	cfg.Seed = 1234
	seats := make([]brew.Seat, 0, len(strategies))
	for _, s := range strategies {
		seats = append(seats, brew.Seat{Strategy: s})
	}
	g, err := brew.NewGame(cfg, rs, seats)
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	return g
}

func fill(g *brew.Game, id brew.PlayerID, chips ...chip.Chip) {
	for _, c := range chips {
		g.Player(id).Cauldron().AddChip(c)
	}
}

func TestBlackTwoPlayers(t *testing.T) {
	g := newGame(t, BaseSet(), &pickStrategy{}, &pickStrategy{})
	fill(g, 0, chip.Black1, chip.Black1)
	fill(g, 1, chip.Black1)

	Black{}.BlackChip(g, 0)
	Black{}.BlackChip(g, 1)

	a, b := g.Player(0), g.Player(1)
	if a.Drop() != 1 || a.Rubies() != 1 {
		t.Fatalf("player A: drop=%d rubies=%d, want 1/1", a.Drop(), a.Rubies())
	}
	if b.Drop() != 0 || b.Rubies() != 0 {
		t.Fatalf("player B: drop=%d rubies=%d, want 0/0", b.Drop(), b.Rubies())
	}
}

func TestBlackTwoPlayersTieMovesBothDrops(t *testing.T) {
	g := newGame(t, BaseSet(), &pickStrategy{}, &pickStrategy{})
	fill(g, 0, chip.Black1)
	fill(g, 1, chip.Black1)
	Black{}.BlackChip(g, 0)
	Black{}.BlackChip(g, 1)
	for id := brew.PlayerID(0); id < 2; id++ {
		if p := g.Player(id); p.Drop() != 1 || p.Rubies() != 0 {
			t.Fatalf("player %d: drop=%d rubies=%d, want 1/0", id, p.Drop(), p.Rubies())
		}
	}
}

func TestBlackThreePlayersComparesNeighbors(t *testing.T) {
	g := newGame(t, BaseSet(), &pickStrategy{}, &pickStrategy{}, &pickStrategy{})
	fill(g, 0, chip.Black1, chip.Black1)
	fill(g, 1, chip.Black1)
	fill(g, 2, chip.Black1, chip.Black1, chip.Black1)
	for id := brew.PlayerID(0); id < 3; id++ {
		Black{}.BlackChip(g, id)
	}

	want := []struct{ drop, rubies int }{
		{1, 0}, // beats right (1) but not left (3)
		{0, 0},
		{1, 1}, // beats both
	}
	for i, w := range want {
		p := g.Player(brew.PlayerID(i))
		if p.Drop() != w.drop || p.Rubies() != w.rubies {
			t.Fatalf("player %d: drop=%d rubies=%d, want %d/%d", i, p.Drop(), p.Rubies(), w.drop, w.rubies)
		}
	}
}

func TestBlackSinglePlayerNoop(t *testing.T) {
	g := newGame(t, BaseSet(), &pickStrategy{})
	fill(g, 0, chip.Black1)
	Black{}.BlackChip(g, 0)
	if p := g.Player(0); p.Drop() != 0 || p.Rubies() != 0 {
		t.Fatalf("single player must not be rewarded: drop=%d rubies=%d", p.Drop(), p.Rubies())
	}
}

func TestPurpleThreeChips(t *testing.T) {
	g := newGame(t, BaseSet(), &pickStrategy{})
	fill(g, 0, chip.Purple1, chip.Purple1, chip.Purple1)
	Purple{}.PurpleChip(g, 0)
	p := g.Player(0)
	if p.VictoryPoints() != 2 || p.Drop() != 1 || p.Rubies() != 0 {
		t.Fatalf("purple x3: vp=%d drop=%d rubies=%d, want 2/1/0", p.VictoryPoints(), p.Drop(), p.Rubies())
	}
}

func TestPurpleOneAndTwoChips(t *testing.T) {
	g := newGame(t, BaseSet(), &pickStrategy{}, &pickStrategy{})
	fill(g, 0, chip.Purple1)
	fill(g, 1, chip.Purple1, chip.Purple1)
	Purple{}.PurpleChip(g, 0)
	Purple{}.PurpleChip(g, 1)
	if p := g.Player(0); p.VictoryPoints() != 1 || p.Rubies() != 0 {
		t.Fatalf("purple x1: vp=%d rubies=%d", p.VictoryPoints(), p.Rubies())
	}
	if p := g.Player(1); p.VictoryPoints() != 1 || p.Rubies() != 1 {
		t.Fatalf("purple x2: vp=%d rubies=%d", p.VictoryPoints(), p.Rubies())
	}
}

func TestBlueTwoDrawsExactlyTwo(t *testing.T) {
	s := &pickStrategy{pick: 0}
	g := newGame(t, BaseSet(), s)
	p := g.Player(0)
	bagBefore := p.BagSize()
	fill(g, 0, chip.Blue2)

	Blue{}.BlueChipDrawn(g, 0, chip.Blue2)

	if len(s.presented) != 1 || len(s.presented[0]) != 2 {
		t.Fatalf("expected one presentation of 2 chips, got %v", s.presented)
	}
	if p.Cauldron().Len() != 2 {
		t.Fatalf("expected Blue2 plus the picked chip, got %v", p.Cauldron().Chips())
	}
	if got := p.Cauldron().Chips()[1]; got != s.presented[0][0] {
		t.Fatalf("placed %s, want %s", got, s.presented[0][0])
	}
	if p.BagSize() != bagBefore-1 {
		t.Fatalf("bag size: got %d, want %d", p.BagSize(), bagBefore-1)
	}
}

func TestBlueDeclineReturnsAllChips(t *testing.T) {
	s := &pickStrategy{pick: -1}
	g := newGame(t, BaseSet(), s)
	p := g.Player(0)
	bagBefore := p.Bag().Sorted()
	fill(g, 0, chip.Blue2)

	Blue{}.BlueChipDrawn(g, 0, chip.Blue2)

	if len(s.presented) != 1 || len(s.presented[0]) != 2 {
		t.Fatalf("expected 2 chips presented, got %v", s.presented)
	}
	if p.Cauldron().Len() != 1 {
		t.Fatalf("cauldron should only hold the blue chip: %v", p.Cauldron().Chips())
	}
	if !chip.Equal(p.Bag().Sorted(), bagBefore) {
		t.Fatalf("bag changed: got %v, want %v", p.Bag().Sorted(), bagBefore)
	}
}

func TestBlueReportsDrawnAndPlacedChips(t *testing.T) {
	for _, pick := range []int{1, -1} {
		var events []brew.Event
		cfg := brew.DefaultConfig()
		cfg.Seed = 77
		cfg.Events = func(ev brew.Event) { events = append(events, ev) }
		s := &pickStrategy{pick: pick}
		g, err := brew.NewGame(cfg, BaseSet(), []brew.Seat{{Strategy: s}})
		if err != nil {
			t.Fatalf("NewGame err: %v", err)
		}
		fill(g, 0, chip.Blue2)

		Blue{}.BlueChipDrawn(g, 0, chip.Blue2)

		if len(events) != 1 || events[0].Kind != brew.EventRuleDraw {
			t.Fatalf("pick %d: expected one ruleDraw event, got %+v", pick, events)
		}
		ev := events[0]
		if ev.Rule != "blue" || !chip.Equal(ev.Chips, s.presented[0]) {
			t.Fatalf("pick %d: event %+v, presented %v", pick, ev, s.presented[0])
		}
		if pick < 0 {
			if ev.Placed {
				t.Fatalf("declined draw reported as placed")
			}
			continue
		}
		if !ev.Placed || ev.Chip != s.presented[0][pick] {
			t.Fatalf("placed chip: got %s placed=%v, want %s", ev.Chip, ev.Placed, s.presented[0][pick])
		}
		if got := g.Player(0).Cauldron().Chips()[1]; got != ev.Chip {
			t.Fatalf("cauldron holds %s, event says %s", got, ev.Chip)
		}
	}
}

func TestRedUsesOrangeCount(t *testing.T) {
	g := newGame(t, BaseSet(), &pickStrategy{}, &pickStrategy{}, &pickStrategy{})
	fill(g, 0, chip.Red1)
	fill(g, 1, chip.Orange1, chip.Red1)
	fill(g, 2, chip.Orange1, chip.Orange1, chip.Orange1, chip.Red1)
	for id := brew.PlayerID(0); id < 3; id++ {
		Red{}.RedChipDrawn(g, id, chip.Red1)
	}
	for id, want := range []int{1, 3, 6} {
		if got := g.Player(brew.PlayerID(id)).Cauldron().Position(); got != want {
			t.Fatalf("player %d position: got %d, want %d", id, got, want)
		}
	}
}

func TestGreenCountsLastTwoChips(t *testing.T) {
	g := newGame(t, BaseSet(), &pickStrategy{}, &pickStrategy{})
	fill(g, 0, chip.Green1, chip.White1, chip.Green2)
	fill(g, 1, chip.Green4, chip.Green1)
	Green{}.GreenChip(g, 0)
	Green{}.GreenChip(g, 1)
	if got := g.Player(0).Rubies(); got != 1 {
		t.Fatalf("player 0 rubies: got %d, want 1", got)
	}
	if got := g.Player(1).Rubies(); got != 2 {
		t.Fatalf("player 1 rubies: got %d, want 2", got)
	}
}

func TestYellowReturnsPrecedingWhite(t *testing.T) {
	g := newGame(t, BaseSet(), &pickStrategy{}, &pickStrategy{})
	p := g.Player(0)
	bagBefore := p.BagSize()
	fill(g, 0, chip.White2, chip.Yellow1)
	Yellow{}.YellowChipDrawn(g, 0, chip.Yellow1)

	if !chip.Equal(p.Cauldron().Chips(), chip.List{chip.Yellow1}) {
		t.Fatalf("cauldron: got %v", p.Cauldron().Chips())
	}
	if p.Cauldron().Position() != 3 || p.BagSize() != bagBefore+1 {
		t.Fatalf("position=%d bag=%d, want 3/%d", p.Cauldron().Position(), p.BagSize(), bagBefore+1)
	}

	fill(g, 1, chip.Green1, chip.Yellow2)
	Yellow{}.YellowChipDrawn(g, 1, chip.Yellow2)
	if !chip.Equal(g.Player(1).Cauldron().Chips(), chip.List{chip.Green1, chip.Yellow2}) {
		t.Fatalf("non-white predecessor must stay: %v", g.Player(1).Cauldron().Chips())
	}
}

func TestPurchaseOptionsGatedByTurn(t *testing.T) {
	g := newGame(t, BaseSet(), &pickStrategy{})
	if got := (Yellow{}).PurchaseOptions(g); len(got) != 0 {
		t.Fatalf("yellow before turn 2: %v", got)
	}
	if got := (Purple{}).PurchaseOptions(g); len(got) != 0 {
		t.Fatalf("purple before turn 3: %v", got)
	}
	offers := BaseSet().Offers(g)
	if len(offers) != 11 {
		t.Fatalf("turn 0 offers: got %d, want 11", len(offers))
	}
}

func TestByName(t *testing.T) {
	for _, r := range append(Base(), FortuneCards()...) {
		got, err := ByName(r.Name())
		if err != nil || got.Name() != r.Name() {
			t.Fatalf("ByName(%q): %v %v", r.Name(), got, err)
		}
	}
	if _, err := ByName("nope"); err == nil {
		t.Fatalf("expected error for unknown rule")
	}
	rs, err := ResolveAll([]string{"orange", " ", "Black"})
	if err != nil || len(rs) != 2 {
		t.Fatalf("ResolveAll: %v %v", rs, err)
	}
}
