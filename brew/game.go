package brew

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"brewsim/chip"
)

// Game runs one match. It is single-threaded: every player, the rule set
// and the random stream are owned by the game for the whole match.
type Game struct {
	cfg  Config
	seed int64
	rng  *rand.Rand
	log  *zap.Logger

	base  *RuleSet
	rules *RuleSet
	die   BonusDie

	players []*Player

	turn  int
	ended bool

	fortune []Rule
	card    Rule

	// player whose step is being resolved, for invariant reports
	curPlayer PlayerID
}

func NewGame(cfg Config, rules *RuleSet, seats []Seat) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return nil, ErrNoPlayers
	}
	seed := cfg.Seed
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if rules == nil {
		rules = NewRuleSet()
	}

	g := &Game{
		cfg:       cfg,
		seed:      seed,
		rng:       rand.New(rand.NewSource(seed)),
		log:       logger.With(zap.Int64("seed", seed)),
		base:      rules,
		rules:     rules,
		players:   make([]*Player, 0, len(seats)),
		fortune:   append([]Rule(nil), cfg.FortuneCards...),
		curPlayer: InvalidPlayer,
	}
	for i, seat := range seats {
		if seat.Strategy == nil {
			return nil, fmt.Errorf("seat %d (%s): %w", i, seat.Name, ErrNilStrategy)
		}
		name := seat.Name
		if name == "" {
			name = fmt.Sprintf("player-%d", i+1)
		}
		g.players = append(g.players, newPlayer(PlayerID(i), name, seat.Strategy, cfg.WhiteLimit))
	}
	return g, nil
}

func (g *Game) Seed() int64      { return g.seed }
func (g *Game) Turn() int        { return g.turn }
func (g *Game) Ended() bool      { return g.ended }
func (g *Game) Rand() *rand.Rand { return g.rng }
func (g *Game) NumPlayers() int  { return len(g.players) }
func (g *Game) Rules() *RuleSet  { return g.rules }
func (g *Game) Logger() *zap.Logger {
	return g.log
}

func (g *Game) RubiesToFillFlask() int { return g.cfg.RubiesToFillFlask }
func (g *Game) RubiesToMoveDrop() int  { return g.cfg.RubiesToMoveDrop }

// FortuneCard is the card active this turn, or nil.
func (g *Game) FortuneCard() Rule { return g.card }

// Player returns the player with the given id, or nil.
func (g *Game) Player(id PlayerID) *Player {
	if id < 0 || int(id) >= len(g.players) {
		return nil
	}
	return g.players[id]
}

// Players returns the players in registration order.
func (g *Game) Players() []*Player {
	out := make([]*Player, len(g.players))
	copy(out, g.players)
	return out
}

// Neighbors returns the players seated to the left and right of id.
func (g *Game) Neighbors(id PlayerID) (left, right PlayerID) {
	n := len(g.players)
	return PlayerID((int(id) + n - 1) % n), PlayerID((int(id) + 1) % n)
}

func (g *Game) mustPlayer(id PlayerID) *Player {
	p := g.Player(id)
	if p == nil {
		panic(fmt.Sprintf("unknown player %d", id))
	}
	return p
}

// PlaceChip puts c into the player's cauldron and fires the chip-drawn hooks for it.
func (g *Game) PlaceChip(id PlayerID, c chip.Chip) {
	p := g.mustPlayer(id)
	p.cauldron.AddChip(c)
	g.log.Debug("chip placed",
		zap.Int("player", int(id)),
		zap.Stringer("chip", c),
		zap.Int("position", p.cauldron.Position()),
	)
	g.rules.applyChipDrawn(g, id, c)
}

// RollBonusDie rolls the bonus die for a player and applies its reward.
// It does not fire bonus-die hooks.
func (g *Game) RollBonusDie(id PlayerID) BonusDieFace {
	p := g.mustPlayer(id)
	face := g.die.Roll(g.rng)
	g.die.Apply(p, face)
	g.log.Info("bonus die rolled",
		zap.Int("turn", g.turn),
		zap.String("player", p.Name),
		zap.Stringer("face", face),
	)
	g.emit(Event{Kind: EventBonusDie, Player: id, Face: face})
	return face
}

// PurchaseOptions lists what a player with coins can buy this turn.
func (g *Game) PurchaseOptions(coins int) []Choice {
	return g.rules.PurchaseOptions(g, coins)
}

// Run plays every remaining turn and returns the final result.
func (g *Game) Run() (Result, error) {
	for !g.ended {
		if err := g.PlayTurn(); err != nil {
			return Result{}, err
		}
	}
	return g.Result(), nil
}

// PlayTurn plays one full turn for every player.
func (g *Game) PlayTurn() error {
	if g.ended {
		return ErrMatchEnded
	}
	defer g.guard()

	g.turn++
	g.curPlayer = InvalidPlayer
	g.log.Info("turn started", zap.Int("turn", g.turn))
	g.emit(Event{Kind: EventTurnStart, Player: InvalidPlayer})

	g.setupTurn()
	g.fillCauldrons()
	g.rollBonusDice()
	g.resolveChipEffects()
	g.scoreAndPurchase()
	g.spendRubies()
	g.cleanup()

	g.curPlayer = InvalidPlayer
	g.emit(Event{Kind: EventTurnEnd, Player: InvalidPlayer})
	if g.turn >= g.cfg.Turns {
		// TODO: convert leftover coins and rubies into victory points after the last turn.
		g.ended = true
		g.log.Info("match ended", zap.Int("turns", g.turn))
		g.emit(Event{Kind: EventMatchEnd, Player: InvalidPlayer})
	}
	return nil
}

// guard turns any panic raised while resolving a turn into an InvariantError
// carrying the seed, turn and player, then re-panics.
func (g *Game) guard() {
	r := recover()
	if r == nil {
		return
	}
	if ie, ok := r.(*InvariantError); ok {
		panic(ie)
	}
	ie := &InvariantError{Seed: g.seed, Turn: g.turn, Player: g.curPlayer, Msg: fmt.Sprint(r)}
	g.log.Error("invariant violated",
		zap.Int("turn", g.turn),
		zap.Int("player", int(g.curPlayer)),
		zap.String("msg", ie.Msg),
	)
	panic(ie)
}

func (g *Game) setupTurn() {
	if g.turn == g.cfg.ExtraWhiteTurn {
		for _, p := range g.players {
			p.AddToBag(chip.White1)
		}
	}

	g.card = nil
	g.rules = g.base
	if len(g.fortune) > 0 {
		idx := g.rng.Intn(len(g.fortune))
		g.card = g.fortune[idx]
		g.fortune = append(g.fortune[:idx], g.fortune[idx+1:]...)
		g.rules = g.base.With(g.card)
		g.log.Info("fortune card drawn", zap.Int("turn", g.turn), zap.String("card", g.card.Name()))
		g.emit(Event{Kind: EventFortuneCard, Player: InvalidPlayer, Card: g.card.Name()})
	}
	g.rules.applyTurnStarted(g)

	for _, p := range g.players {
		g.curPlayer = p.ID
		p.resetCauldron(p.drop+g.ratTails(p.ID), g.cfg.WhiteLimit)
		g.rules.applyRoundStarted(g, p.ID)
	}
}

// ratTails is the catch-up bonus for trailing players.
// TODO: award rat tails from the victory-point gap to the leader; always 0 for now.
func (g *Game) ratTails(PlayerID) int {
	return 0
}

// fillCauldrons draws in lock-step ticks: one chip per active player per tick,
// in registration order, until nobody is drawing.
func (g *Game) fillCauldrons() {
	active := make([]bool, len(g.players))
	remaining := 0
	for i, p := range g.players {
		if p.cauldron.IsFull() || p.BagSize() == 0 {
			g.finishCauldron(p.ID)
			continue
		}
		active[i] = true
		remaining++
	}

	for remaining > 0 {
		for i, p := range g.players {
			if !active[i] {
				continue
			}
			if g.drawStep(p.ID) {
				continue
			}
			active[i] = false
			remaining--
			g.finishCauldron(p.ID)
		}
	}
}

// drawStep draws and places one chip; it reports whether the player keeps drawing.
func (g *Game) drawStep(id PlayerID) bool {
	p := g.players[id]
	g.curPlayer = id
	if p.BagSize() == 0 {
		return false
	}

	c := p.DrawFromBag(g.rng)
	g.emit(Event{Kind: EventDraw, Player: id, Chip: c, Position: p.cauldron.Position()})
	g.PlaceChip(id, c)

	cd := p.cauldron
	if cd.IsExploded() {
		g.log.Info("cauldron exploded",
			zap.Int("turn", g.turn),
			zap.String("player", p.Name),
			zap.Int("whites", cd.TotalValueOf(chip.White)),
			zap.Int("limit", cd.Limit()),
		)
		g.emit(Event{Kind: EventExplode, Player: id, Position: cd.Position()})
		return false
	}

	// The offer looks at the last placed chip, so a white chip placed by a
	// Blue draw can be poured off too.
	if last, ok := cd.LastChip(); ok && last.IsWhite() && p.flask && p.strategy.SpendFlask(g, id) {
		cd.RemoveLast()
		p.AddToBag(last)
		p.setFlask(false)
		g.log.Debug("flask spent", zap.String("player", p.Name), zap.Stringer("chip", last))
		g.emit(Event{Kind: EventFlaskSpent, Player: id, Chip: last, Position: cd.Position()})
	}

	if cd.IsFull() || p.BagSize() == 0 {
		return false
	}
	return p.strategy.ContinueDrawing(g, id)
}

func (g *Game) finishCauldron(id PlayerID) {
	g.curPlayer = id
	g.rules.applyCauldronFinished(g, id)
	p := g.players[id]
	g.emit(Event{
		Kind:     EventCauldronFinished,
		Player:   id,
		Chips:    p.cauldron.Chips(),
		Score:    p.cauldron.Score(),
		Position: p.cauldron.Position(),
		Exploded: p.cauldron.IsExploded(),
	})
}

// rollBonusDice lets every non-exploded player tied for the best score roll once.
func (g *Game) rollBonusDice() {
	var best Score
	found := false
	for _, p := range g.players {
		if p.Exploded() {
			continue
		}
		if s := p.cauldron.Score(); !found || s.Compare(best) > 0 {
			best = s
			found = true
		}
	}
	if !found {
		g.log.Debug("no bonus die this turn", zap.Int("turn", g.turn))
		return
	}
	for _, p := range g.players {
		if p.Exploded() || p.cauldron.Score().Compare(best) != 0 {
			continue
		}
		g.curPlayer = p.ID
		face := g.RollBonusDie(p.ID)
		g.rules.applyBonusDieRolled(g, p.ID, face)
	}
}

func (g *Game) resolveChipEffects() {
	for _, p := range g.players {
		g.curPlayer = p.ID
		g.rules.applyBlackChip(g, p.ID)
	}
	for _, p := range g.players {
		g.curPlayer = p.ID
		g.rules.applyGreenChip(g, p.ID)
	}
	for _, p := range g.players {
		g.curPlayer = p.ID
		g.rules.applyPurpleChip(g, p.ID)
	}
}

func (g *Game) scoreAndPurchase() {
	for _, p := range g.players {
		g.curPlayer = p.ID
		s := p.cauldron.Score()
		if s.Ruby {
			p.AddRubies(1)
			g.emit(Event{Kind: EventRuby, Player: p.ID, Amount: 1})
		}

		if !p.Exploded() {
			g.purchase(p, s.Coins)
			g.grantPoints(p, s.Points)
			continue
		}
		if p.strategy.BuyInsteadOfPoints(g, p.ID) {
			g.purchase(p, s.Coins)
		} else {
			g.grantPoints(p, s.Points)
		}
	}
}

func (g *Game) purchase(p *Player, coins int) {
	options := g.rules.PurchaseOptions(g, coins)
	if len(options) == 0 {
		return
	}
	idx, ok := p.strategy.ChooseChipsToAddToBag(g, p.ID, options)
	if !ok {
		return
	}
	if idx < 0 || idx >= len(options) {
		panic(fmt.Sprintf("strategy %s chose purchase option %d of %d", p.strategy.Name(), idx, len(options)))
	}
	choice := options[idx]
	p.AddToBag(choice.Chips...)
	g.log.Info("chips purchased",
		zap.Int("turn", g.turn),
		zap.String("player", p.Name),
		zap.Stringer("chips", choice.Chips),
		zap.Int("price", choice.Price),
		zap.Int("coins", coins),
	)
	g.emit(Event{Kind: EventPurchase, Player: p.ID, Chips: choice.Chips.Clone(), Amount: choice.Price})
}

func (g *Game) grantPoints(p *Player, points int) {
	p.AddVictoryPoints(points)
	g.emit(Event{Kind: EventVictoryPoints, Player: p.ID, Amount: points})
}

func (g *Game) spendRubies() {
	for _, p := range g.players {
		g.curPlayer = p.ID
		price := g.cfg.RubiesToFillFlask
		if !p.flask && p.rubies >= price && p.strategy.WantsToPayRubiesToFillFlask(g, p.ID) {
			p.spendRubies(price)
			p.setFlask(true)
			g.emit(Event{Kind: EventFlaskFilled, Player: p.ID, Amount: price})
		}

		price = g.cfg.RubiesToMoveDrop
		for p.rubies >= price && p.strategy.WantsToPayRubiesToMoveDrop(g, p.ID) {
			p.spendRubies(price)
			p.MoveDrop(1)
			g.emit(Event{Kind: EventDropMoved, Player: p.ID, Amount: price, Position: p.drop})
		}
	}
}

func (g *Game) cleanup() {
	for _, p := range g.players {
		p.drainCauldron()
	}
}
