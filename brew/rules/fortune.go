package rules

import (
	"brewsim/brew"
	"brewsim/chip"
)

// RollTheDie: everyone rolls the bonus die once their cauldron is finished.
type RollTheDie struct{}

func (RollTheDie) Name() string { return "roll_the_die" }

func (RollTheDie) CauldronFinished(g *brew.Game, id brew.PlayerID) {
	g.RollBonusDie(id)
}

// PumpkinPatchParty: every orange chip moves one extra space.
type PumpkinPatchParty struct{}

func (PumpkinPatchParty) Name() string { return "pumpkin_patch_party" }

func (PumpkinPatchParty) OrangeChipDrawn(g *brew.Game, id brew.PlayerID, _ chip.Chip) {
	g.Player(id).Cauldron().IncreasePosition(1)
}

// LivingInLuxury raises the white threshold to 9 for the turn.
type LivingInLuxury struct{}

func (LivingInLuxury) Name() string { return "living_in_luxury" }

func (LivingInLuxury) RoundStarted(g *brew.Game, id brew.PlayerID) {
	g.Player(id).Cauldron().SetLimit(9)
}

// ThePotIsFillingUp: every drop moves one space before the cauldrons are set up.
type ThePotIsFillingUp struct{}

func (ThePotIsFillingUp) Name() string { return "the_pot_is_filling_up" }

func (ThePotIsFillingUp) TurnStarted(g *brew.Game) {
	for _, p := range g.Players() {
		p.MoveDrop(1)
	}
}

// Charity: the players with the fewest rubies receive one.
type Charity struct{}

func (Charity) Name() string { return "charity" }

func (Charity) TurnStarted(g *brew.Game) {
	for _, p := range fewest(g, (*brew.Player).Rubies) {
		p.AddRubies(1)
	}
}

// BeginnersBonus: the players with the fewest victory points receive a green 1-chip.
type BeginnersBonus struct{}

func (BeginnersBonus) Name() string { return "beginners_bonus" }

func (BeginnersBonus) TurnStarted(g *brew.Game) {
	for _, p := range fewest(g, (*brew.Player).VictoryPoints) {
		p.AddToBag(chip.Green1)
	}
}

// ShiningExtraBright: reaching a ruby space grants an extra ruby.
type ShiningExtraBright struct{}

func (ShiningExtraBright) Name() string { return "shining_extra_bright" }

func (ShiningExtraBright) CauldronFinished(g *brew.Game, id brew.PlayerID) {
	p := g.Player(id)
	if p.Cauldron().Score().Ruby {
		p.AddRubies(1)
	}
}

// LuckyDevil: reaching a ruby space is worth 2 victory points, even when exploded.
type LuckyDevil struct{}

func (LuckyDevil) Name() string { return "lucky_devil" }

func (LuckyDevil) CauldronFinished(g *brew.Game, id brew.PlayerID) {
	p := g.Player(id)
	if p.Cauldron().Score().Ruby {
		p.AddVictoryPoints(2)
	}
}

// ThePotIsFull: whoever rolls the bonus die this turn rolls it twice.
type ThePotIsFull struct{}

func (ThePotIsFull) Name() string { return "the_pot_is_full" }

func (ThePotIsFull) BonusDieRolled(g *brew.Game, id brew.PlayerID, _ brew.BonusDieFace) {
	g.RollBonusDie(id)
}

// FortuneCards returns a fresh fortune-teller deck.
func FortuneCards() []brew.Rule {
	return []brew.Rule{
		RollTheDie{},
		PumpkinPatchParty{},
		LivingInLuxury{},
		ThePotIsFillingUp{},
		Charity{},
		BeginnersBonus{},
		ShiningExtraBright{},
		LuckyDevil{},
		ThePotIsFull{},
	}
}

func fewest(g *brew.Game, metric func(*brew.Player) int) []*brew.Player {
	var out []*brew.Player
	low := 0
	for _, p := range g.Players() {
		v := metric(p)
		switch {
		case len(out) == 0 || v < low:
			low = v
			out = []*brew.Player{p}
		case v == low:
			out = append(out, p)
		}
	}
	return out
}
