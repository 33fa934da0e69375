package rules

import (
	"go.uber.org/zap"

	"brewsim/brew"
	"brewsim/chip"
)

// Green grants a ruby for every green chip among the last two placed.
type Green struct{}

func (Green) Name() string { return "green" }

func (Green) PurchaseOptions(*brew.Game) []brew.Offer {
	return []brew.Offer{
		{Chip: chip.Green1, Price: 4},
		{Chip: chip.Green2, Price: 8},
		{Chip: chip.Green4, Price: 14},
	}
}

func (Green) GreenChip(g *brew.Game, id brew.PlayerID) {
	p := g.Player(id)
	chips := p.Cauldron().Chips()
	if len(chips) > 2 {
		chips = chips[len(chips)-2:]
	}
	cnt := chips.CountColor(chip.Green)
	if cnt > 0 {
		g.Logger().Debug("green chip rubies", zap.String("player", p.Name), zap.Int("rubies", cnt))
	}
	p.AddRubies(cnt)
}

// Red moves further when orange chips are already in the cauldron.
type Red struct{}

func (Red) Name() string { return "red" }

func (Red) PurchaseOptions(*brew.Game) []brew.Offer {
	return []brew.Offer{
		{Chip: chip.Red1, Price: 6},
		{Chip: chip.Red2, Price: 10},
		{Chip: chip.Red4, Price: 16},
	}
}

func (Red) RedChipDrawn(g *brew.Game, id brew.PlayerID, _ chip.Chip) {
	cd := g.Player(id).Cauldron()
	switch cnt := cd.NumberOf(chip.Orange); {
	case cnt == 1 || cnt == 2:
		cd.IncreasePosition(1)
	case cnt > 2:
		cd.IncreasePosition(2)
	}
}

// Blue draws as many chips as its value and lets the strategy place one of them.
type Blue struct{}

func (Blue) Name() string { return "blue" }

func (Blue) PurchaseOptions(*brew.Game) []brew.Offer {
	return []brew.Offer{
		{Chip: chip.Blue1, Price: 5},
		{Chip: chip.Blue2, Price: 10},
		{Chip: chip.Blue4, Price: 19},
	}
}

func (Blue) BlueChipDrawn(g *brew.Game, id brew.PlayerID, c chip.Chip) {
	p := g.Player(id)
	if p.Cauldron().IsFull() || p.Cauldron().IsExploded() {
		return
	}
	drawn := p.DrawManyFromBag(g.Rand(), c.Value())
	if len(drawn) == 0 {
		return
	}

	all := drawn.Clone()
	idx, ok := p.Strategy().ChooseChipToAddToCauldron(g, id, drawn.Clone())
	if ok && (idx < 0 || idx >= len(drawn)) {
		panic("blue chip choice out of range")
	}
	var picked chip.Chip
	if ok {
		picked = drawn[idx]
		drawn = append(drawn[:idx], drawn[idx+1:]...)
	}
	p.AddToBag(drawn...)

	g.RecordRuleDraw(Blue{}.Name(), id, all, picked, ok)
	if ok {
		g.PlaceChip(id, picked)
	}
}

// Yellow takes a white chip placed right before it back out of the cauldron,
// keeping the spaces it earned.
type Yellow struct{}

func (Yellow) Name() string { return "yellow" }

func (Yellow) PurchaseOptions(g *brew.Game) []brew.Offer {
	if g.Turn() < 2 {
		return nil
	}
	return []brew.Offer{
		{Chip: chip.Yellow1, Price: 8},
		{Chip: chip.Yellow2, Price: 12},
		{Chip: chip.Yellow4, Price: 18},
	}
}

func (Yellow) YellowChipDrawn(g *brew.Game, id brew.PlayerID, c chip.Chip) {
	p := g.Player(id)
	cd := p.Cauldron()
	chips := cd.Chips()
	n := len(chips)
	if n < 2 || chips[n-1] != c || !chips[n-2].IsWhite() {
		return
	}
	white, _ := cd.Extract(n - 2)
	p.AddToBag(white)
	g.Logger().Debug("yellow chip returned white",
		zap.String("player", p.Name),
		zap.Stringer("chip", white),
	)
}

// Purple pays out by the number of purple chips in the cauldron.
type Purple struct{}

func (Purple) Name() string { return "purple" }

func (Purple) PurchaseOptions(g *brew.Game) []brew.Offer {
	if g.Turn() < 3 {
		return nil
	}
	return []brew.Offer{{Chip: chip.Purple1, Price: 9}}
}

func (Purple) PurpleChip(g *brew.Game, id brew.PlayerID) {
	p := g.Player(id)
	switch cnt := p.Cauldron().NumberOf(chip.Purple); {
	case cnt == 1:
		p.AddVictoryPoints(1)
	case cnt == 2:
		p.AddVictoryPoints(1)
		p.AddRubies(1)
	case cnt > 2:
		p.AddVictoryPoints(2)
		p.MoveDrop(1)
	}
}
