package brew

import "brewsim/chip"

// Strategy makes every decision on behalf of a player. Implementations must
// draw any randomness from g.Rand() so that a seed reproduces the match.
type Strategy interface {
	Name() string

	// ContinueDrawing is asked after each placement that did not explode the cauldron.
	ContinueDrawing(g *Game, id PlayerID) bool
	// SpendFlask is asked when the last placed chip is White and the flask is unused.
	SpendFlask(g *Game, id PlayerID) bool
	// BuyInsteadOfPoints is asked only for exploded cauldrons.
	BuyInsteadOfPoints(g *Game, id PlayerID) bool
	// ChooseChipsToAddToBag picks an index into options (most expensive first).
	ChooseChipsToAddToBag(g *Game, id PlayerID, options []Choice) (int, bool)
	// ChooseChipToAddToCauldron picks one of the chips drawn by a Blue chip.
	ChooseChipToAddToCauldron(g *Game, id PlayerID, chips chip.List) (int, bool)
	WantsToPayRubiesToFillFlask(g *Game, id PlayerID) bool
	WantsToPayRubiesToMoveDrop(g *Game, id PlayerID) bool
}

// Seat binds a player name to a strategy at construction time.
type Seat struct {
	Name     string
	Strategy Strategy
}
