// Package rules holds the chip rules and fortune-teller cards that plug into
// a brew.RuleSet.
package rules

import (
	"go.uber.org/zap"

	"brewsim/brew"
	"brewsim/chip"
)

// Orange only puts the orange chip on sale.
type Orange struct{}

func (Orange) Name() string { return "orange" }

func (Orange) PurchaseOptions(*brew.Game) []brew.Offer {
	return []brew.Offer{{Chip: chip.Orange1, Price: 3}}
}

// Black rewards the player holding more black chips than the neighbors.
//
// With two players, at least as many as the opponent moves the drop and
// strictly more also grants a ruby. With three or more, beating either
// neighbor moves the drop and beating both grants a ruby.
type Black struct{}

func (Black) Name() string { return "black" }

func (Black) PurchaseOptions(*brew.Game) []brew.Offer {
	return []brew.Offer{{Chip: chip.Black1, Price: 10}}
}

func (Black) BlackChip(g *brew.Game, id brew.PlayerID) {
	p := g.Player(id)
	own := p.Cauldron().NumberOf(chip.Black)
	n := g.NumPlayers()

	var drop, ruby bool
	switch {
	case n == 2:
		_, right := g.Neighbors(id)
		other := g.Player(right).Cauldron().NumberOf(chip.Black)
		drop = own >= other
		ruby = own > other
	case n > 2:
		left, right := g.Neighbors(id)
		l := g.Player(left).Cauldron().NumberOf(chip.Black)
		r := g.Player(right).Cauldron().NumberOf(chip.Black)
		drop = own > l || own > r
		ruby = own > l && own > r
	}

	if drop {
		p.MoveDrop(1)
	}
	if ruby {
		p.AddRubies(1)
	}
	if drop || ruby {
		g.Logger().Debug("black chip reward",
			zap.String("player", p.Name),
			zap.Int("black", own),
			zap.Bool("drop", drop),
			zap.Bool("ruby", ruby),
		)
	}
}
