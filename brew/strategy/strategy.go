// Package strategy provides the decision makers that play a brew match.
package strategy

import (
	"fmt"

	"brewsim/brew"
	"brewsim/chip"
)

// Tuning holds the probabilities a strategy rolls against. A nil field falls
// back to the default; 0 turns the decision off.
type Tuning struct {
	SpendFlask *float64 `json:"spendFlask,omitempty"` // chance to retract a risky white chip
	FillFlask  *float64 `json:"fillFlask,omitempty"`  // chance to pay rubies for a new flask
	MoveDrop   *float64 `json:"moveDrop,omitempty"`   // chance to pay rubies for the drop when not rich
}

const defaultRate = 0.5

// Rate is a helper for building a Tuning in code.
func Rate(v float64) *float64 { return &v }

type rates struct {
	spendFlask float64
	fillFlask  float64
	moveDrop   float64
}

func (t Tuning) validate() error {
	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"spendFlask", t.SpendFlask},
		{"fillFlask", t.FillFlask},
		{"moveDrop", t.MoveDrop},
	} {
		if f.v != nil && (*f.v < 0 || *f.v > 1) {
			return fmt.Errorf("tuning %s must be within [0,1], got %v", f.name, *f.v)
		}
	}
	return nil
}

func (t Tuning) rates() rates {
	pick := func(v *float64) float64 {
		if v == nil {
			return defaultRate
		}
		return *v
	}
	return rates{
		spendFlask: pick(t.SpendFlask),
		fillFlask:  pick(t.FillFlask),
		moveDrop:   pick(t.MoveDrop),
	}
}

// base implements the decisions every variant shares.
type base struct {
	rates rates
}

func chance(g *brew.Game, p float64) bool {
	return g.Rand().Float64() < p
}

// ContinueDrawing keeps drawing with probability 1 - chance to explode.
func (b base) ContinueDrawing(g *brew.Game, id brew.PlayerID) bool {
	c := g.Player(id).ChanceToExplode()
	if c >= 1 {
		return false
	}
	return chance(g, 1-c)
}

// SpendFlask only considers the flask when the next draw could explode.
func (b base) SpendFlask(g *brew.Game, id brew.PlayerID) bool {
	if g.Player(id).ChanceToExplode() > 0 {
		return chance(g, b.rates.spendFlask)
	}
	return false
}

func (b base) BuyInsteadOfPoints(*brew.Game, brew.PlayerID) bool {
	return true
}

func (b base) WantsToPayRubiesToFillFlask(g *brew.Game, _ brew.PlayerID) bool {
	return chance(g, b.rates.fillFlask)
}

// WantsToPayRubiesToMoveDrop always buys on a discount or with rubies to spare.
func (b base) WantsToPayRubiesToMoveDrop(g *brew.Game, id brew.PlayerID) bool {
	if g.RubiesToMoveDrop() < 2 || g.Player(id).Rubies() > 2 {
		return true
	}
	return chance(g, b.rates.moveDrop)
}

// Simple buys the most expensive bundle and places a random non-white chip
// when a blue chip offers a choice.
type Simple struct {
	base
}

func NewSimple(t Tuning) *Simple {
	return &Simple{base{rates: t.rates()}}
}

func (s *Simple) Name() string { return "SimpleStrategy" }

func (s *Simple) ChooseChipsToAddToBag(_ *brew.Game, _ brew.PlayerID, options []brew.Choice) (int, bool) {
	if len(options) == 0 {
		return 0, false
	}
	return 0, true
}

func (s *Simple) ChooseChipToAddToCauldron(g *brew.Game, _ brew.PlayerID, chips chip.List) (int, bool) {
	choices := make([]int, 0, len(chips))
	for i, c := range chips {
		if !c.IsWhite() {
			choices = append(choices, i)
		}
	}
	if len(choices) == 0 {
		return 0, false
	}
	return choices[g.Rand().Intn(len(choices))], true
}

// PreferColor buys and places chips of one color whenever it can.
type PreferColor struct {
	base
	color chip.Color
	name  string
}

func NewPreferColor(color chip.Color, t Tuning) *PreferColor {
	return &PreferColor{
		base:  base{rates: t.rates()},
		color: color,
		name:  fmt.Sprintf("PreferColorStrategy(%s)", color),
	}
}

// NewPreferBlue is PreferColor fixed on blue.
func NewPreferBlue(t Tuning) *PreferColor {
	s := NewPreferColor(chip.Blue, t)
	s.name = "PreferBlueStrategy"
	return s
}

func (s *PreferColor) Name() string      { return s.name }
func (s *PreferColor) Color() chip.Color { return s.color }

// ChooseChipsToAddToBag takes the first bundle holding the color, else the most expensive one.
func (s *PreferColor) ChooseChipsToAddToBag(_ *brew.Game, _ brew.PlayerID, options []brew.Choice) (int, bool) {
	if len(options) == 0 {
		return 0, false
	}
	for i, o := range options {
		if o.Chips.CountColor(s.color) > 0 {
			return i, true
		}
	}
	return 0, true
}

// ChooseChipToAddToCauldron takes the highest value chip of the color (the
// later one on ties), else the first non-white chip.
func (s *PreferColor) ChooseChipToAddToCauldron(_ *brew.Game, _ brew.PlayerID, chips chip.List) (int, bool) {
	best, firstNonWhite := -1, -1
	for i, c := range chips {
		if c.IsWhite() {
			continue
		}
		if firstNonWhite < 0 {
			firstNonWhite = i
		}
		if c.Color() == s.color && (best < 0 || c.Value() >= chips[best].Value()) {
			best = i
		}
	}
	if best >= 0 {
		return best, true
	}
	if firstNonWhite >= 0 {
		return firstNonWhite, true
	}
	return 0, false
}
