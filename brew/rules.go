package brew

import "brewsim/chip"

// Rule is a named bundle of game hooks. A rule implements only the hook
// interfaces it needs; RuleSet skips the rest.
type Rule interface {
	Name() string
}

// TurnStartHook fires once per turn before any cauldron is set up.
type TurnStartHook interface {
	TurnStarted(g *Game)
}

// RoundStartHook fires for each player once their cauldron is set up.
type RoundStartHook interface {
	RoundStarted(g *Game, id PlayerID)
}

type OrangeChipHook interface {
	OrangeChipDrawn(g *Game, id PlayerID, c chip.Chip)
}

type RedChipHook interface {
	RedChipDrawn(g *Game, id PlayerID, c chip.Chip)
}

type BlueChipHook interface {
	BlueChipDrawn(g *Game, id PlayerID, c chip.Chip)
}

type YellowChipHook interface {
	YellowChipDrawn(g *Game, id PlayerID, c chip.Chip)
}

type CauldronFinishedHook interface {
	CauldronFinished(g *Game, id PlayerID)
}

type BonusDieHook interface {
	BonusDieRolled(g *Game, id PlayerID, face BonusDieFace)
}

type BlackChipHook interface {
	BlackChip(g *Game, id PlayerID)
}

type GreenChipHook interface {
	GreenChip(g *Game, id PlayerID)
}

type PurpleChipHook interface {
	PurpleChip(g *Game, id PlayerID)
}

// PurchaseOptionsHook contributes chips for sale in the current turn.
type PurchaseOptionsHook interface {
	PurchaseOptions(g *Game) []Offer
}

// RuleSet fires hooks for every registered rule in registration order.
type RuleSet struct {
	rules []Rule
}

func NewRuleSet(rules ...Rule) *RuleSet {
	rs := &RuleSet{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		if r != nil {
			rs.rules = append(rs.rules, r)
		}
	}
	return rs
}

// With returns a new RuleSet with extra rules appended after the existing ones.
func (rs *RuleSet) With(extra ...Rule) *RuleSet {
	all := make([]Rule, 0, rs.Len()+len(extra))
	if rs != nil {
		all = append(all, rs.rules...)
	}
	all = append(all, extra...)
	return NewRuleSet(all...)
}

func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

func (rs *RuleSet) Names() []string {
	if rs == nil {
		return nil
	}
	out := make([]string, 0, len(rs.rules))
	for _, r := range rs.rules {
		out = append(out, r.Name())
	}
	return out
}

func (rs *RuleSet) each(fn func(Rule)) {
	if rs == nil {
		return
	}
	for _, r := range rs.rules {
		fn(r)
	}
}

func (rs *RuleSet) applyTurnStarted(g *Game) {
	rs.each(func(r Rule) {
		if h, ok := r.(TurnStartHook); ok {
			h.TurnStarted(g)
		}
	})
}

func (rs *RuleSet) applyRoundStarted(g *Game, id PlayerID) {
	rs.each(func(r Rule) {
		if h, ok := r.(RoundStartHook); ok {
			h.RoundStarted(g, id)
		}
	})
}

// applyChipDrawn dispatches on the color of c, the chip that was just placed.
func (rs *RuleSet) applyChipDrawn(g *Game, id PlayerID, c chip.Chip) {
	rs.each(func(r Rule) {
		switch c.Color() {
		case chip.Orange:
			if h, ok := r.(OrangeChipHook); ok {
				h.OrangeChipDrawn(g, id, c)
			}
		case chip.Red:
			if h, ok := r.(RedChipHook); ok {
				h.RedChipDrawn(g, id, c)
			}
		case chip.Blue:
			if h, ok := r.(BlueChipHook); ok {
				h.BlueChipDrawn(g, id, c)
			}
		case chip.Yellow:
			if h, ok := r.(YellowChipHook); ok {
				h.YellowChipDrawn(g, id, c)
			}
		}
	})
}

func (rs *RuleSet) applyCauldronFinished(g *Game, id PlayerID) {
	rs.each(func(r Rule) {
		if h, ok := r.(CauldronFinishedHook); ok {
			h.CauldronFinished(g, id)
		}
	})
}

func (rs *RuleSet) applyBonusDieRolled(g *Game, id PlayerID, face BonusDieFace) {
	rs.each(func(r Rule) {
		if h, ok := r.(BonusDieHook); ok {
			h.BonusDieRolled(g, id, face)
		}
	})
}

func (rs *RuleSet) applyBlackChip(g *Game, id PlayerID) {
	rs.each(func(r Rule) {
		if h, ok := r.(BlackChipHook); ok {
			h.BlackChip(g, id)
		}
	})
}

func (rs *RuleSet) applyGreenChip(g *Game, id PlayerID) {
	rs.each(func(r Rule) {
		if h, ok := r.(GreenChipHook); ok {
			h.GreenChip(g, id)
		}
	})
}

func (rs *RuleSet) applyPurpleChip(g *Game, id PlayerID) {
	rs.each(func(r Rule) {
		if h, ok := r.(PurpleChipHook); ok {
			h.PurpleChip(g, id)
		}
	})
}

// Offers collects every (chip, price) pair the rules put on sale this turn.
func (rs *RuleSet) Offers(g *Game) []Offer {
	var out []Offer
	rs.each(func(r Rule) {
		if h, ok := r.(PurchaseOptionsHook); ok {
			out = append(out, h.PurchaseOptions(g)...)
		}
	})
	return out
}

// PurchaseOptions returns the purchasable bundles for a coin budget, most expensive first.
func (rs *RuleSet) PurchaseOptions(g *Game, coins int) []Choice {
	return CombinePurchaseOptions(rs.Offers(g), coins)
}
