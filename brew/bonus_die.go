package brew

import (
	"math/rand"

	"brewsim/chip"
)

// BonusDieFace is the outcome of one bonus die roll.
type BonusDieFace int

const (
	BonusOrangeChip BonusDieFace = iota + 1
	BonusRuby
	BonusOnePoint
	BonusTwoPoints
	BonusDrop
)

func (f BonusDieFace) String() string {
	switch f {
	case BonusOrangeChip:
		return "orange_chip"
	case BonusRuby:
		return "ruby"
	case BonusOnePoint:
		return "one_point"
	case BonusTwoPoints:
		return "two_points"
	case BonusDrop:
		return "drop"
	}
	return "unknown"
}

// BonusDie maps a six-sided roll onto a face.
type BonusDie struct{}

// Roll: 1 orange chip, 2 ruby, 3-4 one point, 5 two points, 6 drop.
func (BonusDie) Roll(rng *rand.Rand) BonusDieFace {
	switch rng.Intn(6) + 1 {
	case 1:
		return BonusOrangeChip
	case 2:
		return BonusRuby
	case 3, 4:
		return BonusOnePoint
	case 5:
		return BonusTwoPoints
	default:
		return BonusDrop
	}
}

// Apply grants the face's reward to p.
func (BonusDie) Apply(p *Player, face BonusDieFace) {
	switch face {
	case BonusOrangeChip:
		p.AddToBag(chip.Orange1)
	case BonusRuby:
		p.AddRubies(1)
	case BonusOnePoint:
		p.AddVictoryPoints(1)
	case BonusTwoPoints:
		p.AddVictoryPoints(2)
	case BonusDrop:
		p.MoveDrop(1)
	}
}
