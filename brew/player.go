package brew

import (
	"math/rand"

	"brewsim/chip"
)

type Player struct {
	ID   PlayerID
	Name string

	strategy Strategy

	victoryPoints int
	rubies        int
	drop          int
	flask         bool

	bag      chip.List
	cauldron *Cauldron
}

func newPlayer(id PlayerID, name string, s Strategy, limit int) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		strategy: s,
		flask:    true,
		bag:      chip.StartingBag(),
		cauldron: NewCauldron(0, limit),
	}
}

func (p *Player) Strategy() Strategy { return p.strategy }

func (p *Player) VictoryPoints() int   { return p.victoryPoints }
func (p *Player) Rubies() int          { return p.rubies }
func (p *Player) Drop() int            { return p.drop }
func (p *Player) FlaskAvailable() bool { return p.flask }
func (p *Player) Cauldron() *Cauldron  { return p.cauldron }
func (p *Player) BagSize() int         { return len(p.bag) }
func (p *Player) Exploded() bool       { return p.cauldron.IsExploded() }

func (p *Player) ChanceToExplode() float64 {
	return p.cauldron.ChanceToExplode(p.bag)
}

// Bag returns a copy of the chips currently in the bag.
func (p *Player) Bag() chip.List { return p.bag.Clone() }

func (p *Player) AddVictoryPoints(n int) { p.victoryPoints += n }
func (p *Player) AddRubies(n int)        { p.rubies += n }
func (p *Player) MoveDrop(n int)         { p.drop += n }

func (p *Player) AddToBag(chips ...chip.Chip) { p.bag.Add(chips...) }

// DrawFromBag removes one chip uniformly at random. The bag must not be empty.
func (p *Player) DrawFromBag(rng *rand.Rand) chip.Chip {
	return p.bag.Draw(rng)
}

// DrawManyFromBag removes up to n chips.
func (p *Player) DrawManyFromBag(rng *rand.Rand, n int) chip.List {
	return p.bag.DrawN(rng, n)
}

func (p *Player) spendRubies(n int) bool {
	if p.rubies < n {
		return false
	}
	p.rubies -= n
	return true
}

func (p *Player) setFlask(v bool) { p.flask = v }

func (p *Player) resetCauldron(start, limit int) {
	p.cauldron = NewCauldron(start, limit)
}

// drainCauldron returns every placed chip to the bag.
func (p *Player) drainCauldron() {
	p.bag.Add(p.cauldron.RemoveAll()...)
}
