package brew

import (
	"fmt"

	"brewsim/chip"
)

const DefaultWhiteLimit = 7

// Cauldron is a player's per-round working state.
type Cauldron struct {
	position int
	limit    int
	chips    chip.List
}

// NewCauldron creates an empty cauldron pre-advanced to start.
func NewCauldron(start, limit int) *Cauldron {
	return &Cauldron{
		position: start,
		limit:    limit,
		chips:    make(chip.List, 0, 16),
	}
}

func (c *Cauldron) Position() int { return c.position }
func (c *Cauldron) Limit() int    { return c.limit }
func (c *Cauldron) Len() int      { return len(c.chips) }

// Chips returns a copy of the placed chips in placement order.
func (c *Cauldron) Chips() chip.List { return c.chips.Clone() }

func (c *Cauldron) SetLimit(limit int) { c.limit = limit }

// IncreasePosition advances the cauldron without placing a chip.
func (c *Cauldron) IncreasePosition(n int) { c.position += n }

func (c *Cauldron) IsFull() bool {
	return c.position >= ScoreTableLen-1
}

func (c *Cauldron) IsExploded() bool {
	return c.TotalValueOf(chip.White) > c.limit
}

// AddChip places a chip. Adding to a full or exploded cauldron is a programmer error.
func (c *Cauldron) AddChip(ch chip.Chip) {
	if c.IsFull() {
		panic(fmt.Sprintf("add %s to full cauldron", ch))
	}
	if c.IsExploded() {
		panic(fmt.Sprintf("add %s to exploded cauldron", ch))
	}
	c.chips = append(c.chips, ch)
	c.position += ch.Value()
}

func (c *Cauldron) LastChip() (chip.Chip, bool) {
	if len(c.chips) == 0 {
		return 0, false
	}
	return c.chips[len(c.chips)-1], true
}

// RemoveLast pops the most recent chip and moves the position back by its value.
func (c *Cauldron) RemoveLast() (chip.Chip, bool) {
	n := len(c.chips)
	if n == 0 {
		return 0, false
	}
	ch := c.chips[n-1]
	c.chips = c.chips[:n-1]
	c.position -= ch.Value()
	return ch, true
}

// Extract removes the chip at idx from the sequence but keeps the position it earned.
func (c *Cauldron) Extract(idx int) (chip.Chip, bool) {
	if idx < 0 || idx >= len(c.chips) {
		return 0, false
	}
	ch := c.chips[idx]
	c.chips = append(c.chips[:idx], c.chips[idx+1:]...)
	return ch, true
}

// RemoveAll drains the cauldron and resets its position.
func (c *Cauldron) RemoveAll() chip.List {
	out := c.chips
	c.chips = make(chip.List, 0, 16)
	c.position = 0
	return out
}

func (c *Cauldron) NumberOf(color chip.Color) int {
	return c.chips.CountColor(color)
}

func (c *Cauldron) TotalValueOf(color chip.Color) int {
	total := 0
	for _, ch := range c.chips {
		if ch.Color() == color {
			total += ch.Value()
		}
	}
	return total
}

// ChanceToExplode is the fraction of the bag that would push the whites over the limit.
func (c *Cauldron) ChanceToExplode(bag chip.List) float64 {
	if len(bag) == 0 {
		return 0
	}
	whites := c.TotalValueOf(chip.White)
	bad := 0
	for _, ch := range bag {
		if ch.IsWhite() && whites+ch.Value() > c.limit {
			bad++
		}
	}
	return float64(bad) / float64(len(bag))
}

func (c *Cauldron) Score() Score {
	return ScoreAt(c.position)
}
