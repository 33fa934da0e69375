package brew

import (
	"math/rand"
	"testing"

	"brewsim/chip"
)

func TestCauldronBasicDrawExplodes(t *testing.T) {
	c := NewCauldron(0, DefaultWhiteLimit)
	for _, ch := range []chip.Chip{chip.White1, chip.White1, chip.White2} {
		c.AddChip(ch)
	}
	if got := c.TotalValueOf(chip.White); got != 4 {
		t.Fatalf("white total: got %d, want 4", got)
	}
	if c.IsExploded() {
		t.Fatalf("cauldron should not explode at 4")
	}

	c.AddChip(chip.White2)
	if got := c.TotalValueOf(chip.White); got != 6 || c.IsExploded() {
		t.Fatalf("after second White2: total=%d exploded=%v", got, c.IsExploded())
	}

	c.AddChip(chip.White3)
	if got := c.TotalValueOf(chip.White); got != 9 || !c.IsExploded() {
		t.Fatalf("after White3: total=%d exploded=%v, want 9/true", got, c.IsExploded())
	}
	if c.Position() != 9 {
		t.Fatalf("position: got %d, want 9", c.Position())
	}
}

func TestCauldronAddAfterExplosionPanics(t *testing.T) {
	c := NewCauldron(0, 2)
	c.AddChip(chip.White3)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic adding to exploded cauldron")
		}
	}()
	c.AddChip(chip.Green1)
}

func TestCauldronAddWhenFullPanics(t *testing.T) {
	c := NewCauldron(ScoreTableLen-2, DefaultWhiteLimit)
	c.AddChip(chip.Green1)
	if !c.IsFull() {
		t.Fatalf("expected full cauldron at position %d", c.Position())
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic adding to full cauldron")
		}
	}()
	c.AddChip(chip.Green1)
}

func TestCauldronExplosionMatchesWhiteTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	all := chip.All()
	for round := 0; round < 500; round++ {
		c := NewCauldron(rng.Intn(10), DefaultWhiteLimit)
		for !c.IsFull() && !c.IsExploded() {
			before := c.IsExploded()
			ch := all[rng.Intn(len(all))]
			c.AddChip(ch)
			if c.IsExploded() != (c.TotalValueOf(chip.White) > c.Limit()) {
				t.Fatalf("explosion mismatch: chips=%v", c.Chips())
			}
			if !ch.IsWhite() && c.IsExploded() != before {
				t.Fatalf("non-white chip %s changed explosion state", ch)
			}
		}
	}
}

func TestCauldronRemoveLastAndAll(t *testing.T) {
	c := NewCauldron(3, DefaultWhiteLimit)
	if _, ok := c.RemoveLast(); ok {
		t.Fatalf("expected none from empty cauldron")
	}
	c.AddChip(chip.Orange1)
	c.AddChip(chip.Blue2)
	ch, ok := c.RemoveLast()
	if !ok || ch != chip.Blue2 || c.Position() != 4 {
		t.Fatalf("RemoveLast: chip=%s ok=%v position=%d", ch, ok, c.Position())
	}
	c.AddChip(chip.Red4)
	drained := c.RemoveAll()
	if len(drained) != 2 || c.Len() != 0 || c.Position() != 0 {
		t.Fatalf("RemoveAll: drained=%v len=%d position=%d", drained, c.Len(), c.Position())
	}
}

func TestCauldronExtractKeepsPosition(t *testing.T) {
	c := NewCauldron(0, DefaultWhiteLimit)
	c.AddChip(chip.White2)
	c.AddChip(chip.Yellow1)
	ch, ok := c.Extract(0)
	if !ok || ch != chip.White2 {
		t.Fatalf("Extract: got %s ok=%v", ch, ok)
	}
	if c.Position() != 3 || c.TotalValueOf(chip.White) != 0 {
		t.Fatalf("after extract: position=%d whites=%d", c.Position(), c.TotalValueOf(chip.White))
	}
}

func TestChanceToExplode(t *testing.T) {
	c := NewCauldron(0, DefaultWhiteLimit)
	if got := c.ChanceToExplode(nil); got != 0 {
		t.Fatalf("empty bag chance: got %v, want 0", got)
	}
	c.AddChip(chip.White3)
	c.AddChip(chip.White2)
	bag := chip.List{chip.White1, chip.White2, chip.White3, chip.Green1}
	// whites=5: White3 (8) explodes, White2 (7) does not.
	if got := c.ChanceToExplode(bag); got != 0.25 {
		t.Fatalf("chance: got %v, want 0.25", got)
	}
}

func TestScoreTableIsMonotonic(t *testing.T) {
	if ScoreTableLen != 52 {
		t.Fatalf("score table length: got %d, want 52", ScoreTableLen)
	}
	for p := -3; p < ScoreTableLen+5; p++ {
		if ScoreAt(p).Compare(ScoreAt(p+1)) > 0 {
			t.Fatalf("score(%d)=%s > score(%d)=%s", p, ScoreAt(p), p+1, ScoreAt(p+1))
		}
	}
	if ScoreAt(100) != ScoreAt(ScoreTableLen-1) || ScoreAt(-1) != ScoreAt(0) {
		t.Fatalf("positions must clamp into the table")
	}
	if s := ScoreAt(5); s.Coins != 5 || !s.Ruby {
		t.Fatalf("score(5): got %s", s)
	}
	if s := ScoreAt(ScoreTableLen - 1); s.Coins != 35 || s.Points != 15 {
		t.Fatalf("last score: got %s", s)
	}
}
