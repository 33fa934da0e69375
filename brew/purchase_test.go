package brew

import (
	"math/rand"
	"testing"

	"brewsim/chip"
)

func TestCombinePurchaseOptionsOrdering(t *testing.T) {
	offers := []Offer{
		{chip.Orange1, 3},
		{chip.Green1, 4},
		{chip.Green2, 8},
	}
	got := CombinePurchaseOptions(offers, 10)
	want := []Choice{
		{Chips: chip.List{chip.Green2}, Price: 8},
		{Chips: chip.List{chip.Orange1, chip.Green1}, Price: 7},
	}
	if len(got) != len(want) {
		t.Fatalf("choices: got %v, want %v", got, want)
	}
	for i := range want {
		if !chip.Equal(got[i].Chips, want[i].Chips) || got[i].Price != want[i].Price {
			t.Fatalf("choice %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCombinePurchaseOptionsDeduplicates(t *testing.T) {
	offers := []Offer{
		{chip.Orange1, 3},
		{chip.Orange1, 3},
		{chip.Green1, 4},
	}
	got := CombinePurchaseOptions(offers, 20)
	if len(got) != 1 {
		t.Fatalf("expected one deduplicated choice, got %v", got)
	}
	if !chip.Equal(got[0].Chips, chip.List{chip.Orange1, chip.Green1}) || got[0].Price != 7 {
		t.Fatalf("unexpected choice %v", got[0])
	}
}

func TestCombinePurchaseOptionsBudgetAndUniqueness(t *testing.T) {
	catalog := []Offer{
		{chip.Orange1, 3}, {chip.Black1, 10},
		{chip.Green1, 4}, {chip.Green2, 8}, {chip.Green4, 14},
		{chip.Red1, 6}, {chip.Red2, 10}, {chip.Red4, 16},
		{chip.Blue1, 5}, {chip.Blue2, 10}, {chip.Blue4, 19},
		{chip.Yellow1, 8}, {chip.Yellow2, 12}, {chip.Yellow4, 18},
		{chip.Purple1, 9},
	}
	rng := rand.New(rand.NewSource(5))
	for round := 0; round < 300; round++ {
		offers := make([]Offer, 0, len(catalog))
		for _, o := range catalog {
			if rng.Intn(3) > 0 {
				offers = append(offers, o)
			}
		}
		coins := rng.Intn(40)
		got := CombinePurchaseOptions(offers, coins)

		seen := make(map[string]bool)
		for i, c := range got {
			if c.Price >= coins {
				t.Fatalf("choice %v costs %d with only %d coins", c.Chips, c.Price, coins)
			}
			if i > 0 && got[i-1].Price < c.Price {
				t.Fatalf("choices not in descending price order: %v", got)
			}
			key := c.Chips.String()
			if seen[key] {
				t.Fatalf("duplicate choice %s in %v", key, got)
			}
			seen[key] = true
			if len(c.Chips) == 2 && c.Chips[0].Color() == c.Chips[1].Color() {
				t.Fatalf("pair of the same color: %v", c.Chips)
			}
		}
	}
}

func TestCombinePurchaseOptionsNothingAffordable(t *testing.T) {
	if got := CombinePurchaseOptions([]Offer{{chip.Orange1, 3}}, 3); len(got) != 0 {
		t.Fatalf("price equal to coins must not be offered: %v", got)
	}
	if got := CombinePurchaseOptions(nil, 30); len(got) != 0 {
		t.Fatalf("no offers must yield no choices: %v", got)
	}
}
