package brew

import (
	"sort"

	"brewsim/chip"
)

// Offer is a single chip on sale.
type Offer struct {
	Chip  chip.Chip
	Price int
}

// Choice is a purchasable bundle of one or two chips.
type Choice struct {
	Chips chip.List
	Price int
}

func (c Choice) contains(ch chip.Chip) bool {
	for _, x := range c.Chips {
		if x == ch {
			return true
		}
	}
	return false
}

// CombinePurchaseOptions builds the bundles a player can afford with coins.
//
// Every pair of differently colored offers cheaper than coins becomes a
// bundle (chips in canonical order). An offer that is not yet part of an
// accepted bundle when it is visited is offered alone if it is cheaper than
// coins. Duplicates are removed and the result is ordered by price,
// most expensive first.
func CombinePurchaseOptions(offers []Offer, coins int) []Choice {
	choices := make([]Choice, 0, len(offers)*2)
	for i, o := range offers {
		for _, other := range offers[i+1:] {
			if other.Chip.Color() != o.Chip.Color() && o.Price+other.Price < coins {
				pair := chip.List{o.Chip, other.Chip}.Sorted()
				choices = append(choices, Choice{Chips: pair, Price: o.Price + other.Price})
			}
		}

		exists := false
		for _, c := range choices {
			if c.contains(o.Chip) {
				exists = true
				break
			}
		}
		if !exists && o.Price < coins {
			choices = append(choices, Choice{Chips: chip.List{o.Chip}, Price: o.Price})
		}
	}

	sort.Slice(choices, func(i, j int) bool {
		if !chip.Equal(choices[i].Chips, choices[j].Chips) {
			return chip.Less(choices[i].Chips, choices[j].Chips)
		}
		return choices[i].Price < choices[j].Price
	})
	deduped := choices[:0]
	for i, c := range choices {
		if i > 0 && chip.Equal(c.Chips, deduped[len(deduped)-1].Chips) && c.Price == deduped[len(deduped)-1].Price {
			continue
		}
		deduped = append(deduped, c)
	}

	sort.SliceStable(deduped, func(i, j int) bool { return deduped[i].Price < deduped[j].Price })
	for l, r := 0, len(deduped)-1; l < r; l, r = l+1, r-1 {
		deduped[l], deduped[r] = deduped[r], deduped[l]
	}
	return deduped
}
