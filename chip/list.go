package chip

import (
	"math/rand"
	"sort"
	"strings"
)

// List is an unordered multiset of chips; a player's bag is a List.
type List []Chip

// Count 获取总筹码数
func (l List) Count() int {
	return len(l)
}

func (l *List) Add(chips ...Chip) {
	*l = append(*l, chips...)
}

// Draw removes and returns a chip chosen uniformly at random.
// Drawing from an empty list is a programmer error.
func (l *List) Draw(rng *rand.Rand) Chip {
	n := len(*l)
	if n == 0 {
		panic("chip list underflow")
	}
	idx := rng.Intn(n)
	c := (*l)[idx]
	*l = append((*l)[:idx], (*l)[idx+1:]...)
	return c
}

// DrawN draws up to n chips; fewer are returned when the list runs out.
func (l *List) DrawN(rng *rand.Rand, n int) List {
	if n > len(*l) {
		n = len(*l)
	}
	out := make(List, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, l.Draw(rng))
	}
	return out
}

// Remove deletes the first occurrence of c and reports whether it was present.
func (l *List) Remove(c Chip) bool {
	for i, x := range *l {
		if x == c {
			*l = append((*l)[:i], (*l)[i+1:]...)
			return true
		}
	}
	return false
}

func (l List) CountOf(c Chip) int {
	n := 0
	for _, x := range l {
		if x == c {
			n++
		}
	}
	return n
}

func (l List) CountColor(color Color) int {
	n := 0
	for _, x := range l {
		if x.Color() == color {
			n++
		}
	}
	return n
}

func (l List) Clone() List {
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Sorted returns a copy in canonical chip order.
func (l List) Sorted() List {
	out := l.Clone()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Histogram counts chips per kind, indexed by Chip.
func (l List) Histogram() map[Chip]int {
	out := make(map[Chip]int, len(l))
	for _, c := range l {
		out[c]++
	}
	return out
}

func (l List) String() string {
	parts := make([]string, 0, len(l))
	for _, c := range l {
		parts = append(parts, c.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Less orders lists lexicographically by canonical chip order.
func Less(a, b List) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func Equal(a, b List) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
