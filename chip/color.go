package chip

import "strings"

// Color 药材颜色
type Color byte

const (
	White Color = iota
	Orange
	Green
	Blue
	Red
	Yellow
	Purple
	Black
)

// Colors lists every color in declaration order.
var Colors = []Color{White, Orange, Green, Blue, Red, Yellow, Purple, Black}

func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Orange:
		return "Orange"
	case Green:
		return "Green"
	case Blue:
		return "Blue"
	case Red:
		return "Red"
	case Yellow:
		return "Yellow"
	case Purple:
		return "Purple"
	case Black:
		return "Black"
	}
	return "?"
}

// ParseColor accepts a color name in any case.
func ParseColor(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Colors {
		if strings.EqualFold(c.String(), s) {
			return c, true
		}
	}
	return 0, false
}
