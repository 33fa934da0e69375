package chip

import (
	"fmt"
	"strings"
)

// Chip 筹码枚举
//
// 声明顺序即规范排序 (用于购买组合的排序和去重)。
type Chip byte

const (
	White1 Chip = iota
	White2
	White3
	Orange1
	Green1
	Green2
	Green4
	Blue1
	Blue2
	Blue4
	Red1
	Red2
	Red4
	Yellow1
	Yellow2
	Yellow4
	Purple1
	Black1

	chipCount
)

type chipInfo struct {
	color Color
	value int
}

var chipTable = [chipCount]chipInfo{
	White1:  {White, 1},
	White2:  {White, 2},
	White3:  {White, 3},
	Orange1: {Orange, 1},
	Green1:  {Green, 1},
	Green2:  {Green, 2},
	Green4:  {Green, 4},
	Blue1:   {Blue, 1},
	Blue2:   {Blue, 2},
	Blue4:   {Blue, 4},
	Red1:    {Red, 1},
	Red2:    {Red, 2},
	Red4:    {Red, 4},
	Yellow1: {Yellow, 1},
	Yellow2: {Yellow, 2},
	Yellow4: {Yellow, 4},
	Purple1: {Purple, 1},
	Black1:  {Black, 1},
}

// All returns every chip in canonical order.
func All() []Chip {
	out := make([]Chip, 0, chipCount)
	for c := Chip(0); c < chipCount; c++ {
		out = append(out, c)
	}
	return out
}

func (c Chip) Valid() bool { return c < chipCount }

// Value is the number of spaces the chip advances the cauldron (1..4).
func (c Chip) Value() int {
	if !c.Valid() {
		return 0
	}
	return chipTable[c].value
}

func (c Chip) Color() Color {
	if !c.Valid() {
		return White
	}
	return chipTable[c].color
}

func (c Chip) IsWhite() bool { return c.Valid() && c.Color() == White }

func (c Chip) String() string {
	if !c.Valid() {
		return "Invalid"
	}
	return fmt.Sprintf("%s%d", c.Color(), c.Value())
}

// Parse 将字符串 (如 "Green2", "white1") 转换为 Chip
func Parse(s string) (Chip, error) {
	s = strings.TrimSpace(s)
	for c := Chip(0); c < chipCount; c++ {
		if strings.EqualFold(c.String(), s) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("invalid chip string: %s", s)
}

// Of returns the chip with the given color and value.
func Of(color Color, value int) (Chip, bool) {
	for c := Chip(0); c < chipCount; c++ {
		if chipTable[c].color == color && chipTable[c].value == value {
			return c, true
		}
	}
	return 0, false
}

// StartingBag is the bag every player begins a match with.
func StartingBag() List {
	return List{White1, White1, White1, White1, White2, White2, White3, Orange1, Green1}
}
