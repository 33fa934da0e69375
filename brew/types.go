package brew

import "fmt"

// PlayerID addresses a player inside a Game. IDs are registration indexes.
type PlayerID int

const InvalidPlayer PlayerID = -1

// Score is the reward printed on a cauldron space.
type Score struct {
	Coins  int
	Points int
	Ruby   bool
}

// Compare orders scores by coins, then points, then ruby (false < true).
func (s Score) Compare(o Score) int {
	switch {
	case s.Coins != o.Coins:
		return cmpInt(s.Coins, o.Coins)
	case s.Points != o.Points:
		return cmpInt(s.Points, o.Points)
	case s.Ruby != o.Ruby:
		if s.Ruby {
			return 1
		}
		return -1
	}
	return 0
}

func (s Score) String() string {
	if s.Ruby {
		return fmt.Sprintf("%d/%d+R", s.Coins, s.Points)
	}
	return fmt.Sprintf("%d/%d", s.Coins, s.Points)
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// scoreTable 锅内格子奖励 (coins/points/ruby)，按位置递增
var scoreTable = [...]Score{
	{0, 0, false}, {1, 0, false}, {2, 0, false}, {3, 0, false}, {4, 0, false},
	{5, 0, true}, {6, 1, false}, {7, 1, false}, {8, 1, false}, {9, 1, true},
	{10, 2, false}, {11, 2, false}, {12, 2, false}, {13, 2, true}, {14, 3, false},
	{15, 3, false}, {16, 3, false}, {16, 4, false}, {17, 4, false}, {17, 4, true},
	{18, 4, false}, {18, 5, false}, {19, 5, false}, {19, 5, true}, {20, 5, false},
	{20, 6, false}, {21, 6, false}, {21, 6, true}, {22, 7, false}, {22, 7, true},
	{23, 7, false}, {23, 8, false}, {24, 8, false}, {24, 8, true}, {25, 9, false},
	{25, 9, true}, {26, 9, false}, {26, 10, false}, {27, 10, false}, {27, 10, true},
	{28, 11, false}, {29, 11, false}, {29, 12, false}, {30, 12, false}, {30, 12, true},
	{31, 12, false}, {31, 13, false}, {32, 13, false}, {32, 13, true}, {33, 14, false},
	{33, 14, true}, {35, 15, false},
}

// ScoreTableLen is the number of spaces in a cauldron.
const ScoreTableLen = len(scoreTable)

// ScoreAt returns the score for a position, clamped into the table.
func ScoreAt(position int) Score {
	if position < 0 {
		position = 0
	}
	if position >= ScoreTableLen {
		position = ScoreTableLen - 1
	}
	return scoreTable[position]
}
