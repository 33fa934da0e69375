package brew

import (
	"go.uber.org/zap"

	"brewsim/chip"
)

type EventKind int

const (
	EventTurnStart EventKind = iota + 1
	EventFortuneCard
	EventDraw
	EventRuleDraw
	EventExplode
	EventFlaskSpent
	EventCauldronFinished
	EventBonusDie
	EventRuby
	EventPurchase
	EventVictoryPoints
	EventFlaskFilled
	EventDropMoved
	EventTurnEnd
	EventMatchEnd
)

var eventKindNames = map[EventKind]string{
	EventTurnStart:        "turnStart",
	EventFortuneCard:      "fortuneCard",
	EventDraw:             "draw",
	EventRuleDraw:         "ruleDraw",
	EventExplode:          "explode",
	EventFlaskSpent:       "flaskSpent",
	EventCauldronFinished: "cauldronFinished",
	EventBonusDie:         "bonusDie",
	EventRuby:             "ruby",
	EventPurchase:         "purchase",
	EventVictoryPoints:    "victoryPoints",
	EventFlaskFilled:      "flaskFilled",
	EventDropMoved:        "dropMoved",
	EventTurnEnd:          "turnEnd",
	EventMatchEnd:         "matchEnd",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is one observable step of a match. Only the fields relevant to Kind are set.
type Event struct {
	Kind   EventKind
	Turn   int
	Player PlayerID

	Chip     chip.Chip
	Chips    chip.List
	Face     BonusDieFace
	Score    Score
	Position int
	Amount   int
	Exploded bool
	Placed   bool
	Card     string
	Rule     string
}

func (g *Game) emit(ev Event) {
	ev.Turn = g.turn
	if g.cfg.Events != nil {
		g.cfg.Events(ev)
	}
}

// RecordRuleDraw reports chips a rule drew from a player's bag outside the
// normal fill. placed tells whether picked went into the cauldron; the rest
// went back to the bag.
func (g *Game) RecordRuleDraw(rule string, id PlayerID, drawn chip.List, picked chip.Chip, placed bool) {
	p := g.mustPlayer(id)
	ev := Event{
		Kind:     EventRuleDraw,
		Player:   id,
		Rule:     rule,
		Chips:    drawn.Clone(),
		Placed:   placed,
		Position: p.cauldron.Position(),
	}
	fields := []zap.Field{
		zap.Int("turn", g.turn),
		zap.String("rule", rule),
		zap.String("player", p.Name),
		zap.Stringer("drawn", drawn),
	}
	if placed {
		ev.Chip = picked
		fields = append(fields, zap.Stringer("placed", picked))
	}
	g.log.Debug("rule drew chips", fields...)
	g.emit(ev)
}
