package tape

import (
	"strconv"

	"brewsim/brew"
	"brewsim/chip"
)

func eventFields(ev brew.Event) map[string]any {
	m := map[string]any{}
	if ev.Player != brew.InvalidPlayer {
		m["player"] = int(ev.Player)
	}
	switch ev.Kind {
	case brew.EventFortuneCard:
		m["card"] = ev.Card
	case brew.EventDraw, brew.EventFlaskSpent:
		m["chip"] = ev.Chip.String()
		m["position"] = ev.Position
	case brew.EventRuleDraw:
		m["rule"] = ev.Rule
		m["chips"] = chipsToList(ev.Chips)
		m["placed"] = ev.Placed
		if ev.Placed {
			m["chip"] = ev.Chip.String()
		}
		m["position"] = ev.Position
	case brew.EventExplode:
		m["position"] = ev.Position
	case brew.EventCauldronFinished:
		m["chips"] = chipsToList(ev.Chips)
		m["position"] = ev.Position
		m["exploded"] = ev.Exploded
		m["score"] = scoreFields(ev.Score)
	case brew.EventBonusDie:
		m["face"] = ev.Face.String()
	case brew.EventPurchase:
		m["chips"] = chipsToList(ev.Chips)
		m["price"] = ev.Amount
	case brew.EventRuby, brew.EventVictoryPoints, brew.EventFlaskFilled:
		m["amount"] = ev.Amount
	case brew.EventDropMoved:
		m["amount"] = ev.Amount
		m["drop"] = ev.Position
	}
	return m
}

func resultFields(res brew.Result) map[string]any {
	players := make([]any, 0, len(res.Players))
	for _, p := range res.Players {
		players = append(players, map[string]any{
			"id":             int(p.ID),
			"name":           p.Name,
			"strategy":       p.Strategy,
			"victory_points": p.VictoryPoints,
			"rubies":         p.Rubies,
			"drop":           p.Drop,
			"bag_size":       p.BagSize,
		})
	}
	leaders := make([]any, 0, 1)
	for _, id := range res.Leaders() {
		leaders = append(leaders, int(id))
	}
	return map[string]any{
		"seed":    strconv.FormatInt(res.Seed, 10), // int64 does not fit a JSON number
		"players": players,
		"leaders": leaders,
	}
}

// snapshotFields keeps what changes between turns; bags are chip counts by name.
func snapshotFields(s brew.Snapshot) map[string]any {
	players := make([]any, 0, len(s.Players))
	for _, p := range s.Players {
		bag := map[string]any{}
		for c, n := range p.Bag.Histogram() {
			bag[c.String()] = n
		}
		players = append(players, map[string]any{
			"id":             int(p.ID),
			"victory_points": p.VictoryPoints,
			"rubies":         p.Rubies,
			"drop":           p.Drop,
			"flask":          p.Flask,
			"bag":            bag,
		})
	}
	rules := make([]any, 0, len(s.Rules))
	for _, r := range s.Rules {
		rules = append(rules, r)
	}
	out := map[string]any{
		"rules":   rules,
		"players": players,
	}
	if s.FortuneCard != "" {
		out["card"] = s.FortuneCard
	}
	return out
}

func scoreFields(s brew.Score) map[string]any {
	return map[string]any{
		"coins":  s.Coins,
		"points": s.Points,
		"ruby":   s.Ruby,
	}
}

func chipsToList(chips chip.List) []any {
	out := make([]any, 0, len(chips))
	for _, c := range chips {
		out = append(out, c.String())
	}
	return out
}
