package rules

import (
	"fmt"
	"strings"

	"brewsim/brew"
)

// Base returns the chip rules of the base game in their canonical order.
func Base() []brew.Rule {
	return []brew.Rule{
		Orange{},
		Black{},
		Green{},
		Red{},
		Blue{},
		Yellow{},
		Purple{},
	}
}

// BaseSet is Base wrapped in a RuleSet.
func BaseSet() *brew.RuleSet {
	return brew.NewRuleSet(Base()...)
}

// ByName resolves built-in rules and fortune cards by name.
func ByName(name string) (brew.Rule, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, r := range Base() {
		if r.Name() == key {
			return r, nil
		}
	}
	for _, r := range FortuneCards() {
		if r.Name() == key {
			return r, nil
		}
	}
	return nil, fmt.Errorf("unknown rule %q", name)
}

// ResolveAll resolves a list of rule names, keeping their order.
func ResolveAll(names []string) ([]brew.Rule, error) {
	out := make([]brew.Rule, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		r, err := ByName(name)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
