package strategy

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"brewsim/brew"
	"brewsim/chip"
)

const (
	KindSimple      = "simple"
	KindPreferColor = "prefer_color"
	KindPreferBlue  = "prefer_blue"
)

// Profile describes a named strategy configuration.
type Profile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Color  string `json:"color,omitempty"` // prefer_color only
	Tuning Tuning `json:"tuning"`
}

// Build creates the strategy the profile describes.
func (p *Profile) Build() (brew.Strategy, error) {
	if err := p.Tuning.validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.ID, err)
	}
	switch strings.ToLower(strings.TrimSpace(p.Kind)) {
	case KindSimple, "":
		return NewSimple(p.Tuning), nil
	case KindPreferBlue:
		return NewPreferBlue(p.Tuning), nil
	case KindPreferColor:
		c, ok := chip.ParseColor(p.Color)
		if !ok {
			return nil, fmt.Errorf("profile %s: unknown color %q", p.ID, p.Color)
		}
		if c == chip.White {
			return nil, fmt.Errorf("profile %s: white cannot be preferred", p.ID)
		}
		return NewPreferColor(c, p.Tuning), nil
	}
	return nil, fmt.Errorf("profile %s: unknown kind %q", p.ID, p.Kind)
}

// Registry holds all strategy profiles.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewRegistry creates a registry seeded with the built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{
		profiles: make(map[string]*Profile),
	}
	for _, p := range builtinProfiles() {
		r.profiles[p.ID] = p
	}
	return r
}

func builtinProfiles() []*Profile {
	out := []*Profile{
		{ID: "simple", Name: "Simple", Kind: KindSimple},
		{ID: "prefer_blue", Name: "Prefer Blue", Kind: KindPreferBlue},
	}
	for _, c := range chip.Colors {
		if c == chip.White || c == chip.Blue {
			continue
		}
		id := "prefer_" + strings.ToLower(c.String())
		out = append(out, &Profile{ID: id, Name: "Prefer " + c.String(), Kind: KindPreferColor, Color: c.String()})
	}
	return out
}

// LoadFromFile loads profiles from a JSON file.
func (r *Registry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profiles file: %w", err)
	}
	return r.LoadFromJSON(data)
}

// LoadFromJSON loads profiles from raw JSON bytes. Profiles are validated
// before any of them is registered.
func (r *Registry) LoadFromJSON(data []byte) error {
	var list []*Profile
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse profiles JSON: %w", err)
	}
	for _, p := range list {
		if p == nil || p.ID == "" {
			continue
		}
		if _, err := p.Build(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range list {
		if p == nil || p.ID == "" {
			continue
		}
		r.profiles[p.ID] = p
	}
	return nil
}

// Get returns a profile by ID.
func (r *Registry) Get(id string) *Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profiles[id]
}

// IDs returns all profile IDs, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}

// Build creates a strategy from the profile with the given ID.
func (r *Registry) Build(id string) (brew.Strategy, error) {
	p := r.Get(id)
	if p == nil {
		return nil, fmt.Errorf("unknown strategy profile %q (known: %s)", id, strings.Join(r.IDs(), ", "))
	}
	return p.Build()
}

// Seats builds one seat per profile ID, named after the profile.
func (r *Registry) Seats(ids []string) ([]brew.Seat, error) {
	seats := make([]brew.Seat, 0, len(ids))
	for i, id := range ids {
		s, err := r.Build(id)
		if err != nil {
			return nil, err
		}
		name := r.Get(id).Name
		if name == "" {
			name = id
		}
		seats = append(seats, brew.Seat{Name: fmt.Sprintf("%d:%s", i+1, name), Strategy: s})
	}
	return seats, nil
}
