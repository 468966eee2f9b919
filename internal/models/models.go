package models

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// InventoryLimit is the number of distinct items a player can carry.
const InventoryLimit = 5

// DefaultStartScene is where new and reset games begin.
const DefaultStartScene = "intro"

// NormalizeID folds a scene or item id so lookups ignore case and padding.
func NormalizeID(id string) string {
	return cases.Fold().String(strings.TrimSpace(id))
}

// Stat names one of the three player counters.
type Stat string

const (
	Physical Stat = "physical"
	Social   Stat = "social"
	Arcane   Stat = "arcane"
)

// AllStats lists the stats in display order.
var AllStats = []Stat{Physical, Social, Arcane}

// Stats holds the three numeric counters. There is no floor or ceiling.
type Stats struct {
	Physical int `yaml:"physical"`
	Social   int `yaml:"social"`
	Arcane   int `yaml:"arcane"`
}

// DefaultStats returns every stat at its starting value of 1.
func DefaultStats() Stats {
	return Stats{Physical: 1, Social: 1, Arcane: 1}
}

// Get returns the value of the named stat.
func (s Stats) Get(name Stat) int {
	switch name {
	case Physical:
		return s.Physical
	case Social:
		return s.Social
	case Arcane:
		return s.Arcane
	}
	return 0
}

// Add adjusts the named stat by delta and reports whether the stat exists.
func (s *Stats) Add(name Stat, delta int) bool {
	switch name {
	case Physical:
		s.Physical += delta
	case Social:
		s.Social += delta
	case Arcane:
		s.Arcane += delta
	default:
		return false
	}
	return true
}

// StatValues is an optional number per stat. A nil entry means "not declared".
type StatValues[T int | float64] struct {
	Physical *T
	Social   *T
	Arcane   *T
}

// Get returns the declared value for name, or nil.
func (v StatValues[T]) Get(name Stat) *T {
	switch name {
	case Physical:
		return v.Physical
	case Social:
		return v.Social
	case Arcane:
		return v.Arcane
	}
	return nil
}

// Set declares a value for name.
func (v *StatValues[T]) Set(name Stat, val T) {
	switch name {
	case Physical:
		v.Physical = &val
	case Social:
		v.Social = &val
	case Arcane:
		v.Arcane = &val
	}
}

// Empty reports whether no stat has a declared value.
func (v StatValues[T]) Empty() bool {
	return v.Physical == nil && v.Social == nil && v.Arcane == nil
}

// Choice is an edge from one scene to another. Empty strings and nil values
// mean the corresponding gate or effect is absent.
type Choice struct {
	Text          string
	Next          string
	GrantItem     string
	RequiresItem  string
	SetFlag       string
	RequiresFlag  string
	Hover         string
	HoverRequires string
	Modify        StatValues[int]
	Requires      StatValues[float64]
}

// Scene is a named unit of narrative text with its outgoing choices in
// content order.
type Scene struct {
	ID      string
	Text    string
	Choices []Choice
}

// Lines splits the scene text on runs of line breaks and trims each line.
func (s Scene) Lines() []string {
	raw := strings.FieldsFunc(strings.ReplaceAll(s.Text, "\r\n", "\n"), func(r rune) bool {
		return r == '\n'
	})
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, strings.TrimSpace(l))
	}
	return lines
}

// ItemCatalog maps folded item ids to their descriptions.
type ItemCatalog map[string]string

// Describe returns the description of item, or "" when unknown.
func (c ItemCatalog) Describe(item string) string {
	return c[NormalizeID(item)]
}

// PlayerState is everything that survives between sessions.
type PlayerState struct {
	Inventory    []string        `yaml:"inventory"`
	Flags        map[string]bool `yaml:"flags"`
	Stats        Stats           `yaml:"stats"`
	CurrentScene string          `yaml:"current_scene"`
}

// NewPlayerState returns a fresh state positioned at start.
func NewPlayerState(start string) PlayerState {
	return PlayerState{
		Inventory:    []string{},
		Flags:        map[string]bool{},
		Stats:        DefaultStats(),
		CurrentScene: start,
	}
}

// HasItem reports whether item is carried. Item ids compare exactly.
func (p *PlayerState) HasItem(item string) bool {
	return slices.Contains(p.Inventory, item)
}

// HasFlag reports whether the named flag is set.
func (p *PlayerState) HasFlag(name string) bool {
	return p.Flags[name]
}

// Clone returns a deep copy.
func (p *PlayerState) Clone() PlayerState {
	c := *p
	c.Inventory = slices.Clone(p.Inventory)
	if c.Inventory == nil {
		c.Inventory = []string{}
	}
	c.Flags = make(map[string]bool, len(p.Flags))
	for k, v := range p.Flags {
		c.Flags[k] = v
	}
	return c
}
