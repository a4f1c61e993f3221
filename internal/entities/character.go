// Package entities provides core data structures for rpg-narrator.
// Entities are data only; rules live in the reconciler and the battle engine.
package entities

import "strings"

const (
	// GodSentinel replaces hp/maxHp/mp/maxMp while god mode is active
	GodSentinel = 999999999

	// GodEvolutionStage is the evolution stage shown while god mode is active
	GodEvolutionStage = "∞ THE CREATOR ∞"

	// InfinityTokenMarker identifies the Infinity Token inside an item name
	InfinityTokenMarker = "[ ∞ ]"

	// InfinityTokenName is the canonical name granted by admin mail
	InfinityTokenName = InfinityTokenMarker + " Infinity Token"

	// MaxEquippedSkills caps CharacterStatus.EquippedSkills
	MaxEquippedSkills = 3
)

// Character is the player's persona plus its mutable status.
type Character struct {
	Name        string          `json:"name"`
	Race        string          `json:"race"`
	UniqueSkill string          `json:"uniqueSkill"`
	Status      CharacterStatus `json:"status"`
}

// Quest tracks one objective shown in the status panel
type Quest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Current     int    `json:"current"`
	Required    int    `json:"required"`
	Unit        string `json:"unit"`
	IsCompleted bool   `json:"isCompleted"`
}

// CharacterStatus is the validated, persisted state of a character.
// Invariants (enforced by the reconciler): 0 <= HP <= MaxHP unless god mode,
// EquippedSkills is a subset of Skills with at most MaxEquippedSkills entries.
type CharacterStatus struct {
	HP             int            `json:"hp"`
	MaxHP          int            `json:"maxHp"`
	MP             int            `json:"mp"`
	MaxMP          int            `json:"maxMp"`
	Skills         []string       `json:"skills"`
	EquippedSkills []string       `json:"equippedSkills"`
	ActiveEffects  []string       `json:"activeEffects"`
	Inventory      []string       `json:"inventory"`
	Quests         []Quest        `json:"quests"`
	Level          int            `json:"level"`
	EvolutionStage string         `json:"evolutionStage"`
	Difficulty     string         `json:"difficulty"`
	IsGodMode      bool           `json:"isGodMode"`
	Attributes     map[string]int `json:"attributes,omitempty"`
}

// Clone returns a deep copy
func (s CharacterStatus) Clone() CharacterStatus {
	out := s
	out.Skills = cloneStrings(s.Skills)
	out.EquippedSkills = cloneStrings(s.EquippedSkills)
	out.ActiveEffects = cloneStrings(s.ActiveEffects)
	out.Inventory = cloneStrings(s.Inventory)
	if s.Quests != nil {
		out.Quests = append([]Quest(nil), s.Quests...)
	}
	if s.Attributes != nil {
		out.Attributes = make(map[string]int, len(s.Attributes))
		for k, v := range s.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

// HasSkill reports whether the skill has been learned
func (s CharacterStatus) HasSkill(skill string) bool {
	return containsString(s.Skills, skill)
}

// IsEquipped reports whether the skill is in the equipped set
func (s CharacterStatus) IsEquipped(skill string) bool {
	return containsString(s.EquippedSkills, skill)
}

// HasInfinityToken reports whether the inventory holds the token
func HasInfinityToken(inventory []string) bool {
	for _, item := range inventory {
		if IsInfinityToken(item) {
			return true
		}
	}
	return false
}

// IsInfinityToken reports whether an item name is the Infinity Token
func IsInfinityToken(item string) bool {
	return strings.Contains(item, InfinityTokenMarker)
}

// StatusUpdate is the structured status proposed by the narrative backend.
// It is untrusted input: only the reconciler turns it into a CharacterStatus.
type StatusUpdate struct {
	HP             int      `json:"hp"`
	MaxHP          int      `json:"maxHp"`
	MP             int      `json:"mp"`
	MaxMP          int      `json:"maxMp"`
	Skills         []string `json:"skills"`
	EquippedSkills []string `json:"equippedSkills"`
	ActiveEffects  []string `json:"activeEffects"`
	Inventory      []string `json:"inventory"`
	Quests         []Quest  `json:"quests"`
	Level          int      `json:"level"`
	EvolutionStage string   `json:"evolutionStage"`
	Difficulty     string   `json:"difficulty"`
	CheatDetected  bool     `json:"cheatDetected,omitempty"`
	IsGodMode      bool     `json:"isGodMode,omitempty"`
}

// UpdateFromStatus builds a proposal that restates s, for callers that edit a
// status locally (item use, mail grants) and still route it through reconciliation.
func UpdateFromStatus(s CharacterStatus) StatusUpdate {
	c := s.Clone()
	return StatusUpdate{
		HP:             c.HP,
		MaxHP:          c.MaxHP,
		MP:             c.MP,
		MaxMP:          c.MaxMP,
		Skills:         c.Skills,
		EquippedSkills: c.EquippedSkills,
		ActiveEffects:  c.ActiveEffects,
		Inventory:      c.Inventory,
		Quests:         c.Quests,
		Level:          c.Level,
		EvolutionStage: c.EvolutionStage,
		Difficulty:     c.Difficulty,
		IsGodMode:      c.IsGodMode,
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
