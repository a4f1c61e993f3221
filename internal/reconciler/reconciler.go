// Package reconciler turns backend-proposed status updates into validated
// character status. It is the trust boundary between narrative output and
// persisted state: nothing the backend proposes is saved without passing here.
package reconciler

import (
	"fmt"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
)

const (
	// DefaultHPCeiling is the largest hp a non-god character may report
	DefaultHPCeiling = 1000000

	// DefaultSafetyHP is where a tampered hp is reset to
	DefaultSafetyHP = 9999
)

// Config tunes the gates
type Config struct {
	HPCeiling int
	SafetyHP  int
}

// Validate validates the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.HPCeiling <= 0 {
		vb.Field("hp_ceiling", "must be positive")
	}
	if c.SafetyHP <= 0 || c.SafetyHP > c.HPCeiling {
		vb.Field("safety_hp", "must be positive and below the ceiling")
	}
	return vb.Build()
}

// Reconciler applies the god-mode gate, the cheat gate, normalization and
// transition detection. It holds no state and is safe for concurrent use.
type Reconciler struct {
	hpCeiling int
	safetyHP  int
}

// New creates a reconciler; a nil config uses the defaults
func New(cfg *Config) (*Reconciler, error) {
	if cfg == nil {
		cfg = &Config{HPCeiling: DefaultHPCeiling, SafetyHP: DefaultSafetyHP}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Reconciler{hpCeiling: cfg.HPCeiling, safetyHP: cfg.SafetyHP}, nil
}

// Input is one reconciliation step
type Input struct {
	Previous entities.CharacterStatus
	Proposed entities.StatusUpdate
	// Inventory is the trusted inventory the token check runs against. It comes
	// from persisted state (or a server-side grant), never from the proposal.
	Inventory []string
	// Firewall is the strict-plausibility toggle of the save
	Firewall bool
}

// Result is the reconciled status plus what changed
type Result struct {
	Status   entities.CharacterStatus
	Rejected bool
	Died     bool
	Notices  []entities.Notice
}

func (r *Result) notice(t entities.NoticeType, format string, args ...interface{}) {
	r.Notices = append(r.Notices, entities.Notice{Type: t, Text: fmt.Sprintf(format, args...)})
}

// Reconcile computes the next status. It never fails: invalid proposals are
// rejected or repaired and the caller persists Result.Status.
func (r *Reconciler) Reconcile(in *Input) *Result {
	res := &Result{}
	prev := in.Previous
	proposed := in.Proposed

	tokenHeld := entities.HasInfinityToken(in.Inventory)
	legitGod := tokenHeld && (proposed.IsGodMode || prev.IsGodMode)

	if proposed.IsGodMode && !tokenHeld {
		res.notice(entities.NoticeTamper, "God mode requires the Infinity Token; the request was ignored.")
	}

	if proposed.CheatDetected && in.Firewall && !legitGod {
		res.Rejected = true
		res.Status = prev.Clone()
		res.notice(entities.NoticeCheatBlocked, "Firewall blocked an implausible action.")
		return res
	}

	inventory, forged := r.filterInventory(proposed.Inventory, in.Inventory, tokenHeld)
	if forged {
		res.notice(entities.NoticeTamper, "A forged Infinity Token dissolved.")
	}

	next := entities.CharacterStatus{
		HP:             proposed.HP,
		MaxHP:          proposed.MaxHP,
		MP:             proposed.MP,
		MaxMP:          proposed.MaxMP,
		Skills:         dedupe(proposed.Skills),
		ActiveEffects:  append([]string{}, proposed.ActiveEffects...),
		Inventory:      inventory,
		Quests:         append([]entities.Quest{}, proposed.Quests...),
		Level:          proposed.Level,
		EvolutionStage: proposed.EvolutionStage,
		Difficulty:     proposed.Difficulty,
		Attributes:     prev.Clone().Attributes,
	}
	next.EquippedSkills = equipped(proposed.EquippedSkills, next.Skills)

	if legitGod {
		next.IsGodMode = true
		next.HP, next.MaxHP = entities.GodSentinel, entities.GodSentinel
		next.MP, next.MaxMP = entities.GodSentinel, entities.GodSentinel
		next.EvolutionStage = entities.GodEvolutionStage
	} else {
		if proposed.IsGodMode || prev.IsGodMode {
			r.clampTampered(&next)
		}
		r.normalize(&next, prev)

		// fires on the crossing only; an already-dead previous status stays silent
		if next.HP <= 0 && prev.HP > 0 {
			res.Died = true
			res.notice(entities.NoticeDeath, "You have fallen.")
		}
	}

	for _, skill := range next.Skills {
		if !prev.HasSkill(skill) {
			res.notice(entities.NoticeSkillEvolved, "New skill: %s", skill)
		}
	}
	if next.EvolutionStage != "" && next.EvolutionStage != prev.EvolutionStage {
		res.notice(entities.NoticeEvolution, "Evolution: %s", next.EvolutionStage)
	}

	res.Status = next
	return res
}

// filterInventory strips token items the trusted inventory does not hold and
// restores trusted tokens the proposal dropped, since the token is never consumed.
func (r *Reconciler) filterInventory(proposed, trusted []string, tokenHeld bool) ([]string, bool) {
	out := make([]string, 0, len(proposed))
	forged := false
	hasToken := false
	for _, item := range proposed {
		if entities.IsInfinityToken(item) {
			if !tokenHeld {
				forged = true
				continue
			}
			hasToken = true
		}
		out = append(out, item)
	}
	if tokenHeld && !hasToken {
		for _, item := range trusted {
			if entities.IsInfinityToken(item) {
				out = append(out, item)
			}
		}
	}
	return out, forged
}

// clampTampered resets values only a god-mode character could carry
func (r *Reconciler) clampTampered(s *entities.CharacterStatus) {
	if s.MaxHP > r.hpCeiling {
		s.MaxHP = r.safetyHP
	}
	if s.MaxMP > r.hpCeiling {
		s.MaxMP = r.safetyHP
	}
	if s.MP > r.hpCeiling {
		s.MP = r.safetyHP
	}
	if s.HP > r.hpCeiling || s.HP < 0 {
		s.HP = min(r.safetyHP, max(s.MaxHP, 1))
	}
	if s.EvolutionStage == entities.GodEvolutionStage {
		s.EvolutionStage = ""
	}
}

func (r *Reconciler) normalize(s *entities.CharacterStatus, prev entities.CharacterStatus) {
	s.IsGodMode = false
	if s.MaxHP <= 0 {
		s.MaxHP = max(prev.MaxHP, 1)
		if prev.IsGodMode {
			s.MaxHP = r.safetyHP
		}
	}
	if s.MaxMP < 0 {
		s.MaxMP = 0
	}
	s.HP = clamp(s.HP, 0, s.MaxHP)
	s.MP = clamp(s.MP, 0, s.MaxMP)
}

func equipped(proposed, skills []string) []string {
	known := make(map[string]bool, len(skills))
	for _, s := range skills {
		known[s] = true
	}
	out := make([]string, 0, entities.MaxEquippedSkills)
	for _, s := range dedupe(proposed) {
		if !known[s] {
			continue
		}
		out = append(out, s)
		if len(out) == entities.MaxEquippedSkills {
			break
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
