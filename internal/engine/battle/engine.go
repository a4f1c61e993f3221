// Package battle is the PvP state machine. Every transition is a pure function
// of a BattleRecord: the input is never mutated and a rejected transition
// returns an error with no record. Persistence and CAS belong to the caller.
package battle

import (
	"fmt"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/pkg/clock"
)

// Defaults for Config fields left unset
const (
	DefaultMinDamage      = 250000
	DefaultStartEnergy    = 100
	DefaultEnergyRegen    = 10
	DefaultMaxEnergy      = 100
	DefaultPenaltyPercent = 30
)

// Config holds the balance parameters. They are tuning values, not invariants.
// MinDamage and PenaltyPercent may legitimately be zero, so nil marks them
// unset; the energy fields use their default when zero.
type Config struct {
	// MinDamage is the PvP damage floor that bounds match length
	MinDamage      *int
	StartEnergy    int
	EnergyRegen    int
	MaxEnergy      int
	PenaltyPercent *int

	Roller dice.Roller
	Clock  clock.Clock
}

// Validate validates the config after defaults are applied
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Roller == nil {
		vb.RequiredField("roller")
	}
	if c.MinDamage != nil && *c.MinDamage < 0 {
		vb.Field("min_damage", "must not be negative")
	}
	if c.StartEnergy > c.MaxEnergy {
		vb.Field("start_energy", "must not exceed max_energy")
	}
	if c.PenaltyPercent != nil {
		errors.ValidateRange("penalty_percent", *c.PenaltyPercent, 0, 100, vb)
	}
	return vb.Build()
}

// Int returns a pointer to v for the optional Config fields
func Int(v int) *int {
	return &v
}

func (c *Config) applyDefaults() {
	if c.MinDamage == nil {
		c.MinDamage = Int(DefaultMinDamage)
	}
	if c.StartEnergy == 0 {
		c.StartEnergy = DefaultStartEnergy
	}
	if c.EnergyRegen == 0 {
		c.EnergyRegen = DefaultEnergyRegen
	}
	if c.MaxEnergy == 0 {
		c.MaxEnergy = DefaultMaxEnergy
	}
	if c.PenaltyPercent == nil {
		c.PenaltyPercent = Int(DefaultPenaltyPercent)
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
}

// Engine computes battle transitions
type Engine struct {
	cfg            Config
	minDamage      int
	penaltyPercent int
}

// New creates an engine
func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config cannot be nil")
	}
	c := *cfg
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: c, minDamage: *c.MinDamage, penaltyPercent: *c.PenaltyPercent}, nil
}

// ChallengeInput describes a new challenge. Busy flags come from the caller's
// index of active battles.
type ChallengeInput struct {
	ID                string
	ServerID          string
	Challenger        string
	Target            string
	ChallengerMaxHP   int
	TargetMaxHP       int
	ChallengerGodMode bool
	TargetGodMode     bool
	ChallengerBusy    bool
	TargetBusy        bool
}

// CreateChallenge builds a PENDING record
func (e *Engine) CreateChallenge(in *ChallengeInput) (*entities.BattleRecord, error) {
	if in == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("id", in.ID, vb)
	errors.ValidateRequired("challenger", in.Challenger, vb)
	errors.ValidateRequired("target", in.Target, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	if in.Target == in.Challenger {
		return nil, errors.InvalidTarget("you cannot challenge yourself")
	}
	if in.TargetBusy {
		return nil, errors.InvalidTarget(in.Target + " is already in a battle")
	}
	if in.ChallengerBusy {
		return nil, errors.FailedPrecondition("you already have an active battle")
	}

	now := e.cfg.Clock.Now()
	return &entities.BattleRecord{
		ID:         in.ID,
		ServerID:   in.ServerID,
		Challenger: in.Challenger,
		Target:     in.Target,
		Status:     entities.BattleStatusPending,
		P1HP:       max(in.ChallengerMaxHP, 1),
		P1MaxHP:    max(in.ChallengerMaxHP, 1),
		P2HP:       max(in.TargetMaxHP, 1),
		P2MaxHP:    max(in.TargetMaxHP, 1),
		P1GodMode:  in.ChallengerGodMode,
		P2GodMode:  in.TargetGodMode,
		Logs:       []entities.BattleLogEntry{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// AcceptChallenge starts the match; the challenger moves first
func (e *Engine) AcceptChallenge(rec *entities.BattleRecord, actor string) (*entities.BattleRecord, error) {
	if rec.Status != entities.BattleStatusPending {
		return nil, errors.NotPending(rec.ID)
	}
	if actor != rec.Target {
		return nil, errors.PermissionDenied("only the challenged player can accept")
	}

	next := rec.Clone()
	next.Status = entities.BattleStatusInProgress
	next.Turn = rec.Challenger
	next.P1HP, next.P2HP = rec.P1MaxHP, rec.P2MaxHP
	next.P1Energy, next.P2Energy = e.cfg.StartEnergy, e.cfg.StartEnergy
	next.UpdatedAt = e.cfg.Clock.Now()
	return next, nil
}

// DeclineChallenge moves a PENDING record to the terminal DECLINED state
func (e *Engine) DeclineChallenge(rec *entities.BattleRecord, actor string) (*entities.BattleRecord, error) {
	if rec.Status != entities.BattleStatusPending {
		return nil, errors.NotPending(rec.ID)
	}
	if !rec.IsParticipant(actor) {
		return nil, errors.PermissionDenied("not a participant")
	}

	next := rec.Clone()
	next.Status = entities.BattleStatusDeclined
	next.UpdatedAt = e.cfg.Clock.Now()
	return next, nil
}

// Combatant is the acting side together with its current character status
type Combatant struct {
	Username string
	Status   entities.CharacterStatus
}

// ApplyAction resolves one move. Damage comes from the skill tier and the
// actor's max hp, floored at MinDamage; one d100 picks the special effect.
// Only the opponent takes damage, so the actor wins any resolution that
// empties the opponent's hp.
func (e *Engine) ApplyAction(rec *entities.BattleRecord, actor Combatant, skill string) (*entities.BattleRecord, error) {
	if rec.Status != entities.BattleStatusInProgress {
		return nil, errors.MatchFinished(rec.ID)
	}
	if rec.Turn != actor.Username {
		return nil, errors.NotYourTurn(actor.Username)
	}
	if !IsBasicAttack(skill) && !actor.Status.IsEquipped(skill) {
		return nil, errors.InvalidSkill(skill)
	}

	isP1 := actor.Username == rec.Challenger
	tier := ClassifySkill(skill)
	if tier == TierGenesis && !e.legitGod(rec, actor, isP1) {
		tier = TierUltimate
	}

	energy := rec.P2Energy
	if isP1 {
		energy = rec.P1Energy
	}
	if cost := tier.EnergyCost(); energy < cost {
		return nil, errors.InsufficientEnergy(skill, cost, energy)
	}

	next := rec.Clone()
	actorHP, actorMax := &next.P2HP, next.P2MaxHP
	oppHP := &next.P1HP
	actorEnergy, oppEnergy := &next.P2Energy, &next.P1Energy
	if isP1 {
		actorHP, actorMax = &next.P1HP, next.P1MaxHP
		oppHP = &next.P2HP
		actorEnergy, oppEnergy = &next.P1Energy, &next.P2Energy
	}

	damage, effect, err := e.resolve(tier, actorMax, *oppHP)
	if err != nil {
		return nil, err
	}

	if effect == entities.EffectLifesteal {
		*actorHP = min(actorMax, *actorHP+damage/2)
	}
	*oppHP = max(0, *oppHP-damage)
	*actorEnergy -= tier.EnergyCost()
	*oppEnergy = min(e.cfg.MaxEnergy, *oppEnergy+e.cfg.EnergyRegen)

	now := e.cfg.Clock.Now()
	next.Logs = append(next.Logs, entities.BattleLogEntry{
		Turn:        len(rec.Logs) + 1,
		Actor:       actor.Username,
		Skill:       skill,
		Description: describe(actor.Username, skill, damage, effect),
		Damage:      damage,
		Effect:      effect,
		Timestamp:   now,
	})
	next.Turn = rec.Opponent(actor.Username)
	next.UpdatedAt = now

	if *oppHP == 0 {
		next.Status = entities.BattleStatusFinished
		next.Winner = actor.Username
		next.Turn = ""
	}

	return next, nil
}

func (e *Engine) legitGod(rec *entities.BattleRecord, actor Combatant, isP1 bool) bool {
	snapshot := rec.P2GodMode
	if isP1 {
		snapshot = rec.P1GodMode
	}
	return snapshot && actor.Status.IsGodMode && entities.HasInfinityToken(actor.Status.Inventory)
}

func (e *Engine) resolve(tier Tier, actorMax, oppHP int) (int, entities.BattleEffect, error) {
	if tier == TierGenesis {
		return max(oppHP, 1), entities.EffectVoid, nil
	}

	damage := max(e.minDamage, actorMax*tier.damagePercent()/100)

	roll, err := e.cfg.Roller.Roll(100)
	if err != nil {
		return 0, "", errors.Wrap(err, "failed to roll special effect")
	}

	switch {
	case roll <= 10:
		return damage * 2, entities.EffectCrit, nil
	case roll <= 20:
		return damage * 2, entities.EffectDouble, nil
	case roll <= 30:
		return damage, entities.EffectLifesteal, nil
	case roll <= 35:
		// cosmetic only: turn alternation stays strict
		return damage, entities.EffectStun, nil
	default:
		return damage, entities.EffectNormal, nil
	}
}

func describe(actor, skill string, damage int, effect entities.BattleEffect) string {
	switch effect {
	case entities.EffectCrit:
		return fmt.Sprintf("%s landed a critical %s for %d damage!", actor, skill, damage)
	case entities.EffectDouble:
		return fmt.Sprintf("%s struck twice with %s for %d damage!", actor, skill, damage)
	case entities.EffectLifesteal:
		return fmt.Sprintf("%s drained %d with %s.", actor, damage, skill)
	case entities.EffectStun:
		return fmt.Sprintf("%s stunned the opponent with %s for %d damage.", actor, skill, damage)
	case entities.EffectVoid:
		return fmt.Sprintf("%s erased the opponent with %s.", actor, skill)
	default:
		return fmt.Sprintf("%s used %s for %d damage.", actor, skill, damage)
	}
}

// Surrender ends the match in favor of the other side. The account penalty is
// applied by the caller, exactly once, keyed by record id and actor.
func (e *Engine) Surrender(rec *entities.BattleRecord, actor string) (*entities.BattleRecord, error) {
	if rec.Status != entities.BattleStatusInProgress {
		return nil, errors.MatchFinished(rec.ID)
	}
	if !rec.IsParticipant(actor) {
		return nil, errors.PermissionDenied("not a participant")
	}

	now := e.cfg.Clock.Now()
	next := rec.Clone()
	next.Status = entities.BattleStatusFinished
	next.Winner = rec.Opponent(actor)
	next.SurrenderedBy = actor
	next.Turn = ""
	next.Logs = append(next.Logs, entities.BattleLogEntry{
		Turn:        len(rec.Logs) + 1,
		Actor:       actor,
		Skill:       "SURRENDER",
		Description: fmt.Sprintf("%s surrendered.", actor),
		Effect:      entities.EffectNormal,
		Timestamp:   now,
	})
	next.UpdatedAt = now
	return next, nil
}

// AdminStop ends a pending or running match as a draw
func (e *Engine) AdminStop(rec *entities.BattleRecord) (*entities.BattleRecord, error) {
	if !rec.IsActive() {
		return nil, errors.MatchFinished(rec.ID)
	}

	now := e.cfg.Clock.Now()
	next := rec.Clone()
	next.Status = entities.BattleStatusFinished
	next.Winner = ""
	next.Turn = ""
	next.Logs = append(next.Logs, entities.BattleLogEntry{
		Turn:        len(rec.Logs) + 1,
		Actor:       "SYSTEM",
		Skill:       "ADMIN_STOP",
		Description: "The match was stopped by an administrator.",
		Effect:      entities.EffectNormal,
		Timestamp:   now,
	})
	next.UpdatedAt = now
	return next, nil
}

// AdminSetHP overrides both sides' hp, clamped to [1, max]
func (e *Engine) AdminSetHP(rec *entities.BattleRecord, p1HP, p2HP int) (*entities.BattleRecord, error) {
	if rec.Status != entities.BattleStatusInProgress {
		return nil, errors.MatchFinished(rec.ID)
	}

	next := rec.Clone()
	next.P1HP = max(1, min(p1HP, rec.P1MaxHP))
	next.P2HP = max(1, min(p2HP, rec.P2MaxHP))
	next.UpdatedAt = e.cfg.Clock.Now()
	return next, nil
}

// SurrenderPenalty returns the status after the permanent surrender penalty:
// max hp, max mp and every attribute lose PenaltyPercent. God-mode sentinels
// are left untouched.
func (e *Engine) SurrenderPenalty(s entities.CharacterStatus) entities.CharacterStatus {
	out := s.Clone()
	if out.IsGodMode {
		return out
	}
	keep := 100 - e.penaltyPercent
	out.MaxHP = max(1, out.MaxHP*keep/100)
	out.MaxMP = out.MaxMP * keep / 100
	out.HP = min(out.HP, out.MaxHP)
	out.MP = min(out.MP, out.MaxMP)
	for k, v := range out.Attributes {
		out.Attributes[k] = v * keep / 100
	}
	return out
}
