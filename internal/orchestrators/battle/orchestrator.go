// Package battle implements the PvP use cases on top of the battle engine. Every
// transition is computed by the engine inside the repository's compare-and-set,
// so two concurrent writers can never both advance the same record.
package battle

//go:generate mockgen -destination=mock/mock_service.go -package=battlemock github.com/KirkDiggler/rpg-narrator/internal/orchestrators/battle Service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KirkDiggler/rpg-narrator/internal/authz"
	battleengine "github.com/KirkDiggler/rpg-narrator/internal/engine/battle"
	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/narrative"
	"github.com/KirkDiggler/rpg-narrator/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/accounts"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/battles"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/saves"
)

// Service defines the PvP operations
type Service interface {
	Challenge(ctx context.Context, input *ChallengeInput) (*BattleOutput, error)
	Accept(ctx context.Context, input *BattleInput) (*BattleOutput, error)
	Decline(ctx context.Context, input *BattleInput) (*BattleOutput, error)
	Act(ctx context.Context, input *ActInput) (*BattleOutput, error)
	Surrender(ctx context.Context, input *BattleInput) (*SurrenderOutput, error)
	GetBattle(ctx context.Context, input *BattleInput) (*BattleOutput, error)
	Current(ctx context.Context, input *CurrentInput) (*CurrentOutput, error)
	Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error)

	AdminStop(ctx context.Context, input *BattleInput) (*BattleOutput, error)
	AdminDelete(ctx context.Context, input *BattleInput) error
	AdminSetHP(ctx context.Context, input *AdminSetHPInput) (*BattleOutput, error)
	ListRecent(ctx context.Context, input *ListRecentInput) (*ListRecentOutput, error)
}

// Recorder counts battle transitions
type Recorder interface {
	BattleTransition(kind string)
}

type noopRecorder struct{}

func (noopRecorder) BattleTransition(string) {}

// Config holds the dependencies for the battle orchestrator
type Config struct {
	Battles     battles.Repository
	Saves       saves.Repository
	Accounts    accounts.Repository
	Authz       authz.Authorizer
	Engine      *battleengine.Engine
	Penalties   narrative.ExternalWriter
	IDGenerator idgen.Generator
	ServerID    string
	Recorder    Recorder
	Logger      *slog.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()

	if c.Battles == nil {
		vb.RequiredField("Battles")
	}
	if c.Saves == nil {
		vb.RequiredField("Saves")
	}
	if c.Accounts == nil {
		vb.RequiredField("Accounts")
	}
	if c.Authz == nil {
		vb.RequiredField("Authz")
	}
	if c.Engine == nil {
		vb.RequiredField("Engine")
	}
	if c.Penalties == nil {
		vb.RequiredField("Penalties")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

type orchestrator struct {
	battles   battles.Repository
	saves     saves.Repository
	accounts  accounts.Repository
	authz     authz.Authorizer
	engine    *battleengine.Engine
	penalties narrative.ExternalWriter
	idGen     idgen.Generator
	serverID  string
	recorder  Recorder
	logger    *slog.Logger
}

// NewOrchestrator creates a new battle orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		battles:   cfg.Battles,
		saves:     cfg.Saves,
		accounts:  cfg.Accounts,
		authz:     cfg.Authz,
		engine:    cfg.Engine,
		penalties: cfg.Penalties,
		idGen:     cfg.IDGenerator,
		serverID:  cfg.ServerID,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger,
	}
	if o.recorder == nil {
		o.recorder = noopRecorder{}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o, nil
}

// status loads the persisted character status of a player
func (o *orchestrator) status(ctx context.Context, username string) (*entities.CharacterStatus, error) {
	out, err := o.saves.Get(ctx, saves.GetInput{Username: username})
	if err != nil {
		return nil, err
	}
	return &out.Save.Character.Status, nil
}

func legitGod(s *entities.CharacterStatus) bool {
	return s.IsGodMode && entities.HasInfinityToken(s.Inventory)
}

func (o *orchestrator) Challenge(ctx context.Context, input *ChallengeInput) (*BattleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequirePlayer(ctx, input.Caller); err != nil {
		return nil, err
	}
	if input.Target == "" {
		return nil, errors.InvalidTarget("a target is required")
	}
	if input.Target == input.Caller {
		return nil, errors.InvalidTarget("you cannot challenge yourself")
	}

	target, err := o.accounts.Get(ctx, accounts.GetInput{Username: input.Target})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.InvalidTarget(fmt.Sprintf("%s is not a player on this server", input.Target))
		}
		return nil, err
	}
	if target.Account.Banned {
		return nil, errors.InvalidTarget(fmt.Sprintf("%s cannot be challenged", input.Target))
	}

	challengerStatus, err := o.status(ctx, input.Caller)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.FailedPrecondition("create a character before entering the arena")
		}
		return nil, err
	}
	targetStatus, err := o.status(ctx, input.Target)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.InvalidTarget(fmt.Sprintf("%s has no character", input.Target))
		}
		return nil, err
	}

	id := o.idGen.Generate()
	out, err := o.battles.Create(ctx, battles.CreateInput{
		Challenger: input.Caller,
		Target:     input.Target,
		Build: func(challengerBusy, targetBusy bool) (*entities.BattleRecord, error) {
			return o.engine.CreateChallenge(&battleengine.ChallengeInput{
				ID:                id,
				ServerID:          o.serverID,
				Challenger:        input.Caller,
				Target:            input.Target,
				ChallengerMaxHP:   challengerStatus.MaxHP,
				TargetMaxHP:       targetStatus.MaxHP,
				ChallengerGodMode: legitGod(challengerStatus),
				TargetGodMode:     legitGod(targetStatus),
				ChallengerBusy:    challengerBusy,
				TargetBusy:        targetBusy,
			})
		},
	})
	if err != nil {
		return nil, err
	}

	o.recorder.BattleTransition("challenge")
	o.logger.Info("battle challenge",
		"battle_id", out.Record.ID,
		"challenger", input.Caller,
		"target", input.Target)

	return &BattleOutput{Record: out.Record}, nil
}

// update runs one engine transition inside the repository CAS
func (o *orchestrator) update(ctx context.Context, kind, battleID string, transition battles.MutateFunc) (*entities.BattleRecord, error) {
	if battleID == "" {
		return nil, errors.InvalidArgument("battle id is required")
	}
	out, err := o.battles.Update(ctx, battles.UpdateInput{ID: battleID, Mutate: transition})
	if err != nil {
		return nil, err
	}
	o.recorder.BattleTransition(kind)
	return out.Record, nil
}

func (o *orchestrator) Accept(ctx context.Context, input *BattleInput) (*BattleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequirePlayer(ctx, input.Caller); err != nil {
		return nil, err
	}

	rec, err := o.update(ctx, "accept", input.BattleID, func(cur *entities.BattleRecord) (*entities.BattleRecord, error) {
		return o.engine.AcceptChallenge(cur, input.Caller)
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("battle accepted",
		"battle_id", rec.ID,
		"challenger", rec.Challenger,
		"target", rec.Target)
	return &BattleOutput{Record: rec}, nil
}

func (o *orchestrator) Decline(ctx context.Context, input *BattleInput) (*BattleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequirePlayer(ctx, input.Caller); err != nil {
		return nil, err
	}

	rec, err := o.update(ctx, "decline", input.BattleID, func(cur *entities.BattleRecord) (*entities.BattleRecord, error) {
		return o.engine.DeclineChallenge(cur, input.Caller)
	})
	if err != nil {
		return nil, err
	}
	return &BattleOutput{Record: rec}, nil
}

func (o *orchestrator) Act(ctx context.Context, input *ActInput) (*BattleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequirePlayer(ctx, input.Caller); err != nil {
		return nil, err
	}
	if input.Skill == "" {
		return nil, errors.InvalidSkill(input.Skill)
	}

	status, err := o.status(ctx, input.Caller)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.FailedPrecondition("your character no longer exists")
		}
		return nil, err
	}
	actor := battleengine.Combatant{Username: input.Caller, Status: *status}

	rec, err := o.update(ctx, "act", input.BattleID, func(cur *entities.BattleRecord) (*entities.BattleRecord, error) {
		return o.engine.ApplyAction(cur, actor, input.Skill)
	})
	if err != nil {
		return nil, err
	}

	if rec.Status == entities.BattleStatusFinished {
		o.logger.Info("battle finished",
			"battle_id", rec.ID,
			"winner", rec.Winner,
			"turns", rec.LastTurn())
	}
	return &BattleOutput{Record: rec}, nil
}

// Surrender finishes the battle for the opponent and applies the permanent
// penalty to the caller. The penalty is keyed by battle and caller, so a
// retried surrender re-runs only the parts that did not happen.
func (o *orchestrator) Surrender(ctx context.Context, input *BattleInput) (*SurrenderOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequirePlayer(ctx, input.Caller); err != nil {
		return nil, err
	}

	rec, err := o.update(ctx, "surrender", input.BattleID, func(cur *entities.BattleRecord) (*entities.BattleRecord, error) {
		return o.engine.Surrender(cur, input.Caller)
	})
	if err != nil {
		if !errors.HasReason(err, errors.ReasonMatchFinished) {
			return nil, err
		}
		got, getErr := o.battles.Get(ctx, battles.GetInput{ID: input.BattleID})
		if getErr != nil || got.Record.SurrenderedBy != input.Caller {
			return nil, err
		}
		rec = got.Record
	}

	applied, err := o.applyPenalty(ctx, rec, input.Caller)
	if err != nil {
		return nil, err
	}
	return &SurrenderOutput{Record: rec, PenaltyApplied: applied}, nil
}

func (o *orchestrator) applyPenalty(ctx context.Context, rec *entities.BattleRecord, username string) (bool, error) {
	out, err := o.penalties.ApplyExternal(ctx, &narrative.ApplyExternalInput{
		Username: username,
		OnceKey:  fmt.Sprintf("surrender:%s:%s", rec.ID, username),
		Mutate: func(cur *entities.SaveData) (*entities.SaveData, error) {
			cur.Character.Status = o.engine.SurrenderPenalty(cur.Character.Status)
			return cur, nil
		},
	})
	if err != nil {
		if errors.IsNotFound(err) {
			o.logger.Warn("surrender penalty skipped, no save",
				"battle_id", rec.ID,
				"username", username)
			return false, nil
		}
		return false, errors.Wrap(err, "failed to apply surrender penalty")
	}

	if out.Applied {
		o.logger.Info("surrender penalty applied",
			"battle_id", rec.ID,
			"username", username,
			"max_hp", out.Save.Character.Status.MaxHP)
	}
	return out.Applied, nil
}

func (o *orchestrator) GetBattle(ctx context.Context, input *BattleInput) (*BattleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	account, err := o.authz.RequirePlayer(ctx, input.Caller)
	if err != nil {
		return nil, err
	}
	if input.BattleID == "" {
		return nil, errors.InvalidArgument("battle id is required")
	}

	out, err := o.battles.Get(ctx, battles.GetInput{ID: input.BattleID})
	if err != nil {
		return nil, err
	}
	if !out.Record.IsParticipant(input.Caller) && !account.IsAdmin() {
		return nil, errors.NotFoundf("battle %s not found", input.BattleID)
	}
	return &BattleOutput{Record: out.Record}, nil
}

func (o *orchestrator) Current(ctx context.Context, input *CurrentInput) (*CurrentOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequirePlayer(ctx, input.Caller); err != nil {
		return nil, err
	}

	out, err := o.battles.ListActive(ctx, battles.ListActiveInput{Username: input.Caller})
	if err != nil {
		return nil, err
	}
	return &CurrentOutput{Records: out.Records}, nil
}

func (o *orchestrator) Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequirePlayer(ctx, input.Caller); err != nil {
		return nil, err
	}

	out, err := o.battles.Subscribe(ctx, battles.SubscribeInput{Username: input.Caller})
	if err != nil {
		return nil, err
	}
	return &SubscribeOutput{Updates: out.Updates, Close: out.Close}, nil
}

func (o *orchestrator) AdminStop(ctx context.Context, input *BattleInput) (*BattleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequireAdmin(ctx, input.Caller); err != nil {
		return nil, err
	}

	rec, err := o.update(ctx, "admin_stop", input.BattleID, o.engine.AdminStop)
	if err != nil {
		return nil, err
	}

	o.logger.Info("battle stopped by admin",
		"battle_id", rec.ID,
		"admin", input.Caller)
	return &BattleOutput{Record: rec}, nil
}

func (o *orchestrator) AdminDelete(ctx context.Context, input *BattleInput) error {
	if input == nil {
		return errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequireAdmin(ctx, input.Caller); err != nil {
		return err
	}
	if input.BattleID == "" {
		return errors.InvalidArgument("battle id is required")
	}

	if _, err := o.battles.Delete(ctx, battles.DeleteInput{ID: input.BattleID}); err != nil {
		return err
	}

	o.recorder.BattleTransition("admin_delete")
	o.logger.Info("battle deleted by admin",
		"battle_id", input.BattleID,
		"admin", input.Caller)
	return nil
}

func (o *orchestrator) AdminSetHP(ctx context.Context, input *AdminSetHPInput) (*BattleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequireAdmin(ctx, input.Caller); err != nil {
		return nil, err
	}

	rec, err := o.update(ctx, "admin_set_hp", input.BattleID, func(cur *entities.BattleRecord) (*entities.BattleRecord, error) {
		return o.engine.AdminSetHP(cur, input.P1HP, input.P2HP)
	})
	if err != nil {
		return nil, err
	}
	return &BattleOutput{Record: rec}, nil
}

func (o *orchestrator) ListRecent(ctx context.Context, input *ListRecentInput) (*ListRecentOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequireAdmin(ctx, input.Caller); err != nil {
		return nil, err
	}

	out, err := o.battles.ListRecent(ctx, battles.ListRecentInput{Limit: input.Limit})
	if err != nil {
		return nil, err
	}
	return &ListRecentOutput{Records: out.Records}, nil
}
