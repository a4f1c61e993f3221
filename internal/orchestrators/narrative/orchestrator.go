// Package narrative runs single-player games: it owns the live session of each
// player, feeds turns to the narrative backend and passes every proposed
// status through the reconciler before it can reach the save.
package narrative

//go:generate mockgen -destination=mock/mock_service.go -package=narrativemock github.com/KirkDiggler/rpg-narrator/internal/orchestrators/narrative Service,ExternalWriter

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	narrativeclient "github.com/KirkDiggler/rpg-narrator/internal/clients/narrative"
	battleengine "github.com/KirkDiggler/rpg-narrator/internal/engine/battle"
	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-narrator/internal/reconciler"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/saves"
)

// DefaultAutosaveDelay is the debounce between the last change and the save
const DefaultAutosaveDelay = 2 * time.Second

const (
	errUsernameEmpty = "username cannot be empty"
	greatSage        = "Great Sage"
)

var starterInventory = []string{"Starter Pack", "Mystery Box", "Hipokute Herb x5", "Basic Clothes"}

// Service defines the single-player game operations
type Service interface {
	StartGame(ctx context.Context, input *StartGameInput) (*StartGameOutput, error)
	Submit(ctx context.Context, input *SubmitInput) (*TurnOutput, error)
	GetState(ctx context.Context, input *GetStateInput) (*GetStateOutput, error)
	UseSkill(ctx context.Context, input *UseSkillInput) (*TurnOutput, error)
	UseItem(ctx context.Context, input *UseItemInput) (*TurnOutput, error)
	EquipSkills(ctx context.Context, input *EquipSkillsInput) (*EquipSkillsOutput, error)
	Save(ctx context.Context, input *SaveInput) (*SaveOutput, error)
	AcknowledgeDeath(ctx context.Context, input *AcknowledgeDeathInput) (*AcknowledgeDeathOutput, error)
	Appraise(ctx context.Context, input *AppraiseInput) (*AppraiseOutput, error)
	Scan(ctx context.Context, input *ScanInput) (*ScanOutput, error)
	AnalyzeEntity(ctx context.Context, input *AnalyzeEntityInput) (*AnalyzeEntityOutput, error)
	ExternalWriter

	// Close flushes every pending autosave
	Close(ctx context.Context) error
}

// ExternalWriter applies save writes that originate outside the player's
// session without a live session overwriting them later
type ExternalWriter interface {
	ApplyExternal(ctx context.Context, input *ApplyExternalInput) (*ApplyExternalOutput, error)
}

// Config holds the dependencies for the narrative orchestrator
type Config struct {
	Saves         saves.Repository
	Client        narrativeclient.Client
	Reconciler    *reconciler.Reconciler
	Clock         clock.Clock
	// Roller draws mystery box prizes; nil uses dice.DefaultRoller
	Roller        dice.Roller
	AutosaveDelay time.Duration
	Logger        *slog.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()

	if c.Saves == nil {
		vb.RequiredField("Saves")
	}
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	if c.Reconciler == nil {
		vb.RequiredField("Reconciler")
	}
	if c.AutosaveDelay < 0 {
		vb.Field("AutosaveDelay", "must not be negative")
	}

	return vb.Build()
}

type orchestrator struct {
	saves         saves.Repository
	client        narrativeclient.Client
	reconciler    *reconciler.Reconciler
	clock         clock.Clock
	roller        dice.Roller
	autosaveDelay time.Duration
	logger        *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewOrchestrator creates a new narrative orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		saves:         cfg.Saves,
		client:        cfg.Client,
		reconciler:    cfg.Reconciler,
		clock:         cfg.Clock,
		roller:        cfg.Roller,
		autosaveDelay: cfg.AutosaveDelay,
		logger:        cfg.Logger,
		sessions:      make(map[string]*session),
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	if o.roller == nil {
		o.roller = dice.DefaultRoller
	}
	if o.autosaveDelay == 0 {
		o.autosaveDelay = DefaultAutosaveDelay
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o, nil
}

// lookup returns the live session without loading one
func (o *orchestrator) lookup(username string) *session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessions[username]
}

// session returns the live session, loading it from the save on first use
func (o *orchestrator) session(ctx context.Context, username string) (*session, error) {
	if username == "" {
		return nil, errors.InvalidArgument(errUsernameEmpty)
	}
	if s := o.lookup(username); s != nil {
		return s, nil
	}

	out, err := o.saves.Get(ctx, saves.GetInput{Username: username})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFoundf("%s has no game in progress", username)
		}
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.sessions[username]; ok {
		return s, nil
	}
	s := newSession(out.Save)
	o.sessions[username] = s
	return s, nil
}

func (o *orchestrator) StartGame(ctx context.Context, input *StartGameInput) (*StartGameOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("username", input.Username, vb)
	errors.ValidateRequired("name", strings.TrimSpace(input.Name), vb)
	errors.ValidateRequired("race", strings.TrimSpace(input.Race), vb)
	errors.ValidateRequired("unique_skill", strings.TrimSpace(input.UniqueSkill), vb)
	difficulty := input.Difficulty
	if difficulty == "" {
		difficulty = DifficultyNormal
	}
	switch difficulty {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyInstantDeath:
	default:
		vb.Fieldf("difficulty", "unknown difficulty %q", difficulty)
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	if _, err := o.session(ctx, input.Username); err == nil {
		return nil, errors.AlreadyExists("a game is already in progress")
	} else if !errors.IsNotFound(err) {
		return nil, err
	}

	location := input.Location
	if location == "" {
		location = "Veldora's Cave"
	}
	unique := strings.TrimSpace(input.UniqueSkill)
	skills := []string{unique}
	if unique != greatSage {
		skills = append(skills, greatSage)
	}

	character := entities.Character{
		Name:        strings.TrimSpace(input.Name),
		Race:        strings.TrimSpace(input.Race),
		UniqueSkill: unique,
		Status: entities.CharacterStatus{
			HP:             100,
			MaxHP:          100,
			MP:             100,
			MaxMP:          100,
			Skills:         skills,
			EquippedSkills: []string{unique},
			ActiveEffects:  []string{},
			Inventory:      slices.Clone(starterInventory),
			Quests:         []entities.Quest{},
			Level:          1,
			EvolutionStage: fmt.Sprintf("Nameless (%s)", strings.TrimSpace(input.Race)),
			Difficulty:     difficulty,
			Attributes:     map[string]int{"strength": 10, "magic": 10, "agility": 10, "defense": 10},
		},
	}
	settings := entities.Settings{Firewall: true}

	intro := fmt.Sprintf("BEGIN: I am %s, of the %s race. Location: %s. Describe the opening situation briefly and warn of the dangers of this world.",
		character.Name, character.Race, location)
	gen, err := o.client.Generate(ctx, &narrativeclient.GenerateInput{
		Character: character,
		Message:   intro,
		Settings:  settings,
	})
	if err != nil {
		return nil, err
	}

	save := &entities.SaveData{
		Username:  input.Username,
		Character: character,
		History: []entities.ChatTurn{
			{Role: entities.ChatRoleModel, Text: gen.Text, Timestamp: o.clock.Now()},
		},
		Settings: settings,
	}
	out, err := o.saves.Put(ctx, saves.PutInput{Save: save})
	if err != nil {
		return nil, err
	}

	s := newSession(out.Save)
	o.mu.Lock()
	if _, exists := o.sessions[input.Username]; exists {
		o.mu.Unlock()
		return nil, errors.AlreadyExists("a game is already in progress")
	}
	o.sessions[input.Username] = s
	o.mu.Unlock()

	o.logger.Info("game started",
		"username", input.Username,
		"race", character.Race,
		"difficulty", difficulty,
		"degraded", gen.Degraded)

	s.mu.Lock()
	defer s.mu.Unlock()
	return &StartGameOutput{State: s.state(), Degraded: gen.Degraded}, nil
}

// begin loads the session and claims its in-flight slot; the caller must
// release it
func (o *orchestrator) begin(ctx context.Context, username string) (*session, error) {
	s, err := o.session(ctx, username)
	if err != nil {
		return nil, err
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, errors.Busy("another action is still being processed")
	}
	return s, nil
}

func (o *orchestrator) Submit(ctx context.Context, input *SubmitInput) (*TurnOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, errors.InvalidArgument("message cannot be empty")
	}

	s, err := o.begin(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	defer s.inFlight.Store(false)

	if cmd := parseCommand(message); cmd != commandNone {
		return o.runCommand(s, cmd)
	}

	return o.runTurn(ctx, s, func(*entities.SaveData) (string, error) {
		return message, nil
	})
}

func (o *orchestrator) runCommand(s *session, cmd command) (*TurnOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dead {
		return nil, errors.Dead(s.username)
	}

	res := applyCommand(cmd, s.save.Settings)
	s.save.Settings = res.settings
	if res.turn != "" {
		s.appendTurn(entities.ChatRoleUser, res.turn, o.clock.Now())
	}
	o.scheduleSave(s)

	o.logger.Info("narrative command",
		"username", s.username,
		"firewall", res.settings.Firewall,
		"nsfw", res.settings.NSFW)

	return &TurnOutput{
		State:   s.state(),
		Command: true,
		Notices: []entities.Notice{res.notice},
	}, nil
}

// runTurn is one narrative round trip. prepare runs under the session lock,
// may edit the save (mana, items) and returns the player message. The
// backend calls run without the lock so external writes can land meanwhile.
func (o *orchestrator) runTurn(ctx context.Context, s *session, prepare func(*entities.SaveData) (string, error)) (*TurnOutput, error) {
	s.mu.Lock()
	if s.dead {
		s.mu.Unlock()
		return nil, errors.Dead(s.username)
	}
	message, err := prepare(s.save)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	prior := slices.Clone(s.save.History)
	s.appendTurn(entities.ChatRoleUser, message, o.clock.Now())
	character := s.save.Character
	character.Status = character.Status.Clone()
	settings := s.save.Settings
	o.scheduleSave(s)
	s.mu.Unlock()

	gen, err := o.client.Generate(ctx, &narrativeclient.GenerateInput{
		Character: character,
		History:   prior,
		Message:   message,
		Settings:  settings,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.appendTurn(entities.ChatRoleModel, gen.Text, o.clock.Now())
	history := slices.Clone(s.save.History)
	snapshot := s.save.Character.Status.Clone()
	firewall := s.save.Settings.Firewall
	o.scheduleSave(s)
	s.mu.Unlock()

	out := &TurnOutput{Reply: gen.Text, Degraded: gen.Degraded}

	analysis, err := o.client.AnalyzeStatus(ctx, &narrativeclient.AnalyzeInput{
		Status:   snapshot,
		History:  history,
		Firewall: firewall,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		o.logger.Warn("status analysis failed",
			"username", s.username,
			"error", err)
		out.Notices = append(out.Notices, entities.Notice{
			Type: entities.NoticeSystem,
			Text: "Status analysis is unavailable; your status is unchanged.",
		})
		out.State = s.state()
		return out, nil
	}

	current := s.save.Character.Status
	res := o.reconciler.Reconcile(&reconciler.Input{
		Previous:  current,
		Proposed:  rebase(*analysis.Update, snapshot, current),
		Inventory: current.Inventory,
		Firewall:  s.save.Settings.Firewall,
	})
	s.save.Character.Status = res.Status
	out.Notices = append(out.Notices, res.Notices...)

	if res.Died {
		out.Died = true
		s.dead = true
		s.stopTimer()
		o.logger.Info("character died",
			"username", s.username,
			"level", res.Status.Level)
	}
	if res.Rejected {
		o.logger.Info("status proposal rejected",
			"username", s.username,
			"tier", analysis.Tier)
	}
	o.scheduleSave(s)

	out.State = s.state()
	return out, nil
}

func (o *orchestrator) GetState(ctx context.Context, input *GetStateInput) (*GetStateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	s, err := o.session(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return &GetStateOutput{State: s.state()}, nil
}

// manaCost is half the maximum for ultimate skills and a tenth otherwise
func manaCost(skill string, maxMP int) int {
	if battleengine.IsUltimate(skill) {
		return maxMP * 50 / 100
	}
	return maxMP * 10 / 100
}

func (o *orchestrator) UseSkill(ctx context.Context, input *UseSkillInput) (*TurnOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Skill == "" {
		return nil, errors.InvalidArgument("skill cannot be empty")
	}

	s, err := o.begin(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	defer s.inFlight.Store(false)

	return o.runTurn(ctx, s, func(save *entities.SaveData) (string, error) {
		status := &save.Character.Status
		if !status.HasSkill(input.Skill) {
			return "", errors.InvalidArgumentf("skill %q has not been learned", input.Skill).
				WithReason(errors.ReasonInvalidSkill)
		}

		if status.IsGodMode {
			return fmt.Sprintf("[SKILL]: %s. [SYSTEM - GOD MODE] %s activates it. Mana is infinite.",
				input.Skill, save.Character.Name), nil
		}

		cost := manaCost(input.Skill, status.MaxMP)
		if status.MP < cost {
			return "", errors.FailedPreconditionf("%s needs %d MP, have %d", input.Skill, cost, status.MP).
				WithReason(errors.ReasonInsufficientEnergy)
		}
		status.MP -= cost
		return fmt.Sprintf("[SKILL]: %s. [SYSTEM] %s activates it, consuming %d MP.",
			input.Skill, save.Character.Name, cost), nil
	})
}

func (o *orchestrator) UseItem(ctx context.Context, input *UseItemInput) (*TurnOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Item == "" {
		return nil, errors.InvalidArgument("item cannot be empty")
	}

	s, err := o.begin(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	defer s.inFlight.Store(false)

	if entities.IsInfinityToken(input.Item) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !slices.Contains(s.save.Character.Status.Inventory, input.Item) {
			return nil, errors.NotFoundf("%q is not in the inventory", input.Item)
		}
		return &TurnOutput{
			State: s.state(),
			Notices: []entities.Notice{{
				Type: entities.NoticeSystem,
				Text: "The Infinity Token cannot be consumed.",
			}},
		}, nil
	}
	if isMysteryBox(input.Item) {
		return o.openMysteryBox(s, input.Item)
	}

	return o.runTurn(ctx, s, func(save *entities.SaveData) (string, error) {
		inventory := save.Character.Status.Inventory
		i := slices.Index(inventory, input.Item)
		if i < 0 {
			return "", errors.NotFoundf("%q is not in the inventory", input.Item)
		}
		save.Character.Status.Inventory = slices.Delete(slices.Clone(inventory), i, i+1)
		return fmt.Sprintf("[ITEM]: %s.", input.Item), nil
	})
}

func (o *orchestrator) EquipSkills(ctx context.Context, input *EquipSkillsInput) (*EquipSkillsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if len(input.Skills) > entities.MaxEquippedSkills {
		return nil, errors.InvalidArgumentf("at most %d skills can be equipped", entities.MaxEquippedSkills)
	}

	s, err := o.session(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dead {
		return nil, errors.Dead(s.username)
	}

	equipped := make([]string, 0, len(input.Skills))
	for _, skill := range input.Skills {
		if !s.save.Character.Status.HasSkill(skill) {
			return nil, errors.InvalidArgumentf("skill %q has not been learned", skill).
				WithReason(errors.ReasonInvalidSkill)
		}
		if slices.Contains(equipped, skill) {
			return nil, errors.InvalidArgumentf("skill %q listed twice", skill)
		}
		equipped = append(equipped, skill)
	}

	s.save.Character.Status.EquippedSkills = equipped
	o.scheduleSave(s)
	return &EquipSkillsOutput{State: s.state()}, nil
}

func (o *orchestrator) Save(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	s, err := o.session(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dead {
		return nil, errors.Dead(s.username)
	}
	s.stopTimer()
	if err := o.flush(ctx, s); err != nil {
		return nil, err
	}
	return &SaveOutput{LastSaved: s.save.LastSaved}, nil
}

// AcknowledgeDeath deletes the save of a dead character so a new game can start
func (o *orchestrator) AcknowledgeDeath(ctx context.Context, input *AcknowledgeDeathInput) (*AcknowledgeDeathOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	s, err := o.session(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dead {
		return nil, errors.FailedPrecondition("the character is alive")
	}

	if _, err := o.saves.Delete(ctx, saves.DeleteInput{Username: input.Username}); err != nil && !errors.IsNotFound(err) {
		return nil, err
	}
	s.stopTimer()

	o.mu.Lock()
	delete(o.sessions, input.Username)
	o.mu.Unlock()

	o.logger.Info("save deleted after death", "username", input.Username)
	return &AcknowledgeDeathOutput{}, nil
}

// history snapshots the chat of a loaded session
func (o *orchestrator) history(ctx context.Context, username string) ([]entities.ChatTurn, error) {
	s, err := o.session(ctx, username)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.save.History), nil
}

func (o *orchestrator) Appraise(ctx context.Context, input *AppraiseInput) (*AppraiseOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	history, err := o.history(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	out, err := o.client.Appraise(ctx, &narrativeclient.AppraiseInput{History: history})
	if err != nil {
		return nil, err
	}
	return &AppraiseOutput{Appraisal: out.Appraisal}, nil
}

func (o *orchestrator) Scan(ctx context.Context, input *ScanInput) (*ScanOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	history, err := o.history(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	out, err := o.client.Scan(ctx, &narrativeclient.ScanInput{History: history})
	if err != nil {
		return nil, err
	}
	return &ScanOutput{Entities: out.Entities}, nil
}

func (o *orchestrator) AnalyzeEntity(ctx context.Context, input *AnalyzeEntityInput) (*AnalyzeEntityOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.session(ctx, input.Username); err != nil {
		return nil, err
	}

	out, err := o.client.AnalyzeEntity(ctx, &narrativeclient.AnalyzeEntityInput{Term: input.Term})
	if err != nil {
		return nil, err
	}
	return &AnalyzeEntityOutput{Entity: out.Entity}, nil
}

// ApplyExternal flushes a live session's pending changes, runs the ledgered
// update on the stored save and makes the session adopt the result. The
// session is loaded first and its lock held across the update, so a request
// that loads it concurrently waits and then sees the write. A dead session
// keeps its in-memory state; it is discarded on acknowledgement.
func (o *orchestrator) ApplyExternal(ctx context.Context, input *ApplyExternalInput) (*ApplyExternalOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Username == "" {
		return nil, errors.InvalidArgument(errUsernameEmpty)
	}
	if input.Mutate == nil {
		return nil, errors.InvalidArgument("mutate func cannot be nil")
	}

	s, err := o.session(ctx, input.Username)
	if err != nil && !errors.IsNotFound(err) {
		return nil, err
	}
	if s != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.dirty && !s.dead {
			s.stopTimer()
			if err := o.flush(ctx, s); err != nil {
				return nil, errors.Wrap(err, "failed to flush session before external write")
			}
		}
	}

	out, err := o.saves.Update(ctx, saves.UpdateInput{
		Username: input.Username,
		OnceKey:  input.OnceKey,
		Mutate:   input.Mutate,
	})
	if err != nil {
		return nil, err
	}

	if s != nil && !s.dead {
		s.save = cloneSave(out.Save)
		s.dirty = false
	}

	o.logger.Info("external save write",
		"username", input.Username,
		"once_key", input.OnceKey,
		"applied", out.Applied)

	return &ApplyExternalOutput{Save: out.Save, Applied: out.Applied}, nil
}

func (o *orchestrator) Close(ctx context.Context) error {
	o.mu.Lock()
	sessions := make([]*session, 0, len(o.sessions))
	for _, s := range o.sessions {
		sessions = append(sessions, s)
	}
	o.mu.Unlock()

	var firstErr error
	for _, s := range sessions {
		s.mu.Lock()
		s.stopTimer()
		if s.dirty && !s.dead {
			if err := o.flush(ctx, s); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		s.mu.Unlock()
	}
	return firstErr
}
