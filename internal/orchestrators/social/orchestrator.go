// Package social implements world chat and the power leaderboard
package social

//go:generate mockgen -destination=mock/mock_service.go -package=socialmock github.com/KirkDiggler/rpg-narrator/internal/orchestrators/social Service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/KirkDiggler/rpg-narrator/internal/authz"
	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-narrator/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/accounts"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/leaderboard"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/saves"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/worldchat"
)

const (
	// DefaultRefreshInterval is how long a computed ranking is served before
	// it is rebuilt from the saves
	DefaultRefreshInterval = 30 * time.Second

	maxChatLength = 500
)

// Service defines the social operations
type Service interface {
	PostChat(ctx context.Context, input *PostChatInput) (*PostChatOutput, error)
	ListChat(ctx context.Context, input *ListChatInput) (*ListChatOutput, error)
	SubscribeChat(ctx context.Context, input *SubscribeChatInput) (*SubscribeChatOutput, error)
	Leaderboard(ctx context.Context, input *LeaderboardInput) (*LeaderboardOutput, error)
}

// Recorder counts chat traffic
type Recorder interface {
	ChatPosted()
}

type noopRecorder struct{}

func (noopRecorder) ChatPosted() {}

// Config holds the dependencies for the social orchestrator
type Config struct {
	Chat            worldchat.Repository
	Leaderboard     leaderboard.Repository
	Saves           saves.Repository
	Accounts        accounts.Repository
	Authz           authz.Authorizer
	IDGenerator     idgen.Generator
	Clock           clock.Clock
	ServerID        string
	RefreshInterval time.Duration
	Recorder        Recorder
	Logger          *slog.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()

	if c.Chat == nil {
		vb.RequiredField("Chat")
	}
	if c.Leaderboard == nil {
		vb.RequiredField("Leaderboard")
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
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.RefreshInterval < 0 {
		vb.Field("RefreshInterval", "must not be negative")
	}

	return vb.Build()
}

type orchestrator struct {
	chat        worldchat.Repository
	leaderboard leaderboard.Repository
	saves       saves.Repository
	accounts    accounts.Repository
	authz       authz.Authorizer
	idGen       idgen.Generator
	clock       clock.Clock
	serverID    string
	refresh     time.Duration
	recorder    Recorder
	logger      *slog.Logger

	mu        sync.Mutex
	refreshed time.Time
}

// NewOrchestrator creates a new social orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		chat:        cfg.Chat,
		leaderboard: cfg.Leaderboard,
		saves:       cfg.Saves,
		accounts:    cfg.Accounts,
		authz:       cfg.Authz,
		idGen:       cfg.IDGenerator,
		clock:       cfg.Clock,
		serverID:    cfg.ServerID,
		refresh:     cfg.RefreshInterval,
		recorder:    cfg.Recorder,
		logger:      cfg.Logger,
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	if o.refresh == 0 {
		o.refresh = DefaultRefreshInterval
	}
	if o.recorder == nil {
		o.recorder = noopRecorder{}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o, nil
}

func (o *orchestrator) PostChat(ctx context.Context, input *PostChatInput) (*PostChatOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	account, err := o.authz.RequirePlayer(ctx, input.Caller)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, errors.InvalidArgument("message cannot be empty")
	}
	if utf8.RuneCountInString(text) > maxChatLength {
		return nil, errors.InvalidArgumentf("message is longer than %d characters", maxChatLength)
	}

	out, err := o.chat.Post(ctx, worldchat.PostInput{Message: &entities.ChatMessage{
		ID:       o.idGen.Generate(),
		ServerID: o.serverID,
		Username: input.Caller,
		Text:     text,
		IsAdmin:  account.IsAdmin(),
		SentAt:   o.clock.Now(),
	}})
	if err != nil {
		return nil, err
	}

	o.recorder.ChatPosted()
	return &PostChatOutput{Message: out.Message}, nil
}

func (o *orchestrator) ListChat(ctx context.Context, input *ListChatInput) (*ListChatOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequirePlayer(ctx, input.Caller); err != nil {
		return nil, err
	}

	out, err := o.chat.List(ctx, worldchat.ListInput{Limit: input.Limit})
	if err != nil {
		return nil, err
	}
	return &ListChatOutput{Messages: out.Messages}, nil
}

func (o *orchestrator) SubscribeChat(ctx context.Context, input *SubscribeChatInput) (*SubscribeChatOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequirePlayer(ctx, input.Caller); err != nil {
		return nil, err
	}

	out, err := o.chat.Subscribe(ctx, worldchat.SubscribeInput{})
	if err != nil {
		return nil, err
	}
	return &SubscribeChatOutput{Messages: out.Messages, Close: out.Close}, nil
}

func (o *orchestrator) Leaderboard(ctx context.Context, input *LeaderboardInput) (*LeaderboardOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Caller != "" {
		if _, err := o.authz.RequirePlayer(ctx, input.Caller); err != nil {
			return nil, err
		}
	}

	if err := o.refreshIfStale(ctx); err != nil {
		return nil, err
	}

	top, err := o.leaderboard.Top(ctx, leaderboard.TopInput{Limit: input.Limit})
	if err != nil {
		return nil, err
	}
	out := &LeaderboardOutput{Entries: top.Entries}

	if input.Caller != "" {
		rank, err := o.leaderboard.Rank(ctx, leaderboard.RankInput{Username: input.Caller})
		switch {
		case err == nil:
			out.Caller = rank.Entry
		case !errors.IsNotFound(err):
			return nil, err
		}
	}
	return out, nil
}

// refreshIfStale rebuilds the ranking from the saves at most once per
// refresh interval
func (o *orchestrator) refreshIfStale(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.clock.Now()
	if !o.refreshed.IsZero() && now.Sub(o.refreshed) < o.refresh {
		return nil
	}

	scores, err := o.scores(ctx)
	if err != nil {
		return err
	}
	if _, err := o.leaderboard.Replace(ctx, leaderboard.ReplaceInput{Scores: scores}); err != nil {
		return err
	}

	o.refreshed = now
	o.logger.Debug("leaderboard rebuilt", "entries", len(scores))
	return nil
}

func (o *orchestrator) scores(ctx context.Context) ([]leaderboard.Score, error) {
	accts, err := o.accounts.List(ctx, accounts.ListInput{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list accounts")
	}
	excluded := make(map[string]bool)
	for _, a := range accts.Accounts {
		if a.Banned || a.IsAdmin() {
			excluded[a.Username] = true
		}
	}

	all, err := o.saves.List(ctx, saves.ListInput{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list saves")
	}

	scores := make([]leaderboard.Score, 0, len(all.Saves))
	for _, save := range all.Saves {
		if excluded[save.Username] {
			continue
		}
		scores = append(scores, Score(save))
	}
	return scores, nil
}

// Score computes an account's ranking input. Power is
// (hp + max mp) * 10 + 1000 per learned skill; god mode outranks everything.
func Score(save *entities.SaveData) leaderboard.Score {
	status := save.Character.Status
	if status.IsGodMode {
		return leaderboard.Score{Username: save.Username, GodMode: true}
	}
	power := int64(status.HP+status.MaxMP)*10 + int64(len(status.Skills))*1000
	return leaderboard.Score{Username: save.Username, Power: power}
}
