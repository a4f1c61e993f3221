// Package session keeps one player's view of their PvP battles in sync with
// the server. A push stream and a fixed-interval poll both feed records into a
// single event loop, which folds them through Reduce. Actions are sent to the
// server and only their returned records change the view.
package session

//go:generate mockgen -destination=mock/mock_arena.go -package=sessionmock github.com/KirkDiggler/rpg-narrator/internal/session Arena

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
)

// DefaultPollInterval is the fallback poll period
const DefaultPollInterval = 2 * time.Second

const updateBuffer = 64

// Arena is the server as seen by one signed-in player
type Arena interface {
	// Watch streams every write to a battle involving the player. The
	// channel is closed when the stream ends.
	Watch(ctx context.Context) (<-chan *entities.BattleRecord, error)
	// Current returns the player's PENDING and IN_PROGRESS battles
	Current(ctx context.Context) ([]*entities.BattleRecord, error)
	Get(ctx context.Context, battleID string) (*entities.BattleRecord, error)
	Challenge(ctx context.Context, target string) (*entities.BattleRecord, error)
	Accept(ctx context.Context, battleID string) (*entities.BattleRecord, error)
	Decline(ctx context.Context, battleID string) (*entities.BattleRecord, error)
	Act(ctx context.Context, battleID, skill string) (*entities.BattleRecord, error)
	Surrender(ctx context.Context, battleID string) (*entities.BattleRecord, error)
}

// Update is published after every reduction that changed something
type Update struct {
	State State
	Change
}

// Config holds the dependencies for a session
type Config struct {
	Arena        Arena
	Username     string
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Validate validates the config
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if c.Arena == nil {
		vb.RequiredField("arena")
	}
	errors.ValidateRequired("username", c.Username, vb)
	if c.PollInterval < 0 {
		vb.Field("poll_interval", "must not be negative")
	}
	return vb.Build()
}

// Session is the battle controller of one player
type Session struct {
	arena    Arena
	username string
	interval time.Duration
	logger   *slog.Logger

	records  chan *entities.BattleRecord
	commands chan func(State) State
	updates  chan Update

	mu       sync.RWMutex
	snapshot State
}

// New creates a session; Run starts it
func New(cfg *Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	interval := cfg.PollInterval
	if interval == 0 {
		interval = DefaultPollInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		arena:    cfg.Arena,
		username: cfg.Username,
		interval: interval,
		logger:   logger.With("username", cfg.Username),
		records:  make(chan *entities.BattleRecord, updateBuffer),
		commands: make(chan func(State) State),
		updates:  make(chan Update, updateBuffer),
		snapshot: State{Username: cfg.Username},
	}, nil
}

// Updates delivers state changes in order. Cues are only delivered here, so
// a consumer that stops reading stalls the loop rather than losing cues.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

// State returns the latest reduced state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Run owns the state until ctx is done
func (s *Session) Run(ctx context.Context) error {
	state := s.State()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	watch := s.subscribe(ctx)
	state, err := s.poll(ctx, state)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case rec, ok := <-watch:
			if !ok {
				s.logger.Info("battle push stream closed, resubscribing on next tick")
				watch = nil
				continue
			}
			if state, err = s.apply(ctx, state, rec); err != nil {
				return err
			}

		case rec := <-s.records:
			if state, err = s.apply(ctx, state, rec); err != nil {
				return err
			}

		case cmd := <-s.commands:
			state = cmd(state)
			s.publish(state)

		case <-ticker.C:
			if watch == nil {
				watch = s.subscribe(ctx)
			}
			if state, err = s.poll(ctx, state); err != nil {
				return err
			}
		}
	}
}

func (s *Session) subscribe(ctx context.Context) <-chan *entities.BattleRecord {
	ch, err := s.arena.Watch(ctx)
	if err != nil {
		s.logger.Warn("battle push subscribe failed, polling only", "error", err)
		return nil
	}
	return ch
}

// poll reduces the server's active battles, then fetches any tracked battle
// the active list no longer contains so its final state is not missed
func (s *Session) poll(ctx context.Context, state State) (State, error) {
	current, err := s.arena.Current(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return state, ctx.Err()
		}
		s.logger.Warn("battle poll failed", "error", err)
		return state, nil
	}

	seen := make([]string, 0, len(current))
	for _, rec := range current {
		seen = append(seen, rec.ID)
		if state, err = s.apply(ctx, state, rec); err != nil {
			return state, err
		}
	}

	for _, id := range state.TrackedIDs() {
		if slices.Contains(seen, id) {
			continue
		}
		rec, err := s.arena.Get(ctx, id)
		if err != nil {
			if errors.IsNotFound(err) {
				state = forget(state, id)
				s.publish(state)
				continue
			}
			s.logger.Warn("battle refresh failed", "battle_id", id, "error", err)
			continue
		}
		if state, err = s.apply(ctx, state, rec); err != nil {
			return state, err
		}
	}
	return state, nil
}

func (s *Session) apply(ctx context.Context, state State, rec *entities.BattleRecord) (State, error) {
	next, change := Reduce(state, rec)
	if next == state && change.Empty() {
		return state, nil
	}
	s.publish(next)
	select {
	case s.updates <- Update{State: next, Change: change}:
	case <-ctx.Done():
		return next, ctx.Err()
	}
	return next, nil
}

func (s *Session) publish(state State) {
	s.mu.Lock()
	s.snapshot = state
	s.mu.Unlock()
}

// forget drops a battle the server no longer has
func forget(s State, id string) State {
	s.Invite = clearIf(s.Invite, id)
	s.Outgoing = clearIf(s.Outgoing, id)
	if s.Active != nil && s.Active.ID == id {
		s.Active = nil
		s.LastCueTurn = 0
	}
	return s
}

// submit hands an action result to the loop
func (s *Session) submit(ctx context.Context, rec *entities.BattleRecord) error {
	select {
	case s.records <- rec:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Challenge sends a challenge to target
func (s *Session) Challenge(ctx context.Context, target string) error {
	rec, err := s.arena.Challenge(ctx, target)
	if err != nil {
		return err
	}
	return s.submit(ctx, rec)
}

// Accept accepts the pending invite
func (s *Session) Accept(ctx context.Context) error {
	invite := s.State().Invite
	if invite == nil {
		return errors.FailedPrecondition("there is no pending invite")
	}
	rec, err := s.arena.Accept(ctx, invite.ID)
	if err != nil {
		return err
	}
	return s.submit(ctx, rec)
}

// Decline declines the pending invite
func (s *Session) Decline(ctx context.Context) error {
	invite := s.State().Invite
	if invite == nil {
		return errors.FailedPrecondition("there is no pending invite")
	}
	rec, err := s.arena.Decline(ctx, invite.ID)
	if err != nil {
		return err
	}
	return s.submit(ctx, rec)
}

// Act submits the next move. The view only changes once the server's
// record comes back.
func (s *Session) Act(ctx context.Context, skill string) error {
	active := s.State().Active
	if active == nil || active.Status != entities.BattleStatusInProgress {
		return errors.FailedPrecondition("there is no running battle")
	}
	if active.Turn != s.username {
		return errors.NotYourTurn(s.username)
	}
	rec, err := s.arena.Act(ctx, active.ID, skill)
	if err != nil {
		return err
	}
	return s.submit(ctx, rec)
}

// Surrender gives up the running battle
func (s *Session) Surrender(ctx context.Context) error {
	active := s.State().Active
	if active == nil || active.Status != entities.BattleStatusInProgress {
		return errors.FailedPrecondition("there is no running battle")
	}
	rec, err := s.arena.Surrender(ctx, active.ID)
	if err != nil {
		return err
	}
	return s.submit(ctx, rec)
}

// Dismiss clears a finished battle from the view
func (s *Session) Dismiss(ctx context.Context) error {
	select {
	case s.commands <- Dismiss:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
