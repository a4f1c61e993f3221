package narrative

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/saves"
)

const autosaveTimeout = 10 * time.Second

// session is one player's live game. mu guards everything but inFlight, which
// is held for the whole of a turn including the backend calls.
type session struct {
	username string
	inFlight atomic.Bool

	mu    sync.Mutex
	save  *entities.SaveData
	dead  bool
	dirty bool
	timer clock.Timer
	// gen invalidates autosave timers that fired after being replaced
	gen uint64
}

func newSession(save *entities.SaveData) *session {
	return &session{username: save.Username, save: cloneSave(save)}
}

// state snapshots the session; caller holds mu
func (s *session) state() *GameState {
	c := cloneSave(s.save)
	return &GameState{
		Character: c.Character,
		History:   c.History,
		Settings:  c.Settings,
		Dead:      s.dead,
		LastSaved: c.LastSaved,
	}
}

func (s *session) appendTurn(role entities.ChatRole, text string, at time.Time) {
	s.save.History = append(s.save.History, entities.ChatTurn{Role: role, Text: text, Timestamp: at})
}

// stopTimer cancels a pending autosave; caller holds mu
func (s *session) stopTimer() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// scheduleSave marks the session dirty and restarts the debounce timer.
// Nothing is scheduled while the character is dead. Caller holds mu.
func (o *orchestrator) scheduleSave(s *session) {
	s.dirty = true
	if s.dead {
		return
	}
	s.stopTimer()
	gen := s.gen
	s.timer = o.clock.AfterFunc(o.autosaveDelay, func() {
		o.autosave(s, gen)
	})
}

func (o *orchestrator) autosave(s *session, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || !s.dirty || s.dead {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), autosaveTimeout)
	defer cancel()
	if err := o.flush(ctx, s); err != nil {
		o.logger.Error("autosave failed",
			"username", s.username,
			"error", err)
	}
}

// flush writes the whole save; caller holds mu
func (o *orchestrator) flush(ctx context.Context, s *session) error {
	out, err := o.saves.Put(ctx, saves.PutInput{Save: cloneSave(s.save)})
	if err != nil {
		return err
	}
	s.save.LastSaved = out.Save.LastSaved
	s.save.ServerID = out.Save.ServerID
	s.dirty = false
	o.logger.Debug("game saved",
		slog.String("username", s.username),
		slog.Time("last_saved", out.Save.LastSaved))
	return nil
}

// rebase carries writes that landed while a backend call was running into the
// proposal computed from the older snapshot. Grants only ever add items and
// skills, and penalties only lower the maxima, so current values win there.
func rebase(proposed entities.StatusUpdate, snapshot, current entities.CharacterStatus) entities.StatusUpdate {
	for _, item := range current.Inventory {
		if !slices.Contains(snapshot.Inventory, item) && !slices.Contains(proposed.Inventory, item) {
			proposed.Inventory = append(proposed.Inventory, item)
		}
	}
	for _, skill := range current.Skills {
		if !slices.Contains(snapshot.Skills, skill) && !slices.Contains(proposed.Skills, skill) {
			proposed.Skills = append(proposed.Skills, skill)
		}
	}
	if current.MaxHP != snapshot.MaxHP {
		proposed.MaxHP = current.MaxHP
		proposed.HP = min(proposed.HP, current.MaxHP)
	}
	if current.MaxMP != snapshot.MaxMP {
		proposed.MaxMP = current.MaxMP
		proposed.MP = min(proposed.MP, current.MaxMP)
	}
	if current.IsGodMode && !snapshot.IsGodMode {
		proposed.IsGodMode = true
	}
	return proposed
}

func cloneSave(s *entities.SaveData) *entities.SaveData {
	if s == nil {
		return nil
	}
	out := *s
	out.Character.Status = s.Character.Status.Clone()
	out.History = append([]entities.ChatTurn{}, s.History...)
	return &out
}
