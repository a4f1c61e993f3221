package session

import (
	"fmt"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
)

// State is the local view of one player's battles. It is a value: Reduce
// returns a new State and never mutates records it was handed.
type State struct {
	Username string
	// Invite is a PENDING challenge addressed to the player
	Invite *entities.BattleRecord
	// Outgoing is a PENDING challenge the player sent
	Outgoing *entities.BattleRecord
	// Active is the running battle, or the one that just finished until it
	// is dismissed
	Active *entities.BattleRecord
	// LastCueTurn is the newest log turn of Active that has been cued
	LastCueTurn int
}

// Cue is a one-shot effect for a newly observed log entry
type Cue struct {
	BattleID string
	Entry    entities.BattleLogEntry
}

// Change is what one reduction produced besides the new state
type Change struct {
	Cues    []Cue
	Notices []entities.Notice
}

// Empty reports whether nothing observable happened
func (c Change) Empty() bool {
	return len(c.Cues) == 0 && len(c.Notices) == 0
}

// tracked returns the slot holding id, if any
func (s State) tracked(id string) *entities.BattleRecord {
	for _, rec := range []*entities.BattleRecord{s.Active, s.Invite, s.Outgoing} {
		if rec != nil && rec.ID == id {
			return rec
		}
	}
	return nil
}

// TrackedIDs lists the battle ids the state is waiting on. Finished battles
// are excluded because they cannot change any more.
func (s State) TrackedIDs() []string {
	var ids []string
	for _, rec := range []*entities.BattleRecord{s.Active, s.Invite, s.Outgoing} {
		if rec != nil && !rec.IsTerminal() {
			ids = append(ids, rec.ID)
		}
	}
	return ids
}

// Reduce folds one server record into the state. It is the only place the
// local view changes. Records for other players, and records no newer than
// the tracked copy of the same battle, are ignored, so push and poll may deliver
// the same record any number of times in any order.
func Reduce(s State, rec *entities.BattleRecord) (State, Change) {
	var change Change
	if rec == nil || !rec.IsParticipant(s.Username) {
		return s, change
	}
	if cur := s.tracked(rec.ID); cur != nil && isStale(cur, rec) {
		return s, change
	}
	rec = rec.Clone()

	switch rec.Status {
	case entities.BattleStatusPending:
		if rec.Target == s.Username {
			s.Invite = rec
		} else {
			s.Outgoing = rec
		}

	case entities.BattleStatusDeclined:
		if s.Outgoing != nil && s.Outgoing.ID == rec.ID {
			s.Outgoing = nil
			change.Notices = append(change.Notices, entities.Notice{
				Type: entities.NoticeDeclined,
				Text: fmt.Sprintf("%s declined your challenge.", rec.Target),
			})
		}
		if s.Invite != nil && s.Invite.ID == rec.ID {
			s.Invite = nil
		}

	case entities.BattleStatusInProgress, entities.BattleStatusFinished:
		wasTracked := s.tracked(rec.ID) != nil
		s.Invite = clearIf(s.Invite, rec.ID)
		s.Outgoing = clearIf(s.Outgoing, rec.ID)

		// an unseen finished battle is history, not something to show
		if rec.Status == entities.BattleStatusFinished && !wasTracked {
			return s, change
		}
		// a running battle is never displaced by another record
		if s.Active != nil && s.Active.ID != rec.ID && !s.Active.IsTerminal() {
			return s, change
		}

		if s.Active == nil || s.Active.ID != rec.ID {
			// first sight: only the newest entry cues
			s.LastCueTurn = max(rec.LastTurn()-1, 0)
		}
		s.Active = rec
		for _, entry := range rec.Logs {
			if entry.Turn > s.LastCueTurn {
				change.Cues = append(change.Cues, Cue{BattleID: rec.ID, Entry: entry})
				s.LastCueTurn = entry.Turn
			}
		}
	}

	return s, change
}

// Dismiss clears a finished Active battle
func Dismiss(s State) State {
	if s.Active != nil && s.Active.IsTerminal() {
		s.Active = nil
		s.LastCueTurn = 0
	}
	return s
}

func clearIf(rec *entities.BattleRecord, id string) *entities.BattleRecord {
	if rec != nil && rec.ID == id {
		return nil
	}
	return rec
}

// isStale reports whether next adds nothing over cur. Copies of one battle
// are ordered by version, then by log length.
func isStale(cur, next *entities.BattleRecord) bool {
	if next.Version != cur.Version {
		return next.Version < cur.Version
	}
	return len(next.Logs) <= len(cur.Logs)
}
