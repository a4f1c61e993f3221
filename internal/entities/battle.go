package entities

import "time"

// BattleStatus is the lifecycle state of a BattleRecord
type BattleStatus string

// Battle lifecycle states
const (
	BattleStatusPending    BattleStatus = "PENDING"
	BattleStatusAccepted   BattleStatus = "ACCEPTED"
	BattleStatusDeclined   BattleStatus = "DECLINED"
	BattleStatusInProgress BattleStatus = "IN_PROGRESS"
	BattleStatusFinished   BattleStatus = "FINISHED"
)

// BattleEffect tags the special effect of one log entry
type BattleEffect string

// Special effects
const (
	EffectCrit      BattleEffect = "CRIT"
	EffectLifesteal BattleEffect = "LIFESTEAL"
	EffectStun      BattleEffect = "STUN"
	EffectDouble    BattleEffect = "DOUBLE"
	EffectVoid      BattleEffect = "VOID"
	EffectNormal    BattleEffect = "NORMAL"
)

// BattleLogEntry is one immutable line of the battle log. Turn is 1-based.
type BattleLogEntry struct {
	Turn        int          `json:"turn"`
	Actor       string       `json:"actor"`
	Skill       string       `json:"skill"`
	Description string       `json:"description"`
	Damage      int          `json:"damage"`
	Effect      BattleEffect `json:"effect"`
	Timestamp   time.Time    `json:"timestamp"`
}

// BattleRecord is the single shared state of one PvP match. P1 is always the
// challenger and P2 the target. Version increases by one on every write.
type BattleRecord struct {
	ID            string           `json:"id"`
	ServerID      string           `json:"server_id"`
	Challenger    string           `json:"challenger"`
	Target        string           `json:"target"`
	Status        BattleStatus     `json:"status"`
	Turn          string           `json:"turn,omitempty"`
	P1HP          int              `json:"p1_hp"`
	P1MaxHP       int              `json:"p1_max_hp"`
	P2HP          int              `json:"p2_hp"`
	P2MaxHP       int              `json:"p2_max_hp"`
	P1Energy      int              `json:"p1_energy"`
	P2Energy      int              `json:"p2_energy"`
	P1GodMode     bool             `json:"p1_god_mode,omitempty"`
	P2GodMode     bool             `json:"p2_god_mode,omitempty"`
	Logs          []BattleLogEntry `json:"logs"`
	Winner        string           `json:"winner,omitempty"`
	SurrenderedBy string           `json:"surrendered_by,omitempty"`
	Version       int64            `json:"version"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Clone returns a deep copy; the engine never mutates its input
func (b *BattleRecord) Clone() *BattleRecord {
	if b == nil {
		return nil
	}
	out := *b
	if b.Logs != nil {
		out.Logs = append([]BattleLogEntry(nil), b.Logs...)
	}
	return &out
}

// IsParticipant reports whether username is one of the two sides
func (b *BattleRecord) IsParticipant(username string) bool {
	return username != "" && (b.Challenger == username || b.Target == username)
}

// Opponent returns the other participant
func (b *BattleRecord) Opponent(username string) string {
	if username == b.Challenger {
		return b.Target
	}
	return b.Challenger
}

// IsActive reports whether the battle still occupies its participants
func (b *BattleRecord) IsActive() bool {
	return b.Status == BattleStatusPending || b.Status == BattleStatusInProgress
}

// IsTerminal reports whether no further transitions are possible
func (b *BattleRecord) IsTerminal() bool {
	return b.Status == BattleStatusFinished || b.Status == BattleStatusDeclined
}

// LastTurn is the turn number of the newest log entry, 0 when empty
func (b *BattleRecord) LastTurn() int {
	if len(b.Logs) == 0 {
		return 0
	}
	return b.Logs[len(b.Logs)-1].Turn
}

// HP returns the current and max hp of a participant
func (b *BattleRecord) HP(username string) (hp, maxHP int) {
	if username == b.Challenger {
		return b.P1HP, b.P1MaxHP
	}
	return b.P2HP, b.P2MaxHP
}
