package battle

import "github.com/KirkDiggler/rpg-narrator/internal/entities"

// ChallengeInput challenges another player
type ChallengeInput struct {
	Caller string
	Target string
}

// BattleInput names a battle the caller acts on
type BattleInput struct {
	Caller   string
	BattleID string
}

// ActInput is one move in a running battle
type ActInput struct {
	Caller   string
	BattleID string
	Skill    string
}

// BattleOutput contains the stored record after the operation
type BattleOutput struct {
	Record *entities.BattleRecord
}

// SurrenderOutput contains the finished record. PenaltyApplied is false when
// the penalty had already been applied for this battle.
type SurrenderOutput struct {
	Record         *entities.BattleRecord
	PenaltyApplied bool
}

// CurrentInput names the caller
type CurrentInput struct {
	Caller string
}

// CurrentOutput contains the caller's PENDING and IN_PROGRESS battles
type CurrentOutput struct {
	Records []*entities.BattleRecord
}

// SubscribeInput names the caller
type SubscribeInput struct {
	Caller string
}

// SubscribeOutput delivers every write to a battle involving the caller
type SubscribeOutput struct {
	Updates <-chan *entities.BattleRecord
	Close   func() error
}

// AdminSetHPInput overrides both sides' hp
type AdminSetHPInput struct {
	Caller   string
	BattleID string
	P1HP     int
	P2HP     int
}

// ListRecentInput lists the newest battles on the shard
type ListRecentInput struct {
	Caller string
	Limit  int
}

// ListRecentOutput contains battles, newest first
type ListRecentOutput struct {
	Records []*entities.BattleRecord
}
