package narrative

import (
	"time"

	narrativeclient "github.com/KirkDiggler/rpg-narrator/internal/clients/narrative"
	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/saves"
)

// Difficulty levels a character can be created with
const (
	DifficultyEasy         = "EASY"
	DifficultyNormal       = "NORMAL"
	DifficultyHard         = "HARD"
	DifficultyInstantDeath = "INSTANT_DEATH"
)

// GameState is a snapshot of one player's single-player game
type GameState struct {
	Character entities.Character
	History   []entities.ChatTurn
	Settings  entities.Settings
	Dead      bool
	LastSaved time.Time
}

// StartGameInput creates a character
type StartGameInput struct {
	Username    string
	Name        string
	Race        string
	UniqueSkill string
	Location    string
	Difficulty  string
}

// StartGameOutput contains the new game with its intro turn
type StartGameOutput struct {
	State    *GameState
	Degraded bool
}

// SubmitInput is one free-text player turn or command
type SubmitInput struct {
	Username string
	Message  string
}

// TurnOutput is the result of a turn. Command is set when the message was a
// command handled without the backend.
type TurnOutput struct {
	State    *GameState
	Reply    string
	Degraded bool
	Command  bool
	Notices  []entities.Notice
	Died     bool
}

// GetStateInput names the player
type GetStateInput struct {
	Username string
}

// GetStateOutput contains the game state
type GetStateOutput struct {
	State *GameState
}

// UseSkillInput activates a learned skill
type UseSkillInput struct {
	Username string
	Skill    string
}

// UseItemInput consumes one inventory item
type UseItemInput struct {
	Username string
	Item     string
}

// EquipSkillsInput replaces the equipped set
type EquipSkillsInput struct {
	Username string
	Skills   []string
}

// EquipSkillsOutput contains the updated state
type EquipSkillsOutput struct {
	State *GameState
}

// SaveInput names the player
type SaveInput struct {
	Username string
}

// SaveOutput contains the save time
type SaveOutput struct {
	LastSaved time.Time
}

// AcknowledgeDeathInput names the player
type AcknowledgeDeathInput struct {
	Username string
}

// AcknowledgeDeathOutput is empty
type AcknowledgeDeathOutput struct{}

// AppraiseInput names the player
type AppraiseInput struct {
	Username string
}

// AppraiseOutput contains the appraisal
type AppraiseOutput struct {
	Appraisal *narrativeclient.Appraisal
}

// ScanInput names the player
type ScanInput struct {
	Username string
}

// ScanOutput contains the radar reading
type ScanOutput struct {
	Entities []narrativeclient.RadarEntity
}

// AnalyzeEntityInput names a term from the story
type AnalyzeEntityInput struct {
	Username string
	Term     string
}

// AnalyzeEntityOutput contains the explanation
type AnalyzeEntityOutput struct {
	Entity *narrativeclient.EntityAnalysis
}

// ApplyExternalInput is a save write that did not come from the player's own
// session, such as a mail grant or a surrender penalty
type ApplyExternalInput struct {
	Username string
	OnceKey  string
	Mutate   saves.MutateFunc
}

// ApplyExternalOutput contains the stored save. Applied is false when the
// once key had already been used.
type ApplyExternalOutput struct {
	Save    *entities.SaveData
	Applied bool
}
