package entities

import "time"

// Role is an account's authorization role
type Role string

// Roles
const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

// Account is a player account on one server shard
type Account struct {
	Username  string    `json:"username"`
	ServerID  string    `json:"server_id"`
	Role      Role      `json:"role"`
	Banned    bool      `json:"banned"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the account carries the admin role
func (a *Account) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// ChatRole marks who authored a history turn
type ChatRole string

// History authors
const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatTurn is one message of the single-player narrative history
type ChatTurn struct {
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Settings are the per-save narrative toggles
type Settings struct {
	Firewall bool `json:"firewall"`
	NSFW     bool `json:"nsfw"`
}

// SaveData is the full single-player state of an account. Saves are always
// overwritten whole, never merged.
type SaveData struct {
	Username  string     `json:"username"`
	ServerID  string     `json:"server_id"`
	Character Character  `json:"character"`
	History   []ChatTurn `json:"history"`
	Settings  Settings   `json:"settings"`
	LastSaved time.Time  `json:"last_saved"`
}

// ChatMessage is one world-chat line
type ChatMessage struct {
	ID       string    `json:"id"`
	ServerID string    `json:"server_id"`
	Username string    `json:"username"`
	Text     string    `json:"text"`
	IsAdmin  bool      `json:"is_admin"`
	SentAt   time.Time `json:"sent_at"`
}

// LeaderboardEntry is one ranked account. God-mode entries rank above every
// finite power and report Power as 0.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Power    int64  `json:"power"`
	GodMode  bool   `json:"god_mode"`
}
