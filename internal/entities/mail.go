package entities

import "time"

// AttachmentType is the kind of a mail attachment
type AttachmentType string

// Attachment kinds
const (
	AttachmentItem  AttachmentType = "ITEM"
	AttachmentSkill AttachmentType = "SKILL"
)

// Attachment is the optional single grant carried by a mail
type Attachment struct {
	Type AttachmentType `json:"type"`
	Name string         `json:"name"`
}

// Mail is one message in an account's mailbox. An attachment is claimed at most once.
type Mail struct {
	ID         string      `json:"id"`
	ServerID   string      `json:"server_id"`
	Sender     string      `json:"sender"`
	Recipient  string      `json:"recipient"`
	Title      string      `json:"title"`
	Body       string      `json:"body"`
	Attachment *Attachment `json:"attachment,omitempty"`
	IsRead     bool        `json:"is_read"`
	IsClaimed  bool        `json:"is_claimed"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NoticeType classifies a user-visible notice
type NoticeType string

// Notice kinds
const (
	NoticeSkillEvolved NoticeType = "SKILL_EVOLVED"
	NoticeEvolution    NoticeType = "EVOLUTION"
	NoticeDeath        NoticeType = "DEATH"
	NoticeTamper       NoticeType = "TAMPER"
	NoticeCheatBlocked NoticeType = "CHEAT_BLOCKED"
	NoticeCommand      NoticeType = "COMMAND"
	NoticeSystem       NoticeType = "SYSTEM"
	NoticeDeclined     NoticeType = "DECLINED"
)

// Notice is a short user-visible message. Text never contains raw backend errors.
type Notice struct {
	Type NoticeType `json:"type"`
	Text string     `json:"text"`
}
