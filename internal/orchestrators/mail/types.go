package mail

import "github.com/KirkDiggler/rpg-narrator/internal/entities"

// SendInput is one admin-authored mail
type SendInput struct {
	Caller     string
	Recipient  string
	Title      string
	Body       string
	Attachment *entities.Attachment
}

// SendOutput contains the stored mail
type SendOutput struct {
	Mail *entities.Mail
}

// ListInput lists the caller's mailbox
type ListInput struct {
	Caller     string
	UnreadOnly bool
	Limit      int
}

// ListOutput contains mails, newest first
type ListOutput struct {
	Mails []*entities.Mail
}

// MailInput names one mail of the caller
type MailInput struct {
	Caller string
	MailID string
}

// MailOutput contains the mail after the operation
type MailOutput struct {
	Mail *entities.Mail
}

// ClaimOutput contains the claimed mail and the status the grant produced
type ClaimOutput struct {
	Mail    *entities.Mail
	Status  entities.CharacterStatus
	Notices []entities.Notice
}
