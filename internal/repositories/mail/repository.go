// Package mail stores account mailboxes
package mail

import (
	"context"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=mailmock github.com/KirkDiggler/rpg-narrator/internal/repositories/mail Repository

// CreateInput contains a new mail. ID and CreatedAt are assigned by the caller.
type CreateInput struct {
	Mail *entities.Mail
}

// CreateOutput contains the stored mail
type CreateOutput struct {
	Mail *entities.Mail
}

// GetInput contains parameters for loading one mail of a recipient
type GetInput struct {
	ID        string
	Recipient string
}

// GetOutput contains the loaded mail
type GetOutput struct {
	Mail *entities.Mail
}

// ListInput contains parameters for listing a mailbox
type ListInput struct {
	Recipient  string
	UnreadOnly bool
	Limit      int
}

// ListOutput contains mails, newest first
type ListOutput struct {
	Mails []*entities.Mail
}

// MarkReadInput contains parameters for marking a mail read
type MarkReadInput struct {
	ID        string
	Recipient string
}

// MarkReadOutput contains the updated mail
type MarkReadOutput struct {
	Mail *entities.Mail
}

// MarkClaimedInput contains parameters for flagging an attachment claimed
type MarkClaimedInput struct {
	ID        string
	Recipient string
}

// MarkClaimedOutput contains the updated mail. Changed is false when the
// mail was already flagged.
type MarkClaimedOutput struct {
	Mail    *entities.Mail
	Changed bool
}

// DeleteInput contains parameters for deleting a mail
type DeleteInput struct {
	ID        string
	Recipient string
}

// DeleteOutput is empty
type DeleteOutput struct{}

// Repository is the mail store of one server shard
type Repository interface {
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)
	Get(ctx context.Context, input GetInput) (*GetOutput, error)
	List(ctx context.Context, input ListInput) (*ListOutput, error)
	MarkRead(ctx context.Context, input MarkReadInput) (*MarkReadOutput, error)
	MarkClaimed(ctx context.Context, input MarkClaimedInput) (*MarkClaimedOutput, error)
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}
